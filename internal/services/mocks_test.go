package services_test

import (
	"context"
	"time"

	"retailorders/internal/events"
	"retailorders/internal/mailer"
	"retailorders/internal/models"
	"retailorders/internal/partner"
	"retailorders/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateWithConfirmToken(user *models.User, token *models.ConfirmEmailToken) error {
	return m.Called(user, token).Error(0)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetWithContacts(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) EmailTaken(email string, excludeID uint) (bool, error) {
	args := m.Called(email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	return m.Called(id, fields).Error(0)
}

// MockTokenRepository is a mock implementation of repositories.TokenRepository
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) ConfirmEmail(email, key string) (*models.User, error) {
	args := m.Called(email, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockTokenRepository) GetConfirmTokenByUserID(userID uint) (*models.ConfirmEmailToken, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ConfirmEmailToken), args.Error(1)
}

func (m *MockTokenRepository) GetOrCreateAuthToken(userID uint, key string) (*models.AuthToken, error) {
	args := m.Called(userID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthToken), args.Error(1)
}

func (m *MockTokenRepository) GetAuthToken(key string) (*models.AuthToken, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthToken), args.Error(1)
}

func (m *MockTokenRepository) CreateResetToken(token *models.PasswordResetToken) error {
	return m.Called(token).Error(0)
}

func (m *MockTokenRepository) GetResetToken(key string) (*models.PasswordResetToken, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PasswordResetToken), args.Error(1)
}

func (m *MockTokenRepository) ConsumeResetTokens(userID uint, passwordHash string) error {
	return m.Called(userID, passwordHash).Error(0)
}

func (m *MockTokenRepository) DeleteResetTokensBefore(t time.Time) (int64, error) {
	args := m.Called(t)
	return args.Get(0).(int64), args.Error(1)
}

// MockContactRepository is a mock implementation of repositories.ContactRepository
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) ListByUser(userID uint) ([]models.Contact, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.Contact), args.Error(1)
}

func (m *MockContactRepository) Create(contact *models.Contact) error {
	return m.Called(contact).Error(0)
}

func (m *MockContactRepository) GetForUser(id, userID uint) (*models.Contact, error) {
	args := m.Called(id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

func (m *MockContactRepository) Update(contact *models.Contact) error {
	return m.Called(contact).Error(0)
}

func (m *MockContactRepository) DeleteForUser(userID uint, ids []uint) (int64, error) {
	args := m.Called(userID, ids)
	return args.Get(0).(int64), args.Error(1)
}

// MockCatalogRepository is a mock implementation of repositories.CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ListActiveShops() ([]models.Shop, error) {
	args := m.Called()
	return args.Get(0).([]models.Shop), args.Error(1)
}

func (m *MockCatalogRepository) ListCategories() ([]models.Category, error) {
	args := m.Called()
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCatalogRepository) SearchProductInfos(filter repositories.ProductFilter) ([]models.ProductInfo, error) {
	args := m.Called(filter)
	return args.Get(0).([]models.ProductInfo), args.Error(1)
}

func (m *MockCatalogRepository) ProductInfoExists(id uint) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalogRepository) GetShopByUserID(userID uint) (*models.Shop, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shop), args.Error(1)
}

func (m *MockCatalogRepository) SetShopState(userID uint, state bool) (int64, error) {
	args := m.Called(userID, state)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogRepository) ImportFeed(userID uint, feed *partner.Feed) (*models.Shop, error) {
	args := m.Called(userID, feed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shop), args.Error(1)
}

func (m *MockCatalogRepository) ListShopCatalog(shopID uint) ([]models.Category, []models.ProductInfo, error) {
	args := m.Called(shopID)
	return args.Get(0).([]models.Category), args.Get(1).([]models.ProductInfo), args.Error(2)
}

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetOrCreateBasket(userID uint) (*models.Order, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListBasket(userID uint) ([]models.Order, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListOrders(userID uint) ([]models.Order, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetOrder(userID, orderID uint) (*models.Order, error) {
	args := m.Called(userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) AddItems(items []models.OrderItem) error {
	return m.Called(items).Error(0)
}

func (m *MockOrderRepository) UpdateBasketItem(userID, itemID, quantity uint) (int64, error) {
	args := m.Called(userID, itemID, quantity)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) DeleteBasketItems(userID uint, itemIDs []uint) (int64, error) {
	args := m.Called(userID, itemIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) PlaceOrder(userID, orderID, contactID uint) (int64, error) {
	args := m.Called(userID, orderID, contactID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, name events.Name, payload any) error {
	return m.Called(name, payload).Error(0)
}

// MockSender is a mock implementation of mailer.Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg mailer.Message) error {
	return m.Called(msg).Error(0)
}

// MockFetcher is a mock implementation of services.FeedFetcher
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
