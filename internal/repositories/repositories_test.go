package repositories_test

import (
	"errors"
	"testing"
	"time"

	"retailorders/internal/database"
	"retailorders/internal/models"
	"retailorders/internal/partner"
	"retailorders/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, repo *repositories.GORMUserRepository, email string, typ models.UserType) *models.User {
	t.Helper()
	user := &models.User{Email: email, Password: "hash", Type: typ}
	token := &models.ConfirmEmailToken{Key: "confirm-" + email}
	require.NoError(t, repo.CreateWithConfirmToken(user, token))
	return user
}

func TestUserAndTokenRepositories(t *testing.T) {
	db := setupDB(t)
	users := repositories.NewGORMUserRepository(db)
	tokens := repositories.NewGORMTokenRepository(db)

	user := createUser(t, users, "ivan@example.com", models.UserTypeCustomer)
	assert.NotZero(t, user.ID)
	assert.False(t, user.IsActive)

	taken, err := users.EmailTaken("ivan@example.com", 0)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = users.EmailTaken("ivan@example.com", user.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	_, err = tokens.ConfirmEmail("other@example.com", "confirm-ivan@example.com")
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	confirmed, err := tokens.ConfirmEmail("ivan@example.com", "confirm-ivan@example.com")
	require.NoError(t, err)
	assert.True(t, confirmed.IsActive)

	_, err = tokens.GetConfirmTokenByUserID(user.ID)
	assert.True(t, errors.Is(err, repositories.ErrNotFound), "token is consumed")

	first, err := tokens.GetOrCreateAuthToken(user.ID, "key-1")
	require.NoError(t, err)
	second, err := tokens.GetOrCreateAuthToken(user.ID, "key-2")
	require.NoError(t, err)
	assert.Equal(t, "key-1", first.Key)
	assert.Equal(t, first.Key, second.Key, "login token is reused")

	stored, err := tokens.GetAuthToken("key-1")
	require.NoError(t, err)
	require.NotNil(t, stored.User)
	assert.Equal(t, user.ID, stored.User.ID)

	require.NoError(t, tokens.CreateResetToken(&models.PasswordResetToken{UserID: user.ID, Key: "reset-1"}))
	require.NoError(t, tokens.CreateResetToken(&models.PasswordResetToken{UserID: user.ID, Key: "reset-2"}))
	require.NoError(t, tokens.ConsumeResetTokens(user.ID, "new-hash"))
	_, err = tokens.GetResetToken("reset-2")
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	reloaded, err := users.GetByEmail("ivan@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", reloaded.Password)

	old := &models.PasswordResetToken{UserID: user.ID, Key: "old", CreatedAt: time.Now().Add(-48 * time.Hour)}
	require.NoError(t, tokens.CreateResetToken(old))
	require.NoError(t, tokens.CreateResetToken(&models.PasswordResetToken{UserID: user.ID, Key: "fresh"}))
	purged, err := tokens.DeleteResetTokensBefore(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestContactRepository_OwnerScoped(t *testing.T) {
	db := setupDB(t)
	users := repositories.NewGORMUserRepository(db)
	contacts := repositories.NewGORMContactRepository(db)

	alice := createUser(t, users, "alice@example.com", models.UserTypeCustomer)
	bob := createUser(t, users, "bob@example.com", models.UserTypeCustomer)

	mine := &models.Contact{UserID: alice.ID, City: "Москва", Street: "Тверская", Phone: "+79990000000"}
	theirs := &models.Contact{UserID: bob.ID, City: "Казань", Street: "Баумана", Phone: "+79990000001"}
	require.NoError(t, contacts.Create(mine))
	require.NoError(t, contacts.Create(theirs))

	_, err := contacts.GetForUser(theirs.ID, alice.ID)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	mine.City = "Санкт-Петербург"
	require.NoError(t, contacts.Update(mine))

	deleted, err := contacts.DeleteForUser(alice.ID, []uint{mine.ID, theirs.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	left, err := contacts.ListByUser(bob.ID)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func sampleFeed() *partner.Feed {
	return &partner.Feed{
		Shop:       "Связной",
		Categories: []partner.FeedCategory{{ID: 224, Name: "Смартфоны"}},
		Goods: []partner.FeedGood{
			{ID: 1, Category: 224, Model: "apple/iphone/xs", Name: "iPhone XS", Price: 100, PriceRRC: 110, Quantity: 5,
				Parameters: map[string]string{"Цвет": "золотистый", "Память": "64"}},
			{ID: 2, Category: 224, Model: "apple/iphone/xr", Name: "iPhone XR", Price: 80, PriceRRC: 85, Quantity: 3,
				Parameters: map[string]string{"Цвет": "синий"}},
		},
	}
}

func TestCatalogRepository_ImportIsIdempotent(t *testing.T) {
	db := setupDB(t)
	users := repositories.NewGORMUserRepository(db)
	catalog := repositories.NewGORMCatalogRepository(db)
	owner := createUser(t, users, "shop@example.com", models.UserTypeShop)

	shop, err := catalog.ImportFeed(owner.ID, sampleFeed())
	require.NoError(t, err)
	_, err = catalog.ImportFeed(owner.ID, sampleFeed())
	require.NoError(t, err)

	var infoCount, paramCount, productCount int64
	db.Model(&models.ProductInfo{}).Count(&infoCount)
	db.Model(&models.ProductParameter{}).Count(&paramCount)
	db.Model(&models.Product{}).Count(&productCount)
	assert.Equal(t, int64(2), infoCount)
	assert.Equal(t, int64(3), paramCount)
	assert.Equal(t, int64(2), productCount)

	categories, infos, err := catalog.ListShopCatalog(shop.ID)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	require.Len(t, infos, 2)
	assert.Equal(t, "iPhone XS", infos[0].Product.Name)
	assert.Len(t, infos[0].ProductParameters, 2)

	// a good missing from the next feed is kept with zero stock
	feed := sampleFeed()
	feed.Goods = feed.Goods[:1]
	feed.Goods[0].Price = 120
	_, err = catalog.ImportFeed(owner.ID, feed)
	require.NoError(t, err)

	_, infos, err = catalog.ListShopCatalog(shop.ID)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, uint(120), infos[0].Price)
	assert.Equal(t, uint(0), infos[1].Quantity)
}

func TestCatalogRepository_SearchSkipsInactiveShops(t *testing.T) {
	db := setupDB(t)
	users := repositories.NewGORMUserRepository(db)
	catalog := repositories.NewGORMCatalogRepository(db)
	owner := createUser(t, users, "shop@example.com", models.UserTypeShop)

	shop, err := catalog.ImportFeed(owner.ID, sampleFeed())
	require.NoError(t, err)

	category := uint(224)
	infos, err := catalog.SearchProductInfos(repositories.ProductFilter{ShopID: &shop.ID, CategoryID: &category})
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.NotNil(t, infos[0].Shop)
	require.NotNil(t, infos[0].Product)
	require.NotNil(t, infos[0].Product.Category)
	assert.Equal(t, "Смартфоны", infos[0].Product.Category.Name)

	other := uint(999)
	infos, err = catalog.SearchProductInfos(repositories.ProductFilter{CategoryID: &other})
	require.NoError(t, err)
	assert.Empty(t, infos)

	n, err := catalog.SetShopState(owner.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	infos, err = catalog.SearchProductInfos(repositories.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, infos)

	shops, err := catalog.ListActiveShops()
	require.NoError(t, err)
	assert.Empty(t, shops)
}

func TestOrderRepository_BasketLifecycle(t *testing.T) {
	db := setupDB(t)
	users := repositories.NewGORMUserRepository(db)
	catalog := repositories.NewGORMCatalogRepository(db)
	contacts := repositories.NewGORMContactRepository(db)
	orders := repositories.NewGORMOrderRepository(db)

	owner := createUser(t, users, "shop@example.com", models.UserTypeShop)
	buyer := createUser(t, users, "buyer@example.com", models.UserTypeCustomer)
	stranger := createUser(t, users, "stranger@example.com", models.UserTypeCustomer)
	shop, err := catalog.ImportFeed(owner.ID, sampleFeed())
	require.NoError(t, err)
	_, infos, err := catalog.ListShopCatalog(shop.ID)
	require.NoError(t, err)

	basket, err := orders.GetOrCreateBasket(buyer.ID)
	require.NoError(t, err)
	again, err := orders.GetOrCreateBasket(buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, basket.ID, again.ID, "one basket per user")

	require.NoError(t, orders.AddItems([]models.OrderItem{
		{OrderID: basket.ID, ProductInfoID: infos[0].ID, Quantity: 2},
		{OrderID: basket.ID, ProductInfoID: infos[1].ID, Quantity: 1},
	}))
	err = orders.AddItems([]models.OrderItem{{OrderID: basket.ID, ProductInfoID: infos[0].ID, Quantity: 1}})
	assert.Error(t, err, "duplicate line")

	listed, err := orders.ListBasket(buyer.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Len(t, listed[0].OrderedItems, 2)
	assert.Equal(t, uint(2*100+80), listed[0].TotalSum)
	itemID := listed[0].OrderedItems[0].ID

	n, err := orders.UpdateBasketItem(stranger.ID, itemID, 7)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = orders.UpdateBasketItem(buyer.ID, itemID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = orders.DeleteBasketItems(buyer.ID, []uint{listed[0].OrderedItems[1].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	foreign := &models.Contact{UserID: stranger.ID, City: "Казань", Street: "Баумана", Phone: "1"}
	own := &models.Contact{UserID: buyer.ID, City: "Москва", Street: "Тверская", Phone: "2"}
	require.NoError(t, contacts.Create(foreign))
	require.NoError(t, contacts.Create(own))

	n, err = orders.PlaceOrder(buyer.ID, basket.ID, foreign.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "contact of another user")

	n, err = orders.PlaceOrder(buyer.ID, basket.ID, own.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = orders.PlaceOrder(buyer.ID, basket.ID, own.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "already placed")

	placed, err := orders.ListOrders(buyer.ID)
	require.NoError(t, err)
	require.Len(t, placed, 1)
	assert.Equal(t, models.OrderStateNew, placed[0].State)
	require.NotNil(t, placed[0].Contact)
	assert.Equal(t, uint(3*100), placed[0].TotalSum)

	listed, err = orders.ListBasket(buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}
