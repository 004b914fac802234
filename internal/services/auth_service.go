package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"retailorders/internal/events"
	"retailorders/internal/logger"
	"retailorders/internal/models"
	"retailorders/internal/repositories"
	"retailorders/internal/validation"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthOptions configures token lifetimes and signing.
type AuthOptions struct {
	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
}

// AuthService handles registration, login and account maintenance.
type AuthService struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.TokenRepository
	publisher events.Publisher
	validate  *validator.Validate
	jwtSecret []byte
	tokenTTL  time.Duration
	resetTTL  time.Duration
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, tokenRepo repositories.TokenRepository,
	publisher events.Publisher, validate *validator.Validate, opts AuthOptions) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		publisher: publisher,
		validate:  validate,
		jwtSecret: []byte(opts.JWTSecret),
		tokenTTL:  opts.TokenTTL,
		resetTTL:  opts.ResetTokenTTL,
		now:       time.Now,
	}
}

// RegisterInput is the registration form.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Company   string
	Position  string
	Type      string
}

func (in RegisterInput) complete() bool {
	for _, v := range []string{in.FirstName, in.LastName, in.Email, in.Password, in.Company, in.Position} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Register creates an inactive user with a confirmation token and emits
// user.registered so the token gets mailed.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !in.complete() {
		return nil, ErrMissingArguments
	}

	if problems := ValidatePassword(in.Password, UserPasswordAttributes(in.Email, in.FirstName, in.LastName)); len(problems) > 0 {
		return nil, NewValidationError("password", problems...)
	}

	user := &models.User{
		Email:     strings.TrimSpace(in.Email),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Company:   in.Company,
		Position:  in.Position,
		Type:      models.UserType(in.Type),
	}
	if err := s.validateUser(user, 0); err != nil {
		return nil, err
	}
	if user.Type == "" {
		user.Type = models.UserTypeCustomer
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	token := &models.ConfirmEmailToken{Key: newKey()}
	if err := s.userRepo.CreateWithConfirmToken(user, token); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	emit(ctx, s.publisher, events.UserRegistered, events.UserPayload{UserID: user.ID})
	return user, nil
}

// validateUser runs the field rules and the unique email check. excludeID
// is the user being edited, 0 on registration.
func (s *AuthService) validateUser(user *models.User, excludeID uint) error {
	if err := s.validate.Struct(user); err != nil {
		return &ValidationError{Fields: validation.FieldErrors(err)}
	}
	taken, err := s.userRepo.EmailTaken(user.Email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return NewValidationError("email", "Пользователь с таким email уже существует.")
	}
	return nil
}

// ConfirmEmail activates the account whose email and token match.
func (s *AuthService) ConfirmEmail(ctx context.Context, email, token string) error {
	if email == "" || token == "" {
		return ErrMissingArguments
	}
	if _, err := s.tokenRepo.ConfirmEmail(email, token); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidConfirmation
		}
		return err
	}
	return nil
}

// Login checks the credentials of an active user and returns a signed
// bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrMissingArguments
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", ErrInvalidCredentials
	}

	stored, err := s.tokenRepo.GetOrCreateAuthToken(user.ID, newKey())
	if err != nil {
		return "", err
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"type":    string(user.Type),
		"jti":     stored.Key,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// Authenticate resolves a bearer token to its active user. The token must
// still reference the stored login token of that user.
func (s *AuthService) Authenticate(tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	key, _ := claims["jti"].(string)
	userID, _ := claims["user_id"].(float64)
	if key == "" || userID <= 0 {
		return nil, ErrInvalidToken
	}

	stored, err := s.tokenRepo.GetAuthToken(key)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if stored.UserID != uint(userID) || stored.User == nil || !stored.User.IsActive {
		return nil, ErrInvalidToken
	}
	return stored.User, nil
}

// Details returns the user with contacts.
func (s *AuthService) Details(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetWithContacts(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateDetailsInput holds the fields a user may change. Nil fields are
// left as they are.
type UpdateDetailsInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Company   *string
	Position  *string
	Password  *string
}

// UpdateDetails applies a partial profile update.
func (s *AuthService) UpdateDetails(ctx context.Context, userID uint, in UpdateDetailsInput) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	fields := map[string]interface{}{}
	set := func(column string, dst *string, v *string) {
		if v != nil {
			*dst = *v
			fields[column] = *v
		}
	}
	set("first_name", &user.FirstName, in.FirstName)
	set("last_name", &user.LastName, in.LastName)
	set("email", &user.Email, in.Email)
	set("company", &user.Company, in.Company)
	set("position", &user.Position, in.Position)

	if in.Password != nil {
		problems := ValidatePassword(*in.Password, UserPasswordAttributes(user.Email, user.FirstName, user.LastName))
		if len(problems) > 0 {
			return NewValidationError("password", problems...)
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		fields["password"] = string(hashedPassword)
	}

	if err := s.validateUser(user, user.ID); err != nil {
		return err
	}
	return s.userRepo.UpdateFields(user.ID, fields)
}

// RequestPasswordReset issues a reset token for an active user and emits
// password.reset_requested. Unknown addresses are ignored so callers cannot
// probe which emails are registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return ErrMissingArguments
	}
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}

	token := &models.PasswordResetToken{UserID: user.ID, Key: newKey()}
	if err := s.tokenRepo.CreateResetToken(token); err != nil {
		return err
	}
	emit(ctx, s.publisher, events.PasswordResetRequested, events.PasswordResetPayload{UserID: user.ID, Token: token.Key})
	return nil
}

// ConfirmPasswordReset sets a new password using a reset token and revokes
// every outstanding reset token of that user.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, key, password string) error {
	if key == "" || password == "" {
		return ErrMissingArguments
	}
	token, err := s.tokenRepo.GetResetToken(key)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if token.User == nil || s.now().After(token.CreatedAt.Add(s.resetTTL)) {
		return ErrInvalidToken
	}

	problems := ValidatePassword(password, UserPasswordAttributes(token.User.Email, token.User.FirstName, token.User.LastName))
	if len(problems) > 0 {
		return NewValidationError("password", problems...)
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.tokenRepo.ConsumeResetTokens(token.UserID, string(hashedPassword))
}

// PurgeExpiredResetTokens deletes reset tokens that can no longer be used.
func (s *AuthService) PurgeExpiredResetTokens(ctx context.Context) (int64, error) {
	return s.tokenRepo.DeleteResetTokensBefore(s.now().Add(-s.resetTTL))
}

// emit publishes an event. The triggering operation has already succeeded,
// so a failure is logged rather than returned.
func emit(ctx context.Context, publisher events.Publisher, name events.Name, payload interface{}) {
	if err := publisher.Publish(ctx, name, payload); err != nil {
		logger.Error("failed to publish event", "event", name, "error", err)
	}
}

func newKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
