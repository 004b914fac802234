package services

import (
	"context"
	"errors"
	"fmt"

	"retailorders/internal/logger"
	"retailorders/internal/mailer"
	"retailorders/internal/repositories"
)

// NotificationService composes and sends the account and order emails.
// Every method can be repeated safely; at worst the user gets the same
// mail twice.
type NotificationService struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.TokenRepository
	orderRepo repositories.OrderRepository
	sender    mailer.Sender
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(userRepo repositories.UserRepository, tokenRepo repositories.TokenRepository,
	orderRepo repositories.OrderRepository, sender mailer.Sender) *NotificationService {
	return &NotificationService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		orderRepo: orderRepo,
		sender:    sender,
	}
}

// SendConfirmation mails the email confirmation token of a new user. Nothing
// is sent once the address has been confirmed.
func (s *NotificationService) SendConfirmation(ctx context.Context, userID uint) error {
	token, err := s.tokenRepo.GetConfirmTokenByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logger.Debug("no confirmation token left", "user_id", userID)
			return nil
		}
		return err
	}
	return s.sender.Send(ctx, mailer.Message{
		To:      token.User.Email,
		Subject: "Подтверждение регистрации",
		Body:    token.Key,
	})
}

// SendOrderPlaced tells the user their order has been accepted.
func (s *NotificationService) SendOrderPlaced(ctx context.Context, userID, orderID uint) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return err
	}
	order, err := s.orderRepo.GetOrder(userID, orderID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	body := "Заказ сформирован"
	if order != nil {
		body = fmt.Sprintf("Заказ №%d сформирован. Сумма заказа: %d", order.ID, order.TotalSum)
	}
	return s.sender.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: "Обновление статуса заказа",
		Body:    body,
	})
}

// SendPasswordReset mails a password reset token.
func (s *NotificationService) SendPasswordReset(ctx context.Context, userID uint, token string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.sender.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: fmt.Sprintf("Password Reset Token for %s", user.Email),
		Body:    token,
	})
}
