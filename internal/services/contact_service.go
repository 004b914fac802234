package services

import (
	"context"
	"errors"

	"retailorders/internal/models"
	"retailorders/internal/repositories"
	"retailorders/internal/validation"

	"github.com/go-playground/validator/v10"
)

// ContactService manages the delivery contacts of a user.
type ContactService struct {
	repo     repositories.ContactRepository
	validate *validator.Validate
}

// NewContactService creates a new ContactService.
func NewContactService(repo repositories.ContactRepository, validate *validator.Validate) *ContactService {
	return &ContactService{repo: repo, validate: validate}
}

// ContactInput carries contact fields. Nil fields are not changed on
// update.
type ContactInput struct {
	City      *string
	Street    *string
	House     *string
	Structure *string
	Building  *string
	Apartment *string
	Phone     *string
}

func (in ContactInput) apply(c *models.Contact) {
	for _, f := range []struct {
		dst *string
		src *string
	}{
		{&c.City, in.City},
		{&c.Street, in.Street},
		{&c.House, in.House},
		{&c.Structure, in.Structure},
		{&c.Building, in.Building},
		{&c.Apartment, in.Apartment},
		{&c.Phone, in.Phone},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
}

func present(s *string) bool {
	return s != nil && *s != ""
}

// List returns the user's contacts.
func (s *ContactService) List(userID uint) ([]models.Contact, error) {
	return s.repo.ListByUser(userID)
}

// Create adds a contact. City, street and phone are mandatory.
func (s *ContactService) Create(ctx context.Context, userID uint, in ContactInput) (*models.Contact, error) {
	if !present(in.City) || !present(in.Street) || !present(in.Phone) {
		return nil, ErrMissingArguments
	}
	contact := &models.Contact{UserID: userID}
	in.apply(contact)
	if err := s.validate.Struct(contact); err != nil {
		return nil, &ValidationError{Fields: validation.FieldErrors(err)}
	}
	if err := s.repo.Create(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// Update changes a contact the user owns. A missing, non-numeric or foreign
// id is reported as missing arguments.
func (s *ContactService) Update(ctx context.Context, userID uint, id string, in ContactInput) error {
	contactID, ok := parseID(id)
	if !ok {
		return ErrMissingArguments
	}
	contact, err := s.repo.GetForUser(contactID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrMissingArguments
		}
		return err
	}
	in.apply(contact)
	if err := s.validate.Struct(contact); err != nil {
		return &ValidationError{Fields: validation.FieldErrors(err)}
	}
	return s.repo.Update(contact)
}

// Delete removes the listed contacts of the user and reports how many were
// deleted. Nothing is deleted if any id is malformed.
func (s *ContactService) Delete(ctx context.Context, userID uint, items string) (int64, error) {
	ids, err := parseIDList(items)
	if err != nil {
		return 0, err
	}
	return s.repo.DeleteForUser(userID, ids)
}
