package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Name identifies an event or background job.
type Name string

const (
	UserRegistered         Name = "user.registered"
	OrderPlaced            Name = "order.placed"
	PasswordResetRequested Name = "password.reset_requested"
	AvatarUpdated          Name = "user.avatar_updated"
	PartnerImport          Name = "partner.import"
	PartnerExport          Name = "partner.export"
)

// Envelope is the unit that travels through the queue.
type Envelope struct {
	ID         string          `json:"id"`
	Name       Name            `json:"name"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewEnvelope marshals payload into a fresh envelope.
func NewEnvelope(name Name, payload any) (Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", name, err)
	}
	return Envelope{
		ID:         uuid.NewString(),
		Name:       name,
		Payload:    body,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the envelope payload into v.
func (e Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Name, err)
	}
	return nil
}

// Publisher hands events to whatever executes them out of band.
type Publisher interface {
	Publish(ctx context.Context, name Name, payload any) error
}

// Payloads.

type UserPayload struct {
	UserID uint `json:"user_id"`
}

type OrderPlacedPayload struct {
	UserID  uint `json:"user_id"`
	OrderID uint `json:"order_id"`
}

type PasswordResetPayload struct {
	UserID uint   `json:"user_id"`
	Token  string `json:"token"`
}

type AvatarPayload struct {
	UserID uint   `json:"user_id"`
	Path   string `json:"path"`
}

// PartnerImportPayload carries an already validated feed; the importer needs
// nothing else to re-enter the catalog store.
type PartnerImportPayload struct {
	UserID uint            `json:"user_id"`
	URL    string          `json:"url"`
	Feed   json.RawMessage `json:"feed"`
}

type PartnerExportPayload struct {
	UserID uint `json:"user_id"`
}
