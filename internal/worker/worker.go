package worker

import (
	"context"
	"fmt"

	"retailorders/internal/events"
	"retailorders/internal/logger"
	"retailorders/internal/services"
)

// Dispatcher routes queued envelopes to the service that executes them.
type Dispatcher struct {
	handlers map[events.Name]events.Handler
}

// New wires every known event to its handler.
func New(notifications *services.NotificationService, avatars *services.AvatarService,
	partners *services.PartnerService) *Dispatcher {
	d := &Dispatcher{handlers: make(map[events.Name]events.Handler)}

	d.handlers[events.UserRegistered] = func(ctx context.Context, env events.Envelope) error {
		var p events.UserPayload
		if err := env.Decode(&p); err != nil {
			return err
		}
		return notifications.SendConfirmation(ctx, p.UserID)
	}
	d.handlers[events.OrderPlaced] = func(ctx context.Context, env events.Envelope) error {
		var p events.OrderPlacedPayload
		if err := env.Decode(&p); err != nil {
			return err
		}
		return notifications.SendOrderPlaced(ctx, p.UserID, p.OrderID)
	}
	d.handlers[events.PasswordResetRequested] = func(ctx context.Context, env events.Envelope) error {
		var p events.PasswordResetPayload
		if err := env.Decode(&p); err != nil {
			return err
		}
		return notifications.SendPasswordReset(ctx, p.UserID, p.Token)
	}
	d.handlers[events.AvatarUpdated] = func(ctx context.Context, env events.Envelope) error {
		var p events.AvatarPayload
		if err := env.Decode(&p); err != nil {
			return err
		}
		return avatars.ProcessAvatar(ctx, p)
	}
	d.handlers[events.PartnerImport] = func(ctx context.Context, env events.Envelope) error {
		var p events.PartnerImportPayload
		if err := env.Decode(&p); err != nil {
			return err
		}
		return partners.ApplyImport(ctx, p)
	}
	d.handlers[events.PartnerExport] = func(ctx context.Context, env events.Envelope) error {
		var p events.PartnerExportPayload
		if err := env.Decode(&p); err != nil {
			return err
		}
		_, err := partners.RunExport(ctx, p)
		return err
	}
	return d
}

// Handle implements events.Handler. Unknown events are logged and
// acknowledged so they do not circulate forever.
func (d *Dispatcher) Handle(ctx context.Context, env events.Envelope) error {
	h, ok := d.handlers[env.Name]
	if !ok {
		logger.Warn("no handler for event", "event", env.Name, "id", env.ID)
		return nil
	}

	log := logger.With("event", env.Name, "id", env.ID)
	log.Debug("processing event")
	if err := h(ctx, env); err != nil {
		return fmt.Errorf("%s: %w", env.Name, err)
	}
	log.Debug("event processed")
	return nil
}
