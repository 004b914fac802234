package events

import (
	"context"
	"sync"

	"retailorders/internal/logger"
)

// Handler executes one envelope.
type Handler func(ctx context.Context, env Envelope) error

// LocalBus dispatches events inside the process. It is used when no broker
// is configured and in tests. Handler failures are logged, never returned to
// the publisher, matching the fire-and-forget contract of the queue.
type LocalBus struct {
	mu      sync.RWMutex
	handler Handler
	async   bool
	wg      sync.WaitGroup
}

// NewLocalBus creates a bus. With async set, every event runs in its own
// goroutine; otherwise Publish runs the handler before returning.
func NewLocalBus(async bool) *LocalBus {
	return &LocalBus{async: async}
}

// SetHandler installs the dispatcher. Events published before a handler is
// set are dropped with a warning.
func (b *LocalBus) SetHandler(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = h
}

// Publish implements Publisher.
func (b *LocalBus) Publish(ctx context.Context, name Name, payload any) error {
	env, err := NewEnvelope(name, payload)
	if err != nil {
		return err
	}

	b.mu.RLock()
	h := b.handler
	b.mu.RUnlock()
	if h == nil {
		logger.Warn("no handler installed, dropping event", "event", name, "id", env.ID)
		return nil
	}

	// The request context ends with the response; the event must outlive it.
	ctx = context.WithoutCancel(ctx)
	if !b.async {
		b.run(ctx, h, env)
		return nil
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.run(ctx, h, env)
	}()
	return nil
}

// Wait blocks until all asynchronously published events have finished.
func (b *LocalBus) Wait() {
	b.wg.Wait()
}

func (b *LocalBus) run(ctx context.Context, h Handler, env Envelope) {
	if err := h(ctx, env); err != nil {
		logger.Error("event handler failed", "event", env.Name, "id", env.ID, "error", err)
	}
}
