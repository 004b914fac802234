package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"retailorders/internal/events"
	"retailorders/internal/logger"

	amqp "github.com/streadway/amqp"
)

// Client holds the RabbitMQ connection and its channels.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel // publishing
	queue   string
	mu      sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient connects to RabbitMQ, opens a channel and declares the durable
// task queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareQueue(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("rabbitmq client connected", "queue", cfg.Queue)

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return nil
}

// Close closes the channel and the connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish implements events.Publisher. Messages are persistent so they
// survive a broker restart.
func (c *Client) Publish(ctx context.Context, name events.Name, payload any) error {
	env, err := events.NewEnvelope(name, payload)
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    env.ID,
			Type:         string(env.Name),
			Timestamp:    env.OccurredAt,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", name, err)
	}

	logger.Debug("event published", "event", name, "id", env.ID)
	return nil
}

// ConsumeEvents starts delivering queued envelopes to handler on a dedicated
// channel until ctx is cancelled. Messages are acknowledged after the
// handler succeeds; a failure is requeued once and dropped on the second
// failure, so handlers must tolerate being run twice.
func (c *Client) ConsumeEvents(ctx context.Context, handler events.Handler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open consumer channel: %w", err)
	}
	if err := declareQueue(ch, c.queue); err != nil {
		ch.Close()
		return err
	}
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		return fmt.Errorf("failed to set qos: %w", err)
	}

	msgs, err := ch.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	logger.Info("waiting for events", "queue", c.queue)

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Warn("consumer channel closed", "queue", c.queue)
					return
				}
				handleDelivery(ctx, msg, handler)
			}
		}
	}()

	return nil
}

func handleDelivery(ctx context.Context, msg amqp.Delivery, handler events.Handler) {
	var env events.Envelope
	if err := json.Unmarshal(msg.Body, &env); err != nil {
		logger.Error("dropping undecodable message", "tag", msg.DeliveryTag, "error", err)
		if nackErr := msg.Nack(false, false); nackErr != nil {
			logger.Error("failed to nack message", "tag", msg.DeliveryTag, "error", nackErr)
		}
		return
	}

	if err := handler(ctx, env); err != nil {
		requeue := !msg.Redelivered
		logger.Error("error processing event", "event", env.Name, "id", env.ID, "requeue", requeue, "error", err)
		if nackErr := msg.Nack(false, requeue); nackErr != nil {
			logger.Error("failed to nack message", "tag", msg.DeliveryTag, "error", nackErr)
		}
		return
	}

	if ackErr := msg.Ack(false); ackErr != nil {
		logger.Error("failed to ack message", "tag", msg.DeliveryTag, "error", ackErr)
	}
}
