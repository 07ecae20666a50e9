package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Handler processes one message body.  A returned error rejects the
// message without requeue.
type Handler func(body []byte) error

// Consumer reads the lifecycle queue and hands each delivery to a Handler.
// It reconnects with exponential backoff until the context is cancelled.
type Consumer struct {
	url     string
	queue   string
	handler Handler
	log     zerolog.Logger
}

// NewConsumer returns a consumer for queue on the broker at url.
func NewConsumer(url, queue string, h Handler, log zerolog.Logger) *Consumer {
	return &Consumer{url: url, queue: queue, handler: h, log: log.With().Str("component", "consumer").Logger()}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("failed to dial broker")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn().Err(err).Msg("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn().Err(err).Msg("set QoS failed")
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.log.Info().Str("queue", c.queue).Msg("consuming")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handler(d.Body); err != nil {
				c.log.Error().Err(err).Msg("handle message failed")
				_ = d.Nack(false, false) // do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// AuditLog appends one JSON line per lifecycle event.
type AuditLog struct {
	mu  sync.Mutex
	out zerolog.Logger
}

// NewAuditLog writes to w.
func NewAuditLog(w io.Writer) *AuditLog {
	return &AuditLog{out: zerolog.New(w).With().Timestamp().Logger()}
}

// OpenAuditLog opens (creating directories as needed) the file at path in
// append mode.  The caller closes the returned file.
func OpenAuditLog(path string) (*AuditLog, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open audit log: %w", err)
	}
	return NewAuditLog(f), f, nil
}

// Handle decodes a LifecycleEvent and records it.  Payloads without a type
// or booking id are rejected.
func (a *AuditLog) Handle(body []byte) error {
	var ev LifecycleEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.BookingID == 0 {
		return errors.New("event missing type or booking_id")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	e := a.out.Info().
		Str("event", ev.Type).
		Uint64("booking_id", ev.BookingID).
		Uint64("service_id", ev.ServiceID).
		Uint64("customer_id", ev.CustomerID).
		Uint64("professional_id", ev.ProfessionalID).
		Time("occurred_at", ev.OccurredAt)
	if ev.Status != "" {
		e = e.Str("status", ev.Status)
	}
	if ev.ReviewID != 0 {
		e = e.Uint64("review_id", ev.ReviewID).Int("rating", ev.Rating)
	}
	e.Msg("lifecycle")
	return nil
}
