package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// ConfirmationHandler processes one decoded confirmation.
type ConfirmationHandler func(context.Context, ConfirmationMessage) error

// Consumer reads confirmation messages and hands them to a handler.
type Consumer struct {
	url     string
	queue   string
	handler ConfirmationHandler
	logger  *zap.Logger
}

// NewConsumer builds a consumer. A nil handler logs each message.
func NewConsumer(url, queue string, handler ConfirmationHandler, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Consumer{url: url, queue: queue, handler: handler, logger: logger}
	if c.handler == nil {
		c.handler = c.logConfirmation
	}
	return c
}

// Run consumes until ctx is done, reconnecting with exponential backoff.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := initialBackoff
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warn("confirmation consumer: dial failed",
				zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = initialBackoff

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("confirmation consumer: loop ended, reconnecting", zap.Error(err))
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
		c.logger.Warn("confirmation consumer: set QoS failed", zap.Error(err))
	}
	if err := declareQueue(ch, c.queue); err != nil {
		return err
	}

	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

// handle rejects bad messages without requeueing so they cannot loop.
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	msg, err := decodeConfirmation(d.Body)
	if err == nil {
		err = c.handler(ctx, msg)
	}
	if err != nil {
		c.logger.Warn("confirmation consumer: handle message failed", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (c *Consumer) logConfirmation(_ context.Context, msg ConfirmationMessage) error {
	c.logger.Info("reservation confirmed",
		zap.String("reservation_id", msg.ReservationID),
		zap.String("ticket_id", msg.TicketID),
		zap.String("event", msg.EventTitle),
		zap.String("event_date", msg.EventDate),
		zap.String("participant", msg.ParticipantName),
		zap.String("confirmed_at", msg.ConfirmedAt))
	return nil
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
