package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/evently/internal/events"
)

// Publisher sends confirmation messages to a durable queue.
// Each publish opens its own connection, which is enough for the confirmation rate.
type Publisher struct {
	url     string
	queue   string
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// DefaultPublishTimeout bounds the connect and handshake of a single publish.
const DefaultPublishTimeout = 3 * time.Second

// NewPublisher builds a publisher for queue on the broker at url.
func NewPublisher(url, queue string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{url: url, queue: queue, timeout: DefaultPublishTimeout, logger: logger, now: time.Now}
}

// WithTimeout sets the connect and handshake bound. Non-positive values keep the default.
func (p *Publisher) WithTimeout(d time.Duration) *Publisher {
	if d > 0 {
		p.timeout = d
	}
	return p
}

// dialTimeout is the publisher timeout, shortened to whatever remains of ctx.
func (p *Publisher) dialTimeout(ctx context.Context) time.Duration {
	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := p.dialTimeout(ctx)
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	return amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		// the deadline covers the handshake and is cleared once the connection opens
		Dial: amqp.DefaultDial(timeout),
	})
}

// PublishConfirmation publishes the issued ticket as a persistent JSON message.
func (p *Publisher) PublishConfirmation(ctx context.Context, payload events.TicketIssuedPayload) error {
	if p == nil || p.url == "" {
		return errors.New("broker url not configured")
	}
	body, err := json.Marshal(NewConfirmationMessage(payload, p.now()))
	if err != nil {
		return fmt.Errorf("marshal confirmation: %w", err)
	}

	conn, err := p.dial(ctx)
	if err != nil {
		p.logger.Warn("amqp dial failed", zap.Error(err))
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := declareQueue(ch, p.queue); err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		MessageId:    payload.TicketID,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.logger.Warn("amqp publish failed", zap.String("queue", p.queue), zap.Error(err))
		return fmt.Errorf("publish confirmation: %w", err)
	}
	p.logger.Debug("confirmation published",
		zap.String("queue", p.queue),
		zap.String("reservation_id", payload.ReservationID))
	return nil
}

func declareQueue(ch *amqp.Channel, name string) error {
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare %s: %w", name, err)
	}
	return nil
}
