package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/evently/internal/events"
	"github.com/spec-kit/evently/internal/observability"
)

// ConfirmationPublisher forwards issued tickets to an external broker.
type ConfirmationPublisher interface {
	PublishConfirmation(ctx context.Context, payload events.TicketIssuedPayload) error
}

// NotificationService reacts to domain events: it logs them, counts them
// and forwards confirmations to the broker when one is configured.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	publisher  ConfirmationPublisher
}

// NewNotificationService creates the service. metrics and publisher may be nil.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics, publisher ConfirmationPublisher) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		publisher:  publisher,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventReservationCreated, n.handleReservationCreated)
	n.dispatcher.Subscribe(events.EventReservationStatusChanged, n.handleReservationStatusChanged)
	n.dispatcher.Subscribe(events.EventReservationCanceled, n.handleReservationStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketIssued, n.handleTicketIssued)
	n.dispatcher.Subscribe(events.EventEventStatusChanged, n.handleEventStatusChanged)
}

func (n *NotificationService) handleReservationCreated(_ context.Context, event events.Event) error {
	n.logger.Info("ReservationCreated", zap.String("reservation_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.metrics.RecordReservationTransition("PENDING")
	return nil
}

func (n *NotificationService) handleReservationStatusChanged(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("reservation_id", event.SubjectID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.ReservationStatusChangedPayload); ok {
		n.metrics.RecordReservationTransition(string(payload.NewStatus))
	}
	return nil
}

func (n *NotificationService) handleTicketIssued(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketIssued", zap.String("reservation_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.metrics.RecordTicketIssued()

	payload, ok := event.Payload.(events.TicketIssuedPayload)
	if !ok || n.publisher == nil {
		return nil
	}
	return n.publisher.PublishConfirmation(ctx, payload)
}

func (n *NotificationService) handleEventStatusChanged(_ context.Context, event events.Event) error {
	n.logger.Info("EventStatusChanged", zap.String("event_id", event.SubjectID), zap.Any("payload", event.Payload))
	return nil
}
