package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/evently/internal/config"
	"github.com/spec-kit/evently/internal/domain"
	"github.com/spec-kit/evently/internal/events"
	"github.com/spec-kit/evently/internal/repository"
	apperrors "github.com/spec-kit/evently/pkg/util"
)

// ReservationService runs reservation admission and the reservation lifecycle.
//
// Admission and confirmation read a count and then write. Without an admission
// lock two concurrent requests for the last seat can both pass the check.
type ReservationService struct {
	reservations repository.ReservationRepository
	events       repository.EventRepository
	history      repository.ReservationHistoryRepository
	tickets      *TicketService
	dispatcher   events.Dispatcher
	locker       Locker
	policy       config.ReservationConfig
	logger       *zap.Logger
}

// ReservationDependencies bundles collaborators for the reservation service.
type ReservationDependencies struct {
	ReservationRepo repository.ReservationRepository
	EventRepo       repository.EventRepository
	HistoryRepo     repository.ReservationHistoryRepository
	Tickets         *TicketService
	Dispatcher      events.Dispatcher
	// Locker is only used when Policy.AdmissionLock is set.
	Locker Locker
	Policy config.ReservationConfig
	Logger *zap.Logger
}

// NewReservationService constructs the service.
func NewReservationService(deps ReservationDependencies) *ReservationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var locker Locker = nopLocker{}
	if deps.Policy.AdmissionLock && deps.Locker != nil {
		locker = deps.Locker
	}
	policy := deps.Policy
	if policy.DuplicatePolicy == "" {
		policy.DuplicatePolicy = config.DuplicatePolicyActive
	}
	return &ReservationService{
		reservations: deps.ReservationRepo,
		events:       deps.EventRepo,
		history:      deps.HistoryRepo,
		tickets:      deps.Tickets,
		dispatcher:   deps.Dispatcher,
		locker:       locker,
		policy:       policy,
		logger:       logger,
	}
}

// Create admits participantID to eventID with a PENDING reservation.
func (s *ReservationService) Create(ctx context.Context, participantID, eventID string) (*domain.Reservation, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, mapRepoError(err, "event", eventID)
	}
	if event.Status != domain.EventStatusPublished {
		return nil, apperrors.NewInvalidState("event is not open for reservations", map[string]any{
			"event_id": eventID,
			"status":   event.Status,
		})
	}

	release, err := s.lock(ctx, eventID)
	if err != nil {
		return nil, err
	}
	defer release()

	includeCanceled := s.policy.DuplicatePolicy == config.DuplicatePolicyAny
	existing, err := s.reservations.FindByEventAndParticipant(ctx, eventID, participantID, includeCanceled)
	switch {
	case err == nil:
		return nil, apperrors.NewConflict("participant already has a reservation for this event", map[string]any{
			"event_id":       eventID,
			"reservation_id": existing.ID,
			"status":         existing.Status,
		})
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.NewInternalError(err)
	}

	active, err := s.reservations.CountActiveByEvent(ctx, eventID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if active >= event.MaxCapacity {
		return nil, apperrors.NewInvalidState("event full", map[string]any{
			"event_id":     eventID,
			"max_capacity": event.MaxCapacity,
			"active":       active,
		})
	}

	reservation := &domain.Reservation{
		Status:        domain.ReservationStatusPending,
		EventID:       eventID,
		ParticipantID: participantID,
	}
	if err := s.reservations.Create(ctx, reservation); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("participant already has a reservation for this event", map[string]any{"event_id": eventID})
		}
		return nil, apperrors.NewInternalError(err)
	}
	reservation.Event = event

	s.recordStatusChange(ctx, participantID, reservation.ID, nil, reservation.Status)
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventReservationCreated,
		SubjectID: reservation.ID,
		ActorID:   strPtr(participantID),
		Payload:   events.ReservationCreatedPayload{EventID: eventID, ParticipantID: participantID},
	})
	return reservation, nil
}

// UpdateStatus applies an administrative status change.
// Confirming issues the ticket; if that fails the reservation stays CONFIRMED and the error is returned with it.
func (s *ReservationService) UpdateStatus(ctx context.Context, actor Actor, id string, target domain.ReservationStatus) (*domain.Reservation, error) {
	if !target.Valid() || target == domain.ReservationStatusPending {
		return nil, apperrors.NewValidationError("invalid reservation status", map[string]any{
			"status": "must be one of CONFIRMED, REFUSED, CANCELED",
		})
	}

	reservation, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.policy.StrictTransitions && reservation.Status != domain.ReservationStatusPending {
		return nil, apperrors.NewInvalidState("only pending reservations can change status", map[string]any{
			"reservation_id": id,
			"status":         reservation.Status,
		})
	}

	oldStatus := reservation.Status
	if target == domain.ReservationStatusConfirmed {
		if err := s.confirm(ctx, reservation); err != nil {
			return nil, err
		}
	} else {
		reservation.Status = target
		if err := s.reservations.UpdateStatus(ctx, reservation); err != nil {
			return nil, mapRepoError(err, "reservation", id)
		}
	}

	s.recordStatusChange(ctx, actor.ID, reservation.ID, &oldStatus, target)
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventReservationStatusChanged,
		SubjectID: reservation.ID,
		ActorID:   strPtr(actor.ID),
		Payload: events.ReservationStatusChangedPayload{
			EventID:       reservation.EventID,
			ParticipantID: reservation.ParticipantID,
			OldStatus:     oldStatus,
			NewStatus:     target,
		},
	})

	if target == domain.ReservationStatusConfirmed && s.tickets != nil {
		if _, err := s.tickets.Issue(ctx, reservation); err != nil {
			s.logger.Error("ticket issuance failed after confirmation",
				zap.String("reservation_id", reservation.ID),
				zap.Error(err))
			return reservation, err
		}
	}
	return reservation, nil
}

// Cancel sets the reservation to CANCELED. Only admins and the owning participant may cancel.
// Canceling is unconditional, so repeating it succeeds.
func (s *ReservationService) Cancel(ctx context.Context, actor Actor, id string) (*domain.Reservation, error) {
	reservation, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && reservation.ParticipantID != actor.ID {
		return nil, apperrors.NewForbidden("only the reservation owner or an admin can cancel it")
	}

	oldStatus := reservation.Status
	reservation.Status = domain.ReservationStatusCanceled
	if err := s.reservations.UpdateStatus(ctx, reservation); err != nil {
		return nil, mapRepoError(err, "reservation", id)
	}

	s.recordStatusChange(ctx, actor.ID, reservation.ID, &oldStatus, reservation.Status)
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventReservationCanceled,
		SubjectID: reservation.ID,
		ActorID:   strPtr(actor.ID),
		Payload: events.ReservationStatusChangedPayload{
			EventID:       reservation.EventID,
			ParticipantID: reservation.ParticipantID,
			OldStatus:     oldStatus,
			NewStatus:     reservation.Status,
		},
	})
	return reservation, nil
}

// Get returns a reservation with its event and participant.
func (s *ReservationService) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.get(ctx, id)
}

// ListAll returns every reservation, newest first.
func (s *ReservationService) ListAll(ctx context.Context) ([]domain.Reservation, error) {
	list, err := s.reservations.List(ctx, repository.ReservationFilter{})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return list, nil
}

// ListByParticipant returns the participant's reservations, newest first.
func (s *ReservationService) ListByParticipant(ctx context.Context, participantID string) ([]domain.Reservation, error) {
	list, err := s.reservations.List(ctx, repository.ReservationFilter{ParticipantID: &participantID})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return list, nil
}

// History returns the status audit trail of a reservation, oldest first.
func (s *ReservationService) History(ctx context.Context, id string) ([]domain.ReservationHistory, error) {
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.ReservationHistory{}, nil
	}
	entries, err := s.history.ListByReservation(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return entries, nil
}

func (s *ReservationService) confirm(ctx context.Context, reservation *domain.Reservation) error {
	event := reservation.Event
	if event == nil {
		loaded, err := s.events.GetByID(ctx, reservation.EventID)
		if err != nil {
			return mapRepoError(err, "event", reservation.EventID)
		}
		event = loaded
		reservation.Event = loaded
	}

	release, err := s.lock(ctx, reservation.EventID)
	if err != nil {
		return err
	}
	defer release()

	confirmed, err := s.reservations.CountByEventAndStatus(ctx, reservation.EventID, domain.ReservationStatusConfirmed)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if confirmed >= event.MaxCapacity {
		return apperrors.NewInvalidState("event at capacity", map[string]any{
			"event_id":     reservation.EventID,
			"max_capacity": event.MaxCapacity,
			"confirmed":    confirmed,
		})
	}

	reservation.Status = domain.ReservationStatusConfirmed
	if err := s.reservations.UpdateStatus(ctx, reservation); err != nil {
		return mapRepoError(err, "reservation", reservation.ID)
	}
	return nil
}

func (s *ReservationService) get(ctx context.Context, id string) (*domain.Reservation, error) {
	reservation, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "reservation", id)
	}
	return reservation, nil
}

func (s *ReservationService) lock(ctx context.Context, eventID string) (func(), error) {
	release, err := s.locker.Acquire(ctx, "event:"+eventID)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("admission lock for event %s: %w", eventID, err))
	}
	return release, nil
}

// recordStatusChange appends an audit entry. The status change is already stored, so failures are only logged.
func (s *ReservationService) recordStatusChange(ctx context.Context, actorID, reservationID string, oldStatus *domain.ReservationStatus, newStatus domain.ReservationStatus) {
	if s.history == nil {
		return
	}
	entry := &domain.ReservationHistory{
		ReservationID: reservationID,
		ChangedByID:   strPtr(actorID),
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record reservation history",
			zap.String("reservation_id", reservationID),
			zap.Error(err))
	}
}
