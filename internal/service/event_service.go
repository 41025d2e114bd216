package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/evently/internal/domain"
	"github.com/spec-kit/evently/internal/events"
	"github.com/spec-kit/evently/internal/repository"
	apperrors "github.com/spec-kit/evently/pkg/util"
)

// EventService manages the event catalog.
type EventService struct {
	events     repository.EventRepository
	dispatcher events.Dispatcher
}

// EventInput carries the editable fields of an event.
// Status is only read on creation; an empty value means DRAFT.
type EventInput struct {
	Title       string
	Description string
	DateTime    time.Time
	Location    string
	MaxCapacity int
	Status      domain.EventStatus
}

// NewEventService constructs the service.
func NewEventService(repo repository.EventRepository, dispatcher events.Dispatcher) *EventService {
	return &EventService{events: repo, dispatcher: dispatcher}
}

// Create stores a new event owned by adminID.
func (s *EventService) Create(ctx context.Context, adminID string, input EventInput) (*domain.Event, error) {
	status := input.Status
	if status == "" {
		status = domain.EventStatusDraft
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid event status", map[string]any{"status": status})
	}
	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	event := &domain.Event{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		DateTime:    input.DateTime,
		Location:    strings.TrimSpace(input.Location),
		MaxCapacity: input.MaxCapacity,
		Status:      status,
		AdminID:     adminID,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return event, nil
}

// Update replaces the descriptive fields and capacity of an event. Status is left as is.
func (s *EventService) Update(ctx context.Context, id string, input EventInput) (*domain.Event, error) {
	if err := validateEventInput(input); err != nil {
		return nil, err
	}
	event, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	event.Title = strings.TrimSpace(input.Title)
	event.Description = strings.TrimSpace(input.Description)
	event.DateTime = input.DateTime
	event.Location = strings.TrimSpace(input.Location)
	event.MaxCapacity = input.MaxCapacity
	if err := s.events.Update(ctx, event); err != nil {
		return nil, mapRepoError(err, "event", id)
	}
	return event, nil
}

// UpdateStatus moves an event to a new lifecycle status. CANCELED events are terminal.
// Reservations for the event are not touched.
func (s *EventService) UpdateStatus(ctx context.Context, actorID, id string, status domain.EventStatus) (*domain.Event, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid event status", map[string]any{"status": status})
	}
	event, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Status == domain.EventStatusCanceled {
		return nil, apperrors.NewInvalidState("canceled events cannot change status", map[string]any{
			"event_id": id,
			"status":   event.Status,
		})
	}

	oldStatus := event.Status
	event.Status = status
	if err := s.events.Update(ctx, event); err != nil {
		return nil, mapRepoError(err, "event", id)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventEventStatusChanged,
		SubjectID: event.ID,
		ActorID:   strPtr(actorID),
		Payload:   events.EventStatusChangedPayload{OldStatus: oldStatus, NewStatus: status},
	})
	return event, nil
}

// Get returns any event by id.
func (s *EventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	return s.get(ctx, id)
}

// GetPublished returns the event only when it is PUBLISHED.
func (s *EventService) GetPublished(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Status != domain.EventStatusPublished {
		return nil, apperrors.NewNotFound("event", map[string]any{"event_id": id})
	}
	return event, nil
}

// ListAll returns every event, newest first.
func (s *EventService) ListAll(ctx context.Context) ([]domain.Event, error) {
	list, err := s.events.List(ctx, repository.EventFilter{})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return list, nil
}

// ListPublished returns PUBLISHED events ordered by date.
func (s *EventService) ListPublished(ctx context.Context) ([]domain.Event, error) {
	list, err := s.events.List(ctx, repository.EventFilter{
		Statuses: []domain.EventStatus{domain.EventStatusPublished},
		ByDate:   true,
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return list, nil
}

func (s *EventService) get(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "event", id)
	}
	return event, nil
}

func validateEventInput(input EventInput) error {
	details := map[string]any{}
	if len(strings.TrimSpace(input.Title)) < 3 {
		details["title"] = "must be at least 3 characters"
	}
	if input.DateTime.IsZero() {
		details["dateTime"] = "is required"
	}
	if input.MaxCapacity < 1 {
		details["maxCapacity"] = "must be at least 1"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid event", details)
	}
	return nil
}

// mapRepoError turns repository sentinels into domain errors.
func mapRepoError(err error, resource, id string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, map[string]any{resource + "_id": id})
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict(resource+" already exists", map[string]any{resource + "_id": id})
	default:
		return apperrors.NewInternalError(err)
	}
}
