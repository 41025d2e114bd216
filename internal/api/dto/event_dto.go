package dto

import (
	"time"

	"github.com/spec-kit/evently/internal/domain"
)

// EventRequest payload for creating or replacing an event.
// Status is only honoured on creation.
type EventRequest struct {
	Title       string             `json:"title" validate:"required,min=3,max=200"`
	Description string             `json:"description" validate:"required"`
	DateTime    string             `json:"dateTime" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Location    string             `json:"location" validate:"required"`
	MaxCapacity int                `json:"maxCapacity" validate:"required,min=1"`
	Status      domain.EventStatus `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED CANCELED"`
}

// ParsedDateTime returns DateTime as a time. Call after Validate.
func (r EventRequest) ParsedDateTime() (time.Time, error) {
	return time.Parse(time.RFC3339, r.DateTime)
}

// EventStatusRequest payload for event status transitions.
type EventStatusRequest struct {
	Status domain.EventStatus `json:"status" validate:"required,oneof=DRAFT PUBLISHED CANCELED"`
}

// EventResponse response.
type EventResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	DateTime    time.Time          `json:"dateTime"`
	Location    string             `json:"location"`
	MaxCapacity int                `json:"maxCapacity"`
	Status      domain.EventStatus `json:"status"`
	AdminID     string             `json:"adminId"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// NewEventResponse maps an event.
func NewEventResponse(e *domain.Event) EventResponse {
	return EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		DateTime:    e.DateTime,
		Location:    e.Location,
		MaxCapacity: e.MaxCapacity,
		Status:      e.Status,
		AdminID:     e.AdminID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// NewEventList maps a slice of events.
func NewEventList(list []domain.Event) []EventResponse {
	out := make([]EventResponse, 0, len(list))
	for i := range list {
		out = append(out, NewEventResponse(&list[i]))
	}
	return out
}
