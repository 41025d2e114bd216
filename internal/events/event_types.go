package events

import (
	"time"

	"github.com/spec-kit/evently/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReservationCreated       EventType = "reservation_created"
	EventReservationStatusChanged EventType = "reservation_status_changed"
	EventReservationCanceled      EventType = "reservation_canceled"
	EventTicketIssued             EventType = "ticket_issued"
	EventEventStatusChanged       EventType = "event_status_changed"
)

// Event represents a domain event emitted by services.
// SubjectID is the reservation id, or the catalog event id for event_status_changed.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ReservationCreatedPayload payload.
type ReservationCreatedPayload struct {
	EventID       string `json:"event_id"`
	ParticipantID string `json:"participant_id"`
}

// ReservationStatusChangedPayload payload. Also used for cancellations.
type ReservationStatusChangedPayload struct {
	EventID       string                   `json:"event_id"`
	ParticipantID string                   `json:"participant_id"`
	OldStatus     domain.ReservationStatus `json:"old_status"`
	NewStatus     domain.ReservationStatus `json:"new_status"`
}

// TicketIssuedPayload carries enough detail for downstream consumers to act without a lookup.
type TicketIssuedPayload struct {
	TicketID         string    `json:"ticket_id"`
	ReservationID    string    `json:"reservation_id"`
	EventID          string    `json:"event_id"`
	EventTitle       string    `json:"event_title"`
	EventDate        time.Time `json:"event_date"`
	Location         string    `json:"location"`
	ParticipantID    string    `json:"participant_id"`
	ParticipantName  string    `json:"participant_name"`
	ParticipantEmail string    `json:"participant_email"`
}

// EventStatusChangedPayload payload.
type EventStatusChangedPayload struct {
	OldStatus domain.EventStatus `json:"old_status"`
	NewStatus domain.EventStatus `json:"new_status"`
}
