package domain

import "time"

// ReservationStatus enumerates reservation lifecycle states.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusRefused   ReservationStatus = "REFUSED"
	ReservationStatusCanceled  ReservationStatus = "CANCELED"
)

// Valid reports whether s is a known reservation status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusRefused, ReservationStatusCanceled:
		return true
	}
	return false
}

// Active reports whether a reservation in this status counts against capacity.
func (s ReservationStatus) Active() bool {
	return s != ReservationStatusCanceled
}

// Reservation is a participant's claim on a seat at an event.
// Event and Participant are populated only by lookups that resolve relations.
type Reservation struct {
	ID            string
	Status        ReservationStatus
	EventID       string
	ParticipantID string
	Event         *Event
	Participant   *User
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReservationHistory is an immutable audit entry for a status change.
type ReservationHistory struct {
	ID            string
	ReservationID string
	ChangedByID   *string
	OldStatus     *ReservationStatus
	NewStatus     ReservationStatus
	CreatedAt     time.Time
}
