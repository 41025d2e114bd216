package domain

import "time"

// EventStatus enumerates the publish lifecycle of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "DRAFT"
	EventStatusPublished EventStatus = "PUBLISHED"
	EventStatusCanceled  EventStatus = "CANCELED"
)

// Valid reports whether s is a known event status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusCanceled:
		return true
	}
	return false
}

// Event is a schedulable activity with a fixed seat capacity.
type Event struct {
	ID          string
	Title       string
	Description string
	DateTime    time.Time
	Location    string
	MaxCapacity int
	Status      EventStatus
	AdminID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
