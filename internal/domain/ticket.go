package domain

import "time"

// Ticket is the proof of a confirmed reservation. One per reservation.
type Ticket struct {
	ID            string
	ReservationID string
	Reservation   *Reservation
	CreatedAt     time.Time
}
