// Package broker publishes and consumes reservation confirmation messages over AMQP.
package broker

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/evently/internal/events"
)

// ConfirmationMessage is published when a reservation is confirmed and its ticket issued.
// It carries enough for consumers to notify the participant without querying the database.
type ConfirmationMessage struct {
	TicketID         string `json:"ticket_id"`
	ReservationID    string `json:"reservation_id"`
	EventID          string `json:"event_id"`
	EventTitle       string `json:"event_title"`
	EventDate        string `json:"event_date"`
	Location         string `json:"location"`
	ParticipantID    string `json:"participant_id"`
	ParticipantName  string `json:"participant_name"`
	ParticipantEmail string `json:"participant_email"`
	ConfirmedAt      string `json:"confirmed_at"`
}

// NewConfirmationMessage maps an issued ticket to its wire form.
func NewConfirmationMessage(payload events.TicketIssuedPayload, confirmedAt time.Time) ConfirmationMessage {
	msg := ConfirmationMessage{
		TicketID:         payload.TicketID,
		ReservationID:    payload.ReservationID,
		EventID:          payload.EventID,
		EventTitle:       payload.EventTitle,
		Location:         payload.Location,
		ParticipantID:    payload.ParticipantID,
		ParticipantName:  payload.ParticipantName,
		ParticipantEmail: payload.ParticipantEmail,
		ConfirmedAt:      confirmedAt.UTC().Format(time.RFC3339),
	}
	if !payload.EventDate.IsZero() {
		msg.EventDate = payload.EventDate.UTC().Format(time.RFC3339)
	}
	return msg
}

func decodeConfirmation(body []byte) (ConfirmationMessage, error) {
	var msg ConfirmationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, fmt.Errorf("unmarshal: %w", err)
	}
	if msg.ReservationID == "" || msg.TicketID == "" {
		return msg, errors.New("message missing reservation or ticket id")
	}
	return msg, nil
}
