package dto

import (
	"time"

	"github.com/spec-kit/evently/internal/domain"
)

// CreateReservationRequest payload.
type CreateReservationRequest struct {
	EventID string `json:"eventId" validate:"required,uuid"`
}

// ReservationStatusRequest payload for administrative transitions.
type ReservationStatusRequest struct {
	Status domain.ReservationStatus `json:"status" validate:"required,oneof=CONFIRMED REFUSED CANCELED"`
}

// ReservationResponse response.
type ReservationResponse struct {
	ID            string                   `json:"id"`
	Status        domain.ReservationStatus `json:"status"`
	EventID       string                   `json:"eventId"`
	ParticipantID string                   `json:"participantId"`
	Event         *EventResponse           `json:"event,omitempty"`
	Participant   *UserResponse            `json:"participant,omitempty"`
	CreatedAt     time.Time                `json:"createdAt"`
	UpdatedAt     time.Time                `json:"updatedAt"`
}

// NewReservationResponse maps a reservation with whatever relations are loaded.
func NewReservationResponse(r *domain.Reservation) ReservationResponse {
	resp := ReservationResponse{
		ID:            r.ID,
		Status:        r.Status,
		EventID:       r.EventID,
		ParticipantID: r.ParticipantID,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.Event != nil {
		ev := NewEventResponse(r.Event)
		resp.Event = &ev
	}
	if r.Participant != nil {
		p := NewUserResponse(r.Participant)
		resp.Participant = &p
	}
	return resp
}

// NewReservationList maps a slice of reservations.
func NewReservationList(list []domain.Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(list))
	for i := range list {
		out = append(out, NewReservationResponse(&list[i]))
	}
	return out
}

// HistoryEntryResponse is one reservation audit entry.
type HistoryEntryResponse struct {
	ID        string                    `json:"id"`
	ChangedBy *string                   `json:"changedBy"`
	OldStatus *domain.ReservationStatus `json:"oldStatus"`
	NewStatus domain.ReservationStatus  `json:"newStatus"`
	CreatedAt time.Time                 `json:"createdAt"`
}

// NewHistoryList maps audit entries.
func NewHistoryList(entries []domain.ReservationHistory) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntryResponse{
			ID:        e.ID,
			ChangedBy: e.ChangedByID,
			OldStatus: e.OldStatus,
			NewStatus: e.NewStatus,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}
