package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/evently/internal/domain"
	"github.com/spec-kit/evently/internal/events"
	"github.com/spec-kit/evently/internal/repository"
	apperrors "github.com/spec-kit/evently/pkg/util"
)

// TicketRenderer turns a resolved ticket into a downloadable document.
type TicketRenderer interface {
	Render(ticket *domain.Ticket) ([]byte, error)
	ContentType() string
}

// TicketDocument is a rendered ticket ready to be sent to the client.
type TicketDocument struct {
	FileName    string
	ContentType string
	Data        []byte
}

// TicketService issues and serves tickets for confirmed reservations.
type TicketService struct {
	tickets    repository.TicketRepository
	renderer   TicketRenderer
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, renderer TicketRenderer, dispatcher events.Dispatcher, logger *zap.Logger) *TicketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{tickets: tickets, renderer: renderer, dispatcher: dispatcher, logger: logger}
}

// Issue creates the ticket of a CONFIRMED reservation.
// A reservation that already has a ticket gets the existing one back.
func (s *TicketService) Issue(ctx context.Context, reservation *domain.Reservation) (*domain.Ticket, error) {
	if reservation == nil {
		return nil, apperrors.NewNotFound("reservation", nil)
	}
	if reservation.Status != domain.ReservationStatusConfirmed {
		return nil, apperrors.NewInvalidState("tickets are only issued for confirmed reservations", map[string]any{
			"reservation_id": reservation.ID,
			"status":         reservation.Status,
		})
	}

	existing, err := s.tickets.GetByReservationID(ctx, reservation.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}

	ticket := &domain.Ticket{ReservationID: reservation.ID}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			existing, getErr := s.tickets.GetByReservationID(ctx, reservation.ID)
			if getErr != nil {
				return nil, apperrors.NewInternalError(getErr)
			}
			return existing, nil
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("issue ticket for reservation %s: %w", reservation.ID, err))
	}
	ticket.Reservation = reservation

	s.logger.Info("ticket issued", zap.String("ticket_id", ticket.ID), zap.String("reservation_id", reservation.ID))
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventTicketIssued,
		SubjectID: reservation.ID,
		Payload:   ticketIssuedPayload(ticket, reservation),
	})
	return ticket, nil
}

// GetForParticipant returns the ticket of a reservation owned by participantID.
// Tickets of other participants are reported as not found.
func (s *TicketService) GetForParticipant(ctx context.Context, participantID, reservationID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByReservationID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"reservation_id": reservationID})
		}
		return nil, apperrors.NewInternalError(err)
	}
	if ticket.Reservation == nil || ticket.Reservation.ParticipantID != participantID {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"reservation_id": reservationID})
	}
	return ticket, nil
}

// Download renders the participant's ticket.
func (s *TicketService) Download(ctx context.Context, participantID, reservationID string) (*TicketDocument, error) {
	ticket, err := s.GetForParticipant(ctx, participantID, reservationID)
	if err != nil {
		return nil, err
	}
	if s.renderer == nil {
		return nil, apperrors.NewInternalError(errors.New("ticket renderer not configured"))
	}
	data, err := s.renderer.Render(ticket)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &TicketDocument{
		FileName:    fmt.Sprintf("ticket-%s.pdf", ticket.ID),
		ContentType: s.renderer.ContentType(),
		Data:        data,
	}, nil
}

func ticketIssuedPayload(ticket *domain.Ticket, reservation *domain.Reservation) events.TicketIssuedPayload {
	payload := events.TicketIssuedPayload{
		TicketID:      ticket.ID,
		ReservationID: reservation.ID,
		EventID:       reservation.EventID,
		ParticipantID: reservation.ParticipantID,
	}
	if reservation.Event != nil {
		payload.EventTitle = reservation.Event.Title
		payload.EventDate = reservation.Event.DateTime
		payload.Location = reservation.Event.Location
	}
	if reservation.Participant != nil {
		payload.ParticipantName = reservation.Participant.FullName()
		payload.ParticipantEmail = reservation.Participant.Email
	}
	return payload
}
