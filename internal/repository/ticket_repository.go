package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/evently/internal/domain"
)

// TicketRepository stores issued tickets.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// GetByReservationID resolves the reservation with its event and participant.
	GetByReservationID(ctx context.Context, reservationID string) (*domain.Ticket, error)
}

type ticketRepository struct {
	pool         *pgxpool.Pool
	reservations ReservationRepository
}

// NewTicketRepository builds repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool, reservations: NewReservationRepository(pool)}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (reservation_id)
        VALUES ($1)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query, ticket.ReservationID).Scan(&ticket.ID, &ticket.CreatedAt)
	return translate(err)
}

func (r *ticketRepository) GetByReservationID(ctx context.Context, reservationID string) (*domain.Ticket, error) {
	if !validID(reservationID) {
		return nil, ErrNotFound
	}
	const query = `SELECT id, reservation_id, created_at FROM tickets WHERE reservation_id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, reservationID).Scan(
		&ticket.ID,
		&ticket.ReservationID,
		&ticket.CreatedAt,
	); err != nil {
		return nil, translate(err)
	}
	res, err := r.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	ticket.Reservation = res
	return &ticket, nil
}
