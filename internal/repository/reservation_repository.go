package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/evently/internal/domain"
)

// ReservationFilter narrows reservation listings.
type ReservationFilter struct {
	ParticipantID *string
	EventID       *string
}

// ReservationRepository encapsulates reservation persistence.
// GetByID and List resolve the Event and Participant relations.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	UpdateStatus(ctx context.Context, reservation *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	FindByEventAndParticipant(ctx context.Context, eventID, participantID string, includeCanceled bool) (*domain.Reservation, error)
	CountActiveByEvent(ctx context.Context, eventID string) (int, error)
	CountByEventAndStatus(ctx context.Context, eventID string, status domain.ReservationStatus) (int, error)
	List(ctx context.Context, filter ReservationFilter) ([]domain.Reservation, error)
}

type reservationRepository struct {
	pool *pgxpool.Pool
}

// NewReservationRepository instantiates repository.
func NewReservationRepository(pool *pgxpool.Pool) ReservationRepository {
	return &reservationRepository{pool: pool}
}

const reservationJoinSelect = `
        SELECT r.id, r.status, r.event_id, r.participant_id, r.created_at, r.updated_at,
               e.id, e.title, e.description, e.date_time, e.location, e.max_capacity, e.status, e.admin_id,
               e.created_at, e.updated_at,
               u.id, u.email, u.first_name, u.last_name, u.role, u.created_at, u.updated_at
        FROM reservations r
        JOIN events e ON e.id = r.event_id
        JOIN users u ON u.id = r.participant_id`

func (r *reservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	const query = `
        INSERT INTO reservations (status, event_id, participant_id)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		reservation.Status,
		reservation.EventID,
		reservation.ParticipantID,
	).Scan(&reservation.ID, &reservation.CreatedAt, &reservation.UpdatedAt)
	return translate(err)
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, reservation *domain.Reservation) error {
	if !validID(reservation.ID) {
		return ErrNotFound
	}
	const query = `
        UPDATE reservations SET status=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query, reservation.Status, reservation.ID).Scan(&reservation.UpdatedAt)
	return translate(err)
}

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	res, err := scanReservation(r.pool.QueryRow(ctx, reservationJoinSelect+` WHERE r.id=$1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return res, nil
}

func (r *reservationRepository) FindByEventAndParticipant(ctx context.Context, eventID, participantID string, includeCanceled bool) (*domain.Reservation, error) {
	if !validID(eventID) || !validID(participantID) {
		return nil, ErrNotFound
	}
	query := reservationJoinSelect + ` WHERE r.event_id=$1 AND r.participant_id=$2`
	args := []any{eventID, participantID}
	if !includeCanceled {
		args = append(args, domain.ReservationStatusCanceled)
		query += ` AND r.status <> $3`
	}
	query += ` ORDER BY r.created_at DESC LIMIT 1`
	res, err := scanReservation(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(err)
	}
	return res, nil
}

func (r *reservationRepository) CountActiveByEvent(ctx context.Context, eventID string) (int, error) {
	const query = `SELECT COUNT(*) FROM reservations WHERE event_id=$1 AND status <> $2`
	var count int
	err := r.pool.QueryRow(ctx, query, eventID, domain.ReservationStatusCanceled).Scan(&count)
	return count, err
}

func (r *reservationRepository) CountByEventAndStatus(ctx context.Context, eventID string, status domain.ReservationStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM reservations WHERE event_id=$1 AND status=$2`
	var count int
	err := r.pool.QueryRow(ctx, query, eventID, status).Scan(&count)
	return count, err
}

func (r *reservationRepository) List(ctx context.Context, filter ReservationFilter) ([]domain.Reservation, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.ParticipantID != nil {
		if !validID(*filter.ParticipantID) {
			return []domain.Reservation{}, nil
		}
		args = append(args, *filter.ParticipantID)
		clauses = append(clauses, fmt.Sprintf("r.participant_id=$%d", len(args)))
	}
	if filter.EventID != nil {
		if !validID(*filter.EventID) {
			return []domain.Reservation{}, nil
		}
		args = append(args, *filter.EventID)
		clauses = append(clauses, fmt.Sprintf("r.event_id=$%d", len(args)))
	}
	query := fmt.Sprintf(`%s WHERE %s ORDER BY r.created_at DESC`, reservationJoinSelect, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *res)
	}
	return result, rows.Err()
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var (
		res   domain.Reservation
		event domain.Event
		user  domain.User
	)
	if err := row.Scan(
		&res.ID,
		&res.Status,
		&res.EventID,
		&res.ParticipantID,
		&res.CreatedAt,
		&res.UpdatedAt,
		&event.ID,
		&event.Title,
		&event.Description,
		&event.DateTime,
		&event.Location,
		&event.MaxCapacity,
		&event.Status,
		&event.AdminID,
		&event.CreatedAt,
		&event.UpdatedAt,
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	res.Event = &event
	res.Participant = &user
	return &res, nil
}
