package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/evently/internal/domain"
)

// ReservationHistoryRepository stores reservation audit entries.
type ReservationHistoryRepository interface {
	Create(ctx context.Context, history *domain.ReservationHistory) error
	ListByReservation(ctx context.Context, reservationID string) ([]domain.ReservationHistory, error)
}

type reservationHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewReservationHistoryRepository builds repository.
func NewReservationHistoryRepository(pool *pgxpool.Pool) ReservationHistoryRepository {
	return &reservationHistoryRepository{pool: pool}
}

func (r *reservationHistoryRepository) Create(ctx context.Context, history *domain.ReservationHistory) error {
	const query = `
        INSERT INTO reservation_history (reservation_id, changed_by_id, old_status, new_status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		history.ReservationID,
		history.ChangedByID,
		history.OldStatus,
		history.NewStatus,
	).Scan(&history.ID, &history.CreatedAt)
}

func (r *reservationHistoryRepository) ListByReservation(ctx context.Context, reservationID string) ([]domain.ReservationHistory, error) {
	if !validID(reservationID) {
		return []domain.ReservationHistory{}, nil
	}
	const query = `
        SELECT id, reservation_id, changed_by_id, old_status, new_status, created_at
        FROM reservation_history WHERE reservation_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ReservationHistory{}
	for rows.Next() {
		var history domain.ReservationHistory
		if err := rows.Scan(
			&history.ID,
			&history.ReservationID,
			&history.ChangedByID,
			&history.OldStatus,
			&history.NewStatus,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, history)
	}
	return result, rows.Err()
}
