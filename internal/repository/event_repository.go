package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/evently/internal/domain"
)

// EventFilter narrows event listings.
type EventFilter struct {
	Statuses []domain.EventStatus
	// ByDate orders by scheduled date ascending instead of newest first.
	ByDate bool
}

// EventRepository encapsulates event persistence.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, filter EventFilter) ([]domain.Event, error)
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository instantiates repository.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

const eventColumns = `id, title, description, date_time, location, max_capacity, status, admin_id, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO events (title, description, date_time, location, max_capacity, status, admin_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.DateTime,
		event.Location,
		event.MaxCapacity,
		event.Status,
		event.AdminID,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	return translate(err)
}

func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	if !validID(event.ID) {
		return ErrNotFound
	}
	const query = `
        UPDATE events SET title=$1, description=$2, date_time=$3, location=$4, max_capacity=$5,
            status=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.DateTime,
		event.Location,
		event.MaxCapacity,
		event.Status,
		event.ID,
	).Scan(&event.UpdatedAt)
	return translate(err)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE id=$1`
	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return event, nil
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]domain.Event, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	order := "created_at DESC"
	if filter.ByDate {
		order = "date_time ASC"
	}
	query := fmt.Sprintf(`SELECT %s FROM events WHERE %s ORDER BY %s`,
		eventColumns, strings.Join(clauses, " AND "), order)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *event)
	}
	return result, rows.Err()
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var event domain.Event
	if err := row.Scan(
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
	); err != nil {
		return nil, err
	}
	return &event, nil
}
