// Package memstore keeps Evently records in process memory. It backs the
// service when no Postgres DSN is configured and is used throughout tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/evently/internal/domain"
	"github.com/spec-kit/evently/internal/repository"
)

// Store holds every table behind one lock.
type Store struct {
	mu           sync.RWMutex
	users        map[string]domain.User
	events       map[string]domain.Event
	reservations map[string]domain.Reservation
	tickets      map[string]domain.Ticket
	history      map[string][]domain.ReservationHistory
	seq          int64
	now          func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:        make(map[string]domain.User),
		events:       make(map[string]domain.Event),
		reservations: make(map[string]domain.Reservation),
		tickets:      make(map[string]domain.Ticket),
		history:      make(map[string][]domain.ReservationHistory),
		now:          time.Now,
	}
}

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Events returns the event repository view.
func (s *Store) Events() repository.EventRepository { return eventRepo{s} }

// Reservations returns the reservation repository view.
func (s *Store) Reservations() repository.ReservationRepository { return reservationRepo{s} }

// Tickets returns the ticket repository view.
func (s *Store) Tickets() repository.TicketRepository { return ticketRepo{s} }

// History returns the reservation history repository view.
func (s *Store) History() repository.ReservationHistoryRepository { return historyRepo{s} }

// stamp returns a strictly increasing timestamp so that ordering by creation time is stable.
func (s *Store) stamp() time.Time {
	s.seq++
	return s.now().Add(time.Duration(s.seq) * time.Microsecond)
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.s.stamp()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type eventRepo struct{ s *Store }

func (r eventRepo) Create(_ context.Context, event *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	event.ID = uuid.NewString()
	event.CreatedAt = r.s.stamp()
	event.UpdatedAt = event.CreatedAt
	r.s.events[event.ID] = *event
	return nil
}

func (r eventRepo) Update(_ context.Context, event *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.events[event.ID]
	if !ok {
		return repository.ErrNotFound
	}
	event.CreatedAt = existing.CreatedAt
	event.UpdatedAt = r.s.stamp()
	r.s.events[event.ID] = *event
	return nil
}

func (r eventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	event, ok := r.s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &event, nil
}

func (r eventRepo) List(_ context.Context, filter repository.EventFilter) ([]domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.Event{}
	for _, event := range r.s.events {
		if len(filter.Statuses) > 0 && !containsEventStatus(filter.Statuses, event.Status) {
			continue
		}
		result = append(result, event)
	}
	sort.Slice(result, func(i, j int) bool {
		if filter.ByDate {
			return result[i].DateTime.Before(result[j].DateTime)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func containsEventStatus(statuses []domain.EventStatus, status domain.EventStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type reservationRepo struct{ s *Store }

func (r reservationRepo) Create(_ context.Context, reservation *domain.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[reservation.EventID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.users[reservation.ParticipantID]; !ok {
		return repository.ErrNotFound
	}
	reservation.ID = uuid.NewString()
	reservation.CreatedAt = r.s.stamp()
	reservation.UpdatedAt = reservation.CreatedAt
	stored := *reservation
	stored.Event, stored.Participant = nil, nil
	r.s.reservations[reservation.ID] = stored
	return nil
}

func (r reservationRepo) UpdateStatus(_ context.Context, reservation *domain.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.reservations[reservation.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Status = reservation.Status
	stored.UpdatedAt = r.s.stamp()
	reservation.UpdatedAt = stored.UpdatedAt
	r.s.reservations[reservation.ID] = stored
	return nil
}

func (r reservationRepo) GetByID(_ context.Context, id string) (*domain.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	stored, ok := r.s.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.s.resolve(stored), nil
}

func (r reservationRepo) FindByEventAndParticipant(_ context.Context, eventID, participantID string, includeCanceled bool) (*domain.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var found *domain.Reservation
	for _, stored := range r.s.reservations {
		if stored.EventID != eventID || stored.ParticipantID != participantID {
			continue
		}
		if !includeCanceled && !stored.Status.Active() {
			continue
		}
		if found == nil || stored.CreatedAt.After(found.CreatedAt) {
			found = r.s.resolve(stored)
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r reservationRepo) CountActiveByEvent(_ context.Context, eventID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	count := 0
	for _, stored := range r.s.reservations {
		if stored.EventID == eventID && stored.Status.Active() {
			count++
		}
	}
	return count, nil
}

func (r reservationRepo) CountByEventAndStatus(_ context.Context, eventID string, status domain.ReservationStatus) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	count := 0
	for _, stored := range r.s.reservations {
		if stored.EventID == eventID && stored.Status == status {
			count++
		}
	}
	return count, nil
}

func (r reservationRepo) List(_ context.Context, filter repository.ReservationFilter) ([]domain.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.Reservation{}
	for _, stored := range r.s.reservations {
		if filter.ParticipantID != nil && stored.ParticipantID != *filter.ParticipantID {
			continue
		}
		if filter.EventID != nil && stored.EventID != *filter.EventID {
			continue
		}
		result = append(result, *r.s.resolve(stored))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// resolve attaches copies of the event and participant. Callers hold the lock.
func (s *Store) resolve(stored domain.Reservation) *domain.Reservation {
	res := stored
	if event, ok := s.events[stored.EventID]; ok {
		res.Event = &event
	}
	if user, ok := s.users[stored.ParticipantID]; ok {
		res.Participant = &user
	}
	return &res
}

type ticketRepo struct{ s *Store }

func (r ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[ticket.ReservationID]; ok {
		return repository.ErrDuplicate
	}
	if _, ok := r.s.reservations[ticket.ReservationID]; !ok {
		return repository.ErrNotFound
	}
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = r.s.stamp()
	stored := *ticket
	stored.Reservation = nil
	r.s.tickets[ticket.ReservationID] = stored
	return nil
}

func (r ticketRepo) GetByReservationID(_ context.Context, reservationID string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ticket, ok := r.s.tickets[reservationID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if stored, ok := r.s.reservations[reservationID]; ok {
		ticket.Reservation = r.s.resolve(stored)
	}
	return &ticket, nil
}

type historyRepo struct{ s *Store }

func (r historyRepo) Create(_ context.Context, history *domain.ReservationHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	history.ID = uuid.NewString()
	history.CreatedAt = r.s.stamp()
	r.s.history[history.ReservationID] = append(r.s.history[history.ReservationID], *history)
	return nil
}

func (r historyRepo) ListByReservation(_ context.Context, reservationID string) ([]domain.ReservationHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	entries := r.s.history[reservationID]
	result := make([]domain.ReservationHistory, len(entries))
	copy(result, entries)
	return result, nil
}

// TicketCount returns the number of issued tickets.
func (s *Store) TicketCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets)
}
