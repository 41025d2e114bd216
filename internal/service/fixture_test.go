package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/evently/internal/config"
	"github.com/spec-kit/evently/internal/domain"
	"github.com/spec-kit/evently/internal/events"
	"github.com/spec-kit/evently/internal/render"
	"github.com/spec-kit/evently/internal/repository"
	"github.com/spec-kit/evently/internal/repository/memstore"
	apperrors "github.com/spec-kit/evently/pkg/util"
)

type fixture struct {
	store        *memstore.Store
	dispatcher   events.Dispatcher
	events       *EventService
	tickets      *TicketService
	reservations *ReservationService
	admin        Actor
}

type fixtureOption func(*ReservationDependencies)

func withPolicy(policy config.ReservationConfig) fixtureOption {
	return func(d *ReservationDependencies) { d.Policy = policy }
}

func withLocker(l Locker) fixtureOption {
	return func(d *ReservationDependencies) { d.Locker = l }
}

func withTicketRepo(repo repository.TicketRepository) fixtureOption {
	return func(d *ReservationDependencies) {
		d.Tickets = NewTicketService(repo, render.NewPDFRenderer(), d.Dispatcher, nil)
	}
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	store := memstore.New()
	dispatcher := events.NewInMemoryDispatcher(nil)
	tickets := NewTicketService(store.Tickets(), render.NewPDFRenderer(), dispatcher, nil)

	deps := ReservationDependencies{
		ReservationRepo: store.Reservations(),
		EventRepo:       store.Events(),
		HistoryRepo:     store.History(),
		Tickets:         tickets,
		Dispatcher:      dispatcher,
		Policy:          config.ReservationConfig{DuplicatePolicy: config.DuplicatePolicyActive},
	}
	for _, opt := range opts {
		opt(&deps)
	}

	f := &fixture{
		store:        store,
		dispatcher:   dispatcher,
		events:       NewEventService(store.Events(), dispatcher),
		tickets:      deps.Tickets,
		reservations: NewReservationService(deps),
	}
	admin := f.user(t, "admin@example.com", domain.RoleAdmin)
	f.admin = ActorFromUser(admin)
	return f
}

func (f *fixture) user(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, FirstName: "First", LastName: email, Role: role}
	if err := f.store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func (f *fixture) participant(t *testing.T, email string) Actor {
	t.Helper()
	return ActorFromUser(f.user(t, email, domain.RoleParticipant))
}

func (f *fixture) event(t *testing.T, capacity int, status domain.EventStatus) *domain.Event {
	t.Helper()
	e, err := f.events.Create(context.Background(), f.admin.ID, EventInput{
		Title:       "Go meetup",
		Description: "monthly",
		DateTime:    time.Date(2026, 12, 1, 19, 0, 0, 0, time.UTC),
		Location:    "Lisbon",
		MaxCapacity: capacity,
		Status:      status,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return e
}

func (f *fixture) reserve(t *testing.T, who Actor, eventID string) *domain.Reservation {
	t.Helper()
	r, err := f.reservations.Create(context.Background(), who.ID, eventID)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	return r
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := apperrors.CodeOf(err); got != code {
		t.Fatalf("error code = %q (%v), want %q", got, err, code)
	}
}
