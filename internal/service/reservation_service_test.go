package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spec-kit/evently/internal/config"
	"github.com/spec-kit/evently/internal/domain"
	"github.com/spec-kit/evently/internal/repository"
	apperrors "github.com/spec-kit/evently/pkg/util"
)

func TestCreateRespectsCapacity(t *testing.T) {
	for _, capacity := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("capacity=%d", capacity), func(t *testing.T) {
			f := newFixture(t)
			event := f.event(t, capacity, domain.EventStatusPublished)
			for i := 0; i < capacity; i++ {
				r := f.reserve(t, f.participant(t, fmt.Sprintf("p%d@example.com", i)), event.ID)
				if r.Status != domain.ReservationStatusPending {
					t.Fatalf("status = %s, want PENDING", r.Status)
				}
			}
			extra := f.participant(t, "extra@example.com")
			_, err := f.reservations.Create(context.Background(), extra.ID, event.ID)
			assertCode(t, err, apperrors.CodeInvalidState)
		})
	}
}

func TestCreateRequiresPublishedEvent(t *testing.T) {
	cases := []struct {
		status domain.EventStatus
		code   string
	}{
		{domain.EventStatusDraft, apperrors.CodeInvalidState},
		{domain.EventStatusCanceled, apperrors.CodeInvalidState},
		{domain.EventStatusPublished, ""},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			f := newFixture(t)
			event := f.event(t, 3, tc.status)
			p := f.participant(t, "p@example.com")
			r, err := f.reservations.Create(context.Background(), p.ID, event.ID)
			if tc.code != "" {
				assertCode(t, err, tc.code)
				return
			}
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if r.Status != domain.ReservationStatusPending || r.EventID != event.ID || r.ParticipantID != p.ID {
				t.Fatalf("unexpected reservation %+v", r)
			}
		})
	}
}

func TestCreateUnknownEvent(t *testing.T) {
	f := newFixture(t)
	p := f.participant(t, "p@example.com")
	_, err := f.reservations.Create(context.Background(), p.ID, "00000000-0000-0000-0000-000000000000")
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestDuplicatePolicyActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 5, domain.EventStatusPublished)
	p := f.participant(t, "p@example.com")

	first := f.reserve(t, p, event.ID)
	_, err := f.reservations.Create(ctx, p.ID, event.ID)
	assertCode(t, err, apperrors.CodeConflict)

	if _, err := f.reservations.Cancel(ctx, p, first.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	again, err := f.reservations.Create(ctx, p.ID, event.ID)
	if err != nil {
		t.Fatalf("re-reserve after cancel: %v", err)
	}
	if again.ID == first.ID {
		t.Fatal("expected a new reservation")
	}
}

func TestDuplicatePolicyAny(t *testing.T) {
	f := newFixture(t, withPolicy(config.ReservationConfig{DuplicatePolicy: config.DuplicatePolicyAny}))
	ctx := context.Background()
	event := f.event(t, 5, domain.EventStatusPublished)
	p := f.participant(t, "p@example.com")

	first := f.reserve(t, p, event.ID)
	if _, err := f.reservations.Cancel(ctx, p, first.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err := f.reservations.Create(ctx, p.ID, event.ID)
	assertCode(t, err, apperrors.CodeConflict)
}

func TestCanceledReservationsFreeCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 1, domain.EventStatusPublished)
	a := f.participant(t, "a@example.com")
	b := f.participant(t, "b@example.com")

	r := f.reserve(t, a, event.ID)
	if _, err := f.reservations.Cancel(ctx, a, r.ID); err != nil {
		t.Fatal(err)
	}
	f.reserve(t, b, event.ID)
}

func TestConfirmIssuesExactlyOneTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 2, domain.EventStatusPublished)
	p := f.participant(t, "p@example.com")
	r := f.reserve(t, p, event.ID)

	confirmed, err := f.reservations.UpdateStatus(ctx, f.admin, r.ID, domain.ReservationStatusConfirmed)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != domain.ReservationStatusConfirmed {
		t.Fatalf("status = %s", confirmed.Status)
	}
	if n := f.store.TicketCount(); n != 1 {
		t.Fatalf("tickets = %d, want 1", n)
	}

	// confirming again is allowed by the permissive policy and reuses the ticket
	if _, err := f.reservations.UpdateStatus(ctx, f.admin, r.ID, domain.ReservationStatusConfirmed); err != nil {
		t.Fatalf("second confirm: %v", err)
	}
	if n := f.store.TicketCount(); n != 1 {
		t.Fatalf("tickets after second confirm = %d, want 1", n)
	}
}

func TestConfirmAtCapacityFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 2, domain.EventStatusPublished)
	a := f.reserve(t, f.participant(t, "a@example.com"), event.ID)
	b := f.reserve(t, f.participant(t, "b@example.com"), event.ID)

	if _, err := f.reservations.UpdateStatus(ctx, f.admin, a.ID, domain.ReservationStatusConfirmed); err != nil {
		t.Fatalf("confirm a: %v", err)
	}
	if _, err := f.events.Update(ctx, event.ID, EventInput{
		Title: event.Title, DateTime: event.DateTime, Location: event.Location, MaxCapacity: 1,
	}); err != nil {
		t.Fatalf("shrink event: %v", err)
	}

	_, err := f.reservations.UpdateStatus(ctx, f.admin, b.ID, domain.ReservationStatusConfirmed)
	assertCode(t, err, apperrors.CodeInvalidState)

	stored, _ := f.reservations.Get(ctx, b.ID)
	if stored.Status != domain.ReservationStatusPending {
		t.Fatalf("b status = %s, want PENDING", stored.Status)
	}
	if n := f.store.TicketCount(); n != 1 {
		t.Fatalf("tickets = %d, want 1", n)
	}
}

func TestRefuseAndCancelSkipCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 1, domain.EventStatusPublished)
	r := f.reserve(t, f.participant(t, "a@example.com"), event.ID)

	for _, target := range []domain.ReservationStatus{domain.ReservationStatusRefused, domain.ReservationStatusCanceled} {
		got, err := f.reservations.UpdateStatus(ctx, f.admin, r.ID, target)
		if err != nil {
			t.Fatalf("%s: %v", target, err)
		}
		if got.Status != target {
			t.Fatalf("status = %s, want %s", got.Status, target)
		}
	}
	if n := f.store.TicketCount(); n != 0 {
		t.Fatalf("tickets = %d, want 0", n)
	}
}

func TestUpdateStatusRejectsPendingTarget(t *testing.T) {
	f := newFixture(t)
	event := f.event(t, 1, domain.EventStatusPublished)
	r := f.reserve(t, f.participant(t, "a@example.com"), event.ID)
	_, err := f.reservations.UpdateStatus(context.Background(), f.admin, r.ID, domain.ReservationStatusPending)
	assertCode(t, err, apperrors.CodeValidationFailed)
}

func TestUpdateStatusUnknownReservation(t *testing.T) {
	f := newFixture(t)
	_, err := f.reservations.UpdateStatus(context.Background(), f.admin, "missing", domain.ReservationStatusConfirmed)
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestTransitionPolicies(t *testing.T) {
	cases := []struct {
		name   string
		strict bool
		code   string
	}{
		{name: "permissive", strict: false},
		{name: "strict", strict: true, code: apperrors.CodeInvalidState},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, withPolicy(config.ReservationConfig{
				DuplicatePolicy:   config.DuplicatePolicyActive,
				StrictTransitions: tc.strict,
			}))
			ctx := context.Background()
			event := f.event(t, 1, domain.EventStatusPublished)
			r := f.reserve(t, f.participant(t, "a@example.com"), event.ID)

			if _, err := f.reservations.UpdateStatus(ctx, f.admin, r.ID, domain.ReservationStatusRefused); err != nil {
				t.Fatalf("refuse: %v", err)
			}
			got, err := f.reservations.UpdateStatus(ctx, f.admin, r.ID, domain.ReservationStatusConfirmed)
			if tc.code != "" {
				assertCode(t, err, tc.code)
				return
			}
			if err != nil {
				t.Fatalf("refused -> confirmed: %v", err)
			}
			if got.Status != domain.ReservationStatusConfirmed {
				t.Fatalf("status = %s", got.Status)
			}
		})
	}
}

func TestStrictPolicyStillAllowsCancel(t *testing.T) {
	f := newFixture(t, withPolicy(config.ReservationConfig{StrictTransitions: true}))
	ctx := context.Background()
	event := f.event(t, 1, domain.EventStatusPublished)
	p := f.participant(t, "a@example.com")
	r := f.reserve(t, p, event.ID)

	if _, err := f.reservations.UpdateStatus(ctx, f.admin, r.ID, domain.ReservationStatusRefused); err != nil {
		t.Fatal(err)
	}
	if _, err := f.reservations.Cancel(ctx, p, r.ID); err != nil {
		t.Fatalf("cancel refused reservation: %v", err)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 1, domain.EventStatusPublished)
	p := f.participant(t, "a@example.com")
	r := f.reserve(t, p, event.ID)

	for i := 0; i < 2; i++ {
		got, err := f.reservations.Cancel(ctx, p, r.ID)
		if err != nil {
			t.Fatalf("cancel #%d: %v", i+1, err)
		}
		if got.Status != domain.ReservationStatusCanceled {
			t.Fatalf("status = %s", got.Status)
		}
	}
}

func TestCancelOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 2, domain.EventStatusPublished)
	owner := f.participant(t, "owner@example.com")
	other := f.participant(t, "other@example.com")
	r := f.reserve(t, owner, event.ID)

	_, err := f.reservations.Cancel(ctx, other, r.ID)
	assertCode(t, err, apperrors.CodeForbidden)

	got, err := f.reservations.Cancel(ctx, f.admin, r.ID)
	if err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
	if got.Status != domain.ReservationStatusCanceled {
		t.Fatalf("status = %s", got.Status)
	}

	_, err = f.reservations.Cancel(ctx, f.admin, "missing")
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestExampleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 1, domain.EventStatusPublished)
	a := f.participant(t, "a@example.com")
	b := f.participant(t, "b@example.com")

	ra := f.reserve(t, a, event.ID)
	_, err := f.reservations.Create(ctx, b.ID, event.ID)
	assertCode(t, err, apperrors.CodeInvalidState)

	confirmed, err := f.reservations.UpdateStatus(ctx, f.admin, ra.ID, domain.ReservationStatusConfirmed)
	if err != nil || confirmed.Status != domain.ReservationStatusConfirmed {
		t.Fatalf("confirm a: %v %+v", err, confirmed)
	}
	if n := f.store.TicketCount(); n != 1 {
		t.Fatalf("tickets = %d", n)
	}

	_, err = f.reservations.UpdateStatus(ctx, f.admin, "6f0b1e2c-0000-4000-8000-000000000000", domain.ReservationStatusConfirmed)
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestHistoryRecordsTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 1, domain.EventStatusPublished)
	p := f.participant(t, "a@example.com")
	r := f.reserve(t, p, event.ID)
	if _, err := f.reservations.UpdateStatus(ctx, f.admin, r.ID, domain.ReservationStatusConfirmed); err != nil {
		t.Fatal(err)
	}

	history, err := f.reservations.History(ctx, r.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history entries = %d, want 2", len(history))
	}
	if history[0].OldStatus != nil || history[0].NewStatus != domain.ReservationStatusPending {
		t.Errorf("first entry = %+v", history[0])
	}
	if history[1].OldStatus == nil || *history[1].OldStatus != domain.ReservationStatusPending ||
		history[1].NewStatus != domain.ReservationStatusConfirmed {
		t.Errorf("second entry = %+v", history[1])
	}
	if history[1].ChangedByID == nil || *history[1].ChangedByID != f.admin.ID {
		t.Errorf("second entry actor = %v", history[1].ChangedByID)
	}

	_, err = f.reservations.History(ctx, "missing")
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 5, domain.EventStatusPublished)
	a := f.participant(t, "a@example.com")
	b := f.participant(t, "b@example.com")
	f.reserve(t, a, event.ID)
	latest := f.reserve(t, b, event.ID)

	all, err := f.reservations.ListAll(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("list all = %d, %v", len(all), err)
	}
	if all[0].ID != latest.ID {
		t.Errorf("expected newest first")
	}
	mine, err := f.reservations.ListByParticipant(ctx, a.ID)
	if err != nil || len(mine) != 1 || mine[0].ParticipantID != a.ID {
		t.Fatalf("list mine = %+v, %v", mine, err)
	}
	if mine[0].Event == nil || mine[0].Event.Title != "Go meetup" {
		t.Errorf("event not resolved on listing")
	}
}

func TestTicketFailureKeepsConfirmation(t *testing.T) {
	failing := newFixture(t, withTicketRepo(failingTickets{}))
	ctx := context.Background()
	event := failing.event(t, 1, domain.EventStatusPublished)
	r := failing.reserve(t, failing.participant(t, "a@example.com"), event.ID)

	got, err := failing.reservations.UpdateStatus(ctx, failing.admin, r.ID, domain.ReservationStatusConfirmed)
	assertCode(t, err, apperrors.CodeInternal)
	if got == nil || got.Status != domain.ReservationStatusConfirmed {
		t.Fatalf("returned reservation = %+v", got)
	}
	stored, _ := failing.reservations.Get(ctx, r.ID)
	if stored.Status != domain.ReservationStatusConfirmed {
		t.Fatalf("stored status = %s, want CONFIRMED", stored.Status)
	}
}

func TestAdmissionLock(t *testing.T) {
	lockErr := errors.New("redis down")

	t.Run("used when enabled", func(t *testing.T) {
		locker := &countingLocker{}
		f := newFixture(t, withLocker(locker), withPolicy(config.ReservationConfig{AdmissionLock: true}))
		event := f.event(t, 1, domain.EventStatusPublished)
		r := f.reserve(t, f.participant(t, "a@example.com"), event.ID)
		if _, err := f.reservations.UpdateStatus(context.Background(), f.admin, r.ID, domain.ReservationStatusConfirmed); err != nil {
			t.Fatal(err)
		}
		if locker.acquired != 2 || locker.released != 2 {
			t.Fatalf("acquired=%d released=%d, want 2/2", locker.acquired, locker.released)
		}
		if locker.lastKey != "event:"+event.ID {
			t.Errorf("key = %q", locker.lastKey)
		}
	})

	t.Run("ignored when disabled", func(t *testing.T) {
		locker := &countingLocker{}
		f := newFixture(t, withLocker(locker))
		event := f.event(t, 1, domain.EventStatusPublished)
		f.reserve(t, f.participant(t, "a@example.com"), event.ID)
		if locker.acquired != 0 {
			t.Fatalf("acquired = %d, want 0", locker.acquired)
		}
	})

	t.Run("failure aborts admission", func(t *testing.T) {
		locker := &countingLocker{err: lockErr}
		f := newFixture(t, withLocker(locker), withPolicy(config.ReservationConfig{AdmissionLock: true}))
		event := f.event(t, 1, domain.EventStatusPublished)
		p := f.participant(t, "a@example.com")
		_, err := f.reservations.Create(context.Background(), p.ID, event.ID)
		assertCode(t, err, apperrors.CodeInternal)
		if !errors.Is(err, lockErr) {
			t.Errorf("cause not preserved: %v", err)
		}
		if all, _ := f.reservations.ListAll(context.Background()); len(all) != 0 {
			t.Fatalf("reservation created despite lock failure")
		}
	})
}

type countingLocker struct {
	acquired int
	released int
	lastKey  string
	err      error
}

func (l *countingLocker) Acquire(_ context.Context, key string) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired++
	l.lastKey = key
	return func() { l.released++ }, nil
}

type failingTickets struct{}

func (failingTickets) Create(context.Context, *domain.Ticket) error {
	return errors.New("disk full")
}

func (failingTickets) GetByReservationID(context.Context, string) (*domain.Ticket, error) {
	return nil, repository.ErrNotFound
}
