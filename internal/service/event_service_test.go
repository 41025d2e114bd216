package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/evently/internal/domain"
	"github.com/spec-kit/evently/internal/events"
	apperrors "github.com/spec-kit/evently/pkg/util"
)

func TestCreateEventDefaultsToDraft(t *testing.T) {
	f := newFixture(t)
	e := f.event(t, 10, "")
	if e.Status != domain.EventStatusDraft {
		t.Fatalf("status = %s, want DRAFT", e.Status)
	}
	if e.AdminID != f.admin.ID {
		t.Errorf("admin = %s", e.AdminID)
	}
}

func TestCreateEventValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.events.Create(context.Background(), f.admin.ID, EventInput{Title: "Go", MaxCapacity: 0})
	assertCode(t, err, apperrors.CodeValidationFailed)

	details := apperrors.ToDomainError(err).Details
	for _, field := range []string{"title", "dateTime", "maxCapacity"} {
		if _, ok := details[field]; !ok {
			t.Errorf("missing detail for %s: %v", field, details)
		}
	}
}

func TestCanceledEventIsTerminal(t *testing.T) {
	targets := []domain.EventStatus{domain.EventStatusDraft, domain.EventStatusPublished, domain.EventStatusCanceled}
	for _, target := range targets {
		t.Run(string(target), func(t *testing.T) {
			f := newFixture(t)
			e := f.event(t, 1, domain.EventStatusCanceled)
			_, err := f.events.UpdateStatus(context.Background(), f.admin.ID, e.ID, target)
			assertCode(t, err, apperrors.CodeInvalidState)
		})
	}
}

func TestEventStatusTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var seen []events.EventStatusChangedPayload
	f.dispatcher.Subscribe(events.EventEventStatusChanged, func(_ context.Context, e events.Event) error {
		seen = append(seen, e.Payload.(events.EventStatusChangedPayload))
		return nil
	})

	e := f.event(t, 1, domain.EventStatusDraft)
	got, err := f.events.UpdateStatus(ctx, f.admin.ID, e.ID, domain.EventStatusPublished)
	if err != nil || got.Status != domain.EventStatusPublished {
		t.Fatalf("publish: %v %+v", err, got)
	}
	if _, err := f.events.UpdateStatus(ctx, f.admin.ID, e.ID, domain.EventStatusCanceled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(seen) != 2 || seen[1].OldStatus != domain.EventStatusPublished || seen[1].NewStatus != domain.EventStatusCanceled {
		t.Fatalf("events = %+v", seen)
	}

	_, err = f.events.UpdateStatus(ctx, f.admin.ID, "missing", domain.EventStatusPublished)
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestCancelingEventKeepsReservations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.event(t, 1, domain.EventStatusPublished)
	r := f.reserve(t, f.participant(t, "a@example.com"), e.ID)

	if _, err := f.events.UpdateStatus(ctx, f.admin.ID, e.ID, domain.EventStatusCanceled); err != nil {
		t.Fatal(err)
	}
	stored, _ := f.reservations.Get(ctx, r.ID)
	if stored.Status != domain.ReservationStatusPending {
		t.Fatalf("reservation status = %s, want PENDING", stored.Status)
	}
}

func TestUpdateEventKeepsStatus(t *testing.T) {
	f := newFixture(t)
	e := f.event(t, 1, domain.EventStatusPublished)
	when := time.Date(2027, 1, 2, 10, 0, 0, 0, time.UTC)
	got, err := f.events.Update(context.Background(), e.ID, EventInput{
		Title: "Renamed", DateTime: when, Location: "Porto", MaxCapacity: 40, Status: domain.EventStatusDraft,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "Renamed" || got.MaxCapacity != 40 || !got.DateTime.Equal(when) {
		t.Errorf("fields not replaced: %+v", got)
	}
	if got.Status != domain.EventStatusPublished {
		t.Errorf("status changed to %s", got.Status)
	}
}

func TestPublishedCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draft := f.event(t, 1, domain.EventStatusDraft)
	published := f.event(t, 1, domain.EventStatusPublished)

	list, err := f.events.ListPublished(ctx)
	if err != nil || len(list) != 1 || list[0].ID != published.ID {
		t.Fatalf("published list = %+v, %v", list, err)
	}
	all, err := f.events.ListAll(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("all = %d, %v", len(all), err)
	}

	if _, err := f.events.GetPublished(ctx, published.ID); err != nil {
		t.Fatalf("get published: %v", err)
	}
	_, err = f.events.GetPublished(ctx, draft.ID)
	assertCode(t, err, apperrors.CodeNotFound)
}
