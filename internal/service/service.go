package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/evently/internal/domain"
	"github.com/spec-kit/evently/internal/events"
)

// Actor identifies the user performing an operation.
type Actor struct {
	ID   string
	Role domain.Role
}

// ActorFromUser builds an Actor from a loaded user.
func ActorFromUser(user *domain.User) Actor {
	if user == nil {
		return Actor{}
	}
	return Actor{ID: user.ID, Role: user.Role}
}

// IsAdmin reports whether the actor holds the ADMIN role.
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// Locker serialises work on a key across processes.
// Acquire returns a release func that must be called once the critical section ends.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

type nopLocker struct{}

func (nopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}

func strPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
