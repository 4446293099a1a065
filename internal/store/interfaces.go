package store

import (
	"context"
	"errors"

	"voyager.app/generator/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrSessionBusy is returned when a session already has an operation in flight.
var ErrSessionBusy = errors.New("session has an operation in progress")

// SessionStore defines the contract for session state.
// Returned sessions are copies; changes go through Update.
type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, id int64) (*model.Session, error)
	// Update applies fn to the stored session atomically. If fn returns an
	// error nothing is changed.
	Update(ctx context.Context, id int64, fn func(*model.Session) error) (*model.Session, error)
	Delete(ctx context.Context, id int64) error
	// Acquire marks the session busy until release is called.
	Acquire(ctx context.Context, id int64) (release func(), err error)
	// Bind derives a context that is cancelled when the session is deleted.
	Bind(ctx context.Context, id int64) (context.Context, context.CancelFunc, error)
	// CancelWatchers cancels every context bound to the session without
	// removing it.
	CancelWatchers(ctx context.Context, id int64) error
	Count() int
}
