package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists sessions. Lookups return ErrNotFound when nothing matches.
// Implementations must be safe for concurrent use and must never read the
// clock themselves: every timestamp is supplied by the caller.
type Store interface {
	// Atomic runs fn so that writes made through the ctx passed to fn are
	// applied all-or-nothing, and callers sharing key are serialized.
	Atomic(ctx context.Context, key string, fn func(ctx context.Context) error) error

	// FindOpen returns the open session of owner whose device id equals
	// deviceID, where nil matches sessions without a device id.
	FindOpen(ctx context.Context, owner uuid.UUID, deviceID *string) (Session, error)
	// FindLatestByDevice returns the most recently started session of owner
	// carrying deviceID, open or not.
	FindLatestByDevice(ctx context.Context, owner uuid.UUID, deviceID string) (Session, error)
	// FindLatestOpen returns the most recently started open session of owner.
	FindLatestOpen(ctx context.Context, owner uuid.UUID) (Session, error)
	Get(ctx context.Context, owner, id uuid.UUID) (Session, error)

	// Create inserts s. It returns ErrConflict when owner already has an open
	// session with the same device id.
	Create(ctx context.Context, s Session) error
	// Heartbeat moves updated_at of an open session forward to at.
	// Ended sessions yield ErrAlreadyEnded.
	Heartbeat(ctx context.Context, owner, id uuid.UUID, at time.Time) (Session, error)
	// End sets ended_at and updated_at of an open session.
	// Ended sessions yield ErrAlreadyEnded.
	End(ctx context.Context, owner, id uuid.UUID, endedAt, updatedAt time.Time) (Session, error)
	// AutoClose ends an open session at its last heartbeat, provided
	// updated_at still equals seen. The boolean is false when the session
	// was touched or ended in the meantime.
	AutoClose(ctx context.Context, id uuid.UUID, seen, now time.Time) (Session, bool, error)

	// List returns a page of owner's sessions ordered by started_at
	// descending, together with the total number of matching sessions.
	List(ctx context.Context, owner uuid.UUID, f ListFilter) ([]Session, int, error)
	// ListStartedBetween returns owner's sessions with from <= started_at <= to.
	ListStartedBetween(ctx context.Context, owner uuid.UUID, from, to time.Time) ([]Session, error)
	// ListStale returns up to limit open sessions of any owner whose
	// updated_at is before cutoff, oldest first.
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]Session, error)
}

// ListFilter selects a page of sessions.
type ListFilter struct {
	Limit      int
	Offset     int
	ActiveOnly bool
}
