// Package pgstore persists typing sessions in PostgreSQL.
//
// Atomic wraps the callback in a transaction and takes a transaction scoped
// advisory lock derived from the (owner, device id) key. The partial unique
// index typing_sessions_one_open_per_key backs it up: a losing insert maps
// to activity.ErrConflict.
package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/typetrack/integration/database/pg"
	"github.com/dmitrymomot/typetrack/internal/activity"
)

const columns = `id, owner_id, started_at, ended_at, language_tag, source, device_id, updated_at`

// Store implements activity.Store.
type Store struct {
	pool *pgxpool.Pool
}

var _ activity.Store = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) db(ctx context.Context) pg.DBTX {
	return pg.Querier(ctx, s.pool)
}

func (s *Store) Atomic(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return pg.InTx(ctx, s.pool, func(ctx context.Context) error {
		if _, err := s.db(ctx).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
			return err
		}
		return fn(ctx)
	})
}

func (s *Store) FindOpen(ctx context.Context, owner uuid.UUID, deviceID *string) (activity.Session, error) {
	return s.one(ctx, `SELECT `+columns+` FROM typing_sessions
		WHERE owner_id = $1 AND COALESCE(device_id, '') = COALESCE($2::text, '') AND ended_at IS NULL
		LIMIT 1`, owner, deviceID)
}

func (s *Store) FindLatestByDevice(ctx context.Context, owner uuid.UUID, deviceID string) (activity.Session, error) {
	return s.one(ctx, `SELECT `+columns+` FROM typing_sessions
		WHERE owner_id = $1 AND device_id = $2
		ORDER BY started_at DESC, id DESC
		LIMIT 1`, owner, deviceID)
}

func (s *Store) FindLatestOpen(ctx context.Context, owner uuid.UUID) (activity.Session, error) {
	return s.one(ctx, `SELECT `+columns+` FROM typing_sessions
		WHERE owner_id = $1 AND ended_at IS NULL
		ORDER BY started_at DESC, id DESC
		LIMIT 1`, owner)
}

func (s *Store) Get(ctx context.Context, owner, id uuid.UUID) (activity.Session, error) {
	return s.one(ctx, `SELECT `+columns+` FROM typing_sessions WHERE id = $1 AND owner_id = $2`, id, owner)
}

func (s *Store) Create(ctx context.Context, sess activity.Session) error {
	_, err := s.db(ctx).Exec(ctx, `INSERT INTO typing_sessions (`+columns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sess.ID, sess.OwnerID, sess.StartedAt, sess.EndedAt, sess.LanguageTag, sess.Source, sess.DeviceID, sess.UpdatedAt,
	)
	if pg.IsDuplicateKeyError(err) {
		return errors.Join(activity.ErrConflict, err)
	}
	return err
}

func (s *Store) Heartbeat(ctx context.Context, owner, id uuid.UUID, at time.Time) (activity.Session, error) {
	sess, err := s.one(ctx, `UPDATE typing_sessions SET updated_at = GREATEST(updated_at, $3)
		WHERE id = $1 AND owner_id = $2 AND ended_at IS NULL
		RETURNING `+columns, id, owner, at)
	if errors.Is(err, activity.ErrNotFound) {
		return activity.Session{}, s.missing(ctx, owner, id)
	}
	return sess, err
}

func (s *Store) End(ctx context.Context, owner, id uuid.UUID, endedAt, updatedAt time.Time) (activity.Session, error) {
	sess, err := s.one(ctx, `UPDATE typing_sessions SET ended_at = $3, updated_at = $4
		WHERE id = $1 AND owner_id = $2 AND ended_at IS NULL
		RETURNING `+columns, id, owner, endedAt, updatedAt)
	if errors.Is(err, activity.ErrNotFound) {
		return activity.Session{}, s.missing(ctx, owner, id)
	}
	return sess, err
}

// missing explains why an update of an open session matched no row.
func (s *Store) missing(ctx context.Context, owner, id uuid.UUID) error {
	sess, err := s.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	if !sess.IsOpen() {
		return activity.ErrAlreadyEnded
	}
	return activity.ErrConflict
}

func (s *Store) AutoClose(ctx context.Context, id uuid.UUID, seen, now time.Time) (activity.Session, bool, error) {
	sess, err := s.one(ctx, `UPDATE typing_sessions SET ended_at = updated_at, updated_at = GREATEST(updated_at, $3)
		WHERE id = $1 AND ended_at IS NULL AND updated_at = $2
		RETURNING `+columns, id, seen, now)
	switch {
	case errors.Is(err, activity.ErrNotFound):
		return activity.Session{}, false, nil
	case err != nil:
		return activity.Session{}, false, err
	}
	return sess, true, nil
}

func (s *Store) List(ctx context.Context, owner uuid.UUID, f activity.ListFilter) ([]activity.Session, int, error) {
	var total int
	if err := s.db(ctx).QueryRow(ctx, `SELECT count(*) FROM typing_sessions
		WHERE owner_id = $1 AND (NOT $2 OR ended_at IS NULL)`, owner, f.ActiveOnly).Scan(&total); err != nil {
		return nil, 0, err
	}

	sessions, err := s.many(ctx, `SELECT `+columns+` FROM typing_sessions
		WHERE owner_id = $1 AND (NOT $2 OR ended_at IS NULL)
		ORDER BY started_at DESC, id DESC
		LIMIT $3 OFFSET $4`, owner, f.ActiveOnly, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (s *Store) ListStartedBetween(ctx context.Context, owner uuid.UUID, from, to time.Time) ([]activity.Session, error) {
	return s.many(ctx, `SELECT `+columns+` FROM typing_sessions
		WHERE owner_id = $1 AND started_at >= $2 AND started_at <= $3
		ORDER BY started_at DESC`, owner, from, to)
}

func (s *Store) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]activity.Session, error) {
	if limit <= 0 {
		return s.many(ctx, `SELECT `+columns+` FROM typing_sessions
			WHERE ended_at IS NULL AND updated_at < $1
			ORDER BY updated_at`, cutoff)
	}
	return s.many(ctx, `SELECT `+columns+` FROM typing_sessions
		WHERE ended_at IS NULL AND updated_at < $1
		ORDER BY updated_at
		LIMIT $2`, cutoff, limit)
}

func (s *Store) one(ctx context.Context, query string, args ...any) (activity.Session, error) {
	rows, err := s.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return activity.Session{}, err
	}
	sess, err := pgx.CollectExactlyOneRow(rows, scanSession)
	if pg.IsNotFoundError(err) {
		return activity.Session{}, activity.ErrNotFound
	}
	return sess, err
}

func (s *Store) many(ctx context.Context, query string, args ...any) ([]activity.Session, error) {
	rows, err := s.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanSession)
}

func scanSession(row pgx.CollectableRow) (activity.Session, error) {
	var s activity.Session
	err := row.Scan(&s.ID, &s.OwnerID, &s.StartedAt, &s.EndedAt, &s.LanguageTag, &s.Source, &s.DeviceID, &s.UpdatedAt)
	if err != nil {
		return activity.Session{}, err
	}
	s.StartedAt = s.StartedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	if s.EndedAt != nil {
		end := s.EndedAt.UTC()
		s.EndedAt = &end
	}
	return s, nil
}
