package pgstore_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/typetrack/integration/database/pg"
	"github.com/dmitrymomot/typetrack/internal/activity"
	"github.com/dmitrymomot/typetrack/internal/activity/pgstore"
	"github.com/dmitrymomot/typetrack/internal/db"
)

func setup(t *testing.T) (*pgxpool.Pool, uuid.UUID) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	cfg := pg.Config{ConnectionString: dsn, RetryAttempts: 1, MigrationsTable: "schema_migrations"}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pg.MigrateFS(ctx, pool, db.Migrations, db.MigrationsDir, cfg, nil))

	owner := uuid.New()
	now := time.Now().UTC()
	_, err = pool.Exec(ctx, `INSERT INTO users (id, github_id, login, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)`,
		owner, time.Now().UnixNano(), "tester", now)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, owner)
	})
	return pool, owner
}

func TestStoreLifecycle(t *testing.T) {
	pool, owner := setup(t)
	store := pgstore.New(pool)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	sess := activity.Session{
		ID:        uuid.New(),
		OwnerID:   owner,
		StartedAt: now,
		UpdatedAt: now,
		Source:    "web",
	}
	require.NoError(t, store.Create(ctx, sess))

	dup := sess
	dup.ID = uuid.New()
	assert.ErrorIs(t, store.Create(ctx, dup), activity.ErrConflict)

	got, err := store.FindOpen(ctx, owner, nil)
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	beat, err := store.Heartbeat(ctx, owner, sess.ID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Minute), beat.UpdatedAt)

	_, ok, err := store.AutoClose(ctx, sess.ID, now, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	closed, ok, err := store.AutoClose(ctx, sess.ID, now.Add(time.Minute), now.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, now.Add(time.Minute), *closed.EndedAt)

	_, err = store.End(ctx, owner, sess.ID, now, now)
	assert.ErrorIs(t, err, activity.ErrAlreadyEnded)
	_, err = store.Heartbeat(ctx, owner, uuid.New(), now)
	assert.ErrorIs(t, err, activity.ErrNotFound)

	page, total, err := store.List(ctx, owner, activity.ListFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, page, 1)

	page, total, err = store.List(ctx, owner, activity.ListFilter{Limit: 10, ActiveOnly: true})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, page)
}

func TestServiceAgainstPostgres(t *testing.T) {
	pool, owner := setup(t)
	svc := activity.NewService(pgstore.New(pool))
	ctx := context.Background()

	t.Run("concurrent starts create one session", func(t *testing.T) {
		const n = 20
		var wg sync.WaitGroup
		ids := make(chan uuid.UUID, n)
		errs := make(chan error, n)
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := svc.Start(ctx, owner, activity.StartParams{DeviceID: "pg-device"})
				if err != nil {
					errs <- err
					return
				}
				ids <- res.Session.ID
			}()
		}
		wg.Wait()
		close(ids)
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}
		seen := map[uuid.UUID]bool{}
		for id := range ids {
			seen[id] = true
		}
		assert.Len(t, seen, 1)
	})

	t.Run("end replays by device id", func(t *testing.T) {
		first, err := svc.End(ctx, owner, activity.EndParams{DeviceID: "pg-device"})
		require.NoError(t, err)
		assert.False(t, first.Replayed)

		again, err := svc.End(ctx, owner, activity.EndParams{DeviceID: "pg-device"})
		require.NoError(t, err)
		assert.True(t, again.Replayed)
		assert.Equal(t, first.Session.ID, again.Session.ID)
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := svc.Stats(ctx, owner, 1)
		require.NoError(t, err)
		require.Len(t, stats.ByDate, 1)
		assert.Equal(t, 1, stats.ByDate[0].SessionCount)
	})
}
