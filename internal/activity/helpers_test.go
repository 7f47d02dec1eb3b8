package activity_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/typetrack/internal/activity"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *clock {
	return &clock{now: t}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recorder struct {
	mu         sync.Mutex
	started    int
	heartbeats int
	autoClosed map[string]int
	ended      map[string]int
}

func newRecorder() *recorder {
	return &recorder{autoClosed: map[string]int{}, ended: map[string]int{}}
}

func (r *recorder) SessionStarted(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *recorder) SessionHeartbeat() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.heartbeats++
}

func (r *recorder) SessionAutoClosed(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.autoClosed[reason]++
}

func (r *recorder) SessionEnded(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended[outcome]++
}

var epoch = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T, store activity.Store, opts ...activity.Option) (*activity.Service, *clock) {
	t.Helper()
	c := newClock(epoch)
	opts = append([]activity.Option{activity.WithClock(c.Now)}, opts...)
	return activity.NewService(store, opts...), c
}

func openSessions(t *testing.T, store activity.Store, owner uuid.UUID) []activity.Session {
	t.Helper()
	page, _, err := store.List(context.Background(), owner, activity.ListFilter{Limit: 1000, ActiveOnly: true})
	require.NoError(t, err)
	return page
}

func ptr[T any](v T) *T {
	return &v
}
