package activity

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in process memory. It backs tests and
// single-instance development setups.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]Session

	locksMu sync.Mutex
	locks   map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// journal records the previous state of every row written inside Atomic.
type journal struct {
	entries []undo
}

type undo struct {
	id      uuid.UUID
	prev    Session
	existed bool
}

type journalKey struct{}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID]Session),
		locks:    make(map[string]*keyLock),
	}
}

// Atomic serializes callers per key and rolls back every write made by fn
// when it returns an error. Nested calls join the outer one.
func (m *MemoryStore) Atomic(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(journalKey{}).(*journal); ok {
		return fn(ctx)
	}

	unlock := m.lockKey(key)
	defer unlock()

	j := &journal{}
	if err := fn(context.WithValue(ctx, journalKey{}, j)); err != nil {
		m.rollback(j)
		return err
	}
	return nil
}

func (m *MemoryStore) lockKey(key string) func() {
	m.locksMu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyLock{}
		m.locks[key] = l
	}
	l.refs++
	m.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, key)
		}
		m.locksMu.Unlock()
	}
}

func (m *MemoryStore) rollback(j *journal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(j.entries) - 1; i >= 0; i-- {
		e := j.entries[i]
		if e.existed {
			m.sessions[e.id] = e.prev
		} else {
			delete(m.sessions, e.id)
		}
	}
}

// put must be called with m.mu held.
func (m *MemoryStore) put(ctx context.Context, s Session) {
	if j, ok := ctx.Value(journalKey{}).(*journal); ok {
		prev, existed := m.sessions[s.ID]
		j.entries = append(j.entries, undo{id: s.ID, prev: prev, existed: existed})
	}
	m.sessions[s.ID] = s
}

func (m *MemoryStore) FindOpen(_ context.Context, owner uuid.UUID, deviceID *string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.OwnerID == owner && s.IsOpen() && sameDevice(s.DeviceID, deviceID) {
			return s, nil
		}
	}
	return Session{}, ErrNotFound
}

func (m *MemoryStore) FindLatestByDevice(_ context.Context, owner uuid.UUID, deviceID string) (Session, error) {
	return m.latest(func(s Session) bool {
		return s.OwnerID == owner && s.DeviceID != nil && *s.DeviceID == deviceID
	})
}

func (m *MemoryStore) FindLatestOpen(_ context.Context, owner uuid.UUID) (Session, error) {
	return m.latest(func(s Session) bool {
		return s.OwnerID == owner && s.IsOpen()
	})
}

func (m *MemoryStore) latest(match func(Session) bool) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var (
		found Session
		ok    bool
	)
	for _, s := range m.sessions {
		if match(s) && (!ok || byStartedDesc(s, found) < 0) {
			found, ok = s, true
		}
	}
	if !ok {
		return Session{}, ErrNotFound
	}
	return found, nil
}

func (m *MemoryStore) Get(_ context.Context, owner, id uuid.UUID) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok || s.OwnerID != owner {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) Create(ctx context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return ErrConflict
	}
	if s.IsOpen() {
		for _, other := range m.sessions {
			if other.OwnerID == s.OwnerID && other.IsOpen() && sameDevice(other.DeviceID, s.DeviceID) {
				return ErrConflict
			}
		}
	}
	m.put(ctx, s)
	return nil
}

func (m *MemoryStore) Heartbeat(ctx context.Context, owner, id uuid.UUID, at time.Time) (Session, error) {
	return m.mutateOpen(ctx, owner, id, func(s *Session) {
		if at.After(s.UpdatedAt) {
			s.UpdatedAt = at
		}
	})
}

func (m *MemoryStore) End(ctx context.Context, owner, id uuid.UUID, endedAt, updatedAt time.Time) (Session, error) {
	return m.mutateOpen(ctx, owner, id, func(s *Session) {
		s.EndedAt = &endedAt
		s.UpdatedAt = updatedAt
	})
}

func (m *MemoryStore) mutateOpen(ctx context.Context, owner, id uuid.UUID, fn func(*Session)) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.OwnerID != owner {
		return Session{}, ErrNotFound
	}
	if !s.IsOpen() {
		return Session{}, ErrAlreadyEnded
	}
	fn(&s)
	m.put(ctx, s)
	return s, nil
}

func (m *MemoryStore) AutoClose(ctx context.Context, id uuid.UUID, seen, now time.Time) (Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || !s.IsOpen() || !s.UpdatedAt.Equal(seen) {
		return Session{}, false, nil
	}
	endedAt := s.UpdatedAt
	s.EndedAt = &endedAt
	if now.After(s.UpdatedAt) {
		s.UpdatedAt = now
	}
	m.put(ctx, s)
	return s, true, nil
}

func (m *MemoryStore) List(_ context.Context, owner uuid.UUID, f ListFilter) ([]Session, int, error) {
	all := m.collect(func(s Session) bool {
		return s.OwnerID == owner && (!f.ActiveOnly || s.IsOpen())
	})
	slices.SortFunc(all, byStartedDesc)

	total := len(all)
	if f.Offset >= total {
		return []Session{}, total, nil
	}
	end := min(f.Offset+f.Limit, total)
	return all[f.Offset:end], total, nil
}

func (m *MemoryStore) ListStartedBetween(_ context.Context, owner uuid.UUID, from, to time.Time) ([]Session, error) {
	out := m.collect(func(s Session) bool {
		return s.OwnerID == owner && !s.StartedAt.Before(from) && !s.StartedAt.After(to)
	})
	slices.SortFunc(out, byStartedDesc)
	return out, nil
}

func (m *MemoryStore) ListStale(_ context.Context, cutoff time.Time, limit int) ([]Session, error) {
	out := m.collect(func(s Session) bool {
		return s.IsOpen() && s.UpdatedAt.Before(cutoff)
	})
	slices.SortFunc(out, func(a, b Session) int {
		return a.UpdatedAt.Compare(b.UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) collect(match func(Session) bool) []Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Session, 0)
	for _, s := range m.sessions {
		if match(s) {
			out = append(out, s)
		}
	}
	return out
}

func sameDevice(a, b *string) bool {
	return deviceBucket(a) == deviceBucket(b)
}

func deviceBucket(d *string) string {
	if d == nil {
		return ""
	}
	return *d
}

func byStartedDesc(a, b Session) int {
	if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID.String(), a.ID.String())
}
