package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps users in memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[int64]User
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[int64]User), now: time.Now}
}

func (r *MemoryRepository) GetByGitHubID(_ context.Context, githubID int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[githubID]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, p Profile) (User, error) {
	if err := p.validate(); err != nil {
		return User{}, err
	}
	now := r.now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[p.GitHubID]
	if !ok {
		u = User{ID: uuid.New(), GitHubID: p.GitHubID, CreatedAt: now}
	}
	u.Login, u.Name, u.Email, u.AvatarURL = p.Login, p.Name, p.Email, p.AvatarURL
	u.UpdatedAt = now
	r.users[p.GitHubID] = u
	return u, nil
}
