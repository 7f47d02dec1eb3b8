// Package users maps GitHub identities to internal owner ids.
package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrInvalidProfile = errors.New("invalid user profile")
)

// User is a registered account.
type User struct {
	ID        uuid.UUID
	GitHubID  int64
	Login     string
	Name      string
	Email     string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile is the identity data received from GitHub.
type Profile struct {
	GitHubID  int64
	Login     string
	Name      string
	Email     string
	AvatarURL string
}

func (p Profile) validate() error {
	if p.GitHubID <= 0 {
		return errors.Join(ErrInvalidProfile, errors.New("github id must be positive"))
	}
	if p.Login == "" {
		return errors.Join(ErrInvalidProfile, errors.New("login is required"))
	}
	return nil
}

// Repository stores users.
type Repository interface {
	GetByGitHubID(ctx context.Context, githubID int64) (User, error)
	// Upsert creates the user or refreshes its profile fields.
	Upsert(ctx context.Context, p Profile) (User, error)
}
