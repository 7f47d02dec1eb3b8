package api

import (
	"time"

	"github.com/dmitrymomot/typetrack/internal/users"
	"github.com/dmitrymomot/typetrack/pkg/jwt"
)

// DefaultTokenTTL is the lifetime of issued access tokens.
const DefaultTokenTTL = 24 * time.Hour

// Claims is the access token payload.
type Claims struct {
	User UserClaims `json:"user"`
	jwt.StandardClaims
}

// UserClaims identifies the GitHub account the token was issued for.
type UserClaims struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// NewClaims builds claims for u valid from now for ttl.
func NewClaims(u users.User, now time.Time, ttl time.Duration) Claims {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return Claims{
		User: UserClaims{
			ID:        u.GitHubID,
			Login:     u.Login,
			Name:      u.Name,
			Email:     u.Email,
			AvatarURL: u.AvatarURL,
		},
		StandardClaims: jwt.StandardClaims{
			Subject:   u.ID.String(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
}

// IssueToken signs claims for u.
func IssueToken(svc *jwt.Service, u users.User, now time.Time, ttl time.Duration) (string, error) {
	return svc.Generate(NewClaims(u, now, ttl))
}
