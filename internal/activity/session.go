package activity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSource is recorded when a start request names no source.
const DefaultSource = "web"

// Session is a single span of typing activity.
type Session struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	StartedAt time.Time
	// EndedAt is nil while the session is open.
	EndedAt     *time.Time
	LanguageTag *string
	Source      string
	// DeviceID is the client supplied retry key.
	DeviceID  *string
	UpdatedAt time.Time
}

// IsOpen reports whether the session has not ended yet.
func (s Session) IsOpen() bool {
	return s.EndedAt == nil
}

// Duration returns the session length, measured until now for open sessions.
// It never returns a negative value.
func (s Session) Duration(now time.Time) time.Duration {
	end := now
	if s.EndedAt != nil {
		end = *s.EndedAt
	}
	if d := end.Sub(s.StartedAt); d > 0 {
		return d
	}
	return 0
}

// IsStale reports whether an open session has been idle longer than threshold.
func (s Session) IsStale(now time.Time, threshold time.Duration) bool {
	return s.IsOpen() && now.Sub(s.UpdatedAt) > threshold
}

// LockKey identifies the serialization bucket of (owner, device id).
func LockKey(owner uuid.UUID, deviceID *string) string {
	if deviceID == nil {
		return owner.String() + ":"
	}
	return owner.String() + ":" + *deviceID
}
