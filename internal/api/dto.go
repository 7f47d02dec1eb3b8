package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/typetrack/internal/activity"
)

type sessionJSON struct {
	ID          uuid.UUID  `json:"typing_id"`
	OwnerID     uuid.UUID  `json:"uid"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at"`
	LanguageTag *string    `json:"language_tag"`
	Source      string     `json:"source"`
	DeviceID    *string    `json:"device_id"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toSessionJSON(s activity.Session) sessionJSON {
	return sessionJSON{
		ID:          s.ID,
		OwnerID:     s.OwnerID,
		StartedAt:   s.StartedAt,
		EndedAt:     s.EndedAt,
		LanguageTag: s.LanguageTag,
		Source:      s.Source,
		DeviceID:    s.DeviceID,
		UpdatedAt:   s.UpdatedAt,
	}
}

type startRequest struct {
	LanguageTag string `json:"language_tag"`
	Source      string `json:"source"`
	DeviceID    string `json:"device_id"`
}

type startResponse struct {
	Success           bool         `json:"success"`
	Message           string       `json:"message"`
	Session           sessionJSON  `json:"session"`
	AutoClosedSession *sessionJSON `json:"auto_closed_session,omitempty"`
}

type endRequest struct {
	TypingID string `json:"typing_id"`
	DeviceID string `json:"device_id"`
}

type sessionResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Session sessionJSON `json:"session"`
}

type listRequest struct {
	Limit      int  `query:"limit"`
	Offset     int  `query:"offset"`
	ActiveOnly bool `query:"active_only"`
}

type pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type listResponse struct {
	Success    bool          `json:"success"`
	Sessions   []sessionJSON `json:"sessions"`
	Pagination pagination    `json:"pagination"`
}

type statsRequest struct {
	Days int `query:"days"`
}

type statsResponse struct {
	Success bool           `json:"success"`
	Stats   activity.Stats `json:"stats"`
}
