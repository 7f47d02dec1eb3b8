package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/typetrack/core/binder"
	"github.com/dmitrymomot/typetrack/core/handler"
	"github.com/dmitrymomot/typetrack/core/response"
	"github.com/dmitrymomot/typetrack/core/router"
	"github.com/dmitrymomot/typetrack/internal/activity"
)

// Handlers serves the /api/activity routes.
type Handlers struct {
	svc        *activity.Service
	windowDays int
	bindJSON   binder.Binder
	bindQuery  binder.Binder
}

// NewHandlers uses windowDays as the stats default; values outside
// [1, activity.MaxWindowDays] fall back to activity.DefaultWindowDays.
func NewHandlers(svc *activity.Service, windowDays int) *Handlers {
	if windowDays < 1 || windowDays > activity.MaxWindowDays {
		windowDays = activity.DefaultWindowDays
	}
	return &Handlers{
		svc:        svc,
		windowDays: windowDays,
		bindJSON:   binder.JSON(binder.AllowEmptyBody()),
		bindQuery:  binder.Query(),
	}
}

func (h *Handlers) Start(ctx *router.Context) handler.Response {
	u, ok := UserFromContext(ctx)
	if !ok {
		return response.Error(errUserNotFound)
	}

	var req startRequest
	if err := h.bindJSON(ctx.Request(), &req); err != nil {
		return fail(err, response.ErrNotFound)
	}

	res, err := h.svc.Start(ctx, u.ID, activity.StartParams{
		LanguageTag: req.LanguageTag,
		Source:      req.Source,
		DeviceID:    req.DeviceID,
	})
	if err != nil {
		return fail(err, response.ErrNotFound)
	}

	if res.Active {
		return response.JSON(startResponse{
			Success: true,
			Message: "Session is still active and recent",
			Session: toSessionJSON(res.Session),
		})
	}

	body := startResponse{
		Success: true,
		Message: "Typing session started",
		Session: toSessionJSON(res.Session),
	}
	if res.AutoClosed != nil {
		closed := toSessionJSON(*res.AutoClosed)
		body.AutoClosedSession = &closed
		body.Message = "Stale session auto-closed and new session started"
	}
	return response.JSONWithStatus(body, http.StatusCreated)
}

func (h *Handlers) End(ctx *router.Context) handler.Response {
	u, ok := UserFromContext(ctx)
	if !ok {
		return response.Error(errUserNotFound)
	}

	var req endRequest
	if err := h.bindJSON(ctx.Request(), &req); err != nil {
		return fail(err, response.ErrNotFound)
	}

	params := activity.EndParams{DeviceID: req.DeviceID}
	notFoundErr := notFound("No active session found", "No session to end")
	if req.TypingID != "" {
		id, err := uuid.Parse(req.TypingID)
		if err != nil {
			return response.Error(errInvalidSessionID)
		}
		params.SessionID = &id
		notFoundErr = notFound("Session not found", "")
	}

	res, err := h.svc.End(ctx, u.ID, params)
	if err != nil {
		return fail(err, notFoundErr)
	}

	msg := "Typing session ended"
	if res.Replayed {
		msg = "Session already ended"
	}
	return response.JSON(sessionResponse{
		Success: true,
		Message: msg,
		Session: toSessionJSON(res.Session),
	})
}

func (h *Handlers) List(ctx *router.Context) handler.Response {
	u, ok := UserFromContext(ctx)
	if !ok {
		return response.Error(errUserNotFound)
	}

	req := listRequest{Limit: activity.DefaultListLimit}
	if err := h.bindQuery(ctx.Request(), &req); err != nil {
		return fail(err, response.ErrNotFound)
	}

	res, err := h.svc.List(ctx, u.ID, activity.ListParams{
		Limit:      req.Limit,
		Offset:     req.Offset,
		ActiveOnly: req.ActiveOnly,
	})
	if err != nil {
		return fail(err, response.ErrNotFound)
	}

	sessions := make([]sessionJSON, 0, len(res.Sessions))
	for _, s := range res.Sessions {
		sessions = append(sessions, toSessionJSON(s))
	}
	return response.JSON(listResponse{
		Success:  true,
		Sessions: sessions,
		Pagination: pagination{
			Total:  res.Total,
			Limit:  res.Limit,
			Offset: res.Offset,
		},
	})
}

func (h *Handlers) Get(ctx *router.Context) handler.Response {
	u, ok := UserFromContext(ctx)
	if !ok {
		return response.Error(errUserNotFound)
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return response.Error(errInvalidSessionID)
	}

	sess, err := h.svc.Get(ctx, u.ID, id)
	if err != nil {
		return fail(err, notFound("Session not found", ""))
	}
	return response.JSON(sessionResponse{Success: true, Session: toSessionJSON(sess)})
}

func (h *Handlers) Stats(ctx *router.Context) handler.Response {
	u, ok := UserFromContext(ctx)
	if !ok {
		return response.Error(errUserNotFound)
	}

	req := statsRequest{Days: h.windowDays}
	if err := h.bindQuery(ctx.Request(), &req); err != nil {
		return fail(err, response.ErrNotFound)
	}

	stats, err := h.svc.Stats(ctx, u.ID, req.Days)
	if err != nil {
		return fail(err, response.ErrNotFound)
	}
	return response.JSON(statsResponse{Success: true, Stats: stats})
}
