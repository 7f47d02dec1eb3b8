package activity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dmitrymomot/typetrack/core/logger"
)

// Service implements the session lifecycle on top of a Store.
type Service struct {
	store      Store
	now        func() time.Time
	staleAfter time.Duration
	log        *slog.Logger
	recorder   Recorder
	newID      func() uuid.UUID
}

// NewService panics with ErrNilStore when store is nil.
func NewService(store Store, opts ...Option) *Service {
	if store == nil {
		panic(ErrNilStore)
	}
	s := &Service{
		store:      store,
		now:        time.Now,
		staleAfter: DefaultStaleThreshold,
		log:        slog.Default(),
		recorder:   noopRecorder{},
		newID:      uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("activity"))
	return s
}

// StaleThreshold returns the configured idle limit.
func (s *Service) StaleThreshold() time.Duration {
	return s.staleAfter
}

func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// StartParams describes a start request. Empty strings count as absent.
type StartParams struct {
	LanguageTag string
	Source      string
	DeviceID    string
}

// StartResult is the outcome of Start.
type StartResult struct {
	Session Session
	// AutoClosed holds the stale predecessor closed by this call.
	AutoClosed *Session
	// Active is true when an existing fresh session was heartbeated.
	Active bool
}

// Start heartbeats the open session of (owner, device id) or opens a new one,
// auto-closing a stale predecessor first.
func (s *Service) Start(ctx context.Context, owner uuid.UUID, p StartParams) (StartResult, error) {
	lang, err := label(p.LanguageTag)
	if err != nil {
		return StartResult{}, err
	}
	device, err := label(p.DeviceID)
	if err != nil {
		return StartResult{}, err
	}
	source, err := label(p.Source)
	if err != nil {
		return StartResult{}, err
	}
	src := DefaultSource
	if source != nil {
		src = *source
	}

	var res StartResult
	for attempt := 0; ; attempt++ {
		res, err = s.start(ctx, owner, lang, src, device)
		if errors.Is(err, ErrConflict) && attempt < maxConflictRetries {
			s.log.DebugContext(ctx, "start conflict, retrying",
				logger.UserID(owner),
				logger.Count("attempt", attempt+1),
			)
			continue
		}
		break
	}
	if err != nil {
		return StartResult{}, internal(err)
	}

	if res.AutoClosed != nil {
		s.recorder.SessionAutoClosed(ReasonStart)
		s.log.InfoContext(ctx, "stale session auto-closed",
			logger.Event("session.auto_closed"),
			logger.Reason(ReasonStart),
			logger.UserID(owner),
			logger.SessionID(res.AutoClosed.ID),
		)
	}
	if res.Active {
		s.recorder.SessionHeartbeat()
	} else {
		s.recorder.SessionStarted(res.Session.Source)
		s.log.InfoContext(ctx, "session started",
			logger.Event("session.started"),
			logger.UserID(owner),
			logger.SessionID(res.Session.ID),
		)
	}
	return res, nil
}

func (s *Service) start(ctx context.Context, owner uuid.UUID, lang *string, source string, device *string) (StartResult, error) {
	var res StartResult
	err := s.store.Atomic(ctx, LockKey(owner, device), func(ctx context.Context) error {
		now := s.clock()

		open, err := s.store.FindOpen(ctx, owner, device)
		switch {
		case err == nil && !open.IsStale(now, s.staleAfter):
			sess, err := s.store.Heartbeat(ctx, owner, open.ID, now)
			switch {
			case err == nil:
				res = StartResult{Session: sess, Active: true}
				return nil
			// An End outside this key's lock closed it first.
			case errors.Is(err, ErrAlreadyEnded), errors.Is(err, ErrNotFound):
			default:
				return err
			}
		case err == nil:
			closed, ok, err := s.store.AutoClose(ctx, open.ID, open.UpdatedAt, now)
			if err != nil {
				return err
			}
			if ok {
				res.AutoClosed = &closed
			}
		case !errors.Is(err, ErrNotFound):
			return err
		}

		sess := Session{
			ID:          s.newID(),
			OwnerID:     owner,
			StartedAt:   now,
			LanguageTag: lang,
			Source:      source,
			DeviceID:    device,
			UpdatedAt:   now,
		}
		if err := s.store.Create(ctx, sess); err != nil {
			return err
		}
		res.Session = sess
		return nil
	})
	return res, err
}

// EndParams selects the session to end. Both fields are optional.
type EndParams struct {
	SessionID *uuid.UUID
	DeviceID  string
}

// EndResult is the outcome of End.
type EndResult struct {
	Session Session
	// Replayed is true when the device id matched an already ended session
	// and nothing was changed.
	Replayed bool
}

// End closes a session of owner. When the device id names a session that is
// already ended, that session is returned unchanged. Otherwise SessionID or,
// failing that, owner's most recently started open session is ended at now.
func (s *Service) End(ctx context.Context, owner uuid.UUID, p EndParams) (EndResult, error) {
	device, err := label(p.DeviceID)
	if err != nil {
		return EndResult{}, err
	}

	var res EndResult
	err = s.store.Atomic(ctx, LockKey(owner, device), func(ctx context.Context) error {
		now := s.clock()

		if device != nil {
			latest, err := s.store.FindLatestByDevice(ctx, owner, *device)
			switch {
			case err == nil && !latest.IsOpen():
				res = EndResult{Session: latest, Replayed: true}
				return nil
			case err != nil && !errors.Is(err, ErrNotFound):
				return err
			}
		}

		var target Session
		if p.SessionID != nil {
			target, err = s.store.Get(ctx, owner, *p.SessionID)
		} else {
			target, err = s.store.FindLatestOpen(ctx, owner)
		}
		if err != nil {
			return err
		}
		if !target.IsOpen() {
			return ErrAlreadyEnded
		}

		endedAt := latestOf(now, target.StartedAt)
		updatedAt := latestOf(now, target.UpdatedAt)
		sess, err := s.store.End(ctx, owner, target.ID, endedAt, updatedAt)
		if err != nil {
			return err
		}
		res = EndResult{Session: sess}
		return nil
	})
	if err != nil {
		return EndResult{}, internal(err)
	}

	if res.Replayed {
		s.recorder.SessionEnded(OutcomeReplayed)
	} else {
		s.recorder.SessionEnded(OutcomeEnded)
		s.log.InfoContext(ctx, "session ended",
			logger.Event("session.ended"),
			logger.UserID(owner),
			logger.SessionID(res.Session.ID),
		)
	}
	return res, nil
}

// Get returns a session of owner.
func (s *Service) Get(ctx context.Context, owner, id uuid.UUID) (Session, error) {
	sess, err := s.store.Get(ctx, owner, id)
	if err != nil {
		return Session{}, internal(err)
	}
	return sess, nil
}

// ListParams selects a page of sessions. Limit is clamped to MaxListLimit.
type ListParams struct {
	Limit      int
	Offset     int
	ActiveOnly bool
}

// ListResult is a page of sessions ordered by started_at descending.
type ListResult struct {
	Sessions []Session
	Total    int
	Limit    int
	Offset   int
}

// List returns a page of owner's sessions and the total matching count.
func (s *Service) List(ctx context.Context, owner uuid.UUID, p ListParams) (ListResult, error) {
	if p.Limit < 1 {
		return ListResult{}, errors.Join(ErrInvalidInput, errors.New("limit must be at least 1"))
	}
	if p.Offset < 0 {
		return ListResult{}, errors.Join(ErrInvalidInput, errors.New("offset must not be negative"))
	}
	limit := min(p.Limit, MaxListLimit)

	sessions, total, err := s.store.List(ctx, owner, ListFilter{
		Limit:      limit,
		Offset:     p.Offset,
		ActiveOnly: p.ActiveOnly,
	})
	if err != nil {
		return ListResult{}, internal(err)
	}
	return ListResult{Sessions: sessions, Total: total, Limit: limit, Offset: p.Offset}, nil
}

// Stats aggregates owner's sessions started within the last days days.
func (s *Service) Stats(ctx context.Context, owner uuid.UUID, days int) (Stats, error) {
	if days < 1 || days > MaxWindowDays {
		return Stats{}, errors.Join(ErrInvalidInput, ErrInvalidWindow)
	}
	now := s.clock()
	from := now.Add(-time.Duration(days) * 24 * time.Hour)

	sessions, err := s.store.ListStartedBetween(ctx, owner, from, now)
	if err != nil {
		return Stats{}, internal(err)
	}
	return Aggregate(sessions, now), nil
}

// CloseStale auto-closes up to limit open sessions idle for longer than the
// stale threshold and returns how many were closed. A session heartbeated
// concurrently is left open.
func (s *Service) CloseStale(ctx context.Context, limit int) (int, error) {
	cutoff := s.clock().Add(-s.staleAfter)
	stale, err := s.store.ListStale(ctx, cutoff, limit)
	if err != nil {
		return 0, internal(err)
	}

	closed := 0
	for _, candidate := range stale {
		if err := ctx.Err(); err != nil {
			return closed, err
		}
		var ok bool
		err := s.store.Atomic(ctx, LockKey(candidate.OwnerID, candidate.DeviceID), func(ctx context.Context) error {
			var err error
			_, ok, err = s.store.AutoClose(ctx, candidate.ID, candidate.UpdatedAt, s.clock())
			return err
		})
		if err != nil {
			return closed, internal(err)
		}
		if ok {
			closed++
			s.recorder.SessionAutoClosed(ReasonSweep)
			s.log.DebugContext(ctx, "stale session auto-closed",
				logger.Event("session.auto_closed"),
				logger.Reason(ReasonSweep),
				logger.UserID(candidate.OwnerID),
				logger.SessionID(candidate.ID),
			)
		}
	}
	return closed, nil
}

// label trims v and returns nil for an empty result.
func label(v string) (*string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(v) > MaxLabelLength {
		return nil, errors.Join(ErrInvalidInput, ErrLabelTooLong)
	}
	return &v, nil
}

func latestOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return b
	}
	return a
}
