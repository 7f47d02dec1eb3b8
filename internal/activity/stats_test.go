package activity_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/typetrack/internal/activity"
)

func session(start time.Time, d time.Duration, lang *string, source string) activity.Session {
	s := activity.Session{
		ID:          uuid.New(),
		StartedAt:   start,
		LanguageTag: lang,
		Source:      source,
		UpdatedAt:   start,
	}
	if d >= 0 {
		end := start.Add(d)
		s.EndedAt = &end
		s.UpdatedAt = end
	}
	return s
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	now := time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC)

	t.Run("groups a day by language and source", func(t *testing.T) {
		t.Parallel()
		stats := activity.Aggregate([]activity.Session{
			session(day, 10*time.Minute, ptr("python"), "web"),
			session(day.Add(time.Hour), 5*time.Minute, ptr("go"), "web"),
		}, now)

		got, ok := stats.Day("2025-01-01")
		require.True(t, ok)
		assert.Equal(t, 15.0, got.TotalMinutes)
		assert.Equal(t, map[string]float64{"python": 10.0, "go": 5.0}, got.ByLanguage)
		assert.Equal(t, map[string]float64{"web": 15.0}, got.BySource)
		assert.Equal(t, 2, got.SessionCount)
	})

	t.Run("unknown labels", func(t *testing.T) {
		t.Parallel()
		stats := activity.Aggregate([]activity.Session{
			session(day, time.Minute, nil, ""),
			session(day, time.Minute, ptr(""), "vscode"),
		}, now)

		got, ok := stats.Day("2025-01-01")
		require.True(t, ok)
		assert.Equal(t, map[string]float64{activity.Unknown: 2.0}, got.ByLanguage)
		assert.Equal(t, map[string]float64{activity.Unknown: 1.0, "vscode": 1.0}, got.BySource)
	})

	t.Run("rounds once at emission", func(t *testing.T) {
		t.Parallel()
		third := 20 * time.Second
		stats := activity.Aggregate([]activity.Session{
			session(day, third, ptr("a"), "web"),
			session(day, third, ptr("b"), "web"),
			session(day, third, ptr("c"), "web"),
		}, now)

		got, _ := stats.Day("2025-01-01")
		assert.Equal(t, 0.33, got.ByLanguage["a"])
		assert.Equal(t, 1.0, got.TotalMinutes)
		assert.Equal(t, 1.0, got.BySource["web"])
	})

	t.Run("open sessions grow until now", func(t *testing.T) {
		t.Parallel()
		open := session(now.Add(-30*time.Minute), -1, ptr("go"), "web")

		first, _ := activity.Aggregate([]activity.Session{open}, now).Day("2025-01-03")
		later, _ := activity.Aggregate([]activity.Session{open}, now.Add(15*time.Minute)).Day("2025-01-03")
		assert.Equal(t, 30.0, first.TotalMinutes)
		assert.Equal(t, 45.0, later.TotalMinutes)
	})

	t.Run("dates descending and sparse", func(t *testing.T) {
		t.Parallel()
		stats := activity.Aggregate([]activity.Session{
			session(day, time.Minute, nil, "web"),
			session(day.Add(48*time.Hour), time.Minute, nil, "web"),
			session(day.Add(-24*time.Hour+13*time.Hour+59*time.Minute), time.Minute, nil, "web"),
		}, now)

		dates := make([]string, 0, len(stats.ByDate))
		for _, d := range stats.ByDate {
			dates = append(dates, d.Date)
		}
		assert.Equal(t, []string{"2025-01-03", "2025-01-01", "2024-12-31"}, dates)
	})

	t.Run("groups by UTC date", func(t *testing.T) {
		t.Parallel()
		local := time.Date(2025, 1, 2, 0, 30, 0, 0, time.FixedZone("CET", 3600))
		stats := activity.Aggregate([]activity.Session{session(local, time.Minute, nil, "web")}, now)
		_, ok := stats.Day("2025-01-01")
		assert.True(t, ok)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		stats := activity.Aggregate(nil, now)
		assert.Empty(t, stats.ByDate)

		b, err := json.Marshal(stats)
		require.NoError(t, err)
		assert.JSONEq(t, `{"by_date":{}}`, string(b))
	})
}

func TestStatsMarshalJSON(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	stats := activity.Aggregate([]activity.Session{
		session(day, 10*time.Minute, ptr("python"), "web"),
		session(day.Add(24*time.Hour), 5*time.Minute, ptr("go"), "cli"),
	}, day.Add(72*time.Hour))

	b, err := json.Marshal(stats)
	require.NoError(t, err)

	assert.JSONEq(t, `{"by_date":{
		"2025-01-02":{"total_time_minutes":5,"by_language":{"go":5},"by_source":{"cli":5},"session_count":1},
		"2025-01-01":{"total_time_minutes":10,"by_language":{"python":10},"by_source":{"web":10},"session_count":1}
	}}`, string(b))

	assert.Less(t, strings.Index(string(b), "2025-01-02"), strings.Index(string(b), "2025-01-01"))
}

func TestServiceStats(t *testing.T) {
	t.Parallel()

	store := activity.NewMemoryStore()
	svc, clk := newService(t, store)
	owner := uuid.New()
	ctx := context.Background()

	_, err := svc.Start(ctx, owner, activity.StartParams{LanguageTag: "python"})
	require.NoError(t, err)
	clk.Advance(10 * time.Minute)
	_, err = svc.End(ctx, owner, activity.EndParams{})
	require.NoError(t, err)

	_, err = svc.Start(ctx, owner, activity.StartParams{LanguageTag: "go"})
	require.NoError(t, err)
	clk.Advance(5 * time.Minute)
	_, err = svc.End(ctx, owner, activity.EndParams{})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, owner, activity.DefaultWindowDays)
	require.NoError(t, err)
	got, ok := stats.Day("2025-01-01")
	require.True(t, ok)
	assert.Equal(t, 15.0, got.TotalMinutes)
	assert.Equal(t, map[string]float64{"python": 10.0, "go": 5.0}, got.ByLanguage)
	assert.Equal(t, 2, got.SessionCount)

	t.Run("window excludes older sessions", func(t *testing.T) {
		clk.Advance(2 * 24 * time.Hour)
		stats, err := svc.Stats(ctx, owner, 1)
		require.NoError(t, err)
		assert.Empty(t, stats.ByDate)

		stats, err = svc.Stats(ctx, owner, 3)
		require.NoError(t, err)
		assert.Len(t, stats.ByDate, 1)
	})

	t.Run("window bounds", func(t *testing.T) {
		for _, days := range []int{0, -1, activity.MaxWindowDays + 1} {
			_, err := svc.Stats(ctx, owner, days)
			assert.ErrorIs(t, err, activity.ErrInvalidInput, "days=%d", days)
		}
		_, err := svc.Stats(ctx, owner, activity.MaxWindowDays)
		assert.NoError(t, err)
	})
}
