package activity

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"
	"strings"
	"time"
)

// Unknown labels sessions without a language tag or source in breakdowns.
const Unknown = "unknown"

const dateLayout = time.DateOnly

// Stats is a per-day rollup ordered by date descending.
type Stats struct {
	ByDate []DayStats
}

// DayStats summarizes the sessions started on one UTC calendar date.
type DayStats struct {
	Date         string             `json:"-"`
	TotalMinutes float64            `json:"total_time_minutes"`
	ByLanguage   map[string]float64 `json:"by_language"`
	BySource     map[string]float64 `json:"by_source"`
	SessionCount int                `json:"session_count"`
}

// Day returns the entry for date (YYYY-MM-DD).
func (s Stats) Day(date string) (DayStats, bool) {
	for _, d := range s.ByDate {
		if d.Date == date {
			return d, true
		}
	}
	return DayStats{}, false
}

// MarshalJSON renders {"by_date": {...}} keeping the descending date order.
func (s Stats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"by_date":{`)
	for i, day := range s.ByDate {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(day.Date)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(day)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}

type dayAccumulator struct {
	total      time.Duration
	count      int
	byLanguage map[string]time.Duration
	bySource   map[string]time.Duration
}

// Aggregate groups sessions by the UTC date they started on. Open sessions
// are measured until now. Minutes are rounded to two decimals only when the
// result is emitted.
func Aggregate(sessions []Session, now time.Time) Stats {
	days := make(map[string]*dayAccumulator)
	for _, s := range sessions {
		date := s.StartedAt.UTC().Format(dateLayout)
		acc, ok := days[date]
		if !ok {
			acc = &dayAccumulator{
				byLanguage: make(map[string]time.Duration),
				bySource:   make(map[string]time.Duration),
			}
			days[date] = acc
		}

		d := s.Duration(now)
		acc.total += d
		acc.count++

		lang := Unknown
		if s.LanguageTag != nil && *s.LanguageTag != "" {
			lang = *s.LanguageTag
		}
		acc.byLanguage[lang] += d

		source := s.Source
		if source == "" {
			source = Unknown
		}
		acc.bySource[source] += d
	}

	out := Stats{ByDate: make([]DayStats, 0, len(days))}
	for date, acc := range days {
		out.ByDate = append(out.ByDate, DayStats{
			Date:         date,
			TotalMinutes: minutes(acc.total),
			ByLanguage:   minutesMap(acc.byLanguage),
			BySource:     minutesMap(acc.bySource),
			SessionCount: acc.count,
		})
	}
	slices.SortFunc(out.ByDate, func(a, b DayStats) int {
		return strings.Compare(b.Date, a.Date)
	})
	return out
}

func minutes(d time.Duration) float64 {
	return math.Round(d.Minutes()*100) / 100
}

func minutesMap(m map[string]time.Duration) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, d := range m {
		out[k] = minutes(d)
	}
	return out
}
