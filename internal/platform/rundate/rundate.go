// Package rundate is the single source of truth for a run's date
// window. The reference date always comes from the caller (the
// application clock), never from a search provider or model: providers
// are known to carry stale notions of "today".
package rundate

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Cadence values accepted from specifications.
const (
	CadenceDaily   = "daily"
	CadenceWeekly  = "weekly"
	CadenceMonthly = "monthly"
)

// Lookback windows per cadence, in days.
const (
	lookbackDaily   = 2
	lookbackWeekly  = 7
	lookbackMonthly = 30

	minLookbackDays = 1
	maxLookbackDays = 365

	hoursPerDay = 24
)

// Window is the inclusive [Lookback, Reference] date range for a run.
type Window struct {
	Lookback  time.Time
	Reference time.Time
}

// Days returns the window length in whole days.
func (w Window) Days() int {
	return int(w.Reference.Sub(w.Lookback).Hours() / hoursPerDay)
}

// LookbackDays returns the lookback window for a cadence. Unknown
// cadences get the monthly window.
func LookbackDays(cadence string) int {
	switch strings.ToLower(strings.TrimSpace(cadence)) {
	case CadenceDaily:
		return lookbackDaily
	case CadenceWeekly:
		return lookbackWeekly
	default:
		return lookbackMonthly
	}
}

// FromCadence builds the run window for a cadence anchored at the
// given reference date.
func FromCadence(cadence string, reference time.Time) Window {
	return FromDays(LookbackDays(cadence), reference)
}

// FromDays builds the run window for an explicit lookback override
// (builder-supplied: 1, 7, 30). Days are clamped to [1, 365].
func FromDays(days int, reference time.Time) Window {
	if days < minLookbackDays {
		days = minLookbackDays
	}

	if days > maxLookbackDays {
		days = maxLookbackDays
	}

	return Window{
		Lookback:  reference.AddDate(0, 0, -days),
		Reference: reference,
	}
}

// publishedAtLayouts are the formats connectors and providers commonly
// report. Tried in order before handing off to dateparse.
var publishedAtLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
}

// ParsePublishedAt parses a candidate's published date defensively.
// Returns the zero time when the value cannot be parsed.
func ParsePublishedAt(value string) time.Time {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}
	}

	// ISO timestamps: the date part is enough for window checks.
	if len(s) >= 10 && s[4] == '-' && s[7] == '-' {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t
		}
	}

	if len(s) > 10 {
		s = s[:10]
	}

	for _, layout := range publishedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	t, err := dateparse.ParseAny(value)
	if err != nil {
		return time.Time{}
	}

	return t
}

// InRange reports whether a raw published-at value falls inside the
// window, inclusive on both ends. Unparseable or empty dates return
// true: connectors like sitemaps legitimately omit dates, and absence
// of a date must not silently exclude recent items.
func InRange(publishedAt string, w Window) bool {
	t := ParsePublishedAt(publishedAt)
	if t.IsZero() {
		return true
	}

	d := truncateToDay(t)
	lb := truncateToDay(w.Lookback)
	ref := truncateToDay(w.Reference)

	return !d.Before(lb) && !d.After(ref)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
