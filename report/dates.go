/*
dates.go - Free-form performance date parsing

PURPOSE:
  Report dates arrive in whatever layout the box-office system printed.
  A list of candidate layouts is tried in order; the first that parses
  wins. When none do, the sentinel date is returned together with
  uncertain=true so downstream code can flag the record instead of
  silently mis-ordering the time series.
*/
package report

import (
	"strings"
	"time"
)

// SentinelDate is substituted when a date fails to parse. Records carrying
// it are marked DateUncertain and counted as anomalies by the reconciler.
var SentinelDate = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// dateLayouts are tried in order. US-style month-first layouts come first
// because the box-office system prints M/D/YYYY.
var dateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"2006-01-02",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// parseDate parses free-form date text. The second return is false when the
// sentinel was substituted.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SentinelDate, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return SentinelDate, false
}
