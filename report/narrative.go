/*
narrative.go - Label:value report parsing

PURPOSE:
  Some report variants print one field per line ("Performance ID: 251010E",
  "Revenue: $51,642.30"). Records are reconstructed by sequential state
  accumulation: a new "ID:" line finalizes the record in progress, and the
  last record finalizes at end of input.

DEFAULTS:
  Fields the narrative omits fall back to documented placeholders:
  capacity 1000 and season "Unknown". The occupancy goal default lives in
  the reconciler, which owns all performance-row defaults.
*/
package report

import "strings"

type narrativeStrategy struct{}

func (narrativeStrategy) name() string { return StrategyNarrative }

func (narrativeStrategy) parse(lines []string) []SalesRecord {
	var records []SalesRecord
	var cur *SalesRecord

	flush := func() {
		if cur != nil && cur.PerformanceCode != "" {
			applyNarrativeDefaults(cur)
			records = append(records, *cur)
		}
		cur = nil
	}

	for _, line := range lines {
		label, value, ok := splitLabel(line)
		if !ok {
			continue
		}

		switch label {
		case "performance id", "performance", "id", "code":
			flush()
			if codeRe.MatchString(value) {
				cur = &SalesRecord{PerformanceCode: value}
			}
			continue
		}

		if cur == nil {
			continue
		}
		switch label {
		case "date", "performance date":
			date, dateOK := parseDate(value)
			cur.PerformanceDate = date
			cur.DateUncertain = !dateOK
		case "revenue", "total revenue":
			cur.TotalRevenue = moneyField(value)
		case "single tickets", "single":
			cur.SingleTickets = parseCount(value)
		case "subscription tickets", "subscriptions":
			cur.SubscriptionTickets = parseCount(value)
		case "capacity":
			cur.Capacity = parseCount(value)
		case "capacity %", "capacity percent":
			cur.CapacityPercent = percentField(value)
		case "budget %", "budget percent":
			cur.BudgetPercent = percentField(value)
		case "title":
			cur.Title = value
		case "season":
			cur.Season = value
		}
	}

	flush()
	return records
}

func applyNarrativeDefaults(r *SalesRecord) {
	if r.PerformanceDate.IsZero() {
		r.PerformanceDate = SentinelDate
		r.DateUncertain = true
	}
	if r.Capacity == 0 {
		r.Capacity = 1000
	}
	if r.Season == "" {
		r.Season = "Unknown"
	}
}

// splitLabel splits "Label: value" into a lowercase label and its value.
func splitLabel(line string) (label, value string, ok bool) {
	i := strings.Index(line, ":")
	if i < 0 {
		return "", "", false
	}
	label = strings.ToLower(strings.TrimSpace(line[:i]))
	value = strings.TrimSpace(line[i+1:])
	if label == "" || value == "" {
		return "", "", false
	}
	return label, value, true
}
