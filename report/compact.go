/*
compact.go - Delimiter-free row parsing

PURPOSE:
  The hard case. Some extraction paths strip every bit of spacing, leaving
  a performance code, a date and a time immediately followed by the whole
  row's numbers as one unbroken digit run:

    251010E10/10/2025 8:00 PM51.1%48032,642.00171,209.60...

  The code/date/time prefix is peeled off with one anchored regex; the
  digit tail goes to the decoder in decode.go. Lines whose tail cannot be
  fully consumed are skipped, never fatal.
*/
package report

import (
	"regexp"
	"strings"
)

var compactLineRe = regexp.MustCompile(
	`^(\d{4,6}[A-Z]{1,2})(\d{1,2}/\d{1,2}/\d{4})\s*(\d{1,2}:\d{2}\s*[AP]M)(.*)$`)

type compactStrategy struct{}

func (compactStrategy) name() string { return StrategyCompact }

func (compactStrategy) parse(lines []string) []SalesRecord {
	var records []SalesRecord
	for _, line := range lines {
		m := compactLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		f, ok := decodeCompactTail(strings.TrimSpace(m[4]))
		if !ok {
			continue
		}

		date, dateOK := parseDate(m[2])
		records = append(records, SalesRecord{
			PerformanceCode:     m[1],
			PerformanceDate:     date,
			DateUncertain:       !dateOK,
			SingleTickets:       f.SingleCount + f.NonFixedCount,
			SubscriptionTickets: f.FixedCount,
			TotalRevenue:        f.TotalRevenue,
			CapacityPercent:     f.CapacityPercent,
			BudgetPercent:       f.BudgetPercent,
		})
	}
	return records
}
