/*
tabular.go - Whitespace-preserved row parsing

PURPOSE:
  When the extractor keeps column spacing, each report row splits cleanly
  on whitespace runs. A line qualifies when it has at least ten fields and
  its first field is a performance code; the named quantities then sit at
  fixed offsets.

  Offsets are anchored from the END of the line because the time column
  may tokenize as one field ("8:00PM") or two ("8:00 PM"). The last twelve
  fields are, right to left: capacity%, available seats, total, reserved,
  subtotal, single revenue, single count, non-fixed revenue, non-fixed
  count, fixed revenue, fixed count, budget%.
*/
package report

import "strings"

// A line must split into at least this many fields to qualify as tabular.
const tabularMinFields = 10

// Full decode needs code + date + the twelve end-anchored value fields.
const tabularDecodeFields = 14

type tabularStrategy struct{}

func (tabularStrategy) name() string { return StrategyTabular }

func (tabularStrategy) parse(lines []string) []SalesRecord {
	var records []SalesRecord
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < tabularMinFields || !codeRe.MatchString(fields[0]) {
			continue
		}
		if rec, ok := tabularRecord(fields); ok {
			records = append(records, rec)
		}
	}
	return records
}

func tabularRecord(f []string) (SalesRecord, bool) {
	if len(f) < tabularDecodeFields {
		return SalesRecord{}, false
	}
	n := len(f)

	date, dateOK := parseDate(f[1])
	fixedCount := parseCount(f[n-11])
	nonFixedCount := parseCount(f[n-9])
	singleCount := parseCount(f[n-7])

	return SalesRecord{
		PerformanceCode:     f[0],
		PerformanceDate:     date,
		DateUncertain:       !dateOK,
		SingleTickets:       singleCount + nonFixedCount,
		SubscriptionTickets: fixedCount,
		TotalRevenue:        moneyField(f[n-3]),
		CapacityPercent:     percentField(f[n-1]),
		BudgetPercent:       percentField(f[n-12]),
	}, true
}
