/*
fallback.go - Residual code extractor

PURPOSE:
  Exists purely so ingestion never hard-fails on a report layout the
  system has never seen. Scans the whole joined text for anything that
  looks like a performance-code reference and emits placeholder records
  with every sales field zero. Callers must treat the output as
  low-confidence; the parser tags it with StrategyFallback.
*/
package report

import (
	"regexp"
	"strings"
)

var fallbackCodeRe = regexp.MustCompile(`(Performance|Code)\s*:?\s*([A-Z0-9]{3,})`)

// fallbackExtract pulls candidate codes out of otherwise unparseable text.
// Duplicate codes collapse to one record, input order preserved.
func fallbackExtract(lines []string) []SalesRecord {
	matches := fallbackCodeRe.FindAllStringSubmatch(strings.Join(lines, "\n"), -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var records []SalesRecord
	for _, m := range matches {
		code := m[2]
		if seen[code] {
			continue
		}
		seen[code] = true
		records = append(records, SalesRecord{
			PerformanceCode: code,
			PerformanceDate: SentinelDate,
			DateUncertain:   true,
		})
	}
	return records
}
