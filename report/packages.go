/*
packages.go - Subscription and comp report parsing

PURPOSE:
  Two narrower report types ride the same ingestion pipeline:

  - The subscription report lists package products grouped under category
    headers. Each row becomes a PackageSalesRecord; the ingester dedups
    them by natural key.
  - The comp report lists performance codes with complimentary-ticket
    counts. Each row becomes a CompRecord for the patch engine.

  Both parsers follow the report package's locality rule: a row that does
  not decode is skipped, never fatal.
*/
package report

import (
	"strconv"
	"strings"
)

// A package row carries type, name and five numeric columns.
const packageMinFields = 7

// ParsePackageReport parses the subscription report. Lines consisting of a
// single known category label switch the current category; rows seen
// before any category header, or under an unknown label, are dropped.
func ParsePackageReport(lines []string) []PackageSalesRecord {
	var records []PackageSalesRecord
	var category PackageCategory
	haveCategory := false

	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 1 {
			if c, ok := ParsePackageCategory(fields[0]); ok {
				category = c
				haveCategory = true
			}
			continue
		}
		if !haveCategory || len(fields) < packageMinFields {
			continue
		}
		if rec, ok := packageRecord(category, fields); ok {
			records = append(records, rec)
		}
	}
	return records
}

// packageRecord decodes one package row. The trailing five fields are
// package seats, performance seats, total amount, paid amount and order
// count; everything between the type and those is the package name.
func packageRecord(category PackageCategory, f []string) (PackageSalesRecord, bool) {
	n := len(f)

	pkgSeats, err1 := strconv.Atoi(strings.ReplaceAll(f[n-5], ",", ""))
	perfSeats, err2 := strconv.Atoi(strings.ReplaceAll(f[n-4], ",", ""))
	orders, err3 := strconv.Atoi(strings.ReplaceAll(f[n-1], ",", ""))
	if err1 != nil || err2 != nil || err3 != nil {
		return PackageSalesRecord{}, false
	}

	return PackageSalesRecord{
		Category:     category,
		PackageType:  f[0],
		PackageName:  strings.Join(f[1:n-5], " "),
		PackageSeats: pkgSeats,
		PerfSeats:    perfSeats,
		TotalAmount:  moneyField(f[n-3]),
		PaidAmount:   moneyField(f[n-2]),
		Orders:       orders,
	}, true
}

// ParseCompReport parses the complimentary-ticket report: performance code
// first, comp count last, anything in between ignored.
func ParseCompReport(lines []string) []CompRecord {
	var records []CompRecord
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 2 || !codeRe.MatchString(fields[0]) {
			continue
		}
		comps, err := strconv.Atoi(strings.ReplaceAll(fields[len(fields)-1], ",", ""))
		if err != nil || comps < 0 {
			continue
		}
		records = append(records, CompRecord{
			PerformanceCode: fields[0],
			CompTickets:     comps,
		})
	}
	return records
}
