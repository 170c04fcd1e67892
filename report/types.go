/*
Package report extracts structured per-performance sales figures from
box-office PDF report text.

PURPOSE:
  The upstream extractor turns a PDF page into text, but the shape of that
  text varies with how the PDF was produced: sometimes column spacing
  survives, sometimes an entire row collapses into one unbroken digit run.
  This package hides that variance behind a single Parse call that tries a
  fixed, ordered list of strategies and returns the first non-empty result.

KEY TYPES IN THIS FILE (types.go):
  - SalesRecord:        One performance's sales figures for one ingestion run
  - PackageSalesRecord: One subscription package's figures (separate report)
  - PackageCategory:    Fixed enum of subscription categories

DESIGN PRINCIPLES:
  1. Purity: parsing never touches the warehouse; it returns data only
  2. Precision: currency and percentages use decimal.Decimal, never float64
  3. Locality: a malformed line is skipped, never aborts the batch

SEE ALSO:
  - parser.go: Strategy dispatch
  - decode.go: Compact-format field recovery
*/
package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SALES RECORD - Parser output unit
// =============================================================================

// SalesRecord holds one performance's sales figures as recovered from a
// report. It is created fresh per parse, consumed once by the reconciler,
// and never persisted itself.
//
// SingleTickets counts walk-up seats plus non-fixed package seats.
// SubscriptionTickets counts fixed-package seats only. The non-fixed
// category is sold as a package product but its seats report as single
// tickets, so the two fields are sums over sub-categories, not renamed
// report columns.
type SalesRecord struct {
	PerformanceCode string
	PerformanceDate time.Time

	// DateUncertain marks records whose date text failed to parse and fell
	// back to the sentinel date. The reconciler counts these as anomalies
	// instead of silently corrupting the time series.
	DateUncertain bool

	SingleTickets       int
	SubscriptionTickets int

	TotalRevenue    decimal.Decimal
	CapacityPercent decimal.Decimal
	BudgetPercent   decimal.Decimal

	// Optional metadata. Only the narrative format carries these; zero
	// values mean "not reported" and the reconciler substitutes its own
	// placeholder defaults.
	Title    string
	Season   string
	Capacity int
}

// TotalTickets returns the combined sold count.
func (r SalesRecord) TotalTickets() int {
	return r.SingleTickets + r.SubscriptionTickets
}

// =============================================================================
// PACKAGE SALES RECORD - Subscription report output unit
// =============================================================================

// PackageCategory is the fixed set of subscription categories. Rows with a
// category outside this set are rejected per line.
type PackageCategory string

const (
	CategoryClassical PackageCategory = "Classical"
	CategoryPops      PackageCategory = "Pops"
	CategoryFlex      PackageCategory = "Flex"
	CategoryFamily    PackageCategory = "Family"
	CategorySpecials  PackageCategory = "Specials"
)

// ParsePackageCategory maps a report label onto the category enum.
func ParsePackageCategory(s string) (PackageCategory, bool) {
	switch PackageCategory(s) {
	case CategoryClassical, CategoryPops, CategoryFlex, CategoryFamily, CategorySpecials:
		return PackageCategory(s), true
	}
	return "", false
}

// PackageSalesRecord holds one subscription package's figures. The natural
// key (SnapshotDate, Category, PackageName) deduplicates resubmissions.
type PackageSalesRecord struct {
	Category     PackageCategory
	PackageType  string
	PackageName  string
	PackageSeats int
	PerfSeats    int
	TotalAmount  decimal.Decimal
	PaidAmount   decimal.Decimal
	Orders       int
}

// CompRecord is one row of the complimentary-ticket report. It patches a
// single field onto the most recent snapshot of the named performance.
type CompRecord struct {
	PerformanceCode string
	CompTickets     int
}
