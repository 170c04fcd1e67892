/*
Package warehouse defines the storage contract for the ticket-sales
warehouse: the row types both tables carry and the batched operations the
ingestion engines need.

PURPOSE:
  Two tables hold performance sales. `performances` is current state - one
  row per performance code, overwritten on every ingestion that touches
  the code. `performance_sales_snapshots` is the append-only historical
  trail - one row per (code, ingestion run), used to reconstruct a sales
  curve over time. A third table, `subscription_sales_snapshots`, holds
  package sales deduplicated by natural key.

DESIGN PRINCIPLES:
  1. Precision: money and percentages are decimal.Decimal end to end
  2. Batching: every operation covers many codes in one statement - the
     reconciler must not pay one round trip per performance
  3. Append-only: snapshots are never updated, with one narrow exception
     (the comp-ticket patch on the most recent row per code)

SEE ALSO:
  - store.go: The Store interface
  - sqlite/: The SQLite implementation
*/
package warehouse

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/marquee/ingest-engine/report"
)

// =============================================================================
// CURRENT STATE - performances table
// =============================================================================

// Performance is one row of the current-state table. Static metadata
// (title, venue, capacity, goals) is set once at creation with placeholder
// defaults and enriched separately; sales figures are overwritten on every
// ingestion.
type Performance struct {
	PerformanceID   int64
	PerformanceCode string
	Title           string
	Series          string
	PerformanceDate time.Time
	Venue           string
	Season          string

	SingleTicketsSold       int
	SubscriptionTicketsSold int
	TotalTicketsSold        int
	TotalRevenue            decimal.Decimal

	Capacity        int
	CapacityPercent decimal.Decimal
	OccupancyGoal   int
	BudgetGoal      decimal.Decimal
	BudgetPercent   decimal.Decimal

	HasSalesData      bool
	LastPDFImportDate time.Time
	UpdatedAt         time.Time
}

// SalesUpdate carries the per-code sales figures for the batched
// current-state update. One multi-branch UPDATE statement covers the whole
// slice.
type SalesUpdate struct {
	PerformanceCode         string
	SingleTicketsSold       int
	SubscriptionTicketsSold int
	TotalTicketsSold        int
	TotalRevenue            decimal.Decimal
	CapacityPercent         decimal.Decimal
	BudgetPercent           decimal.Decimal
	LastPDFImportDate       time.Time
}

// =============================================================================
// HISTORICAL TRAIL - performance_sales_snapshots table
// =============================================================================

// SalesSnapshot is one immutable record of a performance's cumulative
// sales at ingestion time. Snapshots are not deduplicated by content:
// re-running a run appends a second row. Source names the parser strategy
// that produced the run, so fallback ingests stay distinguishable.
type SalesSnapshot struct {
	SnapshotID      string
	PerformanceID   int64
	PerformanceCode string
	SnapshotDate    time.Time

	SingleTicketsSold       int
	SubscriptionTicketsSold int
	TotalTicketsSold        int
	TotalRevenue            decimal.Decimal
	CapacityPercent         decimal.Decimal
	BudgetPercent           decimal.Decimal

	CompTickets int
	Source      string
	CreatedAt   time.Time
}

// CompPatch targets the snapshot identified by (code, snapshot date) with
// a complimentary-ticket count.
type CompPatch struct {
	PerformanceCode string
	SnapshotDate    time.Time
	CompTickets     int
}

// =============================================================================
// SUBSCRIPTIONS - subscription_sales_snapshots table
// =============================================================================

// SubscriptionSnapshot is one package's sales at snapshot time. Unlike
// performance snapshots these dedup on (snapshot_date, category,
// package_name); resubmitting the same report is a no-op.
type SubscriptionSnapshot struct {
	ID           string
	SnapshotDate time.Time
	Category     report.PackageCategory
	PackageType  string
	PackageName  string
	PackageSeats int
	PerfSeats    int
	TotalAmount  decimal.Decimal
	PaidAmount   decimal.Decimal
	Orders       int
	CreatedAt    time.Time
}

// DateOnly is the canonical storage format for snapshot dates.
const DateOnly = "2006-01-02"
