/*
Package ingest turns freshly parsed report records into warehouse state.

PURPOSE:
  One ingestion run is one PDF, one call. The reconciler classifies every
  parsed record by performance code as new or existing and performs three
  batched operations against the warehouse: create missing current-state
  rows, append one snapshot per record, and overwrite the sales figures of
  existing rows. Sibling engines handle the comp-ticket patch and the
  subscription path.

RUN SEMANTICS:
  A run is a request-scoped, sequential series of batched warehouse calls.
  There is no cross-run coordination: two concurrent runs touching the
  same code can race between lookup and insert. Accepted risk - this path
  ingests periodic batch reports, not high-frequency events.

FAILURE SEMANTICS:
  Any batch failure aborts the run; the caller retries the whole input.
  Re-running identical input reproduces the same current state but appends
  a second snapshot per record - snapshots are not deduplicated by
  content.

SEE ALSO:
  - comps.go: Comp-ticket patch engine
  - subscriptions.go: Subscription snapshot ingestion
  - warehouse/store.go: The batched operations used here
*/
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marquee/ingest-engine/report"
	"github.com/marquee/ingest-engine/warehouse"
)

// Placeholder defaults for performance rows the report cannot fill in.
// They stand in until separate metadata enrichment; nothing downstream
// treats them as authoritative.
const (
	defaultCapacity      = 1600
	defaultOccupancyGoal = 85
	defaultVenue         = "Concert Hall"
)

// RunResult is the per-run counter set surfaced to the caller. The webhook
// layer serializes it verbatim.
type RunResult struct {
	Processed int `json:"processed"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Anomalies int `json:"anomalies"`
}

// Reconciler applies one run's records to the warehouse.
type Reconciler struct {
	store warehouse.Store
	log   *slog.Logger
	now   func() time.Time
}

// NewReconciler builds a reconciler. A nil logger discards diagnostics.
func NewReconciler(store warehouse.Store, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reconciler{store: store, log: log, now: time.Now}
}

// Reconcile classifies records by code, creates missing performances,
// appends one snapshot per record and batch-updates existing rows. The
// source string names the parser strategy and is stamped on every
// snapshot.
func (r *Reconciler) Reconcile(ctx context.Context, records []report.SalesRecord, source string) (RunResult, error) {
	res := RunResult{Processed: len(records)}
	if len(records) == 0 {
		return res, nil
	}

	now := r.now().UTC()

	codes := make([]string, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if !seen[rec.PerformanceCode] {
			seen[rec.PerformanceCode] = true
			codes = append(codes, rec.PerformanceCode)
		}
	}

	ids, err := r.store.PerformanceIDsByCode(ctx, codes)
	if err != nil {
		return res, err
	}

	// Partition and synthesize rows for codes the warehouse has never
	// seen. A code duplicated within one report creates a single row from
	// its first record.
	var newRows []warehouse.Performance
	var updates []warehouse.SalesUpdate
	updateIdx := make(map[string]int)

	for _, rec := range records {
		if rec.DateUncertain {
			r.log.Warn("record date unparseable, sentinel date substituted",
				"code", rec.PerformanceCode)
			res.Anomalies++
		}

		if _, exists := ids[rec.PerformanceCode]; exists {
			res.Updated++
			u := salesUpdate(rec, now)
			if i, dup := updateIdx[rec.PerformanceCode]; dup {
				updates[i] = u
			} else {
				updateIdx[rec.PerformanceCode] = len(updates)
				updates = append(updates, u)
			}
			continue
		}

		res.Inserted++
		row := newPerformance(rec, now)
		newRows = append(newRows, row)
		ids[rec.PerformanceCode] = row.PerformanceID
	}

	if len(newRows) > 0 {
		if err := r.store.InsertPerformances(ctx, newRows); err != nil {
			return res, err
		}
	}

	// Every record produces exactly one snapshot row per run. This is the
	// append-only historical trail.
	snapshots := make([]warehouse.SalesSnapshot, 0, len(records))
	for _, rec := range records {
		id, ok := ids[rec.PerformanceCode]
		if !ok {
			// Defensive: step 3 creates missing codes, so this stays zero
			// in the steady state.
			r.log.Warn("code unresolved after warehouse lookup",
				"code", rec.PerformanceCode)
			res.Anomalies++
			continue
		}
		snapshots = append(snapshots, warehouse.SalesSnapshot{
			SnapshotID:              uuid.NewString(),
			PerformanceID:           id,
			PerformanceCode:         rec.PerformanceCode,
			SnapshotDate:            now,
			SingleTicketsSold:       rec.SingleTickets,
			SubscriptionTicketsSold: rec.SubscriptionTickets,
			TotalTicketsSold:        rec.TotalTickets(),
			TotalRevenue:            rec.TotalRevenue,
			CapacityPercent:         rec.CapacityPercent,
			BudgetPercent:           rec.BudgetPercent,
			Source:                  source,
			CreatedAt:               now,
		})
	}
	if err := r.store.AppendSnapshots(ctx, snapshots); err != nil {
		return res, err
	}

	if err := r.store.UpdatePerformanceSales(ctx, updates); err != nil {
		return res, err
	}

	r.log.Info("reconciliation run complete",
		"processed", res.Processed,
		"inserted", res.Inserted,
		"updated", res.Updated,
		"anomalies", res.Anomalies,
		"source", source)
	return res, nil
}

func salesUpdate(rec report.SalesRecord, now time.Time) warehouse.SalesUpdate {
	return warehouse.SalesUpdate{
		PerformanceCode:         rec.PerformanceCode,
		SingleTicketsSold:       rec.SingleTickets,
		SubscriptionTicketsSold: rec.SubscriptionTickets,
		TotalTicketsSold:        rec.TotalTickets(),
		TotalRevenue:            rec.TotalRevenue,
		CapacityPercent:         rec.CapacityPercent,
		BudgetPercent:           rec.BudgetPercent,
		LastPDFImportDate:       now,
	}
}

func newPerformance(rec report.SalesRecord, now time.Time) warehouse.Performance {
	title := rec.Title
	if title == "" {
		title = "Performance " + rec.PerformanceCode
	}
	capacity := rec.Capacity
	if capacity == 0 {
		capacity = defaultCapacity
	}
	season := rec.Season
	if season == "" {
		season = seasonFromCode(rec.PerformanceCode)
	}

	return warehouse.Performance{
		PerformanceID:           synthesizeID(rec.PerformanceCode),
		PerformanceCode:         rec.PerformanceCode,
		Title:                   title,
		Series:                  seriesFromCode(rec.PerformanceCode),
		PerformanceDate:         rec.PerformanceDate,
		Venue:                   defaultVenue,
		Season:                  season,
		SingleTicketsSold:       rec.SingleTickets,
		SubscriptionTicketsSold: rec.SubscriptionTickets,
		TotalTicketsSold:        rec.TotalTickets(),
		TotalRevenue:            rec.TotalRevenue,
		Capacity:                capacity,
		CapacityPercent:         rec.CapacityPercent,
		OccupancyGoal:           defaultOccupancyGoal,
		BudgetGoal:              decimal.Zero,
		BudgetPercent:           rec.BudgetPercent,
		HasSalesData:            true,
		LastPDFImportDate:       now,
		UpdatedAt:               now,
	}
}

// synthesizeID derives a stable numeric id from the code: the numeric
// prefix, extended base-27 with the letter suffix so 251010E and 251010M
// never collide.
func synthesizeID(code string) int64 {
	i := 0
	for i < len(code) && code[i] >= '0' && code[i] <= '9' {
		i++
	}
	id, _ := strconv.ParseInt(code[:i], 10, 64)
	for _, c := range code[i:] {
		id = id*27 + int64(c-'A'+1)
	}
	return id
}

// seriesFromCode returns the series label encoded by the code's letter
// suffix.
func seriesFromCode(code string) string {
	i := 0
	for i < len(code) && code[i] >= '0' && code[i] <= '9' {
		i++
	}
	return code[i:]
}

// seasonFromCode expands the code's two-digit season prefix ("25" ->
// "2025-26").
func seasonFromCode(code string) string {
	if len(code) < 2 {
		return "Unknown"
	}
	yy, err := strconv.Atoi(code[:2])
	if err != nil {
		return "Unknown"
	}
	return fmt.Sprintf("20%02d-%02d", yy, (yy+1)%100)
}
