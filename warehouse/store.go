/*
store.go - Warehouse storage contract

PURPOSE:
  The batched operations the ingestion engines are built on. Every method
  is one warehouse round trip regardless of how many codes it covers.

FAILURE SEMANTICS:
  Batch statements are not individually recoverable once issued. Any
  failure surfaces as a *BatchError wrapping the driver error, and the
  caller treats the whole run as failed and retriable. No partial-commit
  semantics are assumed beyond the warehouse's own per-statement
  atomicity.
*/
package warehouse

import (
	"context"
	"fmt"
)

// Store is the warehouse access contract. Implementations live under
// warehouse/sqlite; the engines in ingest depend only on this interface.
type Store interface {
	// PerformanceIDsByCode resolves codes to performance ids in one query.
	// Codes with no row are simply absent from the result map.
	PerformanceIDsByCode(ctx context.Context, codes []string) (map[string]int64, error)

	// InsertPerformances creates current-state rows in one batch insert.
	InsertPerformances(ctx context.Context, rows []Performance) error

	// UpdatePerformanceSales overwrites the sales figures of existing
	// current-state rows with a single multi-branch UPDATE keyed by code.
	UpdatePerformanceSales(ctx context.Context, updates []SalesUpdate) error

	// AppendSnapshots appends one snapshot row per element. Never updates.
	AppendSnapshots(ctx context.Context, rows []SalesSnapshot) error

	// LatestSnapshotDates returns, per code, the most recent snapshot
	// date. Codes with no snapshot are absent from the result map.
	LatestSnapshotDates(ctx context.Context, codes []string) (map[string]string, error)

	// PatchCompTickets sets comp_tickets on exactly the addressed snapshot
	// rows via one batched UPDATE, and returns how many rows changed.
	PatchCompTickets(ctx context.Context, patches []CompPatch) (int64, error)

	// InsertSubscriptionSnapshots inserts package snapshots, silently
	// skipping rows whose natural key already exists. Returns the number
	// actually inserted.
	InsertSubscriptionSnapshots(ctx context.Context, rows []SubscriptionSnapshot) (int64, error)

	// ListPerformances returns every current-state row, newest first.
	ListPerformances(ctx context.Context) ([]Performance, error)

	// SnapshotsByCode returns one performance's snapshots chronologically.
	SnapshotsByCode(ctx context.Context, code string) ([]SalesSnapshot, error)

	Close() error
}

// BatchError wraps the failure of one batched statement. The whole
// ingestion run aborts when one of these surfaces.
type BatchError struct {
	Op  string
	Err error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("warehouse batch %s failed: %v", e.Op, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }
