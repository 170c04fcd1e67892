/*
subscriptions.go - Subscription snapshot ingestion

PURPOSE:
  The subscription report lists package products rather than individual
  performances, so its path is simpler: every record becomes one snapshot
  row, deduplicated by the natural key (snapshot_date, category,
  package_name). Re-submitting the same report on the same day is a no-op,
  which is deliberately stricter than the performance-snapshot path.
*/
package ingest

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/marquee/ingest-engine/report"
	"github.com/marquee/ingest-engine/warehouse"
)

// SubscriptionResult is the subscription run's counter set.
type SubscriptionResult struct {
	Processed  int `json:"processed"`
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`
}

// SubscriptionIngester appends package snapshots.
type SubscriptionIngester struct {
	store warehouse.Store
	log   *slog.Logger
	now   func() time.Time
}

// NewSubscriptionIngester builds an ingester. A nil logger discards
// diagnostics.
func NewSubscriptionIngester(store warehouse.Store, log *slog.Logger) *SubscriptionIngester {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SubscriptionIngester{store: store, log: log, now: time.Now}
}

// Ingest writes one snapshot row per record, dated with the ingestion
// day. Rows whose natural key already exists count as duplicates.
func (si *SubscriptionIngester) Ingest(ctx context.Context, records []report.PackageSalesRecord) (SubscriptionResult, error) {
	res := SubscriptionResult{Processed: len(records)}
	if len(records) == 0 {
		return res, nil
	}

	now := si.now().UTC()
	rows := make([]warehouse.SubscriptionSnapshot, 0, len(records))
	for _, rec := range records {
		rows = append(rows, warehouse.SubscriptionSnapshot{
			ID:           uuid.NewString(),
			SnapshotDate: now,
			Category:     rec.Category,
			PackageType:  rec.PackageType,
			PackageName:  rec.PackageName,
			PackageSeats: rec.PackageSeats,
			PerfSeats:    rec.PerfSeats,
			TotalAmount:  rec.TotalAmount,
			PaidAmount:   rec.PaidAmount,
			Orders:       rec.Orders,
			CreatedAt:    now,
		})
	}

	inserted, err := si.store.InsertSubscriptionSnapshots(ctx, rows)
	if err != nil {
		return res, err
	}
	res.Inserted = int(inserted)
	res.Duplicates = res.Processed - res.Inserted

	si.log.Info("subscription ingest complete",
		"processed", res.Processed,
		"inserted", res.Inserted,
		"duplicates", res.Duplicates)
	return res, nil
}
