/*
comps.go - Comp-ticket patch engine

PURPOSE:
  The comp report arrives separately from the sales report and carries one
  derived field: complimentary tickets per performance. Rather than a full
  reconciliation, the engine patches that single field onto the most
  recent snapshot of each named performance.

  Never creates rows. Codes with no existing snapshot are reported under
  notFound and the warehouse is left untouched for them.
*/
package ingest

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/marquee/ingest-engine/report"
	"github.com/marquee/ingest-engine/warehouse"
)

// PatchResult is the comp run's counter set.
type PatchResult struct {
	Updated  int `json:"updated"`
	NotFound int `json:"notFound"`
}

// CompPatcher patches comp-ticket counts onto latest snapshots.
type CompPatcher struct {
	store warehouse.Store
	log   *slog.Logger
}

// NewCompPatcher builds a patcher. A nil logger discards diagnostics.
func NewCompPatcher(store warehouse.Store, log *slog.Logger) *CompPatcher {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CompPatcher{store: store, log: log}
}

// Patch resolves each code's most recent snapshot date in one batched
// query, then sets comp_tickets on exactly those rows in one batched
// update. A code listed twice keeps its last count.
func (p *CompPatcher) Patch(ctx context.Context, records []report.CompRecord) (PatchResult, error) {
	var res PatchResult
	if len(records) == 0 {
		return res, nil
	}

	byCode := make(map[string]int, len(records))
	codes := make([]string, 0, len(records))
	for _, rec := range records {
		if _, dup := byCode[rec.PerformanceCode]; !dup {
			codes = append(codes, rec.PerformanceCode)
		}
		byCode[rec.PerformanceCode] = rec.CompTickets
	}

	dates, err := p.store.LatestSnapshotDates(ctx, codes)
	if err != nil {
		return res, err
	}

	patches := make([]warehouse.CompPatch, 0, len(codes))
	for _, code := range codes {
		dateText, ok := dates[code]
		if !ok {
			p.log.Warn("comp patch skipped, no snapshot for code", "code", code)
			res.NotFound++
			continue
		}
		date, err := time.Parse(warehouse.DateOnly, dateText)
		if err != nil {
			p.log.Warn("comp patch skipped, bad snapshot date",
				"code", code, "date", dateText)
			res.NotFound++
			continue
		}
		patches = append(patches, warehouse.CompPatch{
			PerformanceCode: code,
			SnapshotDate:    date,
			CompTickets:     byCode[code],
		})
	}

	updated, err := p.store.PatchCompTickets(ctx, patches)
	if err != nil {
		return res, err
	}
	res.Updated = int(updated)

	p.log.Info("comp patch run complete",
		"updated", res.Updated,
		"notFound", res.NotFound)
	return res, nil
}
