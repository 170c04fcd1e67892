package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee/ingest-engine/report"
)

func TestPatch_TargetsLatestSnapshotOnly(t *testing.T) {
	// GIVEN: A performance with snapshots from two runs
	// WHEN:  Patching its comp tickets
	// THEN:  Only the most recent snapshot changes

	store := newTestStore(t)
	ctx := context.Background()
	records := []report.SalesRecord{salesRecord("251010E")}

	_, err := newReconcilerAt(store, runDay1).Reconcile(ctx, records, report.StrategyTabular)
	require.NoError(t, err)
	_, err = newReconcilerAt(store, runDay2).Reconcile(ctx, records, report.StrategyTabular)
	require.NoError(t, err)

	res, err := NewCompPatcher(store, nil).Patch(ctx, []report.CompRecord{
		{PerformanceCode: "251010E", CompTickets: 24},
	})
	require.NoError(t, err)
	assert.Equal(t, PatchResult{Updated: 1}, res)

	snaps, err := store.SnapshotsByCode(ctx, "251010E")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Zero(t, snaps[0].CompTickets, "earlier run untouched")
	assert.Equal(t, 24, snaps[1].CompTickets)
}

func TestPatch_UnknownCodeNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := newReconcilerAt(store, runDay1).Reconcile(ctx,
		[]report.SalesRecord{salesRecord("251010E")}, report.StrategyTabular)
	require.NoError(t, err)

	res, err := NewCompPatcher(store, nil).Patch(ctx, []report.CompRecord{
		{PerformanceCode: "251010E", CompTickets: 6},
		{PerformanceCode: "999999Z", CompTickets: 99},
	})
	require.NoError(t, err)
	assert.Equal(t, PatchResult{Updated: 1, NotFound: 1}, res)

	// The miss creates nothing.
	snaps, err := store.SnapshotsByCode(ctx, "999999Z")
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestPatch_DuplicateCodeKeepsLastCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := newReconcilerAt(store, runDay1).Reconcile(ctx,
		[]report.SalesRecord{salesRecord("251010E")}, report.StrategyTabular)
	require.NoError(t, err)

	res, err := NewCompPatcher(store, nil).Patch(ctx, []report.CompRecord{
		{PerformanceCode: "251010E", CompTickets: 5},
		{PerformanceCode: "251010E", CompTickets: 9},
	})
	require.NoError(t, err)
	assert.Equal(t, PatchResult{Updated: 1}, res)

	snaps, err := store.SnapshotsByCode(ctx, "251010E")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 9, snaps[0].CompTickets)
}

func TestPatch_EmptyInput(t *testing.T) {
	store := newTestStore(t)

	res, err := NewCompPatcher(store, nil).Patch(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, PatchResult{}, res)
}
