package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee/ingest-engine/report"
	"github.com/marquee/ingest-engine/warehouse"
)

func newIngesterAt(store warehouse.Store, day time.Time) *SubscriptionIngester {
	si := NewSubscriptionIngester(store, nil)
	si.now = func() time.Time { return day }
	return si
}

func packageRecord(name string) report.PackageSalesRecord {
	return report.PackageSalesRecord{
		Category:     report.CategoryClassical,
		PackageType:  "FULL",
		PackageName:  name,
		PackageSeats: 1234,
		PerfSeats:    8638,
		TotalAmount:  decimal.RequireFromString("123456"),
		PaidAmount:   decimal.RequireFromString("120100"),
		Orders:       617,
	}
}

func TestSubscriptionIngest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	res, err := newIngesterAt(store, runDay1).Ingest(ctx, []report.PackageSalesRecord{
		packageRecord("Saturday Masterworks A"),
		packageRecord("Sunday Matinee"),
	})
	require.NoError(t, err)
	assert.Equal(t, SubscriptionResult{Processed: 2, Inserted: 2}, res)
}

func TestSubscriptionIngest_SameDayResubmitIsNoop(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	records := []report.PackageSalesRecord{
		packageRecord("Saturday Masterworks A"),
		packageRecord("Sunday Matinee"),
	}

	_, err := newIngesterAt(store, runDay1).Ingest(ctx, records)
	require.NoError(t, err)

	res, err := newIngesterAt(store, runDay1).Ingest(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, SubscriptionResult{Processed: 2, Duplicates: 2}, res)
}

func TestSubscriptionIngest_NewDayInsertsAgain(t *testing.T) {
	// The natural key includes the snapshot date, so the weekly report
	// builds a time series rather than overwriting.
	store := newTestStore(t)
	ctx := context.Background()
	records := []report.PackageSalesRecord{packageRecord("Saturday Masterworks A")}

	_, err := newIngesterAt(store, runDay1).Ingest(ctx, records)
	require.NoError(t, err)

	res, err := newIngesterAt(store, runDay2).Ingest(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, SubscriptionResult{Processed: 1, Inserted: 1}, res)
}

func TestSubscriptionIngest_MixedBatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := newIngesterAt(store, runDay1).Ingest(ctx, []report.PackageSalesRecord{
		packageRecord("Saturday Masterworks A"),
	})
	require.NoError(t, err)

	res, err := newIngesterAt(store, runDay1).Ingest(ctx, []report.PackageSalesRecord{
		packageRecord("Saturday Masterworks A"),
		packageRecord("Friday Favorites"),
	})
	require.NoError(t, err)
	assert.Equal(t, SubscriptionResult{Processed: 2, Inserted: 1, Duplicates: 1}, res)
}

func TestSubscriptionIngest_EmptyInput(t *testing.T) {
	store := newTestStore(t)

	res, err := NewSubscriptionIngester(store, nil).Ingest(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, SubscriptionResult{}, res)
}
