package report_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee/ingest-engine/report"
)

const (
	tabularLine = "251010E 10/10/2025 8:00 PM 51.1% 480 $32,642.00 17 $1,209.60 340 $17,790.70 $51,642.30 $0.00 $51,642.30 614 52.8%"
	compactLine = "251010E10/10/2025 8:00 PM51.1%48032,642.00171,209.6034017,790.7051,642.3000.0051,642.3061452.8%"
)

func money(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// STRATEGY: TABULAR
// =============================================================================

func TestParse_Tabular(t *testing.T) {
	// GIVEN: A report whose column spacing survived extraction
	// WHEN:  Parsing it together with surrounding header noise
	// THEN:  Only the data row decodes, with both package sub-categories
	//        folded into the single-ticket count

	lines := []string{
		"Ticket Sales by Performance",
		"Perf    Date       Time    Budget  Fixed ...",
		tabularLine,
	}

	records, strategy, err := report.NewParser(nil).Parse(lines)
	require.NoError(t, err)
	assert.Equal(t, report.StrategyTabular, strategy)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "251010E", r.PerformanceCode)
	assert.True(t, r.PerformanceDate.Equal(time.Date(2025, time.October, 10, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.DateUncertain)
	assert.Equal(t, 357, r.SingleTickets, "340 single + 17 non-fixed")
	assert.Equal(t, 480, r.SubscriptionTickets, "fixed packages only")
	assert.Equal(t, 837, r.TotalTickets())
	assert.True(t, r.TotalRevenue.Equal(money("51642.30")), "got %s", r.TotalRevenue)
	assert.True(t, r.CapacityPercent.Equal(money("52.8")))
	assert.True(t, r.BudgetPercent.Equal(money("51.1")))
}

// =============================================================================
// STRATEGY: COMPACT
// =============================================================================

func TestParse_Compact(t *testing.T) {
	// The same row with every delimiter stripped must produce the same
	// record as the tabular rendering.

	compact, strategy, err := report.NewParser(nil).Parse([]string{compactLine})
	require.NoError(t, err)
	assert.Equal(t, report.StrategyCompact, strategy)
	require.Len(t, compact, 1)

	tabular, _, err := report.NewParser(nil).Parse([]string{tabularLine})
	require.NoError(t, err)
	require.Len(t, tabular, 1)

	assert.Equal(t, tabular[0].PerformanceCode, compact[0].PerformanceCode)
	assert.Equal(t, tabular[0].PerformanceDate, compact[0].PerformanceDate)
	assert.Equal(t, tabular[0].SingleTickets, compact[0].SingleTickets)
	assert.Equal(t, tabular[0].SubscriptionTickets, compact[0].SubscriptionTickets)
	assert.True(t, tabular[0].TotalRevenue.Equal(compact[0].TotalRevenue))
	assert.True(t, tabular[0].CapacityPercent.Equal(compact[0].CapacityPercent))
	assert.True(t, tabular[0].BudgetPercent.Equal(compact[0].BudgetPercent))
}

func TestParse_CompactSkipsUndecodableLines(t *testing.T) {
	lines := []string{
		compactLine,
		"251011M10/11/2025 2:00 PM51.1%garbage52.8%",
	}

	records, strategy, err := report.NewParser(nil).Parse(lines)
	require.NoError(t, err)
	assert.Equal(t, report.StrategyCompact, strategy)
	assert.Len(t, records, 1, "undecodable line skipped, not fatal")
}

func TestParse_CompactUnparseableDate(t *testing.T) {
	// A date-shaped token that is not a real date falls back to the
	// sentinel and flags the record.
	line := "251010E99/99/2025 8:00 PM51.1%48032,642.00171,209.6034017,790.7051,642.3000.0051,642.3061452.8%"

	records, _, err := report.NewParser(nil).Parse([]string{line})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].DateUncertain)
	assert.Equal(t, report.SentinelDate, records[0].PerformanceDate)
}

// =============================================================================
// STRATEGY PRIORITY
// =============================================================================

func TestParse_TabularBeatsCompact(t *testing.T) {
	// When a report mixes renderings, the highest-priority strategy that
	// matches anything wins outright; lower strategies never contribute.
	lines := []string{
		compactLine,
		"251011M 10/11/2025 2:00 PM 40.0% 100 $6,400.00 10 $640.00 50 $3,200.00 $10,240.00 $0.00 $10,240.00 900 30.0%",
	}

	records, strategy, err := report.NewParser(nil).Parse(lines)
	require.NoError(t, err)
	assert.Equal(t, report.StrategyTabular, strategy)
	require.Len(t, records, 1)
	assert.Equal(t, "251011M", records[0].PerformanceCode)
}

// =============================================================================
// STRATEGY: NARRATIVE
// =============================================================================

func TestParse_Narrative(t *testing.T) {
	lines := []string{
		"Performance ID: 251010E",
		"Title: Opening Night",
		"Date: 10/10/2025",
		"Revenue: $51,642.30",
		"Single Tickets: 357",
		"Subscription Tickets: 480",
		"Capacity: 1404",
		"Season: 2025-26",
		"Performance ID: 251011M",
		"Date: 10/11/2025",
		"Revenue: $10,240.00",
	}

	records, strategy, err := report.NewParser(nil).Parse(lines)
	require.NoError(t, err)
	assert.Equal(t, report.StrategyNarrative, strategy)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "251010E", first.PerformanceCode)
	assert.Equal(t, "Opening Night", first.Title)
	assert.Equal(t, "2025-26", first.Season)
	assert.Equal(t, 1404, first.Capacity)
	assert.Equal(t, 357, first.SingleTickets)
	assert.Equal(t, 480, first.SubscriptionTickets)
	assert.True(t, first.TotalRevenue.Equal(money("51642.30")))

	second := records[1]
	assert.Equal(t, "251011M", second.PerformanceCode)
	assert.Equal(t, 1000, second.Capacity, "omitted capacity defaults")
	assert.Equal(t, "Unknown", second.Season, "omitted season defaults")
	assert.False(t, second.DateUncertain)
}

func TestParse_NarrativeMissingDateFlagged(t *testing.T) {
	lines := []string{
		"Performance ID: 251010E",
		"Revenue: $100.00",
	}

	records, _, err := report.NewParser(nil).Parse(lines)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].DateUncertain)
	assert.Equal(t, report.SentinelDate, records[0].PerformanceDate)
}

// =============================================================================
// STRATEGY: FALLBACK
// =============================================================================

func TestParse_FallbackExtractsCodes(t *testing.T) {
	// Unrecognized layouts still surface whatever code references they
	// contain, as zero-sales placeholders.
	lines := []string{
		"Weekly summary covering Performance 251010E and",
		"Performance 251011M, repeating Performance 251010E.",
	}

	records, strategy, err := report.NewParser(nil).Parse(lines)
	require.NoError(t, err)
	assert.Equal(t, report.StrategyFallback, strategy)
	require.Len(t, records, 2, "duplicate codes collapse")

	assert.Equal(t, "251010E", records[0].PerformanceCode)
	assert.Equal(t, "251011M", records[1].PerformanceCode)
	for _, r := range records {
		assert.True(t, r.DateUncertain)
		assert.Equal(t, report.SentinelDate, r.PerformanceDate)
		assert.Zero(t, r.TotalTickets())
		assert.True(t, r.TotalRevenue.IsZero())
	}
}

func TestParse_NoMatchingFormat(t *testing.T) {
	_, _, err := report.NewParser(nil).Parse([]string{"hello world", "12345"})
	assert.ErrorIs(t, err, report.ErrNoMatchingFormat)

	_, _, err = report.NewParser(nil).Parse(nil)
	assert.ErrorIs(t, err, report.ErrNoMatchingFormat)
}

// =============================================================================
// INPUT FUNNELS
// =============================================================================

func TestParseText(t *testing.T) {
	blob := "Ticket Sales by Performance\r\n\r\n" + compactLine + "\n\n"

	records, strategy, err := report.NewParser(nil).ParseText(blob)
	require.NoError(t, err)
	assert.Equal(t, report.StrategyCompact, strategy)
	assert.Len(t, records, 1)
}

func TestParsePages(t *testing.T) {
	pages := [][]string{
		{"Ticket Sales by Performance", compactLine},
		{"251011M10/11/2025 2:00 PM40.0%1006,400.0010640.00503,200.0010,240.0000.0010,240.0090030.0%"},
	}

	records, strategy, err := report.NewParser(nil).ParsePages(pages)
	require.NoError(t, err)
	assert.Equal(t, report.StrategyCompact, strategy)
	require.Len(t, records, 2)
	assert.Equal(t, "251010E", records[0].PerformanceCode)
	assert.Equal(t, "251011M", records[1].PerformanceCode)
}

func TestSplitLines(t *testing.T) {
	lines := report.SplitLines("  a \r\n\r\n b\n\nc ")
	assert.Equal(t, []string{"a", "b", "c"}, lines)
}
