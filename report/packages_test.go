package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee/ingest-engine/report"
)

func TestParsePackageReport(t *testing.T) {
	// GIVEN: A subscription report with category headers, multi-word
	//        package names and assorted noise
	// WHEN:  Parsing it
	// THEN:  Rows attach to the category in force; noise is dropped

	lines := []string{
		"Subscription Package Sales",
		"Orphan PKG Row 10 70 $100.00 $90.00 5", // before any category header
		"Classical",
		"FULL Saturday Masterworks A 1,234 8,638 $123,456.00 $120,100.00 617",
		"HALF Sunday Matinee 88 352 $9,240.00 $9,240.00 44",
		"Jazz", // unknown label, category unchanged
		"FULL Late Night 10 40 $1,000.00 $900.00 5",
		"Pops",
		"FULL Pops Weekend bad-seats 120 $3,000.00 $2,800.00 15", // numeric column fails
		"FLEX Choose Your Own 6 240 1,440 $36,000.00 $35,000.00 120",
	}

	records := report.ParsePackageReport(lines)
	require.Len(t, records, 4)

	first := records[0]
	assert.Equal(t, report.CategoryClassical, first.Category)
	assert.Equal(t, "FULL", first.PackageType)
	assert.Equal(t, "Saturday Masterworks A", first.PackageName)
	assert.Equal(t, 1234, first.PackageSeats)
	assert.Equal(t, 8638, first.PerfSeats)
	assert.True(t, first.TotalAmount.Equal(money("123456.00")))
	assert.True(t, first.PaidAmount.Equal(money("120100.00")))
	assert.Equal(t, 617, first.Orders)

	assert.Equal(t, report.CategoryClassical, records[1].Category)
	assert.Equal(t, report.CategoryClassical, records[2].Category,
		"unknown header leaves the category in force")

	last := records[3]
	assert.Equal(t, report.CategoryPops, last.Category)
	assert.Equal(t, "Choose Your Own 6", last.PackageName)
	assert.Equal(t, 240, last.PackageSeats)
	assert.Equal(t, 120, last.Orders)
}

func TestParsePackageCategory(t *testing.T) {
	for _, label := range []string{"Classical", "Pops", "Flex", "Family", "Specials"} {
		c, ok := report.ParsePackageCategory(label)
		assert.True(t, ok, label)
		assert.Equal(t, report.PackageCategory(label), c)
	}

	_, ok := report.ParsePackageCategory("classical")
	assert.False(t, ok, "labels are case-sensitive")
	_, ok = report.ParsePackageCategory("Jazz")
	assert.False(t, ok)
}

func TestParseCompReport(t *testing.T) {
	lines := []string{
		"Complimentary Tickets by Performance",
		"251010E Opening Night 24",
		"251011M 6",
		"251012E Gala -3", // negative counts rejected
		"not-a-code 12",
		"251013E Closing Night n/a",
		"251014E 1,024",
	}

	records := report.ParseCompReport(lines)
	require.Len(t, records, 3)

	assert.Equal(t, "251010E", records[0].PerformanceCode)
	assert.Equal(t, 24, records[0].CompTickets)
	assert.Equal(t, "251011M", records[1].PerformanceCode)
	assert.Equal(t, 6, records[1].CompTickets)
	assert.Equal(t, "251014E", records[2].PerformanceCode)
	assert.Equal(t, 1024, records[2].CompTickets)
}
