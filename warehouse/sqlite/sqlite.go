/*
Package sqlite provides the SQLite-backed implementation of the warehouse
Store interface.

PURPOSE:
  Implements every batched operation the ingestion engines need using
  SQLite. In production the same patterns apply to PostgreSQL - only minor
  SQL dialect differences.

KEY TABLES:
  performances:                 Current state, one row per code
  performance_sales_snapshots:  Append-only sales trail
  subscription_sales_snapshots: Package sales, deduplicated by natural key

BATCHING:
  Reports carry hundreds of performances, so nothing here runs one
  statement per code:
  - Lookups use a single IN (...) query
  - Inserts use one multi-VALUES statement
  - The current-state update is one UPDATE with a CASE branch per code
  - The comp patch is one UPDATE joined against a UNION ALL virtual table
  All of it parameterized; no SQL is assembled from values.

APPEND-ONLY ENFORCEMENT:
  performance_sales_snapshots has exactly one UPDATE path, the comp-ticket
  patch, which touches the single addressed row per code. No DELETEs.

CONCURRENCY:
  Uses sync.RWMutex for in-process thread-safety, and WAL mode so readers
  don't block. Two concurrent runs touching the same code can still race
  between lookup and insert - accepted for this low-rate ingestion path.

USAGE:
  store, err := sqlite.New("./data/warehouse.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - warehouse/store.go: Interface definition
  - ingest/: The engines built on this store
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/marquee/ingest-engine/warehouse"
)

// Store implements warehouse.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Current state: one row per performance code
	CREATE TABLE IF NOT EXISTS performances (
		performance_id INTEGER PRIMARY KEY,
		performance_code TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		series TEXT NOT NULL,
		performance_date TEXT NOT NULL,
		venue TEXT NOT NULL,
		season TEXT NOT NULL,
		single_tickets_sold INTEGER NOT NULL DEFAULT 0,
		subscription_tickets_sold INTEGER NOT NULL DEFAULT 0,
		total_tickets_sold INTEGER NOT NULL DEFAULT 0,
		total_revenue TEXT NOT NULL DEFAULT '0',
		capacity INTEGER NOT NULL DEFAULT 0,
		capacity_percent TEXT NOT NULL DEFAULT '0',
		occupancy_goal INTEGER NOT NULL DEFAULT 0,
		budget_goal TEXT NOT NULL DEFAULT '0',
		budget_percent TEXT NOT NULL DEFAULT '0',
		has_sales_data INTEGER NOT NULL DEFAULT 0,
		last_pdf_import_date TEXT,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_performances_date
		ON performances(performance_date);

	-- Append-only sales trail: one row per (code, ingestion run)
	CREATE TABLE IF NOT EXISTS performance_sales_snapshots (
		snapshot_id TEXT PRIMARY KEY,
		performance_id INTEGER NOT NULL,
		performance_code TEXT NOT NULL,
		snapshot_date TEXT NOT NULL,
		single_tickets_sold INTEGER NOT NULL DEFAULT 0,
		subscription_tickets_sold INTEGER NOT NULL DEFAULT 0,
		total_tickets_sold INTEGER NOT NULL DEFAULT 0,
		total_revenue TEXT NOT NULL DEFAULT '0',
		capacity_percent TEXT NOT NULL DEFAULT '0',
		budget_percent TEXT NOT NULL DEFAULT '0',
		comp_tickets INTEGER NOT NULL DEFAULT 0,
		source TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- Hot path: latest-snapshot lookup per code
	CREATE INDEX IF NOT EXISTS idx_snapshots_code_date
		ON performance_sales_snapshots(performance_code, snapshot_date DESC);

	-- Package sales, deduplicated by natural key
	CREATE TABLE IF NOT EXISTS subscription_sales_snapshots (
		id TEXT PRIMARY KEY,
		snapshot_date TEXT NOT NULL,
		category TEXT NOT NULL,
		package_type TEXT NOT NULL,
		package_name TEXT NOT NULL,
		package_seats INTEGER NOT NULL DEFAULT 0,
		perf_seats INTEGER NOT NULL DEFAULT 0,
		total_amount TEXT NOT NULL DEFAULT '0',
		paid_amount TEXT NOT NULL DEFAULT '0',
		orders INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		UNIQUE(snapshot_date, category, package_name)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOOKUPS
// =============================================================================

// PerformanceIDsByCode resolves codes to ids in one IN (...) query.
func (s *Store) PerformanceIDsByCode(ctx context.Context, codes []string) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[string]int64, len(codes))
	if len(codes) == 0 {
		return ids, nil
	}

	query := `
		SELECT performance_code, performance_id
		FROM performances
		WHERE performance_code IN (` + placeholders(len(codes)) + `)`

	rows, err := s.db.QueryContext(ctx, query, stringArgs(codes)...)
	if err != nil {
		return nil, &warehouse.BatchError{Op: "performance lookup", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var code string
		var id int64
		if err := rows.Scan(&code, &id); err != nil {
			return nil, &warehouse.BatchError{Op: "performance lookup", Err: err}
		}
		ids[code] = id
	}
	return ids, rows.Err()
}

// LatestSnapshotDates returns the most recent snapshot date per code.
func (s *Store) LatestSnapshotDates(ctx context.Context, codes []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dates := make(map[string]string, len(codes))
	if len(codes) == 0 {
		return dates, nil
	}

	query := `
		SELECT performance_code, MAX(snapshot_date)
		FROM performance_sales_snapshots
		WHERE performance_code IN (` + placeholders(len(codes)) + `)
		GROUP BY performance_code`

	rows, err := s.db.QueryContext(ctx, query, stringArgs(codes)...)
	if err != nil {
		return nil, &warehouse.BatchError{Op: "latest snapshot lookup", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var code, date string
		if err := rows.Scan(&code, &date); err != nil {
			return nil, &warehouse.BatchError{Op: "latest snapshot lookup", Err: err}
		}
		dates[code] = date
	}
	return dates, rows.Err()
}

// =============================================================================
// CURRENT STATE WRITES
// =============================================================================

// InsertPerformances creates current-state rows in one multi-VALUES insert.
func (s *Store) InsertPerformances(ctx context.Context, rows []warehouse.Performance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(rows) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString(`
		INSERT INTO performances
		(performance_id, performance_code, title, series, performance_date, venue, season,
		 single_tickets_sold, subscription_tickets_sold, total_tickets_sold, total_revenue,
		 capacity, capacity_percent, occupancy_goal, budget_goal, budget_percent,
		 has_sales_data, last_pdf_import_date, updated_at)
		VALUES `)

	args := make([]any, 0, len(rows)*19)
	for i, r := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			r.PerformanceID,
			r.PerformanceCode,
			r.Title,
			r.Series,
			r.PerformanceDate.Format(warehouse.DateOnly),
			r.Venue,
			r.Season,
			r.SingleTicketsSold,
			r.SubscriptionTicketsSold,
			r.TotalTicketsSold,
			r.TotalRevenue.String(),
			r.Capacity,
			r.CapacityPercent.String(),
			r.OccupancyGoal,
			r.BudgetGoal.String(),
			r.BudgetPercent.String(),
			boolInt(r.HasSalesData),
			r.LastPDFImportDate.Format(warehouse.DateOnly),
			r.UpdatedAt.UTC().Format(time.RFC3339),
		)
	}

	if _, err := s.db.ExecContext(ctx, b.String(), args...); err != nil {
		return &warehouse.BatchError{Op: "performance insert", Err: err}
	}
	return nil
}

// UpdatePerformanceSales overwrites sales figures for every listed code in
// a single UPDATE. Each updated column is a CASE keyed by performance_code
// with one parameterized branch per code.
func (s *Store) UpdatePerformanceSales(ctx context.Context, updates []warehouse.SalesUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(updates) == 0 {
		return nil
	}

	columns := []struct {
		name string
		arg  func(u warehouse.SalesUpdate) any
	}{
		{"single_tickets_sold", func(u warehouse.SalesUpdate) any { return u.SingleTicketsSold }},
		{"subscription_tickets_sold", func(u warehouse.SalesUpdate) any { return u.SubscriptionTicketsSold }},
		{"total_tickets_sold", func(u warehouse.SalesUpdate) any { return u.TotalTicketsSold }},
		{"total_revenue", func(u warehouse.SalesUpdate) any { return u.TotalRevenue.String() }},
		{"capacity_percent", func(u warehouse.SalesUpdate) any { return u.CapacityPercent.String() }},
		{"budget_percent", func(u warehouse.SalesUpdate) any { return u.BudgetPercent.String() }},
		{"last_pdf_import_date", func(u warehouse.SalesUpdate) any { return u.LastPDFImportDate.Format(warehouse.DateOnly) }},
	}

	var b strings.Builder
	var args []any
	b.WriteString("UPDATE performances SET ")

	for i, col := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(col.name)
		b.WriteString(" = CASE performance_code")
		for _, u := range updates {
			b.WriteString(" WHEN ? THEN ?")
			args = append(args, u.PerformanceCode, col.arg(u))
		}
		b.WriteString(" ELSE ")
		b.WriteString(col.name)
		b.WriteString(" END")
	}

	b.WriteString(", has_sales_data = 1, updated_at = ? WHERE performance_code IN (")
	args = append(args, time.Now().UTC().Format(time.RFC3339))
	b.WriteString(placeholders(len(updates)))
	b.WriteString(")")
	for _, u := range updates {
		args = append(args, u.PerformanceCode)
	}

	if _, err := s.db.ExecContext(ctx, b.String(), args...); err != nil {
		return &warehouse.BatchError{Op: "performance update", Err: err}
	}
	return nil
}

// =============================================================================
// SNAPSHOT WRITES
// =============================================================================

// AppendSnapshots appends snapshot rows in one multi-VALUES insert.
func (s *Store) AppendSnapshots(ctx context.Context, rows []warehouse.SalesSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(rows) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString(`
		INSERT INTO performance_sales_snapshots
		(snapshot_id, performance_id, performance_code, snapshot_date,
		 single_tickets_sold, subscription_tickets_sold, total_tickets_sold,
		 total_revenue, capacity_percent, budget_percent, comp_tickets, source, created_at)
		VALUES `)

	args := make([]any, 0, len(rows)*13)
	for i, r := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			r.SnapshotID,
			r.PerformanceID,
			r.PerformanceCode,
			r.SnapshotDate.Format(warehouse.DateOnly),
			r.SingleTicketsSold,
			r.SubscriptionTicketsSold,
			r.TotalTicketsSold,
			r.TotalRevenue.String(),
			r.CapacityPercent.String(),
			r.BudgetPercent.String(),
			r.CompTickets,
			r.Source,
			r.CreatedAt.UTC().Format(time.RFC3339),
		)
	}

	if _, err := s.db.ExecContext(ctx, b.String(), args...); err != nil {
		return &warehouse.BatchError{Op: "snapshot append", Err: err}
	}
	return nil
}

// PatchCompTickets sets comp_tickets on the addressed snapshots with one
// UPDATE joined against a synthesized UNION ALL virtual table on
// (performance_code, snapshot_date).
func (s *Store) PatchCompTickets(ctx context.Context, patches []warehouse.CompPatch) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(patches) == 0 {
		return 0, nil
	}

	var b strings.Builder
	b.WriteString(`
		UPDATE performance_sales_snapshots AS s
		SET comp_tickets = v.comp_tickets
		FROM (`)

	args := make([]any, 0, len(patches)*3)
	for i, p := range patches {
		if i == 0 {
			b.WriteString("SELECT ? AS performance_code, ? AS snapshot_date, ? AS comp_tickets")
		} else {
			b.WriteString(" UNION ALL SELECT ?, ?, ?")
		}
		args = append(args, p.PerformanceCode, p.SnapshotDate.Format(warehouse.DateOnly), p.CompTickets)
	}

	b.WriteString(`) AS v
		WHERE s.performance_code = v.performance_code
		  AND s.snapshot_date = v.snapshot_date`)

	res, err := s.db.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return 0, &warehouse.BatchError{Op: "comp patch", Err: err}
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return 0, &warehouse.BatchError{Op: "comp patch", Err: err}
	}
	return updated, nil
}

// InsertSubscriptionSnapshots inserts package snapshots, skipping natural
// key duplicates. Returns the number of rows actually inserted.
func (s *Store) InsertSubscriptionSnapshots(ctx context.Context, rows []warehouse.SubscriptionSnapshot) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(rows) == 0 {
		return 0, nil
	}

	var b strings.Builder
	b.WriteString(`
		INSERT INTO subscription_sales_snapshots
		(id, snapshot_date, category, package_type, package_name,
		 package_seats, perf_seats, total_amount, paid_amount, orders, created_at)
		VALUES `)

	args := make([]any, 0, len(rows)*11)
	for i, r := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			r.ID,
			r.SnapshotDate.Format(warehouse.DateOnly),
			string(r.Category),
			r.PackageType,
			r.PackageName,
			r.PackageSeats,
			r.PerfSeats,
			r.TotalAmount.String(),
			r.PaidAmount.String(),
			r.Orders,
			r.CreatedAt.UTC().Format(time.RFC3339),
		)
	}
	b.WriteString(" ON CONFLICT(snapshot_date, category, package_name) DO NOTHING")

	res, err := s.db.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return 0, &warehouse.BatchError{Op: "subscription insert", Err: err}
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, &warehouse.BatchError{Op: "subscription insert", Err: err}
	}
	return inserted, nil
}

// =============================================================================
// READ-BACK
// =============================================================================

const performanceColumns = `
	performance_id, performance_code, title, series, performance_date, venue, season,
	single_tickets_sold, subscription_tickets_sold, total_tickets_sold, total_revenue,
	capacity, capacity_percent, occupancy_goal, budget_goal, budget_percent,
	has_sales_data, last_pdf_import_date, updated_at`

// ListPerformances returns every current-state row, newest date first.
func (s *Store) ListPerformances(ctx context.Context) ([]warehouse.Performance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + performanceColumns + `
		FROM performances
		ORDER BY performance_date DESC, performance_code ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &warehouse.BatchError{Op: "performance list", Err: err}
	}
	defer rows.Close()

	var out []warehouse.Performance
	for rows.Next() {
		p, err := scanPerformance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SnapshotsByCode returns one performance's snapshots chronologically.
func (s *Store) SnapshotsByCode(ctx context.Context, code string) ([]warehouse.SalesSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT snapshot_id, performance_id, performance_code, snapshot_date,
		       single_tickets_sold, subscription_tickets_sold, total_tickets_sold,
		       total_revenue, capacity_percent, budget_percent, comp_tickets, source, created_at
		FROM performance_sales_snapshots
		WHERE performance_code = ?
		ORDER BY snapshot_date ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, code)
	if err != nil {
		return nil, &warehouse.BatchError{Op: "snapshot list", Err: err}
	}
	defer rows.Close()

	var out []warehouse.SalesSnapshot
	for rows.Next() {
		var (
			snap         warehouse.SalesSnapshot
			snapshotDate string
			totalRevenue string
			capacityPct  string
			budgetPct    string
			createdAt    string
		)
		err := rows.Scan(
			&snap.SnapshotID, &snap.PerformanceID, &snap.PerformanceCode, &snapshotDate,
			&snap.SingleTicketsSold, &snap.SubscriptionTicketsSold, &snap.TotalTicketsSold,
			&totalRevenue, &capacityPct, &budgetPct, &snap.CompTickets, &snap.Source, &createdAt,
		)
		if err != nil {
			return nil, &warehouse.BatchError{Op: "snapshot list", Err: err}
		}
		snap.SnapshotDate, _ = time.Parse(warehouse.DateOnly, snapshotDate)
		snap.TotalRevenue = parseDecimal(totalRevenue)
		snap.CapacityPercent = parseDecimal(capacityPct)
		snap.BudgetPercent = parseDecimal(budgetPct)
		snap.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, snap)
	}
	return out, rows.Err()
}

func scanPerformance(rows *sql.Rows) (warehouse.Performance, error) {
	var (
		p            warehouse.Performance
		perfDate     string
		totalRevenue string
		capacityPct  string
		budgetGoal   string
		budgetPct    string
		hasSales     int
		lastImport   sql.NullString
		updatedAt    string
	)

	err := rows.Scan(
		&p.PerformanceID, &p.PerformanceCode, &p.Title, &p.Series, &perfDate, &p.Venue, &p.Season,
		&p.SingleTicketsSold, &p.SubscriptionTicketsSold, &p.TotalTicketsSold, &totalRevenue,
		&p.Capacity, &capacityPct, &p.OccupancyGoal, &budgetGoal, &budgetPct,
		&hasSales, &lastImport, &updatedAt,
	)
	if err != nil {
		return p, &warehouse.BatchError{Op: "performance list", Err: err}
	}

	p.PerformanceDate, _ = time.Parse(warehouse.DateOnly, perfDate)
	p.TotalRevenue = parseDecimal(totalRevenue)
	p.CapacityPercent = parseDecimal(capacityPct)
	p.BudgetGoal = parseDecimal(budgetGoal)
	p.BudgetPercent = parseDecimal(budgetPct)
	p.HasSalesData = hasSales != 0
	if lastImport.Valid {
		p.LastPDFImportDate, _ = time.Parse(warehouse.DateOnly, lastImport.String)
	}
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
