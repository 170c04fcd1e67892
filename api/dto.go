/*
dto.go - Data Transfer Objects for webhook requests and responses

PURPOSE:
  Defines the JSON structures the webhook layer exchanges with the report
  automation tool and the dashboard. These decouple the warehouse row
  types from the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/marquee/ingest-engine/warehouse"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// PagesRequest is the JSON body variant of the sales-report webhook: one
// fragment list per PDF page, in reading order, as delivered by the
// upstream extractor. The alternative is a plain text body.
type PagesRequest struct {
	Pages [][]string `json:"pages"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// IngestResponse wraps a run's counters with the parser strategy used, so
// callers can spot low-confidence fallback ingests.
type IngestResponse struct {
	Processed int    `json:"processed"`
	Inserted  int    `json:"inserted"`
	Updated   int    `json:"updated"`
	Anomalies int    `json:"anomalies"`
	Strategy  string `json:"strategy"`
}

// ErrorResponse reports a failed run: one message plus which stage failed.
type ErrorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage"`
}

// PerformanceDTO is one current-state row.
type PerformanceDTO struct {
	PerformanceID   int64           `json:"performance_id"`
	PerformanceCode string          `json:"performance_code"`
	Title           string          `json:"title"`
	Series          string          `json:"series"`
	PerformanceDate string          `json:"performance_date"`
	Venue           string          `json:"venue"`
	Season          string          `json:"season"`
	SingleTickets   int             `json:"single_tickets_sold"`
	SubTickets      int             `json:"subscription_tickets_sold"`
	TotalTickets    int             `json:"total_tickets_sold"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	Capacity        int             `json:"capacity"`
	CapacityPercent decimal.Decimal `json:"capacity_percent"`
	OccupancyGoal   int             `json:"occupancy_goal"`
	BudgetGoal      decimal.Decimal `json:"budget_goal"`
	BudgetPercent   decimal.Decimal `json:"budget_percent"`
	HasSalesData    bool            `json:"has_sales_data"`
	LastImportDate  string          `json:"last_pdf_import_date"`
}

// SnapshotDTO is one point of a performance's sales curve.
type SnapshotDTO struct {
	SnapshotID      string          `json:"snapshot_id"`
	PerformanceCode string          `json:"performance_code"`
	SnapshotDate    string          `json:"snapshot_date"`
	SingleTickets   int             `json:"single_tickets_sold"`
	SubTickets      int             `json:"subscription_tickets_sold"`
	TotalTickets    int             `json:"total_tickets_sold"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	CapacityPercent decimal.Decimal `json:"capacity_percent"`
	BudgetPercent   decimal.Decimal `json:"budget_percent"`
	CompTickets     int             `json:"comp_tickets"`
	Source          string          `json:"source"`
}

func performanceDTO(p warehouse.Performance) PerformanceDTO {
	dto := PerformanceDTO{
		PerformanceID:   p.PerformanceID,
		PerformanceCode: p.PerformanceCode,
		Title:           p.Title,
		Series:          p.Series,
		PerformanceDate: p.PerformanceDate.Format(warehouse.DateOnly),
		Venue:           p.Venue,
		Season:          p.Season,
		SingleTickets:   p.SingleTicketsSold,
		SubTickets:      p.SubscriptionTicketsSold,
		TotalTickets:    p.TotalTicketsSold,
		TotalRevenue:    p.TotalRevenue,
		Capacity:        p.Capacity,
		CapacityPercent: p.CapacityPercent,
		OccupancyGoal:   p.OccupancyGoal,
		BudgetGoal:      p.BudgetGoal,
		BudgetPercent:   p.BudgetPercent,
		HasSalesData:    p.HasSalesData,
	}
	if !p.LastPDFImportDate.IsZero() {
		dto.LastImportDate = p.LastPDFImportDate.Format(warehouse.DateOnly)
	}
	return dto
}

func snapshotDTO(s warehouse.SalesSnapshot) SnapshotDTO {
	return SnapshotDTO{
		SnapshotID:      s.SnapshotID,
		PerformanceCode: s.PerformanceCode,
		SnapshotDate:    s.SnapshotDate.Format(warehouse.DateOnly),
		SingleTickets:   s.SingleTicketsSold,
		SubTickets:      s.SubscriptionTicketsSold,
		TotalTickets:    s.TotalTicketsSold,
		TotalRevenue:    s.TotalRevenue,
		CapacityPercent: s.CapacityPercent,
		BudgetPercent:   s.BudgetPercent,
		CompTickets:     s.CompTickets,
		Source:          s.Source,
	}
}
