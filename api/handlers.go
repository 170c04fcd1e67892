/*
handlers.go - Webhook and read-back handlers

PURPOSE:
  The thin HTTP surface over the ingestion engines. Handlers deserialize,
  call one engine, and serialize either the run's counters or a single
  error message naming the stage that failed.

ENDPOINTS:
  Webhooks (called by the report automation tool):
    POST /api/webhooks/sales-report         Ticket-sales PDF text
    POST /api/webhooks/subscription-report  Package sales report
    POST /api/webhooks/comp-report          Comp-ticket report

  Read-back (used by the dashboard):
    GET  /api/performances                  Current state
    GET  /api/performances/{code}/snapshots Sales curve, chronological
    GET  /api/health                        Liveness

REQUEST BODIES:
  The sales-report webhook accepts either a plain text body (newline
  delimited report text) or application/json {"pages": [["fragment"...]]}
  with the extractor's ordered fragments - upstream extraction mode
  varies, so both must work.

ERROR HANDLING:
  - 400: Unreadable/empty body
  - 404: Unknown performance code on read-back
  - 422: No parsing strategy matched the report
  - 500: Warehouse batch failure

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/marquee/ingest-engine/ingest"
	"github.com/marquee/ingest-engine/report"
	"github.com/marquee/ingest-engine/warehouse"
)

// Stage names reported in error responses.
const (
	stageRead      = "read"
	stageParse     = "parse"
	stageReconcile = "reconcile"
	stagePatch     = "patch"
	stageQuery     = "query"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	store      warehouse.Store
	parser     *report.Parser
	reconciler *ingest.Reconciler
	comps      *ingest.CompPatcher
	subs       *ingest.SubscriptionIngester
	log        *slog.Logger
}

// NewHandler wires the engines over the given store.
func NewHandler(store warehouse.Store, log *slog.Logger) *Handler {
	return &Handler{
		store:      store,
		parser:     report.NewParser(log),
		reconciler: ingest.NewReconciler(store, log),
		comps:      ingest.NewCompPatcher(store, log),
		subs:       ingest.NewSubscriptionIngester(store, log),
		log:        log,
	}
}

// =============================================================================
// WEBHOOKS
// =============================================================================

// SalesReportWebhook ingests one ticket-sales report.
func (h *Handler) SalesReportWebhook(w http.ResponseWriter, r *http.Request) {
	lines, ok := h.reportLines(w, r)
	if !ok {
		return
	}

	records, strategyUsed, err := h.parser.Parse(lines)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, stageParse, err)
		return
	}

	result, err := h.reconciler.Reconcile(r.Context(), records, strategyUsed)
	if err != nil {
		writeError(w, http.StatusInternalServerError, stageReconcile, err)
		return
	}

	writeJSON(w, http.StatusOK, IngestResponse{
		Processed: result.Processed,
		Inserted:  result.Inserted,
		Updated:   result.Updated,
		Anomalies: result.Anomalies,
		Strategy:  strategyUsed,
	})
}

// SubscriptionReportWebhook ingests one subscription package report.
func (h *Handler) SubscriptionReportWebhook(w http.ResponseWriter, r *http.Request) {
	lines, ok := h.reportLines(w, r)
	if !ok {
		return
	}

	records := report.ParsePackageReport(lines)
	if len(records) == 0 {
		writeError(w, http.StatusUnprocessableEntity, stageParse, report.ErrNoMatchingFormat)
		return
	}

	result, err := h.subs.Ingest(r.Context(), records)
	if err != nil {
		writeError(w, http.StatusInternalServerError, stageReconcile, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CompReportWebhook patches comp-ticket counts from one comp report.
func (h *Handler) CompReportWebhook(w http.ResponseWriter, r *http.Request) {
	lines, ok := h.reportLines(w, r)
	if !ok {
		return
	}

	records := report.ParseCompReport(lines)
	if len(records) == 0 {
		writeError(w, http.StatusUnprocessableEntity, stageParse, report.ErrNoMatchingFormat)
		return
	}

	result, err := h.comps.Patch(r.Context(), records)
	if err != nil {
		writeError(w, http.StatusInternalServerError, stagePatch, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// reportLines extracts report lines from either body representation.
func (h *Handler) reportLines(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, stageRead, err)
		return nil, false
	}

	var lines []string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req PagesRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, stageRead, err)
			return nil, false
		}
		for _, page := range req.Pages {
			for _, fragment := range page {
				if fragment = strings.TrimSpace(fragment); fragment != "" {
					lines = append(lines, fragment)
				}
			}
		}
	} else {
		lines = report.SplitLines(string(body))
	}

	if len(lines) == 0 {
		writeError(w, http.StatusBadRequest, stageRead, errors.New("empty report body"))
		return nil, false
	}
	return lines, true
}

// =============================================================================
// READ-BACK
// =============================================================================

// ListPerformances returns every current-state row.
func (h *Handler) ListPerformances(w http.ResponseWriter, r *http.Request) {
	performances, err := h.store.ListPerformances(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, stageQuery, err)
		return
	}

	dtos := make([]PerformanceDTO, 0, len(performances))
	for _, p := range performances {
		dtos = append(dtos, performanceDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSnapshots returns one performance's sales curve.
func (h *Handler) GetSnapshots(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	snapshots, err := h.store.SnapshotsByCode(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, stageQuery, err)
		return
	}
	if len(snapshots) == 0 {
		writeError(w, http.StatusNotFound, stageQuery, errors.New("no snapshots for code "+code))
		return
	}

	dtos := make([]SnapshotDTO, 0, len(snapshots))
	for _, s := range snapshots {
		dtos = append(dtos, snapshotDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, stage string, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Stage: stage})
}
