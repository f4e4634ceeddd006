package httpadapter

import (
	"net/http"

	"crowdfund/internal/core/port"

	"github.com/go-chi/chi/v5"
	"log/slog"
)

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP. It holds the campaign ledger to execute business logic and a logger
// for structured logging. Routes are registered on a chi.Router for
// convenient method handling.
type Handler struct {
	ledger port.CampaignLedger
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured. Unknown paths and
// methods answer with explicit JSON errors so no request ever appears to
// succeed silently.
func NewHandler(ledger port.CampaignLedger, logger *slog.Logger) *Handler {
	h := &Handler{ledger: ledger, logger: logger}
	r := chi.NewRouter()

	r.NotFound(h.handleNotFound)
	r.MethodNotAllowed(h.handleMethodNotAllowed)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", h.handleCreateCampaign)
			r.Get("/count", h.handleCampaignCount)
			r.Get("/{id}", h.handleGetCampaign)
			r.Post("/{id}/donations", h.handleDonate)
			r.Get("/{id}/donations/{contributor}", h.handleGetContribution)
			r.Post("/{id}/finalize", h.handleFinalize)
			r.Get("/{id}/events", h.handleCampaignEvents)
		})

		r.Route("/residual", func(r chi.Router) {
			r.Get("/", h.handleResidualBalance)
			r.Post("/", h.handleRecordResidual)
			r.Post("/sweep", h.handleSweepResidual)
		})

		r.Post("/transfers", h.handleReceiveTransfer)
		r.Get("/stats/overview", h.handleStatsOverview)
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, http.StatusNotFound, "unknown_operation", "unknown operation: "+r.Method+" "+r.URL.Path)
}

func (h *Handler) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not allowed on "+r.URL.Path)
}
