package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"crowdfund/internal/core/domain"
)

// principalID reads the caller identity from the X-Principal-ID header. The
// ledger itself decides whether that identity is authorized.
func principalID(r *http.Request) domain.Principal {
	return domain.Principal(strings.TrimSpace(r.Header.Get("X-Principal-ID")))
}

// handleResidualBalance returns the value held by the ledger that is not
// attributed to any campaign. Administrator only.
func (h *Handler) handleResidualBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.ledger.ResidualBalance(r.Context(), principalID(r))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Balance int64 `json:"balance"`
	}{balance})
}

type recordResidualRequest struct {
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
}

// handleRecordResidual books value that reached the ledger outside the
// donation path onto the residual balance. Administrator only. Returns the
// new balance.
func (h *Handler) handleRecordResidual(w http.ResponseWriter, r *http.Request) {
	var req recordResidualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON")
		return
	}

	balance, err := h.ledger.RecordResidual(r.Context(), principalID(r), req.Amount, req.Reference)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Balance int64 `json:"balance"`
	}{balance})
}

// handleSweepResidual transfers the whole residual balance to the
// administrator. Administrator only. Returns the swept amount.
func (h *Handler) handleSweepResidual(w http.ResponseWriter, r *http.Request) {
	swept, err := h.ledger.SweepResidual(r.Context(), principalID(r))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Swept int64 `json:"swept"`
	}{swept})
}
