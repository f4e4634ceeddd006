package httpadapter

import (
	"encoding/json"
	"net/http"

	"crowdfund/internal/core/domain"

	"github.com/go-chi/chi/v5"
)

type donationRequest struct {
	Contributor string `json:"contributor"`
	Amount      int64  `json:"amount"`
}

// handleDonate credits a contribution to an open campaign. The value
// transfer is assumed to settle atomically with the accounting update, so a
// successful response means the ledger already reflects the new totals.
// Returns HTTP 204 on success.
func (h *Handler) handleDonate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}

	var req donationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON")
		return
	}

	if err := h.ledger.Donate(r.Context(), id, domain.Principal(req.Contributor), req.Amount); err != nil {
		h.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleGetContribution returns the cumulative amount one contributor has
// given to one campaign; zero when they never donated.
func (h *Handler) handleGetContribution(w http.ResponseWriter, r *http.Request) {
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}
	contributor := domain.Principal(chi.URLParam(r, "contributor"))

	total, err := h.ledger.Contribution(r.Context(), id, contributor)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Total int64 `json:"total"`
	}{total})
}
