package httpadapter

import "net/http"

// handleFinalize closes a campaign whose deadline has passed and releases the
// raised funds to the beneficiary. Finalization is open to any caller; the
// ledger guarantees the payout happens exactly once regardless of how many
// callers race here.
func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}

	released, err := h.ledger.Finalize(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Released int64 `json:"released"`
	}{released})
}
