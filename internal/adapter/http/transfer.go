package httpadapter

import (
	"encoding/json"
	"net/http"

	"crowdfund/internal/core/domain"
)

type transferNotice struct {
	From   string `json:"from"`
	Amount int64  `json:"amount"`
}

// handleReceiveTransfer is the boundary for value offered outside the
// donation path. The ledger rejects every such transfer, so the value stays
// with the sender instead of vanishing into unattributed custody.
func (h *Handler) handleReceiveTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferNotice
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON")
		return
	}

	err := h.ledger.ReceiveTransfer(r.Context(), domain.Principal(req.From), req.Amount)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	// The ledger never accepts a direct transfer; reaching this branch
	// means the port contract was broken.
	h.writeError(w, http.StatusInternalServerError, "internal", "internal error")
}
