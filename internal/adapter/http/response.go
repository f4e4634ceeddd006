package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"crowdfund/internal/core/domain"

	"log/slog"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type campaignResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Beneficiary  string    `json:"beneficiary"`
	Goal         int64     `json:"goal"`
	Deadline     time.Time `json:"deadline"`
	AmountRaised int64     `json:"amount_raised"`
	Ended        bool      `json:"ended"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toCampaignResponse(c domain.Campaign) campaignResponse {
	return campaignResponse{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		Beneficiary:  string(c.Beneficiary),
		Goal:         c.Goal,
		Deadline:     c.Deadline,
		AmountRaised: c.AmountRaised,
		Ended:        c.Ended,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, statusCode int, code, message string) {
	h.writeJSON(w, statusCode, apiError{Code: code, Message: message})
}

// writeDomainError maps ledger errors onto HTTP statuses with a stable
// machine code and the human-readable reason. Unexpected errors are logged
// and answered with an opaque 500.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		h.writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, domain.ErrDirectTransfer):
		h.writeError(w, http.StatusBadRequest, "direct_transfer", err.Error())
	case errors.Is(err, domain.ErrCampaignNotFound):
		h.writeError(w, http.StatusNotFound, "campaign_not_found", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		h.writeError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrCampaignClosed):
		h.writeError(w, http.StatusConflict, "campaign_closed", err.Error())
	case errors.Is(err, domain.ErrTooEarly):
		h.writeError(w, http.StatusConflict, "too_early", err.Error())
	case errors.Is(err, domain.ErrAlreadyFinalized):
		h.writeError(w, http.StatusConflict, "already_finalized", err.Error())
	case errors.Is(err, domain.ErrNothingToSweep):
		h.writeError(w, http.StatusConflict, "nothing_to_sweep", err.Error())
	case errors.Is(err, domain.ErrTransferFailed):
		h.logger.Error("payout failed", slog.Any("error", err))
		h.writeError(w, http.StatusBadGateway, "transfer_failed", err.Error())
	default:
		h.logger.Error("ledger error", slog.Any("error", err))
		h.writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
