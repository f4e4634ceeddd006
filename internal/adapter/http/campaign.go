package httpadapter

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"crowdfund/internal/core/domain"
	"crowdfund/internal/core/port"

	"github.com/go-chi/chi/v5"
)

// maxDurationSeconds is the largest seconds value that still fits in a
// time.Duration once converted to nanoseconds.
const maxDurationSeconds = math.MaxInt64 / int64(time.Second)

type createCampaignRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Beneficiary     string `json:"beneficiary"`
	Goal            int64  `json:"goal"`
	DurationSeconds int64  `json:"duration_seconds"`
}

// handleCreateCampaign registers a new campaign. The request body carries
// the goal in minor units and the campaign duration in seconds; the deadline
// is computed by the ledger. On success it returns HTTP 201 with the stored
// campaign, including the assigned ID.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON")
		return
	}
	// Out-of-range seconds would wrap during the nanosecond conversion and
	// could land on a positive duration; reject them before converting.
	if req.DurationSeconds > maxDurationSeconds || req.DurationSeconds < -maxDurationSeconds {
		h.writeError(w, http.StatusBadRequest, "invalid_argument", "duration_seconds is out of range")
		return
	}

	campaign, err := h.ledger.CreateCampaign(r.Context(), port.CreateCampaignInput{
		Title:       req.Title,
		Description: req.Description,
		Beneficiary: domain.Principal(req.Beneficiary),
		Goal:        req.Goal,
		Duration:    time.Duration(req.DurationSeconds) * time.Second,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toCampaignResponse(campaign))
}

// handleGetCampaign returns a single campaign by its path ID.
func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}

	campaign, err := h.ledger.Campaign(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toCampaignResponse(campaign))
}

// handleCampaignCount returns how many campaigns were ever created.
func (h *Handler) handleCampaignCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.ledger.CampaignCount(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Count int64 `json:"count"`
	}{count})
}

type eventResponse struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	CampaignID *int64          `json:"campaign_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// handleCampaignEvents returns the notification records of one campaign in
// emission order.
func (h *Handler) handleCampaignEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}

	events, err := h.ledger.CampaignEvents(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, eventResponse{
			ID:         ev.ID,
			Type:       string(ev.Type),
			CampaignID: ev.CampaignID,
			Payload:    json.RawMessage(ev.Payload),
			OccurredAt: ev.OccurredAt,
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}

// campaignID parses the {id} path parameter, answering 400 itself when the
// value is not a number.
func (h *Handler) campaignID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_argument", "campaign id must be an integer")
		return 0, false
	}
	return id, true
}
