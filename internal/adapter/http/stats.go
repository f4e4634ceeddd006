package httpadapter

import "net/http"

type statsResponse struct {
	Campaigns          int64 `json:"campaigns"`
	OpenCampaigns      int64 `json:"open_campaigns"`
	FinalizedCampaigns int64 `json:"finalized_campaigns"`
	TotalRaised        int64 `json:"total_raised"`
	TotalReleased      int64 `json:"total_released"`
}

// handleStatsOverview returns aggregate campaign statistics: how many
// campaigns exist, how many are still open, and how much value was raised
// and released overall. The residual balance is not part of the response;
// reading it takes the administrator via the residual endpoint.
func (h *Handler) handleStatsOverview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ledger.Overview(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, statsResponse{
		Campaigns:          stats.Campaigns,
		OpenCampaigns:      stats.OpenCampaigns,
		FinalizedCampaigns: stats.FinalizedCampaigns,
		TotalRaised:        stats.TotalRaised,
		TotalReleased:      stats.TotalReleased,
	})
}
