package domain

import "time"

// Contribution accumulates the total value one contributor has given to one
// campaign. Entries are keyed by (campaign, contributor), never removed and
// never decreased, and stay readable for audit after the campaign ends.
type Contribution struct {
	CampaignID  int64
	Contributor Principal
	Amount      int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
