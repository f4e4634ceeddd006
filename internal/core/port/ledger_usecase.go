package port

import (
	"context"
	"time"

	"crowdfund/internal/core/domain"
)

// CampaignLedger defines the ledger operations exposed to external callers.
// This interface is the primary port into the application domain. Operations
// execute one at a time to completion; implementations serialize access
// internally so every caller observes a consistent snapshot.
type CampaignLedger interface {
	// CreateCampaign registers a new funding campaign and returns it with
	// the assigned sequential ID and the computed deadline.
	CreateCampaign(ctx context.Context, in CreateCampaignInput) (domain.Campaign, error)
	// Donate credits amount from contributor to an open campaign.
	Donate(ctx context.Context, campaignID int64, contributor domain.Principal, amount int64) error
	// Finalize closes a campaign whose deadline has passed and releases the
	// raised amount to the beneficiary exactly once. Any caller may invoke
	// it. Returns the released amount.
	Finalize(ctx context.Context, campaignID int64) (int64, error)
	// SweepResidual transfers the ledger's entire residual balance to the
	// administrator. Administrator only. Returns the swept amount.
	SweepResidual(ctx context.Context, caller domain.Principal) (int64, error)
	// ReceiveTransfer handles value offered outside the donation path. The
	// ledger always rejects it with domain.ErrDirectTransfer so such value
	// is never silently accepted or misattributed.
	ReceiveTransfer(ctx context.Context, from domain.Principal, amount int64) error
	// RecordResidual books value that reached the ledger's custody through
	// a channel that could not reject it (e.g. settlement reconciliation).
	// Administrator only. Returns the new residual balance.
	RecordResidual(ctx context.Context, caller domain.Principal, amount int64, reference string) (int64, error)

	// Campaign returns a campaign by ID.
	Campaign(ctx context.Context, campaignID int64) (domain.Campaign, error)
	// Contribution returns the total amount the contributor has given to
	// the campaign; zero when they never donated.
	Contribution(ctx context.Context, campaignID int64, contributor domain.Principal) (int64, error)
	// CampaignCount returns the number of campaigns ever created.
	CampaignCount(ctx context.Context) (int64, error)
	// CampaignEvents returns one campaign's notification records in
	// emission order.
	CampaignEvents(ctx context.Context, campaignID int64) ([]domain.Event, error)
	// ResidualBalance returns the untracked residual balance. Administrator only.
	ResidualBalance(ctx context.Context, caller domain.Principal) (int64, error)
	// Overview returns ledger-wide aggregate statistics.
	Overview(ctx context.Context) (*LedgerStats, error)
}

// CreateCampaignInput carries the caller-supplied fields for a new campaign.
// Title and description are opaque text and stored as given.
type CreateCampaignInput struct {
	Title       string
	Description string
	Beneficiary domain.Principal
	Goal        int64
	Duration    time.Duration
}

// LedgerStats aggregates ledger-wide totals. TotalRaised counts every
// contribution ever credited; TotalReleased counts the raised value of
// finalized campaigns only.
type LedgerStats struct {
	Campaigns          int64
	OpenCampaigns      int64
	FinalizedCampaigns int64
	TotalRaised        int64
	TotalReleased      int64
	ResidualBalance    int64
}
