package port

import (
	"context"
	"time"

	"crowdfund/internal/core/domain"
)

// LedgerRepository defines the persistence layer for the campaign ledger. It
// is an outbound port in hexagonal architecture. Multi-write methods must
// apply their accounting change and the accompanying notification record
// atomically.
type LedgerRepository interface {
	// CreateCampaign stores a new campaign together with its
	// campaign.created notification.
	CreateCampaign(ctx context.Context, c domain.Campaign, ev domain.Event) error
	// CampaignByID returns a campaign by id, or nil when it does not exist.
	CampaignByID(ctx context.Context, id int64) (*domain.Campaign, error)
	// CountCampaigns returns the total number of campaigns ever created.
	// IDs are dense and start at zero, so the count doubles as the next id.
	CountCampaigns(ctx context.Context) (int64, error)
	// RecordDonation credits amount to the campaign total and to the
	// (campaign, contributor) entry and stores the notification, atomically.
	RecordDonation(ctx context.Context, campaignID int64, contributor domain.Principal, amount int64, at time.Time, ev domain.Event) error
	// ContributionTotal returns the cumulative amount the contributor has
	// given to the campaign; zero when they never donated.
	ContributionTotal(ctx context.Context, campaignID int64, contributor domain.Principal) (int64, error)
	// SetCampaignEnded commits, or on payout failure rolls back, the
	// terminal flag of a campaign.
	SetCampaignEnded(ctx context.Context, campaignID int64, ended bool, at time.Time) error
	// AddResidual shifts the ledger's residual balance by delta and returns
	// the new balance. A non-nil event is stored atomically with the change.
	AddResidual(ctx context.Context, delta int64, at time.Time, ev *domain.Event) (int64, error)
	// ResidualBalance returns the current residual balance.
	ResidualBalance(ctx context.Context) (int64, error)
	// AppendEvent stores a notification that is not tied to another write.
	AppendEvent(ctx context.Context, ev domain.Event) error
	// EventsByCampaign returns a campaign's notifications in emission order.
	EventsByCampaign(ctx context.Context, campaignID int64) ([]domain.Event, error)
	// Overview returns ledger-wide aggregate statistics.
	Overview(ctx context.Context) (*LedgerStats, error)
}
