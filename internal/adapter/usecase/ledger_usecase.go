package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"crowdfund/internal/core/domain"
	"crowdfund/internal/core/port"
)

// Ledger implements port.CampaignLedger on top of a repository and a treasury.
//
// Every mutating operation runs under a single mutex, so operations execute
// one at a time to completion and interleaved mutation is impossible. The
// mutex is NOT held across treasury transfers: the balance effect is
// committed first, the payout runs unlocked, and a failed payout is rolled
// back afterwards. A transfer that calls back into the ledger therefore
// observes the committed post-mutation state instead of deadlocking.
//
// Read accessors issue a single repository call each, which is already a
// consistent snapshot, and take no lock.
type Ledger struct {
	repo     port.LedgerRepository
	treasury port.Treasury

	// owner is the administrator principal, fixed at construction.
	owner domain.Principal

	// now supplies the current time. Tests swap it for a fake clock to
	// drive deadline behaviour deterministically.
	now func() time.Time

	mu sync.Mutex
}

// NewLedger creates a campaign ledger administered by owner.
func NewLedger(repo port.LedgerRepository, treasury port.Treasury, owner domain.Principal) *Ledger {
	return &Ledger{
		repo:     repo,
		treasury: treasury,
		owner:    owner,
		now:      time.Now,
	}
}

// CreateCampaign registers a new campaign and returns it. Campaign IDs are
// dense and ascending, so the current campaign count doubles as the next ID.
func (l *Ledger) CreateCampaign(ctx context.Context, in port.CreateCampaignInput) (domain.Campaign, error) {
	if in.Goal <= 0 {
		return domain.Campaign{}, fmt.Errorf("%w: goal must be positive", domain.ErrInvalidArgument)
	}
	if in.Duration <= 0 {
		return domain.Campaign{}, fmt.Errorf("%w: duration must be positive", domain.ErrInvalidArgument)
	}
	if !in.Beneficiary.Valid() {
		return domain.Campaign{}, fmt.Errorf("%w: beneficiary is required", domain.ErrInvalidArgument)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	id, err := l.repo.CountCampaigns(ctx)
	if err != nil {
		return domain.Campaign{}, err
	}

	now := l.now().UTC()
	campaign := domain.Campaign{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Beneficiary: in.Beneficiary,
		Goal:        in.Goal,
		Deadline:    now.Add(in.Duration),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	event, err := domain.NewCampaignCreated(campaign, now)
	if err != nil {
		return domain.Campaign{}, err
	}

	if err := l.repo.CreateCampaign(ctx, campaign, event); err != nil {
		return domain.Campaign{}, err
	}

	return campaign, nil
}

// Donate credits amount from contributor to the campaign. The checks run in a
// fixed order so a request that fails several of them reports the same error
// every time: existence, deadline, ended flag, amount, contributor.
func (l *Ledger) Donate(ctx context.Context, campaignID int64, contributor domain.Principal, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	campaign, err := l.campaign(ctx, campaignID)
	if err != nil {
		return err
	}

	now := l.now().UTC()
	if campaign.Expired(now) {
		return fmt.Errorf("%w: deadline passed", domain.ErrCampaignClosed)
	}
	// An ended campaign must never accept value, even though campaigns
	// normally end only after their deadline.
	if campaign.Ended {
		return fmt.Errorf("%w: campaign already ended", domain.ErrCampaignClosed)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", domain.ErrInvalidArgument)
	}
	// The running total is int64; a donation that would wrap it past the
	// maximum must fail rather than turn the total negative.
	if amount > math.MaxInt64-campaign.AmountRaised {
		return fmt.Errorf("%w: amount overflows the campaign total", domain.ErrInvalidArgument)
	}
	if !contributor.Valid() {
		return fmt.Errorf("%w: contributor is required", domain.ErrInvalidArgument)
	}

	event, err := domain.NewDonationReceived(campaignID, contributor, amount, now)
	if err != nil {
		return err
	}

	return l.repo.RecordDonation(ctx, campaignID, contributor, amount, now, event)
}

// Finalize closes an expired campaign and releases everything it raised to
// the beneficiary. The ended flag is committed before the payout and rolled
// back if the payout fails, so repeated or re-entrant calls can never release
// the funds twice.
func (l *Ledger) Finalize(ctx context.Context, campaignID int64) (int64, error) {
	beneficiary, amount, endedAt, err := l.beginFinalize(ctx, campaignID)
	if err != nil {
		return 0, err
	}

	if amount > 0 {
		reference := fmt.Sprintf("campaign/%d/payout", campaignID)
		if err := l.treasury.Transfer(ctx, beneficiary, amount, reference); err != nil {
			return 0, l.rollbackFinalize(ctx, campaignID, err)
		}
	}

	if err := l.recordFinalized(ctx, campaignID, beneficiary, amount, endedAt); err != nil {
		// The payout has already happened and the campaign stays ended;
		// surface the bookkeeping failure alongside the released amount.
		return amount, fmt.Errorf("campaign %d finalized but recording the event failed: %w", campaignID, err)
	}
	return amount, nil
}

// beginFinalize validates the campaign and commits the terminal flag under
// the mutex, returning what the payout needs.
func (l *Ledger) beginFinalize(ctx context.Context, campaignID int64) (domain.Principal, int64, time.Time, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	campaign, err := l.campaign(ctx, campaignID)
	if err != nil {
		return "", 0, time.Time{}, err
	}

	now := l.now().UTC()
	if !campaign.Expired(now) {
		return "", 0, time.Time{}, fmt.Errorf("%w: deadline is %s", domain.ErrTooEarly, campaign.Deadline.Format(time.RFC3339))
	}
	if campaign.Ended {
		return "", 0, time.Time{}, domain.ErrAlreadyFinalized
	}

	if err := l.repo.SetCampaignEnded(ctx, campaignID, true, now); err != nil {
		return "", 0, time.Time{}, err
	}

	return campaign.Beneficiary, campaign.AmountRaised, now, nil
}

// rollbackFinalize reopens the campaign after a failed payout so the raised
// funds are not stranded on a terminal campaign.
func (l *Ledger) rollbackFinalize(ctx context.Context, campaignID int64, cause error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.repo.SetCampaignEnded(ctx, campaignID, false, l.now().UTC()); err != nil {
		return fmt.Errorf("%w: %v (reopening campaign %d also failed: %v)", domain.ErrTransferFailed, cause, campaignID, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrTransferFailed, cause)
}

func (l *Ledger) recordFinalized(ctx context.Context, campaignID int64, beneficiary domain.Principal, amount int64, endedAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	event, err := domain.NewCampaignEnded(campaignID, beneficiary, amount, endedAt)
	if err != nil {
		return err
	}
	return l.repo.AppendEvent(ctx, event)
}

// SweepResidual pays the whole residual balance out to the administrator.
// Like Finalize it debits first, transfers unlocked, and credits the balance
// back if the transfer fails.
func (l *Ledger) SweepResidual(ctx context.Context, caller domain.Principal) (int64, error) {
	if !domain.Authorized(caller, l.owner) {
		return 0, fmt.Errorf("%w: only the administrator may sweep the residual balance", domain.ErrUnauthorized)
	}

	amount, sweptAt, err := l.beginSweep(ctx)
	if err != nil {
		return 0, err
	}

	if err := l.treasury.Transfer(ctx, l.owner, amount, "residual/sweep"); err != nil {
		return 0, l.rollbackSweep(ctx, amount, err)
	}

	if err := l.recordSwept(ctx, amount, sweptAt); err != nil {
		return amount, fmt.Errorf("residual swept but recording the event failed: %w", err)
	}
	return amount, nil
}

func (l *Ledger) beginSweep(ctx context.Context) (int64, time.Time, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	amount, err := l.repo.ResidualBalance(ctx)
	if err != nil {
		return 0, time.Time{}, err
	}
	if amount <= 0 {
		return 0, time.Time{}, domain.ErrNothingToSweep
	}

	now := l.now().UTC()
	if _, err := l.repo.AddResidual(ctx, -amount, now, nil); err != nil {
		return 0, time.Time{}, err
	}
	return amount, now, nil
}

func (l *Ledger) rollbackSweep(ctx context.Context, amount int64, cause error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.repo.AddResidual(ctx, amount, l.now().UTC(), nil); err != nil {
		return fmt.Errorf("%w: %v (restoring residual balance of %d also failed: %v)", domain.ErrTransferFailed, cause, amount, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrTransferFailed, cause)
}

func (l *Ledger) recordSwept(ctx context.Context, amount int64, sweptAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	event, err := domain.NewResidualSwept(l.owner, amount, sweptAt)
	if err != nil {
		return err
	}
	return l.repo.AppendEvent(ctx, event)
}

// ReceiveTransfer rejects value offered outside the donation path, so money
// can never land on the ledger without a campaign and contributor attached.
func (l *Ledger) ReceiveTransfer(ctx context.Context, from domain.Principal, amount int64) error {
	return fmt.Errorf("%w: transfer of %d from %q rejected", domain.ErrDirectTransfer, amount, from)
}

// RecordResidual books value that reached the ledger outside the donation
// path, for example a settlement correction, onto the residual balance. Only
// the administrator may call it.
func (l *Ledger) RecordResidual(ctx context.Context, caller domain.Principal, amount int64, reference string) (int64, error) {
	if !domain.Authorized(caller, l.owner) {
		return 0, fmt.Errorf("%w: only the administrator may record residual value", domain.ErrUnauthorized)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidArgument)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	event, err := domain.NewResidualRecorded(caller, amount, reference, now)
	if err != nil {
		return 0, err
	}
	return l.repo.AddResidual(ctx, amount, now, &event)
}

// Campaign returns the campaign with the given ID.
func (l *Ledger) Campaign(ctx context.Context, campaignID int64) (domain.Campaign, error) {
	campaign, err := l.campaign(ctx, campaignID)
	if err != nil {
		return domain.Campaign{}, err
	}
	return *campaign, nil
}

// Contribution returns the total amount contributor has donated to the
// campaign, zero if they never donated.
func (l *Ledger) Contribution(ctx context.Context, campaignID int64, contributor domain.Principal) (int64, error) {
	if _, err := l.campaign(ctx, campaignID); err != nil {
		return 0, err
	}
	return l.repo.ContributionTotal(ctx, campaignID, contributor)
}

// CampaignCount returns how many campaigns exist.
func (l *Ledger) CampaignCount(ctx context.Context) (int64, error) {
	return l.repo.CountCampaigns(ctx)
}

// CampaignEvents returns the campaign's event history in occurrence order.
func (l *Ledger) CampaignEvents(ctx context.Context, campaignID int64) ([]domain.Event, error) {
	if _, err := l.campaign(ctx, campaignID); err != nil {
		return nil, err
	}
	return l.repo.EventsByCampaign(ctx, campaignID)
}

// ResidualBalance returns the undistributed balance. Only the administrator
// may read it.
func (l *Ledger) ResidualBalance(ctx context.Context, caller domain.Principal) (int64, error) {
	if !domain.Authorized(caller, l.owner) {
		return 0, fmt.Errorf("%w: only the administrator may read the residual balance", domain.ErrUnauthorized)
	}
	return l.repo.ResidualBalance(ctx)
}

// Overview returns aggregate ledger statistics.
func (l *Ledger) Overview(ctx context.Context) (*port.LedgerStats, error) {
	return l.repo.Overview(ctx)
}

// campaign loads a campaign and maps absence to ErrCampaignNotFound.
func (l *Ledger) campaign(ctx context.Context, id int64) (*domain.Campaign, error) {
	campaign, err := l.repo.CampaignByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, fmt.Errorf("%w: campaign %d", domain.ErrCampaignNotFound, id)
	}
	return campaign, nil
}
