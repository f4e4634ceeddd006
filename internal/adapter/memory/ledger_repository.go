package memory

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"crowdfund/internal/core/domain"
	"crowdfund/internal/core/port"
)

type contributionKey struct {
	campaignID  int64
	contributor domain.Principal
}

// Store is an in-memory port.LedgerRepository. It backs the ledger in dev
// mode and in tests; everything is lost when the process exits.
type Store struct {
	mu            sync.Mutex
	campaigns     map[int64]domain.Campaign
	contributions map[contributionKey]domain.Contribution
	events        []domain.Event
	residual      int64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		campaigns:     make(map[int64]domain.Campaign),
		contributions: make(map[contributionKey]domain.Contribution),
	}
}

func (s *Store) CreateCampaign(ctx context.Context, campaign domain.Campaign, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.campaigns[campaign.ID]; ok {
		return fmt.Errorf("campaign %d already exists", campaign.ID)
	}
	s.campaigns[campaign.ID] = campaign
	s.events = append(s.events, event)
	return nil
}

func (s *Store) CampaignByID(ctx context.Context, id int64) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	campaign, ok := s.campaigns[id]
	if !ok {
		return nil, nil
	}
	return &campaign, nil
}

func (s *Store) CountCampaigns(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.campaigns)), nil
}

func (s *Store) RecordDonation(ctx context.Context, campaignID int64, contributor domain.Principal, amount int64, at time.Time, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	campaign, ok := s.campaigns[campaignID]
	if !ok {
		return fmt.Errorf("%w: campaign %d", domain.ErrCampaignNotFound, campaignID)
	}
	// Fail like the SQL bigint would instead of wrapping the total negative.
	// The per-contributor entry never exceeds the campaign total, so this
	// check covers both additions below.
	if amount > math.MaxInt64-campaign.AmountRaised {
		return fmt.Errorf("donation of %d overflows the total of campaign %d", amount, campaignID)
	}

	campaign.AmountRaised += amount
	campaign.UpdatedAt = at
	s.campaigns[campaignID] = campaign

	key := contributionKey{campaignID: campaignID, contributor: contributor}
	entry, ok := s.contributions[key]
	if !ok {
		entry = domain.Contribution{
			CampaignID:  campaignID,
			Contributor: contributor,
			CreatedAt:   at,
		}
	}
	entry.Amount += amount
	entry.UpdatedAt = at
	s.contributions[key] = entry

	s.events = append(s.events, event)
	return nil
}

func (s *Store) ContributionTotal(ctx context.Context, campaignID int64, contributor domain.Principal) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.contributions[contributionKey{campaignID: campaignID, contributor: contributor}]
	if !ok {
		return 0, nil
	}
	return entry.Amount, nil
}

func (s *Store) SetCampaignEnded(ctx context.Context, id int64, ended bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	campaign, ok := s.campaigns[id]
	if !ok {
		return fmt.Errorf("%w: campaign %d", domain.ErrCampaignNotFound, id)
	}
	campaign.Ended = ended
	campaign.UpdatedAt = at
	s.campaigns[id] = campaign
	return nil
}

func (s *Store) AddResidual(ctx context.Context, delta int64, at time.Time, event *domain.Event) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if delta > 0 && delta > math.MaxInt64-s.residual {
		return 0, fmt.Errorf("credit of %d overflows the residual balance", delta)
	}
	s.residual += delta
	if event != nil {
		s.events = append(s.events, *event)
	}
	return s.residual, nil
}

func (s *Store) ResidualBalance(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.residual, nil
}

func (s *Store) AppendEvent(ctx context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
	return nil
}

func (s *Store) EventsByCampaign(ctx context.Context, campaignID int64) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Event
	for _, event := range s.events {
		if event.CampaignID != nil && *event.CampaignID == campaignID {
			out = append(out, event)
		}
	}
	return out, nil
}

func (s *Store) Overview(ctx context.Context) (*port.LedgerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := port.LedgerStats{
		Campaigns:       int64(len(s.campaigns)),
		ResidualBalance: s.residual,
	}
	for _, campaign := range s.campaigns {
		stats.TotalRaised += campaign.AmountRaised
		if campaign.Ended {
			stats.FinalizedCampaigns++
			// Finalization releases the full amount raised, and financial
			// fields freeze afterwards, so the raised total is the payout.
			stats.TotalReleased += campaign.AmountRaised
		} else {
			stats.OpenCampaigns++
		}
	}
	return &stats, nil
}
