package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of a ledger notification record.
type EventType string

const (
	// EventCampaignCreated records the registration of a new campaign.
	EventCampaignCreated EventType = "campaign.created"
	// EventDonationReceived records a contribution credited to a campaign.
	EventDonationReceived EventType = "campaign.donation_received"
	// EventCampaignEnded records the one-time finalization payout of a campaign.
	EventCampaignEnded EventType = "campaign.ended"
	// EventResidualRecorded records value booked outside the donation path.
	EventResidualRecorded EventType = "residual.recorded"
	// EventResidualSwept records the administrator reclaiming residual value.
	EventResidualSwept EventType = "residual.swept"
)

// Event is an immutable notification record emitted by ledger operations.
// External observers and indexers consume these; the ledger itself never
// reads them back for accounting.
type Event struct {
	ID   string
	Type EventType
	// CampaignID is nil for residual events, which concern the ledger as a
	// whole rather than a single campaign.
	CampaignID *int64
	// Payload holds event-specific data as JSON; its shape depends on Type.
	Payload    []byte
	OccurredAt time.Time
}

// CampaignCreatedPayload captures the payload for campaign.created events.
type CampaignCreatedPayload struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Beneficiary Principal `json:"beneficiary"`
	Goal        int64     `json:"goal"`
	Deadline    time.Time `json:"deadline"`
}

// DonationReceivedPayload captures the payload for campaign.donation_received events.
type DonationReceivedPayload struct {
	Contributor Principal `json:"contributor"`
	Amount      int64     `json:"amount"`
}

// CampaignEndedPayload captures the payload for campaign.ended events.
type CampaignEndedPayload struct {
	Beneficiary    Principal `json:"beneficiary"`
	AmountReleased int64     `json:"amount_released"`
}

// ResidualRecordedPayload captures the payload for residual.recorded events.
type ResidualRecordedPayload struct {
	Source    Principal `json:"source"`
	Amount    int64     `json:"amount"`
	Reference string    `json:"reference,omitempty"`
}

// ResidualSweptPayload captures the payload for residual.swept events.
type ResidualSweptPayload struct {
	Owner  Principal `json:"owner"`
	Amount int64     `json:"amount"`
}

// NewCampaignCreated builds the notification for a freshly stored campaign.
func NewCampaignCreated(c Campaign, at time.Time) (Event, error) {
	return newEvent(EventCampaignCreated, &c.ID, CampaignCreatedPayload{
		Title:       c.Title,
		Description: c.Description,
		Beneficiary: c.Beneficiary,
		Goal:        c.Goal,
		Deadline:    c.Deadline,
	}, at)
}

// NewDonationReceived builds the notification for a credited contribution.
func NewDonationReceived(campaignID int64, contributor Principal, amount int64, at time.Time) (Event, error) {
	return newEvent(EventDonationReceived, &campaignID, DonationReceivedPayload{
		Contributor: contributor,
		Amount:      amount,
	}, at)
}

// NewCampaignEnded builds the notification for a completed finalization.
func NewCampaignEnded(campaignID int64, beneficiary Principal, released int64, at time.Time) (Event, error) {
	return newEvent(EventCampaignEnded, &campaignID, CampaignEndedPayload{
		Beneficiary:    beneficiary,
		AmountReleased: released,
	}, at)
}

// NewResidualRecorded builds the notification for booked unattributed value.
func NewResidualRecorded(source Principal, amount int64, reference string, at time.Time) (Event, error) {
	return newEvent(EventResidualRecorded, nil, ResidualRecordedPayload{
		Source:    source,
		Amount:    amount,
		Reference: reference,
	}, at)
}

// NewResidualSwept builds the notification for a completed residual sweep.
func NewResidualSwept(owner Principal, amount int64, at time.Time) (Event, error) {
	return newEvent(EventResidualSwept, nil, ResidualSweptPayload{
		Owner:  owner,
		Amount: amount,
	}, at)
}

func newEvent(t EventType, campaignID *int64, payload any, at time.Time) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	var cid *int64
	if campaignID != nil {
		v := *campaignID
		cid = &v
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		CampaignID: cid,
		Payload:    raw,
		OccurredAt: at,
	}, nil
}
