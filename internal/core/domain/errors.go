package domain

import "errors"

// Ledger error kinds. Operations wrap these with fmt.Errorf("%w: reason") to
// attach a human-readable reason; callers match the kind with errors.Is.
var (
	// ErrInvalidArgument indicates bad input: a non-positive goal, duration
	// or amount, or a missing principal.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrCampaignNotFound indicates an unknown campaign ID.
	ErrCampaignNotFound = errors.New("campaign not found")
	// ErrCampaignClosed indicates a donation after the deadline or after the
	// campaign ended.
	ErrCampaignClosed = errors.New("campaign closed")
	// ErrTooEarly indicates a finalization attempt before the deadline.
	ErrTooEarly = errors.New("deadline has not passed")
	// ErrAlreadyFinalized indicates a second finalization of the same campaign.
	ErrAlreadyFinalized = errors.New("campaign already finalized")
	// ErrUnauthorized indicates a non-administrator calling an
	// administrator-only operation.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNothingToSweep indicates a sweep with a zero residual balance.
	ErrNothingToSweep = errors.New("nothing to sweep")
	// ErrTransferFailed indicates the payout to the beneficiary or owner
	// could not be completed; the operation's state change is rolled back.
	ErrTransferFailed = errors.New("transfer failed")
	// ErrDirectTransfer rejects value sent outside the donation path.
	ErrDirectTransfer = errors.New("use donate to contribute")
)
