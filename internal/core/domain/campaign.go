package domain

import "time"

// Campaign represents a single funding effort.
// Monetary amounts are stored in integer units (e.g. cents).
type Campaign struct {
	ID          int64
	Title       string
	Description string
	Beneficiary Principal
	// Goal is the target amount. It is informational only: a shortfall
	// never blocks the raised value from being released.
	Goal     int64
	Deadline time.Time
	// AmountRaised is the running total of contributions. It starts at 0
	// and never decreases while the campaign is open.
	AmountRaised int64
	// Ended marks a finalized campaign. A completed finalization is
	// terminal: the flag stays set and no financial field changes again.
	Ended     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the deadline has passed at the given instant.
// Contributions are accepted strictly before the deadline; finalization is
// allowed at or after it.
func (c Campaign) Expired(at time.Time) bool {
	return !at.Before(c.Deadline)
}
