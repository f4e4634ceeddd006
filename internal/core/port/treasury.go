package port

import (
	"context"

	"crowdfund/internal/core/domain"
)

// Treasury moves value out of the ledger's custody. Payouts go through an
// external settlement system that can fail or call back into the ledger:
// callers commit ledger state before invoking Transfer and roll it back when
// Transfer fails.
type Treasury interface {
	// Transfer sends amount to the given principal. The reference names the
	// originating ledger operation for reconciliation.
	Transfer(ctx context.Context, to domain.Principal, amount int64, reference string) error
}
