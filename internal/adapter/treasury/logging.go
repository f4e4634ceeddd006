package treasury

import (
	"context"
	"log/slog"

	"crowdfund/internal/core/domain"
)

// LogTreasury writes transfers to the log and reports success. It stands in
// for a real settlement service during local development.
type LogTreasury struct {
	logger *slog.Logger
}

// NewLogTreasury returns a treasury that only logs.
func NewLogTreasury(logger *slog.Logger) *LogTreasury {
	return &LogTreasury{logger: logger}
}

func (t *LogTreasury) Transfer(ctx context.Context, to domain.Principal, amount int64, reference string) error {
	t.logger.InfoContext(ctx, "transfer executed", "to", string(to), "amount", amount, "reference", reference)
	return nil
}
