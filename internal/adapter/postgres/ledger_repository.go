package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crowdfund/internal/core/domain"
	"crowdfund/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerRepository implements port.LedgerRepository using pgxpool for
// PostgreSQL. Multi-write operations run in serializable transactions so the
// accounting change and its notification land atomically.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository returns a new repository instance.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// CreateCampaign inserts the campaign and its creation notification.
func (r *LedgerRepository) CreateCampaign(ctx context.Context, c domain.Campaign, ev domain.Event) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `INSERT INTO campaigns (id, title, description, beneficiary, goal, deadline, amount_raised, ended, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Title, c.Description, c.Beneficiary, c.Goal, c.Deadline, c.AmountRaised, c.Ended, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return err
	}
	err = insertEvent(ctx, tx, ev)
	return err
}

// CampaignByID returns a campaign by id, or nil when it does not exist.
func (r *LedgerRepository) CampaignByID(ctx context.Context, id int64) (*domain.Campaign, error) {
	var c domain.Campaign
	err := r.pool.QueryRow(ctx, `SELECT id, title, description, beneficiary, goal, deadline, amount_raised, ended, created_at, updated_at FROM campaigns WHERE id = $1`, id).
		Scan(&c.ID, &c.Title, &c.Description, &c.Beneficiary, &c.Goal, &c.Deadline, &c.AmountRaised, &c.Ended, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CountCampaigns returns the number of campaigns ever created.
func (r *LedgerRepository) CountCampaigns(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM campaigns`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// RecordDonation credits the campaign total and the per-contributor entry and
// stores the notification, all in one transaction.
func (r *LedgerRepository) RecordDonation(ctx context.Context, campaignID int64, contributor domain.Principal, amount int64, at time.Time, ev domain.Event) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	// lock campaign
	var raised int64
	err = tx.QueryRow(ctx, `SELECT amount_raised FROM campaigns WHERE id = $1 FOR UPDATE`, campaignID).Scan(&raised)
	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("%w: campaign %d", domain.ErrCampaignNotFound, campaignID)
		return err
	}
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `UPDATE campaigns SET amount_raised = amount_raised + $1, updated_at = $2 WHERE id = $3`, amount, at, campaignID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `INSERT INTO contributions (campaign_id, contributor, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (campaign_id, contributor)
		DO UPDATE SET amount = contributions.amount + EXCLUDED.amount, updated_at = EXCLUDED.updated_at`,
		campaignID, contributor, amount, at)
	if err != nil {
		return err
	}

	err = insertEvent(ctx, tx, ev)
	return err
}

// ContributionTotal returns the cumulative donation total for the pair, zero
// when no entry exists.
func (r *LedgerRepository) ContributionTotal(ctx context.Context, campaignID int64, contributor domain.Principal) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT amount FROM contributions WHERE campaign_id = $1 AND contributor = $2`, campaignID, contributor).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return total, nil
}

// SetCampaignEnded flips the terminal flag in either direction.
func (r *LedgerRepository) SetCampaignEnded(ctx context.Context, campaignID int64, ended bool, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE campaigns SET ended = $1, updated_at = $2 WHERE id = $3`, ended, at, campaignID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: campaign %d", domain.ErrCampaignNotFound, campaignID)
	}
	return nil
}

// AddResidual shifts the single-row residual balance by delta and returns the
// new balance. The migration seeds the row, so the upsert normally hits the
// conflict branch.
func (r *LedgerRepository) AddResidual(ctx context.Context, delta int64, at time.Time, ev *domain.Event) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	var balance int64
	err = tx.QueryRow(ctx, `INSERT INTO ledger_state (id, residual, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id)
		DO UPDATE SET residual = ledger_state.residual + EXCLUDED.residual, updated_at = EXCLUDED.updated_at
		RETURNING residual`, delta, at).Scan(&balance)
	if err != nil {
		return 0, err
	}

	if ev != nil {
		if err = insertEvent(ctx, tx, *ev); err != nil {
			return 0, err
		}
	}
	return balance, nil
}

// ResidualBalance returns the current residual balance.
func (r *LedgerRepository) ResidualBalance(ctx context.Context) (int64, error) {
	var balance int64
	err := r.pool.QueryRow(ctx, `SELECT residual FROM ledger_state WHERE id = 1`).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// AppendEvent stores a standalone notification.
func (r *LedgerRepository) AppendEvent(ctx context.Context, ev domain.Event) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO ledger_events (id, type, campaign_id, payload, occurred_at) VALUES ($1, $2, $3, $4, $5)`,
		ev.ID, ev.Type, ev.CampaignID, ev.Payload, ev.OccurredAt)
	return err
}

// EventsByCampaign returns one campaign's notifications in emission order.
func (r *LedgerRepository) EventsByCampaign(ctx context.Context, campaignID int64) ([]domain.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, type, campaign_id, payload, occurred_at FROM ledger_events WHERE campaign_id = $1 ORDER BY seq`, campaignID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Event, error) {
		var ev domain.Event
		err := row.Scan(&ev.ID, &ev.Type, &ev.CampaignID, &ev.Payload, &ev.OccurredAt)
		return ev, err
	})
}

// Overview returns ledger-wide aggregates.
func (r *LedgerRepository) Overview(ctx context.Context) (*port.LedgerStats, error) {
	var stats port.LedgerStats
	err := r.pool.QueryRow(ctx, `SELECT
			count(*),
			count(*) FILTER (WHERE NOT ended),
			count(*) FILTER (WHERE ended),
			COALESCE(sum(amount_raised), 0),
			COALESCE(sum(amount_raised) FILTER (WHERE ended), 0)
		FROM campaigns`).
		Scan(&stats.Campaigns, &stats.OpenCampaigns, &stats.FinalizedCampaigns, &stats.TotalRaised, &stats.TotalReleased)
	if err != nil {
		return nil, err
	}

	var residual int64
	err = r.pool.QueryRow(ctx, `SELECT residual FROM ledger_state WHERE id = 1`).Scan(&residual)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	stats.ResidualBalance = residual

	return &stats, nil
}

func insertEvent(ctx context.Context, tx pgx.Tx, ev domain.Event) error {
	_, err := tx.Exec(ctx, `INSERT INTO ledger_events (id, type, campaign_id, payload, occurred_at) VALUES ($1, $2, $3, $4, $5)`,
		ev.ID, ev.Type, ev.CampaignID, ev.Payload, ev.OccurredAt)
	return err
}
