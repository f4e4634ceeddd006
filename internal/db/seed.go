package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"crowdfund/internal/core/domain"
)

// Seed inserts a handful of demo campaigns with contributions. Campaign IDs
// are dense and derived from the row count, so seeding is skipped entirely
// when any campaign already exists.
func Seed(ctx context.Context, db *pgxpool.Pool) error {
	var existing int64
	if err := db.QueryRow(ctx, `SELECT count(*) FROM campaigns`).Scan(&existing); err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC()

	demos := []struct {
		title       string
		description string
		beneficiary domain.Principal
		goal        int64
		deadline    time.Time
		ended       bool
	}{
		{
			title:       "Community well",
			description: "Drill and equip a well for the northern district",
			beneficiary: "water-coop",
			goal:        250_000,
			deadline:    now.AddDate(0, 0, 30),
		},
		{
			title:       "School solar roof",
			description: "Panels and batteries for the primary school",
			beneficiary: "school-board",
			goal:        400_000,
			deadline:    now.AddDate(0, 0, 14),
		},
		{
			title:       "Mobile clinic",
			description: "Outfitting a van for village checkups",
			beneficiary: "clinic-fund",
			goal:        150_000,
			deadline:    now.AddDate(0, 0, -2),
			ended:       true,
		},
	}

	for i, demo := range demos {
		id := int64(i)
		createdAt := now.AddDate(0, 0, -7)

		campaign := domain.Campaign{
			ID:          id,
			Title:       demo.title,
			Description: demo.description,
			Beneficiary: demo.beneficiary,
			Goal:        demo.goal,
			Deadline:    demo.deadline,
			Ended:       demo.ended,
			CreatedAt:   createdAt,
			UpdatedAt:   createdAt,
		}

		var raised int64
		donors := 2 + r.Intn(4)
		type gift struct {
			contributor domain.Principal
			amount      int64
		}
		gifts := make([]gift, 0, donors)
		for j := 0; j < donors; j++ {
			gifts = append(gifts, gift{
				contributor: domain.Principal(fmt.Sprintf("donor-%d", r.Intn(20)+1)),
				amount:      int64(r.Intn(400)+100) * 100,
			})
		}

		_, err := db.Exec(ctx, `INSERT INTO campaigns
    (id, title, description, beneficiary, goal, deadline, amount_raised, ended, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,0,$7,$8,$8) ON CONFLICT DO NOTHING`,
			campaign.ID, campaign.Title, campaign.Description, campaign.Beneficiary,
			campaign.Goal, campaign.Deadline, campaign.Ended, createdAt)
		if err != nil {
			return err
		}

		created, err := domain.NewCampaignCreated(campaign, createdAt)
		if err != nil {
			return err
		}
		if err = insertSeedEvent(ctx, db, created); err != nil {
			return err
		}

		for j, g := range gifts {
			at := createdAt.Add(time.Duration(j+1) * time.Hour)
			_, err = db.Exec(ctx, `INSERT INTO contributions (campaign_id, contributor, amount, created_at, updated_at)
VALUES ($1,$2,$3,$4,$4)
ON CONFLICT (campaign_id, contributor)
DO UPDATE SET amount = contributions.amount + EXCLUDED.amount, updated_at = EXCLUDED.updated_at`,
				campaign.ID, g.contributor, g.amount, at)
			if err != nil {
				return err
			}
			raised += g.amount

			donation, err := domain.NewDonationReceived(campaign.ID, g.contributor, g.amount, at)
			if err != nil {
				return err
			}
			if err = insertSeedEvent(ctx, db, donation); err != nil {
				return err
			}
		}

		_, err = db.Exec(ctx, `UPDATE campaigns SET amount_raised = $1 WHERE id = $2`, raised, campaign.ID)
		if err != nil {
			return err
		}

		if campaign.Ended {
			ended, err := domain.NewCampaignEnded(campaign.ID, campaign.Beneficiary, raised, demo.deadline)
			if err != nil {
				return err
			}
			if err = insertSeedEvent(ctx, db, ended); err != nil {
				return err
			}
		}
	}

	return nil
}

func insertSeedEvent(ctx context.Context, db *pgxpool.Pool, ev domain.Event) error {
	_, err := db.Exec(ctx, `INSERT INTO ledger_events (id, type, campaign_id, payload, occurred_at)
VALUES ($1,$2,$3,$4,$5) ON CONFLICT DO NOTHING`,
		ev.ID, ev.Type, ev.CampaignID, ev.Payload, ev.OccurredAt)
	return err
}
