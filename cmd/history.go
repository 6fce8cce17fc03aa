package main

import (
	"context"
	"fmt"
	"time"

	"github.com/femiolat/blastr/internal/formatter"
	"github.com/femiolat/blastr/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList lists recorded campaigns, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	repo, db, err := openHistory(r.config)
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{}
	if limit := cmd.Int("limit"); limit > 0 {
		criteria["limit"] = limit
	}
	if status := cmd.String("status"); status != "" {
		criteria["status"] = status
	}

	campaigns, err := repo.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		type entry struct {
			Sequence    int    `json:"sequence"`
			SendJobID   string `json:"send_job_id"`
			Status      string `json:"status"`
			Total       int    `json:"total"`
			Sent        int    `json:"sent"`
			Failed      int    `json:"failed"`
			Personalize bool   `json:"personalize"`
			CreatedAt   string `json:"created_at"`
			Message     string `json:"message"`
		}
		entries := make([]entry, len(campaigns))
		for i, c := range campaigns {
			entries[i] = entry{
				Sequence:    c.Sequence(),
				SendJobID:   c.SendJobID,
				Status:      string(c.Status),
				Total:       c.Total,
				Sent:        c.Sent,
				Failed:      c.Failed,
				Personalize: c.Personalize,
				CreatedAt:   c.CreatedAt().Format("2006-01-02 15:04:05"),
				Message:     c.Message,
			}
		}
		return r.writeJSON(entries, true)
	}

	if len(campaigns) == 0 {
		r.writePlain("No campaigns recorded yet.\n")
		return nil
	}

	for _, c := range campaigns {
		r.writePlain("#%-4d %s  %-9s  %d sent, %d failed of %d  %s\n",
			c.Sequence(), c.CreatedAt().Format("2006-01-02 15:04"), c.Status, c.Sent, c.Failed, c.Total, c.SendJobID)
	}

	return nil
}

// HistoryShow prints one recorded campaign in full, including the message.
//
// The argument is matched against the backend send job id first, then the
// local campaign id.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: campaign or send job id is required", shared.ErrMissingArgument)
	}

	repo, db, err := openHistory(r.config)
	if err != nil {
		return err
	}
	defer db.Close()

	campaign, err := repo.GetBySendJob(id)
	if err != nil {
		if campaign, err = repo.Get(id); err != nil {
			return fmt.Errorf("%w: %s", shared.ErrJobNotFound, id)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"id":          campaign.ID(),
			"sequence":    campaign.Sequence(),
			"send_job_id": campaign.SendJobID,
			"status":      campaign.Status,
			"total":       campaign.Total,
			"sent":        campaign.Sent,
			"failed":      campaign.Failed,
			"personalize": campaign.Personalize,
			"created_at":  campaign.CreatedAt().Format(time.RFC3339),
			"message":     campaign.Message,
		}, true)
	}

	r.writePlain("Campaign #%d (%s)\n", campaign.Sequence(), campaign.SendJobID)
	r.writePlain("Status: %s\n", campaign.Status)
	r.writePlain("Sent: %d\nFailed: %d\nTotal: %d\n", campaign.Sent, campaign.Failed, campaign.Total)
	r.writePlain("Personalize: %v\n", campaign.Personalize)
	r.writePlain("Recorded: %s\n", campaign.CreatedAt().Format("2006-01-02 15:04"))
	r.writePlainln("Message:\n%s", campaign.Message)
	return nil
}

// HistoryExport exports campaign history to CSV.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	repo, db, err := openHistory(r.config)
	if err != nil {
		return err
	}
	defer db.Close()

	campaigns, err := repo.List(map[string]any{})
	if err != nil {
		return err
	}

	path, err := formatter.WriteCampaignsExport(campaigns, cmd.String("output"))
	if err != nil {
		return err
	}

	r.writePlain("✓ Exported %d campaigns to %s\n", len(campaigns), path)
	return nil
}
