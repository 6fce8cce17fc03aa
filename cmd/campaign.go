package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/femiolat/blastr/internal/formatter"
	"github.com/femiolat/blastr/internal/models"
	"github.com/femiolat/blastr/internal/shared"
	"github.com/femiolat/blastr/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CampaignUpload uploads a spreadsheet and prints the parsed preview.
func (r *Runner) CampaignUpload(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: spreadsheet path is required", shared.ErrMissingArgument)
	}

	r.logger.Info("uploading spreadsheet", "path", path)

	jobID, count, err := r.svc.Upload(ctx, path)
	if err != nil {
		return err
	}

	limit := cmd.Int("limit")
	rows, err := r.svc.Preview(ctx, jobID, 0, limit)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"job_id":        jobID,
			"preview_count": count,
			"preview":       rows,
		}, true)
	}

	r.writePlain("Upload accepted: %s (%d contacts)\n\n", jobID, count)
	r.printContacts(rows)
	if count > len(rows) {
		r.writePlain("...and %d more. Use 'blastr campaign preview %s' to page through them.\n", count-len(rows), jobID)
	}
	r.writePlainln("Send with: blastr campaign send --job-id %s --message \"...\"", jobID)

	return nil
}

// CampaignPreview fetches parsed rows for an upload job.
func (r *Runner) CampaignPreview(ctx context.Context, cmd *cli.Command) error {
	jobID := cmd.StringArg("job-id")
	if jobID == "" {
		return fmt.Errorf("%w: job id is required", shared.ErrMissingArgument)
	}

	offset := cmd.Int("offset")
	limit := cmd.Int("limit")

	rows, err := r.svc.Preview(ctx, jobID, offset, limit)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(rows, true)
	}

	r.printContacts(rows)
	return nil
}

// CampaignSend submits a send job for an upload and watches it to completion.
//
// With --select flags, only the named contact ids are targeted; otherwise the
// full preview is sent after confirmation.
func (r *Runner) CampaignSend(ctx context.Context, cmd *cli.Command) error {
	jobID := cmd.String("job-id")
	message := cmd.String("message")
	selected := cmd.StringSlice("select")

	if strings.TrimSpace(message) == "" {
		return shared.ErrEmptyMessage
	}

	rows, err := r.svc.Preview(ctx, jobID, 0, 0)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: upload job has no rows", shared.ErrNoPreview)
	}

	session := tasks.NewSession(jobID, rows)
	for _, id := range selected {
		if !session.Toggle(id) {
			return fmt.Errorf("%w: unknown contact id %q", shared.ErrInvalidArgument, id)
		}
	}

	useAll := len(selected) == 0
	targets := session.ResolveTargets(useAll)
	if len(targets) == 0 {
		return shared.ErrNoTargets
	}

	if !cmd.Bool("yes") {
		if !r.confirm(fmt.Sprintf("Send to %d contacts?", len(targets))) {
			r.writePlain("Aborted.\n")
			return nil
		}
	}

	req := models.SendRequest{
		Message:     message,
		Personalize: cmd.Bool("personalize"),
		Targets:     targets,
	}

	sendJobID, err := r.svc.Send(ctx, req)
	if err != nil {
		return err
	}

	r.writePlain("Send job accepted: %s\n", sendJobID)

	final, err := r.watchProgress(ctx, sendJobID)
	if err != nil {
		return err
	}

	r.recordCampaign(sendJobID, req, final)
	r.printFinal(sendJobID, final)
	return nil
}

// CampaignExport writes the parsed preview of an upload job to disk.
func (r *Runner) CampaignExport(ctx context.Context, cmd *cli.Command) error {
	jobID := cmd.StringArg("job-id")
	if jobID == "" {
		return fmt.Errorf("%w: job id is required", shared.ErrMissingArgument)
	}

	rows, err := r.svc.Preview(ctx, jobID, 0, 0)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: upload job has no rows", shared.ErrNoPreview)
	}

	path, err := formatter.WriteContactsExport(rows, cmd.String("format"), cmd.String("output"))
	if err != nil {
		return err
	}

	r.writePlain("✓ Exported %d contacts to %s\n", len(rows), path)
	return nil
}

// CampaignProgress polls an existing send job until it finishes.
func (r *Runner) CampaignProgress(ctx context.Context, cmd *cli.Command) error {
	sendJobID := cmd.StringArg("send-job-id")
	if sendJobID == "" {
		return fmt.Errorf("%w: send job id is required", shared.ErrMissingArgument)
	}

	final, err := r.watchProgress(ctx, sendJobID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(final, true)
	}

	r.printFinal(sendJobID, final)
	return nil
}

// CampaignRun uploads, sends to every row, and watches progress in one step.
func (r *Runner) CampaignRun(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: spreadsheet path is required", shared.ErrMissingArgument)
	}
	message := cmd.String("message")

	updates := make(chan tasks.ProgressUpdate, 50)
	done := r.printUpdates(updates)

	session, err := r.engine.Upload(ctx, path, updates)
	if err != nil {
		close(updates)
		<-done
		return err
	}

	if !cmd.Bool("yes") {
		if !r.confirm(fmt.Sprintf("Send to all %d contacts?", session.Count())) {
			close(updates)
			<-done
			r.writePlain("Aborted.\n")
			return nil
		}
	}

	opts := tasks.SendOpts{
		Message:     message,
		Personalize: cmd.Bool("personalize"),
		All:         true,
	}

	result, err := r.engine.Send(ctx, opts, updates)
	close(updates)
	<-done
	if err != nil {
		return err
	}

	// The engine's recorder already wrote the history row.
	r.printFinal(result.SendJobID, result.Final)
	return nil
}

// watchProgress polls the send job, streaming updates to output, and returns
// the final snapshot.
func (r *Runner) watchProgress(ctx context.Context, sendJobID string) (models.Progress, error) {
	updates := make(chan tasks.ProgressUpdate, 50)
	done := r.printUpdates(updates)

	final, err := r.engine.Poll(ctx, sendJobID, updates)
	close(updates)
	<-done

	return final, err
}

// printUpdates consumes progress updates on a goroutine until the channel
// closes, then closes the returned channel.
func (r *Runner) printUpdates(updates <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range updates {
			r.writePlain("%s\n", update.Message)
		}
	}()
	return done
}

func (r *Runner) printContacts(rows []models.Contact) {
	for _, contact := range rows {
		r.writePlain("%4s  %-30s %s\n", contact.ID, contact.Fullname, contact.Phone)
	}
}

func (r *Runner) printFinal(sendJobID string, final models.Progress) {
	r.writePlainln("Job %s: %s", sendJobID, final.Status)
	r.writePlain("Sent: %d\nFailed: %d\nTotal: %d\n", final.Sent, final.Failed, final.Total)
}

// recordCampaign appends the finished send job to local history. Failures are
// logged, not returned; the send itself already succeeded.
func (r *Runner) recordCampaign(sendJobID string, req models.SendRequest, final models.Progress) {
	campaign := models.NewCampaign(sendJobID, req, final)
	if err := r.recorder.Create(campaign); err != nil {
		r.logger.Warn("failed to record campaign", "error", err)
		return
	}
	r.logger.Info("campaign recorded", "send_job_id", sendJobID)
}

// confirm asks a yes/no question on stdin.
func (r *Runner) confirm(prompt string) bool {
	r.writePlain("%s [y/N]: ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
