package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/femiolat/blastr/internal/models"
	"github.com/femiolat/blastr/internal/shared"
	tu "github.com/femiolat/blastr/internal/testing"
)

func TestPoller(t *testing.T) {
	interval := time.Millisecond

	t.Run("polls until terminal and stops", func(t *testing.T) {
		snapshots := []models.Progress{
			{Status: models.StatusPending, Percent: 0, Total: 5},
			{Status: models.StatusRunning, Percent: 40, Sent: 2, Total: 5},
			{Status: models.StatusRunning, Percent: 80, Sent: 4, Total: 5},
			{Status: models.StatusCompleted, Percent: 100, Sent: 5, Total: 5},
		}
		svc := &tu.MockService{}
		svc.ProgressFunc = func(ctx context.Context, sendJobID string) (models.Progress, error) {
			if sendJobID != "send-1" {
				t.Errorf("unexpected send job id %s", sendJobID)
			}
			return snapshots[svc.ProgressCalls-1], nil
		}

		p := NewPoller(svc, "send-1", interval)
		updates := make(chan ProgressUpdate, 16)

		final, err := p.Run(context.Background(), updates)
		if err != nil {
			t.Fatalf("expected clean completion, got %v", err)
		}
		if final.Status != models.StatusCompleted {
			t.Errorf("expected completed final status, got %s", final.Status)
		}
		if final.Percent != 100 {
			t.Errorf("expected final percent 100, got %d", final.Percent)
		}
		if svc.ProgressCalls != len(snapshots) {
			t.Errorf("expected exactly %d fetches, got %d", len(snapshots), svc.ProgressCalls)
		}
		if p.State() != Done {
			t.Error("expected poller to be done")
		}

		close(updates)
		var polls int
		for u := range updates {
			if u.Phase == PollProgress {
				polls++
			}
		}
		if polls != len(snapshots) {
			t.Errorf("expected one update per fetch, got %d", polls)
		}
	})

	t.Run("failed fetch halts immediately without retry", func(t *testing.T) {
		svc := &tu.MockService{
			ProgressFunc: func(ctx context.Context, sendJobID string) (models.Progress, error) {
				return models.Progress{}, errors.New("connection refused")
			},
		}

		p := NewPoller(svc, "send-1", interval)
		_, err := p.Run(context.Background(), nil)
		if !errors.Is(err, shared.ErrPollFailed) {
			t.Fatalf("expected ErrPollFailed, got %v", err)
		}
		if svc.ProgressCalls != 1 {
			t.Errorf("expected a single fetch, got %d", svc.ProgressCalls)
		}
		if p.State() != Done {
			t.Error("expected poller to be done after failure")
		}
	})

	t.Run("context cancellation stops the loop", func(t *testing.T) {
		svc := &tu.MockService{
			ProgressFunc: func(ctx context.Context, sendJobID string) (models.Progress, error) {
				return models.Progress{Status: models.StatusRunning, Total: 5}, nil
			},
		}

		ctx, cancel := context.WithCancel(context.Background())
		p := NewPoller(svc, "send-1", interval)

		done := make(chan error, 1)
		go func() {
			_, err := p.Run(ctx, nil)
			done <- err
		}()

		cancel()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("poller did not stop after cancellation")
		}
		if p.State() != Done {
			t.Error("expected poller to be done after cancellation")
		}
	})

	t.Run("transition is performed exactly once", func(t *testing.T) {
		p := NewPoller(&tu.MockService{}, "send-1", interval)
		if !p.transition() {
			t.Error("expected first transition to report true")
		}
		if p.transition() {
			t.Error("expected second transition to be a no-op")
		}
		select {
		case <-p.DoneChan():
		default:
			t.Error("expected done channel to be closed")
		}
	})

	t.Run("empty send job id is rejected", func(t *testing.T) {
		svc := &tu.MockService{}
		p := NewPoller(svc, "", interval)
		_, err := p.Run(context.Background(), nil)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
		if svc.ProgressCalls != 0 {
			t.Error("expected no fetches for an empty send job id")
		}
	})
}
