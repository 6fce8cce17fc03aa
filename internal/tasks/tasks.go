// package tasks implements the campaign workflow against the broadcast backend.
//
// The core abstraction is CampaignEngine, which orchestrates uploads, sends, and progress polling.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/femiolat/blastr/internal/models"
	"github.com/femiolat/blastr/internal/services"
	"github.com/femiolat/blastr/internal/shared"
)

// ConfirmFunc asks the user whether an empty selection should fall back to
// sending to all n preview rows. Returning false aborts the send.
type ConfirmFunc func(n int) bool

// SendOpts configures a send operation.
type SendOpts struct {
	Message     string      // Message body, must be non-empty
	Personalize bool        // Ask the backend to substitute {name} per recipient
	All         bool        // Bypass selection and send to the full preview
	Confirm     ConfirmFunc // Empty-selection fallback policy; nil means abort
}

// SendResult contains all data from a completed send operation.
type SendResult struct {
	SendJobID string          // Backend send job identifier
	Targets   int             // Number of recipients submitted
	Final     models.Progress // Last progress snapshot observed
}

// CampaignRecorder persists finished send jobs for local history.
// Implemented by repositories.CampaignRepository.
type CampaignRecorder interface {
	Create(campaign *models.Campaign) error
}

// Engine defines operations for driving the campaign workflow.
type Engine interface {
	// Upload submits a spreadsheet, fetches its parsed preview, and replaces
	// the current session.
	Upload(ctx context.Context, path string, progress chan<- ProgressUpdate) (*Session, error)

	// Send validates the message, resolves targets from the session, submits
	// the send job, and polls it to a terminal state.
	Send(ctx context.Context, opts SendOpts, progress chan<- ProgressUpdate) (*SendResult, error)

	// Poll watches an existing send job until it reaches a terminal state.
	Poll(ctx context.Context, sendJobID string, progress chan<- ProgressUpdate) (models.Progress, error)
}

// CampaignEngine implements Engine for the broadcast backend.
// Contains dependencies on the backend client and optional campaign history.
type CampaignEngine struct {
	svc          services.Service
	recorder     CampaignRecorder
	pollInterval time.Duration

	mu           sync.Mutex
	session      *Session
	sendInFlight bool
}

// NewCampaignEngine creates a new CampaignEngine with the provided backend
// client and optional history recorder.
func NewCampaignEngine(svc services.Service, recorder CampaignRecorder, pollInterval time.Duration) *CampaignEngine {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &CampaignEngine{
		svc:          svc,
		recorder:     recorder,
		pollInterval: pollInterval,
	}
}

// Session returns the current session, or nil before the first upload.
func (e *CampaignEngine) Session() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// sendUpdate sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendUpdate(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Upload submits the spreadsheet at path and loads its parsed preview.
//
// An empty path is a user input error: no request is issued. On success the
// engine's session is replaced wholesale, discarding any prior preview rows
// and selection.
func (e *CampaignEngine) Upload(ctx context.Context, path string, progress chan<- ProgressUpdate) (*Session, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: broadcast service not initialized", shared.ErrServiceUnavailable)
	}
	if strings.TrimSpace(path) == "" {
		return nil, shared.ErrNoFile
	}

	sendUpdate(progress, uploadingUpdate(path))

	jobID, _, err := e.svc.Upload(ctx, path)
	if err != nil {
		return nil, err
	}

	rows, err := e.svc.Preview(ctx, jobID, 0, 0)
	if err != nil {
		return nil, err
	}

	session := NewSession(jobID, rows)

	e.mu.Lock()
	e.session = session
	e.mu.Unlock()

	sendUpdate(progress, previewUpdate(jobID, len(rows)))
	return session, nil
}

// Send validates, submits, and watches a send job to completion.
//
// The message is validated before any network call. An empty selection with
// selected-intent consults opts.Confirm before falling back to the full
// preview; without confirmation the send aborts. Concurrent sends from the
// same engine are rejected.
func (e *CampaignEngine) Send(ctx context.Context, opts SendOpts, progress chan<- ProgressUpdate) (*SendResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: broadcast service not initialized", shared.ErrServiceUnavailable)
	}
	if strings.TrimSpace(opts.Message) == "" {
		return nil, shared.ErrEmptyMessage
	}

	e.mu.Lock()
	session := e.session
	if session == nil || session.Count() == 0 {
		e.mu.Unlock()
		return nil, shared.ErrNoPreview
	}
	if e.sendInFlight {
		e.mu.Unlock()
		return nil, shared.ErrSendInFlight
	}
	e.sendInFlight = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.sendInFlight = false
		e.mu.Unlock()
	}()

	targets := session.ResolveTargets(opts.All)
	if !opts.All && len(targets) == 0 {
		if opts.Confirm == nil || !opts.Confirm(session.Count()) {
			return nil, shared.ErrNoTargets
		}
		targets = session.ResolveTargets(true)
	}

	sendUpdate(progress, submittingUpdate(len(targets)))

	req := models.SendRequest{
		Message:     opts.Message,
		Personalize: opts.Personalize,
		Targets:     targets,
	}

	sendJobID, err := e.svc.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	session.SetSendJob(sendJobID)
	sendUpdate(progress, submittedUpdate(sendJobID))

	final, err := NewPoller(e.svc, sendJobID, e.pollInterval).Run(ctx, progress)
	result := &SendResult{SendJobID: sendJobID, Targets: len(targets), Final: final}
	if err != nil {
		return result, err
	}

	if e.recorder != nil {
		campaign := models.NewCampaign(sendJobID, req, final)
		if recordErr := e.recorder.Create(campaign); recordErr != nil {
			// History is best-effort; the send itself succeeded.
			return result, fmt.Errorf("send completed but history write failed: %w", recordErr)
		}
	}

	return result, nil
}

// Poll watches an existing send job until it reaches a terminal state.
func (e *CampaignEngine) Poll(ctx context.Context, sendJobID string, progress chan<- ProgressUpdate) (models.Progress, error) {
	return NewPoller(e.svc, sendJobID, e.pollInterval).Run(ctx, progress)
}
