package tasks

import (
	"fmt"

	"github.com/femiolat/blastr/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	UploadSheet Phase = iota
	FetchPreview
	SubmitSend
	PollProgress
)

func (p Phase) String() string {
	switch p {
	case UploadSheet:
		return "upload_sheet"
	case FetchPreview:
		return "fetch_preview"
	case SubmitSend:
		return "submit_send"
	case PollProgress:
		return "poll_progress"
	default:
		return ""
	}
}

func uploadingUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadSheet,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Uploading %s...", path),
	}
}

func previewUpdate(jobID string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPreview,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Parsed %d contacts (job %s)", count, jobID),
	}
}

func submittingUpdate(targets int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SubmitSend,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Submitting send job for %d recipients...", targets),
	}
}

func submittedUpdate(sendJobID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SubmitSend,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Send job accepted: %s", sendJobID),
	}
}

func pollUpdate(progress models.Progress) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PollProgress,
		Step:    progress.Sent + progress.Failed,
		Total:   progress.Total,
		Message: fmt.Sprintf("%s: %d%% (%d sent, %d failed of %d)", progress.Status, progress.Percent, progress.Sent, progress.Failed, progress.Total),
		Data:    progress,
	}
}
