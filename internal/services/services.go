// package services defines interface Service for interacting with the broadcast backend over HTTP
package services

import (
	"context"

	"github.com/femiolat/blastr/internal/models"
)

// Service defines the client contract for the broadcast backend: upload a
// spreadsheet, fetch the parsed preview, submit a send job and poll its
// progress.
type Service interface {
	// Upload submits the spreadsheet at path as multipart form data.
	// Returns the preview job id and the number of parsed rows.
	Upload(ctx context.Context, path string) (string, int, error)

	// Preview retrieves parsed contact rows for an upload job.
	// offset and limit page through large sheets; limit <= 0 uses the backend default.
	Preview(ctx context.Context, jobID string, offset, limit int) ([]models.Contact, error)

	// Send submits a message and target list, returning the send job id.
	Send(ctx context.Context, req models.SendRequest) (string, error)

	// Progress retrieves the current status of a send job.
	Progress(ctx context.Context, sendJobID string) (models.Progress, error)

	// Name returns the name of the backend this service talks to.
	Name() string
}
