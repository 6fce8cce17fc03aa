// package models defines the data model for the bulk messaging client
package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models in the blastr client.
// Implementations include Campaign.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Contact represents one parsed spreadsheet row returned by the backend preview.
//
// The ID is a stable per-row identifier assigned at parse time; selection state
// is keyed by it rather than by position in the rendered list.
type Contact struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname"`
	Phone    string `json:"phone"`
}

// SendRequest is the JSON body submitted to the /send endpoint.
type SendRequest struct {
	Message     string    `json:"message"`
	Personalize bool      `json:"personalize"`
	Targets     []Contact `json:"targets"`
}

// Status enumerates the lifecycle states of a send job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status ends the send-job lifecycle.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Progress represents the polled state of a send job.
type Progress struct {
	Status  Status `json:"status"`
	Percent int    `json:"percent"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
	Total   int    `json:"total"`
}

// Terminal reports whether this progress snapshot ends polling.
func (p Progress) Terminal() bool {
	return p.Status.Terminal()
}

// Campaign is a persisted record of a send job for local history.
type Campaign struct {
	id          string
	sequence    int
	SendJobID   string
	Message     string
	Personalize bool
	Total       int
	Sent        int
	Failed      int
	Status      Status
	createdAt   time.Time
	updatedAt   time.Time
}

// NewCampaign creates a Campaign record from a send request and its final progress.
func NewCampaign(sendJobID string, req SendRequest, final Progress) *Campaign {
	now := time.Now().UTC()
	return &Campaign{
		SendJobID:   sendJobID,
		Message:     req.Message,
		Personalize: req.Personalize,
		Total:       final.Total,
		Sent:        final.Sent,
		Failed:      final.Failed,
		Status:      final.Status,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (c *Campaign) ID() string           { return c.id }
func (c *Campaign) CreatedAt() time.Time { return c.createdAt }
func (c *Campaign) UpdatedAt() time.Time { return c.updatedAt }

// SetID assigns the generated identifier. Called by the repository on create.
func (c *Campaign) SetID(id string) { c.id = id }

// SetSequence assigns the human-readable ordering number.
func (c *Campaign) SetSequence(seq int) { c.sequence = seq }

// Sequence returns the campaign's ordering number.
func (c *Campaign) Sequence() int { return c.sequence }

// SetTimestamps restores persisted timestamps when scanning from the database.
func (c *Campaign) SetTimestamps(created, updated time.Time) {
	c.createdAt = created
	c.updatedAt = updated
}

// Validate checks the campaign record before persistence.
func (c *Campaign) Validate() error {
	if c.id == "" {
		return fmt.Errorf("campaign id is empty")
	}
	if c.SendJobID == "" {
		return fmt.Errorf("send job id is empty")
	}
	if c.Message == "" {
		return fmt.Errorf("message is empty")
	}
	switch c.Status {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
	default:
		return fmt.Errorf("invalid status %q", c.Status)
	}
	return nil
}
