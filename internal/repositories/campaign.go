package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/femiolat/blastr/internal/models"
	"github.com/femiolat/blastr/internal/shared"
)

// CampaignRepository implements [models.Repository] for [models.Campaign]
// persistence. It also satisfies tasks.CampaignRecorder so finished send jobs
// land in local history.
type CampaignRepository struct {
	db *sql.DB
}

// NewCampaignRepository creates a new [CampaignRepository] with the given database connection
func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create inserts a new campaign record with generated ID and sequence
func (r *CampaignRepository) Create(campaign *models.Campaign) error {
	sequence, err := NextSequence(r.db, "campaigns")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	campaign.SetID(id)
	campaign.SetSequence(sequence)

	if err := campaign.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO campaigns (id, sequence, send_job_id, message, personalize, total, sent, failed, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, campaign.SendJobID, campaign.Message, campaign.Personalize,
		campaign.Total, campaign.Sent, campaign.Failed, string(campaign.Status), campaign.CreatedAt(), campaign.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert campaign: %w", err)
	}

	return nil
}

// Get retrieves a campaign by ID
func (r *CampaignRepository) Get(id string) (*models.Campaign, error) {
	query := `
		SELECT id, sequence, send_job_id, message, personalize, total, sent, failed, status, created_at, updated_at
		FROM campaigns
		WHERE id = ?
	`
	campaign, err := r.scanOne(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("campaign not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query campaign: %w", err)
	}
	return campaign, nil
}

// GetBySendJob retrieves a campaign by its backend send job identifier
func (r *CampaignRepository) GetBySendJob(sendJobID string) (*models.Campaign, error) {
	query := `
		SELECT id, sequence, send_job_id, message, personalize, total, sent, failed, status, created_at, updated_at
		FROM campaigns
		WHERE send_job_id = ?
	`
	campaign, err := r.scanOne(r.db.QueryRow(query, sendJobID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("campaign not found for send job: %s", sendJobID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query campaign: %w", err)
	}
	return campaign, nil
}

// Update modifies an existing campaign's counters and status
func (r *CampaignRepository) Update(campaign *models.Campaign) error {
	if err := campaign.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()

	query := `
		UPDATE campaigns
		SET total = ?, sent = ?, failed = ?, status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, campaign.Total, campaign.Sent, campaign.Failed, string(campaign.Status), now, campaign.ID())
	if err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("campaign not found: %s", campaign.ID())
	}

	return nil
}

// Delete removes a campaign record by ID
func (r *CampaignRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM campaigns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("campaign not found: %s", id)
	}

	return nil
}

// List retrieves all campaigns matching the given criteria, newest first
func (r *CampaignRepository) List(criteria map[string]any) ([]*models.Campaign, error) {
	query := `
		SELECT id, sequence, send_job_id, message, personalize, total, sent, failed, status, created_at, updated_at
		FROM campaigns
		WHERE 1 = 1
	`

	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		campaign, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return campaigns, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *CampaignRepository) scanOne(row scanner) (*models.Campaign, error) {
	var (
		id          string
		sequence    int
		sendJobID   string
		message     string
		personalize bool
		total       int
		sent        int
		failed      int
		status      string
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := row.Scan(&id, &sequence, &sendJobID, &message, &personalize, &total, &sent, &failed, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	campaign := models.NewCampaign(sendJobID, models.SendRequest{Message: message, Personalize: personalize}, models.Progress{
		Status: models.Status(status),
		Total:  total,
		Sent:   sent,
		Failed: failed,
	})
	campaign.SetID(id)
	campaign.SetSequence(sequence)
	campaign.SetTimestamps(createdAt, updatedAt)

	return campaign, nil
}
