package repositories

import (
	"database/sql"
	"testing"

	"github.com/femiolat/blastr/internal/models"
	"github.com/femiolat/blastr/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func testCampaign(sendJobID string) *models.Campaign {
	req := models.SendRequest{Message: "Hello {name}", Personalize: true}
	final := models.Progress{Status: models.StatusCompleted, Percent: 100, Sent: 8, Failed: 2, Total: 10}
	return models.NewCampaign(sendJobID, req, final)
}

func TestCampaignRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCampaignRepository(db)
		campaign := testCampaign("send-1")

		if err := repo.Create(campaign); err != nil {
			t.Fatalf("failed to create campaign: %v", err)
		}

		if campaign.ID() == "" {
			t.Error("campaign ID should be set after creation")
		}
		if campaign.Sequence() == 0 {
			t.Error("campaign sequence should be set after creation")
		}
	})

	t.Run("Create rejects duplicate send job ids", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCampaignRepository(db)

		if err := repo.Create(testCampaign("send-1")); err != nil {
			t.Fatalf("failed to create campaign: %v", err)
		}
		if err := repo.Create(testCampaign("send-1")); err == nil {
			t.Error("expected unique constraint violation for duplicate send job id")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCampaignRepository(db)
		campaign := testCampaign("send-1")

		if err := repo.Create(campaign); err != nil {
			t.Fatalf("failed to create campaign: %v", err)
		}

		retrieved, err := repo.Get(campaign.ID())
		if err != nil {
			t.Fatalf("failed to get campaign: %v", err)
		}

		if retrieved.ID() != campaign.ID() {
			t.Errorf("expected ID %s, got %s", campaign.ID(), retrieved.ID())
		}
		if retrieved.SendJobID != "send-1" {
			t.Errorf("expected send job id send-1, got %s", retrieved.SendJobID)
		}
		if retrieved.Message != campaign.Message {
			t.Errorf("expected message %q, got %q", campaign.Message, retrieved.Message)
		}
		if !retrieved.Personalize {
			t.Error("expected personalize flag to round-trip")
		}
		if retrieved.Sent != 8 || retrieved.Failed != 2 || retrieved.Total != 10 {
			t.Errorf("expected counters 8/2/10, got %d/%d/%d", retrieved.Sent, retrieved.Failed, retrieved.Total)
		}
		if retrieved.Status != models.StatusCompleted {
			t.Errorf("expected completed status, got %s", retrieved.Status)
		}
	})

	t.Run("Get returns error for missing campaign", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCampaignRepository(db)
		if _, err := repo.Get("nonexistent"); err == nil {
			t.Error("expected error for missing campaign")
		}
	})

	t.Run("GetBySendJob", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCampaignRepository(db)
		campaign := testCampaign("send-42")

		if err := repo.Create(campaign); err != nil {
			t.Fatalf("failed to create campaign: %v", err)
		}

		retrieved, err := repo.GetBySendJob("send-42")
		if err != nil {
			t.Fatalf("failed to get campaign by send job: %v", err)
		}
		if retrieved.ID() != campaign.ID() {
			t.Errorf("expected ID %s, got %s", campaign.ID(), retrieved.ID())
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCampaignRepository(db)
		campaign := testCampaign("send-1")

		if err := repo.Create(campaign); err != nil {
			t.Fatalf("failed to create campaign: %v", err)
		}

		campaign.Sent = 10
		campaign.Failed = 0
		campaign.Status = models.StatusCompleted
		if err := repo.Update(campaign); err != nil {
			t.Fatalf("failed to update campaign: %v", err)
		}

		retrieved, err := repo.Get(campaign.ID())
		if err != nil {
			t.Fatalf("failed to get campaign: %v", err)
		}
		if retrieved.Sent != 10 || retrieved.Failed != 0 {
			t.Errorf("expected counters 10/0, got %d/%d", retrieved.Sent, retrieved.Failed)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCampaignRepository(db)
		campaign := testCampaign("send-1")

		if err := repo.Create(campaign); err != nil {
			t.Fatalf("failed to create campaign: %v", err)
		}
		if err := repo.Delete(campaign.ID()); err != nil {
			t.Fatalf("failed to delete campaign: %v", err)
		}
		if _, err := repo.Get(campaign.ID()); err == nil {
			t.Error("expected error getting deleted campaign")
		}
		if err := repo.Delete(campaign.ID()); err == nil {
			t.Error("expected error deleting missing campaign")
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCampaignRepository(db)

		first := testCampaign("send-1")
		second := testCampaign("send-2")
		second.Status = models.StatusFailed

		if err := repo.Create(first); err != nil {
			t.Fatalf("failed to create campaign: %v", err)
		}
		if err := repo.Create(second); err != nil {
			t.Fatalf("failed to create campaign: %v", err)
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list campaigns: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 campaigns, got %d", len(all))
		}
		if all[0].SendJobID != "send-2" {
			t.Errorf("expected newest first, got %s", all[0].SendJobID)
		}

		failed, err := repo.List(map[string]any{"status": "failed"})
		if err != nil {
			t.Fatalf("failed to list failed campaigns: %v", err)
		}
		if len(failed) != 1 || failed[0].SendJobID != "send-2" {
			t.Errorf("expected only send-2 with failed status, got %d rows", len(failed))
		}

		limited, err := repo.List(map[string]any{"limit": 1})
		if err != nil {
			t.Fatalf("failed to list limited campaigns: %v", err)
		}
		if len(limited) != 1 {
			t.Errorf("expected 1 campaign with limit, got %d", len(limited))
		}
	})

	t.Run("sequences increment across creates", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCampaignRepository(db)

		first := testCampaign("send-1")
		second := testCampaign("send-2")

		if err := repo.Create(first); err != nil {
			t.Fatalf("failed to create campaign: %v", err)
		}
		if err := repo.Create(second); err != nil {
			t.Fatalf("failed to create campaign: %v", err)
		}

		if second.Sequence() != first.Sequence()+1 {
			t.Errorf("expected consecutive sequences, got %d then %d", first.Sequence(), second.Sequence())
		}
	})
}
