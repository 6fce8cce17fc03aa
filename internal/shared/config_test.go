package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./blastr.db" {
			t.Errorf("expected database path ./blastr.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 5000 {
			t.Errorf("expected server port 5000, got %d", config.Server.Port)
		}

		if config.API.BaseURL != "http://127.0.0.1:5000" {
			t.Errorf("expected api base URL http://127.0.0.1:5000, got %s", config.API.BaseURL)
		}

		if config.API.PollIntervalSecs != 1 {
			t.Errorf("expected poll interval 1s, got %d", config.API.PollIntervalSecs)
		}

		if config.Provider.CountryCode != "+234" {
			t.Errorf("expected country code +234, got %s", config.Provider.CountryCode)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[api]
base_url = "http://broadcast.internal:9000"
poll_interval_secs = 2

[provider]
base_url = "https://gateway.example.com"
sender_id = "Acme"
api_key = "test_api_key"
country_code = "+233"
rate_per_sec = 2.5

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 8080
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "http://broadcast.internal:9000" {
			t.Errorf("expected api base URL http://broadcast.internal:9000, got %s", config.API.BaseURL)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Provider.SenderID != "Acme" {
			t.Errorf("expected sender id Acme, got %s", config.Provider.SenderID)
		}
	})

	t.Run("SaveConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		config := DefaultConfig()
		config.API.BaseURL = "http://saved.example.com"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}

		if loaded.API.BaseURL != "http://saved.example.com" {
			t.Errorf("expected saved base URL, got %s", loaded.API.BaseURL)
		}
	})
}
