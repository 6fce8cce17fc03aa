package main

import (
	"context"
	"errors"
	"os"

	"github.com/femiolat/blastr/internal/services"
	"github.com/femiolat/blastr/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	svc := services.NewBroadcastService(config.API.BaseURL, nil)
	apiService := services.NewAPIService(config.API.BaseURL, nil)

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Service: svc,
		API:     apiService,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "blastr",
		Usage:    "Send bulk SMS campaigns from a spreadsheet of contacts",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
