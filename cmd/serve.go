package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/femiolat/blastr/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the broadcast backend server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.config
	if host := cmd.String("host"); host != "" {
		config.Server.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		config.Server.Port = port
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(config, nil, r.logger)
	return srv.Start(ctx)
}
