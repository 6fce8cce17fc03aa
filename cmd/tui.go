package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/femiolat/blastr/internal/shared"
	"github.com/femiolat/blastr/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for a campaign.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: spreadsheet path is required", shared.ErrMissingArgument)
	}
	if r.engine == nil {
		return fmt.Errorf("%w: campaign engine not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/blastr-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.engine, path)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
