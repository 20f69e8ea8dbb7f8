package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/dropzone/internal/shared"
	"github.com/desertthunder/dropzone/internal/ui"
	"github.com/urfave/cli/v3"
)

// UI launches the interactive drop zone.
//
// Focus reporting stands in for drag over/leave and bracketed paste delivers dropped paths.
// Paths given as arguments are dropped as soon as the program starts.
func (r *Runner) UI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Logging.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	pipeline, release, err := r.newPipeline()
	defer release()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, ui.ModelOpts{
		Dropper: pipeline,
		Server:  r.config.Server.BaseURL,
		Paths:   cmd.Args().Slice(),
		Logger:  r.logger,
	})
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithReportFocus())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
