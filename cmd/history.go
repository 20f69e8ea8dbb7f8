package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/dropzone/internal/formatter"
	"github.com/desertthunder/dropzone/internal/models"
	"github.com/desertthunder/dropzone/internal/repositories"
	"github.com/desertthunder/dropzone/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList prints recorded sessions in the requested format.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	limit := cmd.Int("limit")
	if limit < 0 {
		return fmt.Errorf("%w: --limit cannot be negative", shared.ErrInvalidFlag)
	}

	criteria := map[string]any{"limit": limit}
	if status := models.SessionStatus(cmd.String("status")); status != "" {
		if !status.Valid() {
			return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidFlag, status)
		}
		criteria["status"] = status
	}

	repo, release, err := r.sessionRepository()
	if err != nil {
		return err
	}
	defer release()

	sessions, err := repo.List(criteria)
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(format, sessions, path); err != nil {
			return err
		}
		r.logger.Info("history exported", "path", path, "sessions", len(sessions))
		return nil
	}

	data, err := formatter.Export(format, sessions)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// HistoryDelete removes one recorded session.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("%w: session id", shared.ErrMissingArgument)
	}

	repo, release, err := r.sessionRepository()
	if err != nil {
		return err
	}
	defer release()

	if err := repo.Delete(id); err != nil {
		return err
	}
	return r.writePlain("Deleted session %s\n", id)
}

func (r *Runner) sessionRepository() (*repositories.SessionRepository, func(), error) {
	if !r.config.History.Enabled {
		return nil, nil, fmt.Errorf("%w: set history.enabled = true in %s", shared.ErrHistoryDisabled, r.configPath)
	}

	db, err := r.openHistory()
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewSessionRepository(db), func() { db.Close() }, nil
}
