package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/dropzone/internal/shared"
	"github.com/desertthunder/dropzone/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Upload runs the pipeline for the given paths and prints the transcript.
//
// Progress is redrawn on one line; each log line is printed as it arrives. An upload that is rejected or
// returns no task id fails the command. A drop without files is not an error.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one path is required", shared.ErrMissingArgument)
	}

	if cmd.IsSet("rate-limit") {
		limit := cmd.Int64("rate-limit")
		if limit < 0 {
			return fmt.Errorf("%w: --rate-limit cannot be negative", shared.ErrInvalidFlag)
		}
		r.config.Upload.RateLimit = limit
	}

	pipeline, release, err := r.newPipeline()
	defer release()
	if err != nil {
		return err
	}

	events := make(chan tasks.Event)
	done := make(chan error, 1)
	go func() {
		done <- pipeline.Drop(ctx, events, paths)
		close(events)
	}()

	t := &transcript{r: r}
	for ev := range events {
		t.write(ev)
	}
	return <-done
}

// transcript prints pipeline events as terminal text.
type transcript struct {
	r          *Runner
	inProgress bool // the cursor sits at the end of an "Uploading: N%" line
}

func (t *transcript) write(ev tasks.Event) {
	if ev.Kind != tasks.UploadProgress && t.inProgress {
		t.r.writePlain("\n")
		t.inProgress = false
	}

	switch ev.Kind {
	case tasks.Drop:
		if ev.File == nil {
			t.r.logger.Warn("nothing to upload: no path names a regular file")
			return
		}
		t.r.logger.Debug(ev.Message, "content_type", ev.File.ContentType)
	case tasks.UploadProgress:
		t.r.writePlain("\r%s", ev.Message)
		t.inProgress = true
	case tasks.UploadComplete:
		t.r.logger.Info(ev.Message)
	case tasks.UploadFailed:
		t.r.writePlain("%s\n", ev.Message)
	case tasks.LogLine:
		t.r.writePlain("%s\n", ev.Line.Text)
	case tasks.StreamClosed:
		t.r.logger.Info(ev.Message)
	}
}
