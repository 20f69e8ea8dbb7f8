package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dropzone/internal/droptarget"
	"github.com/desertthunder/dropzone/internal/models"
	"github.com/desertthunder/dropzone/internal/shared"
)

// Uploader sends a dropped file to the backend and returns the task handle it assigns.
type Uploader interface {
	Upload(ctx context.Context, file models.DroppedFile, onProgress func(models.UploadProgress)) (models.TaskHandle, error)
}

// LogStreamer follows the log stream of a task until it closes.
type LogStreamer interface {
	Stream(ctx context.Context, handle models.TaskHandle, onLine func(models.LogLine)) error
}

// SessionRecorder keeps a history of pipeline runs.
type SessionRecorder interface {
	RecordStart(file models.DroppedFile) (string, error)
	RecordAccepted(id string, handle models.TaskHandle) error
	RecordFailure(id string, status models.SessionStatus, reason string) error
	RecordEnded(id string, lines int) error
}

// Pipeline runs drop → upload → log stream for one file at a time.
type Pipeline struct {
	uploader Uploader
	streamer LogStreamer
	recorder SessionRecorder
	logger   *log.Logger
}

// PipelineOpts configures a [Pipeline]. Recorder and Logger are optional.
type PipelineOpts struct {
	Uploader Uploader
	Streamer LogStreamer
	Recorder SessionRecorder
	Logger   *log.Logger
}

// NewPipeline creates a Pipeline from its collaborators.
func NewPipeline(opts PipelineOpts) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		uploader: opts.Uploader,
		streamer: opts.Streamer,
		recorder: opts.Recorder,
		logger:   logger.WithPrefix("pipeline"),
	}
}

// emit delivers ev unless ctx ends first. It reports whether the event was sent.
func (p *Pipeline) emit(ctx context.Context, events chan<- Event, ev Event) bool {
	if events == nil {
		return false
	}
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Drop handles the paths of one drop gesture.
//
// The Drop event is always emitted. Only the first regular file is uploaded; a drop without
// any returns nil without touching the network.
func (p *Pipeline) Drop(ctx context.Context, events chan<- Event, paths []string) error {
	files := droptarget.Collect(paths)
	if len(files) == 0 {
		p.logger.Debug("drop contained no files", "paths", len(paths))
		p.emit(ctx, events, dropUpdate(0, nil))
		return nil
	}

	if len(files) > 1 {
		p.logger.Debug("ignoring additional dropped files", "ignored", len(files)-1)
	}

	file, err := droptarget.Load(files[0])
	if err != nil {
		p.logger.Error("failed to read dropped file", "path", files[0], "error", err)
		p.emit(ctx, events, dropUpdate(len(files), nil))
		p.emit(ctx, events, uploadFailedUpdate(err))
		return err
	}

	p.emit(ctx, events, dropUpdate(len(files), file))
	return p.Run(ctx, events, *file)
}

// Run uploads file and, once the backend returns a task handle, streams its log.
//
// Upload failures are returned after the UploadFailed event. The end of the log stream is the
// normal way a run finishes, so Run returns nil after StreamClosed.
func (p *Pipeline) Run(ctx context.Context, events chan<- Event, file models.DroppedFile) error {
	if p.uploader == nil {
		return fmt.Errorf("%w: upload service not initialized", shared.ErrServiceUnavailable)
	}
	if p.streamer == nil {
		return fmt.Errorf("%w: log stream service not initialized", shared.ErrServiceUnavailable)
	}

	sessionID := p.recordStart(file)

	relay := p.relayProgress(ctx, events)
	handle, err := p.uploader.Upload(ctx, file, relay.offer)
	relay.close()
	if err != nil {
		status := models.StatusRejected
		if errors.Is(err, shared.ErrNoTaskID) {
			status = models.StatusMalformed
		}
		p.logger.Error("upload failed", "file", file.Name, "error", err)
		p.recordFailure(sessionID, status, err)
		p.emit(ctx, events, uploadFailedUpdate(err))
		return err
	}

	p.logger.Info("upload accepted", "file", file.Name, "task_id", handle)
	p.recordAccepted(sessionID, handle)
	p.emit(ctx, events, uploadCompleteUpdate(handle))

	lines := 0
	err = p.streamer.Stream(ctx, handle, func(line models.LogLine) {
		lines++
		p.emit(ctx, events, logLineUpdate(line))
	})

	p.logger.Info("log stream closed", "task_id", handle, "lines", lines, "reason", err)
	p.recordEnded(sessionID, lines)
	p.emit(ctx, events, streamClosedUpdate(handle, lines, err))
	return nil
}

// progressRelay forwards upload progress to the event channel without blocking the uploader.
//
// It holds one pending value; an offer made while the previous one is still pending replaces it,
// so a slow reader sees fewer, never stale, updates.
type progressRelay struct {
	latest chan models.UploadProgress
	done   chan struct{}
}

func (p *Pipeline) relayProgress(ctx context.Context, events chan<- Event) *progressRelay {
	r := &progressRelay{
		latest: make(chan models.UploadProgress, 1),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(r.done)
		for progress := range r.latest {
			p.emit(ctx, events, uploadProgressUpdate(progress))
		}
	}()
	return r
}

// offer must not be called concurrently or after close.
func (r *progressRelay) offer(progress models.UploadProgress) {
	for {
		select {
		case r.latest <- progress:
			return
		default:
		}
		select {
		case <-r.latest:
		default:
		}
	}
}

// close waits until the last offered value has been emitted or dropped by a cancelled context.
func (r *progressRelay) close() {
	close(r.latest)
	<-r.done
}

func (p *Pipeline) recordStart(file models.DroppedFile) string {
	if p.recorder == nil {
		return ""
	}
	id, err := p.recorder.RecordStart(file)
	if err != nil {
		p.logger.Warn("failed to record session", "error", err)
		return ""
	}
	return id
}

func (p *Pipeline) recordAccepted(id string, handle models.TaskHandle) {
	if p.recorder == nil || id == "" {
		return
	}
	if err := p.recorder.RecordAccepted(id, handle); err != nil {
		p.logger.Warn("failed to record accepted upload", "session", id, "error", err)
	}
}

func (p *Pipeline) recordFailure(id string, status models.SessionStatus, cause error) {
	if p.recorder == nil || id == "" {
		return
	}
	if err := p.recorder.RecordFailure(id, status, cause.Error()); err != nil {
		p.logger.Warn("failed to record upload failure", "session", id, "error", err)
	}
}

func (p *Pipeline) recordEnded(id string, lines int) {
	if p.recorder == nil || id == "" {
		return
	}
	if err := p.recorder.RecordEnded(id, lines); err != nil {
		p.logger.Warn("failed to record stream end", "session", id, "error", err)
	}
}
