package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dropzone/internal/models"
	"github.com/desertthunder/dropzone/internal/shared"
)

// LogStreamOpts configures a [LogStreamService].
type LogStreamOpts struct {
	URL        string       // Full logs endpoint URL
	HTTPClient *http.Client // Must not set a Timeout; streams are long-lived
	Logger     *log.Logger
}

// LogStreamService follows the server-sent log feed of a task.
type LogStreamService struct {
	url        string
	httpClient *http.Client
	logger     *log.Logger
}

// NewLogStreamService creates a [LogStreamService], filling unset options with defaults.
func NewLogStreamService(opts LogStreamOpts) *LogStreamService {
	if opts.URL == "" {
		opts.URL = DefaultLogsURL
	}
	return &LogStreamService{
		url:        opts.URL,
		httpClient: defaultClient(opts.HTTPClient),
		logger:     defaultLogger(opts.Logger, "logstream"),
	}
}

// StreamURL returns the logs endpoint URL scoped to handle.
func (s *LogStreamService) StreamURL(handle models.TaskHandle) (string, error) {
	u, err := url.Parse(s.url)
	if err != nil {
		return "", fmt.Errorf("%w: logs URL: %w", shared.ErrInvalidConfig, err)
	}
	q := u.Query()
	q.Set("task_id", handle.String())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Stream connects to the log feed for handle and calls onLine for every message event, in order.
//
// It returns when the connection ends. The returned error always wraps [shared.ErrStreamClosed];
// a server that finished the task and a dropped connection look the same.
func (s *LogStreamService) Stream(ctx context.Context, handle models.TaskHandle, onLine func(models.LogLine)) error {
	logger := shared.WithLogger(s.logger, "task_id", handle)

	streamURL, err := s.StreamURL(handle)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrStreamClosed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %w", shared.ErrStreamClosed, err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Warn("log stream connection failed", "err", err)
		return fmt.Errorf("%w: %w", shared.ErrStreamClosed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("log stream refused", "status", resp.StatusCode)
		return fmt.Errorf("%w: status %d", shared.ErrStreamClosed, resp.StatusCode)
	}
	if mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err != nil || mediaType != "text/event-stream" {
		logger.Warn("log stream has wrong content type", "content_type", resp.Header.Get("Content-Type"))
		return fmt.Errorf("%w: unexpected content type %q", shared.ErrStreamClosed, resp.Header.Get("Content-Type"))
	}

	logger.Info("log stream opened")

	reader := newEventReader(resp.Body)
	seq := 0
	for {
		ev, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Info("log stream closed by server", "lines", seq)
				return fmt.Errorf("%w: server closed the connection", shared.ErrStreamClosed)
			}
			logger.Info("log stream interrupted", "lines", seq, "err", err)
			return fmt.Errorf("%w: %w", shared.ErrStreamClosed, err)
		}

		if ev.Type != "message" {
			logger.Debug("ignoring named event", "event", ev.Type)
			continue
		}

		seq++
		if onLine != nil {
			onLine(models.LogLine{TaskID: handle, Seq: seq, Text: ev.Data})
		}
	}
}
