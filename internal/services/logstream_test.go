package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/dropzone/internal/models"
	"github.com/desertthunder/dropzone/internal/shared"
	tu "github.com/desertthunder/dropzone/internal/testing"
)

func collect(lines *[]models.LogLine) func(models.LogLine) {
	return func(l models.LogLine) { *lines = append(*lines, l) }
}

func TestLogStreamService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		srv := NewLogStreamService(LogStreamOpts{})
		if srv.url != DefaultLogsURL {
			t.Errorf("expected default URL %s, got %s", DefaultLogsURL, srv.url)
		}
		if srv.httpClient != http.DefaultClient {
			t.Error("expected http.DefaultClient to be used")
		}
	})

	t.Run("StreamURL", func(t *testing.T) {
		t.Run("Adds Task ID Query", func(t *testing.T) {
			srv := NewLogStreamService(LogStreamOpts{URL: "http://localhost:5000/logs"})
			got, err := srv.StreamURL("abc123")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != "http://localhost:5000/logs?task_id=abc123" {
				t.Errorf("unexpected URL %s", got)
			}
		})

		t.Run("Escapes Handle", func(t *testing.T) {
			srv := NewLogStreamService(LogStreamOpts{URL: "http://localhost:5000/logs"})
			got, err := srv.StreamURL("a b&c")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.HasSuffix(got, "task_id=a+b%26c") {
				t.Errorf("expected escaped handle, got %s", got)
			}
		})

		t.Run("Keeps Existing Query", func(t *testing.T) {
			srv := NewLogStreamService(LogStreamOpts{URL: "http://localhost:5000/logs?format=plain"})
			got, _ := srv.StreamURL("t1")
			if !strings.Contains(got, "format=plain") || !strings.Contains(got, "task_id=t1") {
				t.Errorf("expected both query params, got %s", got)
			}
		})
	})

	t.Run("Stream", func(t *testing.T) {
		t.Run("Delivers Lines In Order Then Closes", func(t *testing.T) {
			backend := tu.NewBackend(t, tu.BackendOpts{Lines: []string{"a", "b", "c"}})
			srv := NewLogStreamService(LogStreamOpts{URL: backend.URL + "/logs"})

			var lines []models.LogLine
			err := srv.Stream(context.Background(), "abc123", collect(&lines))

			if !errors.Is(err, shared.ErrStreamClosed) {
				t.Fatalf("expected ErrStreamClosed, got %v", err)
			}
			if len(lines) != 3 {
				t.Fatalf("expected 3 lines, got %d", len(lines))
			}
			for i, want := range []string{"a", "b", "c"} {
				if lines[i].Text != want {
					t.Errorf("line %d = %q, want %q", i, lines[i].Text, want)
				}
				if lines[i].Seq != i+1 {
					t.Errorf("line %d seq = %d, want %d", i, lines[i].Seq, i+1)
				}
				if lines[i].TaskID != "abc123" {
					t.Errorf("line %d task = %q, want abc123", i, lines[i].TaskID)
				}
			}
			if got := backend.LogRequests(); len(got) != 1 || got[0] != "abc123" {
				t.Errorf("expected one request for abc123, got %v", got)
			}
		})

		t.Run("Skips Named Events", func(t *testing.T) {
			backend := tu.NewBackend(t, tu.BackendOpts{
				RawStream: "event: heartbeat\ndata: tick\n\ndata: real\n\n",
			})
			srv := NewLogStreamService(LogStreamOpts{URL: backend.URL + "/logs"})

			var lines []models.LogLine
			srv.Stream(context.Background(), "t1", collect(&lines))

			if len(lines) != 1 || lines[0].Text != "real" {
				t.Errorf("expected only the default event, got %+v", lines)
			}
		})

		t.Run("Empty Stream", func(t *testing.T) {
			backend := tu.NewBackend(t, tu.BackendOpts{})
			srv := NewLogStreamService(LogStreamOpts{URL: backend.URL + "/logs"})

			var lines []models.LogLine
			err := srv.Stream(context.Background(), "t1", collect(&lines))

			if !errors.Is(err, shared.ErrStreamClosed) {
				t.Errorf("expected ErrStreamClosed, got %v", err)
			}
			if len(lines) != 0 {
				t.Errorf("expected no lines, got %d", len(lines))
			}
		})

		t.Run("Error Status Closes Immediately", func(t *testing.T) {
			backend := tu.NewBackend(t, tu.BackendOpts{
				StreamStatus: http.StatusBadRequest,
				StreamType:   "application/json",
				RawStream:    `{"error": "Invalid task ID"}`,
			})
			srv := NewLogStreamService(LogStreamOpts{URL: backend.URL + "/logs"})

			var lines []models.LogLine
			err := srv.Stream(context.Background(), "unknown", collect(&lines))

			if !errors.Is(err, shared.ErrStreamClosed) {
				t.Errorf("expected ErrStreamClosed, got %v", err)
			}
			if len(lines) != 0 {
				t.Errorf("expected no lines from a refused stream, got %d", len(lines))
			}
		})

		t.Run("Wrong Content Type Closes Immediately", func(t *testing.T) {
			backend := tu.NewBackend(t, tu.BackendOpts{StreamType: "application/json", Lines: []string{"x"}})
			srv := NewLogStreamService(LogStreamOpts{URL: backend.URL + "/logs"})

			var lines []models.LogLine
			err := srv.Stream(context.Background(), "t1", collect(&lines))

			if !errors.Is(err, shared.ErrStreamClosed) {
				t.Errorf("expected ErrStreamClosed, got %v", err)
			}
			if len(lines) != 0 {
				t.Errorf("expected no lines, got %d", len(lines))
			}
		})

		t.Run("Connection Failure", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection reset")),
			}
			srv := NewLogStreamService(LogStreamOpts{URL: "http://example.com/logs", HTTPClient: client})

			err := srv.Stream(context.Background(), "t1", nil)
			if !errors.Is(err, shared.ErrStreamClosed) {
				t.Errorf("expected ErrStreamClosed, got %v", err)
			}
		})

		t.Run("Interrupted Body", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Header:     http.Header{"Content-Type": []string{"text/event-stream; charset=utf-8"}},
					Body:       &tu.FCloser{},
				}, nil),
			}
			srv := NewLogStreamService(LogStreamOpts{URL: "http://example.com/logs", HTTPClient: client})

			err := srv.Stream(context.Background(), "t1", nil)
			if !errors.Is(err, shared.ErrStreamClosed) {
				t.Errorf("expected ErrStreamClosed, got %v", err)
			}
			if !strings.Contains(err.Error(), "read failed") {
				t.Errorf("expected read failure in chain, got %v", err)
			}
		})

		t.Run("Context Cancellation Ends Stream", func(t *testing.T) {
			block := make(chan struct{})
			server := newHangingStream(t, block)
			srv := NewLogStreamService(LogStreamOpts{URL: server + "/logs"})

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- srv.Stream(ctx, "t1", nil) }()

			time.Sleep(50 * time.Millisecond)
			cancel()

			select {
			case err := <-done:
				if !errors.Is(err, shared.ErrStreamClosed) {
					t.Errorf("expected ErrStreamClosed, got %v", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("stream did not end after cancellation")
			}
			close(block)
		})
	})
}
