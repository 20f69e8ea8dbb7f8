// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/dropzone/internal/models"
	"github.com/desertthunder/dropzone/internal/shared"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		io.Copy(io.Discard, req.Body)
		req.Body.Close()
	}
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// ReceivedUpload is what the fake backend saw in one POST /upload.
type ReceivedUpload struct {
	FieldName   string
	FileName    string
	ContentType string
	Data        []byte
	Fields      int // number of file parts in the form
}

// BackendOpts scripts the responses of a [Backend].
type BackendOpts struct {
	UploadStatus int    // Defaults to 200
	UploadBody   string // Defaults to {"task_id":"t1"}
	StreamStatus int    // Defaults to 200
	StreamType   string // Defaults to text/event-stream
	Lines        []string
	RawStream    string // Written verbatim instead of Lines when set
}

// Backend is a fake upload/log server for the /upload and /logs endpoints.
type Backend struct {
	*httptest.Server

	opts BackendOpts
	mu   sync.Mutex
	ups  []ReceivedUpload
	logs []string
}

// NewBackend starts a [Backend] that is closed when the test ends.
func NewBackend(t *testing.T, opts BackendOpts) *Backend {
	t.Helper()
	if opts.UploadStatus == 0 {
		opts.UploadStatus = http.StatusOK
	}
	if opts.UploadBody == "" {
		opts.UploadBody = `{"task_id":"t1"}`
	}
	if opts.StreamStatus == 0 {
		opts.StreamStatus = http.StatusOK
	}
	if opts.StreamType == "" {
		opts.StreamType = "text/event-stream"
	}

	b := &Backend{opts: opts}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", b.handleUpload)
	mux.HandleFunc("GET /logs", b.handleLogs)
	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

func (b *Backend) handleUpload(w http.ResponseWriter, r *http.Request) {
	received := ReceivedUpload{}
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && mediaType == "multipart/form-data" {
		mr := multipart.NewReader(r.Body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err != nil {
				break
			}
			if part.FileName() == "" {
				continue
			}
			received.Fields++
			if received.Fields == 1 {
				received.FieldName = part.FormName()
				received.FileName = part.FileName()
				received.ContentType = part.Header.Get("Content-Type")
				received.Data, _ = io.ReadAll(part)
			}
		}
	}

	b.mu.Lock()
	b.ups = append(b.ups, received)
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.opts.UploadStatus)
	io.WriteString(w, b.opts.UploadBody)
}

func (b *Backend) handleLogs(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.logs = append(b.logs, r.URL.Query().Get("task_id"))
	b.mu.Unlock()

	w.Header().Set("Content-Type", b.opts.StreamType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(b.opts.StreamStatus)

	flusher, _ := w.(http.Flusher)
	if b.opts.RawStream != "" {
		io.WriteString(w, b.opts.RawStream)
		return
	}
	for _, line := range b.opts.Lines {
		io.WriteString(w, SSEMessage(line))
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// Uploads returns the uploads received so far.
func (b *Backend) Uploads() []ReceivedUpload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ReceivedUpload(nil), b.ups...)
}

// LogRequests returns the task_id of every /logs request received so far.
func (b *Backend) LogRequests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.logs...)
}

// SSEMessage encodes text as a default-type event, one data field per line.
func SSEMessage(text string) string {
	var sb strings.Builder
	for _, line := range strings.Split(text, "\n") {
		sb.WriteString("data: ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

// FakeUploader is a scripted upload transport.
type FakeUploader struct {
	Handle   models.TaskHandle
	Err      error
	Progress []models.UploadProgress

	mu    sync.Mutex
	Calls []models.DroppedFile
}

func (f *FakeUploader) Upload(ctx context.Context, file models.DroppedFile, onProgress func(models.UploadProgress)) (models.TaskHandle, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, file)
	f.mu.Unlock()

	for _, p := range f.Progress {
		if onProgress != nil {
			onProgress(p)
		}
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Handle, nil
}

// FakeStreamer is a scripted log stream client.
type FakeStreamer struct {
	Lines []string

	mu      sync.Mutex
	Handles []models.TaskHandle
}

func (f *FakeStreamer) Stream(ctx context.Context, handle models.TaskHandle, onLine func(models.LogLine)) error {
	f.mu.Lock()
	f.Handles = append(f.Handles, handle)
	f.mu.Unlock()

	for i, text := range f.Lines {
		if err := ctx.Err(); err != nil {
			return errors.Join(shared.ErrStreamClosed, err)
		}
		if onLine != nil {
			onLine(models.LogLine{TaskID: handle, Seq: i + 1, Text: text})
		}
	}
	return shared.ErrStreamClosed
}

// Streamed returns the handles Stream was called with.
func (f *FakeStreamer) Streamed() []models.TaskHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.TaskHandle(nil), f.Handles...)
}

// Uploaded returns the files Upload was called with.
func (f *FakeUploader) Uploaded() []models.DroppedFile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.DroppedFile(nil), f.Calls...)
}

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
