package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dropzone/internal/models"
	"github.com/desertthunder/dropzone/internal/shared"
	"golang.org/x/time/rate"
)

// UploadOpts configures an [UploadService].
type UploadOpts struct {
	URL        string       // Full upload endpoint URL
	FieldName  string       // Multipart field carrying the file
	RateLimit  int64        // Bytes per second, 0 = unlimited
	HTTPClient *http.Client // Defaults to [http.DefaultClient]
	Logger     *log.Logger
}

// UploadService posts dropped files to the upload endpoint.
type UploadService struct {
	url        string
	fieldName  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewUploadService creates an [UploadService], filling unset options with defaults.
func NewUploadService(opts UploadOpts) *UploadService {
	if opts.URL == "" {
		opts.URL = DefaultUploadURL
	}
	if opts.FieldName == "" {
		opts.FieldName = DefaultFieldName
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), int(min(opts.RateLimit, 32*1024)))
	}

	return &UploadService{
		url:        opts.URL,
		fieldName:  opts.FieldName,
		httpClient: defaultClient(opts.HTTPClient),
		limiter:    limiter,
		logger:     defaultLogger(opts.Logger, "upload"),
	}
}

// Upload sends file as a multipart POST and returns the task handle from the response.
//
// onProgress (optional) is called each time the transport reads more of the body, possibly from another goroutine.
// It is never called after Upload returns.
func (u *UploadService) Upload(ctx context.Context, file models.DroppedFile, onProgress func(models.UploadProgress)) (models.TaskHandle, error) {
	body, contentType, err := u.encode(file)
	if err != nil {
		return "", err
	}

	pr := &progressReader{
		ctx:        ctx,
		r:          bytes.NewReader(body),
		total:      int64(len(body)),
		limiter:    u.limiter,
		onProgress: onProgress,
	}
	defer pr.stop()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, pr)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.ContentLength = pr.total
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	u.logger.Debug("uploading file", "name", file.Name, "size", file.Size, "body", pr.total)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		u.logger.Warn("upload request failed", "err", err)
		return "", fmt.Errorf("%w: %w", shared.ErrUploadRejected, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		u.logger.Warn("upload rejected", "status", resp.StatusCode)
		return "", fmt.Errorf("%w: status %d", shared.ErrUploadRejected, resp.StatusCode)
	}
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %w", shared.ErrUploadRejected, err)
	}

	handle, err := parseTaskID(data)
	if err != nil {
		u.logger.Warn("upload response has no task id", "err", err)
		return "", err
	}

	u.logger.Info("upload accepted", "name", file.Name, "task_id", handle)
	return handle, nil
}

// encode builds the multipart body in memory so its total length is known before sending.
func (u *UploadService) encode(file models.DroppedFile) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(u.fieldName), quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// parseTaskID extracts a usable task_id from a JSON response body.
//
// Strings must be non-empty; numbers are accepted and formatted without exponent.
// Booleans, objects and arrays have no usable query-string form and count as missing.
func parseTaskID(data []byte) (models.TaskHandle, error) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("%w: invalid response body: %w", shared.ErrNoTaskID, err)
	}

	switch v := payload["task_id"].(type) {
	case string:
		if v != "" {
			return models.TaskHandle(v), nil
		}
	case float64:
		if v != 0 {
			return models.TaskHandle(strconv.FormatFloat(v, 'f', -1, 64)), nil
		}
	}

	return "", shared.ErrNoTaskID
}

// progressReader counts body bytes as the transport reads them.
type progressReader struct {
	ctx        context.Context
	r          *bytes.Reader
	total      int64
	limiter    *rate.Limiter
	onProgress func(models.UploadProgress)

	mu      sync.Mutex
	loaded  int64
	stopped bool
}

func (p *progressReader) Read(b []byte) (int, error) {
	if p.limiter != nil && len(b) > 0 && p.r.Len() > 0 {
		b = b[:min(len(b), p.limiter.Burst(), p.r.Len())]
		if err := p.limiter.WaitN(p.ctx, len(b)); err != nil {
			return 0, err
		}
	}

	n, err := p.r.Read(b)
	if n > 0 {
		p.report(int64(n))
	}
	return n, err
}

func (p *progressReader) report(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.loaded += n
	if p.stopped || p.onProgress == nil {
		return
	}
	p.onProgress(models.UploadProgress{Loaded: p.loaded, Total: p.total})
}

func (p *progressReader) stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
}
