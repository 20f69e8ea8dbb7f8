// package services defines the HTTP clients for the upload and log endpoints
package services

import (
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dropzone/internal/shared"
)

// Default endpoints, used when no URL is configured.
const (
	DefaultUploadURL = "http://127.0.0.1:5000/upload"
	DefaultLogsURL   = "http://127.0.0.1:5000/logs"
	DefaultFieldName = "file"
)

func defaultClient(c *http.Client) *http.Client {
	if c == nil {
		return http.DefaultClient
	}
	return c
}

func defaultLogger(l *log.Logger, component string) *log.Logger {
	if l == nil {
		l = shared.NewLogger(io.Discard)
	}
	return shared.WithLogger(l, "component", component)
}
