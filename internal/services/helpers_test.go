package services

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newHangingStream serves one message then holds the connection open until block is closed.
func newHangingStream(t *testing.T, block <-chan struct{}) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: first\n\n")
		w.(http.Flusher).Flush()
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	return server.URL
}
