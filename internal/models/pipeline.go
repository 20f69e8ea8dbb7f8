package models

import "fmt"

// DroppedFile is the payload captured from a drop gesture.
type DroppedFile struct {
	Name        string // Base name of the file
	Size        int64  // Size in bytes
	ContentType string // Detected MIME type
	Data        []byte // Raw file content
}

// UploadProgress reports how much of the request body has been sent.
type UploadProgress struct {
	Loaded int64
	Total  int64
}

// Percent returns loaded/total as a whole percentage rounded to the nearest integer and clamped to [0,100].
//
// An unknown total (<= 0) reports 0.
func (p UploadProgress) Percent() int {
	if p.Total <= 0 || p.Loaded <= 0 {
		return 0
	}
	if p.Loaded >= p.Total {
		return 100
	}
	return int((p.Loaded*200 + p.Total) / (p.Total * 2))
}

// TaskHandle is the opaque task identifier returned by the upload endpoint.
type TaskHandle string

func (h TaskHandle) String() string { return string(h) }

// LogLine is one message pushed over the log stream.
type LogLine struct {
	TaskID TaskHandle
	Seq    int    // 1-based position within the stream
	Text   string // Payload, verbatim
}

// SessionViewState enumerates the display states of the drop zone.
type SessionViewState int

const (
	Idle SessionViewState = iota
	Dragging
	UploadPending
	Streaming
	StreamEnded
)

func (s SessionViewState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case UploadPending:
		return "uploaded_pending"
	case Streaming:
		return "streaming"
	case StreamEnded:
		return "streaming_ended"
	default:
		return fmt.Sprintf("SessionViewState(%d)", int(s))
	}
}
