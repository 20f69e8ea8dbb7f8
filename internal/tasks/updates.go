package tasks

import (
	"errors"
	"fmt"

	"github.com/desertthunder/dropzone/internal/models"
	"github.com/desertthunder/dropzone/internal/shared"
)

// Event is one notification from the pipeline (or the drop target) to the view.
type Event struct {
	Kind     EventKind
	Files    int                   // Drop: number of files in the payload
	File     *models.DroppedFile   // Drop: the file being uploaded, nil for an empty drop
	Progress models.UploadProgress // UploadProgress
	Handle   models.TaskHandle     // UploadComplete, LogLine, StreamClosed
	Line     models.LogLine        // LogLine
	Err      error                 // UploadFailed, StreamClosed
	Message  string                // Human-readable text for display
}

// EventKind enumerates pipeline events.
type EventKind int

const (
	DragOver EventKind = iota
	DragLeave
	Drop
	UploadProgress
	UploadComplete
	UploadFailed
	LogLine
	StreamClosed
)

func (k EventKind) String() string {
	switch k {
	case DragOver:
		return "drag_over"
	case DragLeave:
		return "drag_leave"
	case Drop:
		return "drop"
	case UploadProgress:
		return "upload_progress"
	case UploadComplete:
		return "upload_complete"
	case UploadFailed:
		return "upload_failed"
	case LogLine:
		return "log_line"
	case StreamClosed:
		return "stream_closed"
	default:
		return ""
	}
}

// FailureMessage maps an upload error to the text shown in the transcript.
func FailureMessage(err error) string {
	if errors.Is(err, shared.ErrNoTaskID) {
		return shared.MsgNoTaskID
	}
	return shared.MsgUploadFailure
}

// ProgressMessage formats the transcript text for an upload progress value.
func ProgressMessage(p models.UploadProgress) string {
	return fmt.Sprintf("Uploading: %d%%", p.Percent())
}

// DragOverEvent is sent when a drag enters the drop target.
func DragOverEvent() Event {
	return Event{Kind: DragOver, Message: "Drop a file to upload"}
}

// DragLeaveEvent is sent when a drag leaves the drop target.
func DragLeaveEvent() Event {
	return Event{Kind: DragLeave, Message: "Drop a file to upload"}
}

func dropUpdate(files int, file *models.DroppedFile) Event {
	msg := "Nothing to upload"
	if file != nil {
		msg = fmt.Sprintf("Dropped %s (%d bytes)", file.Name, file.Size)
	}
	return Event{Kind: Drop, Files: files, File: file, Message: msg}
}

func uploadProgressUpdate(p models.UploadProgress) Event {
	return Event{Kind: UploadProgress, Progress: p, Message: ProgressMessage(p)}
}

func uploadCompleteUpdate(h models.TaskHandle) Event {
	return Event{Kind: UploadComplete, Handle: h, Message: fmt.Sprintf("Task %s started", h)}
}

func uploadFailedUpdate(err error) Event {
	return Event{Kind: UploadFailed, Err: err, Message: FailureMessage(err)}
}

func logLineUpdate(line models.LogLine) Event {
	return Event{Kind: LogLine, Handle: line.TaskID, Line: line, Message: line.Text}
}

func streamClosedUpdate(h models.TaskHandle, lines int, err error) Event {
	return Event{
		Kind:    StreamClosed,
		Handle:  h,
		Err:     err,
		Message: fmt.Sprintf("Log stream for %s closed after %d lines", h, lines),
	}
}
