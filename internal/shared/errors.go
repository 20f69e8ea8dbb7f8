package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Drop target errors
	ErrNoFiles    = fmt.Errorf("drop contained no files")
	ErrUnreadable = fmt.Errorf("dropped file could not be read")

	// Upload errors
	ErrUploadRejected     = fmt.Errorf("upload rejected")
	ErrNoTaskID           = fmt.Errorf("no task ID received")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Log stream errors
	ErrStreamClosed = fmt.Errorf("log stream closed")

	// History errors
	ErrHistoryDisabled = fmt.Errorf("history is disabled")
	ErrSessionNotFound = fmt.Errorf("session not found")

	// Command line errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)

// Transcript messages for pipeline failures.
const (
	MsgNoTaskID      = "Error: No task ID received."
	MsgUploadFailure = "Error uploading file."
)
