package models

import (
	"errors"
	"time"
)

// SessionStatus is the recorded outcome of one pipeline run.
type SessionStatus string

const (
	StatusUploading SessionStatus = "uploading"
	StatusStreaming SessionStatus = "streaming"
	StatusEnded     SessionStatus = "ended"
	StatusRejected  SessionStatus = "rejected"
	StatusMalformed SessionStatus = "malformed"
)

// Valid reports whether s is one of the known statuses.
func (s SessionStatus) Valid() bool {
	switch s {
	case StatusUploading, StatusStreaming, StatusEnded, StatusRejected, StatusMalformed:
		return true
	}
	return false
}

// Session records a single drop: the file that was uploaded, the task it produced and how it ended.
//
// Log lines are counted, never stored.
type Session struct {
	id          string
	sequence    int
	fileName    string
	fileSize    int64
	contentType string
	taskID      TaskHandle
	status      SessionStatus
	lineCount   int
	errMessage  string
	createdAt   time.Time
	updatedAt   time.Time
}

var _ Record = (*Session)(nil)

// NewSession creates a [Session] in the uploading state for the given file.
func NewSession(sequence int, file DroppedFile) *Session {
	now := time.Now()
	return &Session{
		sequence:    sequence,
		fileName:    file.Name,
		fileSize:    file.Size,
		contentType: file.ContentType,
		status:      StatusUploading,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (s *Session) ID() string                 { return s.id }
func (s *Session) Sequence() int              { return s.sequence }
func (s *Session) FileName() string           { return s.fileName }
func (s *Session) FileSize() int64            { return s.fileSize }
func (s *Session) ContentType() string        { return s.contentType }
func (s *Session) TaskID() TaskHandle         { return s.taskID }
func (s *Session) Status() SessionStatus      { return s.status }
func (s *Session) LineCount() int             { return s.lineCount }
func (s *Session) ErrorMessage() string       { return s.errMessage }
func (s *Session) CreatedAt() time.Time       { return s.createdAt }
func (s *Session) UpdatedAt() time.Time       { return s.updatedAt }
func (s *Session) SetID(id string)            { s.id = id }
func (s *Session) SetSequence(seq int)        { s.sequence = seq }
func (s *Session) SetTaskID(id TaskHandle)    { s.taskID = id }
func (s *Session) SetStatus(st SessionStatus) { s.status = st }
func (s *Session) SetLineCount(n int)         { s.lineCount = n }
func (s *Session) SetErrorMessage(m string)   { s.errMessage = m }
func (s *Session) SetCreatedAt(t time.Time)   { s.createdAt = t }
func (s *Session) SetUpdatedAt(t time.Time)   { s.updatedAt = t }

// Validate checks required fields.
func (s *Session) Validate() error {
	if s.fileName == "" {
		return errors.New("file name is required")
	}
	if s.fileSize < 0 {
		return errors.New("file size cannot be negative")
	}
	if !s.status.Valid() {
		return errors.New("invalid session status")
	}
	if s.lineCount < 0 {
		return errors.New("line count cannot be negative")
	}
	return nil
}
