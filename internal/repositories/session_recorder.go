package repositories

import (
	"fmt"

	"github.com/desertthunder/dropzone/internal/models"
)

// SessionRecorder implements tasks.SessionRecorder using SessionRepository.
//
// Each method loads the session, changes one aspect of it and writes it back.
type SessionRecorder struct {
	repo *SessionRepository
}

// NewSessionRecorder creates a new SessionRecorder with the given repository
func NewSessionRecorder(repo *SessionRepository) *SessionRecorder {
	return &SessionRecorder{repo: repo}
}

// RecordStart stores a new uploading session for file and returns its id.
func (a *SessionRecorder) RecordStart(file models.DroppedFile) (string, error) {
	session := models.NewSession(0, file)
	if err := a.repo.Create(session); err != nil {
		return "", fmt.Errorf("failed to record session: %w", err)
	}
	return session.ID(), nil
}

// RecordAccepted marks the session as streaming the log of handle.
func (a *SessionRecorder) RecordAccepted(id string, handle models.TaskHandle) error {
	return a.update(id, func(s *models.Session) {
		s.SetTaskID(handle)
		s.SetStatus(models.StatusStreaming)
	})
}

// RecordFailure marks the session as failed with status and reason.
func (a *SessionRecorder) RecordFailure(id string, status models.SessionStatus, reason string) error {
	return a.update(id, func(s *models.Session) {
		s.SetStatus(status)
		s.SetErrorMessage(reason)
	})
}

// RecordEnded marks the session's stream as closed after lines log lines.
func (a *SessionRecorder) RecordEnded(id string, lines int) error {
	return a.update(id, func(s *models.Session) {
		s.SetStatus(models.StatusEnded)
		s.SetLineCount(lines)
	})
}

func (a *SessionRecorder) update(id string, fn func(*models.Session)) error {
	session, err := a.repo.Get(id)
	if err != nil {
		return err
	}
	fn(session)
	if err := a.repo.Update(session); err != nil {
		return fmt.Errorf("failed to record session %s: %w", id, err)
	}
	return nil
}
