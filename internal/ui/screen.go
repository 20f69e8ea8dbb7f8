package ui

import (
	"strings"

	"github.com/desertthunder/dropzone/internal/models"
	"github.com/desertthunder/dropzone/internal/tasks"
)

// Screen is the display state of the drop zone.
//
// It is mutated only through [Screen.Apply], which holds the full trigger/effect table for pipeline events.
// Flags are never cleared once set: a second drop reuses the active (and possibly expanded) terminal.
type Screen struct {
	State            models.SessionViewState
	MessageVisible   bool
	MessageDimmed    bool
	TerminalActive   bool
	TerminalExpanded bool
	Progress         models.UploadProgress
	Handle           models.TaskHandle
	Lines            int
	Err              error

	transcript strings.Builder
}

// NewScreen returns the idle screen: drop message shown at full opacity, terminal hidden.
func NewScreen() *Screen {
	return &Screen{State: models.Idle, MessageVisible: true}
}

// Transcript returns the text shown in the terminal area.
func (s *Screen) Transcript() string {
	return s.transcript.String()
}

func (s *Screen) setTranscript(text string) {
	s.transcript.Reset()
	s.transcript.WriteString(text)
}

// Apply updates the screen for one pipeline event.
func (s *Screen) Apply(ev tasks.Event) {
	switch ev.Kind {
	case tasks.DragOver:
		s.MessageDimmed = false
		if s.State == models.Idle {
			s.State = models.Dragging
		}
	case tasks.DragLeave:
		s.MessageDimmed = true
		if s.State == models.Dragging {
			s.State = models.Idle
		}
	case tasks.Drop:
		s.MessageVisible = false
		s.TerminalActive = true
		if ev.File != nil {
			s.State = models.UploadPending
			s.Progress = models.UploadProgress{Total: ev.File.Size}
			s.Handle = ""
			s.Lines = 0
			s.Err = nil
		} else if s.State == models.Dragging {
			s.State = models.Idle
		}
	case tasks.UploadProgress:
		s.State = models.UploadPending
		s.Progress = ev.Progress
		s.setTranscript(ev.Message)
	case tasks.UploadComplete:
		s.State = models.Streaming
		s.Handle = ev.Handle
	case tasks.UploadFailed:
		s.State = models.Idle
		s.Err = ev.Err
		s.setTranscript(ev.Message)
	case tasks.LogLine:
		s.Lines++
		s.transcript.WriteString(ev.Line.Text)
		s.transcript.WriteByte('\n')
	case tasks.StreamClosed:
		s.State = models.StreamEnded
		s.TerminalExpanded = true
	}
}
