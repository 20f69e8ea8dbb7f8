package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/dropzone/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPipelineEvent MsgKind = iota
	MsgRunFinished
)

type runEvent struct {
	run   int
	event tasks.Event
}

type runResult struct {
	run int
	err error
}

// pipelineEventMsg is the constructor for [MsgPipelineEvent]
func pipelineEventMsg(run int, ev tasks.Event) Msg {
	return Msg{kind: MsgPipelineEvent, data: runEvent{run: run, event: ev}}
}

// runFinishedMsg is the constructor for [MsgRunFinished]
func runFinishedMsg(run int, err error) Msg {
	return Msg{kind: MsgRunFinished, data: runResult{run: run, err: err}}
}
