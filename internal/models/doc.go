// Package models defines the data carried through the dropzone pipeline and the persistence interfaces for upload history.
//
// The package contains two categories of types:
//
// 1. Pipeline values: short-lived data passed between the drop target, the upload transport and the log stream client
//   - [DroppedFile] : The payload captured at drop time, owned by the upload transport once handed off
//   - [UploadProgress] : A loaded/total byte pair; each value supersedes the last
//   - [TaskHandle] : The opaque identifier joining an upload to its log stream
//   - [LogLine] : A single line of text pushed by the server
//   - [SessionViewState] : The display state of the drop zone
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Session] : One pipeline run (file metadata, task id, outcome), recorded when history is enabled
//
// Persistent entities implement [Record] (id, timestamps, validation) and are stored through a [Repository].
package models
