// Package tasks runs the dropzone pipeline: drop → upload with progress → live log stream.
//
// # Pipeline
//
// [Pipeline.Drop] takes the paths of a drop gesture, keeps the first regular file and hands it to [Pipeline.Run].
// A drop without files emits the [Drop] event and stops there; it is not an error.
//
// [Pipeline.Run] uploads the file through an [Uploader]. On success the returned task handle is passed to a
// [LogStreamer], whose lines are forwarded until the stream closes. Every failure ends the run; nothing is retried.
//
// # Events
//
// All stages report through a single channel of [Event] values, the explicit union of everything the view reacts to:
// [DragOver], [DragLeave], [Drop], [UploadProgress], [UploadComplete], [UploadFailed], [LogLine] and [StreamClosed].
// Sends block until the receiver takes the event or the context ends, so log lines are never dropped or reordered.
// Upload progress is the exception: the uploader never waits for the receiver, and a receiver that falls behind
// only sees the most recent value.
// The caller owns the channel and closes it after Run returns.
//
// # Stream Termination
//
// The log stream has no end-of-log message. A finished task and a broken connection both produce one [StreamClosed]
// event; its Err is informational only.
//
// # Session History
//
// The optional [SessionRecorder] records each run (file, task id, outcome, line count).
// Recorder errors are logged and otherwise ignored so history never disturbs a run.
package tasks
