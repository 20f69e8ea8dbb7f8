// Package services implements the two HTTP collaborators of the dropzone pipeline.
//
// # Upload Transport
//
// [UploadService] packages a [models.DroppedFile] as a multipart/form-data body and POSTs it to the upload endpoint.
// While the transport reads the body, a counting reader reports loaded/total byte pairs through a progress callback.
// An optional [rate.Limiter] caps the upload bandwidth.
//
// Only a 200 response counts as success. Its JSON body must carry a non-empty task_id.
//
// # Log Stream Client
//
// [LogStreamService] opens a server-sent events connection to the logs endpoint, scoped by a task_id query parameter,
// and hands every message event to a callback in arrival order.
// The stream has no end-of-log message: however the connection ends, [LogStreamService.Stream] returns an error wrapping [shared.ErrStreamClosed].
// No reconnection is attempted.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrUploadRejected] : non-200 status or transport failure
//   - [shared.ErrNoTaskID] : 200 response without a usable task_id
//   - [shared.ErrStreamClosed] : the log stream ended, for any reason
package services
