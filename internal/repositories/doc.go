// Package repositories implements SQLite persistence for upload history.
//
// [SessionRepository] implements models.Repository[*models.Session] with CRUD operations and atomic sequence
// generation for human-readable ordering (session #42). Sessions are hard-deleted; there is nothing to restore.
//
// [SessionRecorder] adapts the repository to the pipeline's recorder hook so each drop is written as it progresses:
// uploading, then streaming or rejected/malformed, then ended with its line count.
//
// [NextSequence] numbers rows from the single-row counter tables created by the history migrations.
package repositories
