package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/dropzone/internal/models"
	"github.com/desertthunder/dropzone/internal/shared"
)

const sessionColumns = `
	id, sequence, file_name, file_size, content_type, task_id,
	status, line_count, error_message, created_at, updated_at
`

// SessionRepository implements models.Repository[*models.Session] for upload history.
type SessionRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Session] = (*SessionRepository)(nil)

// NewSessionRepository creates a new SessionRepository with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session into the database with generated ID and sequence
func (r *SessionRepository) Create(session *models.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "sessions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `INSERT INTO sessions (` + sessionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.Exec(query,
		id,
		sequence,
		session.FileName(),
		session.FileSize(),
		session.ContentType(),
		session.TaskID().String(),
		string(session.Status()),
		session.LineCount(),
		session.ErrorMessage(),
		session.CreatedAt(),
		session.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	session.SetID(id)
	session.SetSequence(sequence)
	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(id string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`
	session, err := scanSession(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	return session, err
}

// Update writes the mutable fields of session: task id, status, line count and error message.
func (r *SessionRepository) Update(session *models.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	session.SetUpdatedAt(now)

	query := `
		UPDATE sessions
		SET task_id = ?, status = ?, line_count = ?, error_message = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(query,
		session.TaskID().String(),
		string(session.Status()),
		session.LineCount(),
		session.ErrorMessage(),
		now,
		session.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return requireAffected(result, session.ID())
}

// Delete removes a session by ID
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return requireAffected(result, id)
}

// List retrieves sessions matching the given criteria, newest first.
//
// Supported criteria: "status" (string or [models.SessionStatus]), "task_id" (string) and "limit" (int > 0).
func (r *SessionRepository) List(criteria map[string]any) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE 1 = 1`
	args := []any{}

	switch status := criteria["status"].(type) {
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	case models.SessionStatus:
		if status != "" {
			query += " AND status = ?"
			args = append(args, string(status))
		}
	}

	if taskID, ok := criteria["task_id"].(string); ok && taskID != "" {
		query += " AND task_id = ?"
		args = append(args, taskID)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sessions, nil
}

// rowScanner is satisfied by both [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var (
		id           string
		sequence     int
		fileName     string
		fileSize     int64
		contentType  string
		taskID       string
		status       string
		lineCount    int
		errorMessage string
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := row.Scan(
		&id, &sequence, &fileName, &fileSize, &contentType, &taskID,
		&status, &lineCount, &errorMessage, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	session := models.NewSession(sequence, models.DroppedFile{Name: fileName, Size: fileSize, ContentType: contentType})
	session.SetID(id)
	session.SetTaskID(models.TaskHandle(taskID))
	session.SetStatus(models.SessionStatus(status))
	session.SetLineCount(lineCount)
	session.SetErrorMessage(errorMessage)
	session.SetCreatedAt(createdAt)
	session.SetUpdatedAt(updatedAt)

	return session, nil
}

func requireAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	return nil
}
