package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/dropzone/internal/models"
	"github.com/desertthunder/dropzone/internal/shared"
	"github.com/desertthunder/dropzone/internal/tasks"
)

var _ tasks.SessionRecorder = (*SessionRecorder)(nil)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func testFile(name string) models.DroppedFile {
	return models.DroppedFile{Name: name, Size: 42, ContentType: "text/plain"}
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "sessions")
		if err != nil {
			t.Fatalf("NextSequence() error = %v", err)
		}
		if got != want {
			t.Errorf("NextSequence() = %d, want %d", got, want)
		}
	}

	for _, table := range []string{"missing", "sessions; DROP TABLE sessions"} {
		if _, err := NextSequence(db, table); err == nil {
			t.Errorf("expected error for %q", table)
		}
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='sessions'").Scan(&count); err != nil || count != 1 {
		t.Errorf("sessions table should be untouched, count=%d err=%v", count, err)
	}

	t.Run("counter row missing", func(t *testing.T) {
		db := setupTestDB(t)
		if _, err := db.Exec("DELETE FROM sessions_sequence"); err != nil {
			t.Fatalf("failed to clear counter: %v", err)
		}
		if _, err := NextSequence(db, "sessions"); err == nil {
			t.Error("expected error when the counter row is gone")
		}
	})
}

func TestSessionRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		session := models.NewSession(0, testFile("a.txt"))

		if err := repo.Create(session); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
		if session.ID() == "" {
			t.Error("session ID should be set after creation")
		}
		if session.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", session.Sequence())
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		session := models.NewSession(0, testFile("a.txt"))
		if err := repo.Create(session); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		retrieved, err := repo.Get(session.ID())
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if retrieved.FileName() != "a.txt" || retrieved.FileSize() != 42 || retrieved.ContentType() != "text/plain" {
			t.Errorf("unexpected session: %+v", retrieved)
		}
		if retrieved.Status() != models.StatusUploading {
			t.Errorf("expected status uploading, got %s", retrieved.Status())
		}
		if retrieved.CreatedAt().IsZero() {
			t.Error("created_at should round-trip")
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		session := models.NewSession(0, testFile("a.txt"))
		if err := repo.Create(session); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		session.SetTaskID("t1")
		session.SetStatus(models.StatusEnded)
		session.SetLineCount(7)
		if err := repo.Update(session); err != nil {
			t.Fatalf("failed to update session: %v", err)
		}

		retrieved, err := repo.Get(session.ID())
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if retrieved.TaskID() != "t1" || retrieved.Status() != models.StatusEnded || retrieved.LineCount() != 7 {
			t.Errorf("update not persisted: task=%s status=%s lines=%d",
				retrieved.TaskID(), retrieved.Status(), retrieved.LineCount())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		session := models.NewSession(0, testFile("a.txt"))
		if err := repo.Create(session); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		if err := repo.Delete(session.ID()); err != nil {
			t.Fatalf("failed to delete session: %v", err)
		}
		if _, err := repo.Get(session.ID()); !errors.Is(err, shared.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		for _, name := range []string{"one.txt", "two.txt", "three.txt"} {
			if err := repo.Create(models.NewSession(0, testFile(name))); err != nil {
				t.Fatalf("failed to create session: %v", err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 sessions, got %d", len(all))
		}
		if all[0].FileName() != "three.txt" {
			t.Errorf("expected newest first, got %s", all[0].FileName())
		}

		all[1].SetStatus(models.StatusRejected)
		if err := repo.Update(all[1]); err != nil {
			t.Fatalf("failed to update session: %v", err)
		}

		rejected, err := repo.List(map[string]any{"status": models.StatusRejected})
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		if len(rejected) != 1 || rejected[0].FileName() != "two.txt" {
			t.Errorf("unexpected rejected sessions: %d", len(rejected))
		}

		limited, err := repo.List(map[string]any{"limit": 2})
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("expected 2 sessions with limit, got %d", len(limited))
		}
	})
}

func TestSessionRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			repo := NewSessionRepository(setupTestDB(t))
			if err := repo.Create(models.NewSession(0, testFile(""))); err == nil {
				t.Fatal("expected validation error for empty file name")
			}
		})

		t.Run("ClosedDatabase", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewSessionRepository(db)
			db.Close()
			if err := repo.Create(models.NewSession(0, testFile("a.txt"))); err == nil {
				t.Fatal("expected error on closed database")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewSessionRepository(setupTestDB(t))
			if _, err := repo.Get("nonexistent-id"); !errors.Is(err, shared.ErrSessionNotFound) {
				t.Fatalf("expected ErrSessionNotFound, got %v", err)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewSessionRepository(setupTestDB(t))
			session := models.NewSession(0, testFile("a.txt"))
			session.SetID("nonexistent-id")
			if err := repo.Update(session); !errors.Is(err, shared.ErrSessionNotFound) {
				t.Fatalf("expected ErrSessionNotFound, got %v", err)
			}
		})

		t.Run("InvalidStatus", func(t *testing.T) {
			repo := NewSessionRepository(setupTestDB(t))
			session := models.NewSession(0, testFile("a.txt"))
			if err := repo.Create(session); err != nil {
				t.Fatalf("failed to create session: %v", err)
			}
			session.SetStatus("bogus")
			if err := repo.Update(session); err == nil {
				t.Fatal("expected validation error for invalid status")
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewSessionRepository(setupTestDB(t))
			if err := repo.Delete("nonexistent-id"); !errors.Is(err, shared.ErrSessionNotFound) {
				t.Fatalf("expected ErrSessionNotFound, got %v", err)
			}
		})
	})
}

func TestSessionRecorder(t *testing.T) {
	t.Run("accepted then ended", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		recorder := NewSessionRecorder(repo)

		id, err := recorder.RecordStart(testFile("a.txt"))
		if err != nil {
			t.Fatalf("RecordStart() error = %v", err)
		}
		if err := recorder.RecordAccepted(id, "t1"); err != nil {
			t.Fatalf("RecordAccepted() error = %v", err)
		}

		session, _ := repo.Get(id)
		if session.Status() != models.StatusStreaming || session.TaskID() != "t1" {
			t.Errorf("after accept: status=%s task=%s", session.Status(), session.TaskID())
		}

		if err := recorder.RecordEnded(id, 12); err != nil {
			t.Fatalf("RecordEnded() error = %v", err)
		}
		session, _ = repo.Get(id)
		if session.Status() != models.StatusEnded || session.LineCount() != 12 {
			t.Errorf("after end: status=%s lines=%d", session.Status(), session.LineCount())
		}
	})

	t.Run("failure", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		recorder := NewSessionRecorder(repo)

		id, err := recorder.RecordStart(testFile("a.txt"))
		if err != nil {
			t.Fatalf("RecordStart() error = %v", err)
		}
		if err := recorder.RecordFailure(id, models.StatusMalformed, "no task id"); err != nil {
			t.Fatalf("RecordFailure() error = %v", err)
		}

		session, _ := repo.Get(id)
		if session.Status() != models.StatusMalformed || session.ErrorMessage() != "no task id" {
			t.Errorf("status=%s message=%q", session.Status(), session.ErrorMessage())
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		recorder := NewSessionRecorder(NewSessionRepository(setupTestDB(t)))
		if err := recorder.RecordEnded("missing", 1); !errors.Is(err, shared.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})
}
