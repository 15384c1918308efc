package exports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateStoresOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	job := ExportJob{
		ID:        "job-1",
		BookID:    "book-1",
		UserID:    "user-1",
		Format:    FormatEPUB,
		Status:    StatusProcessing,
		Settings:  map[string]any{"font": "serif"},
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO export_jobs").
		WithArgs(
			job.ID,
			job.BookID,
			job.UserID,
			job.Format,
			job.Status,
			sqlmock.AnyArg(), // settings json
			"",
			"",
			job.CreatedAt,
			sqlmock.AnyArg(), // completed_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoMarkCompleteOnTerminalJob(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()

	// No processing row matched; the follow-up read finds a failed job.
	mock.ExpectExec("UPDATE export_jobs").
		WithArgs(StatusComplete, "url", now, "job-1", StatusProcessing).
		WillReturnResult(sqlmock.NewResult(0, 0))
	rows := sqlmock.NewRows([]string{
		"id", "book_id", "user_id", "format", "status", "settings",
		"file_url", "error_message", "created_at", "completed_at",
	}).AddRow("job-1", "book-1", "user-1", FormatEPUB, StatusFailed, []byte(`{}`), nil, "boom", now, now)
	mock.ExpectQuery("FROM export_jobs").WithArgs("job-1").WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	if err := repo.MarkComplete(context.Background(), "job-1", "url", now); !errors.Is(err, ErrTerminal) {
		t.Fatalf("expected ErrTerminal, got %v", err)
	}
}

func TestPGRepoMarkFailedMissingJob(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE export_jobs").
		WithArgs(StatusFailed, "boom", now, "missing", StatusProcessing).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM export_jobs").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := &PGRepo{DB: db}
	if err := repo.MarkFailed(context.Background(), "missing", "boom", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoGetByIDScansNullables(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "book_id", "user_id", "format", "status", "settings",
		"file_url", "error_message", "created_at", "completed_at",
	}).AddRow("job-1", "book-1", "user-1", FormatPDF, StatusComplete,
		[]byte(`{"font":"serif"}`), "https://files.example.com/a.pdf", nil, now, now)
	mock.ExpectQuery("FROM export_jobs").WithArgs("job-1").WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	job, err := repo.GetByID(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job.UserID != "user-1" || job.FileURL == "" {
		t.Fatalf("job = %+v", job)
	}
	if job.Settings["font"] != "serif" {
		t.Fatalf("Settings = %+v", job.Settings)
	}
	if job.CompletedAt == nil {
		t.Fatalf("CompletedAt not scanned")
	}
}
