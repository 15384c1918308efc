package chapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateDefaultsStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	ch := Chapter{
		ID:              "ch-1",
		BookID:          "book-1",
		OrderIndex:      0,
		Title:           "Starter Care",
		Summary:         "Feeding and storage.",
		TargetWordCount: 2000,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	mock.ExpectExec("INSERT INTO chapters").
		WithArgs(
			ch.ID,
			ch.BookID,
			ch.OrderIndex,
			ch.Title,
			ch.Summary,
			ch.TargetWordCount,
			"",
			0,
			StatusOutline, // empty status defaults to outline
			ch.CreatedAt,
			ch.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Create(context.Background(), ch); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByBookOrdersByIndex(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "book_id", "order_index", "title", "summary", "target_word_count",
		"content", "word_count", "status", "created_at", "updated_at",
	}).
		AddRow("ch-1", "book-1", 0, "Starter Care", "", 2000, "", 0, StatusOutline, now, now).
		AddRow("ch-2", "book-1", 1, "Mixing", "", 2500, "", 0, StatusOutline, now, now)
	mock.ExpectQuery("ORDER BY order_index ASC").WithArgs("book-1").WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	out, err := repo.ListByBook(context.Background(), "book-1")
	if err != nil {
		t.Fatalf("ListByBook: %v", err)
	}
	if len(out) != 2 || out[0].OrderIndex != 0 || out[1].OrderIndex != 1 {
		t.Fatalf("chapters = %+v", out)
	}
}

func TestPGRepoUpdateContentMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE chapters").
		WithArgs("content", 1, StatusDraft, now, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGRepo{DB: db}
	err = repo.UpdateContent(context.Background(), "missing", "content", 1, StatusDraft, now)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
