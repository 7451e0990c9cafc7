package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoUpdateCalendarTokensKeepsMissingRefresh(t *testing.T) {
	repo, mock := newMockRepo(t)
	expiry := time.Date(2025, time.March, 1, 11, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE users SET\s+calendar_access_token = COALESCE\(NULLIF\(\$2, ''\), calendar_access_token\)`).
		WithArgs("google:1", "new-access", "", expiry).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateCalendarTokens(context.Background(), "google:1", CalendarTokens{AccessToken: "new-access", Expiry: &expiry})
	if err != nil {
		t.Fatalf("UpdateCalendarTokens: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateCalendarTokensUnknownUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE users SET").
		WithArgs("google:missing", "a", "r", nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateCalendarTokens(context.Background(), "google:missing", CalendarTokens{AccessToken: "a", RefreshToken: "r"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoClearCalendarTokens(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`calendar_access_token = NULL`).
		WithArgs("google:1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.ClearCalendarTokens(context.Background(), "google:1"); err != nil {
		t.Fatalf("ClearCalendarTokens: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDScansCalendarTokens(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2025, time.March, 1, 11, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "email", "full_name", "given_name", "family_name", "picture_url",
		"calendar_access_token", "calendar_refresh_token", "calendar_token_expiry",
		"created_at", "updated_at",
	}).AddRow("google:1", "a@example.com", "Ada L", nil, nil, nil, "access", "refresh", expiry, created, created)
	mock.ExpectQuery("SELECT id, email").WithArgs("google:1").WillReturnRows(rows)

	user, err := repo.GetByID(context.Background(), "google:1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if user.FullName != "Ada L" || user.GivenName != "" {
		t.Fatalf("unexpected names: %+v", user)
	}
	if !user.CalendarConnected() {
		t.Fatalf("expected calendar connected")
	}
	if user.CalendarTokenExpiry == nil || !user.CalendarTokenExpiry.Equal(expiry) {
		t.Fatalf("unexpected expiry %v", user.CalendarTokenExpiry)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT id, email").WithArgs("google:missing").WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "google:missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
