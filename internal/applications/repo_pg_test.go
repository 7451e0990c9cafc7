package applications

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoUpdatePersistsRemoteFields(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	app := Application{
		ID:                "app-1",
		UserID:            "google:1",
		Company:           "Acme",
		Status:            StatusInterview,
		AppliedDate:       at.Add(-48 * time.Hour),
		InterviewAt:       &at,
		MeetingLink:       "https://meet.google.com/abc",
		RemoteEventID:     "evt-1",
		RemoteMeetingLink: "https://meet.google.com/abc",
		UpdatedAt:         at,
	}

	mock.ExpectExec("UPDATE applications SET").
		WithArgs(
			"app-1",
			"google:1",
			"Acme",
			nil, // role
			"Interview",
			app.AppliedDate,
			at,
			"https://meet.google.com/abc",
			"evt-1",
			"https://meet.google.com/abc",
			at,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), app))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoUpdateOtherUsersRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("UPDATE applications SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), Application{ID: "app-1", UserID: "google:2", Company: "Acme", Status: StatusApplied})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPGRepoListByUserWithFilter(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "company", "role", "status", "applied_date", "interview_at",
		"meeting_link", "remote_event_id", "remote_meeting_link", "created_at", "updated_at",
	}).AddRow("app-1", "google:1", "Acme", "SWE", "Interview", created, nil, nil, "evt-1", nil, created, created)

	mock.ExpectQuery(`FROM applications\s+WHERE user_id = \$1 AND status = \$2\s+ORDER BY created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("google:1", "Interview", 10, 5).
		WillReturnRows(rows)

	apps, err := repo.ListByUser(context.Background(), "google:1", ListFilter{Status: StatusInterview, Limit: 10, Offset: 5})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Nil(t, apps[0].InterviewAt)
	assert.Equal(t, "evt-1", apps[0].RemoteEventID)
	assert.Equal(t, StatusInterview, apps[0].Status)
}

func TestPGRepoClaimGuest(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("UPDATE applications SET user_id = \\$1").
		WithArgs("google:1", "guest:abc").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.ClaimGuest(context.Background(), "guest:abc", "google:1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
