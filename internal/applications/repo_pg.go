package applications

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, user_id, company, role, status, applied_date, interview_at,
       meeting_link, remote_event_id, remote_meeting_link, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, app Application) error {
	const query = `
INSERT INTO applications (
    id,
    user_id,
    company,
    role,
    status,
    applied_date,
    interview_at,
    meeting_link,
    remote_event_id,
    remote_meeting_link,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.DB.ExecContext(ctx, query,
		app.ID,
		app.UserID,
		app.Company,
		nullableString(app.Role),
		string(app.Status),
		app.AppliedDate,
		nullableTime(app),
		nullableString(app.MeetingLink),
		nullableString(app.RemoteEventID),
		nullableString(app.RemoteMeetingLink),
		app.CreatedAt,
		app.UpdatedAt,
	)
	return err
}

func (r *PGRepo) Update(ctx context.Context, app Application) error {
	const query = `
UPDATE applications SET
    company = $3,
    role = $4,
    status = $5,
    applied_date = $6,
    interview_at = $7,
    meeting_link = $8,
    remote_event_id = $9,
    remote_meeting_link = $10,
    updated_at = $11
WHERE id = $1 AND user_id = $2`

	res, err := r.DB.ExecContext(ctx, query,
		app.ID,
		app.UserID,
		app.Company,
		nullableString(app.Role),
		string(app.Status),
		app.AppliedDate,
		nullableTime(app),
		nullableString(app.MeetingLink),
		nullableString(app.RemoteEventID),
		nullableString(app.RemoteMeetingLink),
		app.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (Application, error) {
	query := `
SELECT ` + selectColumns + `
FROM applications
WHERE id = $1 AND user_id = $2
LIMIT 1`
	app, err := scanApplication(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, ErrNotFound
		}
		return Application{}, err
	}
	return app, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Application, error) {
	var b strings.Builder
	b.WriteString("\nSELECT " + selectColumns + "\nFROM applications\nWHERE user_id = $1")
	args := []any{userID}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		b.WriteString(" AND status = $2")
	}
	b.WriteString("\nORDER BY created_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		b.WriteString(placeholder(" LIMIT $", len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		b.WriteString(placeholder(" OFFSET $", len(args)))
	}

	rows, err := r.DB.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := make([]Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM applications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ClaimGuest reassigns applications owned by a guest user to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE applications SET user_id = $1, updated_at = now() WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (Application, error) {
	var app Application
	var status string
	var role sql.NullString
	var interviewAt sql.NullTime
	var meetingLink sql.NullString
	var remoteEventID sql.NullString
	var remoteMeetingLink sql.NullString
	err := row.Scan(
		&app.ID,
		&app.UserID,
		&app.Company,
		&role,
		&status,
		&app.AppliedDate,
		&interviewAt,
		&meetingLink,
		&remoteEventID,
		&remoteMeetingLink,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return Application{}, err
	}
	app.Status = Status(status)
	app.Role = role.String
	if interviewAt.Valid {
		at := interviewAt.Time.UTC()
		app.InterviewAt = &at
	}
	app.MeetingLink = meetingLink.String
	app.RemoteEventID = remoteEventID.String
	app.RemoteMeetingLink = remoteMeetingLink.String
	return app, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func placeholder(prefix string, n int) string {
	return prefix + strconv.Itoa(n)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(app Application) any {
	if app.InterviewAt == nil {
		return nil
	}
	return app.InterviewAt.UTC()
}
