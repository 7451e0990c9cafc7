package users

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Upsert(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, full_name, given_name, family_name, picture_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  full_name = EXCLUDED.full_name,
  given_name = EXCLUDED.given_name,
  family_name = EXCLUDED.family_name,
  picture_url = EXCLUDED.picture_url,
  updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		nullableString(user.FullName),
		nullableString(user.GivenName),
		nullableString(user.FamilyName),
		nullableString(user.PictureURL),
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, email, full_name, given_name, family_name, picture_url,
       calendar_access_token, calendar_refresh_token, calendar_token_expiry,
       created_at, updated_at
FROM users
WHERE id = $1
LIMIT 1`
	var user User
	var fullName sql.NullString
	var givenName sql.NullString
	var familyName sql.NullString
	var pictureURL sql.NullString
	var accessToken sql.NullString
	var refreshToken sql.NullString
	var expiry sql.NullTime
	var updatedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.Email,
		&fullName,
		&givenName,
		&familyName,
		&pictureURL,
		&accessToken,
		&refreshToken,
		&expiry,
		&user.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.FullName = fullName.String
	user.GivenName = givenName.String
	user.FamilyName = familyName.String
	user.PictureURL = pictureURL.String
	user.CalendarAccessToken = accessToken.String
	user.CalendarRefreshToken = refreshToken.String
	if expiry.Valid {
		t := expiry.Time.UTC()
		user.CalendarTokenExpiry = &t
	}
	if updatedAt.Valid {
		user.UpdatedAt = updatedAt.Time
	} else {
		user.UpdatedAt = time.Now().UTC()
	}
	return user, nil
}

// UpdateCalendarTokens writes only the tokens that were issued.
func (r *PGRepo) UpdateCalendarTokens(ctx context.Context, userID string, tokens CalendarTokens) error {
	const query = `
UPDATE users SET
  calendar_access_token = COALESCE(NULLIF($2, ''), calendar_access_token),
  calendar_refresh_token = COALESCE(NULLIF($3, ''), calendar_refresh_token),
  calendar_token_expiry = COALESCE($4, calendar_token_expiry),
  updated_at = now()
WHERE id = $1`
	var expiry any
	if tokens.Expiry != nil {
		expiry = tokens.Expiry.UTC()
	}
	res, err := r.DB.ExecContext(ctx, query, userID, tokens.AccessToken, tokens.RefreshToken, expiry)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) ClearCalendarTokens(ctx context.Context, userID string) error {
	const query = `
UPDATE users SET
  calendar_access_token = NULL,
  calendar_refresh_token = NULL,
  calendar_token_expiry = NULL,
  updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
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

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
