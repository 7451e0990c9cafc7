package users

import "time"

type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	GivenName  string    `json:"givenName"`
	FamilyName string    `json:"familyName"`
	PictureURL string    `json:"pictureUrl"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Calendar tokens are never serialized.
	CalendarAccessToken  string     `json:"-"`
	CalendarRefreshToken string     `json:"-"`
	CalendarTokenExpiry  *time.Time `json:"-"`
}

// CalendarConnected reports whether both calendar tokens are stored.
func (u User) CalendarConnected() bool {
	return u.CalendarAccessToken != "" && u.CalendarRefreshToken != ""
}
