package calendar

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Credential is a principal's Google Calendar token pair.
type Credential struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	// Expiry of AccessToken. Zero means unknown.
	Expiry time.Time
}

// HasTokens reports whether both tokens are present.
func (c Credential) HasTokens() bool {
	return strings.TrimSpace(c.AccessToken) != "" && strings.TrimSpace(c.RefreshToken) != ""
}

// token converts the credential for oauth2. An unknown expiry is treated as
// already expired so the first call refreshes and learns the real expiry.
func (c Credential) token() *oauth2.Token {
	expiry := c.Expiry
	if expiry.IsZero() {
		expiry = time.Now().Add(-time.Minute)
	}
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       expiry,
	}
}
