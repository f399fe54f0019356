package models

import (
	"fmt"
	"time"
)

// Session is the authenticated identity. Tokens are kept so the client can act
// on behalf of the user; they are never printed.
type Session struct {
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	AvatarURL      string    `json:"avatar_url"`
	IsGoogleLinked bool      `json:"is_google_linked"`
	RegisteredAt   time.Time `json:"registered_at"`

	UserID       string `json:"user_id"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
}

// Name returns the display name, falling back to the email.
func (s *Session) Name() string {
	if s == nil {
		return ""
	}
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Email
}

// Provider returns a human readable sign-in provider.
func (s *Session) Provider() string {
	if s != nil && s.IsGoogleLinked {
		return "google"
	}
	return "password"
}

func (s *Session) String() string {
	if s == nil {
		return "<signed out>"
	}
	return fmt.Sprintf("%s <%s>", s.Name(), s.Email)
}
