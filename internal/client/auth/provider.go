// Package auth wraps the external identity provider. It owns the current
// Session, persists it between runs and notifies subscribers on every change.
package auth

import (
	"context"

	"github.com/dmitrijs2005/cloudvault/internal/client/models"
)

// Provider is the identity provider contract. Every successful call returns a
// complete Session including fresh tokens.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, displayName, email, password string) (*models.Session, error)
	// SignInWithGoogle exchanges a Google ID token for a provider session.
	SignInWithGoogle(ctx context.Context, googleIDToken string) (*models.Session, error)
	// Reauthenticate proves the user still holds the credentials of s. secret
	// is a Google ID token for Google-linked accounts and a password otherwise.
	Reauthenticate(ctx context.Context, s *models.Session, secret string) (*models.Session, error)
	// Refresh trades the refresh token of s for a new ID token.
	Refresh(ctx context.Context, s *models.Session) (*models.Session, error)
	DeleteAccount(ctx context.Context, idToken string) error
}
