package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/cloudvault/internal/client/models"
)

const googleProviderID = "google.com"

// idTokenClaims is the subset of provider ID token claims the client reads.
type idTokenClaims struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	UserID   string `json:"user_id"`
	AuthTime int64  `json:"auth_time"`
	Firebase struct {
		SignInProvider string `json:"sign_in_provider"`
	} `json:"firebase"`
	jwt.RegisteredClaims
}

// parseIDToken decodes the claims without verifying the signature. The token
// is only forwarded to the backend, which does the verification.
func parseIDToken(token string) (*idTokenClaims, error) {
	var c idTokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return nil, fmt.Errorf("parse id token: %w", err)
	}
	return &c, nil
}

func sessionFromTokens(idToken, refreshToken string) (*models.Session, error) {
	c, err := parseIDToken(idToken)
	if err != nil {
		return nil, err
	}
	uid := c.UserID
	if uid == "" {
		uid = c.Subject
	}
	return &models.Session{
		Email:          c.Email,
		DisplayName:    c.Name,
		AvatarURL:      c.Picture,
		IsGoogleLinked: c.Firebase.SignInProvider == googleProviderID,
		UserID:         uid,
		IDToken:        idToken,
		RefreshToken:   refreshToken,
	}, nil
}

// tokenExpired reports whether the ID token is past its exp claim. Tokens that
// cannot be parsed count as expired.
func tokenExpired(idToken string, now time.Time) bool {
	c, err := parseIDToken(idToken)
	if err != nil {
		return true
	}
	exp, err := c.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
