package auth

import "errors"

var (
	ErrNotSignedIn        = errors.New("not signed in")
	ErrReauthFailed       = errors.New("re-authentication failed")
	ErrNotConfirmed       = errors.New("action not confirmed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already registered")
	ErrSessionExpired     = errors.New("session expired, sign in again")
)
