// Package common contains constants and small helpers shared by the CloudVault
// client packages.
package common

const (
	// RequestIDHeaderName carries a per-call id so client and backend logs can
	// be correlated.
	RequestIDHeaderName = "X-Request-ID"

	// AuthorizationHeaderName carries the provider ID token as a bearer token.
	AuthorizationHeaderName = "Authorization"

	// ThemePreferenceKey is the metadata key of the persisted dark-mode flag.
	ThemePreferenceKey = "isDarkModeTheme"

	// SessionKey is the metadata key of the persisted session.
	SessionKey = "session"
)
