// Package store holds the process-wide client state: the mirrored session,
// the theme preference and the storage counters shown on every screen.
//
// State is only changed through Actions applied by Reduce, so every change
// replaces whole fields.
package store

import "github.com/dmitrijs2005/cloudvault/internal/client/models"

type State struct {
	Session    *models.Session
	DarkMode   bool
	Quota      models.QuotaState
	TotalFiles int
}

// SignedIn reports whether a session is present.
func (s State) SignedIn() bool { return s.Session != nil }

// Action is a state transition understood by Reduce.
type Action interface {
	action()
}

// SessionChanged mirrors the auth session. A nil Session is a sign-out.
type SessionChanged struct{ Session *models.Session }

// QuotaUpdated carries the counters of the latest successful catalog fetch.
type QuotaUpdated struct {
	Quota      models.QuotaState
	TotalFiles int
}

type ThemeToggled struct{}

type ThemeSet struct{ Dark bool }

type SignedOut struct{}

func (SessionChanged) action() {}
func (QuotaUpdated) action()   {}
func (ThemeToggled) action()   {}
func (ThemeSet) action()       {}
func (SignedOut) action()      {}

// Reduce returns the state after applying a. It does not modify s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SessionChanged:
		if a.Session == nil {
			return signedOut(s)
		}
		if s.Session == nil || s.Session.UserID != a.Session.UserID {
			// counters belong to the previous identity
			s.Quota = models.QuotaState{}
			s.TotalFiles = 0
		}
		sess := *a.Session
		s.Session = &sess
	case SignedOut:
		return signedOut(s)
	case QuotaUpdated:
		if s.Session == nil {
			return s
		}
		s.Quota = a.Quota
		s.TotalFiles = a.TotalFiles
	case ThemeToggled:
		s.DarkMode = !s.DarkMode
	case ThemeSet:
		s.DarkMode = a.Dark
	}
	return s
}

func signedOut(s State) State {
	return State{DarkMode: s.DarkMode}
}
