// Package routes names the client screens and decides where a navigation
// actually lands given the sign-in state.
package routes

type Route string

const (
	Home    Route = "/"
	Login   Route = "/login"
	Signup  Route = "/signup"
	Profile Route = "/profile"
)

// Protected reports whether r needs a session.
func (r Route) Protected() bool {
	return r == Home || r == Profile
}

// Guard returns the route to show when navigating to r. Protected routes go
// to Login when signed out, and Login and Signup go Home when signed in.
// Unknown routes land on Home, or Login when signed out.
func Guard(r Route, signedIn bool) Route {
	switch r {
	case Home, Profile:
		if !signedIn {
			return Login
		}
		return r
	case Login, Signup:
		if signedIn {
			return Home
		}
		return r
	default:
		if !signedIn {
			return Login
		}
		return Home
	}
}
