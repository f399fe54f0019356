// Package cli provides the interactive CloudVault command-line client.
//
// It wires configuration, the local state database, the identity provider,
// the backend API client and an interactive REPL. Every command names the
// screen it belongs to and passes through routes.Guard, so catalog and
// profile commands need a session and sign-in commands need none.
//
// Key features:
//   - Login / Signup / Google sign-in / Logout
//   - List, filter, search and page through files
//   - Upload, delete (with confirmation), download and preview files
//   - Profile with storage usage, theme toggle, account deletion
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
