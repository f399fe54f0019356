package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/cloudvault/internal/client/routes"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	Google(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Filter(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Page(ctx context.Context, args []string) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Refresh(ctx context.Context) error
	Upload(ctx context.Context) error
	Delete(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	Preview(ctx context.Context, args []string) error
	Profile(ctx context.Context) error
	Theme(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
}

// commandRoutes maps each command to the screen it belongs to. Commands
// missing here (help, theme, exit) are available everywhere.
var commandRoutes = map[string]routes.Route{
	"login":         routes.Login,
	"google":        routes.Login,
	"signup":        routes.Signup,
	"logout":        routes.Home,
	"list":          routes.Home,
	"ls":            routes.Home,
	"filter":        routes.Home,
	"search":        routes.Home,
	"page":          routes.Home,
	"next":          routes.Home,
	"prev":          routes.Home,
	"refresh":       routes.Home,
	"upload":        routes.Home,
	"delete":        routes.Home,
	"download":      routes.Home,
	"preview":       routes.Home,
	"profile":       routes.Profile,
	"deleteaccount": routes.Profile,
}

const (
	helpSignedOut = "Available commands: login, google, signup, theme, exit"
	helpSignedIn  = "Available commands: (ls) list, filter <all|image|pdf|document|text>, search [term], " +
		"page <n>, next, prev, refresh, upload, delete <id>, download <id>, preview <id>, " +
		"profile, theme, deleteaccount, logout, exit"
)

// runREPL starts a simple read-eval-print loop for the CloudVault CLI.
//
// It reads a line from in, parses the first token as the command, and
// dispatches to methods on 'a'. Every command passes through routes.Guard
// first: catalog and profile commands need a session, sign-in commands need
// none. The loop exits on EOF, when ctx is cancelled or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
//	Not logged in:
//	  - help             show available commands
//	  - login            sign in with email and password
//	  - google           sign in with a Google ID token
//	  - signup           create an account
//	  - theme            toggle dark / light output
//	  - exit | quit      leave the program
//
//	Logged in:
//	  - list | ls        show the current page
//	  - filter <type>    restrict to one file type
//	  - search [term]    search names and descriptions, empty clears
//	  - page <n>, next, prev, refresh
//	  - upload           select a file, describe it and send it
//	  - delete <id>      delete a file after confirmation
//	  - download <id>    save a file into the download directory
//	  - preview <id>     show or link a preview
//	  - profile          account details and storage usage
//	  - deleteaccount    remove the account and all files
//	  - logout           sign out
//
// Errors returned by command handlers are not printed here; handlers report
// their own failures. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("cv> %s > ", statusFn()))
		line, err := readLine(ctx, in)
		if ctx.Err() != nil {
			return
		}
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if r, ok := commandRoutes[cmd]; ok {
			if target := routes.Guard(r, a.isLoggedIn()); target != r {
				if r.Protected() {
					printlnFn("Please log in first")
				} else {
					printlnFn("Already signed in")
				}
				continue
			}
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "login":
			_ = a.Login(ctx)

		case "signup":
			_ = a.Signup(ctx)

		case "google":
			_ = a.Google(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "ls", "list":
			_ = a.List(ctx)

		case "filter":
			_ = a.Filter(ctx, args)

		case "search":
			_ = a.Search(ctx, args)

		case "page":
			_ = a.Page(ctx, args)

		case "next":
			_ = a.Next(ctx)

		case "prev":
			_ = a.Prev(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "upload":
			_ = a.Upload(ctx)

		case "delete":
			_ = a.Delete(ctx, args)

		case "download":
			_ = a.Download(ctx, args)

		case "preview":
			_ = a.Preview(ctx, args)

		case "profile":
			_ = a.Profile(ctx)

		case "theme":
			_ = a.Theme(ctx)

		case "deleteaccount":
			_ = a.DeleteAccount(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

type lineResult struct {
	line string
	err  error
}

// readLine reads one line from in and gives up when ctx is done. The
// abandoned read is left to the exiting process.
func readLine(ctx context.Context, in *bufio.Reader) (string, error) {
	ch := make(chan lineResult, 1)
	go func() {
		line, err := in.ReadString('\n')
		ch <- lineResult{line: line, err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}
