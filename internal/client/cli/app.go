package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/cloudvault/internal/client/auth"
	"github.com/dmitrijs2005/cloudvault/internal/client/catalog"
	"github.com/dmitrijs2005/cloudvault/internal/client/client"
	"github.com/dmitrijs2005/cloudvault/internal/client/config"
	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/client/preview"
	"github.com/dmitrijs2005/cloudvault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/cloudvault/internal/client/store"
	"github.com/dmitrijs2005/cloudvault/internal/client/upload"
	"github.com/dmitrijs2005/cloudvault/internal/logging"
)

type App struct {
	config   *config.Config
	db       *sql.DB
	logger   logging.Logger
	session  *auth.Manager
	store    *store.Store
	catalog  *catalog.Controller
	uploads  *upload.Flow
	previews *preview.Resolver

	reader *bufio.Reader
	out    io.Writer

	unsubscribe []func()
}

// deps are the outward-facing collaborators of an App. NewApp builds the real
// ones; tests pass fakes.
type deps struct {
	db       *sql.DB
	provider auth.Provider
	api      client.Client
	logger   logging.Logger
	in       io.Reader
	out      io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logger, err := logging.NewTextLogger(os.Stderr, c.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.StateDB)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.StateDB, "error", err)
		return nil, err
	}

	provider := auth.NewIdentityToolkit(c.AuthURL, c.AuthAPIKey,
		auth.WithTokenURL(c.TokenURL),
		auth.WithProviderHTTPClient(&http.Client{Timeout: c.RequestTimeout}),
		auth.WithProviderLogger(logger),
	)

	// the session manager is built after the API client, so the token source
	// resolves it lazily
	var session *auth.Manager
	api, err := client.NewHTTPClient(c.APIURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(logger),
		client.WithTokenSource(func() string {
			if session == nil {
				return ""
			}
			return session.Token()
		}),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a, err := assemble(ctx, c, deps{db: db, provider: provider, api: api, logger: logger, in: os.Stdin, out: os.Stdout})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	session = a.session
	return a, nil
}

func assemble(ctx context.Context, c *config.Config, d deps) (*App, error) {
	repo := metadata.NewSQLiteRepository(d.db)

	st := store.New(repo, d.logger)
	if err := st.LoadTheme(ctx); err != nil {
		d.logger.Warn(ctx, "theme preference not loaded", "error", err)
	}

	a := &App{
		config: c,
		db:     d.db,
		logger: d.logger.With("component", "cli"),
		store:  st,
		reader: bufio.NewReader(d.in),
		out:    d.out,
	}

	a.session = auth.NewManager(d.provider, repo, d.api, d.logger)
	a.catalog = catalog.NewController(d.api, a.session,
		catalog.WithStateSink(st),
		catalog.WithNotifier(catalog.NotifierFunc(a.notify)),
		catalog.WithLogger(d.logger),
		catalog.WithPageSize(c.PageSize),
	)
	a.uploads = upload.NewFlow(a.catalog)
	a.previews = preview.NewResolver(d.api,
		preview.WithViewerURL(c.ViewerURL),
		preview.WithTextLimit(c.TextPreviewLimit),
	)

	a.bindSession()
	return a, nil
}

// bindSession keeps the catalog and the store in step with the identity. A
// different user, or none, drops every page and in-flight response first.
func (a *App) bindSession() {
	var lastUser string
	unsub := a.session.Subscribe(func(s *models.Session) {
		user := ""
		if s != nil {
			user = s.UserID
		}
		if user != lastUser {
			a.catalog.Invalidate()
			a.uploads.Cancel()
			lastUser = user
		}
		if s == nil {
			a.store.Dispatch(context.Background(), store.SignedOut{})
			return
		}
		a.store.Dispatch(context.Background(), store.SessionChanged{Session: s})
	})
	a.unsubscribe = append(a.unsubscribe, unsub)
}

// Run restores the persisted session and serves the REPL until the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if err := a.session.Restore(ctx); err != nil {
		a.logger.Warn(ctx, "session restore failed", "error", err)
	}

	a.println(a.theme().Title.Render("Welcome to CloudVault CLI (type 'help' for commands)"))
	if a.isLoggedIn() {
		a.println(a.theme().Text.Render("Signed in as " + a.session.Current().String()))
		_ = a.List(ctx)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() {
	for _, unsub := range a.unsubscribe {
		unsub()
	}
	a.unsubscribe = nil
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(context.Background(), "closing state database", "error", err)
		}
		a.db = nil
	}
}

func (a *App) isLoggedIn() bool {
	return a.store.Get().SignedIn()
}

func (a *App) getStatus() string {
	st := a.store.Get()
	if st.Session == nil {
		return "(signed out)"
	}
	return fmt.Sprintf("(%s)", st.Session.Name())
}

func (a *App) theme() Theme {
	return NewTheme(a.store.Get().DarkMode)
}

func (a *App) notify(n catalog.Notification) {
	renderNotification(a.out, a.theme(), n)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) info(msg string) {
	a.notify(catalog.Notification{Level: catalog.LevelInfo, Message: msg})
}

func (a *App) success(msg string) {
	a.notify(catalog.Notification{Level: catalog.LevelSuccess, Message: msg})
}

func (a *App) fail(msg string) {
	a.notify(catalog.Notification{Level: catalog.LevelError, Message: msg})
}
