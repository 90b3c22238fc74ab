package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/projectshelf/internal/client/client"
	"github.com/dmitrijs2005/projectshelf/internal/client/config"
	"github.com/dmitrijs2005/projectshelf/internal/client/gate"
	"github.com/dmitrijs2005/projectshelf/internal/client/models"
	"github.com/dmitrijs2005/projectshelf/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/projectshelf/internal/client/session"
	"github.com/dmitrijs2005/projectshelf/internal/client/web"
	"github.com/dmitrijs2005/projectshelf/internal/filex"
	"github.com/dmitrijs2005/projectshelf/internal/logging"
)

// API is the auth server as the CLI uses it. *client.GRPCClient satisfies it.
type API interface {
	session.Backend
	RestoreTokens(ctx context.Context) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetProfile(ctx context.Context) (*models.Identity, error)
	AvatarUploadURL(ctx context.Context, contentType string) (string, string, error)
	Ping(ctx context.Context) error
	Close() error
}

// LocalState is the on-disk key/value table behind the session slot and the
// stored tokens. *metadata.SQLiteRepository satisfies it.
type LocalState interface {
	session.Slot
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    API
	store  *session.Store
	local  LocalState
	gate   *gate.Gate
	web    *web.Server
	reader *bufio.Reader
	out    io.Writer

	stopObserving func()
}

// NewApp opens the local state database, connects the gRPC client and wires
// the session store, access gate and web preview around them.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	path, err := filex.EnsureParentDir(c.StatePath)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, path)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", path, "error", err)
		return nil, err
	}

	slot := metadata.NewSQLiteRepository(db)

	api, err := client.NewGRPCClient(c.ServerEndpointAddr, slot, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := api.RestoreTokens(ctx); err != nil {
		logger.Warn(ctx, "discarding stored tokens", "error", err)
	}

	a, err := newApp(c, logger, api, slot)
	if err != nil {
		_ = api.Close()
		_ = db.Close()
		return nil, err
	}
	a.db = db
	return a, nil
}

func newApp(c *config.Config, logger logging.Logger, api API, slot LocalState) (*App, error) {
	store := session.NewStore(api, slot, logger)
	g := gate.New(c.LoginRoute, logger)

	srv, err := web.New(store, g, logger)
	if err != nil {
		return nil, fmt.Errorf("web preview: %w", err)
	}

	return &App{
		config:        c,
		logger:        logger.With("module", "cli"),
		api:           api,
		store:         store,
		local:         slot,
		gate:          g,
		web:           srv,
		reader:        bufio.NewReader(os.Stdin),
		out:           os.Stdout,
		stopObserving: store.Subscribe(g.Observe),
	}, nil
}

// Run restores the session and runs the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)

	a.store.Initialize(ctx)

	printlnFn("Welcome to ProjectShelf (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close stops the web preview and releases the connection and database.
func (a *App) Close(ctx context.Context) {
	if a.stopObserving != nil {
		a.stopObserving()
	}
	if err := a.web.Shutdown(ctx); err != nil {
		a.logger.Warn(ctx, "web preview shutdown", "error", err)
	}
	if err := a.api.Close(); err != nil {
		a.logger.Warn(ctx, "closing connection", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(ctx, "closing database", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.store.State().SignedIn()
}

func (a *App) getStatus() string {
	st := a.store.State()
	if st.Identity == nil {
		return "(signed out)"
	}
	return fmt.Sprintf("(%s)", st.Identity.Username)
}

// protected runs next when the gate grants access. A signed-out user is sent
// to the command behind the gate's redirect target instead.
func (a *App) protected(ctx context.Context, next func(ctx context.Context) error) error {
	return a.gate.Guard(ctx, a.store, gate.Handlers{
		Wait: func(ctx context.Context) error {
			printlnFn("Checking your session, try again in a moment.")
			return nil
		},
		Redirect: func(ctx context.Context, target string) error {
			printlnFn("Please sign in first.")
			return a.route(ctx, target)
		},
	}, next)
}

func (a *App) route(ctx context.Context, target string) error {
	switch target {
	case "/login":
		return a.Login(ctx)
	case "/signup":
		return a.Signup(ctx)
	default:
		printlnFn("Sign in at", target)
		return nil
	}
}
