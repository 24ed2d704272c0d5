// Package cli is the uniassist command line: login, profile, chat, files,
// schedule and tasks against the assistant backend.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/uniassist/authclient"
	"github.com/jrsteele09/uniassist/chat"
	"github.com/jrsteele09/uniassist/files"
	"github.com/jrsteele09/uniassist/internal/config"
	"github.com/jrsteele09/uniassist/internal/logging"
	"github.com/jrsteele09/uniassist/kv"
	"github.com/jrsteele09/uniassist/schedule"
	"github.com/jrsteele09/uniassist/sessions"
	"github.com/jrsteele09/uniassist/users"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	backendURL string
	store      string
	storePath  string
	logLevel   string
	debug      bool
}

// app holds everything a command needs. It is built once per invocation in
// the root's PersistentPreRunE.
type app struct {
	cfg config.Config
	now func() time.Time

	log      zerolog.Logger
	store    kv.Store
	sessions *sessions.Store
	client   *authclient.Client

	users    *users.Service
	chat     *chat.Service
	greeter  *chat.Greeter
	files    *files.Service
	schedule *schedule.Service
}

// CLI is a ready to execute command tree.
type CLI struct {
	root *cobra.Command
	app  *app
}

type Option func(*app)

// WithClock replaces time.Now for greetings, dates and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(a *app) { a.now = now }
}

func New(cfg config.Config, opts ...Option) *CLI {
	a := &app{cfg: cfg, now: time.Now, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return &CLI{root: a.newRootCmd(), app: a}
}

// Command exposes the root for SetArgs, SetOut and friends.
func (c *CLI) Command() *cobra.Command {
	return c.root
}

// Execute runs the command tree and releases the store afterwards, also when
// the command failed.
func (c *CLI) Execute(ctx context.Context) error {
	defer c.app.close()
	return c.root.ExecuteContext(ctx)
}

func (a *app) newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "uniassist",
		Short:         "University assistant in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd, flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			printBanner(cmd.OutOrStdout(), a.cfg.GetAppName())
			return cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.backendURL, "backend", a.cfg.GetBackendURL(), "Assistant backend URL")
	pf.StringVar(&flags.store, "store", a.cfg.GetStoreBackend(), "Local state backend: memory, file, sqlite or redis")
	pf.StringVar(&flags.storePath, "store-path", "", "Path of the file or sqlite store")
	pf.StringVar(&flags.logLevel, "log-level", a.cfg.GetLogLevel(), "Log level (debug, info, warn, error)")
	pf.BoolVar(&flags.debug, "debug", false, "Shorthand for --log-level debug")

	root.AddCommand(
		a.newLoginCmd(),
		a.newLogoutCmd(),
		a.newWhoamiCmd(),
		a.newStatusCmd(),
		a.newRefreshCmd(),
		a.newGroupCmd(),
		a.newChatCmd(),
		a.newHistoryCmd(),
		a.newFilesCmd(),
		a.newScheduleCmd(),
		a.newTasksCmd(),
	)
	return root
}

func (a *app) open(cmd *cobra.Command, flags rootFlags) error {
	level := flags.logLevel
	if flags.debug {
		level = "debug"
	}
	a.log = logging.New(level, a.cfg.GetEnv(), cmd.ErrOrStderr())

	path := flags.storePath
	if path == "" {
		path = a.cfg.StorePathFor(flags.store)
	}
	store, err := kv.Open(cmd.Context(), kv.Options{
		Backend:       flags.store,
		Path:          path,
		Key:           a.cfg.GetStoreKey(),
		RedisAddr:     a.cfg.GetRedisAddr(),
		RedisPassword: a.cfg.GetRedisPassword(),
		RedisDB:       a.cfg.GetRedisDB(),
		RedisPrefix:   a.cfg.GetRedisPrefix(),
		Logger:        a.log,
	})
	if err != nil {
		return fmt.Errorf("open %s store: %w", flags.store, err)
	}
	a.store = store
	a.sessions = sessions.NewStore(store)

	clientOpts := []authclient.Option{
		authclient.WithLogger(a.log),
		authclient.WithClock(a.now),
		authclient.WithExpiryBuffer(a.cfg.GetExpiryBuffer()),
		authclient.WithTransport(&http.Client{Timeout: a.cfg.GetRequestTimeout()}),
	}
	if a.cfg.GetSingleFlightRefresh() {
		clientOpts = append(clientOpts, authclient.WithSingleFlightRefresh())
	}
	client, err := authclient.New(flags.backendURL, a.sessions, clientOpts...)
	if err != nil {
		return err
	}
	a.client = client

	a.users = users.NewService(client, a.sessions)
	a.chat = chat.NewService(client, chat.NewHistory(store, a.cfg.GetMaxHistoryEntries()), a.log)
	a.greeter = chat.NewGreeter(store, a.now)
	a.files = files.NewService(client)
	a.schedule = schedule.NewService(client)

	a.log.Debug().Str("backend", client.BaseURL()).Str("store", flags.store).Str("path", path).Msg("CLI initialised")
	return nil
}

func (a *app) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("Closing store failed")
	}
	a.store = nil
}
