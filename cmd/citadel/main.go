package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/citadel/internal/adapter"
	"github.com/mmcdole/citadel/internal/adapter/biometric"
	"github.com/mmcdole/citadel/internal/adapter/source"
	"github.com/mmcdole/citadel/internal/catalog"
	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/favorites"
	"github.com/mmcdole/citadel/internal/runloop"
	"github.com/mmcdole/citadel/internal/session"
	"github.com/mmcdole/citadel/internal/store"
	"github.com/mmcdole/citadel/internal/tui/styles"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                        \r"

var configFile string

var rootCmd = &cobra.Command{
	Use:   "citadel",
	Short: "Browse the Rick and Morty multiverse from your terminal",
	Long: `Citadel browses the Rick and Morty character catalog, caches it locally
for offline use, and keeps a PIN-protected list of favorite characters.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is the user config dir)")
	rootCmd.SetVersionTemplate("citadel {{.Version}}\n")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render("Error: "+describe(err)))
		os.Exit(1)
	}
}

// app is the composition root shared by every command
type app struct {
	cfg      *adapter.Config
	logger   *slog.Logger
	store    domain.CatalogStore
	service  *catalog.Service
	loop     *runloop.Loop
	bus      *favorites.Bus
	session  *session.Coordinator
	launcher *adapter.Launcher

	logCloser io.Closer
}

// newApp loads configuration and wires every component
func newApp() (*app, error) {
	cfg, err := adapter.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, logCloser, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger, logCloser = adapter.NullLogger(), io.NopCloser(nil)
	}
	slog.SetDefault(logger)
	logger.Info("starting citadel", "version", Version, "source", cfg.API.Source)

	var st domain.CatalogStore
	if cfg.Cache.Dir == "" {
		st = store.NewMemoryStore()
	} else {
		st, err = store.Open(cfg.Cache.Dir)
		if err != nil {
			logCloser.Close()
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
	}

	src, err := source.NewClientFromConfig(cfg, logger)
	if err != nil {
		st.Close()
		logCloser.Close()
		return nil, fmt.Errorf("failed to create catalog client: %w", err)
	}

	loop := runloop.New()
	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		service: catalog.NewService(src, st, logger),
		loop:    loop,
		bus:     favorites.NewBus(loop, logger),
		session: session.NewCoordinator(
			biometric.NewAuthenticator(&cfg.Auth),
			session.Config{Timeout: cfg.Session.Timeout, Executor: loop},
			logger,
		),
		launcher:  adapter.NewLauncher(cfg.Viewer.Command, logger),
		logCloser: logCloser,
	}, nil
}

// Close ends the session and releases the store and log file
func (a *app) Close() {
	a.session.Lock()
	a.loop.Close()
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close cache", "error", err)
	}
	a.logger.Info("shutting down")
	a.logCloser.Close()
}

// withApp builds the app for the duration of a command
func withApp(run func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd.Context(), a, cmd, args)
	}
}

// withSpinner runs fn while animating label on out. Non-terminal output gets no animation.
func withSpinner(out io.Writer, label string, fn func() error) error {
	if f, ok := out.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		return fn()
	}

	done := make(chan error, 1)
	go func() { done <- fn() }()

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	frame := 0
	fmt.Fprintf(out, "\r%s %s", styles.SpinnerStyle.Render(styles.SpinnerFrames[frame]), label)
	for {
		select {
		case err := <-done:
			fmt.Fprint(out, clearSpinnerLine)
			return err
		case <-ticker.C:
			frame++
			fmt.Fprintf(out, "\r%s %s", styles.SpinnerStyle.Render(styles.SpinnerFrames[frame%len(styles.SpinnerFrames)]), label)
		}
	}
}

func parseID(arg, what string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}
