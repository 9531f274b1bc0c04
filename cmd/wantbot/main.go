package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"wantbot/internal/bridge"
	"wantbot/internal/catalog"
	"wantbot/internal/config"
	"wantbot/internal/console"
	"wantbot/internal/gateway"
	"wantbot/internal/logging"
	"wantbot/internal/pacer"
	"wantbot/internal/render"
	"wantbot/internal/wantlist"
)

const version = "0.4.1"

var (
	// Global flags
	configPath string
	verbose    bool

	// Console flags
	consoleUser  string
	consoleName  string
	consoleSpace string

	logger *zap.Logger
	cfg    config.Config
)

var rootCmd = &cobra.Command{
	Use:   "wantbot",
	Short: "wantbot - shared want lists backed by the card catalog",
	Long: `wantbot keeps per-user trading-card want lists for a shared space.

Members add and remove wants with free-text commands like
"+1 Lightning Bolt (M25, foil) -2 Opt"; every card and edition is checked
against the catalog before being accepted, and a shared summary is kept
up to date after every change. All state is in-memory and intentionally
volatile.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		level := logging.ParseLevel(cfg.Logging.Level)
		if verbose {
			level = logging.LevelDebug
		}
		return logging.Configure(logging.Options{
			Enabled:    cfg.Logging.Enabled || verbose,
			Dir:        cfg.Logging.Dir,
			Level:      level,
			Categories: cfg.Logging.Categories,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve commands from a chat connector over stdin/stdout",
	Long: `Runs the JSON-lines protocol on stdin/stdout for an external chat
connector: one command object per input line, one response event per
command, plus summary events whenever want lists change. The connector
owns the platform session, message identity and pinning.`,
	RunE: runServe,
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive local console for trying wantbot out",
	RunE:  runConsole,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the wantbot version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wantbot %s\n", version)
	},
}

// pipeline is everything behind the dispatcher, built once per process.
type pipeline struct {
	dispatcher *gateway.Dispatcher
	pacer      *pacer.Pacer
	client     *catalog.HTTPClient
}

func buildPipeline(publisher gateway.Publisher) *pipeline {
	p := pacer.New(pacer.Config{Spacing: cfg.Pacer.SpacingDuration()})
	client := catalog.NewHTTPClient(catalog.HTTPConfig{
		BaseURL: cfg.Catalog.BaseURL,
		Timeout: cfg.Catalog.TimeoutDuration(),
	})
	resolver := catalog.NewResolver(catalog.ResolverConfig{Client: client, Pacer: p})

	tag, err := language.Parse(cfg.Render.Locale)
	if err != nil {
		logger.Warn("Unparseable render locale, falling back to English",
			zap.String("locale", cfg.Render.Locale))
		tag = language.English
	}

	store := wantlist.NewStore()
	executor := wantlist.NewExecutor(store, resolver)
	return &pipeline{
		dispatcher: gateway.NewDispatcher(store, executor, render.New(tag), publisher),
		pacer:      p,
		client:     client,
	}
}

// runGroup runs the frontend alongside an optional config watcher and
// tears the whole group down when either the context ends or the
// frontend returns, so a connector closing stdin also stops the watcher.
func runGroup(ctx context.Context, cancel context.CancelFunc, frontend gateway.Frontend, handler gateway.Handler, watch func(context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return frontend.Run(ctx, handler)
	})
	if watch != nil {
		g.Go(func() error {
			return watch(ctx)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bridge.New(os.Stdin, os.Stdout)
	pl := buildPipeline(b)
	defer pl.pacer.Stop()

	logger.Info("wantbot serving",
		zap.String("version", version),
		zap.String("catalog", cfg.Catalog.BaseURL),
		zap.Duration("pacer_spacing", cfg.Pacer.SpacingDuration()))
	logging.Boot("wantbot %s serving (catalog %s)", version, cfg.Catalog.BaseURL)

	var watch func(context.Context) error
	if configPath != "" {
		watch = func(ctx context.Context) error {
			return config.Watch(ctx, configPath, func(next config.Config) {
				pl.pacer.SetSpacing(next.Pacer.SpacingDuration())
				pl.client.SetTimeout(next.Catalog.TimeoutDuration())
				logger.Info("applied config reload",
					zap.Duration("pacer_spacing", next.Pacer.SpacingDuration()),
					zap.Duration("catalog_timeout", next.Catalog.TimeoutDuration()))
			})
		}
	}

	err := runGroup(ctx, stop, b, pl.dispatcher, watch)

	m := pl.pacer.Metrics()
	logger.Info("wantbot stopped",
		zap.Int64("catalog_calls", m.Scheduled),
		zap.Duration("total_pacing_wait", m.TotalWait))
	return err
}

func runConsole(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := console.New(os.Stdin, os.Stdout, consoleUser, consoleName, consoleSpace)
	pl := buildPipeline(c)
	defer pl.pacer.Stop()

	logging.Boot("wantbot %s console session for %s", version, consoleName)

	return runGroup(ctx, stop, c, pl.dispatcher, nil)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "wantbot.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	consoleCmd.Flags().StringVar(&consoleUser, "user", "local", "user id for the console session")
	consoleCmd.Flags().StringVar(&consoleName, "name", "Local User", "display name for the console session")
	consoleCmd.Flags().StringVar(&consoleSpace, "space", "console", "space id for the console session")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
