package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"userdesk/local-app/internal/app"
	"userdesk/local-app/internal/cli"
	"userdesk/local-app/internal/config"
	"userdesk/local-app/internal/event"
	"userdesk/local-app/internal/log"
	"userdesk/local-app/internal/model"
	"userdesk/local-app/internal/reconcile"
	"userdesk/local-app/internal/records"
	"userdesk/local-app/internal/remote"
	"userdesk/local-app/internal/session"
	"userdesk/local-app/internal/storage"
	"userdesk/local-app/internal/tui"
	"userdesk/local-app/internal/ui"
)

// options holds the command line. Empty values leave the config file
// setting in place.
type options struct {
	configPath string
	ui         string
	apiURL     string
	dbType     string
	ephemeral  bool
	logLevel   string
	scripts    []string
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	flagSet := pflag.NewFlagSet("userdesk", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", config.DefaultConfigPath, "path to the JSON configuration file")
	flagSet.StringVar(&opts.ui, "ui", "", "frontend: auto, cli or tui")
	flagSet.StringVar(&opts.apiURL, "api-url", "", "remote user directory URL")
	flagSet.StringVar(&opts.dbType, "db-type", "", "storage backend: sqlite, sqlite-pure, file or memory")
	flagSet.BoolVar(&opts.ephemeral, "ephemeral", false, "keep records in memory only")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "minimum info log level: debug, info, warn or error")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  userdesk [flags] [script ...]\n\nScripts are executed in the command-line frontend before the prompt.\n\nFlags:\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	opts.scripts = flagSet.Args()
	return opts, nil
}

// apply overrides cfg with the flags that were given.
func (opts *options) apply(cfg *model.Config) {
	if opts.ui != "" {
		cfg.UI = opts.ui
	}
	if opts.apiURL != "" {
		cfg.APIURL = opts.apiURL
	}
	if opts.dbType != "" {
		cfg.DatabaseType = opts.dbType
	}
	if opts.ephemeral {
		cfg.DatabaseType = string(storage.Memory)
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
}

// resolveUI picks the frontend. Scripts always run in the command line.
func resolveUI(setting string, scripts []string) string {
	if setting != "auto" {
		return setting
	}
	if len(scripts) == 0 && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		return "tui"
	}
	return "cli"
}

// bootstrap initializes and runs userdesk.
// It sets up signal handling, loads configuration, initializes components
// (logger, storage, record store, directory client, synchronizer, controller),
// runs the selected frontend and handles graceful shutdown.
func bootstrap(args []string) error {
	opts, err := parseFlags(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	// Cancelled on interrupt; this stops a pending fetch
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// Load configuration
	if err := config.ConfigLoad(opts.configPath); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := config.ConfigGet()
	opts.apply(cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Initialize logger
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger, err := log.NewLogger(cfg, level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		if err := logger.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close logger: %v\n", err)
		}
	}()

	logger.Info(ctx, "Application started", log.Fields{"config": cfg})

	// Initialize storage
	kv, err := storage.NewStorage(cfg, logger)
	if err != nil {
		logger.Error(ctx, "Failed to initialize storage", log.Fields{"error": err})
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Error(context.Background(), "Failed to close storage", log.Fields{"error": err})
		}
	}()

	logger.Info(ctx, "Storage initialized", log.Fields{"type": cfg.DatabaseType})

	cache := storage.NewUserCache(kv, logger)
	events := event.NewEventManager(logger)
	store := records.NewStore(cache, cfg.StorageKey, events, logger)

	timeout, err := config.APITimeout(cfg)
	if err != nil {
		return err
	}
	client := remote.NewClient(cfg.APIURL, logger, remote.WithTimeout(timeout))

	mode := resolveUI(cfg.UI, opts.scripts)
	logger.Info(ctx, "Frontend selected", log.Fields{"ui": mode})

	if mode == "tui" {
		err = runTUI(ctx, cancel, sigChan, cfg, cache, client, store, events, logger)
	} else {
		err = runCLI(ctx, cancel, sigChan, cfg, opts.scripts, cache, client, store, events, logger)
	}
	if err != nil {
		logger.Error(context.Background(), "Frontend error", log.Fields{"ui": mode, "error": err})
		return err
	}

	logger.Info(context.Background(), "Application shutting down", nil)
	return nil
}

func runTUI(ctx context.Context, cancel context.CancelFunc, sigChan <-chan os.Signal, cfg *model.Config,
	cache *storage.UserCache, client *remote.Client, store *records.Store, events *event.EventManager, logger *log.Logger) error {
	notifier := tui.NewNotifier()
	controller := app.NewController(store, events, notifier, logger)
	synchronizer := reconcile.NewSynchronizer(cache, client, store, notifier, cfg.StorageKey, logger)

	startup := func(ctx context.Context) error {
		_, err := synchronizer.Run(ctx)
		return err
	}
	program := tea.NewProgram(tui.NewModel(ctx, controller, notifier, startup), tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		select {
		case <-sigChan:
			logger.Info(context.Background(), "Received interrupt signal. Shutting down...", nil)
			cancel()
		case <-ctx.Done():
		}
	}()

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func runCLI(ctx context.Context, cancel context.CancelFunc, sigChan <-chan os.Signal, cfg *model.Config, scripts []string,
	cache *storage.UserCache, client *remote.Client, store *records.Store, events *event.EventManager, logger *log.Logger) error {
	u := ui.NewUI(os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
	notifier := app.NotifierFunc(u.Notify)
	controller := app.NewController(store, events, notifier, logger)
	synchronizer := reconcile.NewSynchronizer(cache, client, store, notifier, cfg.StorageKey, logger)

	// Initialize session manager
	sessionManager := session.NewSessionManager(controller, logger)
	defer sessionManager.Stop()

	if err := os.MkdirAll(filepath.Dir(cfg.HistoryFile), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	rl, err := cli.NewReadline(cfg.HistoryFile)
	if err != nil {
		return err
	}
	cliInstance := cli.NewCLI(sessionManager, controller, rl, u, logger)
	defer cliInstance.Stop()

	// Set up graceful shutdown
	go func() {
		select {
		case <-sigChan:
			logger.Info(context.Background(), "Received interrupt signal. Shutting down...", nil)
			u.Println("\nReceived interrupt signal. Shutting down...")
			cancel()
			cliInstance.Stop()
		case <-ctx.Done():
		}
	}()

	// Scripts run against the synchronized collection; the interactive prompt
	// opens immediately and picks up the result when it lands.
	synced := startSync(ctx, len(scripts) > 0, func(ctx context.Context) {
		if result, err := synchronizer.Run(ctx); err != nil {
			logger.Warn(ctx, "Startup synchronization failed", log.Fields{"error": err})
		} else {
			logger.Info(ctx, "Startup synchronization finished", log.Fields{"source": result.Source, "count": result.Count})
		}
	})
	defer func() {
		cancel()
		<-synced
	}()

	for _, script := range scripts {
		err := cliInstance.ExecuteScript(ctx, script)
		if errors.Is(err, session.ErrExit) {
			return nil
		}
		if err != nil {
			u.Error(fmt.Sprintf("Error executing script %s: %v", script, err))
		}
	}

	if err := cliInstance.Run(ctx); err != nil {
		return fmt.Errorf("CLI error: %w", err)
	}
	u.Println("Goodbye!")
	return nil
}

// startSync runs the startup synchronization in its own goroutine and returns
// a channel closed when it finishes. With wait set it returns only after that.
func startSync(ctx context.Context, wait bool, run func(context.Context)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		run(ctx)
	}()
	if wait {
		<-done
	}
	return done
}
