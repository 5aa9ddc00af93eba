package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/lox/cityexplorer/internal/api"
	"github.com/lox/cityexplorer/internal/config"
	"github.com/lox/cityexplorer/internal/logging"
	"github.com/lox/cityexplorer/internal/lookup"
	"github.com/lox/cityexplorer/internal/provider"
	"github.com/lox/cityexplorer/internal/store"
)

var cli struct {
	config.Config `embed:""`

	Serve   serveCmd   `cmd:"" default:"1" help:"Run the HTTP server (default)."`
	Migrate migrateCmd `cmd:"" help:"Apply database migrations and exit."`
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	kctx := kong.Parse(&cli,
		kong.Name("cityexplorer"),
		kong.Description("Location, weather, trail and movie lookups."),
		kong.UsageOnError(),
	)
	kctx.FatalIfErrorf(kctx.Run(&cli.Config))
}

type serveCmd struct{}

func (serveCmd) Run(cfg *config.Config) error {
	log, err := setup(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	for _, name := range cfg.MissingKeys() {
		log.Warn("no api key configured", zap.String("provider", string(name)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeDB, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	client := provider.NewClient(cfg.Endpoints(), cfg.Keys(), cfg.ProviderTimeout)
	pipeline := lookup.NewPipeline(client, st, nil,
		lookup.WithLogger(log),
		lookup.WithTimezone(cfg.Location()),
	)

	return api.NewServer(pipeline, st, cfg.Port, log).Run(ctx)
}

type migrateCmd struct{}

func (migrateCmd) Run(cfg *config.Config) error {
	log, err := setup(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	_, closeDB, err := openStore(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	closeDB()
	return nil
}

func setup(cfg *config.Config) (*zap.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return logging.New(cfg.LogLevel, cfg.LogFormat)
}

// openStore connects, waiting up to DBWait for the database, and migrates.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*store.Store, func(), error) {
	db, dialect, err := store.Open(ctx, cfg.DatabaseURL, cfg.DBWait)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	st := store.New(db, dialect, cfg.StoreTimeout)
	if err := st.Migrate(ctx, log.Named("store")); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("database ready", zap.String("dialect", string(dialect)))

	return st, func() { db.Close() }, nil
}
