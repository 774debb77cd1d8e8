// Command tsprovider polls configured HTTP sources on a schedule, stores the
// values in a time-series database and answers Grafana SimpleJSON queries.
//
// Subcommands:
//   - serve: run the scheduler and the dashboard API until interrupted
//   - validate: load the configuration and source list, then exit
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/m-adamski/timeseries-data-provider/internal/api"
	"github.com/m-adamski/timeseries-data-provider/internal/fetch"
	"github.com/m-adamski/timeseries-data-provider/internal/infrastructure/config"
	"github.com/m-adamski/timeseries-data-provider/internal/infrastructure/database"
	"github.com/m-adamski/timeseries-data-provider/internal/infrastructure/influxdb"
	"github.com/m-adamski/timeseries-data-provider/internal/infrastructure/logging"
	"github.com/m-adamski/timeseries-data-provider/internal/infrastructure/mqtt"
	"github.com/m-adamski/timeseries-data-provider/internal/ingest"
	"github.com/m-adamski/timeseries-data-provider/internal/query"
	"github.com/m-adamski/timeseries-data-provider/internal/scheduler"
	"github.com/m-adamski/timeseries-data-provider/internal/series"
	"github.com/m-adamski/timeseries-data-provider/internal/source"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// configEnv overrides the default config path when --config is not given.
const configEnv = "TSPROVIDER_CONFIG"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tsprovider",
		Short:         "Time-series data provider for Grafana SimpleJSON dashboards",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "path to the YAML config file (default: $"+configEnv+" or "+defaultConfigPath+")")

	serve := func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context(), configPathFlag(cmd))
	}
	// Bare "tsprovider" serves.
	rootCmd.Args = cobra.NoArgs
	rootCmd.RunE = serve

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the scheduler and the dashboard API",
			Args:  cobra.NoArgs,
			RunE:  serve,
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check the configuration and source definitions",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return validate(cmd.OutOrStdout(), configPathFlag(cmd))
			},
		},
	)

	return rootCmd
}

// configPathFlag returns --config when set, otherwise getConfigPath.
func configPathFlag(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path
	}
	return getConfigPath()
}

// getConfigPath returns the configuration file path.
// Uses TSPROVIDER_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv(configEnv); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadAll reads the configuration and builds the source registry from it.
func loadAll(configPath string) (*config.Config, *source.Registry, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	reg, err := source.FromConfig(cfg.Sources)
	if err != nil {
		return nil, nil, fmt.Errorf("loading sources: %w", err)
	}
	return cfg, reg, nil
}

// validate reports what serve would run without touching any backend.
func validate(w io.Writer, configPath string) error {
	cfg, reg, err := loadAll(configPath)
	if err != nil {
		return err
	}

	schedulable := reg.Schedulable()
	fmt.Fprintf(w, "config %s OK\n", configPath)
	fmt.Fprintf(w, "storage backend: %s\n", cfg.Storage.Backend)
	fmt.Fprintf(w, "sources: %d defined, %d active\n", reg.Len(), len(schedulable))
	for _, def := range schedulable {
		retention := "off"
		if def.Prunable() {
			retention = fmt.Sprintf("%s every %s", def.Retention.Age, def.Retention.CheckInterval)
		}
		fmt.Fprintf(w, "  %s: every %s, retention %s\n", def.Name, def.PollInterval, retention)
	}
	return nil
}

// run is the serve logic, separated from main for testability.
//
// Startup order is store, MQTT, scheduler, API. Shutdown runs the deferred
// closes in reverse: the API stops answering first, then in-flight fetches
// drain, then the publisher and the store close.
func run(ctx context.Context, configPath string) error {
	log := logging.Default()
	log.Info("starting tsprovider",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, reg, err := loadAll(configPath)
	if err != nil {
		return err
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)
	log.Info("sources loaded", "defined", reg.Len(), "active", len(reg.ActiveNames()))

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing store")
		if closeErr := store.Close(); closeErr != nil {
			log.Error("error closing store", "error", closeErr)
		}
	}()
	log.Info("store connected", "backend", cfg.Storage.Backend)

	if ensureErr := store.EnsureDatabase(ctx); ensureErr != nil {
		return fmt.Errorf("preparing store: %w", ensureErr)
	}

	ingestor := ingest.NewIngestor(store)
	ingestor.SetLogger(log.With("component", "ingest"))
	pruner := ingest.NewPruner(store)
	pruner.SetLogger(log.With("component", "prune"))

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(ctx, cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.With("component", "mqtt"))
		ingestor.SetPublisher(mqttClient)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT publishing disabled")
	}

	if hcErr := healthCheck(ctx, store, mqttClient); hcErr != nil {
		return fmt.Errorf("health check failed: %w", hcErr)
	}
	log.Info("all health checks passed")

	sched := scheduler.New(reg.Schedulable(), fetch.New(&http.Client{}), ingestor, pruner, scheduler.Config{
		TickInterval:  cfg.GetTickInterval(),
		ShutdownGrace: cfg.GetShutdownGrace(),
	})
	sched.SetLogger(log.With("component", "scheduler"))
	if startErr := sched.Start(ctx); startErr != nil {
		return fmt.Errorf("starting scheduler: %w", startErr)
	}
	defer func() {
		log.Info("stopping scheduler")
		if stopErr := sched.Stop(); stopErr != nil {
			log.Error("error stopping scheduler", "error", stopErr)
		}
	}()

	srv, err := api.New(api.Deps{
		Config:     cfg.Server,
		Logger:     log,
		Translator: query.NewTranslator(store, reg),
		Searcher:   query.NewSearcher(reg),
		Store:      store,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := srv.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := srv.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	return nil
}

// openStore connects the configured storage backend.
func openStore(ctx context.Context, cfg *config.Config) (series.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendInfluxDB:
		client, err := influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		return client, nil

	case config.BackendSQLite:
		db, err := database.Open(ctx, database.Config{
			Path:        cfg.Database.Path,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		return series.NewSQLiteStore(db), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// healthCheck verifies the store and, when enabled, the MQTT connection.
func healthCheck(ctx context.Context, store series.Store, mqttClient *mqtt.Client) error {
	var errs []error

	if err := store.HealthCheck(ctx); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mqtt: %w", err))
		}
	}

	return errors.Join(errs...)
}
