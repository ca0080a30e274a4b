package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/cro-engine/internal/api"
	"github.com/jonesrussell/cro-engine/internal/config"
	"github.com/jonesrussell/cro-engine/internal/experiment"
	"github.com/jonesrussell/cro-engine/internal/handler"
	"github.com/jonesrussell/cro-engine/internal/logger"
	"github.com/jonesrussell/cro-engine/internal/metrics"
	"github.com/jonesrussell/cro-engine/internal/session"
	"github.com/jonesrussell/cro-engine/internal/sink"
	"github.com/jonesrussell/cro-engine/internal/storage"
	"github.com/jonesrussell/cro-engine/internal/tracker"

	_ "github.com/lib/pq"
)

// Database connection timeout.
const dbPingTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	// Experiment definitions are validated here, at load time; a bad
	// definition fails the process rather than failing per-visitor.
	registry, err := experiment.LoadRegistry(cfg.Experiments.Path)
	if err != nil {
		log.Error("Failed to load experiments", logger.Error(err))
		return 1
	}
	log.Info("Experiments loaded", logger.Int("count", registry.Len()))

	sessions, err := connectSessionStore(cfg, log)
	if err != nil {
		log.Error("Failed to connect to session store", logger.Error(err))
		return 1
	}

	db, err := connectDatabase(cfg, log)
	if err != nil {
		log.Error("Failed to connect to database", logger.Error(err))
		return 1
	}
	defer func() { _ = db.Close() }()

	return runServer(cfg, log, registry, sessions, db)
}

// loadConfig loads and validates configuration.
func loadConfig() (*config.Config, error) {
	configPath := config.GetConfigPath("config.yml")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", "cro-engine")), nil
}

// connectSessionStore connects the Redis-backed session store.
func connectSessionStore(cfg *config.Config, log logger.Logger) (session.Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	store, err := session.NewRedisStore(client, cfg.Session.TTL, cfg.Session.MaxConversionLog)
	if err != nil {
		return nil, fmt.Errorf("redis session store: %w", err)
	}

	log.Info("Session store connected",
		logger.String("address", cfg.Redis.Address),
		logger.Duration("ttl", cfg.Session.TTL),
	)
	return store, nil
}

// connectDatabase opens and verifies the conversion archive database.
func connectDatabase(cfg *config.Config, log logger.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	log.Info("Database connected",
		logger.String("host", cfg.Database.Host),
		logger.Int("port", cfg.Database.Port),
		logger.String("database", cfg.Database.Database),
	)

	return db, nil
}

// runServer creates all dependencies and starts the HTTP server.
func runServer(
	cfg *config.Config,
	log logger.Logger,
	registry *experiment.Registry,
	sessions session.Store,
	db *sql.DB,
) int {
	m := metrics.New()

	sinks, err := sink.FromConfig(cfg.Sinks, log)
	if err != nil {
		log.Error("Failed to build sinks", logger.Error(err))
		return 1
	}
	log.Info("Sinks configured", logger.Int("count", len(sinks)))

	// Conversion archive: buffered, batch-flushed writes to PostgreSQL.
	buf := storage.NewBuffer(cfg.Archive.BufferSize)
	archive := storage.NewArchive(db, buf, log, cfg.Archive.FlushInterval, cfg.Archive.FlushThreshold)
	archive.Start()
	defer archive.Stop()

	trk := tracker.New(sessions, sinks, buf, log, m)
	defer trk.Wait()

	assigner := experiment.NewAssigner(sessions, log)

	handlers := api.Handlers{
		Health:   handler.NewHealthHandler(cfg.Service.Version),
		Pageview: handler.NewPageviewHandler(sessions, trk, log),
		Lead:     handler.NewLeadHandler(sessions, trk, log),
		Assign:   handler.NewAssignHandler(registry, assigner, sessions, m, log),
		Track:    handler.NewTrackHandler(trk, log),
		Metrics:  m.Handler(),
	}

	// done signals background goroutines (rate limiter) on shutdown
	done := make(chan struct{})
	defer close(done)

	server := api.NewServer(cfg, log, handlers, done)

	log.Info("CRO engine starting",
		logger.Int("port", cfg.Service.Port),
	)

	if err := server.Run(); err != nil {
		log.Error("Server error", logger.Error(err))
		return 1
	}

	log.Info("CRO engine exited cleanly")
	return 0
}
