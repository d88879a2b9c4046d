package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"toolcrib-backend/internal/config"
	"toolcrib-backend/internal/logger"
	"toolcrib-backend/internal/metrics"
	"toolcrib-backend/internal/repository"
	"toolcrib-backend/internal/repository/memory"
	"toolcrib-backend/internal/repository/postgres"
	"toolcrib-backend/internal/service"
)

// Storage is an opened repository backend.
type Storage struct {
	Repos *repository.Store
	db    *sql.DB
}

// Ping reports whether the backend is reachable. The memory backend is
// always reachable.
func (s *Storage) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// OpenStorage opens the backend selected by cfg.Storage.Type.
func OpenStorage(cfg *config.Config, recorder *metrics.Recorder) (*Storage, error) {
	switch cfg.Storage.Type {
	case "memory":
		mem := memory.NewStore()
		if cfg.Storage.SeedFile != "" {
			logger.Info("Loading seed data", "file", cfg.Storage.SeedFile)
			seed, err := memory.LoadSeedFile(cfg.Storage.SeedFile)
			if err != nil {
				return nil, err
			}
			if err := mem.Apply(seed); err != nil {
				return nil, fmt.Errorf("failed to apply seed: %w", err)
			}
		}
		logger.Warn("Using in-memory storage, data is lost on restart")
		return &Storage{Repos: mem.Repositories()}, nil

	case "postgres":
		logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		logger.Info("Database connection established")

		store := postgres.NewStore(db, postgres.Options{
			LockTimeout:  time.Duration(cfg.Database.LockTimeoutMS) * time.Millisecond,
			MaxAttempts:  cfg.Database.MaxTxAttempts,
			RetryBackoff: time.Duration(cfg.Database.RetryBackoffMS) * time.Millisecond,
			Metrics:      recorder,
		})
		return &Storage{Repos: store.Repositories(), db: db}, nil

	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}
}

// LendingPolicy builds the service policy from configuration.
func LendingPolicy(cfg *config.Config) service.LendingPolicy {
	return service.LendingPolicy{
		DefaultReturnDays: cfg.Lending.DefaultReturnDays,
		Location:          cfg.Location(),
		ReportTopN:        cfg.Reporting.TopN,
	}
}
