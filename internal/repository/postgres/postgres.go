package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/logger"
	"toolcrib-backend/internal/metrics"
	"toolcrib-backend/internal/repository"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLSTATE codes that mean the transaction lost a lock race and can be replayed.
const (
	codeLockNotAvailable     = "55P03"
	codeDeadlockDetected     = "40P01"
	codeSerializationFailure = "40001"
)

type Options struct {
	LockTimeout  time.Duration
	MaxAttempts  int
	RetryBackoff time.Duration
	Metrics      *metrics.Recorder
}

type Store struct {
	db   *sql.DB
	opts Options
	repository.ToolRepository
	repository.UserRepository
	repository.PremisesRepository
	repository.InventoryRepository
	repository.ToolRequestRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB, opts Options) *Store {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Store{
		db:                     db,
		opts:                   opts,
		ToolRepository:         NewToolRepository(db),
		UserRepository:         NewUserRepository(db),
		PremisesRepository:     NewPremisesRepository(db),
		InventoryRepository:    NewInventoryRepository(db),
		ToolRequestRepository:  NewToolRequestRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

// Repositories exposes the store in the shape the services are wired with.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Transactor:    s,
		Tools:         s.ToolRepository,
		Users:         s.UserRepository,
		Premises:      s.PremisesRepository,
		Inventory:     s.InventoryRepository,
		Requests:      s.ToolRequestRepository,
		Notifications: s.NotificationRepository,
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepositories) error) error {
	var lastErr error
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		err := s.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		reason, retryable := retryReason(err)
		if !retryable {
			return err
		}
		lastErr = err
		if attempt == s.opts.MaxAttempts {
			break
		}

		logger.Warn("Retrying transaction after lock contention", "attempt", attempt, "reason", reason)
		s.opts.Metrics.TxRetry(ctx, reason)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.opts.RetryBackoff * time.Duration(attempt)):
		}
	}
	logger.Error("Transaction retries exhausted", "attempts", s.opts.MaxAttempts, "error", lastErr)
	return domain.NewTransientError(s.opts.MaxAttempts, lastErr)
}

func (s *Store) runTx(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if s.opts.LockTimeout > 0 {
		// SET does not accept bind parameters.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", s.opts.LockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
	}

	repos := repository.TxRepositories{
		Tools:         NewToolRepository(tx),
		Premises:      NewPremisesRepository(tx),
		Inventory:     NewInventoryRepository(tx),
		Requests:      NewToolRequestRepository(tx),
		Notifications: NewNotificationRepository(tx),
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	return tx.Commit()
}

func retryReason(err error) (string, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return "", false
	}
	switch pqErr.Code {
	case codeLockNotAvailable, codeDeadlockDetected, codeSerializationFailure:
		return pqErr.Code.Name(), true
	}
	return "", false
}

// notFound maps sql.ErrNoRows onto the domain error; other errors pass through.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError(format, args...)
	}
	return err
}
