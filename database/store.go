package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/CrowderSoup/kanban/metrics"
)

// DefaultMaxRetries bounds how often a unit of work is re-run after losing
// the write lock to a concurrent transaction.
const DefaultMaxRetries = 4

// Store runs units of work against the board database.
type Store struct {
	db         *sql.DB
	logger     *slog.Logger
	maxRetries int
	newBackOff func() backoff.BackOff
}

type Option func(*Store)

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithMaxRetries overrides DefaultMaxRetries. Zero disables retrying.
func WithMaxRetries(n int) Option {
	return func(s *Store) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithBackOff overrides the retry schedule. The factory is called once per
// unit of work because BackOff values are stateful.
func WithBackOff(factory func() backoff.BackOff) Option {
	return func(s *Store) { s.newBackOff = factory }
}

func NewStore(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:         db,
		logger:     slog.Default(),
		maxRetries: DefaultMaxRetries,
		newBackOff: newTxBackOff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newTxBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxInterval = 250 * time.Millisecond
	bo.MaxElapsedTime = 5 * time.Second
	return bo
}

// DB exposes the underlying handle for lifecycle management.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RunInTx executes fn inside a single transaction. The write lock is taken
// when the transaction begins, so everything fn reads stays valid until
// commit. If the store is busy the whole unit is re-run with exponential
// backoff; once retries are exhausted the error wraps ErrConflict. Any
// other error from fn rolls back and is returned as is. A panic in fn rolls
// back and is re-raised.
func (s *Store) RunInTx(ctx context.Context, fn func(tx *Tx) error) error {
	start := time.Now()
	defer func() { metrics.TxDuration.Observe(time.Since(start).Seconds()) }()

	bo := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), uint64(s.maxRetries)), ctx)
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		if attempt > 1 {
			metrics.TxRetries.Inc()
			s.logger.Debug("retrying transaction", "attempt", attempt)
		}
		err := s.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if isBusy(err) {
			return err
		}
		return backoff.Permanent(err)
	}, bo)

	if err != nil && isBusy(err) {
		metrics.TxConflicts.Inc()
		s.logger.Warn("transaction gave up after retries", "attempts", attempt, "error", err)
		return fmt.Errorf("%w: store busy after %d attempts: %v", ErrConflict, attempt, err)
	}
	return err
}

func (s *Store) runOnce(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()

	if err := fn(&Tx{tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// Tx is an open unit of work. All entity queries hang off it.
type Tx struct {
	tx *sql.Tx
}

// Savepoint runs fn so that its writes can be undone without aborting the
// enclosing transaction. If fn fails its writes are rolled back and the
// error is returned; the transaction stays usable.
func (t *Tx) Savepoint(ctx context.Context, name string, fn func() error) error {
	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to open savepoint %s: %w", name, err)
	}
	if err := fn(); err != nil {
		_, rbErr := t.tx.ExecContext(ctx, "ROLLBACK TO "+name)
		_, relErr := t.tx.ExecContext(ctx, "RELEASE "+name)
		return errors.Join(err, rbErr, relErr)
	}
	if _, err := t.tx.ExecContext(ctx, "RELEASE "+name); err != nil {
		return fmt.Errorf("failed to release savepoint %s: %w", name, err)
	}
	return nil
}
