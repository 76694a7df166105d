package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sqlstash/sqlstash/internal/table"
)

// Executor runs a query against the remote warehouse. Implementations own
// authentication, transport, and any retry or timeout behavior; the cache
// layer treats every failure as opaque and non-retriable.
type Executor interface {
	Execute(ctx context.Context, query string) (*table.Table, error)
}

// Manager provides read-through caching of query results. It is the sole
// writer of its store; maintenance commands only read and delete.
type Manager struct {
	store         *FileStore
	exec          Executor
	defaultMaxAge time.Duration
	staleFallback bool
	logger        zerolog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithDefaultMaxAge sets the freshness threshold used when a query does not
// specify one. Defaults to DefaultMaxAge.
func WithDefaultMaxAge(d time.Duration) ManagerOption {
	return func(m *Manager) { m.defaultMaxAge = d }
}

// WithStaleFallback opts in to serving a stale cached entry when the
// executor fails and a readable entry exists. The fallback is logged as
// degraded service; it is never silent and never the default.
func WithStaleFallback() ManagerOption {
	return func(m *Manager) { m.staleFallback = true }
}

// WithLogger sets the logger used for hit/miss and refresh events.
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a read-through cache manager over store and exec.
func NewManager(store *FileStore, exec Executor, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:         store,
		exec:          exec,
		defaultMaxAge: DefaultMaxAge,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type queryConfig struct {
	maxAge time.Duration
	force  bool
}

// QueryOption adjusts a single GetData call.
type QueryOption func(*queryConfig)

// WithMaxAge overrides the freshness threshold for one call. A zero or
// negative value forces a miss.
func WithMaxAge(d time.Duration) QueryOption {
	return func(c *queryConfig) { c.maxAge = d }
}

// WithForceRefresh skips the freshness check and always re-executes.
func WithForceRefresh() QueryOption {
	return func(c *queryConfig) { c.force = true }
}

// GetData returns the result table for a query, serving a fresh cache entry
// when one exists and otherwise executing against the warehouse and
// persisting the result. An entry that exists but cannot be read is treated
// as a miss and repaired by the save that follows re-execution. Executor
// errors propagate verbatim unless the stale fallback is enabled and a
// readable entry exists.
func (m *Manager) GetData(ctx context.Context, query string, opts ...QueryOption) (*table.Table, error) {
	cfg := queryConfig{maxAge: m.defaultMaxAge}
	for _, opt := range opts {
		opt(&cfg)
	}

	fingerprint := Fingerprint(query)
	logger := m.logger.With().Str("fingerprint", shortFingerprint(fingerprint)).Logger()

	if !cfg.force && cfg.maxAge > 0 {
		if tbl, ok := m.loadFresh(logger, fingerprint, cfg.maxAge); ok {
			return tbl, nil
		}
	}

	start := time.Now()
	tbl, err := m.exec.Execute(ctx, query)
	if err != nil {
		if m.staleFallback {
			if stale, _, loadErr := m.store.Load(fingerprint); loadErr == nil {
				logger.Warn().
					Err(err).
					Msg("warehouse query failed, serving stale cached result (degraded)")
				return stale, nil
			}
		}
		return nil, err
	}
	logger.Info().
		Dur("elapsed", time.Since(start)).
		Int("rows", tbl.NumRows()).
		Msg("fetched result from warehouse")

	if err := m.store.Save(fingerprint, tbl, query); err != nil {
		return nil, fmt.Errorf("save cache entry: %w", err)
	}
	return tbl, nil
}

// loadFresh returns the cached table when an entry exists, is within maxAge,
// and loads cleanly. NotFound and Corrupt both report a miss; the caller
// falls through to re-execution. Load errors other than those two abort the
// hit path silently as well, surfacing on the save that follows if the
// storage is genuinely broken.
func (m *Manager) loadFresh(logger zerolog.Logger, fingerprint string, maxAge time.Duration) (*table.Table, bool) {
	if !m.store.Exists(fingerprint) {
		return nil, false
	}

	age, err := m.store.Age(fingerprint)
	if err != nil || age > maxAge {
		if err == nil {
			logger.Debug().
				Str("age", FormatDuration(age)).
				Str("max_age", FormatDuration(maxAge)).
				Msg("cache entry stale, refreshing")
		}
		return nil, false
	}

	tbl, entry, err := m.store.Load(fingerprint)
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			logger.Warn().Err(err).Msg("cache entry unreadable, re-executing query")
		}
		return nil, false
	}

	logger.Info().
		Str("age", FormatDuration(age)).
		Int64("rows", entry.Rows).
		Msg("serving cached result")
	return tbl, true
}
