package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/lox/cityexplorer/internal/metrics"
	"github.com/lox/cityexplorer/internal/models"
)

// Dialect selects placeholder style and DDL.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

const DefaultTimeout = 5 * time.Second

// StoreError wraps any persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ParseDSN maps a connection string to a driver name, driver DSN and dialect.
// postgres:// and postgresql:// use lib/pq; sqlite://path, a bare path or
// :memory: use modernc sqlite.
func ParseDSN(dsn string) (driver, source string, dialect Dialect) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, Postgres
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://"), SQLite
	default:
		return "sqlite", dsn, SQLite
	}
}

// Open connects to the database named by dsn, retrying the initial ping with
// exponential backoff for up to maxWait.
func Open(ctx context.Context, dsn string, maxWait time.Duration) (*sql.DB, Dialect, error) {
	driver, source, dialect := ParseDSN(dsn)

	if dialect == SQLite && source != ":memory:" && !strings.HasPrefix(source, "file:") {
		if err := os.MkdirAll(filepath.Dir(source), 0755); err != nil {
			return nil, "", fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, "", fmt.Errorf("open database: %w", err)
	}

	if dialect == SQLite {
		if source == ":memory:" {
			// each pooled connection would otherwise see its own empty database
			db.SetMaxOpenConns(1)
		}
		db.Exec("PRAGMA journal_mode=WAL")
		db.Exec("PRAGMA busy_timeout=5000")
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxWait
	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
		return db.PingContext(pingCtx)
	}
	if err := backoff.Retry(ping, backoff.WithContext(bo, ctx)); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("ping database: %w", err)
	}

	return db, dialect, nil
}

type Store struct {
	db      *sql.DB
	dialect Dialect
	timeout time.Duration
}

// New wraps db. Every query is bounded by timeout.
func New(db *sql.DB, dialect Dialect, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{db: db, dialect: dialect, timeout: timeout}
}

func (s *Store) Dialect() Dialect { return s.dialect }

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return &StoreError{Op: "ping", Err: err}
	}
	return nil
}

// InsertLocation appends a row and returns it as stored.
func (s *Store) InsertLocation(ctx context.Context, lat, lon float64, placeID string) (*models.LocationRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO location_table (latitude, longitude, place_id)
		VALUES (?, ?, ?)
		RETURNING id, latitude, longitude, place_id
	`), lat, lon, placeID)

	var loc models.LocationRow
	if err := row.Scan(&loc.ID, &loc.Latitude, &loc.Longitude, &loc.PlaceID); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("insert").Inc()
		return nil, &StoreError{Op: "insert", Err: err}
	}
	metrics.LocationsStored.Inc()
	return &loc, nil
}

// ListLocations returns every stored row in insertion order.
func (s *Store) ListLocations(ctx context.Context) ([]models.LocationRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT id, latitude, longitude, place_id FROM location_table ORDER BY id ASC`)
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("list").Inc()
		return nil, &StoreError{Op: "list", Err: err}
	}
	defer rows.Close()

	locations := []models.LocationRow{}
	for rows.Next() {
		var loc models.LocationRow
		if err := rows.Scan(&loc.ID, &loc.Latitude, &loc.Longitude, &loc.PlaceID); err != nil {
			metrics.StoreErrorsTotal.WithLabelValues("list").Inc()
			return nil, &StoreError{Op: "list", Err: err}
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("list").Inc()
		return nil, &StoreError{Op: "list", Err: err}
	}
	return locations, nil
}

// rebind rewrites ? placeholders as $n for postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
