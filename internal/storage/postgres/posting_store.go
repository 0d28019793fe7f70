// Package postgres persists extracted postings in Postgres.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/careers-crawler/internal/crawler"
)

// DefaultTable is used when Config.Table is empty.
const DefaultTable = "job_postings"

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Begin(context.Context) (pgx.Tx, error)
	Close()
}

// PostingStore upserts posting records keyed by URL, so re-crawls refresh
// existing rows instead of duplicating them.
type PostingStore struct {
	pool  pool
	table string
}

// New connects a pool and returns a PostingStore.
func New(ctx context.Context, cfg Config) (*PostingStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &PostingStore{pool: p, table: table}, nil
}

// NewWithPool constructs a store from an existing pool (primarily for testing).
func NewWithPool(p pool, table string) (*PostingStore, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	name, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &PostingStore{pool: p, table: name}, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		table = DefaultTable
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// Close releases the underlying pool resources.
func (s *PostingStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// EnsureSchema creates the postings table when it does not exist.
func (s *PostingStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	url             TEXT PRIMARY KEY,
	run_id          TEXT NOT NULL,
	site            TEXT NOT NULL,
	title           TEXT NOT NULL,
	required_skills TEXT[] NOT NULL,
	years_required  TEXT NOT NULL,
	seniority       TEXT NOT NULL,
	domain          TEXT NOT NULL,
	location        TEXT,
	description     TEXT NOT NULL,
	scraped_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", s.table, err)
	}
	return nil
}

// UpsertPostings writes all records in one transaction.
func (s *PostingStore) UpsertPostings(ctx context.Context, runID string, site string, records []crawler.PostingRecord) (err error) {
	if s == nil || s.pool == nil {
		return fmt.Errorf("posting store is not configured")
	}
	if len(records) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
		}
	}()

	query := s.upsertQuery()
	for _, rec := range records {
		if rec.URL == "" {
			return fmt.Errorf("record url is required")
		}
		skills := rec.RequiredSkills
		if skills == nil {
			skills = []string{}
		}
		if _, err = tx.Exec(ctx, query,
			rec.URL,
			runID,
			site,
			rec.Title,
			skills,
			rec.YearsRequired,
			string(rec.Seniority),
			string(rec.Domain),
			rec.Location,
			rec.Description,
		); err != nil {
			return fmt.Errorf("upsert posting %s: %w", rec.URL, err)
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

func (s *PostingStore) upsertQuery() string {
	return fmt.Sprintf(`
INSERT INTO %s (
	url,
	run_id,
	site,
	title,
	required_skills,
	years_required,
	seniority,
	domain,
	location,
	description
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)
ON CONFLICT (url) DO UPDATE SET
	run_id = EXCLUDED.run_id,
	site = EXCLUDED.site,
	title = EXCLUDED.title,
	required_skills = EXCLUDED.required_skills,
	years_required = EXCLUDED.years_required,
	seniority = EXCLUDED.seniority,
	domain = EXCLUDED.domain,
	location = EXCLUDED.location,
	description = EXCLUDED.description,
	scraped_at = now()`, s.table)
}
