package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/crunchclean/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgxpool.Pool used by Postgres, so tests can
// substitute a fake.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	createResultsTable = `CREATE TABLE IF NOT EXISTS clean_results (
	id         uuid PRIMARY KEY,
	payload    jsonb NOT NULL,
	created_at timestamptz NOT NULL,
	expires_at timestamptz NOT NULL
)`

	createExpiresIndex = `CREATE INDEX IF NOT EXISTS clean_results_expires_at_idx ON clean_results (expires_at)`

	upsertResult = `INSERT INTO clean_results (id, payload, created_at, expires_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at`

	selectResult = `SELECT payload FROM clean_results WHERE id = $1 AND expires_at > $2`

	deleteResult = `DELETE FROM clean_results WHERE id = $1`

	purgeResults = `DELETE FROM clean_results WHERE expires_at <= $1`
)

// Postgres stores results in the clean_results table.
type Postgres struct {
	db   DBTX
	pool *pgxpool.Pool
	ttl  time.Duration
	now  func() time.Time
}

// OpenPostgres connects a pool to databaseURL and verifies the connection.
func OpenPostgres(ctx context.Context, databaseURL string, maxConns int32, ttl time.Duration) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := NewPostgres(pool, ttl)
	p.pool = pool
	return p, nil
}

// NewPostgres creates a store on top of an existing connection.
// Close does not close db.
func NewPostgres(db DBTX, ttl time.Duration) *Postgres {
	return &Postgres{db: db, ttl: ttl, now: time.Now}
}

// Migrate creates the results table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range []string{createResultsTable, createExpiresIndex} {
		if _, err := p.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate clean_results: %w", err)
		}
	}
	return nil
}

// Put stores res, replacing any result with the same id.
func (p *Postgres) Put(ctx context.Context, res *core.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	now := p.now().UTC()
	if _, err := p.db.Exec(ctx, upsertResult, res.ID, payload, now, now.Add(p.ttl)); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// Get returns a live result.
func (p *Postgres) Get(ctx context.Context, id string) (*core.Result, error) {
	var payload []byte
	err := p.db.QueryRow(ctx, selectResult, id, p.now().UTC()).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrResultNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("select result: %w", err)
	}

	var res core.Result
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("decode result %s: %w", id, err)
	}
	return &res, nil
}

// Delete removes a result.
func (p *Postgres) Delete(ctx context.Context, id string) error {
	if _, err := p.db.Exec(ctx, deleteResult, id); err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	return nil
}

// PurgeExpired deletes expired rows and returns how many were removed.
func (p *Postgres) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := p.db.Exec(ctx, purgeResults, p.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge results: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Close closes the pool opened by OpenPostgres.
func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
