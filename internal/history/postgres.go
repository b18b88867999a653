package history

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trustlens/trustlens/internal/logging"
)

//go:embed schema_postgres.sql
var postgresSchema string

// PostgresStore stores reports in PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to dsn, verifies the connection and applies the
// schema.
func NewPostgresStore(ctx context.Context, dsn string, logger logging.Logger) (*PostgresStore, error) {
	if logger == nil {
		return nil, errors.New("history: nil logger provided")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info("postgres history store initialized", logging.F("host", cfg.ConnConfig.Host))
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (p *PostgresStore) Save(ctx context.Context, r *Report) error {
	if err := prepare(r); err != nil {
		return err
	}
	resultJSON, err := json.Marshal(r.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO reports (id, url, canonical_url, final_score, risk_tier, result_json, text_sample, image_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.URL, r.CanonicalURL, r.Result.FinalScore, string(r.Result.RiskTier),
		resultJSON, r.TextSample, r.ImageCount, r.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

const postgresSelect = `SELECT id::text, url, canonical_url, result_json, text_sample, image_count, created_at FROM reports`

func (p *PostgresStore) Get(ctx context.Context, id string) (*Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	r, err := scanPostgresReport(p.pool.QueryRow(ctx, postgresSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func (p *PostgresStore) List(ctx context.Context, limit int) ([]*Report, error) {
	rows, err := p.pool.Query(ctx, postgresSelect+` ORDER BY created_at DESC, id ASC LIMIT $1`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	out := []*Report{}
	for rows.Next() {
		r, err := scanPostgresReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PostgresStore) Previous(ctx context.Context, canonicalURL string, before time.Time) (*Report, error) {
	r, err := scanPostgresReport(p.pool.QueryRow(ctx, postgresSelect+`
		WHERE canonical_url = $1 AND created_at < $2
		ORDER BY created_at DESC LIMIT 1`, canonicalURL, before.UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

func scanPostgresReport(row pgx.Row) (*Report, error) {
	var (
		r          Report
		resultJSON []byte
	)
	if err := row.Scan(&r.ID, &r.URL, &r.CanonicalURL, &resultJSON, &r.TextSample, &r.ImageCount, &r.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resultJSON, &r.Result); err != nil {
		return nil, fmt.Errorf("decode result of report %s: %w", r.ID, err)
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}
