package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/trustlens/trustlens/internal/logging"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// SQLiteStore stores reports in a single SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at path. The path
// ":memory:" gives a private in-memory database.
func NewSQLiteStore(path string, logger logging.Logger) (*SQLiteStore, error) {
	if logger == nil {
		return nil, errors.New("history: nil logger provided")
	}
	if path == "" {
		return nil, errors.New("history: sqlite path is empty")
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// each pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := applySQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info("sqlite history store initialized", logging.F("path", path))
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Pragmas go in the DSN so the driver applies them to every pooled
// connection, not just the one that happens to run an Exec.
var sqlitePragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"temp_store(MEMORY)",
}

func sqliteDSN(path string) string {
	q := make([]string, 0, len(sqlitePragmas))
	for _, p := range sqlitePragmas {
		q = append(q, "_pragma="+p)
	}
	return path + "?" + strings.Join(q, "&")
}

func applySQLiteSchema(db *sql.DB) error {
	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, r *Report) error {
	if err := prepare(r); err != nil {
		return err
	}
	resultJSON, err := json.Marshal(r.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (id, url, canonical_url, final_score, risk_tier, result_json, text_sample, image_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.URL, r.CanonicalURL, r.Result.FinalScore, string(r.Result.RiskTier),
		string(resultJSON), r.TextSample, r.ImageCount, r.CreatedAt.UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

const sqliteSelect = `SELECT id, url, canonical_url, result_json, text_sample, image_count, created_at FROM reports`

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Report, error) {
	row := s.db.QueryRowContext(ctx, sqliteSelect+` WHERE id = ?`, id)
	r, err := scanSQLiteReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*Report, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelect+` ORDER BY created_at DESC, id ASC LIMIT ?`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	out := []*Report{}
	for rows.Next() {
		r, err := scanSQLiteReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Previous(ctx context.Context, canonicalURL string, before time.Time) (*Report, error) {
	row := s.db.QueryRowContext(ctx, sqliteSelect+`
		WHERE canonical_url = ? AND created_at < ?
		ORDER BY created_at DESC LIMIT 1`, canonicalURL, before.UTC().UnixNano())
	r, err := scanSQLiteReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteReport(row rowScanner) (*Report, error) {
	var (
		r          Report
		resultJSON string
		createdAt  int64
	)
	if err := row.Scan(&r.ID, &r.URL, &r.CanonicalURL, &resultJSON, &r.TextSample, &r.ImageCount, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(resultJSON), &r.Result); err != nil {
		return nil, fmt.Errorf("decode result of report %s: %w", r.ID, err)
	}
	r.CreatedAt = time.Unix(0, createdAt).UTC()
	return &r, nil
}
