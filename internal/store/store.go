// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store keeps a history of check results in SQLite so reviewers can
// list, inspect, and export past reports.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/copycheck/pkg/types"
)

// ErrNotFound is returned when no report has the requested ID.
var ErrNotFound = errors.New("report not found")

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store manages the report history database.
type Store struct {
	db         *sql.DB
	maxResults int
	now        func() time.Time
}

// New opens or creates the database at cfg.Path, creating parent
// directories and the schema as needed.
func New(cfg types.StoreConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			highest_similarity REAL NOT NULL,
			risk_level TEXT NOT NULL,
			is_ai_verified INTEGER NOT NULL,
			matches TEXT NOT NULL,
			verdict TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_risk_level ON reports(risk_level)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save persists result under a fresh ID and returns the stored report.
func (s *Store) Save(ctx context.Context, label string, result types.CheckResult) (types.Report, error) {
	if result.Matches == nil {
		result.Matches = []types.SimilarityMatch{}
	}
	r := types.Report{
		ID:          uuid.NewString(),
		Label:       strings.TrimSpace(label),
		CreatedAt:   s.now().UTC(),
		CheckResult: result,
	}

	matchesJSON, err := json.Marshal(r.Matches)
	if err != nil {
		return types.Report{}, fmt.Errorf("marshaling matches: %w", err)
	}
	var verdictJSON sql.NullString
	if r.AIVerdict != nil {
		b, err := json.Marshal(r.AIVerdict)
		if err != nil {
			return types.Report{}, fmt.Errorf("marshaling verdict: %w", err)
		}
		verdictJSON = sql.NullString{String: string(b), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Report{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reports (id, label, created_at, highest_similarity, risk_level, is_ai_verified, matches, verdict)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Label, r.CreatedAt.Format(timeLayout), r.HighestSimilarity,
		string(r.RiskLevel), r.IsAIVerified, string(matchesJSON), verdictJSON,
	)
	if err != nil {
		return types.Report{}, fmt.Errorf("inserting report: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return types.Report{}, fmt.Errorf("committing report: %w", err)
	}
	return r, nil
}

const selectColumns = `SELECT id, label, created_at, highest_similarity, risk_level, is_ai_verified, matches, verdict FROM reports`

// Get returns the report with id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (types.Report, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Report{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return r, err
}

// ListOptions filters report listings.
type ListOptions struct {
	// RiskLevel restricts results to one tier. Empty means all.
	RiskLevel types.RiskLevel

	// Limit caps the result count. Zero uses the store default.
	Limit int
}

// List returns reports newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.Report, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.maxResults
	}
	return s.query(ctx, opts.RiskLevel, limit)
}

// query selects reports newest first. A limit of zero returns every row.
func (s *Store) query(ctx context.Context, level types.RiskLevel, limit int) ([]types.Report, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(selectColumns)
	qb.WriteString(` WHERE 1=1`)
	if level != "" {
		qb.WriteString(` AND risk_level = ?`)
		args = append(args, string(level))
	}
	qb.WriteString(` ORDER BY created_at DESC, rowid DESC`)
	if limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	reports := []types.Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}
	return reports, nil
}

// Delete removes the report with id, or returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting report: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(sc scanner) (types.Report, error) {
	var (
		r           types.Report
		createdAt   string
		riskLevel   string
		matchesJSON string
		verdictJSON sql.NullString
	)
	if err := sc.Scan(&r.ID, &r.Label, &createdAt, &r.HighestSimilarity, &riskLevel,
		&r.IsAIVerified, &matchesJSON, &verdictJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Report{}, err
		}
		return types.Report{}, fmt.Errorf("scanning report: %w", err)
	}

	r.RiskLevel = types.RiskLevel(riskLevel)
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return types.Report{}, fmt.Errorf("report %s: parsing created_at: %w", r.ID, err)
	}
	r.CreatedAt = t

	r.Matches = []types.SimilarityMatch{}
	if err := json.Unmarshal([]byte(matchesJSON), &r.Matches); err != nil {
		return types.Report{}, fmt.Errorf("report %s: decoding matches: %w", r.ID, err)
	}
	if verdictJSON.Valid {
		var v types.SemanticVerdict
		if err := json.Unmarshal([]byte(verdictJSON.String), &v); err != nil {
			return types.Report{}, fmt.Errorf("report %s: decoding verdict: %w", r.ID, err)
		}
		r.AIVerdict = &v
	}
	return r, nil
}
