// Package store persists analysis reports in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/cadynamics/internal/analysis"
	"github.com/danielpatrickdp/cadynamics/internal/wolfram"
)

// ErrNotFound is returned when no report has the requested ID.
var ErrNotFound = errors.New("report not found")

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS reports (
	report_id      TEXT PRIMARY KEY,
	source         TEXT,
	class          TEXT NOT NULL,
	confidence     REAL NOT NULL,
	collapse_score REAL NOT NULL,
	generations    INTEGER NOT NULL,
	width          INTEGER NOT NULL,
	created_at     TEXT NOT NULL,
	payload        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS reports_created_at ON reports(created_at);

CREATE TABLE IF NOT EXISTS provenance_log (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	report_id      TEXT NOT NULL,
	trigger_type   TEXT NOT NULL,
	class          TEXT NOT NULL,
	confidence     REAL NOT NULL,
	config_json    TEXT,
	reason         TEXT,
	created_at     TEXT NOT NULL,
	FOREIGN KEY (report_id) REFERENCES reports(report_id)
);
`

// #endregion schema

// #region types

// Record is a stored report: summary columns plus the full report JSON.
type Record struct {
	ID            string          `json:"id"`
	Source        string          `json:"source,omitempty"`
	Class         wolfram.Class   `json:"class"`
	Confidence    float64         `json:"confidence"`
	CollapseScore float64         `json:"collapse_score"`
	Generations   int             `json:"generations"`
	Width         int             `json:"width"`
	CreatedAt     time.Time       `json:"created_at"`
	Payload       json.RawMessage `json:"report,omitempty"`
}

// Store manages persisted reports in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion types

// #region constructor

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region save

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveReport stores rep under its ID. Saving the same ID twice fails.
func (s *Store) SaveReport(ctx context.Context, rep *analysis.Report) error {
	return saveReport(ctx, s.db, rep)
}

// SaveReportTx stores rep inside tx.
func (s *Store) SaveReportTx(ctx context.Context, tx *sql.Tx, rep *analysis.Report) error {
	return saveReport(ctx, tx, rep)
}

// InTx runs fn in a transaction, committing only if fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func saveReport(ctx context.Context, db execer, rep *analysis.Report) error {
	if rep == nil || rep.ID == "" {
		return errors.New("save report: missing report ID")
	}
	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report %s: %w", rep.ID, err)
	}
	createdAt := rep.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO reports (report_id, source, class, confidence, collapse_score, generations, width, created_at, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.ID,
		nullIfEmpty(rep.Source),
		rep.Classification.Class.String(),
		rep.Classification.Confidence,
		rep.Collapse.Score,
		rep.Generations,
		rep.Width,
		createdAt.UTC().Format(time.RFC3339Nano),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert report %s: %w", rep.ID, err)
	}
	return nil
}

// #endregion save

// #region query

const selectColumns = `report_id, source, class, confidence, collapse_score, generations, width, created_at`

// GetReport returns the record with the given ID, payload included.
func (s *Store) GetReport(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+`, payload FROM reports WHERE report_id = ?`, id)

	var payload string
	rec, err := scanRecord(row, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get report %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get report %s: %w", id, err)
	}
	rec.Payload = json.RawMessage(payload)
	return rec, nil
}

// ListReports returns up to limit records, newest first, without payloads.
// A non-positive limit returns every record.
func (s *Store) ListReports(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM reports ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountByClass returns the number of stored reports per class numeral.
func (s *Store) CountByClass(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT class, COUNT(*) FROM reports GROUP BY class`)
	if err != nil {
		return nil, fmt.Errorf("count reports: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var class string
		var n int
		if err := rows.Scan(&class, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[class] = n
	}
	return counts, rows.Err()
}

// #endregion query

// #region helpers

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner, extra ...any) (Record, error) {
	var rec Record
	var source sql.NullString
	var class, createdAt string
	dest := append([]any{
		&rec.ID, &source, &class, &rec.Confidence, &rec.CollapseScore,
		&rec.Generations, &rec.Width, &createdAt,
	}, extra...)
	if err := sc.Scan(dest...); err != nil {
		return Record{}, err
	}
	rec.Source = source.String

	c, err := wolfram.ParseClass(class)
	if err != nil {
		return Record{}, err
	}
	rec.Class = c
	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at: %w", err)
	}
	return rec, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
