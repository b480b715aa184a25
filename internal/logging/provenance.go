package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/cadynamics/internal/analysis"
)

// #region entry-for

// EntryFor builds the provenance entry for a freshly produced report.
func EntryFor(rep *analysis.Report, trigger string, cfg analysis.Config) (ProvenanceEntry, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return ProvenanceEntry{}, fmt.Errorf("marshal config: %w", err)
	}
	return ProvenanceEntry{
		ReportID:    rep.ID,
		TriggerType: trigger,
		Class:       rep.Classification.Class.String(),
		Confidence:  rep.Classification.Confidence,
		ConfigJSON:  string(cfgJSON),
		Reason:      rep.Classification.Reasoning,
		CreatedAt:   rep.CreatedAt,
	}, nil
}

// #endregion entry-for

// #region log-decision

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// LogDecision writes a provenance entry to the provenance_log table. Pass a
// *sql.Tx to write it together with the report row.
func LogDecision(ctx context.Context, db Execer, entry ProvenanceEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO provenance_log (report_id, trigger_type, class, confidence, config_json, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ReportID,
		entry.TriggerType,
		entry.Class,
		entry.Confidence,
		nullIfEmpty(entry.ConfigJSON),
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// Decisions returns the provenance entries of a report, oldest first.
func Decisions(ctx context.Context, db *sql.DB, reportID string) ([]ProvenanceEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT report_id, trigger_type, class, confidence, config_json, reason, created_at
		 FROM provenance_log WHERE report_id = ? ORDER BY id`, reportID)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []ProvenanceEntry
	for rows.Next() {
		var e ProvenanceEntry
		var cfgJSON, reason sql.NullString
		var createdAt string
		if err := rows.Scan(&e.ReportID, &e.TriggerType, &e.Class, &e.Confidence, &cfgJSON, &reason, &createdAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		e.ConfigJSON = cfgJSON.String
		e.Reason = reason.String
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion log-decision

// #region helpers

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
