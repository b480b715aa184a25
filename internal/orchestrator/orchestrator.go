// Package orchestrator coordinates the analyzer with report persistence and
// provenance logging. The CLI, HTTP and gRPC surfaces all go through it.
package orchestrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielpatrickdp/cadynamics/internal/analysis"
	"github.com/danielpatrickdp/cadynamics/internal/logging"
	"github.com/danielpatrickdp/cadynamics/internal/rulehint"
	"github.com/danielpatrickdp/cadynamics/internal/store"
	"github.com/danielpatrickdp/cadynamics/internal/wolfram"
)

// ErrNoStore is returned by report queries when persistence is disabled.
var ErrNoStore = errors.New("report store disabled")

// #region orchestrator-struct

// Orchestrator is the top-level coordinator. A nil store disables
// persistence; analysis still runs.
type Orchestrator struct {
	analyzer *analysis.Analyzer
	store    *store.Store
	logger   *slog.Logger
}

// #endregion orchestrator-struct

// #region constructor

// NewOrchestrator wires an analyzer with an optional store.
func NewOrchestrator(a *analysis.Analyzer, st *store.Store, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{analyzer: a, store: st, logger: logger}
}

// Persistent reports whether reports are saved.
func (o *Orchestrator) Persistent() bool {
	return o.store != nil
}

// Analyzer returns the wrapped analyzer.
func (o *Orchestrator) Analyzer() *analysis.Analyzer {
	return o.analyzer
}

// #endregion constructor

// #region analyze

// Analyze runs the pipeline and, when persistent, stores the report and its
// provenance under the given trigger.
func (o *Orchestrator) Analyze(ctx context.Context, in analysis.Input, trigger string) (*analysis.Report, error) {
	rep, err := o.analyzer.Analyze(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := o.record(ctx, trigger, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// AnalyzeBatch analyzes inputs concurrently and records every report.
func (o *Orchestrator) AnalyzeBatch(ctx context.Context, inputs []analysis.Input, trigger string) ([]*analysis.Report, error) {
	reps, err := o.analyzer.AnalyzeBatch(ctx, inputs)
	if err != nil {
		return nil, err
	}
	if err := o.record(ctx, trigger, reps...); err != nil {
		return nil, err
	}
	return reps, nil
}

// Record persists reports produced elsewhere, e.g. by a replay run.
func (o *Orchestrator) Record(ctx context.Context, trigger string, reps ...*analysis.Report) error {
	return o.record(ctx, trigger, reps...)
}

// record saves reports and their provenance in one transaction, so either
// every report is stored with its entry or nothing is.
func (o *Orchestrator) record(ctx context.Context, trigger string, reps ...*analysis.Report) error {
	if o.store == nil || len(reps) == 0 {
		return nil
	}
	err := o.store.InTx(ctx, func(tx *sql.Tx) error {
		for _, rep := range reps {
			if err := o.store.SaveReportTx(ctx, tx, rep); err != nil {
				return err
			}
			entry, err := logging.EntryFor(rep, trigger, o.analyzer.Config())
			if err != nil {
				return err
			}
			if err := logging.LogDecision(ctx, tx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record reports: %w", err)
	}
	o.logger.Debug("reports recorded", "count", len(reps), "trigger", trigger)
	return nil
}

// #endregion analyze

// #region stateless

// Classify scores a feature map without running the pipeline.
func (o *Orchestrator) Classify(features map[string]float64) wolfram.Result {
	res := wolfram.ClassifyMap(features)
	o.logger.Debug("classified features", "class", res.Class.String(), "confidence", res.Confidence)
	return res
}

// RuleHint analyzes an elementary rule number.
func (o *Orchestrator) RuleHint(rule int) (rulehint.Report, error) {
	return rulehint.AnalyzeRule(rule)
}

// WiringHint analyzes a wiring diagram document.
func (o *Orchestrator) WiringHint(data []byte) (rulehint.Report, error) {
	w, err := rulehint.ParseWiring(data)
	if err != nil {
		return rulehint.Report{}, err
	}
	return rulehint.AnalyzeWiring(w)
}

// #endregion stateless

// #region queries

// Report returns a stored report.
func (o *Orchestrator) Report(ctx context.Context, id string) (store.Record, error) {
	if o.store == nil {
		return store.Record{}, ErrNoStore
	}
	return o.store.GetReport(ctx, id)
}

// Reports lists stored reports, newest first.
func (o *Orchestrator) Reports(ctx context.Context, limit int) ([]store.Record, error) {
	if o.store == nil {
		return nil, ErrNoStore
	}
	return o.store.ListReports(ctx, limit)
}

// Provenance returns the provenance entries of a stored report.
func (o *Orchestrator) Provenance(ctx context.Context, id string) ([]logging.ProvenanceEntry, error) {
	if o.store == nil {
		return nil, ErrNoStore
	}
	return logging.Decisions(ctx, o.store.DB(), id)
}

// ClassCounts returns the number of stored reports per class.
func (o *Orchestrator) ClassCounts(ctx context.Context) (map[string]int, error) {
	if o.store == nil {
		return nil, ErrNoStore
	}
	return o.store.CountByClass(ctx)
}

// #endregion queries
