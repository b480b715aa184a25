// Package analysis runs the full pipeline over a run: band analysis,
// information dynamics, history statistics, Wolfram classification, epoch
// collapse scoring and, when the rule is known, the structural rule hint.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/cadynamics/internal/bands"
	"github.com/danielpatrickdp/cadynamics/internal/collapse"
	"github.com/danielpatrickdp/cadynamics/internal/features"
	"github.com/danielpatrickdp/cadynamics/internal/history"
	"github.com/danielpatrickdp/cadynamics/internal/infotheory"
	"github.com/danielpatrickdp/cadynamics/internal/rulehint"
	"github.com/danielpatrickdp/cadynamics/internal/wolfram"
)

// #region analyzer

// Analyzer runs the pipeline with a fixed configuration. It holds no
// per-run state and is safe for concurrent use.
type Analyzer struct {
	config Config
	scorer *collapse.Scorer
	logger *slog.Logger
	now    func() time.Time
}

// NewAnalyzer creates an analyzer. A nil logger discards output.
func NewAnalyzer(config Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{
		config: config,
		scorer: collapse.NewScorer(config.Collapse, features.HalfSummarizer{}),
		logger: logger,
		now:    time.Now,
	}
}

// Config returns the analyzer's configuration.
func (a *Analyzer) Config() Config { return a.config }

// #endregion analyzer

// #region analyze

// Analyze runs every stage over in. Cancellation is checked between stages.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*Report, error) {
	start := a.now()
	h := in.Genotype
	ctx, span := startAnalyzeSpan(ctx, in.Source, h.Len(), h.Width())
	defer span.End()

	rep, err := a.analyze(ctx, in)
	elapsed := a.now().Sub(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		recordAnalyzeMetrics(ctx, elapsed, "", false)
		a.logger.Warn("analysis failed", "source", in.Source, "error", err)
		return nil, err
	}

	rep.DurationMS = float64(elapsed.Microseconds()) / 1000
	class := rep.Classification.Class.String()
	span.SetAttributes(
		attribute.String("analysis.class", class),
		attribute.Float64("analysis.confidence", rep.Classification.Confidence),
	)
	recordAnalyzeMetrics(ctx, elapsed, class, true)
	a.logger.Info("analysis complete",
		"id", rep.ID,
		"source", in.Source,
		"generations", rep.Generations,
		"class", class,
		"confidence", rep.Classification.Confidence,
		"collapse_score", rep.Collapse.Score,
	)
	return rep, nil
}

func (a *Analyzer) analyze(ctx context.Context, in Input) (*Report, error) {
	h := in.Genotype
	if h.Len() == 0 {
		return nil, fmt.Errorf("analyze %q: genotype: %w", in.Source, history.ErrEmptyHistory)
	}
	run := collapse.Run{Genotype: h, Phenotype: in.Phenotype}
	if err := run.Check(); err != nil {
		return nil, fmt.Errorf("analyze %q: %w", in.Source, err)
	}

	rep := &Report{
		ID:          uuid.NewString(),
		Source:      in.Source,
		CreatedAt:   a.now().UTC(),
		Generations: h.Len(),
		Width:       h.Width(),
	}

	// 1. Bands
	_, span := startStageSpan(ctx, "Bands")
	br, err := bands.AnalyzeHistory(h, a.config.Periodicity)
	span.End()
	if err != nil {
		return nil, fmt.Errorf("analyze %q: bands: %w", in.Source, err)
	}
	rep.Bands = br
	a.logger.Debug("bands", "interpretation", br.Summary.Interpretation, "band_count", br.BandCount,
		"periodic", br.Periodicity.Periodic, "period", br.Periodicity.Period)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2. Information dynamics
	_, span = startStageSpan(ctx, "InfoDynamics")
	ir, err := infotheory.Analyze(h, a.config.Info)
	span.End()
	if err != nil {
		return nil, fmt.Errorf("analyze %q: info dynamics: %w", in.Source, err)
	}
	rep.Info = ir
	a.logger.Debug("info dynamics", "mean_te", ir.TransferEntropy.MeanTE, "ais_mean", ir.ActiveInfoStorage.Mean,
		"transport", ir.InformationTransportScore)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Statistics and feature map
	rep.Stats = features.Compute(h)
	rep.Features = MergeFeatures(rep.Stats.Map(), br.Features(), ir.Features(), in.Collaborators.Map())

	// 4. Classification
	rep.Classification = wolfram.ClassifyMap(rep.Features)

	// 5. Collapse
	_, span = startStageSpan(ctx, "Collapse")
	rep.Collapse = a.scorer.ScoreRun(run, in.Mutations)
	span.End()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 6. Rule hint
	if in.Rule != nil {
		rh, err := rulehint.AnalyzeRule(*in.Rule)
		if err != nil {
			return nil, fmt.Errorf("analyze %q: rule hint: %w", in.Source, err)
		}
		rep.RuleHint = &rh
	}
	return rep, nil
}

// MergeFeatures combines feature maps. Later maps win on key collisions.
func MergeFeatures(parts ...map[string]float64) map[string]float64 {
	out := make(map[string]float64)
	for _, p := range parts {
		maps.Copy(out, p)
	}
	return out
}

// #endregion analyze

// #region batch

// AnalyzeBatch analyzes inputs concurrently, at most BatchConcurrency at a
// time. Reports are returned in input order. The first failure cancels the
// remaining work.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, inputs []Input) ([]*Report, error) {
	reports := make([]*Report, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	limit := a.config.BatchConcurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep, err := a.Analyze(gctx, inputs[i])
			if err != nil {
				return fmt.Errorf("batch item %d: %w", i, err)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// #endregion batch
