package analysis

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("cadynamics.analysis")
	meter  = otel.Meter("cadynamics.analysis")
)

var (
	analyzeLatency metric.Float64Histogram
	analyzeTotal   metric.Int64Counter
	classTotal     metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics registers the instruments once. Safe to call repeatedly.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		analyzeLatency, err = meter.Float64Histogram(
			"analysis_duration_seconds",
			metric.WithDescription("Duration of a full run analysis"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		analyzeTotal, err = meter.Int64Counter(
			"analysis_total",
			metric.WithDescription("Total number of run analyses"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		classTotal, err = meter.Int64Counter(
			"analysis_class_total",
			metric.WithDescription("Classifications by Wolfram class"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startAnalyzeSpan(ctx context.Context, source string, generations, width int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Analyzer.Analyze",
		trace.WithAttributes(
			attribute.String("analysis.source", source),
			attribute.Int("analysis.generations", generations),
			attribute.Int("analysis.width", width),
		),
	)
}

func startStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Analyzer."+stage)
}

func recordAnalyzeMetrics(ctx context.Context, duration time.Duration, class string, success bool) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	analyzeLatency.Record(ctx, duration.Seconds(), attrs)
	analyzeTotal.Add(ctx, 1, attrs)
	if success {
		classTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("class", class)))
	}
}
