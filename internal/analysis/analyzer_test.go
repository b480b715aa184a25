package analysis

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/cadynamics/internal/history"
	"github.com/danielpatrickdp/cadynamics/internal/wolfram"
)

// #region helpers

func frozenHistory(t *testing.T, n, w int) history.History {
	t.Helper()
	lines := make([]string, n)
	for i := range lines {
		lines[i] = strings.Repeat("0", w)
	}
	h, err := history.FromStrings(lines)
	require.NoError(t, err)
	return h
}

// rotatingHistory shifts "00001111" one cell per generation.
func rotatingHistory(t *testing.T, n int) history.History {
	t.Helper()
	base := "00001111"
	lines := make([]string, n)
	for i := range lines {
		s := i % len(base)
		lines[i] = base[s:] + base[:s]
	}
	h, err := history.FromStrings(lines)
	require.NoError(t, err)
	return h
}

func intPtr(v int) *int { return &v }

// #endregion helpers

func TestAnalyzeFrozenRunIsClassI(t *testing.T) {
	a := NewAnalyzer(DefaultConfig(), nil)
	rep, err := a.Analyze(context.Background(), Input{Source: "frozen", Genotype: frozenHistory(t, 12, 8)})
	require.NoError(t, err)

	assert.Equal(t, wolfram.ClassI, rep.Classification.Class)
	assert.InDelta(t, 1.0, rep.Classification.Confidence, 1e-9)
	assert.Equal(t, 12, rep.Generations)
	assert.Equal(t, 8, rep.Width)
	assert.NotEmpty(t, rep.ID)
	assert.Equal(t, 1.0, rep.Features["frozen_ratio"])
	assert.Zero(t, rep.Info.TransferEntropy.MeanTE)
	assert.Len(t, rep.Collapse.Epochs, 1)
	assert.True(t, rep.Collapse.Epochs[0].Early.Collapsed)
	assert.Nil(t, rep.RuleHint)
}

func TestAnalyzePeriodicRunIsClassII(t *testing.T) {
	a := NewAnalyzer(DefaultConfig(), nil)
	rep, err := a.Analyze(context.Background(), Input{Genotype: rotatingHistory(t, 48)})
	require.NoError(t, err)

	assert.True(t, rep.Bands.Periodicity.Periodic)
	assert.Equal(t, 8, rep.Bands.Periodicity.Period)
	assert.Equal(t, wolfram.ClassII, rep.Classification.Class, rep.Classification.Reasoning)
	assert.InDelta(t, 0.9, rep.Classification.Confidence, 1e-9)
}

func TestAnalyzeCollaboratorsDriveClassIV(t *testing.T) {
	a := NewAnalyzer(DefaultConfig(), nil)
	rep, err := a.Analyze(context.Background(), Input{
		Genotype: rotatingHistory(t, 48),
		Collaborators: Collaborators{
			DomainFraction: 0.75,
			CompressionCV:  0.2,
			ParticleCount:  3,
			SpeciesCount:   2,
			MaxLifetime:    8,
		},
		Rule: intPtr(110),
	})
	require.NoError(t, err)

	assert.Equal(t, wolfram.ClassIV, rep.Classification.Class, rep.Classification.Reasoning)
	assert.Greater(t, rep.Classification.Confidence, rep.Classification.Score(wolfram.ClassII))
	require.NotNil(t, rep.RuleHint)
	assert.Equal(t, wolfram.ClassIV, rep.RuleHint.Hint.Class)
}

func TestAnalyzeMutationsSplitEpochs(t *testing.T) {
	a := NewAnalyzer(DefaultConfig(), nil)
	h := rotatingHistory(t, 20)
	rep, err := a.Analyze(context.Background(), Input{Genotype: h, Phenotype: h, Mutations: []int{12, 5, 5}})
	require.NoError(t, err)

	require.Len(t, rep.Collapse.Epochs, 3)
	assert.Equal(t, []int{5, 12}, rep.Collapse.Mutations)
	assert.Equal(t, 12, rep.Collapse.Epochs[2].Start)
	assert.NotNil(t, rep.Collapse.Epochs[0].Early.Phenotype)
}

func TestAnalyzeRejectsEmptyGenotype(t *testing.T) {
	a := NewAnalyzer(DefaultConfig(), nil)
	_, err := a.Analyze(context.Background(), Input{Source: "empty"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, history.ErrEmptyHistory))
}

func TestAnalyzeRejectsMismatchedPhenotype(t *testing.T) {
	a := NewAnalyzer(DefaultConfig(), nil)
	genotype := frozenHistory(t, 20, 4)
	tests := []struct {
		name      string
		phenotype history.History
	}{
		{"shorter and narrower", frozenHistory(t, 3, 2)},
		{"shorter", frozenHistory(t, 19, 4)},
		{"longer", frozenHistory(t, 21, 4)},
		{"wider", frozenHistory(t, 20, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := a.Analyze(context.Background(), Input{Source: "pair", Genotype: genotype, Phenotype: tt.phenotype})
			require.Error(t, err)
			assert.Nil(t, rep)
			assert.ErrorIs(t, err, history.ErrSeriesMismatch)
			assert.Contains(t, err.Error(), "phenotype")
		})
	}
}

func TestAnalyzeKeepsPhenotypeInBothHalves(t *testing.T) {
	a := NewAnalyzer(DefaultConfig(), nil)
	h := frozenHistory(t, 20, 4)
	rep, err := a.Analyze(context.Background(), Input{Genotype: h, Phenotype: frozenHistory(t, 20, 4)})
	require.NoError(t, err)
	require.Len(t, rep.Collapse.Epochs, 1)
	assert.NotNil(t, rep.Collapse.Epochs[0].Early.Phenotype)
	assert.NotNil(t, rep.Collapse.Epochs[0].Late.Phenotype)
}

func TestAnalyzeRejectsBadRule(t *testing.T) {
	a := NewAnalyzer(DefaultConfig(), nil)
	_, err := a.Analyze(context.Background(), Input{Genotype: frozenHistory(t, 4, 4), Rule: intPtr(300)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule hint")
}

func TestAnalyzeHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := NewAnalyzer(DefaultConfig(), nil)
	_, err := a.Analyze(ctx, Input{Genotype: frozenHistory(t, 8, 8)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeLogsClassification(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	a := NewAnalyzer(DefaultConfig(), logger)

	_, err := a.Analyze(context.Background(), Input{Source: "logged", Genotype: frozenHistory(t, 6, 4)})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"analysis complete"`)
	assert.Contains(t, out, `"class":"I"`)
	assert.Contains(t, out, `"source":"logged"`)
}

func TestAnalyzeBatchKeepsOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchConcurrency = 2
	a := NewAnalyzer(cfg, nil)

	inputs := []Input{
		{Source: "a", Genotype: frozenHistory(t, 10, 8)},
		{Source: "b", Genotype: rotatingHistory(t, 48)},
		{Source: "c", Genotype: frozenHistory(t, 5, 3)},
	}
	reps, err := a.AnalyzeBatch(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, reps, 3)

	ids := map[string]bool{}
	for i, rep := range reps {
		assert.Equal(t, inputs[i].Source, rep.Source)
		ids[rep.ID] = true
	}
	assert.Len(t, ids, 3)
	assert.Equal(t, wolfram.ClassII, reps[1].Classification.Class)
}

func TestAnalyzeBatchFailsOnBadItem(t *testing.T) {
	a := NewAnalyzer(DefaultConfig(), nil)
	_, err := a.AnalyzeBatch(context.Background(), []Input{
		{Source: "ok", Genotype: frozenHistory(t, 4, 4)},
		{Source: "bad"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, history.ErrEmptyHistory)
}

func TestMergeFeaturesLaterWins(t *testing.T) {
	m := MergeFeatures(map[string]float64{"a": 1, "b": 2}, map[string]float64{"b": 3})
	assert.Equal(t, map[string]float64{"a": 1, "b": 3}, m)
}

func TestInputValidate(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want string
	}{
		{"ok", Input{Rule: intPtr(30), Collaborators: Collaborators{DomainFraction: 0.5}}, ""},
		{"rule too large", Input{Rule: intPtr(256)}, "Input.Rule"},
		{"negative particles", Input{Collaborators: Collaborators{ParticleCount: -1}}, "ParticleCount"},
		{"domain above one", Input{Collaborators: Collaborators{DomainFraction: 1.2}}, "DomainFraction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
