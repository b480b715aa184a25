package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/cadynamics/internal/analysis"
	"github.com/danielpatrickdp/cadynamics/internal/history"
	"github.com/danielpatrickdp/cadynamics/internal/logging"
	"github.com/danielpatrickdp/cadynamics/internal/replay"
)

// #region replay-cmd

func newReplayCmd(a *app) *cobra.Command {
	var persist bool
	cmd := &cobra.Command{
		Use:   "replay <fixture.json>",
		Short: "Re-run recorded cases and compare with their expected classes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := replay.LoadFixture(args[0])
			if err != nil {
				return err
			}
			cfg := f.Config.ToAnalysisConfig(a.cfg.Analysis)
			analyzer := analysis.NewAnalyzer(cfg, a.logger)

			results, err := replay.Replay(cmd.Context(), analyzer, f.Cases)
			if err != nil {
				return err
			}

			if persist {
				orch, closeStore, err := a.openOrchestrator(true)
				if err != nil {
					return err
				}
				defer closeStore()
				var reps []*analysis.Report
				for _, r := range results {
					if r.Report != nil {
						reps = append(reps, r.Report)
					}
				}
				if err := orch.Record(cmd.Context(), logging.TriggerReplay, reps...); err != nil {
					return err
				}
			}

			summary := replay.Summarize(results)
			if a.jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), struct {
					Results []replay.Result `json:"results"`
					Summary replay.Summary  `json:"summary"`
				}{stripReports(results), summary}); err != nil {
					return err
				}
			} else {
				printComparison(cmd.OutOrStdout(), results, summary)
			}
			if diverge := summary.Failed + summary.Errored; diverge > 0 {
				return fmt.Errorf("%d of %d cases diverge", diverge, summary.Total)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&persist, "store", false, "save replayed reports to the report database")
	return cmd
}

func stripReports(results []replay.Result) []replay.Result {
	out := make([]replay.Result, len(results))
	for i, r := range results {
		r.Report = nil
		out[i] = r
	}
	return out
}

// printComparison outputs one row per case and a summary line.
func printComparison(w io.Writer, results []replay.Result, s replay.Summary) {
	fmt.Fprintf(w, "%-24s| %-9s| %-9s| %-10s| %s\n", "Case", "Expected", "Replayed", "Confidence", "Match")
	fmt.Fprintf(w, "%-24s+%-9s+%-9s+%-10s+%s\n",
		"------------------------", "----------", "----------", "-----------", "------")
	for _, r := range results {
		match := "OK"
		got := r.Class.String()
		switch {
		case r.Report == nil:
			match, got = "ERROR", "-"
		case !r.Passed:
			match = "DIFF"
		}
		fmt.Fprintf(w, "%-24s| %-9s| %-9s| %10.3f| %s\n", r.Name, r.Expected, got, r.Confidence, match)
		if !r.Passed {
			fmt.Fprintf(w, "%-24s  %s\n", "", r.Reason)
		}
	}
	fmt.Fprintf(w, "\nSummary: %d total, %d match, %d diverge, %d error\n", s.Total, s.Passed, s.Failed, s.Errored)
}

// #endregion replay-cmd

// #region fixture-cmd

func newFixtureCmd(a *app) *cobra.Command {
	var (
		out         string
		description string
		rule        int
	)
	cmd := &cobra.Command{
		Use:   "fixture <history>...",
		Short: "Snapshot the current classification of histories into a replay fixture",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			analyzer := analysis.NewAnalyzer(a.cfg.Analysis, a.logger)
			f := replay.Fixture{
				Description: description,
				Config: replay.FixtureConfig{
					K:           a.cfg.Analysis.Info.K,
					Radius:      a.cfg.Analysis.Info.Radius,
					MaxPeriod:   a.cfg.Analysis.Periodicity.MaxPeriod,
					MinStrength: a.cfg.Analysis.Periodicity.MinStrength,
				},
			}
			for _, p := range args {
				h, err := history.Load(p)
				if err != nil {
					return err
				}
				fc := replay.FixtureCase{Name: filepath.Base(p), Genotype: h}
				if cmd.Flags().Changed("rule") {
					r := rule
					fc.Rule = &r
				}
				rep, err := analyzer.Analyze(cmd.Context(), fc.ToInput())
				if err != nil {
					return err
				}
				fc.Expected = expectationOf(rep)
				f.Cases = append(f.Cases, fc)
			}

			data, err := json.MarshalIndent(f, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal fixture: %w", err)
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("write fixture: %w", err)
			}
			a.logger.Info("fixture written", "path", out, "cases", len(f.Cases))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output fixture path (stdout when empty)")
	cmd.Flags().StringVar(&description, "description", "", "fixture description")
	cmd.Flags().IntVar(&rule, "rule", 0, "elementary rule of every history")
	return cmd
}

// expectationOf freezes a report into expectations. Confidence is floored
// to two decimals.
func expectationOf(rep *analysis.Report) replay.FixtureExpected {
	periodic := rep.Bands.Periodicity.Periodic
	exp := replay.FixtureExpected{
		Class:         rep.Classification.Class,
		MinConfidence: math.Floor(rep.Classification.Confidence*100) / 100,
		Periodic:      &periodic,
	}
	if rep.RuleHint != nil {
		c := rep.RuleHint.Hint.Class
		exp.RuleHint = &c
	}
	return exp
}

// #endregion fixture-cmd
