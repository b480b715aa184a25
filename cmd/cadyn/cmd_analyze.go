package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/cadynamics/internal/analysis"
	"github.com/danielpatrickdp/cadynamics/internal/history"
	"github.com/danielpatrickdp/cadynamics/internal/logging"
)

// #region analyze-cmd

type analyzeFlags struct {
	phenotype     string
	mutations     []int
	rule          int
	persist       bool
	collaborators analysis.Collaborators
}

func newAnalyzeCmd(a *app) *cobra.Command {
	f := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze <history>...",
		Short: "Run the full analysis over one or more history files",
		Long: `Each history file holds one generation per line ("0110...") or a JSON
array of rows. Several files are analyzed concurrently; the phenotype,
mutation and collaborator flags apply to every file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := f.inputs(args, cmd.Flags().Changed("rule"))
			if err != nil {
				return err
			}
			orch, closeStore, err := a.openOrchestrator(f.persist)
			if err != nil {
				return err
			}
			defer closeStore()

			reps, err := orch.AnalyzeBatch(cmd.Context(), inputs, logging.TriggerCLI)
			if err != nil {
				return err
			}
			if a.jsonOut {
				if len(reps) == 1 {
					return writeJSON(cmd.OutOrStdout(), reps[0])
				}
				return writeJSON(cmd.OutOrStdout(), reps)
			}
			for _, rep := range reps {
				printReport(cmd.OutOrStdout(), rep)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&f.phenotype, "phenotype", "", "phenotype history file (same generations as the genotype)")
	cmd.Flags().IntSliceVar(&f.mutations, "mutations", nil, "mutation ticks that split the run into epochs")
	cmd.Flags().IntVar(&f.rule, "rule", 0, "elementary rule number for the structural hint")
	cmd.Flags().BoolVar(&f.persist, "store", false, "save reports to the report database")
	cmd.Flags().Float64Var(&f.collaborators.DomainFraction, "domain-fraction", 0, "domain fraction from the domain detector")
	cmd.Flags().Float64Var(&f.collaborators.CompressionCV, "compression-cv", 0, "compression coefficient of variation")
	cmd.Flags().Float64Var(&f.collaborators.ParticleCount, "particles", 0, "particle count from the particle tracker")
	cmd.Flags().Float64Var(&f.collaborators.SpeciesCount, "species", 0, "particle species count")
	cmd.Flags().Float64Var(&f.collaborators.MaxLifetime, "max-lifetime", 0, "longest particle lifetime in generations")
	return cmd
}

func (f *analyzeFlags) inputs(paths []string, withRule bool) ([]analysis.Input, error) {
	var phenotype history.History
	if f.phenotype != "" {
		var err error
		if phenotype, err = history.Load(f.phenotype); err != nil {
			return nil, err
		}
	}
	inputs := make([]analysis.Input, 0, len(paths))
	for _, p := range paths {
		h, err := history.Load(p)
		if err != nil {
			return nil, err
		}
		in := analysis.Input{
			Source:        filepath.Base(p),
			Genotype:      h,
			Phenotype:     phenotype,
			Mutations:     f.mutations,
			Collaborators: f.collaborators,
		}
		if withRule {
			rule := f.rule
			in.Rule = &rule
		}
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// #endregion analyze-cmd

// #region print

func printReport(w io.Writer, rep *analysis.Report) {
	c := rep.Classification
	fmt.Fprintf(w, "%s  (%s, %d generations x %d cells)\n", rep.Source, rep.ID, rep.Generations, rep.Width)
	fmt.Fprintf(w, "  class          %s (%s) confidence %.3f\n", c.Class, c.Class.Name(), c.Confidence)
	fmt.Fprintf(w, "  reasoning      %s\n", c.Reasoning)
	fmt.Fprintf(w, "  scores         I=%.3f II=%.3f III=%.3f IV=%.3f\n",
		c.Scores["I"], c.Scores["II"], c.Scores["III"], c.Scores["IV"])
	fmt.Fprintf(w, "  bands          %s (%d active)\n", rep.Bands.Summary.Interpretation, rep.Bands.BandCount)
	if p := rep.Bands.Periodicity; p.Periodic {
		fmt.Fprintf(w, "  periodicity    period %d strength %.3f\n", p.Period, p.Strength)
	}
	fmt.Fprintf(w, "  transfer ent.  mean %.4f bits, transport %.4f\n",
		rep.Info.TransferEntropy.MeanTE, rep.Info.InformationTransportScore)
	fmt.Fprintf(w, "  active info    mean %.4f bits\n", rep.Info.ActiveInfoStorage.Mean)
	fmt.Fprintf(w, "  collapse       score %.3f over %d epochs\n", rep.Collapse.Score, len(rep.Collapse.Epochs))
	if rh := rep.RuleHint; rh != nil {
		fmt.Fprintf(w, "  rule %-9d class %s confidence %.2f (affine=%t surjective=%t)\n",
			rh.Rule, rh.Hint.Class, rh.Hint.Confidence, rh.Affine, rh.Surjective)
	}
}

// #endregion print
