package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/cadynamics/internal/rulehint"
)

// #region classify-cmd

func newClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify [features.json|-]",
		Short: "Classify a precomputed feature map",
		Long:  `Reads a JSON object of feature name to value from the file or stdin.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			var features map[string]float64
			if err := json.Unmarshal(data, &features); err != nil {
				return fmt.Errorf("parse features: %w", err)
			}
			orch, closeStore, err := a.openOrchestrator(false)
			if err != nil {
				return err
			}
			defer closeStore()

			res := orch.Classify(features)
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "class %s (%s) confidence %.3f\n", res.Class, res.Class.Name(), res.Confidence)
			for _, v := range res.Verdicts {
				fmt.Fprintf(w, "  %-4s %-8s %.3f  %s\n", v.Class, v.Match, v.Score, v.Reasoning)
			}
			return nil
		},
	}
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(args[0])
}

// #endregion classify-cmd

// #region rule-cmd

func newRuleCmd(a *app) *cobra.Command {
	var wiringPath string
	cmd := &cobra.Command{
		Use:   "rule [number]",
		Short: "Structural analysis of an elementary rule or wiring diagram",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, closeStore, err := a.openOrchestrator(false)
			if err != nil {
				return err
			}
			defer closeStore()

			var rep rulehint.Report
			switch {
			case wiringPath != "":
				data, err := os.ReadFile(wiringPath)
				if err != nil {
					return fmt.Errorf("read wiring: %w", err)
				}
				rep, err = orch.WiringHint(data)
				if err != nil {
					return err
				}
			case len(args) == 1:
				rule, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("rule %q: not a number", args[0])
				}
				if rep, err = orch.RuleHint(rule); err != nil {
					return err
				}
			default:
				return fmt.Errorf("rule number or --wiring required")
			}

			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			printRuleReport(cmd.OutOrStdout(), rep)
			return nil
		},
	}
	cmd.Flags().StringVar(&wiringPath, "wiring", "", "wiring diagram JSON file")
	return cmd
}

func printRuleReport(w io.Writer, rep rulehint.Report) {
	if rep.WiringID != "" {
		fmt.Fprintf(w, "wiring %s", rep.WiringID)
		if rep.Formula != "" {
			fmt.Fprintf(w, " (%s)", rep.Formula)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "rule %d  truth table %v\n", rep.Rule, rep.TruthTable)
	fmt.Fprintf(w, "  affine       %t  %s\n", rep.Affine, rep.AffineDetail)
	fmt.Fprintf(w, "  surjective   %t  %s\n", rep.Surjective, rep.SurjectiveDetail)
	fmt.Fprintf(w, "  sensitivity  mean %.3f min %.3f max %.3f\n", rep.Sensitivity.Mean, rep.Sensitivity.Min, rep.Sensitivity.Max)
	fmt.Fprintf(w, "  hint         class %s confidence %.2f known=%t\n", rep.Hint.Class, rep.Hint.Confidence, rep.Hint.Known)
	fmt.Fprintf(w, "               %s\n", rep.Hint.Reasoning)
}

// #endregion rule-cmd
