package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/cadynamics/internal/logging"
	"github.com/danielpatrickdp/cadynamics/internal/store"
)

// #region inspect-cmd

func newInspectCmd(a *app) *cobra.Command {
	var (
		last int
		id   string
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List stored reports or show one in detail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orch, closeStore, err := a.openOrchestrator(true)
			if err != nil {
				return err
			}
			defer closeStore()
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			if id != "" {
				rec, err := orch.Report(ctx, id)
				if err != nil {
					return err
				}
				prov, err := orch.Provenance(ctx, id)
				if err != nil {
					return err
				}
				if a.jsonOut {
					return writeJSON(w, struct {
						store.Record
						Provenance []logging.ProvenanceEntry `json:"provenance"`
					}{rec, prov})
				}
				return printDetail(w, rec, prov)
			}

			recs, err := orch.Reports(ctx, last)
			if err != nil {
				return err
			}
			if a.jsonOut {
				if recs == nil {
					recs = []store.Record{}
				}
				return writeJSON(w, recs)
			}
			if len(recs) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "no reports found")
				return nil
			}
			printListTable(w, recs)
			return nil
		},
	}
	cmd.Flags().IntVar(&last, "last", 20, "show N most recent reports")
	cmd.Flags().StringVar(&id, "id", "", "show a single report")
	return cmd
}

// #endregion inspect-cmd

// #region table

func printListTable(w io.Writer, recs []store.Record) {
	fmt.Fprintf(w, "%-36s  %-5s  %10s  %8s  %9s  %-20s  %s\n",
		"Report", "Class", "Confidence", "Collapse", "Size", "Time", "Source")
	fmt.Fprintf(w, "%-36s+-%-5s+-%10s+-%8s+-%9s+-%-20s+-%s\n",
		"------------------------------------", "-----", "----------", "--------", "---------", "--------------------", "------")
	for _, r := range recs {
		fmt.Fprintf(w, "%-36s  %-5s  %10.3f  %8.3f  %9s  %-20s  %s\n",
			r.ID, r.Class, r.Confidence, r.CollapseScore,
			fmt.Sprintf("%dx%d", r.Generations, r.Width),
			r.CreatedAt.Format("2006-01-02T15:04:05Z"), r.Source)
	}
}

func printDetail(w io.Writer, rec store.Record, prov []logging.ProvenanceEntry) error {
	fmt.Fprintf(w, "report     %s\n", rec.ID)
	fmt.Fprintf(w, "source     %s\n", rec.Source)
	fmt.Fprintf(w, "class      %s (%s) confidence %.3f\n", rec.Class, rec.Class.Name(), rec.Confidence)
	fmt.Fprintf(w, "collapse   %.3f\n", rec.CollapseScore)
	fmt.Fprintf(w, "size       %d generations x %d cells\n", rec.Generations, rec.Width)
	fmt.Fprintf(w, "created    %s\n", rec.CreatedAt.Format("2006-01-02T15:04:05Z"))

	var body struct {
		Features map[string]float64 `json:"features"`
	}
	if err := json.Unmarshal(rec.Payload, &body); err != nil {
		return fmt.Errorf("decode report payload: %w", err)
	}
	if len(body.Features) > 0 {
		fmt.Fprintln(w, "features")
		for _, k := range sortedKeys(body.Features) {
			fmt.Fprintf(w, "  %-28s %.4f\n", k, body.Features[k])
		}
	}
	for _, p := range prov {
		fmt.Fprintf(w, "provenance %s via %s: %s\n", p.CreatedAt.Format("2006-01-02T15:04:05Z"), p.TriggerType, p.Reason)
	}
	return nil
}

// #endregion table
