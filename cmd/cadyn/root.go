package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/cadynamics/internal/analysis"
	"github.com/danielpatrickdp/cadynamics/internal/config"
	"github.com/danielpatrickdp/cadynamics/internal/logging"
	"github.com/danielpatrickdp/cadynamics/internal/orchestrator"
	"github.com/danielpatrickdp/cadynamics/internal/store"
)

// #region app

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	storePath  string
	jsonOut    bool

	cfg      config.Config
	logger   *slog.Logger
	closeLog func() error
}

// openOrchestrator wires the analyzer with the report store when persist is
// set. The returned close function releases the store.
func (a *app) openOrchestrator(persist bool) (*orchestrator.Orchestrator, func() error, error) {
	analyzer := analysis.NewAnalyzer(a.cfg.Analysis, a.logger)
	if !persist {
		return orchestrator.NewOrchestrator(analyzer, nil, a.logger), func() error { return nil }, nil
	}
	st, err := store.NewStore(a.cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store %s: %w", a.cfg.Store.Path, err)
	}
	return orchestrator.NewOrchestrator(analyzer, st, a.logger), st.Close, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// #endregion app

// #region root

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "cadyn",
		Short:         "Analyze cellular-automaton spacetime histories",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.Log.Level = a.logLevel
			}
			if a.storePath != "" {
				cfg.Store.Path = a.storePath
			}
			logger, closeLog, err := logging.New(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.cfg, a.logger, a.closeLog = cfg, logger, closeLog
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.closeLog != nil {
				return a.closeLog()
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVar(&a.storePath, "db", "", "report database path override")
	pf.BoolVar(&a.jsonOut, "json", false, "print JSON instead of tables")

	root.AddCommand(
		newAnalyzeCmd(a),
		newClassifyCmd(a),
		newRuleCmd(a),
		newInspectCmd(a),
		newReplayCmd(a),
		newFixtureCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
	)
	return root
}

// newConfigCmd prints the effective configuration.
func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// #endregion root
