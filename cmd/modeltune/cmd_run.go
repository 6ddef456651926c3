package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/knsamati/modeltune/core/model"
	"github.com/knsamati/modeltune/dataset"
	"github.com/knsamati/modeltune/pkg/errors"
	"github.com/knsamati/modeltune/report"
	"github.com/knsamati/modeltune/tune"
)

var (
	configPath string
	outDir     string
	plotParam  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the tuning experiment described by a config file",
	Long: `Run executes one full tuning pass: load the dataset, split it,
sweep the grid across the folds, select the best config and refit it.

The leaderboard is printed to stdout. With --out, the JSON report, the
fitted model and an optional validation curve are written alongside it.`,
	RunE: runExperiment,
}

func init() {
	runCmd.Flags().StringVarP(&configPath, "config", "c", "experiment.yaml", "experiment config file")
	runCmd.Flags().StringVarP(&outDir, "out", "o", "", "directory for the JSON report and fitted model")
	runCmd.Flags().StringVar(&plotParam, "plot", "", "hyperparameter to plot a validation curve for (requires --out)")
}

func runExperiment(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := tune.LoadExperimentConfig(configPath)
	if err != nil {
		return err
	}
	exp, err := cfg.Build()
	if err != nil {
		return err
	}

	ds, err := dataset.LoadCSV(cfg.Data.Path, cfg.Data.Target)
	if err != nil {
		return err
	}

	result, err := exp.Run(ctx, ds)
	if err != nil {
		return err
	}

	rep, err := report.FromResult(result)
	if err != nil {
		return err
	}
	if err := rep.WriteText(cmd.OutOrStdout()); err != nil {
		return err
	}

	if outDir == "" {
		return nil
	}
	return writeOutputs(rep, result)
}

// writeOutputs persists the JSON report, the fitted model and, when
// requested, the validation curve into the output directory.
func writeOutputs(rep *report.Report, result *tune.RunResult) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrapf(err, "create output directory %s", outDir)
	}

	jsonFile, err := os.Create(filepath.Join(outDir, "report.json"))
	if err != nil {
		return errors.Wrap(err, "create report.json")
	}
	defer jsonFile.Close()
	if err := rep.WriteJSON(jsonFile); err != nil {
		return err
	}

	if err := model.SaveModel(result.Final.Model, filepath.Join(outDir, "model.gob")); err != nil {
		return errors.Wrap(err, "save fitted model")
	}

	if plotParam != "" {
		if err := rep.ValidationCurve(plotParam, filepath.Join(outDir, "validation_curve.png")); err != nil {
			return err
		}
	}
	return nil
}
