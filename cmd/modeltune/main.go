// Command modeltune runs cross-validated hyperparameter selection from an
// experiment description file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/knsamati/modeltune/pkg/log"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "modeltune",
	Short: "Cross-validated hyperparameter selection for tabular models",
	Long: `modeltune tunes model hyperparameters by k-fold cross-validation.

Given a dataset and an experiment file describing a preprocessing recipe,
a model family, a hyperparameter grid and the metrics to score, it splits
the data, sweeps every (fold, config) pair, selects the winning config and
refits it on the full training set with a one-shot test evaluation.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.LevelDebug)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
