// Package modeltune provides cross-validated hyperparameter selection for
// tabular regression models.
//
// A tuning run partitions a dataset into training and test sets, folds the
// training set k ways, fits a leakage-safe preprocessing recipe and one
// model per (fold, config) pair over a hyperparameter grid, aggregates the
// per-fold metrics, selects a winning config and refits it on the full
// training set with a single test-set evaluation.
//
// # Installation
//
// Install modeltune using go get:
//
//	go get github.com/knsamati/modeltune
//
// # Quick Start
//
// Sweep a lasso penalty over five folds:
//
//	exp := &tune.Experiment{
//	    Family:  &linear.ElasticNetFamily{},
//	    Grid:    tune.GridFromValues("penalty", []float64{0, 0.01, 0.1, 1}),
//	    Metrics: []metrics.Metric{metrics.MetricRMSE},
//	    Seed:    42,
//	}
//	result, err := exp.Run(context.Background(), ds)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Selection.Best.Key())
//
// # Packages
//
//   - dataset: columnar tables with CSV loading
//   - resample: seeded train/test splits and k-fold plans
//   - preprocessing: fittable, leakage-safe transformation recipes
//   - linear: least squares and elastic-net regression
//   - metrics: regression metrics with selection directions
//   - tune: the sweep, selection strategies and final refit
//   - report: text/JSON reports and validation-curve plots
//
// The same dataset, experiment and seed always produce identical results,
// independent of worker count.
package modeltune
