// Package tune implements cross-validated hyperparameter selection: the
// sweep over (fold × config) pairs, metric aggregation, the selection
// strategies and the final refit on the full training set.
package tune

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Config is an immutable hyperparameter assignment drawn from a finite
// grid. Callers must not modify a Config after handing it to the sweep.
type Config map[string]float64

// Key returns the canonical string form of the config, with parameter
// names sorted. Two configs with the same assignments always produce the
// same key, which is what record bookkeeping is keyed on.
func (c Config) Key() string {
	if len(c) == 0 {
		return "default"
	}
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%g", name, c[name])
	}
	return strings.Join(parts, ",")
}

// Magnitude is the simplicity ordering used for tie-breaks: the sum of
// absolute hyperparameter values. Smaller magnitude means a simpler model
// for penalty-style parameters.
func (c Config) Magnitude() float64 {
	var sum float64
	for _, v := range c {
		sum += math.Abs(v)
	}
	return sum
}

// Clone returns an independent copy.
func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Grid is an ordered, finite set of configs. Order fixes the iteration
// order of the sweep and of aggregation, which keeps runs deterministic.
type Grid []Config

// GridFromValues builds a one-parameter grid, one config per value.
func GridFromValues(name string, values []float64) Grid {
	grid := make(Grid, len(values))
	for i, v := range values {
		grid[i] = Config{name: v}
	}
	return grid
}

// CartesianGrid builds the cross product of the given parameter values.
// Parameter names are iterated in sorted order so the resulting grid order
// is deterministic.
func CartesianGrid(params map[string][]float64) Grid {
	if len(params) == 0 {
		return nil
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	grid := Grid{Config{}}
	for _, name := range names {
		next := make(Grid, 0, len(grid)*len(params[name]))
		for _, base := range grid {
			for _, v := range params[name] {
				cfg := base.Clone()
				cfg[name] = v
				next = append(next, cfg)
			}
		}
		grid = next
	}
	return grid
}
