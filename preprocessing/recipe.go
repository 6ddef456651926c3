// Package preprocessing provides fittable, leakage-safe data transformations.
//
// The central type is the Recipe: an ordered list of transformation steps
// whose parameters (means, scales, category levels) are derived exclusively
// from the analysis set passed to Fit, then applied deterministically to any
// dataset sharing that schema. Fitting on one set and applying to another is
// what keeps assessment and test data out of the parameter estimates.
package preprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/knsamati/modeltune/dataset"
	"github.com/knsamati/modeltune/pkg/errors"
)

// StepKind tags a transformation step. The set is closed; new kinds extend
// this enum rather than an open expression language.
type StepKind string

const (
	// StepLog replaces each listed field with its natural logarithm.
	StepLog StepKind = "log"
	// StepDrop removes the listed fields.
	StepDrop StepKind = "drop"
	// StepDerive adds a new field computed from two existing numeric fields.
	StepDerive StepKind = "derive"
	// StepOneHot replaces each listed categorical field with indicator
	// columns for the levels observed at fit time.
	StepOneHot StepKind = "one_hot"
	// StepStandardize centers and scales the listed numeric fields by
	// statistics learned at fit time.
	StepStandardize StepKind = "standardize"
	// StepImputeMean replaces NaN values in the listed numeric fields with
	// the field mean learned at fit time.
	StepImputeMean StepKind = "impute_mean"
)

// DeriveOp is the operation of a derive step.
type DeriveOp string

const (
	OpRatio      DeriveOp = "ratio"
	OpProduct    DeriveOp = "product"
	OpSum        DeriveOp = "sum"
	OpDifference DeriveOp = "difference"
)

// Step is one transformation in a Spec. Which fields are read depends on
// Kind: Fields for log/drop/one_hot/standardize/impute_mean, and
// Name/Op/Left/Right for derive.
type Step struct {
	Kind   StepKind `yaml:"kind" json:"kind"`
	Fields []string `yaml:"fields,omitempty" json:"fields,omitempty"`

	Name  string   `yaml:"name,omitempty" json:"name,omitempty"`
	Op    DeriveOp `yaml:"op,omitempty" json:"op,omitempty"`
	Left  string   `yaml:"left,omitempty" json:"left,omitempty"`
	Right string   `yaml:"right,omitempty" json:"right,omitempty"`
}

// Spec is an ordered list of steps. Steps apply in order; each observes the
// dataset produced by the previous step.
type Spec struct {
	Steps []Step `yaml:"steps" json:"steps"`
}

// fittedStep carries one step together with the parameters learned for it.
type fittedStep struct {
	step    Step
	levels  map[string][]string        // one_hot: field -> sorted levels seen at fit
	means   map[string]float64         // impute_mean
	scalers map[string]*StandardScaler // standardize
}

// targetOp is one invertible transformation that was applied to the target
// column, recorded in application order so predictions can be mapped back
// to the original scale.
type targetOp struct {
	kind  StepKind
	mean  float64 // standardize
	scale float64 // standardize
}

// Recipe is a fitted preprocessing pipeline. Apply never re-derives
// parameters from its input.
type Recipe struct {
	steps     []fittedStep
	target    string
	targetOps []targetOp
}

// Fit learns the parameters of every step from the analysis set, in step
// order, and returns the fitted Recipe. Only the analysis set is read.
func Fit(analysis *dataset.Dataset, spec Spec) (*Recipe, error) {
	if analysis == nil || analysis.Len() == 0 {
		return nil, errors.NewModelError("preprocessing.Fit", "empty analysis set", errors.ErrEmptyData)
	}

	recipe := &Recipe{target: analysis.Target()}
	current := analysis
	for _, step := range spec.Steps {
		fitted, err := fitStep(current, step)
		if err != nil {
			return nil, err
		}
		recipe.steps = append(recipe.steps, fitted)
		recipe.recordTargetOps(fitted)

		// The next step must observe the transformed data.
		current, err = applyStep(current, fitted)
		if err != nil {
			return nil, err
		}
	}
	return recipe, nil
}

// Apply runs the fitted pipeline over ds and returns the transformed
// dataset. It is deterministic and reads no statistics from ds.
func (r *Recipe) Apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.NewModelError("Recipe.Apply", "empty dataset", errors.ErrEmptyData)
	}
	current := ds
	var err error
	for _, fitted := range r.steps {
		current, err = applyStep(current, fitted)
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}

// FitApply fits the recipe on analysis and applies it to the same set.
func FitApply(analysis *dataset.Dataset, spec Spec) (*Recipe, *dataset.Dataset, error) {
	recipe, err := Fit(analysis, spec)
	if err != nil {
		return nil, nil, err
	}
	out, err := recipe.Apply(analysis)
	if err != nil {
		return nil, nil, err
	}
	return recipe, out, nil
}

// recordTargetOps captures any scale-changing transformation a fitted step
// applied to the target column. Imputation leaves observed values on their
// original scale, so it records nothing.
func (r *Recipe) recordTargetOps(fitted fittedStep) {
	for _, field := range fitted.step.Fields {
		if field != r.target {
			continue
		}
		switch fitted.step.Kind {
		case StepLog:
			r.targetOps = append(r.targetOps, targetOp{kind: StepLog})
		case StepStandardize:
			sc := fitted.scalers[field]
			r.targetOps = append(r.targetOps, targetOp{
				kind:  StepStandardize,
				mean:  sc.Mean[0],
				scale: sc.Scale[0],
			})
		}
	}
}

// TargetTransformed reports whether any step changed the target's scale.
// Evaluation must map predictions back through InverseTarget when true, or
// metrics would be reported on the transformed scale.
func (r *Recipe) TargetTransformed() bool { return len(r.targetOps) > 0 }

// InverseTarget maps a predicted target value back to its original scale by
// undoing the recorded target transformations in reverse order.
func (r *Recipe) InverseTarget(v float64) float64 {
	for i := len(r.targetOps) - 1; i >= 0; i-- {
		op := r.targetOps[i]
		switch op.kind {
		case StepLog:
			v = math.Exp(v)
		case StepStandardize:
			v = v*op.scale + op.mean
		}
	}
	return v
}

func fitStep(ds *dataset.Dataset, step Step) (fittedStep, error) {
	fitted := fittedStep{step: step}

	switch step.Kind {
	case StepLog:
		for _, field := range step.Fields {
			vals, err := ds.Numeric(field)
			if err != nil {
				return fitted, err
			}
			for _, v := range vals {
				if v <= 0 {
					return fitted, errors.NewValueError("preprocessing.log",
						"field "+field+" contains non-positive values")
				}
			}
		}

	case StepDrop:
		for _, field := range step.Fields {
			if !ds.Has(field) {
				return fitted, errors.NewSchemaError("preprocessing.drop", field)
			}
		}

	case StepDerive:
		if step.Name == "" {
			return fitted, errors.NewValueError("preprocessing.derive", "derived field needs a name")
		}
		if step.Name == ds.Target() {
			return fitted, errors.NewValueError("preprocessing.derive",
				"derived field cannot replace the target "+step.Name)
		}
		switch step.Op {
		case OpRatio, OpProduct, OpSum, OpDifference:
		default:
			return fitted, errors.NewValueError("preprocessing.derive", "unknown op "+string(step.Op))
		}
		if _, err := ds.Numeric(step.Left); err != nil {
			return fitted, err
		}
		if _, err := ds.Numeric(step.Right); err != nil {
			return fitted, err
		}

	case StepOneHot:
		fitted.levels = make(map[string][]string, len(step.Fields))
		for _, field := range step.Fields {
			labels, err := ds.Categorical(field)
			if err != nil {
				return fitted, err
			}
			seen := make(map[string]bool)
			var levels []string
			for _, l := range labels {
				if !seen[l] {
					seen[l] = true
					levels = append(levels, l)
				}
			}
			sort.Strings(levels)
			fitted.levels[field] = levels
		}

	case StepStandardize:
		fitted.scalers = make(map[string]*StandardScaler, len(step.Fields))
		for _, field := range step.Fields {
			vals, err := ds.Numeric(field)
			if err != nil {
				return fitted, err
			}
			scaler := NewStandardScalerDefault()
			if err := scaler.Fit(mat.NewDense(len(vals), 1, vals)); err != nil {
				return fitted, err
			}
			fitted.scalers[field] = scaler
		}

	case StepImputeMean:
		fitted.means = make(map[string]float64, len(step.Fields))
		for _, field := range step.Fields {
			vals, err := ds.Numeric(field)
			if err != nil {
				return fitted, err
			}
			var sum float64
			count := 0
			for _, v := range vals {
				if !math.IsNaN(v) {
					sum += v
					count++
				}
			}
			if count == 0 {
				return fitted, errors.NewValueError("preprocessing.impute_mean",
					"field "+field+" has no observed values")
			}
			fitted.means[field] = sum / float64(count)
		}

	default:
		return fitted, errors.NewValueError("preprocessing.Fit", "unknown step kind "+string(step.Kind))
	}

	return fitted, nil
}

func applyStep(ds *dataset.Dataset, fitted fittedStep) (*dataset.Dataset, error) {
	step := fitted.step
	switch step.Kind {
	case StepLog:
		current := ds
		for _, field := range step.Fields {
			vals, err := current.Numeric(field)
			if err != nil {
				return nil, err
			}
			out := make([]float64, len(vals))
			for i, v := range vals {
				out[i] = math.Log(v)
			}
			current, err = current.WithColumn(dataset.Column{Name: field, Kind: dataset.Numeric, Floats: out})
			if err != nil {
				return nil, err
			}
		}
		return current, nil

	case StepDrop:
		return ds.DropColumns(step.Fields...)

	case StepDerive:
		left, err := ds.Numeric(step.Left)
		if err != nil {
			return nil, err
		}
		right, err := ds.Numeric(step.Right)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(left))
		for i := range left {
			switch step.Op {
			case OpRatio:
				out[i] = errors.SafeDivide(left[i], right[i])
			case OpProduct:
				out[i] = left[i] * right[i]
			case OpSum:
				out[i] = left[i] + right[i]
			case OpDifference:
				out[i] = left[i] - right[i]
			}
		}
		return ds.WithColumn(dataset.Column{Name: step.Name, Kind: dataset.Numeric, Floats: out})

	case StepOneHot:
		current := ds
		for _, field := range step.Fields {
			labels, err := current.Categorical(field)
			if err != nil {
				return nil, err
			}
			for _, level := range fitted.levels[field] {
				indicator := make([]float64, len(labels))
				for i, l := range labels {
					if l == level {
						indicator[i] = 1
					}
				}
				current, err = current.WithColumn(dataset.Column{
					Name:   field + "=" + level,
					Kind:   dataset.Numeric,
					Floats: indicator,
				})
				if err != nil {
					return nil, err
				}
			}
			// Unseen levels encode as all zeros across the indicators.
			current, err = current.DropColumns(field)
			if err != nil {
				return nil, err
			}
		}
		return current, nil

	case StepStandardize:
		current := ds
		for _, field := range step.Fields {
			vals, err := current.Numeric(field)
			if err != nil {
				return nil, err
			}
			scaled, err := fitted.scalers[field].Transform(mat.NewDense(len(vals), 1, vals))
			if err != nil {
				return nil, err
			}
			out := make([]float64, len(vals))
			for i := range out {
				out[i] = scaled.At(i, 0)
			}
			current, err = current.WithColumn(dataset.Column{Name: field, Kind: dataset.Numeric, Floats: out})
			if err != nil {
				return nil, err
			}
		}
		return current, nil

	case StepImputeMean:
		current := ds
		for _, field := range step.Fields {
			vals, err := current.Numeric(field)
			if err != nil {
				return nil, err
			}
			mean := fitted.means[field]
			out := make([]float64, len(vals))
			for i, v := range vals {
				if math.IsNaN(v) {
					out[i] = mean
				} else {
					out[i] = v
				}
			}
			current, err = current.WithColumn(dataset.Column{Name: field, Kind: dataset.Numeric, Floats: out})
			if err != nil {
				return nil, err
			}
		}
		return current, nil

	default:
		return nil, errors.NewValueError("Recipe.Apply", "unknown step kind "+string(step.Kind))
	}
}

