// Package dataset provides the immutable, named-column dataset that every
// stage of a tuning run operates on.
//
// A Dataset is an ordered set of equally long columns, one of which is the
// designated target. Columns are numeric or categorical. All operations
// (Subset, WithColumn, DropColumns) return new Dataset values and never
// mutate the receiver, so splits and folds can safely share the underlying
// data across goroutines.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/knsamati/modeltune/pkg/errors"
)

// Kind discriminates column types.
type Kind int

const (
	// Numeric columns hold float64 values.
	Numeric Kind = iota
	// Categorical columns hold string labels.
	Categorical
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Column is one named column. Exactly one of Floats or Labels is populated,
// matching Kind. Callers must not mutate the slices after handing a Column
// to New or WithColumn.
type Column struct {
	Name   string
	Kind   Kind
	Floats []float64
	Labels []string
}

// Len returns the number of values in the column.
func (c Column) Len() int {
	if c.Kind == Categorical {
		return len(c.Labels)
	}
	return len(c.Floats)
}

// Dataset is an immutable collection of columns with a designated target.
type Dataset struct {
	names  []string
	cols   map[string]Column
	target string
	n      int
}

// New builds a Dataset from columns. The target must name one of the
// columns and all columns must have equal length.
func New(target string, cols ...Column) (*Dataset, error) {
	if len(cols) == 0 {
		return nil, errors.NewModelError("dataset.New", "no columns", errors.ErrEmptyData)
	}

	d := &Dataset{
		names:  make([]string, 0, len(cols)),
		cols:   make(map[string]Column, len(cols)),
		target: target,
		n:      cols[0].Len(),
	}
	for _, col := range cols {
		if col.Name == "" {
			return nil, errors.NewValueError("dataset.New", "column with empty name")
		}
		if _, dup := d.cols[col.Name]; dup {
			return nil, errors.NewValueError("dataset.New", "duplicate column "+col.Name)
		}
		if col.Len() != d.n {
			return nil, errors.NewDimensionError("dataset.New", d.n, col.Len(), 0)
		}
		d.names = append(d.names, col.Name)
		d.cols[col.Name] = col
	}
	if _, ok := d.cols[target]; !ok {
		return nil, errors.NewSchemaError("dataset.New", target)
	}
	return d, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int { return d.n }

// Target returns the designated target column name.
func (d *Dataset) Target() string { return d.target }

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.names))
	copy(names, d.names)
	return names
}

// Has reports whether a column exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.cols[name]
	return ok
}

// Column returns the named column. The returned slices are shared; callers
// must treat them as read-only.
func (d *Dataset) Column(name string) (Column, bool) {
	col, ok := d.cols[name]
	return col, ok
}

// Numeric returns the values of a numeric column.
func (d *Dataset) Numeric(name string) ([]float64, error) {
	col, ok := d.cols[name]
	if !ok {
		return nil, errors.NewSchemaError("dataset.Numeric", name)
	}
	if col.Kind != Numeric {
		return nil, errors.NewValueError("dataset.Numeric", "column "+name+" is categorical")
	}
	return col.Floats, nil
}

// Categorical returns the labels of a categorical column.
func (d *Dataset) Categorical(name string) ([]string, error) {
	col, ok := d.cols[name]
	if !ok {
		return nil, errors.NewSchemaError("dataset.Categorical", name)
	}
	if col.Kind != Categorical {
		return nil, errors.NewValueError("dataset.Categorical", "column "+name+" is numeric")
	}
	return col.Labels, nil
}

// Subset returns a new Dataset containing the records at the given indices,
// in the given order.
func (d *Dataset) Subset(indices []int) (*Dataset, error) {
	for _, idx := range indices {
		if idx < 0 || idx >= d.n {
			return nil, errors.NewValidationError("indices", "index out of range", idx)
		}
	}

	out := &Dataset{
		names:  d.Names(),
		cols:   make(map[string]Column, len(d.cols)),
		target: d.target,
		n:      len(indices),
	}
	for name, col := range d.cols {
		sub := Column{Name: name, Kind: col.Kind}
		if col.Kind == Categorical {
			sub.Labels = make([]string, len(indices))
			for i, idx := range indices {
				sub.Labels[i] = col.Labels[idx]
			}
		} else {
			sub.Floats = make([]float64, len(indices))
			for i, idx := range indices {
				sub.Floats[i] = col.Floats[idx]
			}
		}
		out.cols[name] = sub
	}
	return out, nil
}

// WithColumn returns a new Dataset with col added, or replaced if a column
// of the same name exists.
func (d *Dataset) WithColumn(col Column) (*Dataset, error) {
	if col.Len() != d.n {
		return nil, errors.NewDimensionError("dataset.WithColumn", d.n, col.Len(), 0)
	}
	out := &Dataset{
		names:  d.Names(),
		cols:   make(map[string]Column, len(d.cols)+1),
		target: d.target,
		n:      d.n,
	}
	for name, c := range d.cols {
		out.cols[name] = c
	}
	if _, exists := d.cols[col.Name]; !exists {
		out.names = append(out.names, col.Name)
	}
	out.cols[col.Name] = col
	return out, nil
}

// DropColumns returns a new Dataset without the named columns. Dropping the
// target or a missing column is an error.
func (d *Dataset) DropColumns(names ...string) (*Dataset, error) {
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		if name == d.target {
			return nil, errors.NewValueError("dataset.DropColumns", "cannot drop target column "+name)
		}
		if !d.Has(name) {
			return nil, errors.NewSchemaError("dataset.DropColumns", name)
		}
		drop[name] = true
	}

	out := &Dataset{
		names:  make([]string, 0, len(d.names)-len(names)),
		cols:   make(map[string]Column, len(d.cols)-len(names)),
		target: d.target,
		n:      d.n,
	}
	for _, name := range d.names {
		if drop[name] {
			continue
		}
		out.names = append(out.names, name)
		out.cols[name] = d.cols[name]
	}
	return out, nil
}

// FeatureNames returns the non-target column names in order.
func (d *Dataset) FeatureNames() []string {
	names := make([]string, 0, len(d.names)-1)
	for _, name := range d.names {
		if name != d.target {
			names = append(names, name)
		}
	}
	return names
}

// FeatureMatrix bridges the feature columns to a gonum matrix, columns in
// dataset order. Categorical columns must have been encoded first.
func (d *Dataset) FeatureMatrix() (*mat.Dense, error) {
	features := d.FeatureNames()
	if len(features) == 0 {
		return nil, errors.NewModelError("dataset.FeatureMatrix", "no feature columns", errors.ErrEmptyData)
	}
	for _, name := range features {
		if d.cols[name].Kind == Categorical {
			return nil, errors.NewValueError("dataset.FeatureMatrix",
				"categorical column "+name+" must be encoded before matrix conversion")
		}
	}

	X := mat.NewDense(d.n, len(features), nil)
	for j, name := range features {
		vals := d.cols[name].Floats
		for i := 0; i < d.n; i++ {
			X.Set(i, j, vals[i])
		}
	}
	return X, nil
}

// TargetVector bridges the target column to a gonum vector.
func (d *Dataset) TargetVector() (*mat.VecDense, error) {
	col := d.cols[d.target]
	if col.Kind != Numeric {
		return nil, errors.NewValueError("dataset.TargetVector", "target column "+d.target+" is categorical")
	}
	y := mat.NewVecDense(d.n, nil)
	for i := 0; i < d.n; i++ {
		y.SetVec(i, col.Floats[i])
	}
	return y, nil
}
