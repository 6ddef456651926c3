package dataset

import (
	"strings"
	"testing"

	"github.com/knsamati/modeltune/pkg/errors"
)

func numCol(name string, vals ...float64) Column {
	return Column{Name: name, Kind: Numeric, Floats: vals}
}

func catCol(name string, vals ...string) Column {
	return Column{Name: name, Kind: Categorical, Labels: vals}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		cols    []Column
		wantErr bool
	}{
		{
			name:   "valid",
			target: "y",
			cols:   []Column{numCol("x", 1, 2), numCol("y", 3, 4)},
		},
		{
			name:    "no columns",
			target:  "y",
			wantErr: true,
		},
		{
			name:    "length mismatch",
			target:  "y",
			cols:    []Column{numCol("x", 1, 2), numCol("y", 3)},
			wantErr: true,
		},
		{
			name:    "missing target",
			target:  "z",
			cols:    []Column{numCol("x", 1, 2), numCol("y", 3, 4)},
			wantErr: true,
		},
		{
			name:    "duplicate column",
			target:  "y",
			cols:    []Column{numCol("x", 1), numCol("x", 2), numCol("y", 3)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.target, tt.cols...)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubsetPreservesOrderAndIsolation(t *testing.T) {
	ds, err := New("y",
		numCol("x", 10, 20, 30, 40),
		catCol("region", "a", "b", "a", "c"),
		numCol("y", 1, 2, 3, 4),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	sub, err := ds.Subset([]int{3, 1})
	if err != nil {
		t.Fatalf("Subset() error = %v", err)
	}
	if sub.Len() != 2 {
		t.Fatalf("Subset() len = %d, want 2", sub.Len())
	}

	x, _ := sub.Numeric("x")
	if x[0] != 40 || x[1] != 20 {
		t.Errorf("Subset() x = %v, want [40 20]", x)
	}
	region, _ := sub.Categorical("region")
	if region[0] != "c" || region[1] != "b" {
		t.Errorf("Subset() region = %v, want [c b]", region)
	}

	// Mutating the subset must not touch the parent.
	x[0] = -1
	orig, _ := ds.Numeric("x")
	if orig[3] != 40 {
		t.Error("Subset() shares backing storage with parent dataset")
	}

	if _, err := ds.Subset([]int{7}); err == nil {
		t.Error("Subset() with out-of-range index should fail")
	}
}

func TestFeatureMatrixAndTargetVector(t *testing.T) {
	ds, err := New("y",
		numCol("a", 1, 2, 3),
		numCol("b", 4, 5, 6),
		numCol("y", 7, 8, 9),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	X, err := ds.FeatureMatrix()
	if err != nil {
		t.Fatalf("FeatureMatrix() error = %v", err)
	}
	r, c := X.Dims()
	if r != 3 || c != 2 {
		t.Fatalf("FeatureMatrix() dims = (%d, %d), want (3, 2)", r, c)
	}
	if X.At(1, 0) != 2 || X.At(1, 1) != 5 {
		t.Errorf("FeatureMatrix() row 1 = [%v %v], want [2 5]", X.At(1, 0), X.At(1, 1))
	}

	y, err := ds.TargetVector()
	if err != nil {
		t.Fatalf("TargetVector() error = %v", err)
	}
	if y.AtVec(2) != 9 {
		t.Errorf("TargetVector()[2] = %v, want 9", y.AtVec(2))
	}
}

func TestFeatureMatrixRejectsCategorical(t *testing.T) {
	ds, err := New("y",
		numCol("a", 1, 2),
		catCol("region", "east", "west"),
		numCol("y", 3, 4),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := ds.FeatureMatrix(); err == nil {
		t.Error("FeatureMatrix() should fail while a categorical column remains")
	}
}

func TestDropColumns(t *testing.T) {
	ds, _ := New("y", numCol("a", 1), numCol("b", 2), numCol("y", 3))

	out, err := ds.DropColumns("a")
	if err != nil {
		t.Fatalf("DropColumns() error = %v", err)
	}
	if out.Has("a") || !out.Has("b") {
		t.Errorf("DropColumns() names = %v", out.Names())
	}

	if _, err := ds.DropColumns("y"); err == nil {
		t.Error("DropColumns(target) should fail")
	}

	_, err = ds.DropColumns("missing")
	var schemaErr *errors.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Errorf("DropColumns(missing) error = %v, want SchemaError", err)
	}
}

func TestReadCSVInfersKinds(t *testing.T) {
	csv := strings.Join([]string{
		"price,sqft,region",
		"100,1000,east",
		"200,1500,west",
		"150,1200,east",
	}, "\n")

	ds, err := ReadCSV(strings.NewReader(csv), "price")
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if ds.Len() != 3 {
		t.Fatalf("ReadCSV() len = %d, want 3", ds.Len())
	}

	sqft, err := ds.Numeric("sqft")
	if err != nil {
		t.Fatalf("sqft should be numeric: %v", err)
	}
	if sqft[1] != 1500 {
		t.Errorf("sqft[1] = %v, want 1500", sqft[1])
	}
	if _, err := ds.Categorical("region"); err != nil {
		t.Errorf("region should be categorical: %v", err)
	}
}

func TestReadCSVEmptyBody(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n"), "b")
	if !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("ReadCSV() error = %v, want ErrEmptyData", err)
	}
}
