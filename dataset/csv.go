package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/knsamati/modeltune/pkg/errors"
)

// LoadCSV reads a headered CSV file into a Dataset with the given target
// column. A column whose every value parses as a float becomes Numeric;
// anything else becomes Categorical.
func LoadCSV(path, target string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.LoadCSV: open %s", path)
	}
	defer file.Close()

	return ReadCSV(file, target)
}

// ReadCSV reads headered CSV data from r into a Dataset.
func ReadCSV(r io.Reader, target string) (*Dataset, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "dataset.ReadCSV: read header")
	}
	if len(header) == 0 {
		return nil, errors.NewModelError("dataset.ReadCSV", "empty header", errors.ErrEmptyData)
	}

	raw := make([][]string, len(header))
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "dataset.ReadCSV: read record")
		}
		for j, v := range record {
			raw[j] = append(raw[j], v)
		}
	}
	if len(raw[0]) == 0 {
		return nil, errors.NewModelError("dataset.ReadCSV", "no records", errors.ErrEmptyData)
	}

	cols := make([]Column, len(header))
	for j, name := range header {
		cols[j] = inferColumn(name, raw[j])
	}
	return New(target, cols...)
}

// inferColumn parses the raw values as floats when the whole column admits
// it, otherwise keeps them as categorical labels.
func inferColumn(name string, values []string) Column {
	floats := make([]float64, len(values))
	for i, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Column{Name: name, Kind: Categorical, Labels: values}
		}
		floats[i] = f
	}
	return Column{Name: name, Kind: Numeric, Floats: floats}
}
