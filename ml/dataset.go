package ml

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

//go:embed data/iris.csv
var irisCSV []byte

type Dataset struct {
	FeatureNames []string
	ClassNames   []string
	Features     [][]float64
	Labels       []int
}

func (d *Dataset) Len() int {
	return len(d.Features)
}

func (d *Dataset) ClassName(label int) string {
	if label < 0 || label >= len(d.ClassNames) {
		return ""
	}
	return d.ClassNames[label]
}

func LoadIris() (*Dataset, error) {
	return LoadDatasetCSV(bytes.NewReader(irisCSV))
}

func IrisClassNames() []string {
	return []string{"setosa", "versicolor", "virginica"}
}

// LoadDatasetCSV expects the class name in the last column; labels follow first appearance.
func LoadDatasetCSV(r io.Reader) (*Dataset, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDataset
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("header needs at least one feature and a class column, got %d columns", len(header))
	}

	ds := &Dataset{FeatureNames: append([]string(nil), header[:len(header)-1]...)}
	classIndex := make(map[string]int)
	width := len(header) - 1

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := make([]float64, width)
		for i := 0; i < width; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %q: %w", line, header[i], err)
			}
			row[i] = v
		}
		name := strings.TrimSpace(record[width])
		label, ok := classIndex[name]
		if !ok {
			label = len(ds.ClassNames)
			classIndex[name] = label
			ds.ClassNames = append(ds.ClassNames, name)
		}
		ds.Features = append(ds.Features, row)
		ds.Labels = append(ds.Labels, label)
	}

	if ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	return ds, nil
}
