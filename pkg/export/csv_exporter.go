package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
)

var errNoColumns = errors.New("dataset has no columns")

// CSVExporter renders datasets as RFC 4180 CSV with a header line.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render encodes the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, errNoColumns
	}
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	records := make([][]string, 0, len(data.Rows)+1)
	records = append(records, data.Labels())
	records = append(records, data.Rows...)
	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}
