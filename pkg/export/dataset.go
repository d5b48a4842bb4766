package export

import "fmt"

// Format names a supported rendering.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// Column is one table column. Weight sizes PDF columns relative to each
// other; zero counts as 1.
type Column struct {
	Label  string
	Weight float64
}

// Dataset is positional tabular content.
type Dataset struct {
	Columns []Column
	Rows    [][]string
}

// NewDataset creates an empty dataset with the given columns.
func NewDataset(columns ...Column) *Dataset {
	return &Dataset{Columns: columns}
}

// Append adds a row; it must have exactly one value per column.
func (d *Dataset) Append(values ...string) error {
	if len(values) != len(d.Columns) {
		return fmt.Errorf("row has %d values, want %d", len(values), len(d.Columns))
	}
	d.Rows = append(d.Rows, values)
	return nil
}

// Labels returns the column labels in order.
func (d Dataset) Labels() []string {
	labels := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		labels[i] = col.Label
	}
	return labels
}

func (d Dataset) widths(total float64) []float64 {
	sum := 0.0
	weights := make([]float64, len(d.Columns))
	for i, col := range d.Columns {
		weights[i] = col.Weight
		if weights[i] <= 0 {
			weights[i] = 1
		}
		sum += weights[i]
	}
	for i := range weights {
		weights[i] = total * weights[i] / sum
	}
	return weights
}
