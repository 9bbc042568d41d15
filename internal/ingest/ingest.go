// Package ingest decodes transaction files into datasets.
//
// Three layouts are understood:
//   - matrix: CSV with a header row of item labels and one 0/1 (or
//     true/false) row per transaction; a leading tid/id column is ignored
//   - basket: one transaction per line, items separated by commas
//   - json: {"items": [...], "rows": [[0, 1], ...]} or
//     {"transactions": [["a", "b"], ...]}
//
// All decoding failures wrap apriori.ErrInvalidInput.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/blackwell-systems/basketprune/internal/apriori"
)

// Format names an input layout.
type Format string

const (
	FormatAuto   Format = "auto"
	FormatMatrix Format = "matrix"
	FormatBasket Format = "basket"
	FormatJSON   Format = "json"
)

// ParseFormat resolves a --format value. The empty string means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatMatrix, FormatBasket, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be auto, matrix, basket, or json)", s)
}

// DetectFormat picks a layout from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatMatrix, nil
	case ".txt", ".basket", ".baskets":
		return FormatBasket, nil
	}
	return "", fmt.Errorf("cannot detect format of %s (use matrix, basket, or json explicitly)", path)
}

// Data is decoded transaction input. Exactly one of the matrix fields
// (Items, Rows) or Baskets is populated.
type Data struct {
	Format  Format
	Items   []string
	Rows    [][]int
	Baskets [][]string
}

// Len returns the number of transactions.
func (d *Data) Len() int {
	if d.Items != nil {
		return len(d.Rows)
	}
	return len(d.Baskets)
}

// Dataset validates the data and builds the transaction store.
func (d *Data) Dataset() (*apriori.Dataset, error) {
	if d.Items != nil {
		return apriori.NewDataset(d.Items, d.Rows)
	}
	return apriori.NewDatasetFromBaskets(d.Baskets)
}

// AsBaskets returns the data as per-transaction item lists. Matrix columns
// that are never set do not survive the conversion.
func (d *Data) AsBaskets() [][]string {
	if d.Items == nil {
		return d.Baskets
	}

	baskets := make([][]string, len(d.Rows))
	for t, row := range d.Rows {
		basket := []string{}
		for c, v := range row {
			if v == 1 {
				basket = append(basket, d.Items[c])
			}
		}
		baskets[t] = basket
	}
	return baskets
}

// ReadFile decodes the file at path. FormatAuto detects the layout from the
// extension.
func ReadFile(path string, format Format) (*Data, error) {
	if format == FormatAuto || format == "" {
		var err error
		if format, err = DetectFormat(path); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var data *Data
	switch format {
	case FormatMatrix:
		data, err = ReadMatrixCSV(f)
	case FormatBasket:
		data, err = ReadBasketCSV(f)
	case FormatJSON:
		data, err = ReadJSON(f)
	default:
		return nil, fmt.Errorf("invalid format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apriori.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Rename maps every item label through resolve. Columns or basket entries
// that resolve to the same name are merged.
func (d *Data) Rename(resolve func(string) string) *Data {
	out := &Data{Format: d.Format}

	if d.Items == nil {
		out.Baskets = make([][]string, len(d.Baskets))
		for t, b := range d.Baskets {
			seen := make(map[string]bool, len(b))
			basket := make([]string, 0, len(b))
			for _, item := range b {
				name := resolve(item)
				if !seen[name] {
					seen[name] = true
					basket = append(basket, name)
				}
			}
			out.Baskets[t] = basket
		}
		return out
	}

	column := make(map[string]int, len(d.Items))
	target := make([]int, len(d.Items))
	for c, label := range d.Items {
		name := resolve(label)
		idx, ok := column[name]
		if !ok {
			idx = len(out.Items)
			column[name] = idx
			out.Items = append(out.Items, name)
		}
		target[c] = idx
	}

	out.Rows = make([][]int, len(d.Rows))
	for t, row := range d.Rows {
		if len(row) != len(target) {
			// Left ragged for Dataset to reject.
			out.Rows[t] = slices.Clone(row)
			continue
		}
		merged := make([]int, len(out.Items))
		for c, v := range row {
			if v != 0 {
				merged[target[c]] = v
			}
		}
		out.Rows[t] = merged
	}
	return out
}
