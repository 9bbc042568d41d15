package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// idColumns are header names treated as a transaction identifier column.
var idColumns = map[string]bool{
	"tid":            true,
	"id":             true,
	"transaction":    true,
	"transaction_id": true,
}

// ReadMatrixCSV decodes a one-hot CSV matrix.
func ReadMatrixCSV(r io.Reader) (*Data, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, invalid("matrix is empty")
	}
	if err != nil {
		return nil, csvError(err)
	}

	skip := 0
	if len(header) > 0 && idColumns[strings.ToLower(strings.TrimSpace(header[0]))] {
		skip = 1
	}
	items := make([]string, 0, len(header)-skip)
	for _, h := range header[skip:] {
		items = append(items, strings.TrimSpace(h))
	}

	data := &Data{Format: FormatMatrix, Items: items, Rows: [][]int{}}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}

		line, _ := cr.FieldPos(0)
		row := make([]int, len(items))
		for c, cell := range record[skip:] {
			v, ok := parseCell(cell)
			if !ok {
				return nil, invalid("line %d, column %q: value %q is not 0/1 or true/false", line, items[c], cell)
			}
			row[c] = v
		}
		data.Rows = append(data.Rows, row)
	}
	return data, nil
}

// ReadBasketCSV decodes one transaction per line. Blank fields are ignored,
// so "a,,b" is the basket {a, b}. Blank lines are skipped; write an empty
// transaction as a line holding only a comma.
func ReadBasketCSV(r io.Reader) (*Data, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	cr.Comment = '#'

	data := &Data{Format: FormatBasket, Baskets: [][]string{}}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}

		basket := make([]string, 0, len(record))
		for _, field := range record {
			if item := strings.TrimSpace(field); item != "" {
				basket = append(basket, item)
			}
		}
		data.Baskets = append(data.Baskets, basket)
	}
	return data, nil
}

func parseCell(s string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true":
		return 1, true
	case "0", "false":
		return 0, true
	}
	return 0, false
}

// csvError converts csv parse failures, including ragged rows, into
// invalid-input errors carrying the line number.
func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return invalid("line %d: %v", pe.Line, pe.Err)
	}
	return err
}
