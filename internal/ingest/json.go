package ingest

import (
	"io"

	"github.com/goccy/go-json"
)

// jsonInput is the accepted JSON document shape.
type jsonInput struct {
	Items        []string   `json:"items"`
	Rows         [][]int    `json:"rows"`
	Transactions [][]string `json:"transactions"`
}

// ReadJSON decodes a matrix document ({"items", "rows"}) or a basket
// document ({"transactions"}).
func ReadJSON(r io.Reader) (*Data, error) {
	var in jsonInput
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return nil, invalid("malformed JSON: %v", err)
	}

	hasMatrix := in.Items != nil || in.Rows != nil
	hasBaskets := in.Transactions != nil
	switch {
	case hasMatrix && hasBaskets:
		return nil, invalid("JSON input must use either items/rows or transactions, not both")
	case hasMatrix:
		if in.Items == nil {
			in.Items = []string{}
		}
		return &Data{Format: FormatJSON, Items: in.Items, Rows: in.Rows}, nil
	case hasBaskets:
		return &Data{Format: FormatJSON, Baskets: in.Transactions}, nil
	}
	return nil, invalid("JSON input has neither items/rows nor transactions")
}
