package block

import (
	gojson "github.com/goccy/go-json"
)

type fieldJSON struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Precision string `json:"precision,omitempty"`
}

type blockJSON struct {
	NRows  int             `json:"nrows"`
	Schema []fieldJSON     `json:"schema"`
	Rows   [][]interface{} `json:"rows"`
}

// MarshalJSON renders the block as {nrows, schema, rows} with rows as arrays
// in schema order. This is a debugging/export surface; values are converted
// to owned Go values, so large blocks should not be marshaled on hot paths.
func (b *Block) MarshalJSON() ([]byte, error) {
	out := blockJSON{
		NRows:  b.nrows,
		Schema: make([]fieldJSON, len(b.fields)),
		Rows:   make([][]interface{}, b.nrows),
	}
	for i, f := range b.fields {
		out.Schema[i] = fieldJSON{Name: f.Name, Type: f.Type.String()}
		if f.Type == TypeTimestamp {
			out.Schema[i].Precision = f.Precision.String()
		}
	}
	for row := 0; row < b.nrows; row++ {
		vals := make([]interface{}, len(b.columns))
		for col, c := range b.columns {
			v, _ := c.Value(row)
			vals[col] = v.Interface()
		}
		out.Rows[row] = vals
	}
	return gojson.Marshal(out)
}
