package gateway

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Row holds one record's values, aligned with Result.Columns.
type Row []any

// Result is a query's output in database order. It marshals to a JSON
// array of objects whose keys follow the column order.
type Result struct {
	Columns []string
	Types   []string // database type names, "" when unknown
	Rows    []Row
}

// Len returns the number of rows.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Value returns the value of the named column in row i.
func (r *Result) Value(i int, column string) (any, bool) {
	if r == nil || i < 0 || i >= len(r.Rows) {
		return nil, false
	}
	found := -1
	for c, name := range r.Columns {
		if name == column {
			found = c
		}
	}
	if found < 0 || found >= len(r.Rows[i]) {
		return nil, false
	}
	return r.Rows[i][found], true
}

func (r Result) MarshalJSON() ([]byte, error) {
	// A repeated column name keeps its first position and its last value.
	var keys []string
	slot := make([]int, len(r.Columns))
	seen := make(map[string]int, len(r.Columns))
	for c, name := range r.Columns {
		k, ok := seen[name]
		if !ok {
			k = len(keys)
			seen[name] = k
			keys = append(keys, name)
		}
		slot[c] = k
	}

	encodedKeys := make([][]byte, len(keys))
	for k, name := range keys {
		b, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		encodedKeys[k] = b
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	vals := make([]any, len(keys))
	for i, row := range r.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		clear(vals)
		for c := range r.Columns {
			if c < len(row) {
				vals[slot[c]] = jsonValue(row[c], r.typeOf(c))
			}
		}

		buf.WriteByte('{')
		for k := range keys {
			if k > 0 {
				buf.WriteByte(',')
			}
			buf.Write(encodedKeys[k])
			buf.WriteByte(':')
			b, err := json.Marshal(vals[k])
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (r *Result) typeOf(c int) string {
	if c < len(r.Types) {
		return r.Types[c]
	}
	return ""
}

// jsonValue maps a driver value to something encoding/json accepts.
func jsonValue(v any, dbType string) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return nil
		}
	case []byte:
		return string(x)
	case time.Time:
		if strings.EqualFold(dbType, "DATE") {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339Nano)
	}
	return v
}
