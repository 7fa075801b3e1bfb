package olist

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yilin0518/Advanced-DB/store"
)

// MalformedDateError reports a timestamp field that matches no accepted
// layout. The whole record is rejected.
type MalformedDateError struct {
	Table  string
	Column string
	Value  string
	Line   int
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("%v line %d: column %v has malformed date %q", e.Table, e.Line, e.Column, e.Value)
}

// MalformedValueError reports a numeric field that cannot be coerced.
type MalformedValueError struct {
	Table  string
	Column string
	Value  string
	Line   int
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("%v line %d: column %v has malformed value %q", e.Table, e.Line, e.Column, e.Value)
}

// Accepted timestamp layouts, tried in order.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Markers treated as absent values, matching how the dataset encodes
// missing fields. Comparison is case-insensitive.
var nullMarkers = map[string]bool{
	"":     true,
	"nan":  true,
	"null": true,
	"none": true,
	"na":   true,
}

// Cleaner coerces raw CSV fields of one table into typed values: string,
// int64, float64, time.Time, or nil for absent fields. Cleaning is
// stateless, so re-cleaning the same record yields the same result.
type Cleaner struct {
	table store.TableSpec
}

func NewCleaner(t store.TableSpec) *Cleaner {
	return &Cleaner{table: t}
}

// Clean converts one raw record whose fields are aligned with the table's
// column order. On a malformed field the record is rejected with a typed
// error and no partial result.
func (c *Cleaner) Clean(line int, raw []string) ([]interface{}, error) {
	if len(raw) != len(c.table.Columns) {
		return nil, fmt.Errorf("%v line %d: got %d fields, want %d",
			c.table.Name, line, len(raw), len(c.table.Columns))
	}
	out := make([]interface{}, len(raw))
	for i, col := range c.table.Columns {
		v, err := cleanField(c.table.Name, col, line, raw[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func cleanField(table string, col store.Column, line int, raw string) (interface{}, error) {
	if nullMarkers[strings.ToLower(strings.TrimSpace(raw))] {
		return nil, nil
	}
	switch col.Type {
	case store.TypeString, store.TypeText:
		return raw, nil
	case store.TypeInteger:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n, nil
		}
		// Integer columns sometimes carry a float rendering like "58.0".
		if f, err := strconv.ParseFloat(raw, 64); err == nil && f == float64(int64(f)) {
			return int64(f), nil
		}
		return nil, &MalformedValueError{Table: table, Column: col.Name, Value: raw, Line: line}
	case store.TypeDecimal:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &MalformedValueError{Table: table, Column: col.Name, Value: raw, Line: line}
		}
		return f, nil
	case store.TypeTimestamp:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return nil, &MalformedDateError{Table: table, Column: col.Name, Value: raw, Line: line}
	}
	return raw, nil
}
