package parser

import (
	"errors"
	"sort"
)

// FileKind input file kind
type FileKind string

const (
	KindAuto FileKind = ""     // inferred from content, then extension
	KindXLSX FileKind = "xlsx" // Office Open XML workbook
	KindXLS  FileKind = "xls"  // legacy BIFF8 workbook
	KindText FileKind = "text" // delimited text (csv/txt)
)

var (
	// ErrEmptyFile is returned when parsing yields zero data rows.
	ErrEmptyFile = errors.New("file has no data rows")
	// ErrUnsupportedFormat is returned when a workbook cannot be opened by any reader.
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
)

// Record is anything that exposes header-keyed cell values.
type Record interface {
	Headers() []string
	Value(header string) string
}

// Row one data row keyed by the original header text, header order preserved
type Row struct {
	headers []string
	values  map[string]string
}

// NewRow builds a row; headers missing from values read as "".
func NewRow(headers []string, values map[string]string) Row {
	if values == nil {
		values = map[string]string{}
	}
	return Row{headers: headers, values: values}
}

// Headers returns the header labels in file order.
func (r Row) Headers() []string {
	return r.headers
}

// Value returns the raw cell text for an exact header label.
func (r Row) Value(header string) string {
	return r.values[header]
}

// Map returns a copy of the cell values.
func (r Row) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// MapRecord adapts a plain map to Record. Headers are reported in sorted order.
type MapRecord map[string]string

// Headers implements Record.
func (m MapRecord) Headers() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value implements Record.
func (m MapRecord) Value(header string) string {
	return m[header]
}
