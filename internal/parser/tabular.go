package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"
	mimeZip  = "application/zip"
)

// delimiter candidates in tie-break priority order
var delimiterCandidates = []rune{'|', ';', ','}

// ParseFile reads a registry or sales export from disk and parses it.
func ParseFile(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return ParseBytes(data, DetectKind(data, path))
}

// ParseBytes turns file bytes into ordered rows keyed by header text.
// Only the first sheet of a workbook is read.
func ParseBytes(data []byte, kind FileKind) ([]Row, error) {
	if kind == KindAuto {
		kind = DetectKind(data, "")
	}

	var (
		records [][]string
		err     error
	)
	switch kind {
	case KindXLSX:
		records, err = readXLSX(data)
	case KindXLS:
		records, err = readXLS(data)
	default:
		records, err = readText(data)
	}
	if err != nil {
		return nil, err
	}
	return buildRows(records)
}

// DetectKind sniffs the content first and falls back to the file extension.
func DetectKind(data []byte, name string) FileKind {
	mt := mimetype.Detect(data)
	switch {
	case mt.Is(mimeXLSX):
		return KindXLSX
	case mt.Is(mimeXLS):
		return KindXLS
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return KindXLSX
	case ".xls":
		return KindXLS
	}

	// some exporters write xlsx without the content types mimetype looks for
	if mt.Is(mimeZip) {
		return KindXLSX
	}
	return KindText
}

// KindFromName maps a file name to a kind by extension only.
func KindFromName(name string) FileKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return KindXLSX
	case ".xls":
		return KindXLS
	case ".csv", ".txt":
		return KindText
	}
	return KindAuto
}

// DetectDelimiter picks the most frequent of | ; , in the header line.
// Ties resolve in that same order.
func DetectDelimiter(headerLine string) rune {
	best := ','
	bestCount := 0
	for _, d := range delimiterCandidates {
		if n := strings.Count(headerLine, string(d)); n > bestCount {
			best = d
			bestCount = n
		}
	}
	return best
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		// .xls files renamed to .xlsx are common in manual uploads
		if rows, errXLS := readXLS(data); errXLS == nil {
			return rows, nil
		}
		return nil, fmt.Errorf("%w: open xlsx: %v", ErrUnsupportedFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readXLS(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: open xls: %v", ErrUnsupportedFormat, err)
	}
	if len(workbook.GetSheets()) == 0 {
		return nil, ErrEmptyFile
	}
	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("read xls sheet: %w", err)
	}

	var rows [][]string
	for _, row := range sheet.GetRows() {
		var cells []string
		for _, cell := range row.GetCols() {
			cells = append(cells, cell.GetString())
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func readText(data []byte) ([][]string, error) {
	text := decodeText(data)
	text = strings.ReplaceAll(text, "\r\n", "\n")

	headerLine := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		headerLine = text[:i]
	}
	delim := DetectDelimiter(headerLine)

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		// unbalanced quotes deep in the file: fall back to a plain split
		return splitLines(text, delim), nil
	}
	return records, nil
}

func splitLines(text string, delim rune) [][]string {
	var out [][]string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, strings.Split(line, string(delim)))
	}
	return out
}

// buildRows turns a header row plus data rows into Row values.
// Short rows are padded with "", fully blank rows are dropped.
func buildRows(records [][]string) ([]Row, error) {
	headerIdx := -1
	for i, rec := range records {
		if !isBlank(rec) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrEmptyFile
	}

	headers := cleanHeaders(records[headerIdx])
	names := compactHeaders(headers)

	rows := make([]Row, 0, len(records)-headerIdx-1)
	for _, rec := range records[headerIdx+1:] {
		if isBlank(rec) {
			continue
		}
		values := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			v := ""
			if i < len(rec) {
				v = strings.TrimSpace(rec[i])
			}
			values[h] = v
		}
		rows = append(rows, NewRow(names, values))
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

// cleanHeaders strips BOM and quotes; duplicates get a _1, _2 suffix.
func cleanHeaders(raw []string) []string {
	seen := make(map[string]int, len(raw))
	out := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimPrefix(h, "\ufeff")
		h = strings.TrimSpace(h)
		h = strings.Trim(h, `"'`)
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = h + "_" + strconv.Itoa(n+1)
		} else {
			seen[h] = 0
		}
		out[i] = h
	}
	return out
}

func compactHeaders(headers []string) []string {
	out := make([]string, 0, len(headers))
	for _, h := range headers {
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
