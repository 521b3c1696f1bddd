// Package reader turns uploaded file bytes into the column-name-keyed row
// maps the import engine consumes. Quoting, escaping, delimiters and
// encoding quirks end here; downstream components only see Raw Rows.
package reader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/soldibase/soldibase/internal/domain/import/sniffer"
)

// Row maps a column name, as it appeared in the file header, to the raw
// cell text. Consumed read-only.
type Row map[string]string

// Document is one parsed upload: the header names and every data row.
type Document struct {
	Headers []string
	Rows    []Row
	Layout  *sniffer.Layout
}

// ReadCSV parses delimited text into a Document, sniffing the delimiter and
// header row and normalizing the byte encoding first.
func ReadCSV(data []byte) (*Document, error) {
	data = normalizeBytes(data)

	layout, err := sniffer.DetectLayout(data)
	if err != nil {
		return nil, fmt.Errorf("detect layout: %w", err)
	}

	// Cut above the first data line by physical lines: csv.Reader skips
	// blank lines on its own, so skipping N records would drift.
	lines := strings.Split(string(data), "\n")
	body := strings.Join(lines[layout.HeaderRow+1:], "\n")

	r := csv.NewReader(strings.NewReader(body))
	r.Comma = layout.Delimiter
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	doc := &Document{Headers: layout.Headers, Layout: layout}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// One mangled line must not sink the upload.
			continue
		}
		if row, ok := recordToRow(layout.Headers, record); ok {
			doc.Rows = append(doc.Rows, row)
		}
	}
	return doc, nil
}

// recordToRow keys cells by header name. Cells past the header width are
// dropped; missing cells stay empty. Fully empty records are skipped.
func recordToRow(headers []string, record []string) (Row, bool) {
	row := make(Row, len(headers))
	empty := true
	for i, header := range headers {
		if header == "" {
			continue
		}
		value := ""
		if i < len(record) {
			value = record[i]
		}
		if value != "" {
			empty = false
		}
		row[header] = value
	}
	return row, !empty
}

// normalizeBytes strips a UTF-8 BOM and transcodes Latin-1 exports, which
// some banks still produce, into valid UTF-8.
func normalizeBytes(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}
	if utf8.Valid(data) {
		return data
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return []byte(string(runes))
}
