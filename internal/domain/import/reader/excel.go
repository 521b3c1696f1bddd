package reader

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/soldibase/soldibase/internal/domain/import/sniffer"
)

// Sheet names that typically carry the data of interest.
var preferredSheetNames = []string{
	"movimenti", "transactions", "transazioni", "operazioni", "trades", "estratto",
}

// ReadExcel parses the first suitable sheet of an XLSX workbook into a
// Document, reusing the sniffer's header-row heuristics on the cell grid.
func ReadExcel(r io.Reader) (*Document, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := pickSheet(f)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	headerRow := findHeaderGridRow(grid)
	if headerRow < 0 {
		return nil, sniffer.ErrNoHeadersFound
	}

	headers := make([]string, len(grid[headerRow]))
	for i, h := range grid[headerRow] {
		headers[i] = strings.TrimSpace(h)
	}

	doc := &Document{
		Headers: headers,
		Layout:  &sniffer.Layout{HeaderRow: headerRow, Headers: headers, Fingerprint: sniffer.Fingerprint(headers)},
	}
	for _, record := range grid[headerRow+1:] {
		if row, ok := recordToRow(headers, record); ok {
			doc.Rows = append(doc.Rows, row)
		}
	}
	return doc, nil
}

func pickSheet(f *excelize.File) string {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}
	for _, sheet := range sheets {
		lower := strings.ToLower(sheet)
		for _, name := range preferredSheetNames {
			if strings.Contains(lower, name) {
				return sheet
			}
		}
	}
	return sheets[0]
}

// findHeaderGridRow picks the first of the top rows that looks like a
// header: at least two non-empty cells, preferring keyword matches by
// joining the cells and reusing the delimited-text scoring.
func findHeaderGridRow(grid [][]string) int {
	fallback := -1
	for i, record := range grid {
		if i > 20 {
			break
		}
		nonEmpty := 0
		for _, c := range record {
			if strings.TrimSpace(c) != "" {
				nonEmpty++
			}
		}
		if nonEmpty < 2 {
			continue
		}
		joined := strings.ToLower(strings.Join(record, ";"))
		if sniffer.HasHeaderKeywords(joined) {
			return i
		}
		if fallback < 0 {
			fallback = i
		}
	}
	return fallback
}
