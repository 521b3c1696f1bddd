// Package sniffer detects the layout of delimited statement exports and
// proposes a column mapping per target record shape from the header names.
package sniffer

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"unicode"
)

var (
	ErrEmptyFile        = errors.New("file is empty")
	ErrNoHeadersFound   = errors.New("could not find data headers")
	ErrInvalidDelimiter = errors.New("could not detect valid delimiter")
)

// Header keywords seen in bank and broker exports (English and Italian).
var headerKeywords = []string{
	"date", "data", "description", "descrizione", "causale", "memo",
	"amount", "importo", "valore", "value",
	"income", "entrata", "entrate", "credit", "accredito",
	"expense", "uscita", "uscite", "debit", "addebito",
	"account", "conto", "category", "categoria", "type", "tipo",
	"ticker", "symbol", "simbolo", "isin", "titolo",
	"quantity", "quantità", "quantita", "qty",
	"price", "prezzo", "fee", "commissione", "commissioni",
	"total", "totale", "controvalore", "balance", "saldo", "name", "nome",
}

// Layout holds the detected physical structure of a delimited file.
type Layout struct {
	Delimiter   rune       // field delimiter (';', ',', '\t', '|')
	HeaderRow   int        // 0-based index of the header line
	Headers     []string   // header names, trimmed
	Fingerprint string     // SHA-256 of normalized headers
	SampleRows  [][]string // first few data rows for preview
}

// DetectLayout analyzes raw delimited text and locates its header row,
// delimiter and headers. Metadata lines above the header are tolerated.
func DetectLayout(data []byte) (*Layout, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	lines := strings.Split(string(data), "\n")
	delimiter, headerRow, err := findHeaderRow(lines)
	if err != nil {
		return nil, err
	}

	headerLine := cleanLine(lines[headerRow], headerRow == 0)
	reader := csv.NewReader(strings.NewReader(headerLine))
	reader.Comma = delimiter
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		return nil, err
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	return &Layout{
		Delimiter:   delimiter,
		HeaderRow:   headerRow,
		Headers:     headers,
		Fingerprint: Fingerprint(headers),
		SampleRows:  sampleRows(data, delimiter, headerRow+1, 5),
	}, nil
}

// findHeaderRow scores candidate lines by column count and keyword matches.
// Real headers have many columns; metadata lines above them have few.
func findHeaderRow(lines []string) (rune, int, error) {
	keywordIndex, fallbackIndex := -1, -1
	keywordDelimiter, fallbackDelimiter := rune(0), rune(0)
	keywordScore, fallbackCols := 0, 0

	for i, line := range lines {
		if i > 20 {
			break
		}
		line = cleanLine(line, i == 0)
		if line == "" {
			continue
		}

		delimiter, cols := detectDelimiter(line)
		if cols < 1 {
			continue
		}

		matches := 0
		lower := strings.ToLower(line)
		for _, kw := range headerKeywords {
			if strings.Contains(lower, kw) {
				matches++
			}
		}

		if matches > 0 {
			score := cols*10 + matches
			if score > keywordScore {
				keywordScore = score
				keywordDelimiter = delimiter
				keywordIndex = i
			}
		} else if cols > fallbackCols {
			fallbackCols = cols
			fallbackDelimiter = delimiter
			fallbackIndex = i
		}
	}

	if keywordIndex >= 0 {
		return keywordDelimiter, keywordIndex, nil
	}
	if fallbackCols >= 2 {
		return fallbackDelimiter, fallbackIndex, nil
	}
	return 0, 0, ErrNoHeadersFound
}

// HasHeaderKeywords reports whether a lowercased line contains any known
// header keyword. Shared with the Excel reader.
func HasHeaderKeywords(lower string) bool {
	for _, kw := range headerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func cleanLine(line string, firstLine bool) string {
	line = strings.TrimRight(line, "\r")
	if firstLine {
		line = strings.TrimPrefix(line, "\uFEFF")
	}
	return strings.TrimSpace(line)
}

func detectDelimiter(line string) (rune, int) {
	best, bestCount := rune(0), 0
	for _, d := range []rune{';', '\t', ',', '|'} {
		if count := strings.Count(line, string(d)); count > bestCount {
			bestCount = count
			best = d
		}
	}
	return best, bestCount
}

// Fingerprint hashes the normalized header names so a confirmed mapping can
// be recalled the next time the same layout is uploaded.
func Fingerprint(headers []string) string {
	var normalized []string
	for _, h := range headers {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, h)
		if clean != "" {
			normalized = append(normalized, clean)
		}
	}
	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}

func sampleRows(data []byte, delimiter rune, startLine, maxRows int) [][]string {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var rows [][]string
	lineNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if lineNum >= startLine {
			rows = append(rows, record)
			if len(rows) >= maxRows {
				break
			}
		}
		lineNum++
	}
	return rows
}
