package sniffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLayout_SemicolonWithMetadata(t *testing.T) {
	data := []byte("Estratto conto\nPeriodo: 01/01/2024 - 31/01/2024\n" +
		"Data;Descrizione;Entrata;Uscita\n" +
		"05/01/2024;Stipendio;1.000,00;\n" +
		"06/01/2024;Caffè;;2,50\n")

	layout, err := DetectLayout(data)
	require.NoError(t, err)

	assert.Equal(t, ';', int32(layout.Delimiter))
	assert.Equal(t, 2, layout.HeaderRow)
	assert.Equal(t, []string{"Data", "Descrizione", "Entrata", "Uscita"}, layout.Headers)
	assert.Len(t, layout.SampleRows, 2)
	assert.NotEmpty(t, layout.Fingerprint)
}

func TestDetectLayout_CommaDelimited(t *testing.T) {
	data := []byte("date,description,amount\n2024-01-05,Coffee,-2.50\n")

	layout, err := DetectLayout(data)
	require.NoError(t, err)

	assert.Equal(t, ',', int32(layout.Delimiter))
	assert.Equal(t, 0, layout.HeaderRow)
	assert.Equal(t, []string{"date", "description", "amount"}, layout.Headers)
}

func TestDetectLayout_StripsBOM(t *testing.T) {
	data := []byte("\uFEFFdate,description,amount\n2024-01-05,Coffee,-2.50\n")

	layout, err := DetectLayout(data)
	require.NoError(t, err)
	assert.Equal(t, "date", layout.Headers[0])
}

func TestDetectLayout_EmptyFile(t *testing.T) {
	_, err := DetectLayout(nil)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = DetectLayout([]byte("\n\n\n"))
	assert.ErrorIs(t, err, ErrNoHeadersFound)
}

func TestFingerprint_IgnoresCaseAndPunctuation(t *testing.T) {
	a := Fingerprint([]string{"Data Mov.", "Descrizione"})
	b := Fingerprint([]string{"data mov", "DESCRIZIONE"})
	c := Fingerprint([]string{"data mov", "importo"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
