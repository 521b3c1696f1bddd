package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	t.Run("comma delimited", func(t *testing.T) {
		doc, err := ReadCSV([]byte("date,description,amount\n2024-01-05,Coffee,-2.50\n2024-01-06,Salary,1000\n"))
		require.NoError(t, err)

		assert.Equal(t, []string{"date", "description", "amount"}, doc.Headers)
		require.Len(t, doc.Rows, 2)
		assert.Equal(t, "Coffee", doc.Rows[0]["description"])
		assert.Equal(t, "-2.50", doc.Rows[0]["amount"])
	})

	t.Run("semicolon with metadata lines", func(t *testing.T) {
		data := []byte("Estratto conto N. 42\n\nData;Descrizione;Entrata;Uscita\n" +
			"05/01/2024;Stipendio;1.000,00;\n" +
			"06/01/2024;Caffè;;2,50\n")

		doc, err := ReadCSV(data)
		require.NoError(t, err)

		require.Len(t, doc.Rows, 2)
		assert.Equal(t, "1.000,00", doc.Rows[0]["Entrata"])
		assert.Equal(t, "2,50", doc.Rows[1]["Uscita"])
	})

	t.Run("short records padded with empty cells", func(t *testing.T) {
		doc, err := ReadCSV([]byte("date,description,amount\n2024-01-05,Coffee\n"))
		require.NoError(t, err)

		require.Len(t, doc.Rows, 1)
		assert.Equal(t, "", doc.Rows[0]["amount"])
	})

	t.Run("blank lines skipped", func(t *testing.T) {
		doc, err := ReadCSV([]byte("date,description,amount\n2024-01-05,Coffee,-2.50\n\n\n"))
		require.NoError(t, err)
		assert.Len(t, doc.Rows, 1)
	})

	t.Run("latin1 bytes survive", func(t *testing.T) {
		// "Caffè" with a Latin-1 encoded è (0xE8).
		data := append([]byte("date,description,amount\n2024-01-05,Caff"), 0xE8)
		data = append(data, []byte(",-2.50\n")...)

		doc, err := ReadCSV(data)
		require.NoError(t, err)
		require.Len(t, doc.Rows, 1)
		assert.Equal(t, "Caffè", doc.Rows[0]["description"])
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ReadCSV(nil)
		assert.Error(t, err)
	})
}
