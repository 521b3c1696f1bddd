package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, time.June, 10, 9, 30, 0, 0, time.UTC)

func midday(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		want   time.Time
		parsed bool
	}{
		{"day first with slashes", "05/03/2024", midday(2024, time.March, 5), true},
		{"iso year first", "2024-03-05", midday(2024, time.March, 5), true},
		{"two digit year", "05/03/24", midday(2024, time.March, 5), true},
		{"dotted german style", "05.03.2024", midday(2024, time.March, 5), true},
		{"dashes day first", "31-12-2024", midday(2024, time.December, 31), true},
		{"ambiguous resolves day first", "03/04/2024", midday(2024, time.April, 3), true},
		{"iso with time", "2024-03-05T14:22:00Z", midday(2024, time.March, 5), true},
		{"textual month", "5 Mar 2024", midday(2024, time.March, 5), true},
		{"not a date", "not a date", midday(2025, time.June, 10), false},
		{"empty", "", midday(2025, time.June, 10), false},
		{"structured split ignores year floor", "1999-01-01", midday(1999, time.January, 1), true},
		{"month out of range", "05/13/2024", midday(2025, time.June, 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDateAt(tt.token, testNow)
			assert.Equal(t, tt.parsed, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate_NormalizedToMidday(t *testing.T) {
	got, ok := parseDateAt("01/02/2024", testNow)
	assert.True(t, ok)
	assert.Equal(t, 12, got.Hour())
	assert.Equal(t, midday(2024, time.February, 1), got)
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "Coffee Shop", CleanDescription("  Coffee   Shop  "))
	assert.Equal(t, "", CleanDescription("   "))
}
