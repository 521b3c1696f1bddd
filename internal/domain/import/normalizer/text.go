package normalizer

import "strings"

// CleanDescription trims a free-text cell and collapses repeated whitespace.
// Bank exports love fixed-width padding.
func CleanDescription(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
