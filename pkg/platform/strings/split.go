// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// SplitNonEmpty splits a comma-separated field into its values, trimming
// whitespace and dropping empty entries. Order is preserved and duplicates
// are kept. An absent or all-whitespace input yields a nil slice so callers
// can distinguish "no field" from "empty list".
//
// Example:
//
//	SplitNonEmpty("https://a.example, ,https://b.example")
//	// Returns: []string{"https://a.example", "https://b.example"}
func SplitNonEmpty(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
