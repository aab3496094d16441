package handlers

import (
	"strconv"
	"strings"
)

// violations accumulates every failed validation rule for a form submission.
// Handlers report the whole list at once instead of stopping at the first
// failure, and perform no write while the list is non-empty.
type violations []string

func (v *violations) add(message string) {
	*v = append(*v, message)
}

func (v violations) message() string {
	return "Record NOT added:\n" + strings.Join(v, "\n")
}

// requireText trims the value and records a violation when nothing remains.
func requireText(v *violations, value, message string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		v.add(message)
	}
	return trimmed
}

// requireIntRange records a violation unless the value parses as an integer
// within [min, max].
func requireIntRange(v *violations, value string, min, max int, message string) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < min || parsed > max {
		v.add(message)
		return 0
	}
	return parsed
}

// requireCount records a violation unless the value parses as a non-negative
// integer.
func requireCount(v *violations, value string, message string) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < 0 {
		v.add(message)
		return 0
	}
	return parsed
}
