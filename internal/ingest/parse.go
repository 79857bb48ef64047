// Package ingest reads achievement exports and aggregates them per game.
package ingest

import (
	"math"
	"strconv"
	"strings"
)

// ParseInt parses an integer field, ignoring thousands separators.
// It returns def when the value cannot be parsed.
func ParseInt(text string, def int) int {
	s := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// ParseFloat parses a float field. Empty, malformed and non-finite values yield nil.
func ParseFloat(text string) *float64 {
	return ParseFloatDefault(text, nil)
}

// ParseFloatDefault is ParseFloat with a caller-supplied fallback.
func ParseFloatDefault(text string, def *float64) *float64 {
	s := strings.TrimSpace(text)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return &v
}

// ParseTruthy reports whether a flag field holds a true-like value.
func ParseTruthy(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "1", "true", "yes", "y", "t":
		return true
	default:
		return false
	}
}
