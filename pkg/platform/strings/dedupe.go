// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// NormalizeCodes canonicalizes a list of enum-like codes: each element is
// trimmed, lowercased, and has inner spaces and hyphens folded to underscores.
// Empty elements and duplicates are dropped. Order of first occurrence is
// preserved.
//
// Example:
//
//	NormalizeCodes([]string{" Private-Medical ", "banking", "private_medical", ""})
//	// Returns: []string{"private_medical", "banking"}
func NormalizeCodes(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		code := codeReplacer.Replace(strings.ToLower(strings.TrimSpace(v)))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; !ok {
			seen[code] = struct{}{}
			result = append(result, code)
		}
	}

	return result
}

var codeReplacer = strings.NewReplacer(" ", "_", "-", "_")

// Dedupe removes repeated values while keeping the first occurrence of each.
func Dedupe[T comparable](values []T) []T {
	if len(values) == 0 {
		return values
	}

	seen := make(map[T]struct{}, len(values))
	result := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
