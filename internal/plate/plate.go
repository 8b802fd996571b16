// Package plate canonicalizes and validates vehicle license plates.
package plate

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultPatterns accepts Mercosul plates (AAA1A23) and the legacy
// Brazilian format (AAA1234).
var DefaultPatterns = []string{
	`^[A-Z]{3}[0-9][A-Z0-9][0-9]{2}$`,
	`^[A-Z]{3}[0-9]{4}$`,
}

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

// Normalize strips separators and whitespace and uppercases the plate,
// producing the canonical form stored and compared everywhere.
func Normalize(raw string) string {
	return strings.ToUpper(nonAlphanumeric.ReplaceAllString(raw, ""))
}

// Validator matches canonical plates against a set of accepted formats.
type Validator struct {
	patterns []*regexp.Regexp
}

// NewValidator compiles the given expressions. Empty input falls back to
// DefaultPatterns.
func NewValidator(exprs []string) (*Validator, error) {
	if len(exprs) == 0 {
		exprs = DefaultPatterns
	}
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compile plate pattern %q: %w", expr, err)
		}
		patterns = append(patterns, re)
	}
	return &Validator{patterns: patterns}, nil
}

// Valid reports whether the canonical plate matches any accepted format.
func (v *Validator) Valid(canonical string) bool {
	if canonical == "" {
		return false
	}
	for _, re := range v.patterns {
		if re.MatchString(canonical) {
			return true
		}
	}
	return false
}
