// Package security implements the input filters applied to every request
// before it reaches a handler.
//
// The record store is only ever queried through parameterized statements, so
// these filters are a defense-in-depth layer: Clean neutralizes markup and
// strips a denylist of SQL/command fragments, Inspect rejects values that look
// like a whole SQL statement.
package security

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/folio-labs/portfolio-api/internal/apperr"
)

// MaxValueLength is the longest string value (in runes) a request may carry.
const MaxValueLength = 10000

var markup = bluemonday.StrictPolicy()

var stripPatterns = []*regexp.Regexp{
	regexp.MustCompile(`--`),
	regexp.MustCompile(`/\*[\s\S]*?\*/`),
	regexp.MustCompile(`;\s*$`),
	regexp.MustCompile(`(?i)xp_`),
	regexp.MustCompile(`(?i)sp_`),
	regexp.MustCompile(`(?i)\bEXEC\b`),
	regexp.MustCompile(`(?i)\bEXECUTE\b`),
}

var statementPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)\bSELECT\b.*\bFROM\b`),
	regexp.MustCompile(`(?is)\bINSERT\b.*\bINTO\b`),
	regexp.MustCompile(`(?is)\bUPDATE\b.*\bSET\b`),
	regexp.MustCompile(`(?is)\bDELETE\b.*\bFROM\b`),
	regexp.MustCompile(`(?is)\bDROP\b.*\bTABLE\b`),
	regexp.MustCompile(`(?is)\bCREATE\b.*\bTABLE\b`),
	regexp.MustCompile(`(?is)\bALTER\b.*\bTABLE\b`),
	regexp.MustCompile(`(?is)\bGRANT\b.*\bTO\b`),
	regexp.MustCompile(`(?is)\bREVOKE\b.*\bFROM\b`),
	regexp.MustCompile(`(?is)\bTRUNCATE\b.*\bTABLE\b`),
}

var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\.\.`),
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)union.*select`),
	regexp.MustCompile(`(?i)insert.*into`),
	regexp.MustCompile(`(?i)delete.*from`),
	regexp.MustCompile(`(?i)update.*set`),
	regexp.MustCompile(`(?i)drop.*table`),
	regexp.MustCompile(`(?i)create.*table`),
	regexp.MustCompile(`(?i)alter.*table`),
	regexp.MustCompile(`(?i)grant.*to`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)data:`),
	regexp.MustCompile(`(?i)vbscript:`),
	regexp.MustCompile(`--`),
	regexp.MustCompile(`/\*`),
	regexp.MustCompile(`(?i)xp_`),
	regexp.MustCompile(`(?i)sp_`),
}

// Clean neutralizes markup in s and strips the SQL/command denylist.
// Values without markup characters keep their text unchanged apart from the
// denylist, so apostrophes and ampersands survive.
func Clean(s string) string {
	if strings.ContainsAny(s, "<>") {
		s = markup.Sanitize(s)
	}
	for _, p := range stripPatterns {
		s = p.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}

// Inspect rejects a value that is too long, carries a NUL character or looks
// like a SQL statement. The returned error names the field but never echoes
// the value.
func Inspect(field, value string) error {
	if utf8.RuneCountInString(value) > MaxValueLength {
		return apperr.Validation("invalid input data",
			apperr.FieldError{Field: field, Message: fmt.Sprintf("field '%s' exceeds the maximum allowed length", field)})
	}
	if strings.ContainsRune(value, 0) {
		return apperr.Validation("invalid input data",
			apperr.FieldError{Field: field, Message: fmt.Sprintf("field '%s' contains invalid characters", field)})
	}
	if MatchesStatement(value) {
		return apperr.Validation("invalid input data",
			apperr.FieldError{Field: field, Message: fmt.Sprintf("field '%s' contains disallowed patterns", field)})
	}
	return nil
}

// MatchesStatement reports whether value contains a <VERB> ... <CLAUSE> SQL idiom.
func MatchesStatement(value string) bool {
	for _, p := range statementPatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// Suspicious returns the first security-logger pattern found in s.
func Suspicious(s string) (string, bool) {
	for _, p := range suspiciousPatterns {
		if p.MatchString(s) {
			return p.String(), true
		}
	}
	return "", false
}
