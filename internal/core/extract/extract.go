// Package extract pulls a single SQL statement out of free-form model output.
package extract

import (
	"regexp"

	"github.com/satishbabariya/nlsql/internal/apperr"
)

// selectPattern matches the shortest SELECT ... ; span, ignoring case and
// crossing line breaks.
var selectPattern = regexp.MustCompile(`(?is)select.*?;`)

// SQL returns the first SELECT statement in text, terminator included, exactly
// as it appears.
func SQL(text string) (string, error) {
	m := selectPattern.FindString(text)
	if m == "" {
		return "", apperr.New(apperr.ExecutionError, "Failed to extract SQL query from AI response")
	}
	return m, nil
}
