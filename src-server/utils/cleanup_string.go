package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// strips spaces and upper-cases, for codes and choices typed by users
func CleanupCode(s string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(s))
}
