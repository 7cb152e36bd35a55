package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// strips spaces, collapse inner whitespace, uppercase first letters, remove trailing period
func CleanupString(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = cases.Title(language.English, cases.NoLower).String(s)
	s = strings.TrimSuffix(s, ".")
	return s
}
