package agent

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var markupPattern = regexp.MustCompile(`<[^<>]*>`)

// sanitize drops any answer that looks like markup.
func sanitize(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "<") || strings.Contains(text, "</") || markupPattern.MatchString(text) {
		return ""
	}
	return text
}

// normalizeInput composes accents and lower-cases with Portuguese rules,
// so "NÃO" typed with a combining tilde still matches "não".
func normalizeInput(raw string) string {
	text := norm.NFC.String(sanitize(raw))
	return cases.Lower(language.BrazilianPortuguese).String(text)
}
