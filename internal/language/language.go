// Package language detects the source language of claim text.
package language

import (
	"strings"
	"unicode"

	xlang "golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Base language codes the pipeline routes on.
const (
	English = "en"
	Russian = "ru"
)

// Detect returns the base language code for text. A declared language wins
// when it parses as a BCP-47 tag; otherwise Cyrillic script marks the text
// Russian and everything else is treated as English.
func Detect(text, declared string) string {
	if declared != "" {
		if tag, err := xlang.Parse(declared); err == nil {
			base, _ := tag.Base()
			return base.String()
		}
	}
	if hasCyrillic(text) {
		return Russian
	}
	return English
}

// IsEnglish reports whether code is the English base code.
func IsEnglish(code string) bool {
	return code == English
}

func hasCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}

// Fold lowercases s and strips diacritical marks for keyword matching.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, _ := transform.String(t, s)
	return strings.ToLower(folded)
}
