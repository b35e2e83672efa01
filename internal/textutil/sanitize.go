package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// maxNameBytes keeps generated names, plus an extension, under the common
// 255-byte filesystem limit.
const maxNameBytes = 200

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters and control characters are removed. The result is NFC
// normalized, trimmed of surrounding whitespace and trailing dots, and never
// "." or "..".
func SanitizeFileName(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	name = fileNameReplacer.Replace(name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == utf8.RuneError {
			return -1
		}
		return r
	}, name)
	name = strings.TrimRight(strings.TrimSpace(name), ". ")
	name = truncateBytes(name, maxNameBytes)
	if name == "." || name == ".." {
		return ""
	}
	return name
}

// FileNameOr sanitizes name and falls back to fallback when nothing usable
// remains.
func FileNameOr(name, fallback string) string {
	if cleaned := SanitizeFileName(name); cleaned != "" {
		return cleaned
	}
	return SanitizeFileName(fallback)
}

func truncateBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut])
}
