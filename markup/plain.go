package markup

import (
	"html"
	"strings"
	"unicode/utf8"
)

var pdfEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeForPDF escapes text for HTML-based PDF engines.
func EscapeForPDF(text string) string {
	return pdfEscaper.Replace(text)
}

// Truncate shortens text to at most maxLen runes, cutting at the last
// space inside the limit, and appends suffix. Text within the limit is
// returned unchanged.
func Truncate(text string, maxLen int, suffix string) string {
	if maxLen < 0 || utf8.RuneCountInString(text) <= maxLen {
		return text
	}

	cut := text
	n := 0
	for i := range text {
		if n == maxLen {
			cut = text[:i]
			break
		}
		n++
	}
	if i := strings.LastIndexByte(cut, ' '); i >= 0 {
		cut = cut[:i]
	}
	return cut + suffix
}

func unescapeEntities(s string) string {
	return html.UnescapeString(s)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
