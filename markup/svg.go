package markup

import (
	"regexp"
	"strings"
)

// SVG files are rewritten textually: an HTML parser would lowercase
// attribute names such as viewBox and break rendering.
var (
	svgDoctype         = regexp.MustCompile(`(?is)<!DOCTYPE[^>\[]*(?:\[.*?\])?\s*>`)
	svgScript          = regexp.MustCompile(`(?is)<(?:[\w.-]+:)?script\b[^>]*>.*?</(?:[\w.-]+:)?script\s*>`)
	svgStrayScript     = regexp.MustCompile(`(?i)</?(?:[\w.-]+:)?script\b[^>]*>`)
	svgForeignObject   = regexp.MustCompile(`(?is)<(?:[\w.-]+:)?foreignObject\b[^>]*>.*?</(?:[\w.-]+:)?foreignObject\s*>`)
	svgStrayForeign    = regexp.MustCompile(`(?i)</?(?:[\w.-]+:)?foreignObject\b[^>]*>`)
	svgEventHandler    = regexp.MustCompile(`(?i)[\s/]+on\w+\s*=\s*(?:"[^"]*"|'[^']*'|[^\s>]+)`)
	svgURLAttr         = regexp.MustCompile(`(?i)([\s/])((?:xlink:)?href|src|values|from|to)\s*=\s*("[^"]*"|'[^']*'|[^\s>"']+)`)
	svgExternalUsePair = regexp.MustCompile(`(?is)<use\b[^>]*\bhref\s*=\s*["']?\s*(?:https?:)?//[^>]*>\s*</use\s*>`)
	svgExternalUseSolo = regexp.MustCompile(`(?i)<use\b[^>]*\bhref\s*=\s*["']?\s*(?:https?:)?//[^>]*>`)
)

// SanitizeSVG strips active content from an uploaded SVG document while
// keeping its markup otherwise byte-for-byte: DOCTYPE and entity
// declarations, script and foreignObject elements with their content
// (namespace-prefixed forms such as svg:script included),
// event handler attributes, script URLs, non-image data: URLs and <use>
// references to external documents. Invalid UTF-8 is dropped.
func SanitizeSVG(content []byte) []byte {
	text := strings.ToValidUTF8(string(content), "")

	text = svgDoctype.ReplaceAllString(text, "")
	text = svgScript.ReplaceAllString(text, "")
	text = svgStrayScript.ReplaceAllString(text, "")
	text = svgForeignObject.ReplaceAllString(text, "")
	text = svgStrayForeign.ReplaceAllString(text, "")
	text = svgEventHandler.ReplaceAllString(text, "")
	text = svgURLAttr.ReplaceAllStringFunc(text, neutralizeSVGURL)
	text = svgExternalUsePair.ReplaceAllString(text, "")
	text = svgExternalUseSolo.ReplaceAllString(text, "")

	return []byte(text)
}

// neutralizeSVGURL empties a URL-bearing attribute whose value could run
// script, keeping the attribute name and its case.
func neutralizeSVGURL(match string) string {
	m := svgURLAttr.FindStringSubmatch(match)
	sep, name, value := m[1], m[2], strings.Trim(m[3], `"'`)
	if safeSVGURL(strings.ToLower(name), value) {
		return match
	}
	return sep + name + `=""`
}

func safeSVGURL(name, value string) bool {
	v := normalizeURL(unescapeEntities(value))
	switch name {
	case "values", "from", "to":
		// animation targets may rewrite href
		return !strings.Contains(v, "javascript:") && !strings.Contains(v, "vbscript:") &&
			!strings.Contains(v, "data:text")
	}
	scheme, ok := urlScheme(v)
	if !ok {
		return false
	}
	switch scheme {
	case "javascript", "vbscript":
		return false
	case "data":
		return strings.HasPrefix(v, "data:image/")
	}
	return true
}
