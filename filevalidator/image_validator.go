package filevalidator

import (
	"regexp"
	"strings"
)

// svgDangerousPatterns are matched case-insensitively against raw SVG text.
// This is a coarse second layer; markup.SanitizeSVG does the real stripping.
var svgDangerousPatterns = []string{
	"<script",
	"javascript:",
	"onerror=",
	"onload=",
	"onclick=",
	"<foreignobject",
}

// svgPrefixedElement catches namespace-prefixed forms like <svg:script>,
// which XML parsers execute but the literal patterns miss.
var svgPrefixedElement = regexp.MustCompile(`</?[\w.-]+:(script|foreignobject)\b`)

// IsSafeImage reports whether content is a genuine image of claimedExt
// and, for SVG, free of obvious active content. The reason is "OK" on
// success and names the failing check otherwise.
func IsSafeImage(content []byte, claimedExt string) (bool, string) {
	res := CheckImage(content, claimedExt)
	return res.Valid, res.Message
}

// CheckImage is IsSafeImage with a reason code attached.
func CheckImage(content []byte, claimedExt string) ValidationResult {
	ext := NormalizeExtension(claimedExt)
	if !ImageExtensions().Has(ext) {
		return reject(ext, ReasonNotAnImage, "Extension '%s' is not an allowed image type", ext)
	}

	valid, detected := ValidateMagicBytes(content, ext)
	if !valid {
		if detected != "" {
			return reject(ext, ReasonContentMismatch,
				"File content doesn't match extension (detected: %s)", detected)
		}
		return reject(ext, ReasonContentMismatch, "File content doesn't match claimed image type")
	}

	if ext == "svg" {
		if pattern, found := findDangerousSVG(content); found {
			return reject(ext, ReasonDangerousContent,
				"SVG contains potentially dangerous content: %s", pattern)
		}
	}

	return accept(ext, detected)
}

func findDangerousSVG(content []byte) (string, bool) {
	text := strings.ToLower(strings.ToValidUTF8(string(content), ""))
	for _, pattern := range svgDangerousPatterns {
		if strings.Contains(text, pattern) {
			return pattern, true
		}
	}
	if m := svgPrefixedElement.FindString(text); m != "" {
		return m, true
	}
	return "", false
}
