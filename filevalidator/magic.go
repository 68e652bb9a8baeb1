package filevalidator

import (
	"bytes"
	"strings"
)

// binarySniffLen is how much of a text file is checked for NUL bytes.
const binarySniffLen = 1024

// NormalizeExtension strips leading dots and lowercases the result:
// ".PNG" and "png" both become "png". Whitespace is significant.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimLeft(ext, "."))
}

// DetectFileType returns the extension of the first table entry whose
// signature matches content. Entries are tried in registration order.
// Text types are never detected since they carry no signature.
func DetectFileType(content []byte) (string, bool) {
	for _, entry := range signatureTable {
		if entry.Text {
			continue
		}
		if entry.match(content) {
			return entry.Extension, true
		}
	}
	return "", false
}

// ValidateMagicBytes checks content against the signatures of claimedExt.
//
// It returns the MIME type on success. On failure the second value is the
// extension DetectFileType found instead, or empty when nothing matched or
// the claimed extension is unknown. Unknown extensions are always rejected.
func ValidateMagicBytes(content []byte, claimedExt string) (bool, string) {
	entry, ok := LookupExtension(claimedExt)
	if !ok {
		return false, ""
	}

	if entry.Text {
		if looksBinary(content) {
			return false, ""
		}
		return true, entry.MIME
	}

	if entry.match(content) {
		return true, entry.MIME
	}

	detected, _ := DetectFileType(content)
	return false, detected
}

// looksBinary reports whether the head of content contains a NUL byte.
func looksBinary(content []byte) bool {
	head := content
	if len(head) > binarySniffLen {
		head = head[:binarySniffLen]
	}
	return bytes.IndexByte(head, 0) >= 0
}

// MIMEForExtension returns the MIME type registered for ext, or empty.
func MIMEForExtension(ext string) string {
	if i, ok := signatureIndex[NormalizeExtension(ext)]; ok {
		return signatureTable[i].MIME
	}
	return ""
}
