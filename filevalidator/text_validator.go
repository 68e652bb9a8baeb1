package filevalidator

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// prologSniffLen bounds the DTD scan, matching where declarations must appear.
const prologSniffLen = 1024

// XMLValidator checks scanner exports (Burp, Nessus) before they are parsed
// by importers.
type XMLValidator struct {
	MaxDepth int  // Maximum nesting depth, 0 for unlimited
	AllowDTD bool // Allow DTD declarations (can be dangerous)
}

// DefaultXMLValidator creates an XML validator with secure defaults
func DefaultXMLValidator() *XMLValidator {
	return &XMLValidator{
		MaxDepth: 100,
		AllowDTD: false,
	}
}

// ValidateContent decodes content (UTF-8, or UTF-16 with BOM) and rejects
// DTD or entity declarations, malformed XML and excessive nesting.
func (v *XMLValidator) ValidateContent(content []byte) error {
	decoded, err := decodeXML(content)
	if err != nil {
		return NewValidationError(ReasonContentMismatch, fmt.Sprintf("undecodable XML: %v", err))
	}

	if !v.AllowDTD {
		if err := ValidateXMLProlog(decoded); err != nil {
			return err
		}
	}

	decoder := xml.NewDecoder(bytes.NewReader(decoded))
	// The prolog may still name UTF-16 after transcoding.
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	depth := 0
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return NewValidationError(ReasonContentMismatch, fmt.Sprintf("invalid XML: %v", err))
		}

		switch token.(type) {
		case xml.StartElement:
			depth++
			if v.MaxDepth > 0 && depth > v.MaxDepth {
				return NewValidationError(ReasonDangerousContent,
					fmt.Sprintf("XML nesting depth exceeds maximum %d", v.MaxDepth))
			}
		case xml.EndElement:
			depth--
		case xml.Directive:
			if !v.AllowDTD {
				return NewValidationError(ReasonDangerousContent,
					"XML DTD/ENTITY declarations not allowed (XXE protection)")
			}
		}
	}

	return nil
}

// ValidateXMLProlog rejects DOCTYPE and ENTITY declarations in the first
// kilobyte of UTF-8 content.
func ValidateXMLProlog(content []byte) error {
	head := content
	if len(head) > prologSniffLen {
		head = head[:prologSniffLen]
	}
	if bytes.Contains(head, []byte("<!DOCTYPE")) || bytes.Contains(head, []byte("<!ENTITY")) {
		return NewValidationError(ReasonDangerousContent,
			"XML DTD/ENTITY declarations not allowed (XXE protection)")
	}
	return nil
}

// decodeXML transcodes BOM-marked UTF-16 to UTF-8 and drops a UTF-8 BOM.
func decodeXML(content []byte) ([]byte, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, content)
	return out, err
}
