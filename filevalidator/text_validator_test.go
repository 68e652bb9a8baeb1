package filevalidator

import (
	"strings"
	"testing"
)

func TestXMLValidator_ValidateContent(t *testing.T) {
	tests := []struct {
		name       string
		content    []byte
		validator  *XMLValidator
		wantReason ReasonCode
	}{
		{
			name:      "nessus export",
			content:   []byte(`<?xml version="1.0" ?><NessusClientData_v2><Report name="scan"><ReportHost name="10.0.0.1"/></Report></NessusClientData_v2>`),
			validator: DefaultXMLValidator(),
		},
		{
			name:      "utf-8 bom",
			content:   []byte("\xef\xbb\xbf<?xml version=\"1.0\"?><issues/>"),
			validator: DefaultXMLValidator(),
		},
		{
			name:      "utf-16 le burp export",
			content:   utf16LE(`<?xml version="1.0" encoding="UTF-16"?><issues><issue/></issues>`),
			validator: DefaultXMLValidator(),
		},
		{
			name:       "doctype",
			content:    []byte(`<?xml version="1.0"?><!DOCTYPE foo [<!ENTITY xxe SYSTEM "file:///etc/passwd">]><foo>&xxe;</foo>`),
			validator:  DefaultXMLValidator(),
			wantReason: ReasonDangerousContent,
		},
		{
			name:       "doctype hidden in utf-16",
			content:    utf16LE(`<?xml version="1.0"?><!DOCTYPE foo SYSTEM "http://evil/x.dtd"><foo/>`),
			validator:  DefaultXMLValidator(),
			wantReason: ReasonDangerousContent,
		},
		{
			name:       "doctype after the first kilobyte",
			content:    []byte(`<?xml version="1.0"?><!--` + strings.Repeat("x", 2048) + `--><!DOCTYPE foo><foo/>`),
			validator:  DefaultXMLValidator(),
			wantReason: ReasonDangerousContent,
		},
		{
			name:       "malformed",
			content:    []byte(`<?xml version="1.0"?><a><b></a>`),
			validator:  DefaultXMLValidator(),
			wantReason: ReasonContentMismatch,
		},
		{
			name:       "too deep",
			content:    []byte(`<?xml version="1.0"?>` + strings.Repeat("<a>", 5) + strings.Repeat("</a>", 5)),
			validator:  &XMLValidator{MaxDepth: 3},
			wantReason: ReasonDangerousContent,
		},
		{
			name:      "dtd allowed",
			content:   []byte(`<?xml version="1.0"?><!DOCTYPE foo><foo/>`),
			validator: &XMLValidator{AllowDTD: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validator.ValidateContent(tt.content)
			if tt.wantReason == ReasonNone {
				if err != nil {
					t.Errorf("ValidateContent() error = %v, want nil", err)
				}
				return
			}
			if !IsReason(err, tt.wantReason) {
				t.Errorf("ValidateContent() error = %v, want reason %q", err, tt.wantReason)
			}
		})
	}
}

func TestValidateXMLProlog(t *testing.T) {
	if err := ValidateXMLProlog([]byte(`<?xml version="1.0"?><a/>`)); err != nil {
		t.Errorf("ValidateXMLProlog() error = %v", err)
	}
	if err := ValidateXMLProlog([]byte(`<?xml version="1.0"?><!ENTITY x "y">`)); !IsReason(err, ReasonDangerousContent) {
		t.Errorf("ValidateXMLProlog() error = %v, want dangerous content", err)
	}
}

func utf16LE(s string) []byte {
	out := []byte{0xFF, 0xFE}
	for _, r := range s {
		out = append(out, byte(r), byte(r>>8))
	}
	return out
}
