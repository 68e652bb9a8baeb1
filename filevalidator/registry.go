package filevalidator

import (
	"bytes"
	"fmt"
	"strings"
)

// Signature is a byte pattern expected at a fixed offset.
type Signature struct {
	Magic  []byte
	Offset int
}

// matches reports whether data carries the signature. Short data never matches.
func (s Signature) matches(data []byte) bool {
	end := s.Offset + len(s.Magic)
	if s.Offset < 0 || end > len(data) {
		return false
	}
	return bytes.Equal(data[s.Offset:end], s.Magic)
}

// SignatureEntry describes one supported file type.
type SignatureEntry struct {
	Extension string
	MIME      string

	// Signatures are alternatives: any one matching is sufficient.
	Signatures []Signature

	// Secondary must all match in addition to a primary signature.
	// WebP uses it to tell its RIFF container apart from WAV or AVI.
	Secondary []Signature

	// Text marks types without magic bytes, checked by the binary heuristic.
	Text bool
}

// match reports whether data satisfies the entry's byte signatures.
func (e SignatureEntry) match(data []byte) bool {
	for _, sig := range e.Signatures {
		if !sig.matches(data) {
			continue
		}
		if e.secondaryMatch(data) {
			return true
		}
	}
	return false
}

func (e SignatureEntry) secondaryMatch(data []byte) bool {
	for _, sig := range e.Secondary {
		if !sig.matches(data) {
			return false
		}
	}
	return true
}

func (e SignatureEntry) check() error {
	if e.Extension == "" || e.Extension != NormalizeExtension(e.Extension) {
		return fmt.Errorf("invalid extension %q", e.Extension)
	}
	if e.MIME == "" || !strings.Contains(e.MIME, "/") {
		return fmt.Errorf("%s: invalid MIME type %q", e.Extension, e.MIME)
	}
	if e.Text {
		if len(e.Signatures) > 0 {
			return fmt.Errorf("%s: text type cannot carry signatures", e.Extension)
		}
		return nil
	}
	if len(e.Signatures) == 0 {
		return fmt.Errorf("%s: no signatures", e.Extension)
	}
	for _, sig := range append(append([]Signature{}, e.Signatures...), e.Secondary...) {
		if len(sig.Magic) == 0 || sig.Offset < 0 {
			return fmt.Errorf("%s: malformed signature at offset %d", e.Extension, sig.Offset)
		}
	}
	return nil
}

// signatureTable holds entries in registration order. The order is the
// tie-break for DetectFileType: first registered wins.
var (
	signatureTable []SignatureEntry
	signatureIndex = make(map[string]int)
)

// register adds an entry at package init. A corrupt entry is a programming
// error and panics before any request is served.
func register(e SignatureEntry) {
	if err := e.check(); err != nil {
		panic("filevalidator: " + err.Error())
	}
	if _, dup := signatureIndex[e.Extension]; dup {
		panic("filevalidator: duplicate extension " + e.Extension)
	}
	signatureIndex[e.Extension] = len(signatureTable)
	signatureTable = append(signatureTable, e)
}

var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}

	jpegSignatures = []Signature{
		{Magic: []byte{0xFF, 0xD8, 0xFF, 0xE0}}, // JFIF
		{Magic: []byte{0xFF, 0xD8, 0xFF, 0xE1}}, // EXIF
		{Magic: []byte{0xFF, 0xD8, 0xFF, 0xE8}}, // SPIFF
		{Magic: []byte{0xFF, 0xD8, 0xFF, 0xDB}}, // raw
		{Magic: []byte{0xFF, 0xD8, 0xFF, 0xEE}}, // Adobe
	}

	xmlDeclaration = []Signature{
		{Magic: []byte("<?xml")},
		{Magic: withBOM("<?xml")},
	}
)

func withBOM(s string) []byte {
	return append(append([]byte{}, utf8BOM...), s...)
}

func init() {
	register(SignatureEntry{
		Extension:  "png",
		MIME:       "image/png",
		Signatures: []Signature{{Magic: []byte("\x89PNG\r\n\x1a\n")}},
	})
	register(SignatureEntry{Extension: "jpg", MIME: "image/jpeg", Signatures: jpegSignatures})
	register(SignatureEntry{Extension: "jpeg", MIME: "image/jpeg", Signatures: jpegSignatures})
	register(SignatureEntry{
		Extension: "gif",
		MIME:      "image/gif",
		Signatures: []Signature{
			{Magic: []byte("GIF87a")},
			{Magic: []byte("GIF89a")},
		},
	})
	register(SignatureEntry{
		Extension:  "webp",
		MIME:       "image/webp",
		Signatures: []Signature{{Magic: []byte("RIFF")}},
		Secondary:  []Signature{{Magic: []byte("WEBP"), Offset: 8}},
	})
	register(SignatureEntry{
		Extension: "svg",
		MIME:      "image/svg+xml",
		Signatures: []Signature{
			{Magic: []byte("<?xml")},
			{Magic: []byte("<svg")},
			{Magic: withBOM("<?xml")},
			{Magic: withBOM("<svg")},
		},
	})
	register(SignatureEntry{
		Extension:  "pdf",
		MIME:       "application/pdf",
		Signatures: []Signature{{Magic: []byte("%PDF-")}},
	})
	// Burp and generic scanner exports.
	register(SignatureEntry{
		Extension: "xml",
		MIME:      "application/xml",
		Signatures: append(append([]Signature{}, xmlDeclaration...),
			Signature{Magic: []byte("\xff\xfe<\x00?\x00x\x00m\x00l")}, // UTF-16 LE
			Signature{Magic: []byte("\xfe\xff\x00<\x00?\x00x\x00m\x00l")}, // UTF-16 BE
		),
	})
	register(SignatureEntry{Extension: "nessus", MIME: "application/xml", Signatures: xmlDeclaration})
	register(SignatureEntry{Extension: "txt", MIME: "text/plain", Text: true})
}

// Signatures returns a copy of the signature table in registration order.
func Signatures() []SignatureEntry {
	out := make([]SignatureEntry, len(signatureTable))
	for i, e := range signatureTable {
		out[i] = e.clone()
	}
	return out
}

func (e SignatureEntry) clone() SignatureEntry {
	e.Signatures = cloneSignatures(e.Signatures)
	e.Secondary = cloneSignatures(e.Secondary)
	return e
}

func cloneSignatures(sigs []Signature) []Signature {
	if sigs == nil {
		return nil
	}
	out := make([]Signature, len(sigs))
	for i, s := range sigs {
		out[i] = Signature{Magic: append([]byte(nil), s.Magic...), Offset: s.Offset}
	}
	return out
}

// LookupExtension returns the entry for ext, which is normalized first.
func LookupExtension(ext string) (SignatureEntry, bool) {
	i, ok := signatureIndex[NormalizeExtension(ext)]
	if !ok {
		return SignatureEntry{}, false
	}
	return signatureTable[i].clone(), true
}
