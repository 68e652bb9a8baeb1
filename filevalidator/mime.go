package filevalidator

import (
	"sort"
	"strings"
)

// Extensions is a set of normalized file extensions.
type Extensions map[string]struct{}

// NewExtensions builds a set, trimming and normalizing every entry. Blank
// entries are skipped.
func NewExtensions(exts ...string) Extensions {
	set := make(Extensions, len(exts))
	for _, ext := range exts {
		if ext = NormalizeExtension(strings.TrimSpace(ext)); ext != "" {
			set[ext] = struct{}{}
		}
	}
	return set
}

// ParseExtensions builds a set from a comma separated list such as "png, .JPG,pdf".
func ParseExtensions(list string) Extensions {
	return NewExtensions(strings.Split(list, ",")...)
}

// Has reports whether ext is in the set.
func (s Extensions) Has(ext string) bool {
	_, ok := s[NormalizeExtension(ext)]
	return ok
}

// Sorted returns the members in lexical order.
func (s Extensions) Sorted() []string {
	out := make([]string, 0, len(s))
	for ext := range s {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// String implements fmt.Stringer
func (s Extensions) String() string {
	return strings.Join(s.Sorted(), ",")
}

// ImageExtensions is the subset accepted by image-only upload paths.
func ImageExtensions() Extensions {
	return NewExtensions("png", "jpg", "jpeg", "gif", "webp", "svg")
}

// DefaultUploadExtensions is the allow-list for general attachments and
// scanner imports.
func DefaultUploadExtensions() Extensions {
	return NewExtensions("png", "jpg", "jpeg", "gif", "pdf", "xml", "nessus", "txt")
}
