package markup

import (
	"strings"
	"sync"
)

// Policy is the whitelist SanitizeHTML enforces. It is immutable once built.
type Policy struct {
	tags    map[string]bool
	attrs   map[string]map[string]bool // "*" holds global attributes
	schemes map[string]bool

	// imageDataTypes are the data: subtypes accepted in img src.
	imageDataTypes map[string]bool

	// dropContent tags are removed together with everything inside them.
	dropContent map[string]bool
}

var (
	defaultPolicy     *Policy
	defaultPolicyOnce sync.Once
)

// DefaultPolicy returns the shared rich-text policy.
func DefaultPolicy() *Policy {
	defaultPolicyOnce.Do(func() {
		defaultPolicy = &Policy{
			tags: set(
				"p", "b", "i", "u", "s", "del", "strong", "em",
				"ul", "ol", "li",
				"h1", "h2", "h3", "h4", "h5", "h6",
				"code", "pre", "br", "hr", "blockquote",
				"a", "img",
				"table", "thead", "tbody", "tr", "th", "td",
				"span", "div",
			),
			attrs: map[string]map[string]bool{
				"*":   set("class", "id"),
				"a":   set("href", "title", "target", "rel"),
				"img": set("src", "alt", "title", "width", "height", "data-align", "data-caption"),
				"td":  set("colspan", "rowspan"),
				"th":  set("colspan", "rowspan"),
			},
			schemes:        set("http", "https", "mailto", "data"),
			imageDataTypes: set("png", "jpeg", "jpg", "gif", "webp", "svg+xml"),
			dropContent: set(
				"script", "style", "iframe", "object", "embed", "foreignobject",
				"noscript", "noembed", "noframes", "template", "textarea", "select",
				"title", "xmp", "plaintext", "applet", "frameset", "frame",
			),
		}
	})
	return defaultPolicy
}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, item := range items {
		m[item] = true
	}
	return m
}

// AllowsTag reports whether tag is kept in output.
func (p *Policy) AllowsTag(tag string) bool {
	return p.tags[strings.ToLower(tag)]
}

// AllowedTags returns the allowed tag names in no particular order.
func (p *Policy) AllowedTags() []string {
	out := make([]string, 0, len(p.tags))
	for tag := range p.tags {
		out = append(out, tag)
	}
	return out
}

// AllowAttribute decides whether one attribute survives on tag. Event
// handlers are never allowed. href never accepts javascript:, vbscript:
// or data:, while img src accepts image data: URLs.
func (p *Policy) AllowAttribute(tag, name, value string) bool {
	tag = strings.ToLower(tag)
	name = strings.ToLower(name)

	if strings.HasPrefix(name, "on") {
		return false
	}
	if !p.attrs[tag][name] && !p.attrs["*"][name] {
		return false
	}

	switch {
	case tag == "img" && name == "src":
		return p.allowImageSource(value)
	case name == "href":
		return p.allowHref(value)
	}
	return true
}

// allowImageSource accepts upload paths, absolute http(s) URLs and
// base64 or plain data: URLs of an allowed image subtype.
func (p *Policy) allowImageSource(value string) bool {
	v := normalizeURL(value)
	switch {
	case strings.HasPrefix(v, "/uploads/"),
		strings.HasPrefix(v, "http://"),
		strings.HasPrefix(v, "https://"):
		return true
	case strings.HasPrefix(v, "data:image/"):
		subtype := v[len("data:image/"):]
		end := strings.IndexAny(subtype, ";,")
		if end < 0 {
			return false
		}
		return p.schemes["data"] && p.imageDataTypes[subtype[:end]]
	}
	return false
}

// allowHref accepts relative references and absolute URLs whose scheme
// is allowed, except data: which only images may use.
func (p *Policy) allowHref(value string) bool {
	scheme, ok := urlScheme(normalizeURL(value))
	if !ok {
		return false
	}
	switch scheme {
	case "":
		return true
	case "data", "javascript", "vbscript":
		return false
	}
	return p.schemes[scheme]
}

// normalizeURL lowercases value and removes ASCII whitespace and control
// characters anywhere in it, since browsers ignore them inside schemes.
func normalizeURL(value string) string {
	return strings.Map(func(r rune) rune {
		if r <= 0x20 || r == 0x7f {
			return -1
		}
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, value)
}

// urlScheme returns the scheme of a normalized URL, or "" for a relative
// reference. ok is false when a colon precedes the path but the prefix
// is not a well-formed scheme.
func urlScheme(v string) (string, bool) {
	end := strings.IndexAny(v, ":/?#")
	if end < 0 || v[end] != ':' {
		return "", true
	}
	scheme := v[:end]
	if scheme == "" {
		return "", false
	}
	for i, r := range scheme {
		switch {
		case 'a' <= r && r <= 'z':
		case i > 0 && ('0' <= r && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return "", false
		}
	}
	return scheme, true
}
