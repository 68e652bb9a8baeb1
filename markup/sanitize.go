package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxPasses bounds how often a document is re-sanitized while it settles.
const maxPasses = 4

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;", "<", "&lt;", ">", "&gt;")
)

// SanitizeHTML strips s down to DefaultPolicy.
func SanitizeHTML(s string) string {
	return DefaultPolicy().Sanitize(s)
}

// Sanitize parses s as a body fragment and re-serializes only what the
// policy allows. Disallowed elements are unwrapped, except the
// dropContent set which is removed with its content. Comments, doctypes
// and SVG or MathML wrappers never survive.
//
// The result is a fixed point: sanitizing it again returns it unchanged.
// Input that does not settle within a few passes yields "".
func (p *Policy) Sanitize(s string) string {
	return settle(s, p.pass)
}

// settle applies pass until its output stops changing. Failed or
// non-converging input yields "".
func settle(s string, pass func(string) (string, bool)) string {
	if s == "" {
		return ""
	}
	out, ok := pass(s)
	for i := 0; ok && i < maxPasses; i++ {
		next, nextOK := pass(out)
		if nextOK && next == out {
			return out
		}
		out, ok = next, nextOK
	}
	return ""
}

func (p *Policy) pass(s string) (string, bool) {
	if s == "" {
		return "", true
	}
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), context)
	if err != nil {
		return "", false
	}
	var b strings.Builder
	for _, n := range nodes {
		p.render(&b, n)
	}
	return b.String(), true
}

func (p *Policy) render(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(textEscaper.Replace(n.Data))
		return
	case html.ElementNode:
	default:
		// comments, doctypes
		return
	}

	tag := strings.ToLower(n.Data)
	if p.dropContent[tag] {
		return
	}
	if n.Namespace != "" || !p.tags[tag] {
		p.renderChildren(b, n)
		return
	}

	b.WriteByte('<')
	b.WriteString(tag)
	for _, a := range n.Attr {
		if a.Namespace != "" || !p.AllowAttribute(tag, a.Key, a.Val) {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(strings.ToLower(a.Key))
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(a.Val))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if isVoidElement(tag) {
		return
	}

	// The parser drops one newline right after <pre>.
	if tag == "pre" {
		if c := n.FirstChild; c != nil && c.Type == html.TextNode && strings.HasPrefix(c.Data, "\n") {
			b.WriteByte('\n')
		}
	}
	p.renderChildren(b, n)

	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
}

func (p *Policy) renderChildren(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.render(b, c)
	}
}

func isVoidElement(tag string) bool {
	switch tag {
	case "area", "base", "br", "col", "embed", "hr", "img", "input",
		"link", "meta", "param", "source", "track", "wbr":
		return true
	}
	return false
}
