package markup

import (
	"bytes"
	"regexp"
	"strings"
	"sync"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

// Angle brackets in text are parked on private-use runes while converting
// to Markdown, so the final tag strip cannot mistake quoted markup for tags.
const (
	textLT = '\uE000'
	textGT = '\uE001'
	codeLT = '\uE002'
	codeGT = '\uE003'
)

// Option configures ToHTML.
type Option func(*options)

type options struct {
	sanitize bool
}

// WithoutSanitize returns the raw renderer output, including any HTML
// embedded in the Markdown source. Only for trusted input.
func WithoutSanitize() Option {
	return func(o *options) {
		o.sanitize = false
	}
}

var (
	// Raw HTML is rendered and left to the sanitizer, so embedded markup
	// in trusted sources keeps working.
	renderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithUnsafe(),
		),
	)

	htmlToMarkdown     *md.Converter
	htmlToMarkdownOnce sync.Once

	stripAll     *bluemonday.Policy
	stripAllOnce sync.Once

	extraNewlines = regexp.MustCompile(`\n{3,}`)

	// Undoes bluemonday's text escaping except for '<', so no tag can be
	// reassembled from escaped text.
	unescapeStripped = strings.NewReplacer("&#39;", "'", "&#34;", `"`, "&gt;", ">", "&amp;", "&")

	textAngles = strings.NewReplacer("<", string(textLT), ">", string(textGT))
	codeAngles = strings.NewReplacer("<", string(codeLT), ">", string(codeGT))
	dropParked = strings.NewReplacer(string(textLT), "", string(textGT), "", string(codeLT), "", string(codeGT), "")

	restoreAngles = strings.NewReplacer(
		string(textLT), "&lt;", string(textGT), "&gt;",
		string(codeLT), "<", string(codeGT), ">",
	)
)

// ToHTML renders Markdown (paragraphs, emphasis, headings, fenced code,
// tables, lists, hard line breaks) and sanitizes the result.
func ToHTML(markdown string, opts ...Option) string {
	if markdown == "" {
		return ""
	}
	o := options{sanitize: true}
	for _, opt := range opts {
		opt(&o)
	}

	out := renderMarkdown(markdown)
	if o.sanitize {
		return SanitizeHTML(out)
	}
	return out
}

func renderMarkdown(markdown string) string {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(markdown), &buf); err != nil {
		return ""
	}
	return buf.String()
}

// ToPlain removes every trace of markup from Markdown or HTML text and
// collapses whitespace, for summaries and notification text.
func ToPlain(text string) string {
	if text == "" {
		return ""
	}
	stripped := stripPolicy().Sanitize(renderMarkdown(text))
	return collapseWhitespace(unescapeEntities(stripped))
}

// HTMLToMarkdown converts sanitized HTML back to Markdown for editing.
// Conversion is best effort; any tag the converter leaves in the result is
// stripped. Escaped markup in text stays escaped as &lt; and &gt;, except
// inside code where Markdown shows it literally.
func HTMLToMarkdown(s string) string {
	if s == "" {
		return ""
	}
	clean := dropParked.Replace(SanitizeHTML(s))
	if clean == "" {
		return ""
	}

	out, err := markdownConverter().ConvertString(clean)
	if err != nil {
		// fall back to the text content
		out = textAngles.Replace(unescapeEntities(stripPolicy().Sanitize(clean)))
	}

	out = unescapeStripped.Replace(stripPolicy().Sanitize(out))
	out = restoreAngles.Replace(out)
	out = extraNewlines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// parkAngles rewrites the angle brackets of every text node before the
// converter reads them.
func parkAngles(selec *goquery.Selection) {
	for _, n := range selec.Nodes {
		parkNode(n, false)
	}
}

func parkNode(n *html.Node, inCode bool) {
	switch n.Type {
	case html.TextNode:
		if inCode {
			n.Data = codeAngles.Replace(n.Data)
		} else {
			n.Data = textAngles.Replace(n.Data)
		}
		return
	case html.ElementNode:
		if n.Data == "pre" || n.Data == "code" {
			inCode = true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		parkNode(c, inCode)
	}
}

func markdownConverter() *md.Converter {
	htmlToMarkdownOnce.Do(func() {
		htmlToMarkdown = md.NewConverter("", true, &md.Options{
			HeadingStyle:     "atx",
			HorizontalRule:   "---",
			BulletListMarker: "-",
			CodeBlockStyle:   "fenced",
			Fence:            "```",
			EmDelimiter:      "*",
			StrongDelimiter:  "**",
		})
		htmlToMarkdown.Use(plugin.GitHubFlavored())
		htmlToMarkdown.Before(parkAngles)
	})
	return htmlToMarkdown
}

func stripPolicy() *bluemonday.Policy {
	stripAllOnce.Do(func() {
		stripAll = bluemonday.StrictPolicy()
	})
	return stripAll
}
