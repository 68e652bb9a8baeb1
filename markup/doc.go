// Package markup sanitizes user-supplied rich text and SVG before it is
// stored or rendered into reports.
//
// SanitizeHTML enforces a fixed whitelist of prose tags and attributes.
// ToHTML renders Markdown and always sanitizes the result unless the
// caller opts out for trusted input. ToPlain and HTMLToMarkdown derive
// plain text and editable Markdown. SanitizeSVG rewrites uploaded SVG
// files without reparsing them.
//
// Every function is pure and safe for concurrent use.
package markup
