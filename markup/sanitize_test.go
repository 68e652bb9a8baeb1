package markup

import (
	"strings"
	"testing"
)

func TestSanitizeHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "safe content", input: "<h2>Title</h2><p>Safe <b>text</b></p>", want: "<h2>Title</h2><p>Safe <b>text</b></p>"},
		{name: "script removed with content", input: "<p>A</p><script>alert(1)</script><p>B</p>", want: "<p>A</p><p>B</p>"},
		{name: "style removed with content", input: "<style>p{color:red}</style><p>x</p>", want: "<p>x</p>"},
		{name: "iframe removed", input: `<p>a</p><iframe src="https://evil">inner</iframe>`, want: "<p>a</p>"},
		{name: "object and embed removed", input: `<object data="x"><param name="a">fallback</object><embed src="x">ok`, want: "ok"},
		{name: "unknown tag unwrapped", input: "<custom>keep</custom>", want: "keep"},
		{name: "form controls", input: `<form action="/x"><input name="a"><button>Go</button><select><option>o</option></select></form>`, want: "Go"},
		{name: "comment dropped", input: "<p>a<!-- secret --></p>", want: "<p>a</p>"},
		{name: "event handler", input: `<div onclick="steal()">t</div>`, want: "<div>t</div>"},
		{name: "global attributes", input: `<p class="note" id="p1" style="color:red" title="t">x</p>`, want: `<p class="note" id="p1">x</p>`},
		{name: "anchor attributes", input: `<a href="https://example.com" target="_blank" rel="noopener" style="color:red">l</a>`, want: `<a href="https://example.com" target="_blank" rel="noopener">l</a>`},
		{name: "javascript href", input: `<a href="javascript:alert(1)">x</a>`, want: "<a>x</a>"},
		{name: "mixed case javascript href", input: `<a href=" JaVaScRiPt:alert(1)">x</a>`, want: "<a>x</a>"},
		{name: "tab split javascript href", input: `<a href="java&#x09;script:alert(1)">x</a>`, want: "<a>x</a>"},
		{name: "vbscript href", input: `<a href="vbscript:msgbox(1)">x</a>`, want: "<a>x</a>"},
		{name: "data href", input: `<a href="data:text/html,x"></a>`, want: "<a></a>"},
		{name: "data image href", input: `<a href="data:image/png;base64,AAA=">x</a>`, want: "<a>x</a>"},
		{name: "ftp href", input: `<a href="ftp://files">f</a>`, want: "<a>f</a>"},
		{name: "mailto href", input: `<a href="mailto:sec@example.com">m</a>`, want: `<a href="mailto:sec@example.com">m</a>`},
		{name: "relative href", input: `<a href="/findings/1#poc">r</a>`, want: `<a href="/findings/1#poc">r</a>`},
		{name: "malformed scheme", input: `<a href="jav ascript:x">r</a>`, want: "<a>r</a>"},
		{name: "img data png", input: `<img src="data:image/png;base64,AAA=">`, want: `<img src="data:image/png;base64,AAA=">`},
		{name: "img data svg", input: `<img src="data:image/svg+xml;base64,PHN2Zz4=">`, want: `<img src="data:image/svg+xml;base64,PHN2Zz4=">`},
		{name: "img data html", input: `<img src="data:text/html;base64,PHA+">`, want: "<img>"},
		{name: "img data bmp", input: `<img src="data:image/bmp;base64,Qk0=">`, want: "<img>"},
		{name: "img javascript", input: `<img src="javascript:alert(1)">`, want: "<img>"},
		{name: "img upload path", input: `<img src="/uploads/a.png" onerror="alert(1)" alt="shot" data-caption="c">`, want: `<img src="/uploads/a.png" alt="shot" data-caption="c">`},
		{name: "img relative path", input: `<img src="uploads/a.png">`, want: "<img>"},
		{name: "img protocol relative", input: `<img src="//evil/a.png">`, want: "<img>"},
		{name: "namespaced attribute", input: `<a xlink:href="https://x">x</a>`, want: "<a>x</a>"},
		{name: "table", input: `<table><tr><td colspan="2" onclick="x">c</td></tr></table>`, want: `<table><tbody><tr><td colspan="2">c</td></tr></tbody></table>`},
		{name: "unclosed tags", input: "<p><b>bold", want: "<p><b>bold</b></p>"},
		{name: "underline and strike", input: "<p><u>a</u><s>b</s><del>c</del></p>", want: "<p><u>a</u><s>b</s><del>c</del></p>"},
		{name: "escaped text", input: "<p>a &lt; b &amp; c</p>", want: "<p>a &lt; b &amp; c</p>"},
		{name: "line break", input: "a<br/>b<hr>", want: "a<br>b<hr>"},
		{name: "svg wrapper unwrapped", input: "<svg><text>hi</text></svg>", want: "hi"},
		{name: "noscript dropped", input: "<noscript><p>x</p></noscript>y", want: "y"},
		{name: "textarea dropped", input: "<textarea><script>x</script></textarea>z", want: "z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeHTML(tt.input); got != tt.want {
				t.Errorf("SanitizeHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeHTML_ForeignObject(t *testing.T) {
	got := SanitizeHTML(`<svg><foreignObject><p>payload</p></foreignObject><text>hi</text></svg>`)
	if strings.Contains(got, "payload") {
		t.Errorf("SanitizeHTML() = %q, foreignObject content survived", got)
	}
	if !strings.Contains(got, "hi") {
		t.Errorf("SanitizeHTML() = %q, lost svg text", got)
	}
}

var idempotenceCorpus = []string{
	"",
	"plain text",
	"<h2>Title</h2><p>Safe <b>text</b></p>",
	"<p>A</p><script>alert(1)</script><p>B</p>",
	"<pre>\n\ncode\n</pre>",
	"<pre><custom>\nx</custom></pre>",
	"<h1><custom><h2>nested</h2></custom></h1>",
	"<table><caption>cap</caption><tfoot><tr><td>f</td></tr></tfoot><tr><td>x</td></tr></table>",
	"<table>text<tr><td>cell</td></tr></table>",
	"<a href=1><div><a href=2>x</a></div></a>",
	"<p>a<div>b</div>c</p>",
	"<b><i>x</b>y</i>",
	"<ul><li>a<li>b</ul><ol><li>c</ol>",
	"<select><option>x</select><p>after",
	"<svg><p>break out</p><circle onload=x></svg>",
	"<math><mi>x</mi><style>s</style></math>",
	"<img src=x onerror=alert(1)//",
	"<<script>script>alert(1)<</script>/script>",
	"<a href=\"&#106;avascript:alert(1)\">x</a>",
	"<p title=\"</p><script>alert(1)</script>\">x</p>",
	"<!DOCTYPE html><html><body><p>doc</p></body></html>",
	"<div><template><p>t</p></template></div>",
	"\x00<p>nul\x00</p>",
	"<p>&nbsp;&amp;&lt;&gt;&quot;&#39;</p>",
	"<listing>\n\nx</listing><xmp><b>raw</b></xmp>",
	"<frameset><frame src=x></frameset>",
	"<form><form><p>nested</p></form></form>",
	"<button><p>in button</p></button>",
	strings.Repeat("<div>", 600) + "deep" + strings.Repeat("</div>", 600),
}

func TestSanitizeHTML_Idempotent(t *testing.T) {
	for _, input := range idempotenceCorpus {
		once := SanitizeHTML(input)
		twice := SanitizeHTML(once)
		if once != twice {
			t.Errorf("SanitizeHTML not idempotent for %q:\nonce  = %q\ntwice = %q", input, once, twice)
		}
	}
}

func TestSettle(t *testing.T) {
	dropOneX := func(s string) (string, bool) {
		return strings.Replace(s, "x", "", 1), true
	}
	grow := func(s string) (string, bool) {
		return s + "<b>", true
	}
	fail := func(string) (string, bool) {
		return "", false
	}

	tests := []struct {
		name  string
		input string
		pass  func(string) (string, bool)
		want  string
	}{
		{name: "settles within bound", input: "axx", pass: dropOneX, want: "a"},
		{name: "still changing at bound", input: "a" + strings.Repeat("x", 2*maxPasses), pass: dropOneX, want: ""},
		{name: "never settles", input: "<i>", pass: grow, want: ""},
		{name: "parse failure", input: "<i>", pass: fail, want: ""},
		{name: "empty input", input: "", pass: grow, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := settle(tt.input, tt.pass)
			if got != tt.want {
				t.Errorf("settle() = %q, want %q", got, tt.want)
			}
			if again := settle(got, tt.pass); tt.want == "" && again != "" {
				t.Errorf("settle(settle()) = %q, want empty", again)
			}
		})
	}
}

func TestSanitize_EmptyFallbackIsFixedPoint(t *testing.T) {
	p := DefaultPolicy()
	if got := p.Sanitize(""); got != "" {
		t.Errorf("Sanitize(\"\") = %q, want empty", got)
	}
	if got := p.Sanitize(p.Sanitize("")); got != "" {
		t.Errorf("Sanitize(Sanitize(\"\")) = %q, want empty", got)
	}
}

func TestSanitizeHTML_NoEventHandlers(t *testing.T) {
	handlers := []string{
		"onclick", "onerror", "onload", "onmouseover", "onfocus", "onblur",
		"onanimationstart", "onpointerdown", "ontoggle", "ONCLICK", "OnLoad",
	}
	for _, attr := range handlers {
		got := SanitizeHTML(`<div ` + attr + `="x">t</div>`)
		if strings.Contains(strings.ToLower(got), strings.ToLower(attr)) || strings.Contains(got, `="x"`) {
			t.Errorf("SanitizeHTML() kept %s: %q", attr, got)
		}
		got = SanitizeHTML(`<img src="/uploads/a.png" ` + attr + `="x">`)
		if strings.Contains(strings.ToLower(got), strings.ToLower(attr)) {
			t.Errorf("SanitizeHTML() kept %s on img: %q", attr, got)
		}
	}
}

func TestSanitizeHTML_ScriptPayloadRemoved(t *testing.T) {
	inputs := []string{
		"<p>A</p><script>alert(1)</script><p>B</p>",
		"<SCRIPT>alert(1)</SCRIPT>",
		"<script src=x>alert(1)",
		"<div><script>alert(1)</script></div>",
		"<svg><script>alert(1)</script></svg>",
		"<math><style>alert(1)</style></math>",
	}
	for _, input := range inputs {
		if got := SanitizeHTML(input); strings.Contains(got, "alert") {
			t.Errorf("SanitizeHTML(%q) = %q, payload survived", input, got)
		}
	}
}

func TestSanitizeHTML_Concurrent(t *testing.T) {
	done := make(chan string, 16)
	for i := 0; i < cap(done); i++ {
		go func() {
			done <- SanitizeHTML("<h2>Title</h2><p>Safe <b>text</b></p><script>x</script>")
		}()
	}
	for i := 0; i < cap(done); i++ {
		if got := <-done; got != "<h2>Title</h2><p>Safe <b>text</b></p>" {
			t.Errorf("SanitizeHTML() = %q", got)
		}
	}
}

func BenchmarkSanitizeHTML(b *testing.B) {
	input := strings.Repeat(`<p class="x">Finding <b>detail</b> <a href="https://example.com" onclick="x">link</a></p><script>alert(1)</script>`, 200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SanitizeHTML(input)
	}
}
