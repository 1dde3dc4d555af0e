package htmlsanitizer_test

import (
	"strings"
	"testing"

	"github.com/njchilds90/gohtmlsanitizer"
)

func TestSanitizeScriptStripped(t *testing.T) {
	input := `<p>Hello</p><script>alert('xss')</script>`
	got := htmlsanitizer.Sanitize(input, htmlsanitizer.DefaultPolicy())
	if strings.Contains(got, "script") {
		t.Errorf("script tag found in output: %s", got)
	}
	if !strings.Contains(got, "Hello") {
		t.Errorf("expected Hello in output: %s", got)
	}
}

func TestSanitizeJavascriptHrefBlocked(t *testing.T) {
	input := `<a href="javascript:alert(1)">click</a>`
	got := htmlsanitizer.Sanitize(input, htmlsanitizer.DefaultPolicy())
	if strings.Contains(got, "javascript") {
		t.Errorf("javascript href survived sanitization: %s", got)
	}
}

func TestSanitizeDataUriBlocked(t *testing.T) {
	input := `<img src="data:text/html,<script>alert(1)</script>">`
	got := htmlsanitizer.Sanitize(input, htmlsanitizer.DefaultPolicy())
	if strings.Contains(got, "data:") {
		t.Errorf("data URI survived sanitization: %s", got)
	}
}

func TestSanitizeAllowedTagPreserved(t *testing.T) {
	input := `<p><b>bold</b> and <i>italic</i></p>`
	got := htmlsanitizer.Sanitize(input, htmlsanitizer.DefaultPolicy())
	for _, tag := range []string{"<p>", "<b>", "<i>"} {
		if !strings.Contains(got, tag) {
			t.Errorf("expected %s in output: %s", tag, got)
		}
	}
}

func TestSanitizeUnsafeElementDropsTagAndContent(t *testing.T) {
	schema := &htmlsanitizer.Schema{
		Elements: map[string]htmlsanitizer.ElementFlags{
			"p":   0,
			"div": htmlsanitizer.Unsafe,
		},
	}
	p := &htmlsanitizer.Policy{Schema: schema}
	input := `<p>keep</p><div>gone</div>`
	got := htmlsanitizer.Sanitize(input, p)
	if strings.Contains(got, "div") || strings.Contains(got, "gone") {
		t.Errorf("UNSAFE element should drop tag and content: %s", got)
	}
	if !strings.Contains(got, "keep") {
		t.Errorf("text inside p should survive: %s", got)
	}
}

func TestSanitizeUnknownElementDropsTagKeepsContent(t *testing.T) {
	// A tag entirely absent from the schema is never even reported as
	// a start tag, so its own markup vanishes but its text content
	// flows through like any other sibling text.
	schema := &htmlsanitizer.Schema{
		Elements: map[string]htmlsanitizer.ElementFlags{"p": 0},
	}
	p := &htmlsanitizer.Policy{Schema: schema}
	input := `<p>keep</p><div>also kept</div>`
	got := htmlsanitizer.Sanitize(input, p)
	if strings.Contains(got, "<div>") || strings.Contains(got, "</div>") {
		t.Errorf("unknown tag markup should not appear: %s", got)
	}
	if !strings.Contains(got, "also kept") {
		t.Errorf("unknown tag's text content should survive: %s", got)
	}
}

func TestSanitizeRelativeURLAllowed(t *testing.T) {
	input := `<a href="/about">About</a>`
	got := htmlsanitizer.Sanitize(input, htmlsanitizer.DefaultPolicy())
	if !strings.Contains(got, `href="/about"`) {
		t.Errorf("relative href should be preserved: %s", got)
	}
}

func TestSanitizeMaxDepth(t *testing.T) {
	p := htmlsanitizer.DefaultPolicy()
	p.MaxDepth = 2
	input := `<div><div><div><b>deep</b></div></div></div>`
	got := htmlsanitizer.Sanitize(input, p)
	if strings.Contains(got, "<b>") {
		t.Errorf("node beyond MaxDepth should be folded away: %s", got)
	}
	if !strings.Contains(got, "deep") {
		t.Errorf("folded node's content should still survive: %s", got)
	}
}

func TestSanitizeTransformerAddsAttribute(t *testing.T) {
	p := htmlsanitizer.DefaultPolicy()
	p.Transformers = []htmlsanitizer.Transformer{
		func(tag string, attrs []htmlsanitizer.Attribute) ([]htmlsanitizer.Attribute, bool) {
			if tag == "a" {
				attrs = htmlsanitizer.SetAttr(attrs, "target", "_blank")
				attrs = htmlsanitizer.SetAttr(attrs, "rel", "noopener noreferrer")
			}
			return attrs, true
		},
	}
	input := `<a href="https://example.com">link</a>`
	got := htmlsanitizer.Sanitize(input, p)
	if !strings.Contains(got, `target="_blank"`) {
		t.Errorf("transformer should add target=_blank: %s", got)
	}
}

func TestSanitizeTransformerFalseDropsTag(t *testing.T) {
	p := htmlsanitizer.DefaultPolicy()
	p.Transformers = []htmlsanitizer.Transformer{
		func(tag string, attrs []htmlsanitizer.Attribute) ([]htmlsanitizer.Attribute, bool) {
			if tag == "b" {
				return nil, false
			}
			return attrs, true
		},
	}
	input := `<p><b>remove me</b> keep</p>`
	got := htmlsanitizer.Sanitize(input, p)
	if strings.Contains(got, "remove me") {
		t.Errorf("transformer returned false so tag and content should be gone: %s", got)
	}
	if !strings.Contains(got, "keep") {
		t.Errorf("sibling text should survive: %s", got)
	}
}

func TestSanitizeLinkify(t *testing.T) {
	p := htmlsanitizer.DefaultPolicy()
	p.Linkify = true
	input := `Visit https://example.com for details`
	got := htmlsanitizer.Sanitize(input, p)
	if !strings.Contains(got, `<a href="https://example.com"`) {
		t.Errorf("linkify should create anchor: %s", got)
	}
	if !strings.Contains(got, "Visit") || !strings.Contains(got, "for details") {
		t.Errorf("linkify should keep surrounding text: %s", got)
	}
}

func TestSanitizeBalancesOverlappingTags(t *testing.T) {
	input := `<b>bold<i>both</b>italic</i>`
	got := htmlsanitizer.Sanitize(input, htmlsanitizer.DefaultPolicy())
	want := `<b>bold<i>both</i></b>italic`
	if got != want {
		t.Errorf("Sanitize(%q) = %q, want %q", input, got, want)
	}
}

func TestSanitizeOptionalEndTagAutoCloses(t *testing.T) {
	// The first <li> never gets an explicit close; </ul> force-closes
	// it silently (no stray </li> in the output) because LI carries
	// OPTIONAL_ENDTAG, while the second <li> keeps its own explicit
	// close as written.
	input := `<ul><li>a<li>b</li></ul>`
	got := htmlsanitizer.Sanitize(input, htmlsanitizer.DefaultPolicy())
	want := `<ul><li>a<li>b</li></ul>`
	if got != want {
		t.Errorf("Sanitize(%q) = %q, want %q", input, got, want)
	}
}

func TestStripTags(t *testing.T) {
	input := `<p>Hello <b>world</b></p>`
	got := htmlsanitizer.StripTags(input)
	if strings.Contains(got, "<") {
		t.Errorf("StripTags left HTML: %s", got)
	}
	if !strings.Contains(got, "Hello") || !strings.Contains(got, "world") {
		t.Errorf("StripTags lost text: %s", got)
	}
}

func TestSanitizeReader(t *testing.T) {
	input := `<b>hello</b><script>bad</script>`
	r := strings.NewReader(input)
	got, err := htmlsanitizer.SanitizeReader(r, htmlsanitizer.DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "script") {
		t.Errorf("SanitizeReader should strip script: %s", got)
	}
}

func TestSetGetRemoveAttr(t *testing.T) {
	var attrs []htmlsanitizer.Attribute
	attrs = htmlsanitizer.SetAttr(attrs, "href", "https://example.com")
	if v, ok := htmlsanitizer.GetAttr(attrs, "href"); !ok || v != "https://example.com" {
		t.Errorf("GetAttr got (%q, %v) want (https://example.com, true)", v, ok)
	}
	attrs = htmlsanitizer.SetAttr(attrs, "href", "https://other.com")
	if v, _ := htmlsanitizer.GetAttr(attrs, "href"); v != "https://other.com" {
		t.Errorf("SetAttr update got %q", v)
	}
	attrs = htmlsanitizer.RemoveAttr(attrs, "href")
	if _, ok := htmlsanitizer.GetAttr(attrs, "href"); ok {
		t.Error("RemoveAttr should leave href absent")
	}
}

func TestDefaultPolicyNotNil(t *testing.T) {
	p := htmlsanitizer.DefaultPolicy()
	if p == nil || p.Schema == nil {
		t.Fatal("DefaultPolicy returned an incomplete Policy")
	}
}

func TestStrictPolicyStripsDivs(t *testing.T) {
	input := `<b>ok</b><div>gone</div>`
	got := htmlsanitizer.Sanitize(input, htmlsanitizer.StrictPolicy())
	if strings.Contains(got, "div") {
		t.Errorf("StrictPolicy should strip div markup: %s", got)
	}
	if !strings.Contains(got, "<b>ok</b>") {
		t.Errorf("StrictPolicy should keep b: %s", got)
	}
}

func TestSanitizeTerminatesOnPathologicalInput(t *testing.T) {
	inputs := []string{
		"<!--" + strings.Repeat("x", 5000),
		"<!" + strings.Repeat("x", 5000),
		"<?" + strings.Repeat("x", 5000),
		`<a href=` + strings.Repeat(`"unterminated `, 2000),
		strings.Repeat("<", 5000),
		strings.Repeat("&", 5000),
	}
	for _, in := range inputs {
		_ = htmlsanitizer.Sanitize(in, htmlsanitizer.DefaultPolicy())
	}
}

func BenchmarkSanitize(b *testing.B) {
	input := strings.Repeat(`<p>Hello <b>world</b> <script>bad()</script> <a href="http://x.com">link</a></p>`, 100)
	p := htmlsanitizer.DefaultPolicy()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = htmlsanitizer.Sanitize(input, p)
	}
}
