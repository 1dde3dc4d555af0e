package htmlsanitizer

import "testing"

func TestSanitizeURIAllowsKnownScheme(t *testing.T) {
	cases := []string{"http://x.com", "https://x.com", "mailto:a@b.com", "/relative/path", "relative"}
	for _, in := range cases {
		if _, ok := sanitizeURI(in, IdentityURIRewriter); !ok {
			t.Errorf("sanitizeURI(%q) should be allowed", in)
		}
	}
}

func TestSanitizeURIRejectsUnknownScheme(t *testing.T) {
	cases := []string{"javascript:alert(1)", "data:text/html,x", "vbscript:msgbox(1)", "file:///etc/passwd"}
	for _, in := range cases {
		if _, ok := sanitizeURI(in, IdentityURIRewriter); ok {
			t.Errorf("sanitizeURI(%q) should be rejected", in)
		}
	}
}

func TestSanitizeURINilRewriterRejectsEverything(t *testing.T) {
	if _, ok := sanitizeURI("https://x.com", nil); ok {
		t.Error("a nil URIRewriter must reject even an otherwise-allowed scheme")
	}
}

func TestSanitizeURIDelegatesToRewriter(t *testing.T) {
	reject := func(string) (string, bool) { return "", false }
	if _, ok := sanitizeURI("https://x.com", reject); ok {
		t.Error("sanitizeURI should honor a rewriter that rejects")
	}
	rewrite := func(u string) (string, bool) { return "https://proxy/" + u, true }
	got, ok := sanitizeURI("https://x.com", rewrite)
	if !ok || got != "https://proxy/https://x.com" {
		t.Errorf("sanitizeURI did not apply rewriter output: (%q, %v)", got, ok)
	}
}

func TestURISchemeExtraction(t *testing.T) {
	cases := map[string]string{
		"http://x.com":     "http",
		"mailto:a@b.com":   "mailto",
		"/relative":        "",
		"relative/path":    "",
		"":                 "",
		":leadingcolon":    "",
		"a?b=c:d":          "",
	}
	for in, want := range cases {
		if got := uriScheme(in); got != want {
			t.Errorf("uriScheme(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeURIFragment(t *testing.T) {
	v, ok := sanitizeURIFragment("#section-1", nil)
	if !ok || v != "#section-1" {
		t.Errorf("got (%q, %v), want (#section-1, true)", v, ok)
	}
	if _, ok := sanitizeURIFragment("not-a-fragment", nil); ok {
		t.Error("a value without a leading # should be rejected")
	}
}

func TestSanitizeTokenList(t *testing.T) {
	policy := func(tok string) (string, bool) {
		if tok == "evil" {
			return "", false
		}
		return tok, true
	}
	got := sanitizeTokenList("good evil also-good", policy)
	if got != "good also-good" {
		t.Errorf("sanitizeTokenList = %q, want %q", got, "good also-good")
	}
}

func TestSanitizeAttribsDeletesScriptAttribute(t *testing.T) {
	schema := DefaultSchema()
	attrs := []Attribute{{Name: "onclick", Value: "evil()"}, {Name: "title", Value: "ok"}}
	got := sanitizeAttribs("a", attrs, schema, IdentityURIRewriter, nil)
	if !got[0].Deleted {
		t.Error("onclick should be marked Deleted (ATypeScript)")
	}
	if got[1].Deleted {
		t.Error("title should survive (ATypeNone on a)")
	}
}

func TestSanitizeAttribsDeletesBadURI(t *testing.T) {
	schema := DefaultSchema()
	attrs := []Attribute{{Name: "href", Value: "javascript:alert(1)"}}
	got := sanitizeAttribs("a", attrs, schema, IdentityURIRewriter, nil)
	if !got[0].Deleted {
		t.Error("javascript: href should be deleted")
	}
}

func TestMakeTagPolicyDropsUnsafeElement(t *testing.T) {
	schema := DefaultSchema()
	tp := MakeTagPolicy(schema, IdentityURIRewriter, nil)
	_, ok := tp("script", nil)
	if ok {
		t.Error("script is UNSAFE and should be dropped by the tag policy")
	}
}

func TestMakeTagPolicyDropsUnknownElement(t *testing.T) {
	schema := DefaultSchema()
	tp := MakeTagPolicy(schema, IdentityURIRewriter, nil)
	_, ok := tp("marquee", nil)
	if ok {
		t.Error("an element absent from the schema should be dropped by the tag policy")
	}
}

func TestMakeTagPolicyKeepsOrdinaryElement(t *testing.T) {
	schema := DefaultSchema()
	tp := MakeTagPolicy(schema, IdentityURIRewriter, nil)
	kept, ok := tp("p", nil)
	if !ok || len(kept) != 0 {
		t.Errorf("got (%v, %v), want ([], true)", kept, ok)
	}
}
