package htmlsanitizer

import (
	"strings"

	"github.com/tdewolff/parse/v2"
	cssparse "github.com/tdewolff/parse/v2/css"
)

// CSSPropertySchema describes how a single CSS property's value
// tokens are sanitized.
type CSSPropertySchema struct {
	// AllowedValues, when non-empty, is the closed set of lowercase
	// identifier values the property may take (e.g. "left"/"right"
	// for text-align). Ignored when AllowURL is true.
	AllowedValues []string
	// AllowURL marks a property (e.g. background-image) whose value
	// may contain a url(...) function; the URL is passed through the
	// policy's URIRewriter and the declaration is dropped if the
	// rewriter rejects it.
	AllowURL bool
}

// CSSSchema maps a lowercase CSS property name to its sanitization
// rule. A property absent from the schema is always dropped.
type CSSSchema map[string]CSSPropertySchema

// DefaultCSSSchema returns a small set of presentational properties
// safe to keep in a sanitized style attribute.
func DefaultCSSSchema() CSSSchema {
	return CSSSchema{
		"color":            {},
		"background-color": {},
		"font-weight":      {AllowedValues: []string{"normal", "bold", "bolder", "lighter"}},
		"font-style":       {AllowedValues: []string{"normal", "italic", "oblique"}},
		"text-align":       {AllowedValues: []string{"left", "right", "center", "justify"}},
		"text-decoration":  {AllowedValues: []string{"none", "underline", "overline", "line-through"}},
		"background-image": {AllowURL: true},
	}
}

// cssDeclaration is a single "property: value-tokens" pair recovered
// from a style attribute.
type cssDeclaration struct {
	property string
	tokens   []string
}

// parseCSSDeclarations tokenizes text as a sequence of CSS
// declarations using a real CSS3 tokenizer, invoking emit once per
// "property: value" pair found. Malformed trailing input is ignored
// rather than erroring — consistent with the rest of this sanitizer,
// CSS parsing must never fail the whole sanitize call.
func parseCSSDeclarations(text string, emit func(property string, tokens []string)) {
	z := cssparse.NewLexer(parse.NewInputString(text))
	var property string
	var tokens []string
	haveProperty := false
	sawColon := false

	flush := func() {
		if haveProperty && len(tokens) > 0 {
			emit(property, tokens)
		}
		property = ""
		tokens = nil
		haveProperty = false
		sawColon = false
	}

	for {
		tt, data := z.Next()
		if tt == cssparse.ErrorToken {
			break
		}
		switch tt {
		case cssparse.SemicolonToken:
			flush()
		case cssparse.WhitespaceToken, cssparse.CommentToken:
			// skip
		case cssparse.IdentToken:
			if !haveProperty {
				property = strings.ToLower(string(data))
				haveProperty = true
			} else if sawColon {
				tokens = append(tokens, string(data))
			}
		case cssparse.ColonToken:
			if haveProperty && !sawColon {
				sawColon = true
			}
		default:
			if haveProperty && sawColon {
				tokens = append(tokens, string(data))
			}
		}
	}
	flush()
}

// sanitizeCSSProperty mutates tokens in place per schema, dropping
// any function/url content the schema does not permit. It returns
// the (possibly shortened) token slice; an empty result drops the
// declaration. With AllowedValues set, only listed values survive.
// Otherwise a url(...) token survives only for an AllowURL property
// whose uriRewriter accepts it, and any other url(...) or function
// token (such as "expression(") drops the whole declaration.
func sanitizeCSSProperty(schema CSSPropertySchema, tokens []string, uriRewriter URIRewriter) []string {
	if schema.AllowURL {
		out := tokens[:0]
		for _, t := range tokens {
			if u, ok := extractCSSURL(t); ok {
				if uriRewriter == nil {
					return nil
				}
				rewritten, ok := uriRewriter(u)
				if !ok {
					return nil
				}
				out = append(out, "url("+cssQuote(rewritten)+")")
				continue
			}
			if strings.HasSuffix(t, "(") {
				return nil
			}
			out = append(out, t)
		}
		return out
	}

	if len(schema.AllowedValues) == 0 {
		for _, t := range tokens {
			if _, isURL := extractCSSURL(t); isURL || strings.HasSuffix(t, "(") {
				return nil
			}
		}
		return tokens
	}
	out := tokens[:0]
	for _, t := range tokens {
		if containsFold(schema.AllowedValues, t) {
			out = append(out, t)
		}
	}
	return out
}

func containsFold(list []string, v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	for _, c := range list {
		if c == lv {
			return true
		}
	}
	return false
}

// extractCSSURL recognizes a url(...) token value as produced by the
// CSS tokenizer's URLToken/FunctionToken path.
func extractCSSURL(t string) (string, bool) {
	lower := strings.ToLower(t)
	if !strings.HasPrefix(lower, "url(") || !strings.HasSuffix(t, ")") {
		return "", false
	}
	inner := strings.TrimSpace(t[4 : len(t)-1])
	inner = strings.Trim(inner, `"'`)
	return inner, true
}

func cssQuote(s string) string {
	return `"` + strings.NewReplacer(`"`, `\"`).Replace(s) + `"`
}

// sanitizeStyleValue runs the full STYLE-attribute pipeline: parse
// declarations, look each property up in schema, sanitize its
// tokens, and rejoin. Returns ("", false) when no declarations
// survive.
func sanitizeStyleValue(value string, schema CSSSchema, uriRewriter URIRewriter) (string, bool) {
	if schema == nil {
		return "", false
	}
	var out []string
	parseCSSDeclarations(value, func(property string, tokens []string) {
		propSchema, ok := schema[property]
		if !ok {
			return
		}
		survivors := sanitizeCSSProperty(propSchema, tokens, uriRewriter)
		if len(survivors) == 0 {
			return
		}
		out = append(out, property+": "+strings.Join(survivors, " "))
	})
	if len(out) == 0 {
		return "", false
	}
	return strings.Join(out, " ; "), true
}
