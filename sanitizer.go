package htmlsanitizer

import (
	"io"
	"regexp"
	"strings"
)

// Policy defines what HTML is considered safe. Where the teacher's
// Policy held plain tag/attribute-name slices, this Policy is built
// around a Schema (§3) plus the §4.5 collaborators — sanitization
// rules live in the schema and the collaborators, not in Policy
// itself.
type Policy struct {
	// Schema supplies the element and attribute tables. A nil Schema
	// means DefaultSchema().
	Schema *Schema

	// URIRewriter canonicalizes, proxies, or rejects URI attribute
	// values (href, src, cite, ...). A nil URIRewriter rejects every
	// URI attribute outright.
	URIRewriter URIRewriter

	// NMTokenPolicy validates id/class/idref/name-shaped attribute
	// values. A nil NMTokenPolicy passes such values through
	// unchanged.
	NMTokenPolicy NMTokenPolicy

	// Transformers run, in order, after attribute sanitization for
	// every surviving tag. Returning ok=false drops the tag.
	Transformers []Transformer

	// Linkify converts bare http/https URLs found in text into <a>
	// elements, which then pass through the same tag policy as any
	// authored <a>.
	Linkify bool

	// MaxDepth caps open-element nesting. A start tag encountered
	// when the open-element stack already holds MaxDepth elements is
	// folded — omitted from the output, its content kept — the same
	// treatment a FOLDABLE element gets, provided the tag policy
	// accepts it; a tag the policy rejects is still dropped with its
	// content. Zero means unlimited.
	MaxDepth int
}

// urlRegexp matches http/https URLs inside plain text, used by
// Policy.Linkify.
var urlRegexp = regexp.MustCompile(`https?://[^\s<>"]+[^\s<>".,;:!?)\]]`)

// DefaultPolicy returns a Policy built on DefaultSchema: a common safe
// subset of HTML used in rendered content, with script/style rejected
// outright and links/images restricted to http, https, and mailto
// URIs by the default URI rule.
func DefaultPolicy() *Policy {
	return &Policy{Schema: DefaultSchema(), URIRewriter: IdentityURIRewriter}
}

// StrictPolicy returns a Policy built on StrictSchema: only the most
// basic inline formatting tags, no attributes beyond *::id.
func StrictPolicy() *Policy {
	return &Policy{Schema: StrictSchema(), URIRewriter: IdentityURIRewriter}
}

func (p *Policy) schema() *Schema {
	if p.Schema != nil {
		return p.Schema
	}
	return DefaultSchema()
}

func (p *Policy) tagPolicy() TagPolicy {
	base := MakeTagPolicy(p.schema(), p.URIRewriter, p.NMTokenPolicy)
	if len(p.Transformers) == 0 {
		return base
	}
	return func(tag string, attrs []Attribute) ([]Attribute, bool) {
		kept, ok := base(tag, attrs)
		if !ok {
			return nil, false
		}
		for _, tr := range p.Transformers {
			kept, ok = tr(tag, kept)
			if !ok {
				return nil, false
			}
		}
		return kept, true
	}
}

// Sanitize parses htmlStr and returns the sanitized fragment per p.
// If p is nil, DefaultPolicy is used. Sanitize never fails: §7
// guarantees every input, however malformed, produces an output
// string.
func Sanitize(htmlStr string, p *Policy) string {
	if p == nil {
		p = DefaultPolicy()
	}
	return sanitizeCore(htmlStr, p.schema(), p.tagPolicy(), p.Linkify, p.MaxDepth)
}

// SanitizeReader reads all of r and sanitizes it per p. The only
// error it can return comes from r itself; sanitization never fails.
func SanitizeReader(r io.Reader, p *Policy) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return Sanitize(string(b), p), nil
}

// SanitizeWithPolicy runs the balancing sanitizer over input using an
// explicit schema and tag policy, independent of Policy's Transformers/
// Linkify/MaxDepth conveniences. This is the low-level entry point:
// Policy is a wrapper that builds a schema and tag policy for you.
func SanitizeWithPolicy(input string, schema *Schema, tp TagPolicy) string {
	return sanitizeCore(input, schema, tp, false, 0)
}

// MakeHTMLSanitizer returns a closure equivalent to calling
// SanitizeWithPolicy(input, schema, tp) repeatedly.
func MakeHTMLSanitizer(schema *Schema, tp TagPolicy) func(input string) string {
	return func(input string) string {
		return SanitizeWithPolicy(input, schema, tp)
	}
}

// StripTags removes all markup from htmlStr and returns decoded plain
// text, with entity references resolved.
func StripTags(htmlStr string) string {
	var b strings.Builder
	runTokenizer(htmlStr, DefaultSchema(), &stripHandler{out: &b})
	return b.String()
}

type stripHandler struct {
	BaseHandler
	out *strings.Builder
}

func (h *stripHandler) PCData(text string) { h.out.WriteString(UnescapeEntities(text)) }
func (h *stripHandler) RCData(text string) { h.out.WriteString(UnescapeEntities(text)) }

// SetAttr sets (or adds) the attribute name=value in attrs, returning
// the possibly-grown slice. Intended for use inside Transformer
// functions, which receive and return a plain []Attribute rather than
// a mutable node.
func SetAttr(attrs []Attribute, name, value string) []Attribute {
	for i := range attrs {
		if attrs[i].Name == name {
			attrs[i].Value = value
			attrs[i].Deleted = false
			return attrs
		}
	}
	return append(attrs, Attribute{Name: name, Value: value})
}

// GetAttr returns the value of the named, non-deleted attribute in
// attrs, or ("", false) if absent.
func GetAttr(attrs []Attribute, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name == name && !a.Deleted {
			return a.Value, true
		}
	}
	return "", false
}

// RemoveAttr removes the named attribute from attrs.
func RemoveAttr(attrs []Attribute, name string) []Attribute {
	out := attrs[:0]
	for _, a := range attrs {
		if a.Name != name {
			out = append(out, a)
		}
	}
	return out
}

func sanitizeCore(input string, schema *Schema, tp TagPolicy, linkify bool, maxDepth int) string {
	b := &balancer{
		schema:    schema,
		tagPolicy: tp,
		linkify:   linkify,
		maxDepth:  maxDepth,
		out:       &strings.Builder{},
	}
	runTokenizer(input, schema, b)
	return b.out.String()
}

// stackEntry is one element on the open-element stack (§3's
// "ordered sequence of lowercase tag names for elements whose end
// tags have not yet been emitted"). flags is captured at push time so
// end_tag never has to re-resolve it against a schema that, in
// principle, a concurrent caller could be mutating.
type stackEntry struct {
	name  string
	flags ElementFlags
}

// balancer implements §4.6: the balancing sanitizer. It consumes the
// tokenizer's SAX events and serializes a well-formed output fragment,
// dropping or auto-closing elements per the open-element stack and
// the ignoring latch described in §3.
type balancer struct {
	schema    *Schema
	tagPolicy TagPolicy
	linkify   bool
	maxDepth  int

	out      *strings.Builder
	stack    []stackEntry
	ignoring bool
}

func (b *balancer) StartDoc() {
	b.stack = b.stack[:0]
	b.ignoring = false
}

func (b *balancer) EndDoc() {
	for i := len(b.stack) - 1; i >= 0; i-- {
		b.out.WriteString("</")
		b.out.WriteString(b.stack[i].name)
		b.out.WriteByte('>')
	}
	b.stack = b.stack[:0]
}

func (b *balancer) StartTag(name string, attrs []Attribute) {
	if b.ignoring {
		return
	}
	flags, ok := b.schema.lookupElement(name)
	if !ok {
		return
	}
	if flags.has(Foldable) {
		return
	}

	kept, ok := b.tagPolicy(name, attrs)
	if !ok {
		if !flags.has(Empty) {
			b.ignoring = true
		}
		return
	}
	if b.maxDepth > 0 && len(b.stack) >= b.maxDepth {
		return
	}

	if !flags.has(Empty) {
		b.stack = append(b.stack, stackEntry{name: name, flags: flags})
	}

	b.out.WriteByte('<')
	b.out.WriteString(name)
	for _, a := range kept {
		if a.Deleted {
			continue
		}
		b.out.WriteByte(' ')
		b.out.WriteString(a.Name)
		b.out.WriteString(`="`)
		b.out.WriteString(EscapeAttrib(a.Value))
		b.out.WriteByte('"')
	}
	b.out.WriteByte('>')
}

func (b *balancer) EndTag(name string) {
	if b.ignoring {
		b.ignoring = false
		return
	}
	flags, ok := b.schema.lookupElement(name)
	if !ok {
		return
	}
	if flags.has(Empty) || flags.has(Foldable) {
		return
	}

	match := -1
	if flags.has(OptionalEndTag) {
		for i := len(b.stack) - 1; i >= 0; i-- {
			if b.stack[i].name == name {
				match = i
				break
			}
			if !b.stack[i].flags.has(OptionalEndTag) {
				break
			}
		}
	} else {
		for i := len(b.stack) - 1; i >= 0; i-- {
			if b.stack[i].name == name {
				match = i
				break
			}
		}
	}
	if match < 0 {
		return
	}

	for i := len(b.stack) - 1; i > match; i-- {
		e := b.stack[i]
		if !e.flags.has(OptionalEndTag) {
			b.out.WriteString("</")
			b.out.WriteString(e.name)
			b.out.WriteByte('>')
		}
	}
	b.out.WriteString("</")
	b.out.WriteString(name)
	b.out.WriteByte('>')
	b.stack = b.stack[:match]
}

func (b *balancer) CData(text string) {
	if b.ignoring {
		return
	}
	b.out.WriteString(text)
}

func (b *balancer) RCData(text string) {
	if b.ignoring {
		return
	}
	b.out.WriteString(text)
}

func (b *balancer) PCData(text string) {
	if b.ignoring {
		return
	}
	if !b.linkify {
		b.out.WriteString(text)
		return
	}
	b.writeLinkedText(text)
}

// writeLinkedText scans text for bare URLs and synthesizes start_tag/
// pcdata/end_tag events for a wrapping <a>, so a linkified link is
// policy-checked exactly like an authored one. Adapted from the
// teacher's writeLinkedText, which wrote straight to a bytes.Buffer
// against a fixed scheme allow-list instead of going through a
// TagPolicy.
func (b *balancer) writeLinkedText(text string) {
	last := 0
	for _, m := range urlRegexp.FindAllStringIndex(text, -1) {
		b.emitText(text[last:m[0]])
		url := text[m[0]:m[1]]
		b.StartTag("a", []Attribute{
			{Name: "href", Value: url},
			{Name: "rel", Value: "noopener noreferrer"},
		})
		b.emitText(url)
		b.EndTag("a")
		last = m[1]
	}
	b.emitText(text[last:])
}

// emitText writes raw text to the output subject to the ignoring
// latch, without re-running Linkify — used for the literal segments
// writeLinkedText assembles around a synthesized <a>, so a URL's own
// anchor text is never rescanned.
func (b *balancer) emitText(text string) {
	if b.ignoring {
		return
	}
	b.out.WriteString(text)
}
