package htmlsanitizer

// ElementFlags describes how an element is treated by the tokenizer
// and balancing sanitizer. Zero value means "ordinary element, must
// be explicitly closed."
type ElementFlags uint8

const (
	// Unsafe elements are dropped entirely, including their content.
	Unsafe ElementFlags = 1 << iota
	// Empty elements are void: no end tag is ever emitted for them.
	Empty
	// OptionalEndTag elements may be implicitly closed by a sibling
	// or ancestor close.
	OptionalEndTag
	// CData elements' contents are raw text up to the matching end
	// tag: no entity decoding, no nested tags.
	CData
	// RCData elements' contents are text with entities resolved but
	// no tags.
	RCData
	// Foldable elements are elided from the output; their children
	// are kept in place.
	Foldable
)

func (f ElementFlags) has(bit ElementFlags) bool { return f&bit != 0 }

// AttrType classifies how an attribute's value must be sanitized.
type AttrType int

const (
	// ATypeNone means the value is kept as-is (still attribute-escaped
	// on output).
	ATypeNone AttrType = iota
	// ATypeScript attributes (event handlers) are always deleted.
	ATypeScript
	// ATypeStyle attributes are parsed as CSS declarations, or
	// deleted if no CSSSchema collaborator is configured.
	ATypeStyle
	// ATypeID is an element identifier.
	ATypeID
	// ATypeIDRef is a single reference to another element's id.
	ATypeIDRef
	// ATypeIDRefs is a space-separated list of id references.
	ATypeIDRefs
	// ATypeGlobalName is a document-scoped name token.
	ATypeGlobalName
	// ATypeLocalName is a locally-scoped name token.
	ATypeLocalName
	// ATypeClasses is a space-separated list of class tokens.
	ATypeClasses
	// ATypeURI is a URI that must pass scheme validation and the
	// configured URIRewriter.
	ATypeURI
	// ATypeURIFragment is a "#..." same-document fragment reference.
	ATypeURIFragment
)

// Schema is the element/attribute policy data consumed by the
// balancing sanitizer and the policy engine. It carries no behavior
// of its own — it is pure data, exactly as spec'd: the schema tables
// are an external collaborator, not part of the sanitizer's core
// logic.
type Schema struct {
	// Elements maps a lowercase element name to its flags. An
	// element absent from this map is unknown and is always dropped.
	Elements map[string]ElementFlags

	// Attributes maps "tag::attr" (falling back to "*::attr") to an
	// AttrType. An absent key means the attribute is always dropped.
	Attributes map[string]AttrType

	// CSS is consulted when an ATypeStyle attribute is encountered.
	// A nil CSS means STYLE attributes are always deleted.
	CSS CSSSchema
}

// lookupAttrType implements the "tag::attr" then "*::attr" fallback
// from §3.
func (s *Schema) lookupAttrType(tag, attr string) (AttrType, bool) {
	if s.Attributes == nil {
		return 0, false
	}
	if t, ok := s.Attributes[tag+"::"+attr]; ok {
		return t, true
	}
	if t, ok := s.Attributes["*::"+attr]; ok {
		return t, true
	}
	return 0, false
}

func (s *Schema) lookupElement(tag string) (ElementFlags, bool) {
	if s.Elements == nil {
		return 0, false
	}
	f, ok := s.Elements[tag]
	return f, ok
}

// DefaultSchema returns the schema behind [DefaultPolicy]: a common
// safe subset of HTML used in content — headings, paragraphs,
// formatting, lists, links, images, code, blockquotes, tables — with
// script/style rejected outright.
func DefaultSchema() *Schema {
	s := &Schema{
		Elements:   map[string]ElementFlags{},
		Attributes: map[string]AttrType{},
	}

	for _, t := range []string{
		"h1", "h2", "h3", "h4", "h5", "h6",
		"p",
		"b", "i", "em", "strong", "u", "s", "strike", "del", "ins",
		"a",
		"ul", "ol", "li",
		"table", "thead", "tbody", "tfoot", "tr", "th", "td",
		"code", "pre", "kbd", "samp",
		"blockquote", "cite", "q",
		"figure", "figcaption",
		"div", "span", "section", "article", "header", "footer",
		"details", "summary",
		"abbr", "acronym", "address",
		"sup", "sub",
	} {
		s.Elements[t] = 0
	}
	for _, t := range []string{"p", "li", "dt", "dd", "tr", "td", "th", "thead", "tbody", "tfoot"} {
		s.Elements[t] |= OptionalEndTag
	}
	for _, t := range []string{"br", "hr", "img"} {
		s.Elements[t] = Empty
	}
	for _, t := range []string{"script", "style"} {
		s.Elements[t] = Unsafe | CData
	}
	for _, t := range []string{"textarea", "title"} {
		s.Elements[t] = RCData
	}
	for _, t := range []string{"font", "center"} {
		s.Elements[t] = Foldable
	}

	attrs := map[string][]string{
		"a":          {"href", "title", "target", "rel"},
		"img":        {"src", "alt", "title", "width", "height", "loading"},
		"td":         {"colspan", "rowspan", "align", "valign"},
		"th":         {"colspan", "rowspan", "align", "valign", "scope"},
		"blockquote": {"cite"},
		"q":          {"cite"},
		"abbr":       {"title"},
		"acronym":    {"title"},
	}
	types := map[string]AttrType{
		"href": ATypeURI, "cite": ATypeURI, "src": ATypeURI,
		"title": ATypeNone, "target": ATypeNone, "rel": ATypeClasses,
		"alt": ATypeNone, "width": ATypeNone, "height": ATypeNone,
		"loading": ATypeNone, "colspan": ATypeNone, "rowspan": ATypeNone,
		"align": ATypeNone, "valign": ATypeNone, "scope": ATypeNone,
	}
	for tag, names := range attrs {
		for _, n := range names {
			s.Attributes[tag+"::"+n] = types[n]
		}
	}
	for _, n := range []string{"id", "class", "lang", "dir", "style"} {
		t := ATypeNone
		switch n {
		case "id":
			t = ATypeID
		case "class":
			t = ATypeClasses
		case "style":
			t = ATypeStyle
		}
		s.Attributes["*::"+n] = t
	}
	for _, evt := range scriptAttrNames {
		s.Attributes["*::"+evt] = ATypeScript
	}

	s.CSS = DefaultCSSSchema()
	return s
}

// scriptAttrNames is a representative set of event-handler attributes
// that are always SCRIPT-typed (and therefore always deleted) on any
// element, even when a host schema does not enumerate them under a
// specific "tag::attr" key.
var scriptAttrNames = []string{
	"onclick", "ondblclick", "onmousedown", "onmouseup", "onmouseover",
	"onmousemove", "onmouseout", "onkeypress", "onkeydown", "onkeyup",
	"onload", "onunload", "onerror", "onabort", "onchange", "onsubmit",
	"onreset", "onselect", "onblur", "onfocus", "oninput", "ondrag",
	"ondrop", "onwheel", "onpointerdown", "onpointerup",
}

// StrictSchema returns the schema behind [StrictPolicy]: only the
// most basic inline formatting elements, no attributes beyond a bare
// "*::id".
func StrictSchema() *Schema {
	s := &Schema{
		Elements:   map[string]ElementFlags{},
		Attributes: map[string]AttrType{"*::id": ATypeID},
	}
	for _, t := range []string{"b", "i", "em", "strong", "br", "p", "ul", "ol", "li"} {
		s.Elements[t] = 0
	}
	s.Elements["br"] = Empty
	for _, t := range []string{"p", "li"} {
		s.Elements[t] |= OptionalEndTag
	}
	return s
}

// knownScheme reports whether scheme (already lowercased) is one this
// sanitizer will ever allow a URI attribute to carry.
func knownScheme(scheme string) bool {
	switch scheme {
	case "", "http", "https", "mailto":
		return true
	}
	return false
}

func lowerTag(name string) string { return asciiLower(name) }
