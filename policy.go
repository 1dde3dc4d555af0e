package htmlsanitizer

import "strings"

// URIRewriter may canonicalize, proxy, or reject a URI. Returning
// ok=false drops the attribute entirely.
type URIRewriter func(uri string) (rewritten string, ok bool)

// IdentityURIRewriter accepts any URI unchanged. It is the
// URIRewriter [DefaultPolicy] and [StrictPolicy] use by default: the
// schema has already restricted the scheme to the known-safe set
// (§3's URI attribute rule), so passing the value through verbatim is
// no more permissive than the teacher's own scheme-only allow-list.
// A host wanting canonicalization, proxying, or an SSRF check (see
// collaborators/urlguard) supplies its own URIRewriter instead.
func IdentityURIRewriter(uri string) (string, bool) { return uri, true }

// NMTokenPolicy may rewrite or reject a single name token (used for
// id/class/idref/name attribute values). Returning ok=false drops the
// attribute (or, for IDREFS/CLASSES, drops just that one token).
type NMTokenPolicy func(token string) (rewritten string, ok bool)

// TagPolicy decides whether a start tag survives sanitization and
// what its final attribute list looks like. Returning ok=false drops
// the tag (and, unless it is an EMPTY element, everything inside it).
// The attrs slice handed to a TagPolicy may be mutated in place;
// callers must not retain it across invocations.
type TagPolicy func(tag string, attrs []Attribute) (kept []Attribute, ok bool)

// Transformer runs after attribute sanitization for an allowed tag.
// Returning ok=false drops the tag, mirroring a DOM-based sanitizer's
// "transformer returns nil" convention without needing a node to
// return nil for.
type Transformer func(tag string, attrs []Attribute) (kept []Attribute, ok bool)

// sanitizeAttribs implements §4.5: it walks attrs and, for each
// (name, value) pair, looks up its type in schema and dispatches to
// the matching sanitization rule. Attributes with no known type, or
// whose value is rejected, are marked Deleted in place.
func sanitizeAttribs(tag string, attrs []Attribute, schema *Schema, uriRewriter URIRewriter, nmPolicy NMTokenPolicy) []Attribute {
	for i := range attrs {
		a := &attrs[i]
		atype, known := schema.lookupAttrType(tag, a.Name)
		if !known {
			a.Deleted = true
			continue
		}
		switch atype {
		case ATypeNone:
			// kept as-is
		case ATypeScript:
			a.Deleted = true
		case ATypeStyle:
			if v, ok := sanitizeStyleValue(a.Value, schema.CSS, uriRewriter); ok {
				a.Value = v
			} else {
				a.Deleted = true
			}
		case ATypeID, ATypeIDRef, ATypeGlobalName, ATypeLocalName:
			if nmPolicy != nil {
				if v, ok := nmPolicy(a.Value); ok {
					a.Value = v
				} else {
					a.Deleted = true
				}
			}
		case ATypeIDRefs, ATypeClasses:
			if nmPolicy != nil {
				a.Value = sanitizeTokenList(a.Value, nmPolicy)
				if a.Value == "" {
					a.Deleted = true
				}
			}
		case ATypeURI:
			if v, ok := sanitizeURI(a.Value, uriRewriter); ok {
				a.Value = v
			} else {
				a.Deleted = true
			}
		case ATypeURIFragment:
			if v, ok := sanitizeURIFragment(a.Value, nmPolicy); ok {
				a.Value = v
			} else {
				a.Deleted = true
			}
		default:
			a.Deleted = true
		}
	}
	return attrs
}

// sanitizeTokenList applies policy to each whitespace-separated token
// in value (used for IDREFS/CLASSES), dropping rejected tokens.
func sanitizeTokenList(value string, policy NMTokenPolicy) string {
	fields := strings.Fields(value)
	kept := fields[:0]
	for _, f := range fields {
		if v, ok := policy(f); ok {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, " ")
}

// sanitizeURI implements the URI attribute rule: parse the scheme per
// RFC 3986 (the leading run of [^:/?# ]+ before a ':'), allow only an
// absent scheme or http/https/mailto (case-insensitively), then
// delegate to uriRewriter. Absent uriRewriter always deletes.
func sanitizeURI(value string, uriRewriter URIRewriter) (string, bool) {
	if !knownScheme(asciiLower(uriScheme(value))) {
		return "", false
	}
	if uriRewriter == nil {
		return "", false
	}
	return uriRewriter(value)
}

// uriScheme extracts the scheme per RFC 3986: the leading group
// before ':' consisting of characters other than ':', '/', '?', '#',
// or space. Returns "" when there is no such group (e.g. a relative
// reference).
func uriScheme(value string) string {
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == ':' {
			if i == 0 {
				return ""
			}
			return value[:i]
		}
		if c == '/' || c == '?' || c == '#' || c == ' ' {
			return ""
		}
	}
	return ""
}

// sanitizeURIFragment implements the URI_FRAGMENT rule: the value
// must begin with '#'; the remainder passes through nmPolicy (if
// present) and is re-prefixed with '#'.
func sanitizeURIFragment(value string, nmPolicy NMTokenPolicy) (string, bool) {
	if !strings.HasPrefix(value, "#") {
		return "", false
	}
	rest := value[1:]
	if nmPolicy == nil {
		return "#" + rest, true
	}
	v, ok := nmPolicy(rest)
	if !ok {
		return "", false
	}
	return "#" + v, true
}

// MakeTagPolicy returns a TagPolicy that drops UNSAFE elements
// outright and otherwise delegates to sanitizeAttribs using the given
// schema, uriRewriter, and nmPolicy.
func MakeTagPolicy(schema *Schema, uriRewriter URIRewriter, nmPolicy NMTokenPolicy) TagPolicy {
	return func(tag string, attrs []Attribute) ([]Attribute, bool) {
		flags, ok := schema.lookupElement(tag)
		if !ok {
			return nil, false
		}
		if flags.has(Unsafe) {
			return nil, false
		}
		return sanitizeAttribs(tag, attrs, schema, uriRewriter, nmPolicy), true
	}
}
