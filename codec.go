package htmlsanitizer

import "strings"

// namedEntities is the fixed table of named character references this
// sanitizer understands. It is intentionally minimal — Greek letters
// and the rest of the HTML5 named-character-reference list are not
// decoded. Expanding it is a policy choice, not a correctness fix.
var namedEntities = map[string]rune{
	"lt":    '<',
	"gt":    '>',
	"amp":   '&',
	"nbsp":  ' ',
	"quot":  '"',
	"apos":  '\'',
}

// asciiLower folds A-Z to a-z and leaves everything else untouched.
// Only ASCII is folded so that Turkish-locale dotted/dotless I rules
// can never change the result of a case-insensitive comparison.
func asciiLower(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// decodeEntity decodes the content between '&' and ';' (name must not
// include either delimiter). It returns ("", false) when name is not
// a recognized named, decimal, or hex character reference.
func decodeEntity(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if r, ok := namedEntities[asciiLower(name)]; ok {
		return string(r), true
	}
	if name[0] == '#' {
		rest := name[1:]
		if rest == "" {
			return "", false
		}
		if rest[0] == 'x' || rest[0] == 'X' {
			hex := rest[1:]
			if hex == "" || !isHexDigits(hex) {
				return "", false
			}
			return decodeCodePoint(hex, 16)
		}
		if !isDecDigits(rest) {
			return "", false
		}
		return decodeCodePoint(rest, 10)
	}
	if isWordChars(name) {
		return "", false
	}
	return "", false
}

func isDecDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isHexDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

func isWordChars(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_') {
			return false
		}
	}
	return len(s) > 0
}

func decodeCodePoint(digits string, base int) (string, bool) {
	var v int64
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		var d int64
		switch {
		case c >= '0' && c <= '9':
			d = int64(c - '0')
		case base == 16 && c >= 'a' && c <= 'f':
			d = int64(c-'a') + 10
		case base == 16 && c >= 'A' && c <= 'F':
			d = int64(c-'A') + 10
		default:
			return "", false
		}
		v = v*int64(base) + d
		if v > 0x10FFFF {
			// Out of Unicode range; stop growing but keep parsing
			// legal so callers still make forward progress.
			v = 0x110000
		}
	}
	if v == 0 {
		return "", false
	}
	if v > 0x10FFFF {
		v = 0xFFFD
	}
	return string(rune(v)), true
}

// entityBodyValid reports whether s is the body of an &NAME; or
// &#...; reference (without the surrounding & and ;).
func entityBodyValid(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '#' {
		rest := s[1:]
		if rest == "" {
			return false
		}
		if rest[0] == 'x' || rest[0] == 'X' {
			return isHexDigits(rest[1:])
		}
		return isDecDigits(rest)
	}
	return isWordChars(s)
}

// UnescapeEntities replaces every &(NAME); where NAME matches
// #\d+ | #x[0-9a-f]+ | [A-Za-z0-9_]+ with its decoded form. Ill-formed
// entity-like sequences are left verbatim.
func UnescapeEntities(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	i := 0
	for i < len(s) {
		if s[i] != '&' {
			b.WriteByte(s[i])
			i++
			continue
		}
		semi := strings.IndexByte(s[i+1:], ';')
		if semi < 0 {
			b.WriteByte(s[i])
			i++
			continue
		}
		body := s[i+1 : i+1+semi]
		if !entityBodyValid(body) {
			b.WriteByte(s[i])
			i++
			continue
		}
		decoded, ok := decodeEntity(body)
		if !ok {
			b.WriteByte(s[i])
			i++
			continue
		}
		b.WriteString(decoded)
		i = i + 1 + semi + 1
	}
	return b.String()
}

// EscapeAttrib escapes s for use inside a double-quoted HTML attribute
// value: &, <, >, and " are all replaced, every occurrence.
func EscapeAttrib(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&#34;")
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// NormalizeRCData re-encodes s as RCDATA text: a '&' that does not
// plausibly begin an entity reference is escaped to &amp;, and every
// '<'/'>' is escaped unconditionally.
func NormalizeRCData(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			if plausibleEntityStart(s[i+1:]) {
				b.WriteByte('&')
			} else {
				b.WriteString("&amp;")
			}
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// plausibleEntityStart reports whether rest begins with [A-Za-z#]
// followed by the usual entity grammar (NAME;, #digits;, or #xHEX;).
func plausibleEntityStart(rest string) bool {
	if rest == "" {
		return false
	}
	c := rest[0]
	if !((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '#') {
		return false
	}
	semi := strings.IndexByte(rest, ';')
	if semi < 0 {
		return false
	}
	return entityBodyValid(rest[:semi])
}

// StripNuls removes every U+0000 from s.
func StripNuls(s string) string {
	if !strings.ContainsRune(s, 0) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != 0 {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
