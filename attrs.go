package htmlsanitizer

import "strings"

// Attribute is a single (name, value) pair recovered from a start
// tag. Name is always lowercase. A policy-deleted attribute is
// represented by Deleted=true; the serializer skips it.
type Attribute struct {
	Name    string
	Value   string
	Deleted bool
}

func isSpaceByte(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f':
		return true
	}
	return false
}

func isAlphaByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordByte(c byte) bool {
	return isAlphaByte(c) || (c >= '0' && c <= '9') || c == '_'
}

// leadingWord returns the longest prefix of s made of word characters
// ([0-9A-Za-z_]), matching the spec's "\w+" tag-name extraction.
func leadingWord(s string) string {
	i := 0
	for i < len(s) && isWordByte(s[i]) {
		i++
	}
	return s[:i]
}

// beginsWithLetter reports whether s starts with an ASCII letter —
// the single gating test the tokenizer uses to decide "this might be
// a tag" versus "this is just a literal '<'".
func beginsWithLetter(s string) bool {
	return len(s) > 0 && isAlphaByte(s[0])
}

// nameEqualsLookahead reports whether s begins with the VALUE
// grammar's "(?=NAME \s* =)" alternative: an attribute-name-shaped
// word run, optional whitespace, then '='. RE2 has no lookaround, so
// the unquoted-value scanner calls this at every position instead of
// compiling the alternative as a regexp.
func nameEqualsLookahead(s string) bool {
	i := 0
	if i >= len(s) || !isAlphaByte(s[i]) {
		return false
	}
	i++
	for i < len(s) && (isAlphaByte(s[i]) || s[i] == '-') {
		i++
	}
	for i < len(s) && isSpaceByte(s[i]) {
		i++
	}
	return i < len(s) && s[i] == '='
}

// parsedTag is the result of the attribute parser (§4.4): a tag name,
// its surviving attribute list in source order, and the token index
// to resume scanning from (just past the tag's closing '>').
type parsedTag struct {
	name  string
	attrs []Attribute
	next  int
	ok    bool
}

// parseTag implements §4.4. pos is the index of the token that
// begins the tag name (the token immediately following '<' or '</').
// tokens[pos] is guaranteed by the caller to begin with a word
// character.
func parseTag(tokens []token, pos int) parsedTag {
	name := leadingWord(tokens[pos].text)
	lname := lowerTag(name)
	rest := tokens[pos].text[len(name):]

	buf := rest
	gt := pos + 1
	for gt < len(tokens) && tokens[gt].kind != tokGreaterThan {
		buf += tokens[gt].text
		gt++
	}
	if gt >= len(tokens) {
		return parsedTag{ok: false}
	}

	var attrs []Attribute
	p := 0
	for {
		for p < len(buf) && isSpaceByte(buf[p]) {
			p++
		}
		if p >= len(buf) {
			break
		}
		if !isAlphaByte(buf[p]) {
			// Rule 1: no match here — drop the offending character
			// plus any following run of non-letter, non-space chars.
			p++
			for p < len(buf) && !isAlphaByte(buf[p]) && !isSpaceByte(buf[p]) {
				p++
			}
			continue
		}

		nameStart := p
		p++
		for p < len(buf) && (isAlphaByte(buf[p]) || buf[p] == '-') {
			p++
		}
		attrName := strings.ToLower(buf[nameStart:p])

		eq := p
		for eq < len(buf) && isSpaceByte(buf[eq]) {
			eq++
		}
		if eq >= len(buf) || buf[eq] != '=' {
			// Boolean attribute: value is the attribute's own name.
			attrs = append(attrs, Attribute{Name: attrName, Value: attrName})
			continue
		}

		v := eq + 1
		for v < len(buf) && isSpaceByte(buf[v]) {
			v++
		}
		if v < len(buf) && (buf[v] == '"' || buf[v] == '\'') {
			quote := buf[v]
			closeIdx := strings.IndexByte(buf[v+1:], quote)
			if closeIdx < 0 {
				// Rule 2: the quoted value straddles a '>' boundary.
				newBuf, newGT, ok := extendPastQuote(tokens, gt, buf, quote)
				if !ok {
					return parsedTag{ok: false}
				}
				buf = newBuf
				gt = newGT
				p = nameStart
				continue
			}
			inner := buf[v+1 : v+1+closeIdx]
			value := UnescapeEntities(StripNuls(inner))
			attrs = append(attrs, Attribute{Name: attrName, Value: value})
			p = v + 1 + closeIdx + 1
			continue
		}

		// Unquoted value: run to the next whitespace or quote char, or
		// stop early at the VALUE grammar's NAME\s*= lookahead. If
		// nothing was consumed before hitting it, this attribute has
		// no value of its own — it falls back to boolean and the
		// lookahead text is reparsed as a fresh attribute.
		end := v
		for end < len(buf) && !isSpaceByte(buf[end]) && buf[end] != '"' && buf[end] != '\'' && !nameEqualsLookahead(buf[end:]) {
			end++
		}
		if end == v {
			attrs = append(attrs, Attribute{Name: attrName, Value: attrName})
			p = v
			continue
		}
		raw := buf[v:end]
		value := UnescapeEntities(StripNuls(raw))
		attrs = append(attrs, Attribute{Name: attrName, Value: value})
		p = end
	}

	return parsedTag{name: lname, attrs: attrs, next: gt + 1, ok: true}
}

// extendPastQuote recovers from an attribute value whose opening
// quote has no closing quote within buf: it re-scans forward from
// the current '>' boundary (gt), appending tokens to buf, until a
// token containing the opening quote character is seen; thereafter
// it keeps appending until the next '>' token, which becomes the new
// boundary. Returns ok=false if the token stream runs out first.
func extendPastQuote(tokens []token, gt int, buf string, quote byte) (string, int, bool) {
	i := gt
	foundQuote := false
	for i < len(tokens) {
		tok := tokens[i]
		if !foundQuote {
			buf += tok.text
			if strings.IndexByte(tok.text, quote) >= 0 {
				foundQuote = true
			}
			i++
			continue
		}
		if tok.kind == tokGreaterThan {
			return buf, i, true
		}
		buf += tok.text
		i++
	}
	return "", 0, false
}
