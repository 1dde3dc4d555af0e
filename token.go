package htmlsanitizer

import "regexp"

// tokenKind tags the lexically-interesting token variants produced by
// the splitter and consumed by the tokenizer.
type tokenKind int

const (
	tokLiteral tokenKind = iota
	tokAmpersand
	tokLessThan
	tokLessThanSlash
	tokLessThanBang
	tokLessThanBangDashDash
	tokLessThanQuestion
	tokGreaterThan
	tokEmpty
)

// token is a tagged variant: for separator kinds, text is the
// separator's own literal text (e.g. "<!--"); for tokLiteral it is
// the literal span between separators.
type token struct {
	kind tokenKind
	text string
}

// splitterPattern finds every lexically-significant separator:
// "</", "<!--", "<!" or "<?", and bare "&", "<", ">".
var splitterPattern = regexp.MustCompile(`</|<!--|<[!?]|[&<>]`)

// split segments input by splitterPattern so that every separator is
// its own token and the spans between separators are literal text
// tokens (tokEmpty when a span between two separators has zero
// length; an empty span at the very start or end of input produces no
// token). The splitter does not consider quoting.
func split(input string) []token {
	matches := splitterPattern.FindAllStringIndex(input, -1)
	tokens := make([]token, 0, 2*len(matches)+1)
	pos := 0
	emitLiteral := func(s string) {
		if s == "" {
			tokens = append(tokens, token{kind: tokEmpty})
			return
		}
		tokens = append(tokens, token{kind: tokLiteral, text: s})
	}
	for _, m := range matches {
		start, end := m[0], m[1]
		if start > pos || len(tokens) > 0 {
			emitLiteral(input[pos:start])
		}
		tokens = append(tokens, token{kind: separatorKind(input[start:end]), text: input[start:end]})
		pos = end
	}
	if pos < len(input) {
		emitLiteral(input[pos:])
	}
	return tokens
}

func separatorKind(sep string) tokenKind {
	switch sep {
	case "&":
		return tokAmpersand
	case "<":
		return tokLessThan
	case ">":
		return tokGreaterThan
	case "</":
		return tokLessThanSlash
	case "<!--":
		return tokLessThanBangDashDash
	case "<!":
		return tokLessThanBang
	case "<?":
		return tokLessThanQuestion
	}
	// Unreachable given splitterPattern's alternation.
	return tokLiteral
}
