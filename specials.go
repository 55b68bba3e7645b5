package byte_bpe

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set"
)

// SpecialToken is a reserved string mapped directly to a fixed id,
// bypassing byte-level merging. Ids must sit above every merge id.
type SpecialToken struct {
	Text string
	ID   Token
}

// SpecialTokenRegistry holds the reserved text to id mappings. Matching
// is exact, non-overlapping substring search ordered by leftmost
// occurrence; the registry never does pattern matching. Immutable after
// construction.
type SpecialTokenRegistry struct {
	byText  map[string]Token
	byID    map[Token]string
	ordered []SpecialToken
	texts   mapset.Set
}

// NewSpecialTokenRegistry validates and indexes the given tokens.
// Texts must be non-empty, newline free and unique; ids must be unique.
func NewSpecialTokenRegistry(tokens []SpecialToken) (*SpecialTokenRegistry, error) {
	r := &SpecialTokenRegistry{
		byText:  make(map[string]Token, len(tokens)),
		byID:    make(map[Token]string, len(tokens)),
		ordered: make([]SpecialToken, 0, len(tokens)),
		texts:   mapset.NewSet(),
	}
	for _, tok := range tokens {
		if tok.Text == "" {
			return nil, fmt.Errorf("byte_bpe: special token text is empty")
		}
		if strings.ContainsAny(tok.Text, "\r\n") {
			return nil, fmt.Errorf(
				"byte_bpe: special token %q contains a newline", tok.Text)
		}
		if _, dup := r.byText[tok.Text]; dup {
			return nil, fmt.Errorf(
				"byte_bpe: special token %q registered twice", tok.Text)
		}
		if prior, dup := r.byID[tok.ID]; dup {
			return nil, fmt.Errorf(
				"byte_bpe: special tokens %q and %q share id %d",
				prior, tok.Text, tok.ID)
		}
		r.byText[tok.Text] = tok.ID
		r.byID[tok.ID] = tok.Text
		r.ordered = append(r.ordered, tok)
		r.texts.Add(tok.Text)
	}
	return r, nil
}

// Tokens returns the registered tokens in registration order.
func (r *SpecialTokenRegistry) Tokens() []SpecialToken {
	if r == nil {
		return nil
	}
	return r.ordered
}

func (r *SpecialTokenRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ordered)
}

// Lookup returns the id registered for text.
func (r *SpecialTokenRegistry) Lookup(text string) (Token, bool) {
	if r == nil {
		return 0, false
	}
	id, ok := r.byText[text]
	return id, ok
}

// ByID returns the text registered for id.
func (r *SpecialTokenRegistry) ByID(id Token) (string, bool) {
	if r == nil {
		return "", false
	}
	text, ok := r.byID[id]
	return text, ok
}

type allowedMode int

const (
	allowNone allowedMode = iota
	allowAll
	allowNoneRaise
	allowSubset
)

// AllowedSpecial is the encode-time policy for registered special
// tokens found in the input text.
type AllowedSpecial struct {
	mode allowedMode
	set  mapset.Set
}

// AllowedAll treats every registered special substring as a literal
// special token.
var AllowedAll = AllowedSpecial{mode: allowAll}

// AllowedNone feeds registered special substrings through ordinary
// byte-level encoding.
var AllowedNone = AllowedSpecial{mode: allowNone}

// AllowedNoneRaise fails with a SpecialTokenError if any registered
// special substring occurs in the text.
var AllowedNoneRaise = AllowedSpecial{mode: allowNoneRaise}

// AllowedSet honors only the named registered specials. Any other
// registered special present in the text is a SpecialTokenError.
func AllowedSet(tokens ...string) AllowedSpecial {
	set := mapset.NewSet()
	for _, tok := range tokens {
		set.Add(tok)
	}
	return AllowedSpecial{mode: allowSubset, set: set}
}

// segment is one span of the input: either a literal special token id
// or ordinary text to be chunked and merge-encoded.
type segment struct {
	special bool
	id      Token
	text    string
}

// split partitions text into ordinary and special segments under the
// given policy.
func (r *SpecialTokenRegistry) split(text string, allowed AllowedSpecial) ([]segment, error) {
	if text == "" {
		return nil, nil
	}
	if allowed.mode == allowNone || r.Len() == 0 {
		if allowed.mode == allowSubset && allowed.set != nil &&
			allowed.set.Cardinality() > 0 && r.Len() == 0 {
			return nil, fmt.Errorf(
				"byte_bpe: allowed specials given but none are registered")
		}
		return []segment{{text: text}}, nil
	}

	honored := mapset.NewSet()
	switch allowed.mode {
	case allowAll:
		honored = r.texts
	case allowSubset:
		if !r.texts.IsSuperset(allowed.set) {
			missing := allowed.set.Difference(r.texts)
			return nil, fmt.Errorf(
				"byte_bpe: allowed specials %v are not registered", missing)
		}
		honored = allowed.set
	case allowNoneRaise:
		// honored stays empty: any hit is an error.
	}

	segments := make([]segment, 0, 4)
	pos := 0
	for pos < len(text) {
		start, tok := r.nextOccurrence(text, pos)
		if start < 0 {
			segments = append(segments, segment{text: text[pos:]})
			break
		}
		if !honored.Contains(tok) {
			return nil, &SpecialTokenError{Token: tok}
		}
		if start > pos {
			segments = append(segments, segment{text: text[pos:start]})
		}
		segments = append(segments, segment{special: true, id: r.byText[tok]})
		pos = start + len(tok)
	}
	return segments, nil
}

// nextOccurrence finds the leftmost occurrence of any registered
// special at or after from. On equal start positions the longest token
// wins, so a special that prefixes another never shadows it.
func (r *SpecialTokenRegistry) nextOccurrence(text string, from int) (int, string) {
	best := -1
	bestTok := ""
	for _, tok := range r.ordered {
		idx := strings.Index(text[from:], tok.Text)
		if idx < 0 {
			continue
		}
		at := from + idx
		if best < 0 || at < best ||
			(at == best && len(tok.Text) > len(bestTok)) {
			best = at
			bestTok = tok.Text
		}
	}
	return best, bestTok
}
