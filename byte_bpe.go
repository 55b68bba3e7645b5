package byte_bpe

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru"
)

const BPE_LRU_SZ = 65536

// Tokenizer composes an immutable Vocabulary with pluggable splitting,
// special token and byte shuffle strategies. Any strategy may be nil,
// which means identity. Once constructed a Tokenizer never mutates its
// tables, so concurrent Encode and Decode calls are safe; the chunk
// cache is the only shared mutable state and is safe by itself.
type Tokenizer struct {
	vocab    *Vocabulary
	pre      *PreTokenizer
	specials *SpecialTokenRegistry
	shuffle  *ByteShuffle
	cache    *lru.ARCCache
}

// NewTokenizer wires a trained or loaded vocabulary to its strategies.
// Every special token id must sit strictly above the highest merge id.
func NewTokenizer(vocab *Vocabulary, pre *PreTokenizer,
	specials *SpecialTokenRegistry, shuffle *ByteShuffle) (*Tokenizer, error) {
	if vocab == nil {
		return nil, fmt.Errorf("byte_bpe: tokenizer needs a vocabulary")
	}
	for _, tok := range specials.Tokens() {
		if int(tok.ID) < vocab.Size() {
			return nil, fmt.Errorf(
				"byte_bpe: special token %q id %d collides with vocabulary of size %d",
				tok.Text, tok.ID, vocab.Size())
		}
	}
	cache, _ := lru.NewARC(BPE_LRU_SZ)
	return &Tokenizer{
		vocab:    vocab,
		pre:      pre,
		specials: specials,
		shuffle:  shuffle,
		cache:    cache,
	}, nil
}

// Vocabulary returns the tokenizer's immutable vocabulary.
func (t *Tokenizer) Vocabulary() *Vocabulary {
	return t.vocab
}

// Specials returns the special token registry, which may be nil.
func (t *Tokenizer) Specials() *SpecialTokenRegistry {
	return t.specials
}

// VocabSize counts every id the tokenizer can emit: 256 byte ids, one
// per merge, one per special token.
func (t *Tokenizer) VocabSize() int {
	return t.vocab.Size() + t.specials.Len()
}

// Encode converts text to token ids. Registered special substrings are
// handled per the allowed policy; everything else is split into
// chunks, byte shuffled, and greedily merged.
func (t *Tokenizer) Encode(text string, allowed AllowedSpecial) (Tokens, error) {
	segments, err := t.specials.split(text, allowed)
	if err != nil {
		return nil, err
	}
	encoded := make(Tokens, 0, len(text)/3+1)
	for _, seg := range segments {
		if seg.special {
			encoded = append(encoded, seg.id)
			continue
		}
		for _, chunk := range t.pre.Split(seg.text) {
			shuffled := t.shuffle.Apply([]byte(chunk))
			encoded = append(encoded, t.encodeChunk(shuffled)...)
		}
	}
	return encoded, nil
}

// encodeChunk applies merge rules to one chunk: the lowest ranked rule
// present in the sequence is applied across the whole sequence, then
// the scan repeats. Each application shortens the sequence, so the
// loop terminates. Results are cached per chunk.
func (t *Tokenizer) encodeChunk(data []byte) Tokens {
	if len(data) == 0 {
		return nil
	}
	key := string(data)
	if hit, ok := t.cache.Get(key); ok {
		return hit.(Tokens)
	}
	ids := make(Tokens, len(data))
	for i, b := range data {
		ids[i] = Token(b)
	}
	for len(ids) >= 2 {
		pair, ok := t.lowestRankedPair(ids)
		if !ok {
			break
		}
		result, _ := t.vocab.Result(pair)
		ids = mergePair(ids, pair, result)
	}
	t.cache.Add(key, ids)
	return ids
}

// lowestRankedPair scans ids for the adjacent pair with the earliest
// learned merge rule.
func (t *Tokenizer) lowestRankedPair(ids Tokens) (TokenPair, bool) {
	bestRank := -1
	var best TokenPair
	for i := 0; i+1 < len(ids); i++ {
		pair := TokenPair{Left: ids[i], Right: ids[i+1]}
		if rank, ok := t.vocab.Rank(pair); ok {
			if bestRank < 0 || rank < bestRank {
				bestRank = rank
				best = pair
			}
		}
	}
	return best, bestRank >= 0
}

// Decode converts ids back to text. Ordinary expansions are
// concatenated per run, inverse shuffled, and interpreted as UTF-8
// with invalid subsequences replaced, so Decode never fails on
// malformed bytes. Special ids expand to their registered string in
// place. An id absent from both vocabulary and registry is an
// UnknownTokenError.
func (t *Tokenizer) Decode(ids Tokens) (string, error) {
	var out strings.Builder
	pending := make([]byte, 0, 64)
	flush := func() {
		if len(pending) == 0 {
			return
		}
		raw := t.shuffle.Invert(pending)
		out.Write(bytes.ToValidUTF8(raw, []byte("�")))
		pending = pending[:0]
	}
	for _, id := range ids {
		if text, ok := t.specials.ByID(id); ok {
			flush()
			out.WriteString(text)
			continue
		}
		expansion, ok := t.vocab.Expansion(id)
		if !ok {
			return "", &UnknownTokenError{ID: id}
		}
		pending = append(pending, expansion...)
	}
	flush()
	return out.String(), nil
}

// TokenToString renders one id for inspection: the registered text for
// specials, a quoted string for valid UTF-8 expansions, hex otherwise.
// The rendering shows the expansion bytes as stored, before any
// inverse byte shuffle.
func (t *Tokenizer) TokenToString(id Token) string {
	if text, ok := t.specials.ByID(id); ok {
		return strconv.Quote(text)
	}
	expansion, ok := t.vocab.Expansion(id)
	if !ok {
		return fmt.Sprintf("<unknown id %d>", id)
	}
	return tokenDisplay(expansion)
}

func tokenDisplay(expansion []byte) string {
	if utf8.Valid(expansion) {
		return strconv.Quote(string(expansion))
	}
	return "0x" + fmt.Sprintf("%x", expansion)
}
