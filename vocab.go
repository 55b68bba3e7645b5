package byte_bpe

import (
	"fmt"

	"github.com/wbrown/byte_bpe/types"
)

type Token = types.Token
type Tokens = types.Tokens
type TokenPair = types.TokenPair

// MergeRule records one learned merge: Pair replaced by Result. The
// rule's rank is its index in the vocabulary's ordered merge list;
// lower rank means learned earlier and wins at encode time.
type MergeRule struct {
	Pair   TokenPair
	Result Token
}

// Vocabulary is the id expansion table plus the ordered merge rules.
// Ids 0-255 expand to their own byte; each merge id expands to the
// concatenation of its operand expansions. A Vocabulary is immutable
// after construction and safe for concurrent readers.
type Vocabulary struct {
	merges     []MergeRule
	merged     map[TokenPair]Token
	ranks      map[TokenPair]int
	expansions [][]byte
}

// NewVocabulary builds a Vocabulary from ordered merge pairs. Result
// ids are derived sequentially from 256, which is what keeps model
// blobs compact and round-trips exact. A pair operand must refer to a
// byte id or an earlier merge id.
func NewVocabulary(pairs []TokenPair) (*Vocabulary, error) {
	v := &Vocabulary{
		merges:     make([]MergeRule, 0, len(pairs)),
		merged:     make(map[TokenPair]Token, len(pairs)),
		ranks:      make(map[TokenPair]int, len(pairs)),
		expansions: make([][]byte, 256, 256+len(pairs)),
	}
	for i := 0; i < 256; i++ {
		v.expansions[i] = []byte{byte(i)}
	}
	for rank, pair := range pairs {
		next := Token(256 + rank)
		if pair.Left >= next || pair.Right >= next {
			return nil, fmt.Errorf(
				"merge %d references id not yet in vocabulary: (%d, %d)",
				rank, pair.Left, pair.Right)
		}
		if _, dup := v.merged[pair]; dup {
			return nil, fmt.Errorf(
				"merge %d repeats pair (%d, %d)", rank, pair.Left, pair.Right)
		}
		expansion := make([]byte, 0,
			len(v.expansions[pair.Left])+len(v.expansions[pair.Right]))
		expansion = append(expansion, v.expansions[pair.Left]...)
		expansion = append(expansion, v.expansions[pair.Right]...)
		v.expansions = append(v.expansions, expansion)
		v.merges = append(v.merges, MergeRule{Pair: pair, Result: next})
		v.merged[pair] = next
		v.ranks[pair] = rank
	}
	return v, nil
}

// Merges returns the learned rules in rank order.
func (v *Vocabulary) Merges() []MergeRule {
	return v.merges
}

// Size is the number of ids the vocabulary expands: 256 byte ids plus
// one per merge. Special token ids live outside the Vocabulary, in the
// tokenizer's registry.
func (v *Vocabulary) Size() int {
	return len(v.expansions)
}

// Expansion returns the byte expansion for id, or false when the id is
// not in the vocabulary.
func (v *Vocabulary) Expansion(id Token) ([]byte, bool) {
	if int(id) >= len(v.expansions) {
		return nil, false
	}
	return v.expansions[id], true
}

// Result returns the id that pair merges into, if a rule exists.
func (v *Vocabulary) Result(pair TokenPair) (Token, bool) {
	id, ok := v.merged[pair]
	return id, ok
}

// Rank returns the learning order of the rule for pair, if one exists.
func (v *Vocabulary) Rank(pair TokenPair) (int, bool) {
	rank, ok := v.ranks[pair]
	return rank, ok
}

// mergePair replaces every non-overlapping, left-to-right occurrence
// of pair in ids with result.
func mergePair(ids Tokens, pair TokenPair, result Token) Tokens {
	out := make(Tokens, 0, len(ids))
	for i := 0; i < len(ids); {
		if i+1 < len(ids) && ids[i] == pair.Left && ids[i+1] == pair.Right {
			out = append(out, result)
			i += 2
		} else {
			out = append(out, ids[i])
			i += 1
		}
	}
	return out
}
