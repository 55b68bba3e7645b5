package byte_bpe

import (
	"strings"
	"unicode/utf8"
)

type TrimDirection uint

const (
	TrimTop    TrimDirection = iota
	TrimBottom TrimDirection = iota
	TrimNone   TrimDirection = iota
)

// TokensReady reports whether the token sequence decodes to complete
// UTF-8, with no multi-byte rune split across the final token. Special
// ids are boundaries and always complete. Unknown ids are never ready.
func (t *Tokenizer) TokensReady(tokens Tokens) bool {
	pending := make([]byte, 0, 32)
	for _, id := range tokens {
		if _, ok := t.specials.ByID(id); ok {
			if !utf8.Valid(t.shuffle.Invert(pending)) {
				return false
			}
			pending = pending[:0]
			continue
		}
		expansion, ok := t.vocab.Expansion(id)
		if !ok {
			return false
		}
		pending = append(pending, expansion...)
	}
	return utf8.Valid(t.shuffle.Invert(pending))
}

// TrimTokens drops trailing tokens until the remainder is ready to be
// rendered as text.
func (t *Tokenizer) TrimTokens(tokens Tokens) Tokens {
	for end := len(tokens); end > 0; end-- {
		if t.TokensReady(tokens[:end]) {
			return tokens[:end]
		}
	}
	return tokens[:0]
}

// TrimNewlines trims whole lines from the top or bottom of the token
// sequence until it fits within limit tokens.
func (t *Tokenizer) TrimNewlines(tokens Tokens, direction TrimDirection,
	limit uint) (Tokens, error) {
	if uint(len(tokens)) <= limit {
		return tokens, nil
	} else if direction == TrimNone {
		return Tokens{}, nil
	}
	text, err := t.Decode(tokens)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(text, "\n")
	var start, end, step int
	switch direction {
	case TrimTop:
		start = len(lines) - 1
		end = -1
		step = -1
	case TrimBottom:
		start = 0
		end = len(lines)
		step = 1
	}
	accTokens := make(Tokens, 0)
	for idx := start; idx != end; idx += step {
		line := lines[idx]
		switch direction {
		case TrimTop:
			line = "\n" + line
		case TrimBottom:
			line = line + "\n"
		}
		newTokens, err := t.Encode(line, AllowedNone)
		if err != nil {
			return nil, err
		}
		if len(newTokens)+len(accTokens) > int(limit) {
			return accTokens, nil
		}
		switch direction {
		case TrimTop:
			accTokens = append(newTokens, accTokens...)
		case TrimBottom:
			accTokens = append(accTokens, newTokens...)
		}
	}
	return accTokens, nil
}
