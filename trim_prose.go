//go:build !wasip1 && !js

package byte_bpe

import (
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

// TrimIncompleteSentence drops an unterminated trailing sentence from
// the token sequence, unless doing so would lose more than a fifth of
// the text.
func (t *Tokenizer) TrimIncompleteSentence(tokens Tokens) (Tokens, error) {
	text, err := t.Decode(tokens)
	if err != nil {
		return nil, err
	}
	doc, err := prose.NewDocument(
		text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithTokenization(false),
	)
	if err != nil {
		return nil, err
	}
	sentences := doc.Sentences()
	if len(sentences) == 0 {
		return tokens, nil
	}
	lastSentence := sentences[len(sentences)-1].Text
	var last rune
	for _, r := range lastSentence {
		if unicode.IsSpace(r) {
			continue
		}
		last = r
	}
	trimmed := doc.Text
	if !unicode.IsPunct(last) {
		trimPos := strings.LastIndex(trimmed, lastSentence)
		if trimPos >= 1 {
			trimmed = doc.Text[:trimPos-1]
		}
	}
	trimmed = strings.TrimSpace(trimmed)
	if float32(len(trimmed)) < float32(len(doc.Text))*0.8 {
		return tokens, nil
	}
	return t.Encode(trimmed, AllowedNone)
}

// TrimSentences trims whole sentences from the top or bottom of the
// token sequence until it fits within limit tokens.
func (t *Tokenizer) TrimSentences(tokens Tokens, direction TrimDirection,
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
	doc, err := prose.NewDocument(
		text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithTokenization(false),
	)
	if err != nil {
		return nil, err
	}
	sentences := doc.Sentences()
	switch direction {
	case TrimTop:
		keepFrom := len(doc.Text)
		for idx := len(sentences) - 1; idx >= 0; idx-- {
			sentence := sentences[idx].Text
			sentenceIdx := strings.LastIndex(doc.Text[:keepFrom], sentence)
			if sentenceIdx < 0 {
				break
			}
			if sentenceIdx > 0 &&
				unicode.IsSpace(rune(doc.Text[sentenceIdx-1])) {
				sentenceIdx -= 1
			}
			suffix, err := t.Encode(doc.Text[sentenceIdx:], AllowedNone)
			if err != nil {
				return nil, err
			}
			if uint(len(suffix)) > limit {
				break
			}
			keepFrom = sentenceIdx
		}
		return t.Encode(doc.Text[keepFrom:], AllowedNone)
	case TrimBottom:
		keepTo := 0
		for idx := 0; idx < len(sentences); idx++ {
			sentence := sentences[idx].Text
			sentenceIdx := strings.Index(doc.Text[keepTo:], sentence)
			if sentenceIdx < 0 {
				break
			}
			sentenceEnd := keepTo + sentenceIdx + len(sentence)
			prefix, err := t.Encode(doc.Text[:sentenceEnd], AllowedNone)
			if err != nil {
				return nil, err
			}
			if uint(len(prefix)) > limit {
				break
			}
			keepTo = sentenceEnd
		}
		return t.Encode(doc.Text[:keepTo], AllowedNone)
	}
	return Tokens{}, nil
}
