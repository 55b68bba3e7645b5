package byte_bpe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rawByteTokenizer(t *testing.T, specials []SpecialToken) *Tokenizer {
	vocab, err := NewVocabulary(nil)
	assert.NoError(t, err)
	registry, err := NewSpecialTokenRegistry(specials)
	assert.NoError(t, err)
	tokenizer, err := NewTokenizer(vocab, nil, registry, nil)
	assert.NoError(t, err)
	return tokenizer
}

func TestTokensReady(t *testing.T) {
	tokenizer := rawByteTokenizer(t, nil)

	// "é" encodes to the UTF-8 bytes 0xC3 0xA9.
	assert.True(t, tokenizer.TokensReady(Tokens{0xC3, 0xA9}))
	assert.False(t, tokenizer.TokensReady(Tokens{0xC3}))
	assert.True(t, tokenizer.TokensReady(Tokens{}))
	assert.False(t, tokenizer.TokensReady(Tokens{50000}))
}

func TestTokensReadySpecialBoundary(t *testing.T) {
	tokenizer := rawByteTokenizer(t,
		[]SpecialToken{{Text: "<|end|>", ID: 256}})
	assert.True(t, tokenizer.TokensReady(Tokens{0xC3, 0xA9, 256}))
	assert.False(t, tokenizer.TokensReady(Tokens{0xC3, 256, 0xA9}))
}

func TestTrimTokens(t *testing.T) {
	tokenizer := rawByteTokenizer(t, nil)

	complete := Tokens{'a', 0xC3, 0xA9}
	assert.Equal(t, complete, tokenizer.TrimTokens(complete))

	split := Tokens{'a', 0xC3}
	assert.Equal(t, Tokens{'a'}, tokenizer.TrimTokens(split))

	assert.Empty(t, tokenizer.TrimTokens(Tokens{0xC3}))
}

func TestTrimNewlines(t *testing.T) {
	text := "line one\nline two\nline three"
	tokens, err := testTokenizer.Encode(text, AllowedNoneRaise)
	assert.NoError(t, err)

	unchanged, err := testTokenizer.TrimNewlines(tokens, TrimTop,
		uint(len(tokens)))
	assert.NoError(t, err)
	assert.Equal(t, tokens, unchanged)

	bottomText := "\nline three"
	bottomTokens, err := testTokenizer.Encode(bottomText, AllowedNone)
	assert.NoError(t, err)
	trimmed, err := testTokenizer.TrimNewlines(tokens, TrimTop,
		uint(len(bottomTokens)))
	assert.NoError(t, err)
	decoded, err := testTokenizer.Decode(trimmed)
	assert.NoError(t, err)
	assert.Equal(t, bottomText, decoded)

	topText := "line one\n"
	topTokens, err := testTokenizer.Encode(topText, AllowedNone)
	assert.NoError(t, err)
	trimmed, err = testTokenizer.TrimNewlines(tokens, TrimBottom,
		uint(len(topTokens)))
	assert.NoError(t, err)
	decoded, err = testTokenizer.Decode(trimmed)
	assert.NoError(t, err)
	assert.Equal(t, topText, decoded)

	none, err := testTokenizer.TrimNewlines(tokens, TrimNone, 1)
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestTrimSentences(t *testing.T) {
	text := "The cat sat on the mat. The dog barked at the moon. " +
		"The bird flew over the hill."
	tokens, err := testTokenizer.Encode(text, AllowedNoneRaise)
	assert.NoError(t, err)

	unchanged, err := testTokenizer.TrimSentences(tokens, TrimBottom,
		uint(len(tokens)))
	assert.NoError(t, err)
	assert.Equal(t, tokens, unchanged)

	prefixText := "The cat sat on the mat. The dog barked at the moon."
	prefixTokens, err := testTokenizer.Encode(prefixText, AllowedNone)
	assert.NoError(t, err)
	trimmed, err := testTokenizer.TrimSentences(tokens, TrimBottom,
		uint(len(prefixTokens)))
	assert.NoError(t, err)
	decoded, err := testTokenizer.Decode(trimmed)
	assert.NoError(t, err)
	assert.Equal(t, prefixText, decoded)

	suffixText := " The bird flew over the hill."
	suffixTokens, err := testTokenizer.Encode(suffixText, AllowedNone)
	assert.NoError(t, err)
	trimmed, err = testTokenizer.TrimSentences(tokens, TrimTop,
		uint(len(suffixTokens)))
	assert.NoError(t, err)
	decoded, err = testTokenizer.Decode(trimmed)
	assert.NoError(t, err)
	assert.Equal(t, suffixText, decoded)
}

func TestTrimIncompleteSentence(t *testing.T) {
	complete := "The quick brown fox jumps over the lazy dog while " +
		"the rain falls gently on the quiet village road."
	text := complete + " And then"
	tokens, err := testTokenizer.Encode(text, AllowedNoneRaise)
	assert.NoError(t, err)

	trimmed, err := testTokenizer.TrimIncompleteSentence(tokens)
	assert.NoError(t, err)
	decoded, err := testTokenizer.Decode(trimmed)
	assert.NoError(t, err)
	assert.Equal(t, complete, decoded)

	// A fully terminated text is left alone.
	terminated, err := testTokenizer.Encode(complete, AllowedNoneRaise)
	assert.NoError(t, err)
	untrimmed, err := testTokenizer.TrimIncompleteSentence(terminated)
	assert.NoError(t, err)
	assert.Equal(t, terminated, untrimmed)

	// Trimming that would drop more than a fifth of the text is
	// refused.
	short := "Too short. And then some trailing words without an end"
	shortTokens, err := testTokenizer.Encode(short, AllowedNoneRaise)
	assert.NoError(t, err)
	kept, err := testTokenizer.TrimIncompleteSentence(shortTokens)
	assert.NoError(t, err)
	assert.Equal(t, shortTokens, kept)
}
