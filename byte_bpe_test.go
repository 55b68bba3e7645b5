package byte_bpe

import (
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testCorpus = `Byte pair encoding is a data compression technique that
iteratively replaces the most frequent pair of adjacent bytes in a
sequence with a single, unused byte. In natural language processing it
is used as a subword tokenization algorithm. The algorithm initializes
the vocabulary with individual bytes, counts all pairs of adjacent
symbols in the training corpus, merges the most frequent pair, and
repeats until reaching the desired vocabulary size. Out of vocabulary
words are split into known subword units, which makes the scheme
effective across languages, numbers like 123456, and even emoji 🙂🌍.
The quick brown fox jumps over the lazy dog. The quick brown fox jumps
over the lazy dog again, because the corpus needs repetition for the
pair counts to be interesting.`

var testTokenizer *Tokenizer

func init() {
	tokenizer, err := Train(context.Background(), testCorpus, 320, nil)
	if err != nil {
		log.Fatalf("Error training test tokenizer: %v", err)
	}
	testTokenizer = tokenizer
}

type RoundTripTest struct {
	Name  string
	Input string
}

var RoundTripTests = []RoundTripTest{
	{"english", "The quick brown fox jumps over the lazy dog."},
	{"contractions", "we'll jump, but we don't swim."},
	{"unicode", "こんにちは世界, Привет мир!"},
	{"emoji", "🙂 🌍 🚀 done"},
	{"whitespace", "\n\n  tabs\tand  spaces   \n"},
	{"digits", "The year 20261 had 123456 seconds of rain."},
	{"empty", ""},
	{"single byte", "a"},
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, test := range RoundTripTests {
		encoded, err := testTokenizer.Encode(test.Input, AllowedNoneRaise)
		assert.NoError(t, err, test.Name)
		decoded, err := testTokenizer.Decode(encoded)
		assert.NoError(t, err, test.Name)
		assert.Equal(t, test.Input, decoded, test.Name)
	}
}

func TestVocabSizeInvariant(t *testing.T) {
	merges := testTokenizer.Vocabulary().Merges()
	assert.Equal(t, 256+len(merges), testTokenizer.VocabSize())
}

func specialTestTokenizer(t *testing.T, tokens []SpecialToken) *Tokenizer {
	registry, err := NewSpecialTokenRegistry(tokens)
	assert.NoError(t, err)
	tokenizer, err := NewTokenizer(testTokenizer.Vocabulary(),
		SimplePreTokenizer(), registry, nil)
	assert.NoError(t, err)
	return tokenizer
}

func TestSpecialTokenPolicies(t *testing.T) {
	tokenizer := specialTestTokenizer(t,
		[]SpecialToken{{Text: "<|end|>", ID: 9999}})
	text := "a<|end|>b"

	_, err := tokenizer.Encode(text, AllowedNoneRaise)
	var specialErr *SpecialTokenError
	assert.True(t, errors.As(err, &specialErr))
	assert.Equal(t, "<|end|>", specialErr.Token)

	encoded, err := tokenizer.Encode(text, AllowedAll)
	assert.NoError(t, err)
	assert.Equal(t, Tokens{97, 9999, 98}, encoded)
	decoded, err := tokenizer.Decode(encoded)
	assert.NoError(t, err)
	assert.Equal(t, text, decoded)

	encoded, err = tokenizer.Encode(text, AllowedNone)
	assert.NoError(t, err)
	assert.NotContains(t, encoded, Token(9999))
	decoded, err = tokenizer.Decode(encoded)
	assert.NoError(t, err)
	assert.Equal(t, text, decoded)

	encoded, err = tokenizer.Encode(text, AllowedSet("<|end|>"))
	assert.NoError(t, err)
	assert.Contains(t, encoded, Token(9999))
}

func TestSpecialTokenSubsetStrict(t *testing.T) {
	tokenizer := specialTestTokenizer(t, []SpecialToken{
		{Text: "<|end|>", ID: 9999},
		{Text: "<|pad|>", ID: 10000},
	})

	// A registered special outside the allowed subset is an error.
	_, err := tokenizer.Encode("a<|pad|>b", AllowedSet("<|end|>"))
	var specialErr *SpecialTokenError
	assert.True(t, errors.As(err, &specialErr))
	assert.Equal(t, "<|pad|>", specialErr.Token)

	// Allowing an unregistered name is a configuration error.
	_, err = tokenizer.Encode("ab", AllowedSet("<|nope|>"))
	assert.Error(t, err)
}

func TestSpecialTokenLongestMatch(t *testing.T) {
	tokenizer := specialTestTokenizer(t, []SpecialToken{
		{Text: "<|end|>", ID: 9999},
		{Text: "<|end|>x", ID: 10000},
	})
	encoded, err := tokenizer.Encode("<|end|>x", AllowedAll)
	assert.NoError(t, err)
	assert.Equal(t, Tokens{10000}, encoded)
}

func TestSpecialTokenIDCollision(t *testing.T) {
	registry, err := NewSpecialTokenRegistry(
		[]SpecialToken{{Text: "<|end|>", ID: 10}})
	assert.NoError(t, err)
	_, err = NewTokenizer(testTokenizer.Vocabulary(), nil, registry, nil)
	assert.Error(t, err)
}

func TestDecodeUnknownToken(t *testing.T) {
	bad := Token(testTokenizer.VocabSize() + 5)
	_, err := testTokenizer.Decode(Tokens{bad})
	var unknownErr *UnknownTokenError
	assert.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, bad, unknownErr.ID)
}

func TestDecodeReplacesInvalidUTF8(t *testing.T) {
	vocab, err := NewVocabulary(nil)
	assert.NoError(t, err)
	tokenizer, err := NewTokenizer(vocab, nil, nil, nil)
	assert.NoError(t, err)

	decoded, err := tokenizer.Decode(Tokens{0xff})
	assert.NoError(t, err)
	assert.Equal(t, "�", decoded)

	// A run of invalid bytes collapses to a single replacement.
	decoded, err = tokenizer.Decode(Tokens{'a', 0xff, 0xfe, 'b'})
	assert.NoError(t, err)
	assert.Equal(t, "a�b", decoded)
}

func reversedShuffle(t *testing.T) *ByteShuffle {
	perm := make([]byte, 256)
	for i := range perm {
		perm[i] = byte(255 - i)
	}
	shuffle, err := NewByteShuffle(perm)
	assert.NoError(t, err)
	return shuffle
}

func TestByteShuffleInvertibility(t *testing.T) {
	shuffle := reversedShuffle(t)
	for b := 0; b < 256; b++ {
		in := []byte{byte(b)}
		assert.Equal(t, in, shuffle.Invert(shuffle.Apply(in)))
	}
}

func TestByteShuffleValidation(t *testing.T) {
	_, err := NewByteShuffle(make([]byte, 100))
	assert.Error(t, err)
	duplicated := make([]byte, 256)
	for i := range duplicated {
		duplicated[i] = byte(i)
	}
	duplicated[255] = 0
	_, err = NewByteShuffle(duplicated)
	assert.Error(t, err)
}

func TestByteShuffleRoundTrip(t *testing.T) {
	opts := TrainerOptions{ByteShuffle: reversedShuffle(t)}
	tokenizer, err := Train(context.Background(), testCorpus, 320, &opts)
	assert.NoError(t, err)
	for _, test := range RoundTripTests {
		encoded, err := tokenizer.Encode(test.Input, AllowedNoneRaise)
		assert.NoError(t, err, test.Name)
		decoded, err := tokenizer.Decode(encoded)
		assert.NoError(t, err, test.Name)
		assert.Equal(t, test.Input, decoded, test.Name)
	}
}

func TestSpecialBypassesByteShuffle(t *testing.T) {
	opts := TrainerOptions{
		ByteShuffle:   reversedShuffle(t),
		SpecialTokens: []string{"<|end|>"},
	}
	tokenizer, err := Train(context.Background(), testCorpus, 320, &opts)
	assert.NoError(t, err)
	encoded, err := tokenizer.Encode("a<|end|>b", AllowedAll)
	assert.NoError(t, err)
	decoded, err := tokenizer.Decode(encoded)
	assert.NoError(t, err)
	assert.Equal(t, "a<|end|>b", decoded)
	endID, ok := tokenizer.Specials().Lookup("<|end|>")
	assert.True(t, ok)
	assert.Contains(t, encoded, endID)
}

func TestTokenToString(t *testing.T) {
	assert.Equal(t, `"a"`, testTokenizer.TokenToString(Token('a')))
	assert.True(t, strings.HasPrefix(
		testTokenizer.TokenToString(Token(0xff)), "0x"))
}
