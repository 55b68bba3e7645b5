package byte_bpe

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// SimpleSplitPattern classifies text into contractions, letter runs,
// digit runs, punctuation runs and whitespace runs, GPT2 style.
const SimpleSplitPattern = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+`

// StrictSplitPattern is the stricter GPT4-style variant: contractions
// match case-insensitively, digit runs are capped at three characters,
// and the final whitespace character before a word belongs to the
// word's chunk. RE2 has no lookahead, so the whitespace attachment is
// applied as a boundary fixup after matching.
const StrictSplitPattern = `(?i:'s|'t|'re|'ve|'m|'ll|'d)|[^\r\n\p{L}\p{N}]?\p{L}+|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n]*|\s*[\r\n]+|\s+`

const (
	patternSimple = "simple"
	patternStrict = "strict"
	patternNone   = "none"
)

// PreTokenizer splits raw text into chunks; merges never cross a chunk
// boundary. Splitting is content preserving: concatenating the chunks
// reproduces the input byte for byte. A nil *PreTokenizer treats the
// whole text as a single chunk.
type PreTokenizer struct {
	name        string
	pattern     *regexp.Regexp
	attachSpace bool
}

// SimplePreTokenizer returns the default splitter.
func SimplePreTokenizer() *PreTokenizer {
	pat := regexp.MustCompile(SimpleSplitPattern)
	return &PreTokenizer{name: patternSimple, pattern: pat}
}

// StrictPreTokenizer returns the GPT4-style splitter.
func StrictPreTokenizer() *PreTokenizer {
	pat := regexp.MustCompile(StrictSplitPattern)
	return &PreTokenizer{name: patternStrict, pattern: pat, attachSpace: true}
}

// NewPreTokenizer compiles a custom split pattern.
func NewPreTokenizer(pattern string) (*PreTokenizer, error) {
	pat, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("byte_bpe: compiling split pattern: %w", err)
	}
	return &PreTokenizer{pattern: pat}, nil
}

// PreTokenizerFor resolves a persisted pattern spec: a preset name, the
// "none" marker, or a literal pattern.
func PreTokenizerFor(spec string) (*PreTokenizer, error) {
	switch spec {
	case patternSimple:
		return SimplePreTokenizer(), nil
	case patternStrict:
		return StrictPreTokenizer(), nil
	case patternNone:
		return nil, nil
	}
	return NewPreTokenizer(spec)
}

// Spec returns the persistable identity of the splitter: a preset name
// or the literal pattern.
func (p *PreTokenizer) Spec() string {
	if p == nil {
		return patternNone
	}
	if p.name != "" {
		return p.name
	}
	return p.pattern.String()
}

// Split breaks text into chunks. Any span the pattern fails to match
// is emitted as its own chunk, so the concatenation invariant holds
// for custom patterns too.
func (p *PreTokenizer) Split(text string) []string {
	if text == "" {
		return nil
	}
	if p == nil {
		return []string{text}
	}
	spans := p.pattern.FindAllStringIndex(text, -1)
	chunks := make([]string, 0, len(spans))
	prev := 0
	for _, span := range spans {
		if span[0] > prev {
			chunks = append(chunks, text[prev:span[0]])
		}
		chunks = append(chunks, text[span[0]:span[1]])
		prev = span[1]
	}
	if prev < len(text) {
		chunks = append(chunks, text[prev:])
	}
	if p.attachSpace {
		chunks = reattachTrailingSpace(chunks)
	}
	return chunks
}

// reattachTrailingSpace moves the last whitespace character of a
// whitespace run onto a directly following word chunk, emulating the
// \s+(?!\S) behavior of the strict pattern.
func reattachTrailingSpace(chunks []string) []string {
	out := make([]string, 0, len(chunks))
	for i := 0; i < len(chunks); i++ {
		chunk := chunks[i]
		if i+1 < len(chunks) && isWhitespace(chunk) {
			last, size := utf8.DecodeLastRuneInString(chunk)
			first, _ := utf8.DecodeRuneInString(chunks[i+1])
			if last != '\n' && last != '\r' && unicode.IsLetter(first) {
				if head := chunk[:len(chunk)-size]; head != "" {
					out = append(out, head)
				}
				chunks[i+1] = chunk[len(chunk)-size:] + chunks[i+1]
				continue
			}
		}
		out = append(out, chunk)
	}
	return out
}

func isWhitespace(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return s != ""
}
