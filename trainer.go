package byte_bpe

import (
	"context"
	"log"

	"github.com/dustin/go-humanize"
)

// TrainerOptions configures Train. The zero value trains with the
// simple split pattern, no special tokens and no byte shuffle.
type TrainerOptions struct {
	// PreTokenizer overrides the default simple splitter.
	PreTokenizer *PreTokenizer
	// SpecialTokens are reserved strings; their ids are allocated
	// after the last merge id, in the order given here.
	SpecialTokens []string
	// ByteShuffle, when set, is applied to chunk bytes before pair
	// counting, so merges are learned in shuffled byte space.
	ByteShuffle *ByteShuffle
	// LogEvery logs training progress every N merges when positive.
	LogEvery int
}

// PairStats counts the frequency of every adjacent id pair across the
// given sequences. Each sequence is counted independently; pairs never
// span a sequence boundary. Pure function of its input.
func PairStats(sequences ...Tokens) map[TokenPair]int {
	stats := make(map[TokenPair]int)
	for _, seq := range sequences {
		for i := 0; i+1 < len(seq); i++ {
			stats[TokenPair{Left: seq[i], Right: seq[i+1]}]++
		}
	}
	return stats
}

// Train learns merge rules from corpus until the vocabulary reaches
// vocabSize or no adjacent pair occurs at least twice, then returns a
// tokenizer carrying the learned vocabulary and the trainer's
// strategies. An empty or tiny corpus yields a smaller-than-requested
// vocabulary, not an error. Cancelling ctx stops training between
// merge iterations; the partial result is a fully valid tokenizer.
func Train(ctx context.Context, corpus string, vocabSize int,
	opts *TrainerOptions) (*Tokenizer, error) {
	if opts == nil {
		opts = &TrainerOptions{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	pre := opts.PreTokenizer
	if pre == nil {
		pre = SimplePreTokenizer()
	}
	minSize := 256 + len(opts.SpecialTokens)
	if vocabSize < minSize {
		return nil, &InvalidVocabSizeError{Requested: vocabSize, Minimum: minSize}
	}

	chunks := make([]Tokens, 0, 1024)
	for _, chunk := range pre.Split(corpus) {
		data := opts.ByteShuffle.Apply([]byte(chunk))
		ids := make(Tokens, len(data))
		for i, b := range data {
			ids[i] = Token(b)
		}
		chunks = append(chunks, ids)
	}

	target := vocabSize - minSize
	tracker := newPairTracker(chunks)
	pairs := make([]TokenPair, 0, target)
	for len(pairs) < target {
		if ctx.Err() != nil {
			break
		}
		pair, count := tracker.best()
		if count < 2 {
			break
		}
		result := Token(256 + len(pairs))
		tracker.merge(pair, result)
		pairs = append(pairs, pair)
		if opts.LogEvery > 0 && len(pairs)%opts.LogEvery == 0 {
			log.Printf("byte_bpe: merge %s/%s: (%d, %d) -> %d, frequency %s",
				humanize.Comma(int64(len(pairs))),
				humanize.Comma(int64(target)),
				pair.Left, pair.Right, result,
				humanize.Comma(int64(count)))
		}
	}

	vocab, err := NewVocabulary(pairs)
	if err != nil {
		return nil, err
	}
	specials := make([]SpecialToken, len(opts.SpecialTokens))
	for i, text := range opts.SpecialTokens {
		specials[i] = SpecialToken{Text: text, ID: Token(vocab.Size() + i)}
	}
	registry, err := NewSpecialTokenRegistry(specials)
	if err != nil {
		return nil, err
	}
	return NewTokenizer(vocab, pre, registry, opts.ByteShuffle)
}

// pairTracker maintains incremental pair counts over the training
// chunks, so each merge touches only the chunks that contain the
// merged pair instead of rescanning the whole corpus.
type pairTracker struct {
	chunks []Tokens
	counts map[TokenPair]int
	// where maps a pair to chunk indices that held it at some point.
	// Entries go stale when a chunk loses the pair; merge skips those.
	where map[TokenPair]map[int]struct{}
}

func newPairTracker(chunks []Tokens) *pairTracker {
	t := &pairTracker{
		chunks: chunks,
		counts: make(map[TokenPair]int),
		where:  make(map[TokenPair]map[int]struct{}),
	}
	for idx, seq := range chunks {
		for i := 0; i+1 < len(seq); i++ {
			t.add(TokenPair{Left: seq[i], Right: seq[i+1]}, idx)
		}
	}
	return t
}

func (t *pairTracker) add(pair TokenPair, chunk int) {
	t.counts[pair]++
	set := t.where[pair]
	if set == nil {
		set = make(map[int]struct{})
		t.where[pair] = set
	}
	set[chunk] = struct{}{}
}

func (t *pairTracker) remove(pair TokenPair) {
	t.counts[pair]--
	if t.counts[pair] <= 0 {
		delete(t.counts, pair)
	}
}

// best returns the most frequent pair. Ties break on the earliest
// first occurrence in corpus scan order, which keeps training
// deterministic and reproduces reference training runs; see DESIGN.md
// for why lexicographic tie-breaking is not used.
func (t *pairTracker) best() (TokenPair, int) {
	max := 0
	var single TokenPair
	for pair, count := range t.counts {
		if count > max {
			max = count
			single = pair
		}
	}
	if max == 0 {
		return TokenPair{}, 0
	}
	candidates := make(map[TokenPair]bool)
	for pair, count := range t.counts {
		if count == max {
			candidates[pair] = true
		}
	}
	if len(candidates) == 1 {
		return single, max
	}
	for _, seq := range t.chunks {
		for i := 0; i+1 < len(seq); i++ {
			pair := TokenPair{Left: seq[i], Right: seq[i+1]}
			if candidates[pair] {
				return pair, max
			}
		}
	}
	return single, max
}

// merge replaces pair with result in every chunk that contains it,
// updating the counts by removing each touched chunk's old pairs and
// adding its new ones.
func (t *pairTracker) merge(pair TokenPair, result Token) {
	for idx := range t.where[pair] {
		seq := t.chunks[idx]
		if !containsPair(seq, pair) {
			continue
		}
		for i := 0; i+1 < len(seq); i++ {
			t.remove(TokenPair{Left: seq[i], Right: seq[i+1]})
		}
		merged := mergePair(seq, pair, result)
		t.chunks[idx] = merged
		for i := 0; i+1 < len(merged); i++ {
			t.add(TokenPair{Left: merged[i], Right: merged[i+1]}, idx)
		}
	}
	delete(t.where, pair)
}

func containsPair(seq Tokens, pair TokenPair) bool {
	for i := 0; i+1 < len(seq); i++ {
		if seq[i] == pair.Left && seq[i+1] == pair.Right {
			return true
		}
	}
	return false
}
