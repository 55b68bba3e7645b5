package byte_bpe

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// modelVersion is the first line of every model file. Readers reject
// anything else, so the format can evolve behind the marker.
const modelVersion = "bytebpe v1"

// Save writes <prefix>.model, the machine-readable blob Load can
// reconstruct the tokenizer from, and <prefix>.vocab, a human-readable
// rendering of the vocabulary that is never read back.
func (t *Tokenizer) Save(prefix string) error {
	modelFile, err := os.Create(prefix + ".model")
	if err != nil {
		return err
	}
	defer modelFile.Close()
	if err = t.WriteModel(modelFile); err != nil {
		return err
	}
	vocabFile, err := os.Create(prefix + ".vocab")
	if err != nil {
		return err
	}
	defer vocabFile.Close()
	return t.WriteVocab(vocabFile)
}

// WriteModel emits the model blob: version marker, split pattern,
// special tokens, byte shuffle table, and the ordered merge pairs.
// Result ids are omitted; they are re-derived sequentially on load,
// which keeps the blob compact and round-trips exact.
func (t *Tokenizer) WriteModel(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, modelVersion)
	fmt.Fprintln(bw, t.pre.Spec())

	specials := t.specials.Tokens()
	fmt.Fprintln(bw, len(specials))
	for _, tok := range specials {
		fmt.Fprintf(bw, "%s %d\n", tok.Text, tok.ID)
	}

	if perm := t.shuffle.Permutation(); perm == nil {
		fmt.Fprintln(bw, "identity")
	} else {
		parts := make([]string, len(perm))
		for i, b := range perm {
			parts[i] = strconv.Itoa(int(b))
		}
		fmt.Fprintln(bw, strings.Join(parts, " "))
	}

	merges := t.vocab.Merges()
	fmt.Fprintln(bw, len(merges))
	for _, rule := range merges {
		fmt.Fprintf(bw, "%d %d\n", rule.Pair.Left, rule.Pair.Right)
	}
	return bw.Flush()
}

// WriteVocab emits the write-only inspection rendering: every id with
// a display form, merge ids also showing their operand expansions.
func (t *Tokenizer) WriteVocab(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for id := Token(0); int(id) < 256; id++ {
		expansion, _ := t.vocab.Expansion(id)
		fmt.Fprintf(bw, "%d\t%s\n", id, tokenDisplay(expansion))
	}
	for _, rule := range t.vocab.Merges() {
		left, _ := t.vocab.Expansion(rule.Pair.Left)
		right, _ := t.vocab.Expansion(rule.Pair.Right)
		merged, _ := t.vocab.Expansion(rule.Result)
		fmt.Fprintf(bw, "%d\t%s + %s -> %s\n", rule.Result,
			tokenDisplay(left), tokenDisplay(right), tokenDisplay(merged))
	}
	for _, tok := range t.specials.Tokens() {
		fmt.Fprintf(bw, "%d\t%s (special)\n", tok.ID, strconv.Quote(tok.Text))
	}
	return bw.Flush()
}

// Load reads a model file and reconstructs a tokenizer whose encode
// and decode behavior is bit-identical to the one that wrote it.
func Load(path string) (*Tokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readModel(f, path)
}

// ReadModel is Load over an arbitrary reader.
func ReadModel(r io.Reader) (*Tokenizer, error) {
	return readModel(r, "model")
}

type modelReader struct {
	scanner *bufio.Scanner
	path    string
	line    int
}

func (mr *modelReader) next(field string) (string, error) {
	if !mr.scanner.Scan() {
		if err := mr.scanner.Err(); err != nil {
			return "", err
		}
		return "", &MalformedModelError{
			Path: mr.path, Line: mr.line + 1,
			Msg: "unexpected end of file reading " + field,
		}
	}
	mr.line++
	return mr.scanner.Text(), nil
}

func (mr *modelReader) fail(msg string) error {
	return &MalformedModelError{Path: mr.path, Line: mr.line, Msg: msg}
}

func readModel(r io.Reader, path string) (*Tokenizer, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	mr := &modelReader{scanner: scanner, path: path}

	version, err := mr.next("version marker")
	if err != nil {
		return nil, err
	}
	if version != modelVersion {
		return nil, mr.fail(fmt.Sprintf(
			"version marker %q, want %q", version, modelVersion))
	}

	patternSpec, err := mr.next("split pattern")
	if err != nil {
		return nil, err
	}
	pre, err := PreTokenizerFor(patternSpec)
	if err != nil {
		return nil, mr.fail(err.Error())
	}

	countLine, err := mr.next("special token count")
	if err != nil {
		return nil, err
	}
	specialCount, err := strconv.Atoi(countLine)
	if err != nil || specialCount < 0 {
		return nil, mr.fail("special token count " + strconv.Quote(countLine))
	}
	specials := make([]SpecialToken, 0, specialCount)
	for i := 0; i < specialCount; i++ {
		line, err := mr.next("special token")
		if err != nil {
			return nil, err
		}
		cut := strings.LastIndexByte(line, ' ')
		if cut <= 0 {
			return nil, mr.fail("special token entry " + strconv.Quote(line))
		}
		id, err := strconv.ParseUint(line[cut+1:], 10, 32)
		if err != nil {
			return nil, mr.fail("special token id " + strconv.Quote(line[cut+1:]))
		}
		specials = append(specials, SpecialToken{
			Text: line[:cut], ID: Token(id)})
	}

	shuffleLine, err := mr.next("byte shuffle")
	if err != nil {
		return nil, err
	}
	var shuffle *ByteShuffle
	if shuffleLine != "identity" {
		fields := strings.Fields(shuffleLine)
		perm := make([]byte, 0, 256)
		for _, field := range fields {
			value, err := strconv.Atoi(field)
			if err != nil || value < 0 || value > 255 {
				return nil, mr.fail("byte shuffle entry " + strconv.Quote(field))
			}
			perm = append(perm, byte(value))
		}
		if shuffle, err = NewByteShuffle(perm); err != nil {
			return nil, mr.fail(err.Error())
		}
	}

	countLine, err = mr.next("merge count")
	if err != nil {
		return nil, err
	}
	mergeCount, err := strconv.Atoi(countLine)
	if err != nil || mergeCount < 0 {
		return nil, mr.fail("merge count " + strconv.Quote(countLine))
	}
	pairs := make([]TokenPair, 0, mergeCount)
	for i := 0; i < mergeCount; i++ {
		line, err := mr.next("merge pair")
		if err != nil {
			return nil, err
		}
		var left, right uint32
		if _, err := fmt.Sscanf(line, "%d %d", &left, &right); err != nil {
			return nil, mr.fail("merge pair " + strconv.Quote(line))
		}
		pairs = append(pairs, TokenPair{Left: Token(left), Right: Token(right)})
	}

	vocab, err := NewVocabulary(pairs)
	if err != nil {
		return nil, mr.fail(err.Error())
	}
	registry, err := NewSpecialTokenRegistry(specials)
	if err != nil {
		return nil, mr.fail(err.Error())
	}
	tokenizer, err := NewTokenizer(vocab, pre, registry, shuffle)
	if err != nil {
		return nil, mr.fail(err.Error())
	}
	return tokenizer, nil
}
