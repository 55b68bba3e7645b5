package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/edsrzf/mmap-go"
	"github.com/wbrown/byte_bpe"
	"github.com/yargevad/filepathx"
)

// GlobTexts recursively finds all `.txt` files under dirPath, sorted
// by path for reproducible corpus ordering.
func GlobTexts(dirPath string) ([]string, error) {
	textPaths, err := filepathx.Glob(dirPath + "/**/*.txt")
	if err != nil {
		return nil, err
	}
	if len(textPaths) == 0 {
		return nil, errors.New(fmt.Sprintf(
			"%s does not contain any .txt files", dirPath))
	}
	sort.Strings(textPaths)
	return textPaths, nil
}

// readCorpus concatenates the given files through mmap.
func readCorpus(paths []string) (string, error) {
	var corpus strings.Builder
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return "", err
		}
		fileMmap, mmapErr := mmap.Map(file, mmap.RDONLY, 0)
		if mmapErr != nil {
			file.Close()
			return "", mmapErr
		}
		corpus.Write(fileMmap)
		fileMmap.Unmap()
		file.Close()
		log.Printf("read %s (%s)", path, humanize.Bytes(uint64(len(fileMmap))))
	}
	return corpus.String(), nil
}

// readShuffle parses a byte shuffle table: 256 whitespace-separated
// integers.
func readShuffle(path string) (*byte_bpe.ByteShuffle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(string(data))
	perm := make([]byte, 0, 256)
	for _, field := range fields {
		value, err := strconv.Atoi(field)
		if err != nil || value < 0 || value > 255 {
			return nil, fmt.Errorf("shuffle entry %q out of range", field)
		}
		perm = append(perm, byte(value))
	}
	return byte_bpe.NewByteShuffle(perm)
}

func main() {
	inputOpt := flag.String("input", "",
		"input corpus: a text file, or a directory of .txt files")
	outputOpt := flag.String("output", "tokenizer",
		"output path prefix for the .model and .vocab files")
	vocabSizeOpt := flag.Int("vocab_size", 32768,
		"target vocabulary size (256 byte ids + merges + specials)")
	patternOpt := flag.String("pattern", "simple",
		"split pattern: simple, strict, none, or a literal regexp")
	specialsOpt := flag.String("specials", "",
		"comma-separated special token strings")
	shuffleOpt := flag.String("shuffle", "",
		"optional file with a 256-entry byte shuffle permutation")
	deadlineOpt := flag.Duration("deadline", 0,
		"optional training deadline; a partial vocabulary is still saved")
	logEveryOpt := flag.Int("log_every", 500,
		"log progress every N merges")
	flag.Parse()

	if *inputOpt == "" {
		flag.Usage()
		log.Fatal("Must provide -input")
	}

	stat, err := os.Stat(*inputOpt)
	if err != nil {
		log.Fatal(err)
	}
	paths := []string{*inputOpt}
	if stat.IsDir() {
		if paths, err = GlobTexts(*inputOpt); err != nil {
			log.Fatal(err)
		}
	}
	corpus, err := readCorpus(paths)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("corpus: %d files, %s",
		len(paths), humanize.Bytes(uint64(len(corpus))))

	pre, err := byte_bpe.PreTokenizerFor(*patternOpt)
	if err != nil {
		log.Fatal(err)
	}
	opts := byte_bpe.TrainerOptions{
		PreTokenizer: pre,
		LogEvery:     *logEveryOpt,
	}
	if *specialsOpt != "" {
		opts.SpecialTokens = strings.Split(*specialsOpt, ",")
	}
	if *shuffleOpt != "" {
		if opts.ByteShuffle, err = readShuffle(*shuffleOpt); err != nil {
			log.Fatal(err)
		}
	}

	ctx := context.Background()
	if *deadlineOpt > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *deadlineOpt)
		defer cancel()
	}

	start := time.Now()
	tokenizer, err := byte_bpe.Train(ctx, corpus, *vocabSizeOpt, &opts)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("trained %s ids in %s",
		humanize.Comma(int64(tokenizer.VocabSize())),
		time.Since(start).Round(time.Millisecond))

	if err := tokenizer.Save(*outputOpt); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s.model and %s.vocab", *outputOpt, *outputOpt)
}
