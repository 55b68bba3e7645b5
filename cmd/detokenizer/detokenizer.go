package main

import (
	"flag"
	"log"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/wbrown/byte_bpe"
	"github.com/wbrown/byte_bpe/types"
)

// Decodes a binary token dump back into text.

func main() {
	modelOpt := flag.String("model", "tokenizer.model",
		"path to the .model file to load")
	inputOpt := flag.String("input", "",
		"input file of little-endian binary tokens")
	outputOpt := flag.String("output", "detokenized.txt",
		"output file to write decoded text")
	uint32Opt := flag.Bool("uint32", false,
		"read 32-bit tokens instead of 16-bit")
	flag.Parse()

	if *inputOpt == "" {
		flag.Usage()
		log.Fatal("Must provide -input")
	}

	tokenizer, err := byte_bpe.Load(*modelOpt)
	if err != nil {
		log.Fatal(err)
	}

	inputFile, err := os.Open(*inputOpt)
	if err != nil {
		log.Fatal(err)
	}
	defer inputFile.Close()
	inputMmap, err := mmap.Map(inputFile, mmap.RDONLY, 0)
	if err != nil {
		log.Fatal(err)
	}
	defer inputMmap.Unmap()

	bin := []byte(inputMmap)
	var tokens *types.Tokens
	if *uint32Opt {
		tokens = types.TokensFromBin32(&bin)
	} else {
		tokens = types.TokensFromBin(&bin)
	}

	decoded, err := tokenizer.Decode(*tokens)
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(*outputOpt, []byte(decoded), 0644); err != nil {
		log.Fatal(err)
	}
	log.Printf("decoded %d tokens to %s", len(*tokens), *outputOpt)
}
