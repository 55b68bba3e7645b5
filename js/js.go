package main

//go:generate gopherjs build --minify

import (
	"log"
	"strings"

	"github.com/gopherjs/gopherjs/js"
	"github.com/wbrown/byte_bpe"
)

var tokenizer *byte_bpe.Tokenizer

func LoadModel(model string) bool {
	loaded, err := byte_bpe.ReadModel(strings.NewReader(model))
	if err != nil {
		log.Printf("byte_bpe: %v", err)
		return false
	}
	tokenizer = loaded
	return true
}

func Tokenize(text string) byte_bpe.Tokens {
	if tokenizer == nil {
		return nil
	}
	encoded, err := tokenizer.Encode(text, byte_bpe.AllowedAll)
	if err != nil {
		log.Printf("byte_bpe: %v", err)
		return nil
	}
	return encoded
}

func Decode(ids []uint32) string {
	if tokenizer == nil {
		return ""
	}
	tokens := make(byte_bpe.Tokens, len(ids))
	for i, id := range ids {
		tokens[i] = byte_bpe.Token(id)
	}
	decoded, err := tokenizer.Decode(tokens)
	if err != nil {
		log.Printf("byte_bpe: %v", err)
		return ""
	}
	return decoded
}

func init() {
	js.Module.Get("exports").Set("loadModel", LoadModel)
	js.Module.Get("exports").Set("tokenize", Tokenize)
	js.Module.Get("exports").Set("decode", Decode)
}

func main() {

}
