//go:build wasip1

package main

import (
	"strings"

	"github.com/extism/go-pdk"
	msgpack "github.com/vmihailenco/msgpack/v5"
	"github.com/wbrown/byte_bpe"
	"github.com/wbrown/byte_bpe/types"
)

var tokenizer *byte_bpe.Tokenizer

type TokenizeResult = byte_bpe.Tokens

//go:wasmexport load_model
func LoadModel() int32 {
	model := pdk.InputString()
	loaded, err := byte_bpe.ReadModel(strings.NewReader(model))
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	tokenizer = loaded
	return 0
}

//go:wasmexport tokenize
func Tokenize() int32 {
	if tokenizer == nil {
		return 1
	}
	text := pdk.InputString()
	encoded, err := tokenizer.Encode(text, byte_bpe.AllowedAll)
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	tokens := TokenizeResult(encoded)
	bytes, err := msgpack.Marshal(&tokens)
	if err != nil {
		return 1
	}
	pdk.Output(bytes)
	return 0
}

//go:wasmexport tokenize_and_back
func TokenizeAndBack() int32 {
	if tokenizer == nil {
		return 1
	}
	text := pdk.InputString()
	encoded, err := tokenizer.Encode(text, byte_bpe.AllowedAll)
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	textAgain, err := tokenizer.Decode(encoded)
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	pdk.OutputString(textAgain)
	return 0
}

//go:wasmexport decode_array
func DecodeArray() int32 {
	if tokenizer == nil {
		return 1
	}
	bytes := pdk.Input()
	var tokens TokenizeResult
	err := msgpack.Unmarshal(bytes, &tokens)
	if err != nil {
		return 1
	}
	text, err := tokenizer.Decode(tokens)
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	pdk.OutputString(text)
	return 0
}

//go:wasmexport decode
func Decode() int32 {
	if tokenizer == nil {
		return 1
	}
	bytes := pdk.Input()
	tokens := types.TokensFromBin(&bytes)
	out, err := tokenizer.Decode(*tokens)
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	pdk.OutputString(out)
	return 0
}

func main() {}
