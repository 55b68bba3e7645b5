package main

/*
#include <stdint.h>
#include <stdlib.h>

typedef struct Tokens {
	uint32_t* tokens;
	size_t    len;
} Tokens;
*/
import "C"
import (
	"unsafe"

	"github.com/wbrown/byte_bpe"
)

var tokenizers map[string]*byte_bpe.Tokenizer

func init() {
	tokenizers = make(map[string]*byte_bpe.Tokenizer)
}

//export loadTokenizer
// loadTokenizer accepts a model file path as a C string, and if it is
// not yet in the global tokenizers map, loads a tokenizer from it.
func loadTokenizer(modelPath *C.char) bool {
	path := C.GoString(modelPath)
	if _, ok := tokenizers[path]; ok {
		return true
	}
	if tokenizer, err := byte_bpe.Load(path); err != nil {
		panic(err)
	} else {
		tokenizers[path] = tokenizer
		return true
	}
}

//export tokenize
// tokenize accepts a model path and text as C strings, and returns a
// C.Tokens that contains a malloc'ed array of uint32_t tokens along
// with the number of tokens.
func tokenize(modelPath *C.char, str *C.char) C.Tokens {
	path := C.GoString(modelPath)
	tokenizer, ok := tokenizers[path]
	if !ok {
		loadTokenizer(modelPath)
		tokenizer = tokenizers[path]
	}
	s := C.GoString(str)
	encoded, err := tokenizer.Encode(s, byte_bpe.AllowedAll)
	if err != nil {
		return C.Tokens{tokens: nil, len: 0}
	}
	bin, err := encoded.ToBinUint32()
	if err != nil {
		return C.Tokens{tokens: nil, len: 0}
	}
	tokensArr := C.CBytes(*bin)
	return C.Tokens{
		tokens: (*C.uint32_t)(tokensArr),
		len:    C.size_t(len(encoded)),
	}
}

//export decode
// decode accepts a model path and a C.Tokens struct, and returns a
// malloc'ed C.char* containing the decoded string.
func decode(modelPath *C.char, tokens *C.Tokens) *C.char {
	path := C.GoString(modelPath)
	tokenizer, ok := tokenizers[path]
	if !ok {
		loadTokenizer(modelPath)
		tokenizer = tokenizers[path]
	}
	ids := make(byte_bpe.Tokens, int(tokens.len))
	src := unsafe.Slice((*uint32)(unsafe.Pointer(tokens.tokens)),
		int(tokens.len))
	for i, id := range src {
		ids[i] = byte_bpe.Token(id)
	}
	decoded, err := tokenizer.Decode(ids)
	if err != nil {
		return C.CString("")
	}
	return C.CString(decoded)
}

// wrapLoadTokenizer is a wrapper around loadTokenizer that simulates a
// C call from golang; kept here as the test package is incompatible
// with CGo exports.
func wrapLoadTokenizer(modelPath string) bool {
	pathC := C.CString(modelPath)
	defer C.free(unsafe.Pointer(pathC))
	return loadTokenizer(pathC)
}

func main() {}
