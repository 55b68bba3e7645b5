//go:build wasip1 || js

package byte_bpe

import "errors"

func (t *Tokenizer) TrimIncompleteSentence(tokens Tokens) (Tokens, error) {
	return nil, errors.New("TrimIncompleteSentence is not implemented")
}

func (t *Tokenizer) TrimSentences(tokens Tokens, direction TrimDirection,
	limit uint) (Tokens, error) {
	return nil, errors.New("TrimSentences is not implemented")
}
