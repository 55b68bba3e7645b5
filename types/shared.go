package types

// Token is a single vocabulary id. Byte ids occupy 0-255, merge ids
// follow sequentially from 256, and special token ids come after all
// merge ids.
type Token uint32

type Tokens []Token

// TokenPair is an adjacent pair of ids inside one chunk sequence.
type TokenPair struct {
	Left  Token
	Right Token
}
