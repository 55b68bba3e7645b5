package byte_bpe

import "fmt"

// ByteShuffle is a fixed permutation of the 256 byte values, applied to
// ordinary chunk bytes before merge encoding and inverted after
// decoding. Special token bytes bypass it. The table is configuration
// data supplied by whichever external vocabulary is being targeted; it
// is never learned. A nil *ByteShuffle is the identity.
type ByteShuffle struct {
	perm [256]byte
	inv  [256]byte
}

// NewByteShuffle validates that perm is a bijection over 0..255 and
// builds its inverse.
func NewByteShuffle(perm []byte) (*ByteShuffle, error) {
	if len(perm) != 256 {
		return nil, fmt.Errorf(
			"byte_bpe: byte shuffle needs 256 entries, got %d", len(perm))
	}
	shuffle := &ByteShuffle{}
	var seen [256]bool
	for i, mapped := range perm {
		if seen[mapped] {
			return nil, fmt.Errorf(
				"byte_bpe: byte shuffle is not a permutation: value %d repeats",
				mapped)
		}
		seen[mapped] = true
		shuffle.perm[i] = mapped
		shuffle.inv[mapped] = byte(i)
	}
	return shuffle, nil
}

// Apply maps each byte through the permutation, returning a new slice.
func (s *ByteShuffle) Apply(data []byte) []byte {
	if s == nil {
		return data
	}
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = s.perm[b]
	}
	return out
}

// Invert maps each byte back through the inverse permutation.
func (s *ByteShuffle) Invert(data []byte) []byte {
	if s == nil {
		return data
	}
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = s.inv[b]
	}
	return out
}

// Permutation returns a copy of the forward table, for serialization.
func (s *ByteShuffle) Permutation() []byte {
	if s == nil {
		return nil
	}
	out := make([]byte, 256)
	copy(out, s.perm[:])
	return out
}
