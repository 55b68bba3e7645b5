package byte_bpe

import "fmt"

// SpecialTokenError reports a registered special token found in text
// under an encoding policy that forbids it.
type SpecialTokenError struct {
	Token string
}

func (e *SpecialTokenError) Error() string {
	return fmt.Sprintf(
		"byte_bpe: special token %q present in text but not allowed by policy",
		e.Token)
}

// UnknownTokenError reports a decode of an id with no vocabulary entry.
type UnknownTokenError struct {
	ID Token
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("byte_bpe: unknown token id %d", e.ID)
}

// MalformedModelError reports a structural, version or range violation
// in a model file. Line is 1-based; 0 means the whole file.
type MalformedModelError struct {
	Path string
	Line int
	Msg  string
}

func (e *MalformedModelError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("byte_bpe: malformed model %s, line %d: %s",
			e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("byte_bpe: malformed model %s: %s", e.Path, e.Msg)
}

// InvalidVocabSizeError reports a training target below the 256 byte
// ids plus the requested special tokens.
type InvalidVocabSizeError struct {
	Requested int
	Minimum   int
}

func (e *InvalidVocabSizeError) Error() string {
	return fmt.Sprintf(
		"byte_bpe: target vocab size %d below minimum %d (256 byte ids + special tokens)",
		e.Requested, e.Minimum)
}
