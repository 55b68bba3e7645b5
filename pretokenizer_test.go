package byte_bpe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type SplitTest struct {
	Input    string
	Expected []string
}

var SimpleSplitTests = []SplitTest{
	{"we'll go jump in a lake.",
		[]string{"we", "'ll", " go", " jump", " in", " a", " lake", "."}},
	{"multiple  encoded spaces.",
		[]string{"multiple", "  ", "encoded", " spaces", "."}},
	{"hello world\nsee ya",
		[]string{"hello", " world", "\n", "see", " ya"}},
	{"I have 1234 apples",
		[]string{"I", " have", " 1234", " apples"}},
	{"what?!  no...",
		[]string{"what", "?!", "  ", "no", "..."}},
}

var StrictSplitTests = []SplitTest{
	{"12345", []string{"123", "45"}},
	{"a  b", []string{"a", " ", " b"}},
	{"Hello   world", []string{"Hello", "  ", " world"}},
	{"it's", []string{"it", "'s"}},
	{"IT'S", []string{"IT", "'S"}},
	{"a\nb", []string{"a", "\n", "b"}},
	{" b", []string{" b"}},
	{"x 12", []string{"x", " ", "12"}},
}

func TestSimpleSplit(t *testing.T) {
	pre := SimplePreTokenizer()
	for _, test := range SimpleSplitTests {
		assert.Equal(t, test.Expected, pre.Split(test.Input), test.Input)
	}
}

func TestStrictSplit(t *testing.T) {
	pre := StrictPreTokenizer()
	for _, test := range StrictSplitTests {
		assert.Equal(t, test.Expected, pre.Split(test.Input), test.Input)
	}
}

func TestSplitContentPreservation(t *testing.T) {
	inputs := []string{
		"héllo wörld 🙂🙂 123",
		"tabs\tand\r\nwindows line endings\r\n",
		"  leading and trailing  ",
		"数字123と記号!?",
	}
	splitters := []*PreTokenizer{SimplePreTokenizer(), StrictPreTokenizer()}
	for _, pre := range splitters {
		for _, input := range inputs {
			chunks := pre.Split(input)
			assert.Equal(t, input, strings.Join(chunks, ""), pre.Spec())
		}
	}
}

func TestCustomPatternGapFilling(t *testing.T) {
	pre, err := NewPreTokenizer(`\p{L}+`)
	assert.NoError(t, err)
	chunks := pre.Split("abc123def!")
	assert.Equal(t, []string{"abc", "123", "def", "!"}, chunks)
	assert.Equal(t, "abc123def!", strings.Join(chunks, ""))
}

func TestPreTokenizerSpec(t *testing.T) {
	assert.Equal(t, "simple", SimplePreTokenizer().Spec())
	assert.Equal(t, "strict", StrictPreTokenizer().Spec())

	var none *PreTokenizer
	assert.Equal(t, "none", none.Spec())

	custom, err := PreTokenizerFor(`\p{L}+`)
	assert.NoError(t, err)
	assert.Equal(t, `\p{L}+`, custom.Spec())

	resolved, err := PreTokenizerFor("none")
	assert.NoError(t, err)
	assert.Nil(t, resolved)

	_, err = NewPreTokenizer(`(unbalanced`)
	assert.Error(t, err)
}

func TestNilPreTokenizer(t *testing.T) {
	var none *PreTokenizer
	assert.Equal(t, []string{"all one chunk"}, none.Split("all one chunk"))
	assert.Nil(t, none.Split(""))
	assert.Nil(t, SimplePreTokenizer().Split(""))
}
