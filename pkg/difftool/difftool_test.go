package difftool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreseekdev/polyphony/pkg/ot"
)

func apply(base string, op *ot.Op) string {
	it := ot.NewIter(op)
	it.Skip(0)
	runes := []rune(base)
	pos := 0
	var out []rune
	for !it.Done() {
		switch c := it.Component().(type) {
		case ot.Skip:
			n := it.Remaining()
			out = append(out, runes[pos:pos+n]...)
			pos += n
			it.Skip(n)
		case ot.Insert:
			off := it.Offset()
			out = append(out, []rune(c.Text)[off:]...)
			it.Skip(it.Remaining())
		case ot.Delete:
			n := it.Remaining()
			pos += n
			it.Skip(n)
		}
	}
	return string(out)
}

func TestFromDiff_PureAppend(t *testing.T) {
	op := FromDiff("hello", "hello world")
	assert.Equal(t, "hello world", apply("hello", op))
}

func TestFromDiff_PurePrepend(t *testing.T) {
	op := FromDiff("world", "hello world")
	assert.Equal(t, "hello world", apply("world", op))
}

func TestFromDiff_MidEdit(t *testing.T) {
	op := FromDiff("the quick fox", "the slow fox")
	assert.Equal(t, "the slow fox", apply("the quick fox", op))
}

func TestFromDiff_NoChange(t *testing.T) {
	op := FromDiff("same", "same")
	assert.Equal(t, "same", apply("same", op))
}

func TestFromDiff_FullReplace(t *testing.T) {
	op := FromDiff("abc", "xyz")
	assert.Equal(t, "xyz", apply("abc", op))
}

func TestPreview_ReturnsNonEmptyForChanges(t *testing.T) {
	require.NotEmpty(t, Preview("a", "b"))
}
