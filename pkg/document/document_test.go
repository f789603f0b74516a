package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreseekdev/polyphony/pkg/ot"
)

func TestDoc_AppendFirstOp(t *testing.T) {
	doc := New(0)
	op := ot.NewOp().Insert("hello")

	require.NoError(t, doc.Append(op))
	assert.Equal(t, "hello", doc.Text())
	assert.Equal(t, 5, doc.Size())
	assert.True(t, op.Parent.IsZero())
	assert.False(t, op.Hash.IsZero())
}

func TestDoc_AppendChainsParentAndHash(t *testing.T) {
	doc := New(0)
	op1 := ot.NewOp().Insert("hello")
	require.NoError(t, doc.Append(op1))

	op2 := ot.NewOp().Skip(5).Insert(" world")
	require.NoError(t, doc.Append(op2))

	assert.Equal(t, op1.Hash, op2.Parent)
	assert.Equal(t, "hello world", doc.Text())
	assert.Equal(t, op2.Hash, doc.Head())
}

func TestDoc_AppendEnforcesMaxSize(t *testing.T) {
	doc := New(5)
	require.NoError(t, doc.Append(ot.NewOp().Insert("hello")))

	err := doc.Append(ot.NewOp().Skip(5).Insert("!"))
	assert.Equal(t, ot.ErrMaxSize, err)
	assert.Equal(t, "hello", doc.Text())
}

func TestDoc_ComposeAfterFromBeginning(t *testing.T) {
	doc := New(0)
	require.NoError(t, doc.Append(ot.NewOp().Insert("ab")))
	require.NoError(t, doc.Append(ot.NewOp().Skip(2).Insert("cd")))

	composed, err := doc.ComposeAfter(ot.Hash{})
	require.NoError(t, err)
	assert.Equal(t, "abcd", composed.Snapshot())
}

func TestDoc_ComposeAfterSinceHash(t *testing.T) {
	doc := New(0)
	op1 := ot.NewOp().Insert("ab")
	require.NoError(t, doc.Append(op1))
	require.NoError(t, doc.Append(ot.NewOp().Skip(2).Insert("cd")))
	require.NoError(t, doc.Append(ot.NewOp().Skip(4).Insert("ef")))

	composed, err := doc.ComposeAfter(op1.Hash)
	require.NoError(t, err)
	assert.Equal(t, "cdef", composed.Snapshot())
}

func TestDoc_ComposeAfterUnknownHashFails(t *testing.T) {
	doc := New(0)
	require.NoError(t, doc.Append(ot.NewOp().Insert("ab")))

	_, err := doc.ComposeAfter(ot.Hash{1, 2, 3})
	assert.Equal(t, ot.ErrXformFailed, err)
}

func TestDoc_LastAndHistory(t *testing.T) {
	doc := New(0)
	assert.Nil(t, doc.Last())

	op1 := ot.NewOp().Insert("x")
	require.NoError(t, doc.Append(op1))
	op2 := ot.NewOp().Skip(1).Insert("y")
	require.NoError(t, doc.Append(op2))

	assert.Same(t, op2, doc.Last())
	assert.Equal(t, []*ot.Op{op1, op2}, doc.History())
}
