package ot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransform_ConcurrentInsertsAtSamePosition_Op1First(t *testing.T) {
	op1 := NewOp().Insert("abc")
	op2 := NewOp().Insert("xyz")

	op1Prime, op2Prime, err := Transform(op1, op2)
	require.NoError(t, err)

	// op1's insert keeps its position; op2 retains past it, then its own
	// insert lands after, and op1' retains past that in turn.
	assert.Equal(t, []Component{Insert{Text: "abc"}, Skip{Count: 3}}, op1Prime.Components)
	assert.Equal(t, []Component{Skip{Count: 3}, Insert{Text: "xyz"}}, op2Prime.Components)
}

func TestTransform_ConvergesOnSharedBase(t *testing.T) {
	base := "hello"
	op1 := NewOp().Insert("ABC").Skip(5)
	op2 := NewOp().Skip(5).Insert("xyz")

	op1Prime, op2Prime, err := Transform(op1, op2)
	require.NoError(t, err)

	left := apply(apply(base, op1), op2Prime)
	right := apply(apply(base, op2), op1Prime)
	assert.Equal(t, left, right)
}

func TestTransform_DeleteDeleteOverlap(t *testing.T) {
	base := "hello world"
	op1 := NewOp().Skip(6).Delete(5)
	op2 := NewOp().Skip(6).Delete(5)

	op1Prime, op2Prime, err := Transform(op1, op2)
	require.NoError(t, err)

	left := apply(apply(base, op1), op2Prime)
	right := apply(apply(base, op2), op1Prime)
	assert.Equal(t, left, right)
	assert.Equal(t, "hello ", left)
}

func TestTransform_DeleteVsInsertWithinDeletedRange(t *testing.T) {
	base := "hello world"
	op1 := NewOp().Skip(2).Delete(6).Skip(3)
	op2 := NewOp().Skip(5).Insert(",").Skip(6)

	op1Prime, op2Prime, err := Transform(op1, op2)
	require.NoError(t, err)

	left := apply(apply(base, op1), op2Prime)
	right := apply(apply(base, op2), op1Prime)
	assert.Equal(t, left, right)
}

func TestTransform_SetsCrossParent(t *testing.T) {
	op1 := NewOp().Insert("a")
	op1.Hash = Hash{1}
	op2 := NewOp().Insert("b")
	op2.Hash = Hash{2}

	op1Prime, op2Prime, err := Transform(op1, op2)
	require.NoError(t, err)
	assert.Equal(t, op2.Hash, op1Prime.Parent)
	assert.Equal(t, op1.Hash, op2Prime.Parent)
}

func TestTransform_RejectsStructuralComponents(t *testing.T) {
	op1 := NewOp().CloseElement()
	op2 := NewOp()

	_, _, err := Transform(op1, op2)
	assert.Equal(t, ErrXformFailed, err)
}

func TestTransform_ComplexInterleavingConverges(t *testing.T) {
	base := ""
	op1 := NewOp().Insert("ABCDEF")
	op2 := NewOp().Insert("abcdefghi")

	op1Prime, op2Prime, err := Transform(op1, op2)
	require.NoError(t, err)

	left := apply(apply(base, op1), op2Prime)
	right := apply(apply(base, op2), op1Prime)
	assert.Equal(t, left, right)
	assert.Equal(t, "ABCDEFabcdefghi", left)
}
