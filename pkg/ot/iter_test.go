package ot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIter_FirstCallOnlyInitializes(t *testing.T) {
	op := NewOp().Skip(3).Insert("ab")
	it := NewIter(op)

	assert.True(t, it.Next())
	assert.Equal(t, 0, it.Offset())
	assert.Equal(t, Skip{Count: 3}, it.Component())
}

func TestIter_SubsequentCallsAdvance(t *testing.T) {
	op := NewOp().Skip(3).Insert("ab")
	it := NewIter(op)

	it.Next() // init, consumes nothing
	assert.True(t, it.Skip(2))
	assert.Equal(t, 2, it.Offset())
	assert.Equal(t, 1, it.Remaining())

	assert.True(t, it.Skip(1))
	// crossed into the insert component
	assert.Equal(t, Insert{Text: "ab"}, it.Component())
	assert.Equal(t, 0, it.Offset())
}

func TestIter_DoneAfterLastComponent(t *testing.T) {
	op := NewOp().Skip(2)
	it := NewIter(op)

	it.Next()
	assert.False(t, it.Skip(2))
	assert.True(t, it.Done())
}

func TestIter_SkipPastEndFails(t *testing.T) {
	op := NewOp().Skip(2)
	it := NewIter(op)

	it.Next()
	assert.False(t, it.Skip(5))
}

func TestIter_EmptyOp(t *testing.T) {
	it := NewIter(NewOp())
	assert.False(t, it.Next())
	assert.True(t, it.Done())
}
