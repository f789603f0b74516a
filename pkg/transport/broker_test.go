package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreseekdev/polyphony/pkg/ot"
	"github.com/coreseekdev/polyphony/pkg/wire"
)

type fakeConn struct {
	id  string
	got [][]byte
}

func (c *fakeConn) ID() string { return c.id }
func (c *fakeConn) Send(data []byte) error {
	c.got = append(c.got, data)
	return nil
}

func TestBroker_ReceiveAppendsAndBroadcasts(t *testing.T) {
	b := NewBroker()
	a := &fakeConn{id: "a"}
	other := &fakeConn{id: "b"}
	b.Join("doc1", a)
	b.Join("doc1", other)

	op := ot.NewOp()
	op.Insert("hi")
	data, err := wire.EncodeOp(op)
	require.NoError(t, err)

	require.NoError(t, b.Receive("doc1", data))
	assert.Equal(t, "hi", b.Snapshot("doc1"))
	assert.Len(t, a.got, 1)
	assert.Len(t, other.got, 1)
}

func TestBroker_UnknownDocReturnsError(t *testing.T) {
	b := NewBroker()
	err := b.Receive("nope", []byte(`{}`))
	assert.Equal(t, ErrUnknownDoc, err)
}

func TestBroker_DocumentsAreIndependent(t *testing.T) {
	b := NewBroker()
	conn1 := &fakeConn{id: "c1"}
	conn2 := &fakeConn{id: "c2"}
	b.Join("doc1", conn1)
	b.Join("doc2", conn2)

	op := ot.NewOp()
	op.Insert("only-doc1")
	data, err := wire.EncodeOp(op)
	require.NoError(t, err)

	require.NoError(t, b.Receive("doc1", data))
	assert.Equal(t, "only-doc1", b.Snapshot("doc1"))
	assert.Equal(t, "", b.Snapshot("doc2"))
	assert.Len(t, conn2.got, 0)
}

func TestBroker_LeaveStopsFurtherBroadcasts(t *testing.T) {
	b := NewBroker()
	conn := &fakeConn{id: "c1"}
	b.Join("doc1", conn)
	b.Leave("doc1", "c1")

	op := ot.NewOp()
	op.Insert("x")
	data, err := wire.EncodeOp(op)
	require.NoError(t, err)

	require.NoError(t, b.Receive("doc1", data))
	assert.Len(t, conn.got, 0)
}
