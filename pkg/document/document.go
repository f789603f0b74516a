// Package document maintains the append-only, hash-chained history of
// operations that make up a single collaborative document.
package document

import (
	"sync"

	"github.com/coreseekdev/polyphony/pkg/ot"
)

// Doc is a linear history of operations, each chained to the previous by
// its resulting content hash. Appending an operation composes it into a
// running snapshot of the whole document; that running snapshot's hash
// becomes the newly appended operation's Hash.
type Doc struct {
	mu       sync.RWMutex
	history  []*ot.Op
	composed *ot.Op
	size     int
	maxSize  int
}

// New returns an empty document. A maxSize of 0 means unbounded.
func New(maxSize int) *Doc {
	return &Doc{maxSize: maxSize}
}

// Append folds op into the document. It stamps op.Parent to the hash of the
// current head (or the zero hash for the first operation) and op.Hash to
// the resulting document snapshot's hash, then adds op to the history.
//
// Append fails with ot.ErrMaxSize if applying op would grow the document
// past its configured maximum, and with ot.ErrAppendFailed if op does not
// compose against the current document state.
func (d *Doc) Append(op *ot.Op) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.maxSize > 0 && d.size+op.Size() > d.maxSize {
		return ot.ErrMaxSize
	}

	var parent ot.Hash
	if n := len(d.history); n > 0 {
		parent = d.history[n-1].Hash
	}
	op.Parent = parent

	if d.composed == nil {
		d.composed = op.Dup()
	} else {
		composed, err := ot.Compose(d.composed, op)
		if err != nil {
			return ot.ErrAppendFailed
		}
		d.composed = composed
	}
	d.composed.StampHash()
	op.Hash = d.composed.Hash

	d.size += op.Size()
	d.history = append(d.history, op)
	return nil
}

// ComposeAfter folds every operation appended after the one whose resulting
// hash is parent into a single operation. A zero parent means "from the
// beginning of history." It fails with ot.ErrXformFailed if no operation in
// the history has that hash.
func (d *Doc) ComposeAfter(parent ot.Hash) (*ot.Op, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	start := -1
	if parent.IsZero() {
		start = 0
	} else {
		for i := len(d.history) - 1; i >= 0; i-- {
			if d.history[i].Hash == parent {
				start = i + 1
				break
			}
		}
		if start == -1 {
			return nil, ot.ErrXformFailed
		}
	}

	if start >= len(d.history) {
		return ot.NewOp(), nil
	}

	result := d.history[start].Dup()
	for i := start + 1; i < len(d.history); i++ {
		composed, err := ot.Compose(result, d.history[i])
		if err != nil {
			return nil, ot.ErrAppendFailed
		}
		result = composed
	}
	return result, nil
}

// Last returns the most recently appended operation, or nil if the
// document has no history yet.
func (d *Doc) Last() *ot.Op {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.history) == 0 {
		return nil
	}
	return d.history[len(d.history)-1]
}

// Head returns the hash of the most recently appended operation, or the
// zero hash if the document is empty.
func (d *Doc) Head() ot.Hash {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.history) == 0 {
		return ot.Hash{}
	}
	return d.history[len(d.history)-1].Hash
}

// Text returns the current document content.
func (d *Doc) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.composed == nil {
		return ""
	}
	return d.composed.Snapshot()
}

// Size returns the document's current length in code points.
func (d *Doc) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.size
}

// History returns a copy of the appended operations in order.
func (d *Doc) History() []*ot.Op {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*ot.Op, len(d.history))
	copy(out, d.history)
	return out
}
