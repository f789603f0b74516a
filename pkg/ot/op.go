package ot

import "github.com/coreseekdev/polyphony/pkg/hashutil"

// Op is a single operation: an ordered list of components produced by one
// client against one parent snapshot. ClientID identifies the author, Parent
// is the hash of the snapshot the op was composed against, and Hash is the
// hash of the snapshot that results from applying it.
type Op struct {
	ClientID   uint32
	Parent     Hash
	Hash       Hash
	Components []Component
}

// NewOp returns an empty operation ready for its builder methods to be
// called in sequence.
func NewOp() *Op {
	return &Op{}
}

// Skip appends a skip of count code points, merging into the trailing
// component if it is already a skip.
func (op *Op) Skip(count uint32) *Op {
	if count == 0 {
		return op
	}
	if n := len(op.Components); n > 0 {
		if s, ok := op.Components[n-1].(Skip); ok {
			op.Components[n-1] = Skip{Count: s.Count + count}
			return op
		}
	}
	op.Components = append(op.Components, Skip{Count: count})
	return op
}

// Insert appends an insertion of text, merging into the trailing component
// if it is already an insert.
func (op *Op) Insert(text string) *Op {
	if text == "" {
		return op
	}
	if n := len(op.Components); n > 0 {
		if ins, ok := op.Components[n-1].(Insert); ok {
			op.Components[n-1] = Insert{Text: ins.Text + text}
			return op
		}
	}
	op.Components = append(op.Components, Insert{Text: text})
	return op
}

// Delete appends a deletion of count code points, merging into the trailing
// component if it is already a delete.
func (op *Op) Delete(count uint32) *Op {
	if count == 0 {
		return op
	}
	if n := len(op.Components); n > 0 {
		if d, ok := op.Components[n-1].(Delete); ok {
			op.Components[n-1] = Delete{Count: d.Count + count}
			return op
		}
	}
	op.Components = append(op.Components, Delete{Count: count})
	return op
}

// OpenElement appends a structural open-element marker. Unlike skip/insert/
// delete, elements never coalesce with a neighbor.
func (op *Op) OpenElement(name string) *Op {
	op.Components = append(op.Components, OpenElement{Name: name})
	return op
}

// CloseElement appends a structural close-element marker.
func (op *Op) CloseElement() *Op {
	op.Components = append(op.Components, CloseElement{})
	return op
}

// StartFmt records that the named/valued attribute starts at the current
// position, merging into a trailing formatting boundary if present.
func (op *Op) StartFmt(name, value string) *Op {
	if n := len(op.Components); n > 0 {
		if fb, ok := op.Components[n-1].(FormattingBoundary); ok {
			fb.Starts = append(fb.Starts, Fmt{Name: name, Value: value})
			op.Components[n-1] = fb
			return op
		}
	}
	op.Components = append(op.Components, FormattingBoundary{Starts: []Fmt{{Name: name, Value: value}}})
	return op
}

// EndFmt records that the named/valued attribute ends at the current
// position, merging into a trailing formatting boundary if present.
func (op *Op) EndFmt(name, value string) *Op {
	if n := len(op.Components); n > 0 {
		if fb, ok := op.Components[n-1].(FormattingBoundary); ok {
			fb.Ends = append(fb.Ends, Fmt{Name: name, Value: value})
			op.Components[n-1] = fb
			return op
		}
	}
	op.Components = append(op.Components, FormattingBoundary{Ends: []Fmt{{Name: name, Value: value}}})
	return op
}

// Equal compares two operations structurally: client ID, parent, and
// components in order. The resulting hash is deliberately excluded, matching
// the rule that two ops are the same edit regardless of whether either side
// has stamped its resulting hash yet.
func (op *Op) Equal(other *Op) bool {
	if op == nil || other == nil {
		return op == other
	}
	if op.ClientID != other.ClientID || op.Parent != other.Parent {
		return false
	}
	if len(op.Components) != len(other.Components) {
		return false
	}
	for i, c := range op.Components {
		if !componentsEqual(c, other.Components[i]) {
			return false
		}
	}
	return true
}

// Snapshot concatenates every Insert component's text, in order, producing
// the document text this operation represents when applied from empty.
func (op *Op) Snapshot() string {
	var out []byte
	for _, c := range op.Components {
		if ins, ok := c.(Insert); ok {
			out = append(out, ins.Text...)
		}
	}
	return string(out)
}

// Size reports the net code-point length change this operation applies:
// inserted code points minus deleted code points.
func (op *Op) Size() int {
	total := 0
	for _, c := range op.Components {
		switch v := c.(type) {
		case Insert:
			total += compSize(v)
		case Delete:
			total -= compSize(v)
		}
	}
	return total
}

// Dup returns a deep copy of op.
func (op *Op) Dup() *Op {
	dup := &Op{
		ClientID: op.ClientID,
		Parent:   op.Parent,
		Hash:     op.Hash,
	}
	dup.Components = make([]Component, len(op.Components))
	for i, c := range op.Components {
		if fb, ok := c.(FormattingBoundary); ok {
			starts := make([]Fmt, len(fb.Starts))
			copy(starts, fb.Starts)
			ends := make([]Fmt, len(fb.Ends))
			copy(ends, fb.Ends)
			dup.Components[i] = FormattingBoundary{Starts: starts, Ends: ends}
			continue
		}
		dup.Components[i] = c
	}
	return dup
}

// StampHash recomputes op.Hash from op.Snapshot and returns it.
func (op *Op) StampHash() Hash {
	op.Hash = hashutil.SHA1([]byte(op.Snapshot()))
	return op.Hash
}
