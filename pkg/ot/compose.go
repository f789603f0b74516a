package ot

// Compose folds two sequential operations into one equivalent operation:
// applying Compose(op1, op2) to a snapshot must produce the same result as
// applying op1 and then op2 in turn. op2 is assumed to have op1's resulting
// snapshot as its base.
//
// Structural components (elements, formatting boundaries) are rejected
// outright rather than passed through inertly: neither operand may carry
// one.
func Compose(op1, op2 *Op) (*Op, error) {
	if hasStructuralComponents(op1) || hasStructuralComponents(op2) {
		return nil, ErrComposeFailed
	}

	it1 := NewIter(op1)
	it2 := NewIter(op2)
	it1.Skip(0)
	it2.Skip(0)

	composed := NewOp()
	composed.ClientID = op1.ClientID
	composed.Parent = op1.Parent

	for {
		done1 := it1.Done()
		done2 := it2.Done()
		if done1 && done2 {
			break
		}

		// Deletes in op1 land in the composed operation untouched,
		// regardless of what op2 is doing: nothing that happens after a
		// deletion can change the fact that it happened.
		if !done1 {
			if _, ok := it1.Component().(Delete); ok {
				n := it1.Remaining()
				composed.Delete(uint32(n))
				it1.Skip(n)
				continue
			}
		}

		// Inserts in op2 land in the composed operation untouched: they
		// introduce text op1 never saw.
		if !done2 {
			if ins, ok := it2.Component().(Insert); ok {
				n := it2.Remaining()
				off := it2.Offset()
				composed.Insert(runeSlice(ins.Text, off, off+n))
				it2.Skip(n)
				continue
			}
		}

		if done1 != done2 {
			return nil, ErrComposeFailed
		}

		n := min(it1.Remaining(), it2.Remaining())

		switch c1 := it1.Component().(type) {
		case Skip:
			switch it2.Component().(type) {
			case Skip:
				composed.Skip(uint32(n))
			case Delete:
				composed.Delete(uint32(n))
			default:
				return nil, ErrComposeFailed
			}
		case Insert:
			switch it2.Component().(type) {
			case Skip:
				off := it1.Offset()
				composed.Insert(runeSlice(c1.Text, off, off+n))
			case Delete:
				// The insert is deleted before it ever lands in the
				// composed document: emit nothing.
			default:
				return nil, ErrComposeFailed
			}
		default:
			return nil, ErrComposeFailed
		}

		it1.Skip(n)
		it2.Skip(n)
	}

	// composed.Hash is left unset here: only a Document knows the full
	// accumulated snapshot a composed operation's hash must cover.
	return composed, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
