package ot

// Transform takes two operations with the same base snapshot and produces
// op1Prime and op2Prime such that applying op1 then op2Prime converges to
// the same snapshot as applying op2 then op1Prime.
//
// When both operations insert at the same position, op1's insert is placed
// first: op1Prime carries the insert unchanged and op2Prime retains past it.
// This op1-first rule is what gives concurrent inserts at a shared position
// a deterministic, convergent order.
func Transform(op1, op2 *Op) (*Op, *Op, error) {
	if hasStructuralComponents(op1) || hasStructuralComponents(op2) {
		return nil, nil, ErrXformFailed
	}

	it1 := NewIter(op1)
	it2 := NewIter(op2)
	it1.Skip(0)
	it2.Skip(0)

	op1Prime := NewOp()
	op1Prime.ClientID = op1.ClientID
	op1Prime.Parent = op2.Hash

	op2Prime := NewOp()
	op2Prime.ClientID = op2.ClientID
	op2Prime.Parent = op1.Hash

	for {
		done1 := it1.Done()
		done2 := it2.Done()
		if done1 && done2 {
			break
		}

		// op1's inserts always go first: they are unaffected by op2, and
		// op2 must skip past whatever op1 inserted.
		if !done1 {
			if ins, ok := it1.Component().(Insert); ok {
				n := it1.Remaining()
				off := it1.Offset()
				op1Prime.Insert(runeSlice(ins.Text, off, off+n))
				op2Prime.Skip(uint32(n))
				it1.Skip(n)
				continue
			}
		}

		if !done2 {
			if ins, ok := it2.Component().(Insert); ok {
				n := it2.Remaining()
				off := it2.Offset()
				op1Prime.Skip(uint32(n))
				op2Prime.Insert(runeSlice(ins.Text, off, off+n))
				it2.Skip(n)
				continue
			}
		}

		if done1 != done2 {
			return nil, nil, ErrXformFailed
		}

		n := min(it1.Remaining(), it2.Remaining())

		switch it1.Component().(type) {
		case Skip:
			switch it2.Component().(type) {
			case Skip:
				op1Prime.Skip(uint32(n))
				op2Prime.Skip(uint32(n))
			case Delete:
				op2Prime.Delete(uint32(n))
			default:
				return nil, nil, ErrXformFailed
			}
		case Delete:
			switch it2.Component().(type) {
			case Skip:
				op1Prime.Delete(uint32(n))
			case Delete:
				// Both sides delete the same text: neither output needs to
				// say anything about it.
			default:
				return nil, nil, ErrXformFailed
			}
		default:
			return nil, nil, ErrXformFailed
		}

		it1.Skip(n)
		it2.Skip(n)
	}

	// Hash fields are left unset: a transformed operation's resulting
	// snapshot hash is only known once a Document appends it.
	return op1Prime, op2Prime, nil
}
