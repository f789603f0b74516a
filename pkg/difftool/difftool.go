// Package difftool turns a plain before/after text comparison into an
// operation the rest of the engine can compose, transform, and broadcast,
// using Google's diff-match-patch algorithm to find the edit instead of
// requiring a caller to track positions itself.
package difftool

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/coreseekdev/polyphony/pkg/ot"
)

var dmp = diffmatchpatch.New()

// FromDiff builds an Op that transforms oldText into newText. It is meant
// for editors that only expose "here is the new buffer contents" rather
// than individual keystrokes: a textarea's onChange handler, a file watch,
// a pasted-in replacement, or an import from another format.
func FromDiff(oldText, newText string) *ot.Op {
	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	op := ot.NewOp()
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			op.Skip(uint32(len([]rune(d.Text))))
		case diffmatchpatch.DiffInsert:
			op.Insert(d.Text)
		case diffmatchpatch.DiffDelete:
			op.Delete(uint32(len([]rune(d.Text))))
		}
	}
	return op
}

// Preview renders a human-readable diff between two texts, useful for
// logging what an editor just did without decoding the op's components
// by hand.
func Preview(oldText, newText string) string {
	diffs := dmp.DiffMain(oldText, newText, false)
	return dmp.DiffPrettyText(diffs)
}
