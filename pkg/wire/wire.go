// Package wire implements the JSON encoding operations and their errors
// travel over the network in: an operation becomes an object carrying its
// client ID, parent and resulting hashes (hex, with leading zero bytes
// elided), and an ordered list of typed components. A failed decode
// produces a bare {"errorCode": n} object instead of an operation.
package wire

import (
	"encoding/json"

	"github.com/coreseekdev/polyphony/pkg/hexutil"
	"github.com/coreseekdev/polyphony/pkg/ot"
)

type componentJSON struct {
	Type    string     `json:"type"`
	Count   *uint32    `json:"count,omitempty"`
	Text    *string    `json:"text,omitempty"`
	Element *string    `json:"element,omitempty"`
	Starts  []fmtJSON  `json:"starts,omitempty"`
	Ends    []fmtJSON  `json:"ends,omitempty"`
}

type fmtJSON struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type opJSON struct {
	ErrorCode  *int             `json:"errorCode,omitempty"`
	ClientID   *uint32          `json:"clientId,omitempty"`
	Parent     *string          `json:"parent,omitempty"`
	Hash       *string          `json:"hash,omitempty"`
	Components *[]componentJSON `json:"components,omitempty"`
}

// EncodeOp marshals op into its wire JSON representation.
func EncodeOp(op *ot.Op) ([]byte, error) {
	doc := opJSON{
		ClientID: &op.ClientID,
	}
	parent := hexutil.Encode(op.Parent[:])
	doc.Parent = &parent
	hash := hexutil.Encode(op.Hash[:])
	doc.Hash = &hash
	comps := make([]componentJSON, len(op.Components))
	for i, c := range op.Components {
		comps[i] = encodeComponent(c)
	}
	doc.Components = &comps
	return json.Marshal(doc)
}

func encodeComponent(c ot.Component) componentJSON {
	switch v := c.(type) {
	case ot.Skip:
		count := v.Count
		return componentJSON{Type: "skip", Count: &count}
	case ot.Insert:
		text := v.Text
		return componentJSON{Type: "insert", Text: &text}
	case ot.Delete:
		count := v.Count
		return componentJSON{Type: "delete", Count: &count}
	case ot.OpenElement:
		name := v.Name
		return componentJSON{Type: "openElement", Element: &name}
	case ot.CloseElement:
		return componentJSON{Type: "closeElement"}
	case ot.FormattingBoundary:
		return componentJSON{
			Type:   "formattingBoundary",
			Starts: encodeFmts(v.Starts),
			Ends:   encodeFmts(v.Ends),
		}
	default:
		return componentJSON{}
	}
}

func encodeFmts(fmts []ot.Fmt) []fmtJSON {
	if len(fmts) == 0 {
		return nil
	}
	out := make([]fmtJSON, len(fmts))
	for i, f := range fmts {
		out[i] = fmtJSON{Name: f.Name, Value: f.Value}
	}
	return out
}

// EncodeDoc marshals a document's ops, in history order, as the JSON array
// format a newly joined connection is caught up with.
func EncodeDoc(ops []*ot.Op) ([]byte, error) {
	docs := make([]json.RawMessage, len(ops))
	for i, op := range ops {
		data, err := EncodeOp(op)
		if err != nil {
			return nil, err
		}
		docs[i] = data
	}
	return json.Marshal(docs)
}

// EncodeErr marshals an error code into its wire JSON representation.
func EncodeErr(code ot.ErrCode) ([]byte, error) {
	n := int(code)
	return json.Marshal(opJSON{ErrorCode: &n})
}
