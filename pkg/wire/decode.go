package wire

import (
	"encoding/json"

	"github.com/coreseekdev/polyphony/pkg/hexutil"
	"github.com/coreseekdev/polyphony/pkg/ot"
)

// rawOp mirrors the wire shape closely enough to tell a present-but-empty
// field apart from an absent one, which ordinary json.Unmarshal into
// opJSON's pointer fields already does for us.
type rawOp struct {
	ErrorCode  *int             `json:"errorCode"`
	ClientID   *uint32          `json:"clientId"`
	Parent     *string          `json:"parent"`
	Hash       *string          `json:"hash"`
	Components *json.RawMessage `json:"components"`
}

// DecodeOp parses a wire JSON message into an operation. If the message is
// an error object ({"errorCode": n}), DecodeOp returns that code as the
// error and a nil operation. Field-presence failures map onto the same
// ErrCode taxonomy a malformed operation would produce.
func DecodeOp(data []byte) (*ot.Op, error) {
	var raw rawOp
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ot.ErrInvalidJSON
	}

	if raw.ErrorCode != nil {
		return nil, ot.ErrCode(*raw.ErrorCode)
	}

	if raw.ClientID == nil {
		return nil, ot.ErrClientIDMissing
	}
	if raw.Parent == nil {
		return nil, ot.ErrParentMissing
	}
	if raw.Hash == nil {
		return nil, ot.ErrHashMissing
	}
	if raw.Components == nil {
		return nil, ot.ErrComponentsMissing
	}

	op := ot.NewOp()
	op.ClientID = *raw.ClientID
	if err := hexutil.Decode(op.Parent[:], len(op.Parent), *raw.Parent); err != nil {
		return nil, ot.ErrParentMissing
	}
	if err := hexutil.Decode(op.Hash[:], len(op.Hash), *raw.Hash); err != nil {
		return nil, ot.ErrHashMissing
	}

	var rawComps []componentJSON
	if err := json.Unmarshal(*raw.Components, &rawComps); err != nil {
		return nil, ot.ErrInvalidJSON
	}

	for _, rc := range rawComps {
		c, err := decodeComponent(rc)
		if err != nil {
			return nil, err
		}
		op.Components = append(op.Components, c)
	}

	return op, nil
}

func decodeComponent(rc componentJSON) (ot.Component, error) {
	switch rc.Type {
	case "skip":
		if rc.Count == nil {
			return nil, ot.ErrInvalidComponent
		}
		return ot.Skip{Count: *rc.Count}, nil
	case "insert":
		if rc.Text == nil {
			return nil, ot.ErrInvalidComponent
		}
		return ot.Insert{Text: *rc.Text}, nil
	case "delete":
		if rc.Count == nil {
			return nil, ot.ErrInvalidComponent
		}
		return ot.Delete{Count: *rc.Count}, nil
	case "openElement":
		if rc.Element == nil {
			return nil, ot.ErrInvalidComponent
		}
		return ot.OpenElement{Name: *rc.Element}, nil
	case "closeElement":
		return ot.CloseElement{}, nil
	case "formattingBoundary":
		return ot.FormattingBoundary{
			Starts: decodeFmts(rc.Starts),
			Ends:   decodeFmts(rc.Ends),
		}, nil
	default:
		return nil, ot.ErrInvalidComponent
	}
}

func decodeFmts(fmts []fmtJSON) []ot.Fmt {
	if len(fmts) == 0 {
		return nil
	}
	out := make([]ot.Fmt, len(fmts))
	for i, f := range fmts {
		out[i] = ot.Fmt{Name: f.Name, Value: f.Value}
	}
	return out
}

// DecodeDoc parses a JSON array of operations, appending each into doc in
// order via append. append is typically document.Doc.Append.
func DecodeDoc(data []byte, append func(*ot.Op) error) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return ot.ErrInvalidJSON
	}
	for _, item := range items {
		op, err := DecodeOp(item)
		if err != nil {
			return err
		}
		if err := append(op); err != nil {
			return err
		}
	}
	return nil
}
