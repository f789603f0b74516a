package ot

// ErrCode is the error taxonomy shared by every layer of the engine: the
// operation algebra, the document history, the codec, and the client/server
// sessions. Callers compare against the exported sentinels below rather than
// switching on string messages.
type ErrCode int

const (
	// ErrNone is the zero value; no package ever returns it as an error.
	ErrNone ErrCode = iota

	// ErrParentMissing means a decoded operation had no "parent" field.
	ErrParentMissing
	// ErrClientIDMissing means a decoded operation had no "clientId" field.
	ErrClientIDMissing
	// ErrComponentsMissing means a decoded operation had no "components" field.
	ErrComponentsMissing
	// ErrInvalidComponent means a component's "type" tag was unrecognized.
	ErrInvalidComponent
	// ErrHashMissing means a decoded operation had no "hash" field.
	ErrHashMissing
	// ErrInvalidJSON means the input was not parseable JSON.
	ErrInvalidJSON
	// ErrBufferFailed means a client's local buffer could not absorb an
	// applied operation because it failed to compose.
	ErrBufferFailed
	// ErrAppendFailed means a document could not fold an operation into its
	// composed state.
	ErrAppendFailed
	// ErrXformFailed means two operations could not be transformed against
	// each other.
	ErrXformFailed
	// ErrComposeFailed means two operations could not be composed.
	ErrComposeFailed
	// ErrMaxSize means appending an operation would exceed a document's
	// configured maximum size.
	ErrMaxSize
)

var errCodeText = map[ErrCode]string{
	ErrNone:              "none",
	ErrParentMissing:     "parent field missing",
	ErrClientIDMissing:   "clientId field missing",
	ErrComponentsMissing: "components field missing",
	ErrInvalidComponent:  "invalid component",
	ErrHashMissing:       "hash field missing",
	ErrInvalidJSON:       "invalid json",
	ErrBufferFailed:      "buffer composition failed",
	ErrAppendFailed:      "append failed",
	ErrXformFailed:       "transform failed",
	ErrComposeFailed:     "compose failed",
	ErrMaxSize:           "document would exceed max size",
}

// Error implements the error interface so an ErrCode can be returned and
// compared directly, without wrapping it in another type.
func (c ErrCode) Error() string {
	if s, ok := errCodeText[c]; ok {
		return s
	}
	return "unknown error"
}

// CodeOf extracts the ErrCode carried by err, or ErrNone if err is nil or
// doesn't originate from this package.
func CodeOf(err error) ErrCode {
	if err == nil {
		return ErrNone
	}
	if code, ok := err.(ErrCode); ok {
		return code
	}
	return ErrNone
}
