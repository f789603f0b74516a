// Package hexutil encodes and decodes fixed-size hashes the way the wire
// format does: leading zero bytes are elided, except that an all-zero hash
// is still written out as the single byte "00" rather than an empty string.
package hexutil

import "encoding/hex"

// Encode returns the hex encoding of b with leading zero bytes stripped.
// The all-zero case returns "00", never "".
func Encode(b []byte) string {
	i := 0
	for i < len(b)-1 && b[i] == 0 {
		i++
	}
	return hex.EncodeToString(b[i:])
}

// Decode writes the hex string s into a right-aligned byte slice of length
// size, zero-padding on the left. It mirrors the encoder: a short string
// like "00" or "" decodes to an all-zero array.
func Decode(dst []byte, size int, s string) error {
	for i := range dst[:size] {
		dst[i] = 0
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(raw) > size {
		raw = raw[len(raw)-size:]
	}
	copy(dst[size-len(raw):size], raw)
	return nil
}
