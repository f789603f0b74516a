package ot

// runeSlice returns the substring of s spanning code points [start, end).
func runeSlice(s string, start, end int) string {
	r := []rune(s)
	return string(r[start:end])
}
