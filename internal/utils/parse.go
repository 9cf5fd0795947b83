// Package utils holds tiny parsing helpers shared across layers. Nothing
// here knows about prompts, votes, or HTTP.
package utils

import "strconv"

// AtoiDefault parses s as an int and returns def when s is empty or not a
// valid integer. The input is not trimmed; callers decide.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// UintOrZero parses s as a base-10 unsigned 32-bit value, returning 0 on
// any parse failure. Useful for optional id fields where 0 means "absent".
func UintOrZero(s string) uint {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}
