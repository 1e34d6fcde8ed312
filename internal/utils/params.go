// Package utils holds small helpers for parsing untrusted query
// parameters. They never error; bad input degrades to a sane default.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or not a
// valid integer. Input is not trimmed; a padded value is a client bug.
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

// ClampLimit parses a limit parameter and clamps it to [1, max]. Empty or
// unparsable input yields def; zero and negatives also yield def so a
// client cannot request an unbounded or empty page.
func ClampLimit(s string, def, max int) int {
	n := AtoiDefault(s, def)
	if n <= 0 {
		n = def
	}
	if n > max {
		n = max
	}
	return n
}
