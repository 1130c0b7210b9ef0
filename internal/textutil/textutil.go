// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil holds string helpers shared by the output and prompt code.
package textutil

import "unicode/utf8"

// Truncate returns the first n runes of s, or s itself when it is no longer
// than n runes. It never splits a multi-byte character.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Ellipsize shortens s to at most n runes, ending it with "..." when cut.
func Ellipsize(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return Truncate(s, n)
	}
	return Truncate(s, n-3) + "..."
}
