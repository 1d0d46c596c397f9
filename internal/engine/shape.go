package engine

import (
	"strings"
	"unicode/utf8"
)

const ellipsis = "..."

var (
	sentenceBoundaries = []string{". ", "! ", "? "}
	clauseBoundaries   = []string{", ", "; ", ": "}
)

// Shape fits text into a display budget while keeping the untouched full
// form for out-of-band delivery. It searches the leading budget-sized window
// for the best cut, in order: sentence boundary (no ellipsis, it already
// reads complete), clause boundary, word boundary, hard cut. Each boundary
// must fall far enough into the window that most of the content survives.
//
// Shape is pure: identical input and budget always yield identical output,
// and len(short) <= budget holds for every path.
func Shape(text string, budget int) (short, full string, truncated bool) {
	full = strings.TrimSpace(text)
	if len(full) <= budget {
		return full, full, false
	}

	zone := full[:budget]

	// Sentence boundary: cut after the punctuation.
	for _, boundary := range sentenceBoundaries {
		pos := strings.LastIndex(zone, boundary)
		if pos > budget/2 {
			short = strings.TrimSpace(full[:pos+1])
			if len(short) <= budget {
				return short, full, true
			}
		}
	}

	// Clause boundary: cut before it, mark the cut.
	for _, boundary := range clauseBoundaries {
		pos := strings.LastIndex(zone, boundary)
		if pos > budget/2 {
			short = strings.TrimSpace(full[:pos]) + ellipsis
			if len(short) <= budget {
				return short, full, true
			}
		}
	}

	// Word boundary.
	if pos := strings.LastIndex(zone, " "); pos > budget*3/10 {
		short = strings.TrimSpace(full[:pos]) + ellipsis
		if len(short) <= budget {
			return short, full, true
		}
	}

	// Hard cut. Always succeeds.
	short = strings.TrimSpace(truncateAtRuneBoundary(full, budget-len(ellipsis))) + ellipsis
	return short, full, true
}

// truncateAtRuneBoundary returns the longest prefix of s that is at most n
// bytes long without splitting a multi-byte rune.
func truncateAtRuneBoundary(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
