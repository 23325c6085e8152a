// Package numbering generates dotted-decimal identifiers ("2.3.1") for new
// nodes in the section and group outlines.
package numbering

import (
	"strconv"
	"strings"
)

// Next returns the number for a new child of parent given the numbers of its
// existing siblings. Sibling last segments are compared numerically, so
// "1.9" is followed by "1.10". Siblings whose last segment is not a
// non-negative integer are ignored. An empty parent yields a top-level
// number ("1", "2", ...).
func Next(parent string, siblings []string) string {
	highest := 0
	for _, s := range siblings {
		if n, ok := LastSegment(s); ok && n > highest {
			highest = n
		}
	}
	return Join(parent, highest+1)
}

// Join appends segment n to parent.
func Join(parent string, n int) string {
	if parent == "" {
		return strconv.Itoa(n)
	}
	return parent + "." + strconv.Itoa(n)
}

// LastSegment parses the final dotted segment of number.
func LastSegment(number string) (int, bool) {
	number = strings.TrimSpace(number)
	if number == "" {
		return 0, false
	}
	seg := number
	if i := strings.LastIndexByte(number, '.'); i >= 0 {
		seg = number[i+1:]
	}
	n, err := strconv.Atoi(seg)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Compare orders two dotted numbers segment by segment, numerically where
// both segments parse and lexically otherwise. Shorter prefixes sort first.
func Compare(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		if aerr == nil && berr == nil {
			if an != bn {
				if an < bn {
					return -1
				}
				return 1
			}
			continue
		}
		if c := strings.Compare(as[i], bs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}
