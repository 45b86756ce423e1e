package settings

import "strings"

// Normalize returns v in a form that survives whitespace re-splitting by the
// consuming build system. A value is left unchanged when it is already
// safely tokenizable, checked in this order:
//
//  1. already wrapped in a pair of double quotes
//  2. contains no space character
//  3. every space-delimited segment except the last ends with an escaping
//     backslash (the caller escaped it)
//
// Otherwise the whole value is wrapped in double quotes. Normalize is
// idempotent: applying it to its own output is a no-op.
func Normalize(v string) string {
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		return v
	}
	if !strings.Contains(v, " ") {
		return v
	}
	if spacesEscaped(v) {
		return v
	}
	return `"` + v + `"`
}

// NormalizeList normalizes every element of vs into a fresh slice.
// The input slice is never mutated.
func NormalizeList(vs []string) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = Normalize(v)
	}
	return out
}

// spacesEscaped reports whether every space in v is preceded by a
// backslash, i.e. every space-delimited segment except the last ends
// with one.
func spacesEscaped(v string) bool {
	segments := strings.Split(v, " ")
	for _, seg := range segments[:len(segments)-1] {
		if !strings.HasSuffix(seg, `\`) {
			return false
		}
	}
	return true
}
