package shell

import (
	"math"
	"strings"
	"unicode"
)

// Atoi converts the leading integer of s the way C's atoi does: leading
// whitespace is skipped, an optional sign is accepted, then decimal digits
// are consumed until the first non-digit. Anything unparsable is 0.
//
// Values saturate at the 64-bit limits while parsing and are then truncated
// to a 32-bit int, matching atoi on LP64 platforms.
func Atoi(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	negative := false
	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	var value int64
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		digit := int64(r - '0')
		if value > (math.MaxInt64-digit)/10 {
			if negative {
				value = math.MinInt64
			} else {
				value = math.MaxInt64
			}
			return int(int32(value))
		}
		value = value*10 + digit
	}

	if negative {
		value = -value
	}
	return int(int32(value))
}

// addInt32 adds with 32-bit wraparound so the accumulator behaves like a C int.
func addInt32(a, b int) int {
	return int(int32(a) + int32(b))
}
