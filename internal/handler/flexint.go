package handler

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// FlexInt decodes an identifier sent as a JSON number or a numeric
// string.  Strings are read by their leading integer: leading whitespace
// is skipped, an optional sign and the leading decimal digits (or hex
// digits after 0x) are taken, and anything after them is ignored.
// Numbers truncate toward zero.  Valid is false for null, empty or
// non-numeric input.
type FlexInt struct {
	Value int
	Valid bool
}

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	*f = FlexInt{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f.Value, f.Valid = parseLeadingInt(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		// booleans, objects and arrays parse to nothing
		return nil
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || math.Abs(n) > math.MaxInt32 {
		return nil
	}
	f.Value, f.Valid = int(n), true
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Value)), nil
}

// parseLeadingInt reads an optionally signed run of leading digits.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	sign := s[:end]
	if rest := s[end:]; len(rest) > 1 && rest[0] == '0' && (rest[1] == 'x' || rest[1] == 'X') {
		start := end + 2
		end = start
		for end < len(s) && isHexDigit(s[end]) {
			end++
		}
		if end == start {
			return 0, false
		}
		n, err := strconv.ParseInt(sign+s[start:end], 16, 0)
		if err != nil {
			return 0, false
		}
		return int(n), true
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
