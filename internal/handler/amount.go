package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

var errInexactAmount = errors.New("amount is not a representable whole number")

// Amount is a client-supplied money figure kept exactly as sent.  It
// accepts a JSON number or a numeric string; null or absent is zero.
// Anything that is not a whole number within int range fails to decode.
type Amount int

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	var num json.Number
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		num = json.Number(strings.TrimSpace(s))
	} else if err := json.Unmarshal(b, &num); err != nil {
		return err
	}

	if n, err := strconv.ParseInt(num.String(), 10, 0); err == nil {
		*a = Amount(n)
		return nil
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt || f >= math.MaxInt {
		return errInexactAmount
	}
	*a = Amount(int(f))
	return nil
}
