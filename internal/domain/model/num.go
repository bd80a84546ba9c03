package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Num is an untrusted numeric field from the upstream provider. It accepts
// JSON numbers, numeric strings ("1.25", "55%") and null. Anything else
// decodes to an invalid Num instead of failing the whole document.
type Num struct {
	V     float64
	Valid bool
}

// N builds a valid Num.
func N(v float64) Num { return Num{V: v, Valid: true} }

// Missing is the zero Num.
var Missing = Num{}

// Usable reports whether the value is present, finite and not negative.
func (n Num) Usable() bool {
	return n.Valid && !math.IsNaN(n.V) && !math.IsInf(n.V, 0) && n.V >= 0
}

// Or returns the value when usable, def otherwise.
func (n Num) Or(def float64) float64 {
	if n.Usable() {
		return n.V
	}
	return def
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Num) UnmarshalJSON(b []byte) error {
	*n = Num{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*n = N(v)
		}
		return nil
	}
	if v, err := strconv.ParseFloat(string(b), 64); err == nil {
		*n = N(v)
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Invalid and non-finite values encode as null.
func (n Num) MarshalJSON() ([]byte, error) {
	if !n.Valid || math.IsNaN(n.V) || math.IsInf(n.V, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.V, 'f', -1, 64)), nil
}
