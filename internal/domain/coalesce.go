package domain

import (
	"cmp"
	"math"
)

// CoalesceStr picks the first non-empty value, so agent output can fall
// back to a default label.
func CoalesceStr(vals ...string) string {
	return cmp.Or(vals...)
}

// CoalesceList picks the first non-empty list. Interests resolve request,
// then stored profile, then DefaultInterests.
func CoalesceList(lists ...[]string) []string {
	for _, l := range lists {
		if len(l) != 0 {
			return l
		}
	}
	return nil
}

// Round2 rounds a USD amount to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
