// Package scoring holds the household creditworthiness computation. Every
// function here is pure: it works on already fetched records and keeps no state.
package scoring

import "math"

// RepaymentRatio returns paid/borrowed. The second result is false when the
// ratio is undefined (borrowed missing, zero or negative, or paid missing);
// such ratios must be left out of aggregates rather than counted as zero.
func RepaymentRatio(paid, borrowed *float64) (float64, bool) {
	if paid == nil || borrowed == nil {
		return 0, false
	}
	if *borrowed <= 0 || math.IsNaN(*borrowed) || math.IsNaN(*paid) {
		return 0, false
	}
	r := *paid / *borrowed
	if math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}
