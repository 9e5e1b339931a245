package calculator

import (
	"fmt"
	"math"
)

// Tolerance is the maximum acceptable gap between the sum of shares and the
// transaction total, in currency units.
const Tolerance = 0.01

// Validation is the outcome of checking a share set against a total.
// Errors invalidate the set; warnings are informational only.
type Validation struct {
	IsValid       bool
	TotalShares   float64
	ExpectedTotal float64
	Difference    float64
	Errors        []string
	Warnings      []string
}

// Validate checks a set of share amounts against the expected total.
// Negative shares and a sum off by more than Tolerance are hard errors;
// zero shares only warn.
func Validate(total float64, amounts []float64) Validation {
	v := Validation{ExpectedTotal: total}

	var sum float64
	for i, amount := range amounts {
		sum += amount
		if amount < 0 {
			v.Errors = append(v.Errors, fmt.Sprintf("share %d has negative amount %.2f", i+1, amount))
		} else if amount == 0 {
			v.Warnings = append(v.Warnings, fmt.Sprintf("share %d has zero amount", i+1))
		}
	}

	v.TotalShares = round2(sum)
	v.Difference = round2(sum - total)
	if math.Abs(v.Difference) > Tolerance {
		v.Errors = append(v.Errors,
			fmt.Sprintf("shares total %.2f but transaction amount is %.2f (difference %.2f)",
				v.TotalShares, total, v.Difference))
	}

	v.IsValid = len(v.Errors) == 0
	return v
}
