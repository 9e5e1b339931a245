// Package calculator holds the pure split arithmetic: computing
// per-participant shares from a total, validating a share set against the
// total, and netting group balances from split rows. Nothing in this
// package touches storage.
package calculator

import (
	"fmt"
	"math"

	"github.com/splitledger/splitledger/internal/models"
)

// Share is one participant's computed slice of a transaction. Transient:
// shares are never persisted, only turned into split rows downstream.
type Share struct {
	Participant models.Participant
	Amount      float64
	Percentage  float64
}

// PercentShare pairs a participant with the percentage of the total they owe.
type PercentShare struct {
	Participant models.Participant
	Percent     float64
}

// EqualShares divides total evenly among the participants, rounding each
// share to 2 decimals. The rounding residual is assigned entirely to the
// first participant so that the shares always sum to the total exactly.
// The tie-break is deliberate and relied upon by callers; do not distribute
// the remainder.
func EqualShares(total float64, participants []models.Participant) ([]Share, error) {
	n := len(participants)
	if n == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}

	each := round2(total / float64(n))
	residual := round2(total - each*float64(n))

	shares := make([]Share, n)
	for i, p := range participants {
		amount := each
		if i == 0 {
			amount = round2(each + residual)
		}
		shares[i] = Share{
			Participant: p,
			Amount:      amount,
			Percentage:  sharePercent(amount, total),
		}
	}
	return shares, nil
}

// PercentageShares computes each share as round2(total * pct / 100).
// Percentages are taken as given and not normalized to 100; a mismatched
// set produces shares that fail validation.
func PercentageShares(total float64, shares []PercentShare) ([]Share, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}

	out := make([]Share, len(shares))
	for i, s := range shares {
		out[i] = Share{
			Participant: s.Participant,
			Amount:      round2(total * s.Percent / 100),
			Percentage:  s.Percent,
		}
	}
	return out, nil
}

// CustomShares passes caller-supplied amounts through untouched; the
// validator is the gate for custom splits.
func CustomShares(total float64, participants []models.Participant, amounts []float64) ([]Share, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}
	if len(amounts) != len(participants) {
		return nil, fmt.Errorf("got %d amounts for %d participants", len(amounts), len(participants))
	}

	out := make([]Share, len(participants))
	for i, p := range participants {
		out[i] = Share{
			Participant: p,
			Amount:      amounts[i],
			Percentage:  sharePercent(amounts[i], total),
		}
	}
	return out, nil
}

func sharePercent(amount, total float64) float64 {
	if total == 0 {
		return 0
	}
	return round2(amount / total * 100)
}

// round2 rounds to 2 decimal places (currency units).
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
