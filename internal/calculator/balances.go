package calculator

import (
	"sort"

	"github.com/splitledger/splitledger/internal/models"
)

// SplitForBalance is one unsettled split row reduced to what balance
// netting needs: who paid, who owes, how much. Keys are user ids for
// registered parties and guest emails (or names) for guests.
type SplitForBalance struct {
	PayerKey  string
	PayerName string
	OwerKey   string
	OwerName  string
	Amount    float64
}

// NetBalances aggregates unsettled splits into per-member balances and a
// simplified debt matrix.
//
// For each split the payer's TotalPaid and the ower's TotalOwed grow by the
// share amount; a payer's own share cancels itself out. Net balances are
// then matched greedily, largest debts against largest credits, dropping
// edges below the rounding tolerance.
func NetBalances(splits []SplitForBalance) ([]models.GroupBalance, []models.DebtEdge) {
	balances := make(map[string]*models.GroupBalance)

	ensure := func(key, name string) *models.GroupBalance {
		if b, ok := balances[key]; ok {
			return b
		}
		b := &models.GroupBalance{UserID: key, Name: name}
		balances[key] = b
		return b
	}

	for _, s := range splits {
		if s.PayerKey == "" || s.OwerKey == "" {
			continue
		}
		ensure(s.PayerKey, s.PayerName).TotalPaid += s.Amount
		ensure(s.OwerKey, s.OwerName).TotalOwed += s.Amount
	}

	var members []models.GroupBalance
	for _, b := range balances {
		b.NetBalance = round2(b.TotalPaid - b.TotalOwed)
		b.TotalPaid = round2(b.TotalPaid)
		b.TotalOwed = round2(b.TotalOwed)
		members = append(members, *b)
	}
	// Deterministic output order for callers and tests.
	sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })

	var creditors, debtors []models.GroupBalance
	for _, b := range members {
		switch {
		case b.NetBalance > Tolerance:
			creditors = append(creditors, b)
		case b.NetBalance < -Tolerance:
			debtors = append(debtors, b)
		}
	}

	// Greedy matching: walk both lists, settling the smaller of the two
	// outstanding amounts each step.
	var edges []models.DebtEdge
	i, j := 0, 0
	debtorLeft := make(map[string]float64, len(debtors))
	creditorLeft := make(map[string]float64, len(creditors))
	for _, d := range debtors {
		debtorLeft[d.UserID] = -d.NetBalance
	}
	for _, c := range creditors {
		creditorLeft[c.UserID] = c.NetBalance
	}

	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := debtors[i], creditors[j]

		amount := debtorLeft[debtor.UserID]
		if creditorLeft[creditor.UserID] < amount {
			amount = creditorLeft[creditor.UserID]
		}

		if amount > Tolerance {
			edges = append(edges, models.DebtEdge{
				FromUserID: debtor.UserID,
				FromName:   debtor.Name,
				ToUserID:   creditor.UserID,
				ToName:     creditor.Name,
				Amount:     round2(amount),
			})
		}

		debtorLeft[debtor.UserID] -= amount
		creditorLeft[creditor.UserID] -= amount

		if debtorLeft[debtor.UserID] < Tolerance {
			i++
		}
		if creditorLeft[creditor.UserID] < Tolerance {
			j++
		}
	}

	return members, edges
}
