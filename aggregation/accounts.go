// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package aggregation

import (
	"cmp"
	"slices"

	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/stake"
)

// AccountSummary is what one account currently has delegated.
type AccountSummary struct {
	Account   stake.Account `json:"account"`
	Delegated bn.Amount     `json:"delegated"`
	Count     int           `json:"count"`
}

// Accounts summarises the ledger per account. Targets for which skip returns true
// are left out of both the total and the count.
func (l *Ledger) Accounts(skip func(stake.Target) bool) []AccountSummary {
	byAccount := make(map[stake.Account]*AccountSummary)
	for _, at := range l.targets {
		if skip != nil && skip(at.Target) {
			continue
		}
		for _, h := range at.Holdings {
			s, ok := byAccount[h.Account]
			if !ok {
				s = &AccountSummary{Account: h.Account}
				byAccount[h.Account] = s
			}
			// overflow is impossible, the ledger total already fits
			s.Delegated, _ = s.Delegated.Add(h.Amount)
			s.Count++
		}
	}

	summaries := make([]AccountSummary, 0, len(byAccount))
	for _, s := range byAccount {
		summaries = append(summaries, *s)
	}
	slices.SortFunc(summaries, func(a, b AccountSummary) int {
		return cmp.Compare(a.Account, b.Account)
	})
	return summaries
}

// Sum adds up amounts keyed by target.
func Sum(amounts map[stake.Target]bn.Amount) (bn.Amount, error) {
	var total bn.Amount
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return bn.Zero(), err
		}
	}
	return total, nil
}
