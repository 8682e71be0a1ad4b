// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package op

import (
	"github.com/pkg/errors"

	"github.com/bitsongofficial/realign/bn"
)

// Totals is the count and amount of one kind of operation.
type Totals struct {
	Count  int       `json:"count"`
	Amount bn.Amount `json:"total"`
}

func (t *Totals) add(amount bn.Amount) error {
	sum, err := t.Amount.Add(amount)
	if err != nil {
		return err
	}
	t.Amount = sum
	t.Count++
	return nil
}

// Summary totals a list of operations per kind. It is derived data, for reporting.
type Summary struct {
	Delegates   Totals `json:"delegations"`
	Redelegates Totals `json:"redelegations"`
	Undelegates Totals `json:"undelegations"`
}

// Summarize totals ops.
func Summarize(ops []Operation) (Summary, error) {
	var s Summary
	for _, o := range ops {
		var t *Totals
		switch o.Kind {
		case KindDelegate:
			t = &s.Delegates
		case KindRedelegate:
			t = &s.Redelegates
		case KindUndelegate:
			t = &s.Undelegates
		default:
			return Summary{}, errors.Errorf("invalid operation kind %d", o.Kind)
		}
		if err := t.add(o.Amount); err != nil {
			return Summary{}, errors.Wrapf(err, "summarize %s", o.Kind)
		}
	}
	return s, nil
}

// Count is the total number of operations.
func (s Summary) Count() int {
	return s.Delegates.Count + s.Redelegates.Count + s.Undelegates.Count
}

// Increase is the amount entering the system of targets.
func (s Summary) Increase() bn.Amount {
	return s.Delegates.Amount
}

// Decrease is the amount leaving the system of targets.
func (s Summary) Decrease() bn.Amount {
	return s.Undelegates.Amount
}
