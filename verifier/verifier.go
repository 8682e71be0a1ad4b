// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package verifier replays a plan against the holdings it was computed from and compares
// the outcome with the obligations.
package verifier

import (
	"cmp"
	"encoding/json"
	"math/big"
	"slices"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/bitsongofficial/realign/aggregation"
	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/log"
	"github.com/bitsongofficial/realign/obligation"
	"github.com/bitsongofficial/realign/op"
	"github.com/bitsongofficial/realign/stake"
)

var logger = log.WithContext("pkg", "verifier")

// Discrepancy is a target whose replayed total differs from its obligation.
type Discrepancy struct {
	Target    stake.Target `json:"target"`
	Final     bn.Amount    `json:"final"`
	Obligated bn.Amount    `json:"obligated"`
	// Diff is Final - Obligated.
	Diff *big.Int `json:"diff"`
}

// Balance is a target and what it holds.
type Balance struct {
	Target stake.Target `json:"target"`
	Amount bn.Amount    `json:"amount"`
}

type Report struct {
	// Discrepancies, largest absolute difference first.
	Discrepancies []Discrepancy `json:"discrepancies"`
	// Unexpected lists targets left with a balance but no obligation.
	Unexpected     []Balance                  `json:"unexpected"`
	Final          map[stake.Target]bn.Amount `json:"-"`
	Obligated      map[stake.Target]bn.Amount `json:"-"`
	TotalFinal     bn.Amount                  `json:"totalFinal"`
	TotalObligated bn.Amount                  `json:"totalObligated"`
}

// Passed reports whether every obligation is met exactly.
func (r *Report) Passed() bool {
	return len(r.Discrepancies) == 0
}

// Top returns at most n discrepancies.
func (r *Report) Top(n int) []Discrepancy {
	if n < len(r.Discrepancies) {
		return r.Discrepancies[:n]
	}
	return r.Discrepancies
}

// JSONDiff is a unified diff between the obligated and the replayed per-target totals.
func (r *Report) JSONDiff() (string, error) {
	if r.Passed() && len(r.Unexpected) == 0 {
		return "", nil
	}
	expected, err := json.MarshalIndent(r.Obligated, "", "  ")
	if err != nil {
		return "", err
	}
	actual, err := json.MarshalIndent(r.Final, "", "  ")
	if err != nil {
		return "", err
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(expected)),
		B:        difflib.SplitLines(string(actual)),
		FromFile: "Obligated",
		ToFile:   "Final",
		Context:  1,
	})
}

// Replay applies ops to a copy of current. Drawing more than a target holds is an error.
func Replay(current map[stake.Target]bn.Amount, ops []op.Operation) (map[stake.Target]bn.Amount, error) {
	final := make(map[stake.Target]bn.Amount, len(current))
	for t, a := range current {
		final[t] = a
	}
	for i, o := range ops {
		if src, ok := o.Source(); ok {
			rest, err := final[src].Sub(o.Amount)
			if err != nil {
				return nil, errors.Wrapf(err, "operation %d (%v) overdraws %s", i, o, src)
			}
			final[src] = rest
		}
		if dst, ok := o.Destination(); ok {
			sum, err := final[dst].Add(o.Amount)
			if err != nil {
				return nil, errors.Wrapf(err, "operation %d (%v)", i, o)
			}
			final[dst] = sum
		}
	}
	return final, nil
}

// Verify replays ops over current and compares the result with table.
func Verify(current map[stake.Target]bn.Amount, table *obligation.Table, ops []op.Operation) (*Report, error) {
	final, err := Replay(current, ops)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Final:          make(map[stake.Target]bn.Amount),
		Obligated:      make(map[stake.Target]bn.Amount),
		TotalObligated: table.Total(),
	}
	for t, a := range final {
		if !a.IsZero() || table.Has(t) {
			r.Final[t] = a
		}
	}
	if r.TotalFinal, err = aggregation.Sum(final); err != nil {
		return nil, err
	}

	for _, t := range table.Targets() {
		obligated := table.Get(t)
		r.Obligated[t] = obligated
		got := final[t]
		if _, ok := r.Final[t]; !ok {
			r.Final[t] = got
		}
		if got.Cmp(obligated) == 0 {
			continue
		}
		r.Discrepancies = append(r.Discrepancies, Discrepancy{
			Target:    t,
			Final:     got,
			Obligated: obligated,
			Diff:      new(big.Int).Sub(got.ToBig(), obligated.ToBig()),
		})
	}
	slices.SortFunc(r.Discrepancies, func(a, b Discrepancy) int {
		if c := new(big.Int).Abs(b.Diff).Cmp(new(big.Int).Abs(a.Diff)); c != 0 {
			return c
		}
		return cmp.Compare(a.Target, b.Target)
	})

	for t, a := range final {
		if !a.IsZero() && !table.Has(t) {
			r.Unexpected = append(r.Unexpected, Balance{Target: t, Amount: a})
		}
	}
	slices.SortFunc(r.Unexpected, func(a, b Balance) int {
		return cmp.Compare(a.Target, b.Target)
	})

	for _, u := range r.Unexpected {
		logger.Warn("balance left on target without obligation", "target", u.Target, "amount", u.Amount)
	}
	if !r.Passed() {
		logger.Warn("verification found discrepancies", "count", len(r.Discrepancies))
	}
	return r, nil
}
