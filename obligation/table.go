// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package obligation

import (
	"github.com/pkg/errors"

	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/faults"
	"github.com/bitsongofficial/realign/stake"
)

// Entry is one (target, amount) record of an allocation list.
type Entry struct {
	Target stake.Target `json:"target" yaml:"target"`
	Amount bn.Amount    `json:"amount" yaml:"amount"`
}

// Table maps every target to the total it should hold after realignment.
// Duplicate targets are additive.
type Table struct {
	amounts map[stake.Target]bn.Amount
	total   bn.Amount
	entries int
}

func NewTable() *Table {
	return &Table{
		amounts: make(map[stake.Target]bn.Amount),
	}
}

// FromEntries builds a table from an allocation list.
func FromEntries(entries []Entry) (*Table, error) {
	t := NewTable()
	for _, e := range entries {
		if err := t.Add(e.Target, e.Amount); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Add sums amount into the target's obligation.
func (t *Table) Add(target stake.Target, amount bn.Amount) error {
	if target == "" {
		return errors.Wrap(faults.ErrInvalidObligation, "empty target")
	}
	total, err := t.total.Add(amount)
	if err != nil {
		return errors.Wrap(err, "obligation total")
	}
	current, err := t.amounts[target].Add(amount)
	if err != nil {
		return errors.Wrapf(err, "obligation of %s", target)
	}
	t.amounts[target] = current
	t.total = total
	t.entries++
	return nil
}

// Get returns the obligation of target, zero when absent.
func (t *Table) Get(target stake.Target) bn.Amount {
	return t.amounts[target]
}

// Has reports whether target appears in the table.
func (t *Table) Has(target stake.Target) bool {
	_, ok := t.amounts[target]
	return ok
}

// Total is the grand total of all obligations.
func (t *Table) Total() bn.Amount {
	return t.total
}

// Len is the number of distinct targets.
func (t *Table) Len() int {
	return len(t.amounts)
}

// Entries is the number of records added, duplicates included.
func (t *Table) Entries() int {
	return t.entries
}

// Targets returns the distinct targets in ascending order.
func (t *Table) Targets() []stake.Target {
	targets := make([]stake.Target, 0, len(t.amounts))
	for target := range t.amounts {
		targets = append(targets, target)
	}
	return stake.SortTargets(targets)
}

// Expectation describes what a correctly loaded allocation list must add up to.
// Zero values disable the respective check.
type Expectation struct {
	Total   bn.Amount `yaml:"total"`
	Targets int       `yaml:"targets"`
}

// Check refuses a table whose total or target count disagrees with the expectation.
func (e Expectation) Check(t *Table) error {
	if !e.Total.IsZero() && t.Total().Cmp(e.Total) != 0 {
		return errors.Wrapf(faults.ErrTotalMismatch, "obligations add up to %s, expected %s", t.Total(), e.Total)
	}
	if e.Targets > 0 && t.Len() != e.Targets {
		return errors.Wrapf(faults.ErrTargetCountMismatch, "obligations name %d targets, expected %d", t.Len(), e.Targets)
	}
	return nil
}
