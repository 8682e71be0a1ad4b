// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package aggregation groups flat holdings by target.
package aggregation

import (
	"cmp"
	"slices"

	"github.com/pkg/errors"

	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/obligation"
	"github.com/bitsongofficial/realign/stake"
)

// AlignedTarget is the per-run view of one target: what it holds, who holds it and
// what it should hold.
type AlignedTarget struct {
	Target   stake.Target
	Current  bn.Amount
	Holdings []*stake.Holding // amount descending, ties by account
	Desired  bn.Amount
}

// Surplus is Current - Desired, or zero when the target is at or below its obligation.
func (a *AlignedTarget) Surplus() bn.Amount {
	if a.Current.Cmp(a.Desired) <= 0 {
		return bn.Zero()
	}
	s, _ := a.Current.Sub(a.Desired)
	return s
}

// Deficit is Desired - Current, or zero when the target is at or above its obligation.
func (a *AlignedTarget) Deficit() bn.Amount {
	if a.Desired.Cmp(a.Current) <= 0 {
		return bn.Zero()
	}
	d, _ := a.Desired.Sub(a.Current)
	return d
}

func (a *AlignedTarget) clone() *AlignedTarget {
	c := &AlignedTarget{
		Target:   a.Target,
		Current:  a.Current,
		Desired:  a.Desired,
		Holdings: make([]*stake.Holding, 0, len(a.Holdings)),
	}
	for _, h := range a.Holdings {
		cp := *h
		c.Holdings = append(c.Holdings, &cp)
	}
	return c
}

// Ledger is the aggregated current state of all holdings. It is read-only once built.
type Ledger struct {
	targets map[stake.Target]*AlignedTarget
	total   bn.Amount
	count   int
}

// Build aggregates holdings by target. Zero amounts are dropped.
func Build(holdings []stake.Holding) (*Ledger, error) {
	l := &Ledger{
		targets: make(map[stake.Target]*AlignedTarget),
	}
	for _, h := range holdings {
		if h.Amount.IsZero() {
			continue
		}
		at, ok := l.targets[h.Target]
		if !ok {
			at = &AlignedTarget{Target: h.Target}
			l.targets[h.Target] = at
		}
		current, err := at.Current.Add(h.Amount)
		if err != nil {
			return nil, errors.Wrapf(err, "aggregate %s", h.Target)
		}
		total, err := l.total.Add(h.Amount)
		if err != nil {
			return nil, errors.Wrap(err, "aggregate total")
		}
		cp := h
		at.Holdings = append(at.Holdings, &cp)
		at.Current = current
		l.total = total
		l.count++
	}
	for _, at := range l.targets {
		SortHoldings(at.Holdings)
	}
	return l, nil
}

// SortHoldings orders holdings by amount descending, ties by target then account.
func SortHoldings(holdings []*stake.Holding) {
	slices.SortStableFunc(holdings, func(a, b *stake.Holding) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Target, b.Target); c != 0 {
			return c
		}
		return cmp.Compare(a.Account, b.Account)
	})
}

// Get returns the aggregate of target, or nil when nothing is held there.
func (l *Ledger) Get(target stake.Target) *AlignedTarget {
	return l.targets[target]
}

// Current returns the total held at target.
func (l *Ledger) Current(target stake.Target) bn.Amount {
	if at, ok := l.targets[target]; ok {
		return at.Current
	}
	return bn.Zero()
}

// Targets returns every target with a non-zero balance, ascending.
func (l *Ledger) Targets() []stake.Target {
	targets := make([]stake.Target, 0, len(l.targets))
	for t := range l.targets {
		targets = append(targets, t)
	}
	return stake.SortTargets(targets)
}

// Totals returns a copy of the per-target current totals.
func (l *Ledger) Totals() map[stake.Target]bn.Amount {
	totals := make(map[stake.Target]bn.Amount, len(l.targets))
	for t, at := range l.targets {
		totals[t] = at.Current
	}
	return totals
}

// Total is the grand total held across all targets.
func (l *Ledger) Total() bn.Amount {
	return l.total
}

// Len is the number of non-zero holdings.
func (l *Ledger) Len() int {
	return l.count
}

// Align returns a private working copy of the ledger with desired amounts taken from
// table. Targets that only appear in the table are added with no holdings.
func (l *Ledger) Align(table *obligation.Table) Set {
	set := make(Set, len(l.targets)+table.Len())
	for t, at := range l.targets {
		c := at.clone()
		c.Desired = table.Get(t)
		set[t] = c
	}
	for _, t := range table.Targets() {
		if _, ok := set[t]; !ok {
			set[t] = &AlignedTarget{Target: t, Desired: table.Get(t)}
		}
	}
	return set
}

// Set is a working copy of aligned targets owned by a single planning run.
type Set map[stake.Target]*AlignedTarget

// Targets returns the targets of the set, ascending.
func (s Set) Targets() []stake.Target {
	targets := make([]stake.Target, 0, len(s))
	for t := range s {
		targets = append(targets, t)
	}
	return stake.SortTargets(targets)
}
