// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package status decides which targets may keep or receive delegations.
package status

import (
	"github.com/bitsongofficial/realign/obligation"
	"github.com/bitsongofficial/realign/stake"
)

type Status uint8

// Removable statuses are ordered by precedence, the first matching one wins.
const (
	Eligible              = Status(iota) // 0 -> default value
	Excluded                             // on the operator's exclusion list
	Unbonded                             // reported unbonded by the chain
	Unbonding                            // reported unbonding by the chain
	Jailed                               // jailed at the reference height
	NoObligationThisRound                // nothing allocated to it this round
)

// Removable reports whether every holding at the target must be moved away.
func (s Status) Removable() bool {
	return s != Eligible
}

func (s Status) String() string {
	switch s {
	case Eligible:
		return "eligible"
	case Excluded:
		return "excluded"
	case Unbonded:
		return "unbonded"
	case Unbonding:
		return "unbonding"
	case Jailed:
		return "jailed"
	case NoObligationThisRound:
		return "no-obligation-this-round"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Kind names a chain-reported validator set.
type Kind string

const (
	KindUnbonded  Kind = "BOND_STATUS_UNBONDED"
	KindUnbonding Kind = "BOND_STATUS_UNBONDING"
	KindBonded    Kind = "BOND_STATUS_BONDED"
)

// Set is a membership set of targets.
type Set map[stake.Target]struct{}

func NewSet(targets ...stake.Target) Set {
	s := make(Set, len(targets))
	for _, t := range targets {
		s[t] = struct{}{}
	}
	return s
}

func (s Set) Has(t stake.Target) bool {
	_, ok := s[t]
	return ok
}

// Sorted returns the members ascending.
func (s Set) Sorted() []stake.Target {
	targets := make([]stake.Target, 0, len(s))
	for t := range s {
		targets = append(targets, t)
	}
	return stake.SortTargets(targets)
}

// Sets are the chain-reported status sets. Each one is sourced independently.
type Sets struct {
	Unbonded  Set
	Unbonding Set
	Jailed    Set
}

// Statuses is the classification of every target of one run.
type Statuses map[stake.Target]Status

// Of returns the status of t. Unknown targets are eligible.
func (s Statuses) Of(t stake.Target) Status {
	return s[t]
}

// Reason is the human readable status of t.
func (s Statuses) Reason(t stake.Target) string {
	return s.Of(t).String()
}

// Removable returns every removable target, ascending.
func (s Statuses) Removable() []stake.Target {
	var targets []stake.Target
	for t, st := range s {
		if st.Removable() {
			targets = append(targets, t)
		}
	}
	return stake.SortTargets(targets)
}

// Count returns the number of targets per status.
func (s Statuses) Count() map[Status]int {
	counts := make(map[Status]int)
	for _, st := range s {
		counts[st]++
	}
	return counts
}

// Classify assigns exactly one status to every target of universe and of table.
func Classify(universe []stake.Target, excluded Set, sets Sets, table *obligation.Table) Statuses {
	statuses := make(Statuses, len(universe))
	classify := func(t stake.Target) {
		if _, ok := statuses[t]; ok {
			return
		}
		switch {
		case excluded.Has(t):
			statuses[t] = Excluded
		case sets.Unbonded.Has(t):
			statuses[t] = Unbonded
		case sets.Unbonding.Has(t):
			statuses[t] = Unbonding
		case sets.Jailed.Has(t):
			statuses[t] = Jailed
		case table.Get(t).IsZero():
			statuses[t] = NoObligationThisRound
		default:
			statuses[t] = Eligible
		}
	}
	for _, t := range universe {
		classify(t)
	}
	for _, t := range table.Targets() {
		classify(t)
	}
	return statuses
}
