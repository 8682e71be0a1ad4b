// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package planner

import (
	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/op"
	"github.com/bitsongofficial/realign/stake"
	"github.com/bitsongofficial/realign/status"
)

// Removal records a target whose holdings were scheduled for full removal.
type Removal struct {
	Target stake.Target  `json:"target"`
	Status status.Status `json:"status"`
	Amount bn.Amount     `json:"amount"`
}

// Plan is the output of one planning run.
type Plan struct {
	// Delegates ascending by amount.
	Delegates []op.Operation `json:"delegates"`
	// Redelegates descending by amount.
	Redelegates []op.Operation `json:"redelegates"`
	// Undelegates descending by amount.
	Undelegates []op.Operation `json:"undelegates"`

	// Removed lists every removable target that held a balance.
	Removed []Removal `json:"removed"`
	// Forfeited lists obligations on removable targets, which no operation can honour.
	Forfeited []Removal `json:"forfeited"`

	Summary        op.Summary `json:"summary"`
	CurrentTotal   bn.Amount  `json:"currentTotal"`
	ObligatedTotal bn.Amount  `json:"obligatedTotal"`
}

// Operations returns every operation: redelegates, then delegates, then undelegates.
func (p *Plan) Operations() []op.Operation {
	ops := make([]op.Operation, 0, len(p.Redelegates)+len(p.Delegates)+len(p.Undelegates))
	ops = append(ops, p.Redelegates...)
	ops = append(ops, p.Delegates...)
	return append(ops, p.Undelegates...)
}

// Empty reports whether the current state already matches the obligations.
func (p *Plan) Empty() bool {
	return len(p.Delegates) == 0 && len(p.Redelegates) == 0 && len(p.Undelegates) == 0
}
