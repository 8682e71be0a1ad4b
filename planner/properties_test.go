// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package planner

import (
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitsongofficial/realign/aggregation"
	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/obligation"
	"github.com/bitsongofficial/realign/op"
	"github.com/bitsongofficial/realign/stake"
	"github.com/bitsongofficial/realign/status"
	"github.com/bitsongofficial/realign/verifier"
)

type randomHolding struct {
	Account uint8
	Target  uint8
	Amount  uint16
}

type randomObligation struct {
	Target uint8
	Amount uint16
}

type randomInput struct {
	Holdings    []randomHolding
	Obligations []randomObligation
	Unbonded    []uint8
	Unbonding   []uint8
	Jailed      []uint8
	Excluded    []uint8
}

func targetOf(v uint8) stake.Target { return stake.Target(fmt.Sprintf("V%02d", v%16)) }

func setOf(vs []uint8) status.Set {
	s := status.NewSet()
	for _, v := range vs {
		if v%4 == 0 { // keep most targets eligible
			s[targetOf(v/4)] = struct{}{}
		}
	}
	return s
}

func (in randomInput) fixture(t *testing.T) (fixture, status.Sets, status.Set) {
	holdings := make([]stake.Holding, 0, len(in.Holdings))
	for _, rh := range in.Holdings {
		holdings = append(holdings, stake.Holding{
			Account: stake.Account(fmt.Sprintf("acc%d", rh.Account%4)),
			Target:  targetOf(rh.Target),
			Amount:  bn.NewAmount(uint64(rh.Amount % 1000)),
		})
	}
	ledger, err := aggregation.Build(holdings)
	require.NoError(t, err)

	table := obligation.NewTable()
	for _, ro := range in.Obligations {
		require.NoError(t, table.Add(targetOf(ro.Target), bn.NewAmount(uint64(ro.Amount%1000))))
	}

	sets := status.Sets{
		Unbonded:  setOf(in.Unbonded),
		Unbonding: setOf(in.Unbonding),
		Jailed:    setOf(in.Jailed),
	}
	excluded := setOf(in.Excluded)
	return fixture{
		ledger:   ledger,
		table:    table,
		statuses: status.Classify(ledger.Targets(), excluded, sets, table),
	}, sets, excluded
}

func TestPlanProperties(t *testing.T) {
	for seed := int64(0); seed < 300; seed++ {
		t.Run(fmt.Sprint(seed), func(t *testing.T) {
			var in randomInput
			fuzz.NewWithSeed(seed).NilChance(0).NumElements(0, 24).Fuzz(&in)
			defer func() {
				if t.Failed() {
					t.Log(spew.Sdump(in))
				}
			}()

			f, sets, excluded := in.fixture(t)
			p := newPlanner(t, excluded)
			plan := f.plan(t, p)
			ops := plan.Operations()

			removable := func(target stake.Target) bool {
				return excluded.Has(target) || f.statuses.Of(target).Removable()
			}

			// conservation
			final, err := verifier.Replay(f.ledger.Totals(), ops)
			require.NoError(t, err)
			for target, amount := range final {
				if removable(target) {
					assert.True(t, amount.IsZero(), "removable %s ends at %s", target, amount)
				} else {
					assert.Equal(t, f.table.Get(target), amount, "target %s", target)
				}
			}
			for _, target := range f.table.Targets() {
				if !removable(target) {
					assert.Equal(t, f.table.Get(target), final[target], "target %s", target)
				}
			}

			// no-overdraw, exclusion, well formed
			original := make(map[stake.Holding]bn.Amount)
			for _, target := range f.ledger.Targets() {
				for _, hd := range f.ledger.Get(target).Holdings {
					key := stake.Holding{Account: hd.Account, Target: hd.Target}
					original[key], _ = original[key].Add(hd.Amount)
				}
			}
			drawn := make(map[stake.Holding]bn.Amount)
			for _, o := range ops {
				require.NoError(t, o.Validate())
				if dst, ok := o.Destination(); ok {
					assert.False(t, removable(dst), "%v targets removable %s", o, dst)
				}
				if o.Kind == op.KindDelegate {
					assert.Equal(t, defaultAccount, o.Account)
				}
				if src, ok := o.Source(); ok {
					assert.NotNil(t, f.ledger.Get(src), "%v draws from a target without holdings", o)
					key := stake.Holding{Account: o.Account, Target: src}
					drawn[key], err = drawn[key].Add(o.Amount)
					require.NoError(t, err)
				}
			}
			for key, amount := range drawn {
				assert.LessOrEqual(t, amount.Cmp(original[key]), 0, "%s overdrawn at %s", key.Account, key.Target)
			}

			// additivity: current + increase == obligated(eligible) + decrease
			obligated := bn.Zero()
			for _, target := range f.table.Targets() {
				if !removable(target) {
					obligated, err = obligated.Add(f.table.Get(target))
					require.NoError(t, err)
				}
			}
			lhs, err := f.ledger.Total().Add(plan.Summary.Increase())
			require.NoError(t, err)
			rhs, err := obligated.Add(plan.Summary.Decrease())
			require.NoError(t, err)
			assert.Equal(t, lhs, rhs)

			// only forfeited obligations show up as discrepancies
			report, err := verifier.Verify(f.ledger.Totals(), f.table, ops)
			require.NoError(t, err)
			assert.Len(t, report.Discrepancies, len(plan.Forfeited))
			assert.Empty(t, report.Unexpected)

			// idempotence
			var next []stake.Holding
			for target, amount := range final {
				next = append(next, stake.Holding{Account: "acc0", Target: target, Amount: amount})
			}
			ledger, err := aggregation.Build(next)
			require.NoError(t, err)
			again, err := p.Plan(ledger, f.table, status.Classify(ledger.Targets(), excluded, sets, f.table))
			require.NoError(t, err)
			assert.True(t, again.Empty(), "second run emitted %d operations", again.Summary.Count())
		})
	}
}
