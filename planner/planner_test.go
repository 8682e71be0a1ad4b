// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package planner

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitsongofficial/realign/aggregation"
	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/faults"
	"github.com/bitsongofficial/realign/obligation"
	"github.com/bitsongofficial/realign/op"
	"github.com/bitsongofficial/realign/stake"
	"github.com/bitsongofficial/realign/status"
	"github.com/bitsongofficial/realign/verifier"
)

const (
	denom          = "ubtsg"
	defaultAccount = stake.Account("treasury")
)

func h(account, target string, amount uint64) stake.Holding {
	return stake.Holding{Account: stake.Account(account), Target: stake.Target(target), Amount: bn.NewAmount(amount)}
}

func a(v uint64) bn.Amount { return bn.NewAmount(v) }

type fixture struct {
	ledger   *aggregation.Ledger
	table    *obligation.Table
	statuses status.Statuses
}

func newFixture(t *testing.T, holdings []stake.Holding, obligations map[string]uint64, sets status.Sets, excluded status.Set) fixture {
	ledger, err := aggregation.Build(holdings)
	require.NoError(t, err)
	table := obligation.NewTable()
	for target, amount := range obligations {
		require.NoError(t, table.Add(stake.Target(target), a(amount)))
	}
	return fixture{
		ledger:   ledger,
		table:    table,
		statuses: status.Classify(ledger.Targets(), excluded, sets, table),
	}
}

func newPlanner(t *testing.T, excluded status.Set) *Planner {
	p, err := New(Config{Denom: denom, DefaultAccount: defaultAccount, Excluded: excluded})
	require.NoError(t, err)
	return p
}

func (f fixture) plan(t *testing.T, p *Planner) *Plan {
	plan, err := p.Plan(f.ledger, f.table, f.statuses)
	require.NoError(t, err)
	return plan
}

func (f fixture) verify(t *testing.T, plan *Plan) *verifier.Report {
	report, err := verifier.Verify(f.ledger.Totals(), f.table, plan.Operations())
	require.NoError(t, err)
	return report
}

func TestSurplusFeedsNewTarget(t *testing.T) {
	f := newFixture(t,
		[]stake.Holding{h("acc1", "V1", 100), h("acc1", "V2", 50)},
		map[string]uint64{"V1": 50, "V2": 50, "V3": 50},
		status.Sets{}, nil)

	plan := f.plan(t, newPlanner(t, nil))

	assert.Equal(t, []op.Operation{op.Redelegate("acc1", "V1", "V3", a(50), denom)}, plan.Operations())
	for _, o := range plan.Operations() {
		assert.NotEqual(t, stake.Target("V2"), o.Src)
		assert.NotEqual(t, stake.Target("V2"), o.Dst)
	}
	assert.True(t, f.verify(t, plan).Passed())
}

func TestJailedTargetDrained(t *testing.T) {
	f := newFixture(t,
		[]stake.Holding{h("acc1", "V4", 30), h("acc1", "V1", 10)},
		map[string]uint64{"V1": 30, "V4": 0},
		status.Sets{Jailed: status.NewSet("V4")}, nil)
	assert.Equal(t, status.Jailed, f.statuses.Of("V4"))

	plan := f.plan(t, newPlanner(t, nil))

	drained := bn.Zero()
	for _, o := range plan.Operations() {
		assert.NotEqual(t, stake.Target("V4"), o.Dst)
		if o.Src == "V4" {
			drained, _ = drained.Add(o.Amount)
		}
	}
	assert.Equal(t, a(30), drained)
	assert.Equal(t, []op.Operation{op.Redelegate("acc1", "V4", "V1", a(20), denom)}, plan.Redelegates)
	assert.Equal(t, []op.Operation{op.Undelegate("acc1", "V4", a(10), denom)}, plan.Undelegates)
	assert.Equal(t, []Removal{{Target: "V4", Status: status.Jailed, Amount: a(30)}}, plan.Removed)
	assert.Empty(t, plan.Forfeited)
	assert.True(t, f.verify(t, plan).Passed())
}

func TestTotalMismatchRefused(t *testing.T) {
	f := newFixture(t,
		[]stake.Holding{h("acc1", "V1", 100)},
		map[string]uint64{"V1": 500, "V2": 499},
		status.Sets{}, nil)

	p, err := New(Config{
		Denom:          denom,
		DefaultAccount: defaultAccount,
		Expected:       obligation.Expectation{Total: a(1000)},
	})
	require.NoError(t, err)

	plan, err := p.Plan(f.ledger, f.table, f.statuses)
	assert.Nil(t, plan)
	assert.True(t, errors.Is(err, faults.ErrTotalMismatch))
	assert.Equal(t, faults.ClassDataIntegrity, faults.ClassOf(err))

	p.cfg.Expected = obligation.Expectation{Total: a(999), Targets: 3}
	_, err = p.Plan(f.ledger, f.table, f.statuses)
	assert.True(t, errors.Is(err, faults.ErrTargetCountMismatch))
}

func TestSplitHolding(t *testing.T) {
	f := newFixture(t,
		[]stake.Holding{h("acc1", "V5", 80)},
		map[string]uint64{"V6": 30, "V7": 50},
		status.Sets{}, nil)

	plan := f.plan(t, newPlanner(t, nil))

	assert.Equal(t, []op.Operation{
		op.Redelegate("acc1", "V5", "V7", a(50), denom),
		op.Redelegate("acc1", "V5", "V6", a(30), denom),
	}, plan.Redelegates)
	assert.Empty(t, plan.Delegates)
	assert.Empty(t, plan.Undelegates)

	report := f.verify(t, plan)
	assert.True(t, report.Passed())
	assert.True(t, report.Final["V5"].IsZero())
}

func TestSplitSurplusOfEligibleTarget(t *testing.T) {
	f := newFixture(t,
		[]stake.Holding{h("acc1", "V5", 100)},
		map[string]uint64{"V5": 20, "V6": 30, "V7": 50},
		status.Sets{}, nil)

	plan := f.plan(t, newPlanner(t, nil))
	assert.Equal(t, []op.Operation{
		op.Redelegate("acc1", "V5", "V7", a(50), denom),
		op.Redelegate("acc1", "V5", "V6", a(30), denom),
	}, plan.Redelegates)
	assert.Empty(t, plan.Undelegates)
	assert.True(t, f.verify(t, plan).Passed())
}

func TestPoolBeforeSurplus(t *testing.T) {
	f := newFixture(t,
		[]stake.Holding{h("acc1", "V1", 100), h("acc2", "V9", 40)},
		map[string]uint64{"V1": 80, "V2": 50},
		status.Sets{Unbonded: status.NewSet("V9")}, nil)

	plan := f.plan(t, newPlanner(t, nil))
	assert.Equal(t, []op.Operation{
		op.Redelegate("acc2", "V9", "V2", a(40), denom),
		op.Redelegate("acc1", "V1", "V2", a(10), denom),
	}, plan.Redelegates)
	assert.Equal(t, []op.Operation{op.Undelegate("acc1", "V1", a(10), denom)}, plan.Undelegates)
	assert.True(t, f.verify(t, plan).Passed())
}

func TestPoolLargestFirstAndLeftover(t *testing.T) {
	f := newFixture(t,
		[]stake.Holding{h("acc1", "V9", 40), h("acc2", "V9", 60)},
		map[string]uint64{"V1": 70},
		status.Sets{Unbonding: status.NewSet("V9")}, nil)

	plan := f.plan(t, newPlanner(t, nil))
	assert.Equal(t, []op.Operation{
		op.Redelegate("acc2", "V9", "V1", a(60), denom),
		op.Redelegate("acc1", "V9", "V1", a(10), denom),
	}, plan.Redelegates)
	assert.Equal(t, []op.Operation{op.Undelegate("acc1", "V9", a(30), denom)}, plan.Undelegates)
	assert.True(t, f.verify(t, plan).Passed())
}

func TestDelegateFromDefaultAccount(t *testing.T) {
	f := newFixture(t,
		[]stake.Holding{h("acc1", "V1", 10)},
		map[string]uint64{"V1": 10, "V2": 100, "V3": 5},
		status.Sets{}, nil)

	plan := f.plan(t, newPlanner(t, nil))
	assert.Empty(t, plan.Redelegates)
	assert.Equal(t, []op.Operation{
		op.Delegate(defaultAccount, "V3", a(5), denom),
		op.Delegate(defaultAccount, "V2", a(100), denom),
	}, plan.Delegates, "delegates ascending")
	assert.True(t, f.verify(t, plan).Passed())
}

func TestSurplusUndelegatedLargestFirst(t *testing.T) {
	f := newFixture(t,
		[]stake.Holding{h("acc1", "V1", 70), h("acc2", "V1", 30)},
		map[string]uint64{"V1": 20},
		status.Sets{}, nil)

	plan := f.plan(t, newPlanner(t, nil))
	assert.Equal(t, []op.Operation{
		op.Undelegate("acc1", "V1", a(70), denom),
		op.Undelegate("acc2", "V1", a(10), denom),
	}, plan.Undelegates)
	assert.True(t, f.verify(t, plan).Passed())
}

func TestExcludedTargets(t *testing.T) {
	excluded := status.NewSet("V2")
	f := newFixture(t,
		[]stake.Holding{h("acc1", "V1", 50), h("acc1", "V2", 50)},
		map[string]uint64{"V1": 50, "V2": 25, "V3": 25},
		status.Sets{}, excluded)

	plan := f.plan(t, newPlanner(t, excluded))
	for _, o := range plan.Operations() {
		assert.NotEqual(t, stake.Target("V2"), o.Dst)
	}
	assert.Equal(t, []op.Operation{op.Redelegate("acc1", "V2", "V3", a(25), denom)}, plan.Redelegates)
	assert.Equal(t, []op.Operation{op.Undelegate("acc1", "V2", a(25), denom)}, plan.Undelegates)
	assert.Equal(t, []Removal{{Target: "V2", Status: status.Excluded, Amount: a(25)}}, plan.Forfeited)

	report := f.verify(t, plan)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, stake.Target("V2"), report.Discrepancies[0].Target)
}

func TestExcludedOverridesStatuses(t *testing.T) {
	f := newFixture(t,
		[]stake.Holding{h("acc1", "V2", 50)},
		map[string]uint64{"V1": 50, "V2": 50},
		status.Sets{}, nil)
	require.Equal(t, status.Eligible, f.statuses.Of("V2"))

	plan := f.plan(t, newPlanner(t, status.NewSet("V2")))
	assert.Equal(t, []op.Operation{op.Redelegate("acc1", "V2", "V1", a(50), denom)}, plan.Operations())
}

func TestNoObligationWithoutStatuses(t *testing.T) {
	ledger, err := aggregation.Build([]stake.Holding{h("acc1", "V1", 10), h("acc1", "V2", 10)})
	require.NoError(t, err)
	table, err := obligation.FromEntries([]obligation.Entry{{Target: "V1", Amount: a(20)}})
	require.NoError(t, err)

	plan, err := newPlanner(t, nil).Plan(ledger, table, nil)
	require.NoError(t, err)
	assert.Equal(t, []op.Operation{op.Redelegate("acc1", "V2", "V1", a(10), denom)}, plan.Operations())
	assert.Equal(t, status.NoObligationThisRound, plan.Removed[0].Status)
}

func TestInputsUntouched(t *testing.T) {
	f := newFixture(t,
		[]stake.Holding{h("acc1", "V1", 100), h("acc1", "V9", 30)},
		map[string]uint64{"V1": 10, "V2": 60},
		status.Sets{Jailed: status.NewSet("V9")}, nil)

	before := f.ledger.Totals()
	f.plan(t, newPlanner(t, nil))
	assert.Equal(t, before, f.ledger.Totals())
	assert.Equal(t, a(100), f.ledger.Get("V1").Holdings[0].Amount)
	assert.Equal(t, a(30), f.ledger.Get("V9").Holdings[0].Amount)
}

func TestEmptyPlan(t *testing.T) {
	f := newFixture(t,
		[]stake.Holding{h("acc1", "V1", 10)},
		map[string]uint64{"V1": 10},
		status.Sets{}, nil)
	plan := f.plan(t, newPlanner(t, nil))
	assert.True(t, plan.Empty())
	assert.Equal(t, 0, plan.Summary.Count())
}

func TestConfig(t *testing.T) {
	_, err := New(Config{DefaultAccount: defaultAccount})
	assert.True(t, errors.Is(err, faults.ErrInvalidConfig))
	assert.Equal(t, faults.ClassConfiguration, faults.ClassOf(err))

	_, err = New(Config{Denom: denom, DefaultAccount: " "})
	assert.True(t, errors.Is(err, faults.ErrInvalidConfig))

	var p Planner
	_, err = p.Plan(nil, nil, nil)
	assert.Equal(t, faults.ClassConfiguration, faults.ClassOf(err))
}

func TestBrokenInvariants(t *testing.T) {
	f := newFixture(t,
		[]stake.Holding{h("acc1", "V1", 100), h("acc2", "V2", 50)},
		map[string]uint64{"V1": 100},
		status.Sets{}, nil)
	r := &run{
		cfg:      newPlanner(t, nil).cfg,
		set:      f.ledger.Align(f.table),
		statuses: f.statuses,
	}

	err := r.emit(op.Redelegate("acc1", "V1", "V2", a(10), denom))
	assert.True(t, errors.Is(err, faults.ErrBrokenInvariant))
	assert.Equal(t, faults.ClassDataIntegrity, faults.ClassOf(err))

	err = r.emit(op.Delegate(defaultAccount, "V1", bn.Zero(), denom))
	assert.True(t, errors.Is(err, faults.ErrInvalidOperation))
	assert.Empty(t, r.ops)

	err = r.check()
	assert.True(t, errors.Is(err, faults.ErrBrokenInvariant))
	assert.Contains(t, err.Error(), "target V2 ends at 50, want 0")
}
