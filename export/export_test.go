// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitsongofficial/realign/aggregation"
	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/obligation"
	"github.com/bitsongofficial/realign/planner"
	"github.com/bitsongofficial/realign/stake"
	"github.com/bitsongofficial/realign/status"
	"github.com/bitsongofficial/realign/verifier"
)

func samplePlan(t *testing.T) (*planner.Plan, *aggregation.Ledger, *obligation.Table) {
	ledger, err := aggregation.Build([]stake.Holding{
		{Account: "acc1", Target: "V1", Amount: bn.NewAmount(100)},
		{Account: "acc1", Target: "V9", Amount: bn.NewAmount(40)},
	})
	require.NoError(t, err)
	table, err := obligation.FromEntries([]obligation.Entry{
		{Target: "V1", Amount: bn.NewAmount(60)},
		{Target: "V2", Amount: bn.NewAmount(100)},
	})
	require.NoError(t, err)

	p, err := planner.New(planner.Config{Denom: "ubtsg", DefaultAccount: "treasury"})
	require.NoError(t, err)
	plan, err := p.Plan(ledger, table, status.Classify(ledger.Targets(), nil, status.Sets{Jailed: status.NewSet("V9")}, table))
	require.NoError(t, err)
	return plan, ledger, table
}

func TestFromPlan(t *testing.T) {
	plan, _, _ := samplePlan(t)
	m := FromPlan(plan)

	assert.Equal(t, 2, m.Redelegations.Count)
	assert.Equal(t, bn.NewAmount(80), m.Redelegations.Total)
	assert.Equal(t, RedelegateMsg{
		DelegatorAddress:    "acc1",
		ValidatorSrcAddress: "V1",
		ValidatorDstAddress: "V2",
		Amount:              bn.NewAmount(40),
		Denom:               "ubtsg",
	}, m.Redelegations.Data[1])
	assert.Equal(t, []DelegateMsg{{DelegatorAddress: "treasury", ValidatorAddress: "V2", Amount: bn.NewAmount(20), Denom: "ubtsg"}}, m.Delegations.Data)
	assert.Empty(t, m.Undelegates.Data)
	assert.NotNil(t, m.Undelegates.Data, "empty sections encode as []")
	assert.Equal(t, plan.Summary, m.Summary())
}

func TestRoundTrip(t *testing.T) {
	plan, ledger, table := samplePlan(t)
	m := FromPlan(plan)
	m.Network = "main"
	m.Height = 42

	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, WriteFile(path, m))

	read, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, m, read)

	ops, err := read.Operations()
	require.NoError(t, err)
	assert.ElementsMatch(t, plan.Operations(), ops)

	report, err := verifier.Verify(ledger.Totals(), table, ops)
	require.NoError(t, err)
	assert.True(t, report.Passed())
}

func TestOperationsRejectsTamperedFile(t *testing.T) {
	plan, _, _ := samplePlan(t)
	m := FromPlan(plan)

	m.Delegations.Total = bn.NewAmount(1)
	_, err := m.Operations()
	assert.ErrorContains(t, err, "delegations: header says")

	m = FromPlan(plan)
	m.Redelegations.Data[0].Amount = bn.Zero()
	_, err = m.Operations()
	assert.ErrorContains(t, err, "zero amount")
}

func TestWriteFormat(t *testing.T) {
	plan, _, _ := samplePlan(t)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FromPlan(plan)))
	assert.Contains(t, buf.String(), `"validator_src_address": "V9"`)
	assert.Contains(t, buf.String(), `"undelegates": {`)
	assert.Contains(t, buf.String(), `"data": []`)
}
