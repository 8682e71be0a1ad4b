// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitsongofficial/realign/archive"
	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/export"
	"github.com/bitsongofficial/realign/faults"
	"github.com/bitsongofficial/realign/obligation"
	"github.com/bitsongofficial/realign/overview"
	"github.com/bitsongofficial/realign/pipeline"
	"github.com/bitsongofficial/realign/planner"
	"github.com/bitsongofficial/realign/source"
	"github.com/bitsongofficial/realign/stake"
)

const snapshotYAML = `
height: 42
holdings:
  - {account: acc1, target: V1, amount: "100"}
  - {account: acc2, target: V2, amount: "50"}
validators:
  - {address: V1, moniker: one, status: BOND_STATUS_BONDED}
  - {address: V2, moniker: two, status: BOND_STATUS_BONDED}
balances:
  acc1: "7"
`

type fixture struct {
	ts       *httptest.Server
	pipeline *pipeline.Pipeline
	archive  *archive.Archive
	table    *obligation.Table
	loadErr  error
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, planner.Config{Denom: "ubtsg", DefaultAccount: "acc1"})
}

func newFixtureWith(t *testing.T, cfg planner.Config) *fixture {
	s, err := source.DecodeSnapshot(strings.NewReader(snapshotYAML))
	require.NoError(t, err)
	p, err := pipeline.New(s, pipeline.Options{
		Network:  "testnet",
		Accounts: []stake.Account{"acc1", "acc2"},
		Planner:  cfg,
	})
	require.NoError(t, err)
	a, err := archive.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	table, err := obligation.FromEntries([]obligation.Entry{
		{Target: "V1", Amount: bn.NewAmount(80)},
		{Target: "V2", Amount: bn.NewAmount(80)},
	})
	require.NoError(t, err)

	f := &fixture{pipeline: p, archive: a, table: table}
	load := func() (*obligation.Table, error) { return f.table, f.loadErr }
	f.ts = httptest.NewServer(New(p, load, a, Options{EnableMetrics: true}))
	t.Cleanup(f.ts.Close)
	return f
}

func (f *fixture) get(t *testing.T, path string, v any) int {
	res, err := http.Get(f.ts.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if res.StatusCode == http.StatusOK && v != nil {
		require.NoError(t, json.Unmarshal(body, v), string(body))
	}
	return res.StatusCode
}

func TestDelegations(t *testing.T) {
	f := newFixture(t)

	var o overview.Overview
	require.Equal(t, http.StatusOK, f.get(t, "/delegations", &o))
	assert.Equal(t, int64(42), o.Height)
	assert.Equal(t, bn.NewAmount(150), o.TotalAmount)
	require.Len(t, o.Delegations, 2)
	assert.Equal(t, "one", o.Delegations[0].Moniker)

	var accounts []overview.Account
	require.Equal(t, http.StatusOK, f.get(t, "/accounts", &accounts))
	require.Len(t, accounts, 2)
	assert.Equal(t, bn.NewAmount(7), accounts[0].Balance)
	assert.Equal(t, bn.NewAmount(100), accounts[0].Delegated)
}

func TestPlan(t *testing.T) {
	f := newFixture(t)

	var preview struct {
		Height int64 `json:"height"`
		Passed bool  `json:"passed"`
		Plan   struct {
			Summary struct {
				Delegates struct {
					Count  int       `json:"count"`
					Amount bn.Amount `json:"total"`
				} `json:"delegations"`
			} `json:"summary"`
		} `json:"plan"`
	}
	require.Equal(t, http.StatusOK, f.get(t, "/plan", &preview))
	assert.Equal(t, int64(42), preview.Height)
	assert.True(t, preview.Passed)
	assert.Equal(t, bn.NewAmount(10), preview.Plan.Summary.Delegates.Amount)

	var m export.Messages
	require.Equal(t, http.StatusOK, f.get(t, "/plan?format=messages", &m))
	assert.Equal(t, "testnet", m.Network)
	_, err := m.Operations()
	assert.NoError(t, err)

	f.loadErr = faults.ErrMalformedRecord
	assert.Equal(t, http.StatusInternalServerError, f.get(t, "/plan", nil))
}

func TestPlan_Mismatch(t *testing.T) {
	f := newFixtureWith(t, planner.Config{
		Denom:          "ubtsg",
		DefaultAccount: "acc1",
		Expected:       obligation.Expectation{Targets: 3},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, f.get(t, "/plan", nil))
}

func TestRuns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var runs []archive.Run
	require.Equal(t, http.StatusOK, f.get(t, "/runs", &runs))
	assert.Empty(t, runs)

	r, err := f.pipeline.Run(ctx, f.table)
	require.NoError(t, err)
	id, err := f.pipeline.Record(ctx, f.archive, r)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, f.get(t, "/runs?limit=5", &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)

	var run archive.Run
	require.Equal(t, http.StatusOK, f.get(t, "/runs/"+id, &run))
	assert.Equal(t, int64(42), run.Height)

	var m export.Messages
	require.Equal(t, http.StatusOK, f.get(t, "/runs/"+id+"/messages", &m))
	assert.Equal(t, r.Messages.Delegations.Total, m.Delegations.Total)

	assert.Equal(t, http.StatusNotFound, f.get(t, "/runs/nope", nil))
	assert.Equal(t, http.StatusNotFound, f.get(t, "/runs/0f8fad5b-d9cb-469f-a165-70867728950e", nil))
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/runs?limit=x", nil))
}
