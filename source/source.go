// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package source gathers the complete current state a planning run needs.
package source

import (
	"context"

	"github.com/pkg/errors"

	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/log"
	"github.com/bitsongofficial/realign/stake"
	"github.com/bitsongofficial/realign/status"
)

var logger = log.WithContext("pkg", "source")

// ErrNoHistory is returned by Source.Jailed when the validator set at the requested
// height is not available.
var ErrNoHistory = errors.New("historical info not available")

// Page is one page of an account's holdings.
type Page struct {
	Holdings []stake.Holding
	// NextKey continues the listing, empty on the last page.
	NextKey string
}

// Validator describes a target as reported by the chain.
type Validator struct {
	Target  stake.Target `json:"address" yaml:"address"`
	Moniker string       `json:"name" yaml:"moniker"`
	Status  string       `json:"status" yaml:"status"`
	Jailed  bool         `json:"jailed" yaml:"jailed"`
}

// Source is the read side of the chain.
type Source interface {
	// Delegations returns one page of account's holdings.
	Delegations(ctx context.Context, account stake.Account, pageKey string) (Page, error)
	// Validators returns the validators with the given bond status, all when kind is empty.
	Validators(ctx context.Context, kind status.Kind) ([]Validator, error)
	// Jailed returns the validators jailed at height.
	Jailed(ctx context.Context, height int64) (status.Set, error)
	// LatestHeight returns the current chain height.
	LatestHeight(ctx context.Context) (int64, error)
	// Balance returns the liquid balance of account.
	Balance(ctx context.Context, account stake.Account, denom string) (bn.Amount, error)
	// Rewards returns the outstanding rewards of account per target.
	Rewards(ctx context.Context, account stake.Account, denom string) (map[stake.Target]bn.Amount, error)
}

// Refresher is implemented by sources that cache chain state between runs.
type Refresher interface {
	Refresh()
}

func targetsOf(vals []Validator) status.Set {
	s := status.NewSet()
	for _, v := range vals {
		s[v.Target] = struct{}{}
	}
	return s
}
