// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package overview reports what the custodial accounts have delegated, per validator
// and per account.
package overview

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bitsongofficial/realign/aggregation"
	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/log"
	"github.com/bitsongofficial/realign/source"
	"github.com/bitsongofficial/realign/stake"
	"github.com/bitsongofficial/realign/status"
)

var logger = log.WithContext("pkg", "overview")

// Delegator is one account's stake on a validator.
type Delegator struct {
	Account stake.Account `json:"address"`
	Amount  bn.Amount     `json:"amount"`
	Rewards bn.Amount     `json:"rewards"`
}

// Validator is the custodial stake on one validator.
type Validator struct {
	Target       stake.Target `json:"address"`
	Moniker      string       `json:"name"`
	Status       string       `json:"status"`
	Jailed       bool         `json:"jailed"`
	TotalAmount  bn.Amount    `json:"total_amount"`
	TotalRewards bn.Amount    `json:"total_rewards"`
	Delegators   []Delegator  `json:"delegators"`
}

// Account is one custodial account's position.
type Account struct {
	aggregation.AccountSummary
	Balance bn.Amount `json:"balance"`
}

type Overview struct {
	Height       int64     `json:"height,omitempty"`
	TotalAmount  bn.Amount `json:"total_amount"`
	TotalRewards bn.Amount `json:"total_rewards"`
	// RewardsAvailable is false when rewards could not be fetched for some account.
	RewardsAvailable bool        `json:"rewards_available"`
	Delegations      []Validator `json:"delegations"`
}

// Build assembles the per validator overview of ledger. Validators with neither stake
// nor rewards are left out; the rest are sorted by total amount, largest first.
// Rewards are best effort: a failing rewards query is logged and counted as zero.
func Build(ctx context.Context, src source.Source, ledger *aggregation.Ledger, accounts []stake.Account, denom string) (*Overview, error) {
	var (
		validators []source.Validator
		rewards    = make(map[stake.Account]map[stake.Target]bn.Amount, len(accounts))
		mu         sync.Mutex
		missing    bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		validators, err = src.Validators(gctx, "")
		return errors.WithMessage(err, "validators")
	})
	for _, account := range accounts {
		g.Go(func() error {
			r, err := src.Rewards(gctx, account, denom)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Warn("rewards unavailable", "account", account, "err", err)
				missing = true
				return nil
			}
			rewards[account] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	known := make(map[stake.Target]source.Validator, len(validators))
	for _, v := range validators {
		known[v.Target] = v
	}
	// holdings on targets the chain no longer lists are still reported
	targets := make(map[stake.Target]struct{})
	for _, v := range validators {
		targets[v.Target] = struct{}{}
	}
	for _, t := range ledger.Targets() {
		targets[t] = struct{}{}
	}
	for _, r := range rewards {
		for t := range r {
			targets[t] = struct{}{}
		}
	}

	o := &Overview{RewardsAvailable: !missing}
	for t := range targets {
		v, err := buildValidator(t, known[t], ledger.Get(t), rewards)
		if err != nil {
			return nil, errors.WithMessagef(err, "validator %s", t)
		}
		if v.TotalAmount.IsZero() && v.TotalRewards.IsZero() {
			continue
		}
		if o.TotalAmount, err = o.TotalAmount.Add(v.TotalAmount); err != nil {
			return nil, err
		}
		if o.TotalRewards, err = o.TotalRewards.Add(v.TotalRewards); err != nil {
			return nil, err
		}
		o.Delegations = append(o.Delegations, v)
	}
	slices.SortFunc(o.Delegations, func(a, b Validator) int {
		if c := b.TotalAmount.Cmp(a.TotalAmount); c != 0 {
			return c
		}
		return cmp.Compare(a.Target, b.Target)
	})
	return o, nil
}

func buildValidator(t stake.Target, info source.Validator, at *aggregation.AlignedTarget, rewards map[stake.Account]map[stake.Target]bn.Amount) (Validator, error) {
	v := Validator{
		Target:  t,
		Moniker: info.Moniker,
		Status:  info.Status,
		Jailed:  info.Jailed,
	}
	byAccount := make(map[stake.Account]*Delegator)
	delegator := func(a stake.Account) *Delegator {
		d, ok := byAccount[a]
		if !ok {
			d = &Delegator{Account: a}
			byAccount[a] = d
		}
		return d
	}

	var err error
	if at != nil {
		for _, h := range at.Holdings {
			d := delegator(h.Account)
			if d.Amount, err = d.Amount.Add(h.Amount); err != nil {
				return v, err
			}
		}
		v.TotalAmount = at.Current
	}
	for account, r := range rewards {
		amount, ok := r[t]
		if !ok || amount.IsZero() {
			continue
		}
		d := delegator(account)
		d.Rewards = amount
		if v.TotalRewards, err = v.TotalRewards.Add(amount); err != nil {
			return v, err
		}
	}

	for _, d := range byAccount {
		v.Delegators = append(v.Delegators, *d)
	}
	slices.SortFunc(v.Delegators, func(a, b Delegator) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Account, b.Account)
	})
	return v, nil
}

// Accounts reports every custodial account with its liquid balance and what it has
// delegated outside the excluded targets. Accounts without holdings are included.
func Accounts(ctx context.Context, src source.Source, ledger *aggregation.Ledger, accounts []stake.Account, denom string, excluded status.Set) ([]Account, error) {
	summaries := make(map[stake.Account]aggregation.AccountSummary, len(accounts))
	for _, s := range ledger.Accounts(excluded.Has) {
		summaries[s.Account] = s
	}

	result := make([]Account, len(accounts))
	g, ctx := errgroup.WithContext(ctx)
	for i, account := range accounts {
		g.Go(func() error {
			balance, err := src.Balance(ctx, account, denom)
			if err != nil {
				return errors.WithMessagef(err, "balance of %s", account)
			}
			s, ok := summaries[account]
			if !ok {
				s = aggregation.AccountSummary{Account: account}
			}
			result[i] = Account{AccountSummary: s, Balance: balance}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
