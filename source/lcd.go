// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package source

import (
	"context"

	"github.com/pkg/errors"

	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/lcd"
	"github.com/bitsongofficial/realign/stake"
	"github.com/bitsongofficial/realign/status"
)

// LCD reads the chain through its REST interface.
type LCD struct {
	client *lcd.Client
	denom  string
}

// NewLCD returns a Source backed by client. Holdings in any other denom are ignored.
func NewLCD(client *lcd.Client, denom string) *LCD {
	return &LCD{client: client, denom: denom}
}

// Refresh forgets cached validator sets so the next run sees current statuses.
func (l *LCD) Refresh() {
	l.client.ResetCache()
}

func (l *LCD) Delegations(ctx context.Context, account stake.Account, pageKey string) (Page, error) {
	res, err := l.client.Delegations(ctx, string(account), pageKey)
	if err != nil {
		return Page{}, err
	}
	page := Page{NextKey: res.Next()}
	for _, d := range res.DelegationResponses {
		if d.Balance.Denom != l.denom {
			continue
		}
		page.Holdings = append(page.Holdings, stake.Holding{
			Account: stake.Account(d.Delegation.DelegatorAddress),
			Target:  stake.Target(d.Delegation.ValidatorAddress),
			Amount:  d.Balance.Amount,
		})
	}
	return page, nil
}

func (l *LCD) Validators(ctx context.Context, kind status.Kind) ([]Validator, error) {
	vals, err := l.client.Validators(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := make([]Validator, 0, len(vals))
	for _, v := range vals {
		out = append(out, Validator{
			Target:  stake.Target(v.OperatorAddress),
			Moniker: v.Description.Moniker,
			Status:  v.Status,
			Jailed:  v.Jailed,
		})
	}
	return out, nil
}

func (l *LCD) Jailed(ctx context.Context, height int64) (status.Set, error) {
	info, err := l.client.HistoricalInfo(ctx, height)
	if errors.Is(err, lcd.ErrNotFound) {
		return nil, errors.Wrap(ErrNoHistory, err.Error())
	}
	if err != nil {
		return nil, err
	}
	jailed := status.NewSet()
	for _, v := range info.Valset {
		if v.Jailed {
			jailed[stake.Target(v.OperatorAddress)] = struct{}{}
		}
	}
	return jailed, nil
}

func (l *LCD) LatestHeight(ctx context.Context) (int64, error) {
	return l.client.LatestHeight(ctx)
}

func (l *LCD) Balance(ctx context.Context, account stake.Account, denom string) (bn.Amount, error) {
	return l.client.Balance(ctx, string(account), denom)
}

func (l *LCD) Rewards(ctx context.Context, account stake.Account, denom string) (map[stake.Target]bn.Amount, error) {
	res, err := l.client.Rewards(ctx, string(account))
	if err != nil {
		return nil, err
	}
	rewards := make(map[stake.Target]bn.Amount)
	for _, r := range res.Rewards {
		for _, coin := range r.Reward {
			if coin.Denom != denom {
				continue
			}
			amount, err := coin.Truncate()
			if err != nil {
				return nil, errors.Wrapf(err, "reward from %s", r.ValidatorAddress)
			}
			target := stake.Target(r.ValidatorAddress)
			if rewards[target], err = rewards[target].Add(amount); err != nil {
				return nil, err
			}
		}
	}
	return rewards, nil
}
