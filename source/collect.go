// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package source

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bitsongofficial/realign/faults"
	"github.com/bitsongofficial/realign/stake"
	"github.com/bitsongofficial/realign/status"
)

// DefaultMaxPages bounds the pages fetched per account.
const DefaultMaxPages = 1000

// CollectOptions tunes Collect.
type CollectOptions struct {
	// MaxPages per account, DefaultMaxPages when zero.
	MaxPages int
	// Concurrency is the number of accounts fetched at once, unlimited when zero.
	Concurrency int
	// OnPage is called after every page, possibly concurrently.
	OnPage func(account stake.Account, page int, holdings int)
}

// Collect fetches every holding of every account, exhausting pagination. The result is
// complete or an error is returned: a continuation key left when MaxPages is reached
// is ErrIncompletePage.
func Collect(ctx context.Context, src Source, accounts []stake.Account, opts CollectOptions) ([]stake.Holding, error) {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	results := make([][]stake.Holding, len(accounts))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, account := range accounts {
		g.Go(func() error {
			holdings, err := collectAccount(ctx, src, account, maxPages, opts.OnPage)
			if err != nil {
				return errors.WithMessagef(err, "collect %s", account)
			}
			results[i] = holdings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []stake.Holding
	for i, holdings := range results {
		logger.Debug("holdings collected", "account", accounts[i], "count", len(holdings))
		all = append(all, holdings...)
	}
	return all, nil
}

func collectAccount(ctx context.Context, src Source, account stake.Account, maxPages int, onPage func(stake.Account, int, int)) ([]stake.Holding, error) {
	var (
		holdings []stake.Holding
		key      string
	)
	for page := 1; ; page++ {
		if page > maxPages {
			return nil, errors.Wrapf(faults.ErrIncompletePage, "continuation key %q left after %d pages", key, maxPages)
		}
		p, err := src.Delegations(ctx, account, key)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, p.Holdings...)
		if onPage != nil {
			onPage(account, page, len(p.Holdings))
		}
		if p.NextKey == "" {
			return holdings, nil
		}
		if p.NextKey == key {
			return nil, errors.Wrapf(faults.ErrIncompletePage, "continuation key %q repeated", key)
		}
		key = p.NextKey
	}
}

// Statuses fetches the unbonded, unbonding and jailed sets concurrently. When the
// validator set at height is unavailable nobody is considered jailed and a warning is
// logged.
func Statuses(ctx context.Context, src Source, height int64) (status.Sets, error) {
	var sets status.Sets
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vals, err := src.Validators(ctx, status.KindUnbonded)
		if err != nil {
			return errors.WithMessage(err, "unbonded validators")
		}
		sets.Unbonded = targetsOf(vals)
		return nil
	})
	g.Go(func() error {
		vals, err := src.Validators(ctx, status.KindUnbonding)
		if err != nil {
			return errors.WithMessage(err, "unbonding validators")
		}
		sets.Unbonding = targetsOf(vals)
		return nil
	})
	g.Go(func() error {
		jailed, err := src.Jailed(ctx, height)
		if errors.Is(err, ErrNoHistory) {
			logger.Warn("no historical info, assuming no jailed validators", "height", height)
			sets.Jailed = status.NewSet()
			return nil
		}
		if err != nil {
			return errors.WithMessagef(err, "jailed validators at %d", height)
		}
		sets.Jailed = jailed
		return nil
	})
	if err := g.Wait(); err != nil {
		return status.Sets{}, err
	}
	logger.Info("validator statuses",
		"height", height,
		"unbonded", len(sets.Unbonded),
		"unbonding", len(sets.Unbonding),
		"jailed", len(sets.Jailed),
	)
	return sets, nil
}
