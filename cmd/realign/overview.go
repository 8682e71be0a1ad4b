// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/bitsongofficial/realign/overview"
)

func overviewAction(ctx *cli.Context) error {
	initLogger(ctx)
	exitCtx := handleExitSignal()

	cfg, network, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	p, done, err := newPipeline(ctx, cfg, network, true)
	if err != nil {
		return err
	}
	state, err := p.State(exitCtx)
	done()
	if err != nil {
		return err
	}

	o, err := overview.Build(exitCtx, p.Source(), state.Ledger, cfg.Accounts, network.Denom)
	if err != nil {
		return err
	}
	o.Height = state.Height
	accounts, err := overview.Accounts(exitCtx, p.Source(), state.Ledger, cfg.Accounts, network.Denom, cfg.ExcludedSet())
	if err != nil {
		return err
	}
	printOverview(os.Stdout, network, o, accounts)
	return nil
}
