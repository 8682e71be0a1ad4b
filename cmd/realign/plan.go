// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/bitsongofficial/realign/export"
	"github.com/bitsongofficial/realign/overview"
)

func planAction(ctx *cli.Context) error {
	initLogger(ctx)
	exitCtx := handleExitSignal()

	cfg, network, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	table, err := loadTable(cfg, network)
	if err != nil {
		return err
	}
	// fail before touching the network when the table is off
	if err := cfg.Expected.Check(table); err != nil {
		return err
	}
	a, err := openArchive(cfg)
	if err != nil {
		return err
	}
	if a != nil {
		defer a.Close()
	}

	if excluded := cfg.ExcludedSet(); len(excluded) > 0 {
		logger.Info("excluded targets", "targets", excluded.Sorted())
	}

	p, done, err := newPipeline(ctx, cfg, network, true)
	if err != nil {
		return err
	}
	state, err := p.State(exitCtx)
	done()
	if err != nil {
		return errors.WithMessage(err, "fetch chain state")
	}
	logger.Info("chain state fetched",
		"height", state.Height,
		"holdings", state.Ledger.Len(),
		"total", network.Format(state.Ledger.Total()),
	)

	accounts, err := overview.Accounts(exitCtx, p.Source(), state.Ledger, cfg.Accounts, network.Denom, cfg.ExcludedSet())
	if err != nil {
		logger.Warn("account summary unavailable", "err", err)
	}
	for _, acc := range accounts {
		logger.Info("custodial account",
			"account", acc.Account,
			"balance", network.Format(acc.Balance),
			"delegated", network.Format(acc.Delegated),
			"delegations", acc.Count,
		)
	}

	r, err := p.RunState(state, table)
	if err != nil {
		return err
	}
	for s, n := range r.Statuses.Count() {
		logger.Debug("targets by status", "status", s, "count", n)
	}
	printStatuses(os.Stdout, r.Statuses)
	printSummary(os.Stdout, network, r.Plan)
	printReport(os.Stdout, network, r.Report)

	if err := export.WriteFile(cfg.Output, r.Messages); err != nil {
		return err
	}
	logger.Info("messages exported", "path", cfg.Output, "count", r.Plan.Summary.Count())

	if a != nil {
		if _, err := p.Record(exitCtx, a, r); err != nil {
			return err
		}
	}
	return nil
}
