// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/bitsongofficial/realign/export"
)

func verifyAction(ctx *cli.Context) error {
	initLogger(ctx)
	exitCtx := handleExitSignal()

	cfg, network, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	path := cfg.Output
	if ctx.IsSet(exportFlag.Name) {
		path = ctx.String(exportFlag.Name)
	}
	messages, err := export.ReadFile(path)
	if err != nil {
		return err
	}
	if messages.Network != "" && messages.Network != network.Name {
		logger.Warn("export was planned for another network", "export", messages.Network, "network", network.Name)
	}
	table, err := loadTable(cfg, network)
	if err != nil {
		return err
	}

	p, done, err := newPipeline(ctx, cfg, network, true)
	if err != nil {
		return err
	}
	report, err := p.Verify(exitCtx, table, messages)
	done()
	if err != nil {
		return err
	}
	printTotals(os.Stdout, network, messages.Summary())
	printReport(os.Stdout, network, report)
	return nil
}
