// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/bitsongofficial/realign/archive"
	"github.com/bitsongofficial/realign/export"
	"github.com/bitsongofficial/realign/faults"
)

func requireArchive(ctx *cli.Context) (*archive.Archive, error) {
	cfg, _, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	a, err := openArchive(cfg)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, errors.Wrap(faults.ErrInvalidConfig, "no archive configured")
	}
	return a, nil
}

func historyAction(ctx *cli.Context) error {
	initLogger(ctx)

	a, err := requireArchive(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	runs, err := a.Runs(context.Background(), ctx.Int(limitFlag.Name))
	if err != nil {
		return err
	}
	printRuns(os.Stdout, runs)
	return nil
}

func showAction(ctx *cli.Context) error {
	initLogger(ctx)

	id := ctx.Args().First()
	if id == "" {
		return errors.New("missing run id")
	}
	a, err := requireArchive(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	run, err := a.Get(context.Background(), id)
	if err != nil {
		return err
	}
	messages, err := a.Messages(context.Background(), id)
	if err != nil {
		return err
	}
	logger.Info("archived run", "id", run.ID, "network", run.Network, "height", run.Height, "passed", run.Passed)
	return export.Write(os.Stdout, messages)
}
