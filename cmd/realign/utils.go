// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/bitsongofficial/realign/archive"
	"github.com/bitsongofficial/realign/config"
	"github.com/bitsongofficial/realign/faults"
	"github.com/bitsongofficial/realign/lcd"
	"github.com/bitsongofficial/realign/log"
	"github.com/bitsongofficial/realign/obligation"
	"github.com/bitsongofficial/realign/pipeline"
	"github.com/bitsongofficial/realign/source"
	"github.com/bitsongofficial/realign/stake"
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func initLogger(ctx *cli.Context) *slog.LevelVar {
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(ctx.Int(verbosityFlag.Name)))

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stdout, &level)
	} else {
		handler = log.NewTerminalHandlerWithLevel(os.Stdout, &level, isTerminal(os.Stdout))
	}
	log.SetDefault(log.NewLogger(handler))
	return &level
}

// printError writes err followed by each of its causes.
func printError(w io.Writer, err error) {
	chain := faults.Chain(err)
	if len(chain) == 0 {
		return
	}
	if class := faults.ClassOf(err); class != faults.ClassUnknown {
		fmt.Fprintf(w, "%s: %s\n", class, chain[0])
	} else {
		fmt.Fprintf(w, "Error: %s\n", chain[0])
	}
	for _, cause := range chain[1:] {
		fmt.Fprintf(w, "  because: %s\n", cause)
	}
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

// loadConfig reads the configuration file, if any, and selects the network.
func loadConfig(ctx *cli.Context) (*config.Config, config.Network, error) {
	cfg := config.Default()
	if path := ctx.String(configFlag.Name); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, config.Network{}, err
		}
	}
	if ctx.IsSet(archiveFlag.Name) {
		cfg.Archive = ctx.String(archiveFlag.Name)
	}
	if ctx.IsSet(outputFlag.Name) {
		cfg.Output = ctx.String(outputFlag.Name)
	}
	if ctx.IsSet(obligationsFlag.Name) {
		cfg.Obligations.Path = ctx.String(obligationsFlag.Name)
	}
	if ctx.IsSet(hasHeaderFlag.Name) {
		cfg.Obligations.HasHeader = ctx.Bool(hasHeaderFlag.Name)
	}
	network, err := cfg.Network(ctx.String(networkFlag.Name))
	if err != nil {
		return nil, config.Network{}, err
	}
	return cfg, network, nil
}

func newSource(ctx *cli.Context, cfg *config.Config, network config.Network) (source.Source, error) {
	if path := ctx.String(snapshotFlag.Name); path != "" {
		logger.Info("reading chain state from snapshot", "path", path)
		return source.LoadSnapshot(path)
	}
	client := lcd.New(network.LCD).WithPageLimit(cfg.PageLimit).WithMaxPages(cfg.MaxPages)
	return source.NewLCD(client, network.Denom), nil
}

// newPipeline builds the pipeline of a command. With progress set, a progress bar
// counts the fetched holdings when stdout is a terminal; the returned func stops it.
func newPipeline(ctx *cli.Context, cfg *config.Config, network config.Network, progress bool) (*pipeline.Pipeline, func(), error) {
	if len(cfg.Accounts) == 0 {
		return nil, nil, errors.Wrap(faults.ErrInvalidConfig, "no custodial accounts configured")
	}
	src, err := newSource(ctx, cfg, network)
	if err != nil {
		return nil, nil, err
	}

	opts := pipeline.Options{
		Network:  network.Name,
		Decimals: network.Decimals,
		Accounts: cfg.Accounts,
		Planner:  cfg.Planner(network),
		Collect:  source.CollectOptions{MaxPages: cfg.MaxPages},
	}
	done := func() {}
	if progress && isTerminal(os.Stdout) {
		bar := pb.New(0).Prefix("holdings ").SetMaxWidth(90)
		bar.ShowSpeed = false
		bar.ShowTimeLeft = false
		opts.Collect.OnPage = func(_ stake.Account, _ int, holdings int) {
			bar.Add(holdings)
		}
		bar.Start()
		done = func() {
			bar.Finish()
		}
	}

	p, err := pipeline.New(src, opts)
	if err != nil {
		done()
		return nil, nil, err
	}
	return p, done, nil
}

// loadTable reads the obligations file, reporting every skipped record.
func loadTable(cfg *config.Config, network config.Network) (*obligation.Table, error) {
	res, err := obligation.LoadFile(cfg.Obligations.Path, obligation.Options{
		HasHeader:    cfg.Obligations.HasHeader,
		TargetPrefix: network.TargetPrefix,
	})
	if err != nil {
		return nil, err
	}
	for _, skipped := range res.Skipped {
		logger.Warn("obligation record skipped", "err", skipped)
	}
	logger.Info("obligations loaded",
		"path", cfg.Obligations.Path,
		"targets", res.Table.Len(),
		"entries", res.Table.Entries(),
		"total", network.Format(res.Total),
		"skipped", len(res.Skipped),
	)
	return res.Table, nil
}

// openArchive opens the configured archive, nil when archiving is disabled.
func openArchive(cfg *config.Config) (*archive.Archive, error) {
	if cfg.Archive == "" {
		return nil, nil
	}
	a, err := archive.New(cfg.Archive)
	if err != nil {
		return nil, errors.WithMessagef(err, "open archive %s", cfg.Archive)
	}
	logger.Debug("archive opened", "path", a.Path(), "sqlite", a.DriverVersion())
	return a, nil
}
