// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"sync/atomic"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/bitsongofficial/realign/api"
	"github.com/bitsongofficial/realign/metrics"
	"github.com/bitsongofficial/realign/obligation"
)

func serveAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)
	exitCtx := handleExitSignal()

	cfg, network, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	a, err := openArchive(cfg)
	if err != nil {
		return err
	}
	if a != nil {
		defer func() { logger.Info("closing archive..."); a.Close() }()
	}

	p, _, err := newPipeline(ctx, cfg, network, false)
	if err != nil {
		return err
	}
	// obligations are re-read on every preview so edits apply without a restart
	load := func() (*obligation.Table, error) {
		return loadTable(cfg, network)
	}

	var reqLogs atomic.Bool
	reqLogs.Store(ctx.Bool(apiLogsFlag.Name))
	handler := api.New(p, load, a, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		EnableReqLogger: &reqLogs,
		SlowQueries:     ctx.Duration(apiSlowQueriesFlag.Name),
		Log5xxErrors:    true,
		EnableMetrics:   metrics.Enabled(),
	})

	apiURL, stopAPI, err := startAPIServer(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); stopAPI() }()

	if metrics.Enabled() {
		metricsURL, stopMetrics, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping metrics server..."); stopMetrics() }()
		logger.Info("metrics server started", "url", metricsURL)
	}

	logger.Info("API server started", "url", apiURL, "network", network.Name, "accounts", len(cfg.Accounts))
	<-exitCtx.Done()
	return nil
}
