// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"time"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:   "config",
		Usage:  "path to the YAML configuration file",
		EnvVar: "REALIGN_CONFIG",
	}
	networkFlag = cli.StringFlag{
		Name:   "network",
		Value:  "mainnet",
		Usage:  "network defined in the configuration",
		EnvVar: "REALIGN_NETWORK",
	}
	obligationsFlag = cli.StringFlag{
		Name:  "obligations",
		Usage: "CSV file listing the target of every delegation, overrides the configuration",
	}
	hasHeaderFlag = cli.BoolFlag{
		Name:  "has-header",
		Usage: "the obligations file starts with a header record",
	}
	outputFlag = cli.StringFlag{
		Name:  "output",
		Usage: "where to write the exported messages, overrides the configuration",
	}
	exportFlag = cli.StringFlag{
		Name:  "export",
		Usage: "exported messages to verify, defaults to the configured output",
	}
	archiveFlag = cli.StringFlag{
		Name:   "archive",
		Usage:  "sqlite file keeping past runs, overrides the configuration",
		EnvVar: "REALIGN_ARCHIVE",
	}
	snapshotFlag = cli.StringFlag{
		Name:  "snapshot",
		Usage: "read the chain state from a YAML snapshot instead of the LCD",
	}
	limitFlag = cli.IntFlag{
		Name:  "limit",
		Value: 20,
		Usage: "number of runs to list",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8670",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiSlowQueriesFlag = cli.DurationFlag{
		Name:  "api-slow-queries-threshold",
		Value: 5 * time.Second,
		Usage: "log API requests slower than this, 0 disables",
	}
	apiLogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "log every API request",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables the metrics server",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2113",
		Usage: "metrics service listening address",
	}
)

var (
	commonFlags = []cli.Flag{
		configFlag,
		networkFlag,
		snapshotFlag,
		verbosityFlag,
		jsonLogsFlag,
	}
	obligationFlags = []cli.Flag{
		obligationsFlag,
		hasHeaderFlag,
	}
)

func withFlags(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, g := range groups {
		flags = append(flags, g...)
	}
	return flags
}
