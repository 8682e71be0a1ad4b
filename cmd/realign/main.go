// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/bitsongofficial/realign/log"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "realign")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	return &cli.App{
		Version: fullVersion(),
		Name:    "realign",
		Usage:   "Plans the delegations that align custodial stake with its obligations",
		Commands: []cli.Command{
			{
				Name:   "plan",
				Usage:  "plan, verify and export the operations reaching the obligations",
				Flags:  withFlags(commonFlags, obligationFlags, []cli.Flag{outputFlag, archiveFlag}),
				Action: planAction,
			},
			{
				Name:   "overview",
				Usage:  "print the custodial stake per validator and per account",
				Flags:  commonFlags,
				Action: overviewAction,
			},
			{
				Name:   "verify",
				Usage:  "replay exported messages on the current state and compare with the obligations",
				Flags:  withFlags(commonFlags, obligationFlags, []cli.Flag{exportFlag}),
				Action: verifyAction,
			},
			{
				Name:  "serve",
				Usage: "serve the overview, plan previews and archived runs over HTTP",
				Flags: withFlags(commonFlags, obligationFlags, []cli.Flag{
					archiveFlag,
					apiAddrFlag,
					apiCorsFlag,
					apiSlowQueriesFlag,
					apiLogsFlag,
					enableMetricsFlag,
					metricsAddrFlag,
				}),
				Action: serveAction,
			},
			{
				Name:   "history",
				Usage:  "list archived runs",
				Flags:  []cli.Flag{configFlag, archiveFlag, limitFlag, verbosityFlag, jsonLogsFlag},
				Action: historyAction,
			},
			{
				Name:      "show",
				Usage:     "print the messages exported by an archived run",
				ArgsUsage: "<run id>",
				Flags:     []cli.Flag{configFlag, archiveFlag, verbosityFlag, jsonLogsFlag},
				Action:    showAction,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
