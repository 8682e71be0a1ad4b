// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"math/big"

	"github.com/bitsongofficial/realign/archive"
	"github.com/bitsongofficial/realign/config"
	"github.com/bitsongofficial/realign/op"
	"github.com/bitsongofficial/realign/overview"
	"github.com/bitsongofficial/realign/planner"
	"github.com/bitsongofficial/realign/status"
	"github.com/bitsongofficial/realign/verifier"
)

// topDiscrepancies is how many discrepancies are printed after a failed verification.
const topDiscrepancies = 10

func printSummary(w io.Writer, network config.Network, plan *planner.Plan) {
	fmt.Fprintf(w, "current total:   %s\n", network.Format(plan.CurrentTotal))
	fmt.Fprintf(w, "obligated total: %s\n", network.Format(plan.ObligatedTotal))
	for _, r := range plan.Removed {
		fmt.Fprintf(w, "removing %s (%s): %s\n", r.Target, r.Status, network.Format(r.Amount))
	}
	for _, f := range plan.Forfeited {
		fmt.Fprintf(w, "WARNING obligation on %s (%s) cannot be honoured: %s\n", f.Target, f.Status, network.Format(f.Amount))
	}
	printTotals(w, network, plan.Summary)
}

// printStatuses lists every target that must end empty, with the reason.
func printStatuses(w io.Writer, statuses status.Statuses) {
	targets := statuses.Removable()
	if len(targets) == 0 {
		return
	}
	fmt.Fprintf(w, "removable targets: %d\n", len(targets))
	for _, t := range targets {
		fmt.Fprintf(w, "  %s %s\n", t, statuses.Reason(t))
	}
}

func printTotals(w io.Writer, network config.Network, s op.Summary) {
	fmt.Fprintf(w, "redelegations: %d totalling %s\n", s.Redelegates.Count, network.Format(s.Redelegates.Amount))
	fmt.Fprintf(w, "delegations:   %d totalling %s\n", s.Delegates.Count, network.Format(s.Delegates.Amount))
	fmt.Fprintf(w, "undelegations: %d totalling %s\n", s.Undelegates.Count, network.Format(s.Undelegates.Amount))
}

func printReport(w io.Writer, network config.Network, report *verifier.Report) {
	for _, u := range report.Unexpected {
		fmt.Fprintf(w, "WARNING %s keeps %s without obligation\n", u.Target, network.Format(u.Amount))
	}
	if report.Passed() {
		fmt.Fprintf(w, "verification passed: %s on every target as obligated\n", network.Format(report.TotalFinal))
		return
	}
	fmt.Fprintf(w, "verification FAILED: %d targets differ, final %s, obligated %s\n",
		len(report.Discrepancies), network.Format(report.TotalFinal), network.Format(report.TotalObligated))
	for _, d := range report.Top(topDiscrepancies) {
		sign := "+"
		if d.Diff.Sign() < 0 {
			sign = "-"
		}
		diff := new(big.Int).Abs(d.Diff)
		fmt.Fprintf(w, "  %s final %s obligated %s diff %s%s\n", d.Target, d.Final, d.Obligated, sign, diff)
	}
	if diff, err := report.JSONDiff(); err == nil && diff != "" {
		logger.Debug("verification diff\n" + diff)
	}
}

func printOverview(w io.Writer, network config.Network, o *overview.Overview, accounts []overview.Account) {
	fmt.Fprintf(w, "height %d\n", o.Height)
	for _, v := range o.Delegations {
		name := v.Moniker
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s %s %s: %s", v.Target, name, v.Status, network.Format(v.TotalAmount))
		if o.RewardsAvailable {
			fmt.Fprintf(w, " rewards %s", network.Format(v.TotalRewards))
		}
		fmt.Fprintln(w)
		for _, d := range v.Delegators {
			fmt.Fprintf(w, "  %s %s\n", d.Account, network.Format(d.Amount))
		}
	}
	fmt.Fprintf(w, "total %s", network.Format(o.TotalAmount))
	if o.RewardsAvailable {
		fmt.Fprintf(w, " rewards %s", network.Format(o.TotalRewards))
	}
	fmt.Fprintln(w)

	for _, a := range accounts {
		fmt.Fprintf(w, "account %s balance %s delegated %s in %d delegations\n",
			a.Account, network.Format(a.Balance), network.Format(a.Delegated), a.Count)
	}
}

func printRuns(w io.Writer, runs []*archive.Run) {
	for _, r := range runs {
		verdict := "passed"
		if !r.Passed {
			verdict = "FAILED"
		}
		fmt.Fprintf(w, "%s %s %s height %d ops %d %s\n",
			r.ID, r.CreatedAt.UTC().Format("2006-01-02 15:04:05"), r.Network, r.Height, r.Summary.Count(), verdict)
	}
}
