// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pipeline strings the stages of a planning run together: collect the chain
// state, classify targets, plan, verify and export.
package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/bitsongofficial/realign/aggregation"
	"github.com/bitsongofficial/realign/archive"
	"github.com/bitsongofficial/realign/export"
	"github.com/bitsongofficial/realign/log"
	"github.com/bitsongofficial/realign/obligation"
	"github.com/bitsongofficial/realign/planner"
	"github.com/bitsongofficial/realign/source"
	"github.com/bitsongofficial/realign/stake"
	"github.com/bitsongofficial/realign/status"
	"github.com/bitsongofficial/realign/verifier"
)

var logger = log.WithContext("pkg", "pipeline")

type Options struct {
	Network  string
	Decimals uint8
	Accounts []stake.Account
	Planner  planner.Config
	Collect  source.CollectOptions
}

// State is the chain state a run starts from.
type State struct {
	Height int64
	Ledger *aggregation.Ledger
	Sets   status.Sets
}

// Result is everything a run produces.
type Result struct {
	State    *State
	Statuses status.Statuses
	Plan     *planner.Plan
	Report   *verifier.Report
	Messages *export.Messages
}

type Pipeline struct {
	src     source.Source
	opts    Options
	planner *planner.Planner
}

func New(src source.Source, opts Options) (*Pipeline, error) {
	if len(opts.Accounts) == 0 {
		return nil, errors.New("no custodial accounts")
	}
	p, err := planner.New(opts.Planner)
	if err != nil {
		return nil, err
	}
	return &Pipeline{src: src, opts: opts, planner: p}, nil
}

// Source returns the source the pipeline reads from.
func (p *Pipeline) Source() source.Source {
	return p.src
}

func (p *Pipeline) Options() Options {
	return p.opts
}

// State fetches the current holdings of every custodial account and the validator
// statuses at the latest height.
func (p *Pipeline) State(ctx context.Context) (*State, error) {
	if r, ok := p.src.(source.Refresher); ok {
		r.Refresh()
	}
	height, err := p.src.LatestHeight(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "latest height")
	}
	holdings, err := source.Collect(ctx, p.src, p.opts.Accounts, p.opts.Collect)
	if err != nil {
		return nil, err
	}
	ledger, err := aggregation.Build(holdings)
	if err != nil {
		return nil, err
	}
	sets, err := source.Statuses(ctx, p.src, height)
	if err != nil {
		return nil, err
	}
	return &State{Height: height, Ledger: ledger, Sets: sets}, nil
}

// Classify assigns a status to every target held or obligated.
func (p *Pipeline) Classify(state *State, table *obligation.Table) status.Statuses {
	return status.Classify(state.Ledger.Targets(), p.opts.Planner.Excluded, state.Sets, table)
}

// Run plans the move from the current state to table and verifies the result.
func (p *Pipeline) Run(ctx context.Context, table *obligation.Table) (*Result, error) {
	state, err := p.State(ctx)
	if err != nil {
		return nil, err
	}
	return p.RunState(state, table)
}

// RunState is Run on an already fetched state.
func (p *Pipeline) RunState(state *State, table *obligation.Table) (*Result, error) {
	logger.Debug("delegation tracking",
		"height", state.Height,
		"current", state.Ledger.Total().Decimal(p.opts.Decimals),
		"obligated", table.Total().Decimal(p.opts.Decimals),
		"holdings", state.Ledger.Len(),
		"obligations", table.Len(),
	)

	statuses := p.Classify(state, table)
	plan, err := p.planner.Plan(state.Ledger, table, statuses)
	if err != nil {
		return nil, errors.WithMessage(err, "plan")
	}
	report, err := verifier.Verify(state.Ledger.Totals(), table, plan.Operations())
	if err != nil {
		return nil, errors.WithMessage(err, "verify plan")
	}

	messages := export.FromPlan(plan)
	messages.Network = p.opts.Network
	messages.Height = state.Height
	return &Result{
		State:    state,
		Statuses: statuses,
		Plan:     plan,
		Report:   report,
		Messages: messages,
	}, nil
}

// Verify replays an exported message file against the current state.
func (p *Pipeline) Verify(ctx context.Context, table *obligation.Table, messages *export.Messages) (*verifier.Report, error) {
	ops, err := messages.Operations()
	if err != nil {
		return nil, err
	}
	state, err := p.State(ctx)
	if err != nil {
		return nil, err
	}
	if messages.Height != 0 && messages.Height != state.Height {
		logger.Warn("export was planned at another height", "planned", messages.Height, "current", state.Height)
	}
	return verifier.Verify(state.Ledger.Totals(), table, ops)
}

// Record stores r in a. The run ID is returned.
func (p *Pipeline) Record(ctx context.Context, a *archive.Archive, r *Result) (string, error) {
	run := &archive.Run{
		CreatedAt:      time.Now(),
		Network:        p.opts.Network,
		Height:         r.State.Height,
		Summary:        r.Plan.Summary,
		CurrentTotal:   r.Plan.CurrentTotal,
		ObligatedTotal: r.Plan.ObligatedTotal,
		Passed:         r.Report.Passed(),
	}
	id, err := a.Save(ctx, run, r.Messages)
	if err != nil {
		return "", errors.WithMessage(err, "archive run")
	}
	logger.Info("run archived", "id", id)
	return id, nil
}
