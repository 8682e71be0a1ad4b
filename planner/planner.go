// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package planner computes the operations that move current holdings onto obligations.
//
// A run is a single deterministic greedy pass in four steps:
//  1. every removable target (excluded, unbonded, unbonding, jailed or without obligation)
//     puts all of its holdings into a pool;
//  2. every eligible target below its obligation is filled from the pool, then from the
//     surplus of other eligible targets, and finally by delegating from the default account;
//  3. every eligible target still above its obligation undelegates the excess;
//  4. whatever is left in the pool is undelegated.
//
// Sources are always consumed largest holding first.
package planner

import (
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/bitsongofficial/realign/aggregation"
	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/faults"
	"github.com/bitsongofficial/realign/log"
	"github.com/bitsongofficial/realign/obligation"
	"github.com/bitsongofficial/realign/op"
	"github.com/bitsongofficial/realign/stake"
	"github.com/bitsongofficial/realign/status"
)

var logger = log.WithContext("pkg", "planner")

// Config holds everything a run needs besides its inputs.
type Config struct {
	Denom string
	// DefaultAccount delegates whatever cannot be covered by redelegations.
	DefaultAccount stake.Account
	// Excluded targets never keep nor receive delegations, whatever their chain status.
	Excluded status.Set
	// Expected is checked against the obligation table before planning.
	Expected obligation.Expectation
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Denom) == "" {
		return errors.Wrap(faults.ErrInvalidConfig, "empty denom")
	}
	if strings.TrimSpace(string(c.DefaultAccount)) == "" {
		return errors.Wrap(faults.ErrInvalidConfig, "empty default account")
	}
	return nil
}

type Planner struct {
	cfg Config
}

func New(cfg Config) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Planner{cfg: cfg}, nil
}

// Plan computes the operations turning ledger into table. Inputs are never modified.
func (p *Planner) Plan(ledger *aggregation.Ledger, table *obligation.Table, statuses status.Statuses) (plan *Plan, err error) {
	start := time.Now()
	metricRuns().Add(1)
	defer func() {
		if err != nil {
			metricFailures().Add(1)
			return
		}
		metricDuration().Observe(time.Since(start).Milliseconds())
	}()

	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := p.cfg.Expected.Check(table); err != nil {
		return nil, err
	}

	r := &run{
		cfg:      p.cfg,
		set:      ledger.Align(table),
		statuses: statuses,
	}
	plan = &Plan{
		CurrentTotal:   ledger.Total(),
		ObligatedTotal: table.Total(),
	}

	pool := r.removeAll(plan)
	if err := r.fillDeficits(pool); err != nil {
		return nil, errors.WithMessage(err, "fill deficits")
	}
	if err := r.trimSurplus(); err != nil {
		return nil, errors.WithMessage(err, "trim surplus")
	}
	if err := r.release(pool); err != nil {
		return nil, errors.WithMessage(err, "release pool")
	}
	if err := r.check(); err != nil {
		return nil, err
	}

	if plan.Summary, err = op.Summarize(r.ops); err != nil {
		return nil, err
	}
	plan.Delegates, plan.Redelegates, plan.Undelegates = op.Split(r.ops)
	op.SortAscending(plan.Delegates)
	op.SortDescending(plan.Redelegates)
	op.SortDescending(plan.Undelegates)

	for kind, totals := range map[op.Kind]op.Totals{
		op.KindDelegate:   plan.Summary.Delegates,
		op.KindRedelegate: plan.Summary.Redelegates,
		op.KindUndelegate: plan.Summary.Undelegates,
	} {
		metricOperations().AddWithLabel(int64(totals.Count), map[string]string{"kind": kind.String()})
	}

	logger.Info("plan ready",
		"redelegations", plan.Summary.Redelegates.Count,
		"delegations", plan.Summary.Delegates.Count,
		"undelegations", plan.Summary.Undelegates.Count,
		"removed", len(plan.Removed),
		"forfeited", len(plan.Forfeited),
		"elapsed", time.Since(start),
	)
	return plan, nil
}

// run is the private state of one planning run.
type run struct {
	cfg      Config
	set      aggregation.Set
	statuses status.Statuses
	ops      []op.Operation
}

func (r *run) status(t stake.Target) status.Status {
	if r.cfg.Excluded.Has(t) {
		return status.Excluded
	}
	if s := r.statuses.Of(t); s.Removable() {
		return s
	}
	if at, ok := r.set[t]; !ok || at.Desired.IsZero() {
		return status.NoObligationThisRound
	}
	return status.Eligible
}

// removeAll pools the holdings of every removable target.
func (r *run) removeAll(plan *Plan) []*stake.Holding {
	var pool []*stake.Holding
	for _, t := range r.set.Targets() {
		at := r.set[t]
		st := r.status(t)
		if !st.Removable() {
			continue
		}
		if !at.Desired.IsZero() {
			plan.Forfeited = append(plan.Forfeited, Removal{Target: t, Status: st, Amount: at.Desired})
			logger.Warn("obligation forfeited", "target", t, "status", st, "obligation", at.Desired)
		}
		if at.Current.IsZero() {
			continue
		}
		plan.Removed = append(plan.Removed, Removal{Target: t, Status: st, Amount: at.Current})
		pool = append(pool, at.Holdings...)
		logger.Debug("removing target", "target", t, "status", st, "amount", at.Current, "holdings", len(at.Holdings))
	}
	aggregation.SortHoldings(pool)
	return pool
}

// donors returns the holdings of eligible targets above their obligation.
func (r *run) donors() []*stake.Holding {
	var donors []*stake.Holding
	for _, t := range r.set.Targets() {
		at := r.set[t]
		if r.status(t).Removable() || at.Surplus().IsZero() {
			continue
		}
		donors = append(donors, at.Holdings...)
	}
	return donors
}

func (r *run) surplus(t stake.Target) bn.Amount {
	return r.set[t].Surplus()
}

func (r *run) fillDeficits(pool []*stake.Holding) error {
	donors := r.donors()
	for _, t := range r.set.Targets() {
		at := r.set[t]
		if r.status(t).Removable() {
			continue
		}
		need := at.Deficit()
		if need.IsZero() {
			continue
		}
		logger.Debug("filling deficit", "target", t, "current", at.Current, "obligation", at.Desired, "deficit", need)

		var err error
		aggregation.SortHoldings(pool)
		if need, err = r.redelegate(pool, t, need, nil); err != nil {
			return err
		}
		aggregation.SortHoldings(donors)
		if need, err = r.redelegate(donors, t, need, r.surplus); err != nil {
			return err
		}
		if need.IsZero() {
			continue
		}
		if err := r.emit(op.Delegate(r.cfg.DefaultAccount, t, need, r.cfg.Denom)); err != nil {
			return err
		}
		if err := r.credit(t, need); err != nil {
			return err
		}
	}
	return nil
}

// redelegate moves up to need from sources, in order, into dst and returns what is still
// missing. When limit is set it caps what may leave each source target.
func (r *run) redelegate(sources []*stake.Holding, dst stake.Target, need bn.Amount, limit func(stake.Target) bn.Amount) (bn.Amount, error) {
	for _, h := range sources {
		if need.IsZero() {
			break
		}
		take := bn.Min(h.Amount, need)
		if limit != nil {
			take = bn.Min(take, limit(h.Target))
		}
		if take.IsZero() {
			continue
		}
		if err := r.emit(op.Redelegate(h.Account, h.Target, dst, take, r.cfg.Denom)); err != nil {
			return need, err
		}
		if err := r.draw(h, take); err != nil {
			return need, err
		}
		if err := r.credit(dst, take); err != nil {
			return need, err
		}
		var err error
		if need, err = need.Sub(take); err != nil {
			return need, err
		}
	}
	return need, nil
}

func (r *run) trimSurplus() error {
	for _, t := range r.set.Targets() {
		at := r.set[t]
		if r.status(t).Removable() {
			continue
		}
		excess := at.Surplus()
		if excess.IsZero() {
			continue
		}
		logger.Debug("trimming surplus", "target", t, "current", at.Current, "obligation", at.Desired, "surplus", excess)

		holdings := slices.Clone(at.Holdings)
		aggregation.SortHoldings(holdings)
		for _, h := range holdings {
			if excess.IsZero() {
				break
			}
			take := bn.Min(h.Amount, excess)
			if take.IsZero() {
				continue
			}
			if err := r.emit(op.Undelegate(h.Account, h.Target, take, r.cfg.Denom)); err != nil {
				return err
			}
			if err := r.draw(h, take); err != nil {
				return err
			}
			var err error
			if excess, err = excess.Sub(take); err != nil {
				return err
			}
		}
	}
	return nil
}

// release undelegates every pooled holding that no deficit consumed.
func (r *run) release(pool []*stake.Holding) error {
	aggregation.SortHoldings(pool)
	for _, h := range pool {
		if h.Amount.IsZero() {
			continue
		}
		amount := h.Amount
		if err := r.emit(op.Undelegate(h.Account, h.Target, amount, r.cfg.Denom)); err != nil {
			return err
		}
		if err := r.draw(h, amount); err != nil {
			return err
		}
	}
	return nil
}

// draw takes amount out of h and its target.
func (r *run) draw(h *stake.Holding, amount bn.Amount) error {
	rest, err := h.Amount.Sub(amount)
	if err != nil {
		return errors.Wrapf(err, "draw from %s at %s", h.Account, h.Target)
	}
	src := r.set[h.Target]
	current, err := src.Current.Sub(amount)
	if err != nil {
		return errors.Wrapf(err, "draw from %s", h.Target)
	}
	h.Amount = rest
	src.Current = current
	return nil
}

func (r *run) credit(t stake.Target, amount bn.Amount) error {
	dst := r.set[t]
	current, err := dst.Current.Add(amount)
	if err != nil {
		return errors.Wrapf(err, "credit %s", t)
	}
	dst.Current = current
	return nil
}

func (r *run) emit(o op.Operation) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if dst, ok := o.Destination(); ok {
		if st := r.status(dst); st.Removable() {
			return errors.Wrapf(faults.ErrBrokenInvariant, "%v: destination is %s", o, st)
		}
	}
	r.ops = append(r.ops, o)
	return nil
}

// check asserts every target ended where it should: removable targets empty, eligible
// targets exactly at their obligation.
func (r *run) check() error {
	for _, t := range r.set.Targets() {
		at := r.set[t]
		want := at.Desired
		if r.status(t).Removable() {
			want = bn.Zero()
		}
		if at.Current.Cmp(want) != 0 {
			return errors.Wrapf(faults.ErrBrokenInvariant, "target %s ends at %s, want %s", t, at.Current, want)
		}
	}
	return nil
}
