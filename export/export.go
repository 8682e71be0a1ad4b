// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package export writes plans as the message file handed to the signing and broadcast tooling.
package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/op"
	"github.com/bitsongofficial/realign/planner"
	"github.com/bitsongofficial/realign/stake"
)

// DefaultFile is the conventional export file name.
const DefaultFile = "delegation_messages.json"

type RedelegateMsg struct {
	DelegatorAddress    stake.Account `json:"delegator_address"`
	ValidatorSrcAddress stake.Target  `json:"validator_src_address"`
	ValidatorDstAddress stake.Target  `json:"validator_dst_address"`
	Amount              bn.Amount     `json:"amount"`
	Denom               string        `json:"denom"`
}

// DelegateMsg is used for both delegations and undelegations.
type DelegateMsg struct {
	DelegatorAddress stake.Account `json:"delegator_address"`
	ValidatorAddress stake.Target  `json:"validator_address"`
	Amount           bn.Amount     `json:"amount"`
	Denom            string        `json:"denom"`
}

// Section is the messages of one kind with their count and total.
type Section[T any] struct {
	Data  []T       `json:"data"`
	Count int       `json:"count"`
	Total bn.Amount `json:"total"`
}

type Messages struct {
	Network       string                 `json:"network,omitempty"`
	Height        int64                  `json:"height,omitempty"`
	Redelegations Section[RedelegateMsg] `json:"redelegations"`
	Delegations   Section[DelegateMsg]   `json:"delegations"`
	Undelegates   Section[DelegateMsg]   `json:"undelegates"`
}

// FromPlan converts a plan, keeping its report ordering.
func FromPlan(plan *planner.Plan) *Messages {
	m := &Messages{
		Redelegations: Section[RedelegateMsg]{
			Data:  make([]RedelegateMsg, 0, len(plan.Redelegates)),
			Count: plan.Summary.Redelegates.Count,
			Total: plan.Summary.Redelegates.Amount,
		},
		Delegations: Section[DelegateMsg]{
			Data:  make([]DelegateMsg, 0, len(plan.Delegates)),
			Count: plan.Summary.Delegates.Count,
			Total: plan.Summary.Delegates.Amount,
		},
		Undelegates: Section[DelegateMsg]{
			Data:  make([]DelegateMsg, 0, len(plan.Undelegates)),
			Count: plan.Summary.Undelegates.Count,
			Total: plan.Summary.Undelegates.Amount,
		},
	}
	for _, o := range plan.Redelegates {
		m.Redelegations.Data = append(m.Redelegations.Data, RedelegateMsg{
			DelegatorAddress:    o.Account,
			ValidatorSrcAddress: o.Src,
			ValidatorDstAddress: o.Dst,
			Amount:              o.Amount,
			Denom:               o.Denom,
		})
	}
	for _, o := range plan.Delegates {
		m.Delegations.Data = append(m.Delegations.Data, DelegateMsg{
			DelegatorAddress: o.Account,
			ValidatorAddress: o.Dst,
			Amount:           o.Amount,
			Denom:            o.Denom,
		})
	}
	for _, o := range plan.Undelegates {
		m.Undelegates.Data = append(m.Undelegates.Data, DelegateMsg{
			DelegatorAddress: o.Account,
			ValidatorAddress: o.Src,
			Amount:           o.Amount,
			Denom:            o.Denom,
		})
	}
	return m
}

// Operations converts the messages back, validating each one and the section totals.
func (m *Messages) Operations() ([]op.Operation, error) {
	var ops []op.Operation
	for _, r := range m.Redelegations.Data {
		ops = append(ops, op.Redelegate(r.DelegatorAddress, r.ValidatorSrcAddress, r.ValidatorDstAddress, r.Amount, r.Denom))
	}
	for _, d := range m.Delegations.Data {
		ops = append(ops, op.Delegate(d.DelegatorAddress, d.ValidatorAddress, d.Amount, d.Denom))
	}
	for _, u := range m.Undelegates.Data {
		ops = append(ops, op.Undelegate(u.DelegatorAddress, u.ValidatorAddress, u.Amount, u.Denom))
	}
	for i, o := range ops {
		if err := o.Validate(); err != nil {
			return nil, errors.WithMessagef(err, "message %d", i)
		}
	}

	summary, err := op.Summarize(ops)
	if err != nil {
		return nil, err
	}
	for _, c := range []struct {
		name  string
		count int
		total bn.Amount
		got   op.Totals
	}{
		{"redelegations", m.Redelegations.Count, m.Redelegations.Total, summary.Redelegates},
		{"delegations", m.Delegations.Count, m.Delegations.Total, summary.Delegates},
		{"undelegates", m.Undelegates.Count, m.Undelegates.Total, summary.Undelegates},
	} {
		if c.count != c.got.Count || c.total.Cmp(c.got.Amount) != 0 {
			return nil, errors.Errorf("%s: header says %d totalling %s, data has %d totalling %s",
				c.name, c.count, c.total, c.got.Count, c.got.Amount)
		}
	}
	return ops, nil
}

// Summary returns the counts and totals the section headers declare.
func (m *Messages) Summary() op.Summary {
	return op.Summary{
		Delegates:   op.Totals{Count: m.Delegations.Count, Amount: m.Delegations.Total},
		Redelegates: op.Totals{Count: m.Redelegations.Count, Amount: m.Redelegations.Total},
		Undelegates: op.Totals{Count: m.Undelegates.Count, Amount: m.Undelegates.Total},
	}
}

// Write encodes m as indented JSON.
func Write(w io.Writer, m *Messages) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// WriteFile writes m to path.
func WriteFile(path string, m *Messages) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create export")
	}
	if err := Write(f, m); err != nil {
		f.Close()
		return errors.Wrap(err, "write export")
	}
	return f.Close()
}

// Read decodes messages from r.
func Read(r io.Reader) (*Messages, error) {
	var m Messages
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "decode export")
	}
	return &m, nil
}

// ReadFile reads messages from path.
func ReadFile(path string) (*Messages, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open export")
	}
	defer f.Close()
	return Read(f)
}
