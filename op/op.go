// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package op defines the operations a plan is made of.
package op

import (
	"fmt"
	"slices"

	"github.com/pkg/errors"

	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/faults"
	"github.com/bitsongofficial/realign/stake"
)

type Kind uint8

const (
	KindDelegate Kind = iota + 1
	KindRedelegate
	KindUndelegate
)

var kindNames = map[Kind]string{
	KindDelegate:   "delegate",
	KindRedelegate: "redelegate",
	KindUndelegate: "undelegate",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, errors.Errorf("invalid operation kind %d", k)
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return errors.Errorf("invalid operation kind %q", text)
}

// Operation is one delegate, redelegate or undelegate instruction.
// Src is empty for delegates, Dst is empty for undelegates.
type Operation struct {
	Kind    Kind          `json:"kind"`
	Account stake.Account `json:"account"`
	Src     stake.Target  `json:"src,omitempty"`
	Dst     stake.Target  `json:"dst,omitempty"`
	Amount  bn.Amount     `json:"amount"`
	Denom   string        `json:"denom"`
}

func Delegate(account stake.Account, dst stake.Target, amount bn.Amount, denom string) Operation {
	return Operation{Kind: KindDelegate, Account: account, Dst: dst, Amount: amount, Denom: denom}
}

func Redelegate(account stake.Account, src, dst stake.Target, amount bn.Amount, denom string) Operation {
	return Operation{Kind: KindRedelegate, Account: account, Src: src, Dst: dst, Amount: amount, Denom: denom}
}

func Undelegate(account stake.Account, src stake.Target, amount bn.Amount, denom string) Operation {
	return Operation{Kind: KindUndelegate, Account: account, Src: src, Amount: amount, Denom: denom}
}

// Source returns the target the operation draws from.
func (o Operation) Source() (stake.Target, bool) {
	return o.Src, o.Kind == KindRedelegate || o.Kind == KindUndelegate
}

// Destination returns the target the operation adds to.
func (o Operation) Destination() (stake.Target, bool) {
	return o.Dst, o.Kind == KindDelegate || o.Kind == KindRedelegate
}

// Validate checks the operation is well formed.
func (o Operation) Validate() error {
	if o.Amount.IsZero() {
		return errors.Wrapf(faults.ErrInvalidOperation, "%v: zero amount", o)
	}
	if o.Account == "" {
		return errors.Wrapf(faults.ErrInvalidOperation, "%v: empty account", o)
	}
	if o.Denom == "" {
		return errors.Wrapf(faults.ErrInvalidOperation, "%v: empty denom", o)
	}
	switch o.Kind {
	case KindDelegate:
		if o.Dst == "" || o.Src != "" {
			return errors.Wrapf(faults.ErrInvalidOperation, "%v: delegate needs only a destination", o)
		}
	case KindUndelegate:
		if o.Src == "" || o.Dst != "" {
			return errors.Wrapf(faults.ErrInvalidOperation, "%v: undelegate needs only a source", o)
		}
	case KindRedelegate:
		if o.Src == "" || o.Dst == "" {
			return errors.Wrapf(faults.ErrInvalidOperation, "%v: redelegate needs a source and a destination", o)
		}
		if o.Src == o.Dst {
			return errors.Wrapf(faults.ErrInvalidOperation, "%v: redelegate to itself", o)
		}
	default:
		return errors.Wrapf(faults.ErrInvalidOperation, "kind %d", o.Kind)
	}
	return nil
}

func (o Operation) String() string {
	switch o.Kind {
	case KindDelegate:
		return fmt.Sprintf("delegate %s%s %s -> %s", o.Amount, o.Denom, o.Account, o.Dst)
	case KindUndelegate:
		return fmt.Sprintf("undelegate %s%s %s <- %s", o.Amount, o.Denom, o.Account, o.Src)
	default:
		return fmt.Sprintf("%s %s%s %s %s -> %s", o.Kind, o.Amount, o.Denom, o.Account, o.Src, o.Dst)
	}
}

// Split separates ops by kind, preserving order.
func Split(ops []Operation) (delegates, redelegates, undelegates []Operation) {
	for _, o := range ops {
		switch o.Kind {
		case KindDelegate:
			delegates = append(delegates, o)
		case KindRedelegate:
			redelegates = append(redelegates, o)
		case KindUndelegate:
			undelegates = append(undelegates, o)
		}
	}
	return
}

// SortAscending stable-sorts ops by amount, smallest first.
func SortAscending(ops []Operation) {
	slices.SortStableFunc(ops, func(a, b Operation) int {
		return a.Amount.Cmp(b.Amount)
	})
}

// SortDescending stable-sorts ops by amount, largest first.
func SortDescending(ops []Operation) {
	slices.SortStableFunc(ops, func(a, b Operation) int {
		return b.Amount.Cmp(a.Amount)
	})
}
