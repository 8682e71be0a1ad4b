// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stake holds the identifiers shared by every stage of a realignment run.
package stake

import (
	"slices"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/pkg/errors"

	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/faults"
)

// Account identifies a token holder that may currently be delegating.
type Account string

func (a Account) String() string { return string(a) }

// Target identifies a delegation destination, e.g. a validator operator address.
type Target string

func (t Target) String() string { return string(t) }

// Holding is the balance one account has delegated to one target.
type Holding struct {
	Account Account   `json:"account" yaml:"account"`
	Target  Target    `json:"target" yaml:"target"`
	Amount  bn.Amount `json:"amount" yaml:"amount"`
}

// Address payload lengths in bytes: account keys and module/contract addresses.
const (
	addressLen     = 20
	longAddressLen = 32
)

// ValidateAddress checks that s is a lowercase bech32 address carrying the given human
// readable prefix. An empty prefix only rejects blank strings and embedded whitespace.
func ValidateAddress(s, prefix string) error {
	if s == "" {
		return errors.Wrap(faults.ErrUnparseableAddress, "empty address")
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return errors.Wrapf(faults.ErrUnparseableAddress, "%q contains whitespace", s)
	}
	if prefix == "" {
		return nil
	}
	if s != strings.ToLower(s) {
		return errors.Wrapf(faults.ErrUnparseableAddress, "%q is not lowercase", s)
	}
	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return errors.Wrapf(faults.ErrUnparseableAddress, "%q: %v", s, err)
	}
	if hrp != prefix {
		return errors.Wrapf(faults.ErrUnparseableAddress, "%q has prefix %s, want %s", s, hrp, prefix)
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return errors.Wrapf(faults.ErrUnparseableAddress, "%q: %v", s, err)
	}
	if n := len(payload); n != addressLen && n != longAddressLen {
		return errors.Wrapf(faults.ErrUnparseableAddress, "%q holds %d bytes", s, n)
	}
	return nil
}

// SortTargets sorts targets ascending in place and returns the slice.
func SortTargets(targets []Target) []Target {
	slices.Sort(targets)
	return targets
}
