// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package source

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/stake"
	"github.com/bitsongofficial/realign/status"
)

// Snapshot is a recorded chain state, used for offline and reproducible runs.
type Snapshot struct {
	Height        int64                                        `yaml:"height"`
	Holdings      []stake.Holding                              `yaml:"holdings"`
	ValidatorSet  []Validator                                  `yaml:"validators"`
	JailedTargets []stake.Target                               `yaml:"jailed"`
	Balances      map[stake.Account]bn.Amount                  `yaml:"balances"`
	Outstanding   map[stake.Account]map[stake.Target]bn.Amount `yaml:"rewards"`
	// HasHistory false makes Jailed report ErrNoHistory.
	HasHistory bool `yaml:"has_history"`
	// PageSize splits holdings into pages, 0 returns everything at once.
	PageSize int `yaml:"page_size"`
}

// LoadSnapshot reads a YAML snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open snapshot")
	}
	defer f.Close()
	return DecodeSnapshot(f)
}

// DecodeSnapshot reads a YAML snapshot.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return &s, nil
}

// Write encodes the snapshot as YAML.
func (s *Snapshot) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

func (s *Snapshot) Delegations(_ context.Context, account stake.Account, pageKey string) (Page, error) {
	var mine []stake.Holding
	for _, h := range s.Holdings {
		if h.Account == account {
			mine = append(mine, h)
		}
	}
	if s.PageSize <= 0 {
		return Page{Holdings: mine}, nil
	}

	offset := 0
	if pageKey != "" {
		var err error
		if offset, err = strconv.Atoi(pageKey); err != nil || offset < 0 || offset > len(mine) {
			return Page{}, errors.Errorf("invalid page key %q", pageKey)
		}
	}
	end := min(offset+s.PageSize, len(mine))
	page := Page{Holdings: mine[offset:end]}
	if end < len(mine) {
		page.NextKey = strconv.Itoa(end)
	}
	return page, nil
}

func (s *Snapshot) Validators(_ context.Context, kind status.Kind) ([]Validator, error) {
	var out []Validator
	for _, v := range s.ValidatorSet {
		if kind == "" || v.Status == string(kind) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Snapshot) Jailed(_ context.Context, height int64) (status.Set, error) {
	if !s.HasHistory {
		return nil, errors.Wrapf(ErrNoHistory, "snapshot at %d", height)
	}
	jailed := status.NewSet(s.JailedTargets...)
	for _, v := range s.ValidatorSet {
		if v.Jailed {
			jailed[v.Target] = struct{}{}
		}
	}
	return jailed, nil
}

func (s *Snapshot) LatestHeight(context.Context) (int64, error) {
	return s.Height, nil
}

func (s *Snapshot) Balance(_ context.Context, account stake.Account, _ string) (bn.Amount, error) {
	return s.Balances[account], nil
}

func (s *Snapshot) Rewards(_ context.Context, account stake.Account, _ string) (map[stake.Target]bn.Amount, error) {
	return s.Outstanding[account], nil
}
