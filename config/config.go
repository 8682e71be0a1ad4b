// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the YAML file describing networks, custodial accounts and the
// expected obligation totals.
package config

import (
	"io"
	"os"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/faults"
	"github.com/bitsongofficial/realign/obligation"
	"github.com/bitsongofficial/realign/planner"
	"github.com/bitsongofficial/realign/stake"
	"github.com/bitsongofficial/realign/status"
)

const (
	DefaultNetwork   = "mainnet"
	DefaultPageLimit = 2000
	DefaultMaxPages  = 1000
)

// Network describes one chain the planner can run against.
type Network struct {
	Name         string `yaml:"name"`
	ChainID      string `yaml:"chain_id"`
	LCD          string `yaml:"lcd"`
	Denom        string `yaml:"denom"`
	Decimals     uint8  `yaml:"decimals"`
	TargetPrefix string `yaml:"target_prefix"`
}

// Mainnet is always available unless the file redefines it.
var Mainnet = Network{
	Name:         DefaultNetwork,
	ChainID:      "bitsong-2b",
	LCD:          "https://lcd.explorebitsong.com",
	Denom:        "ubtsg",
	Decimals:     6,
	TargetPrefix: "bitsongvaloper",
}

type Obligations struct {
	Path      string `yaml:"path"`
	HasHeader bool   `yaml:"has_header"`
}

type Config struct {
	Networks       []Network              `yaml:"networks"`
	Accounts       []stake.Account        `yaml:"accounts"`
	DefaultAccount stake.Account          `yaml:"default_account"`
	Excluded       []stake.Target         `yaml:"excluded_targets"`
	Expected       obligation.Expectation `yaml:"expected"`
	Obligations    Obligations            `yaml:"obligations"`
	Output         string                 `yaml:"output"`
	// Archive is the sqlite file keeping past runs, empty disables archiving.
	Archive   string `yaml:"archive"`
	PageLimit int    `yaml:"page_limit"`
	MaxPages  int    `yaml:"max_pages"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Networks:    []Network{Mainnet},
		Obligations: Obligations{Path: "new-delegations.csv"},
		Output:      "delegation_messages.json",
		PageLimit:   DefaultPageLimit,
		MaxPages:    DefaultMaxPages,
	}
}

// Load reads and validates the file at path, on top of the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return cfg, nil
}

// Decode reads and validates a YAML configuration.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(faults.ErrInvalidConfig, err.Error())
	}
	if !slices.ContainsFunc(cfg.Networks, func(n Network) bool { return n.Name == Mainnet.Name }) {
		cfg.Networks = append(cfg.Networks, Mainnet)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for _, n := range c.Networks {
		switch {
		case n.Name == "":
			return errors.Wrap(faults.ErrInvalidConfig, "network without name")
		case seen[n.Name]:
			return errors.Wrapf(faults.ErrInvalidConfig, "network %q defined twice", n.Name)
		case n.LCD == "":
			return errors.Wrapf(faults.ErrInvalidConfig, "network %q: empty lcd", n.Name)
		case n.Denom == "":
			return errors.Wrapf(faults.ErrInvalidConfig, "network %q: empty denom", n.Name)
		}
		seen[n.Name] = true
	}
	for _, a := range c.Accounts {
		if strings.TrimSpace(string(a)) == "" {
			return errors.Wrap(faults.ErrInvalidConfig, "empty account")
		}
	}
	if c.DefaultAccount != "" && !slices.Contains(c.Accounts, c.DefaultAccount) {
		return errors.Wrapf(faults.ErrInvalidConfig, "default account %s is not a custodial account", c.DefaultAccount)
	}
	if c.PageLimit < 0 || c.MaxPages < 0 {
		return errors.Wrap(faults.ErrInvalidConfig, "negative paging limits")
	}
	return nil
}

// Network returns the network called name.
func (c *Config) Network(name string) (Network, error) {
	if name == "" {
		name = DefaultNetwork
	}
	for _, n := range c.Networks {
		if n.Name == name {
			return n, nil
		}
	}
	return Network{}, errors.Wrapf(faults.ErrInvalidNetwork, "%q", name)
}

// ExcludedSet returns the excluded targets as a set.
func (c *Config) ExcludedSet() status.Set {
	return status.NewSet(c.Excluded...)
}

// Planner builds the planner configuration for network n.
func (c *Config) Planner(n Network) planner.Config {
	return planner.Config{
		Denom:          n.Denom,
		DefaultAccount: c.DefaultAccount,
		Excluded:       c.ExcludedSet(),
		Expected:       c.Expected,
	}
}

// Format renders amount in whole tokens of network n.
func (n Network) Format(amount bn.Amount) string {
	return amount.Decimal(n.Decimals) + " " + strings.TrimPrefix(n.Denom, "u")
}
