// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lcd

import (
	"strings"

	"github.com/bitsongofficial/realign/bn"
)

// Coin is an integer amount of one denomination.
type Coin struct {
	Denom  string    `json:"denom"`
	Amount bn.Amount `json:"amount"`
}

// DecCoin is a decimal amount of one denomination, as used for rewards.
type DecCoin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// Truncate returns the integer part of the amount.
func (d DecCoin) Truncate() (bn.Amount, error) {
	whole, _, _ := strings.Cut(d.Amount, ".")
	if whole == "" {
		return bn.Zero(), nil
	}
	return bn.ParseAmount(whole)
}

type Pagination struct {
	NextKey string `json:"next_key"`
	Total   string `json:"total"`
}

type Delegation struct {
	DelegatorAddress string `json:"delegator_address"`
	ValidatorAddress string `json:"validator_address"`
	Shares           string `json:"shares"`
}

type DelegationResponse struct {
	Delegation Delegation `json:"delegation"`
	Balance    Coin       `json:"balance"`
}

type DelegationsPage struct {
	DelegationResponses []DelegationResponse `json:"delegation_responses"`
	Pagination          *Pagination          `json:"pagination"`
}

// Next returns the continuation key, empty when this is the last page.
func (p *DelegationsPage) Next() string {
	if p.Pagination == nil {
		return ""
	}
	return p.Pagination.NextKey
}

type Description struct {
	Moniker  string `json:"moniker"`
	Identity string `json:"identity"`
	Website  string `json:"website"`
	Details  string `json:"details"`
}

type Validator struct {
	OperatorAddress string      `json:"operator_address"`
	Jailed          bool        `json:"jailed"`
	Status          string      `json:"status"`
	Tokens          bn.Amount   `json:"tokens"`
	Description     Description `json:"description"`
	UnbondingHeight string      `json:"unbonding_height"`
}

type ValidatorsPage struct {
	Validators []Validator `json:"validators"`
	Pagination *Pagination `json:"pagination"`
}

type HistoricalInfo struct {
	Header struct {
		Height  string `json:"height"`
		ChainID string `json:"chain_id"`
	} `json:"header"`
	Valset []Validator `json:"valset"`
}

type historicalInfoResponse struct {
	Hist *HistoricalInfo `json:"hist"`
}

type latestBlockResponse struct {
	Block struct {
		Header struct {
			Height  string `json:"height"`
			ChainID string `json:"chain_id"`
		} `json:"header"`
	} `json:"block"`
}

type balanceResponse struct {
	Balance *Coin `json:"balance"`
}

type DelegationReward struct {
	ValidatorAddress string    `json:"validator_address"`
	Reward           []DecCoin `json:"reward"`
}

type RewardsResponse struct {
	Rewards []DelegationReward `json:"rewards"`
	Total   []DecCoin          `json:"total"`
}

// errorResponse is the body cosmos LCDs return on failure.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
