// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegations

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bitsongofficial/realign/api/utils"
	"github.com/bitsongofficial/realign/overview"
	"github.com/bitsongofficial/realign/pipeline"
)

// Delegations serves what the custodial accounts currently hold.
type Delegations struct {
	p *pipeline.Pipeline
}

func New(p *pipeline.Pipeline) *Delegations {
	return &Delegations{p}
}

func (d *Delegations) handleGetDelegations(w http.ResponseWriter, req *http.Request) error {
	state, err := d.p.State(req.Context())
	if err != nil {
		return err
	}
	opts := d.p.Options()
	o, err := overview.Build(req.Context(), d.p.Source(), state.Ledger, opts.Accounts, opts.Planner.Denom)
	if err != nil {
		return err
	}
	o.Height = state.Height
	return utils.WriteJSON(w, o)
}

func (d *Delegations) handleGetAccounts(w http.ResponseWriter, req *http.Request) error {
	state, err := d.p.State(req.Context())
	if err != nil {
		return err
	}
	opts := d.p.Options()
	accounts, err := overview.Accounts(req.Context(), d.p.Source(), state.Ledger, opts.Accounts, opts.Planner.Denom, opts.Planner.Excluded)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, accounts)
}

func (d *Delegations) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/delegations").
		Methods(http.MethodGet).
		Name("delegations_get_overview").
		HandlerFunc(utils.WrapHandlerFunc(d.handleGetDelegations))
	sub.Path("/accounts").
		Methods(http.MethodGet).
		Name("delegations_get_accounts").
		HandlerFunc(utils.WrapHandlerFunc(d.handleGetAccounts))
}
