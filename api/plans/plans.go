// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package plans

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/bitsongofficial/realign/api/utils"
	"github.com/bitsongofficial/realign/faults"
	"github.com/bitsongofficial/realign/obligation"
	"github.com/bitsongofficial/realign/pipeline"
	"github.com/bitsongofficial/realign/planner"
	"github.com/bitsongofficial/realign/verifier"
)

// TableLoader returns the obligation table to plan against.
type TableLoader func() (*obligation.Table, error)

type Plans struct {
	p    *pipeline.Pipeline
	load TableLoader
}

func New(p *pipeline.Pipeline, load TableLoader) *Plans {
	return &Plans{p, load}
}

// Preview is a plan computed on the current state, never archived.
type Preview struct {
	Height       int64            `json:"height"`
	Plan         *planner.Plan    `json:"plan"`
	Passed       bool             `json:"passed"`
	Verification *verifier.Report `json:"verification"`
}

func (p *Plans) handleGetPlan(w http.ResponseWriter, req *http.Request) error {
	table, err := p.load()
	if err != nil {
		return errors.WithMessage(err, "load obligations")
	}
	r, err := p.p.Run(req.Context(), table)
	if err != nil {
		// inconsistent obligations are the operator's problem, not the server's
		if faults.ClassOf(err) == faults.ClassDataIntegrity {
			return utils.HTTPError(err, http.StatusUnprocessableEntity)
		}
		return err
	}
	if req.URL.Query().Get("format") == "messages" {
		return utils.WriteJSON(w, r.Messages)
	}
	return utils.WriteJSON(w, &Preview{
		Height:       r.State.Height,
		Plan:         r.Plan,
		Passed:       r.Report.Passed(),
		Verification: r.Report,
	})
}

func (p *Plans) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("plans_get_preview").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPlan))
}
