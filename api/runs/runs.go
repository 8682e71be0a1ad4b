// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runs

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/bitsongofficial/realign/api/utils"
	"github.com/bitsongofficial/realign/archive"
)

const defaultLimit = 20

// Runs serves the archive of past planning runs.
type Runs struct {
	archive *archive.Archive
}

func New(a *archive.Archive) *Runs {
	return &Runs{a}
}

func (r *Runs) handleListRuns(w http.ResponseWriter, req *http.Request) error {
	limit, err := utils.IntQuery(req, "limit", defaultLimit)
	if err != nil {
		return err
	}
	runs, err := r.archive.Runs(req.Context(), limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []*archive.Run{}
	}
	return utils.WriteJSON(w, runs)
}

func (r *Runs) handleGetRun(w http.ResponseWriter, req *http.Request) error {
	run, err := r.archive.Get(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		return notFound(err)
	}
	return utils.WriteJSON(w, run)
}

func (r *Runs) handleGetMessages(w http.ResponseWriter, req *http.Request) error {
	messages, err := r.archive.Messages(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		return notFound(err)
	}
	return utils.WriteJSON(w, messages)
}

func notFound(err error) error {
	if errors.Is(err, archive.ErrNotFound) {
		return utils.NotFound(err)
	}
	return err
}

func (r *Runs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("runs_list").
		HandlerFunc(utils.WrapHandlerFunc(r.handleListRuns))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("runs_get_run").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetRun))
	sub.Path("/{id}/messages").
		Methods(http.MethodGet).
		Name("runs_get_messages").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetMessages))
}
