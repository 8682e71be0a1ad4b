// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api serves the delegation overview, plan previews and archived runs over HTTP.
package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/bitsongofficial/realign/api/delegations"
	"github.com/bitsongofficial/realign/api/middleware"
	"github.com/bitsongofficial/realign/api/plans"
	"github.com/bitsongofficial/realign/api/runs"
	"github.com/bitsongofficial/realign/archive"
	"github.com/bitsongofficial/realign/log"
	"github.com/bitsongofficial/realign/pipeline"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	EnableReqLogger *atomic.Bool
	SlowQueries     time.Duration
	Log5xxErrors    bool
	EnableMetrics   bool
}

// New returns the api router. Archive may be nil, in which case /runs is not served.
func New(
	p *pipeline.Pipeline,
	load plans.TableLoader,
	a *archive.Archive,
	opts Options,
) http.Handler {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	delegations.New(p).
		Mount(router, "")
	plans.New(p, load).
		Mount(router, "/plan")
	if a != nil {
		runs.New(a).
			Mount(router, "/runs")
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	reqLogs := opts.EnableReqLogger
	if reqLogs == nil {
		reqLogs = &atomic.Bool{}
	}
	return middleware.RequestLogger(logger, reqLogs, opts.SlowQueries, opts.Log5xxErrors)(handler)
}
