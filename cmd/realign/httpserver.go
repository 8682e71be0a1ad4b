// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/bitsongofficial/realign/metrics"
)

// startServer serves handler on addr until the returned func is called.
func startServer(addr string, handler http.Handler, readTimeout time.Duration) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen addr [%v]", addr)
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: readTimeout}
	var goes sync.WaitGroup
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String(), func() {
		srv.Close()
		goes.Wait()
	}, nil
}

func startAPIServer(addr string, handler http.Handler) (string, func(), error) {
	url, stop, err := startServer(addr, handler, 5*time.Second)
	if err != nil {
		return "", nil, errors.WithMessage(err, "API")
	}
	return url, stop, nil
}

func startMetricsServer(addr string) (string, func(), error) {
	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	handler := handlers.CompressHandler(router)

	url, stop, err := startServer(addr, handler, 5*time.Second)
	if err != nil {
		return "", nil, errors.WithMessage(err, "metrics API")
	}
	return url + "/metrics", stop, nil
}
