// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitsongofficial/realign/log"
)

func TestRequestLogger(t *testing.T) {
	ok := func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("OK")) }
	fail := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) }
	slow := func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(15 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}

	tests := []struct {
		name      string
		handler   http.HandlerFunc
		enabled   bool
		threshold time.Duration
		log5xx    bool
		status    int
		shouldLog bool
	}{
		{"enabled", ok, true, 0, false, http.StatusOK, true},
		{"disabled", ok, false, 0, false, http.StatusOK, false},
		{"slow request", slow, false, 10 * time.Millisecond, false, http.StatusOK, true},
		{"fast request", ok, false, time.Second, false, http.StatusOK, false},
		{"server error", fail, false, 0, true, http.StatusServiceUnavailable, true},
		{"server error not logged", fail, false, 0, false, http.StatusServiceUnavailable, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := log.NewLogger(log.NewTerminalHandler(&buf, false))
			var enabled atomic.Bool
			enabled.Store(tt.enabled)

			h := RequestLogger(logger, &enabled, tt.threshold, tt.log5xx)(tt.handler)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plan?x=1", nil))

			assert.Equal(t, tt.status, rec.Code)
			if tt.shouldLog {
				assert.Contains(t, buf.String(), "API request")
				assert.Contains(t, buf.String(), "/plan?x=1")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}
