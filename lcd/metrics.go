// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lcd

import "github.com/bitsongofficial/realign/metrics"

var (
	metricRequests        = metrics.LazyLoadCounterVec("lcd_requests_count", []string{"endpoint", "status"})
	metricRequestDuration = metrics.LazyLoadHistogram("lcd_request_duration_ms", metrics.BucketHTTPMillis)
)
