// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package planner

import "github.com/bitsongofficial/realign/metrics"

var (
	metricRuns       = metrics.LazyLoadCounter("planner_runs_count")
	metricFailures   = metrics.LazyLoadCounter("planner_failures_count")
	metricOperations = metrics.LazyLoadCounterVec("planner_operations_count", []string{"kind"})
	metricDuration   = metrics.LazyLoadHistogram("planner_duration_ms", metrics.BucketPlanMillis)
)
