// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"bytes"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func useRegistry(t *testing.T) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	prev := metrics
	metrics = newPrometheusMetrics(reg, reg)
	t.Cleanup(func() { metrics = prev })
	return reg
}

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	families, err := reg.Gather()
	require.NoError(t, err)
	m := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		m[mf.GetName()] = mf
	}
	return m
}

func TestPromMetrics(t *testing.T) {
	reg := useRegistry(t)

	runs := Counter("runs_count")
	ops := CounterVec("operations_count", []string{"kind"})
	duration := Histogram("duration_ms", BucketPlanMillis)
	last := Gauge("last_operations")
	delegated := GaugeVec("delegated", []string{"account"})

	runs.Add(1)
	Counter("runs_count").Add(2)

	total := 0
	for i := range 10 {
		kind := strconv.Itoa(i % 2)
		ops.AddWithLabel(int64(i), map[string]string{"kind": kind})
		duration.Observe(int64(i))
		total += i
	}
	last.Set(7)
	last.Add(-2)
	delegated.SetWithLabel(100, map[string]string{"account": "a"})
	delegated.AddWithLabel(5, map[string]string{"account": "a"})

	m := gather(t, reg)
	assert.Equal(t, float64(3), m["realign_runs_count"].Metric[0].GetCounter().GetValue())
	sum := m["realign_operations_count"].Metric[0].GetCounter().GetValue() +
		m["realign_operations_count"].Metric[1].GetCounter().GetValue()
	assert.Equal(t, float64(total), sum)
	assert.Equal(t, float64(total), m["realign_duration_ms"].Metric[0].GetHistogram().GetSampleSum())
	assert.Equal(t, float64(5), m["realign_last_operations"].Metric[0].GetGauge().GetValue())
	assert.Equal(t, float64(105), m["realign_delegated"].Metric[0].GetGauge().GetValue())

	assert.True(t, Enabled())
}

func TestHandler(t *testing.T) {
	useRegistry(t)
	Counter("handler_count").Add(1)
	CounterVec("handler_vec_count", []string{"code"}).AddWithLabel(2, map[string]string{"code": "200"})

	rec := httptest.NewRecorder()
	HTTPHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "realign_handler_count 1")

	parser := expfmt.TextParser{}
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	require.NoError(t, err)

	m := families["realign_handler_vec_count"].GetMetric()
	require.Len(t, m, 1)
	assert.Equal(t, "code", m[0].GetLabel()[0].GetName())
	assert.Equal(t, "200", m[0].GetLabel()[0].GetValue())
	assert.Equal(t, float64(2), m[0].GetCounter().GetValue())
}

func TestTypeClash(t *testing.T) {
	useRegistry(t)
	Counter("clash")
	assert.NotPanics(t, func() { Gauge("clash").Set(1) })
}

func TestLazyLoading(t *testing.T) {
	prev := metrics
	metrics = defaultNoopMetrics()
	t.Cleanup(func() { metrics = prev })

	for _, a := range []any{
		Gauge("noopGauge"),
		GaugeVec("noopGauge", nil),
		Counter("noopCounter"),
		CounterVec("noopCounter", nil),
		Histogram("noopHist", nil),
	} {
		require.IsType(t, &noopMeters{}, a)
	}
	assert.Nil(t, HTTPHandler())
	assert.False(t, Enabled())

	lazyGauge := LazyLoadGauge("lazyGauge")
	lazyGaugeVec := LazyLoadGaugeVec("lazyGaugeVec", []string{"l"})
	lazyCounter := LazyLoadCounter("lazyCounter")
	lazyCounterVec := LazyLoadCounterVec("lazyCounterVec", []string{"l"})
	lazyHistogram := LazyLoadHistogram("lazyHistogram", nil)

	reg := prometheus.NewRegistry()
	metrics = newPrometheusMetrics(reg, reg)

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promGaugeVecMeter{}, lazyGaugeVec())
	require.IsType(t, &promCountMeter{}, lazyCounter())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramMeter{}, lazyHistogram())
}
