// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalHandler(t *testing.T) {
	var out bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(LevelInfo)

	l := NewLogger(NewTerminalHandlerWithLevel(&out, &lvl, false))
	l.Debug("hidden")
	l.Info("planned realignment", "redelegations", 12, "total", uint256.NewInt(1234567))

	line := out.String()
	assert.NotContains(t, line, "hidden")
	assert.Contains(t, line, "INFO [")
	assert.Contains(t, line, "planned realignment")
	assert.Contains(t, line, "redelegations=12")
	assert.Contains(t, line, "total=1234567")
}

func TestTerminalHandler_WithAttrs(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(NewTerminalHandler(&out, false)).With("pkg", "planner")
	l.Warn("forfeited obligation", "target", "val one")

	assert.Contains(t, out.String(), "pkg=planner")
	assert.Contains(t, out.String(), `target="val one"`)
}

func TestJSONHandler(t *testing.T) {
	var out bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(LevelTrace)

	NewLogger(JSONHandlerWithLevel(&out, &lvl)).Trace("fetched page", "count", 100)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "trace", rec["lvl"])
	assert.Equal(t, "fetched page", rec["msg"])
	assert.Equal(t, float64(100), rec["count"])
}

func TestWithContext_ResolvesRoot(t *testing.T) {
	prev := Root()
	defer SetDefault(prev)

	l := WithContext("pkg", "lcd")

	var out bytes.Buffer
	SetDefault(NewLogger(NewTerminalHandler(&out, false)))
	l.With("account", "bitsong1abc").Info("fetching delegations")

	assert.Contains(t, out.String(), "pkg=lcd")
	assert.Contains(t, out.String(), "account=bitsong1abc")
}

func TestFromLegacyLevel(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(0))
	assert.Equal(t, LevelError, FromLegacyLevel(1))
	assert.Equal(t, LevelWarn, FromLegacyLevel(2))
	assert.Equal(t, LevelInfo, FromLegacyLevel(3))
	assert.Equal(t, LevelDebug, FromLegacyLevel(4))
	assert.Equal(t, LevelTrace, FromLegacyLevel(5))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
}

func TestAppendUint64(t *testing.T) {
	assert.Equal(t, "99999", string(appendUint64(nil, 99999, false)))
	assert.Equal(t, "100,000", string(appendUint64(nil, 100000, false)))
	assert.Equal(t, "-9,999,980,000,000", string(appendInt64(nil, -9_999_980_000_000)))
}

func BenchmarkPrettyUint64Logfmt(b *testing.B) {
	buf := make([]byte, 100)
	b.ReportAllocs()
	for i := uint64(0); b.Loop(); i++ {
		buf = appendUint64(buf[:0], i*7919, false)
	}
}
