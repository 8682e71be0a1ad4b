// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bn_test

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/faults"
)

func TestAmount(t *testing.T) {
	assert := assert.New(t)

	assert.True(bn.Amount{}.IsZero())
	assert.True(bn.Zero().IsZero())
	assert.Equal(bn.NewAmount(1), bn.MustParse("1"))
	assert.Equal(big.NewInt(12345), bn.NewAmount(12345).ToBig())

	tests := []struct {
		v1     bn.Amount
		v2     bn.Amount
		expect int
	}{
		{bn.Amount{}, bn.Amount{}, 0},
		{bn.Amount{}, bn.NewAmount(1), -1},
		{bn.NewAmount(1), bn.Amount{}, 1},
		{bn.MustParse("340282366920938463463374607431768211456"), bn.NewAmount(1), 1},
	}
	for _, test := range tests {
		assert.Equal(test.expect, test.v1.Cmp(test.v2))
	}
}

func TestAmountArithmetic(t *testing.T) {
	sum, err := bn.NewAmount(40).Add(bn.NewAmount(2))
	require.NoError(t, err)
	assert.Equal(t, bn.NewAmount(42), sum)

	diff, err := bn.NewAmount(42).Sub(bn.NewAmount(42))
	require.NoError(t, err)
	assert.True(t, diff.IsZero())

	_, err = bn.NewAmount(1).Sub(bn.NewAmount(2))
	assert.True(t, errors.Is(err, faults.ErrAmountUnderflow))
	assert.Equal(t, faults.ClassArithmetic, faults.ClassOf(err))

	max := bn.MustParse("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	_, err = max.Add(bn.NewAmount(1))
	assert.True(t, errors.Is(err, faults.ErrAmountOverflow))

	total, err := bn.Sum(bn.NewAmount(1), bn.NewAmount(2), bn.NewAmount(3))
	require.NoError(t, err)
	assert.Equal(t, bn.NewAmount(6), total)

	assert.Equal(t, bn.NewAmount(3), bn.Min(bn.NewAmount(3), bn.NewAmount(5)))
	assert.Equal(t, bn.NewAmount(3), bn.Min(bn.NewAmount(5), bn.NewAmount(3)))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want bn.Amount
		err  error
	}{
		{"0", bn.Zero(), nil},
		{"000", bn.Zero(), nil},
		{"-0", bn.Zero(), nil},
		{" 42 ", bn.NewAmount(42), nil},
		{"+7", bn.NewAmount(7), nil},
		{"9999980000000", bn.NewAmount(9_999_980_000_000), nil},
		{"", bn.Zero(), bn.ErrSyntax},
		{"-", bn.Zero(), bn.ErrSyntax},
		{"12a", bn.Zero(), bn.ErrSyntax},
		{"1.5", bn.Zero(), bn.ErrSyntax},
		{"-5", bn.Zero(), bn.ErrNegative},
	}
	for _, tt := range tests {
		got, err := bn.ParseAmount(tt.in)
		if tt.err != nil {
			assert.True(t, errors.Is(err, tt.err), "input %q: %v", tt.in, err)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}

	_, err := bn.ParseAmount("1" + strings.Repeat("0", 80))
	assert.True(t, errors.Is(err, faults.ErrAmountOverflow))
}

func TestFromBig(t *testing.T) {
	a, err := bn.FromBig(big.NewInt(10))
	require.NoError(t, err)
	assert.Equal(t, bn.NewAmount(10), a)

	a, err = bn.FromBig(nil)
	require.NoError(t, err)
	assert.True(t, a.IsZero())

	_, err = bn.FromBig(big.NewInt(-1))
	assert.Equal(t, bn.ErrNegative, err)

	_, err = bn.FromBig(new(big.Int).Lsh(big.NewInt(1), 256))
	assert.True(t, errors.Is(err, faults.ErrAmountOverflow))
}

func TestDecimal(t *testing.T) {
	tests := []struct {
		v        bn.Amount
		decimals uint8
		want     string
	}{
		{bn.Zero(), 6, "0"},
		{bn.NewAmount(1), 6, "0.000001"},
		{bn.NewAmount(1_500_000), 6, "1.5"},
		{bn.NewAmount(9_999_980_000_000), 6, "9999980"},
		{bn.NewAmount(123), 0, "123"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.v.Decimal(tt.decimals))
	}
}

func TestAmountEncoding(t *testing.T) {
	v := bn.NewAmount(12345)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `"12345"`, string(data))

	var decoded bn.Amount
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, v, decoded)

	require.NoError(t, json.Unmarshal([]byte("678"), &decoded))
	assert.Equal(t, bn.NewAmount(678), decoded)

	require.NoError(t, json.Unmarshal([]byte("null"), &decoded))
	assert.True(t, decoded.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"-3"`), &decoded))

	var doc struct {
		Total bn.Amount `yaml:"total"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("total: 9999980000000\n"), &doc))
	assert.Equal(t, bn.NewAmount(9_999_980_000_000), doc.Total)
}
