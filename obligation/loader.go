// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package obligation

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/faults"
	"github.com/bitsongofficial/realign/log"
	"github.com/bitsongofficial/realign/stake"
)

var logger = log.WithContext("pkg", "obligation")

// Options controls how an allocation list is read.
type Options struct {
	// HasHeader skips the first record.
	HasHeader bool
	// TargetPrefix, when set, is the address prefix every target must carry.
	TargetPrefix string
	// Comma is the field delimiter, ',' when zero.
	Comma rune
}

// Result is a loaded allocation list.
type Result struct {
	Table *Table
	Total bn.Amount
	// Skipped holds one error per record that was dropped.
	Skipped []error
}

// LoadFile opens path and loads it with Load.
func LoadFile(path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open obligations")
	}
	defer f.Close()

	res, err := Load(f, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return res, nil
}

// Load reads a two-column (target, amount) delimited stream.
//
// Records that are too short or carry an unparseable amount or target are logged
// and skipped. A negative amount aborts the load with ErrInvalidObligation.
func Load(r io.Reader, opts Options) (*Result, error) {
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = -1
	rd.TrimLeadingSpace = true
	rd.ReuseRecord = true
	if opts.Comma != 0 {
		rd.Comma = opts.Comma
	}

	res := &Result{Table: NewTable()}
	skip := func(line int, err error) {
		logger.Warn("skipping obligation record", "line", line, "err", err)
		res.Skipped = append(res.Skipped, errors.WithMessagef(err, "line %d", line))
	}

	for first := true; ; first = false {
		record, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skip(perr.Line, errors.Wrap(faults.ErrMalformedRecord, perr.Err.Error()))
				continue
			}
			return nil, errors.Wrap(err, "read obligations")
		}
		if first && opts.HasHeader {
			continue
		}
		line, _ := rd.FieldPos(0)

		if len(record) < 2 {
			skip(line, errors.Wrapf(faults.ErrMalformedRecord, "expected at least 2 fields, got %d", len(record)))
			continue
		}

		if err := stake.ValidateAddress(record[0], opts.TargetPrefix); err != nil {
			skip(line, err)
			continue
		}

		amount, err := bn.ParseAmount(record[1])
		if err != nil {
			if errors.Is(err, bn.ErrNegative) {
				return nil, errors.Wrapf(faults.ErrInvalidObligation, "line %d: negative amount %s for %s", line, record[1], record[0])
			}
			if errors.Is(err, faults.ErrAmountOverflow) {
				return nil, errors.Wrapf(err, "line %d", line)
			}
			skip(line, errors.Wrapf(faults.ErrUnparseableAmount, "%q", record[1]))
			continue
		}

		if err := res.Table.Add(stake.Target(record[0]), amount); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
	}

	res.Total = res.Table.Total()
	logger.Info("loaded obligations", "records", res.Table.Entries(), "targets", res.Table.Len(), "total", res.Total, "skipped", len(res.Skipped))
	return res, nil
}
