// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package archive keeps a history of planning runs in sqlite.
package archive

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/golang/snappy"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"

	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/export"
	"github.com/bitsongofficial/realign/op"
)

var ErrNotFound = errors.New("run not found")

// Run describes one archived planning run.
type Run struct {
	ID             string     `json:"id"`
	CreatedAt      time.Time  `json:"createdAt"`
	Network        string     `json:"network"`
	Height         int64      `json:"height"`
	Summary        op.Summary `json:"summary"`
	CurrentTotal   bn.Amount  `json:"currentTotal"`
	ObligatedTotal bn.Amount  `json:"obligatedTotal"`
	// Passed is the outcome of verifying the exported messages.
	Passed bool `json:"passed"`
}

type Archive struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New creates or opens the archive at path.
func New(path string) (a *Archive, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if a == nil {
			db.Close()
		}
	}()
	// a single connection keeps in-memory databases alive between calls
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(runTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	return &Archive{
		path:          path,
		db:            db,
		driverVersion: driverVer,
	}, nil
}

// NewMem creates an archive in ram.
func NewMem() (*Archive, error) {
	return New(":memory:")
}

func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) Path() string {
	return a.path
}

// DriverVersion returns the sqlite library version.
func (a *Archive) DriverVersion() string {
	return a.driverVersion
}

// Save stores run and its messages. A random ID and the current time are assigned when
// missing; the ID is returned.
func (a *Archive) Save(ctx context.Context, run *Run, messages *export.Messages) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, messages); err != nil {
		return "", err
	}

	_, err = a.db.ExecContext(ctx,
		"INSERT INTO run(id, createdAt, network, height, summary, currentTotal, obligatedTotal, passed, messages) VALUES(?,?,?,?,?,?,?,?,?)",
		run.ID,
		run.CreatedAt.Unix(),
		run.Network,
		run.Height,
		summary,
		run.CurrentTotal.String(),
		run.ObligatedTotal.String(),
		run.Passed,
		snappy.Encode(nil, buf.Bytes()),
	)
	if err != nil {
		return "", errors.Wrap(err, "insert run")
	}
	return run.ID, nil
}

// Runs returns the latest runs first, at most limit when limit > 0.
func (a *Archive) Runs(ctx context.Context, limit int) ([]*Run, error) {
	stmt := "SELECT id, createdAt, network, height, summary, currentTotal, obligatedTotal, passed FROM run ORDER BY createdAt DESC, rowid DESC"
	var args []any
	if limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := a.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// Get returns the run with the given ID.
func (a *Archive) Get(ctx context.Context, id string) (*Run, error) {
	if uuid.Parse(id) == nil {
		return nil, errors.Wrapf(ErrNotFound, "invalid id %q", id)
	}
	row := a.db.QueryRowContext(ctx,
		"SELECT id, createdAt, network, height, summary, currentTotal, obligatedTotal, passed FROM run WHERE id = ?", id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(ErrNotFound, id)
	}
	return run, err
}

// Messages returns the export stored with the run.
func (a *Archive) Messages(ctx context.Context, id string) (*export.Messages, error) {
	var blob []byte
	err := a.db.QueryRowContext(ctx, "SELECT messages FROM run WHERE id = ?", id).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	data, err := snappy.Decode(nil, blob)
	if err != nil {
		return nil, errors.Wrap(err, "decompress messages")
	}
	return export.Read(bytes.NewReader(data))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		run            Run
		createdAt      int64
		summary        []byte
		current, total string
	)
	if err := s.Scan(&run.ID, &createdAt, &run.Network, &run.Height, &summary, &current, &total, &run.Passed); err != nil {
		return nil, err
	}
	run.CreatedAt = time.Unix(createdAt, 0)
	if err := json.Unmarshal(summary, &run.Summary); err != nil {
		return nil, errors.Wrap(err, "decode summary")
	}
	var err error
	if run.CurrentTotal, err = bn.ParseAmount(current); err != nil {
		return nil, err
	}
	if run.ObligatedTotal, err = bn.ParseAmount(total); err != nil {
		return nil, err
	}
	return &run, nil
}
