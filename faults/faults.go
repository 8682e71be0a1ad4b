// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package faults classifies the errors that abort a realignment run.
//
// Errors are created once as sentinels and decorated with context by the caller
// through errors.Wrap. ClassOf walks the wrapped chain to recover the class, so
// the CLI can tell a bad configuration apart from corrupted input or an
// arithmetic fault in the planner.
package faults

import (
	"strings"

	"github.com/pkg/errors"
)

// Class is the category of a fatal error.
type Class uint8

const (
	ClassUnknown Class = iota
	ClassConfiguration
	ClassDataIntegrity
	ClassArithmetic
)

func (c Class) String() string {
	switch c {
	case ClassConfiguration:
		return "ConfigurationError"
	case ClassDataIntegrity:
		return "DataIntegrityError"
	case ClassArithmetic:
		return "ArithmeticError"
	default:
		return "UnknownError"
	}
}

// Error is a classified sentinel error.
type Error struct {
	class   Class
	message string
}

func New(class Class, message string) *Error {
	return &Error{
		class:   class,
		message: message,
	}
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Class() Class {
	return e.class
}

var (
	ErrInvalidNetwork = New(ClassConfiguration, "invalid network")
	ErrInvalidConfig  = New(ClassConfiguration, "invalid configuration")

	ErrTotalMismatch       = New(ClassDataIntegrity, "total mismatch")
	ErrTargetCountMismatch = New(ClassDataIntegrity, "target count mismatch")
	ErrInvalidObligation   = New(ClassDataIntegrity, "invalid obligation")
	ErrMalformedRecord     = New(ClassDataIntegrity, "malformed record")
	ErrUnparseableAmount   = New(ClassDataIntegrity, "unparseable amount")
	ErrUnparseableAddress  = New(ClassDataIntegrity, "unparseable address")
	ErrIncompletePage      = New(ClassDataIntegrity, "incomplete page")
	ErrInvalidOperation    = New(ClassDataIntegrity, "invalid operation")
	ErrBrokenInvariant     = New(ClassDataIntegrity, "broken plan invariant")

	ErrAmountUnderflow = New(ClassArithmetic, "amount underflow")
	ErrAmountOverflow  = New(ClassArithmetic, "amount overflow")
)

// ClassOf returns the class of the first classified error in err's chain.
func ClassOf(err error) Class {
	if err == nil {
		return ClassUnknown
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.class
	}
	return ClassUnknown
}

// Chain splits a wrapped error into its context messages, outermost first.
// The last element is the root cause.
func Chain(err error) []string {
	var chain []string
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		msg := cur.Error()
		if next := errors.Unwrap(cur); next != nil {
			inner := next.Error()
			if msg == inner {
				continue
			}
			msg = strings.TrimSuffix(msg, ": "+inner)
		}
		chain = append(chain, msg)
	}
	return chain
}
