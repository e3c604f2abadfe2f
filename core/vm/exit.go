// Copyright 2026 The Humanode Core Developers
// This file is part of the Humanode EVM library.
//
// The Humanode EVM library is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.
//
// The Humanode EVM library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the Humanode EVM library. If not, see <http://www.gnu.org/licenses/>.

package vm

import (
	"errors"
	"fmt"
)

// ExitReason classifies the outcome of one frame of execution. The set of
// implementations is closed: ExitSucceed, ExitRevert, ExitError, ExitFatal.
//
// Severity is ordered. Succeed carries no rollback. Revert discards the
// frame's state changes but carries caller-supplied output and is not a
// failure of the environment. Error discards the frame and, per gas policy,
// consumes what is left of it; the caller continues. Fatal signals the host
// itself is unreliable and must unwind every enclosing frame.
type ExitReason interface {
	Succeeded() bool
	Reverted() bool
	Failed() bool
	Fatal() bool

	exitReason()
}

// ExitSucceed is the normal-termination arm of ExitReason.
type ExitSucceed uint8

const (
	// ExitStopped is a STOP or running off the end of code.
	ExitStopped ExitSucceed = iota
	// ExitReturned is an explicit RETURN, possibly with output.
	ExitReturned
	// ExitSuicided is a frame that ended in SUICIDE.
	ExitSuicided
)

func (ExitSucceed) Succeeded() bool { return true }
func (ExitSucceed) Reverted() bool  { return false }
func (ExitSucceed) Failed() bool    { return false }
func (ExitSucceed) Fatal() bool     { return false }
func (ExitSucceed) exitReason()     {}

func (s ExitSucceed) String() string {
	switch s {
	case ExitStopped:
		return "stopped"
	case ExitReturned:
		return "returned"
	case ExitSuicided:
		return "suicided"
	default:
		return fmt.Sprintf("succeed(%d)", uint8(s))
	}
}

// ExitRevert is the explicit-REVERT arm of ExitReason.
type ExitRevert uint8

// ExitReverted is the only revert variant.
const ExitReverted ExitRevert = 0

func (ExitRevert) Succeeded() bool { return false }
func (ExitRevert) Reverted() bool  { return true }
func (ExitRevert) Failed() bool    { return false }
func (ExitRevert) Fatal() bool     { return false }
func (ExitRevert) exitReason()     {}

func (ExitRevert) String() string { return "reverted" }

// ExitError is a frame-local execution fault: stack underflow or overflow,
// an invalid jump destination, out-of-gas, an invalid opcode. The frame's
// state changes are discarded; enclosing frames continue.
type ExitError struct {
	Err error
}

func (ExitError) Succeeded() bool { return false }
func (ExitError) Reverted() bool  { return false }
func (ExitError) Failed() bool    { return true }
func (ExitError) Fatal() bool     { return false }
func (ExitError) exitReason()     {}

func (e ExitError) Error() string { return e.Err.Error() }
func (e ExitError) Unwrap() error { return e.Err }

// ExitFatal is a host or environment fault that is not attributable to the
// executing code. It propagates through every enclosing frame.
type ExitFatal struct {
	Err error
}

func (ExitFatal) Succeeded() bool { return false }
func (ExitFatal) Reverted() bool  { return false }
func (ExitFatal) Failed() bool    { return false }
func (ExitFatal) Fatal() bool     { return true }
func (ExitFatal) exitReason()     {}

func (e ExitFatal) Error() string { return "fatal: " + e.Err.Error() }
func (e ExitFatal) Unwrap() error { return e.Err }

// frameErrors are the faults that stay local to the frame that raised them.
// Anything outside this set escalates to ExitFatal.
var frameErrors = []error{
	ErrOutOfGas,
	ErrDepth,
	ErrInsufficientBalance,
	ErrContractAddressCollision,
	ErrMaxCodeSizeExceeded,
	ErrMaxInitCodeSizeExceeded,
	ErrMaxNonceExceeded,
	ErrInvalidJump,
	ErrWriteProtection,
	ErrReturnDataOutOfBounds,
	ErrGasUintOverflow,
	ErrMemoryLimitExceeded,
	ErrPCUnderflow,
	ErrCreateEmpty,
	ErrInvalidCode,
}

// ExitReasonOf converts any error produced during execution into the exit
// taxonomy. ErrExecutionReverted classifies as ExitRevert, recognized
// frame-local faults as ExitError, and everything else as ExitFatal: a
// handler failure can never silently resolve as success, and an unknown
// failure never stays local to the frame. err must be non-nil.
func ExitReasonOf(err error) ExitReason {
	if err == nil {
		panic("vm: ExitReasonOf called with nil error")
	}
	if r, ok := err.(ExitReason); ok {
		return r
	}
	if errors.Is(err, ErrExecutionReverted) {
		return ExitReverted
	}
	var (
		underflow ErrStackUnderflow
		overflow  ErrStackOverflow
		invalidOp ErrInvalidOpCode
	)
	if errors.As(err, &underflow) || errors.As(err, &overflow) || errors.As(err, &invalidOp) {
		return ExitError{Err: err}
	}
	for _, frameErr := range frameErrors {
		if errors.Is(err, frameErr) {
			return ExitError{Err: err}
		}
	}
	return ExitFatal{Err: err}
}
