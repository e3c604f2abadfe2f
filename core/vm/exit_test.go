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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitReasonPredicates(t *testing.T) {
	for _, reason := range []ExitReason{ExitStopped, ExitReturned, ExitSuicided} {
		assert.True(t, reason.Succeeded())
		assert.False(t, reason.Reverted())
		assert.False(t, reason.Failed())
		assert.False(t, reason.Fatal())
	}

	assert.True(t, ExitReason(ExitReverted).Reverted())
	assert.False(t, ExitReason(ExitReverted).Succeeded())

	err := ExitError{Err: ErrInvalidJump}
	assert.True(t, err.Failed())
	assert.False(t, err.Fatal())

	fatal := ExitFatal{Err: ErrNotSupported}
	assert.True(t, fatal.Fatal())
	assert.False(t, fatal.Failed())
}

func TestExitErrorUnwrap(t *testing.T) {
	reason := ExitError{Err: ErrInvalidJump}
	assert.ErrorIs(t, reason, ErrInvalidJump)
	assert.Equal(t, "invalid jump destination", reason.Error())

	fatal := ExitFatal{Err: ErrNotSupported}
	assert.ErrorIs(t, fatal, ErrNotSupported)
	assert.Equal(t, "fatal: not supported", fatal.Error())
}

// Only the Error and Fatal arms implement error, so those are the reasons
// that can round-trip through ExitReasonOf unchanged.
func TestExitReasonOfPassthrough(t *testing.T) {
	for _, reason := range []ExitReason{
		ExitError{Err: ErrOutOfGas},
		ExitFatal{Err: ErrNotSupported},
	} {
		assert.Equal(t, reason, ExitReasonOf(reason.(error)))
	}
}

func TestExitReasonOfClassification(t *testing.T) {
	assert.Equal(t, ExitReason(ExitReverted), ExitReasonOf(ErrExecutionReverted))

	for _, err := range []error{
		ErrOutOfGas,
		ErrDepth,
		ErrInsufficientBalance,
		ErrInvalidJump,
		ErrWriteProtection,
		ErrReturnDataOutOfBounds,
		ErrGasUintOverflow,
		ErrMemoryLimitExceeded,
		ErrPCUnderflow,
		ErrCreateEmpty,
		ErrInvalidCode,
	} {
		reason := ExitReasonOf(err)
		require.True(t, reason.Failed(), "%v should stay frame-local", err)
		assert.ErrorIs(t, reason.(ExitError), err)
	}

	underflow := ErrStackUnderflow{stackLen: 1, required: 2}
	reason := ExitReasonOf(underflow)
	require.True(t, reason.Failed())
	var gotUnderflow ErrStackUnderflow
	require.True(t, errors.As(reason.(ExitError), &gotUnderflow))
	assert.Equal(t, underflow, gotUnderflow)

	invalid := ErrInvalidOpCode{opcode: INVALID}
	reason = ExitReasonOf(invalid)
	require.True(t, reason.Failed())
	var gotInvalid ErrInvalidOpCode
	require.True(t, errors.As(reason.(ExitError), &gotInvalid))
	assert.Equal(t, INVALID, gotInvalid.OpCode())
}

func TestExitReasonOfUnknownIsFatal(t *testing.T) {
	hostErr := errors.New("database handle closed")
	reason := ExitReasonOf(hostErr)
	require.True(t, reason.Fatal())
	assert.ErrorIs(t, reason.(ExitFatal), hostErr)
}

func TestExitReasonOfNilPanics(t *testing.T) {
	assert.Panics(t, func() { ExitReasonOf(nil) })
}

func TestCapture(t *testing.T) {
	exit := CaptureExit[ExitReason, Interrupt](ExitStopped)
	assert.False(t, exit.Trapped())
	reason, ok := exit.Exit()
	require.True(t, ok)
	assert.Equal(t, ExitReason(ExitStopped), reason)
	_, ok = exit.Trap()
	assert.False(t, ok)

	trap := CaptureTrap[ExitReason, Interrupt](Interrupt{Op: CALL})
	assert.True(t, trap.Trapped())
	interrupt, ok := trap.Trap()
	require.True(t, ok)
	assert.Equal(t, CALL, interrupt.Op)
	_, ok = trap.Exit()
	assert.False(t, ok)
}
