// Copyright 2014 The go-ethereum Authors
// (original work)
// Copyright 2026 The Humanode Core Developers
// (modifications)
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

// Frame-local execution faults. Each of these consumes the current frame:
// its state changes are discarded and the caller observes failure, while
// sibling and ancestor frames continue normally.
var (
	ErrOutOfGas                 = errors.New("out of gas")
	ErrDepth                    = errors.New("max call depth exceeded")
	ErrInsufficientBalance      = errors.New("insufficient balance for transfer")
	ErrContractAddressCollision = errors.New("contract address collision")
	ErrExecutionReverted        = errors.New("execution reverted")
	ErrMaxCodeSizeExceeded      = errors.New("max code size exceeded")
	ErrMaxInitCodeSizeExceeded  = errors.New("max initcode size exceeded")
	ErrMaxNonceExceeded         = errors.New("nonce limit reached")
	ErrInvalidJump              = errors.New("invalid jump destination")
	ErrWriteProtection          = errors.New("write protection")
	ErrReturnDataOutOfBounds    = errors.New("return data out of bounds")
	ErrGasUintOverflow          = errors.New("gas uint64 overflow")
	ErrMemoryLimitExceeded      = errors.New("memory limit exceeded")
	ErrPCUnderflow              = errors.New("program counter underflow")
	ErrCreateEmpty              = errors.New("create empty")
	ErrInvalidCode              = errors.New("invalid code: must not begin with 0xef")
)

// Host/environment faults. These never stay local to one frame: they unwind
// the entire call tree.
var (
	ErrNotSupported       = errors.New("not supported")
	ErrUnhandledInterrupt = errors.New("unhandled interrupt")
	ErrHostFailed         = errors.New("host state access failed")
)

// Frame lifecycle misuse. Delivering feedback to a machine that is not
// trapped, or delivering it twice, is a programming error in the
// orchestrator, not a condition of the executed code.
var (
	ErrNotTrapped     = errors.New("machine is not trapped")
	ErrMachineExited  = errors.New("machine has already exited")
	ErrWrongInterrupt = errors.New("feedback does not match pending interrupt")
)

// ErrStackUnderflow wraps an evm error when the items on the stack less
// than the minimal requirement.
type ErrStackUnderflow struct {
	stackLen int
	required int
}

func (e ErrStackUnderflow) Error() string {
	return fmt.Sprintf("stack underflow (%d <=> %d)", e.stackLen, e.required)
}

// ErrStackOverflow wraps an evm error when the items on the stack exceeds
// the maximum allowance.
type ErrStackOverflow struct {
	stackLen int
	limit    int
}

func (e ErrStackOverflow) Error() string {
	return fmt.Sprintf("stack limit reached %d (%d)", e.stackLen, e.limit)
}

// ErrInvalidOpCode wraps an evm error when an invalid opcode is encountered.
type ErrInvalidOpCode struct {
	opcode OpCode
}

// OpCode returns the offending byte.
func (e ErrInvalidOpCode) OpCode() OpCode { return e.opcode }

func (e ErrInvalidOpCode) Error() string { return fmt.Sprintf("invalid opcode: %s", e.opcode) }
