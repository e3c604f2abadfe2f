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
	"hash"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"github.com/erigontech/erigon-lib/common"
)

// Config are the configuration options for a Machine.
type Config struct {
	// JumpDestCache caches jumpdest analysis across frames. A shared cache
	// can be handed to every machine of a transaction; nil means a private
	// one is created on demand.
	JumpDestCache *JumpDestCache
	// CodeHash keys the jumpdest cache. The zero hash disables caching for
	// this frame (initcode has no settled identity).
	CodeHash common.Hash
	// MemoryLimit bounds linear memory growth in bytes. Zero means no
	// limit; gas metering is the usual bound and lives with the host.
	MemoryLimit uint64
}

type machineStatus uint8

const (
	statusRunning machineStatus = iota
	statusTrapped
	statusExited
)

// Interrupt describes a suspended call or create awaiting feedback. The
// token inside is opaque to the machine; the orchestrator that resolves the
// nested frame knows its concrete type.
type Interrupt struct {
	// Op is the opcode that trapped: one of the CALL family, CREATE or
	// CREATE2.
	Op OpCode
	// Call carries the handler's token when Op is a call.
	Call CallInterrupt
	// Create carries the handler's token when Op is a create.
	Create CreateInterrupt
}

// pendingCall remembers where a trapped call wants its return data once the
// orchestrator delivers it.
type pendingCall struct {
	retOffset uint64
	retSize   uint64
}

// keccakState wraps sha3.state. In addition to the usual hash methods, it
// also supports Read to get a variable amount of data from the hash state.
// Read is faster than Sum because it doesn't copy the internal state, but
// also modifies the internal state.
type keccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

// Machine is one call frame: code, input, program counter, operand stack and
// linear memory. It performs pure stack and arithmetic work itself and calls
// into a Handler for every state-touching opcode. Opcode dispatch is
// strictly sequential; a Machine is not safe for concurrent use.
//
// The frame moves Running -> Exited or Running -> Trapped. Trapped is not
// terminal: exactly one FeedbackCall or FeedbackCreate returns it to
// Running. Delivering feedback when the machine is not trapped, or twice,
// fails with ErrNotTrapped.
type Machine struct {
	// Context is the frame's environment snapshot, immutable for its
	// lifetime.
	Context Context

	code  []byte
	input []byte
	cfg   Config

	pc     uint64
	stack  *Stack
	memory *Memory

	static     bool
	returnData []byte // last call's return data for subsequent reuse
	analysis   bitvec // lazily initialised jumpdest analysis

	hasher    keccakState // SHA3 hasher instance shared across opcodes
	hasherBuf common.Hash // SHA3 hasher result array shared across opcodes

	status        machineStatus
	reason        ExitReason
	output        []byte
	interrupt     Interrupt
	pendingCall   *pendingCall
	pendingCreate bool
}

// NewMachine builds a frame over the given code and input. The context is
// owned by the frame. static forbids state mutation for this frame and
// everything beneath it.
func NewMachine(code, input []byte, ctx Context, static bool, cfg Config) *Machine {
	if ctx.ApparentValue == nil {
		ctx.ApparentValue = new(uint256.Int)
	}
	if cfg.JumpDestCache == nil {
		cfg.JumpDestCache = NewJumpDestCache(JumpDestCacheLimit)
	}
	return &Machine{
		Context: ctx,
		code:    code,
		input:   input,
		cfg:     cfg,
		static:  static,
		stack:   NewStack(),
		memory:  NewMemory(),
	}
}

// Release returns pooled resources. The machine must not be used afterwards.
func (m *Machine) Release() {
	if m.stack != nil {
		ReturnStack(m.stack)
		m.stack = nil
	}
}

func (m *Machine) Code() []byte       { return m.code }
func (m *Machine) Input() []byte      { return m.input }
func (m *Machine) PC() uint64         { return m.pc }
func (m *Machine) Stack() *Stack      { return m.stack }
func (m *Machine) Memory() *Memory    { return m.memory }
func (m *Machine) Static() bool       { return m.static }
func (m *Machine) ReturnData() []byte { return m.returnData }

// Output returns the frame's RETURN or REVERT payload once it has exited.
func (m *Machine) Output() []byte { return m.output }

// Exited reports whether the frame has terminated, and with what reason.
func (m *Machine) Exited() (ExitReason, bool) {
	return m.reason, m.status == statusExited
}

// Trapped reports whether the frame is suspended awaiting feedback.
func (m *Machine) Trapped() bool { return m.status == statusTrapped }

// errStopToken is an internal token for the dispatch loop: the executing
// opcode terminated the frame and already recorded the reason.
var errStopToken = errors.New("stop token")

// errTrapToken is an internal token for the dispatch loop: the executing
// opcode suspended the frame and already recorded the interrupt.
var errTrapToken = errors.New("trap token")

// Run drives the frame until it exits or a call/create traps. A trapped
// frame returns the same interrupt again on subsequent calls without
// advancing; an exited frame returns its reason.
func (m *Machine) Run(h Handler) Capture[ExitReason, Interrupt] {
	switch m.status {
	case statusExited:
		return CaptureExit[ExitReason, Interrupt](m.reason)
	case statusTrapped:
		return CaptureTrap[ExitReason, Interrupt](m.interrupt)
	}

	for {
		if m.pc >= uint64(len(m.code)) {
			return m.exit(ExitStopped)
		}
		op := OpCode(m.code[m.pc])

		// The host's early-rejection hook runs for every opcode, core and
		// external alike, before any stack or memory effect.
		if err := h.PreValidate(&m.Context, op, m.stack); err != nil {
			return m.exitWithError(err)
		}

		operation := jumpTable[op]
		if operation == nil {
			if err := h.Other(op, m); err != nil {
				return m.exitWithError(err)
			}
			m.pc++
			continue
		}

		// Validate stack
		if sLen := m.stack.Len(); sLen < operation.minStack {
			return m.exitWithError(ErrStackUnderflow{stackLen: sLen, required: operation.minStack})
		} else if sLen > operation.maxStack {
			return m.exitWithError(ErrStackOverflow{stackLen: sLen, limit: StackLimit})
		}

		if m.static && operation.writes {
			return m.exitWithError(ErrWriteProtection)
		}

		err := operation.execute(&m.pc, m, h)
		switch {
		case err == nil:
			m.pc++
		case errors.Is(err, errStopToken):
			m.status = statusExited
			return CaptureExit[ExitReason, Interrupt](m.reason)
		case errors.Is(err, errTrapToken):
			m.status = statusTrapped
			return CaptureTrap[ExitReason, Interrupt](m.interrupt)
		default:
			return m.exitWithError(err)
		}
	}
}

// FeedbackCall resumes a frame trapped on a CALL-family opcode with the
// nested frame's result. A Fatal reason does not resume: it terminates this
// frame with the same reason so the fault keeps unwinding.
func (m *Machine) FeedbackCall(reason ExitReason, output []byte) error {
	if m.status != statusTrapped {
		if m.status == statusExited {
			return ErrMachineExited
		}
		return ErrNotTrapped
	}
	if m.pendingCall == nil {
		return ErrWrongInterrupt
	}
	if reason.Fatal() {
		m.status = statusExited
		m.reason = reason
		m.pendingCall = nil
		return nil
	}

	m.applyCallResult(reason, output, m.pendingCall.retOffset, m.pendingCall.retSize)
	m.pendingCall = nil
	m.interrupt = Interrupt{}
	m.status = statusRunning
	m.pc++ // step past the suspended instruction
	return nil
}

// FeedbackCreate resumes a frame trapped on CREATE or CREATE2 with the
// nested creation's result. address must be non-nil exactly when the
// creation succeeded. As with calls, a Fatal reason terminates the frame
// instead of resuming it.
func (m *Machine) FeedbackCreate(reason ExitReason, address *common.Address, output []byte) error {
	if m.status != statusTrapped {
		if m.status == statusExited {
			return ErrMachineExited
		}
		return ErrNotTrapped
	}
	if !m.pendingCreate {
		return ErrWrongInterrupt
	}
	if reason.Fatal() {
		m.status = statusExited
		m.reason = reason
		m.pendingCreate = false
		return nil
	}

	m.applyCreateResult(reason, address, output)
	m.pendingCreate = false
	m.interrupt = Interrupt{}
	m.status = statusRunning
	m.pc++
	return nil
}

// applyCallResult materialises a nested call's outcome into this frame:
// return data buffer, the requested slice of memory, and the success flag.
func (m *Machine) applyCallResult(reason ExitReason, output []byte, retOffset, retSize uint64) {
	if reason.Succeeded() || reason.Reverted() {
		m.returnData = output
	} else {
		m.returnData = nil
	}
	if n := min(uint64(len(output)), retSize); n > 0 {
		m.memory.Set(retOffset, n, output)
	}
	v := new(uint256.Int)
	if reason.Succeeded() {
		v.SetOne()
	}
	m.stack.Push(v)
}

// applyCreateResult materialises a nested creation's outcome: the new
// address (or zero) on the stack, and revert data in the return buffer.
// Per EIP-211 a successful creation leaves the return buffer empty.
func (m *Machine) applyCreateResult(reason ExitReason, address *common.Address, output []byte) {
	if reason.Reverted() {
		m.returnData = output
	} else {
		m.returnData = nil
	}
	v := new(uint256.Int)
	if reason.Succeeded() && address != nil {
		v.SetBytes(address.Bytes())
	}
	m.stack.Push(v)
}

func (m *Machine) exit(reason ExitReason) Capture[ExitReason, Interrupt] {
	m.status = statusExited
	m.reason = reason
	return CaptureExit[ExitReason, Interrupt](reason)
}

func (m *Machine) exitWithError(err error) Capture[ExitReason, Interrupt] {
	return m.exit(ExitReasonOf(err))
}

// validJumpdest checks the destination against code bounds, the JUMPDEST
// marker, and the push-immediate bitmap.
func (m *Machine) validJumpdest(dest *uint256.Int) bool {
	udest, overflow := dest.Uint64WithOverflow()
	// PC cannot go beyond len(code) and certainly can't be bigger than 63bits.
	// Don't bother checking for JUMPDEST in that case.
	if overflow || udest >= uint64(len(m.code)) {
		return false
	}
	// Only JUMPDESTs allowed for destinations
	if OpCode(m.code[udest]) != JUMPDEST {
		return false
	}
	if m.analysis == nil {
		m.analysis = m.cfg.JumpDestCache.analysis(m.cfg.CodeHash, m.code)
	}
	return m.analysis.codeSegment(udest)
}

// extendMemory grows memory to cover [offset, offset+size), rounded up to
// the 32-byte word the way MSIZE observes it. A zero size leaves memory
// untouched regardless of offset.
func (m *Machine) extendMemory(offset, size *uint256.Int) (uint64, uint64, error) {
	if size.IsZero() {
		return 0, 0, nil
	}
	off, overflow := offset.Uint64WithOverflow()
	if overflow {
		return 0, 0, ErrGasUintOverflow
	}
	sz, overflow := size.Uint64WithOverflow()
	if overflow {
		return 0, 0, ErrGasUintOverflow
	}
	end := off + sz
	if end < off {
		return 0, 0, ErrGasUintOverflow
	}
	words := (end + 31) / 32
	newSize := words * 32
	if newSize < end { // toWordSize overflowed
		return 0, 0, ErrGasUintOverflow
	}
	if m.cfg.MemoryLimit != 0 && newSize > m.cfg.MemoryLimit {
		return 0, 0, ErrMemoryLimitExceeded
	}
	m.memory.Resize(newSize)
	return off, sz, nil
}

// keccak hashes data with the frame's shared hasher.
func (m *Machine) keccak(data []byte) common.Hash {
	if m.hasher == nil {
		m.hasher = sha3.NewLegacyKeccak256().(keccakState)
	} else {
		m.hasher.Reset()
	}
	m.hasher.Write(data)
	m.hasher.Read(m.hasherBuf[:])
	return m.hasherBuf
}
