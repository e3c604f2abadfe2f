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
	"github.com/holiman/uint256"

	"github.com/erigontech/erigon-lib/common"
)

// Context is the per-frame environment snapshot. A fresh Context is built
// for every call and create invocation and is owned by the nested frame; it
// never changes for the lifetime of the frame.
type Context struct {
	// Address is the account whose storage and balance the frame operates on.
	Address common.Address
	// Caller is the account that initiated the frame.
	Caller common.Address
	// ApparentValue is the value the frame observes via CALLVALUE. For
	// DELEGATECALL it is inherited from the parent and no value moves.
	ApparentValue *uint256.Int
}

// Transfer is a value movement accompanying a call, from Source to Target.
// Immutable once constructed.
type Transfer struct {
	Source common.Address
	Target common.Address
	Value  *uint256.Int
}

// CreateScheme determines how the address of a newly created contract is
// derived. The set is closed: legacy nonce-based, CREATE2 salt-based, and a
// fixed explicit address used for genesis-style or precompile injection.
// The derivation itself is the Handler/orchestrator's responsibility.
type CreateScheme interface {
	createScheme()
}

// LegacyCreateScheme derives the address from the caller and its nonce.
type LegacyCreateScheme struct {
	Caller common.Address
}

// Create2Scheme derives the address from the caller, the init code hash and
// a caller-chosen salt, per EIP-1014.
type Create2Scheme struct {
	Caller   common.Address
	CodeHash common.Hash
	Salt     common.Hash
}

// FixedCreateScheme places the contract at an explicit address.
type FixedCreateScheme struct {
	Address common.Address
}

func (LegacyCreateScheme) createScheme() {}
func (Create2Scheme) createScheme()      {}
func (FixedCreateScheme) createScheme()  {}

// CallExit is the resolved result of a call: the classified exit reason and
// the output bytes (return data, or the revert reason).
type CallExit struct {
	Reason ExitReason
	Output []byte
}

// CreateExit is the resolved result of a create: the classified exit reason,
// the new contract's address when creation succeeded (nil on failure), and
// any output bytes (a revert reason, typically).
type CreateExit struct {
	Reason  ExitReason
	Address *common.Address
	Output  []byte
}

// Interrupt and feedback tokens are opaque to the machine: a handler that
// traps produces one, and the orchestrator that resolves it knows the
// concrete type. The machine only carries them.
type (
	CallInterrupt     any
	CreateInterrupt   any
	CallFeedbackMsg   any
	CreateFeedbackMsg any
)

// Handler is the capability surface through which the machine observes and
// mutates world state and delegates nested calls and creations. A concrete
// engine implements it once; the machine is otherwise fully decoupled from
// storage format and persistence.
//
// Query methods are read-only and must not mutate observable state. Any
// error returned from a Handler method is converted at the frame boundary
// via ExitReasonOf, so an unrecognized failure escalates to ExitFatal and
// can never resolve as success.
type Handler interface {
	// Balance returns the balance of the given account.
	Balance(address common.Address) (*uint256.Int, error)
	// CodeSize returns the code size of the given account.
	CodeSize(address common.Address) (int, error)
	// CodeHash returns the code hash of the given account.
	CodeHash(address common.Address) (common.Hash, error)
	// Code returns the code of the given account.
	Code(address common.Address) ([]byte, error)
	// Storage returns the current storage value at the given slot.
	Storage(address common.Address, index common.Hash) (common.Hash, error)
	// OriginalStorage returns the slot value as of the start of the
	// transaction, for original-vs-current-vs-new gas and refund rules.
	OriginalStorage(address common.Address, index common.Hash) (common.Hash, error)

	// GasLeft returns the gas remaining in the current frame.
	GasLeft() (uint64, error)
	// GasPrice returns the effective gas price of the transaction.
	GasPrice() (*uint256.Int, error)
	// Origin returns the transaction origin.
	Origin() (common.Address, error)
	// BlockHash returns the hash of the block with the given number.
	BlockHash(number *uint256.Int) (common.Hash, error)
	BlockNumber() (*uint256.Int, error)
	BlockCoinbase() (common.Address, error)
	BlockTimestamp() (*uint256.Int, error)
	BlockDifficulty() (*uint256.Int, error)
	BlockGasLimit() (*uint256.Int, error)
	BlockBaseFeePerGas() (*uint256.Int, error)
	ChainID() (*uint256.Int, error)

	// Exists reports whether the account exists.
	Exists(address common.Address) (bool, error)
	// Deleted reports whether the account has been scheduled for deletion
	// in the current transaction.
	Deleted(address common.Address) (bool, error)
	// IsCold reports whether the address (index == nil) or the storage slot
	// (index != nil) has not yet been accessed in the current transaction.
	// See EIP-2929 and EIP-2930.
	IsCold(address common.Address, index *common.Hash) (bool, error)

	// SetStorage writes the storage slot.
	SetStorage(address common.Address, index, value common.Hash) error
	// Log appends a log record. Ordering within a frame is the append
	// order. The topic count is validated by the caller, not here.
	Log(address common.Address, topics []common.Hash, data []byte) error
	// MarkDelete schedules the account for deletion with its funds swept to
	// target. Only the intent is recorded; the sweep happens at
	// end-of-transaction commit.
	MarkDelete(address, target common.Address) error

	// Create invokes a create operation. On exit the result is final; on
	// trap the orchestrator owns running the nested creation and must
	// eventually deliver CreateFeedback.
	Create(caller common.Address, scheme CreateScheme, value *uint256.Int, initCode []byte, targetGas *uint64) (Capture[CreateExit, CreateInterrupt], error)
	// CreateFeedback feeds the engine-specific result of a trapped create
	// back into the handler.
	CreateFeedback(feedback CreateFeedbackMsg) error
	// Call invokes a call operation against the code at codeAddress. A nil
	// transfer signals a value-less call (STATICCALL and DELEGATECALL
	// semantics). isStatic forbids state mutation for the entire nested
	// call tree beneath this invocation.
	Call(codeAddress common.Address, transfer *Transfer, input []byte, targetGas *uint64, isStatic bool, context Context) (Capture[CallExit, CallInterrupt], error)
	// CallFeedback feeds the engine-specific result of a trapped call back
	// into the handler.
	CallFeedback(feedback CallFeedbackMsg) error

	// PreValidate runs before every opcode, core and external alike, ahead
	// of any stack or memory effect. It is the host's chance to reject
	// execution early: gas gating, static-context violations.
	PreValidate(context *Context, op OpCode, stack *Stack) error
	// Other handles opcodes the dispatcher recognizes as neither core nor
	// external. Engines extending the instruction set override this instead
	// of touching the dispatch loop.
	Other(op OpCode, machine *Machine) error
}

// HandlerDefaults provides the Handler methods that have useful defaults:
// feedback deliveries that never fail, and an Other that classifies every
// unknown opcode as fatal invalid code. Embed it in handler implementations
// that do not need to override them.
type HandlerDefaults struct{}

// CallFeedback accepts any feedback and succeeds.
func (HandlerDefaults) CallFeedback(CallFeedbackMsg) error { return nil }

// CreateFeedback accepts any feedback and succeeds.
func (HandlerDefaults) CreateFeedback(CreateFeedbackMsg) error { return nil }

// Other fails with a fatal invalid-code error carrying the offending opcode.
func (HandlerDefaults) Other(op OpCode, _ *Machine) error {
	return ExitFatal{Err: ErrInvalidOpCode{opcode: op}}
}
