// Copyright 2015 The go-ethereum Authors
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

package runtime

import (
	"github.com/holiman/uint256"

	"github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/crypto"

	"github.com/humanode-network/evm/core/vm"
)

// Env implements vm.Handler against an in-memory StateDB. Nested calls and
// creations never recurse natively: Call and Create validate, snapshot and
// transfer, then trap, and the frame loop in execute drives the nested
// machine iteratively. Call depth is therefore an explicit counter checked
// here, not a property of the Go stack.
type Env struct {
	vm.HandlerDefaults

	cfg   *Config
	state *StateDB
	depth int
}

// NewEnv builds an execution environment over the config's state.
func NewEnv(cfg *Config) *Env {
	return &Env{cfg: cfg, state: cfg.State}
}

// StateDB exposes the backing state.
func (env *Env) StateDB() *StateDB { return env.state }

// Depth returns the current call depth.
func (env *Env) Depth() int { return env.depth }

// callInvocation is the resumption token for a trapped call: everything the
// frame loop needs to build and finalise the nested frame.
type callInvocation struct {
	code     []byte
	codeHash common.Hash
	input    []byte
	context  vm.Context
	static   bool
	snapshot int
}

// createInvocation is the resumption token for a trapped create.
type createInvocation struct {
	address  common.Address
	initCode []byte
	context  vm.Context
	snapshot int
}

func (env *Env) Balance(address common.Address) (*uint256.Int, error) {
	env.state.MarkWarm(address)
	return env.state.GetBalance(address), nil
}

func (env *Env) CodeSize(address common.Address) (int, error) {
	env.state.MarkWarm(address)
	return env.state.GetCodeSize(address), nil
}

func (env *Env) CodeHash(address common.Address) (common.Hash, error) {
	env.state.MarkWarm(address)
	return env.state.GetCodeHash(address), nil
}

func (env *Env) Code(address common.Address) ([]byte, error) {
	env.state.MarkWarm(address)
	return env.state.GetCode(address), nil
}

func (env *Env) Storage(address common.Address, index common.Hash) (common.Hash, error) {
	env.state.MarkSlotWarm(address, index)
	return env.state.GetState(address, index), nil
}

func (env *Env) OriginalStorage(address common.Address, index common.Hash) (common.Hash, error) {
	return env.state.GetOriginalState(address, index), nil
}

func (env *Env) GasLeft() (uint64, error) {
	// This environment does not meter gas; the whole block allowance is
	// what GAS observes.
	return env.cfg.GasLimit, nil
}

func (env *Env) GasPrice() (*uint256.Int, error) {
	return env.cfg.GasPrice.Clone(), nil
}

func (env *Env) Origin() (common.Address, error) {
	return env.cfg.Origin, nil
}

func (env *Env) BlockHash(number *uint256.Int) (common.Hash, error) {
	n, overflow := number.Uint64WithOverflow()
	if overflow {
		return common.Hash{}, nil
	}
	return env.cfg.GetHashFn(n), nil
}

func (env *Env) BlockNumber() (*uint256.Int, error) {
	return new(uint256.Int).SetUint64(env.cfg.BlockNumber), nil
}

func (env *Env) BlockCoinbase() (common.Address, error) {
	return env.cfg.Coinbase, nil
}

func (env *Env) BlockTimestamp() (*uint256.Int, error) {
	return new(uint256.Int).SetUint64(env.cfg.Time), nil
}

func (env *Env) BlockDifficulty() (*uint256.Int, error) {
	return env.cfg.Difficulty.Clone(), nil
}

func (env *Env) BlockGasLimit() (*uint256.Int, error) {
	return new(uint256.Int).SetUint64(env.cfg.GasLimit), nil
}

func (env *Env) BlockBaseFeePerGas() (*uint256.Int, error) {
	return env.cfg.BaseFee.Clone(), nil
}

func (env *Env) ChainID() (*uint256.Int, error) {
	return env.cfg.ChainID.Clone(), nil
}

func (env *Env) Exists(address common.Address) (bool, error) {
	return env.state.Exist(address), nil
}

func (env *Env) Deleted(address common.Address) (bool, error) {
	return env.state.HasBeenDeleted(address), nil
}

func (env *Env) IsCold(address common.Address, index *common.Hash) (bool, error) {
	return env.state.IsCold(address, index), nil
}

func (env *Env) SetStorage(address common.Address, index, value common.Hash) error {
	env.state.MarkSlotWarm(address, index)
	env.state.SetState(address, index, value)
	return nil
}

func (env *Env) Log(address common.Address, topics []common.Hash, data []byte) error {
	env.state.AddLog(Log{Address: address, Topics: topics, Data: data})
	return nil
}

func (env *Env) MarkDelete(address, target common.Address) error {
	env.state.MarkDelete(address, target)
	return nil
}

// PreValidate is where a metering host rejects execution before any stack
// or memory effect. This environment accepts everything: there is no gas,
// and the machine itself enforces static-context write protection.
func (env *Env) PreValidate(context *vm.Context, op vm.OpCode, stack *vm.Stack) error {
	return nil
}

// Call validates the invocation, applies the value transfer under a fresh
// snapshot and traps; the frame loop runs the nested code. Calls that can
// be resolved without executing anything (depth exhaustion, insufficient
// balance, empty code) exit synchronously.
func (env *Env) Call(codeAddress common.Address, transfer *vm.Transfer, input []byte, targetGas *uint64, isStatic bool, context vm.Context) (vm.Capture[vm.CallExit, vm.CallInterrupt], error) {
	if env.depth >= env.cfg.CallDepthLimit {
		return callExit(vm.ExitError{Err: vm.ErrDepth}, nil), nil
	}
	env.state.MarkWarm(codeAddress)

	snap := env.state.Snapshot()
	if transfer != nil && !transfer.Value.IsZero() {
		if env.state.GetBalance(transfer.Source).Lt(transfer.Value) {
			env.state.DiscardSnapshot(snap)
			return callExit(vm.ExitError{Err: vm.ErrInsufficientBalance}, nil), nil
		}
		env.state.CreateAccount(transfer.Target)
		env.state.SubBalance(transfer.Source, transfer.Value)
		env.state.AddBalance(transfer.Target, transfer.Value)
	}

	code := env.state.GetCode(codeAddress)
	if len(code) == 0 {
		// Nothing to run; the transfer stands.
		env.state.DiscardSnapshot(snap)
		return callExit(vm.ExitStopped, nil), nil
	}

	return vm.CaptureTrap[vm.CallExit, vm.CallInterrupt](&callInvocation{
		code:     code,
		codeHash: env.state.GetCodeHash(codeAddress),
		input:    input,
		context:  context,
		static:   isStatic,
		snapshot: snap,
	}), nil
}

// Create validates the creation, derives the new address, applies nonce and
// transfer effects under a fresh snapshot and traps with the initcode frame.
func (env *Env) Create(caller common.Address, scheme vm.CreateScheme, value *uint256.Int, initCode []byte, targetGas *uint64) (vm.Capture[vm.CreateExit, vm.CreateInterrupt], error) {
	if env.depth >= env.cfg.CallDepthLimit {
		return createExit(vm.ExitError{Err: vm.ErrDepth}), nil
	}
	if len(initCode) > vm.MaxInitCodeSize {
		return createExit(vm.ExitError{Err: vm.ErrMaxInitCodeSizeExceeded}), nil
	}
	if value != nil && !value.IsZero() && env.state.GetBalance(caller).Lt(value) {
		return createExit(vm.ExitError{Err: vm.ErrInsufficientBalance}), nil
	}

	nonce := env.state.GetNonce(caller)
	if nonce+1 < nonce {
		return createExit(vm.ExitError{Err: vm.ErrMaxNonceExceeded}), nil
	}
	env.state.SetNonce(caller, nonce+1)

	address := deriveAddress(scheme, nonce)
	env.state.MarkWarm(address)

	// Address collision: anything with code or a nonce is already alive.
	if env.state.GetNonce(address) != 0 || len(env.state.GetCode(address)) != 0 {
		return createExit(vm.ExitError{Err: vm.ErrContractAddressCollision}), nil
	}

	snap := env.state.Snapshot()
	env.state.CreateAccount(address)
	env.state.SetNonce(address, 1)
	if value != nil && !value.IsZero() {
		env.state.SubBalance(caller, value)
		env.state.AddBalance(address, value)
	}

	apparent := new(uint256.Int)
	if value != nil {
		apparent.Set(value)
	}
	return vm.CaptureTrap[vm.CreateExit, vm.CreateInterrupt](&createInvocation{
		address:  address,
		initCode: initCode,
		context:  vm.Context{Address: address, Caller: caller, ApparentValue: apparent},
		snapshot: snap,
	}), nil
}

func callExit(reason vm.ExitReason, output []byte) vm.Capture[vm.CallExit, vm.CallInterrupt] {
	return vm.CaptureExit[vm.CallExit, vm.CallInterrupt](vm.CallExit{Reason: reason, Output: output})
}

func createExit(reason vm.ExitReason) vm.Capture[vm.CreateExit, vm.CreateInterrupt] {
	return vm.CaptureExit[vm.CreateExit, vm.CreateInterrupt](vm.CreateExit{Reason: reason})
}

// deriveAddress computes the new contract address for the given scheme.
func deriveAddress(scheme vm.CreateScheme, callerNonce uint64) common.Address {
	switch s := scheme.(type) {
	case vm.LegacyCreateScheme:
		return crypto.CreateAddress(s.Caller, callerNonce)
	case vm.Create2Scheme:
		return crypto.CreateAddress2(s.Caller, s.Salt, s.CodeHash.Bytes())
	case vm.FixedCreateScheme:
		return s.Address
	default:
		// CreateScheme is a closed set; reaching this is a bug.
		panic("runtime: unknown create scheme")
	}
}

// frame is one entry of the explicit call stack.
type frame struct {
	machine  *vm.Machine
	isCreate bool
	address  common.Address // create target, when isCreate
	snapshot int
}

func (env *Env) newMachine(code, input []byte, ctx vm.Context, static bool, codeHash common.Hash) *vm.Machine {
	return vm.NewMachine(code, input, ctx, static, vm.Config{
		JumpDestCache: env.cfg.JumpDestCache,
		CodeHash:      codeHash,
		MemoryLimit:   env.cfg.MemoryLimit,
	})
}

// frameFor builds the nested frame for an interrupt minted by this Env's
// Call or Create. Foreign interrupt tokens return nil; nothing here knows
// how to run them.
func (env *Env) frameFor(interrupt vm.Interrupt) *frame {
	if inv, ok := interrupt.Call.(*callInvocation); ok {
		return &frame{
			machine:  env.newMachine(inv.code, inv.input, inv.context, inv.static, inv.codeHash),
			snapshot: inv.snapshot,
		}
	}
	if inv, ok := interrupt.Create.(*createInvocation); ok {
		return &frame{
			// Initcode has no settled identity; the zero hash skips the
			// jumpdest cache.
			machine:  env.newMachine(inv.initCode, nil, inv.context, false, common.Hash{}),
			isCreate: true,
			address:  inv.address,
			snapshot: inv.snapshot,
		}
	}
	return nil
}

// execute drives the frame stack until the root frame resolves. Every trap
// pushes a nested frame; every exit is committed or reverted against the
// frame's snapshot and fed back into the suspended parent. A fatal reason
// keeps failing each parent in turn, unwinding the whole tree.
func (env *Env) execute(root *frame) (vm.ExitReason, []byte, *common.Address) {
	frames := []*frame{root}
	for {
		top := frames[len(frames)-1]
		capture := top.machine.Run(env)

		var reason vm.ExitReason
		if interrupt, ok := capture.Trap(); ok {
			if child := env.frameFor(interrupt); child != nil {
				env.depth++
				frames = append(frames, child)
				continue
			}
			// A trap this Env did not mint. Fail the frame and let the
			// fatal unwind the rest.
			reason = vm.ExitFatal{Err: vm.ErrUnhandledInterrupt}
		} else {
			reason, _ = capture.Exit()
		}
		output := top.machine.Output()
		var created *common.Address
		if top.isCreate {
			reason, output, created = env.finishCreate(top, reason, output)
		} else {
			env.finishCall(top, reason)
		}
		top.machine.Release()
		frames = frames[:len(frames)-1]

		if len(frames) == 0 {
			return reason, output, created
		}
		env.depth--
		parent := frames[len(frames)-1]
		if top.isCreate {
			if err := parent.machine.FeedbackCreate(reason, created, output); err != nil {
				return vm.ExitFatal{Err: err}, nil, nil
			}
		} else {
			if err := parent.machine.FeedbackCall(reason, output); err != nil {
				return vm.ExitFatal{Err: err}, nil, nil
			}
		}
	}
}

func (env *Env) finishCall(f *frame, reason vm.ExitReason) {
	if reason.Succeeded() {
		env.state.DiscardSnapshot(f.snapshot)
	} else {
		env.state.RevertToSnapshot(f.snapshot)
	}
}

// finishCreate settles a completed initcode frame: deploy checks and code
// commit on success, snapshot revert otherwise. The returned output follows
// EIP-211: empty on success, the revert payload on revert.
func (env *Env) finishCreate(f *frame, reason vm.ExitReason, output []byte) (vm.ExitReason, []byte, *common.Address) {
	if reason.Succeeded() {
		switch {
		case len(output) > 0 && output[0] == vm.EOFMAGIC.Byte():
			env.state.RevertToSnapshot(f.snapshot)
			return vm.ExitError{Err: vm.ErrInvalidCode}, nil, nil
		case len(output) > vm.MaxCodeSize:
			env.state.RevertToSnapshot(f.snapshot)
			return vm.ExitError{Err: vm.ErrMaxCodeSizeExceeded}, nil, nil
		default:
			env.state.SetCode(f.address, output)
			env.state.DiscardSnapshot(f.snapshot)
			address := f.address
			return reason, nil, &address
		}
	}
	env.state.RevertToSnapshot(f.snapshot)
	if reason.Reverted() {
		return reason, output, nil
	}
	return reason, nil, nil
}

// runCall executes code at the given address as the root frame.
func (env *Env) runCall(caller, address common.Address, input []byte, value *uint256.Int, static bool) ([]byte, vm.ExitReason) {
	if value == nil {
		value = new(uint256.Int)
	}
	snap := env.state.Snapshot()
	if !value.IsZero() {
		if env.state.GetBalance(caller).Lt(value) {
			env.state.DiscardSnapshot(snap)
			return nil, vm.ExitError{Err: vm.ErrInsufficientBalance}
		}
		env.state.CreateAccount(address)
		env.state.SubBalance(caller, value)
		env.state.AddBalance(address, value)
	}
	code := env.state.GetCode(address)
	if len(code) == 0 {
		env.state.DiscardSnapshot(snap)
		return nil, vm.ExitStopped
	}
	ctx := vm.Context{Address: address, Caller: caller, ApparentValue: value.Clone()}
	machine := env.newMachine(code, input, ctx, static, env.state.GetCodeHash(address))
	reason, output, _ := env.execute(&frame{machine: machine, snapshot: snap})
	return output, reason
}

// runCreate executes initcode as the root frame and commits the contract.
func (env *Env) runCreate(caller common.Address, scheme vm.CreateScheme, value *uint256.Int, initCode []byte) ([]byte, common.Address, vm.ExitReason) {
	capture, err := env.Create(caller, scheme, value, initCode, nil)
	if err != nil {
		return nil, common.Address{}, vm.ExitReasonOf(err)
	}
	if result, ok := capture.Exit(); ok {
		return result.Output, common.Address{}, result.Reason
	}
	interrupt, _ := capture.Trap()
	reason, output, created := env.execute(env.frameFor(vm.Interrupt{Op: vm.CREATE, Create: interrupt}))
	if created == nil {
		return output, common.Address{}, reason
	}
	return output, *created, reason
}
