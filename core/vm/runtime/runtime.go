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
	"math"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/crypto"

	"github.com/humanode-network/evm/core/vm"
)

// Config is the set of knobs for a standalone execution: block and
// transaction context, limits, and the backing state.
type Config struct {
	ChainID     *uint256.Int
	Difficulty  *uint256.Int
	Origin      common.Address
	Coinbase    common.Address
	BlockNumber uint64
	Time        uint64
	GasLimit    uint64
	GasPrice    uint256.Int
	Value       uint256.Int
	BaseFee     uint256.Int

	CallDepthLimit int
	MemoryLimit    uint64

	State         *StateDB
	GetHashFn     func(n uint64) common.Hash
	JumpDestCache *vm.JumpDestCache
}

// setDefaults fills unset fields with sensible values.
func setDefaults(cfg *Config) {
	if cfg.ChainID == nil {
		cfg.ChainID = uint256.NewInt(1)
	}
	if cfg.Difficulty == nil {
		cfg.Difficulty = new(uint256.Int)
	}
	if cfg.GasLimit == 0 {
		cfg.GasLimit = math.MaxUint64
	}
	if cfg.CallDepthLimit == 0 {
		cfg.CallDepthLimit = vm.CallCreateDepth
	}
	if cfg.State == nil {
		cfg.State = NewStateDB()
	}
	if cfg.GetHashFn == nil {
		cfg.GetHashFn = func(n uint64) common.Hash {
			return crypto.Keccak256Hash([]byte(new(big.Int).SetUint64(n).String()))
		}
	}
	if cfg.JumpDestCache == nil {
		cfg.JumpDestCache = vm.NewJumpDestCache(vm.JumpDestCacheLimit)
	}
}

// Execute runs the given code with the given input and returns the output,
// the final state and an error mapped from the exit reason. It deploys the
// code at a well-known address and invokes it from the configured origin,
// which makes it handy for unit tests and tooling.
func Execute(code, input []byte, cfg *Config) ([]byte, *StateDB, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	address := common.BytesToAddress([]byte("contract"))
	cfg.State.CreateAccount(cfg.Origin)
	cfg.State.CreateAccount(address)
	cfg.State.SetCode(address, code)

	env := NewEnv(cfg)
	output, reason := env.runCall(cfg.Origin, address, input, &cfg.Value, false)
	cfg.State.Finalise()
	return output, cfg.State, reasonError(reason)
}

// Create deploys the given initcode from the configured origin and returns
// the deployed code (empty on success per convention), the new contract
// address and an error mapped from the exit reason.
func Create(initCode []byte, cfg *Config) ([]byte, common.Address, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	cfg.State.CreateAccount(cfg.Origin)
	env := NewEnv(cfg)
	scheme := vm.LegacyCreateScheme{Caller: cfg.Origin}
	output, address, reason := env.runCreate(cfg.Origin, scheme, &cfg.Value, initCode)
	cfg.State.Finalise()
	return output, address, reasonError(reason)
}

// Call executes the code already present at the given address against the
// configured state. The state must be set up by the caller.
func Call(address common.Address, input []byte, cfg *Config) ([]byte, error) {
	setDefaults(cfg)

	env := NewEnv(cfg)
	output, reason := env.runCall(cfg.Origin, address, input, &cfg.Value, false)
	cfg.State.Finalise()
	return output, reasonError(reason)
}

// reasonError maps an exit reason to the error surface of the entry points:
// nil for success, vm.ErrExecutionReverted for a revert, and the underlying
// error for failures and fatals.
func reasonError(reason vm.ExitReason) error {
	switch r := reason.(type) {
	case vm.ExitSucceed:
		return nil
	case vm.ExitRevert:
		return vm.ErrExecutionReverted
	case vm.ExitError:
		return r
	case vm.ExitFatal:
		return r
	default:
		return nil
	}
}
