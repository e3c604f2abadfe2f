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

package vm

type executionFunc func(pc *uint64, m *Machine, h Handler) error

// operation is the dispatch-table entry for one opcode. Stack bounds are
// validated by the loop before execute runs, so instruction bodies may pop
// and push without checking.
type operation struct {
	execute  executionFunc
	minStack int
	maxStack int
	// writes marks operations that mutate state and are therefore rejected
	// outright in a static context. Value-bearing CALLs are handled inside
	// opCall itself.
	writes bool
}

func minStack(pops, push int) int {
	return pops
}

func maxStack(pops, push int) int {
	return StackLimit + pops - push
}

// jumpTable maps every assigned opcode to its operation. Unassigned bytes
// stay nil and route to Handler.Other. The table carries no gas columns:
// metering is the host's concern, wired through PreValidate and GasLeft.
var jumpTable [256]*operation

func init() {
	jumpTable = [256]*operation{
		STOP: {
			execute:  opStop,
			minStack: minStack(0, 0),
			maxStack: maxStack(0, 0),
		},
		ADD: {
			execute:  opAdd,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		MUL: {
			execute:  opMul,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		SUB: {
			execute:  opSub,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		DIV: {
			execute:  opDiv,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		SDIV: {
			execute:  opSdiv,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		MOD: {
			execute:  opMod,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		SMOD: {
			execute:  opSmod,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		ADDMOD: {
			execute:  opAddmod,
			minStack: minStack(3, 1),
			maxStack: maxStack(3, 1),
		},
		MULMOD: {
			execute:  opMulmod,
			minStack: minStack(3, 1),
			maxStack: maxStack(3, 1),
		},
		EXP: {
			execute:  opExp,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		SIGNEXTEND: {
			execute:  opSignExtend,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		LT: {
			execute:  opLt,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		GT: {
			execute:  opGt,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		SLT: {
			execute:  opSlt,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		SGT: {
			execute:  opSgt,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		EQ: {
			execute:  opEq,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		ISZERO: {
			execute:  opIszero,
			minStack: minStack(1, 1),
			maxStack: maxStack(1, 1),
		},
		AND: {
			execute:  opAnd,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		OR: {
			execute:  opOr,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		XOR: {
			execute:  opXor,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		NOT: {
			execute:  opNot,
			minStack: minStack(1, 1),
			maxStack: maxStack(1, 1),
		},
		BYTE: {
			execute:  opByte,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		SHL: {
			execute:  opSHL,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		SHR: {
			execute:  opSHR,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		SAR: {
			execute:  opSAR,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		SHA3: {
			execute:  opSha3,
			minStack: minStack(2, 1),
			maxStack: maxStack(2, 1),
		},
		ADDRESS: {
			execute:  opAddress,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		BALANCE: {
			execute:  opBalance,
			minStack: minStack(1, 1),
			maxStack: maxStack(1, 1),
		},
		ORIGIN: {
			execute:  opOrigin,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		CALLER: {
			execute:  opCaller,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		CALLVALUE: {
			execute:  opCallValue,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		CALLDATALOAD: {
			execute:  opCallDataLoad,
			minStack: minStack(1, 1),
			maxStack: maxStack(1, 1),
		},
		CALLDATASIZE: {
			execute:  opCallDataSize,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		CALLDATACOPY: {
			execute:  opCallDataCopy,
			minStack: minStack(3, 0),
			maxStack: maxStack(3, 0),
		},
		CODESIZE: {
			execute:  opCodeSize,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		CODECOPY: {
			execute:  opCodeCopy,
			minStack: minStack(3, 0),
			maxStack: maxStack(3, 0),
		},
		GASPRICE: {
			execute:  opGasprice,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		EXTCODESIZE: {
			execute:  opExtCodeSize,
			minStack: minStack(1, 1),
			maxStack: maxStack(1, 1),
		},
		EXTCODECOPY: {
			execute:  opExtCodeCopy,
			minStack: minStack(4, 0),
			maxStack: maxStack(4, 0),
		},
		RETURNDATASIZE: {
			execute:  opReturnDataSize,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		RETURNDATACOPY: {
			execute:  opReturnDataCopy,
			minStack: minStack(3, 0),
			maxStack: maxStack(3, 0),
		},
		EXTCODEHASH: {
			execute:  opExtCodeHash,
			minStack: minStack(1, 1),
			maxStack: maxStack(1, 1),
		},
		BLOCKHASH: {
			execute:  opBlockhash,
			minStack: minStack(1, 1),
			maxStack: maxStack(1, 1),
		},
		COINBASE: {
			execute:  opCoinbase,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		TIMESTAMP: {
			execute:  opTimestamp,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		NUMBER: {
			execute:  opNumber,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		DIFFICULTY: {
			execute:  opDifficulty,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		GASLIMIT: {
			execute:  opGasLimit,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		CHAINID: {
			execute:  opChainID,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		SELFBALANCE: {
			execute:  opSelfBalance,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		BASEFEE: {
			execute:  opBaseFee,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		POP: {
			execute:  opPop,
			minStack: minStack(1, 0),
			maxStack: maxStack(1, 0),
		},
		MLOAD: {
			execute:  opMload,
			minStack: minStack(1, 1),
			maxStack: maxStack(1, 1),
		},
		MSTORE: {
			execute:  opMstore,
			minStack: minStack(2, 0),
			maxStack: maxStack(2, 0),
		},
		MSTORE8: {
			execute:  opMstore8,
			minStack: minStack(2, 0),
			maxStack: maxStack(2, 0),
		},
		SLOAD: {
			execute:  opSload,
			minStack: minStack(1, 1),
			maxStack: maxStack(1, 1),
		},
		SSTORE: {
			execute:  opSstore,
			minStack: minStack(2, 0),
			maxStack: maxStack(2, 0),
			writes:   true,
		},
		JUMP: {
			execute:  opJump,
			minStack: minStack(1, 0),
			maxStack: maxStack(1, 0),
		},
		JUMPI: {
			execute:  opJumpi,
			minStack: minStack(2, 0),
			maxStack: maxStack(2, 0),
		},
		PC: {
			execute:  opPc,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		MSIZE: {
			execute:  opMsize,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		GAS: {
			execute:  opGas,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		JUMPDEST: {
			execute:  opJumpdest,
			minStack: minStack(0, 0),
			maxStack: maxStack(0, 0),
		},
		PUSH0: {
			execute:  opPush0,
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		},
		CREATE: {
			execute:  opCreate,
			minStack: minStack(3, 1),
			maxStack: maxStack(3, 1),
			writes:   true,
		},
		CALL: {
			execute:  opCall,
			minStack: minStack(7, 1),
			maxStack: maxStack(7, 1),
		},
		CALLCODE: {
			execute:  opCallCode,
			minStack: minStack(7, 1),
			maxStack: maxStack(7, 1),
		},
		RETURN: {
			execute:  opReturn,
			minStack: minStack(2, 0),
			maxStack: maxStack(2, 0),
		},
		DELEGATECALL: {
			execute:  opDelegateCall,
			minStack: minStack(6, 1),
			maxStack: maxStack(6, 1),
		},
		CREATE2: {
			execute:  opCreate2,
			minStack: minStack(4, 1),
			maxStack: maxStack(4, 1),
			writes:   true,
		},
		STATICCALL: {
			execute:  opStaticCall,
			minStack: minStack(6, 1),
			maxStack: maxStack(6, 1),
		},
		REVERT: {
			execute:  opRevert,
			minStack: minStack(2, 0),
			maxStack: maxStack(2, 0),
		},
		INVALID: {
			execute:  opUndefined,
			minStack: minStack(0, 0),
			maxStack: maxStack(0, 0),
		},
		SUICIDE: {
			execute:  opSuicide,
			minStack: minStack(1, 0),
			maxStack: maxStack(1, 0),
			writes:   true,
		},
	}

	// Even though the PUSH, DUP and SWAP opcodes are fanned out below, the
	// table is still the single source of truth for what dispatches at all.
	for i := 0; i < 32; i++ {
		op := PUSH1 + OpCode(i)
		jumpTable[op] = &operation{
			execute:  makePush(i + 1),
			minStack: minStack(0, 1),
			maxStack: maxStack(0, 1),
		}
	}
	for i := 0; i < 16; i++ {
		op := DUP1 + OpCode(i)
		jumpTable[op] = &operation{
			execute:  makeDup(i + 1),
			minStack: minStack(i+1, i+2),
			maxStack: maxStack(i+1, i+2),
		}
	}
	for i := 0; i < 16; i++ {
		op := SWAP1 + OpCode(i)
		jumpTable[op] = &operation{
			execute:  makeSwap(i + 1),
			minStack: minStack(i+2, i+2),
			maxStack: maxStack(i+2, i+2),
		}
	}
	for i := 0; i <= 4; i++ {
		op := LOG0 + OpCode(i)
		jumpTable[op] = &operation{
			execute:  makeLog(i),
			minStack: minStack(i+2, 0),
			maxStack: maxStack(i+2, 0),
			writes:   true,
		}
	}
}
