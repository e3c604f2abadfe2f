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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpCodeName(t *testing.T) {
	for _, tt := range []struct {
		op   OpCode
		name string
	}{
		{STOP, "STOP"},
		{ADD, "ADD"},
		{SIGNEXTEND, "SIGNEXTEND"},
		{SAR, "SAR"},
		{SHA3, "SHA3"},
		{EXTCODEHASH, "EXTCODEHASH"},
		{DIFFICULTY, "DIFFICULTY"},
		{BASEFEE, "BASEFEE"},
		{PUSH0, "PUSH0"},
		{PUSH1, "PUSH1"},
		{PUSH32, "PUSH32"},
		{DUP1, "DUP1"},
		{DUP16, "DUP16"},
		{SWAP1, "SWAP1"},
		{SWAP16, "SWAP16"},
		{LOG0, "LOG0"},
		{LOG4, "LOG4"},
		{EOFMAGIC, "EOFMAGIC"},
		{CREATE, "CREATE"},
		{CALL, "CALL"},
		{CALLCODE, "CALLCODE"},
		{DELEGATECALL, "DELEGATECALL"},
		{CREATE2, "CREATE2"},
		{STATICCALL, "STATICCALL"},
		{REVERT, "REVERT"},
		{INVALID, "INVALID"},
		{SUICIDE, "SUICIDE"},
	} {
		name, ok := tt.op.Name()
		require.True(t, ok, "opcode %#x should have a name", byte(tt.op))
		assert.Equal(t, tt.name, name)
	}
}

func TestOpCodeNameUnassigned(t *testing.T) {
	for _, op := range []OpCode{0x0c, 0x0d, 0x1e, 0x21, 0x49, 0x5c, 0xa5, 0xf6} {
		_, ok := op.Name()
		assert.False(t, ok, "opcode %#x should be unassigned", byte(op))
	}
}

func TestOpCodeString(t *testing.T) {
	assert.Equal(t, "0x1 / ADD", ADD.String())
	assert.Equal(t, "0x5f / PUSH0", PUSH0.String())
	assert.Equal(t, "0xff / SUICIDE", SUICIDE.String())
	assert.Equal(t, "0xc / [UNKNOWN]", OpCode(0x0c).String())
}

func TestStringToOp(t *testing.T) {
	assert.Equal(t, ADD, StringToOp("ADD"))
	assert.Equal(t, DELEGATECALL, StringToOp("DELEGATECALL"))
	assert.Equal(t, STOP, StringToOp("NOTANOP"))

	// Round-trip every assigned opcode.
	for i := 0; i < 256; i++ {
		op := OpCode(i)
		name, ok := op.Name()
		if !ok {
			continue
		}
		assert.Equal(t, op, StringToOp(name), "name %q should map back", name)
	}
}

func TestOpCodeIsPush(t *testing.T) {
	for i := 1; i <= 32; i++ {
		op := OpCode(byte(PUSH1) + byte(i-1))
		n, ok := op.IsPush()
		require.True(t, ok, "%s", op)
		assert.Equal(t, i, n)
	}

	// PUSH0 carries no immediate and is not part of the push range.
	_, ok := PUSH0.IsPush()
	assert.False(t, ok)
	_, ok = STOP.IsPush()
	assert.False(t, ok)
	_, ok = DUP1.IsPush()
	assert.False(t, ok)
}

func TestOpCodeByteInt(t *testing.T) {
	for _, tt := range []struct {
		op OpCode
		b  byte
	}{
		{STOP, 0x00},
		{ADD, 0x01},
		{CHAINID, 0x46},
		{SSTORE, 0x55},
		{PUSH1, 0x60},
		{DUP1, 0x80},
		{SWAP1, 0x90},
		{RETURN, 0xf3},
		{CREATE2, 0xf5},
		{REVERT, 0xfd},
		{SUICIDE, 0xff},
	} {
		assert.Equal(t, tt.b, tt.op.Byte())
		assert.Equal(t, int(tt.b), tt.op.Int())
		assert.Equal(t, tt.op, OpCode(tt.op.Byte()))
	}
}

// TestOpCodeTableExhaustive walks the whole byte space against the published
// layout: Name reports true for exactly the assigned set, String formats both
// kinds, IsPush matches [0x60, 0x7f] and nothing else, and every mnemonic
// round-trips through StringToOp.
func TestOpCodeTableExhaustive(t *testing.T) {
	assigned := make(map[OpCode]bool)
	mark := func(lo, hi OpCode) {
		for op := lo; ; op++ {
			assigned[op] = true
			if op == hi {
				return
			}
		}
	}
	mark(STOP, SIGNEXTEND)
	mark(LT, SAR)
	mark(SHA3, SHA3)
	mark(ADDRESS, EXTCODEHASH)
	mark(BLOCKHASH, BASEFEE)
	mark(POP, JUMPDEST)
	mark(PUSH0, PUSH0)
	mark(PUSH1, PUSH32)
	mark(DUP1, DUP16)
	mark(SWAP1, SWAP16)
	mark(LOG0, LOG4)
	mark(EOFMAGIC, EOFMAGIC)
	mark(CREATE, CREATE2)
	mark(STATICCALL, STATICCALL)
	mark(REVERT, SUICIDE)
	require.Len(t, assigned, 145)

	for i := 0; i < 256; i++ {
		op := OpCode(i)
		name, ok := op.Name()
		if assigned[op] {
			require.Truef(t, ok, "opcode %#x should have a name", i)
			require.NotEmpty(t, name)
			assert.Equal(t, op, StringToOp(name), "name %q should map back", name)
			assert.Equal(t, fmt.Sprintf("0x%x / %s", i, name), op.String())
		} else {
			require.Falsef(t, ok, "opcode %#x should be unassigned, got %q", i, name)
			assert.Empty(t, name)
			assert.Equal(t, fmt.Sprintf("0x%x / [UNKNOWN]", i), op.String())
		}

		width, isPush := op.IsPush()
		if op >= PUSH1 && op <= PUSH32 {
			require.Truef(t, isPush, "opcode %#x is in the push range", i)
			assert.Equal(t, int(op-PUSH1)+1, width)
		} else {
			require.Falsef(t, isPush, "opcode %#x is not a push", i)
			assert.Zero(t, width)
		}
	}
}
