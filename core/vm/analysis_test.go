// Copyright 2017 The go-ethereum Authors
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/crypto"
)

func TestCodeBitmap(t *testing.T) {
	for _, tt := range []struct {
		code  []byte
		exp   byte
		which int
	}{
		{[]byte{byte(PUSH1), 0x01, 0x01, 0x01}, 0b0000_0010, 0},
		{[]byte{byte(PUSH1), byte(PUSH1), byte(PUSH1), byte(PUSH1)}, 0b0000_1010, 0},
		{[]byte{0x00, byte(PUSH1), 0x00, byte(PUSH1), 0x00, byte(PUSH1), 0x00, byte(PUSH1)}, 0b0101_0100, 0},
		{[]byte{byte(PUSH8), byte(PUSH8), byte(PUSH8), byte(PUSH8), byte(PUSH8), byte(PUSH8), byte(PUSH8), byte(PUSH8), 0x01, 0x01, 0x01}, 0b1111_1110, 0},
		{[]byte{byte(PUSH8), 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01}, 0b0000_0001, 1},
		{[]byte{0x01, 0x01, 0x01, 0x01, 0x01, byte(PUSH2), byte(PUSH2), byte(PUSH2), 0x01, 0x01, 0x01}, 0b1100_0000, 0},
		{[]byte{0x01, 0x01, 0x01, 0x01, 0x01, byte(PUSH2), 0x01, 0x01, 0x01, 0x01, 0x01}, 0b1100_0000, 0},
	} {
		bits := codeBitmap(tt.code)
		assert.Equal(t, tt.exp, bits[tt.which], "code %x", tt.code)
	}
}

func TestCodeBitmapPush0HasNoImmediate(t *testing.T) {
	// PUSH0 marks no data bytes: the JUMPDEST right after it stays code.
	code := []byte{byte(PUSH0), byte(JUMPDEST)}
	bits := codeBitmap(code)
	assert.True(t, bits.codeSegment(1))

	// PUSH1 does mark its immediate.
	code = []byte{byte(PUSH1), byte(JUMPDEST)}
	bits = codeBitmap(code)
	assert.False(t, bits.codeSegment(1))
}

func TestCodeBitmapTrailingPush(t *testing.T) {
	// PUSH32 as the final byte must not run the bitmap out of bounds.
	code := []byte{byte(PUSH32)}
	bits := codeBitmap(code)
	assert.True(t, bits.codeSegment(0))
}

func TestJumpDestCache(t *testing.T) {
	cache := NewJumpDestCache(4)
	code := []byte{byte(PUSH1), 0x03, byte(JUMP), byte(JUMPDEST)}
	hash := crypto.Keccak256Hash(code)

	bits := cache.analysis(hash, code)
	require.NotNil(t, bits)
	assert.True(t, bits.codeSegment(3))

	// The cached bitmap is handed back for the same hash.
	cached, ok := cache.cache.Get(hash)
	require.True(t, ok)
	assert.Equal(t, bits, cached)

	// The zero hash bypasses the cache entirely.
	before := cache.cache.Len()
	cache.analysis(common.Hash{}, code)
	assert.Equal(t, before, cache.cache.Len())
}
