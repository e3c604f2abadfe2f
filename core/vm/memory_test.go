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
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestMemorySetGet(t *testing.T) {
	m := NewMemory()
	m.Resize(64)
	assert.Equal(t, 64, m.Len())

	m.Set(4, 3, []byte{1, 2, 3})
	assert.Equal(t, []byte{1, 2, 3}, m.GetCopy(4, 3))

	// Reads past the resized region yield nothing.
	assert.Nil(t, m.GetCopy(62, 4))
	assert.Nil(t, m.GetPtr(62, 4))

	// Zero-size accesses are no-ops regardless of offset.
	assert.Nil(t, m.GetCopy(1000, 0))
	m.Set(1000, 0, nil)
}

func TestMemorySet32(t *testing.T) {
	m := NewMemory()
	m.Resize(32)
	m.Set32(0, uint256.NewInt(0xdead))

	out := m.GetCopy(0, 32)
	assert.Equal(t, byte(0xde), out[30])
	assert.Equal(t, byte(0xad), out[31])
	for _, b := range out[:30] {
		assert.Equal(t, byte(0), b)
	}
}

func TestMemorySetUnresizedPanics(t *testing.T) {
	m := NewMemory()
	assert.Panics(t, func() { m.Set(0, 1, []byte{1}) })
	assert.Panics(t, func() { m.Set32(0, uint256.NewInt(1)) })
}

func TestMemoryResizeNeverShrinks(t *testing.T) {
	m := NewMemory()
	m.Resize(64)
	m.Resize(32)
	assert.Equal(t, 64, m.Len())
}
