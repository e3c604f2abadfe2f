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

package runtime

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/erigon-lib/common"
)

var (
	addrA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	addrB = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

func TestStateDBAccounts(t *testing.T) {
	state := NewStateDB()
	assert.False(t, state.Exist(addrA))
	assert.True(t, state.GetBalance(addrA).IsZero())
	assert.Equal(t, uint64(0), state.GetNonce(addrA))

	state.CreateAccount(addrA)
	assert.True(t, state.Exist(addrA))

	state.AddBalance(addrA, uint256.NewInt(100))
	state.SubBalance(addrA, uint256.NewInt(30))
	assert.Equal(t, uint64(70), state.GetBalance(addrA).Uint64())

	// CreateAccount on an existing account keeps its balance.
	state.CreateAccount(addrA)
	assert.Equal(t, uint64(70), state.GetBalance(addrA).Uint64())

	state.SetNonce(addrA, 5)
	assert.Equal(t, uint64(5), state.GetNonce(addrA))
}

func TestStateDBCode(t *testing.T) {
	state := NewStateDB()

	// Missing accounts hash to zero; an existing account with empty code
	// hashes to the empty-code keccak.
	assert.Equal(t, common.Hash{}, state.GetCodeHash(addrA))
	state.CreateAccount(addrA)
	emptyHash := common.HexToHash("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
	assert.Equal(t, emptyHash, state.GetCodeHash(addrA))

	code := []byte{1, 2, 3}
	state.SetCode(addrA, code)
	assert.Equal(t, code, state.GetCode(addrA))
	assert.Equal(t, 3, state.GetCodeSize(addrA))
	assert.NotEqual(t, emptyHash, state.GetCodeHash(addrA))
}

func TestStateDBOriginalStorage(t *testing.T) {
	state := NewStateDB()
	key := common.HexToHash("0x01")

	state.CreateAccount(addrA)
	state.SetState(addrA, key, common.HexToHash("0x10"))
	state.SetState(addrA, key, common.HexToHash("0x20"))

	assert.Equal(t, common.HexToHash("0x20"), state.GetState(addrA, key))
	// The pre-image is the value before the first write of the transaction.
	assert.Equal(t, common.Hash{}, state.GetOriginalState(addrA, key))

	// Untouched slots report their current value as original.
	other := common.HexToHash("0x02")
	assert.Equal(t, common.Hash{}, state.GetOriginalState(addrA, other))
}

func TestStateDBSnapshotRevert(t *testing.T) {
	state := NewStateDB()
	key := common.HexToHash("0x01")
	state.CreateAccount(addrA)
	state.SetState(addrA, key, common.HexToHash("0x10"))
	state.AddLog(Log{Address: addrA})

	snap := state.Snapshot()
	state.SetState(addrA, key, common.HexToHash("0x20"))
	state.AddBalance(addrA, uint256.NewInt(5))
	state.AddLog(Log{Address: addrB})
	state.MarkDelete(addrA, addrB)

	state.RevertToSnapshot(snap)
	assert.Equal(t, common.HexToHash("0x10"), state.GetState(addrA, key))
	assert.True(t, state.GetBalance(addrA).IsZero())
	assert.Len(t, state.Logs(), 1)
	assert.False(t, state.HasBeenDeleted(addrA))
}

func TestStateDBNestedSnapshots(t *testing.T) {
	state := NewStateDB()
	state.CreateAccount(addrA)

	outer := state.Snapshot()
	state.AddBalance(addrA, uint256.NewInt(1))
	inner := state.Snapshot()
	state.AddBalance(addrA, uint256.NewInt(2))

	// Discarding the inner snapshot keeps its changes; reverting the outer
	// one then drops everything.
	state.DiscardSnapshot(inner)
	assert.Equal(t, uint64(3), state.GetBalance(addrA).Uint64())

	state.RevertToSnapshot(outer)
	assert.True(t, state.GetBalance(addrA).IsZero())
}

func TestStateDBWarmTrackingSurvivesRevert(t *testing.T) {
	state := NewStateDB()
	key := common.HexToHash("0x01")

	require.True(t, state.IsCold(addrA, nil))
	require.True(t, state.IsCold(addrA, &key))

	snap := state.Snapshot()
	state.MarkWarm(addrA)
	state.MarkSlotWarm(addrB, key)
	state.RevertToSnapshot(snap)

	// Access tracking is not rolled back with state changes.
	assert.False(t, state.IsCold(addrA, nil))
	assert.False(t, state.IsCold(addrB, &key))
	assert.False(t, state.IsCold(addrB, nil))
	assert.True(t, state.IsCold(addrB, &common.Hash{}))
}

func TestStateDBFinaliseSweepsDeletions(t *testing.T) {
	state := NewStateDB()
	state.CreateAccount(addrA)
	state.SetBalance(addrA, uint256.NewInt(100))
	state.CreateAccount(addrB)

	state.MarkDelete(addrA, addrB)
	state.Finalise()

	assert.False(t, state.Exist(addrA))
	assert.Equal(t, uint64(100), state.GetBalance(addrB).Uint64())
	assert.False(t, state.HasBeenDeleted(addrA))
}

func TestStateDBFinaliseSelfBeneficiary(t *testing.T) {
	state := NewStateDB()
	state.CreateAccount(addrA)
	state.SetBalance(addrA, uint256.NewInt(100))

	// Sweeping to the deleted account itself burns the funds.
	state.MarkDelete(addrA, addrA)
	state.Finalise()
	assert.False(t, state.Exist(addrA))
	assert.True(t, state.GetBalance(addrA).IsZero())
}
