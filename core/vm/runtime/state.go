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
	"maps"

	"github.com/holiman/uint256"

	"github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/crypto"
)

// Log is one appended log record. Ordering is the append order.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

type account struct {
	balance uint256.Int
	nonce   uint64
	code    []byte
	storage map[common.Hash]common.Hash
}

func (a *account) copy() *account {
	cpy := &account{
		balance: a.balance,
		nonce:   a.nonce,
		code:    a.code,
		storage: make(map[common.Hash]common.Hash, len(a.storage)),
	}
	maps.Copy(cpy.storage, a.storage)
	return cpy
}

type snapshot struct {
	accounts  map[common.Address]*account
	deletions map[common.Address]common.Address
	logLen    int
}

// StateDB is an in-memory world state for the runtime environment: good for
// tests, tools and embedding, with copy-based snapshots rather than a
// journal. It is not safe for concurrent use; the handler owning it is the
// synchronization boundary.
type StateDB struct {
	accounts  map[common.Address]*account
	deletions map[common.Address]common.Address // scheduled self-destructs, address -> beneficiary
	logs      []Log

	// original holds the first pre-image of every slot written in the
	// current transaction, for original-vs-current gas and refund rules.
	original map[common.Address]map[common.Hash]common.Hash

	warmAddresses map[common.Address]struct{}
	warmSlots     map[common.Address]map[common.Hash]struct{}

	snapshots []snapshot
}

// NewStateDB returns an empty state.
func NewStateDB() *StateDB {
	return &StateDB{
		accounts:      make(map[common.Address]*account),
		deletions:     make(map[common.Address]common.Address),
		original:      make(map[common.Address]map[common.Hash]common.Hash),
		warmAddresses: make(map[common.Address]struct{}),
		warmSlots:     make(map[common.Address]map[common.Hash]struct{}),
	}
}

func (s *StateDB) getOrNewAccount(addr common.Address) *account {
	acc, ok := s.accounts[addr]
	if !ok {
		acc = &account{storage: make(map[common.Hash]common.Hash)}
		s.accounts[addr] = acc
	}
	return acc
}

// CreateAccount makes the account exist. An already existing account keeps
// its balance.
func (s *StateDB) CreateAccount(addr common.Address) {
	s.getOrNewAccount(addr)
}

// Exist reports whether the account is present in the state.
func (s *StateDB) Exist(addr common.Address) bool {
	_, ok := s.accounts[addr]
	return ok
}

// GetBalance returns the account balance, zero for a missing account.
func (s *StateDB) GetBalance(addr common.Address) *uint256.Int {
	if acc, ok := s.accounts[addr]; ok {
		return acc.balance.Clone()
	}
	return new(uint256.Int)
}

func (s *StateDB) SetBalance(addr common.Address, value *uint256.Int) {
	s.getOrNewAccount(addr).balance.Set(value)
}

func (s *StateDB) AddBalance(addr common.Address, value *uint256.Int) {
	acc := s.getOrNewAccount(addr)
	acc.balance.Add(&acc.balance, value)
}

func (s *StateDB) SubBalance(addr common.Address, value *uint256.Int) {
	acc := s.getOrNewAccount(addr)
	acc.balance.Sub(&acc.balance, value)
}

func (s *StateDB) GetNonce(addr common.Address) uint64 {
	if acc, ok := s.accounts[addr]; ok {
		return acc.nonce
	}
	return 0
}

func (s *StateDB) SetNonce(addr common.Address, nonce uint64) {
	s.getOrNewAccount(addr).nonce = nonce
}

func (s *StateDB) GetCode(addr common.Address) []byte {
	if acc, ok := s.accounts[addr]; ok {
		return acc.code
	}
	return nil
}

func (s *StateDB) SetCode(addr common.Address, code []byte) {
	s.getOrNewAccount(addr).code = code
}

func (s *StateDB) GetCodeSize(addr common.Address) int {
	return len(s.GetCode(addr))
}

// GetCodeHash returns the keccak of the account code. Missing accounts hash
// to zero, empty code to the well-known empty-code hash.
func (s *StateDB) GetCodeHash(addr common.Address) common.Hash {
	acc, ok := s.accounts[addr]
	if !ok {
		return common.Hash{}
	}
	return crypto.Keccak256Hash(acc.code)
}

// GetState returns the current value of the storage slot.
func (s *StateDB) GetState(addr common.Address, key common.Hash) common.Hash {
	if acc, ok := s.accounts[addr]; ok {
		return acc.storage[key]
	}
	return common.Hash{}
}

// GetOriginalState returns the slot value as of the start of the
// transaction.
func (s *StateDB) GetOriginalState(addr common.Address, key common.Hash) common.Hash {
	if slots, ok := s.original[addr]; ok {
		if value, ok := slots[key]; ok {
			return value
		}
	}
	return s.GetState(addr, key)
}

// SetState writes the storage slot, recording the pre-image the first time
// a slot is written in the transaction.
func (s *StateDB) SetState(addr common.Address, key, value common.Hash) {
	slots, ok := s.original[addr]
	if !ok {
		slots = make(map[common.Hash]common.Hash)
		s.original[addr] = slots
	}
	if _, ok := slots[key]; !ok {
		slots[key] = s.GetState(addr, key)
	}
	s.getOrNewAccount(addr).storage[key] = value
}

// AddLog appends a log record.
func (s *StateDB) AddLog(log Log) {
	s.logs = append(s.logs, log)
}

// Logs returns the records appended so far, in order.
func (s *StateDB) Logs() []Log {
	return s.logs
}

// MarkDelete schedules the account for deletion with its funds swept to the
// beneficiary at commit. Only the intent is recorded here.
func (s *StateDB) MarkDelete(addr, beneficiary common.Address) {
	s.deletions[addr] = beneficiary
}

// HasBeenDeleted reports whether the account is scheduled for deletion.
func (s *StateDB) HasBeenDeleted(addr common.Address) bool {
	_, ok := s.deletions[addr]
	return ok
}

// MarkWarm records that the address was accessed in this transaction.
func (s *StateDB) MarkWarm(addr common.Address) {
	s.warmAddresses[addr] = struct{}{}
}

// MarkSlotWarm records that the storage slot was accessed in this
// transaction. The address becomes warm as well.
func (s *StateDB) MarkSlotWarm(addr common.Address, key common.Hash) {
	s.MarkWarm(addr)
	slots, ok := s.warmSlots[addr]
	if !ok {
		slots = make(map[common.Hash]struct{})
		s.warmSlots[addr] = slots
	}
	slots[key] = struct{}{}
}

// IsCold reports whether the address (key == nil) or slot (key != nil) has
// not been accessed yet. It does not mark anything warm.
func (s *StateDB) IsCold(addr common.Address, key *common.Hash) bool {
	if key == nil {
		_, warm := s.warmAddresses[addr]
		return !warm
	}
	slots, ok := s.warmSlots[addr]
	if !ok {
		return true
	}
	_, warm := slots[*key]
	return !warm
}

// Snapshot captures the current state and returns an identifier for
// RevertToSnapshot. Snapshots nest; reverting to an outer one discards the
// inner ones.
func (s *StateDB) Snapshot() int {
	accounts := make(map[common.Address]*account, len(s.accounts))
	for addr, acc := range s.accounts {
		accounts[addr] = acc.copy()
	}
	deletions := make(map[common.Address]common.Address, len(s.deletions))
	maps.Copy(deletions, s.deletions)
	s.snapshots = append(s.snapshots, snapshot{
		accounts:  accounts,
		deletions: deletions,
		logLen:    len(s.logs),
	})
	return len(s.snapshots) - 1
}

// RevertToSnapshot restores the state captured by Snapshot. Warm/cold
// tracking deliberately survives the revert, per EIP-2929.
func (s *StateDB) RevertToSnapshot(id int) {
	snap := s.snapshots[id]
	s.accounts = snap.accounts
	s.deletions = snap.deletions
	s.logs = s.logs[:snap.logLen]
	s.snapshots = s.snapshots[:id]
}

// DiscardSnapshot drops the given snapshot and everything captured after
// it, keeping the current state.
func (s *StateDB) DiscardSnapshot(id int) {
	if id < len(s.snapshots) {
		s.snapshots = s.snapshots[:id]
	}
}

// Finalise applies the scheduled self-destructs: funds are swept to the
// beneficiaries and the accounts removed. Call it at end of transaction.
func (s *StateDB) Finalise() {
	for addr, beneficiary := range s.deletions {
		balance := s.GetBalance(addr)
		delete(s.accounts, addr)
		if beneficiary != addr {
			s.AddBalance(beneficiary, balance)
		}
	}
	s.deletions = make(map[common.Address]common.Address)
	s.original = make(map[common.Address]map[common.Hash]common.Hash)
}
