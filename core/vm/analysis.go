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
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/log/v3"
)

// bitvec is a bit vector which maps bytes in a program.
// An unset bit means the byte is an opcode, a set bit means
// it's data (i.e. argument of PUSHxx).
type bitvec []byte

func (bits bitvec) set1(pos uint64) {
	bits[pos/8] |= 1 << (pos % 8)
}

// codeSegment checks if the position is in a code segment.
func (bits bitvec) codeSegment(pos uint64) bool {
	return ((bits[pos/8] >> (pos % 8)) & 1) == 0
}

// codeBitmap collects data locations in code.
func codeBitmap(code []byte) bitvec {
	// The bitmap is 4 bytes longer than necessary, in case the code
	// ends with a PUSH32, the algorithm will set bits on the
	// bitvector outside the bounds of the actual code.
	bits := make(bitvec, len(code)/8+1+4)
	for pc := uint64(0); pc < uint64(len(code)); {
		op := OpCode(code[pc])
		pc++
		numbits, ok := op.IsPush()
		if !ok {
			continue
		}
		for i := 0; i < numbits; i++ {
			bits.set1(pc)
			pc++
		}
	}
	return bits
}

// JumpDestCacheLimit is the default number of analysed code bitmaps kept.
const JumpDestCacheLimit = 1024

// JumpDestCache caches the results of jumpdest analysis keyed by code hash,
// so hot contracts are analysed once per process rather than once per frame.
type JumpDestCache struct {
	cache *lru.Cache[common.Hash, bitvec]
}

func NewJumpDestCache(limit int) *JumpDestCache {
	cache, err := lru.New[common.Hash, bitvec](limit)
	if err != nil {
		log.Error("Could not create jumpdest cache", "err", err)
		return &JumpDestCache{}
	}
	return &JumpDestCache{cache: cache}
}

// analysis returns the code bitmap for the given code, consulting the cache
// when the code hash is known. The zero hash bypasses the cache: initcode
// has no settled identity.
func (c *JumpDestCache) analysis(codeHash common.Hash, code []byte) bitvec {
	if c.cache == nil || codeHash == (common.Hash{}) {
		return codeBitmap(code)
	}
	if cached, ok := c.cache.Get(codeHash); ok {
		return cached
	}
	bits := codeBitmap(code)
	c.cache.Add(codeHash, bits)
	return bits
}
