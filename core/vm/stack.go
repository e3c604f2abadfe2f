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
	"sync"

	"github.com/holiman/uint256"

	"github.com/erigontech/erigon-lib/log/v3"
)

// StackLimit is the maximum number of items on the operand stack.
const StackLimit = 1024

var stackPool = sync.Pool{
	New: func() any {
		return &Stack{data: make([]uint256.Int, 0, 16)}
	},
}

// Stack is an object for basic stack operations. Items popped to the stack are
// expected to be changed and modified. stack does not take care of adding newly
// initialised objects.
type Stack struct {
	data []uint256.Int
}

// NewStack fetches a cleared stack from the pool. Return it with ReturnStack
// when the frame is done with it.
func NewStack() *Stack {
	stack, ok := stackPool.Get().(*Stack)
	if !ok {
		log.Error("Type assertion failure", "err", "cannot get Stack pointer from stackPool")
	}
	return stack
}

func (st *Stack) push(d *uint256.Int) {
	// NOTE push limit (1024) is checked in the dispatch loop
	st.data = append(st.data, *d)
}

func (st *Stack) pop() (ret uint256.Int) {
	ret = st.data[len(st.data)-1]
	st.data = st.data[:len(st.data)-1]
	return
}

func (st *Stack) Push(d *uint256.Int) { st.push(d) }
func (st *Stack) Pop() uint256.Int    { return st.pop() }

func (st *Stack) Cap() int {
	return cap(st.data)
}

func (st *Stack) swap(n int) {
	st.data[st.Len()-n-1], st.data[st.Len()-1] = st.data[st.Len()-1], st.data[st.Len()-n-1]
}

func (st *Stack) dup(n int) {
	st.data = append(st.data, st.data[len(st.data)-n])
}

func (st *Stack) peek() *uint256.Int {
	return &st.data[len(st.data)-1]
}

// Back returns the n'th item in stack
func (st *Stack) Back(n int) *uint256.Int {
	return &st.data[len(st.data)-n-1]
}

// Data returns the underlying slice. Callers must not modify it.
func (st *Stack) Data() []uint256.Int {
	return st.data
}

func (st *Stack) Reset() {
	st.data = st.data[:0]
}

func (st *Stack) Len() int {
	return len(st.data)
}

// ReturnStack clears the stack and puts it back into the pool.
func ReturnStack(s *Stack) {
	s.data = s.data[:0]
	stackPool.Put(s)
}

func (st *Stack) String() string {
	var s string
	for _, di := range st.data {
		s += di.Hex() + ", "
	}
	return s
}
