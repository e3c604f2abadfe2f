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

import (
	"github.com/holiman/uint256"

	"github.com/erigontech/erigon-lib/common"
)

// getData returns a slice from the data based on the start and size and pads
// up to size with zero's. This function is overflow safe.
func getData(data []byte, start uint64, size uint64) []byte {
	length := uint64(len(data))
	if start > length {
		start = length
	}
	end := start + size
	if end > length {
		end = length
	}
	return common.RightPadBytes(data[start:end], int(size))
}

// targetGas narrows a 256-bit gas operand to the uint64 the host meters in.
// Operands beyond uint64 mean "everything you have": nil.
func targetGas(v *uint256.Int) *uint64 {
	if g, overflow := v.Uint64WithOverflow(); !overflow {
		return &g
	}
	return nil
}

func opAdd(pc *uint64, m *Machine, h Handler) error {
	x, y := m.stack.pop(), m.stack.peek()
	y.Add(&x, y)
	return nil
}

func opSub(pc *uint64, m *Machine, h Handler) error {
	x, y := m.stack.pop(), m.stack.peek()
	y.Sub(&x, y)
	return nil
}

func opMul(pc *uint64, m *Machine, h Handler) error {
	x, y := m.stack.pop(), m.stack.peek()
	y.Mul(&x, y)
	return nil
}

func opDiv(pc *uint64, m *Machine, h Handler) error {
	x, y := m.stack.pop(), m.stack.peek()
	y.Div(&x, y)
	return nil
}

func opSdiv(pc *uint64, m *Machine, h Handler) error {
	x, y := m.stack.pop(), m.stack.peek()
	y.SDiv(&x, y)
	return nil
}

func opMod(pc *uint64, m *Machine, h Handler) error {
	x, y := m.stack.pop(), m.stack.peek()
	y.Mod(&x, y)
	return nil
}

func opSmod(pc *uint64, m *Machine, h Handler) error {
	x, y := m.stack.pop(), m.stack.peek()
	y.SMod(&x, y)
	return nil
}

func opExp(pc *uint64, m *Machine, h Handler) error {
	base, exponent := m.stack.pop(), m.stack.peek()
	exponent.Exp(&base, exponent)
	return nil
}

func opSignExtend(pc *uint64, m *Machine, h Handler) error {
	back, num := m.stack.pop(), m.stack.peek()
	num.ExtendSign(num, &back)
	return nil
}

func opNot(pc *uint64, m *Machine, h Handler) error {
	x := m.stack.peek()
	x.Not(x)
	return nil
}

func opLt(pc *uint64, m *Machine, h Handler) error {
	x, y := m.stack.pop(), m.stack.peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opGt(pc *uint64, m *Machine, h Handler) error {
	x, y := m.stack.pop(), m.stack.peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opSlt(pc *uint64, m *Machine, h Handler) error {
	x, y := m.stack.pop(), m.stack.peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opSgt(pc *uint64, m *Machine, h Handler) error {
	x, y := m.stack.pop(), m.stack.peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opEq(pc *uint64, m *Machine, h Handler) error {
	x, y := m.stack.pop(), m.stack.peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opIszero(pc *uint64, m *Machine, h Handler) error {
	x := m.stack.peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return nil
}

func opAnd(pc *uint64, m *Machine, h Handler) error {
	x, y := m.stack.pop(), m.stack.peek()
	y.And(&x, y)
	return nil
}

func opOr(pc *uint64, m *Machine, h Handler) error {
	x, y := m.stack.pop(), m.stack.peek()
	y.Or(&x, y)
	return nil
}

func opXor(pc *uint64, m *Machine, h Handler) error {
	x, y := m.stack.pop(), m.stack.peek()
	y.Xor(&x, y)
	return nil
}

func opByte(pc *uint64, m *Machine, h Handler) error {
	th, val := m.stack.pop(), m.stack.peek()
	val.Byte(&th)
	return nil
}

func opAddmod(pc *uint64, m *Machine, h Handler) error {
	x, y, z := m.stack.pop(), m.stack.pop(), m.stack.peek()
	z.AddMod(&x, &y, z)
	return nil
}

func opMulmod(pc *uint64, m *Machine, h Handler) error {
	x, y, z := m.stack.pop(), m.stack.pop(), m.stack.peek()
	z.MulMod(&x, &y, z)
	return nil
}

// opSHL implements Shift Left
// The SHL instruction (shift left) pops 2 values from the stack, first arg1 and then arg2,
// and pushes on the stack arg2 shifted to the left by arg1 number of bits.
func opSHL(pc *uint64, m *Machine, h Handler) error {
	shift, value := m.stack.pop(), m.stack.peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil
}

// opSHR implements Logical Shift Right
// The SHR instruction (logical shift right) pops 2 values from the stack, first arg1 and then arg2,
// and pushes on the stack arg2 shifted to the right by arg1 number of bits with zero fill.
func opSHR(pc *uint64, m *Machine, h Handler) error {
	shift, value := m.stack.pop(), m.stack.peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil
}

// opSAR implements Arithmetic Shift Right
// The SAR instruction (arithmetic shift right) pops 2 values from the stack, first arg1 and then arg2,
// and pushes on the stack arg2 shifted to the right by arg1 number of bits with sign extension.
func opSAR(pc *uint64, m *Machine, h Handler) error {
	shift, value := m.stack.pop(), m.stack.peek()
	if shift.GtUint64(255) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			// Max negative shift: all bits set
			value.SetAllOne()
		}
		return nil
	}
	n := uint(shift.Uint64())
	value.SRsh(value, n)
	return nil
}

func opSha3(pc *uint64, m *Machine, h Handler) error {
	offset, size := m.stack.pop(), m.stack.peek()
	off, length, err := m.extendMemory(&offset, size)
	if err != nil {
		return err
	}
	hash := m.keccak(m.memory.GetPtr(off, length))
	size.SetBytes(hash[:])
	return nil
}

func opAddress(pc *uint64, m *Machine, h Handler) error {
	m.stack.Push(new(uint256.Int).SetBytes(m.Context.Address.Bytes()))
	return nil
}

func opBalance(pc *uint64, m *Machine, h Handler) error {
	slot := m.stack.peek()
	address := common.Address(slot.Bytes20())
	balance, err := h.Balance(address)
	if err != nil {
		return err
	}
	slot.Set(balance)
	return nil
}

func opSelfBalance(pc *uint64, m *Machine, h Handler) error {
	balance, err := h.Balance(m.Context.Address)
	if err != nil {
		return err
	}
	m.stack.Push(balance)
	return nil
}

func opOrigin(pc *uint64, m *Machine, h Handler) error {
	origin, err := h.Origin()
	if err != nil {
		return err
	}
	m.stack.Push(new(uint256.Int).SetBytes(origin.Bytes()))
	return nil
}

func opCaller(pc *uint64, m *Machine, h Handler) error {
	m.stack.Push(new(uint256.Int).SetBytes(m.Context.Caller.Bytes()))
	return nil
}

func opCallValue(pc *uint64, m *Machine, h Handler) error {
	m.stack.Push(m.Context.ApparentValue)
	return nil
}

func opCallDataLoad(pc *uint64, m *Machine, h Handler) error {
	x := m.stack.peek()
	if offset, overflow := x.Uint64WithOverflow(); !overflow {
		data := getData(m.input, offset, 32)
		x.SetBytes(data)
	} else {
		x.Clear()
	}
	return nil
}

func opCallDataSize(pc *uint64, m *Machine, h Handler) error {
	m.stack.Push(new(uint256.Int).SetUint64(uint64(len(m.input))))
	return nil
}

func opCallDataCopy(pc *uint64, m *Machine, h Handler) error {
	var (
		memOffset  = m.stack.pop()
		dataOffset = m.stack.pop()
		length     = m.stack.pop()
	)
	dataOffset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		dataOffset64 = ^uint64(0)
	}
	memOff, copyLen, err := m.extendMemory(&memOffset, &length)
	if err != nil {
		return err
	}
	m.memory.Set(memOff, copyLen, getData(m.input, dataOffset64, copyLen))
	return nil
}

func opCodeSize(pc *uint64, m *Machine, h Handler) error {
	m.stack.Push(new(uint256.Int).SetUint64(uint64(len(m.code))))
	return nil
}

func opCodeCopy(pc *uint64, m *Machine, h Handler) error {
	var (
		memOffset  = m.stack.pop()
		codeOffset = m.stack.pop()
		length     = m.stack.pop()
	)
	codeOffset64, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		codeOffset64 = ^uint64(0)
	}
	memOff, copyLen, err := m.extendMemory(&memOffset, &length)
	if err != nil {
		return err
	}
	m.memory.Set(memOff, copyLen, getData(m.code, codeOffset64, copyLen))
	return nil
}

func opExtCodeSize(pc *uint64, m *Machine, h Handler) error {
	slot := m.stack.peek()
	address := common.Address(slot.Bytes20())
	size, err := h.CodeSize(address)
	if err != nil {
		return err
	}
	slot.SetUint64(uint64(size))
	return nil
}

func opExtCodeCopy(pc *uint64, m *Machine, h Handler) error {
	var (
		a          = m.stack.pop()
		memOffset  = m.stack.pop()
		codeOffset = m.stack.pop()
		length     = m.stack.pop()
	)
	codeOffset64, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		codeOffset64 = ^uint64(0)
	}
	memOff, copyLen, err := m.extendMemory(&memOffset, &length)
	if err != nil {
		return err
	}
	code, err := h.Code(common.Address(a.Bytes20()))
	if err != nil {
		return err
	}
	m.memory.Set(memOff, copyLen, getData(code, codeOffset64, copyLen))
	return nil
}

// opExtCodeHash returns the code hash of a specified account. The handler
// decides the hash of non-existing and empty accounts.
func opExtCodeHash(pc *uint64, m *Machine, h Handler) error {
	slot := m.stack.peek()
	address := common.Address(slot.Bytes20())
	codeHash, err := h.CodeHash(address)
	if err != nil {
		return err
	}
	slot.SetBytes(codeHash.Bytes())
	return nil
}

func opGasprice(pc *uint64, m *Machine, h Handler) error {
	price, err := h.GasPrice()
	if err != nil {
		return err
	}
	m.stack.Push(price)
	return nil
}

func opReturnDataSize(pc *uint64, m *Machine, h Handler) error {
	m.stack.Push(new(uint256.Int).SetUint64(uint64(len(m.returnData))))
	return nil
}

func opReturnDataCopy(pc *uint64, m *Machine, h Handler) error {
	var (
		memOffset  = m.stack.pop()
		dataOffset = m.stack.pop()
		length     = m.stack.pop()
	)
	offset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		return ErrReturnDataOutOfBounds
	}
	end := dataOffset
	end.Add(&dataOffset, &length)
	end64, overflow := end.Uint64WithOverflow()
	if overflow || uint64(len(m.returnData)) < end64 {
		return ErrReturnDataOutOfBounds
	}
	memOff, copyLen, err := m.extendMemory(&memOffset, &length)
	if err != nil {
		return err
	}
	m.memory.Set(memOff, copyLen, m.returnData[offset64:end64])
	return nil
}

func opBlockhash(pc *uint64, m *Machine, h Handler) error {
	num := m.stack.peek()
	hash, err := h.BlockHash(num)
	if err != nil {
		return err
	}
	num.SetBytes(hash.Bytes())
	return nil
}

func opCoinbase(pc *uint64, m *Machine, h Handler) error {
	coinbase, err := h.BlockCoinbase()
	if err != nil {
		return err
	}
	m.stack.Push(new(uint256.Int).SetBytes(coinbase.Bytes()))
	return nil
}

func opTimestamp(pc *uint64, m *Machine, h Handler) error {
	ts, err := h.BlockTimestamp()
	if err != nil {
		return err
	}
	m.stack.Push(ts)
	return nil
}

func opNumber(pc *uint64, m *Machine, h Handler) error {
	number, err := h.BlockNumber()
	if err != nil {
		return err
	}
	m.stack.Push(number)
	return nil
}

func opDifficulty(pc *uint64, m *Machine, h Handler) error {
	difficulty, err := h.BlockDifficulty()
	if err != nil {
		return err
	}
	m.stack.Push(difficulty)
	return nil
}

func opGasLimit(pc *uint64, m *Machine, h Handler) error {
	limit, err := h.BlockGasLimit()
	if err != nil {
		return err
	}
	m.stack.Push(limit)
	return nil
}

func opChainID(pc *uint64, m *Machine, h Handler) error {
	chainID, err := h.ChainID()
	if err != nil {
		return err
	}
	m.stack.Push(chainID)
	return nil
}

func opBaseFee(pc *uint64, m *Machine, h Handler) error {
	baseFee, err := h.BlockBaseFeePerGas()
	if err != nil {
		return err
	}
	m.stack.Push(baseFee)
	return nil
}

func opPop(pc *uint64, m *Machine, h Handler) error {
	m.stack.pop()
	return nil
}

func opMload(pc *uint64, m *Machine, h Handler) error {
	v := m.stack.peek()
	offset := *v
	off, _, err := m.extendMemory(&offset, u256Word)
	if err != nil {
		return err
	}
	v.SetBytes(m.memory.GetPtr(off, 32))
	return nil
}

func opMstore(pc *uint64, m *Machine, h Handler) error {
	mStart, val := m.stack.pop(), m.stack.pop()
	off, _, err := m.extendMemory(&mStart, u256Word)
	if err != nil {
		return err
	}
	m.memory.Set32(off, &val)
	return nil
}

func opMstore8(pc *uint64, m *Machine, h Handler) error {
	off256, val := m.stack.pop(), m.stack.pop()
	off, _, err := m.extendMemory(&off256, u256Byte)
	if err != nil {
		return err
	}
	m.memory.Set(off, 1, []byte{byte(val.Uint64())})
	return nil
}

func opSload(pc *uint64, m *Machine, h Handler) error {
	loc := m.stack.peek()
	value, err := h.Storage(m.Context.Address, loc.Bytes32())
	if err != nil {
		return err
	}
	loc.SetBytes(value.Bytes())
	return nil
}

func opSstore(pc *uint64, m *Machine, h Handler) error {
	loc, val := m.stack.pop(), m.stack.pop()
	return h.SetStorage(m.Context.Address, loc.Bytes32(), val.Bytes32())
}

func opJump(pc *uint64, m *Machine, h Handler) error {
	pos := m.stack.pop()
	if !m.validJumpdest(&pos) {
		return ErrInvalidJump
	}
	*pc = pos.Uint64() - 1 // pc will be increased by the dispatch loop
	return nil
}

func opJumpi(pc *uint64, m *Machine, h Handler) error {
	pos, cond := m.stack.pop(), m.stack.pop()
	if !cond.IsZero() {
		if !m.validJumpdest(&pos) {
			return ErrInvalidJump
		}
		*pc = pos.Uint64() - 1 // pc will be increased by the dispatch loop
	}
	return nil
}

func opJumpdest(pc *uint64, m *Machine, h Handler) error {
	return nil
}

func opPc(pc *uint64, m *Machine, h Handler) error {
	m.stack.Push(new(uint256.Int).SetUint64(*pc))
	return nil
}

func opMsize(pc *uint64, m *Machine, h Handler) error {
	m.stack.Push(new(uint256.Int).SetUint64(uint64(m.memory.Len())))
	return nil
}

func opGas(pc *uint64, m *Machine, h Handler) error {
	gas, err := h.GasLeft()
	if err != nil {
		return err
	}
	m.stack.Push(new(uint256.Int).SetUint64(gas))
	return nil
}

func opPush0(pc *uint64, m *Machine, h Handler) error {
	m.stack.Push(new(uint256.Int))
	return nil
}

// makePush instruction function
func makePush(pushByteSize int) executionFunc {
	return func(pc *uint64, m *Machine, h Handler) error {
		var (
			codeLen = len(m.code)
			start   = min(codeLen, int(*pc+1))
			end     = min(codeLen, start+pushByteSize)
		)
		a := new(uint256.Int).SetBytes(m.code[start:end])

		// Missing bytes: pushByteSize - len(pushData)
		if missing := pushByteSize - (end - start); missing > 0 {
			a.Lsh(a, uint(8*missing))
		}
		m.stack.Push(a)
		*pc += uint64(pushByteSize)
		return nil
	}
}

// makeDup instruction function
func makeDup(size int) executionFunc {
	return func(pc *uint64, m *Machine, h Handler) error {
		m.stack.dup(size)
		return nil
	}
}

// makeSwap instruction function
func makeSwap(size int) executionFunc {
	return func(pc *uint64, m *Machine, h Handler) error {
		m.stack.swap(size)
		return nil
	}
}

// makeLog instruction function
func makeLog(size int) executionFunc {
	return func(pc *uint64, m *Machine, h Handler) error {
		topics := make([]common.Hash, size)
		mStart, mSize := m.stack.pop(), m.stack.pop()
		for i := 0; i < size; i++ {
			addr := m.stack.pop()
			topics[i] = addr.Bytes32()
		}
		off, length, err := m.extendMemory(&mStart, &mSize)
		if err != nil {
			return err
		}
		return h.Log(m.Context.Address, topics, m.memory.GetCopy(off, length))
	}
}

func opCreate(pc *uint64, m *Machine, h Handler) error {
	var (
		value  = m.stack.pop()
		offset = m.stack.pop()
		size   = m.stack.pop()
	)
	off, length, err := m.extendMemory(&offset, &size)
	if err != nil {
		return err
	}
	initCode := m.memory.GetCopy(off, length)
	scheme := LegacyCreateScheme{Caller: m.Context.Address}
	return m.invokeCreate(CREATE, scheme, value.Clone(), initCode, h)
}

func opCreate2(pc *uint64, m *Machine, h Handler) error {
	var (
		value  = m.stack.pop()
		offset = m.stack.pop()
		size   = m.stack.pop()
		salt   = m.stack.pop()
	)
	off, length, err := m.extendMemory(&offset, &size)
	if err != nil {
		return err
	}
	initCode := m.memory.GetCopy(off, length)
	scheme := Create2Scheme{
		Caller:   m.Context.Address,
		CodeHash: m.keccak(initCode),
		Salt:     salt.Bytes32(),
	}
	return m.invokeCreate(CREATE2, scheme, value.Clone(), initCode, h)
}

func (m *Machine) invokeCreate(op OpCode, scheme CreateScheme, value *uint256.Int, initCode []byte, h Handler) error {
	capture, err := h.Create(m.Context.Address, scheme, value, initCode, nil)
	if err != nil {
		return err
	}
	if trap, ok := capture.Trap(); ok {
		m.interrupt = Interrupt{Op: op, Create: trap}
		m.pendingCreate = true
		return errTrapToken
	}
	result, _ := capture.Exit()
	if result.Reason.Fatal() {
		return fatalAsError(result.Reason)
	}
	m.applyCreateResult(result.Reason, result.Address, result.Output)
	return nil
}

func opCall(pc *uint64, m *Machine, h Handler) error {
	var (
		gas       = m.stack.pop()
		addr      = m.stack.pop()
		value     = m.stack.pop()
		inOffset  = m.stack.pop()
		inSize    = m.stack.pop()
		retOffset = m.stack.pop()
		retSize   = m.stack.pop()
	)
	if m.static && !value.IsZero() {
		return ErrWriteProtection
	}
	toAddr := common.Address(addr.Bytes20())
	inOff, inLen, err := m.extendMemory(&inOffset, &inSize)
	if err != nil {
		return err
	}
	retOff, retLen, err := m.extendMemory(&retOffset, &retSize)
	if err != nil {
		return err
	}
	transfer := &Transfer{Source: m.Context.Address, Target: toAddr, Value: value.Clone()}
	ctx := Context{Address: toAddr, Caller: m.Context.Address, ApparentValue: value.Clone()}
	return m.invokeCall(CALL, toAddr, transfer, m.memory.GetCopy(inOff, inLen), targetGas(&gas), m.static, ctx, retOff, retLen, h)
}

func opCallCode(pc *uint64, m *Machine, h Handler) error {
	var (
		gas       = m.stack.pop()
		addr      = m.stack.pop()
		value     = m.stack.pop()
		inOffset  = m.stack.pop()
		inSize    = m.stack.pop()
		retOffset = m.stack.pop()
		retSize   = m.stack.pop()
	)
	if m.static && !value.IsZero() {
		return ErrWriteProtection
	}
	toAddr := common.Address(addr.Bytes20())
	inOff, inLen, err := m.extendMemory(&inOffset, &inSize)
	if err != nil {
		return err
	}
	retOff, retLen, err := m.extendMemory(&retOffset, &retSize)
	if err != nil {
		return err
	}
	// The code executes against our own account and the value moves within it.
	transfer := &Transfer{Source: m.Context.Address, Target: m.Context.Address, Value: value.Clone()}
	ctx := Context{Address: m.Context.Address, Caller: m.Context.Address, ApparentValue: value.Clone()}
	return m.invokeCall(CALLCODE, toAddr, transfer, m.memory.GetCopy(inOff, inLen), targetGas(&gas), m.static, ctx, retOff, retLen, h)
}

func opDelegateCall(pc *uint64, m *Machine, h Handler) error {
	var (
		gas       = m.stack.pop()
		addr      = m.stack.pop()
		inOffset  = m.stack.pop()
		inSize    = m.stack.pop()
		retOffset = m.stack.pop()
		retSize   = m.stack.pop()
	)
	toAddr := common.Address(addr.Bytes20())
	inOff, inLen, err := m.extendMemory(&inOffset, &inSize)
	if err != nil {
		return err
	}
	retOff, retLen, err := m.extendMemory(&retOffset, &retSize)
	if err != nil {
		return err
	}
	// Caller and apparent value are inherited from the parent frame; no
	// value moves.
	ctx := Context{
		Address:       m.Context.Address,
		Caller:        m.Context.Caller,
		ApparentValue: m.Context.ApparentValue.Clone(),
	}
	return m.invokeCall(DELEGATECALL, toAddr, nil, m.memory.GetCopy(inOff, inLen), targetGas(&gas), m.static, ctx, retOff, retLen, h)
}

func opStaticCall(pc *uint64, m *Machine, h Handler) error {
	var (
		gas       = m.stack.pop()
		addr      = m.stack.pop()
		inOffset  = m.stack.pop()
		inSize    = m.stack.pop()
		retOffset = m.stack.pop()
		retSize   = m.stack.pop()
	)
	toAddr := common.Address(addr.Bytes20())
	inOff, inLen, err := m.extendMemory(&inOffset, &inSize)
	if err != nil {
		return err
	}
	retOff, retLen, err := m.extendMemory(&retOffset, &retSize)
	if err != nil {
		return err
	}
	ctx := Context{Address: toAddr, Caller: m.Context.Address, ApparentValue: new(uint256.Int)}
	return m.invokeCall(STATICCALL, toAddr, nil, m.memory.GetCopy(inOff, inLen), targetGas(&gas), true, ctx, retOff, retLen, h)
}

func (m *Machine) invokeCall(op OpCode, codeAddress common.Address, transfer *Transfer, input []byte, gas *uint64, isStatic bool, ctx Context, retOffset, retSize uint64, h Handler) error {
	capture, err := h.Call(codeAddress, transfer, input, gas, isStatic, ctx)
	if err != nil {
		return err
	}
	if trap, ok := capture.Trap(); ok {
		m.interrupt = Interrupt{Op: op, Call: trap}
		m.pendingCall = &pendingCall{retOffset: retOffset, retSize: retSize}
		return errTrapToken
	}
	result, _ := capture.Exit()
	if result.Reason.Fatal() {
		return fatalAsError(result.Reason)
	}
	m.applyCallResult(result.Reason, result.Output, retOffset, retSize)
	return nil
}

// fatalAsError re-raises a fatal exit reason out of a resolved nested frame,
// so it keeps unwinding through this frame too.
func fatalAsError(reason ExitReason) error {
	if f, ok := reason.(ExitFatal); ok {
		return f
	}
	return ExitFatal{Err: ErrHostFailed}
}

func opReturn(pc *uint64, m *Machine, h Handler) error {
	offset, size := m.stack.pop(), m.stack.pop()
	off, length, err := m.extendMemory(&offset, &size)
	if err != nil {
		return err
	}
	m.output = m.memory.GetCopy(off, length)
	m.reason = ExitReturned
	return errStopToken
}

func opRevert(pc *uint64, m *Machine, h Handler) error {
	offset, size := m.stack.pop(), m.stack.pop()
	off, length, err := m.extendMemory(&offset, &size)
	if err != nil {
		return err
	}
	m.output = m.memory.GetCopy(off, length)
	m.reason = ExitReverted
	return errStopToken
}

func opStop(pc *uint64, m *Machine, h Handler) error {
	m.reason = ExitStopped
	return errStopToken
}

func opUndefined(pc *uint64, m *Machine, h Handler) error {
	return ErrInvalidOpCode{opcode: OpCode(m.code[*pc])}
}

func opSuicide(pc *uint64, m *Machine, h Handler) error {
	beneficiary := m.stack.pop()
	if err := h.MarkDelete(m.Context.Address, common.Address(beneficiary.Bytes20())); err != nil {
		return err
	}
	m.reason = ExitSuicided
	return errStopToken
}

// Fixed operand sizes for the memory extension helper.
var (
	u256Word = uint256.NewInt(32)
	u256Byte = uint256.NewInt(1)
)
