package interp

import "math/bits"

// Barrel shifter helpers shared by the THUMB register shifts. Amounts come
// from a register's low byte, so anything up to 255 must behave.
func shiftLsl(v, amount uint32, carryIn bool) (uint32, bool) {
	switch {
	case amount == 0:
		return v, carryIn
	case amount < 32:
		return v << amount, (v>>(32-amount))&1 != 0
	case amount == 32:
		return 0, v&1 != 0
	default:
		return 0, false
	}
}

func shiftLsr(v, amount uint32, carryIn bool) (uint32, bool) {
	switch {
	case amount == 0:
		return v, carryIn
	case amount < 32:
		return v >> amount, (v>>(amount-1))&1 != 0
	case amount == 32:
		return 0, v&(1<<31) != 0
	default:
		return 0, false
	}
}

func shiftAsr(v, amount uint32, carryIn bool) (uint32, bool) {
	switch {
	case amount == 0:
		return v, carryIn
	case amount < 32:
		return uint32(int32(v) >> amount), (v>>(amount-1))&1 != 0
	default:
		return uint32(int32(v) >> 31), v&(1<<31) != 0
	}
}

func shiftRor(v, amount uint32, carryIn bool) (uint32, bool) {
	switch {
	case amount == 0:
		return v, carryIn
	case amount&31 == 0:
		return v, v&(1<<31) != 0
	default:
		return bits.RotateLeft32(v, -int(amount&31)), (v>>((amount&31)-1))&1 != 0
	}
}

// thumbLslImm builds LSL Rd, Rs, #amount.
func thumbLslImm(amount uint32) thumbFn {
	return func(c *Interpreter, op uint16) int {
		v := *c.regPtr[(op>>3)&7]
		result := v << amount
		carry := c.cpsr&bitC != 0
		if amount != 0 {
			carry = (v>>(32-amount))&1 != 0
		}
		*c.regPtr[op&7] = result
		c.flagsLogical(result, carry)
		return 1
	}
}

// thumbLsrImm builds LSR Rd, Rs, #amount; amount 0 means 32.
func thumbLsrImm(amount uint32) thumbFn {
	return func(c *Interpreter, op uint16) int {
		v := *c.regPtr[(op>>3)&7]
		var result uint32
		var carry bool
		if amount == 0 {
			result, carry = 0, v&(1<<31) != 0
		} else {
			result, carry = v>>amount, (v>>(amount-1))&1 != 0
		}
		*c.regPtr[op&7] = result
		c.flagsLogical(result, carry)
		return 1
	}
}

// thumbAsrImm builds ASR Rd, Rs, #amount; amount 0 means 32.
func thumbAsrImm(amount uint32) thumbFn {
	return func(c *Interpreter, op uint16) int {
		v := *c.regPtr[(op>>3)&7]
		var result uint32
		var carry bool
		if amount == 0 {
			result, carry = uint32(int32(v)>>31), v&(1<<31) != 0
		} else {
			result, carry = uint32(int32(v)>>amount), (v>>(amount-1))&1 != 0
		}
		*c.regPtr[op&7] = result
		c.flagsLogical(result, carry)
		return 1
	}
}

// thumbAddSub builds ADD/SUB Rd, Rs, Rn|#imm3. The register index or
// immediate rides in the table slot.
func thumbAddSub(immediate, subtract bool, field uint32) thumbFn {
	return func(c *Interpreter, op uint16) int {
		a := *c.regPtr[(op>>3)&7]
		b := field
		if !immediate {
			b = *c.regPtr[field]
		}
		var result uint32
		if subtract {
			result = a - b
			c.flagsSub(a, b, result)
		} else {
			result = a + b
			c.flagsAdd(a, b, result)
		}
		*c.regPtr[op&7] = result
		return 1
	}
}

// thumbMovImm8 builds MOV Rd, #imm8.
func thumbMovImm8(rd uint32) thumbFn {
	return func(c *Interpreter, op uint16) int {
		value := uint32(op) & 0xFF
		*c.regPtr[rd] = value
		c.flagsNZ(value)
		return 1
	}
}

// thumbCmpImm8 builds CMP Rd, #imm8.
func thumbCmpImm8(rd uint32) thumbFn {
	return func(c *Interpreter, op uint16) int {
		a := *c.regPtr[rd]
		b := uint32(op) & 0xFF
		c.flagsSub(a, b, a-b)
		return 1
	}
}

// thumbAddImm8 builds ADD Rd, #imm8.
func thumbAddImm8(rd uint32) thumbFn {
	return func(c *Interpreter, op uint16) int {
		a := *c.regPtr[rd]
		b := uint32(op) & 0xFF
		result := a + b
		*c.regPtr[rd] = result
		c.flagsAdd(a, b, result)
		return 1
	}
}

// thumbSubImm8 builds SUB Rd, #imm8.
func thumbSubImm8(rd uint32) thumbFn {
	return func(c *Interpreter, op uint16) int {
		a := *c.regPtr[rd]
		b := uint32(op) & 0xFF
		result := a - b
		*c.regPtr[rd] = result
		c.flagsSub(a, b, result)
		return 1
	}
}

// thumbAluOps is the register-to-register ALU group, indexed by bits 9..6.
var thumbAluOps = [16]thumbFn{
	thumbAnd, thumbEor, thumbLslReg, thumbLsrReg,
	thumbAsrReg, thumbAdc, thumbSbc, thumbRorReg,
	thumbTst, thumbNeg, thumbCmpReg, thumbCmnReg,
	thumbOrr, thumbMul, thumbBic, thumbMvn,
}

func thumbAnd(c *Interpreter, op uint16) int {
	result := *c.regPtr[op&7] & *c.regPtr[(op>>3)&7]
	*c.regPtr[op&7] = result
	c.flagsNZ(result)
	return 1
}

func thumbEor(c *Interpreter, op uint16) int {
	result := *c.regPtr[op&7] ^ *c.regPtr[(op>>3)&7]
	*c.regPtr[op&7] = result
	c.flagsNZ(result)
	return 1
}

func thumbLslReg(c *Interpreter, op uint16) int {
	result, carry := shiftLsl(*c.regPtr[op&7], *c.regPtr[(op>>3)&7]&0xFF, c.cpsr&bitC != 0)
	*c.regPtr[op&7] = result
	c.flagsLogical(result, carry)
	return 1
}

func thumbLsrReg(c *Interpreter, op uint16) int {
	result, carry := shiftLsr(*c.regPtr[op&7], *c.regPtr[(op>>3)&7]&0xFF, c.cpsr&bitC != 0)
	*c.regPtr[op&7] = result
	c.flagsLogical(result, carry)
	return 1
}

func thumbAsrReg(c *Interpreter, op uint16) int {
	result, carry := shiftAsr(*c.regPtr[op&7], *c.regPtr[(op>>3)&7]&0xFF, c.cpsr&bitC != 0)
	*c.regPtr[op&7] = result
	c.flagsLogical(result, carry)
	return 1
}

func thumbAdc(c *Interpreter, op uint16) int {
	a := *c.regPtr[op&7]
	b := *c.regPtr[(op>>3)&7]
	carryIn := c.carry()
	result := a + b + carryIn
	*c.regPtr[op&7] = result
	c.flagsAddCarry(a, b, result, carryIn)
	return 1
}

func thumbSbc(c *Interpreter, op uint16) int {
	a := *c.regPtr[op&7]
	b := *c.regPtr[(op>>3)&7]
	borrow := 1 - c.carry()
	result := a - b - borrow
	*c.regPtr[op&7] = result
	c.flagsSubCarry(a, b, result, borrow)
	return 1
}

func thumbRorReg(c *Interpreter, op uint16) int {
	result, carry := shiftRor(*c.regPtr[op&7], *c.regPtr[(op>>3)&7]&0xFF, c.cpsr&bitC != 0)
	*c.regPtr[op&7] = result
	c.flagsLogical(result, carry)
	return 1
}

func thumbTst(c *Interpreter, op uint16) int {
	c.flagsNZ(*c.regPtr[op&7] & *c.regPtr[(op>>3)&7])
	return 1
}

func thumbNeg(c *Interpreter, op uint16) int {
	b := *c.regPtr[(op>>3)&7]
	result := -b
	*c.regPtr[op&7] = result
	c.flagsSub(0, b, result)
	return 1
}

func thumbCmpReg(c *Interpreter, op uint16) int {
	a := *c.regPtr[op&7]
	b := *c.regPtr[(op>>3)&7]
	c.flagsSub(a, b, a-b)
	return 1
}

func thumbCmnReg(c *Interpreter, op uint16) int {
	a := *c.regPtr[op&7]
	b := *c.regPtr[(op>>3)&7]
	c.flagsAdd(a, b, a+b)
	return 1
}

func thumbOrr(c *Interpreter, op uint16) int {
	result := *c.regPtr[op&7] | *c.regPtr[(op>>3)&7]
	*c.regPtr[op&7] = result
	c.flagsNZ(result)
	return 1
}

func thumbMul(c *Interpreter, op uint16) int {
	result := *c.regPtr[op&7] * *c.regPtr[(op>>3)&7]
	*c.regPtr[op&7] = result
	c.flagsNZ(result)
	return 2
}

func thumbBic(c *Interpreter, op uint16) int {
	result := *c.regPtr[op&7] &^ *c.regPtr[(op>>3)&7]
	*c.regPtr[op&7] = result
	c.flagsNZ(result)
	return 1
}

func thumbMvn(c *Interpreter, op uint16) int {
	result := ^*c.regPtr[(op>>3)&7]
	*c.regPtr[op&7] = result
	c.flagsNZ(result)
	return 1
}

// thumbHiReg builds the hi-register operations and BX/BLX. The H bits
// extend the register fields to the full set.
func thumbHiReg(opcode uint32, h1, h2 bool) thumbFn {
	var hi1, hi2 uint32
	if h1 {
		hi1 = 8
	}
	if h2 {
		hi2 = 8
	}

	switch opcode {
	case 0: // ADD
		return func(c *Interpreter, op uint16) int {
			rd := uint32(op)&7 | hi1
			*c.regPtr[rd] += *c.regPtr[uint32(op>>3)&7|hi2]
			if rd == 15 {
				c.FlushPipeline()
				return 3
			}
			return 1
		}
	case 1: // CMP
		return func(c *Interpreter, op uint16) int {
			a := *c.regPtr[uint32(op)&7|hi1]
			b := *c.regPtr[uint32(op>>3)&7|hi2]
			c.flagsSub(a, b, a-b)
			return 1
		}
	case 2: // MOV
		return func(c *Interpreter, op uint16) int {
			rd := uint32(op)&7 | hi1
			*c.regPtr[rd] = *c.regPtr[uint32(op>>3)&7|hi2]
			if rd == 15 {
				c.FlushPipeline()
				return 3
			}
			return 1
		}
	default: // BX, or BLX with H1 (ARM9)
		if h1 {
			return func(c *Interpreter, op uint16) int {
				target := *c.regPtr[uint32(op>>3)&7|hi2]
				*c.regPtr[14] = (*c.regPtr[15] - 2) | 1
				return c.bxCommon(target)
			}
		}
		return func(c *Interpreter, op uint16) int {
			return c.bxCommon(*c.regPtr[uint32(op>>3)&7|hi2])
		}
	}
}
