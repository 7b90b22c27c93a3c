package interp

import "math/bits"

// op2Fn computes a data-processing second operand and the shifter
// carry-out. When the shifter leaves carry untouched, the current C flag is
// returned.
type op2Fn func(c *Interpreter, op uint32) (uint32, bool)

// op2Imm rotates an 8-bit immediate right by twice the 4-bit rotate field.
func op2Imm(c *Interpreter, op uint32) (uint32, bool) {
	rot := (op >> 7) & 0x1E
	value := bits.RotateLeft32(op&0xFF, -int(rot))
	if rot == 0 {
		return value, c.cpsr&bitC != 0
	}
	return value, value&(1<<31) != 0
}

func op2LslImm(c *Interpreter, op uint32) (uint32, bool) {
	v := *c.regPtr[op&0xF]
	amount := (op >> 7) & 0x1F
	if amount == 0 {
		return v, c.cpsr&bitC != 0
	}
	return v << amount, v&(1<<(32-amount)) != 0
}

func op2LsrImm(c *Interpreter, op uint32) (uint32, bool) {
	v := *c.regPtr[op&0xF]
	amount := (op >> 7) & 0x1F
	if amount == 0 { // LSR #32
		return 0, v&(1<<31) != 0
	}
	return v >> amount, (v>>(amount-1))&1 != 0
}

func op2AsrImm(c *Interpreter, op uint32) (uint32, bool) {
	v := *c.regPtr[op&0xF]
	amount := (op >> 7) & 0x1F
	if amount == 0 { // ASR #32
		return uint32(int32(v) >> 31), v&(1<<31) != 0
	}
	return uint32(int32(v) >> amount), (v>>(amount-1))&1 != 0
}

func op2RorImm(c *Interpreter, op uint32) (uint32, bool) {
	v := *c.regPtr[op&0xF]
	amount := (op >> 7) & 0x1F
	if amount == 0 { // RRX
		return (v >> 1) | (c.carry() << 31), v&1 != 0
	}
	return bits.RotateLeft32(v, -int(amount)), (v>>(amount-1))&1 != 0
}

func op2LslReg(c *Interpreter, op uint32) (uint32, bool) {
	v := *c.regPtr[op&0xF]
	amount := *c.regPtr[(op>>8)&0xF] & 0xFF
	switch {
	case amount == 0:
		return v, c.cpsr&bitC != 0
	case amount < 32:
		return v << amount, (v>>(32-amount))&1 != 0
	case amount == 32:
		return 0, v&1 != 0
	default:
		return 0, false
	}
}

func op2LsrReg(c *Interpreter, op uint32) (uint32, bool) {
	v := *c.regPtr[op&0xF]
	amount := *c.regPtr[(op>>8)&0xF] & 0xFF
	switch {
	case amount == 0:
		return v, c.cpsr&bitC != 0
	case amount < 32:
		return v >> amount, (v>>(amount-1))&1 != 0
	case amount == 32:
		return 0, v&(1<<31) != 0
	default:
		return 0, false
	}
}

func op2AsrReg(c *Interpreter, op uint32) (uint32, bool) {
	v := *c.regPtr[op&0xF]
	amount := *c.regPtr[(op>>8)&0xF] & 0xFF
	switch {
	case amount == 0:
		return v, c.cpsr&bitC != 0
	case amount < 32:
		return uint32(int32(v) >> amount), (v>>(amount-1))&1 != 0
	default:
		return uint32(int32(v) >> 31), v&(1<<31) != 0
	}
}

func op2RorReg(c *Interpreter, op uint32) (uint32, bool) {
	v := *c.regPtr[op&0xF]
	amount := *c.regPtr[(op>>8)&0xF] & 0xFF
	switch {
	case amount == 0:
		return v, c.cpsr&bitC != 0
	case amount&31 == 0:
		return v, v&(1<<31) != 0
	default:
		return bits.RotateLeft32(v, -int(amount&31)), (v>>((amount&31)-1))&1 != 0
	}
}

// finishPc completes a data-processing write to R15: restore the saved
// status for S-variants, then flush.
func (c *Interpreter) finishPc(s bool) int {
	if s && c.spsr != nil {
		c.SetCpsr(*c.spsr)
	}
	c.FlushPipeline()
	return 3
}

// logicalHandler builds AND/EOR/ORR/BIC handlers.
func logicalHandler(s bool, cost int, op2 op2Fn, combine func(a, b uint32) uint32) armFn {
	return func(c *Interpreter, op uint32) int {
		value, carry := op2(c, op)
		result := combine(*c.regPtr[(op>>16)&0xF], value)
		rd := (op >> 12) & 0xF
		*c.regPtr[rd] = result
		if rd == 15 {
			return c.finishPc(s)
		}
		if s {
			c.flagsLogical(result, carry)
		}
		return cost
	}
}

// moveHandler builds MOV/MVN handlers.
func moveHandler(s, negate bool, cost int, op2 op2Fn) armFn {
	return func(c *Interpreter, op uint32) int {
		value, carry := op2(c, op)
		if negate {
			value = ^value
		}
		rd := (op >> 12) & 0xF
		*c.regPtr[rd] = value
		if rd == 15 {
			return c.finishPc(s)
		}
		if s {
			c.flagsLogical(value, carry)
		}
		return cost
	}
}

// testHandler builds TST/TEQ handlers; flags are always written.
func testHandler(cost int, op2 op2Fn, combine func(a, b uint32) uint32) armFn {
	return func(c *Interpreter, op uint32) int {
		value, carry := op2(c, op)
		result := combine(*c.regPtr[(op>>16)&0xF], value)
		c.flagsLogical(result, carry)
		return cost
	}
}

func addHandler(s bool, cost int, op2 op2Fn) armFn {
	return func(c *Interpreter, op uint32) int {
		value, _ := op2(c, op)
		a := *c.regPtr[(op>>16)&0xF]
		result := a + value
		rd := (op >> 12) & 0xF
		*c.regPtr[rd] = result
		if rd == 15 {
			return c.finishPc(s)
		}
		if s {
			c.flagsAdd(a, value, result)
		}
		return cost
	}
}

func subHandler(s, reverse bool, cost int, op2 op2Fn) armFn {
	return func(c *Interpreter, op uint32) int {
		value, _ := op2(c, op)
		a := *c.regPtr[(op>>16)&0xF]
		if reverse {
			a, value = value, a
		}
		result := a - value
		rd := (op >> 12) & 0xF
		*c.regPtr[rd] = result
		if rd == 15 {
			return c.finishPc(s)
		}
		if s {
			c.flagsSub(a, value, result)
		}
		return cost
	}
}

func adcHandler(s bool, cost int, op2 op2Fn) armFn {
	return func(c *Interpreter, op uint32) int {
		value, _ := op2(c, op)
		a := *c.regPtr[(op>>16)&0xF]
		carryIn := c.carry()
		result := a + value + carryIn
		rd := (op >> 12) & 0xF
		*c.regPtr[rd] = result
		if rd == 15 {
			return c.finishPc(s)
		}
		if s {
			c.flagsAddCarry(a, value, result, carryIn)
		}
		return cost
	}
}

func sbcHandler(s, reverse bool, cost int, op2 op2Fn) armFn {
	return func(c *Interpreter, op uint32) int {
		value, _ := op2(c, op)
		a := *c.regPtr[(op>>16)&0xF]
		if reverse {
			a, value = value, a
		}
		borrow := 1 - c.carry()
		result := a - value - borrow
		rd := (op >> 12) & 0xF
		*c.regPtr[rd] = result
		if rd == 15 {
			return c.finishPc(s)
		}
		if s {
			c.flagsSubCarry(a, value, result, borrow)
		}
		return cost
	}
}

func cmpHandler(negated bool, cost int, op2 op2Fn) armFn {
	return func(c *Interpreter, op uint32) int {
		value, _ := op2(c, op)
		a := *c.regPtr[(op>>16)&0xF]
		if negated { // CMN
			c.flagsAdd(a, value, a+value)
		} else { // CMP
			c.flagsSub(a, value, a-value)
		}
		return cost
	}
}

func and(a, b uint32) uint32 { return a & b }
func eor(a, b uint32) uint32 { return a ^ b }
func orr(a, b uint32) uint32 { return a | b }
func bic(a, b uint32) uint32 { return a &^ b }

// dataProcHandler builds the handler for one data-processing slot.
func dataProcHandler(opcode uint32, s, regShift bool, op2 op2Fn) armFn {
	cost := 1
	if regShift {
		cost = 2
	}

	switch opcode {
	case 0x0: // AND
		return logicalHandler(s, cost, op2, and)
	case 0x1: // EOR
		return logicalHandler(s, cost, op2, eor)
	case 0x2: // SUB
		return subHandler(s, false, cost, op2)
	case 0x3: // RSB
		return subHandler(s, true, cost, op2)
	case 0x4: // ADD
		return addHandler(s, cost, op2)
	case 0x5: // ADC
		return adcHandler(s, cost, op2)
	case 0x6: // SBC
		return sbcHandler(s, false, cost, op2)
	case 0x7: // RSC
		return sbcHandler(s, true, cost, op2)
	case 0x8: // TST
		return testHandler(cost, op2, and)
	case 0x9: // TEQ
		return testHandler(cost, op2, eor)
	case 0xA: // CMP
		return cmpHandler(false, cost, op2)
	case 0xB: // CMN
		return cmpHandler(true, cost, op2)
	case 0xC: // ORR
		return logicalHandler(s, cost, op2, orr)
	case 0xD: // MOV
		return moveHandler(s, false, cost, op2)
	case 0xE: // BIC
		return logicalHandler(s, cost, op2, bic)
	default: // MVN
		return moveHandler(s, true, cost, op2)
	}
}
