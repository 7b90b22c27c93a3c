package interp

import "math/bits"

// mulHandler builds MUL and MLA handlers.
func mulHandler(accumulate, s bool) armFn {
	return func(c *Interpreter, op uint32) int {
		result := *c.regPtr[op&0xF] * *c.regPtr[(op>>8)&0xF]
		if accumulate {
			result += *c.regPtr[(op>>12)&0xF]
		}
		*c.regPtr[(op>>16)&0xF] = result
		if s {
			c.flagsNZ(result)
		}
		return 2
	}
}

// mulLongHandler builds UMULL/UMLAL/SMULL/SMLAL handlers. The accumulator
// and result live in RdHi:RdLo.
func mulLongHandler(signed, accumulate, s bool) armFn {
	return func(c *Interpreter, op uint32) int {
		var result uint64
		if signed {
			result = uint64(int64(int32(*c.regPtr[op&0xF])) * int64(int32(*c.regPtr[(op>>8)&0xF])))
		} else {
			result = uint64(*c.regPtr[op&0xF]) * uint64(*c.regPtr[(op>>8)&0xF])
		}

		lo := (op >> 12) & 0xF
		hi := (op >> 16) & 0xF
		if accumulate {
			result += uint64(*c.regPtr[hi])<<32 | uint64(*c.regPtr[lo])
		}
		*c.regPtr[lo] = uint32(result)
		*c.regPtr[hi] = uint32(result >> 32)

		if s {
			c.cpsr &^= bitN | bitZ
			if result&(1<<63) != 0 {
				c.cpsr |= bitN
			}
			if result == 0 {
				c.cpsr |= bitZ
			}
		}
		return 3
	}
}

// half extracts the top or bottom signed halfword of a register value.
func half(value uint32, top bool) int32 {
	if top {
		return int32(value) >> 16
	}
	return int32(int16(value))
}

// smulHandler builds the SMULxy handlers (ARM9).
func smulHandler(x, y bool) armFn {
	return func(c *Interpreter, op uint32) int {
		result := half(*c.regPtr[op&0xF], x) * half(*c.regPtr[(op>>8)&0xF], y)
		*c.regPtr[(op>>16)&0xF] = uint32(result)
		return 1
	}
}

// smlaHandler builds the SMLAxy handlers (ARM9). Overflow on the
// accumulate sets the sticky Q flag.
func smlaHandler(x, y bool) armFn {
	return func(c *Interpreter, op uint32) int {
		product := half(*c.regPtr[op&0xF], x) * half(*c.regPtr[(op>>8)&0xF], y)
		acc := int32(*c.regPtr[(op>>12)&0xF])
		result := product + acc
		if ^(product^acc)&(product^result)&(-1<<31) != 0 {
			c.cpsr |= bitQ
		}
		*c.regPtr[(op>>16)&0xF] = uint32(result)
		return 1
	}
}

// smulwHandler builds the SMULWy handlers (ARM9).
func smulwHandler(y bool) armFn {
	return func(c *Interpreter, op uint32) int {
		result := int64(int32(*c.regPtr[op&0xF])) * int64(half(*c.regPtr[(op>>8)&0xF], y))
		*c.regPtr[(op>>16)&0xF] = uint32(result >> 16)
		return 1
	}
}

// smlawHandler builds the SMLAWy handlers (ARM9).
func smlawHandler(y bool) armFn {
	return func(c *Interpreter, op uint32) int {
		product := int32((int64(int32(*c.regPtr[op&0xF])) * int64(half(*c.regPtr[(op>>8)&0xF], y))) >> 16)
		acc := int32(*c.regPtr[(op>>12)&0xF])
		result := product + acc
		if ^(product^acc)&(product^result)&(-1<<31) != 0 {
			c.cpsr |= bitQ
		}
		*c.regPtr[(op>>16)&0xF] = uint32(result)
		return 1
	}
}

// smlalHandler builds the SMLALxy handlers (ARM9).
func smlalHandler(x, y bool) armFn {
	return func(c *Interpreter, op uint32) int {
		lo := (op >> 12) & 0xF
		hi := (op >> 16) & 0xF
		acc := int64(uint64(*c.regPtr[hi])<<32 | uint64(*c.regPtr[lo]))
		result := acc + int64(half(*c.regPtr[op&0xF], x)*half(*c.regPtr[(op>>8)&0xF], y))
		*c.regPtr[lo] = uint32(result)
		*c.regPtr[hi] = uint32(uint64(result) >> 32)
		return 2
	}
}

// satAdd returns a+b with signed saturation, setting Q on overflow.
func (c *Interpreter) satAdd(a, b int32) int32 {
	result := a + b
	if ^(a^b)&(a^result)&(-1<<31) != 0 {
		c.cpsr |= bitQ
		if a < 0 {
			return -0x80000000
		}
		return 0x7FFFFFFF
	}
	return result
}

// satDouble returns 2*a with signed saturation, setting Q on overflow.
func (c *Interpreter) satDouble(a int32) int32 {
	if a > 0x3FFFFFFF {
		c.cpsr |= bitQ
		return 0x7FFFFFFF
	}
	if a < -0x40000000 {
		c.cpsr |= bitQ
		return -0x80000000
	}
	return a * 2
}

func qadd(c *Interpreter, op uint32) int {
	*c.regPtr[(op>>12)&0xF] = uint32(c.satAdd(int32(*c.regPtr[op&0xF]), int32(*c.regPtr[(op>>16)&0xF])))
	return 1
}

func qsub(c *Interpreter, op uint32) int {
	a := int32(*c.regPtr[op&0xF])
	b := int32(*c.regPtr[(op>>16)&0xF])
	result := a - b
	if (a^b)&(a^result)&(-1<<31) != 0 {
		c.cpsr |= bitQ
		if a < 0 {
			result = -0x80000000
		} else {
			result = 0x7FFFFFFF
		}
	}
	*c.regPtr[(op>>12)&0xF] = uint32(result)
	return 1
}

func qdadd(c *Interpreter, op uint32) int {
	*c.regPtr[(op>>12)&0xF] = uint32(c.satAdd(int32(*c.regPtr[op&0xF]), c.satDouble(int32(*c.regPtr[(op>>16)&0xF]))))
	return 1
}

func qdsub(c *Interpreter, op uint32) int {
	a := int32(*c.regPtr[op&0xF])
	b := c.satDouble(int32(*c.regPtr[(op>>16)&0xF]))
	result := a - b
	if (a^b)&(a^result)&(-1<<31) != 0 {
		c.cpsr |= bitQ
		if a < 0 {
			result = -0x80000000
		} else {
			result = 0x7FFFFFFF
		}
	}
	*c.regPtr[(op>>12)&0xF] = uint32(result)
	return 1
}

// clz counts leading zeros (ARM9).
func clz(c *Interpreter, op uint32) int {
	*c.regPtr[(op>>12)&0xF] = uint32(bits.LeadingZeros32(*c.regPtr[op&0xF]))
	return 1
}
