package interp

import "math/bits"

// thumbLdrPc builds LDR Rd, [PC, #imm8*4].
func thumbLdrPc(rd uint32) thumbFn {
	return func(c *Interpreter, op uint16) int {
		addr := (*c.regPtr[15] &^ 2) + (uint32(op)&0xFF)*4
		*c.regPtr[rd] = c.mem.Read32(c.id, addr)
		return 3
	}
}

// thumbTransferReg is the register-offset load/store group, indexed by
// bits 11..9.
var thumbTransferReg = [8]thumbFn{
	thumbStrReg, thumbStrhReg, thumbStrbReg, thumbLdrsbReg,
	thumbLdrReg, thumbLdrhReg, thumbLdrbReg, thumbLdrshReg,
}

// thumbRegAddr computes the base-plus-register address.
func (c *Interpreter) thumbRegAddr(op uint16) uint32 {
	return *c.regPtr[(op>>3)&7] + *c.regPtr[(op>>6)&7]
}

func thumbStrReg(c *Interpreter, op uint16) int {
	addr := c.thumbRegAddr(op)
	c.mem.Write32(c.id, addr&^3, *c.regPtr[op&7])
	return 2
}

func thumbStrhReg(c *Interpreter, op uint16) int {
	addr := c.thumbRegAddr(op)
	c.mem.Write16(c.id, addr&^1, uint16(*c.regPtr[op&7]))
	return 2
}

func thumbStrbReg(c *Interpreter, op uint16) int {
	c.mem.Write8(c.id, c.thumbRegAddr(op), uint8(*c.regPtr[op&7]))
	return 2
}

func thumbLdrsbReg(c *Interpreter, op uint16) int {
	*c.regPtr[op&7] = uint32(int32(int8(c.mem.Read8(c.id, c.thumbRegAddr(op)))))
	return 3
}

func thumbLdrReg(c *Interpreter, op uint16) int {
	addr := c.thumbRegAddr(op)
	*c.regPtr[op&7] = bits.RotateLeft32(c.mem.Read32(c.id, addr&^3), -int((addr&3)*8))
	return 3
}

func thumbLdrhReg(c *Interpreter, op uint16) int {
	addr := c.thumbRegAddr(op)
	*c.regPtr[op&7] = uint32(c.mem.Read16(c.id, addr&^1))
	return 3
}

func thumbLdrbReg(c *Interpreter, op uint16) int {
	*c.regPtr[op&7] = uint32(c.mem.Read8(c.id, c.thumbRegAddr(op)))
	return 3
}

func thumbLdrshReg(c *Interpreter, op uint16) int {
	addr := c.thumbRegAddr(op)
	*c.regPtr[op&7] = uint32(int32(int16(c.mem.Read16(c.id, addr&^1))))
	return 3
}

// thumbStrImm5 builds STR Rd, [Rb, #imm5*4].
func thumbStrImm5(imm uint32) thumbFn {
	offset := imm * 4
	return func(c *Interpreter, op uint16) int {
		addr := *c.regPtr[(op>>3)&7] + offset
		c.mem.Write32(c.id, addr&^3, *c.regPtr[op&7])
		return 2
	}
}

// thumbLdrImm5 builds LDR Rd, [Rb, #imm5*4].
func thumbLdrImm5(imm uint32) thumbFn {
	offset := imm * 4
	return func(c *Interpreter, op uint16) int {
		addr := *c.regPtr[(op>>3)&7] + offset
		*c.regPtr[op&7] = bits.RotateLeft32(c.mem.Read32(c.id, addr&^3), -int((addr&3)*8))
		return 3
	}
}

// thumbStrbImm5 builds STRB Rd, [Rb, #imm5].
func thumbStrbImm5(imm uint32) thumbFn {
	return func(c *Interpreter, op uint16) int {
		c.mem.Write8(c.id, *c.regPtr[(op>>3)&7]+imm, uint8(*c.regPtr[op&7]))
		return 2
	}
}

// thumbLdrbImm5 builds LDRB Rd, [Rb, #imm5].
func thumbLdrbImm5(imm uint32) thumbFn {
	return func(c *Interpreter, op uint16) int {
		*c.regPtr[op&7] = uint32(c.mem.Read8(c.id, *c.regPtr[(op>>3)&7]+imm))
		return 3
	}
}

// thumbStrhImm5 builds STRH Rd, [Rb, #imm5*2].
func thumbStrhImm5(imm uint32) thumbFn {
	offset := imm * 2
	return func(c *Interpreter, op uint16) int {
		addr := *c.regPtr[(op>>3)&7] + offset
		c.mem.Write16(c.id, addr&^1, uint16(*c.regPtr[op&7]))
		return 2
	}
}

// thumbLdrhImm5 builds LDRH Rd, [Rb, #imm5*2].
func thumbLdrhImm5(imm uint32) thumbFn {
	offset := imm * 2
	return func(c *Interpreter, op uint16) int {
		addr := *c.regPtr[(op>>3)&7] + offset
		*c.regPtr[op&7] = uint32(c.mem.Read16(c.id, addr&^1))
		return 3
	}
}

// thumbStrSp builds STR Rd, [SP, #imm8*4].
func thumbStrSp(rd uint32) thumbFn {
	return func(c *Interpreter, op uint16) int {
		addr := *c.regPtr[13] + (uint32(op)&0xFF)*4
		c.mem.Write32(c.id, addr&^3, *c.regPtr[rd])
		return 2
	}
}

// thumbLdrSp builds LDR Rd, [SP, #imm8*4].
func thumbLdrSp(rd uint32) thumbFn {
	return func(c *Interpreter, op uint16) int {
		addr := *c.regPtr[13] + (uint32(op)&0xFF)*4
		*c.regPtr[rd] = bits.RotateLeft32(c.mem.Read32(c.id, addr&^3), -int((addr&3)*8))
		return 3
	}
}

// thumbAddPc builds ADD Rd, PC, #imm8*4.
func thumbAddPc(rd uint32) thumbFn {
	return func(c *Interpreter, op uint16) int {
		*c.regPtr[rd] = (*c.regPtr[15] &^ 2) + (uint32(op)&0xFF)*4
		return 1
	}
}

// thumbAddSpReg builds ADD Rd, SP, #imm8*4.
func thumbAddSpReg(rd uint32) thumbFn {
	return func(c *Interpreter, op uint16) int {
		*c.regPtr[rd] = *c.regPtr[13] + (uint32(op)&0xFF)*4
		return 1
	}
}

// thumbAddSpImm7 builds ADD/SUB SP, #imm7*4.
func thumbAddSpImm7(subtract bool) thumbFn {
	if subtract {
		return func(c *Interpreter, op uint16) int {
			*c.regPtr[13] -= (uint32(op) & 0x7F) * 4
			return 1
		}
	}
	return func(c *Interpreter, op uint16) int {
		*c.regPtr[13] += (uint32(op) & 0x7F) * 4
		return 1
	}
}

// thumbPush builds PUSH {rlist} with an optional LR.
func thumbPush(lr bool) thumbFn {
	var extra uint32
	if lr {
		extra = 1 << 14
	}
	return func(c *Interpreter, op uint16) int {
		rlist := uint32(op)&0xFF | extra
		if rlist == 0 {
			return c.emptyRlist(13, *c.regPtr[13], true, false, false)
		}
		c.stmdbWriteback(13, rlist)
		return bits.OnesCount32(rlist) + 1
	}
}

// thumbPop builds POP {rlist} with an optional PC.
func thumbPop(pc bool) thumbFn {
	return func(c *Interpreter, op uint16) int {
		rlist := uint32(op) & 0xFF
		if rlist == 0 && !pc {
			return c.emptyRlist(13, *c.regPtr[13], false, true, true)
		}
		c.ldmiaWriteback(13, rlist)
		n := bits.OnesCount32(rlist)
		if pc {
			value := c.mem.Read32(c.id, *c.regPtr[13]&^3)
			*c.regPtr[13] += 4
			if c.id == Arm9 {
				// ARMv5 honours the Thumb bit on a popped PC.
				c.bxCommon(value)
			} else {
				*c.regPtr[15] = value
				c.FlushPipeline()
			}
			return n + 4
		}
		return n + 2
	}
}

// thumbStmia builds STMIA Rb!, {rlist}.
func thumbStmia(rb uint32) thumbFn {
	return func(c *Interpreter, op uint16) int {
		rlist := uint32(op) & 0xFF
		if rlist == 0 {
			return c.emptyRlist(rb, *c.regPtr[rb], false, true, false)
		}
		base := *c.regPtr[rb]
		addr := base
		for i := uint32(0); i < 8; i++ {
			if rlist&(1<<i) == 0 {
				continue
			}
			value := *c.regPtr[i]
			if i == rb {
				value = base
			}
			c.mem.Write32(c.id, addr&^3, value)
			addr += 4
		}
		*c.regPtr[rb] = addr
		return bits.OnesCount32(rlist) + 1
	}
}

// thumbLdmia builds LDMIA Rb!, {rlist}. A loaded base wins over the
// writeback.
func thumbLdmia(rb uint32) thumbFn {
	return func(c *Interpreter, op uint16) int {
		rlist := uint32(op) & 0xFF
		if rlist == 0 {
			return c.emptyRlist(rb, *c.regPtr[rb], false, true, true)
		}
		addr := *c.regPtr[rb]
		for i := uint32(0); i < 8; i++ {
			if rlist&(1<<i) != 0 {
				*c.regPtr[i] = c.mem.Read32(c.id, addr&^3)
				addr += 4
			}
		}
		// A loaded base wins over the writeback.
		if rlist&(1<<rb) == 0 {
			*c.regPtr[rb] = addr
		}
		return bits.OnesCount32(rlist) + 2
	}
}
