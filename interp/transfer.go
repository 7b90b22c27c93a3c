package interp

import "math/bits"

// ofsFn computes a single-data-transfer offset magnitude.
type ofsFn func(c *Interpreter, op uint32) uint32

// ofsImm12 is the 12-bit immediate offset.
func ofsImm12(c *Interpreter, op uint32) uint32 {
	return op & 0xFFF
}

// ofsRegShift builds the register offset with an immediate shift applied.
// The shifter carry is not observable here.
func ofsRegShift(lo4 uint32) ofsFn {
	switch (lo4 >> 1) & 3 {
	case 0:
		return func(c *Interpreter, op uint32) uint32 {
			return *c.regPtr[op&0xF] << ((op >> 7) & 0x1F)
		}
	case 1:
		return func(c *Interpreter, op uint32) uint32 {
			if amount := (op >> 7) & 0x1F; amount != 0 {
				return *c.regPtr[op&0xF] >> amount
			}
			return 0 // LSR #32
		}
	case 2:
		return func(c *Interpreter, op uint32) uint32 {
			amount := (op >> 7) & 0x1F
			if amount == 0 { // ASR #32 keeps only the sign
				amount = 31
			}
			return uint32(int32(*c.regPtr[op&0xF]) >> amount)
		}
	default:
		return func(c *Interpreter, op uint32) uint32 {
			amount := (op >> 7) & 0x1F
			if amount == 0 { // RRX
				return (*c.regPtr[op&0xF] >> 1) | (c.carry() << 31)
			}
			return bits.RotateLeft32(*c.regPtr[op&0xF], -int(amount))
		}
	}
}

// loadPc completes a load into R15. The ARM9 honours the Thumb bit of the
// loaded value; the ARM7 stays in ARM state.
func (c *Interpreter) loadPc(value uint32) int {
	if c.id == Arm9 && value&1 != 0 {
		c.cpsr |= bitT
	}
	*c.regPtr[15] = value
	c.FlushPipeline()
	return 5
}

// wordTransferHandler builds LDR/STR/LDRB/STRB handlers for one addressing
// mode: pre/post indexing, offset direction, byte width, writeback.
func wordTransferHandler(pre, up, byteWide, writeback, load bool, offset ofsFn) armFn {
	return func(c *Interpreter, op uint32) int {
		rn := (op >> 16) & 0xF
		base := *c.regPtr[rn]
		ofs := offset(c, op)

		wb := base + ofs
		if !up {
			wb = base - ofs
		}
		addr := base
		if pre {
			addr = wb
		}

		rd := (op >> 12) & 0xF
		if load {
			if !pre || writeback {
				*c.regPtr[rn] = wb
			}
			var value uint32
			if byteWide {
				value = uint32(c.mem.Read8(c.id, addr))
			} else {
				// Unaligned words rotate the addressed byte into place.
				value = bits.RotateLeft32(c.mem.Read32(c.id, addr&^3), -int((addr&3)*8))
			}
			*c.regPtr[rd] = value
			if rd == 15 {
				return c.loadPc(value)
			}
			return 3
		}

		value := *c.regPtr[rd]
		if rd == 15 {
			value += 4
		}
		if byteWide {
			c.mem.Write8(c.id, addr, uint8(value))
		} else {
			c.mem.Write32(c.id, addr&^3, value)
		}
		if !pre || writeback {
			*c.regPtr[rn] = wb
		}
		return 2
	}
}

// halfTransferHandler builds the extra load/store handlers: halfword,
// signed byte/halfword, and the ARM9 doubleword forms. lo4 selects the
// kind; the hi bits select addressing exactly as for word transfers.
func halfTransferHandler(lo4 uint32, pre, up, immediate, writeback, load bool) armFn {
	// The offset is split around the lo4 bits: high nibble in 11..8,
	// low nibble in 3..0, or a plain register.
	offset := func(c *Interpreter, op uint32) uint32 {
		if immediate {
			return ((op >> 4) & 0xF0) | (op & 0xF)
		}
		return *c.regPtr[op&0xF]
	}

	return func(c *Interpreter, op uint32) int {
		rn := (op >> 16) & 0xF
		base := *c.regPtr[rn]
		ofs := offset(c, op)

		wb := base + ofs
		if !up {
			wb = base - ofs
		}
		addr := base
		if pre {
			addr = wb
		}

		rd := (op >> 12) & 0xF
		doWriteback := !pre || writeback

		switch {
		case lo4 == 0xB && load: // LDRH
			if doWriteback {
				*c.regPtr[rn] = wb
			}
			*c.regPtr[rd] = uint32(c.mem.Read16(c.id, addr&^1))
			return 3

		case lo4 == 0xB: // STRH
			c.mem.Write16(c.id, addr&^1, uint16(*c.regPtr[rd]))
			if doWriteback {
				*c.regPtr[rn] = wb
			}
			return 2

		case lo4 == 0xD && load: // LDRSB
			if doWriteback {
				*c.regPtr[rn] = wb
			}
			*c.regPtr[rd] = uint32(int32(int8(c.mem.Read8(c.id, addr))))
			return 3

		case lo4 == 0xD: // LDRD (ARM9)
			if doWriteback {
				*c.regPtr[rn] = wb
			}
			*c.regPtr[rd] = c.mem.Read32(c.id, addr&^3)
			*c.regPtr[(rd+1)&0xF] = c.mem.Read32(c.id, (addr&^3)+4)
			return 4

		case load: // LDRSH
			if doWriteback {
				*c.regPtr[rn] = wb
			}
			*c.regPtr[rd] = uint32(int32(int16(c.mem.Read16(c.id, addr&^1))))
			return 3

		default: // STRD (ARM9)
			c.mem.Write32(c.id, addr&^3, *c.regPtr[rd])
			c.mem.Write32(c.id, (addr&^3)+4, *c.regPtr[(rd+1)&0xF])
			if doWriteback {
				*c.regPtr[rn] = wb
			}
			return 3
		}
	}
}

// userReg returns the user-bank cell for a register, regardless of the
// current mode. Used by LDM/STM with the S bit.
func (c *Interpreter) userReg(index uint32) *uint32 {
	return &c.registersUsr[index]
}

// blockTransferHandler builds LDM/STM handlers. With the S bit, stores and
// loads without R15 use the user bank; loads including R15 restore the
// CPSR from the SPSR.
func blockTransferHandler(pre, up, sBit, writeback, load bool) armFn {
	return func(c *Interpreter, op uint32) int {
		rn := (op >> 16) & 0xF
		base := *c.regPtr[rn]
		rlist := op & 0xFFFF

		if rlist == 0 {
			// Empty list: the ARM7 transfers R15 and steps the base
			// by 0x40; the ARM9 only steps the base.
			return c.emptyRlist(rn, base, pre, up, load)
		}

		n := uint32(bits.OnesCount32(rlist))
		size := n * 4

		addr := base
		final := base + size
		if !up {
			addr = base - size
			final = base - size
		}
		if pre == up {
			addr += 4
		}

		userBank := sBit && !(load && rlist&0x8000 != 0)

		if load {
			if writeback {
				*c.regPtr[rn] = final
			}
			for i := uint32(0); i < 16; i++ {
				if rlist&(1<<i) == 0 {
					continue
				}
				value := c.mem.Read32(c.id, addr&^3)
				if userBank {
					*c.userReg(i) = value
				} else {
					*c.regPtr[i] = value
				}
				addr += 4
			}
			if rlist&0x8000 != 0 {
				if sBit && c.spsr != nil {
					c.SetCpsr(*c.spsr)
				}
				return c.loadPc(*c.regPtr[15])
			}
			return int(n) + 2
		}

		for i := uint32(0); i < 16; i++ {
			if rlist&(1<<i) == 0 {
				continue
			}
			var value uint32
			if userBank {
				value = *c.userReg(i)
			} else {
				value = *c.regPtr[i]
			}
			if i == 15 {
				value += 4
			}
			if i == rn {
				value = base
			}
			c.mem.Write32(c.id, addr&^3, value)
			addr += 4
		}
		if writeback {
			*c.regPtr[rn] = final
		}
		return int(n) + 1
	}
}

// emptyRlist implements the empty-register-list block transfer quirk.
func (c *Interpreter) emptyRlist(rn, base uint32, pre, up, load bool) int {
	addr := base
	if !up {
		addr = base - 0x40
	}
	if pre == up {
		addr += 4
	}

	if c.id == Arm7 {
		if load {
			return c.loadPcFrom(rn, base, up, addr)
		}
		c.mem.Write32(c.id, addr&^3, *c.regPtr[15]+4)
	}
	if up {
		*c.regPtr[rn] = base + 0x40
	} else {
		*c.regPtr[rn] = base - 0x40
	}
	return 2
}

// loadPcFrom loads R15 for an empty-list LDM on the ARM7.
func (c *Interpreter) loadPcFrom(rn, base uint32, up bool, addr uint32) int {
	value := c.mem.Read32(c.id, addr&^3)
	if up {
		*c.regPtr[rn] = base + 0x40
	} else {
		*c.regPtr[rn] = base - 0x40
	}
	*c.regPtr[15] = value
	c.FlushPipeline()
	return 5
}

// swp exchanges a register with a word in memory.
func swp(c *Interpreter, op uint32) int {
	addr := *c.regPtr[(op>>16)&0xF]
	old := bits.RotateLeft32(c.mem.Read32(c.id, addr&^3), -int((addr&3)*8))
	c.mem.Write32(c.id, addr&^3, *c.regPtr[op&0xF])
	*c.regPtr[(op>>12)&0xF] = old
	return 4
}

// swpb exchanges a register with a byte in memory.
func swpb(c *Interpreter, op uint32) int {
	addr := *c.regPtr[(op>>16)&0xF]
	old := uint32(c.mem.Read8(c.id, addr))
	c.mem.Write8(c.id, addr, uint8(*c.regPtr[op&0xF]))
	*c.regPtr[(op>>12)&0xF] = old
	return 4
}

// stmdbWriteback performs STMDB Rn!, rlist. Used by the HLE IRQ entry.
func (c *Interpreter) stmdbWriteback(rn int, rlist uint32) {
	n := uint32(bits.OnesCount32(rlist))
	addr := *c.regPtr[rn] - n*4
	*c.regPtr[rn] = addr
	for i := uint32(0); i < 16; i++ {
		if rlist&(1<<i) != 0 {
			c.mem.Write32(c.id, addr&^3, *c.regPtr[i])
			addr += 4
		}
	}
}

// ldmiaWriteback performs LDMIA Rn!, rlist. Used by the HLE IRQ return.
func (c *Interpreter) ldmiaWriteback(rn int, rlist uint32) {
	addr := *c.regPtr[rn]
	for i := uint32(0); i < 16; i++ {
		if rlist&(1<<i) != 0 {
			*c.regPtr[i] = c.mem.Read32(c.id, addr&^3)
			addr += 4
		}
	}
	*c.regPtr[rn] = addr
}
