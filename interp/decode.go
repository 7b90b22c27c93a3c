package interp

// armFn executes one ARM instruction and returns its cycle cost.
type armFn func(c *Interpreter, op uint32) int

// thumbFn executes one THUMB instruction and returns its cycle cost.
type thumbFn func(c *Interpreter, op uint16) int

// The dispatch tables. ARM opcodes are keyed by bits 27..20 and 7..4;
// THUMB opcodes by bits 15..6. Both are filled once at startup; each slot
// holds a handler specialized for that encoding.
var (
	armInstrs   [4096]armFn
	thumbInstrs [1024]thumbFn
)

func init() {
	for i := range armInstrs {
		armInstrs[i] = lookupArm(uint32(i))
	}
	for i := range thumbInstrs {
		thumbInstrs[i] = lookupThumb(uint32(i))
	}
}

// armOp2 returns the operand-2 generator for a data-processing slot, and
// whether it shifts by register (which costs an extra cycle).
func armOp2(lo4 uint32) (fn op2Fn, regShift bool) {
	if lo4&1 == 0 {
		// Shift by immediate; bit 3 of lo4 is part of the shift amount.
		switch (lo4 >> 1) & 3 {
		case 0:
			return op2LslImm, false
		case 1:
			return op2LsrImm, false
		case 2:
			return op2AsrImm, false
		default:
			return op2RorImm, false
		}
	}
	switch (lo4 >> 1) & 3 {
	case 0:
		return op2LslReg, true
	case 1:
		return op2LsrReg, true
	case 2:
		return op2AsrReg, true
	default:
		return op2RorReg, true
	}
}

// lookupArm builds the handler for one ARM table slot. The slot encodes
// opcode bits 27..20 (hi8) and 7..4 (lo4).
func lookupArm(index uint32) armFn {
	hi8 := index >> 4
	lo4 := index & 0xF

	switch hi8 >> 5 {
	case 0: // Data processing / multiply / extra transfers / misc
		if lo4 == 0x9 {
			switch {
			case hi8&0xFC == 0x00:
				return mulHandler(hi8&2 != 0, hi8&1 != 0)
			case hi8&0xF8 == 0x08:
				return mulLongHandler(hi8&4 != 0, hi8&2 != 0, hi8&1 != 0)
			case hi8 == 0x10:
				return swp
			case hi8 == 0x14:
				return swpb
			}
			return (*Interpreter).unkArm
		}

		if lo4 == 0xB || lo4 == 0xD || lo4 == 0xF {
			return halfTransferHandler(lo4, hi8&0x10 != 0, hi8&0x08 != 0,
				hi8&0x04 != 0, hi8&0x02 != 0, hi8&0x01 != 0)
		}

		if hi8&0x19 == 0x10 { // Opcode 10xx without S: the misc zone
			switch lo4 {
			case 0x0:
				if hi8&0x02 == 0 {
					return mrsHandler(hi8&0x04 != 0)
				}
				return msrHandler(hi8&0x04 != 0, false)
			case 0x1:
				switch hi8 {
				case 0x12:
					return bxReg
				case 0x16:
					return clz
				}
			case 0x3:
				if hi8 == 0x12 {
					return blxReg
				}
			case 0x5:
				switch hi8 {
				case 0x10:
					return qadd
				case 0x12:
					return qsub
				case 0x14:
					return qdadd
				case 0x16:
					return qdsub
				}
			case 0x8, 0xA, 0xC, 0xE:
				x := lo4&0x2 != 0
				y := lo4&0x4 != 0
				switch hi8 {
				case 0x10:
					return smlaHandler(x, y)
				case 0x12:
					if !x {
						return smlawHandler(y)
					}
					return smulwHandler(y)
				case 0x14:
					return smlalHandler(x, y)
				case 0x16:
					return smulHandler(x, y)
				}
			}
			return (*Interpreter).unkArm
		}

		op2, regShift := armOp2(lo4)
		return dataProcHandler((hi8>>1)&0xF, hi8&1 != 0, regShift, op2)

	case 1: // Data processing, immediate operand
		if hi8&0x19 == 0x10 {
			// Opcode 10xx without S: only MSR immediate is valid here.
			if hi8&0x02 != 0 {
				return msrHandler(hi8&0x04 != 0, true)
			}
			return (*Interpreter).unkArm
		}
		return dataProcHandler((hi8>>1)&0xF, hi8&1 != 0, false, op2Imm)

	case 2: // Word/byte transfer, immediate offset
		return wordTransferHandler(hi8&0x10 != 0, hi8&0x08 != 0,
			hi8&0x04 != 0, hi8&0x02 != 0, hi8&0x01 != 0, ofsImm12)

	case 3: // Word/byte transfer, register offset
		if lo4&1 != 0 {
			return (*Interpreter).unkArm
		}
		return wordTransferHandler(hi8&0x10 != 0, hi8&0x08 != 0,
			hi8&0x04 != 0, hi8&0x02 != 0, hi8&0x01 != 0, ofsRegShift(lo4))

	case 4: // Block transfer
		return blockTransferHandler(hi8&0x10 != 0, hi8&0x08 != 0,
			hi8&0x04 != 0, hi8&0x02 != 0, hi8&0x01 != 0)

	case 5: // Branch
		if hi8&0x10 != 0 {
			return bl
		}
		return b

	case 6: // Coprocessor data transfer: not supported
		return (*Interpreter).unkArm

	default: // 7: software interrupt and coprocessor register transfer
		if hi8&0x10 != 0 {
			return swi
		}
		if lo4&1 != 0 {
			if hi8&0x01 != 0 {
				return mrc
			}
			return mcr
		}
		return (*Interpreter).unkArm
	}
}

// lookupThumb builds the handler for one THUMB table slot. The slot encodes
// opcode bits 15..6, so register and immediate fields living in bits 10..6
// are specialized into the handler.
func lookupThumb(index uint32) thumbFn {
	switch index >> 7 { // Opcode bits 15..13
	case 0: // Shift by immediate, add/subtract
		amount := index & 0x1F
		switch (index >> 5) & 3 {
		case 0:
			return thumbLslImm(amount)
		case 1:
			return thumbLsrImm(amount)
		case 2:
			return thumbAsrImm(amount)
		default:
			// Add/subtract with a register or 3-bit immediate field.
			return thumbAddSub(index&0x10 != 0, index&0x08 != 0, index&7)
		}

	case 1: // Move/compare/add/subtract immediate
		rd := (index >> 2) & 7
		switch (index >> 5) & 3 {
		case 0:
			return thumbMovImm8(rd)
		case 1:
			return thumbCmpImm8(rd)
		case 2:
			return thumbAddImm8(rd)
		default:
			return thumbSubImm8(rd)
		}

	case 2:
		switch {
		case index>>4 == 0x10: // ALU operations
			return thumbAluOps[index&0xF]
		case index>>4 == 0x11: // Hi register operations, BX/BLX
			return thumbHiReg((index>>2)&3, index&2 != 0, index&1 != 0)
		case index>>5 == 0x09: // PC-relative load
			return thumbLdrPc((index >> 2) & 7)
		default: // Register-offset load/store
			return thumbTransferReg[(index>>3)&7]
		}

	case 3: // Word/byte transfer, 5-bit immediate offset
		imm := index & 0x1F
		switch (index >> 5) & 3 {
		case 0:
			return thumbStrImm5(imm)
		case 1:
			return thumbLdrImm5(imm)
		case 2:
			return thumbStrbImm5(imm)
		default:
			return thumbLdrbImm5(imm)
		}

	case 4: // Halfword and SP-relative transfer
		if index&0x40 == 0 {
			imm := index & 0x1F
			if index&0x20 == 0 {
				return thumbStrhImm5(imm)
			}
			return thumbLdrhImm5(imm)
		}
		rd := (index >> 2) & 7
		if index&0x20 == 0 {
			return thumbStrSp(rd)
		}
		return thumbLdrSp(rd)

	case 5: // ADR, SP adjust, push/pop
		if index&0x40 == 0 {
			rd := (index >> 2) & 7
			if index&0x20 == 0 {
				return thumbAddPc(rd)
			}
			return thumbAddSpReg(rd)
		}
		switch {
		case (index>>2)&0xF == 0x0: // ADD/SUB SP, immediate
			return thumbAddSpImm7(index&2 != 0)
		case (index>>3)&3 == 2 && index&0x20 == 0: // PUSH
			return thumbPush(index&4 != 0)
		case (index>>3)&3 == 2 && index&0x20 != 0: // POP
			return thumbPop(index&4 != 0)
		}
		return (*Interpreter).unkThumb

	case 6: // Multiple transfer, conditional branch, SWI
		if index&0x40 == 0 {
			rb := (index >> 2) & 7
			if index&0x20 == 0 {
				return thumbStmia(rb)
			}
			return thumbLdmia(rb)
		}
		cond := (index >> 2) & 0xF
		switch cond {
		case 0xE:
			return (*Interpreter).unkThumb
		case 0xF:
			return thumbSwi
		}
		return thumbBCond(cond)

	default: // 7: unconditional branches and BL/BLX pairs
		switch (index >> 5) & 3 {
		case 0:
			return thumbB
		case 1:
			return thumbBlxSuffix
		case 2:
			return thumbBlPrefix
		default:
			return thumbBlSuffix
		}
	}
}
