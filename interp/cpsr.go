package interp

import "fmt"

// CPSR bit assignments.
const (
	bitN uint32 = 1 << 31
	bitZ uint32 = 1 << 30
	bitC uint32 = 1 << 29
	bitV uint32 = 1 << 28
	bitQ uint32 = 1 << 27
	bitI uint32 = 1 << 7
	bitF uint32 = 1 << 6
	bitT uint32 = 1 << 5
)

// CPU modes (CPSR bits 0..4).
const (
	modeUsr uint32 = 0x10
	modeFiq uint32 = 0x11
	modeIrq uint32 = 0x12
	modeSvc uint32 = 0x13
	modeAbt uint32 = 0x17
	modeUnd uint32 = 0x1B
	modeSys uint32 = 0x1F
)

// SetCpsr assigns the CPSR, rewiring the banked registers when the mode
// field changes. The old value is not saved.
func (c *Interpreter) SetCpsr(value uint32) {
	c.setCpsr(value, false)
}

// setCpsr assigns the CPSR. If save is set and the new mode has an SPSR,
// the old CPSR is stored there first.
func (c *Interpreter) setCpsr(value uint32, save bool) {
	// Swap banked registers if the CPU mode changed.
	if value&0x1F != c.cpsr&0x1F {
		switch value & 0x1F {
		case modeUsr, modeSys:
			for i := 8; i <= 14; i++ {
				c.regPtr[i] = &c.registersUsr[i]
			}
			c.spsr = nil

		case modeFiq:
			for i := 8; i <= 14; i++ {
				c.regPtr[i] = &c.registersFiq[i-8]
			}
			c.spsr = &c.spsrFiq

		case modeIrq:
			for i := 8; i <= 12; i++ {
				c.regPtr[i] = &c.registersUsr[i]
			}
			c.regPtr[13] = &c.registersIrq[0]
			c.regPtr[14] = &c.registersIrq[1]
			c.spsr = &c.spsrIrq

		case modeSvc:
			for i := 8; i <= 12; i++ {
				c.regPtr[i] = &c.registersUsr[i]
			}
			c.regPtr[13] = &c.registersSvc[0]
			c.regPtr[14] = &c.registersSvc[1]
			c.spsr = &c.spsrSvc

		case modeAbt:
			for i := 8; i <= 12; i++ {
				c.regPtr[i] = &c.registersUsr[i]
			}
			c.regPtr[13] = &c.registersAbt[0]
			c.regPtr[14] = &c.registersAbt[1]
			c.spsr = &c.spsrAbt

		case modeUnd:
			for i := 8; i <= 12; i++ {
				c.regPtr[i] = &c.registersUsr[i]
			}
			c.regPtr[13] = &c.registersUnd[0]
			c.regPtr[14] = &c.registersUnd[1]
			c.spsr = &c.spsrUnd

		default:
			fmt.Fprintf(c.log, "Unknown %s CPU mode: 0x%X\n", c.id, value&0x1F)
		}
	}

	// Set the CPSR, saving the old value if requested.
	if save && c.spsr != nil {
		*c.spsr = c.cpsr
	}
	c.cpsr = value

	// Trigger an interrupt if the conditions are met.
	if c.ime != 0 && c.ie&c.irf != 0 && c.cpsr&bitI == 0 {
		c.sched.Schedule(&c.interruptTask, c.interruptDelay())
	}
}

// Spsr returns the SPSR banked for the current mode, or the CPSR when the
// mode has none.
func (c *Interpreter) Spsr() uint32 {
	if c.spsr == nil {
		return c.cpsr
	}
	return *c.spsr
}

// carry returns the C flag as a 0/1 value.
func (c *Interpreter) carry() uint32 {
	return (c.cpsr >> 29) & 1
}

// flagsNZ sets the N and Z flags from a result.
func (c *Interpreter) flagsNZ(result uint32) {
	c.cpsr &^= bitN | bitZ
	if result&(1<<31) != 0 {
		c.cpsr |= bitN
	}
	if result == 0 {
		c.cpsr |= bitZ
	}
}

// flagsLogical sets N and Z from a result and C from the shifter carry.
func (c *Interpreter) flagsLogical(result uint32, carry bool) {
	c.flagsNZ(result)
	if carry {
		c.cpsr |= bitC
	} else {
		c.cpsr &^= bitC
	}
}

// flagsAdd sets N, Z, C and V for a+b=result.
func (c *Interpreter) flagsAdd(a, b, result uint32) {
	c.cpsr &^= bitN | bitZ | bitC | bitV
	if result&(1<<31) != 0 {
		c.cpsr |= bitN
	}
	if result == 0 {
		c.cpsr |= bitZ
	}
	if result < a {
		c.cpsr |= bitC
	}
	if ^(a^b)&(a^result)&(1<<31) != 0 {
		c.cpsr |= bitV
	}
}

// flagsSub sets N, Z, C and V for a-b=result. C is the not-borrow flag.
func (c *Interpreter) flagsSub(a, b, result uint32) {
	c.cpsr &^= bitN | bitZ | bitC | bitV
	if result&(1<<31) != 0 {
		c.cpsr |= bitN
	}
	if result == 0 {
		c.cpsr |= bitZ
	}
	if a >= b {
		c.cpsr |= bitC
	}
	if (a^b)&(a^result)&(1<<31) != 0 {
		c.cpsr |= bitV
	}
}

// flagsAddCarry sets N, Z, C and V for a+b+carryIn=result.
func (c *Interpreter) flagsAddCarry(a, b, result uint32, carryIn uint32) {
	c.cpsr &^= bitN | bitZ | bitC | bitV
	if result&(1<<31) != 0 {
		c.cpsr |= bitN
	}
	if result == 0 {
		c.cpsr |= bitZ
	}
	if uint64(a)+uint64(b)+uint64(carryIn) > 0xFFFFFFFF {
		c.cpsr |= bitC
	}
	if ^(a^b)&(a^result)&(1<<31) != 0 {
		c.cpsr |= bitV
	}
}

// flagsSubCarry sets N, Z, C and V for a-b-borrow=result.
func (c *Interpreter) flagsSubCarry(a, b, result uint32, borrow uint32) {
	c.cpsr &^= bitN | bitZ | bitC | bitV
	if result&(1<<31) != 0 {
		c.cpsr |= bitN
	}
	if result == 0 {
		c.cpsr |= bitZ
	}
	if uint64(a) >= uint64(b)+uint64(borrow) {
		c.cpsr |= bitC
	}
	if (a^b)&(a^result)&(1<<31) != 0 {
		c.cpsr |= bitV
	}
}
