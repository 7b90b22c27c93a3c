package interp

// Sentinel opcodes living in the reserved condition space. The IRQ return
// sentinel is planted as a return address by the HLE IRQ entry; the DLDI
// sentinels are patched over the SD driver's function entry points.
const (
	HleIrqReturn uint32 = 0xFF000000

	DldiStartup    uint32 = 0xFF000001
	DldiIsInserted uint32 = 0xFF000002
	DldiReadSector uint32 = 0xFF000003
	DldiWriteSect  uint32 = 0xFF000004
	DldiClearStat  uint32 = 0xFF000005
	DldiShutdown   uint32 = 0xFF000006
)

// handleReserved dispatches opcodes whose condition code is the reserved
// value: the ARM9 BLX label form and the HLE sentinels.
func (c *Interpreter) handleReserved(op uint32) int {
	// The ARM9-exclusive BLX label uses the reserved condition, so let it
	// run.
	if op&0x0E000000 == 0x0A000000 {
		return c.blxImm(op)
	}

	// Jumping to the special HLE BIOS opcode returns from an HLE
	// interrupt.
	if c.bios != nil && op == HleIrqReturn {
		return c.FinishHleIrq()
	}

	// Jumping to a patched DLDI function runs it at high level.
	if c.dldi != nil && c.dldi.IsPatched() {
		switch op {
		case DldiStartup:
			*c.regPtr[0] = c.dldi.Startup()
		case DldiIsInserted:
			*c.regPtr[0] = c.dldi.IsInserted()
		case DldiReadSector:
			*c.regPtr[0] = c.dldi.ReadSectors(c.id, *c.regPtr[0], *c.regPtr[1], *c.regPtr[2])
		case DldiWriteSect:
			*c.regPtr[0] = c.dldi.WriteSectors(c.id, *c.regPtr[0], *c.regPtr[1], *c.regPtr[2])
		case DldiClearStat:
			*c.regPtr[0] = c.dldi.ClearStatus()
		case DldiShutdown:
			*c.regPtr[0] = c.dldi.Shutdown()
		default:
			return c.unkArm(op)
		}
		return c.bxCommon(*c.regPtr[14])
	}

	return c.unkArm(op)
}

// HandleHleIrq enters an interrupt the way the BIOS IRQ stub would:
// switch to IRQ mode, push the scratch registers, plant the HLE return
// sentinel address in LR, and jump to the handler installed in memory.
func (c *Interpreter) HandleHleIrq() int {
	c.setCpsr((c.cpsr&^0x3F)|bitI|modeIrq, true)
	if *c.spsr&bitT != 0 {
		*c.regPtr[14] = *c.regPtr[15] + 2
	} else {
		*c.regPtr[14] = *c.regPtr[15]
	}
	c.stmdbWriteback(13, 0x500F) // R0-R3, R12, LR

	var handler uint32
	if c.id == Arm7 {
		*c.regPtr[14] = 0x00000000
		handler = c.mem.Read32(c.id, 0x3FFFFFC)
	} else {
		*c.regPtr[14] = 0xFFFF0000
		handler = c.mem.Read32(c.id, c.cp15.DtcmAddr()+0x3FFC)
	}
	*c.regPtr[15] = handler
	c.FlushPipeline()
	return 3
}

// FinishHleIrq returns from an HLE interrupt: pop the scratch registers,
// jump back to the interrupted code, and restore the saved mode.
func (c *Interpreter) FinishHleIrq() int {
	// Update the wait flags if in the middle of an HLE IntrWait call.
	if c.bios.ShouldCheck() {
		c.bios.CheckWaitFlags(c.id)
	}

	c.ldmiaWriteback(13, 0x500F) // R0-R3, R12, LR
	*c.regPtr[15] = *c.regPtr[14] - 4
	if c.spsr != nil {
		c.SetCpsr(*c.spsr)
	}
	c.FlushPipeline()
	return 3
}
