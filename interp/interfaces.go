// Package interp implements the ARM9/ARM7 interpreter cores: architectural
// state, the ARM and THUMB dispatch tables, exception and interrupt
// delivery, and the high-level BIOS and DLDI hooks.
package interp

import "github.com/nitrolab/nitro/sched"

// CpuId selects one of the two processors and the bus view it sees.
type CpuId int

// The two processors.
const (
	Arm9 CpuId = 0
	Arm7 CpuId = 1
)

// String returns the processor name for diagnostics.
func (id CpuId) String() string {
	if id == Arm9 {
		return "ARM9"
	}
	return "ARM7"
}

// Memory is the per-CPU bus view. Out-of-range accesses return zero or are
// dropped; the interpreter never aborts on a bad address.
type Memory interface {
	Read8(cpu CpuId, addr uint32) uint8
	Read16(cpu CpuId, addr uint32) uint16
	Read32(cpu CpuId, addr uint32) uint32
	Write8(cpu CpuId, addr uint32, value uint8)
	Write16(cpu CpuId, addr uint32, value uint16)
	Write32(cpu CpuId, addr uint32, value uint32)
}

// Scheduler queues a task to run a number of global cycles from now.
type Scheduler interface {
	Schedule(task *sched.Task, delay uint64)
}

// Cp15 is the ARM9 system control coprocessor. The interpreter consults it
// for the exception vector base and the DTCM mapping, and routes MCR/MRC
// opcodes to it.
type Cp15 interface {
	// ExceptionAddr returns the ARM9 vector base: 0 or 0xFFFF0000.
	ExceptionAddr() uint32

	// DtcmAddr returns the current DTCM base address.
	DtcmAddr() uint32

	// Read returns the value of register Cn,Cm,Cp.
	Read(cn, cm, cp uint32) uint32

	// Write sets the value of register Cn,Cm,Cp.
	Write(cn, cm, cp, value uint32)
}

// Regs gives collaborators access to the currently banked registers without
// sharing the backing storage.
type Regs interface {
	Reg(index int) uint32
	SetReg(index int, value uint32)
}

// HleBios substitutes high-level emulation for BIOS code reached through
// the exception vectors.
type HleBios interface {
	// Execute runs the BIOS routine for an exception vector and returns
	// its cycle cost.
	Execute(vector uint8, cpu CpuId, regs Regs) int

	// ShouldCheck reports whether an IntrWait is in progress and wait
	// flags need updating on interrupt return.
	ShouldCheck() bool

	// CheckWaitFlags updates the IntrWait state for the given CPU.
	CheckWaitFlags(cpu CpuId)
}

// Dldi is the high-level SD card driver behind the DLDI patch sentinels.
// The sector functions return an ARM-convention boolean in the low bit.
type Dldi interface {
	IsPatched() bool
	Startup() uint32
	IsInserted() uint32
	ReadSectors(cpu CpuId, sector, count, buf uint32) uint32
	WriteSectors(cpu CpuId, sector, count, buf uint32) uint32
	ClearStatus() uint32
	Shutdown() uint32
}
