package interp

import (
	"fmt"
	"io"
	"os"

	"github.com/nitrolab/nitro/sched"
)

// Stats holds execution statistics for one CPU.
type Stats struct {
	// Instructions is the number of instructions retired.
	Instructions uint64

	// Interrupts is the number of IRQ exceptions taken.
	Interrupts uint64
}

// Interpreter is one ARM CPU: banked registers, status registers, the
// two-deep fetch pipeline, the interrupt controller registers, and the
// per-CPU cycle cursor driven by the frame loop.
type Interpreter struct {
	id    CpuId
	mem   Memory
	sched Scheduler
	cp15  Cp15
	bios  HleBios
	dldi  Dldi
	log   io.Writer

	// gbaMode selects GBA timings and register masks. It is fixed before
	// the frame loop starts.
	gbaMode bool

	// Banked register cells. R15 always lives in registersUsr[15].
	registersUsr [16]uint32
	registersFiq [7]uint32
	registersIrq [2]uint32
	registersSvc [2]uint32
	registersAbt [2]uint32
	registersUnd [2]uint32

	// regPtr maps logical register indices to the cell banked in for the
	// current mode. Rewired on every mode change.
	regPtr [16]*uint32

	cpsr    uint32
	spsr    *uint32
	spsrFiq uint32
	spsrIrq uint32
	spsrSvc uint32
	spsrAbt uint32
	spsrUnd uint32

	// pipeline holds the two prefetched opcodes.
	pipeline [2]uint32

	// cycles is the per-CPU cycle cursor, compared against the global
	// cursor by the frame driver.
	cycles uint64

	// halted is a bitfield; bit 0 means waiting for an interrupt.
	halted uint8

	ime     uint8
	ie      uint32
	irf     uint32
	postFlg uint8

	interruptTask sched.Task

	stats Stats
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLog sets the writer that receives diagnostics such as unknown
// opcodes. The default is os.Stderr.
func WithLog(w io.Writer) Option {
	return func(c *Interpreter) {
		c.log = w
	}
}

// WithCp15 attaches the system control coprocessor (ARM9 only).
func WithCp15(cp Cp15) Option {
	return func(c *Interpreter) {
		c.cp15 = cp
	}
}

// WithBios attaches a high-level BIOS, which intercepts exception vectors.
func WithBios(bios HleBios) Option {
	return func(c *Interpreter) {
		c.bios = bios
	}
}

// WithDldi attaches a high-level DLDI driver, dispatched through the
// reserved-condition sentinels.
func WithDldi(dldi Dldi) Option {
	return func(c *Interpreter) {
		c.dldi = dldi
	}
}

// New creates an interpreter for one CPU, wired to its bus view and the
// shared scheduler.
func New(id CpuId, mem Memory, scheduler Scheduler, opts ...Option) *Interpreter {
	c := &Interpreter{
		id:    id,
		mem:   mem,
		sched: scheduler,
		log:   os.Stderr,
	}

	for i := range c.regPtr {
		c.regPtr[i] = &c.registersUsr[i]
	}

	// The interrupt task is allocated once so queue entries can be
	// matched by identity.
	c.interruptTask = sched.Task{Run: c.interrupt, Name: id.String() + " interrupt"}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Id returns which CPU this interpreter models.
func (c *Interpreter) Id() CpuId {
	return c.id
}

// SetGbaMode switches the interpreter to GBA timings and register masks.
func (c *Interpreter) SetGbaMode(gba bool) {
	c.gbaMode = gba
}

// Stats returns execution statistics.
func (c *Interpreter) Stats() Stats {
	return c.stats
}

// Init prepares the CPU to boot the BIOS and clears the interrupt
// controller registers.
func (c *Interpreter) Init() {
	c.SetCpsr(0x000000D3) // Supervisor, interrupts off
	if c.id == Arm9 {
		c.registersUsr[15] = 0xFFFF0000
	} else {
		c.registersUsr[15] = 0x00000000
	}
	c.FlushPipeline()

	c.ime = 0
	c.ie = 0
	c.irf = 0
	c.postFlg = 0
}

// DirectBoot prepares the CPU to jump straight to an NDS ROM entry point,
// skipping the BIOS boot sequence.
func (c *Interpreter) DirectBoot() {
	var entryAddr uint32

	if c.id == Arm9 {
		entryAddr = c.mem.Read32(Arm9, 0x27FFE24)
		c.registersUsr[13] = 0x03002F7C
		c.registersIrq[0] = 0x03003F80
		c.registersSvc[0] = 0x03003FC0
	} else {
		entryAddr = c.mem.Read32(Arm7, 0x27FFE34)
		c.registersUsr[13] = 0x0380FD80
		c.registersIrq[0] = 0x0380FF80
		c.registersSvc[0] = 0x0380FFC0
	}

	c.SetCpsr(0x000000DF) // System, interrupts off
	c.registersUsr[12] = entryAddr
	c.registersUsr[14] = entryAddr
	c.registersUsr[15] = entryAddr
	c.FlushPipeline()
}

// Reg returns the value of a logical register under the current banking.
func (c *Interpreter) Reg(index int) uint32 {
	return *c.regPtr[index&0xF]
}

// SetReg sets a logical register under the current banking. Writing R15
// does not flush the pipeline; callers that change control flow must flush
// explicitly.
func (c *Interpreter) SetReg(index int, value uint32) {
	*c.regPtr[index&0xF] = value
}

// Cpsr returns the current program status register.
func (c *Interpreter) Cpsr() uint32 {
	return c.cpsr
}

// Pipeline returns the two prefetched opcodes.
func (c *Interpreter) Pipeline() [2]uint32 {
	return c.pipeline
}

// Cycles returns the per-CPU cycle cursor.
func (c *Interpreter) Cycles() uint64 {
	return c.cycles
}

// SetCycles sets the per-CPU cycle cursor. The frame driver charges each
// retired instruction's cost through this.
func (c *Interpreter) SetCycles(cycles uint64) {
	c.cycles = cycles
}

// Halted reports whether any halt bit is set.
func (c *Interpreter) Halted() bool {
	return c.halted != 0
}

// Halt sets a halt bit. Bit 0 is waiting-for-interrupt and is cleared by
// the interrupt unit.
func (c *Interpreter) Halt(bit int) {
	c.halted |= 1 << bit
}

// Unhalt clears a halt bit.
func (c *Interpreter) Unhalt(bit int) {
	c.halted &^= 1 << bit
}

// ResetCycles adjusts the per-CPU cursor for a global cycle reset.
func (c *Interpreter) ResetCycles(globalCycles uint64) {
	c.cycles -= min(globalCycles, c.cycles)
}

// RunOpcode retires exactly one instruction and returns its cycle cost.
func (c *Interpreter) RunOpcode() int {
	// Push the next opcode through the pipeline.
	opcode := c.pipeline[0]
	c.pipeline[0] = c.pipeline[1]

	c.stats.Instructions++

	if c.cpsr&bitT != 0 { // THUMB mode
		// Fill the pipeline, incrementing the program counter.
		*c.regPtr[15] += 2
		c.pipeline[1] = uint32(c.mem.Read16(c.id, *c.regPtr[15]))

		return thumbInstrs[(opcode>>6)&0x3FF](c, uint16(opcode))
	}

	// Fill the pipeline, incrementing the program counter.
	*c.regPtr[15] += 4
	c.pipeline[1] = c.mem.Read32(c.id, *c.regPtr[15])

	// Evaluate the opcode's condition.
	switch condition[((opcode>>24)&0xF0)|(c.cpsr>>28)] {
	case condFalse:
		return 1
	case condReserved:
		return c.handleReserved(opcode)
	default:
		return armInstrs[((opcode>>16)&0xFF0)|((opcode>>4)&0xF)](c, opcode)
	}
}

// FlushPipeline aligns the program counter and refills the prefetched
// opcodes after a jump.
func (c *Interpreter) FlushPipeline() {
	if c.cpsr&bitT != 0 { // THUMB mode
		*c.regPtr[15] = (*c.regPtr[15] &^ 1) + 2
		c.pipeline[0] = uint32(c.mem.Read16(c.id, *c.regPtr[15]-2))
		c.pipeline[1] = uint32(c.mem.Read16(c.id, *c.regPtr[15]))
	} else { // ARM mode
		*c.regPtr[15] = (*c.regPtr[15] &^ 3) + 4
		c.pipeline[0] = c.mem.Read32(c.id, *c.regPtr[15]-4)
		c.pipeline[1] = c.mem.Read32(c.id, *c.regPtr[15])
	}
}

// unkArm handles an unknown ARM opcode.
func (c *Interpreter) unkArm(opcode uint32) int {
	fmt.Fprintf(c.log, "Unknown %s ARM opcode: 0x%X\n", c.id, opcode)
	return 1
}

// unkThumb handles an unknown THUMB opcode.
func (c *Interpreter) unkThumb(opcode uint16) int {
	fmt.Fprintf(c.log, "Unknown %s THUMB opcode: 0x%X\n", c.id, opcode)
	return 1
}
