package interp_test

import (
	"github.com/nitrolab/nitro/interp"
	"github.com/nitrolab/nitro/sched"
)

// ramMemory is a sparse byte-addressed bus shared by both CPU views.
type ramMemory struct {
	data map[uint32]byte
}

func newRam() *ramMemory {
	return &ramMemory{data: make(map[uint32]byte)}
}

func (m *ramMemory) Read8(cpu interp.CpuId, addr uint32) uint8 {
	return m.data[addr]
}

func (m *ramMemory) Read16(cpu interp.CpuId, addr uint32) uint16 {
	addr &^= 1
	return uint16(m.data[addr]) | uint16(m.data[addr+1])<<8
}

func (m *ramMemory) Read32(cpu interp.CpuId, addr uint32) uint32 {
	addr &^= 3
	return uint32(m.Read16(cpu, addr)) | uint32(m.Read16(cpu, addr+2))<<16
}

func (m *ramMemory) Write8(cpu interp.CpuId, addr uint32, value uint8) {
	m.data[addr] = value
}

func (m *ramMemory) Write16(cpu interp.CpuId, addr uint32, value uint16) {
	addr &^= 1
	m.data[addr] = uint8(value)
	m.data[addr+1] = uint8(value >> 8)
}

func (m *ramMemory) Write32(cpu interp.CpuId, addr uint32, value uint32) {
	addr &^= 3
	m.Write16(cpu, addr, uint16(value))
	m.Write16(cpu, addr+2, uint16(value>>16))
}

// put32 writes words without needing a CPU id.
func (m *ramMemory) put32(addr uint32, values ...uint32) {
	for _, v := range values {
		m.Write32(interp.Arm9, addr, v)
		addr += 4
	}
}

// put16 writes halfwords without needing a CPU id.
func (m *ramMemory) put16(addr uint32, values ...uint16) {
	for _, v := range values {
		m.Write16(interp.Arm9, addr, v)
		addr += 2
	}
}

// fakeCp15 pins the vector base and DTCM address and records register
// traffic.
type fakeCp15 struct {
	exceptionAddr uint32
	dtcmAddr      uint32
	written       map[[3]uint32]uint32
}

func newFakeCp15(exceptionAddr uint32) *fakeCp15 {
	return &fakeCp15{
		exceptionAddr: exceptionAddr,
		dtcmAddr:      0x027C0000,
		written:       make(map[[3]uint32]uint32),
	}
}

func (f *fakeCp15) ExceptionAddr() uint32 { return f.exceptionAddr }

func (f *fakeCp15) DtcmAddr() uint32 { return f.dtcmAddr }

func (f *fakeCp15) Read(cn, cm, cp uint32) uint32 {
	return f.written[[3]uint32{cn, cm, cp}]
}

func (f *fakeCp15) Write(cn, cm, cp, value uint32) {
	f.written[[3]uint32{cn, cm, cp}] = value
}

// fakeBios records exception forwards.
type fakeBios struct {
	vectors     []uint8
	shouldCheck bool
	checked     []interp.CpuId
}

func (f *fakeBios) Execute(vector uint8, cpu interp.CpuId, regs interp.Regs) int {
	f.vectors = append(f.vectors, vector)
	return 3
}

func (f *fakeBios) ShouldCheck() bool { return f.shouldCheck }

func (f *fakeBios) CheckWaitFlags(cpu interp.CpuId) {
	f.checked = append(f.checked, cpu)
}

// fakeDldi records which driver functions were dispatched.
type fakeDldi struct {
	patched bool
	calls   []string
	lastBuf uint32
}

func (f *fakeDldi) IsPatched() bool { return f.patched }

func (f *fakeDldi) Startup() uint32 {
	f.calls = append(f.calls, "startup")
	return 1
}

func (f *fakeDldi) IsInserted() uint32 {
	f.calls = append(f.calls, "inserted")
	return 1
}

func (f *fakeDldi) ReadSectors(cpu interp.CpuId, sector, count, buf uint32) uint32 {
	f.calls = append(f.calls, "read")
	f.lastBuf = buf
	return 1
}

func (f *fakeDldi) WriteSectors(cpu interp.CpuId, sector, count, buf uint32) uint32 {
	f.calls = append(f.calls, "write")
	f.lastBuf = buf
	return 1
}

func (f *fakeDldi) ClearStatus() uint32 {
	f.calls = append(f.calls, "clear")
	return 1
}

func (f *fakeDldi) Shutdown() uint32 {
	f.calls = append(f.calls, "stop")
	return 1
}

// newSched builds an empty scheduler.
func newSched() *sched.Scheduler {
	return sched.New()
}

// newCpu builds an interpreter on a fresh bus and scheduler.
func newCpu(id interp.CpuId, opts ...interp.Option) (*interp.Interpreter, *sched.Scheduler, *ramMemory) {
	mem := newRam()
	s := sched.New()
	c := interp.New(id, mem, s, opts...)
	return c, s, mem
}

const codeBase = 0x2000000

// armCpu places ARM opcodes at the code base and points the CPU at them.
func armCpu(id interp.CpuId, opcodes ...uint32) (*interp.Interpreter, *sched.Scheduler, *ramMemory) {
	c, s, mem := newCpu(id)
	mem.put32(codeBase, opcodes...)
	c.SetCpsr(0x000000D3)
	c.SetReg(15, codeBase)
	c.FlushPipeline()
	return c, s, mem
}

// thumbCpu places THUMB opcodes at the code base and points the CPU at
// them.
func thumbCpu(id interp.CpuId, opcodes ...uint16) (*interp.Interpreter, *sched.Scheduler, *ramMemory) {
	c, s, mem := newCpu(id)
	mem.put16(codeBase, opcodes...)
	c.SetCpsr(0x000000F3) // Supervisor, THUMB, interrupts off
	c.SetReg(15, codeBase)
	c.FlushPipeline()
	return c, s, mem
}
