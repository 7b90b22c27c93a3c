package main

import "github.com/nitrolab/nitro/interp"

// pageShift gives 4KB pages, allocated on first touch. The NDS address
// space is sparse, so a page map keeps the harness small without caring
// about the real memory layout.
const pageShift = 12

// flatMemory is the harness bus: one shared view for both CPUs.
// Reads from untouched pages return zero, matching the contract that the
// core never sees a bus error.
type flatMemory struct {
	pages map[uint32][]byte
}

func newFlatMemory() *flatMemory {
	return &flatMemory{pages: make(map[uint32][]byte)}
}

func (m *flatMemory) page(addr uint32, allocate bool) []byte {
	p, ok := m.pages[addr>>pageShift]
	if !ok && allocate {
		p = make([]byte, 1<<pageShift)
		m.pages[addr>>pageShift] = p
	}
	return p
}

// load copies data into memory at addr.
func (m *flatMemory) load(addr uint32, data []byte) {
	for i, b := range data {
		m.Write8(interp.Arm9, addr+uint32(i), b)
	}
}

func (m *flatMemory) Read8(cpu interp.CpuId, addr uint32) uint8 {
	p := m.page(addr, false)
	if p == nil {
		return 0
	}
	return p[addr&(1<<pageShift-1)]
}

func (m *flatMemory) Read16(cpu interp.CpuId, addr uint32) uint16 {
	addr &^= 1
	return uint16(m.Read8(cpu, addr)) | uint16(m.Read8(cpu, addr+1))<<8
}

func (m *flatMemory) Read32(cpu interp.CpuId, addr uint32) uint32 {
	addr &^= 3
	return uint32(m.Read16(cpu, addr)) | uint32(m.Read16(cpu, addr+2))<<16
}

func (m *flatMemory) Write8(cpu interp.CpuId, addr uint32, value uint8) {
	m.page(addr, true)[addr&(1<<pageShift-1)] = value
}

func (m *flatMemory) Write16(cpu interp.CpuId, addr uint32, value uint16) {
	addr &^= 1
	m.Write8(cpu, addr, uint8(value))
	m.Write8(cpu, addr+1, uint8(value>>8))
}

func (m *flatMemory) Write32(cpu interp.CpuId, addr uint32, value uint32) {
	addr &^= 3
	m.Write16(cpu, addr, uint16(value))
	m.Write16(cpu, addr+2, uint16(value>>16))
}

// stubCp15 pins the ARM9 vectors to the BIOS region and the DTCM to its
// usual direct-boot location. The real coprocessor lives outside the core.
type stubCp15 struct{}

func (stubCp15) ExceptionAddr() uint32 { return 0xFFFF0000 }

func (stubCp15) DtcmAddr() uint32 { return 0x027C0000 }

func (stubCp15) Read(cn, cm, cp uint32) uint32 { return 0 }

func (stubCp15) Write(cn, cm, cp, value uint32) {}
