package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nitrolab/nitro/core"
	"github.com/nitrolab/nitro/interp"
	"github.com/nitrolab/nitro/sched"
)

// ramMemory is a sparse bus shared by both CPU views.
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

func (m *ramMemory) put32(addr uint32, values ...uint32) {
	for _, v := range values {
		m.Write32(interp.Arm9, addr, v)
		addr += 4
	}
}

// stopAfter schedules a task that ends the frame at the given delay.
func stopAfter(c *core.Core, delay uint64) {
	task := &sched.Task{Run: func() { c.Stop() }, Name: "frame end"}
	c.Sched.Schedule(task, delay)
}

var _ = Describe("Core", func() {
	var mem *ramMemory

	BeforeEach(func() {
		mem = newRam()
	})

	Describe("RunNdsFrame", func() {
		It("should interleave the CPUs at a 2:1 clock ratio", func() {
			// Zeroed memory decodes to condition-false opcodes costing
			// one cycle each.
			c := core.New(mem)
			c.Init()
			stopAfter(c, 100)

			c.RunNdsFrame()

			Expect(c.Sched.GlobalCycles).To(Equal(uint64(100)))
			Expect(c.Arm9.Stats().Instructions).To(Equal(uint64(100)))
			Expect(c.Arm7.Stats().Instructions).To(Equal(uint64(50)))
			Expect(c.Stats().Frames).To(Equal(uint64(1)))
		})

		It("should jump straight to the deadline with both CPUs halted", func() {
			c := core.New(mem)
			c.Init()
			c.Arm9.Halt(0)
			c.Arm7.Halt(0)
			stopAfter(c, 50)

			c.RunNdsFrame()

			Expect(c.Sched.GlobalCycles).To(Equal(uint64(50)))
			Expect(c.Arm9.Stats().Instructions).To(BeZero())
			Expect(c.Arm7.Stats().Instructions).To(BeZero())
		})

		It("should deliver a pending interrupt during the frame", func() {
			c := core.New(mem)
			c.Init()
			c.Arm7.SetCpsr(0x00000053)
			c.Arm7.WriteIme(1)
			c.Arm7.WriteIe(^uint32(0), 1<<interp.IrqVBlank)
			c.Arm7.Halt(0)
			c.Arm9.Halt(0)

			c.Arm7.SendInterrupt(interp.IrqVBlank)
			stopAfter(c, 50)

			c.RunNdsFrame()

			Expect(c.Arm7.Cpsr() & 0x1F).To(Equal(uint32(0x12)))
			Expect(c.Arm7.Stats().Interrupts).To(Equal(uint64(1)))
		})
	})

	Describe("RunGbaFrame", func() {
		It("should advance the cursor by exactly the ARM7 costs", func() {
			mem.put32(0, 0xEAFFFFFE) // B .
			c := core.New(mem)
			c.Init()
			c.EnterGbaMode()
			stopAfter(c, 30)

			c.RunGbaFrame()

			Expect(c.Sched.GlobalCycles).To(Equal(uint64(30)))
			Expect(c.Arm7.Stats().Instructions).To(Equal(uint64(10)))
			Expect(c.Arm9.Stats().Instructions).To(BeZero())
		})

		It("should apply the GBA interrupt enable mask", func() {
			c := core.New(mem)
			c.Init()
			c.EnterGbaMode()

			c.Arm7.WriteIe(^uint32(0), ^uint32(0))

			Expect(c.Arm7.Ie()).To(Equal(uint32(0x3FFF)))
		})
	})

	Describe("DirectBoot", func() {
		It("should point both CPUs at their header entries", func() {
			mem.put32(0x27FFE24, 0x02000800)
			mem.put32(0x27FFE34, 0x02380000)
			c := core.New(mem)
			c.Init()

			c.DirectBoot()

			Expect(c.Arm9.Reg(15)).To(Equal(uint32(0x02000804)))
			Expect(c.Arm7.Reg(15)).To(Equal(uint32(0x02380004)))
			Expect(c.Arm9.Cpsr()).To(Equal(uint32(0x000000DF)))
		})
	})

	Describe("Stop", func() {
		It("should leave the driver restartable", func() {
			c := core.New(mem)
			c.Init()
			stopAfter(c, 10)
			c.RunNdsFrame()

			stopAfter(c, 10)
			c.RunNdsFrame()

			Expect(c.Stats().Frames).To(Equal(uint64(2)))
			Expect(c.Sched.GlobalCycles).To(Equal(uint64(20)))
		})
	})
})
