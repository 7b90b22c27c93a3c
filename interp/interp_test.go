package interp_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nitrolab/nitro/interp"
)

var _ = Describe("Interpreter", func() {
	Describe("Init", func() {
		It("should cold-boot the ARM9 at the BIOS vectors", func() {
			c, _, mem := newCpu(interp.Arm9)
			mem.put32(0xFFFF0000, 0xE3A00001, 0xE3A00002)

			c.Init()

			Expect(c.Cpsr()).To(Equal(uint32(0x000000D3)))
			Expect(c.Reg(15)).To(Equal(uint32(0xFFFF0004)))
			Expect(c.Pipeline()).To(Equal([2]uint32{0xE3A00001, 0xE3A00002}))
			Expect(c.Ime()).To(Equal(uint8(0)))
			Expect(c.Ie()).To(BeZero())
			Expect(c.Irf()).To(BeZero())
		})

		It("should cold-boot the ARM7 at address zero", func() {
			c, _, mem := newCpu(interp.Arm7)
			mem.put32(0, 0xE3A00001, 0xE3A00002)

			c.Init()

			Expect(c.Reg(15)).To(Equal(uint32(4)))
			Expect(c.Pipeline()).To(Equal([2]uint32{0xE3A00001, 0xE3A00002}))
		})
	})

	Describe("DirectBoot", func() {
		It("should seed the stacks and jump to the header entry point", func() {
			c, _, mem := newCpu(interp.Arm9)
			mem.put32(0x27FFE24, 0x02000800)

			c.DirectBoot()

			Expect(c.Cpsr()).To(Equal(uint32(0x000000DF)))
			Expect(c.Reg(12)).To(Equal(uint32(0x02000800)))
			Expect(c.Reg(14)).To(Equal(uint32(0x02000800)))
			Expect(c.Reg(15)).To(Equal(uint32(0x02000804)))
			Expect(c.Reg(13)).To(Equal(uint32(0x03002F7C)))
		})

		It("should read the ARM7 entry from its own header word", func() {
			c, _, mem := newCpu(interp.Arm7)
			mem.put32(0x27FFE34, 0x02380000)

			c.DirectBoot()

			Expect(c.Reg(15)).To(Equal(uint32(0x02380004)))
			Expect(c.Reg(13)).To(Equal(uint32(0x0380FD80)))
		})
	})

	Describe("FlushPipeline", func() {
		It("should align the PC and refill both slots in ARM state", func() {
			c, _, mem := newCpu(interp.Arm9)
			mem.put32(0x2000100, 0x11111111, 0x22222222)
			c.SetCpsr(0x000000D3)

			c.SetReg(15, 0x2000102) // misaligned on purpose
			c.FlushPipeline()

			Expect(c.Reg(15)).To(Equal(uint32(0x2000104)))
			Expect(c.Pipeline()).To(Equal([2]uint32{0x11111111, 0x22222222}))
		})

		It("should align the PC and refill both slots in THUMB state", func() {
			c, _, mem := newCpu(interp.Arm9)
			mem.put16(0x2000100, 0x1111, 0x2222)
			c.SetCpsr(0x000000F3)

			c.SetReg(15, 0x2000101)
			c.FlushPipeline()

			Expect(c.Reg(15)).To(Equal(uint32(0x2000102)))
			Expect(c.Pipeline()).To(Equal([2]uint32{0x1111, 0x2222}))
		})
	})

	Describe("SendInterrupt", func() {
		It("should schedule delivery one cycle out on the ARM9", func() {
			c, s, _ := armCpu(interp.Arm9)
			c.SetCpsr(0x00000053) // IRQs enabled
			c.WriteIme(1)
			c.WriteIe(^uint32(0), 1<<interp.IrqVBlank)
			c.Halt(0)

			c.SendInterrupt(interp.IrqVBlank)

			Expect(s.Len()).To(Equal(1))
			Expect(s.NextDeadline()).To(Equal(s.GlobalCycles + 1))

			s.GlobalCycles = s.NextDeadline()
			s.RunDue()

			Expect(c.Cpsr() & 0x1F).To(Equal(uint32(0x12)))
			Expect(c.Cpsr() & (1 << 7)).NotTo(BeZero())
			Expect(c.Reg(15)).To(Equal(uint32(0x18 + 4)))
			Expect(c.Halted()).To(BeFalse())
		})

		It("should schedule delivery two cycles out on the ARM7 in NDS mode", func() {
			c, s, _ := armCpu(interp.Arm7)
			c.SetCpsr(0x00000053)
			c.WriteIme(1)
			c.WriteIe(^uint32(0), 1<<interp.IrqVBlank)

			c.SendInterrupt(interp.IrqVBlank)

			Expect(s.NextDeadline()).To(Equal(s.GlobalCycles + 2))
		})

		It("should schedule delivery one cycle out on the ARM7 in GBA mode", func() {
			c, s, _ := armCpu(interp.Arm7)
			c.SetGbaMode(true)
			c.SetCpsr(0x00000053)
			c.WriteIme(1)
			c.WriteIe(^uint32(0), 1)

			c.SendInterrupt(0)

			Expect(s.NextDeadline()).To(Equal(s.GlobalCycles + 1))
		})

		It("should unhalt the ARM7 without IME", func() {
			c, s, _ := armCpu(interp.Arm7)
			c.WriteIe(^uint32(0), 1)
			c.Halt(0)

			c.SendInterrupt(0)

			Expect(s.Len()).To(BeZero())
			Expect(c.Halted()).To(BeFalse())
		})

		It("should keep the ARM9 halted without IME", func() {
			c, s, _ := armCpu(interp.Arm9)
			c.WriteIe(^uint32(0), 1)
			c.Halt(0)

			c.SendInterrupt(0)

			Expect(s.Len()).To(BeZero())
			Expect(c.Halted()).To(BeTrue())
		})

		It("should not deliver when the request was acknowledged in time", func() {
			c, s, _ := armCpu(interp.Arm9)
			c.SetCpsr(0x00000053)
			c.WriteIme(1)
			c.WriteIe(^uint32(0), 1)

			c.SendInterrupt(0)
			c.WriteIrf(^uint32(0), 1) // acknowledge before the task fires

			s.GlobalCycles = s.NextDeadline()
			s.RunDue()

			Expect(c.Cpsr() & 0x1F).To(Equal(uint32(0x13)))
		})

		It("should mask IE writes per CPU", func() {
			arm9, _, _ := armCpu(interp.Arm9)
			arm9.WriteIe(^uint32(0), ^uint32(0))
			Expect(arm9.Ie()).To(Equal(uint32(0x003F3F7F)))

			arm7, _, _ := armCpu(interp.Arm7)
			arm7.WriteIe(^uint32(0), ^uint32(0))
			Expect(arm7.Ie()).To(Equal(uint32(0x01FF3FFF)))

			gba, _, _ := armCpu(interp.Arm7)
			gba.SetGbaMode(true)
			gba.WriteIe(^uint32(0), ^uint32(0))
			Expect(gba.Ie()).To(Equal(uint32(0x3FFF)))
		})

		It("should clear IF bits on write-1", func() {
			c, _, _ := armCpu(interp.Arm7)
			c.SendInterrupt(3)
			c.SendInterrupt(5)
			Expect(c.Irf()).To(Equal(uint32(0x28)))

			c.WriteIrf(^uint32(0), 1<<3)

			Expect(c.Irf()).To(Equal(uint32(0x20)))
		})
	})

	Describe("WritePostFlg", func() {
		It("should never clear bit 0", func() {
			c, _, _ := armCpu(interp.Arm7)
			c.WritePostFlg(1)
			c.WritePostFlg(0)
			Expect(c.PostFlg()).To(Equal(uint8(1)))
		})

		It("should ignore bit 1 on the ARM7", func() {
			c, _, _ := armCpu(interp.Arm7)
			c.WritePostFlg(3)
			Expect(c.PostFlg()).To(Equal(uint8(1)))
		})

		It("should keep bit 1 writable on the ARM9", func() {
			c, _, _ := armCpu(interp.Arm9)
			c.WritePostFlg(3)
			Expect(c.PostFlg()).To(Equal(uint8(3)))

			c.WritePostFlg(0)
			Expect(c.PostFlg()).To(Equal(uint8(1)))
		})
	})

	Describe("Exception", func() {
		It("should switch mode, mask IRQs and jump to the vector", func() {
			c, _, _ := armCpu(interp.Arm7)
			old := c.Cpsr()

			cycles := c.Exception(interp.VectorSwi)

			Expect(cycles).To(Equal(3))
			Expect(c.Cpsr() & 0x1F).To(Equal(uint32(0x13)))
			Expect(c.Cpsr() & (1 << 7)).NotTo(BeZero())
			Expect(c.Cpsr() & (1 << 5)).To(BeZero())
			Expect(c.Spsr()).To(Equal(old))
			Expect(c.Reg(14)).To(Equal(uint32(codeBase + 4)))
			Expect(c.Reg(15)).To(Equal(uint32(0x08 + 4)))
		})

		It("should add the THUMB fixup to the return address", func() {
			c, _, _ := thumbCpu(interp.Arm7, 0xDF00)

			c.RunOpcode() // SWI

			Expect(c.Reg(14)).To(Equal(uint32(codeBase + 4 + 2)))
			Expect(c.Cpsr() & (1 << 5)).To(BeZero())
		})

		It("should use the CP15 vector base on the ARM9", func() {
			mem := newRam()
			s := newSched()
			c := interp.New(interp.Arm9, mem, s, interp.WithCp15(newFakeCp15(0xFFFF0000)))
			c.SetCpsr(0x000000D3)

			c.Exception(interp.VectorIrq)

			Expect(c.Reg(15)).To(Equal(uint32(0xFFFF0018 + 4)))
		})

		It("should forward to the HLE BIOS on the ARM7", func() {
			bios := &fakeBios{}
			mem := newRam()
			s := newSched()
			c := interp.New(interp.Arm7, mem, s, interp.WithBios(bios))
			c.SetCpsr(0x000000D3)

			c.Exception(interp.VectorSwi)

			Expect(bios.vectors).To(Equal([]uint8{interp.VectorSwi}))
		})

		It("should not forward on the ARM9 with low vectors", func() {
			bios := &fakeBios{}
			mem := newRam()
			s := newSched()
			c := interp.New(interp.Arm9, mem, s, interp.WithBios(bios))
			c.SetCpsr(0x000000D3)

			c.Exception(interp.VectorSwi)

			Expect(bios.vectors).To(BeEmpty())
			Expect(c.Reg(15)).To(Equal(uint32(0x08 + 4)))
		})
	})

	Describe("RunOpcode", func() {
		It("should skip a failed condition for one cycle", func() {
			c, _, _ := armCpu(interp.Arm9, 0x03A00001) // MOVEQ R0, #1

			Expect(c.RunOpcode()).To(Equal(1))
			Expect(c.Reg(0)).To(BeZero())
		})

		It("should log unknown ARM opcodes and keep going", func() {
			var log bytes.Buffer
			mem := newRam()
			s := newSched()
			c := interp.New(interp.Arm9, mem, s, interp.WithLog(&log))
			mem.put32(codeBase, 0xE6000010) // media zone, undefined here
			c.SetCpsr(0x000000D3)
			c.SetReg(15, codeBase)
			c.FlushPipeline()

			Expect(c.RunOpcode()).To(Equal(1))
			Expect(log.String()).To(ContainSubstring("Unknown ARM9 ARM opcode"))
			Expect(c.Reg(15)).To(Equal(uint32(codeBase + 8)))
		})

		It("should dispatch BLX through the reserved condition", func() {
			c, _, mem := armCpu(interp.Arm9, 0xFA000001)
			mem.put16(codeBase+12, 0x2001) // MOV R0, #1 at the target

			cycles := c.RunOpcode()

			Expect(cycles).To(Equal(3))
			Expect(c.Cpsr() & (1 << 5)).NotTo(BeZero())
			Expect(c.Reg(14)).To(Equal(uint32(codeBase + 4)))
			Expect(c.Reg(15)).To(Equal(uint32(codeBase + 14)))
			Expect(c.Pipeline()[0]).To(Equal(uint32(0x2001)))
		})

		It("should count retired instructions", func() {
			c, _, _ := armCpu(interp.Arm9, 0xE3A00001, 0xE3A00002)

			c.RunOpcode()
			c.RunOpcode()

			Expect(c.Stats().Instructions).To(Equal(uint64(2)))
		})
	})
})
