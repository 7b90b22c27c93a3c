// Package core wires the two interpreters to the shared scheduler and
// drives them frame by frame.
package core

import (
	"io"

	"github.com/nitrolab/nitro/interp"
	"github.com/nitrolab/nitro/sched"
)

// resetCyclesInterval is how often the global cycle cursor is rebased to
// keep it and every queued deadline far from overflow.
const resetCyclesInterval = 0x7FFFFFFF

// Stats holds per-core execution statistics.
type Stats struct {
	// Frames is the number of frame loops completed.
	Frames uint64

	// TasksRun is the number of scheduler tasks executed.
	TasksRun uint64
}

// Core owns one emulated system: two CPUs, the scheduler, and the hooks
// that tie them to the external collaborators.
type Core struct {
	Sched *sched.Scheduler
	Arm9  *interp.Interpreter
	Arm7  *interp.Interpreter

	gbaMode bool

	resetCyclesTask sched.Task

	frames uint64
}

// Option configures a Core.
type Option func(*options)

type options struct {
	arm9 []interp.Option
	arm7 []interp.Option
}

// WithLog routes both CPUs' diagnostics to w.
func WithLog(w io.Writer) Option {
	return func(o *options) {
		o.arm9 = append(o.arm9, interp.WithLog(w))
		o.arm7 = append(o.arm7, interp.WithLog(w))
	}
}

// WithCp15 attaches the system control coprocessor to the ARM9.
func WithCp15(cp interp.Cp15) Option {
	return func(o *options) {
		o.arm9 = append(o.arm9, interp.WithCp15(cp))
	}
}

// WithBios attaches a high-level BIOS to both CPUs.
func WithBios(bios interp.HleBios) Option {
	return func(o *options) {
		o.arm9 = append(o.arm9, interp.WithBios(bios))
		o.arm7 = append(o.arm7, interp.WithBios(bios))
	}
}

// WithDldi attaches a high-level DLDI driver to both CPUs.
func WithDldi(dldi interp.Dldi) Option {
	return func(o *options) {
		o.arm9 = append(o.arm9, interp.WithDldi(dldi))
		o.arm7 = append(o.arm7, interp.WithDldi(dldi))
	}
}

// New creates a core on the given memory bus.
func New(mem interp.Memory, opts ...Option) *Core {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Core{Sched: sched.New()}
	c.Arm9 = interp.New(interp.Arm9, mem, c.Sched, o.arm9...)
	c.Arm7 = interp.New(interp.Arm7, mem, c.Sched, o.arm7...)
	c.resetCyclesTask = sched.Task{Run: c.resetCycles, Name: "reset cycles"}
	return c
}

// Init prepares both CPUs to boot the BIOS and starts the cycle rebase
// task.
func (c *Core) Init() {
	c.Arm9.Init()
	c.Arm7.Init()
	c.Sched.Schedule(&c.resetCyclesTask, resetCyclesInterval)
}

// DirectBoot prepares both CPUs to jump straight to an NDS ROM's entry
// points.
func (c *Core) DirectBoot() {
	c.Arm9.DirectBoot()
	c.Arm7.DirectBoot()
}

// EnterGbaMode switches the core to GBA emulation: only the ARM7 runs, at
// GBA timings and with GBA register masks.
func (c *Core) EnterGbaMode() {
	c.gbaMode = true
	c.Arm9.SetGbaMode(true)
	c.Arm7.SetGbaMode(true)
	c.Arm9.Halt(1)
}

// GbaMode reports whether the core is emulating a GBA.
func (c *Core) GbaMode() bool {
	return c.gbaMode
}

// Stop asks the running frame driver to return. Safe to call from another
// goroutine; this is the only cross-thread entry point.
func (c *Core) Stop() {
	c.Sched.Stop()
}

// Stats returns core execution statistics.
func (c *Core) Stats() Stats {
	return Stats{Frames: c.frames, TasksRun: c.Sched.TasksRun}
}

// resetCycles rebases the global cycle cursor, every queued deadline, and
// both CPU cycle counters in one step. The next occurrence is scheduled
// first so its own deadline is rebased with the rest.
func (c *Core) resetCycles() {
	c.Sched.Schedule(&c.resetCyclesTask, resetCyclesInterval)
	global := c.Sched.GlobalCycles
	c.Sched.SubtractCycles(global)
	c.Arm9.ResetCycles(global)
	c.Arm7.ResetCycles(global)
	c.Sched.GlobalCycles = 0
}
