package core

import "math"

// RunNdsFrame interleaves both CPUs against the scheduler until the stop
// flag is cleared. The ARM7 is charged two global cycles per cycle of
// instruction cost, encoding its half-speed clock.
func (c *Core) RunNdsFrame() {
	s := c.Sched

	for s.Running.Swap(true) {
		// Run the CPUs until the next scheduled task.
		for s.NextDeadline() > s.GlobalCycles {
			if !c.Arm9.Halted() && s.GlobalCycles >= c.Arm9.Cycles() {
				c.Arm9.SetCycles(s.GlobalCycles + uint64(c.Arm9.RunOpcode()))
			}

			if !c.Arm7.Halted() && s.GlobalCycles >= c.Arm7.Cycles() {
				c.Arm7.SetCycles(s.GlobalCycles + uint64(c.Arm7.RunOpcode())<<1)
			}

			// Count cycles up to the next soonest event.
			next := uint64(math.MaxUint64)
			if !c.Arm9.Halted() {
				next = c.Arm9.Cycles()
			}
			if !c.Arm7.Halted() && c.Arm7.Cycles() < next {
				next = c.Arm7.Cycles()
			}
			s.GlobalCycles = next
		}

		// Jump to the next scheduled task and run everything due.
		s.GlobalCycles = s.NextDeadline()
		s.RunDue()
	}

	c.frames++
}

// RunGbaFrame drives the ARM7 alone, advancing the global cursor by
// exactly the returned instruction costs.
func (c *Core) RunGbaFrame() {
	s := c.Sched

	for s.Running.Swap(true) {
		// Run the ARM7 until the next scheduled task.
		if c.Arm7.Cycles() > s.GlobalCycles {
			s.GlobalCycles = c.Arm7.Cycles()
		}
		for !c.Arm7.Halted() && s.NextDeadline() > c.Arm7.Cycles() {
			s.GlobalCycles += uint64(c.Arm7.RunOpcode())
			c.Arm7.SetCycles(s.GlobalCycles)
		}

		// Jump to the next scheduled task and run everything due.
		s.GlobalCycles = s.NextDeadline()
		s.RunDue()
	}

	c.frames++
}
