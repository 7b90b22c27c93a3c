package interp

// thumbBCond builds a conditional branch for one condition code.
func thumbBCond(cond uint32) thumbFn {
	return func(c *Interpreter, op uint16) int {
		if !c.conditionPasses(cond) {
			return 1
		}
		*c.regPtr[15] += uint32(int32(int8(op)) << 1)
		c.FlushPipeline()
		return 3
	}
}

// thumbSwi takes the software interrupt exception.
func thumbSwi(c *Interpreter, op uint16) int {
	return c.Exception(VectorSwi)
}

// thumbB branches by a sign-extended 11-bit halfword offset.
func thumbB(c *Interpreter, op uint16) int {
	*c.regPtr[15] += uint32(int32(uint32(op)<<21) >> 20)
	c.FlushPipeline()
	return 3
}

// thumbBlPrefix stages the upper half of a BL/BLX target in LR.
func thumbBlPrefix(c *Interpreter, op uint16) int {
	*c.regPtr[14] = *c.regPtr[15] + uint32(int32(uint32(op)<<21)>>9)
	return 1
}

// thumbBlSuffix completes a BL: jump to the staged target plus the low
// half, leaving the return address in LR with its Thumb bit set.
func thumbBlSuffix(c *Interpreter, op uint16) int {
	ret := *c.regPtr[15] - 2
	*c.regPtr[15] = *c.regPtr[14] + (uint32(op)&0x7FF)<<1
	*c.regPtr[14] = ret | 1
	c.FlushPipeline()
	return 3
}

// thumbBlxSuffix completes a BLX: like BL, but the target is word-aligned
// and execution continues in ARM state (ARM9).
func thumbBlxSuffix(c *Interpreter, op uint16) int {
	ret := *c.regPtr[15] - 2
	*c.regPtr[15] = (*c.regPtr[14] + (uint32(op)&0x7FF)<<1) &^ 3
	*c.regPtr[14] = ret | 1
	c.cpsr &^= bitT
	c.FlushPipeline()
	return 3
}
