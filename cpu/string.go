// string.go - MOVS/CMPS/SCAS/LODS/STOS and their REP/REPE/REPNE forms
//
// A REP-prefixed string instruction runs to completion inside a single Step
// call rather than one element per Step. Real hardware can take an
// interrupt mid-repetition; nothing in this core can preempt mid-rep, so
// no partial progress is ever observable between instructions.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package cpu

// stringDelta returns the amount (the element width, negated under DF) by
// which SI and/or DI advance after one element of a string instruction.
func (c *CPU) stringDelta(width uint16) uint16 {
	if c.DF() {
		return uint16(0) - width
	}
	return width
}

func (c *CPU) movsOnce(width uint16) {
	srcSeg := c.modRMSeg(decodedRM{form: FormSi}) // DS, overridable
	if width == 1 {
		c.writeByte(SegES, c.DI, c.readByte(srcSeg, c.SI))
	} else {
		c.writeWord(SegES, c.DI, c.readWord(srcSeg, c.SI))
	}
	d := c.stringDelta(width)
	c.SI += d
	c.DI += d
}

func (c *CPU) lodsOnce(width uint16) {
	srcSeg := c.modRMSeg(decodedRM{form: FormSi})
	if width == 1 {
		c.SetAL(c.readByte(srcSeg, c.SI))
	} else {
		c.AX = c.readWord(srcSeg, c.SI)
	}
	c.SI += c.stringDelta(width)
}

func (c *CPU) stosOnce(width uint16) {
	if width == 1 {
		c.writeByte(SegES, c.DI, c.AL())
	} else {
		c.writeWord(SegES, c.DI, c.AX)
	}
	c.DI += c.stringDelta(width)
}

// cmpsOnce and scasOnce return the comparison's ZF outcome so REPE/REPNE can
// decide whether to continue.
func (c *CPU) cmpsOnce(width uint16) bool {
	srcSeg := c.modRMSeg(decodedRM{form: FormSi})
	if width == 1 {
		a := c.readByte(srcSeg, c.SI)
		b := c.readByte(SegES, c.DI)
		c.aluOp8(aluCMP, a, b)
	} else {
		a := c.readWord(srcSeg, c.SI)
		b := c.readWord(SegES, c.DI)
		c.aluOp16(aluCMP, a, b)
	}
	d := c.stringDelta(width)
	c.SI += d
	c.DI += d
	return c.ZF()
}

func (c *CPU) scasOnce(width uint16) bool {
	if width == 1 {
		c.aluOp8(aluCMP, c.AL(), c.readByte(SegES, c.DI))
	} else {
		c.aluOp16(aluCMP, c.AX, c.readWord(SegES, c.DI))
	}
	c.DI += c.stringDelta(width)
	return c.ZF()
}

// repeatCompare runs one of the compare-style string ops under REPE (repMode==1,
// stop when ZF clears) or REPNE (repMode==2, stop when ZF sets), or just
// once with no prefix.
func (c *CPU) repeatCompare(once func(uint16) bool, width uint16) {
	if c.repMode == 0 {
		once(width)
		return
	}
	wantZF := c.repMode == 1
	for c.CX != 0 {
		c.CX--
		zf := once(width)
		if zf != wantZF {
			break
		}
	}
}

// repeatPlain runs a non-comparing string op under plain REP, or just once.
func (c *CPU) repeatPlain(once func(uint16), width uint16) {
	if c.repMode == 0 {
		once(width)
		return
	}
	for c.CX != 0 {
		c.CX--
		once(width)
	}
}

func (c *CPU) opMOVSB() { c.repeatPlain(c.movsOnce, 1) }
func (c *CPU) opMOVSW() { c.repeatPlain(c.movsOnce, 2) }
func (c *CPU) opLODSB() { c.repeatPlain(c.lodsOnce, 1) }
func (c *CPU) opLODSW() { c.repeatPlain(c.lodsOnce, 2) }
func (c *CPU) opSTOSB() { c.repeatPlain(c.stosOnce, 1) }
func (c *CPU) opSTOSW() { c.repeatPlain(c.stosOnce, 2) }
func (c *CPU) opCMPSB() { c.repeatCompare(c.cmpsOnce, 1) }
func (c *CPU) opCMPSW() { c.repeatCompare(c.cmpsOnce, 2) }
func (c *CPU) opSCASB() { c.repeatCompare(c.scasOnce, 1) }
func (c *CPU) opSCASW() { c.repeatCompare(c.scasOnce, 2) }
