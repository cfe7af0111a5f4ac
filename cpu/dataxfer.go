// dataxfer.go - MOV family, XCHG, LEA, LDS/LES, sign/zero-extending moves,
// LAHF/SAHF, stack transfers and XLAT
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package cpu

func (c *CPU) movEbGb() {
	d := parseModRM(c)
	c.writeRM8(d, c.reg8(d.reg))
}

func (c *CPU) movEvGv() {
	d := parseModRM(c)
	c.writeRM16(d, c.reg16(d.reg))
}

func (c *CPU) movGbEb() {
	d := parseModRM(c)
	c.setReg8(d.reg, c.readRM8(d))
}

func (c *CPU) movGvEv() {
	d := parseModRM(c)
	c.setReg16(d.reg, c.readRM16(d))
}

func (c *CPU) movEvSreg() {
	d := parseModRM(c)
	c.writeRM16(d, c.seg(int(d.reg)&7))
}

func (c *CPU) movSregEv() {
	d := parseModRM(c)
	c.setSeg(int(d.reg)&7, c.readRM16(d))
}

func (c *CPU) movRegImm8(idx byte) {
	c.setReg8(idx, c.fetch8())
}

func (c *CPU) movRegImm16(idx byte) {
	c.setReg16(idx, c.fetch16())
}

// movALMoffs/movAXMoffs/movMoffsAL/movMoffsAX are the A0-A3 direct-offset
// forms: a bare 16-bit offset follows the opcode, no ModR/M byte.
func (c *CPU) movALMoffs() {
	off := c.fetch16()
	c.SetAL(c.readByte(SegDS, off))
}

func (c *CPU) movAXMoffs() {
	off := c.fetch16()
	c.AX = c.readWord(SegDS, off)
}

func (c *CPU) movMoffsAL() {
	off := c.fetch16()
	c.writeByte(SegDS, off, c.AL())
}

func (c *CPU) movMoffsAX() {
	off := c.fetch16()
	c.writeWord(SegDS, off, c.AX)
}

func (c *CPU) xchgEbGb() {
	d := parseModRM(c)
	a, b := c.readRM8(d), c.reg8(d.reg)
	c.writeRM8(d, b)
	c.setReg8(d.reg, a)
}

func (c *CPU) xchgEvGv() {
	d := parseModRM(c)
	a, b := c.readRM16(d), c.reg16(d.reg)
	c.writeRM16(d, b)
	c.setReg16(d.reg, a)
}

func (c *CPU) xchgAXReg(idx byte) {
	v := c.reg16(idx)
	c.setReg16(idx, c.AX)
	c.AX = v
}

func (c *CPU) opLEA() {
	d := parseModRM(c)
	if d.isReg {
		invalidGroupReg(d.reg) // LEA r,r has no memory operand to take the address of
	}
	_, off := c.rmAddress(d)
	c.setReg16(d.reg, off)
}

// loadFarPointer backs LDS/LES: reads a 32-bit far pointer from memory and
// loads the offset into the ModR/M reg and the segment into seg.
func (c *CPU) loadFarPointer(seg *uint16) {
	d := parseModRM(c)
	if d.isReg {
		invalidGroupReg(d.reg)
	}
	s, off := c.rmAddress(d)
	lo := c.readWord(s, off)
	hi := c.readWord(s, off+2)
	c.setReg16(d.reg, lo)
	*seg = hi
}

func (c *CPU) opLDS() { c.loadFarPointer(&c.DS) }
func (c *CPU) opLES() { c.loadFarPointer(&c.ES) }

func (c *CPU) movzxGvEb() {
	d := parseModRM(c)
	c.setReg16(d.reg, uint16(c.readRM8(d)))
}

func (c *CPU) movsxGvEb() {
	d := parseModRM(c)
	c.setReg16(d.reg, uint16(int16(int8(c.readRM8(d)))))
}

func (c *CPU) opLAHF() {
	c.SetAH(byte(c.packFlags()))
}

func (c *CPU) opSAHF() {
	c.unpackFlags(c.packFlags()&0xFF00 | uint16(c.AH()))
}

func (c *CPU) opXLAT() {
	off := c.BX + uint16(c.AL())
	c.SetAL(c.readByte(SegDS, off))
}

// ---------------------------------------------------------------------------
// Stack transfers
// ---------------------------------------------------------------------------

func (c *CPU) pushReg16(idx byte) { c.push16(c.reg16(idx)) }
func (c *CPU) popReg16(idx byte)  { c.setReg16(idx, c.pop16()) }

func (c *CPU) pushSeg(idx int) { c.push16(c.seg(idx)) }
func (c *CPU) popSeg(idx int)  { c.setSeg(idx, c.pop16()) }

func (c *CPU) opPushImm16() { c.push16(c.fetch16()) }
func (c *CPU) opPushImm8()  { c.push16(uint16(int16(int8(c.fetch8())))) }

func (c *CPU) opPUSHA() {
	sp := c.SP
	c.push16(c.AX)
	c.push16(c.CX)
	c.push16(c.DX)
	c.push16(c.BX)
	c.push16(sp)
	c.push16(c.BP)
	c.push16(c.SI)
	c.push16(c.DI)
}

func (c *CPU) opPOPA() {
	c.DI = c.pop16()
	c.SI = c.pop16()
	c.BP = c.pop16()
	c.pop16() // discard the pushed SP
	c.BX = c.pop16()
	c.DX = c.pop16()
	c.CX = c.pop16()
	c.AX = c.pop16()
}

func (c *CPU) opPUSHF() { c.push16(c.packFlags()) }
func (c *CPU) opPOPF()  { c.unpackFlags(c.pop16()) }

func (c *CPU) opENTER() {
	size := c.fetch16()
	level := c.fetch8() & 0x1F
	c.push16(c.BP)
	frameTemp := c.SP
	if level > 0 {
		bp := c.BP
		for i := byte(1); i < level; i++ {
			bp -= 2
			c.push16(c.readWord(SegSS, bp))
		}
		c.push16(frameTemp)
	}
	c.BP = frameTemp
	c.SP -= size
}

func (c *CPU) opLEAVE() {
	c.SP = c.BP
	c.BP = c.pop16()
}
