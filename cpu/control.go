// control.go - conditional jumps, loops, CALL/RET/JMP, INT/INT3/INTO and the
// single-bit flag instructions
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package cpu

// condTrue evaluates a Jcc condition code (the low nibble of 0x70-0x7F /
// 0x0F 0x80-0x8F), matching the architectural condition predicates.
func (c *CPU) condTrue(cc byte) bool {
	switch cc & 0x0F {
	case 0x0: // JO
		return c.OF()
	case 0x1: // JNO
		return !c.OF()
	case 0x2: // JB/JC/JNAE
		return c.CF()
	case 0x3: // JNB/JNC/JAE
		return !c.CF()
	case 0x4: // JZ/JE
		return c.ZF()
	case 0x5: // JNZ/JNE
		return !c.ZF()
	case 0x6: // JBE/JNA
		return c.CF() || c.ZF()
	case 0x7: // JNBE/JA
		return !c.CF() && !c.ZF()
	case 0x8: // JS
		return c.SF()
	case 0x9: // JNS
		return !c.SF()
	case 0xA: // JP/JPE
		return c.PF()
	case 0xB: // JNP/JPO
		return !c.PF()
	case 0xC: // JL/JNGE
		return c.SF() != c.OF()
	case 0xD: // JNL/JGE
		return c.SF() == c.OF()
	case 0xE: // JLE/JNG
		return c.ZF() || c.SF() != c.OF()
	default: // JNLE/JG
		return !c.ZF() && c.SF() == c.OF()
	}
}

func (c *CPU) jccShort(cc byte) {
	rel := int8(c.fetch8())
	if c.condTrue(cc) {
		c.IP = uint16(int16(c.IP) + int16(rel))
	}
}

func (c *CPU) jccNear(cc byte) {
	rel := int16(c.fetch16())
	if c.condTrue(cc) {
		c.IP = uint16(int16(c.IP) + rel)
	}
}

func (c *CPU) opJCXZ() {
	rel := int8(c.fetch8())
	if c.CX == 0 {
		c.IP = uint16(int16(c.IP) + int16(rel))
	}
}

func (c *CPU) opLOOP() {
	rel := int8(c.fetch8())
	c.CX--
	if c.CX != 0 {
		c.IP = uint16(int16(c.IP) + int16(rel))
	}
}

func (c *CPU) opLOOPE() {
	rel := int8(c.fetch8())
	c.CX--
	if c.CX != 0 && c.ZF() {
		c.IP = uint16(int16(c.IP) + int16(rel))
	}
}

func (c *CPU) opLOOPNE() {
	rel := int8(c.fetch8())
	c.CX--
	if c.CX != 0 && !c.ZF() {
		c.IP = uint16(int16(c.IP) + int16(rel))
	}
}

func (c *CPU) opJMPShort() {
	rel := int8(c.fetch8())
	c.IP = uint16(int16(c.IP) + int16(rel))
}

func (c *CPU) opJMPNear() {
	rel := int16(c.fetch16())
	c.IP = uint16(int16(c.IP) + rel)
}

func (c *CPU) opJMPFar() {
	newIP := c.fetch16()
	newCS := c.fetch16()
	c.CS = newCS
	c.IP = newIP
}

func (c *CPU) opCALLNear() {
	rel := int16(c.fetch16())
	ret := c.IP
	c.IP = uint16(int16(c.IP) + rel)
	c.push16(ret)
}

func (c *CPU) opCALLFar() {
	newIP := c.fetch16()
	newCS := c.fetch16()
	c.push16(c.CS)
	c.push16(c.IP)
	c.CS = newCS
	c.IP = newIP
}

func (c *CPU) opRETNear() { c.IP = c.pop16() }

func (c *CPU) opRETNearImm() {
	imm := c.fetch16()
	c.IP = c.pop16()
	c.SP += imm
}

func (c *CPU) opRETFar() {
	c.IP = c.pop16()
	c.CS = c.pop16()
}

func (c *CPU) opRETFarImm() {
	imm := c.fetch16()
	c.IP = c.pop16()
	c.CS = c.pop16()
	c.SP += imm
}

// callNearIndirect/callFarIndirect and jmpNearIndirect/jmpFarIndirect back
// the Group 5 (FF) near/far CALL and JMP sub-opcodes, reg 2/3 and 4/5
// respectively.
func (c *CPU) callNearIndirect(d decodedRM) {
	target := c.readRM16(d)
	ret := c.IP
	c.IP = target
	c.push16(ret)
}

func (c *CPU) callFarIndirect(d decodedRM) {
	if d.isReg {
		invalidGroupReg(d.reg)
	}
	seg, off := c.rmAddress(d)
	newIP := c.readWord(seg, off)
	newCS := c.readWord(seg, off+2)
	c.push16(c.CS)
	c.push16(c.IP)
	c.CS = newCS
	c.IP = newIP
}

func (c *CPU) jmpNearIndirect(d decodedRM) {
	c.IP = c.readRM16(d)
}

func (c *CPU) jmpFarIndirect(d decodedRM) {
	if d.isReg {
		invalidGroupReg(d.reg)
	}
	seg, off := c.rmAddress(d)
	c.IP = c.readWord(seg, off)
	c.CS = c.readWord(seg, off+2)
}

func (c *CPU) opINT3() { c.dispatchInterrupt(3) }

func (c *CPU) opINTImm() {
	v := c.fetch8()
	c.dispatchInterrupt(v)
}

func (c *CPU) opINTO() {
	if c.OF() {
		c.dispatchInterrupt(4)
	}
}

// opHLT retires with no state effect: this core has no asynchronous
// interrupt source to wake a halted CPU, so an architectural halt would
// wedge the run.
func (c *CPU) opHLT() {}

func (c *CPU) opCLC() { c.setFlag(FlagCF, false) }
func (c *CPU) opSTC() { c.setFlag(FlagCF, true) }
func (c *CPU) opCMC() { c.setFlag(FlagCF, !c.CF()) }
func (c *CPU) opCLD() { c.setFlag(FlagDF, false) }
func (c *CPU) opSTD() { c.setFlag(FlagDF, true) }
func (c *CPU) opCLI() { c.setFlag(FlagIF, false) }
func (c *CPU) opSTI() { c.setFlag(FlagIF, true) }

func (c *CPU) opNOP()  {}
func (c *CPU) opWAIT() {}
