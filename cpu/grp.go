// grp.go - Group 1-5 ModR/M-reg sub-dispatch (opcodes 80/81/83, C0-D3, F6/F7,
// FE/FF)
//
// Each group reads the ModR/M byte once, then branches on the reg field.
// A reserved reg encoding panics via invalidGroupReg, which step.go's
// runHandler turns into a *DecodeError{Kind: ErrInvalidGroupReg} - distinct
// from an unknown top-level opcode.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package cpu

// Group 1: arithmetic/logic against an immediate. 0x80 Eb,Ib; 0x81 Ev,Iv;
// 0x83 Ev,Ib (sign-extended to 16 bits).

func (c *CPU) grp1EbIb() {
	d := parseModRM(c)
	imm := c.fetch8()
	dst := c.readRM8(d)
	r := c.aluOp8(d.reg, dst, imm)
	if d.reg != aluCMP {
		c.writeRM8(d, r)
	}
}

func (c *CPU) grp1EvIv() {
	d := parseModRM(c)
	imm := c.fetch16()
	dst := c.readRM16(d)
	r := c.aluOp16(d.reg, dst, imm)
	if d.reg != aluCMP {
		c.writeRM16(d, r)
	}
}

func (c *CPU) grp1EvIb() {
	d := parseModRM(c)
	imm := uint16(int16(int8(c.fetch8())))
	dst := c.readRM16(d)
	r := c.aluOp16(d.reg, dst, imm)
	if d.reg != aluCMP {
		c.writeRM16(d, r)
	}
}

// Group 2: shift/rotate. The reg field selects the operation; the opcode
// selects the count source (immediate, the literal 1, or CL).

func (c *CPU) grp2EbIb() {
	d := parseModRM(c)
	count := c.fetch8()
	c.shiftRM8(d, d.reg, count)
}

func (c *CPU) grp2EvIb() {
	d := parseModRM(c)
	count := c.fetch8()
	c.shiftRM16(d, d.reg, count)
}

func (c *CPU) grp2Eb1() {
	d := parseModRM(c)
	c.shiftRM8(d, d.reg, 1)
}

func (c *CPU) grp2Ev1() {
	d := parseModRM(c)
	c.shiftRM16(d, d.reg, 1)
}

func (c *CPU) grp2EbCL() {
	d := parseModRM(c)
	c.shiftRM8(d, d.reg, c.CL())
}

func (c *CPU) grp2EvCL() {
	d := parseModRM(c)
	c.shiftRM16(d, d.reg, c.CL())
}

// Group 3 (0xF6 Eb, 0xF7 Ev): TEST/NOT/NEG/MUL/IMUL/DIV/IDIV. DIV/IDIV
// raising a divide condition fall through to the normal interrupt-vector-0
// path rather than a decode error.
const (
	grp3TEST = 0
	grp3NOT  = 2
	grp3NEG  = 3
	grp3MUL  = 4
	grp3IMUL = 5
	grp3DIV  = 6
	grp3IDIV = 7
)

func (c *CPU) grp3Eb() {
	d := parseModRM(c)
	switch d.reg {
	case grp3TEST, 1:
		imm := c.fetch8()
		c.aluOp8(aluAND, c.readRM8(d), imm)
	case grp3NOT:
		c.notRM8(d)
	case grp3NEG:
		c.negRM8(d)
	case grp3MUL:
		c.mulRM8(d)
	case grp3IMUL:
		c.imulRM8(d)
	case grp3DIV:
		if !c.divRM8(d) {
			c.dispatchInterrupt(0)
		}
	case grp3IDIV:
		if !c.idivRM8(d) {
			c.dispatchInterrupt(0)
		}
	}
}

func (c *CPU) grp3Ev() {
	d := parseModRM(c)
	switch d.reg {
	case grp3TEST, 1:
		imm := c.fetch16()
		c.aluOp16(aluAND, c.readRM16(d), imm)
	case grp3NOT:
		c.notRM16(d)
	case grp3NEG:
		c.negRM16(d)
	case grp3MUL:
		c.mulRM16(d)
	case grp3IMUL:
		c.imulRM16(d)
	case grp3DIV:
		if !c.divRM16(d) {
			c.dispatchInterrupt(0)
		}
	case grp3IDIV:
		if !c.idivRM16(d) {
			c.dispatchInterrupt(0)
		}
	}
}

// Group 4 (0xFE): byte INC/DEC only, reg 2-7 reserved.
func (c *CPU) grp4Eb() {
	d := parseModRM(c)
	switch d.reg {
	case 0:
		c.incRM8(d)
	case 1:
		c.decRM8(d)
	default:
		invalidGroupReg(d.reg)
	}
}

// Group 1a (0x8F): POP Ev. Only reg 0 is defined.
func (c *CPU) grp1aEv() {
	d := parseModRM(c)
	if d.reg != 0 {
		invalidGroupReg(d.reg)
	}
	c.writeRM16(d, c.pop16())
}

// Group 11 (0xC6/0xC7): MOV Eb/Ev,Ib/Iv. Only reg 0 is defined.
func (c *CPU) grp11Eb() {
	d := parseModRM(c)
	if d.reg != 0 {
		invalidGroupReg(d.reg)
	}
	c.writeRM8(d, c.fetch8())
}

func (c *CPU) grp11Ev() {
	d := parseModRM(c)
	if d.reg != 0 {
		invalidGroupReg(d.reg)
	}
	c.writeRM16(d, c.fetch16())
}

// Group 5 (0xFF): word INC/DEC, indirect CALL/JMP (near and far) and PUSH.
func (c *CPU) grp5Ev() {
	d := parseModRM(c)
	switch d.reg {
	case 0:
		c.incRM16(d)
	case 1:
		c.decRM16(d)
	case 2:
		c.callNearIndirect(d)
	case 3:
		c.callFarIndirect(d)
	case 4:
		c.jmpNearIndirect(d)
	case 5:
		c.jmpFarIndirect(d)
	case 6:
		c.push16(c.readRM16(d))
	default:
		invalidGroupReg(d.reg)
	}
}
