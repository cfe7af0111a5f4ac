// arith.go - ALU family (ADD/OR/ADC/SBB/AND/SUB/XOR/CMP), INC/DEC, MUL/IMUL/
// DIV/IDIV, sign extension and BCD adjustment
//
// The eight two-operand ALU operations share one encoding shape per reg
// index (0x00+opIdx*8 .. 0x05+opIdx*8); aluOp8/16 centralise their flag and
// result computation so the opcode handlers and the Group 1 (80/81/83)
// sub-dispatch in grp.go both call the same code.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package cpu

// ALU operation selectors, in ModR/M reg-field order (also Group 1's order).
const (
	aluADD = 0
	aluOR  = 1
	aluADC = 2
	aluSBB = 3
	aluAND = 4
	aluSUB = 5
	aluXOR = 6
	aluCMP = 7
)

// aluOp8 performs the selected operation over two 8-bit operands, updating
// flags, and returns the result (CMP's result is discarded by the caller).
func (c *CPU) aluOp8(op byte, dst, src byte) byte {
	switch op {
	case aluADD:
		r := uint16(dst) + uint16(src)
		c.setFlagsArith8(r, dst, src, false)
		return byte(r)
	case aluADC:
		cin := uint16(0)
		if c.CF() {
			cin = 1
		}
		r := uint16(dst) + uint16(src) + cin
		c.setFlagsArith8(r, dst, src, false)
		return byte(r)
	case aluSUB, aluCMP:
		r := uint16(dst) - uint16(src)
		c.setFlagsArith8(r&0x1FF, dst, src, true)
		return byte(r)
	case aluSBB:
		bin := uint16(0)
		if c.CF() {
			bin = 1
		}
		r := uint16(dst) - uint16(src) - bin
		c.setFlagsArith8(r&0x1FF, dst, src, true)
		return byte(r)
	case aluAND:
		r := dst & src
		c.setFlagsLogic8(r)
		return r
	case aluOR:
		r := dst | src
		c.setFlagsLogic8(r)
		return r
	default: // aluXOR
		r := dst ^ src
		c.setFlagsLogic8(r)
		return r
	}
}

func (c *CPU) aluOp16(op byte, dst, src uint16) uint16 {
	switch op {
	case aluADD:
		r := uint32(dst) + uint32(src)
		c.setFlagsArith16(r, dst, src, false)
		return uint16(r)
	case aluADC:
		cin := uint32(0)
		if c.CF() {
			cin = 1
		}
		r := uint32(dst) + uint32(src) + cin
		c.setFlagsArith16(r, dst, src, false)
		return uint16(r)
	case aluSUB, aluCMP:
		r := uint32(dst) - uint32(src)
		c.setFlagsArith16(r&0x1FFFF, dst, src, true)
		return uint16(r)
	case aluSBB:
		bin := uint32(0)
		if c.CF() {
			bin = 1
		}
		r := uint32(dst) - uint32(src) - bin
		c.setFlagsArith16(r&0x1FFFF, dst, src, true)
		return uint16(r)
	case aluAND:
		r := dst & src
		c.setFlagsLogic16(r)
		return r
	case aluOR:
		r := dst | src
		c.setFlagsLogic16(r)
		return r
	default: // aluXOR
		r := dst ^ src
		c.setFlagsLogic16(r)
		return r
	}
}

// aluEbGb/aluEvGv/aluGbEb/aluGvEv/aluALIb/aluAXIv are the six encoding-shape handlers shared by all eight
// ALU ops; dispatch.go binds one closure per (op, shape) pair.

func (c *CPU) aluEbGb(op byte) {
	d := parseModRM(c)
	src := c.reg8(d.reg)
	dst := c.readRM8(d)
	r := c.aluOp8(op, dst, src)
	if op != aluCMP {
		c.writeRM8(d, r)
	}
}

func (c *CPU) aluEvGv(op byte) {
	d := parseModRM(c)
	src := c.reg16(d.reg)
	dst := c.readRM16(d)
	r := c.aluOp16(op, dst, src)
	if op != aluCMP {
		c.writeRM16(d, r)
	}
}

func (c *CPU) aluGbEb(op byte) {
	d := parseModRM(c)
	src := c.readRM8(d)
	dst := c.reg8(d.reg)
	r := c.aluOp8(op, dst, src)
	if op != aluCMP {
		c.setReg8(d.reg, r)
	}
}

func (c *CPU) aluGvEv(op byte) {
	d := parseModRM(c)
	src := c.readRM16(d)
	dst := c.reg16(d.reg)
	r := c.aluOp16(op, dst, src)
	if op != aluCMP {
		c.setReg16(d.reg, r)
	}
}

func (c *CPU) aluALIb(op byte) {
	src := c.fetch8()
	dst := c.AL()
	r := c.aluOp8(op, dst, src)
	if op != aluCMP {
		c.SetAL(r)
	}
}

func (c *CPU) aluAXIv(op byte) {
	src := c.fetch16()
	dst := c.AX
	r := c.aluOp16(op, dst, src)
	if op != aluCMP {
		c.AX = r
	}
}

// ---------------------------------------------------------------------------
// INC/DEC (0x40-0x4F single-byte reg forms, and Group 5/Group 3 memory forms)
// ---------------------------------------------------------------------------

func (c *CPU) incReg16(idx byte) {
	v := c.reg16(idx)
	r := uint32(v) + 1
	c.setFlagsIncDec16(r, v, 1, false)
	c.setReg16(idx, uint16(r))
}

func (c *CPU) decReg16(idx byte) {
	v := c.reg16(idx)
	r := uint32(v) - 1
	c.setFlagsIncDec16(r&0x1FFFF, v, 1, true)
	c.setReg16(idx, uint16(r))
}

func (c *CPU) incRM8(d decodedRM) {
	v := c.readRM8(d)
	r := uint16(v) + 1
	c.setFlagsIncDec8(r, v, 1, false)
	c.writeRM8(d, byte(r))
}

func (c *CPU) decRM8(d decodedRM) {
	v := c.readRM8(d)
	r := uint16(v) - 1
	c.setFlagsIncDec8(r&0x1FF, v, 1, true)
	c.writeRM8(d, byte(r))
}

func (c *CPU) incRM16(d decodedRM) {
	v := c.readRM16(d)
	r := uint32(v) + 1
	c.setFlagsIncDec16(r, v, 1, false)
	c.writeRM16(d, uint16(r))
}

func (c *CPU) decRM16(d decodedRM) {
	v := c.readRM16(d)
	r := uint32(v) - 1
	c.setFlagsIncDec16(r&0x1FFFF, v, 1, true)
	c.writeRM16(d, uint16(r))
}

func (c *CPU) negRM8(d decodedRM) {
	v := c.readRM8(d)
	r := uint16(0) - uint16(v)
	c.setFlagsArith8(r&0x1FF, 0, v, true)
	c.setFlag(FlagCF, v != 0)
	c.writeRM8(d, byte(r))
}

func (c *CPU) negRM16(d decodedRM) {
	v := c.readRM16(d)
	r := uint32(0) - uint32(v)
	c.setFlagsArith16(r&0x1FFFF, 0, v, true)
	c.setFlag(FlagCF, v != 0)
	c.writeRM16(d, uint16(r))
}

// ---------------------------------------------------------------------------
// MUL/IMUL/DIV/IDIV (Group 3, reg field 4-7)
// ---------------------------------------------------------------------------

func (c *CPU) mulRM8(d decodedRM) {
	src := c.readRM8(d)
	r := uint16(c.AL()) * uint16(src)
	c.AX = r
	hi := r>>8 != 0
	c.setFlag(FlagCF, hi)
	c.setFlag(FlagOF, hi)
}

func (c *CPU) mulRM16(d decodedRM) {
	src := c.readRM16(d)
	r := uint32(c.AX) * uint32(src)
	c.AX = uint16(r)
	c.DX = uint16(r >> 16)
	hi := c.DX != 0
	c.setFlag(FlagCF, hi)
	c.setFlag(FlagOF, hi)
}

func (c *CPU) imulRM8(d decodedRM) {
	src := int8(c.readRM8(d))
	r := int16(int8(c.AL())) * int16(src)
	c.AX = uint16(r)
	fits := r == int16(int8(byte(r)))
	c.setFlag(FlagCF, !fits)
	c.setFlag(FlagOF, !fits)
}

func (c *CPU) imulRM16(d decodedRM) {
	src := int16(c.readRM16(d))
	r := int32(int16(c.AX)) * int32(src)
	c.AX = uint16(r)
	c.DX = uint16(r >> 16)
	fits := r == int32(int16(uint16(r)))
	c.setFlag(FlagCF, !fits)
	c.setFlag(FlagOF, !fits)
}

// divRM8 implements unsigned 8-bit division: AX / src -> AL quotient, AH
// remainder. A zero divisor or an overflowing quotient raises the
// architectural divide exception, routed through the normal
// interrupt-vector-0 path rather than failing decode.
func (c *CPU) divRM8(d decodedRM) bool {
	src := c.readRM8(d)
	if src == 0 {
		return false
	}
	dividend := c.AX
	q := dividend / uint16(src)
	if q > 0xFF {
		return false
	}
	r := dividend % uint16(src)
	c.SetAL(byte(q))
	c.SetAH(byte(r))
	return true
}

func (c *CPU) idivRM8(d decodedRM) bool {
	src := int8(c.readRM8(d))
	if src == 0 {
		return false
	}
	dividend := int16(c.AX)
	q := dividend / int16(src)
	if q > 127 || q < -128 {
		return false
	}
	r := dividend % int16(src)
	c.SetAL(byte(q))
	c.SetAH(byte(r))
	return true
}

func (c *CPU) divRM16(d decodedRM) bool {
	src := c.readRM16(d)
	if src == 0 {
		return false
	}
	dividend := uint32(c.DX)<<16 | uint32(c.AX)
	q := dividend / uint32(src)
	if q > 0xFFFF {
		return false
	}
	r := dividend % uint32(src)
	c.AX = uint16(q)
	c.DX = uint16(r)
	return true
}

func (c *CPU) idivRM16(d decodedRM) bool {
	src := int16(c.readRM16(d))
	if src == 0 {
		return false
	}
	dividend := int32(c.DX)<<16 | int32(c.AX)
	q := dividend / int32(src)
	if q > 32767 || q < -32768 {
		return false
	}
	r := dividend % int32(src)
	c.AX = uint16(q)
	c.DX = uint16(r)
	return true
}

// ---------------------------------------------------------------------------
// Sign/zero extension and BCD adjustment
// ---------------------------------------------------------------------------

func (c *CPU) opCBW() { c.AX = uint16(int16(int8(c.AL()))) }
func (c *CPU) opCWD() {
	if c.AX&0x8000 != 0 {
		c.DX = 0xFFFF
	} else {
		c.DX = 0
	}
}

func (c *CPU) opDAA() {
	al := c.AL()
	oldCF := c.CF()
	oldAF := c.AF()
	cf := false
	if al&0x0F > 9 || oldAF {
		carry := al > 0xF9
		al += 6
		c.setFlag(FlagAF, true)
		cf = oldCF || carry
	} else {
		c.setFlag(FlagAF, false)
	}
	if al&0xF0 > 0x90 || oldCF {
		al += 0x60
		cf = true
	}
	c.setFlag(FlagCF, cf)
	c.SetAL(al)
	c.setFlag(FlagZF, al == 0)
	c.setFlag(FlagSF, al&0x80 != 0)
	c.setFlag(FlagPF, parity(al))
}

func (c *CPU) opDAS() {
	al := c.AL()
	oldCF := c.CF()
	oldAF := c.AF()
	cf := false
	if al&0x0F > 9 || oldAF {
		borrow := al < 6
		al -= 6
		c.setFlag(FlagAF, true)
		cf = oldCF || borrow
	} else {
		c.setFlag(FlagAF, false)
	}
	if al&0xF0 > 0x90 || oldCF || al > 0x99 {
		al -= 0x60
		cf = true
	}
	c.setFlag(FlagCF, cf)
	c.SetAL(al)
	c.setFlag(FlagZF, al == 0)
	c.setFlag(FlagSF, al&0x80 != 0)
	c.setFlag(FlagPF, parity(al))
}

func (c *CPU) opAAA() {
	if c.AL()&0x0F > 9 || c.AF() {
		c.SetAL(c.AL() + 6)
		c.SetAH(c.AH() + 1)
		c.setFlag(FlagAF, true)
		c.setFlag(FlagCF, true)
	} else {
		c.setFlag(FlagAF, false)
		c.setFlag(FlagCF, false)
	}
	c.SetAL(c.AL() & 0x0F)
}

func (c *CPU) opAAS() {
	if c.AL()&0x0F > 9 || c.AF() {
		c.SetAL(c.AL() - 6)
		c.SetAH(c.AH() - 1)
		c.setFlag(FlagAF, true)
		c.setFlag(FlagCF, true)
	} else {
		c.setFlag(FlagAF, false)
		c.setFlag(FlagCF, false)
	}
	c.SetAL(c.AL() & 0x0F)
}

// opAAM divides AL by an immediate (10 in the canonical encoding) and packs
// the quotient/remainder into AH:AL. A zero operand raises the divide
// exception like DIV/IDIV.
func (c *CPU) opAAM(base byte) bool {
	if base == 0 {
		return false
	}
	al := c.AL()
	c.SetAH(al / base)
	c.SetAL(al % base)
	c.setFlag(FlagZF, c.AL() == 0)
	c.setFlag(FlagSF, c.AL()&0x80 != 0)
	c.setFlag(FlagPF, parity(c.AL()))
	return true
}

func (c *CPU) opAAMFetch() {
	base := c.fetch8()
	if !c.opAAM(base) {
		c.dispatchInterrupt(0)
	}
}

func (c *CPU) opAADFetch() {
	base := c.fetch8()
	c.opAAD(base)
}

func (c *CPU) opAAD(base byte) {
	al := c.AL()
	ah := c.AH()
	r := byte(ah*base + al)
	c.SetAL(r)
	c.SetAH(0)
	c.setFlag(FlagZF, r == 0)
	c.setFlag(FlagSF, r&0x80 != 0)
	c.setFlag(FlagPF, parity(r))
}
