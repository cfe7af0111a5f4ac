// modrm.go - ModR/M byte parsing and 16-bit effective-address computation
//
// Shared between the pure decoder (decode.go) and the executor (the *CPU
// instruction handlers):
// both consume a ModR/M byte and any displacement the same way. Only the
// final step - turning a decoded addressing mode into a concrete 16-bit
// offset - needs live register values, so only the executor does that part.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package cpu

// fetcher is satisfied by both *CPU (reading live CS:IP) and *cursor (the
// decoder's stateless read position), letting ModR/M parsing run unmodified
// in either context.
type fetcher interface {
	fetch8() byte
	fetch16() uint16
}

// rmForm names the eight mod!=11 addressing forms plus the mod=00,rm=110
// direct-address special case. Values match the ModR/M rm field except
// FormDirect, which parseModRM substitutes for rm=110 when mod=00.
type rmForm byte

const (
	FormBxSi rmForm = iota
	FormBxDi
	FormBpSi
	FormBpDi
	FormSi
	FormDi
	FormBp
	FormBx
	FormDirect // mod=00, rm=110: [disp16], no base register
)

// dispKind records what displacement (if any) followed the ModR/M byte.
type dispKind byte

const (
	dispNone dispKind = iota
	dispByte
	dispWord // also used for FormDirect's disp16
)

// decodedRM is the shared, register-value-independent result of parsing a
// ModR/M byte and its displacement.
type decodedRM struct {
	mod, reg, rm byte
	isReg        bool // mod == 11: rm names a register, not memory
	form         rmForm
	disp         uint16
	dispIs       dispKind
}

// parseModRM reads the ModR/M byte (and any displacement) from f, the same
// logic path for the decoder's cursor and the live executor.
func parseModRM(f fetcher) decodedRM {
	b := f.fetch8()
	mod := b >> 6 & 3
	reg := b >> 3 & 7
	rm := b & 7

	d := decodedRM{mod: mod, reg: reg, rm: rm}
	if mod == 3 {
		d.isReg = true
		return d
	}

	d.form = rmForm(rm)
	if mod == 0 && rm == 6 {
		d.form = FormDirect
		d.disp = f.fetch16()
		d.dispIs = dispWord
		return d
	}

	switch mod {
	case 1:
		d.disp = uint16(int16(int8(f.fetch8())))
		d.dispIs = dispByte
	case 2:
		d.disp = f.fetch16()
		d.dispIs = dispWord
	}
	return d
}

// defaultSegment returns the addressing-mode default segment: BP-based
// effective addresses default to SS, everything else to DS.
func (d decodedRM) defaultSegment() int {
	switch d.form {
	case FormBpSi, FormBpDi, FormBp:
		return SegSS
	default:
		return SegDS
	}
}

// resolveOffset computes the live 16-bit effective address offset for a
// memory operand, using the executor's current register values. Only
// called when d.isReg is false.
func (c *CPU) resolveOffset(d decodedRM) uint16 {
	var base uint16
	switch d.form {
	case FormBxSi:
		base = c.BX + c.SI
	case FormBxDi:
		base = c.BX + c.DI
	case FormBpSi:
		base = c.BP + c.SI
	case FormBpDi:
		base = c.BP + c.DI
	case FormSi:
		base = c.SI
	case FormDi:
		base = c.DI
	case FormBp:
		base = c.BP
	case FormBx:
		base = c.BX
	case FormDirect:
		base = 0
	}
	switch d.dispIs {
	case dispByte:
		base = uint16(int16(base) + int16(d.disp))
	case dispWord:
		base += d.disp
	}
	return base
}

// modRMSeg returns the segment an operand's EA resolves against, honoring a
// prefix override over the addressing-mode default.
func (c *CPU) modRMSeg(d decodedRM) int {
	if c.segOverride >= 0 {
		return c.segOverride
	}
	return d.defaultSegment()
}

// ---------------------------------------------------------------------------
// Executor-facing read/write helpers built on parseModRM + resolveOffset
// ---------------------------------------------------------------------------

func (c *CPU) readRM8(d decodedRM) byte {
	if d.isReg {
		return c.reg8(d.rm)
	}
	return c.readByte(c.modRMSeg(d), c.resolveOffset(d))
}

func (c *CPU) writeRM8(d decodedRM, v byte) {
	if d.isReg {
		c.setReg8(d.rm, v)
		return
	}
	c.writeByte(c.modRMSeg(d), c.resolveOffset(d), v)
}

func (c *CPU) readRM16(d decodedRM) uint16 {
	if d.isReg {
		return c.reg16(d.rm)
	}
	return c.readWord(c.modRMSeg(d), c.resolveOffset(d))
}

func (c *CPU) writeRM16(d decodedRM, v uint16) {
	if d.isReg {
		c.setReg16(d.rm, v)
		return
	}
	c.writeWord(c.modRMSeg(d), c.resolveOffset(d), v)
}

// rmAddress returns (segment, offset) for a memory-form ModR/M - used by
// LEA (offset only), LDS/LES (full pointer) and string-adjacent instructions.
func (c *CPU) rmAddress(d decodedRM) (int, uint16) {
	return c.modRMSeg(d), c.resolveOffset(d)
}
