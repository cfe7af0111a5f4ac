// cpu.go - Intel 8086/80186 real-mode CPU core (with early 80386 shift/rotate extras)
//
// Implements the register file, flags word, segmented memory access and the
// fetch-decode-execute loop for a DOS-targeted x86 emulator core. Operand
// size is always 16 bits (8086/80186 real mode); the 0x66/0x67 size
// prefixes are accepted and ignored rather than switching to 32-bit forms.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package cpu

import "sync/atomic"

// Bus is the narrow external-collaborator surface the executor uses for
// port I/O. Memory is owned by the CPU's own Memory value, not the bus.
type Bus interface {
	In8(port uint16) byte
	Out8(port uint16, v byte)
	In16(port uint16) uint16
	Out16(port uint16, v uint16)
}

// InterruptHandler traps a software INT before it falls through to the
// in-memory interrupt vector table. Returning false lets the CPU perform
// the default IRET-vectored dispatch instead.
type InterruptHandler func(c *CPU) bool

// Segment register indices, matching the ModR/M Sreg encoding order.
const (
	SegES = 0
	SegCS = 1
	SegSS = 2
	SegDS = 3
	SegFS = 4
	SegGS = 5
)

// Flags word bit positions (architectural FLAGS layout).
const (
	FlagCF uint16 = 1 << 0
	FlagPF uint16 = 1 << 2
	FlagAF uint16 = 1 << 4
	FlagZF uint16 = 1 << 6
	FlagSF uint16 = 1 << 7
	FlagTF uint16 = 1 << 8
	FlagIF uint16 = 1 << 9
	FlagDF uint16 = 1 << 10
	FlagOF uint16 = 1 << 11
)

// flagsReserved1 are the FLAGS bits the 8086 always reads back as 1.
const flagsReserved1 uint16 = 0xF002

// CPU is the architectural state of one 8086/80186-class real-mode core.
type CPU struct {
	AX, BX, CX, DX uint16
	SI, DI, BP, SP uint16
	IP             uint16

	CS, DS, ES, SS, FS, GS uint16

	Flags uint16

	Mem Memory
	bus Bus

	// Halted is set by Terminate/TerminateFatal when a program ends; the
	// execution loop stops stepping once it is observed.
	Halted bool
	// fatalError is the sticky flag set by fatal decode errors and INT 20h.
	fatalError atomic.Bool

	Cycles uint64

	// Prefix state, reset at the start of every Step.
	segOverride int  // -1 = none, else SegES..SegGS
	repMode     int  // 0 = none, 1 = REP/REPE, 2 = REPNE
	opSize32    bool // 0x66 seen, accepted and ignored
	addrSize32  bool // 0x67 seen, accepted and ignored
	lock        bool

	baseOps [256]func(*CPU)
	ext0F   [256]func(*CPU)

	trapHandlers [256]InterruptHandler

	// StrictUnimplemented selects strict-mode behavior for an unimplemented
	// opcode: fatal instead of log-and-advance. No opcode in this dispatch
	// table currently takes the unimplemented path (everything undecodable is
	// ErrUnknownOpcode), so this field is set from --strict but has nothing
	// to gate yet.
	StrictUnimplemented bool
}

// New creates a CPU wired to bus for port I/O, with a fresh 1 MiB address space.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.Mem = NewMemory()
	c.initBaseOps()
	c.initExt0F()
	c.Reset()
	return c
}

// Reset restores power-on architectural state. Memory contents are untouched;
// callers load a program and then set CS/IP/SS/SP per the loader contract.
func (c *CPU) Reset() {
	c.AX, c.BX, c.CX, c.DX = 0, 0, 0, 0
	c.SI, c.DI, c.BP, c.SP = 0, 0, 0, 0
	c.IP = 0
	c.CS, c.DS, c.ES, c.SS, c.FS, c.GS = 0, 0, 0, 0, 0, 0
	c.Flags = FlagIF
	c.Halted = false
	c.fatalError.Store(false)
	c.Cycles = 0
	c.segOverride = -1
	c.repMode = 0
	c.opSize32 = false
	c.addrSize32 = false
	c.lock = false
}

// FatalError reports whether a fatal decode error or INT 20h has stopped the core.
func (c *CPU) FatalError() bool {
	return c.fatalError.Load()
}

// Running reports whether the execution loop should keep stepping.
func (c *CPU) Running() bool {
	return !c.Halted && !c.fatalError.Load()
}

// SetInterruptHandler installs a trap for a software interrupt vector. The
// handler runs before the default IVT-walking dispatch; the bios package
// traps vectors 10h, 16h, 1Ah, 20h, 21h and 33h this way.
func (c *CPU) SetInterruptHandler(vector byte, h InterruptHandler) {
	c.trapHandlers[vector] = h
}

// ---------------------------------------------------------------------------
// 8-bit sub-register access (AL/AH/CL/CH/DL/DH/BL/BH)
// ---------------------------------------------------------------------------

func (c *CPU) AL() byte { return byte(c.AX) }
func (c *CPU) AH() byte { return byte(c.AX >> 8) }
func (c *CPU) SetAL(v byte) { c.AX = (c.AX &^ 0xFF) | uint16(v) }
func (c *CPU) SetAH(v byte) { c.AX = (c.AX & 0x00FF) | (uint16(v) << 8) }

func (c *CPU) CL() byte { return byte(c.CX) }
func (c *CPU) CH() byte { return byte(c.CX >> 8) }
func (c *CPU) SetCL(v byte) { c.CX = (c.CX &^ 0xFF) | uint16(v) }
func (c *CPU) SetCH(v byte) { c.CX = (c.CX & 0x00FF) | (uint16(v) << 8) }

func (c *CPU) DL() byte { return byte(c.DX) }
func (c *CPU) DH() byte { return byte(c.DX >> 8) }
func (c *CPU) SetDL(v byte) { c.DX = (c.DX &^ 0xFF) | uint16(v) }
func (c *CPU) SetDH(v byte) { c.DX = (c.DX & 0x00FF) | (uint16(v) << 8) }

func (c *CPU) BL() byte { return byte(c.BX) }
func (c *CPU) BH() byte { return byte(c.BX >> 8) }
func (c *CPU) SetBL(v byte) { c.BX = (c.BX &^ 0xFF) | uint16(v) }
func (c *CPU) SetBH(v byte) { c.BX = (c.BX & 0x00FF) | (uint16(v) << 8) }

// reg8 returns an 8-bit register by ModR/M encoding order: AL,CL,DL,BL,AH,CH,DH,BH.
func (c *CPU) reg8(idx byte) byte {
	switch idx & 7 {
	case 0:
		return c.AL()
	case 1:
		return c.CL()
	case 2:
		return c.DL()
	case 3:
		return c.BL()
	case 4:
		return c.AH()
	case 5:
		return c.CH()
	case 6:
		return c.DH()
	default:
		return c.BH()
	}
}

func (c *CPU) setReg8(idx byte, v byte) {
	switch idx & 7 {
	case 0:
		c.SetAL(v)
	case 1:
		c.SetCL(v)
	case 2:
		c.SetDL(v)
	case 3:
		c.SetBL(v)
	case 4:
		c.SetAH(v)
	case 5:
		c.SetCH(v)
	case 6:
		c.SetDH(v)
	default:
		c.SetBH(v)
	}
}

// reg16 returns a 16-bit register by ModR/M encoding order: AX,CX,DX,BX,SP,BP,SI,DI.
func (c *CPU) reg16(idx byte) uint16 {
	switch idx & 7 {
	case 0:
		return c.AX
	case 1:
		return c.CX
	case 2:
		return c.DX
	case 3:
		return c.BX
	case 4:
		return c.SP
	case 5:
		return c.BP
	case 6:
		return c.SI
	default:
		return c.DI
	}
}

func (c *CPU) setReg16(idx byte, v uint16) {
	switch idx & 7 {
	case 0:
		c.AX = v
	case 1:
		c.CX = v
	case 2:
		c.DX = v
	case 3:
		c.BX = v
	case 4:
		c.SP = v
	case 5:
		c.BP = v
	case 6:
		c.SI = v
	default:
		c.DI = v
	}
}

func (c *CPU) seg(idx int) uint16 {
	switch idx {
	case SegES:
		return c.ES
	case SegCS:
		return c.CS
	case SegSS:
		return c.SS
	case SegDS:
		return c.DS
	case SegFS:
		return c.FS
	default:
		return c.GS
	}
}

func (c *CPU) setSeg(idx int, v uint16) {
	switch idx {
	case SegES:
		c.ES = v
	case SegCS:
		c.CS = v
	case SegSS:
		c.SS = v
	case SegDS:
		c.DS = v
	case SegFS:
		c.FS = v
	default:
		c.GS = v
	}
}
