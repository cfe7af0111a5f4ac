// com.go - DOS .COM program loading
//
// A .COM image is a flat 16-bit blob loaded at offset 0x100 of a single
// segment, with the 256-byte Program Segment Prefix occupying the first
// 0x100 bytes. DOSBox's fixed initial register values are reproduced
// bit-for-bit here rather than derived, since test fixtures pin them.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package loader

import (
	"fmt"

	"github.com/zaynotley/x86dosemu/cpu"
)

// comLoadSegment is the DOSBox-convention segment a .COM image is placed
// into: CS, DS, ES and SS all start here.
const comLoadSegment = 0x085F

// comEntryOffset is where .COM execution begins, after the 256-byte PSP.
const comEntryOffset = 0x0100

// MaxComSize is the largest image that fits between the PSP and the top of
// a 64 KiB segment.
const MaxComSize = 0x10000 - comEntryOffset

// LoadCOM copies image into c's address space at comLoadSegment:0x0100 and
// seeds every register to the DOSBox .COM convention.
func LoadCOM(c *cpu.CPU, image []byte) error {
	if len(image) > MaxComSize {
		return fmt.Errorf("loader: .COM image is %d bytes, exceeds %d byte limit", len(image), MaxComSize)
	}

	for i, b := range image {
		cpu.WriteByteAt(&c.Mem, comLoadSegment, comEntryOffset+uint16(i), b)
	}

	writePSP(c, comLoadSegment)

	c.CS, c.DS, c.ES, c.SS = comLoadSegment, comLoadSegment, comLoadSegment, comLoadSegment
	c.SP = 0xFFFE
	c.BP = 0x091C
	c.CX = 0x00FF
	c.DX = comLoadSegment
	c.SI = comEntryOffset
	c.DI = 0xFFFE
	c.IP = comEntryOffset
	c.AX = 0
	c.BX = 0
	return nil
}

// writePSP lays down a minimal Program Segment Prefix: an INT 20h at offset
// 0 (the conventional fallback a .COM can RET into) and an empty,
// CR-terminated command tail, enough for programs that don't inspect the rest of the block.
func writePSP(c *cpu.CPU, seg uint16) {
	cpu.WriteByteAt(&c.Mem, seg, 0x00, 0xCD) // INT 20h
	cpu.WriteByteAt(&c.Mem, seg, 0x01, 0x20)
	cpu.WriteByteAt(&c.Mem, seg, 0x80, 0x00) // empty command tail length
	cpu.WriteByteAt(&c.Mem, seg, 0x81, 0x0D)
}
