// int10.go - INT 10h video services (minimal teletype subset)
//
// No framebuffer exists in this core; the only service implemented with
// real effect is AH=0Eh teletype output, written straight to BIOS.Out. Every
// other function is accepted and returns success so callers probing video
// state don't stall on an unanswered interrupt.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package bios

import "github.com/zaynotley/x86dosemu/cpu"

func (b *BIOS) int10(c *cpu.CPU) bool {
	switch c.AH() {
	case 0x0E:
		if b.Out != nil {
			b.Out.Write([]byte{c.AL()})
		}
	case 0x0F:
		c.SetAH(80) // columns
		c.SetAL(0x03)
	case 0x03:
		c.DX = 0 // row 0, column 0
	}
	return true
}
