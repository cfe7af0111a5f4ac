// int33.go - INT 33h mouse services (minimal stub)
//
// No pointing device exists in this core; AX=0003h reports the origin with
// no buttons held rather than leaving the caller's registers untouched,
// which is enough for programs that only check button state before
// falling back to keyboard input.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package bios

import "github.com/zaynotley/x86dosemu/cpu"

func (b *BIOS) int33(c *cpu.CPU) bool {
	switch c.AX {
	case 0x0003:
		// RETURN POSITION AND BUTTON STATUS
		c.BX = 0 // no buttons down
		c.CX = 0 // column
		c.DX = 0 // row
	}
	return true
}
