// int1a.go - INT 1Ah time-of-day services
//
// The PIT channel 0 counter stands in for the real BIOS tick counter; AH=00h
// reports it as CX:DX and AH=01h lets a program set it back, matching the
// get/set pair real DOS programs probe for a wall-clock source.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package bios

import "github.com/zaynotley/x86dosemu/cpu"

func (b *BIOS) int1a(c *cpu.CPU) bool {
	switch c.AH() {
	case 0x00:
		ticks := b.Bus.Ticks()
		c.CX = uint16(ticks >> 16)
		c.DX = uint16(ticks)
		c.SetAL(0) // midnight-passed flag, never set by this core
	case 0x01:
		ticks := uint32(c.CX)<<16 | uint32(c.DX)
		b.Bus.SetTicks(ticks)
	}
	return true
}
