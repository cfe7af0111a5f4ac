// int16.go - INT 16h keyboard services
//
// AH=00h blocks for the next key and consumes it; AH=01h peeks without
// consuming and reports via ZF whether one is available. Both share a
// one-key pending buffer so a peek doesn't lose the key a following read
// expects.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package bios

import "github.com/zaynotley/x86dosemu/cpu"

func (b *BIOS) int16(c *cpu.CPU) bool {
	switch c.AH() {
	case 0x00, 0x10:
		scan, ascii, ok := b.nextKey()
		if !ok {
			scan, ascii = 0, 0
		}
		c.SetAH(scan)
		c.SetAL(ascii)
	case 0x01, 0x11:
		scan, ascii, ok := b.peekKey()
		if !ok {
			c.SetZF(true)
			return true
		}
		c.SetZF(false)
		c.SetAH(scan)
		c.SetAL(ascii)
	}
	return true
}

func (b *BIOS) peekKey() (scan, ascii byte, ok bool) {
	if b.havePending {
		return b.pendingScan, b.pendingAscii, true
	}
	if b.Kbd == nil || !b.Kbd.KeyAvailable() {
		return 0, 0, false
	}
	scan, ascii, ok = b.Kbd.ReadKey()
	if ok {
		b.pendingScan, b.pendingAscii, b.havePending = scan, ascii, true
	}
	return scan, ascii, ok
}

func (b *BIOS) nextKey() (scan, ascii byte, ok bool) {
	if b.havePending {
		b.havePending = false
		return b.pendingScan, b.pendingAscii, true
	}
	if b.Kbd == nil {
		return 0, 0, false
	}
	return b.Kbd.ReadKey()
}
