// int20_21.go - INT 20h/21h program-termination and character DOS services
//
// INT 20h and INT 21h AH=4Ch both end the program by never returning to the
// caller, but spec section 5 names INT 20h specifically as one of the two
// paths (with invalid-instruction decoding) that sets the sticky fatal_error
// flag; AH=4Ch only halts. Everything else implemented here is the small
// slice of AH=01h/02h/08h/09h character I/O that a DOS .COM test program
// actually exercises.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package bios

import "github.com/zaynotley/x86dosemu/cpu"

func (b *BIOS) int20(c *cpu.CPU) bool {
	c.TerminateFatal()
	return true
}

func (b *BIOS) int21(c *cpu.CPU) bool {
	switch c.AH() {
	case 0x01: // CHARACTER INPUT WITH ECHO
		ch := b.readChar(c)
		c.SetAL(ch)
		if b.Out != nil {
			b.Out.Write([]byte{ch})
		}
	case 0x02: // CHARACTER OUTPUT
		if b.Out != nil {
			b.Out.Write([]byte{c.DL()})
		}
	case 0x08: // CHARACTER INPUT WITHOUT ECHO
		c.SetAL(b.readChar(c))
	case 0x09: // STRING OUTPUT, $-terminated, DS:DX
		if b.Out != nil {
			for off := c.DX; ; off++ {
				ch := cpu.ReadByteAt(&c.Mem, c.DS, off)
				if ch == '$' {
					break
				}
				b.Out.Write([]byte{ch})
			}
		}
	case 0x4C: // TERMINATE WITH RETURN CODE
		c.Terminate()
	}
	return true
}

// readChar blocks on the attached keyboard, falling back to 0 when headless.
func (b *BIOS) readChar(c *cpu.CPU) byte {
	if b.Kbd == nil {
		return 0
	}
	_, ascii, ok := b.Kbd.ReadKey()
	if !ok {
		return 0
	}
	return ascii
}
