// interrupt.go - interrupt vector table walking and the trap-handler escape
// hatch used by the bios package
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package cpu

// Terminate stops the execution loop cleanly, distinct from a fatal decode
// error. The bios package's INT 21h AH=4Ch handler calls this.
func (c *CPU) Terminate() {
	c.Halted = true
}

// TerminateFatal stops the execution loop and sets the sticky fatalError
// flag alongside it, the same flag the invalid-instruction paths set. The
// bios package's INT 20h handler calls this; INT 21h AH=4Ch uses the plain
// Terminate instead, since a 4Ch exit is an ordinary program end rather
// than an abort.
func (c *CPU) TerminateFatal() {
	c.Halted = true
	c.fatalError.Store(true)
}

// dispatchInterrupt performs a software or hardware interrupt. A registered
// trap handler for vector runs first; if it returns false (or none is
// registered) the default real-mode behavior applies: push FLAGS/CS/IP,
// clear IF and TF, and load CS:IP from the four-byte entry at linear
// vector*4 in the interrupt vector table (segment 0000).
func (c *CPU) dispatchInterrupt(vector byte) {
	if h := c.trapHandlers[vector]; h != nil {
		if h(c) {
			return
		}
	}

	ivtOff := uint16(vector) * 4
	newIP := ReadWord(&c.Mem, 0, ivtOff)
	newCS := ReadWord(&c.Mem, 0, ivtOff+2)

	c.push16(c.packFlags())
	c.push16(c.CS)
	c.push16(c.IP)

	c.setFlag(FlagIF, false)
	c.setFlag(FlagTF, false)

	c.CS = newCS
	c.IP = newIP
}

func (c *CPU) opIRET() {
	c.IP = c.pop16()
	c.CS = c.pop16()
	c.unpackFlags(c.pop16())
}
