// bios.go - BIOS/DOS interrupt trap wiring
//
// Each trapped vector is installed with cpu.SetInterruptHandler so it runs
// ahead of the default interrupt-vector-table walk. The set of vectors DOS
// programs call directly - 10h, 16h, 1Ah, 20h, 21h, 33h - is handled here;
// everything else falls through to the in-memory IVT.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package bios

import (
	"io"

	"github.com/zaynotley/x86dosemu/cpu"
	"github.com/zaynotley/x86dosemu/devices"
)

// Keyboard is the narrow surface bios needs from a host keyboard source for
// INT 16h; the cmd/x86dosemu entrypoint backs this with x/term raw input.
type Keyboard interface {
	// ReadKey blocks for the next keystroke and returns its (scan code, ASCII)
	// pair in the BIOS AH:AL convention. ok is false if no host keyboard is
	// attached (headless test runs), in which case INT 16h reports empty.
	ReadKey() (scan, ascii byte, ok bool)
	// KeyAvailable reports whether ReadKey would return immediately.
	KeyAvailable() bool
}

// BIOS holds the state the trapped interrupts need: the PIT-backed device
// bus for INT 1Ah's clock, an output sink for INT 21h character services,
// and an optional keyboard source for INT 16h.
type BIOS struct {
	Bus *devices.Bus
	Out io.Writer
	Kbd Keyboard

	// havePending buffers a peeked-but-not-consumed key so INT 16h AH=01h
	// (check, non-destructive) and AH=00h (read, destructive) agree on which
	// key comes next.
	havePending         bool
	pendingScan, pendingAscii byte
}

// New creates a BIOS collaborator set; kbd may be nil for headless runs.
func New(bus *devices.Bus, out io.Writer, kbd Keyboard) *BIOS {
	return &BIOS{Bus: bus, Out: out, Kbd: kbd}
}

// Install registers every trapped vector on c.
func (b *BIOS) Install(c *cpu.CPU) {
	c.SetInterruptHandler(0x10, b.int10)
	c.SetInterruptHandler(0x16, b.int16)
	c.SetInterruptHandler(0x1A, b.int1a)
	c.SetInterruptHandler(0x20, b.int20)
	c.SetInterruptHandler(0x21, b.int21)
	c.SetInterruptHandler(0x33, b.int33)
}
