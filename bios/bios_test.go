// bios_test.go - trapped BIOS/DOS interrupt vector coverage
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package bios

import (
	"bytes"
	"testing"

	"github.com/zaynotley/x86dosemu/cpu"
	"github.com/zaynotley/x86dosemu/devices"
)

// fakeKeyboard is a small in-memory stand-in for a host keyboard, queued
// with scan/ascii pairs in order.
type fakeKeyboard struct {
	keys [][2]byte
}

func (f *fakeKeyboard) KeyAvailable() bool { return len(f.keys) > 0 }

func (f *fakeKeyboard) ReadKey() (scan, ascii byte, ok bool) {
	if len(f.keys) == 0 {
		return 0, 0, false
	}
	k := f.keys[0]
	f.keys = f.keys[1:]
	return k[0], k[1], true
}

func newTestBIOS(out *bytes.Buffer, kbd Keyboard) (*BIOS, *cpu.CPU) {
	bus := devices.New(nil)
	c := cpu.New(bus)
	b := New(bus, out, kbd)
	b.Install(c)
	return b, c
}

func TestInt10TeletypeWritesToOut(t *testing.T) {
	var out bytes.Buffer
	_, c := newTestBIOS(&out, nil)
	c.SetAH(0x0E)
	c.SetAL('A')
	c.CS, c.IP = 0x0100, 0x0000
	cpu.WriteByteAt(&c.Mem, c.CS, c.IP, 0xCD)
	cpu.WriteByteAt(&c.Mem, c.CS, c.IP+1, 0x10)
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "A" {
		t.Fatalf("output = %q, want %q", out.String(), "A")
	}
}

func TestInt10GetVideoModeReportsColumns(t *testing.T) {
	var out bytes.Buffer
	_, c := newTestBIOS(&out, nil)
	c.SetAH(0x0F)
	c.CS, c.IP = 0x0100, 0x0000
	cpu.WriteByteAt(&c.Mem, c.CS, c.IP, 0xCD)
	cpu.WriteByteAt(&c.Mem, c.CS, c.IP+1, 0x10)
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if c.AH() != 80 {
		t.Fatalf("AH (columns) = %d, want 80", c.AH())
	}
}

func TestInt16ReadConsumesQueuedKey(t *testing.T) {
	kbd := &fakeKeyboard{keys: [][2]byte{{0x1E, 'a'}}}
	var out bytes.Buffer
	_, c := newTestBIOS(&out, kbd)
	c.SetAH(0x00)
	c.CS, c.IP = 0x0100, 0x0000
	cpu.WriteByteAt(&c.Mem, c.CS, c.IP, 0xCD)
	cpu.WriteByteAt(&c.Mem, c.CS, c.IP+1, 0x16)
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if c.AH() != 0x1E || c.AL() != 'a' {
		t.Fatalf("AH:AL = %02X:%02X, want 1E:61", c.AH(), c.AL())
	}
}

func TestInt16PeekThenReadAgreeOnSameKey(t *testing.T) {
	kbd := &fakeKeyboard{keys: [][2]byte{{0x1E, 'a'}}}
	b, c := newTestBIOS(&bytes.Buffer{}, kbd)

	c.SetAH(0x01)
	if !b.int16(c) {
		t.Fatal("int16 trap handler should report handled")
	}
	if c.ZF() {
		t.Fatal("ZF should be clear: a key is available")
	}
	if c.AH() != 0x1E || c.AL() != 'a' {
		t.Fatalf("peek AH:AL = %02X:%02X, want 1E:61", c.AH(), c.AL())
	}

	c.SetAH(0x00)
	b.int16(c)
	if c.AH() != 0x1E || c.AL() != 'a' {
		t.Fatalf("read after peek AH:AL = %02X:%02X, want 1E:61 (same key)", c.AH(), c.AL())
	}
	if len(kbd.keys) != 0 {
		t.Fatal("the single queued key should have been consumed exactly once")
	}
}

func TestInt16PeekWithNoKeySetsZF(t *testing.T) {
	b, c := newTestBIOS(&bytes.Buffer{}, &fakeKeyboard{})
	c.SetAH(0x01)
	b.int16(c)
	if !c.ZF() {
		t.Fatal("ZF should be set: no key available")
	}
}

func TestInt1aGetSetSystemTime(t *testing.T) {
	bus := devices.New(nil)
	c := cpu.New(bus)
	b := New(bus, &bytes.Buffer{}, nil)
	b.Install(c)

	bus.SetTicks(0x00020001)
	c.SetAH(0x00)
	b.int1a(c)
	if c.CX != 0x0002 || c.DX != 0x0001 {
		t.Fatalf("CX:DX = %04X:%04X, want 0002:0001", c.CX, c.DX)
	}

	c.SetAH(0x01)
	c.CX = 0x0003
	c.DX = 0x0004
	b.int1a(c)
	if bus.Ticks() != 0x00030004 {
		t.Fatalf("Ticks() after set = %08X, want 00030004", bus.Ticks())
	}
}

func TestInt33ReturnsOriginWithNoButtons(t *testing.T) {
	b, c := newTestBIOS(&bytes.Buffer{}, nil)
	c.AX = 0x0003
	c.BX, c.CX, c.DX = 0xFFFF, 0xFFFF, 0xFFFF
	b.int33(c)
	if c.BX != 0 || c.CX != 0 || c.DX != 0 {
		t.Fatalf("BX:CX:DX = %04X:%04X:%04X, want all zero", c.BX, c.CX, c.DX)
	}
}

func TestInt20Terminates(t *testing.T) {
	_, c := newTestBIOS(&bytes.Buffer{}, nil)
	c.CS, c.IP = 0x0100, 0x0000
	cpu.WriteByteAt(&c.Mem, c.CS, c.IP, 0xCD)
	cpu.WriteByteAt(&c.Mem, c.CS, c.IP+1, 0x20)
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if !c.Halted {
		t.Fatal("INT 20h should halt the core")
	}
	if !c.FatalError() {
		t.Fatal("INT 20h should set the sticky fatal_error flag")
	}
}

func TestInt21TerminateWithReturnCode(t *testing.T) {
	_, c := newTestBIOS(&bytes.Buffer{}, nil)
	c.CS, c.IP = 0x0100, 0x0000
	cpu.WriteByteAt(&c.Mem, c.CS, c.IP, 0xCD)
	cpu.WriteByteAt(&c.Mem, c.CS, c.IP+1, 0x21)
	c.AX = 0x4C00
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if !c.Halted {
		t.Fatal("INT 21h AH=4Ch should halt the core")
	}
}

func TestInt21CharacterOutput(t *testing.T) {
	var out bytes.Buffer
	_, c := newTestBIOS(&out, nil)
	c.CS, c.IP = 0x0100, 0x0000
	cpu.WriteByteAt(&c.Mem, c.CS, c.IP, 0xCD)
	cpu.WriteByteAt(&c.Mem, c.CS, c.IP+1, 0x21)
	c.SetAH(0x02)
	c.SetDL('Z')
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "Z" {
		t.Fatalf("output = %q, want %q", out.String(), "Z")
	}
}

func TestInt21StringOutputStopsAtDollarSign(t *testing.T) {
	var out bytes.Buffer
	_, c := newTestBIOS(&out, nil)
	c.CS, c.IP = 0x0100, 0x0000
	cpu.WriteByteAt(&c.Mem, c.CS, c.IP, 0xCD)
	cpu.WriteByteAt(&c.Mem, c.CS, c.IP+1, 0x21)
	c.SetAH(0x09)
	c.DS, c.DX = 0x2000, 0x0000
	msg := "hi$trailing garbage"
	for i := 0; i < len(msg); i++ {
		cpu.WriteByteAt(&c.Mem, c.DS, c.DX+uint16(i), msg[i])
	}
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "hi" {
		t.Fatalf("output = %q, want %q", out.String(), "hi")
	}
}

func TestInt21CharacterInputWithoutEcho(t *testing.T) {
	kbd := &fakeKeyboard{keys: [][2]byte{{0x00, 'q'}}}
	var out bytes.Buffer
	_, c := newTestBIOS(&out, kbd)
	c.CS, c.IP = 0x0100, 0x0000
	cpu.WriteByteAt(&c.Mem, c.CS, c.IP, 0xCD)
	cpu.WriteByteAt(&c.Mem, c.CS, c.IP+1, 0x21)
	c.SetAH(0x08)
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if c.AL() != 'q' {
		t.Fatalf("AL = %q, want 'q'", c.AL())
	}
	if out.Len() != 0 {
		t.Fatalf("AH=08h must not echo, but output = %q", out.String())
	}
}
