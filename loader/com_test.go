// com_test.go - .COM loading conventions
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package loader

import (
	"testing"

	"github.com/zaynotley/x86dosemu/cpu"
)

func TestLoadCOMSeedsRegistersAndImage(t *testing.T) {
	c := cpu.New(nil)
	image := []byte{0xB0, 0x42, 0xCD, 0x20} // MOV AL,42h ; INT 20h

	if err := LoadCOM(c, image); err != nil {
		t.Fatal(err)
	}

	if c.CS != comLoadSegment || c.DS != comLoadSegment || c.ES != comLoadSegment || c.SS != comLoadSegment {
		t.Fatalf("segments not all set to load segment: CS=%04X DS=%04X ES=%04X SS=%04X", c.CS, c.DS, c.ES, c.SS)
	}
	if c.IP != comEntryOffset {
		t.Fatalf("IP = %04X, want %04X", c.IP, comEntryOffset)
	}
	if c.SP != 0xFFFE {
		t.Fatalf("SP = %04X, want FFFE", c.SP)
	}
	if c.AX != 0 || c.BX != 0 {
		t.Fatalf("AX/BX not zeroed: AX=%04X BX=%04X", c.AX, c.BX)
	}
	if c.CX != 0x00FF {
		t.Fatalf("CX = %04X, want 00FF", c.CX)
	}

	for i, b := range image {
		got := cpu.ReadByteAt(&c.Mem, comLoadSegment, comEntryOffset+uint16(i))
		if got != b {
			t.Fatalf("image byte %d = %02X, want %02X", i, got, b)
		}
	}
}

func TestLoadCOMWritesPSPFallback(t *testing.T) {
	c := cpu.New(nil)
	if err := LoadCOM(c, []byte{0x90}); err != nil {
		t.Fatal(err)
	}
	if cpu.ReadByteAt(&c.Mem, comLoadSegment, 0x00) != 0xCD || cpu.ReadByteAt(&c.Mem, comLoadSegment, 0x01) != 0x20 {
		t.Fatal("PSP offset 0 is not INT 20h")
	}
	if cpu.ReadByteAt(&c.Mem, comLoadSegment, 0x80) != 0x00 {
		t.Fatal("PSP command tail length not zeroed")
	}
}

func TestLoadCOMRejectsOversizeImage(t *testing.T) {
	c := cpu.New(nil)
	image := make([]byte, MaxComSize+1)
	if err := LoadCOM(c, image); err == nil {
		t.Fatal("expected an error for an oversize .COM image")
	}
}
