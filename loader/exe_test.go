// exe_test.go - MZ .EXE header parsing and relocation
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package loader

import (
	"encoding/binary"
	"testing"

	"github.com/zaynotley/x86dosemu/cpu"
)

// buildMinimalEXE assembles a 48-byte MZ image: a 32-byte header (the
// 28-byte parsed header plus one 4-byte relocation entry) followed by a 16-byte
// code image whose bytes 2-3 hold a segment value the loader must patch.
func buildMinimalEXE() []byte {
	data := make([]byte, 48)
	copy(data[0:2], "MZ")
	binary.LittleEndian.PutUint16(data[2:4], 48)   // BytesInLastBlock
	binary.LittleEndian.PutUint16(data[4:6], 1)    // BlocksInFile
	binary.LittleEndian.PutUint16(data[6:8], 1)    // NumRelocs
	binary.LittleEndian.PutUint16(data[8:10], 2)   // HeaderParagraphs
	binary.LittleEndian.PutUint16(data[14:16], 0)  // SS
	binary.LittleEndian.PutUint16(data[16:18], 0x0100) // SP
	binary.LittleEndian.PutUint16(data[20:22], 0)  // IP
	binary.LittleEndian.PutUint16(data[22:24], 0)  // CS
	binary.LittleEndian.PutUint16(data[24:26], 28) // RelocTableOffset

	// One relocation entry at offset 28: off=0x0002, seg=0x0000.
	binary.LittleEndian.PutUint16(data[28:30], 0x0002)
	binary.LittleEndian.PutUint16(data[30:32], 0x0000)

	// Code image starts at offset 32 (2 header paragraphs).
	data[32] = 0x90 // NOP
	data[33] = 0x90 // NOP
	// bytes 34-35 (image offset 2) hold the word the reloc entry patches.
	binary.LittleEndian.PutUint16(data[34:36], 0x0000)
	return data
}

func TestLoadEXESeedsRegistersFromHeader(t *testing.T) {
	c := cpu.New(nil)
	if err := LoadEXE(c, buildMinimalEXE()); err != nil {
		t.Fatal(err)
	}

	const imageBase = pspSegment + 0x10
	if c.CS != imageBase {
		t.Fatalf("CS = %04X, want %04X", c.CS, imageBase)
	}
	if c.IP != 0 {
		t.Fatalf("IP = %04X, want 0", c.IP)
	}
	if c.SS != imageBase {
		t.Fatalf("SS = %04X, want %04X", c.SS, imageBase)
	}
	if c.SP != 0x0100 {
		t.Fatalf("SP = %04X, want 0100", c.SP)
	}
	if c.DS != pspSegment || c.ES != pspSegment {
		t.Fatalf("DS/ES not seeded to PSP segment: DS=%04X ES=%04X", c.DS, c.ES)
	}
}

func TestLoadEXEPatchesRelocations(t *testing.T) {
	c := cpu.New(nil)
	if err := LoadEXE(c, buildMinimalEXE()); err != nil {
		t.Fatal(err)
	}

	const imageBase = pspSegment + 0x10
	got := cpu.ReadWord(&c.Mem, imageBase, 0x0002)
	if got != imageBase {
		t.Fatalf("relocated word = %04X, want %04X (segment 0 + imageBase)", got, imageBase)
	}
}

func TestLoadEXECopiesCodeImage(t *testing.T) {
	c := cpu.New(nil)
	if err := LoadEXE(c, buildMinimalEXE()); err != nil {
		t.Fatal(err)
	}

	const imageBase = pspSegment + 0x10
	if cpu.ReadByteAt(&c.Mem, imageBase, 0x0000) != 0x90 || cpu.ReadByteAt(&c.Mem, imageBase, 0x0001) != 0x90 {
		t.Fatal("code image bytes not copied to imageBase")
	}
}

func TestLoadEXERejectsTruncatedHeader(t *testing.T) {
	c := cpu.New(nil)
	if err := LoadEXE(c, []byte{'M', 'Z', 0, 0}); err == nil {
		t.Fatal("expected an error for a truncated MZ header")
	}
}

func TestLoadEXERejectsBadSignature(t *testing.T) {
	c := cpu.New(nil)
	data := buildMinimalEXE()
	data[0], data[1] = 'X', 'X'
	if err := LoadEXE(c, data); err == nil {
		t.Fatal("expected an error for a missing MZ signature")
	}
}
