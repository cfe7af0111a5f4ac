// exe.go - simple MZ .EXE program loading
//
// Parses the 28-byte MZ header, places the code image above a synthesized
// PSP, applies the segment-fixup relocation table, and seeds CS:IP/SS:SP
// from the header's own fields (unlike .COM, .EXE carries its own entry
// point and initial stack).
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package loader

import (
	"encoding/binary"
	"fmt"

	"github.com/zaynotley/x86dosemu/cpu"
)

const mzHeaderSize = 28

// mzHeader is the on-disk MZ header, 14 little-endian words.
type mzHeader struct {
	Signature          [2]byte
	BytesInLastBlock   uint16
	BlocksInFile       uint16
	NumRelocs          uint16
	HeaderParagraphs   uint16
	MinExtraParagraphs uint16
	MaxExtraParagraphs uint16
	SS                 uint16
	SP                 uint16
	Checksum           uint16
	IP                 uint16
	CS                 uint16
	RelocTableOffset   uint16
	OverlayNumber      uint16
}

func parseMZHeader(data []byte) (mzHeader, error) {
	var h mzHeader
	if len(data) < mzHeaderSize {
		return h, fmt.Errorf("loader: .EXE header truncated, got %d bytes", len(data))
	}
	copy(h.Signature[:], data[0:2])
	if h.Signature != [2]byte{'M', 'Z'} && h.Signature != [2]byte{'Z', 'M'} {
		return h, fmt.Errorf("loader: missing MZ signature")
	}
	h.BytesInLastBlock = binary.LittleEndian.Uint16(data[2:4])
	h.BlocksInFile = binary.LittleEndian.Uint16(data[4:6])
	h.NumRelocs = binary.LittleEndian.Uint16(data[6:8])
	h.HeaderParagraphs = binary.LittleEndian.Uint16(data[8:10])
	h.MinExtraParagraphs = binary.LittleEndian.Uint16(data[10:12])
	h.MaxExtraParagraphs = binary.LittleEndian.Uint16(data[12:14])
	h.SS = binary.LittleEndian.Uint16(data[14:16])
	h.SP = binary.LittleEndian.Uint16(data[16:18])
	h.Checksum = binary.LittleEndian.Uint16(data[18:20])
	h.IP = binary.LittleEndian.Uint16(data[20:22])
	h.CS = binary.LittleEndian.Uint16(data[22:24])
	h.RelocTableOffset = binary.LittleEndian.Uint16(data[24:26])
	h.OverlayNumber = binary.LittleEndian.Uint16(data[26:28])
	return h, nil
}

// pspSegment is a fixed load point for the synthesized PSP, chosen clear of
// the 1 MiB top and low enough to leave plenty of room for a 64 KiB-plus
// image before wrapping.
const pspSegment = 0x1000

// LoadEXE parses an MZ .EXE image, places its code image at imageBase =
// pspSegment+0x10, applies relocations, writes a PSP, seeds CS:IP and SS:SP
// from the header and points DS/ES at the PSP; other registers are left
// as they were.
func LoadEXE(c *cpu.CPU, data []byte) error {
	h, err := parseMZHeader(data)
	if err != nil {
		return err
	}

	imageStart := int(h.HeaderParagraphs) * 16
	imageEnd := int(h.BlocksInFile) * 512
	if h.BytesInLastBlock != 0 {
		imageEnd -= 512 - int(h.BytesInLastBlock)
	}
	if imageStart > len(data) || imageEnd > len(data) || imageEnd < imageStart {
		return fmt.Errorf("loader: .EXE header describes an image outside the file bounds")
	}
	image := data[imageStart:imageEnd]

	const imageBase = pspSegment + 0x10
	for i, b := range image {
		cpu.WriteByteAt(&c.Mem, imageBase, uint16(i), b)
	}

	relocTable := data[h.RelocTableOffset:]
	for i := 0; i < int(h.NumRelocs); i++ {
		entry := relocTable[i*4 : i*4+4]
		relocOff := binary.LittleEndian.Uint16(entry[0:2])
		relocSeg := binary.LittleEndian.Uint16(entry[2:4])
		patchSeg := relocSeg + imageBase
		v := cpu.ReadWord(&c.Mem, patchSeg, relocOff)
		cpu.WriteWord(&c.Mem, patchSeg, relocOff, v+imageBase)
	}

	writePSP(c, pspSegment)

	c.CS = h.CS + imageBase
	c.IP = h.IP
	c.SS = h.SS + imageBase
	c.SP = h.SP
	c.DS = pspSegment
	c.ES = pspSegment
	return nil
}
