// encode_test.go - encoder/decoder round-trip coverage
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package cpu

import (
	"bytes"
	"fmt"
	"testing"
)

// TestEncodeDecodeRoundTrip decodes a canonical byte sequence, re-encodes
// the resulting Instruction, and requires the identical bytes back. Every
// operand-encoding shape the decoder produces appears at least once.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := [][]byte{
		// ALU family, all six shapes
		{0x00, 0xD8},                   // ADD AL, BL (Eb,Gb)
		{0x01, 0x0F},                   // ADD [BX], CX (Ev,Gv mem)
		{0x2A, 0x44, 0x02},             // SUB AL, [SI+2] (Gb,Eb disp8)
		{0x03, 0x06, 0x34, 0x12},       // ADD AX, [1234h] (Gv,Ev direct)
		{0x04, 0x05},                   // ADD AL, 5
		{0x3D, 0x34, 0x12},             // CMP AX, 1234h
		{0x80, 0xCB, 0x01},             // OR BL, 1 (Group 1 Eb,Ib)
		{0x81, 0x8F, 0x00, 0x01, 0x34, 0x12}, // OR word [BX+100h], 1234h
		{0x83, 0xC3, 0x10},             // ADD BX, +10h (sign-extended)
		// MOV forms
		{0xB5, 0x7F},                   // MOV CH, 7Fh
		{0xB8, 0xCD, 0xAB},             // MOV AX, ABCDh
		{0x88, 0x1E, 0x00, 0x40},       // MOV [4000h], BL
		{0x89, 0x46, 0xFE},             // MOV [BP-2], AX (SS-default form)
		{0x8B, 0x44, 0x02},             // MOV AX, [SI+2]
		{0x8C, 0xD8},                   // MOV AX, DS
		{0x8E, 0xC0},                   // MOV ES, AX
		{0xC6, 0x06, 0x00, 0x20, 0xFF}, // MOV byte [2000h], FFh
		{0xC7, 0x47, 0x04, 0x34, 0x12}, // MOV word [BX+4], 1234h
		// TEST / XCHG
		{0x84, 0xD9},       // TEST CL, BL
		{0xA8, 0x0F},       // TEST AL, 0Fh
		{0xF7, 0xC3, 0x01, 0x00}, // TEST BX, 1
		{0x86, 0x0E, 0x00, 0x22}, // XCHG [2200h], CL
		{0x91},             // XCHG AX, CX
		// stack
		{0x57},                   // PUSH DI
		{0x1F},                   // POP DS
		{0x68, 0x34, 0x12},       // PUSH 1234h
		{0x6A, 0xFB},             // PUSH -5
		{0xFF, 0x36, 0x00, 0x20}, // PUSH [2000h]
		{0x8F, 0x06, 0x00, 0x21}, // POP [2100h]
		{0x60},                   // PUSHA
		{0x9C},                   // PUSHF
		// INC/DEC
		{0x40},       // INC AX
		{0x4B},       // DEC BX
		{0xFE, 0x07}, // INC byte [BX]
		{0xFF, 0x0F}, // DEC word [BX]
		// shift/rotate
		{0xD1, 0xE0},       // SHL AX, 1
		{0xC0, 0xC8, 0x03}, // ROR AL, 3
		{0xD3, 0xC7},       // ROL DI, CL
		{0xC1, 0x64, 0x02, 0x04}, // SHL word [SI+2], 4
		// Group 3 and wide multiplies
		{0xF6, 0xDB},             // NEG BL
		{0xF7, 0xE1},             // MUL CX
		{0x0F, 0xAF, 0xC3},       // IMUL AX, BX
		{0x6B, 0xD9, 0x05},       // IMUL BX, CX, 5
		{0x69, 0xD1, 0x34, 0x12}, // IMUL DX, CX, 1234h
		// control flow
		{0x74, 0x05},                   // JZ +5
		{0x7F, 0xFB},                   // JG -5
		{0x0F, 0x85, 0x00, 0x01},       // JNZ near +100h
		{0xE8, 0x00, 0x02},             // CALL rel16
		{0x9A, 0x00, 0x02, 0x00, 0x10}, // CALL 1000h:0200h
		{0xFF, 0xD3},                   // CALL BX
		{0xEB, 0xFE},                   // JMP short -2
		{0xE9, 0x00, 0x01},             // JMP near +100h
		{0xEA, 0x00, 0x01, 0x00, 0x20}, // JMP 2000h:0100h
		{0xFF, 0xE0},                   // JMP AX
		{0xFF, 0x2E, 0x00, 0x30},       // JMP FAR [3000h]
		{0xC2, 0x08, 0x00},             // RET 8
		{0xCB},                         // RETF
		{0xE2, 0xF0},                   // LOOP -16
		{0xE3, 0x10},                   // JCXZ +16
		{0xCD, 0x21},                   // INT 21h
		// pointer loads and extensions
		{0x8D, 0x47, 0x08},       // LEA AX, [BX+8]
		{0xC4, 0x1E, 0x00, 0x30}, // LES BX, [3000h]
		{0xC5, 0x36, 0x00, 0x30}, // LDS SI, [3000h]
		{0x0F, 0xB6, 0xC8},       // MOVZX CX, AL
		{0x0F, 0xBE, 0xD3},       // MOVSX DX, BL
		// double shifts
		{0x0F, 0xA4, 0xD8, 0x01}, // SHLD AX, BX, 1
		{0x0F, 0xAD, 0xD8},       // SHRD AX, BX, CL
		// I/O
		{0xE4, 0x60}, // IN AL, 60h
		{0xE7, 0x42}, // OUT 42h, AX
		{0xED},       // IN AX, DX
		{0xEE},       // OUT DX, AL
		// BCD and misc
		{0x27},             // DAA
		{0xD4, 0x0A},       // AAM
		{0xC8, 0x10, 0x00, 0x02}, // ENTER 16, 2
		{0xC9},             // LEAVE
		{0x98},             // CBW
		{0xF4},             // HLT
		// prefixed forms
		{0xF3, 0xA4},       // REP MOVSB
		{0xF2, 0xAE},       // REPNE SCASB
		{0x26, 0x8B, 0x04}, // ES: MOV AX, [SI]
		{0xF0, 0x86, 0x07}, // LOCK XCHG [BX], AL
	}
	for _, seq := range cases {
		t.Run(fmt.Sprintf("% X", seq), func(t *testing.T) {
			mem := NewMemory()
			for i, b := range seq {
				WriteByteAt(&mem, 0x0100, uint16(i), b)
			}
			inst, err := Decode(&mem, 0x0100, 0x0000)
			if err != nil {
				t.Fatal(err)
			}
			if inst.Length != len(seq) {
				t.Fatalf("decoded length %d, want %d", inst.Length, len(seq))
			}
			enc, err := Encode(inst)
			if err != nil {
				t.Fatalf("encode %s: %v", inst.Mnemonic, err)
			}
			if !bytes.Equal(enc, seq) {
				t.Fatalf("encode(%s) = % X, want % X", inst.Mnemonic, enc, seq)
			}
		})
	}
}

// TestEncodeSyntheticInstruction round-trips a hand-built Instruction the
// other way: encode first, then decode, and compare the pieces that matter.
func TestEncodeSyntheticInstruction(t *testing.T) {
	inst := Instruction{
		Mnemonic: "MOV",
		Prefixes: Prefixes{SegOverride: -1},
		Operands: []Operand{regOperand16(3), imm16Operand(0x1234)}, // MOV BX, 1234h
	}
	enc, err := Encode(inst)
	if err != nil {
		t.Fatal(err)
	}
	mem := NewMemory()
	for i, b := range enc {
		WriteByteAt(&mem, 0x0100, uint16(i), b)
	}
	dec, err := Decode(&mem, 0x0100, 0x0000)
	if err != nil {
		t.Fatal(err)
	}
	if dec.Mnemonic != "MOV" || dec.Length != len(enc) {
		t.Fatalf("decoded %s length %d from % X", dec.Mnemonic, dec.Length, enc)
	}
	if dec.Operands[0].Kind != OperandReg16 || dec.Operands[0].Reg != 3 {
		t.Fatalf("destination operand did not survive: %+v", dec.Operands[0])
	}
	if dec.Operands[1].Kind != OperandImm16 || dec.Operands[1].Imm != 0x1234 {
		t.Fatalf("immediate did not survive: %+v", dec.Operands[1])
	}
}

// TestEncodeCanonicalFormWins: the Group 1 byte form of ADD AL,imm decodes
// to the same Instruction as the two-byte accumulator short form, so the
// encoder emits the short form.
func TestEncodeCanonicalFormWins(t *testing.T) {
	mem := NewMemory()
	for i, b := range []byte{0x80, 0xC0, 0x05} { // ADD AL, 5 via Group 1
		WriteByteAt(&mem, 0x0100, uint16(i), b)
	}
	inst, err := Decode(&mem, 0x0100, 0x0000)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := Encode(inst)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(enc, []byte{0x04, 0x05}) {
		t.Fatalf("encode = % X, want 04 05", enc)
	}
}

// TestEncodeDirectOffsetMOVErrors: the A0-A3 forms decode to a single
// operand and cannot be reconstructed, so Encode must refuse rather than
// emit wrong bytes.
func TestEncodeDirectOffsetMOVErrors(t *testing.T) {
	mem := NewMemory()
	for i, b := range []byte{0xA1, 0x00, 0x20} { // MOV AX, [2000h]
		WriteByteAt(&mem, 0x0100, uint16(i), b)
	}
	inst, err := Decode(&mem, 0x0100, 0x0000)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Encode(inst); err == nil {
		t.Fatal("expected an error for the direct-offset MOV form")
	}
}
