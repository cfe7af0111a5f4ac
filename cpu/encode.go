// encode.go - instruction encoder, the decoder's inverse
//
// Encode emits a byte sequence that Decode turns back into an equivalent
// Instruction. Where several encodings collapse to the same Instruction
// value, the canonical (shortest) form wins: the accumulator-immediate ALU
// short forms over their Group 1 equivalents, D0/D1 for shift-by-one over
// C0/C1 with a literal 1. A few decoded shapes do not carry enough
// information to re-encode - the A0-A3 direct-offset MOV forms - and
// return an error instead.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package cpu

import "fmt"

// Encode emits the canonical byte sequence for inst, prefixes first.
func Encode(inst Instruction) ([]byte, error) {
	body, err := encodeBody(inst)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+4)
	if inst.Prefixes.Lock {
		out = append(out, 0xF0)
	}
	switch inst.Prefixes.Rep {
	case 1:
		out = append(out, 0xF3)
	case 2:
		out = append(out, 0xF2)
	}
	if so := inst.Prefixes.SegOverride; so >= 0 {
		out = append(out, segPrefixByte(so))
	}
	return append(out, body...), nil
}

func segPrefixByte(seg int) byte {
	switch seg {
	case SegES:
		return 0x26
	case SegCS:
		return 0x2E
	case SegSS:
		return 0x36
	case SegDS:
		return 0x3E
	case SegFS:
		return 0x64
	default:
		return 0x65
	}
}

// modRMBytes assembles the ModR/M byte (and any displacement) pairing the
// given reg/opcode-extension field with an r/m operand.
func modRMBytes(reg byte, o Operand) ([]byte, error) {
	switch o.Kind {
	case OperandReg8, OperandReg16:
		return []byte{0xC0 | reg<<3 | o.Reg}, nil
	case OperandMem:
		d := o.RM
		if d.form == FormDirect {
			return []byte{reg<<3 | 6, byte(d.disp), byte(d.disp >> 8)}, nil
		}
		switch d.dispIs {
		case dispNone:
			if d.form == FormBp {
				// mod=00 rm=110 means [disp16], so a bare [BP] needs a zero disp8.
				return []byte{0x40 | reg<<3 | byte(FormBp), 0}, nil
			}
			return []byte{reg<<3 | byte(d.form)}, nil
		case dispByte:
			return []byte{0x40 | reg<<3 | byte(d.form), byte(d.disp)}, nil
		default:
			return []byte{0x80 | reg<<3 | byte(d.form), byte(d.disp), byte(d.disp >> 8)}, nil
		}
	}
	return nil, fmt.Errorf("cpu: operand kind %d has no r/m encoding", o.Kind)
}

func opRM(opcode byte, reg byte, o Operand, tail ...byte) ([]byte, error) {
	rm, err := modRMBytes(reg, o)
	if err != nil {
		return nil, err
	}
	out := append([]byte{opcode}, rm...)
	return append(out, tail...), nil
}

func op0FRM(sub byte, reg byte, o Operand, tail ...byte) ([]byte, error) {
	rm, err := modRMBytes(reg, o)
	if err != nil {
		return nil, err
	}
	out := append([]byte{0x0F, sub}, rm...)
	return append(out, tail...), nil
}

func isWideRM(o Operand) bool {
	return o.Kind == OperandReg16 || (o.Kind == OperandMem && o.Wide)
}

func lookupMnemonic(table []string, name string) (byte, bool) {
	for i, n := range table {
		if n == name {
			return byte(i), true
		}
	}
	return 0, false
}

// zeroOperandOpcode maps every single-byte, no-operand instruction back to
// its opcode.
var zeroOperandOpcode = map[string]byte{
	"DAA": 0x27, "DAS": 0x2F, "AAA": 0x37, "AAS": 0x3F,
	"PUSHA": 0x60, "POPA": 0x61,
	"INSB": 0x6C, "INSW": 0x6D, "OUTSB": 0x6E, "OUTSW": 0x6F,
	"NOP": 0x90, "CBW": 0x98, "CWD": 0x99, "WAIT": 0x9B,
	"PUSHF": 0x9C, "POPF": 0x9D, "SAHF": 0x9E, "LAHF": 0x9F,
	"MOVSB": 0xA4, "MOVSW": 0xA5, "CMPSB": 0xA6, "CMPSW": 0xA7,
	"STOSB": 0xAA, "STOSW": 0xAB, "LODSB": 0xAC, "LODSW": 0xAD,
	"SCASB": 0xAE, "SCASW": 0xAF,
	"RET": 0xC3, "RETF": 0xCB, "LEAVE": 0xC9,
	"INT3": 0xCC, "INTO": 0xCE, "IRET": 0xCF,
	"XLAT": 0xD7, "HLT": 0xF4, "CMC": 0xF5,
	"CLC": 0xF8, "STC": 0xF9, "CLI": 0xFA, "STI": 0xFB,
	"CLD": 0xFC, "STD": 0xFD,
}

// grp3Index maps the Group 3 single-operand mnemonics to their reg field.
var grp3Index = map[string]byte{
	"NOT": 2, "NEG": 3, "MUL": 4, "IMUL": 5, "DIV": 6, "IDIV": 7,
}

func encodeBody(inst Instruction) ([]byte, error) {
	ops := inst.Operands

	if b, ok := zeroOperandOpcode[inst.Mnemonic]; ok && len(ops) == 0 {
		return []byte{b}, nil
	}
	if idx, ok := lookupMnemonic(aluMnemonics[:], inst.Mnemonic); ok && len(ops) == 2 {
		return encodeALU(idx, ops)
	}
	if idx, ok := lookupMnemonic(shiftMnemonics[:], inst.Mnemonic); ok && len(ops) == 2 {
		return encodeShift(idx, ops)
	}
	if cc, ok := lookupMnemonic(jccMnemonics[:], inst.Mnemonic); ok && len(ops) == 1 {
		switch ops[0].Kind {
		case OperandRel8:
			return []byte{0x70 + cc, byte(ops[0].Imm)}, nil
		case OperandRel16:
			return []byte{0x0F, 0x80 + cc, byte(ops[0].Imm), byte(ops[0].Imm >> 8)}, nil
		}
	}
	if reg, ok := grp3Index[inst.Mnemonic]; ok && len(ops) == 1 {
		op := byte(0xF6)
		if isWideRM(ops[0]) {
			op = 0xF7
		}
		return opRM(op, reg, ops[0])
	}

	switch inst.Mnemonic {
	case "MOV":
		return encodeMOV(ops)
	case "TEST":
		return encodeTEST(ops)
	case "XCHG":
		return encodeXCHG(ops)
	case "PUSH":
		return encodePUSH(ops)
	case "POP":
		return encodePOP(ops)
	case "INC", "DEC":
		return encodeIncDec(inst.Mnemonic == "DEC", ops)
	case "IMUL":
		return encodeIMULMulti(ops)
	case "CALL", "CALLF":
		return encodeCALL(inst.Mnemonic, ops)
	case "JMP", "JMPF":
		return encodeJMP(inst.Mnemonic, ops)
	case "RET":
		if len(ops) == 1 && ops[0].Kind == OperandImm16 {
			return []byte{0xC2, byte(ops[0].Imm), byte(ops[0].Imm >> 8)}, nil
		}
	case "RETF":
		if len(ops) == 1 && ops[0].Kind == OperandImm16 {
			return []byte{0xCA, byte(ops[0].Imm), byte(ops[0].Imm >> 8)}, nil
		}
	case "LOOPNE", "LOOPE", "LOOP", "JCXZ":
		if len(ops) == 1 && ops[0].Kind == OperandRel8 {
			op := map[string]byte{"LOOPNE": 0xE0, "LOOPE": 0xE1, "LOOP": 0xE2, "JCXZ": 0xE3}[inst.Mnemonic]
			return []byte{op, byte(ops[0].Imm)}, nil
		}
	case "INT":
		if len(ops) == 1 && ops[0].Kind == OperandImm8 {
			return []byte{0xCD, byte(ops[0].Imm)}, nil
		}
	case "AAM", "AAD":
		if len(ops) == 1 && ops[0].Kind == OperandImm8 {
			op := byte(0xD4)
			if inst.Mnemonic == "AAD" {
				op = 0xD5
			}
			return []byte{op, byte(ops[0].Imm)}, nil
		}
	case "ENTER":
		if len(ops) == 2 && ops[0].Kind == OperandImm16 && ops[1].Kind == OperandImm8 {
			return []byte{0xC8, byte(ops[0].Imm), byte(ops[0].Imm >> 8), byte(ops[1].Imm)}, nil
		}
	case "LEA":
		if len(ops) == 2 && ops[0].Kind == OperandReg16 && ops[1].Kind == OperandMem {
			return opRM(0x8D, ops[0].Reg, ops[1])
		}
	case "LES":
		if len(ops) == 2 && ops[0].Kind == OperandReg16 && ops[1].Kind == OperandMem {
			return opRM(0xC4, ops[0].Reg, ops[1])
		}
	case "LDS":
		if len(ops) == 2 && ops[0].Kind == OperandReg16 && ops[1].Kind == OperandMem {
			return opRM(0xC5, ops[0].Reg, ops[1])
		}
	case "MOVZX":
		if len(ops) == 2 && ops[0].Kind == OperandReg16 {
			return op0FRM(0xB6, ops[0].Reg, ops[1])
		}
	case "MOVSX":
		if len(ops) == 2 && ops[0].Kind == OperandReg16 {
			return op0FRM(0xBE, ops[0].Reg, ops[1])
		}
	case "SHLD", "SHRD":
		return encodeDoubleShift(inst.Mnemonic, ops)
	case "IN":
		return encodeIN(ops)
	case "OUT":
		return encodeOUT(ops)
	}
	return nil, fmt.Errorf("cpu: no encoding for %s with %d operand(s)", inst.Mnemonic, len(ops))
}

func encodeALU(idx byte, ops []Operand) ([]byte, error) {
	dst, src := ops[0], ops[1]
	base := idx * 8
	switch {
	case src.Kind == OperandImm8 && dst.Kind == OperandReg8 && dst.Reg == 0:
		return []byte{base + 4, byte(src.Imm)}, nil
	case src.Kind == OperandImm16 && dst.Kind == OperandReg16 && dst.Reg == 0:
		return []byte{base + 5, byte(src.Imm), byte(src.Imm >> 8)}, nil
	case src.Kind == OperandImm8 && !isWideRM(dst):
		return opRM(0x80, idx, dst, byte(src.Imm))
	case src.Kind == OperandImm8:
		return opRM(0x83, idx, dst, byte(src.Imm))
	case src.Kind == OperandImm16:
		return opRM(0x81, idx, dst, byte(src.Imm), byte(src.Imm>>8))
	case src.Kind == OperandReg8:
		return opRM(base+0, src.Reg, dst)
	case src.Kind == OperandReg16:
		return opRM(base+1, src.Reg, dst)
	case dst.Kind == OperandReg8 && src.Kind == OperandMem:
		return opRM(base+2, dst.Reg, src)
	case dst.Kind == OperandReg16 && src.Kind == OperandMem:
		return opRM(base+3, dst.Reg, src)
	}
	return nil, fmt.Errorf("cpu: no encoding for %s operand pair", aluMnemonics[idx])
}

func encodeShift(idx byte, ops []Operand) ([]byte, error) {
	dst, cnt := ops[0], ops[1]
	wide := isWideRM(dst)
	pick := func(narrow, w byte) byte {
		if wide {
			return w
		}
		return narrow
	}
	switch {
	case cnt.Kind == OperandImm8 && cnt.Imm == 1:
		return opRM(pick(0xD0, 0xD1), idx, dst)
	case cnt.Kind == OperandImm8:
		return opRM(pick(0xC0, 0xC1), idx, dst, byte(cnt.Imm))
	case cnt.Kind == OperandReg8 && cnt.Reg == 1:
		return opRM(pick(0xD2, 0xD3), idx, dst)
	}
	return nil, fmt.Errorf("cpu: no encoding for %s count operand", shiftMnemonics[idx])
}

func encodeMOV(ops []Operand) ([]byte, error) {
	if len(ops) != 2 {
		// The A0-A3 direct-offset accumulator forms decode to a single
		// operand and cannot be reconstructed.
		return nil, fmt.Errorf("cpu: MOV direct-offset forms do not re-encode")
	}
	dst, src := ops[0], ops[1]
	switch {
	case dst.Kind == OperandSegReg:
		return opRM(0x8E, dst.Reg, src)
	case src.Kind == OperandSegReg:
		return opRM(0x8C, src.Reg, dst)
	case dst.Kind == OperandReg8 && src.Kind == OperandImm8:
		return []byte{0xB0 + dst.Reg, byte(src.Imm)}, nil
	case dst.Kind == OperandReg16 && src.Kind == OperandImm16:
		return []byte{0xB8 + dst.Reg, byte(src.Imm), byte(src.Imm >> 8)}, nil
	case dst.Kind == OperandMem && src.Kind == OperandImm8:
		return opRM(0xC6, 0, dst, byte(src.Imm))
	case dst.Kind == OperandMem && src.Kind == OperandImm16:
		return opRM(0xC7, 0, dst, byte(src.Imm), byte(src.Imm>>8))
	case src.Kind == OperandReg8:
		return opRM(0x88, src.Reg, dst)
	case src.Kind == OperandReg16:
		return opRM(0x89, src.Reg, dst)
	case dst.Kind == OperandReg8 && src.Kind == OperandMem:
		return opRM(0x8A, dst.Reg, src)
	case dst.Kind == OperandReg16 && src.Kind == OperandMem:
		return opRM(0x8B, dst.Reg, src)
	}
	return nil, fmt.Errorf("cpu: no encoding for MOV operand pair")
}

func encodeTEST(ops []Operand) ([]byte, error) {
	if len(ops) != 2 {
		return nil, fmt.Errorf("cpu: TEST needs two operands")
	}
	dst, src := ops[0], ops[1]
	switch {
	case src.Kind == OperandImm8 && dst.Kind == OperandReg8 && dst.Reg == 0:
		return []byte{0xA8, byte(src.Imm)}, nil
	case src.Kind == OperandImm16 && dst.Kind == OperandReg16 && dst.Reg == 0:
		return []byte{0xA9, byte(src.Imm), byte(src.Imm >> 8)}, nil
	case src.Kind == OperandImm8:
		return opRM(0xF6, 0, dst, byte(src.Imm))
	case src.Kind == OperandImm16:
		return opRM(0xF7, 0, dst, byte(src.Imm), byte(src.Imm>>8))
	case src.Kind == OperandReg8:
		return opRM(0x84, src.Reg, dst)
	case src.Kind == OperandReg16:
		return opRM(0x85, src.Reg, dst)
	}
	return nil, fmt.Errorf("cpu: no encoding for TEST operand pair")
}

func encodeXCHG(ops []Operand) ([]byte, error) {
	if len(ops) != 2 {
		return nil, fmt.Errorf("cpu: XCHG needs two operands")
	}
	dst, src := ops[0], ops[1]
	switch {
	case dst.Kind == OperandReg16 && dst.Reg == 0 && src.Kind == OperandReg16 && src.Reg != 0:
		return []byte{0x90 + src.Reg}, nil
	case src.Kind == OperandReg8:
		return opRM(0x86, src.Reg, dst)
	case src.Kind == OperandReg16:
		return opRM(0x87, src.Reg, dst)
	}
	return nil, fmt.Errorf("cpu: no encoding for XCHG operand pair")
}

func encodePUSH(ops []Operand) ([]byte, error) {
	if len(ops) != 1 {
		return nil, fmt.Errorf("cpu: PUSH needs one operand")
	}
	o := ops[0]
	switch o.Kind {
	case OperandReg16:
		return []byte{0x50 + o.Reg}, nil
	case OperandSegReg:
		switch int(o.Reg) {
		case SegES:
			return []byte{0x06}, nil
		case SegCS:
			return []byte{0x0E}, nil
		case SegSS:
			return []byte{0x16}, nil
		case SegDS:
			return []byte{0x1E}, nil
		}
	case OperandImm16:
		return []byte{0x68, byte(o.Imm), byte(o.Imm >> 8)}, nil
	case OperandImm8:
		return []byte{0x6A, byte(o.Imm)}, nil
	case OperandMem:
		return opRM(0xFF, 6, o)
	}
	return nil, fmt.Errorf("cpu: no encoding for PUSH operand")
}

func encodePOP(ops []Operand) ([]byte, error) {
	if len(ops) != 1 {
		return nil, fmt.Errorf("cpu: POP needs one operand")
	}
	o := ops[0]
	switch o.Kind {
	case OperandReg16:
		return []byte{0x58 + o.Reg}, nil
	case OperandSegReg:
		switch int(o.Reg) {
		case SegES:
			return []byte{0x07}, nil
		case SegSS:
			return []byte{0x17}, nil
		case SegDS:
			return []byte{0x1F}, nil
		}
	case OperandMem:
		return opRM(0x8F, 0, o)
	}
	return nil, fmt.Errorf("cpu: no encoding for POP operand")
}

func encodeIncDec(dec bool, ops []Operand) ([]byte, error) {
	if len(ops) != 1 {
		return nil, fmt.Errorf("cpu: INC/DEC needs one operand")
	}
	o := ops[0]
	reg := byte(0)
	if dec {
		reg = 1
	}
	switch {
	case o.Kind == OperandReg16:
		base := byte(0x40)
		if dec {
			base = 0x48
		}
		return []byte{base + o.Reg}, nil
	case o.Kind == OperandReg8 || (o.Kind == OperandMem && !o.Wide):
		return opRM(0xFE, reg, o)
	case o.Kind == OperandMem:
		return opRM(0xFF, reg, o)
	}
	return nil, fmt.Errorf("cpu: no encoding for INC/DEC operand")
}

// encodeIMULMulti covers the two- and three-operand IMUL forms; the
// single-operand Group 3 form is handled by grp3Index.
func encodeIMULMulti(ops []Operand) ([]byte, error) {
	switch {
	case len(ops) == 2 && ops[0].Kind == OperandReg16:
		return op0FRM(0xAF, ops[0].Reg, ops[1])
	case len(ops) == 3 && ops[0].Kind == OperandReg16 && ops[2].Kind == OperandImm8:
		return opRM(0x6B, ops[0].Reg, ops[1], byte(ops[2].Imm))
	case len(ops) == 3 && ops[0].Kind == OperandReg16 && ops[2].Kind == OperandImm16:
		return opRM(0x69, ops[0].Reg, ops[1], byte(ops[2].Imm), byte(ops[2].Imm>>8))
	}
	return nil, fmt.Errorf("cpu: no encoding for IMUL operands")
}

func encodeCALL(mnemonic string, ops []Operand) ([]byte, error) {
	if mnemonic == "CALLF" {
		if len(ops) == 1 && ops[0].Kind == OperandMem {
			return opRM(0xFF, 3, ops[0])
		}
		return nil, fmt.Errorf("cpu: far indirect CALL needs a memory operand")
	}
	switch {
	case len(ops) == 1 && ops[0].Kind == OperandRel16:
		return []byte{0xE8, byte(ops[0].Imm), byte(ops[0].Imm >> 8)}, nil
	case len(ops) == 2 && ops[0].Kind == OperandFarPtr:
		off, seg := ops[0].Imm, ops[1].Imm
		return []byte{0x9A, byte(off), byte(off >> 8), byte(seg), byte(seg >> 8)}, nil
	case len(ops) == 1 && (ops[0].Kind == OperandReg16 || ops[0].Kind == OperandMem):
		return opRM(0xFF, 2, ops[0])
	}
	return nil, fmt.Errorf("cpu: no encoding for CALL operand")
}

func encodeJMP(mnemonic string, ops []Operand) ([]byte, error) {
	if mnemonic == "JMPF" {
		if len(ops) == 1 && ops[0].Kind == OperandMem {
			return opRM(0xFF, 5, ops[0])
		}
		return nil, fmt.Errorf("cpu: far indirect JMP needs a memory operand")
	}
	switch {
	case len(ops) == 1 && ops[0].Kind == OperandRel8:
		return []byte{0xEB, byte(ops[0].Imm)}, nil
	case len(ops) == 1 && ops[0].Kind == OperandRel16:
		return []byte{0xE9, byte(ops[0].Imm), byte(ops[0].Imm >> 8)}, nil
	case len(ops) == 2 && ops[0].Kind == OperandFarPtr:
		off, seg := ops[0].Imm, ops[1].Imm
		return []byte{0xEA, byte(off), byte(off >> 8), byte(seg), byte(seg >> 8)}, nil
	case len(ops) == 1 && (ops[0].Kind == OperandReg16 || ops[0].Kind == OperandMem):
		return opRM(0xFF, 4, ops[0])
	}
	return nil, fmt.Errorf("cpu: no encoding for JMP operand")
}

func encodeDoubleShift(mnemonic string, ops []Operand) ([]byte, error) {
	if len(ops) != 3 || ops[1].Kind != OperandReg16 {
		return nil, fmt.Errorf("cpu: %s needs r/m16, r16 and a count", mnemonic)
	}
	sub := byte(0xA4) // SHLD
	if mnemonic == "SHRD" {
		sub = 0xAC
	}
	switch {
	case ops[2].Kind == OperandImm8:
		return op0FRM(sub, ops[1].Reg, ops[0], byte(ops[2].Imm))
	case ops[2].Kind == OperandReg8 && ops[2].Reg == 1:
		return op0FRM(sub+1, ops[1].Reg, ops[0])
	}
	return nil, fmt.Errorf("cpu: no encoding for %s count operand", mnemonic)
}

func encodeIN(ops []Operand) ([]byte, error) {
	if len(ops) != 2 {
		return nil, fmt.Errorf("cpu: IN needs two operands")
	}
	acc, port := ops[0], ops[1]
	wide := acc.Kind == OperandReg16
	switch {
	case port.Kind == OperandImm8:
		if wide {
			return []byte{0xE5, byte(port.Imm)}, nil
		}
		return []byte{0xE4, byte(port.Imm)}, nil
	case port.Kind == OperandReg16 && port.Reg == 2:
		if wide {
			return []byte{0xED}, nil
		}
		return []byte{0xEC}, nil
	}
	return nil, fmt.Errorf("cpu: no encoding for IN operands")
}

func encodeOUT(ops []Operand) ([]byte, error) {
	if len(ops) != 2 {
		return nil, fmt.Errorf("cpu: OUT needs two operands")
	}
	port, acc := ops[0], ops[1]
	wide := acc.Kind == OperandReg16
	switch {
	case port.Kind == OperandImm8:
		if wide {
			return []byte{0xE7, byte(port.Imm)}, nil
		}
		return []byte{0xE6, byte(port.Imm)}, nil
	case port.Kind == OperandReg16 && port.Reg == 2:
		if wide {
			return []byte{0xEF}, nil
		}
		return []byte{0xEE}, nil
	}
	return nil, fmt.Errorf("cpu: no encoding for OUT operands")
}
