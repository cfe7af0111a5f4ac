// dispatch.go - opcode dispatch table construction
//
// Populates the base-page and 0F-escape-page function-pointer tables once,
// at CPU construction. Most entries bind a method expression directly;
// encodings that carry a register or condition code in the opcode byte use
// an index-capturing closure instead.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package cpu

func (c *CPU) initBaseOps() {
	t := &c.baseOps

	aluFamily := func(base byte, op byte) {
		t[base+0] = func(c *CPU) { c.aluEbGb(op) }
		t[base+1] = func(c *CPU) { c.aluEvGv(op) }
		t[base+2] = func(c *CPU) { c.aluGbEb(op) }
		t[base+3] = func(c *CPU) { c.aluGvEv(op) }
		t[base+4] = func(c *CPU) { c.aluALIb(op) }
		t[base+5] = func(c *CPU) { c.aluAXIv(op) }
	}
	aluFamily(0x00, aluADD)
	aluFamily(0x08, aluOR)
	aluFamily(0x10, aluADC)
	aluFamily(0x18, aluSBB)
	aluFamily(0x20, aluAND)
	aluFamily(0x28, aluSUB)
	aluFamily(0x30, aluXOR)
	aluFamily(0x38, aluCMP)

	t[0x06] = func(c *CPU) { c.pushSeg(SegES) }
	t[0x07] = func(c *CPU) { c.popSeg(SegES) }
	t[0x0E] = func(c *CPU) { c.pushSeg(SegCS) }
	t[0x16] = func(c *CPU) { c.pushSeg(SegSS) }
	t[0x17] = func(c *CPU) { c.popSeg(SegSS) }
	t[0x1E] = func(c *CPU) { c.pushSeg(SegDS) }
	t[0x1F] = func(c *CPU) { c.popSeg(SegDS) }

	t[0x27] = (*CPU).opDAA
	t[0x2F] = (*CPU).opDAS
	t[0x37] = (*CPU).opAAA
	t[0x3F] = (*CPU).opAAS

	for i := byte(0); i < 8; i++ {
		idx := i
		t[0x40+idx] = func(c *CPU) { c.incReg16(idx) }
		t[0x48+idx] = func(c *CPU) { c.decReg16(idx) }
		t[0x50+idx] = func(c *CPU) { c.pushReg16(idx) }
		t[0x58+idx] = func(c *CPU) { c.popReg16(idx) }
		t[0xB0+idx] = func(c *CPU) { c.movRegImm8(idx) }
		t[0xB8+idx] = func(c *CPU) { c.movRegImm16(idx) }
	}
	for i := byte(1); i < 8; i++ { // AX,AX (0x90) is NOP, not a real XCHG entry
		idx := i
		t[0x90+idx] = func(c *CPU) { c.xchgAXReg(idx) }
	}

	t[0x60] = (*CPU).opPUSHA
	t[0x61] = (*CPU).opPOPA

	t[0x68] = (*CPU).opPushImm16
	t[0x69] = (*CPU).opIMULGvEvIv
	t[0x6A] = (*CPU).opPushImm8
	t[0x6B] = (*CPU).opIMULGvEvIb
	t[0x6C] = (*CPU).opINSB
	t[0x6D] = (*CPU).opINSW
	t[0x6E] = (*CPU).opOUTSB
	t[0x6F] = (*CPU).opOUTSW

	for i := byte(0); i < 16; i++ {
		cc := i
		t[0x70+cc] = func(c *CPU) { c.jccShort(cc) }
	}

	t[0x80] = (*CPU).grp1EbIb
	t[0x81] = (*CPU).grp1EvIv
	t[0x82] = (*CPU).grp1EbIb
	t[0x83] = (*CPU).grp1EvIb
	t[0x84] = (*CPU).testEbGb
	t[0x85] = (*CPU).testEvGv
	t[0x86] = (*CPU).xchgEbGb
	t[0x87] = (*CPU).xchgEvGv
	t[0x88] = (*CPU).movEbGb
	t[0x89] = (*CPU).movEvGv
	t[0x8A] = (*CPU).movGbEb
	t[0x8B] = (*CPU).movGvEv
	t[0x8C] = (*CPU).movEvSreg
	t[0x8D] = (*CPU).opLEA
	t[0x8E] = (*CPU).movSregEv
	t[0x8F] = (*CPU).grp1aEv

	t[0x90] = (*CPU).opNOP
	t[0x98] = (*CPU).opCBW
	t[0x99] = (*CPU).opCWD
	t[0x9A] = (*CPU).opCALLFar
	t[0x9B] = (*CPU).opWAIT
	t[0x9C] = (*CPU).opPUSHF
	t[0x9D] = (*CPU).opPOPF
	t[0x9E] = (*CPU).opSAHF
	t[0x9F] = (*CPU).opLAHF

	t[0xA0] = (*CPU).movALMoffs
	t[0xA1] = (*CPU).movAXMoffs
	t[0xA2] = (*CPU).movMoffsAL
	t[0xA3] = (*CPU).movMoffsAX
	t[0xA4] = (*CPU).opMOVSB
	t[0xA5] = (*CPU).opMOVSW
	t[0xA6] = (*CPU).opCMPSB
	t[0xA7] = (*CPU).opCMPSW
	t[0xA8] = (*CPU).testALIb
	t[0xA9] = (*CPU).testAXIv
	t[0xAA] = (*CPU).opSTOSB
	t[0xAB] = (*CPU).opSTOSW
	t[0xAC] = (*CPU).opLODSB
	t[0xAD] = (*CPU).opLODSW
	t[0xAE] = (*CPU).opSCASB
	t[0xAF] = (*CPU).opSCASW

	t[0xC0] = (*CPU).grp2EbIb
	t[0xC1] = (*CPU).grp2EvIb
	t[0xC2] = (*CPU).opRETNearImm
	t[0xC3] = (*CPU).opRETNear
	t[0xC4] = (*CPU).opLES
	t[0xC5] = (*CPU).opLDS
	t[0xC6] = (*CPU).grp11Eb
	t[0xC7] = (*CPU).grp11Ev
	t[0xC8] = (*CPU).opENTER
	t[0xC9] = (*CPU).opLEAVE
	t[0xCA] = (*CPU).opRETFarImm
	t[0xCB] = (*CPU).opRETFar
	t[0xCC] = (*CPU).opINT3
	t[0xCD] = (*CPU).opINTImm
	t[0xCE] = (*CPU).opINTO
	t[0xCF] = (*CPU).opIRET

	t[0xD0] = (*CPU).grp2Eb1
	t[0xD1] = (*CPU).grp2Ev1
	t[0xD2] = (*CPU).grp2EbCL
	t[0xD3] = (*CPU).grp2EvCL
	t[0xD4] = (*CPU).opAAMFetch
	t[0xD5] = (*CPU).opAADFetch
	t[0xD7] = (*CPU).opXLAT

	t[0xE0] = (*CPU).opLOOPNE
	t[0xE1] = (*CPU).opLOOPE
	t[0xE2] = (*CPU).opLOOP
	t[0xE3] = (*CPU).opJCXZ
	t[0xE4] = (*CPU).opINALIb
	t[0xE5] = (*CPU).opINAXIb
	t[0xE6] = (*CPU).opOUTIbAL
	t[0xE7] = (*CPU).opOUTIbAX
	t[0xE8] = (*CPU).opCALLNear
	t[0xE9] = (*CPU).opJMPNear
	t[0xEA] = (*CPU).opJMPFar
	t[0xEB] = (*CPU).opJMPShort
	t[0xEC] = (*CPU).opINALDX
	t[0xED] = (*CPU).opINAXDX
	t[0xEE] = (*CPU).opOUTDXAL
	t[0xEF] = (*CPU).opOUTDXAX

	t[0xF4] = (*CPU).opHLT
	t[0xF5] = (*CPU).opCMC
	t[0xF6] = (*CPU).grp3Eb
	t[0xF7] = (*CPU).grp3Ev
	t[0xF8] = (*CPU).opCLC
	t[0xF9] = (*CPU).opSTC
	t[0xFA] = (*CPU).opCLI
	t[0xFB] = (*CPU).opSTI
	t[0xFC] = (*CPU).opCLD
	t[0xFD] = (*CPU).opSTD
	t[0xFE] = (*CPU).grp4Eb
	t[0xFF] = (*CPU).grp5Ev
}

func (c *CPU) initExt0F() {
	t := &c.ext0F

	for i := byte(0); i < 16; i++ {
		cc := i
		t[0x80+cc] = func(c *CPU) { c.jccNear(cc) }
	}

	t[0xA4] = (*CPU).opSHLDIb
	t[0xA5] = (*CPU).opSHLDCL
	t[0xAC] = (*CPU).opSHRDIb
	t[0xAD] = (*CPU).opSHRDCL
	t[0xAF] = (*CPU).imulGvEv
	t[0xB6] = (*CPU).movzxGvEb
	t[0xBE] = (*CPU).movsxGvEb
}
