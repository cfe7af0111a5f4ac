// scenario_test.go - end-to-end instruction scenarios, scripted in Lua
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package testscenario

import "testing"

func TestAddCarryOverflow(t *testing.T) {
	err := Run(`
		setreg("CS", 0x0100)
		setreg("IP", 0x0000)
		setbytes(0x0100, 0x0000, {0x00, 0xD8}) -- ADD AL, BL
		setreg("AX", 0x007F)
		setreg("BX", 0x0001)
		step()
		assertEq(getreg("AX") % 0x100, 0x80, "AL")
		assertTrue(not getflag("CF"), "CF")
		assertTrue(getflag("OF"), "OF")
		assertTrue(getflag("SF"), "SF")
		assertTrue(not getflag("ZF"), "ZF")
		assertTrue(getflag("AF"), "AF")
		assertTrue(not getflag("PF"), "PF")
	`)
	if err != nil {
		t.Fatal(err)
	}
}

func TestSubToZero(t *testing.T) {
	err := Run(`
		setreg("CS", 0x0100)
		setreg("IP", 0x0000)
		setbytes(0x0100, 0x0000, {0x29, 0xD8}) -- SUB AX, BX
		setreg("AX", 0x1234)
		setreg("BX", 0x1234)
		step()
		assertEq(getreg("AX"), 0x0000, "AX")
		assertTrue(getflag("ZF"), "ZF")
		assertTrue(not getflag("SF"), "SF")
		assertTrue(not getflag("CF"), "CF")
		assertTrue(not getflag("OF"), "OF")
		assertTrue(not getflag("AF"), "AF")
		assertTrue(getflag("PF"), "PF")
	`)
	if err != nil {
		t.Fatal(err)
	}
}

func TestRepMovsb(t *testing.T) {
	err := Run(`
		setreg("CS", 0x2000)
		setreg("IP", 0x0000)
		setbytes(0x2000, 0x0000, {0xF3, 0xA4}) -- REP MOVSB
		setreg("DS", 0x1000)
		setreg("ES", 0x1000)
		setreg("SI", 0x0000)
		setreg("DI", 0x0010)
		setreg("CX", 4)
		setflag("DF", false)
		setbytes(0x1000, 0x0000, {0xAA, 0xBB, 0xCC, 0xDD})
		step()
		assertEq(getreg("CX"), 0, "CX")
		assertEq(getreg("SI"), 4, "SI")
		assertEq(getreg("DI"), 0x14, "DI")
		assertEq(getmem8(0x1000, 0x0010), 0xAA, "byte0")
		assertEq(getmem8(0x1000, 0x0011), 0xBB, "byte1")
		assertEq(getmem8(0x1000, 0x0012), 0xCC, "byte2")
		assertEq(getmem8(0x1000, 0x0013), 0xDD, "byte3")
	`)
	if err != nil {
		t.Fatal(err)
	}
}

func TestJccRelative(t *testing.T) {
	cases := []struct {
		name string
		zf   string
		ip   string
	}{
		{"taken", "true", "0x0107"},
		{"not-taken", "false", "0x0102"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Run(`
				setreg("CS", 0x0100)
				setreg("IP", 0x0100)
				setbytes(0x0100, 0x0100, {0x74, 0x05}) -- JZ +5
				setflag("ZF", ` + tc.zf + `)
				step()
				assertEq(getreg("IP"), ` + tc.ip + `, "IP")
			`)
			if err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestFarCallRet(t *testing.T) {
	err := Run(`
		setreg("SS", 0x0900)
		setreg("SP", 0xFFFE)
		setreg("CS", 0x0800)
		setreg("IP", 0x0000)
		-- CALL FAR 1000:0200
		setbytes(0x0800, 0x0000, {0x9A, 0x00, 0x02, 0x00, 0x10})
		step()
		assertEq(getreg("CS"), 0x1000, "CS after call")
		assertEq(getreg("IP"), 0x0200, "IP after call")
		assertEq(getreg("SP"), 0xFFFA, "SP after call")
		assertEq(getmem8(0x0900, 0xFFFA) + (getmem8(0x0900, 0xFFFB) * 256), 0x0005, "pushed IP")
		assertEq(getmem8(0x0900, 0xFFFC) + (getmem8(0x0900, 0xFFFD) * 256), 0x0800, "pushed CS")

		setbytes(0x1000, 0x0200, {0xCB}) -- RETF
		step()
		assertEq(getreg("CS"), 0x0800, "CS after retf")
		assertEq(getreg("IP"), 0x0005, "IP after retf")
		assertEq(getreg("SP"), 0xFFFE, "SP after retf")
	`)
	if err != nil {
		t.Fatal(err)
	}
}

func TestShldByOneSetsCarryAndOverflow(t *testing.T) {
	err := Run(`
		setreg("CS", 0x0100)
		setreg("IP", 0x0000)
		setbytes(0x0100, 0x0000, {0x0F, 0xA4, 0xD8, 0x01}) -- SHLD AX, BX, 1
		setreg("AX", 0x8000)
		setreg("BX", 0x8000)
		step()
		assertEq(getreg("AX"), 0x0001, "AX")
		assertTrue(getflag("CF"), "CF is the bit shifted out of AX")
		assertTrue(getflag("OF"), "OF set: top bit changed on a 1-bit shift")
		assertTrue(not getflag("ZF"), "ZF")
		assertTrue(not getflag("SF"), "SF")
	`)
	if err != nil {
		t.Fatal(err)
	}
}

func TestShrdByOneSetsCarryAndOverflow(t *testing.T) {
	err := Run(`
		setreg("CS", 0x0100)
		setreg("IP", 0x0000)
		setbytes(0x0100, 0x0000, {0x0F, 0xAC, 0xD8, 0x01}) -- SHRD AX, BX, 1
		setreg("AX", 0x0001)
		setreg("BX", 0x0001)
		step()
		assertEq(getreg("AX"), 0x8000, "AX")
		assertTrue(getflag("CF"), "CF is the bit shifted out of AX")
		assertTrue(getflag("OF"), "OF set: top bit changed on a 1-bit shift")
		assertTrue(getflag("SF"), "SF")
		assertTrue(not getflag("ZF"), "ZF")
	`)
	if err != nil {
		t.Fatal(err)
	}
}

func TestInt21Terminate(t *testing.T) {
	err := RunWithBIOS(`
		setreg("CS", 0x0100)
		setreg("IP", 0x0000)
		setbytes(0x0100, 0x0000, {0xCD, 0x21}) -- INT 21h
		setreg("AX", 0x4C00) -- AH=4Ch
		step()
		assertTrue(halted(), "halted")
		assertTrue(not fatal(), "not a fatal decode error")
	`)
	if err != nil {
		t.Fatal(err)
	}
}
