// scenario.go - Lua-scripted CPU scenario runner
//
// Each end-to-end scenario (ADD carry/overflow, SUB to zero, REP MOVSB, Jcc
// relative, far CALL/RETF, INT 21h termination) is a short Lua fixture that
// pokes registers/memory, steps the CPU, and asserts final state through a
// narrow set of Go-registered functions. Keeps the fixtures data rather than
// Go test boilerplate.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package testscenario

import (
	"fmt"
	"io"

	lua "github.com/yuin/gopher-lua"

	"github.com/zaynotley/x86dosemu/bios"
	"github.com/zaynotley/x86dosemu/cpu"
	"github.com/zaynotley/x86dosemu/devices"
)

// Run executes a Lua scenario script against a fresh CPU wired to a
// headless device bus. The script drives the CPU through the globals
// registered in bind and fails via Lua's error() on any assertion miss.
func Run(script string) error {
	c := cpu.New(devices.New(nil))
	return runScript(c, script)
}

// RunWithBIOS is Run but with the standard trapped interrupt vectors
// (10h/16h/1Ah/20h/21h/33h) installed, for scenarios that exercise DOS
// services such as program termination.
func RunWithBIOS(script string) error {
	bus := devices.New(nil)
	c := cpu.New(bus)
	bios.New(bus, io.Discard, nil).Install(c)
	return runScript(c, script)
}

func runScript(c *cpu.CPU, script string) error {
	L := lua.NewState()
	defer L.Close()

	bind(L, c)

	if err := L.DoString(script); err != nil {
		return fmt.Errorf("testscenario: %w", err)
	}
	return nil
}

func regPtr(c *cpu.CPU, name string) (*uint16, bool) {
	switch name {
	case "AX":
		return &c.AX, true
	case "BX":
		return &c.BX, true
	case "CX":
		return &c.CX, true
	case "DX":
		return &c.DX, true
	case "SI":
		return &c.SI, true
	case "DI":
		return &c.DI, true
	case "BP":
		return &c.BP, true
	case "SP":
		return &c.SP, true
	case "IP":
		return &c.IP, true
	case "CS":
		return &c.CS, true
	case "DS":
		return &c.DS, true
	case "ES":
		return &c.ES, true
	case "SS":
		return &c.SS, true
	}
	return nil, false
}

func flagBit(c *cpu.CPU, name string) (bool, bool) {
	switch name {
	case "CF":
		return c.CF(), true
	case "PF":
		return c.PF(), true
	case "AF":
		return c.AF(), true
	case "ZF":
		return c.ZF(), true
	case "SF":
		return c.SF(), true
	case "DF":
		return c.DF(), true
	case "OF":
		return c.OF(), true
	}
	return false, false
}

var flagBits = map[string]uint16{
	"CF": cpu.FlagCF, "PF": cpu.FlagPF, "AF": cpu.FlagAF, "ZF": cpu.FlagZF,
	"SF": cpu.FlagSF, "TF": cpu.FlagTF, "IF": cpu.FlagIF, "DF": cpu.FlagDF,
	"OF": cpu.FlagOF,
}

func bind(L *lua.LState, c *cpu.CPU) {
	L.SetGlobal("setflag", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		v := L.CheckBool(2)
		bit, ok := flagBits[name]
		if !ok {
			L.RaiseError("unknown flag %q", name)
			return 0
		}
		if v {
			c.Flags |= bit
		} else {
			c.Flags &^= bit
		}
		return 0
	}))

	L.SetGlobal("setreg", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		val := uint16(L.CheckNumber(2))
		p, ok := regPtr(c, name)
		if !ok {
			L.RaiseError("unknown register %q", name)
			return 0
		}
		*p = val
		return 0
	}))

	L.SetGlobal("getreg", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		p, ok := regPtr(c, name)
		if !ok {
			L.RaiseError("unknown register %q", name)
			return 0
		}
		L.Push(lua.LNumber(*p))
		return 1
	}))

	L.SetGlobal("getflag", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		v, ok := flagBit(c, name)
		if !ok {
			L.RaiseError("unknown flag %q", name)
			return 0
		}
		L.Push(lua.LBool(v))
		return 1
	}))

	L.SetGlobal("setmem8", L.NewFunction(func(L *lua.LState) int {
		seg := uint16(L.CheckNumber(1))
		off := uint16(L.CheckNumber(2))
		val := byte(L.CheckNumber(3))
		cpu.WriteByteAt(&c.Mem, seg, off, val)
		return 0
	}))

	L.SetGlobal("getmem8", L.NewFunction(func(L *lua.LState) int {
		seg := uint16(L.CheckNumber(1))
		off := uint16(L.CheckNumber(2))
		L.Push(lua.LNumber(cpu.ReadByteAt(&c.Mem, seg, off)))
		return 1
	}))

	L.SetGlobal("setbytes", L.NewFunction(func(L *lua.LState) int {
		seg := uint16(L.CheckNumber(1))
		off := uint16(L.CheckNumber(2))
		tbl := L.CheckTable(3)
		i := 0
		tbl.ForEach(func(_, v lua.LValue) {
			cpu.WriteByteAt(&c.Mem, seg, off+uint16(i), byte(lua.LVAsNumber(v)))
			i++
		})
		return 0
	}))

	L.SetGlobal("step", L.NewFunction(func(L *lua.LState) int {
		if err := c.Step(); err != nil {
			L.RaiseError("step failed: %v", err)
		}
		return 0
	}))

	L.SetGlobal("halted", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(c.Halted))
		return 1
	}))

	L.SetGlobal("fatal", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(c.FatalError()))
		return 1
	}))

	L.SetGlobal("assertEq", L.NewFunction(func(L *lua.LState) int {
		got := L.CheckNumber(1)
		want := L.CheckNumber(2)
		msg := L.OptString(3, "")
		if got != want {
			L.RaiseError("assertEq failed (%s): got %v want %v", msg, got, want)
		}
		return 0
	}))

	L.SetGlobal("assertTrue", L.NewFunction(func(L *lua.LState) int {
		got := L.CheckBool(1)
		msg := L.OptString(2, "")
		if !got {
			L.RaiseError("assertTrue failed (%s)", msg)
		}
		return 0
	}))
}
