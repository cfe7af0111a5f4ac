// main.go - x86dosemu command line entry point
//
// Loads a .COM or .EXE image, wires the CPU to the pseudo-device bus and
// BIOS/DOS trap handlers, and drives execution: one synchronous loop runs a
// bounded instruction burst per video frame, then the same goroutine (no one
// else touches devices.Bus) advances the PIT tick counter and the CGA/VGA
// retrace toggle before the next burst.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zaynotley/x86dosemu/bios"
	"github.com/zaynotley/x86dosemu/cpu"
	"github.com/zaynotley/x86dosemu/devices"
	"github.com/zaynotley/x86dosemu/loader"
)

// clockHz approximates the 8088's 4.77 MHz clock; framesPerSecond is the
// CGA/VGA vertical retrace rate. cyclesPerFrame is ExecuteFrame's burst
// size, the target cycle count per video frame.
const (
	clockHz        = 4_772_727
	framesPerSecond = 60
	cyclesPerFrame = clockHz / framesPerSecond
)

// pitTicksPerFrame is the PIT's standard 18.2 Hz tick rate expressed as a
// fraction of one 60 Hz frame; pitAccum in run carries the remainder across
// frames so the tick rate stays correct on average.
const pitTicksPerFrame = 18.2 / framesPerSecond

func main() {
	var strict bool
	var headless bool

	rootCmd := &cobra.Command{
		Use:   "x86dosemu [file]",
		Short: "16-bit x86 real-mode DOS .COM/.EXE emulator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], strict, headless)
		},
	}
	rootCmd.Flags().BoolVar(&strict, "strict", false, "stop on the first unimplemented opcode instead of logging and continuing")
	rootCmd.Flags().BoolVar(&headless, "headless", false, "run without touching the host terminal (no raw keyboard mode)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string, strict, headless bool) error {
	image, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	bus := devices.New(&devices.Logger{Notef: func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}})

	c := cpu.New(bus)
	c.StrictUnimplemented = strict

	if err := loadImage(c, path, image); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	var kbd *Keyboard
	var biosKbd bios.Keyboard
	if !headless {
		kbd = NewKeyboard()
		if err := kbd.Start(); err != nil {
			return err
		}
		defer kbd.Stop()
		biosKbd = kbd
	}

	b := bios.New(bus, os.Stdout, biosKbd)
	b.Install(c)

	frameTicker := time.NewTicker(time.Second / framesPerSecond)
	defer frameTicker.Stop()

	pitAccum := 0.0
	for c.Running() {
		<-frameTicker.C

		if err := c.ExecuteFrame(cyclesPerFrame); err != nil {
			return fmt.Errorf("execution stopped at %04X:%04X: %w", c.CS, c.IP, err)
		}

		// Between bursts, and only between bursts, advance the PIT and
		// retrace state - the CPU is not executing here, so this loop stays
		// the single writer devices.Bus requires.
		bus.ToggleRetrace()
		pitAccum += pitTicksPerFrame
		for pitAccum >= 1 {
			bus.PITTick()
			pitAccum--
		}
	}
	return nil
}

// loadImage dispatches to the .COM or .EXE loader by extension, falling back
// to sniffing the MZ signature for extensionless images.
func loadImage(c *cpu.CPU, path string, image []byte) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".exe":
		return loader.LoadEXE(c, image)
	case ".com":
		return loader.LoadCOM(c, image)
	default:
		if bytes.HasPrefix(image, []byte("MZ")) || bytes.HasPrefix(image, []byte("ZM")) {
			return loader.LoadEXE(c, image)
		}
		return loader.LoadCOM(c, image)
	}
}
