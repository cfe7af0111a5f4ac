// keyboard.go - raw-stdin keyboard host adapter for BIOS INT 16h/21h
//
// Puts stdin in raw mode and buffers single bytes so bios.Keyboard can be
// satisfied without blocking the CPU goroutine on a line-buffered read.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// Keyboard reads raw stdin in a background goroutine and exposes it through
// the bios.Keyboard interface (ReadKey/KeyAvailable).
type Keyboard struct {
	fd           int
	oldTermState *term.State
	nonblockSet  bool

	mu      sync.Mutex
	pending []byte

	stopCh  chan struct{}
	done    chan struct{}
	stopped sync.Once
}

// NewKeyboard creates a host keyboard adapter; call Start before use.
func NewKeyboard() *Keyboard {
	return &Keyboard{
		fd:     int(os.Stdin.Fd()),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start puts stdin in raw, non-blocking mode and begins buffering keystrokes.
func (k *Keyboard) Start() error {
	oldState, err := term.MakeRaw(k.fd)
	if err != nil {
		close(k.done)
		return fmt.Errorf("keyboard: failed to set raw mode: %w", err)
	}
	k.oldTermState = oldState

	if err := syscall.SetNonblock(k.fd, true); err != nil {
		_ = term.Restore(k.fd, k.oldTermState)
		k.oldTermState = nil
		close(k.done)
		return fmt.Errorf("keyboard: failed to set nonblocking stdin: %w", err)
	}
	k.nonblockSet = true

	go func() {
		defer close(k.done)
		buf := make([]byte, 1)
		for {
			select {
			case <-k.stopCh:
				return
			default:
			}
			n, err := syscall.Read(k.fd, buf)
			if n > 0 {
				b := buf[0]
				// Modern terminals send 0x7F (DEL) for Backspace; DOS expects
				// 0x08 (BS). Enter arrives as CR in raw mode, which is already
				// what INT 16h reports, so only DEL needs translating.
				if b == 0x7F {
					b = 0x08
				}
				k.mu.Lock()
				k.pending = append(k.pending, b)
				k.mu.Unlock()
			}
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			if err != nil {
				return
			}
			if n == 0 {
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()
	return nil
}

// Stop restores stdin to its original blocking cooked mode.
func (k *Keyboard) Stop() {
	k.stopped.Do(func() { close(k.stopCh) })
	<-k.done
	if k.nonblockSet {
		_ = syscall.SetNonblock(k.fd, false)
		k.nonblockSet = false
	}
	if k.oldTermState != nil {
		_ = term.Restore(k.fd, k.oldTermState)
		k.oldTermState = nil
	}
}

// KeyAvailable reports whether ReadKey would return a key immediately.
func (k *Keyboard) KeyAvailable() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.pending) > 0
}

// ReadKey waits for the next buffered byte and returns it as (scan, ascii);
// scan is left at zero since this adapter has no host scan-code source, only
// ASCII. ok is false once the stdin reader has stopped with nothing buffered.
func (k *Keyboard) ReadKey() (scan, ascii byte, ok bool) {
	for {
		k.mu.Lock()
		if len(k.pending) > 0 {
			ascii = k.pending[0]
			k.pending = k.pending[1:]
			k.mu.Unlock()
			return 0, ascii, true
		}
		k.mu.Unlock()
		select {
		case <-k.done:
			return 0, 0, false
		case <-time.After(5 * time.Millisecond):
		}
	}
}
