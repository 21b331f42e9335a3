//go:build !windows

package main

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// keyByte maps a raw stdin byte to a matrix (row, col) position. Bytes with
// no Spectrum equivalent are ignored.
var keyByte = map[byte][2]int{
	'1': {3, 0}, '2': {3, 1}, '3': {3, 2}, '4': {3, 3}, '5': {3, 4},
	'0': {4, 0}, '9': {4, 1}, '8': {4, 2}, '7': {4, 3}, '6': {4, 4},
	'q': {2, 0}, 'w': {2, 1}, 'e': {2, 2}, 'r': {2, 3}, 't': {2, 4},
	'p': {5, 0}, 'o': {5, 1}, 'i': {5, 2}, 'u': {5, 3}, 'y': {5, 4},
	'a': {1, 0}, 's': {1, 1}, 'd': {1, 2}, 'f': {1, 3}, 'g': {1, 4},
	'\n': {6, 0}, 'l': {6, 1}, 'k': {6, 2}, 'j': {6, 3}, 'h': {6, 4},
	'z': {0, 1}, 'x': {0, 2}, 'c': {0, 3}, 'v': {0, 4},
	' ': {7, 0}, 'm': {7, 2}, 'n': {7, 3}, 'b': {7, 4},
}

// KeyboardHost puts stdin into raw mode and feeds a KeyboardMatrix from
// keystrokes. Unlike the MMIO ring buffer it is adapted from, key state is
// cleared on a short timer rather than consumed on read - a held key stays
// visible to the bus across many port reads, as real key-repeat would.
// Only instantiated in main.go for interactive use - never in tests.
type KeyboardHost struct {
	matrix       *KeyboardMatrix
	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once
	fd           int
	nonblockSet  bool
	oldTermState *term.State
}

// NewKeyboardHost creates a host adapter that reads stdin into the given matrix.
func NewKeyboardHost(matrix *KeyboardMatrix) *KeyboardHost {
	return &KeyboardHost{
		matrix: matrix,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start sets stdin to non-blocking raw mode and begins reading in a
// goroutine. Each byte presses its mapped key; the key is released after a
// short hold so it doesn't read as stuck down. Call Stop() to restore stdin.
func (h *KeyboardHost) Start() {
	h.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keyboard_host: failed to set raw mode: %v\n", err)
		close(h.done)
		return
	}
	h.oldTermState = oldState

	if err := syscall.SetNonblock(h.fd, true); err != nil {
		fmt.Fprintf(os.Stderr, "keyboard_host: failed to set nonblocking stdin: %v\n", err)
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
		close(h.done)
		return
	}
	h.nonblockSet = true

	go func() {
		defer close(h.done)
		buf := make([]byte, 1)

		for {
			select {
			case <-h.stopCh:
				return
			default:
			}

			n, err := syscall.Read(h.fd, buf)
			if n > 0 {
				h.pressAndRelease(buf[0])
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
}

func (h *KeyboardHost) pressAndRelease(b byte) {
	pos, ok := keyByte[b]
	if !ok {
		return
	}
	h.matrix.SetKey(pos[0], pos[1], true)
	go func() {
		time.Sleep(80 * time.Millisecond)
		h.matrix.SetKey(pos[0], pos[1], false)
	}()
}

// Stop terminates the stdin reading goroutine and restores stdin to blocking mode.
func (h *KeyboardHost) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	<-h.done
	if h.nonblockSet {
		_ = syscall.SetNonblock(h.fd, false)
		h.nonblockSet = false
	}
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
}
