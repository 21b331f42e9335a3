// emulator.go - owns the CPU, bus, ULA, tape, and keyboard, and runs them.

package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

// framesPerSec and cyclesPerFrame match the real 48K Spectrum's timing:
// a 3.5MHz Z80 clock and a 50Hz interrupt driven by the ULA's vertical sync.
const (
	z80ClockHz    = 3_500_000
	framesPerSec  = 50
	cyclesPerFrame = z80ClockHz / framesPerSec
)

// Emulator wires together one Z80 core, its bus, the ULA decoder, the
// keyboard matrix, and an optional tape engine, and drives the CPU on its
// own goroutine paced against wall-clock frames.
type Emulator struct {
	cpu      *CPU_Z80
	bus      *SpectrumBus
	ula      *ULADecoder
	keyboard *KeyboardMatrix
	tape     *TapEngine

	mu      sync.Mutex
	paused  bool
	resume  *sync.Cond
	dumpSeq int

	tracer *DisasmTracer
}

// SetTracer attaches a disassembly tracer; Run logs one line per
// instruction through it when set. Pass nil to disable tracing.
func (e *Emulator) SetTracer(t *DisasmTracer) { e.tracer = t }

// NewEmulator assembles a fresh machine. Load ROM and any snapshot/tape
// image into the returned bus before calling Run.
func NewEmulator() *Emulator {
	ula := NewULADecoder()
	keyboard := NewKeyboardMatrix()
	bus := NewSpectrumBus(ula, keyboard)
	tape := NewTapEngine()
	bus.SetTapeSource(tape)

	e := &Emulator{
		cpu:      NewCPU_Z80(bus),
		bus:      bus,
		ula:      ula,
		keyboard: keyboard,
		tape:     tape,
	}
	e.resume = sync.NewCond(&e.mu)
	return e
}

// Bus exposes the machine's memory/IO bus, e.g. to load a ROM or snapshot.
func (e *Emulator) Bus() *SpectrumBus { return e.bus }

// CPU exposes the Z80 core, e.g. to restore register state from a snapshot.
func (e *Emulator) CPU() *CPU_Z80 { return e.cpu }

// Tape exposes the tape engine, e.g. to load a .tap image and start playback.
func (e *Emulator) Tape() *TapEngine { return e.tape }

// ULA exposes the video decoder, wired into a TerminalRenderer by main.
func (e *Emulator) ULA() *ULADecoder { return e.ula }

// Keyboard exposes the matrix, wired into a KeyboardHost by main.
func (e *Emulator) Keyboard() *KeyboardMatrix { return e.keyboard }

// Pause suspends CPU execution before the next frame boundary.
func (e *Emulator) Pause() {
	e.mu.Lock()
	e.paused = true
	e.mu.Unlock()
}

// Resume wakes a paused CPU goroutine.
func (e *Emulator) Resume() {
	e.mu.Lock()
	e.paused = false
	e.mu.Unlock()
	e.resume.Broadcast()
}

func (e *Emulator) waitIfPaused(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.paused {
		if ctx.Err() != nil {
			return false
		}
		e.resume.Wait()
	}
	return ctx.Err() == nil
}

// Run drives the CPU one frame at a time until ctx is canceled: each frame
// steps the core for cyclesPerFrame T-states and latches a one-shot 50Hz
// interrupt, mirroring the real ULA's vertical-blank IRQ. The tape engine
// is not stepped here - it advances lazily, inside the bus's port 0xFE
// reads, by however many T-states have elapsed since it was last polled,
// so a ROM loader's IN-driven bit-timing loop observes pulse edges at the
// resolution it actually polls at rather than one batched jump per frame.
// maxInstructions, if nonzero, stops the CPU after that many Step calls
// regardless of ctx (the -i CLI flag).
func (e *Emulator) Run(ctx context.Context, maxInstructions uint64) {
	ticker := time.NewTicker(time.Second / framesPerSec)
	defer ticker.Stop()
	if e.tracer != nil {
		defer e.tracer.Flush()
	}

	var executed uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if !e.waitIfPaused(ctx) {
			return
		}

		frameStart := e.bus.Cycles()
		for e.bus.Cycles()-frameStart < cyclesPerFrame {
			if e.tracer != nil {
				e.tracer.Trace()
			}
			e.cpu.Step()
			executed++
			if maxInstructions != 0 && executed >= maxInstructions {
				return
			}
		}
		e.cpu.RequestInterrupt(0xFF)
	}
}

// DumpMemory writes the full 64KB RAM image to a sequentially numbered
// memory_dump_NNN.bin file in the current directory, for a SIGUSR1 request.
func (e *Emulator) DumpMemory() error {
	e.mu.Lock()
	e.dumpSeq++
	seq := e.dumpSeq
	e.mu.Unlock()

	name := fmt.Sprintf("memory_dump_%03d.bin", seq)
	mem := e.bus.Memory()
	return os.WriteFile(name, mem[:], 0o644)
}
