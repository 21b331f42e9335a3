// bus.go - Z80 bus wiring a flat 64KB memory image to the ULA, keyboard, and tape.

package main

// TapeSource supplies the EAR bit sampled on port 0xFE reads. ReadEar takes
// the bus's running T-state count so the tape engine can advance its pulse
// state machine by exactly the cycles elapsed since the last poll, rather
// than being driven on some unrelated schedule. tap_engine.go implements
// it; a nil TapeSource reads as a constant high EAR line (no cassette motor
// running), matching a real machine with nothing plugged in.
type TapeSource interface {
	ReadEar(cycle uint64) bool
}

// SpectrumBus is the Z80Bus implementation for a 48K Spectrum: a flat
// 64KB RAM image (the first 16KB is ROM and write-protected once loaded),
// the ULA decoder for VRAM/border, the keyboard matrix, and an optional
// tape source for EAR input - all multiplexed through port 0xFE exactly as
// the real ULA does.
type SpectrumBus struct {
	mem      [0x10000]byte
	romSize  int
	ula      *ULADecoder
	keyboard *KeyboardMatrix
	tape     TapeSource
	cycles   uint64
}

// NewSpectrumBus wires a bus around the given ULA decoder and keyboard matrix.
func NewSpectrumBus(ula *ULADecoder, keyboard *KeyboardMatrix) *SpectrumBus {
	return &SpectrumBus{ula: ula, keyboard: keyboard}
}

// SetTapeSource attaches (or detaches, with nil) the EAR input source.
func (b *SpectrumBus) SetTapeSource(t TapeSource) {
	b.tape = t
}

// LoadROM copies data into the bottom of the address space and marks that
// range read-only for subsequent Write calls.
func (b *SpectrumBus) LoadROM(data []byte) {
	n := copy(b.mem[0:], data)
	b.romSize = n
}

// LoadAt copies data into RAM starting at addr, bypassing ROM protection -
// used to load snapshots, which may legitimately overwrite 0x0000-0x3FFF.
func (b *SpectrumBus) LoadAt(addr uint16, data []byte) {
	for i, v := range data {
		b.mem[int(addr)+i] = v
	}
}

// Memory returns the bus's backing 64KB array for the ULA decoder and
// snapshot dumper to read directly.
func (b *SpectrumBus) Memory() *[0x10000]byte {
	return &b.mem
}

func (b *SpectrumBus) Read(addr uint16) byte {
	return b.mem[addr]
}

func (b *SpectrumBus) Write(addr uint16, value byte) {
	if int(addr) < b.romSize {
		return
	}
	b.mem[addr] = value
}

// In reads port 0xFE's keyboard row / EAR status; the real ULA decodes only
// address bit 0, so any even port address reaches it (IN A,(n) with n even,
// or IN r,(C) with C even).
func (b *SpectrumBus) In(port uint16) byte {
	if port&0x01 != 0 {
		return 0xFF
	}
	row := b.keyboard.ReadPort(uint8(port >> 8))
	result := row | 0xA0 // bits 5 and 7 always read high
	if b.tape == nil || b.tape.ReadEar(b.cycles) {
		result |= 0x40
	}
	return result
}

// Out writes port 0xFE's border/MIC/speaker latch; only the border bits
// (0-2) are observable here since audio output is out of scope.
func (b *SpectrumBus) Out(port uint16, value byte) {
	if port&0x01 != 0 {
		return
	}
	b.ula.SetBorder(value)
}

func (b *SpectrumBus) Tick(cycles int) {
	b.cycles += uint64(cycles)
}

// Cycles returns the running T-state count since the bus was created or
// last reset, for cycle-budget-driven frame stepping.
func (b *SpectrumBus) Cycles() uint64 {
	return b.cycles
}

// ResetCycles zeroes the T-state counter at the start of a new frame.
func (b *SpectrumBus) ResetCycles() {
	b.cycles = 0
}
