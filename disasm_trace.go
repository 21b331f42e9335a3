// disasm_trace.go - one-line-per-instruction disassembly log for -D/--disassemble.

package main

import (
	"bufio"
	"fmt"
	"io"
)

// DisasmTracer writes one decoded instruction line per Step call to out,
// reading ahead from the bus at the CPU's current PC before it executes.
type DisasmTracer struct {
	cpu *CPU_Z80
	bus *SpectrumBus
	out *bufio.Writer
}

// NewDisasmTracer returns a tracer for cpu/bus writing to out.
func NewDisasmTracer(cpu *CPU_Z80, bus *SpectrumBus, out io.Writer) *DisasmTracer {
	return &DisasmTracer{cpu: cpu, bus: bus, out: bufio.NewWriter(out)}
}

// Trace disassembles and logs the single instruction at the CPU's current
// PC. Call this immediately before cpu.Step().
func (d *DisasmTracer) Trace() {
	pc := uint64(d.cpu.PC)
	lines := disassembleZ80(d.readMem, pc, 1)
	if len(lines) == 0 {
		return
	}
	l := lines[0]
	fmt.Fprintf(d.out, "%04X  %-11s  %s\n", l.Address, l.HexBytes, l.Mnemonic)
}

func (d *DisasmTracer) readMem(addr uint64, size int) []byte {
	out := make([]byte, size)
	for i := 0; i < size; i++ {
		out[i] = d.bus.Read(uint16(addr) + uint16(i))
	}
	return out
}

// Flush writes any buffered output to the underlying writer.
func (d *DisasmTracer) Flush() {
	d.out.Flush()
}
