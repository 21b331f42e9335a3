// main.go - CLI entrypoint: flag parsing, ROM loading, signal handling, and
// the CPU/renderer goroutine pair that makes up a running machine.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const (
	version    = "0.1.0"
	maxROMSize = 16 * 1024
)

func usage() {
	fmt.Fprintf(os.Stderr, `spectrum48 - a Sinclair ZX Spectrum 48K emulator

Usage:
  spectrum48 [options]

Options:
  -r, --rom FILE            load up to 16KB of ROM at 0x0000
  -d, --disk FILE           reserved, currently a no-op
  -i, --instructions N      stop after N instructions executed (0 = unlimited)
  -D, --disassemble FILE    append a one-line disassembly per executed instruction
  -h, --help                show this help and exit
  -v, --version             show version and exit
`)
}

func main() {
	os.Exit(run())
}

// run parses arguments, assembles the machine, and drives it to completion,
// returning the process exit code. Kept separate from main so os.Exit (which
// skips deferred cleanup) only ever happens at the outermost call site.
func run() int {
	var romPath, diskPath, disasmPath string
	var maxInstructions uint64
	var showHelp, showVersion bool

	fs := flag.NewFlagSet("spectrum48", flag.ContinueOnError)
	fs.Usage = usage
	fs.StringVar(&romPath, "r", "", "load up to 16KB of ROM at 0x0000")
	fs.StringVar(&romPath, "rom", "", "load up to 16KB of ROM at 0x0000")
	fs.StringVar(&diskPath, "d", "", "reserved, currently a no-op")
	fs.StringVar(&diskPath, "disk", "", "reserved, currently a no-op")
	fs.Uint64Var(&maxInstructions, "i", 0, "stop after N instructions (0 = unlimited)")
	fs.Uint64Var(&maxInstructions, "instructions", 0, "stop after N instructions (0 = unlimited)")
	fs.StringVar(&disasmPath, "D", "", "append a one-line disassembly per executed instruction")
	fs.StringVar(&disasmPath, "disassemble", "", "append a one-line disassembly per executed instruction")
	fs.BoolVar(&showHelp, "h", false, "show help and exit")
	fs.BoolVar(&showHelp, "help", false, "show help and exit")
	fs.BoolVar(&showVersion, "v", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return 2
	}
	if showHelp {
		usage()
		return 0
	}
	if showVersion {
		fmt.Println("spectrum48", version)
		return 0
	}

	emu := NewEmulator()

	if romPath != "" {
		data, err := os.ReadFile(romPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "main: failed to read ROM %q: %v\n", romPath, err)
			return 1
		}
		if len(data) > maxROMSize {
			fmt.Fprintf(os.Stderr, "main: ROM %q is %d bytes, larger than the 16KB limit\n", romPath, len(data))
			return 1
		}
		emu.Bus().LoadROM(data)
	}

	if disasmPath != "" {
		f, err := os.OpenFile(disasmPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "main: failed to open disassembly log %q: %v\n", disasmPath, err)
			return 1
		}
		defer f.Close()
		emu.SetTracer(NewDisasmTracer(emu.CPU(), emu.Bus(), f))
	}

	renderer := NewTerminalRenderer(emu.ULA(), emu.Bus(), RenderModeBlock, os.Stdout)
	renderer.Init()
	defer renderer.Close()

	keyboardHost := NewKeyboardHost(emu.Keyboard())
	keyboardHost.Start()
	defer keyboardHost.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGQUIT, syscall.SIGUSR1)
	defer signal.Stop(sigCh)

	go func() {
		for sig := range sigCh {
			switch sig {
			case os.Interrupt, syscall.SIGQUIT:
				cancel()
				return
			case syscall.SIGUSR1:
				if err := emu.DumpMemory(); err != nil {
					fmt.Fprintf(os.Stderr, "main: memory dump failed: %v\n", err)
				}
			}
		}
	}()

	go renderer.RunLoop(ctx)

	emu.Run(ctx, maxInstructions)
	return 0
}
