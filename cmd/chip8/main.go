// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/io"
	"github.com/ezrec/chip8/translate"
)

func main() {
	var compile string
	var raw string
	var output string
	var disassemble bool
	var steps int
	var hz int
	var full bool
	var verbose bool

	flag.StringVar(&compile, "c", "", ".c8s file to assemble")
	flag.StringVar(&raw, "r", "", ".ch8 program image to load")
	flag.StringVar(&output, "o", "", "Write the program image to this file, do not execute")
	flag.BoolVar(&disassemble, "d", false, "Disassemble the program image, do not execute")
	flag.IntVar(&steps, "n", 0, "Run headless for this many instructions, then dump the machine state")
	flag.IntVar(&hz, "hz", emulator.CPU_HZ, "Instructions per second")
	flag.BoolVar(&full, "full", false, "Execute the full base instruction set")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(compile) != 0 && len(raw) != 0 {
		log.Fatalf("%v: -c and -r are exclusive", os.Args[0])
	}

	if hz <= 0 {
		log.Fatalf("%v: -hz must be positive", os.Args[0])
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Cpu.FullInstructionSet = full

	prog := &cpu.Program{Origin: cpu.PROGRAM_BASE}
	rom := io.NewRom(demoRom)

	switch {
	case len(compile) != 0:
		// Assemble a new program.
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		asm.PredefineAll(emu.Defines())
		prog, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		rom = &io.Rom{Base: prog.Origin, Data: prog.Binary()}
	case len(raw) != 0:
		inf, err := os.Open(raw)
		if err != nil {
			log.Fatalf("%v: %v", raw, err)
		}
		defer inf.Close()

		rom = &io.Rom{}
		_, err = rom.ReadFrom(inf)
		if err != nil {
			log.Fatalf("%v: %v", raw, err)
		}
	}

	if len(output) != 0 {
		err := os.WriteFile(output, rom.Data, 0o644)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	if disassemble {
		for addr, code := range cpu.Disassemble(rom.Data, rom.Base) {
			line := ""
			if dbg := prog.Debug(addr); dbg.Opcode != nil && dbg.Index == 0 {
				line = translate.From("; line %d", dbg.LineNo)
			}
			translate.Fprintf(os.Stdout, "%03x: %04x  %-16v %v\n", addr, uint16(code), code, line)
		}
		return
	}

	var err error
	if len(prog.Opcodes) != 0 {
		err = emu.LoadProgram(prog)
	} else {
		err = emu.LoadRom(rom)
	}
	if err != nil {
		log.Fatal(err)
	}

	if steps > 0 {
		err = emu.RunFor(steps, max(1, hz/emulator.TIMER_HZ))
		os.Stdout.WriteString(emu.Frame())
		os.Stdout.WriteString(emu.String())
		translate.Fprintf(os.Stdout, "%d instructions, %d unknown\n", emu.Ticks(), emu.Cpu.Unknown)
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	host := NewTerminal(emu)
	host.OnQuit = cancel
	err = host.Start()
	if err != nil {
		log.Fatalf("terminal: %v", err)
	}

	sch := &emulator.Scheduler{
		Verbose: verbose,
		CpuHz:   hz,
		OnTick:  host.Render,
	}
	err = sch.Run(ctx, emu)

	host.Stop()

	if err != nil {
		log.Fatal(err)
	}
}
