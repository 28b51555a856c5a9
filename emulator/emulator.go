// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"sync"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/io"
)

const (
	CPU_HZ   = 240 // Default instruction rate.
	TIMER_HZ = 60  // Delay and sound timer rate.
)

var _emulator_defines = map[string]string{
	"CPU_HZ":   fmt.Sprintf("%v", CPU_HZ),
	"TIMER_HZ": fmt.Sprintf("%v", TIMER_HZ),
}

// Emulator state. CPU + keypad + buzzer.
//
// All methods are safe for concurrent use; the CPU, timers and peripherals
// share a single lock.
type Emulator struct {
	Verbose bool         // If set, enables verbose logging.
	Cpu     *cpu.Cpu     // Reference to the CPU simulation.
	Program *cpu.Program // Reference to the currently running program listing.

	Keypad io.Keypad // Keypad state, as seen by the CPU.
	Buzzer io.Buzzer // Sound signal, updated by the timer clock.

	mutex sync.Mutex
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	emu.Cpu.Keypad = &emu.Keypad

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		emu.Keypad.Defines(),
	)
}

// Reset the machine, keypad and buzzer.
// The loaded program is discarded.
func (emu *Emulator) Reset() {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.Keypad.Reset()
	emu.Buzzer.Reset()
	emu.Program = &cpu.Program{}
}

// Load a program image into memory at base.
func (emu *Emulator) Load(program []byte, base uint16) (err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	emu.Cpu.Verbose = emu.Verbose
	err = emu.Cpu.Load(program, base)
	return
}

// LoadRom loads a raw program image.
func (emu *Emulator) LoadRom(rom *io.Rom) (err error) {
	base := rom.Base
	if base == 0 {
		base = io.ROM_BASE
	}

	err = emu.Load(rom.Data, base)
	return
}

// LoadProgram loads an assembled program, and keeps its listing for
// runtime error locations.
func (emu *Emulator) LoadProgram(prog *cpu.Program) (err error) {
	err = emu.Load(prog.Binary(), prog.Origin)
	if err != nil {
		return
	}

	emu.mutex.Lock()
	emu.Program = prog
	emu.mutex.Unlock()

	return
}

// Ticks returns the total instructions executed since a reset.
func (emu *Emulator) Ticks() int {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.Cpu.Ticks
}

// Pc returns the current program counter.
func (emu *Emulator) Pc() uint16 {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.Cpu.Pc
}

// lineNo returns the source line number of the opcode at the PC, or 0.
func (emu *Emulator) lineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}
	return dbg.LineNo
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.lineNo()
}

// Step executes a single instruction.
// Errors are returned as an *ErrRuntime, and leave the PC at the failing
// instruction.
func (emu *Emulator) Step() (err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	lineno := emu.lineNo()

	err = emu.Cpu.Step()
	if err != nil {
		emu.Cpu.Pc = pc
		err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		if emu.Verbose {
			log.Printf("emulator: %v", err)
		}
	}

	return
}

// TickTimers performs one timer clock tick, and updates the buzzer.
func (emu *Emulator) TickTimers() {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	emu.Cpu.TickTimers()
	emu.Buzzer.Update(emu.Cpu.SoundActive())
}

// RunFor executes steps instructions, ticking the timers once every
// stepsPerTick instructions. The timers are not ticked if stepsPerTick
// is not positive.
func (emu *Emulator) RunFor(steps int, stepsPerTick int) (err error) {
	for n := range steps {
		err = emu.Step()
		if err != nil {
			return
		}
		if stepsPerTick > 0 && (n+1)%stepsPerTick == 0 {
			emu.TickTimers()
		}
	}

	return
}

// SetKey sets the state of a keypad key.
func (emu *Emulator) SetKey(key uint8, pressed bool) (err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	err = emu.Keypad.Set(key, pressed)
	return
}

// Pixel returns the value (0 or 1) of the display pixel at (x, y).
func (emu *Emulator) Pixel(x, y int) uint8 {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.Cpu.Display.Pixel(x, y)
}

// SoundActive returns true while the sound timer is running.
func (emu *Emulator) SoundActive() bool {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.Cpu.SoundActive()
}

// AwaitBuzzer returns the oldest unreported buzzer change.
func (emu *Emulator) AwaitBuzzer() (active bool, ok bool) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.Buzzer.Await()
}

// Frame returns the display rendered as text.
func (emu *Emulator) Frame() string {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.Cpu.Display.String()
}

// Redraw returns the display rendered as text, only if it has changed
// since the last call.
func (emu *Emulator) Redraw() (frame string, ok bool) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if !emu.Cpu.Display.Dirty {
		return
	}

	emu.Cpu.Display.Dirty = false
	frame = emu.Cpu.Display.String()
	ok = true
	return
}

// String returns the current CPU state as a string.
func (emu *Emulator) String() string {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.Cpu.String()
}
