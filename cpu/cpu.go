// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/rand/v2"

	"github.com/ezrec/chip8/display"
	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/io"
)

// Keypad is the read-only keypad interface.
type Keypad io.KeyReader

// Memory layout.
const (
	MEMORY_SIZE  = 0x1000 // Size of the address space.
	FONT_BASE    = 0x000  // Address of the built-in hexadecimal font.
	FONT_HEIGHT  = 5      // Bytes per font glyph.
	PROGRAM_BASE = 0x200  // Load address and reset PC of programs.
	REGISTER_VF  = 0xf    // Flags register.
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":  fmt.Sprintf("%#x", MEMORY_SIZE),
	"FONT_BASE":    fmt.Sprintf("%#x", FONT_BASE),
	"FONT_HEIGHT":  fmt.Sprintf("%v", FONT_HEIGHT),
	"PROGRAM_BASE": fmt.Sprintf("%#x", PROGRAM_BASE),
	"STACK_LIMIT":  fmt.Sprintf("%v", STACK_LIMIT),
	"KEY_COUNT":    fmt.Sprintf("%v", io.KEY_COUNT),
}

// Font is the built-in hexadecimal font, glyphs 0-F, 4x5 pixels each.
var Font = [16 * FONT_HEIGHT]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Cpu is the complete machine state of the interpreter.
type Cpu struct {
	Verbose            bool         // Set to enable verbose logging.
	FullInstructionSet bool         // Execute SYS, 5xy0, 8xy7, 9xy0, Bnnn, Fx0A and Fx1E.
	Rand               func() uint8 // Random byte source; math/rand/v2 if nil.

	Memory   [MEMORY_SIZE]byte // Address space.
	Register [16]uint8         // V0-VF.
	I        uint16            // Index register.
	Pc       uint16            // Program counter.
	Stack    Stack             // Call stack.
	Delay    uint8             // Delay timer.
	Sound    uint8             // Sound timer.

	Display *display.Framebuffer // Framebuffer for draw instructions.
	Keypad  Keypad               // Keypad state; no keys pressed if nil.

	Ticks   int // Executed instruction counter.
	Unknown int // Unknown instruction counter.
}

// NewCpu creates a new, reset, CPU with its own framebuffer.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Display: display.NewFramebuffer(),
	}

	cpu.Reset()

	return
}

// Defines for the cpu and its display.
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_cpu_defines),
		cpu.Display.Defines(),
	)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{"pc", "i", "sp", "dt", "st"}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%03X", cpu.Pc)
		case "i":
			strval = fmt.Sprintf("%03X", cpu.I)
		case "sp":
			strval = fmt.Sprintf("%d", cpu.Stack.Sp)
			if val, ok := cpu.Stack.Peek(); ok {
				strval += fmt.Sprintf(" (%03X)", val)
			}
		case "dt":
			strval = fmt.Sprintf("%02X", cpu.Delay)
		case "st":
			strval = fmt.Sprintf("%02X", cpu.Sound)
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 5s: %02X\n", fmt.Sprintf("v%X", n), val)
	}

	return
}

// Reset the CPU state.
// - Clears memory, registers, stack, timers and the display.
// - Installs the font at FONT_BASE.
// - Sets the PC to PROGRAM_BASE.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Memory[:])
	copy(cpu.Memory[FONT_BASE:], Font[:])
	clear(cpu.Register[:])
	cpu.Stack.Reset()
	cpu.I = 0
	cpu.Pc = PROGRAM_BASE
	cpu.Delay = 0
	cpu.Sound = 0
	cpu.Ticks = 0
	cpu.Unknown = 0

	if cpu.Display == nil {
		cpu.Display = display.NewFramebuffer()
	}
	cpu.Display.Clear()
}

// Load copies a program image into memory at base.
// The load is all-or-nothing: an image that would extend past the end of
// memory is rejected before any byte is written.
func (cpu *Cpu) Load(program []byte, base uint16) (err error) {
	if int(base)+len(program) > len(cpu.Memory) {
		err = errors.Join(ErrLoadOverflow, ErrAddress(int(base)+len(program)-1))
		return
	}

	copy(cpu.Memory[base:], program)

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes at 0x%03x", len(program), base)
	}

	return
}

// TickTimers decrements the delay and sound timers towards zero.
func (cpu *Cpu) TickTimers() {
	if cpu.Delay > 0 {
		cpu.Delay--
	}
	if cpu.Sound > 0 {
		cpu.Sound--
	}
}

// SoundActive returns true while the sound timer is non-zero.
func (cpu *Cpu) SoundActive() bool {
	return cpu.Sound > 0
}

// span returns the memory from addr for length bytes.
func (cpu *Cpu) span(addr uint16, length int) (data []byte, err error) {
	end := int(addr) + length
	if end > len(cpu.Memory) {
		err = ErrAddress(end - 1)
		return
	}

	data = cpu.Memory[addr:end]
	return
}

// FetchCode fetches the big-endian instruction word at the PC.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	data, err := cpu.span(cpu.Pc, 2)
	if err != nil {
		return
	}

	code = Code(uint16(data[0])<<8 | uint16(data[1]))
	return
}

// Step executes a single fetch, decode and execute cycle.
// The PC is advanced past the instruction before it is executed.
func (cpu *Cpu) Step() (err error) {
	code, err := cpu.FetchCode()
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("%03x: %04x %v", cpu.Pc, uint16(code), code)
	}

	cpu.Pc += 2

	err = cpu.Execute(code)
	return
}

// skipIf skips the next instruction when cond holds.
func (cpu *Cpu) skipIf(cond bool) {
	if cond {
		cpu.Pc += 2
	}
}

// pressed returns the state of key, which must be on the keypad.
func (cpu *Cpu) pressed(key uint8) (ok bool, err error) {
	if int(key) >= io.KEY_COUNT {
		err = ErrKey(key)
		return
	}

	if cpu.Keypad == nil {
		return
	}

	ok = cpu.Keypad.Pressed(key)
	return
}

// random returns a uniformly distributed byte.
func (cpu *Cpu) random() uint8 {
	if cpu.Rand != nil {
		return cpu.Rand()
	}
	return uint8(rand.UintN(256))
}

// Execute executes a single decoded instruction.
// The PC must already point past the instruction.
//
// Errors leave the machine state unchanged, and are wrapped with
// the ErrOpcode of the failing instruction.
func (cpu *Cpu) Execute(code Code) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()

	v := &cpu.Register
	x := code.X()
	y := code.Y()

	ins := code.Decode()
	if ins.Extended() && !cpu.FullInstructionSet {
		ins = INS_UNKNOWN
	}

	switch ins {
	case INS_CLS:
		cpu.Display.Clear()
	case INS_RET:
		pc, ok := cpu.Stack.Pop()
		if !ok {
			err = ErrStackEmpty
			return
		}
		cpu.Pc = pc
	case INS_SYS:
		// Machine code routines are not emulated.
	case INS_JP:
		cpu.Pc = code.Addr()
	case INS_CALL:
		if !cpu.Stack.Push(cpu.Pc) {
			err = ErrStackFull
			return
		}
		cpu.Pc = code.Addr()
	case INS_SE_IMM:
		cpu.skipIf(v[x] == code.Imm())
	case INS_SNE_IMM:
		cpu.skipIf(v[x] != code.Imm())
	case INS_SE_REG:
		cpu.skipIf(v[x] == v[y])
	case INS_LD_IMM:
		v[x] = code.Imm()
	case INS_ADD_IMM:
		v[x] += code.Imm()
	case INS_LD_REG:
		v[x] = v[y]
	case INS_OR:
		v[x] |= v[y]
	case INS_AND:
		v[x] &= v[y]
	case INS_XOR:
		v[x] ^= v[y]
	case INS_ADD_REG:
		sum := uint16(v[x]) + uint16(v[y])
		v[x] = uint8(sum)
		v[REGISTER_VF] = uint8(sum >> 8)
	case INS_SUB:
		a, b := v[x], v[y]
		v[x] = a - b
		v[REGISTER_VF] = flag(a >= b)
	case INS_SHR:
		b := v[y]
		v[x] = b >> 1
		v[REGISTER_VF] = b & 1
	case INS_SUBN:
		a, b := v[x], v[y]
		v[x] = b - a
		v[REGISTER_VF] = flag(b >= a)
	case INS_SHL:
		b := v[y]
		v[x] = b << 1
		v[REGISTER_VF] = b >> 7
	case INS_SNE_REG:
		cpu.skipIf(v[x] != v[y])
	case INS_LD_I:
		cpu.I = code.Addr()
	case INS_JP_V0:
		cpu.Pc = code.Addr() + uint16(v[0])
	case INS_RND:
		v[x] = cpu.random() & code.Imm()
	case INS_DRW:
		var rows []byte
		rows, err = cpu.span(cpu.I, int(code.Sub()))
		if err != nil {
			return
		}
		collision := cpu.Display.DrawSprite(rows, int(v[x]), int(v[y]))
		v[REGISTER_VF] = flag(collision)
	case INS_SKP, INS_SKNP:
		var down bool
		down, err = cpu.pressed(v[x])
		if err != nil {
			return
		}
		cpu.skipIf(down == (ins == INS_SKP))
	case INS_LD_VX_DT:
		v[x] = cpu.Delay
	case INS_LD_VX_K:
		var key uint8
		var ok bool
		if cpu.Keypad != nil {
			key, ok = cpu.Keypad.AnyPressed()
		}
		if !ok {
			// Wait by re-executing this instruction.
			cpu.Pc -= 2
			break
		}
		v[x] = key
	case INS_LD_DT_VX:
		cpu.Delay = v[x]
	case INS_LD_ST_VX:
		cpu.Sound = v[x]
	case INS_ADD_I_VX:
		cpu.I += uint16(v[x])
	case INS_LD_F_VX:
		cpu.I = FONT_BASE + uint16(v[x])*FONT_HEIGHT
	case INS_LD_B_VX:
		var bcd []byte
		bcd, err = cpu.span(cpu.I, 3)
		if err != nil {
			return
		}
		val := v[x]
		bcd[0] = val / 100
		bcd[1] = (val / 10) % 10
		bcd[2] = val % 10
	case INS_LD_MEM_VX:
		var mem []byte
		mem, err = cpu.span(cpu.I, int(x)+1)
		if err != nil {
			return
		}
		copy(mem, v[:x+1])
	case INS_LD_VX_MEM:
		var mem []byte
		mem, err = cpu.span(cpu.I, int(x)+1)
		if err != nil {
			return
		}
		copy(v[:x+1], mem)
	case INS_UNKNOWN:
		cpu.Unknown++
		if cpu.Verbose {
			log.Printf("cpu: 0x%04x ignored", uint16(code))
		}
	}

	cpu.Ticks++

	return
}

// flag converts a condition to a VF flag value.
func flag(cond bool) uint8 {
	if cond {
		return 1
	}
	return 0
}
