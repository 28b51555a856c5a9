// Package cpu implements the interpreter and assembler for the CHIP-8 virtual machine.
//
// The CPU consists of 4 KiB of byte addressed memory with the hexadecimal font
// at FONT_BASE, sixteen 8-bit registers (V0-VF, with VF as the flags register),
// a 12-bit index register (I), a program counter (PC) starting at PROGRAM_BASE,
// a sixteen entry call stack, and the delay (DT) and sound (ST) timers. Draw
// instructions render to a display.Framebuffer, and key instructions read an
// io.KeyReader.
//
// Instruction words are decoded by Code.Decode, and rendered as assembly text
// by Code.String. Words that do not decode are executed as no-ops.
//
// The assembler accepts the disassembler's syntax, and adds macros, labels,
// equates, and compile-time expression evaluation.
package cpu
