package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and generated contents.
type Opcode struct {
	LineNo    int
	Ip        int      // Load address of the first byte.
	Words     []string // Source words, after expansion.
	Codes     []Code   // Instruction words, or...
	Data      []byte   // ...raw data bytes.
	LinkLabel string   // Label to link into the address operand of the last code.
}

// Size returns the number of bytes of the opcode.
func (op *Opcode) Size() int {
	return len(op.Codes)*2 + len(op.Data)
}

// Bytes returns the big-endian encoding of the opcode.
func (op *Opcode) Bytes() (data []byte) {
	for _, code := range op.Codes {
		data = append(data, byte(code>>8), byte(code))
	}
	data = append(data, op.Data...)
	return
}

// Program is an assembled program.
type Program struct {
	Origin  uint16 // Load address of the program.
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int // Byte offset into the opcode.
}

// Debug finds the source opcode covering an address.
func (prog *Program) Debug(ip uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(ip) >= op.Ip && int(ip) < op.Ip+op.Size() {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(ip) - op.Ip,
			}
			break
		}
	}

	return
}

// Binary returns the program image, to be loaded at Origin.
func (prog *Program) Binary() (bins []byte) {
	for _, op := range prog.Opcodes {
		bins = append(bins, op.Bytes()...)
	}

	return
}

// Codes iterates over the instruction words and their addresses.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(ip uint16, code Code) bool) {
		for _, op := range prog.Opcodes {
			ip := uint16(op.Ip)
			for n, code := range op.Codes {
				if !yield(ip+uint16(n*2), code) {
					return
				}
			}
		}
	}
}
