package cpu

import (
	"fmt"
	"iter"
)

// Instruction is the closed set of instructions of the base instruction set.
type Instruction int

const (
	INS_UNKNOWN   = Instruction(iota) // Not a valid instruction.
	INS_CLS                           // 00E0: clear the display
	INS_RET                           // 00EE: return from subroutine
	INS_SYS                           // 0nnn: machine code call (ignored)
	INS_JP                            // 1nnn: jump
	INS_CALL                          // 2nnn: call subroutine
	INS_SE_IMM                        // 3xkk: skip if Vx == kk
	INS_SNE_IMM                       // 4xkk: skip if Vx != kk
	INS_SE_REG                        // 5xy0: skip if Vx == Vy
	INS_LD_IMM                        // 6xkk: Vx = kk
	INS_ADD_IMM                       // 7xkk: Vx += kk
	INS_LD_REG                        // 8xy0: Vx = Vy
	INS_OR                            // 8xy1: Vx |= Vy
	INS_AND                           // 8xy2: Vx &= Vy
	INS_XOR                           // 8xy3: Vx ^= Vy
	INS_ADD_REG                       // 8xy4: Vx += Vy, VF = carry
	INS_SUB                           // 8xy5: Vx -= Vy, VF = !borrow
	INS_SHR                           // 8xy6: Vx = Vy >> 1, VF = lsb
	INS_SUBN                          // 8xy7: Vx = Vy - Vx, VF = !borrow
	INS_SHL                           // 8xyE: Vx = Vy << 1, VF = msb
	INS_SNE_REG                       // 9xy0: skip if Vx != Vy
	INS_LD_I                          // Annn: I = nnn
	INS_JP_V0                         // Bnnn: jump to nnn + V0
	INS_RND                           // Cxkk: Vx = random & kk
	INS_DRW                           // Dxyn: draw n row sprite
	INS_SKP                           // Ex9E: skip if key Vx pressed
	INS_SKNP                          // ExA1: skip if key Vx not pressed
	INS_LD_VX_DT                      // Fx07: Vx = DT
	INS_LD_VX_K                       // Fx0A: wait for key, Vx = key
	INS_LD_DT_VX                      // Fx15: DT = Vx
	INS_LD_ST_VX                      // Fx18: ST = Vx
	INS_ADD_I_VX                      // Fx1E: I += Vx
	INS_LD_F_VX                       // Fx29: I = font glyph of Vx
	INS_LD_B_VX                       // Fx33: BCD of Vx at I..I+2
	INS_LD_MEM_VX                     // Fx55: store V0..Vx at I
	INS_LD_VX_MEM                     // Fx65: load V0..Vx from I
)

var _instruction_name = [...]string{
	INS_UNKNOWN:   "unknown",
	INS_CLS:       "cls",
	INS_RET:       "ret",
	INS_SYS:       "sys",
	INS_JP:        "jp",
	INS_CALL:      "call",
	INS_SE_IMM:    "se",
	INS_SNE_IMM:   "sne",
	INS_SE_REG:    "se",
	INS_LD_IMM:    "ld",
	INS_ADD_IMM:   "add",
	INS_LD_REG:    "ld",
	INS_OR:        "or",
	INS_AND:       "and",
	INS_XOR:       "xor",
	INS_ADD_REG:   "add",
	INS_SUB:       "sub",
	INS_SHR:       "shr",
	INS_SUBN:      "subn",
	INS_SHL:       "shl",
	INS_SNE_REG:   "sne",
	INS_LD_I:      "ld",
	INS_JP_V0:     "jp",
	INS_RND:       "rnd",
	INS_DRW:       "drw",
	INS_SKP:       "skp",
	INS_SKNP:      "sknp",
	INS_LD_VX_DT:  "ld",
	INS_LD_VX_K:   "ld",
	INS_LD_DT_VX:  "ld",
	INS_LD_ST_VX:  "ld",
	INS_ADD_I_VX:  "add",
	INS_LD_F_VX:   "ld",
	INS_LD_B_VX:   "ld",
	INS_LD_MEM_VX: "ld",
	INS_LD_VX_MEM: "ld",
}

// String returns the mnemonic of the instruction.
func (ins Instruction) String() string {
	if ins < 0 || int(ins) >= len(_instruction_name) {
		return _instruction_name[INS_UNKNOWN]
	}
	return _instruction_name[ins]
}

// Extended returns true for the base instructions that are only executed
// when the full instruction set is enabled.
func (ins Instruction) Extended() bool {
	switch ins {
	case INS_SYS, INS_SE_REG, INS_SUBN, INS_SNE_REG, INS_JP_V0, INS_LD_VX_K, INS_ADD_I_VX:
		return true
	}
	return false
}

// Code is a single 16-bit instruction word.
type Code uint16

// MakeCodeAddr creates an instruction with a 12-bit address operand.
func MakeCodeAddr(class uint8, addr uint16) Code {
	return Code((uint16(class&0xf) << 12) | (addr & 0xfff))
}

// MakeCodeImm creates an instruction with a register and an 8-bit immediate operand.
func MakeCodeImm(class uint8, x uint8, imm uint8) Code {
	return Code((uint16(class&0xf) << 12) | (uint16(x&0xf) << 8) | uint16(imm))
}

// MakeCodeReg creates an instruction with two register operands and a 4-bit sub-opcode.
func MakeCodeReg(class uint8, x, y uint8, sub uint8) Code {
	return Code((uint16(class&0xf) << 12) | (uint16(x&0xf) << 8) | (uint16(y&0xf) << 4) | uint16(sub&0xf))
}

// Class returns the instruction family, bits 15-12.
func (code Code) Class() uint8 {
	return uint8(code >> 12)
}

// Addr returns the 12-bit address operand, bits 11-0.
func (code Code) Addr() uint16 {
	return uint16(code) & 0xfff
}

// Imm returns the 8-bit immediate operand, bits 7-0.
func (code Code) Imm() uint8 {
	return uint8(code)
}

// Sub returns the 4-bit sub-opcode, bits 3-0.
func (code Code) Sub() uint8 {
	return uint8(code) & 0xf
}

// X returns the first register operand, bits 11-8.
func (code Code) X() uint8 {
	return uint8(code>>8) & 0xf
}

// Y returns the second register operand, bits 7-4.
func (code Code) Y() uint8 {
	return uint8(code>>4) & 0xf
}

// Decode returns the instruction encoded by the word.
func (code Code) Decode() Instruction {
	switch code.Class() {
	case 0x0:
		switch {
		case code == 0x00e0:
			return INS_CLS
		case code == 0x00ee:
			return INS_RET
		default:
			return INS_SYS
		}
	case 0x1:
		return INS_JP
	case 0x2:
		return INS_CALL
	case 0x3:
		return INS_SE_IMM
	case 0x4:
		return INS_SNE_IMM
	case 0x5:
		if code.Sub() == 0x0 {
			return INS_SE_REG
		}
	case 0x6:
		return INS_LD_IMM
	case 0x7:
		return INS_ADD_IMM
	case 0x8:
		switch code.Sub() {
		case 0x0:
			return INS_LD_REG
		case 0x1:
			return INS_OR
		case 0x2:
			return INS_AND
		case 0x3:
			return INS_XOR
		case 0x4:
			return INS_ADD_REG
		case 0x5:
			return INS_SUB
		case 0x6:
			return INS_SHR
		case 0x7:
			return INS_SUBN
		case 0xe:
			return INS_SHL
		}
	case 0x9:
		if code.Sub() == 0x0 {
			return INS_SNE_REG
		}
	case 0xa:
		return INS_LD_I
	case 0xb:
		return INS_JP_V0
	case 0xc:
		return INS_RND
	case 0xd:
		return INS_DRW
	case 0xe:
		switch code.Imm() {
		case 0x9e:
			return INS_SKP
		case 0xa1:
			return INS_SKNP
		}
	case 0xf:
		switch code.Imm() {
		case 0x07:
			return INS_LD_VX_DT
		case 0x0a:
			return INS_LD_VX_K
		case 0x15:
			return INS_LD_DT_VX
		case 0x18:
			return INS_LD_ST_VX
		case 0x1e:
			return INS_ADD_I_VX
		case 0x29:
			return INS_LD_F_VX
		case 0x33:
			return INS_LD_B_VX
		case 0x55:
			return INS_LD_MEM_VX
		case 0x65:
			return INS_LD_VX_MEM
		}
	}

	return INS_UNKNOWN
}

// String returns the assembly language representation of this instruction.
// Words that are not instructions are rendered as a .word directive.
func (code Code) String() (out string) {
	ins := code.Decode()
	x := code.X()
	y := code.Y()

	switch ins {
	case INS_CLS, INS_RET:
		out = ins.String()
	case INS_SYS, INS_JP, INS_CALL:
		out = fmt.Sprintf("%v 0x%03x", ins, code.Addr())
	case INS_LD_I:
		out = fmt.Sprintf("%v I, 0x%03x", ins, code.Addr())
	case INS_JP_V0:
		out = fmt.Sprintf("%v V0, 0x%03x", ins, code.Addr())
	case INS_SE_IMM, INS_SNE_IMM, INS_LD_IMM, INS_ADD_IMM, INS_RND:
		out = fmt.Sprintf("%v V%X, 0x%02x", ins, x, code.Imm())
	case INS_SE_REG, INS_SNE_REG, INS_LD_REG, INS_OR, INS_AND, INS_XOR,
		INS_ADD_REG, INS_SUB, INS_SHR, INS_SUBN, INS_SHL:
		out = fmt.Sprintf("%v V%X, V%X", ins, x, y)
	case INS_DRW:
		out = fmt.Sprintf("%v V%X, V%X, %d", ins, x, y, code.Sub())
	case INS_SKP, INS_SKNP:
		out = fmt.Sprintf("%v V%X", ins, x)
	case INS_LD_VX_DT:
		out = fmt.Sprintf("%v V%X, DT", ins, x)
	case INS_LD_VX_K:
		out = fmt.Sprintf("%v V%X, K", ins, x)
	case INS_LD_DT_VX:
		out = fmt.Sprintf("%v DT, V%X", ins, x)
	case INS_LD_ST_VX:
		out = fmt.Sprintf("%v ST, V%X", ins, x)
	case INS_ADD_I_VX:
		out = fmt.Sprintf("%v I, V%X", ins, x)
	case INS_LD_F_VX:
		out = fmt.Sprintf("%v F, V%X", ins, x)
	case INS_LD_B_VX:
		out = fmt.Sprintf("%v B, V%X", ins, x)
	case INS_LD_MEM_VX:
		out = fmt.Sprintf("%v [I], V%X", ins, x)
	case INS_LD_VX_MEM:
		out = fmt.Sprintf("%v V%X, [I]", ins, x)
	default:
		out = fmt.Sprintf(".word 0x%04x", uint16(code))
	}

	return
}

// Disassemble returns an iterator over the instruction words of a program
// image loaded at base. A trailing odd byte is not yielded.
func Disassemble(image []byte, base uint16) iter.Seq2[uint16, Code] {
	return func(yield func(addr uint16, code Code) bool) {
		for n := 0; n+1 < len(image); n += 2 {
			code := Code(uint16(image[n])<<8 | uint16(image[n+1]))
			if !yield(base+uint16(n), code) {
				return
			}
		}
	}
}
