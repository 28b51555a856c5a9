package cpu

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/io"
)

func FuzzCpu(f *testing.F) {
	for class := range uint16(0x10) {
		f.Add(class<<12, uint8(0), uint16(0x300), false, false)
		f.Add(class<<12|0x0fff, uint8(0xff), uint16(0xfff), true, true)
	}
	f.Add(uint16(0x00ee), uint8(0), uint16(0), false, false)
	f.Add(uint16(0xf355), uint8(1), uint16(0xffe), true, false)

	f.Fuzz(func(t *testing.T, opcode uint16, fill uint8, index uint16, full bool, pressed bool) {
		assert := assert.New(t)

		code := Code(opcode)

		keypad := &io.Keypad{}
		if pressed {
			assert.NoError(keypad.Set(uint8(opcode)&0xf, true))
		}

		cpu := loadCodes(t, code)
		cpu.FullInstructionSet = full
		cpu.Keypad = keypad
		cpu.Rand = func() uint8 { return 0x5a }
		cpu.I = index & 0xfff
		for n := range cpu.Register {
			cpu.Register[n] = fill + uint8(n)
		}
		cpu.Stack.Push(0x3f0)

		pre := *cpu
		err := cpu.Step()

		code_str := fmt.Sprintf("0x%04x (%v) fill:%#x I:%#x full:%v pressed:%v\ncpu:%v",
			opcode, code, fill, cpu.I, full, pressed, cpu.String())

		ins := code.Decode()
		if ins.Extended() && !full {
			ins = INS_UNKNOWN
		}

		if err != nil {
			assert.ErrorIs(err, ErrOpcode(code), code_str)
			switch {
			case errors.Is(err, ErrOutOfRange):
				switch ins {
				case INS_DRW, INS_LD_B_VX, INS_LD_MEM_VX, INS_LD_VX_MEM, INS_SKP, INS_SKNP:
					// expected error
				default:
					assert.NoError(err, code_str)
				}
			default:
				assert.NoError(err, code_str)
			}
			assert.Equal(pre.Register, cpu.Register, code_str)
			return
		}

		assert.Equal(pre.Ticks+1, cpu.Ticks, code_str)
		assert.LessOrEqual(cpu.Stack.Sp, STACK_LIMIT, code_str)
		assert.GreaterOrEqual(cpu.Stack.Sp, 0, code_str)
		assert.Less(int(cpu.Pc), 0x1000+0x100, code_str)

		switch ins {
		case INS_UNKNOWN:
			assert.Equal(pre.Unknown+1, cpu.Unknown, code_str)
			assert.Equal(pre.Register, cpu.Register, code_str)
			assert.Equal(pre.Pc+2, cpu.Pc, code_str)
		case INS_JP, INS_CALL, INS_JP_V0, INS_RET:
			// control flow
		case INS_SE_IMM, INS_SNE_IMM, INS_SE_REG, INS_SNE_REG, INS_SKP, INS_SKNP:
			assert.Contains([]uint16{pre.Pc + 2, pre.Pc + 4}, cpu.Pc, code_str)
			assert.Equal(pre.Register, cpu.Register, code_str)
		case INS_LD_VX_K:
			if pressed {
				assert.Equal(pre.Pc+2, cpu.Pc, code_str)
				assert.Equal(uint8(opcode)&0xf, cpu.Register[code.X()], code_str)
			} else {
				assert.Equal(pre.Pc, cpu.Pc, code_str)
			}
		default:
			assert.Equal(pre.Pc+2, cpu.Pc, code_str)
		}

		if ins != INS_UNKNOWN {
			assert.Equal(pre.Unknown, cpu.Unknown, code_str)
		}

		// Only VF and Vx are ever modified by an instruction,
		// except for the register load.
		if ins != INS_LD_VX_MEM {
			for n := range cpu.Register {
				if n == int(code.X()) || n == REGISTER_VF {
					continue
				}
				assert.Equal(pre.Register[n], cpu.Register[n], code_str)
			}
		}
	})
}
