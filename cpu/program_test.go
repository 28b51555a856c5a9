package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Origin: 0x200,
		Opcodes: []Opcode{
			{LineNo: 1, Ip: 0x200, Words: []string{"ld", "V0", "0x10"},
				Codes: []Code{MakeCodeImm(0x6, 0x0, 0x10)}},
			{LineNo: 2, Ip: 0x202, Words: []string{"ld", "V1", "0x20"},
				Codes: []Code{MakeCodeImm(0x6, 0x1, 0x20)}},
			{LineNo: 4, Ip: 0x204, Words: []string{"add", "V0", "V1"},
				Codes: []Code{MakeCodeReg(0x8, 0x0, 0x1, 0x4)}},
		},
	}

	dbg := prog.Debug(0x200)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.Opcode.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(0x203)
	assert.NotNil(dbg.Opcode)
	assert.Equal(2, dbg.Opcode.LineNo)
	assert.Equal(1, dbg.Index)

	dbg = prog.Debug(0x204)
	assert.NotNil(dbg.Opcode)
	assert.Equal(4, dbg.Opcode.LineNo)
	assert.Equal(0, dbg.Index)
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Ip: 0x200, Words: []string{"cls"}, Codes: []Code{0x00e0}},
		},
	}

	dbg := prog.Debug(0x1fe)
	assert.Nil(dbg.Opcode)

	dbg = prog.Debug(0x202)
	assert.Nil(dbg.Opcode)
	assert.Equal(0, dbg.Index)
}

func TestProgram_Debug_Data(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Ip: 0x200, Words: []string{".byte", "1", "2", "3"}, Data: []byte{1, 2, 3}},
			{LineNo: 2, Ip: 0x203, Words: []string{".word", "0x1234", "0x5678"}, Codes: []Code{0x1234, 0x5678}},
		},
	}

	for ip := uint16(0x200); ip < 0x203; ip++ {
		dbg := prog.Debug(ip)
		assert.Equal(1, dbg.LineNo)
		assert.Equal(int(ip-0x200), dbg.Index)
	}

	dbg := prog.Debug(0x206)
	assert.Equal(2, dbg.LineNo)
	assert.Equal(3, dbg.Index)

	dbg = prog.Debug(0x207)
	assert.Nil(dbg.Opcode)
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{Ip: 0x200, Codes: []Code{0x6005, 0x6103}},
			{Ip: 0x204, Data: []byte{0xaa}},
			{Ip: 0x205, Codes: []Code{0x8014}},
		},
	}

	assert.Equal([]byte{0x60, 0x05, 0x61, 0x03, 0xaa, 0x80, 0x14}, prog.Binary())
	assert.Nil((&Program{}).Binary())
}

func TestProgram_Codes(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{Ip: 0x200, Codes: []Code{0x6005, 0x6103}},
			{Ip: 0x204, Data: []byte{0xaa}},
			{Ip: 0x205, Codes: []Code{0x8014}},
		},
	}

	var ips []uint16
	var codes []Code
	for ip, code := range prog.Codes() {
		ips = append(ips, ip)
		codes = append(codes, code)
	}
	assert.Equal([]uint16{0x200, 0x202, 0x205}, ips)
	assert.Equal([]Code{0x6005, 0x6103, 0x8014}, codes)

	// Early termination.
	count := 0
	for range prog.Codes() {
		count++
		break
	}
	assert.Equal(1, count)
}

func TestProgram_Assembled(t *testing.T) {
	assert := assert.New(t)

	source := `
start:
	ld V0, 5
	ld V1, 3
	add V0, V1
	jp start
`
	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(source))
	assert.NoError(err)
	assert.Equal(uint16(PROGRAM_BASE), prog.Origin)
	assert.Equal([]byte{0x60, 0x05, 0x61, 0x03, 0x80, 0x14, 0x12, 0x00}, prog.Binary())

	dbg := prog.Debug(0x206)
	assert.Equal(6, dbg.LineNo)
	assert.Equal([]string{"jp", "start"}, dbg.Words)
}
