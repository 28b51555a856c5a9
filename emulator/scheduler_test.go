package emulator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/cpu"
)

func TestSchedulerCancel(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doAssemble(emu, []string{
		"  ld V0, 0xff",
		"  ld DT, V0",
		"loop:",
		"  add V1, 1",
		"  jp loop",
	}, t)

	var ticks atomic.Int32
	sch := &Scheduler{
		CpuHz:   1000,
		TimerHz: 100,
		OnTick: func(emu *Emulator) {
			ticks.Add(1)
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- sch.Run(ctx, emu)
	}()

	assert.Eventually(func() bool {
		return emu.Ticks() > 20 && ticks.Load() > 2
	}, 5*time.Second, 5*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	// No partial steps: the machine is stopped at an instruction boundary.
	ticks_now := emu.Ticks()
	pc := emu.Pc()
	assert.Contains([]uint16{0x204, 0x206}, pc)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(ticks_now, emu.Ticks())
	assert.Less(emu.Cpu.Delay, uint8(0xff))
}

func TestSchedulerRuntimeError(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doAssemble(emu, []string{
		"  cls",
		"  cls",
		"  ret",
	}, t)

	sch := &Scheduler{CpuHz: 1000}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := sch.Run(ctx, emu)
	assert.ErrorIs(err, cpu.ErrStackEmpty)

	var rt *ErrRuntime
	if assert.True(errors.As(err, &rt)) {
		assert.Equal(uint16(0x204), rt.Pc)
		assert.Equal(3, rt.LineNo)
	}
	assert.NoError(ctx.Err())
}

func TestSchedulerPeriod(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(time.Second/CPU_HZ, period(0, CPU_HZ))
	assert.Equal(time.Second/TIMER_HZ, period(-1, TIMER_HZ))
	assert.Equal(time.Millisecond, period(1000, CPU_HZ))
}
