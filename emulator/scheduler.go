package emulator

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

// Scheduler drives an emulator from two independent clocks: one executes
// instructions at CpuHz, the other ticks the timers at TimerHz.
type Scheduler struct {
	Verbose bool // If set, logs scheduler start and stop.
	CpuHz   int  // Instruction rate; CPU_HZ if zero.
	TimerHz int  // Timer rate; TIMER_HZ if zero.

	// OnTick, if set, is called after each timer tick, outside of the
	// emulator lock. Hosts use it to render frames and sound.
	OnTick func(emu *Emulator)
}

// period converts a rate to a ticker period.
func period(hz int, fallback int) time.Duration {
	if hz <= 0 {
		hz = fallback
	}
	return time.Second / time.Duration(hz)
}

// Run the emulator until ctx is cancelled, or a step fails.
// Cancellation returns nil; a failed step returns its *ErrRuntime.
func (sch *Scheduler) Run(ctx context.Context, emu *Emulator) (err error) {
	group, ctx := errgroup.WithContext(ctx)

	if sch.Verbose {
		log.Printf("scheduler: cpu %v, timers %v", period(sch.CpuHz, CPU_HZ), period(sch.TimerHz, TIMER_HZ))
	}

	group.Go(func() error {
		ticker := time.NewTicker(period(sch.CpuHz, CPU_HZ))
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := emu.Step(); err != nil {
					return err
				}
			}
		}
	})

	group.Go(func() error {
		ticker := time.NewTicker(period(sch.TimerHz, TIMER_HZ))
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				emu.TickTimers()
				if sch.OnTick != nil {
					sch.OnTick(emu)
				}
			}
		}
	})

	err = group.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}

	if sch.Verbose {
		log.Printf("scheduler: stopped: %v", err)
	}

	return
}
