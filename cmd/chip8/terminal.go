package main

import (
	"log"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/ezrec/chip8/display"
	"github.com/ezrec/chip8/emulator"
)

const (
	KEY_HOLD     = 150 * time.Millisecond // Terminals do not report key release.
	FRAME_DIVIDE = 2                      // Render every other timer tick.
)

// keymap maps the left hand QWERTY block onto the hexadecimal keypad.
//
//	1 2 3 4      1 2 3 C
//	q w e r  =>  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var keymap = map[byte]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

// keyOf returns the keypad key for a terminal input byte.
func keyOf(b byte) (key uint8, ok bool) {
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	key, ok = keymap[b]
	return
}

// Terminal hosts an emulator on a raw mode terminal: stdin feeds the
// keypad, and frames are drawn to stdout.
type Terminal struct {
	Emulator *emulator.Emulator
	OnQuit   func() // Called when the user presses ESC or Ctrl-C.

	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once
	fd           int
	nonblockSet  bool
	oldTermState *term.State

	mutex   sync.Mutex
	release [16]time.Time // Release deadline of each held key.
	ticks   int
}

// NewTerminal creates a terminal host for an emulator.
func NewTerminal(emu *emulator.Emulator) *Terminal {
	return &Terminal{
		Emulator: emu,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start puts stdin in raw non-blocking mode, and begins reading keys.
// Call Stop() to restore stdin.
func (h *Terminal) Start() (err error) {
	h.fd = int(os.Stdin.Fd())

	if w, ht, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		if w < display.WIDTH || ht < display.HEIGHT/2+1 {
			log.Printf("terminal: %dx%d is smaller than %dx%d", w, ht, display.WIDTH, display.HEIGHT/2+1)
		}
	}

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		close(h.done)
		return
	}
	h.oldTermState = oldState

	if err = syscall.SetNonblock(h.fd, true); err != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
		close(h.done)
		return
	}
	h.nonblockSet = true

	// Clear the screen, and hide the cursor.
	os.Stdout.WriteString("\033[2J\033[?25l")

	go func() {
		defer close(h.done)
		buf := make([]byte, 1)

		for {
			select {
			case <-h.stopCh:
				return
			default:
			}

			n, err := syscall.Read(h.fd, buf)
			if n > 0 {
				h.input(buf[0])
			}
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			if err != nil {
				return
			}
			if n == 0 {
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()

	return
}

// input handles a single byte from the terminal.
func (h *Terminal) input(b byte) {
	switch b {
	case 0x03, 0x1b:
		if h.OnQuit != nil {
			h.OnQuit()
		}
		return
	}

	key, ok := keyOf(b)
	if !ok {
		return
	}

	h.mutex.Lock()
	h.release[key] = time.Now().Add(KEY_HOLD)
	h.mutex.Unlock()

	_ = h.Emulator.SetKey(key, true)
}

// Render is called on each timer tick. It releases expired keys, rings
// the bell when the buzzer starts, and redraws changed frames.
func (h *Terminal) Render(emu *emulator.Emulator) {
	now := time.Now()

	h.mutex.Lock()
	for key, deadline := range h.release {
		if !deadline.IsZero() && now.After(deadline) {
			h.release[key] = time.Time{}
			_ = emu.SetKey(uint8(key), false)
		}
	}
	h.ticks++
	ticks := h.ticks
	h.mutex.Unlock()

	var sb strings.Builder
	for {
		active, ok := emu.AwaitBuzzer()
		if !ok {
			break
		}
		if active {
			sb.WriteString("\a")
		}
	}

	if ticks%FRAME_DIVIDE == 0 {
		if frame, ok := emu.Redraw(); ok {
			// Raw mode needs explicit carriage returns.
			sb.WriteString("\033[H")
			sb.WriteString(strings.ReplaceAll(frame, "\n", "\r\n"))
		}
	}

	if sb.Len() > 0 {
		os.Stdout.WriteString(sb.String())
	}
}

// Stop terminates the stdin reading goroutine and restores stdin.
func (h *Terminal) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	<-h.done
	if h.nonblockSet {
		_ = syscall.SetNonblock(h.fd, false)
		h.nonblockSet = false
	}
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
		os.Stdout.WriteString("\033[?25h\r\n")
	}
}
