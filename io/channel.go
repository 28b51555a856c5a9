// Package io provides the host facing peripherals of the interpreter:
// the hexadecimal keypad, the program image (Rom) and the sound timer
// signal (Buzzer).
package io

// KeyReader is the read-only view of the keypad used by the interpreter.
type KeyReader interface {
	// Pressed returns true if the key is held down.
	Pressed(key uint8) bool
	// AnyPressed returns the lowest numbered key held down, if any.
	AnyPressed() (key uint8, ok bool)
}
