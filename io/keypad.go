package io

import (
	"fmt"
	"iter"
	"maps"
)

const (
	KEY_COUNT = 16 // Number of keys on the hexadecimal keypad.
)

var _keypad_defines = map[string]string{
	"KEY_COUNT": fmt.Sprintf("%v", KEY_COUNT),
}

// Keypad is the 16 key hexadecimal keypad state.
// The host sets keys; the interpreter only reads them.
type Keypad struct {
	Key [KEY_COUNT]bool
}

var _ KeyReader = (*Keypad)(nil)

// Defines returns an iter of defines for the keypad.
func (kp *Keypad) Defines() iter.Seq2[string, string] {
	return maps.All(_keypad_defines)
}

// Reset releases all keys.
func (kp *Keypad) Reset() {
	clear(kp.Key[:])
}

// Set the pressed state of a key.
func (kp *Keypad) Set(key uint8, pressed bool) (err error) {
	if int(key) >= len(kp.Key) {
		err = fmt.Errorf("%w: %d", ErrKeyInvalid, key)
		return
	}

	kp.Key[key] = pressed
	return
}

// Pressed returns true if the key is held down.
// Keys outside of the keypad are never pressed.
func (kp *Keypad) Pressed(key uint8) bool {
	if int(key) >= len(kp.Key) {
		return false
	}
	return kp.Key[key]
}

// AnyPressed returns the lowest numbered key held down.
func (kp *Keypad) AnyPressed() (key uint8, ok bool) {
	for n, pressed := range kp.Key {
		if pressed {
			return uint8(n), true
		}
	}
	return
}
