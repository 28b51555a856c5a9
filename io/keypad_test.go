package io

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeypad_Set(t *testing.T) {
	assert := assert.New(t)

	kp := &Keypad{}
	_, ok := kp.AnyPressed()
	assert.False(ok)

	assert.NoError(kp.Set(0xA, true))
	assert.True(kp.Pressed(0xA))
	assert.False(kp.Pressed(0xB))

	key, ok := kp.AnyPressed()
	assert.True(ok)
	assert.Equal(uint8(0xA), key)

	assert.NoError(kp.Set(0x3, true))
	key, ok = kp.AnyPressed()
	assert.True(ok)
	assert.Equal(uint8(0x3), key)

	assert.NoError(kp.Set(0xA, false))
	assert.False(kp.Pressed(0xA))
}

func TestKeypad_Invalid(t *testing.T) {
	assert := assert.New(t)

	kp := &Keypad{}
	err := kp.Set(16, true)
	assert.True(errors.Is(err, ErrKeyInvalid))
	assert.False(kp.Pressed(16))
	assert.False(kp.Pressed(0xff))
}

func TestKeypad_Reset(t *testing.T) {
	assert := assert.New(t)

	kp := &Keypad{}
	for key := range uint8(KEY_COUNT) {
		assert.NoError(kp.Set(key, true))
	}
	kp.Reset()
	_, ok := kp.AnyPressed()
	assert.False(ok)
}
