package io

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuzzer_Update(t *testing.T) {
	assert := assert.New(t)

	var changes []bool
	bz := &Buzzer{OnChange: func(active bool) { changes = append(changes, active) }}
	assert.False(bz.Active())

	bz.Update(false)
	_, ok := bz.Await()
	assert.False(ok)

	bz.Update(true)
	bz.Update(true)
	bz.Update(false)
	assert.False(bz.Active())
	assert.Equal([]bool{true, false}, changes)

	active, ok := bz.Await()
	assert.True(ok)
	assert.True(active)
	active, ok = bz.Await()
	assert.True(ok)
	assert.False(active)
	_, ok = bz.Await()
	assert.False(ok)
}

func TestBuzzer_Reset(t *testing.T) {
	assert := assert.New(t)

	bz := &Buzzer{}
	bz.Update(true)
	bz.Reset()
	assert.False(bz.Active())
	_, ok := bz.Await()
	assert.False(ok)
}
