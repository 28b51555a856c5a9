package io

import (
	"bytes"
	"io"
)

const (
	ROM_BASE  = 0x200  // Load address of program images.
	ROM_LIMIT = 0x1000 // End of the address space.
)

// Rom is a raw program image, loaded at Base.
type Rom struct {
	Base uint16
	Data []byte
}

// NewRom creates a Rom from a byte image, loaded at ROM_BASE.
func NewRom(data []byte) (rc *Rom) {
	rc = &Rom{
		Base: ROM_BASE,
		Data: data,
	}
	return
}

// Capacity returns the maximum image size at the Rom's base address.
func (rc *Rom) Capacity() int {
	base := rc.Base
	if base == 0 {
		base = ROM_BASE
	}
	if int(base) >= ROM_LIMIT {
		return 0
	}
	return ROM_LIMIT - int(base)
}

// ReadFrom reads an entire program image from r, replacing Data.
// Images that do not fit between the base address and the end of
// memory are rejected, and Data is left unchanged.
func (rc *Rom) ReadFrom(r io.Reader) (n int64, err error) {
	limit := int64(rc.Capacity())

	buf := &bytes.Buffer{}
	n, err = buf.ReadFrom(io.LimitReader(r, limit+1))
	if err != nil {
		return
	}

	if n > limit {
		err = ErrRomTooLarge
		return
	}

	if n == 0 {
		err = ErrRomEmpty
		return
	}

	if rc.Base == 0 {
		rc.Base = ROM_BASE
	}
	rc.Data = buf.Bytes()

	return
}
