// Package format defines the on-disk header of a circular log file.
//
// A log file is a fixed 20-byte header followed by the ring data region.
// Header fields are unsigned 32-bit integers stored big-endian regardless of
// the host byte order, so files move freely between machines.
package format

import (
	"encoding/binary"
	"math"
)

const (
	// MagicNumber identifies circular log files.
	MagicNumber uint32 = 0xF9F3F9F4

	// DefaultUnit is the rounding unit for log sizes.
	DefaultUnit uint32 = 4096

	// MaxSize is the largest DefaultUnit multiple that fits a signed 32-bit size.
	MaxSize uint32 = math.MaxInt32 / DefaultUnit * DefaultUnit
)

// Header is the fixed header at offset 0 of every log file.
type Header struct {
	Magic   uint32
	Top     uint32 // First data byte, always HeaderSize
	Current uint32 // Next write position
	Bottom  uint32 // Logical end of the ring for reads
	Size    uint32 // Total file size including the header
}

// HeaderSize is the size of the header in bytes.
const HeaderSize = 5 * 4 // 20 bytes

// NewHeader returns the header of an empty ring with the given total size.
func NewHeader(size uint32) Header {
	return Header{
		Magic:   MagicNumber,
		Top:     HeaderSize,
		Current: HeaderSize,
		Bottom:  HeaderSize,
		Size:    size,
	}
}

// EncodeHeader writes a header to a byte slice.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(buf[0:4], h.Magic)
	binary.BigEndian.PutUint32(buf[4:8], h.Top)
	binary.BigEndian.PutUint32(buf[8:12], h.Current)
	binary.BigEndian.PutUint32(buf[12:16], h.Bottom)
	binary.BigEndian.PutUint32(buf[16:20], h.Size)
	return buf
}

// DecodeHeader reads a header from a byte slice. It does not check the magic
// number; see Validate.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrInvalidHeader
	}
	return Header{
		Magic:   binary.BigEndian.Uint32(buf[0:4]),
		Top:     binary.BigEndian.Uint32(buf[4:8]),
		Current: binary.BigEndian.Uint32(buf[8:12]),
		Bottom:  binary.BigEndian.Uint32(buf[12:16]),
		Size:    binary.BigEndian.Uint32(buf[16:20]),
	}, nil
}

// Validate reports whether h describes a usable ring.
func (h Header) Validate() error {
	if h.Magic != MagicNumber {
		return ErrMagicMismatch
	}
	if h.Top != HeaderSize || h.Size <= h.Top {
		return ErrInvalidHeader
	}
	if h.Current < h.Top || h.Current > h.Bottom || h.Bottom > h.Size {
		return ErrInvalidHeader
	}
	return nil
}

// Wrapped reports whether the oldest data sits after Current, so that a
// chronological read spans [Current, Bottom) followed by [Top, Current).
func (h Header) Wrapped() bool {
	return h.Current != h.Bottom
}

// Capacity returns the size of the data region.
func (h Header) Capacity() uint32 {
	return h.Size - h.Top
}

// Used returns the number of bytes a chronological read yields.
func (h Header) Used() uint32 {
	return (h.Bottom - h.Current) + (h.Current - h.Top)
}

// RoundUp rounds n up to a multiple of unit, clamped to [unit, MaxSize].
// A zero unit means DefaultUnit.
func RoundUp(n uint64, unit uint32) uint32 {
	if unit == 0 {
		unit = DefaultUnit
	}
	u := uint64(unit)
	if n < u {
		return unit
	}
	limit := uint64(MaxSize) / u * u
	if n > limit {
		return uint32(limit)
	}
	return uint32((n + u - 1) / u * u)
}
