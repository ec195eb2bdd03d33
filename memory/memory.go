// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package memory implements the byte-addressable storage areas of the CPU.
//
// Multi-byte values are stored big-endian, as on the target CPU. All
// accessors are bounds checked; an access outside an area returns an
// *ErrRange, which the CPU treats as a fatal fault.
package memory

import (
	"encoding/binary"
	"slices"

	"github.com/sirupsen/logrus"
)

// Area is a named, independently sized byte array.
type Area struct {
	Verbose bool   // Set to log every store.
	Name    string // Diagnostic name of the area (E, A, M, L, DB10...).
	Data    []byte // Area contents.
}

// NewArea creates a zeroed area.
func NewArea(name string, size int) (area *Area) {
	area = &Area{
		Name: name,
		Data: make([]byte, size),
	}
	return
}

// Size returns the area size in bytes.
func (area *Area) Size() int {
	return len(area.Data)
}

// Reset zeros the area.
func (area *Area) Reset() {
	clear(area.Data)
}

// Resize changes the size of the area, preserving the common prefix.
func (area *Area) Resize(size int) {
	if size == len(area.Data) {
		return
	}
	data := make([]byte, size)
	copy(data, area.Data)
	area.Data = data
}

// Clone returns a deep copy of the area.
func (area *Area) Clone() *Area {
	return &Area{
		Name: area.Name,
		Data: slices.Clone(area.Data),
	}
}

func (area *Area) check(offset int, count int, width int) (err error) {
	if offset < 0 || count < 0 || offset+count > len(area.Data) {
		err = &ErrRange{Area: area.Name, Offset: offset, Width: width, Size: len(area.Data)}
	}
	return
}

// FetchBit reads a single bit.
func (area *Area) FetchBit(offset int, bit int) (value bool, err error) {
	err = area.check(offset, 1, 1)
	if err != nil {
		return
	}
	value = (area.Data[offset]>>(bit&7))&1 != 0
	return
}

// StoreBit writes a single bit.
func (area *Area) StoreBit(offset int, bit int, value bool) (err error) {
	err = area.check(offset, 1, 1)
	if err != nil {
		return
	}
	mask := byte(1) << (bit & 7)
	if value {
		area.Data[offset] |= mask
	} else {
		area.Data[offset] &^= mask
	}
	if area.Verbose {
		logrus.WithFields(logrus.Fields{
			"area":   area.Name,
			"offset": offset,
			"bit":    bit & 7,
		}).Debugf("store %v", value)
	}
	return
}

// Fetch reads a value of 'width' bits (1, 8, 16 or 32).
func (area *Area) Fetch(offset int, bit int, width int) (value uint32, err error) {
	switch width {
	case 1:
		var b bool
		b, err = area.FetchBit(offset, bit)
		if b {
			value = 1
		}
	case 8:
		err = area.check(offset, 1, width)
		if err == nil {
			value = uint32(area.Data[offset])
		}
	case 16:
		err = area.check(offset, 2, width)
		if err == nil {
			value = uint32(binary.BigEndian.Uint16(area.Data[offset:]))
		}
	case 32:
		err = area.check(offset, 4, width)
		if err == nil {
			value = binary.BigEndian.Uint32(area.Data[offset:])
		}
	default:
		err = ErrWidth(width)
	}
	return
}

// Store writes the low 'width' bits of value.
func (area *Area) Store(offset int, bit int, width int, value uint32) (err error) {
	switch width {
	case 1:
		return area.StoreBit(offset, bit, value&1 != 0)
	case 8:
		err = area.check(offset, 1, width)
		if err == nil {
			area.Data[offset] = byte(value)
		}
	case 16:
		err = area.check(offset, 2, width)
		if err == nil {
			binary.BigEndian.PutUint16(area.Data[offset:], uint16(value))
		}
	case 32:
		err = area.check(offset, 4, width)
		if err == nil {
			binary.BigEndian.PutUint32(area.Data[offset:], value)
		}
	default:
		err = ErrWidth(width)
	}
	if err == nil && area.Verbose {
		logrus.WithFields(logrus.Fields{
			"area":   area.Name,
			"offset": offset,
			"width":  width,
		}).Debugf("store 0x%x", value)
	}
	return
}

// FetchBytes returns a copy of a raw byte range.
func (area *Area) FetchBytes(offset int, count int) (data []byte, err error) {
	err = area.check(offset, count, count*8)
	if err != nil {
		return
	}
	data = slices.Clone(area.Data[offset : offset+count])
	return
}

// StoreBytes overwrites a raw byte range.
func (area *Area) StoreBytes(offset int, data []byte) (err error) {
	err = area.check(offset, len(data), len(data)*8)
	if err != nil {
		return
	}
	copy(area.Data[offset:], data)
	return
}
