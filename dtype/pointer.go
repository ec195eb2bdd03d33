package dtype

import (
	"fmt"
)

// PointerArea is the area code in bits 24-31 of an area-crossing pointer.
type PointerArea uint8

const (
	PTR_AREA_NONE = PointerArea(0x00) // P#
	PTR_AREA_P    = PointerArea(0x80) // P
	PTR_AREA_E    = PointerArea(0x81) // E
	PTR_AREA_A    = PointerArea(0x82) // A
	PTR_AREA_M    = PointerArea(0x83) // M
	PTR_AREA_DB   = PointerArea(0x84) // DBX
	PTR_AREA_DI   = PointerArea(0x85) // DIX
	PTR_AREA_L    = PointerArea(0x86) // L
	PTR_AREA_V    = PointerArea(0x87) // V
)

const (
	PTR_OFFSET_MASK = uint32(0x0007_ffff) // byte and bit offset bits
	PTR_BYTE_MAX    = 0xffff
)

func (pa PointerArea) String() string {
	switch pa {
	case PTR_AREA_NONE:
		return ""
	case PTR_AREA_P:
		return "P"
	case PTR_AREA_E:
		return "E"
	case PTR_AREA_A:
		return "A"
	case PTR_AREA_M:
		return "M"
	case PTR_AREA_DB:
		return "DBX"
	case PTR_AREA_DI:
		return "DIX"
	case PTR_AREA_L:
		return "L"
	case PTR_AREA_V:
		return "V"
	}
	return fmt.Sprintf("?%02X", uint8(pa))
}

// Pointer is a 32-bit area pointer as loaded into an address register.
type Pointer uint32

// MakePointer builds a pointer from an area code, byte and bit offset.
func MakePointer(area PointerArea, byteOffset int, bitOffset int) (ptr Pointer, err error) {
	if byteOffset < 0 || byteOffset > PTR_BYTE_MAX || bitOffset < 0 || bitOffset > 7 {
		err = ErrPointer
		return
	}
	ptr = Pointer(uint32(area)<<24 | uint32(byteOffset)<<3 | uint32(bitOffset))
	return
}

// Area returns the area code of the pointer.
func (ptr Pointer) Area() PointerArea {
	return PointerArea(uint32(ptr) >> 24)
}

// Byte returns the byte offset.
func (ptr Pointer) Byte() int {
	return int((uint32(ptr) >> 3) & PTR_BYTE_MAX)
}

// Bit returns the bit offset.
func (ptr Pointer) Bit() int {
	return int(uint32(ptr) & 0x7)
}

// Bits returns the combined byte*8+bit offset.
func (ptr Pointer) Bits() int {
	return int(uint32(ptr) & PTR_OFFSET_MASK)
}

// Add offsets the pointer by a signed bit count, keeping the area code.
// The offset wraps within the 24-bit offset field as the hardware does.
func (ptr Pointer) Add(bits int32) Pointer {
	area := uint32(ptr) & 0xff00_0000
	offset := (uint32(ptr) + uint32(bits)) & 0x00ff_ffff
	return Pointer(area | offset)
}

func (ptr Pointer) String() string {
	return fmt.Sprintf("P#%v%d.%d", ptr.Area(), ptr.Byte(), ptr.Bit())
}

// InRange is false when the offset field exceeds the 16-bit byte range.
func (ptr Pointer) InRange() bool {
	return uint32(ptr)&0x00f8_0000 == 0
}
