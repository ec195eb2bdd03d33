package dtype

const (
	BCD16_MAX = 999     // Largest magnitude of a 16-bit BCD.
	BCD32_MAX = 9999999 // Largest magnitude of a 32-bit BCD.
)

// bcdDigits decodes the lowest 'count' nibbles of a packed BCD value.
func bcdDigits(bcd uint32, count int) (value int32, err error) {
	scale := int32(1)
	for n := range count {
		nibble := (bcd >> (4 * n)) & 0xf
		if nibble > 9 {
			err = ErrBcdDigits(bcd)
			return
		}
		value += int32(nibble) * scale
		scale *= 10
	}
	return
}

// bcdPack encodes a non-negative value into 'count' packed nibbles.
func bcdPack(value int32, count int) (bcd uint32) {
	for n := range count {
		bcd |= uint32(value%10) << (4 * n)
		value /= 10
	}
	return
}

// BcdToInt16 decodes a 16-bit BCD with three digits and the sign in bit 15.
func BcdToInt16(bcd uint16) (value int16, err error) {
	v, err := bcdDigits(uint32(bcd), 3)
	if err != nil {
		return
	}
	if bcd&0x8000 != 0 {
		v = -v
	}
	value = int16(v)
	return
}

// Int16ToBcd encodes a value as three BCD digits. Negative values set the
// upper nibble to 16#F.
func Int16ToBcd(value int16) (bcd uint16, err error) {
	v := int32(value)
	if v > BCD16_MAX || v < -BCD16_MAX {
		err = ErrBcdRange
		return
	}
	if v < 0 {
		bcd = 0xf000 | uint16(bcdPack(-v, 3))
	} else {
		bcd = uint16(bcdPack(v, 3))
	}
	return
}

// BcdToInt32 decodes a 32-bit BCD with seven digits and the sign in bit 31.
func BcdToInt32(bcd uint32) (value int32, err error) {
	value, err = bcdDigits(bcd, 7)
	if err != nil {
		return
	}
	if bcd&0x8000_0000 != 0 {
		value = -value
	}
	return
}

// Int32ToBcd encodes a value as seven BCD digits. Negative values set the
// upper nibble to 16#F.
func Int32ToBcd(value int32) (bcd uint32, err error) {
	if value > BCD32_MAX || value < -BCD32_MAX {
		err = ErrBcdRange
		return
	}
	if value < 0 {
		bcd = 0xf000_0000 | bcdPack(-value, 7)
	} else {
		bcd = bcdPack(value, 7)
	}
	return
}

// BcdToUint16 decodes an unsigned three digit BCD, as used by counter
// preset values. The upper nibble is ignored.
func BcdToUint16(bcd uint16) (value uint16, err error) {
	v, err := bcdDigits(uint32(bcd), 3)
	if err != nil {
		return
	}
	value = uint16(v)
	return
}

// Uint16ToBcd encodes 0..999 as three unsigned BCD digits.
func Uint16ToBcd(value uint16) (bcd uint16, err error) {
	if value > BCD16_MAX {
		err = ErrBcdRange
		return
	}
	bcd = uint16(bcdPack(int32(value), 3))
	return
}
