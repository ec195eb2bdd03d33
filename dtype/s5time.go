package dtype

import (
	"time"
)

// S5TIME time bases, selected by bits 12-13.
var s5Base = [4]time.Duration{
	10 * time.Millisecond,
	100 * time.Millisecond,
	time.Second,
	10 * time.Second,
}

// S5TIME_MAX is the longest representable S5TIME (999 * 10s).
const S5TIME_MAX = 9990 * time.Second

// S5TimeBase returns the time base encoded in an S5TIME word.
func S5TimeBase(s5t uint16) time.Duration {
	return s5Base[(s5t>>12)&0x3]
}

// S5TimeToDuration decodes an S5TIME word: three BCD digits of time value
// plus a two bit time base.
func S5TimeToDuration(s5t uint16) (d time.Duration, base time.Duration, err error) {
	value, err := bcdDigits(uint32(s5t), 3)
	if err != nil {
		err = ErrS5Time
		return
	}
	base = S5TimeBase(s5t)
	d = time.Duration(value) * base
	return
}

// DurationToS5Time encodes a duration using the finest base that fits the
// value into three digits.
func DurationToS5Time(d time.Duration) (s5t uint16, err error) {
	if d < 0 || d > S5TIME_MAX {
		err = ErrS5Time
		return
	}
	for n, base := range s5Base {
		value := d / base
		if value <= BCD16_MAX {
			s5t = uint16(n<<12) | uint16(bcdPack(int32(value), 3))
			return
		}
	}
	err = ErrS5Time
	return
}

// BaseToS5Time encodes 'value' (0..999) with the base bits of 'base'.
func BaseToS5Time(value uint16, base time.Duration) (s5t uint16) {
	if value > BCD16_MAX {
		value = BCD16_MAX
	}
	for n, b := range s5Base {
		if b == base {
			s5t = uint16(n << 12)
			break
		}
	}
	s5t |= uint16(bcdPack(int32(value), 3))
	return
}
