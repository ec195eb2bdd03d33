package dtype

import (
	"math"
)

const (
	REAL_NAN = uint32(0xffff_ffff) // NaN pattern written by the CPU.

	// Smallest normalized REAL magnitude (2^-126). Results below it are
	// denormal and coerced to zero.
	REAL_MIN_NORMAL = 1.1754943508222875e-38
)

// DWordToFloat converts the raw accumulator bits into a float. Denormal
// patterns (exponent 0) read back as a signed zero.
func DWordToFloat(dword uint32) float64 {
	if dword&0x7f80_0000 == 0 {
		if dword&0x8000_0000 != 0 {
			return math.Copysign(0, -1)
		}
		return 0
	}
	return float64(math.Float32frombits(dword))
}

// FloatToDWord converts a float into raw REAL bits. NaN always encodes as
// the all-ones pattern, denormal results are flushed to a signed zero, and
// magnitudes beyond the REAL range become infinity.
func FloatToDWord(value float64) uint32 {
	switch {
	case math.IsNaN(value):
		return REAL_NAN
	case IsDenormal(value):
		if math.Signbit(value) {
			return 0x8000_0000
		}
		return 0
	}
	return math.Float32bits(float32(value))
}

// IsDenormal is true for non-zero values below the smallest normalized
// REAL magnitude.
func IsDenormal(value float64) bool {
	abs := math.Abs(value)
	return abs != 0 && abs < REAL_MIN_NORMAL
}

// IsNaNBits is true when the raw REAL bits describe a NaN.
func IsNaNBits(dword uint32) bool {
	return dword&0x7f80_0000 == 0x7f80_0000 && dword&0x007f_ffff != 0
}

// RoundToFloat32 rounds a float64 result to REAL precision.
func RoundToFloat32(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	if math.Abs(value) > math.MaxFloat32 {
		return math.Inf(int(math.Copysign(1, value)))
	}
	return float64(float32(value))
}
