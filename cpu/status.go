package cpu

import (
	"fmt"
)

// Status word bit positions.
const (
	STW_NER = 0 // Not first check (/FC)
	STW_VKE = 1 // Result of logic operation
	STW_STA = 2 // Status
	STW_OR  = 3 // Or
	STW_OS  = 4 // Overflow stored
	STW_OV  = 5 // Overflow
	STW_A0  = 6 // Condition code 0
	STW_A1  = 7 // Condition code 1
	STW_BIE = 8 // Binary result
)

// StatusWord is the flag register of the CPU.
type StatusWord struct {
	NER bool
	VKE bool
	STA bool
	OR  bool
	OS  bool
	OV  bool
	A0  bool
	A1  bool
	BIE bool
}

func b2u(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

// Reset clears all flags.
func (s *StatusWord) Reset() {
	*s = StatusWord{}
}

// Word returns the 16-bit status word.
func (s *StatusWord) Word() (word uint16) {
	word |= b2u(s.NER) << STW_NER
	word |= b2u(s.VKE) << STW_VKE
	word |= b2u(s.STA) << STW_STA
	word |= b2u(s.OR) << STW_OR
	word |= b2u(s.OS) << STW_OS
	word |= b2u(s.OV) << STW_OV
	word |= b2u(s.A0) << STW_A0
	word |= b2u(s.A1) << STW_A1
	word |= b2u(s.BIE) << STW_BIE
	return
}

// SetWord loads the flags from a 16-bit status word.
func (s *StatusWord) SetWord(word uint16) {
	bit := func(n int) bool { return (word>>n)&1 != 0 }
	s.NER = bit(STW_NER)
	s.VKE = bit(STW_VKE)
	s.STA = bit(STW_STA)
	s.OR = bit(STW_OR)
	s.OS = bit(STW_OS)
	s.OV = bit(STW_OV)
	s.A0 = bit(STW_A0)
	s.A1 = bit(STW_A1)
	s.BIE = bit(STW_BIE)
}

// setCC sets A1/A0.
func (s *StatusWord) setCC(a1, a0 bool) {
	s.A1 = a1
	s.A0 = a0
}

// setOverflow sets OV, and OS along with it. OS is only ever set here.
func (s *StatusWord) setOverflow(ov bool) {
	s.OV = ov
	if ov {
		s.OS = true
	}
}

// setSign sets A1/A0 from the sign of a result, clearing OV.
func (s *StatusWord) setSign(value int64) {
	s.setCC(value > 0, value < 0)
	s.OV = false
}

// setIntResult sets the flags of an integer add/subtract/negate whose
// true result is 'value' and whose wrapped result is 'wrapped'.
func (s *StatusWord) setIntResult(value int64, wrapped int64) {
	if value == wrapped {
		s.setSign(value)
		return
	}
	// Overflowed results report the sign of the wrapped value.
	s.setCC(wrapped > 0, wrapped < 0)
	s.setOverflow(true)
}

// setInvalid marks an undefined result (division by zero, NaN).
func (s *StatusWord) setInvalid() {
	s.setCC(true, true)
	s.setOverflow(true)
}

// resetChain ends a boolean chain after an assignment-class instruction.
func (s *StatusWord) resetChain() {
	s.OR = false
	s.STA = s.VKE
	s.NER = false
}

// resetCall resets the per-call flags on block entry and exit.
func (s *StatusWord) resetCall() {
	s.OS = false
	s.OR = false
	s.STA = true
	s.NER = false
}

func (s StatusWord) String() string {
	flag := func(name string, b bool) string {
		return fmt.Sprintf("%v:%d", name, b2u(b))
	}
	return fmt.Sprintf("%v %v %v %v %v %v %v %v %v",
		flag("BIE", s.BIE), flag("A1", s.A1), flag("A0", s.A0),
		flag("OV", s.OV), flag("OS", s.OS), flag("OR", s.OR),
		flag("STA", s.STA), flag("VKE", s.VKE), flag("NER", s.NER))
}
