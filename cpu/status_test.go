package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusWord_Word(t *testing.T) {
	assert := assert.New(t)

	var s StatusWord
	assert.Equal(uint16(0), s.Word())

	s.VKE = true
	s.BIE = true
	assert.Equal(uint16(1<<STW_VKE|1<<STW_BIE), s.Word())

	for word := range uint16(0x200) {
		s.SetWord(word)
		assert.Equal(word, s.Word())
	}

	// Bits above BIE are not stored.
	s.SetWord(0xfe00)
	assert.Equal(uint16(0), s.Word())
}

func TestStatusWord_Overflow(t *testing.T) {
	assert := assert.New(t)

	var s StatusWord
	s.setOverflow(true)
	assert.True(s.OV)
	assert.True(s.OS)

	s.setOverflow(false)
	assert.False(s.OV)
	assert.True(s.OS, "OS is sticky")

	s.setSign(-5)
	assert.False(s.A1)
	assert.True(s.A0)
	assert.True(s.OS)

	s.setInvalid()
	assert.True(s.A1)
	assert.True(s.A0)
	assert.True(s.OV)
}

func TestStatusWord_Reset(t *testing.T) {
	assert := assert.New(t)

	s := StatusWord{VKE: true, OR: true, NER: true, OS: true, BIE: true}
	s.resetChain()
	assert.True(s.VKE)
	assert.True(s.STA)
	assert.False(s.OR)
	assert.False(s.NER)

	s.resetCall()
	assert.False(s.OS)
	assert.True(s.STA)
	assert.True(s.BIE)
	assert.True(s.VKE)
}

func TestStwBit_Eval(t *testing.T) {
	assert := assert.New(t)

	table := [...]struct {
		a1, a0, ov, os bool
		truth          []StwBit
	}{
		{false, false, false, false, []StwBit{STWBIT_EQ0, STWBIT_GE0, STWBIT_LE0}},
		{true, false, false, false, []StwBit{STWBIT_A1, STWBIT_NE0, STWBIT_GT0, STWBIT_GE0}},
		{false, true, false, false, []StwBit{STWBIT_A0, STWBIT_NE0, STWBIT_LT0, STWBIT_LE0}},
		{true, true, true, true, []StwBit{STWBIT_A1, STWBIT_A0, STWBIT_OV, STWBIT_OS, STWBIT_UO}},
	}

	for _, entry := range table {
		s := StatusWord{A1: entry.a1, A0: entry.a0, OV: entry.ov, OS: entry.os}
		for sb := STWBIT_A1; sb <= STWBIT_LE0; sb++ {
			expect := false
			for _, truth := range entry.truth {
				if truth == sb {
					expect = true
				}
			}
			assert.Equal(expect, sb.Eval(&s), "%v with %v", sb, s)
		}
	}
}
