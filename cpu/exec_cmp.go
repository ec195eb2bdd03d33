package cpu

import (
	"cmp"
	"math"

	"github.com/ezrec/awl/dtype"
)

// relation tests a comparison result (-1, 0, 1) for one instruction.
func relation(it InsnType, c int) bool {
	switch it {
	case INSN_EQ_I, INSN_EQ_D, INSN_EQ_R:
		return c == 0
	case INSN_NE_I, INSN_NE_D, INSN_NE_R:
		return c != 0
	case INSN_GT_I, INSN_GT_D, INSN_GT_R:
		return c > 0
	case INSN_LT_I, INSN_LT_D, INSN_LT_R:
		return c < 0
	case INSN_GE_I, INSN_GE_D, INSN_GE_R:
		return c >= 0
	case INSN_LE_I, INSN_LE_D, INSN_LE_R:
		return c <= 0
	}
	return false
}

// execCompare compares ACCU2 against ACCU1.
func (cpu *Cpu) execCompare(insn *Instruction) {
	s := &cpu.Status
	a1, a2 := cpu.Accu[0], cpu.Accu[1]

	var c int
	switch insn.Type {
	case INSN_EQ_I, INSN_NE_I, INSN_GT_I, INSN_LT_I, INSN_GE_I, INSN_LE_I:
		c = cmp.Compare(int16(a2), int16(a1))
	case INSN_EQ_D, INSN_NE_D, INSN_GT_D, INSN_LT_D, INSN_GE_D, INSN_LE_D:
		c = cmp.Compare(int32(a2), int32(a1))
	default:
		x, y := dtype.DWordToFloat(a2), dtype.DWordToFloat(a1)
		if math.IsNaN(x) || math.IsNaN(y) {
			// Unordered: only <>R holds.
			s.VKE = insn.Type == INSN_NE_R
			s.setInvalid()
			s.STA = s.VKE
			s.OR = false
			s.NER = true
			return
		}
		c = cmp.Compare(x, y)
	}

	s.setCC(c > 0, c < 0)
	s.OV = false
	s.VKE = relation(insn.Type, c)
	s.STA = s.VKE
	s.OR = false
	s.NER = true
}
