package cpu

import (
	"math"

	"github.com/ezrec/awl/dtype"
)

var rounding = map[InsnType]func(float64) float64{
	INSN_RND:   math.RoundToEven,
	INSN_RNDP:  math.Ceil,
	INSN_RNDM:  math.Floor,
	INSN_TRUNC: math.Trunc,
}

func (cpu *Cpu) execConvert(insn *Instruction) (err error) {
	s := &cpu.Status
	a1 := cpu.Accu[0]

	switch insn.Type {
	case INSN_BTI:
		var value int16
		value, err = dtype.BcdToInt16(uint16(a1))
		if err != nil {
			s.setOverflow(true)
			return
		}
		cpu.setLow(uint16(value))
	case INSN_ITB:
		bcd, cerr := dtype.Int16ToBcd(int16(a1))
		if cerr != nil {
			s.setOverflow(true)
			return
		}
		cpu.setLow(bcd)
	case INSN_BTD:
		var value int32
		value, err = dtype.BcdToInt32(a1)
		if err != nil {
			s.setOverflow(true)
			return
		}
		cpu.Accu[0] = uint32(value)
	case INSN_DTB:
		bcd, cerr := dtype.Int32ToBcd(int32(a1))
		if cerr != nil {
			s.setOverflow(true)
			return
		}
		cpu.Accu[0] = bcd
	case INSN_ITD:
		cpu.Accu[0] = uint32(int32(int16(a1)))
	case INSN_DTR:
		cpu.Accu[0] = dtype.FloatToDWord(float64(float32(int32(a1))))
	case INSN_RND, INSN_RNDP, INSN_RNDM, INSN_TRUNC:
		x := dtype.DWordToFloat(a1)
		r := rounding[insn.Type](x)
		if math.IsNaN(r) || r < math.MinInt32 || r > math.MaxInt32 {
			s.setOverflow(true)
			return
		}
		cpu.Accu[0] = uint32(int32(r))
	default:
		err = ErrInsnInvalid
	}
	return
}
