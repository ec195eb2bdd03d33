package cpu

import (
	"math"

	"github.com/ezrec/awl/dtype"
)

// setRealResult stores a REAL result in ACCU1 and sets A1/A0 and OV.
func (cpu *Cpu) setRealResult(value float64) {
	s := &cpu.Status
	exact := value
	value = dtype.RoundToFloat32(value)
	switch {
	case math.IsNaN(value):
		s.setInvalid()
	case math.IsInf(value, 1):
		s.setCC(true, false)
		s.setOverflow(true)
	case math.IsInf(value, -1):
		s.setCC(false, true)
		s.setOverflow(true)
	case dtype.IsDenormal(value), value == 0 && exact != 0:
		// Underflow reads as zero.
		s.setCC(false, false)
		s.setOverflow(true)
	default:
		s.setCC(value > 0, value < 0)
		s.OV = false
	}
	cpu.Accu[0] = dtype.FloatToDWord(value)
}

func (cpu *Cpu) execArith(insn *Instruction) (err error) {
	s := &cpu.Status
	a1, a2 := cpu.Accu[0], cpu.Accu[1]

	switch insn.Type {
	case INSN_ADD_I, INSN_SUB_I:
		x, y := int64(int16(a2)), int64(int16(a1))
		r := x + y
		if insn.Type == INSN_SUB_I {
			r = x - y
		}
		wrapped := int64(int16(r))
		cpu.setLow(uint16(r))
		s.setIntResult(r, wrapped)
		cpu.drop()
	case INSN_MUL_I:
		r := int64(int16(a2)) * int64(int16(a1))
		cpu.Accu[0] = uint32(int32(r))
		if r != int64(int16(r)) {
			s.setCC(r > 0, r < 0)
			s.setOverflow(true)
		} else {
			s.setSign(r)
		}
		cpu.drop()
	case INSN_DIV_I:
		x, y := int32(int16(a2)), int32(int16(a1))
		if y == 0 {
			s.setInvalid()
			cpu.drop()
			return
		}
		q, rem := x/y, x%y
		cpu.Accu[0] = uint32(uint16(rem))<<16 | uint32(uint16(q))
		if q != int32(int16(q)) {
			s.setCC(q > 0, q < 0)
			s.setOverflow(true)
		} else {
			s.setSign(int64(q))
		}
		cpu.drop()
	case INSN_ADD_D, INSN_SUB_D:
		x, y := int64(int32(a2)), int64(int32(a1))
		r := x + y
		if insn.Type == INSN_SUB_D {
			r = x - y
		}
		cpu.Accu[0] = uint32(r)
		s.setIntResult(r, int64(int32(r)))
		cpu.drop()
	case INSN_MUL_D:
		r := int64(int32(a2)) * int64(int32(a1))
		cpu.Accu[0] = uint32(r)
		if r != int64(int32(r)) {
			s.setCC(r > 0, r < 0)
			s.setOverflow(true)
		} else {
			s.setSign(r)
		}
		cpu.drop()
	case INSN_DIV_D, INSN_MOD:
		x, y := int64(int32(a2)), int64(int32(a1))
		if y == 0 {
			s.setInvalid()
			cpu.drop()
			return
		}
		r := x / y
		if insn.Type == INSN_MOD {
			r = x % y
		}
		cpu.Accu[0] = uint32(r)
		s.setIntResult(r, int64(int32(r)))
		cpu.drop()
	case INSN_ADD_R, INSN_SUB_R, INSN_MUL_R, INSN_DIV_R:
		x, y := dtype.DWordToFloat(a2), dtype.DWordToFloat(a1)
		var r float64
		switch insn.Type {
		case INSN_ADD_R:
			r = x + y
		case INSN_SUB_R:
			r = x - y
		case INSN_MUL_R:
			r = x * y
		case INSN_DIV_R:
			r = x / y
			if y == 0 && x == 0 {
				r = math.NaN()
			}
		}
		cpu.setRealResult(r)
		cpu.drop()
	case INSN_ADD:
		var op Operand
		op, err = cpu.resolve(insn.Op(0), false)
		if err != nil {
			return
		}
		if !op.Area.IsImmediate() {
			err = ErrOperandArea
			return
		}
		switch op.Width {
		case 32:
			cpu.Accu[0] = a1 + op.Value
		case 8, 16:
			cpu.setLow(uint16(a1) + uint16(int16(op.Value)))
		default:
			err = ErrOperandWidth
		}
	case INSN_ABS:
		cpu.Accu[0] = a1 &^ 0x8000_0000
	case INSN_SQR, INSN_SQRT, INSN_EXP, INSN_LN, INSN_SIN, INSN_COS, INSN_TAN,
		INSN_ASIN, INSN_ACOS, INSN_ATAN:
		x := dtype.DWordToFloat(a1)
		cpu.setRealResult(realFunc[insn.Type](x))
	case INSN_NEGI:
		r := -int64(int16(a1))
		cpu.setLow(uint16(r))
		s.setIntResult(r, int64(int16(r)))
	case INSN_NEGD:
		r := -int64(int32(a1))
		cpu.Accu[0] = uint32(r)
		s.setIntResult(r, int64(int32(r)))
	case INSN_NEGR:
		cpu.Accu[0] = a1 ^ 0x8000_0000
	case INSN_INVI:
		cpu.setLow(^uint16(a1))
	case INSN_INVD:
		cpu.Accu[0] = ^a1
	default:
		err = ErrInsnInvalid
	}
	return
}

var realFunc = map[InsnType]func(float64) float64{
	INSN_SQR:  func(x float64) float64 { return x * x },
	INSN_SQRT: math.Sqrt,
	INSN_EXP:  math.Exp,
	INSN_LN:   realLn,
	INSN_SIN:  math.Sin,
	INSN_COS:  math.Cos,
	INSN_TAN:  math.Tan,
	INSN_ASIN: math.Asin,
	INSN_ACOS: math.Acos,
	INSN_ATAN: math.Atan,
}

// realLn is undefined for zero as well as for negative values.
func realLn(x float64) float64 {
	if x <= 0 {
		return math.NaN()
	}
	return math.Log(x)
}
