package cpu

import (
	"math/bits"
)

func (cpu *Cpu) execShift(insn *Instruction) (err error) {
	s := &cpu.Status
	a1 := cpu.Accu[0]

	if insn.Type == INSN_RLDA || insn.Type == INSN_RRDA {
		// One bit rotate through A1.
		carry := b2w(s.A1)
		if insn.Type == INSN_RLDA {
			s.A1 = a1&0x8000_0000 != 0
			cpu.Accu[0] = a1<<1 | carry
		} else {
			s.A1 = a1&1 != 0
			cpu.Accu[0] = a1>>1 | carry<<31
		}
		s.A0 = false
		s.OV = false
		return
	}

	var count int
	if len(insn.Ops) > 0 {
		var n uint32
		n, err = cpu.Fetch(insn.Op(0), WIDTH_8|WIDTH_16)
		if err != nil {
			return
		}
		count = int(int16(n))
	} else {
		count = int(byte(cpu.Accu[1]))
	}
	if count <= 0 {
		return
	}

	// Counts are clamped to the register width.
	width := 32
	switch insn.Type {
	case INSN_SLW, INSN_SRW, INSN_SSI:
		width = 16
	}
	count = min(count, width)

	word := uint16(a1)
	var out uint32
	switch insn.Type {
	case INSN_SLW:
		v := uint64(word) << count
		out = uint32(v>>16) & 1
		cpu.setLow(uint16(v))
	case INSN_SRW:
		out = uint32(uint64(word)>>(count-1)) & 1
		cpu.setLow(word >> count)
	case INSN_SSI:
		out = uint32(int16(word)>>(count-1)) & 1
		cpu.setLow(uint16(int16(word) >> count))
	case INSN_SLD:
		v := uint64(a1) << count
		out = uint32(v>>32) & 1
		cpu.Accu[0] = uint32(v)
	case INSN_SRD:
		out = uint32(uint64(a1)>>(count-1)) & 1
		cpu.Accu[0] = a1 >> count
	case INSN_SSD:
		out = uint32(int32(a1)>>(count-1)) & 1
		cpu.Accu[0] = uint32(int32(a1) >> count)
	case INSN_RLD:
		cpu.Accu[0] = bits.RotateLeft32(a1, count)
		out = cpu.Accu[0] & 1
	case INSN_RRD:
		cpu.Accu[0] = bits.RotateLeft32(a1, -count)
		out = cpu.Accu[0] >> 31
	default:
		err = ErrInsnInvalid
		return
	}

	s.A1 = out != 0
	s.A0 = false
	s.OV = false
	return
}
