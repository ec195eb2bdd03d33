package cpu

func (cpu *Cpu) execWord(insn *Instruction) (err error) {
	widths := WIDTH_16
	if insn.Type == INSN_UD || insn.Type == INSN_OD || insn.Type == INSN_XOD {
		widths = WIDTH_32
	}

	operand := cpu.Accu[1]
	if len(insn.Ops) > 0 {
		operand, err = cpu.Fetch(insn.Op(0), widths)
		if err != nil {
			return
		}
	}

	accu := cpu.Accu[0]
	var result uint32
	switch insn.Type {
	case INSN_UW, INSN_UD:
		result = accu & operand
	case INSN_OW, INSN_OD:
		result = accu | operand
	case INSN_XOW, INSN_XOD:
		result = accu ^ operand
	default:
		err = ErrInsnInvalid
		return
	}

	if widths == WIDTH_16 {
		cpu.setLow(uint16(result))
		result &= 0xffff
	} else {
		cpu.Accu[0] = result
	}

	if len(insn.Ops) == 0 {
		cpu.drop()
	}

	s := &cpu.Status
	s.setCC(result != 0, false)
	s.OV = false
	return
}
