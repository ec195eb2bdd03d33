package cpu

func (cpu *Cpu) execJump(frame *Frame, insn *Instruction) (err error) {
	s := &cpu.Status

	var jump bool
	switch insn.Type {
	case INSN_SPA:
		jump = true
	case INSN_SPB, INSN_SPBN, INSN_SPBB, INSN_SPBNB:
		jump = s.VKE
		if insn.Type == INSN_SPBN || insn.Type == INSN_SPBNB {
			jump = !s.VKE
		}
		if insn.Type == INSN_SPBB || insn.Type == INSN_SPBNB {
			s.BIE = s.VKE
		}
		s.OR = false
		s.STA = true
		s.VKE = true
		s.NER = false
	case INSN_SPBI, INSN_SPBIN:
		jump = s.BIE == (insn.Type == INSN_SPBI)
		s.OR = false
		s.NER = false
	case INSN_SPO:
		jump = s.OV
	case INSN_SPS:
		jump = s.OS
		s.OS = false
	case INSN_SPZ:
		jump = STWBIT_EQ0.Eval(s)
	case INSN_SPN:
		jump = STWBIT_NE0.Eval(s)
	case INSN_SPP:
		jump = STWBIT_GT0.Eval(s)
	case INSN_SPM:
		jump = STWBIT_LT0.Eval(s)
	case INSN_SPPZ:
		jump = STWBIT_GE0.Eval(s)
	case INSN_SPMZ:
		jump = STWBIT_LE0.Eval(s)
	case INSN_SPU:
		jump = STWBIT_UO.Eval(s)
	case INSN_LOOP:
		count := uint16(cpu.Accu[0]) - 1
		cpu.setLow(count)
		jump = count != 0
	case INSN_SPL:
		index := int(byte(cpu.Accu[0]))
		if index < insn.listLen {
			// frame.Ip is already past the SPL.
			frame.Ip += index
			return
		}
		jump = true
	default:
		err = ErrInsnInvalid
		return
	}

	if jump {
		frame.Ip = insn.target
	}
	return
}
