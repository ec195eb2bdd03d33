package cpu

func (cpu *Cpu) execBool(frame *Frame, insn *Instruction) (err error) {
	s := &cpu.Status

	switch insn.Type {
	case INSN_U, INSN_UN:
		var x bool
		x, err = cpu.FetchBit(insn.Op(0))
		if err != nil {
			return
		}
		s.STA = x
		if insn.Type == INSN_UN {
			x = !x
		}
		if s.NER {
			s.VKE = s.VKE && x
		} else {
			s.VKE = x
		}
		s.VKE = s.VKE || s.OR
		s.NER = true
	case INSN_O, INSN_ON:
		if insn.Type == INSN_O && len(insn.Ops) == 0 {
			// AND before OR
			s.OR = s.VKE
			s.STA = true
			s.NER = false
			return
		}
		var x bool
		x, err = cpu.FetchBit(insn.Op(0))
		if err != nil {
			return
		}
		s.STA = x
		if insn.Type == INSN_ON {
			x = !x
		}
		if s.NER {
			s.VKE = s.VKE || x
		} else {
			s.VKE = x
		}
		s.OR = false
		s.NER = true
	case INSN_X, INSN_XN:
		var x bool
		x, err = cpu.FetchBit(insn.Op(0))
		if err != nil {
			return
		}
		s.STA = x
		if insn.Type == INSN_XN {
			x = !x
		}
		if s.NER {
			s.VKE = s.VKE != x
		} else {
			s.VKE = x
		}
		s.OR = false
		s.NER = true
	case INSN_U_PAREN, INSN_UN_PAREN, INSN_O_PAREN, INSN_ON_PAREN, INSN_X_PAREN, INSN_XN_PAREN:
		ok := frame.Parens.Push(ParenEntry{VKE: s.VKE, OR: s.OR, NER: s.NER, Opener: insn.Type})
		if !ok {
			err = ErrParenOverflow
			return
		}
		s.OR = false
		s.STA = true
		s.NER = false
	case INSN_PAREN_CLOSE:
		pe, ok := frame.Parens.Pop()
		if !ok {
			err = ErrParenUnderflow
			return
		}
		switch pe.Opener {
		case INSN_UN_PAREN, INSN_ON_PAREN, INSN_XN_PAREN:
			s.VKE = !s.VKE
		}
		switch pe.Opener {
		case INSN_U_PAREN, INSN_UN_PAREN:
			if pe.NER {
				s.VKE = pe.VKE && s.VKE
			}
			s.VKE = s.VKE || pe.OR
			s.OR = pe.OR
		case INSN_O_PAREN, INSN_ON_PAREN:
			if pe.NER {
				s.VKE = pe.VKE || s.VKE
			}
			s.OR = false
		case INSN_X_PAREN, INSN_XN_PAREN:
			if pe.NER {
				s.VKE = pe.VKE != s.VKE
			}
			s.OR = false
		}
		s.STA = true
		s.NER = true
	case INSN_ASSIGN:
		err = cpu.StoreBit(insn.Op(0), s.VKE)
		if err != nil {
			return
		}
		s.resetChain()
	case INSN_S, INSN_R:
		err = cpu.setReset(insn)
		if err != nil {
			return
		}
		s.resetChain()
	case INSN_SET:
		s.VKE = true
		s.STA = true
		s.OR = false
		s.NER = false
	case INSN_CLR:
		s.VKE = false
		s.STA = false
		s.OR = false
		s.NER = false
	case INSN_NOT:
		s.VKE = !s.VKE
		s.STA = true
	case INSN_SAVE:
		s.BIE = s.VKE
	case INSN_FP, INSN_FN:
		op := insn.Op(0)
		var memo bool
		memo, err = cpu.FetchBit(op)
		if err != nil {
			return
		}
		err = cpu.StoreBit(op, s.VKE)
		if err != nil {
			return
		}
		if insn.Type == INSN_FP {
			s.VKE = s.VKE && !memo
		} else {
			s.VKE = !s.VKE && memo
		}
		s.STA = s.VKE
		s.OR = false
		s.NER = true
	default:
		err = ErrInsnInvalid
	}
	return
}

// setReset runs S and R on bits, timers and counters.
func (cpu *Cpu) setReset(insn *Instruction) (err error) {
	vke := cpu.Status.VKE
	op, err := cpu.resolve(insn.Op(0), true)
	if err != nil {
		return
	}

	switch op.Area {
	case AREA_T:
		if insn.Type == INSN_S {
			err = ErrOperandArea
			return
		}
		var timer *Timer
		timer, err = cpu.timer(op.Number)
		if err == nil && vke {
			timer.Reset()
		}
	case AREA_Z:
		var counter *Counter
		counter, err = cpu.counter(op.Number)
		if err != nil {
			return
		}
		if insn.Type == INSN_S {
			err = counter.Set(vke, uint16(cpu.Accu[0]))
		} else {
			counter.Reset(vke)
		}
	default:
		if vke {
			err = cpu.StoreBit(insn.Op(0), insn.Type == INSN_S)
		}
	}
	return
}
