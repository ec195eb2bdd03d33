package cpu

var timerMode = map[InsnType]TimerMode{
	INSN_SI: TIMER_SI,
	INSN_SV: TIMER_SV,
	INSN_SE: TIMER_SE,
	INSN_SS: TIMER_SS,
	INSN_SA: TIMER_SA,
}

func (cpu *Cpu) execTimer(insn *Instruction) (err error) {
	s := &cpu.Status
	vke := s.VKE

	op, err := cpu.resolve(insn.Op(0), false)
	if err != nil {
		return
	}

	switch insn.Type {
	case INSN_SI, INSN_SV, INSN_SE, INSN_SS, INSN_SA:
		if op.Area != AREA_T {
			err = ErrOperandArea
			return
		}
		var timer *Timer
		timer, err = cpu.timer(op.Number)
		if err != nil {
			return
		}
		err = timer.Run(timerMode[insn.Type], vke, uint16(cpu.Accu[0]), cpu.now)
	case INSN_FR:
		switch op.Area {
		case AREA_T:
			var timer *Timer
			timer, err = cpu.timer(op.Number)
			if err == nil {
				timer.Enable(vke)
			}
		case AREA_Z:
			var counter *Counter
			counter, err = cpu.counter(op.Number)
			if err == nil {
				counter.Enable(vke)
			}
		default:
			err = ErrOperandArea
		}
	case INSN_ZV, INSN_ZR:
		if op.Area != AREA_Z {
			err = ErrOperandArea
			return
		}
		var counter *Counter
		counter, err = cpu.counter(op.Number)
		if err != nil {
			return
		}
		if insn.Type == INSN_ZV {
			counter.Up(vke)
		} else {
			counter.Down(vke)
		}
	default:
		err = ErrInsnInvalid
	}
	if err != nil {
		return
	}

	s.resetChain()
	return
}
