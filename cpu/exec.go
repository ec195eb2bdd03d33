package cpu

// execute runs a single instruction in 'frame'. The frame's Ip already
// points past the instruction.
func (cpu *Cpu) execute(frame *Frame, insn *Instruction) (err error) {
	if insn.Type.IsExtended() && !cpu.Specs.ExtendedInsns {
		err = ErrExtended
		return
	}

	switch insn.Type.Class() {
	case CLASS_BOOL:
		err = cpu.execBool(frame, insn)
	case CLASS_WORD:
		err = cpu.execWord(insn)
	case CLASS_ACCU:
		err = cpu.execAccu(insn)
	case CLASS_ARITH:
		err = cpu.execArith(insn)
	case CLASS_CMP:
		cpu.execCompare(insn)
	case CLASS_CONV:
		err = cpu.execConvert(insn)
	case CLASS_SHIFT:
		err = cpu.execShift(insn)
	case CLASS_TIMER:
		err = cpu.execTimer(insn)
	case CLASS_JUMP:
		err = cpu.execJump(frame, insn)
	case CLASS_CALL:
		err = cpu.execCall(insn)
	case CLASS_EXT:
		err = cpu.execExtended(frame, insn)
	default:
		err = ErrInsnInvalid
	}
	return
}

// push loads a value into ACCU1, moving the others up.
func (cpu *Cpu) push(value uint32) {
	if cpu.Specs.NrAccus == 4 {
		cpu.Accu[3] = cpu.Accu[2]
		cpu.Accu[2] = cpu.Accu[1]
	}
	cpu.Accu[1] = cpu.Accu[0]
	cpu.Accu[0] = value
}

// drop moves ACCU3 and ACCU4 down after a two operand operation.
func (cpu *Cpu) drop() {
	if cpu.Specs.NrAccus == 4 {
		cpu.Accu[1] = cpu.Accu[2]
		cpu.Accu[2] = cpu.Accu[3]
	}
}

// setLow replaces ACCU1-L.
func (cpu *Cpu) setLow(value uint16) {
	cpu.Accu[0] = (cpu.Accu[0] & 0xffff_0000) | uint32(value)
}
