package cpu

import (
	"time"
)

func (cpu *Cpu) execExtended(frame *Frame, insn *Instruction) (err error) {
	switch insn.Type {
	case INSN_STWRST:
		cpu.Status.Reset()
	case INSN_SLEEP:
		var ms uint32
		ms, err = cpu.Fetch(insn.Op(0), WIDTH_16|WIDTH_32)
		if err != nil {
			return
		}
		err = cpu.wait(time.Duration(ms) * time.Millisecond)
	case INSN_REBOOT:
		cpu.raise(SIGNAL_SOFT_REBOOT)
	case INSN_SHUTDOWN:
		cpu.raise(SIGNAL_SHUTDOWN)
	case INSN_GENERIC_CALL:
		if insn.Routine == nil {
			err = ErrInsnInvalid
			return
		}
		err = insn.Routine(cpu, frame)
	default:
		err = ErrInsnInvalid
	}
	return
}

// wait sleeps, unless that would overrun the cycle time limit.
func (cpu *Cpu) wait(d time.Duration) (err error) {
	if d <= 0 {
		return
	}
	elapsed := cpu.Clock() - cpu.cycleStart
	if elapsed+d > cpu.Specs.CycleTimeLimit {
		err = ErrCycleTime
		return
	}
	cpu.Sleep(d)
	return
}
