package cpu

import (
	"math/bits"

	"github.com/ezrec/awl/dtype"
	"github.com/ezrec/awl/memory"
)

func (cpu *Cpu) execAccu(insn *Instruction) (err error) {
	accu := &cpu.Accu
	four := cpu.Specs.NrAccus == 4

	switch insn.Type {
	case INSN_L:
		var value uint32
		value, err = cpu.Fetch(insn.Op(0), WIDTH_DATA)
		if err != nil {
			return
		}
		cpu.push(value)
	case INSN_LC:
		var op Operand
		op, err = cpu.resolve(insn.Op(0), false)
		if err != nil {
			return
		}
		switch op.Area {
		case AREA_T:
			var timer *Timer
			timer, err = cpu.timer(op.Number)
			if err != nil {
				return
			}
			cpu.push(uint32(timer.S5Time(cpu.now)))
		case AREA_Z:
			var counter *Counter
			counter, err = cpu.counter(op.Number)
			if err != nil {
				return
			}
			cpu.push(uint32(counter.BCD()))
		default:
			err = ErrOperandArea
		}
	case INSN_T:
		err = cpu.Store(insn.Op(0), accu[0], WIDTH_DATA)
	case INSN_TAK:
		accu[0], accu[1] = accu[1], accu[0]
	case INSN_PUSH:
		cpu.push(accu[0])
	case INSN_POP:
		accu[0] = accu[1]
		if four {
			accu[1] = accu[2]
			accu[2] = accu[3]
		}
	case INSN_ENT:
		if four {
			accu[3] = accu[2]
			accu[2] = accu[1]
		}
	case INSN_LEAVE:
		if four {
			accu[1] = accu[2]
			accu[2] = accu[3]
		}
	case INSN_INC, INSN_DEC:
		var n uint32
		n, err = cpu.Fetch(insn.Op(0), WIDTH_8|WIDTH_16)
		if err != nil {
			return
		}
		low := byte(accu[0])
		if insn.Type == INSN_INC {
			low += byte(n)
		} else {
			low -= byte(n)
		}
		accu[0] = (accu[0] &^ 0xff) | uint32(low)
	case INSN_TAW:
		cpu.setLow(bits.ReverseBytes16(uint16(accu[0])))
	case INSN_TAD:
		accu[0] = bits.ReverseBytes32(accu[0])
	case INSN_LAR1, INSN_LAR2:
		value := accu[0]
		if len(insn.Ops) > 0 {
			value, err = cpu.Fetch(insn.Op(0), WIDTH_32)
			if err != nil {
				return
			}
		}
		if insn.Type == INSN_LAR1 {
			cpu.AR1 = value
		} else {
			cpu.AR2 = value
		}
	case INSN_TAR1, INSN_TAR2:
		value := cpu.AR1
		if insn.Type == INSN_TAR2 {
			value = cpu.AR2
		}
		if len(insn.Ops) == 0 {
			cpu.push(value)
			return
		}
		err = cpu.Store(insn.Op(0), value, WIDTH_32)
	case INSN_TAR:
		cpu.AR1, cpu.AR2 = cpu.AR2, cpu.AR1
	case INSN_PAR1, INSN_PAR2:
		delta := int32(int16(accu[0]))
		if len(insn.Ops) > 0 {
			var ptr uint32
			ptr, err = cpu.Fetch(insn.Op(0), WIDTH_32)
			if err != nil {
				return
			}
			delta = int32(ptr & 0x00ff_ffff)
		}
		if insn.Type == INSN_PAR1 {
			cpu.AR1 = uint32(dtype.Pointer(cpu.AR1).Add(delta))
		} else {
			cpu.AR2 = uint32(dtype.Pointer(cpu.AR2).Add(delta))
		}
	case INSN_AUF:
		err = cpu.openDataBlock(insn.Op(0))
	case INSN_TDB:
		cpu.DB, cpu.DI = cpu.DI, cpu.DB
	case INSN_BLD, INSN_NOP0, INSN_NOP1:
		// Display and padding instructions.
	default:
		err = ErrInsnInvalid
	}
	return
}

// openDataBlock runs AUF DB n and AUF DI n. Number 0 closes the register.
func (cpu *Cpu) openDataBlock(op Operand) (err error) {
	op, err = cpu.resolve(op, false)
	if err != nil {
		return
	}
	if op.Area != AREA_BLOCK_DB && op.Area != AREA_BLOCK_DI {
		err = ErrOperandArea
		return
	}

	var db *memory.DataBlock
	if op.Number != 0 {
		var ok bool
		db, ok = cpu.DataBlocks.Get(op.Number)
		if !ok {
			err = ErrDataBlock
			return
		}
	}
	if op.Area == AREA_BLOCK_DB {
		cpu.DB = db
	} else {
		cpu.DI = db
	}
	return
}
