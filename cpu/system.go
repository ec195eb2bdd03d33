package cpu

import (
	"time"

	"github.com/ezrec/awl/dtype"
)

// System function numbers.
const (
	SFC_RE_TRIGR = 43 // Retrigger cycle time monitoring
	SFC_STP      = 46 // Stop the CPU
	SFC_WAIT     = 47 // Delay execution
	SFC_TIME_TCK = 64 // Read the system time
)

func systemFunction(number int, name string, routine Routine, fields ...Field) (blk *Block) {
	blk = NewBlock(BLOCK_SFC, number)
	blk.Name = name
	blk.Fields = fields
	blk.Append(&Instruction{Type: INSN_GENERIC_CALL, Routine: routine, Raw: name})
	return
}

// SystemBlocks returns the built-in system functions.
func SystemBlocks() []*Block {
	return []*Block{
		systemFunction(SFC_RE_TRIGR, "RE_TRIGR", sfcReTrigger),
		systemFunction(SFC_STP, "STP", sfcStop),
		systemFunction(SFC_WAIT, "WAIT", sfcWait,
			Field{Name: "WT", Dir: DIR_IN, Type: dtype.TYPE_INT}),
		systemFunction(SFC_TIME_TCK, "TIME_TCK", sfcTimeTick,
			Field{Name: "RET_VAL", Dir: DIR_OUT, Type: dtype.TYPE_TIME}),
	}
}

func sfcReTrigger(cpu *Cpu, frame *Frame) (err error) {
	cpu.cycleStart = cpu.Clock()
	return
}

func sfcStop(cpu *Cpu, frame *Frame) (err error) {
	cpu.raise(SIGNAL_SHUTDOWN)
	return
}

// sfcWait delays for WT microseconds.
func sfcWait(cpu *Cpu, frame *Frame) (err error) {
	op, err := frame.Block.Operand("WT")
	if err != nil {
		return
	}
	wt, err := cpu.Fetch(op, WIDTH_16)
	if err != nil {
		return
	}
	us := int16(wt)
	if us <= 0 {
		return
	}
	err = cpu.wait(time.Duration(us) * time.Microsecond)
	return
}

// sfcTimeTick returns the engine clock in milliseconds.
func sfcTimeTick(cpu *Cpu, frame *Frame) (err error) {
	op, err := frame.Block.Operand("RET_VAL")
	if err != nil {
		return
	}
	ms := uint32(cpu.Clock()/time.Millisecond) & 0x7fff_ffff
	err = cpu.Store(op, ms, WIDTH_32)
	return
}
