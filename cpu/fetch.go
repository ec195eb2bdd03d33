package cpu

import (
	"github.com/ezrec/awl/dtype"
	"github.com/ezrec/awl/memory"
)

// Peripheral serves direct PE loads and PA transfers.
type Peripheral interface {
	DirectRead(offset int, width int) (value uint32, err error)
	DirectWrite(offset int, width int, value uint32) (err error)
}

func widthMask(width int) uint32 {
	if width >= 32 {
		return 0xffff_ffff
	}
	return (uint32(1) << width) - 1
}

var ptrArea = map[dtype.PointerArea]Area{
	dtype.PTR_AREA_E:  AREA_E,
	dtype.PTR_AREA_A:  AREA_A,
	dtype.PTR_AREA_M:  AREA_M,
	dtype.PTR_AREA_DB: AREA_DB,
	dtype.PTR_AREA_DI: AREA_DI,
	dtype.PTR_AREA_L:  AREA_L,
	dtype.PTR_AREA_V:  AREA_V,
}

// frame returns the active call frame.
func (cpu *Cpu) frame() (frame *Frame) {
	frame, _ = cpu.calls.Peek()
	return
}

// resolve turns a parameter or indirect operand into a direct one.
func (cpu *Cpu) resolve(op Operand, store bool) (res Operand, err error) {
	res = op
	if op.Area == AREA_NONE {
		err = ErrOperandMissing
		return
	}
	if op.Area == AREA_PARAM {
		frame := cpu.frame()
		if frame == nil {
			err = ErrOperandArea
			return
		}
		var field *Field
		res, field, err = frame.Param(op.Number)
		if err != nil {
			return
		}
		if res.Area.IsImmediate() {
			// Immediates take the width of the parameter.
			res.Width = min(field.Width(), 32)
		}
		return
	}

	ind := op.Indirect
	if ind == nil {
		return
	}
	res.Indirect = nil

	var bits int
	switch ind.Kind {
	case INDIRECT_MEMORY:
		if ind.Source == nil {
			err = ErrOperandMissing
			return
		}
		switch op.Area {
		case AREA_T, AREA_Z, AREA_BLOCK_FC, AREA_BLOCK_FB, AREA_BLOCK_DB, AREA_BLOCK_DI,
			AREA_BLOCK_SFC, AREA_BLOCK_SFB:
			var number uint32
			number, err = cpu.Fetch(*ind.Source, WIDTH_16)
			res.Number = int(number)
			return
		}
		var value uint32
		value, err = cpu.Fetch(*ind.Source, WIDTH_32)
		if err != nil {
			return
		}
		ptr := dtype.Pointer(value)
		if !ptr.InRange() {
			err = ErrIndirectRange
			return
		}
		bits = ptr.Bits()
	case INDIRECT_AR1, INDIRECT_AR2, INDIRECT_AR1_CROSS, INDIRECT_AR2_CROSS:
		ar := cpu.AR1
		if ind.Kind == INDIRECT_AR2 || ind.Kind == INDIRECT_AR2_CROSS {
			ar = cpu.AR2
		}
		ptr := dtype.Pointer(ar)
		bits = ptr.Bits() + ind.Offset.Bits()
		if ind.Kind == INDIRECT_AR1_CROSS || ind.Kind == INDIRECT_AR2_CROSS {
			code := ptr.Area()
			area, ok := ptrArea[code]
			switch {
			case ok:
				res.Area = area
			case code == dtype.PTR_AREA_P && store:
				res.Area = AREA_PA
			case code == dtype.PTR_AREA_P:
				res.Area = AREA_PE
			default:
				err = ErrIndirectRange
				return
			}
		}
	default:
		err = ErrOperandArea
		return
	}

	if bits < 0 || bits>>3 > dtype.PTR_BYTE_MAX {
		err = ErrIndirectRange
		return
	}
	res.Offset = Offset{Byte: bits >> 3, Bit: bits & 7}
	if res.Width != 1 && res.Offset.Bit != 0 {
		err = ErrIndirectRange
		return
	}
	return
}

// resolveActual resolves a call argument in the caller's context into an
// operand that stays valid inside the callee: locals become absolute L
// stack addresses and DB/DI accesses name their DB number.
func (cpu *Cpu) resolveActual(op Operand, store bool) (res Operand, err error) {
	res, err = cpu.resolve(op, store)
	if err != nil {
		return
	}
	switch res.Area {
	case AREA_L, AREA_V:
		var base int
		base, err = cpu.localWindow(res)
		if err != nil {
			return
		}
		res.Area = AREA_LSTACK
		res.Offset.Byte += base
	case AREA_DB:
		if res.Number == 0 {
			if cpu.DB == nil {
				err = ErrNoDataBlock
				return
			}
			res.Number = cpu.DB.Number
		}
	case AREA_DI:
		if cpu.DI == nil {
			err = ErrNoDataBlock
			return
		}
		res.Area = AREA_DB
		res.Number = cpu.DI.Number
	}
	return
}

// localWindow checks a local access against the frame's window and
// returns the window base in the L stack.
func (cpu *Cpu) localWindow(op Operand) (base int, err error) {
	depth := 0
	if op.Area == AREA_V {
		depth = 1
	}
	frame, ok := cpu.calls.Below(depth)
	if !ok {
		err = &memory.ErrRange{Area: op.Area.Name(MNEMONICS_DE), Offset: op.Offset.Byte, Width: op.Width}
		return
	}
	size := max(op.Width/8, 1)
	if op.Offset.Byte < 0 || op.Offset.Byte+size > frame.LocalSize {
		err = &memory.ErrRange{Area: op.Area.Name(MNEMONICS_DE), Offset: op.Offset.Byte, Width: op.Width, Size: frame.LocalSize}
		return
	}
	base = frame.LocalBase
	return
}

// dataBlock returns the DB addressed by a DB or DI operand. A fully
// qualified DB access opens the DB, as on the real CPU.
func (cpu *Cpu) dataBlock(op Operand) (db *memory.DataBlock, err error) {
	switch op.Area {
	case AREA_DB:
		if op.Number == 0 {
			db = cpu.DB
			break
		}
		var ok bool
		db, ok = cpu.DataBlocks.Get(op.Number)
		if !ok {
			err = ErrDataBlock
			return
		}
		cpu.DB = db
	case AREA_DI:
		db = cpu.DI
	}
	if db == nil {
		err = ErrNoDataBlock
	}
	return
}

// memArea returns the backing area and offset of a direct memory operand.
func (cpu *Cpu) memArea(op Operand) (area *memory.Area, offset int, err error) {
	offset = op.Offset.Byte
	switch op.Area {
	case AREA_E:
		area = cpu.Inputs
	case AREA_A:
		area = cpu.Outputs
	case AREA_M:
		area = cpu.Flags
	case AREA_PE:
		area = cpu.PeriphIn
	case AREA_PA:
		area = cpu.PeriphOut
	case AREA_LSTACK:
		area = cpu.Local
	case AREA_L, AREA_V:
		var base int
		base, err = cpu.localWindow(op)
		if err != nil {
			return
		}
		area = cpu.Local
		offset += base
	case AREA_DB, AREA_DI:
		var db *memory.DataBlock
		db, err = cpu.dataBlock(op)
		if err != nil {
			return
		}
		area = db.Area
	default:
		err = ErrOperandArea
	}
	return
}

func b2w(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Fetch reads an operand. The operand width must be one of 'widths'.
func (cpu *Cpu) Fetch(op Operand, widths WidthMask) (value uint32, err error) {
	op, err = cpu.resolve(op, false)
	if err != nil {
		return
	}
	if !widths.Has(op.Width) {
		err = ErrOperandWidth
		return
	}

	switch op.Area {
	case AREA_IMM, AREA_IMM_REAL, AREA_IMM_PTR, AREA_IMM_S5T:
		value = op.Value & widthMask(op.Width)
	case AREA_STW_BIT:
		value = b2w(op.Cond.Eval(&cpu.Status))
	case AREA_STW:
		value = uint32(cpu.Status.Word())
	case AREA_DBNO, AREA_DBLG:
		if cpu.DB != nil {
			value = uint32(cpu.DB.Number)
			if op.Area == AREA_DBLG {
				value = uint32(cpu.DB.Size())
			}
		}
	case AREA_DINO, AREA_DILG:
		if cpu.DI != nil {
			value = uint32(cpu.DI.Number)
			if op.Area == AREA_DILG {
				value = uint32(cpu.DI.Size())
			}
		}
	case AREA_AR1:
		value = cpu.AR1
	case AREA_AR2:
		value = cpu.AR2
	case AREA_T:
		var timer *Timer
		timer, err = cpu.timer(op.Number)
		if err != nil {
			return
		}
		if op.Width == 1 {
			value = b2w(timer.Output(cpu.now))
		} else {
			value = uint32(timer.Value(cpu.now))
		}
	case AREA_Z:
		var counter *Counter
		counter, err = cpu.counter(op.Number)
		if err != nil {
			return
		}
		if op.Width == 1 {
			value = b2w(counter.Output())
		} else {
			value = uint32(counter.Value)
		}
	case AREA_PE:
		if cpu.Peripheral != nil && op.Width != 1 {
			value, err = cpu.Peripheral.DirectRead(op.Offset.Byte, op.Width)
			if err != nil {
				return
			}
			err = cpu.PeriphIn.Store(op.Offset.Byte, 0, op.Width, value)
			return
		}
		value, err = cpu.PeriphIn.Fetch(op.Offset.Byte, op.Offset.Bit, op.Width)
	default:
		var area *memory.Area
		var offset int
		area, offset, err = cpu.memArea(op)
		if err != nil {
			return
		}
		value, err = area.Fetch(offset, op.Offset.Bit, op.Width)
	}
	return
}

// FetchBit reads a boolean operand.
func (cpu *Cpu) FetchBit(op Operand) (value bool, err error) {
	v, err := cpu.Fetch(op, WIDTH_1)
	value = v != 0
	return
}

// Store writes an operand. The operand width must be one of 'widths'.
func (cpu *Cpu) Store(op Operand, value uint32, widths WidthMask) (err error) {
	isParam := op.Area == AREA_PARAM
	op, err = cpu.resolve(op, true)
	if err != nil {
		return
	}
	if !widths.Has(op.Width) {
		err = ErrOperandWidth
		return
	}
	value &= widthMask(op.Width)

	switch op.Area {
	case AREA_IMM, AREA_IMM_REAL, AREA_IMM_PTR, AREA_IMM_S5T:
		if isParam {
			err = ErrParamReadOnly
		} else {
			err = ErrOperandArea
		}
	case AREA_STW:
		cpu.Status.SetWord(uint16(value))
	case AREA_AR1:
		cpu.AR1 = value
	case AREA_AR2:
		cpu.AR2 = value
	case AREA_PA:
		err = cpu.PeriphOut.Store(op.Offset.Byte, op.Offset.Bit, op.Width, value)
		if err != nil {
			return
		}
		// Transfers inside the process image update it as well.
		if op.Offset.Byte+max(op.Width/8, 1) <= cpu.Outputs.Size() {
			err = cpu.Outputs.Store(op.Offset.Byte, op.Offset.Bit, op.Width, value)
			if err != nil {
				return
			}
		}
		if cpu.Peripheral != nil && op.Width != 1 {
			err = cpu.Peripheral.DirectWrite(op.Offset.Byte, op.Width, value)
		}
	case AREA_E, AREA_A, AREA_M, AREA_L, AREA_V, AREA_LSTACK, AREA_DB, AREA_DI:
		var area *memory.Area
		var offset int
		area, offset, err = cpu.memArea(op)
		if err != nil {
			return
		}
		err = area.Store(offset, op.Offset.Bit, op.Width, value)
	default:
		err = ErrOperandArea
	}
	return
}

// StoreBit writes a boolean operand.
func (cpu *Cpu) StoreBit(op Operand, value bool) (err error) {
	return cpu.Store(op, b2w(value), WIDTH_1)
}

func (cpu *Cpu) timer(number int) (timer *Timer, err error) {
	if number < 0 || number >= len(cpu.Timers) {
		err = ErrTimer
		return
	}
	timer = &cpu.Timers[number]
	return
}

func (cpu *Cpu) counter(number int) (counter *Counter, err error) {
	if number < 0 || number >= len(cpu.Counters) {
		err = ErrCounter
		return
	}
	counter = &cpu.Counters[number]
	return
}
