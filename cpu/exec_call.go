package cpu

import (
	"github.com/ezrec/awl/memory"
)

var callKind = map[Area]BlockKind{
	AREA_BLOCK_FC:  BLOCK_FC,
	AREA_BLOCK_FB:  BLOCK_FB,
	AREA_BLOCK_SFC: BLOCK_SFC,
	AREA_BLOCK_SFB: BLOCK_SFB,
}

func (cpu *Cpu) execCall(insn *Instruction) (err error) {
	s := &cpu.Status

	switch insn.Type {
	case INSN_CALL, INSN_UC:
		err = cpu.call(insn)
	case INSN_CC:
		if s.VKE {
			err = cpu.call(insn)
			return
		}
		s.resetCall()
	case INSN_BE, INSN_BEA:
		err = cpu.leave()
	case INSN_BEB:
		if s.VKE {
			err = cpu.leave()
			return
		}
		s.OR = false
		s.STA = true
		s.VKE = true
		s.NER = false
	default:
		err = ErrInsnInvalid
	}
	return
}

// lookup resolves the target block of a call instruction.
func (cpu *Cpu) lookup(op Operand) (blk *Block, err error) {
	op, err = cpu.resolve(op, false)
	if err != nil {
		return
	}
	kind, ok := callKind[op.Area]
	if !ok {
		err = ErrOperandArea
		return
	}
	blk, ok = cpu.program.Block(kind, op.Number)
	if !ok {
		err = ErrBlockMissing
	}
	return
}

// instance returns the instance DB named by a CALL.
func (cpu *Cpu) instance(insn *Instruction) (db *memory.DataBlock, err error) {
	op, err := cpu.resolve(insn.Op(1), false)
	if err != nil {
		err = ErrInstanceMissing
		return
	}
	if op.Area != AREA_BLOCK_DB && op.Area != AREA_BLOCK_DI {
		err = ErrOperandArea
		return
	}
	db, ok := cpu.DataBlocks.Get(op.Number)
	if !ok {
		err = ErrInstanceMissing
	}
	return
}

type binding struct {
	index  int
	actual Operand
}

// call invokes the target of CALL, UC or CC.
func (cpu *Cpu) call(insn *Instruction) (err error) {
	blk, err := cpu.lookup(insn.Op(0))
	if err != nil {
		return
	}

	var instance *memory.DataBlock
	if blk.Kind.HasInstance() && len(insn.Ops) > 1 {
		instance, err = cpu.instance(insn)
		if err != nil {
			return
		}
	}
	if blk.Kind.HasInstance() && instance == nil && len(insn.Params) > 0 {
		err = ErrInstanceMissing
		return
	}

	// Arguments are evaluated in the caller's context.
	var bindings []binding
	var copyOut []paramCopy
	for _, param := range insn.Params {
		index, field, ok := blk.Field(param.Name)
		if !ok || !field.Dir.IsParam() {
			err = &ErrField{Block: blk.String(), Name: param.Name, Err: ErrFieldMissing}
			return
		}
		store := field.Dir != DIR_IN
		if store && param.Actual.Area.IsImmediate() {
			err = &ErrField{Block: blk.String(), Name: param.Name, Err: ErrParamImmediate}
			return
		}
		if instance == nil {
			var actual Operand
			actual, err = cpu.resolveActual(param.Actual, store)
			if err != nil {
				return
			}
			bindings = append(bindings, binding{index: index, actual: actual})
			continue
		}
		if field.Dir == DIR_IN || field.Dir == DIR_IN_OUT {
			var value uint32
			value, err = cpu.Fetch(param.Actual, WIDTH_1|WIDTH_DATA)
			if err != nil {
				return
			}
			err = instance.Store(field.Offset.Byte, field.Offset.Bit, min(field.Width(), 32), value)
			if err != nil {
				return
			}
		}
		if store {
			var actual Operand
			actual, err = cpu.resolveActual(param.Actual, true)
			if err != nil {
				return
			}
			copyOut = append(copyOut, paramCopy{field: field, actual: actual})
		}
	}

	frame, err := cpu.enter(blk, insn)
	if err != nil {
		return
	}
	for _, b := range bindings {
		frame.bind(b.index, b.actual)
	}
	if instance != nil {
		frame.Instance = instance
		frame.copyOut = copyOut
		cpu.DI = instance
	}
	return
}

// enter pushes a frame for 'blk', called from 'caller'.
func (cpu *Cpu) enter(blk *Block, caller *Instruction) (frame *Frame, err error) {
	frame = newFrame(blk, caller, cpu.localTop, cpu.Specs.ParenStackDepth)
	top := frame.LocalBase + frame.LocalSize
	if top > cpu.Local.Size() {
		err = ErrLocalOverflow
		return
	}
	if !cpu.calls.Push(frame) {
		err = ErrCallOverflow
		return
	}
	cpu.localTop = top
	clear(cpu.Local.Data[frame.LocalBase:top])

	frame.savedDB = cpu.DB
	frame.savedDI = cpu.DI
	cpu.Status.resetCall()

	if cpu.Verbose {
		cpu.logFrame("enter", frame)
	}
	return
}

// leave returns from the active block.
func (cpu *Cpu) leave() (err error) {
	frame, ok := cpu.calls.Pop()
	if !ok {
		return
	}
	if cpu.Verbose {
		cpu.logFrame("leave", frame)
	}
	cpu.localTop = frame.LocalBase

	// The caller's data blocks come back even when a copy-out fails.
	defer func() {
		cpu.DB = frame.savedDB
		cpu.DI = frame.savedDI
		cpu.Status.resetCall()
	}()

	for _, pc := range frame.copyOut {
		field := pc.field
		var value uint32
		value, err = frame.Instance.Fetch(field.Offset.Byte, field.Offset.Bit, min(field.Width(), 32))
		if err != nil {
			return
		}
		err = cpu.Store(pc.actual, value, WIDTH_1|WIDTH_DATA)
		if err != nil {
			return
		}
	}

	return
}
