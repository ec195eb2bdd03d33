package cpu

import (
	"maps"
	"slices"

	"github.com/ezrec/awl/memory"
)

// Load checks and installs a program, then resets the CPU. The built-in
// system functions are added unless the program defines its own.
func (cpu *Cpu) Load(prog *Program) (err error) {
	for _, blk := range SystemBlocks() {
		if _, found := prog.Block(blk.Kind, blk.Number); !found {
			prog.Blocks[blk.Key()] = blk
		}
	}

	for _, blk := range prog.All() {
		err = blk.Finalize()
		if err != nil {
			return
		}
	}

	dbs := memory.DataBlocks{}
	for _, number := range slices.Sorted(maps.Keys(prog.DataBlocks)) {
		def := prog.DataBlocks[number]
		data := def.Data
		if def.FB != 0 {
			kind := BLOCK_FB
			if def.SFB {
				kind = BLOCK_SFB
			}
			fb, ok := prog.Block(kind, def.FB)
			if !ok {
				err = &ErrField{Block: (BlockKey{Kind: kind, Number: def.FB}).String(), Name: "DB", Err: ErrBlockMissing}
				return
			}
			if data == nil {
				data = fb.InstanceData()
			}
			if len(data) < fb.InstanceSize {
				data = append(slices.Clone(data), make([]byte, fb.InstanceSize-len(data))...)
			}
		}
		db := memory.NewDataBlock(number, data)
		db.Instance = def.FB
		dbs.Add(db)
	}

	for _, blk := range prog.All() {
		for _, insn := range blk.Insns {
			cerr := cpu.check(prog, dbs, blk, insn)
			if cerr != nil {
				err = insnFault(blk, insn, cerr)
				return
			}
		}
	}

	cpu.program = prog
	cpu.DataBlocks = dbs
	cpu.Reset()
	return
}

// Program returns the loaded program.
func (cpu *Cpu) Program() *Program {
	return cpu.program
}

// check validates one instruction before the first execution.
func (cpu *Cpu) check(prog *Program, dbs memory.DataBlocks, blk *Block, insn *Instruction) (err error) {
	if insn.Type <= INSN_NONE || insn.Type >= insn_count {
		err = ErrInsnInvalid
		return
	}
	if insn.Type.IsExtended() && !cpu.Specs.ExtendedInsns {
		err = ErrExtended
		return
	}
	if insn.Type == INSN_GENERIC_CALL && insn.Routine == nil {
		err = ErrInsnInvalid
		return
	}

	for _, op := range insn.Ops {
		if op.Area != AREA_PARAM {
			continue
		}
		if _, err = paramField(blk, op.Number); err != nil {
			return
		}
	}

	switch insn.Type {
	case INSN_CALL, INSN_UC, INSN_CC:
		err = checkCall(prog, dbs, blk, insn)
	}
	return
}

// paramField returns the interface field referenced by a parameter operand.
func paramField(blk *Block, index int) (field *Field, err error) {
	if blk.Kind != BLOCK_FC && blk.Kind != BLOCK_SFC {
		err = ErrOperandArea
		return
	}
	if index < 0 || index >= len(blk.Fields) || !blk.Fields[index].Dir.IsParam() {
		err = ErrParamIndex(index)
		return
	}
	field = &blk.Fields[index]
	return
}

func checkCall(prog *Program, dbs memory.DataBlocks, blk *Block, insn *Instruction) (err error) {
	op := insn.Op(0)
	if op.Indirect != nil {
		// Indirect targets are only known at run time.
		if len(insn.Params) > 0 {
			err = ErrParamCall
		}
		return
	}
	kind, ok := callKind[op.Area]
	if !ok {
		err = ErrOperandArea
		return
	}
	target, ok := prog.Block(kind, op.Number)
	if !ok {
		err = ErrBlockMissing
		return
	}

	if insn.Type != INSN_CALL {
		// UC and CC only reach blocks without parameters.
		if len(insn.Params) > 0 || slices.ContainsFunc(target.Fields, func(field Field) bool { return field.Dir.IsParam() }) {
			err = ErrParamCall
		}
		return
	}

	if kind.HasInstance() {
		err = checkInstance(dbs, target, insn.Op(1))
		if err != nil {
			return
		}
	}

	seen := map[string]bool{}
	for _, param := range insn.Params {
		_, field, found := target.Field(param.Name)
		switch {
		case !found:
			err = ErrFieldMissing
		case !field.Dir.IsParam():
			err = ErrParamDirection
		case seen[param.Name]:
			err = ErrParamDuplicate
		default:
			err = checkActual(blk, field, param.Actual)
		}
		if err != nil {
			err = &ErrField{Block: target.String(), Name: param.Name, Err: err}
			return
		}
		seen[param.Name] = true
	}

	if kind.HasInstance() {
		return
	}
	for _, field := range target.Fields {
		if field.Dir.IsParam() && !seen[field.Name] {
			err = &ErrField{Block: target.String(), Name: field.Name, Err: ErrParamMissing}
			return
		}
	}
	return
}

// checkInstance validates, or creates, the instance DB of an FB call.
func checkInstance(dbs memory.DataBlocks, fb *Block, op Operand) (err error) {
	if (op.Area != AREA_BLOCK_DB && op.Area != AREA_BLOCK_DI) || op.Indirect != nil || op.Number <= 0 {
		err = ErrInstanceMissing
		return
	}
	db, found := dbs.Get(op.Number)
	if !found {
		db = memory.NewDataBlock(op.Number, fb.InstanceData())
		db.Instance = fb.Number
		dbs.Add(db)
		return
	}
	if db.Instance != fb.Number || db.Size() < fb.InstanceSize {
		err = ErrInstanceOwner
	}
	return
}

// checkActual validates an argument against the parameter it binds.
func checkActual(blk *Block, field *Field, actual Operand) (err error) {
	width := min(field.Width(), 32)

	if actual.Area.IsImmediate() {
		if field.Dir != DIR_IN {
			err = ErrParamImmediate
			return
		}
		if actual.Width > width {
			err = ErrParamWidth
		}
		return
	}

	actualWidth := actual.Width
	if actual.Area == AREA_PARAM {
		var caller *Field
		caller, err = paramField(blk, actual.Number)
		if err != nil {
			return
		}
		actualWidth = min(caller.Width(), 32)
	}
	if actualWidth != width {
		err = ErrParamWidth
	}
	return
}
