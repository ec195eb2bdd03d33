package script

import (
	"slices"

	"go.starlark.net/starlark"

	"github.com/ezrec/awl/cpu"
)

// operand is a cpu.Operand as a script value. A reference to an
// interface field is only resolved once the enclosing block is known.
type operand struct {
	op    cpu.Operand
	field string
}

var _ starlark.Value = (*operand)(nil)

func (o *operand) String() string {
	if o.field != "" {
		return "#" + o.field
	}
	return o.op.String()
}

func (o *operand) Type() string          { return "operand" }
func (o *operand) Freeze()               {}
func (o *operand) Truth() starlark.Bool  { return starlark.True }
func (o *operand) Hash() (uint32, error) { return 0, ErrUnhashable(o.Type()) }

// instruction is an instruction as a script value.
type instruction struct {
	insn   *cpu.Instruction
	fields map[int]string // Operand index to interface field.
	actual map[int]string // Parameter index to interface field of the caller.
}

var _ starlark.Value = (*instruction)(nil)

func (in *instruction) String() string        { return in.insn.String() }
func (in *instruction) Type() string          { return "insn" }
func (in *instruction) Freeze()               {}
func (in *instruction) Truth() starlark.Bool  { return starlark.True }
func (in *instruction) Hash() (uint32, error) { return 0, ErrUnhashable(in.Type()) }

// resolve returns a copy of the instruction with the field references
// bound to 'blk'. The same value may be placed in several blocks.
func (in *instruction) resolve(blk *cpu.Block) (insn *cpu.Instruction, err error) {
	insn = &cpu.Instruction{}
	*insn = *in.insn
	insn.Ops = slices.Clone(in.insn.Ops)
	insn.Params = slices.Clone(in.insn.Params)

	for n, name := range in.fields {
		insn.Ops[n], err = blk.Operand(name)
		if err != nil {
			return
		}
	}
	for n, name := range in.actual {
		insn.Params[n].Actual, err = blk.Operand(name)
		if err != nil {
			return
		}
	}
	return
}
