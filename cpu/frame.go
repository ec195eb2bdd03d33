package cpu

import (
	"github.com/ezrec/awl/memory"
)

// paramCopy is an FB output transferred to its actual after return.
type paramCopy struct {
	field  *Field
	actual Operand
}

// Frame is the state of one block invocation.
type Frame struct {
	Block     *Block
	Ip        int               // Index of the next instruction.
	Insn      *Instruction      // Calling instruction, nil for an OB.
	LocalBase int               // Start of the local window in the L stack.
	LocalSize int               // Size of the local window.
	Parens    Stack[ParenEntry] // Open brackets.
	Instance  *memory.DataBlock // Instance DB of an FB call.

	params  []Operand // FC actuals by field index, frame independent.
	bound   []bool
	savedDB *memory.DataBlock
	savedDI *memory.DataBlock
	copyOut []paramCopy
}

func newFrame(blk *Block, caller *Instruction, localBase int, parenDepth int) (frame *Frame) {
	frame = &Frame{
		Block:     blk,
		Insn:      caller,
		LocalBase: localBase,
		LocalSize: blk.LocalSize(),
		Parens:    Stack[ParenEntry]{Limit: parenDepth},
	}
	if blk.Kind == BLOCK_FC || blk.Kind == BLOCK_SFC {
		frame.params = make([]Operand, len(blk.Fields))
		frame.bound = make([]bool, len(blk.Fields))
	}
	return
}

// Param returns the actual bound to an FC parameter.
func (frame *Frame) Param(index int) (op Operand, field *Field, err error) {
	if index < 0 || index >= len(frame.Block.Fields) || index >= len(frame.params) {
		err = ErrParamIndex(index)
		return
	}
	field = &frame.Block.Fields[index]
	if !frame.bound[index] {
		err = &ErrField{Block: frame.Block.String(), Name: field.Name, Err: ErrParamUnbound}
		return
	}
	op = frame.params[index]
	return
}

// bind records the actual of an FC parameter.
func (frame *Frame) bind(index int, actual Operand) {
	frame.params[index] = actual
	frame.bound[index] = true
}

// Line returns the source line of the instruction at 'ip'.
func (frame *Frame) Line(ip int) int {
	if ip < 0 || ip >= len(frame.Block.Insns) {
		return 0
	}
	return frame.Block.Insns[ip].LineNo
}
