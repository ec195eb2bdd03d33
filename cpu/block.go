package cpu

import (
	"fmt"

	"github.com/ezrec/awl/dtype"
)

// BlockKind is the kind of a code block.
type BlockKind int

const (
	BLOCK_OB  = BlockKind(0) // OB
	BLOCK_FC  = BlockKind(1) // FC
	BLOCK_FB  = BlockKind(2) // FB
	BLOCK_SFC = BlockKind(3) // SFC
	BLOCK_SFB = BlockKind(4) // SFB
)

func (bk BlockKind) String() string {
	switch bk {
	case BLOCK_OB:
		return "OB"
	case BLOCK_FC:
		return "FC"
	case BLOCK_FB:
		return "FB"
	case BLOCK_SFC:
		return "SFC"
	case BLOCK_SFB:
		return "SFB"
	}
	return "?"
}

// HasInstance is true for blocks called with an instance data block.
func (bk BlockKind) HasInstance() bool {
	return bk == BLOCK_FB || bk == BLOCK_SFB
}

// Direction of a block interface field.
type Direction int

const (
	DIR_IN     = Direction(0) // IN
	DIR_OUT    = Direction(1) // OUT
	DIR_IN_OUT = Direction(2) // IN_OUT
	DIR_STAT   = Direction(3) // STAT
	DIR_TEMP   = Direction(4) // TEMP
)

func (dir Direction) String() string {
	switch dir {
	case DIR_IN:
		return "IN"
	case DIR_OUT:
		return "OUT"
	case DIR_IN_OUT:
		return "IN_OUT"
	case DIR_STAT:
		return "STAT"
	case DIR_TEMP:
		return "TEMP"
	}
	return "?"
}

// IsParam is true for directions bound by a CALL parameter list.
func (dir Direction) IsParam() bool {
	return dir == DIR_IN || dir == DIR_OUT || dir == DIR_IN_OUT
}

// Field is a block interface field.
type Field struct {
	Name    string
	Dir     Direction
	Type    dtype.Type
	Default uint32 // Initial value in the instance data block.
	Offset  Offset // Instance DB offset (IN..STAT) or local offset (TEMP).
}

// Width returns the access width of the field.
func (field *Field) Width() int {
	return field.Type.Width()
}

// Block is a code block: an interface and a list of instructions.
type Block struct {
	Kind       BlockKind
	Number     int
	Name       string // Symbolic name, diagnostic only.
	Fields     []Field
	Insns      []*Instruction
	LocalBytes int // Local data size in addition to TEMP fields.

	TempSize     int // Bytes of TEMP fields, set by Finalize.
	InstanceSize int // Bytes of instance data, set by Finalize.

	labels    map[string]int
	finalized bool
}

// NewBlock creates an empty block.
func NewBlock(kind BlockKind, number int) (blk *Block) {
	blk = &Block{
		Kind:   kind,
		Number: number,
	}
	return
}

// Key returns the program lookup key of the block.
func (blk *Block) Key() BlockKey {
	return BlockKey{Kind: blk.Kind, Number: blk.Number}
}

func (blk *Block) String() string {
	if blk.Name != "" {
		return fmt.Sprintf("%v %d (%v)", blk.Kind, blk.Number, blk.Name)
	}
	return fmt.Sprintf("%v %d", blk.Kind, blk.Number)
}

// Append adds instructions to the block.
func (blk *Block) Append(insns ...*Instruction) {
	blk.Insns = append(blk.Insns, insns...)
	blk.finalized = false
}

// AddField adds an interface field.
func (blk *Block) AddField(name string, dir Direction, typ dtype.Type, value uint32) {
	blk.Fields = append(blk.Fields, Field{Name: name, Dir: dir, Type: typ, Default: value})
	blk.finalized = false
}

// Field returns the interface field index with the name.
func (blk *Block) Field(name string) (index int, field *Field, ok bool) {
	for n := range blk.Fields {
		if blk.Fields[n].Name == name {
			index = n
			field = &blk.Fields[n]
			ok = true
			return
		}
	}
	return
}

// LocalSize returns the size of the local data window of a call.
func (blk *Block) LocalSize() int {
	return max(blk.TempSize, blk.LocalBytes)
}

// Label returns the instruction index of a label.
func (blk *Block) Label(label string) (ip int, ok bool) {
	ip, ok = blk.labels[label]
	return
}

// fieldLayout assigns S7 style offsets: BOOLs pack into bytes, byte
// types are byte aligned, everything else is word aligned.
type fieldLayout struct {
	byteOffset int
	bitOffset  int
}

func (fl *fieldLayout) place(typ dtype.Type) (off Offset) {
	width := typ.Width()
	if width == 1 {
		if fl.bitOffset == 8 {
			fl.byteOffset++
			fl.bitOffset = 0
		}
		off = Offset{Byte: fl.byteOffset, Bit: fl.bitOffset}
		fl.bitOffset++
		return
	}
	if fl.bitOffset != 0 {
		fl.byteOffset++
		fl.bitOffset = 0
	}
	if width > 8 && fl.byteOffset%2 != 0 {
		fl.byteOffset++
	}
	off = Offset{Byte: fl.byteOffset}
	fl.byteOffset += typ.Bytes()
	return
}

func (fl *fieldLayout) size() int {
	size := fl.byteOffset
	if fl.bitOffset != 0 {
		size++
	}
	return size + size%2
}

// Finalize lays out the interface and resolves the jump labels.
func (blk *Block) Finalize() (err error) {
	if blk.finalized {
		return
	}

	var instance, temp fieldLayout
	names := map[string]bool{}
	for n := range blk.Fields {
		field := &blk.Fields[n]
		if names[field.Name] {
			err = &ErrField{Block: blk.String(), Name: field.Name, Err: ErrFieldDuplicate}
			return
		}
		names[field.Name] = true
		if field.Type.Width() == 0 {
			err = &ErrField{Block: blk.String(), Name: field.Name, Err: ErrFieldType}
			return
		}
		switch {
		case field.Dir == DIR_TEMP:
			field.Offset = temp.place(field.Type)
		case field.Dir == DIR_STAT && !blk.Kind.HasInstance():
			err = &ErrField{Block: blk.String(), Name: field.Name, Err: ErrFieldStatic}
			return
		case blk.Kind.HasInstance():
			field.Offset = instance.place(field.Type)
		}
	}
	blk.TempSize = temp.size()
	blk.InstanceSize = instance.size()

	blk.labels = map[string]int{}
	for ip, insn := range blk.Insns {
		if insn.Label == "" {
			continue
		}
		_, found := blk.labels[insn.Label]
		if found {
			err = insnFault(blk, insn, ErrLabelDuplicate(insn.Label))
			return
		}
		blk.labels[insn.Label] = ip
	}

	for ip, insn := range blk.Insns {
		if !insn.Type.IsJump() {
			continue
		}
		op := insn.Op(0)
		if op.Area != AREA_LABEL {
			err = insnFault(blk, insn, ErrOperandArea)
			return
		}
		target, found := blk.labels[op.Label]
		if !found {
			err = insnFault(blk, insn, ErrLabelMissing(op.Label))
			return
		}
		insn.target = target
		if insn.Type == INSN_SPL {
			// The jump list is the run of SPA between SPL and its label.
			if target <= ip {
				err = insnFault(blk, insn, ErrJumpList)
				return
			}
			for n := ip + 1; n < target; n++ {
				if blk.Insns[n].Type != INSN_SPA {
					err = insnFault(blk, insn, ErrJumpList)
					return
				}
			}
			insn.listLen = target - ip - 1
		}
	}

	blk.finalized = true
	return
}

// InstanceData returns the initial contents of an instance data block.
func (blk *Block) InstanceData() (data []byte) {
	data = make([]byte, blk.InstanceSize)
	for _, field := range blk.Fields {
		if field.Dir == DIR_TEMP || field.Default == 0 {
			continue
		}
		width := field.Width()
		off := field.Offset
		value := field.Default
		switch width {
		case 1:
			data[off.Byte] |= 1 << off.Bit
		case 8:
			data[off.Byte] = byte(value)
		case 16:
			data[off.Byte] = byte(value >> 8)
			data[off.Byte+1] = byte(value)
		default:
			// 32 bit, and the first dword of POINTER
			data[off.Byte] = byte(value >> 24)
			data[off.Byte+1] = byte(value >> 16)
			data[off.Byte+2] = byte(value >> 8)
			data[off.Byte+3] = byte(value)
		}
	}
	return
}

// Operand returns the operand that addresses the named field from
// inside the block: a parameter reference for FC parameters, an
// instance DB operand for FB fields, and a local operand for TEMP.
func (blk *Block) Operand(name string) (op Operand, err error) {
	err = blk.Finalize()
	if err != nil {
		return
	}
	index, field, ok := blk.Field(name)
	if !ok {
		err = &ErrField{Block: blk.String(), Name: name, Err: ErrFieldMissing}
		return
	}
	width := field.Width()
	if width > 32 {
		width = 32
	}
	switch {
	case field.Dir == DIR_TEMP:
		op = Mem(AREA_L, width, field.Offset.Byte, field.Offset.Bit)
	case blk.Kind.HasInstance():
		op = Mem(AREA_DI, width, field.Offset.Byte, field.Offset.Bit)
	default:
		op = ParamOp(index, width)
	}
	return
}
