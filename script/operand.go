package script

import (
	"math"
	"slices"
	"strings"
	"time"

	"go.starlark.net/starlark"

	"github.com/ezrec/awl/cpu"
	"github.com/ezrec/awl/dtype"
	"github.com/ezrec/awl/internal"
)

// Memory areas with bit, byte, word and dword access.
var bitAreas = []cpu.Area{cpu.AREA_E, cpu.AREA_A, cpu.AREA_M, cpu.AREA_L, cpu.AREA_V}

// Data block areas, bit access is spelled DBX/DIX.
var dataAreas = []cpu.Area{cpu.AREA_DB, cpu.AREA_DI}

// Peripheral areas have no bit access.
var periphAreas = []cpu.Area{cpu.AREA_PE, cpu.AREA_PA}

var blockAreas = map[string]cpu.Area{
	"FC":  cpu.AREA_BLOCK_FC,
	"FB":  cpu.AREA_BLOCK_FB,
	"SFC": cpu.AREA_BLOCK_SFC,
	"SFB": cpu.AREA_BLOCK_SFB,
	"DB":  cpu.AREA_BLOCK_DB,
	"DI":  cpu.AREA_BLOCK_DI,
}

var registers = map[string]cpu.Area{
	"STW":  cpu.AREA_STW,
	"AR1":  cpu.AREA_AR1,
	"AR2":  cpu.AREA_AR2,
	"DBNO": cpu.AREA_DBNO,
	"DBLG": cpu.AREA_DBLG,
	"DINO": cpu.AREA_DINO,
	"DILG": cpu.AREA_DILG,
}

var stwBits = map[string]cpu.StwBit{
	"BIE": cpu.STWBIT_BIE,
	"A1":  cpu.STWBIT_A1,
	"A0":  cpu.STWBIT_A0,
	"OV":  cpu.STWBIT_OV,
	"OS":  cpu.STWBIT_OS,
	"UO":  cpu.STWBIT_UO,
	"==0": cpu.STWBIT_EQ0,
	"<>0": cpu.STWBIT_NE0,
	">0":  cpu.STWBIT_GT0,
	"<0":  cpu.STWBIT_LT0,
	">=0": cpu.STWBIT_GE0,
	"<=0": cpu.STWBIT_LE0,
}

var widthSuffix = map[int]string{8: "B", 16: "W", 32: "D"}

func widthMask(width int) uint32 {
	return uint32(1<<width - 1)
}

// areaBuiltins returns the address constructors (MW, DBX, PEW, T, ...)
// spelled in the mnemonic language.
func areaBuiltins(mnemonics cpu.Mnemonics) (dict starlark.StringDict) {
	dict = starlark.StringDict{}

	mem := internal.Concat(slices.Values(bitAreas), slices.Values(dataAreas))
	for area := range mem {
		name := area.Name(mnemonics)
		if slices.Contains(dataAreas, area) {
			dict[name+"X"] = addressBuiltin(name+"X", area, 1)
		} else {
			dict[name] = addressBuiltin(name, area, 1)
		}
	}
	all := internal.Concat(slices.Values(bitAreas), slices.Values(dataAreas), slices.Values(periphAreas))
	for area := range all {
		for _, width := range []int{8, 16, 32} {
			name := area.Name(mnemonics) + widthSuffix[width]
			dict[name] = addressBuiltin(name, area, width)
		}
	}

	dict["T"] = numberedBuiltin("T", cpu.AREA_T)
	dict[cpu.AREA_Z.Name(mnemonics)] = numberedBuiltin(cpu.AREA_Z.Name(mnemonics), cpu.AREA_Z)
	for name, area := range blockAreas {
		dict[name] = numberedBuiltin(name, area)
	}
	for name, area := range registers {
		dict[name] = &operand{op: cpu.RegOp(area)}
	}
	return
}

// addressBuiltin creates an address constructor. Called as
//
//	MW(10)            direct
//	MW(MD(20))        memory indirect
//	MW(2, ar=1)       register indirect, area internal
//	DBW(4, db=10)     fully qualified data block access
//	M(1, 3)           bit access
func addressBuiltin(name string, area cpu.Area, width int) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
		var where starlark.Value
		var bit, ar, db int
		pairs := []any{"address", &where}
		if width == 1 {
			pairs = append(pairs, "bit?", &bit)
		}
		pairs = append(pairs, "ar?", &ar)
		if area == cpu.AREA_DB {
			pairs = append(pairs, "db?", &db)
		}
		err = starlark.UnpackArgs(b.Name(), args, kwargs, pairs...)
		if err != nil {
			return
		}

		if source, ok := where.(*operand); ok {
			if source.field != "" {
				err = ErrOperand
				return
			}
			value = &operand{op: cpu.MemIndirect(area, width, source.op)}
			return
		}

		byteOffset, err := starlark.AsInt32(where)
		if err != nil {
			return
		}
		switch ar {
		case 0:
			op := cpu.Mem(area, width, byteOffset, bit)
			op.Number = db
			value = &operand{op: op}
		case 1, 2:
			var offset dtype.Pointer
			offset, err = dtype.MakePointer(dtype.PTR_AREA_NONE, byteOffset, bit)
			if err != nil {
				return
			}
			value = &operand{op: cpu.RegIndirect(area, width, ar, offset)}
		default:
			err = ErrIndirect
		}
		return
	})
}

// numberedBuiltin creates a timer, counter or block constructor: T(5),
// or T(MW(4)) for a number read from memory.
func numberedBuiltin(name string, area cpu.Area) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
		var number starlark.Value
		err = starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &number)
		if err != nil {
			return
		}
		if source, ok := number.(*operand); ok {
			value = &operand{op: cpu.MemIndirect(area, 0, source.op)}
			return
		}
		n, err := starlark.AsInt32(number)
		if err != nil {
			return
		}
		value = &operand{op: cpu.Numbered(area, n)}
		return
	})
}

// indirect creates an area-crossing register-indirect operand:
// indirect(16, 1, 2) is W [AR1,P#2.0].
func indirect(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	var width, ar, byteOffset, bit int
	err = starlark.UnpackArgs(b.Name(), args, kwargs, "width", &width, "ar", &ar, "byte?", &byteOffset, "bit?", &bit)
	if err != nil {
		return
	}
	if ar != 1 && ar != 2 {
		err = ErrIndirect
		return
	}
	offset, err := dtype.MakePointer(dtype.PTR_AREA_NONE, byteOffset, bit)
	if err != nil {
		return
	}
	value = &operand{op: cpu.CrossIndirect(width, ar, offset)}
	return
}

// param refers to an interface field of the enclosing block.
func param(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	var name string
	err = starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name)
	if err != nil {
		return
	}
	value = &operand{field: name}
	return
}

func immediate(width int) func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
		var n starlark.Int
		err = starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &n)
		if err != nil {
			return
		}
		v, ok := n.Int64()
		if !ok {
			err = ErrOperand
			return
		}
		value = &operand{op: cpu.Imm(uint32(v)&widthMask(width), width)}
		return
	}
}

func immReal(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	var x starlark.Value
	err = starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &x)
	if err != nil {
		return
	}
	v, ok := starlark.AsFloat(x)
	if !ok {
		err = ErrOperand
		return
	}
	value = &operand{op: cpu.ImmReal(v)}
	return
}

// s5t takes milliseconds or a duration string ("1m30s").
func s5t(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	var x starlark.Value
	err = starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &x)
	if err != nil {
		return
	}
	d, err := asDuration(x)
	if err != nil {
		return
	}
	op, err := cpu.ImmS5Time(d)
	if err != nil {
		return
	}
	value = &operand{op: op}
	return
}

func asDuration(x starlark.Value) (d time.Duration, err error) {
	if str, ok := starlark.AsString(x); ok {
		d, err = time.ParseDuration(str)
		return
	}
	ms, err := starlark.AsInt32(x)
	if err != nil {
		return
	}
	d = time.Duration(ms) * time.Millisecond
	return
}

var pointerAreas = map[string]dtype.PointerArea{
	"":    dtype.PTR_AREA_NONE,
	"P":   dtype.PTR_AREA_P,
	"E":   dtype.PTR_AREA_E,
	"I":   dtype.PTR_AREA_E,
	"A":   dtype.PTR_AREA_A,
	"Q":   dtype.PTR_AREA_A,
	"M":   dtype.PTR_AREA_M,
	"DBX": dtype.PTR_AREA_DB,
	"DIX": dtype.PTR_AREA_DI,
	"L":   dtype.PTR_AREA_L,
	"V":   dtype.PTR_AREA_V,
}

// ptr creates a P# constant: ptr(2, 1) is P#2.1, ptr(4, area="M") is
// P#M4.0.
func ptr(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	var byteOffset, bit int
	var areaName string
	err = starlark.UnpackArgs(b.Name(), args, kwargs, "byte", &byteOffset, "bit?", &bit, "area?", &areaName)
	if err != nil {
		return
	}
	area, ok := pointerAreas[strings.ToUpper(areaName)]
	if !ok {
		err = ErrOperand
		return
	}
	p, err := dtype.MakePointer(area, byteOffset, bit)
	if err != nil {
		return
	}
	value = &operand{op: cpu.ImmPointer(p)}
	return
}

// toOperand converts an instruction argument. Plain integers are INT
// constants when they fit, DINT otherwise; strings are field references
// ("#IN"), status bits (OV, ==0) or jump labels.
func toOperand(it cpu.InsnType, v starlark.Value) (op cpu.Operand, field string, err error) {
	switch v := v.(type) {
	case *operand:
		op = v.op
		field = v.field
	case starlark.Int:
		n, ok := v.Int64()
		switch {
		case !ok:
			err = ErrOperand
		case n >= math.MinInt16 && n <= math.MaxUint16:
			op = cpu.Imm(uint32(uint16(n)), 16)
		case n >= math.MinInt32 && n <= math.MaxUint32:
			op = cpu.Imm(uint32(n), 32)
		default:
			err = ErrOperand
		}
	case starlark.Float:
		op = cpu.ImmReal(float64(v))
	case starlark.String:
		str := string(v)
		cond, isCond := stwBits[strings.ToUpper(str)]
		switch {
		case strings.HasPrefix(str, "#"):
			field = str[1:]
		case it.IsJump():
			op = cpu.LabelOp(str)
		case isCond && it.Class() == cpu.CLASS_BOOL:
			op = cpu.StwBitOp(cond)
		default:
			err = ErrOperand
		}
	default:
		err = ErrOperand
	}
	if err != nil {
		return
	}

	// Timer and counter operands take their width from the instruction.
	if (op.Area == cpu.AREA_T || op.Area == cpu.AREA_Z) && op.Width == 0 {
		switch {
		case it == cpu.INSN_L || it == cpu.INSN_LC:
			op.Width = 16
		case it.Class() == cpu.CLASS_BOOL && it != cpu.INSN_S && it != cpu.INSN_R:
			op.Width = 1
		}
	}
	return
}
