// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package script loads statement list programs written as Starlark
// scripts. A script builds blocks with the ob(), fc(), fb() and db()
// builtins and may set a 'specs' dictionary to configure the CPU:
//
//	specs = {"accus": 4, "cycle_time": "100ms"}
//
//	fc(1, fields = [
//	    field("A", "in", "INT"),
//	    field("RET", "out", "INT"),
//	], code = [
//	    insn("L", "#A"),
//	    insn("+", 1),
//	    insn("T", "#RET"),
//	])
//
//	ob(1, code = [
//	    insn("CALL", FC(1), params = {"A": MW(0), "RET": MW(2)}),
//	])
package script

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/ezrec/awl/cpu"
	"github.com/ezrec/awl/dtype"
	"github.com/ezrec/awl/internal"
)

// Loader executes program scripts.
type Loader struct {
	Verbose   bool          // If set, logs every block defined.
	Mnemonics cpu.Mnemonics // Language of insn() names and address builtins.
	Specs     cpu.Specs     // Configuration updated by the script's 'specs'.

	program *cpu.Program
}

// NewLoader creates a loader starting from the default configuration,
// reading German mnemonics.
func NewLoader() (ld *Loader) {
	ld = &Loader{
		Mnemonics: cpu.MNEMONICS_DE,
		Specs:     cpu.DefaultSpecs(),
	}
	return
}

var constants = starlark.StringDict{
	"SFC_RE_TRIGR": starlark.MakeInt(cpu.SFC_RE_TRIGR),
	"SFC_STP":      starlark.MakeInt(cpu.SFC_STP),
	"SFC_WAIT":     starlark.MakeInt(cpu.SFC_WAIT),
	"SFC_TIME_TCK": starlark.MakeInt(cpu.SFC_TIME_TCK),
}

func (ld *Loader) predeclared() starlark.StringDict {
	builtins := starlark.StringDict{
		"ob":       ld.blockBuiltin(cpu.BLOCK_OB),
		"fc":       ld.blockBuiltin(cpu.BLOCK_FC),
		"fb":       ld.blockBuiltin(cpu.BLOCK_FB),
		"db":       starlark.NewBuiltin("db", ld.dataBlock),
		"insn":     starlark.NewBuiltin("insn", ld.insn),
		"field":    starlark.NewBuiltin("field", field),
		"param":    starlark.NewBuiltin("param", param),
		"indirect": starlark.NewBuiltin("indirect", indirect),
		"byte":     starlark.NewBuiltin("byte", immediate(8)),
		"word":     starlark.NewBuiltin("word", immediate(16)),
		"dint":     starlark.NewBuiltin("dint", immediate(32)),
		"real":     starlark.NewBuiltin("real", immReal),
		"s5t":      starlark.NewBuiltin("s5t", s5t),
		"ptr":      starlark.NewBuiltin("ptr", ptr),
		"struct":   starlark.NewBuiltin("struct", starlarkstruct.Make),
	}
	mnemonics := starlark.StringDict{
		"MNEMONICS": starlark.String(ld.Mnemonics.Resolve().String()),
	}
	return internal.Merge(constants, areaBuiltins(ld.Mnemonics.Resolve()), builtins, mnemonics)
}

// Load runs the script in 'src' (a string, []byte or io.Reader; nil
// reads 'filename') and returns the program it defines together with the
// resulting configuration.
func (ld *Loader) Load(filename string, src any) (prog *cpu.Program, specs cpu.Specs, err error) {
	ld.program = cpu.NewProgram()
	defer func() { ld.program = nil }()

	thread := &starlark.Thread{
		Name: filename,
		Print: func(thread *starlark.Thread, msg string) {
			logrus.WithField("script", filename).Info(msg)
		},
	}
	opts := syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		Recursion:       true,
	}
	globals, err := starlark.ExecFileOptions(&opts, thread, filename, src, ld.predeclared())
	if err != nil {
		return
	}

	specs = ld.Specs
	if value, ok := globals["specs"]; ok {
		err = applySpecs(&specs, value)
		if err != nil {
			return
		}
	}
	err = specs.Validate()
	if err != nil {
		return
	}

	prog = ld.program
	return
}

// blockBuiltin defines ob(), fc() and fb():
//
//	fb(number, code, fields = [], name = "", local = 0)
func (ld *Loader) blockBuiltin(kind cpu.BlockKind) *starlark.Builtin {
	name := strings.ToLower(kind.String())
	return starlark.NewBuiltin(name, func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
		var number, local int
		var code, fields *starlark.List
		var title string
		err = starlark.UnpackArgs(b.Name(), args, kwargs,
			"number", &number, "code", &code, "fields?", &fields, "name?", &title, "local?", &local)
		if err != nil {
			return
		}

		blk := cpu.NewBlock(kind, number)
		blk.Name = title
		blk.LocalBytes = local

		if fields != nil {
			for n := range fields.Len() {
				err = addField(blk, fields.Index(n))
				if err != nil {
					return
				}
			}
		}

		for n := range code.Len() {
			in, ok := code.Index(n).(*instruction)
			if !ok {
				err = ErrCode
				return
			}
			var insn *cpu.Instruction
			insn, err = in.resolve(blk)
			if err != nil {
				return
			}
			blk.Append(insn)
		}

		err = blk.Finalize()
		if err != nil {
			return
		}
		err = ld.program.Add(blk)
		if err != nil {
			return
		}
		if ld.Verbose {
			logrus.WithFields(logrus.Fields{
				"block":  blk.String(),
				"insns":  len(blk.Insns),
				"fields": len(blk.Fields),
			}).Debug("script: block")
		}
		value = starlark.None
		return
	})
}

// dataBlock defines db():
//
//	db(number, size = 0, fb = 0, sfb = False, data = None)
func (ld *Loader) dataBlock(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	var number, size, fb int
	var sfb bool
	var initial starlark.Value = starlark.None
	err = starlark.UnpackArgs(b.Name(), args, kwargs,
		"number", &number, "size?", &size, "fb?", &fb, "sfb?", &sfb, "data?", &initial)
	if err != nil {
		return
	}

	var data []byte
	switch initial := initial.(type) {
	case starlark.NoneType:
	case starlark.Bytes:
		data = []byte(string(initial))
	case *starlark.List:
		for i := range initial.Len() {
			var n int
			n, err = starlark.AsInt32(initial.Index(i))
			if err != nil || n < 0 || n > 0xff {
				err = ErrDataBlock
				return
			}
			data = append(data, byte(n))
		}
	default:
		err = ErrDataBlock
		return
	}
	if len(data) < size {
		data = append(data, make([]byte, size-len(data))...)
	}
	if fb == 0 && data == nil {
		data = []byte{}
	}

	err = ld.program.AddDataBlock(&cpu.DataBlockDef{Number: number, FB: fb, SFB: sfb, Data: data})
	if err != nil {
		return
	}
	value = starlark.None
	return
}

// insn creates an instruction:
//
//	insn(mnemonic, *operands, label = "", params = {})
//
// The line number of the call becomes the instruction's line number.
func (ld *Loader) insn(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	if len(args) < 1 {
		err = starlark.UnpackPositionalArgs(b.Name(), args, nil, 1)
		return
	}
	mnemonic, ok := starlark.AsString(args[0])
	if !ok {
		err = ErrMnemonic(args[0].String())
		return
	}
	it, ok := cpu.ParseInsnType(mnemonic, ld.Mnemonics)
	if !ok {
		err = ErrMnemonic(mnemonic)
		return
	}

	in := &instruction{
		insn:   cpu.NewInsn(it),
		fields: map[int]string{},
		actual: map[int]string{},
	}
	in.insn.LineNo = int(thread.CallFrame(1).Pos.Line)

	for n, arg := range args[1:] {
		var op cpu.Operand
		var name string
		op, name, err = toOperand(it, arg)
		if err != nil {
			return
		}
		if name != "" {
			in.fields[n] = name
		}
		in.insn.Ops = append(in.insn.Ops, op)
	}

	var label string
	var params *starlark.Dict
	err = starlark.UnpackArgs(b.Name(), nil, kwargs, "label?", &label, "params?", &params)
	if err != nil {
		return
	}
	in.insn.Label = label

	if params != nil {
		for _, item := range params.Items() {
			key, ok := starlark.AsString(item[0])
			if !ok {
				err = ErrParams
				return
			}
			var op cpu.Operand
			var name string
			op, name, err = toOperand(cpu.INSN_NONE, item[1])
			if err != nil {
				err = errors.Join(ErrParams, err)
				return
			}
			if name != "" {
				in.actual[len(in.insn.Params)] = name
			}
			in.insn.Params = append(in.insn.Params, cpu.Param{Name: key, Actual: op})
		}
	}

	value = in
	return
}

var directions = map[string]cpu.Direction{
	"IN":     cpu.DIR_IN,
	"OUT":    cpu.DIR_OUT,
	"IN_OUT": cpu.DIR_IN_OUT,
	"STAT":   cpu.DIR_STAT,
	"TEMP":   cpu.DIR_TEMP,
}

// field creates an interface field:
//
//	field(name, dir, type, value = 0)
func field(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	var name, dir, typ string
	var initial starlark.Value = starlark.MakeInt(0)
	err = starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "dir", &dir, "type", &typ, "value?", &initial)
	if err != nil {
		return
	}
	dir = strings.ToUpper(dir)
	if _, ok := directions[dir]; !ok {
		err = ErrDirection(dir)
		return
	}
	typ = strings.ToUpper(typ)
	if _, ok := dtype.ParseType(typ); !ok {
		err = ErrType(typ)
		return
	}
	value = starlarkstruct.FromStringDict(starlark.String("field"), starlark.StringDict{
		"name":  starlark.String(name),
		"dir":   starlark.String(dir),
		"type":  starlark.String(typ),
		"value": initial,
	})
	return
}

func addField(blk *cpu.Block, item starlark.Value) (err error) {
	st, ok := item.(*starlarkstruct.Struct)
	if !ok {
		err = ErrField
		return
	}
	var text [3]string
	for n, attr := range []string{"name", "dir", "type"} {
		var v starlark.Value
		v, err = st.Attr(attr)
		if err != nil {
			return
		}
		text[n], ok = starlark.AsString(v)
		if !ok {
			err = ErrField
			return
		}
	}
	dir, ok := directions[strings.ToUpper(text[1])]
	if !ok {
		err = ErrDirection(text[1])
		return
	}
	typ, ok := dtype.ParseType(strings.ToUpper(text[2]))
	if !ok {
		err = ErrType(text[2])
		return
	}

	initial, err := st.Attr("value")
	if err != nil {
		return
	}
	var bits uint32
	switch initial := initial.(type) {
	case starlark.Bool:
		if initial {
			bits = 1
		}
	case starlark.Float:
		bits = dtype.FloatToDWord(float64(initial))
	case starlark.Int:
		n, _ := initial.Int64()
		bits = uint32(n)
	default:
		err = ErrField
		return
	}
	blk.AddField(text[0], dir, typ, bits)
	return
}
