package cpu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ezrec/awl/memory"
	"github.com/ezrec/awl/translate"
)

var f = translate.From

var (
	// Execution errors
	ErrOperandWidth   = errors.New(f("operand width mismatch"))
	ErrOperandArea    = errors.New(f("operand area invalid"))
	ErrOperandMissing = errors.New(f("operand missing"))
	ErrIndirectRange  = errors.New(f("indirect address out of range"))
	ErrNoDataBlock    = errors.New(f("no data block open"))
	ErrDataBlock      = errors.New(f("data block missing"))
	ErrParenOverflow  = errors.New(f("parenthesis stack overflow"))
	ErrParenUnderflow = errors.New(f("parenthesis stack underflow"))
	ErrCallOverflow   = errors.New(f("call stack overflow"))
	ErrLocalOverflow  = errors.New(f("local data stack overflow"))
	ErrParamReadOnly  = errors.New(f("store to immediate parameter"))
	ErrParamUnbound   = errors.New(f("parameter not bound"))
	ErrCycleTime      = errors.New(f("cycle time limit exceeded"))
	ErrExtended       = errors.New(f("extended instructions disabled"))
	ErrInsnInvalid    = errors.New(f("instruction invalid"))
	ErrTimer          = errors.New(f("timer number out of range"))
	ErrCounter        = errors.New(f("counter number out of range"))
	ErrNoProgram      = errors.New(f("no program loaded"))
	ErrNoMainBlock    = errors.New(f("OB 1 missing"))
	ErrHalted         = errors.New(f("cpu halted by fatal fault, reset required"))

	// Load errors
	ErrFieldDuplicate  = errors.New(f("field duplicated"))
	ErrFieldMissing    = errors.New(f("field unknown"))
	ErrFieldType       = errors.New(f("field type invalid"))
	ErrFieldStatic     = errors.New(f("static field outside of a function block"))
	ErrJumpList        = errors.New(f("jump list malformed"))
	ErrBlockMissing    = errors.New(f("call target missing"))
	ErrParamDuplicate  = errors.New(f("parameter bound twice"))
	ErrParamDirection  = errors.New(f("parameter is not IN, OUT or IN_OUT"))
	ErrParamWidth      = errors.New(f("parameter width incompatible"))
	ErrParamImmediate  = errors.New(f("immediate bound to OUT or IN_OUT parameter"))
	ErrParamMissing    = errors.New(f("parameter missing"))
	ErrParamCall       = errors.New(f("parameters not allowed in UC or CC"))
	ErrInstanceMissing = errors.New(f("instance data block missing"))
	ErrInstanceOwner   = errors.New(f("instance data block of another block"))

	// Configuration errors
	ErrSpecsAccus = errors.New(f("accumulator count must be 2 or 4"))
	ErrSpecsSize  = errors.New(f("memory size out of range"))
	ErrSpecsDepth = errors.New(f("stack depth out of range"))
)

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrLabelDuplicate string

func (el ErrLabelDuplicate) Error() string {
	return f("label %v duplicated", string(el))
}

type ErrBlockDuplicate string

func (eb ErrBlockDuplicate) Error() string {
	return f("block %v duplicated", string(eb))
}

type ErrMnemonics string

func (em ErrMnemonics) Error() string {
	return f("'%v' is not a mnemonic language", string(em))
}

type ErrParamIndex int

func (ep ErrParamIndex) Error() string {
	return f("parameter #%d out of range", int(ep))
}

// ErrField is an error about a named block interface field.
type ErrField struct {
	Block string
	Name  string
	Err   error
}

func (err *ErrField) Error() string {
	return f("%v: %v: %v", err.Block, err.Name, err.Err)
}

func (err *ErrField) Unwrap() error {
	return err.Err
}

// Snapshot is a copy of the CPU registers taken when a fault is raised.
type Snapshot struct {
	Accu      [4]uint32
	AR1       uint32
	AR2       uint32
	Status    StatusWord
	DB        int // Open DB number, 0 for none.
	DI        int // Open DI number, 0 for none.
	CallDepth int
	Block     string
	Ip        int
	LineNo    int // Source line at Ip, 0 if unknown.
}

func (snap *Snapshot) String() string {
	return fmt.Sprintf("%v ip %d depth %d: ACCU1=%08X ACCU2=%08X AR1=%08X AR2=%08X DB=%d DI=%d STW=[%v]",
		snap.Block, snap.Ip, snap.CallDepth, snap.Accu[0], snap.Accu[1],
		snap.AR1, snap.AR2, snap.DB, snap.DI, snap.Status)
}

// Fault is a program or engine fault with its provenance. Any of the
// provenance fields may be absent.
type Fault struct {
	Err      error
	Fatal    bool         // Requires a reset to continue.
	Block    string       // Block of the faulting instruction.
	Insn     *Instruction // Faulting instruction.
	Raw      string       // Source text of the instruction.
	LineNo   int          // Source line of the instruction.
	Snapshot *Snapshot

	mnemonics Mnemonics
}

func insnFault(blk *Block, insn *Instruction, err error) (fault *Fault) {
	fault = &Fault{Err: err}
	if blk != nil {
		fault.Block = blk.String()
	}
	if insn != nil {
		fault.Insn = insn
		fault.Raw = insn.Raw
		fault.LineNo = insn.LineNo
	}
	return
}

func (fault *Fault) Error() string {
	var parts []string
	if fault.Fatal {
		parts = append(parts, f("fatal"))
	}
	if fault.Block != "" {
		parts = append(parts, fault.Block)
	}
	if fault.LineNo > 0 {
		parts = append(parts, f("line %d", fault.LineNo))
	}
	switch {
	case fault.Raw != "":
		parts = append(parts, fmt.Sprintf("'%v'", fault.Raw))
	case fault.Insn != nil:
		parts = append(parts, fmt.Sprintf("'%v'", fault.Insn.Text(fault.mnemonics)))
	}
	parts = append(parts, fault.Err.Error())
	return strings.Join(parts, ": ")
}

func (fault *Fault) Unwrap() error {
	return fault.Err
}

// IsFatal is true when 'err' requires a reset of the CPU.
func IsFatal(err error) bool {
	var fault *Fault
	if errors.As(err, &fault) {
		return fault.Fatal
	}
	return isFatalCause(err)
}

// isFatalCause classifies the underlying error of a fault.
func isFatalCause(err error) bool {
	var er *memory.ErrRange
	switch {
	case errors.As(err, &er):
		return true
	case errors.Is(err, ErrCallOverflow),
		errors.Is(err, ErrParenUnderflow),
		errors.Is(err, ErrLocalOverflow),
		errors.Is(err, ErrHalted):
		return true
	}
	return false
}
