package cpu

import (
	"fmt"
	"math"
	"time"

	"github.com/ezrec/awl/dtype"
)

// Area is the storage kind an operand refers to.
type Area int

const (
	AREA_NONE      = Area(0)  // -
	AREA_IMM       = Area(1)  // immediate
	AREA_IMM_REAL  = Area(2)  // immediate REAL
	AREA_IMM_PTR   = Area(3)  // immediate pointer
	AREA_IMM_S5T   = Area(4)  // immediate S5TIME
	AREA_E         = Area(5)  // E
	AREA_A         = Area(6)  // A
	AREA_M         = Area(7)  // M
	AREA_L         = Area(8)  // L
	AREA_V         = Area(9)  // V
	AREA_DB        = Area(10) // DB
	AREA_DI        = Area(11) // DI
	AREA_PE        = Area(12) // PE
	AREA_PA        = Area(13) // PA
	AREA_T         = Area(14) // T
	AREA_Z         = Area(15) // Z
	AREA_STW       = Area(16) // STW
	AREA_STW_BIT   = Area(17) // status bit
	AREA_DBNO      = Area(18) // DBNO
	AREA_DBLG      = Area(19) // DBLG
	AREA_DINO      = Area(20) // DINO
	AREA_DILG      = Area(21) // DILG
	AREA_AR1       = Area(22) // AR1
	AREA_AR2       = Area(23) // AR2
	AREA_LABEL     = Area(24) // label
	AREA_BLOCK_FC  = Area(25) // FC
	AREA_BLOCK_FB  = Area(26) // FB
	AREA_BLOCK_SFC = Area(27) // SFC
	AREA_BLOCK_SFB = Area(28) // SFB
	AREA_BLOCK_DB  = Area(29) // DB block
	AREA_BLOCK_DI  = Area(30) // DI block
	AREA_PARAM     = Area(31) // FC parameter
	AREA_INDIRECT  = Area(32) // area-crossing register indirect
	AREA_LSTACK    = Area(33) // absolute local stack, bound FC parameters only
)

// areaName holds the German and English prefixes of each area.
var areaName = map[Area][2]string{
	AREA_E:         {"E", "I"},
	AREA_A:         {"A", "Q"},
	AREA_M:         {"M", "M"},
	AREA_L:         {"L", "L"},
	AREA_V:         {"V", "V"},
	AREA_DB:        {"DB", "DB"},
	AREA_DI:        {"DI", "DI"},
	AREA_PE:        {"PE", "PI"},
	AREA_PA:        {"PA", "PQ"},
	AREA_T:         {"T", "T"},
	AREA_Z:         {"Z", "C"},
	AREA_STW:       {"STW", "STW"},
	AREA_DBNO:      {"DBNO", "DBNO"},
	AREA_DBLG:      {"DBLG", "DBLG"},
	AREA_DINO:      {"DINO", "DINO"},
	AREA_DILG:      {"DILG", "DILG"},
	AREA_AR1:       {"AR1", "AR1"},
	AREA_AR2:       {"AR2", "AR2"},
	AREA_BLOCK_FC:  {"FC", "FC"},
	AREA_BLOCK_FB:  {"FB", "FB"},
	AREA_BLOCK_SFC: {"SFC", "SFC"},
	AREA_BLOCK_SFB: {"SFB", "SFB"},
	AREA_BLOCK_DB:  {"DB", "DB"},
	AREA_BLOCK_DI:  {"DI", "DI"},
	AREA_LSTACK:    {"L", "L"},
}

// Name returns the operand prefix of the area in the mnemonic language.
func (area Area) Name(mnemonics Mnemonics) string {
	names, ok := areaName[area]
	if !ok {
		return ""
	}
	if mnemonics == MNEMONICS_EN {
		return names[1]
	}
	return names[0]
}

// IsImmediate is true for the constant areas.
func (area Area) IsImmediate() bool {
	return area >= AREA_IMM && area <= AREA_IMM_S5T
}

// IsBlock is true for block references.
func (area Area) IsBlock() bool {
	return area >= AREA_BLOCK_FC && area <= AREA_BLOCK_DI
}

// StwBit selects a status word query for AREA_STW_BIT operands.
type StwBit int

const (
	STWBIT_BIE = StwBit(0)  // BIE
	STWBIT_A1  = StwBit(1)  // A1
	STWBIT_A0  = StwBit(2)  // A0
	STWBIT_OV  = StwBit(3)  // OV
	STWBIT_OS  = StwBit(4)  // OS
	STWBIT_UO  = StwBit(5)  // UO
	STWBIT_EQ0 = StwBit(6)  // ==0
	STWBIT_NE0 = StwBit(7)  // <>0
	STWBIT_GT0 = StwBit(8)  // >0
	STWBIT_LT0 = StwBit(9)  // <0
	STWBIT_GE0 = StwBit(10) // >=0
	STWBIT_LE0 = StwBit(11) // <=0
)

var stwBitName = [...]string{"BIE", "A1", "A0", "OV", "OS", "UO", "==0", "<>0", ">0", "<0", ">=0", "<=0"}

func (sb StwBit) String() string {
	if sb < 0 || int(sb) >= len(stwBitName) {
		return "?"
	}
	return stwBitName[sb]
}

// Eval evaluates the status bit query against a status word.
func (sb StwBit) Eval(s *StatusWord) bool {
	switch sb {
	case STWBIT_BIE:
		return s.BIE
	case STWBIT_A1:
		return s.A1
	case STWBIT_A0:
		return s.A0
	case STWBIT_OV:
		return s.OV
	case STWBIT_OS:
		return s.OS
	case STWBIT_UO:
		return s.A1 && s.A0
	case STWBIT_EQ0:
		return !s.A1 && !s.A0
	case STWBIT_NE0:
		return s.A1 != s.A0
	case STWBIT_GT0:
		return s.A1 && !s.A0
	case STWBIT_LT0:
		return !s.A1 && s.A0
	case STWBIT_GE0:
		return !s.A0
	case STWBIT_LE0:
		return !s.A1
	}
	return false
}

// IndirectKind selects how an indirect operand is resolved.
type IndirectKind int

const (
	INDIRECT_MEMORY    = IndirectKind(0) // [MD 10]
	INDIRECT_AR1       = IndirectKind(1) // [AR1,P#x.y], area internal
	INDIRECT_AR2       = IndirectKind(2) // [AR2,P#x.y], area internal
	INDIRECT_AR1_CROSS = IndirectKind(3) // [AR1,P#x.y], area crossing
	INDIRECT_AR2_CROSS = IndirectKind(4) // [AR2,P#x.y], area crossing
)

// Indirect describes where an indirect operand takes its address from.
type Indirect struct {
	Kind   IndirectKind
	Source *Operand      // Pointer location for INDIRECT_MEMORY.
	Offset dtype.Pointer // Additional P# offset for register indirection.
}

// Offset is a byte and bit address.
type Offset struct {
	Byte int
	Bit  int
}

func (off Offset) String() string {
	return fmt.Sprintf("%d.%d", off.Byte, off.Bit)
}

// Operand is an instruction operand, as resolved by the translator.
type Operand struct {
	Area     Area
	Width    int       // Access width in bits: 1, 8, 16 or 32.
	Offset   Offset    // Byte and bit address.
	Number   int       // Timer, counter, block or DB number; FC parameter index.
	Value    uint32    // Immediate value.
	Label    string    // Jump target.
	Cond     StwBit    // Status bit query.
	Indirect *Indirect // Set for indirect addressing.
}

// WidthMask is a set of allowed operand widths.
type WidthMask uint

const (
	WIDTH_1    = WidthMask(1 << 0)
	WIDTH_8    = WidthMask(1 << 1)
	WIDTH_16   = WidthMask(1 << 2)
	WIDTH_32   = WidthMask(1 << 3)
	WIDTH_DATA = WIDTH_8 | WIDTH_16 | WIDTH_32
)

// Has is true when 'width' is in the mask.
func (wm WidthMask) Has(width int) bool {
	switch width {
	case 1:
		return wm&WIDTH_1 != 0
	case 8:
		return wm&WIDTH_8 != 0
	case 16:
		return wm&WIDTH_16 != 0
	case 32:
		return wm&WIDTH_32 != 0
	}
	return false
}

// Imm creates an immediate of 'width' bits.
func Imm(value uint32, width int) Operand {
	return Operand{Area: AREA_IMM, Width: width, Value: value}
}

// ImmReal creates an immediate REAL.
func ImmReal(value float64) Operand {
	return Operand{Area: AREA_IMM_REAL, Width: 32, Value: dtype.FloatToDWord(value)}
}

// ImmPointer creates an immediate P# pointer.
func ImmPointer(ptr dtype.Pointer) Operand {
	return Operand{Area: AREA_IMM_PTR, Width: 32, Value: uint32(ptr)}
}

// ImmS5Time creates an immediate S5T# value.
func ImmS5Time(d time.Duration) (op Operand, err error) {
	s5t, err := dtype.DurationToS5Time(d)
	if err != nil {
		return
	}
	op = Operand{Area: AREA_IMM_S5T, Width: 16, Value: uint32(s5t)}
	return
}

// Mem creates a direct memory operand.
func Mem(area Area, width int, byteOffset int, bitOffset int) Operand {
	return Operand{Area: area, Width: width, Offset: Offset{Byte: byteOffset, Bit: bitOffset}}
}

// DBMem creates a fully qualified data block operand (DB10.DBW 2).
func DBMem(number int, width int, byteOffset int, bitOffset int) Operand {
	op := Mem(AREA_DB, width, byteOffset, bitOffset)
	op.Number = number
	return op
}

// Numbered creates a timer, counter or block operand.
func Numbered(area Area, number int) Operand {
	return Operand{Area: area, Number: number}
}

// TimerOp creates a timer operand of 'width' bits (1 for status, 16 for
// value, 0 as a start/reset target).
func TimerOp(number int, width int) Operand {
	return Operand{Area: AREA_T, Number: number, Width: width}
}

// CounterOp creates a counter operand.
func CounterOp(number int, width int) Operand {
	return Operand{Area: AREA_Z, Number: number, Width: width}
}

// RegOp creates a register operand (STW, DBNO, DBLG, DINO, DILG, AR1, AR2).
func RegOp(area Area) Operand {
	width := 16
	if area == AREA_AR1 || area == AREA_AR2 {
		width = 32
	}
	return Operand{Area: area, Width: width}
}

// LabelOp creates a jump target operand.
func LabelOp(label string) Operand {
	return Operand{Area: AREA_LABEL, Label: label}
}

// StwBitOp creates a status bit query.
func StwBitOp(cond StwBit) Operand {
	return Operand{Area: AREA_STW_BIT, Width: 1, Cond: cond}
}

// ParamOp references FC parameter 'index'. A zero 'width' uses the width
// of the bound argument.
func ParamOp(index int, width int) Operand {
	return Operand{Area: AREA_PARAM, Number: index, Width: width}
}

// MemIndirect creates a memory-indirect operand: the address (or number,
// for timers, counters and blocks) is read from 'source'.
func MemIndirect(area Area, width int, source Operand) Operand {
	return Operand{Area: area, Width: width, Indirect: &Indirect{Kind: INDIRECT_MEMORY, Source: &source}}
}

// RegIndirect creates an area-internal register-indirect operand.
func RegIndirect(area Area, width int, ar int, offset dtype.Pointer) Operand {
	kind := INDIRECT_AR1
	if ar == 2 {
		kind = INDIRECT_AR2
	}
	return Operand{Area: area, Width: width, Indirect: &Indirect{Kind: kind, Offset: offset}}
}

// CrossIndirect creates an area-crossing register-indirect operand.
func CrossIndirect(width int, ar int, offset dtype.Pointer) Operand {
	kind := INDIRECT_AR1_CROSS
	if ar == 2 {
		kind = INDIRECT_AR2_CROSS
	}
	return Operand{Area: AREA_INDIRECT, Width: width, Indirect: &Indirect{Kind: kind, Offset: offset}}
}

var widthSuffix = map[int][2]string{
	1:  {"", ""},
	8:  {"B", "B"},
	16: {"W", "W"},
	32: {"D", "D"},
}

// Text renders the operand in the mnemonic language.
func (op Operand) Text(mnemonics Mnemonics) string {
	suffix := widthSuffix[op.Width][0]
	name := op.Area.Name(mnemonics)

	var where string
	if op.Indirect != nil {
		switch op.Indirect.Kind {
		case INDIRECT_MEMORY:
			where = fmt.Sprintf("[%v]", op.Indirect.Source.Text(mnemonics))
		case INDIRECT_AR1, INDIRECT_AR1_CROSS:
			where = fmt.Sprintf("[AR1,%v]", op.Indirect.Offset)
		case INDIRECT_AR2, INDIRECT_AR2_CROSS:
			where = fmt.Sprintf("[AR2,%v]", op.Indirect.Offset)
		}
	}

	switch op.Area {
	case AREA_NONE:
		return ""
	case AREA_IMM:
		switch op.Width {
		case 32:
			return fmt.Sprintf("L#%d", int32(op.Value))
		case 8:
			return fmt.Sprintf("B#16#%X", op.Value)
		}
		return fmt.Sprintf("%d", int16(op.Value))
	case AREA_IMM_REAL:
		value := dtype.DWordToFloat(op.Value)
		if math.IsNaN(value) {
			return "NaN"
		}
		return fmt.Sprintf("%g", value)
	case AREA_IMM_PTR:
		return dtype.Pointer(op.Value).String()
	case AREA_IMM_S5T:
		d, _, _ := dtype.S5TimeToDuration(uint16(op.Value))
		return fmt.Sprintf("S5T#%v", d)
	case AREA_T, AREA_Z, AREA_BLOCK_FC, AREA_BLOCK_FB, AREA_BLOCK_SFC,
		AREA_BLOCK_SFB, AREA_BLOCK_DB, AREA_BLOCK_DI:
		if where != "" {
			return fmt.Sprintf("%v %v", name, where)
		}
		return fmt.Sprintf("%v %d", name, op.Number)
	case AREA_STW_BIT:
		return op.Cond.String()
	case AREA_LABEL:
		return op.Label
	case AREA_PARAM:
		return fmt.Sprintf("#P%d", op.Number)
	case AREA_STW, AREA_DBNO, AREA_DBLG, AREA_DINO, AREA_DILG, AREA_AR1, AREA_AR2:
		return name
	case AREA_INDIRECT:
		return fmt.Sprintf("%v %v", suffix, where)
	case AREA_DB, AREA_DI:
		// DBX/DIX for bits
		if op.Width == 1 {
			suffix = "X"
		}
		prefix := ""
		if op.Area == AREA_DB && op.Number > 0 {
			prefix = fmt.Sprintf("DB%d.", op.Number)
		}
		if where != "" {
			return fmt.Sprintf("%v%v%v %v", prefix, name, suffix, where)
		}
		if op.Width == 1 {
			return fmt.Sprintf("%v%v%v %v", prefix, name, suffix, op.Offset)
		}
		return fmt.Sprintf("%v%v%v %d", prefix, name, suffix, op.Offset.Byte)
	}

	if where != "" {
		return fmt.Sprintf("%v%v %v", name, suffix, where)
	}
	if op.Width == 1 {
		return fmt.Sprintf("%v %v", name, op.Offset)
	}
	return fmt.Sprintf("%v%v %d", name, suffix, op.Offset.Byte)
}

func (op Operand) String() string {
	return op.Text(MNEMONICS_DE)
}
