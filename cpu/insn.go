package cpu

import (
	"fmt"
	"strings"
)

// InsnType is the instruction kind.
type InsnType int

// InsnClass groups instruction kinds by execution unit.
type InsnClass int

const (
	CLASS_NONE  = InsnClass(0)
	CLASS_BOOL  = InsnClass(1)  // Boolean logic
	CLASS_WORD  = InsnClass(2)  // Word logic
	CLASS_ACCU  = InsnClass(3)  // Accumulator and register transfer
	CLASS_ARITH = InsnClass(4)  // Arithmetic
	CLASS_CMP   = InsnClass(5)  // Comparison
	CLASS_CONV  = InsnClass(6)  // Conversion
	CLASS_SHIFT = InsnClass(7)  // Shift and rotate
	CLASS_TIMER = InsnClass(8)  // Timers and counters
	CLASS_JUMP  = InsnClass(9)  // Jumps
	CLASS_CALL  = InsnClass(10) // Calls and block end
	CLASS_EXT   = InsnClass(11) // Extended and internal
)

const (
	INSN_NONE = InsnType(iota)

	INSN_U           // U
	INSN_UN          // UN
	INSN_O           // O
	INSN_ON          // ON
	INSN_X           // X
	INSN_XN          // XN
	INSN_U_PAREN     // U(
	INSN_UN_PAREN    // UN(
	INSN_O_PAREN     // O(
	INSN_ON_PAREN    // ON(
	INSN_X_PAREN     // X(
	INSN_XN_PAREN    // XN(
	INSN_PAREN_CLOSE // )
	INSN_ASSIGN      // =
	INSN_S           // S
	INSN_R           // R
	INSN_SET         // SET
	INSN_CLR         // CLR
	INSN_NOT         // NOT
	INSN_SAVE        // SAVE
	INSN_FP          // FP
	INSN_FN          // FN

	INSN_UW  // UW
	INSN_OW  // OW
	INSN_XOW // XOW
	INSN_UD  // UD
	INSN_OD  // OD
	INSN_XOD // XOD

	INSN_L     // L
	INSN_LC    // LC
	INSN_T     // T
	INSN_TAK   // TAK
	INSN_PUSH  // PUSH
	INSN_POP   // POP
	INSN_ENT   // ENT
	INSN_LEAVE // LEAVE
	INSN_INC   // INC
	INSN_DEC   // DEC
	INSN_TAW   // TAW
	INSN_TAD   // TAD
	INSN_LAR1  // LAR1
	INSN_LAR2  // LAR2
	INSN_TAR1  // TAR1
	INSN_TAR2  // TAR2
	INSN_TAR   // TAR
	INSN_PAR1  // +AR1
	INSN_PAR2  // +AR2
	INSN_AUF   // AUF
	INSN_TDB   // TDB
	INSN_BLD   // BLD
	INSN_NOP0  // NOP 0
	INSN_NOP1  // NOP 1

	INSN_ADD_I // +I
	INSN_SUB_I // -I
	INSN_MUL_I // *I
	INSN_DIV_I // /I
	INSN_ADD_D // +D
	INSN_SUB_D // -D
	INSN_MUL_D // *D
	INSN_DIV_D // /D
	INSN_MOD   // MOD
	INSN_ADD_R // +R
	INSN_SUB_R // -R
	INSN_MUL_R // *R
	INSN_DIV_R // /R
	INSN_ADD   // +
	INSN_ABS   // ABS
	INSN_SQR   // SQR
	INSN_SQRT  // SQRT
	INSN_EXP   // EXP
	INSN_LN    // LN
	INSN_SIN   // SIN
	INSN_COS   // COS
	INSN_TAN   // TAN
	INSN_ASIN  // ASIN
	INSN_ACOS  // ACOS
	INSN_ATAN  // ATAN
	INSN_NEGI  // NEGI
	INSN_NEGD  // NEGD
	INSN_NEGR  // NEGR
	INSN_INVI  // INVI
	INSN_INVD  // INVD

	INSN_EQ_I // ==I
	INSN_NE_I // <>I
	INSN_GT_I // >I
	INSN_LT_I // <I
	INSN_GE_I // >=I
	INSN_LE_I // <=I
	INSN_EQ_D // ==D
	INSN_NE_D // <>D
	INSN_GT_D // >D
	INSN_LT_D // <D
	INSN_GE_D // >=D
	INSN_LE_D // <=D
	INSN_EQ_R // ==R
	INSN_NE_R // <>R
	INSN_GT_R // >R
	INSN_LT_R // <R
	INSN_GE_R // >=R
	INSN_LE_R // <=R

	INSN_BTI   // BTI
	INSN_ITB   // ITB
	INSN_BTD   // BTD
	INSN_DTB   // DTB
	INSN_ITD   // ITD
	INSN_DTR   // DTR
	INSN_RND   // RND
	INSN_RNDP  // RND+
	INSN_RNDM  // RND-
	INSN_TRUNC // TRUNC

	INSN_SLW  // SLW
	INSN_SRW  // SRW
	INSN_SSI  // SSI
	INSN_SLD  // SLD
	INSN_SRD  // SRD
	INSN_SSD  // SSD
	INSN_RLD  // RLD
	INSN_RRD  // RRD
	INSN_RLDA // RLDA
	INSN_RRDA // RRDA

	INSN_SI // SI
	INSN_SV // SV
	INSN_SE // SE
	INSN_SS // SS
	INSN_SA // SA
	INSN_FR // FR
	INSN_ZV // ZV
	INSN_ZR // ZR

	INSN_SPA   // SPA
	INSN_SPB   // SPB
	INSN_SPBN  // SPBN
	INSN_SPBB  // SPBB
	INSN_SPBNB // SPBNB
	INSN_SPBI  // SPBI
	INSN_SPBIN // SPBIN
	INSN_SPO   // SPO
	INSN_SPS   // SPS
	INSN_SPZ   // SPZ
	INSN_SPN   // SPN
	INSN_SPP   // SPP
	INSN_SPM   // SPM
	INSN_SPPZ  // SPPZ
	INSN_SPMZ  // SPMZ
	INSN_SPU   // SPU
	INSN_LOOP  // LOOP
	INSN_SPL   // SPL

	INSN_CALL // CALL
	INSN_UC   // UC
	INSN_CC   // CC
	INSN_BE   // BE
	INSN_BEA  // BEA
	INSN_BEB  // BEB

	INSN_STWRST       // __STWRST
	INSN_SLEEP        // __SLEEP
	INSN_REBOOT       // __REBOOT
	INSN_SHUTDOWN     // __SHUTDOWN
	INSN_GENERIC_CALL // __GENERIC_CALL

	insn_count
)

type insnInfo struct {
	de    string
	en    string
	class InsnClass
}

var insnTable = [insn_count]insnInfo{
	INSN_NONE: {"", "", CLASS_NONE},

	INSN_U:           {"U", "A", CLASS_BOOL},
	INSN_UN:          {"UN", "AN", CLASS_BOOL},
	INSN_O:           {"O", "O", CLASS_BOOL},
	INSN_ON:          {"ON", "ON", CLASS_BOOL},
	INSN_X:           {"X", "X", CLASS_BOOL},
	INSN_XN:          {"XN", "XN", CLASS_BOOL},
	INSN_U_PAREN:     {"U(", "A(", CLASS_BOOL},
	INSN_UN_PAREN:    {"UN(", "AN(", CLASS_BOOL},
	INSN_O_PAREN:     {"O(", "O(", CLASS_BOOL},
	INSN_ON_PAREN:    {"ON(", "ON(", CLASS_BOOL},
	INSN_X_PAREN:     {"X(", "X(", CLASS_BOOL},
	INSN_XN_PAREN:    {"XN(", "XN(", CLASS_BOOL},
	INSN_PAREN_CLOSE: {")", ")", CLASS_BOOL},
	INSN_ASSIGN:      {"=", "=", CLASS_BOOL},
	INSN_S:           {"S", "S", CLASS_BOOL},
	INSN_R:           {"R", "R", CLASS_BOOL},
	INSN_SET:         {"SET", "SET", CLASS_BOOL},
	INSN_CLR:         {"CLR", "CLR", CLASS_BOOL},
	INSN_NOT:         {"NOT", "NOT", CLASS_BOOL},
	INSN_SAVE:        {"SAVE", "SAVE", CLASS_BOOL},
	INSN_FP:          {"FP", "FP", CLASS_BOOL},
	INSN_FN:          {"FN", "FN", CLASS_BOOL},

	INSN_UW:  {"UW", "AW", CLASS_WORD},
	INSN_OW:  {"OW", "OW", CLASS_WORD},
	INSN_XOW: {"XOW", "XOW", CLASS_WORD},
	INSN_UD:  {"UD", "AD", CLASS_WORD},
	INSN_OD:  {"OD", "OD", CLASS_WORD},
	INSN_XOD: {"XOD", "XOD", CLASS_WORD},

	INSN_L:     {"L", "L", CLASS_ACCU},
	INSN_LC:    {"LC", "LC", CLASS_ACCU},
	INSN_T:     {"T", "T", CLASS_ACCU},
	INSN_TAK:   {"TAK", "TAK", CLASS_ACCU},
	INSN_PUSH:  {"PUSH", "PUSH", CLASS_ACCU},
	INSN_POP:   {"POP", "POP", CLASS_ACCU},
	INSN_ENT:   {"ENT", "ENT", CLASS_ACCU},
	INSN_LEAVE: {"LEAVE", "LEAVE", CLASS_ACCU},
	INSN_INC:   {"INC", "INC", CLASS_ACCU},
	INSN_DEC:   {"DEC", "DEC", CLASS_ACCU},
	INSN_TAW:   {"TAW", "CAW", CLASS_ACCU},
	INSN_TAD:   {"TAD", "CAD", CLASS_ACCU},
	INSN_LAR1:  {"LAR1", "LAR1", CLASS_ACCU},
	INSN_LAR2:  {"LAR2", "LAR2", CLASS_ACCU},
	INSN_TAR1:  {"TAR1", "TAR1", CLASS_ACCU},
	INSN_TAR2:  {"TAR2", "TAR2", CLASS_ACCU},
	INSN_TAR:   {"TAR", "CAR", CLASS_ACCU},
	INSN_PAR1:  {"+AR1", "+AR1", CLASS_ACCU},
	INSN_PAR2:  {"+AR2", "+AR2", CLASS_ACCU},
	INSN_AUF:   {"AUF", "OPN", CLASS_ACCU},
	INSN_TDB:   {"TDB", "CDB", CLASS_ACCU},
	INSN_BLD:   {"BLD", "BLD", CLASS_ACCU},
	INSN_NOP0:  {"NOP 0", "NOP 0", CLASS_ACCU},
	INSN_NOP1:  {"NOP 1", "NOP 1", CLASS_ACCU},

	INSN_ADD_I: {"+I", "+I", CLASS_ARITH},
	INSN_SUB_I: {"-I", "-I", CLASS_ARITH},
	INSN_MUL_I: {"*I", "*I", CLASS_ARITH},
	INSN_DIV_I: {"/I", "/I", CLASS_ARITH},
	INSN_ADD_D: {"+D", "+D", CLASS_ARITH},
	INSN_SUB_D: {"-D", "-D", CLASS_ARITH},
	INSN_MUL_D: {"*D", "*D", CLASS_ARITH},
	INSN_DIV_D: {"/D", "/D", CLASS_ARITH},
	INSN_MOD:   {"MOD", "MOD", CLASS_ARITH},
	INSN_ADD_R: {"+R", "+R", CLASS_ARITH},
	INSN_SUB_R: {"-R", "-R", CLASS_ARITH},
	INSN_MUL_R: {"*R", "*R", CLASS_ARITH},
	INSN_DIV_R: {"/R", "/R", CLASS_ARITH},
	INSN_ADD:   {"+", "+", CLASS_ARITH},
	INSN_ABS:   {"ABS", "ABS", CLASS_ARITH},
	INSN_SQR:   {"SQR", "SQR", CLASS_ARITH},
	INSN_SQRT:  {"SQRT", "SQRT", CLASS_ARITH},
	INSN_EXP:   {"EXP", "EXP", CLASS_ARITH},
	INSN_LN:    {"LN", "LN", CLASS_ARITH},
	INSN_SIN:   {"SIN", "SIN", CLASS_ARITH},
	INSN_COS:   {"COS", "COS", CLASS_ARITH},
	INSN_TAN:   {"TAN", "TAN", CLASS_ARITH},
	INSN_ASIN:  {"ASIN", "ASIN", CLASS_ARITH},
	INSN_ACOS:  {"ACOS", "ACOS", CLASS_ARITH},
	INSN_ATAN:  {"ATAN", "ATAN", CLASS_ARITH},
	INSN_NEGI:  {"NEGI", "NEGI", CLASS_ARITH},
	INSN_NEGD:  {"NEGD", "NEGD", CLASS_ARITH},
	INSN_NEGR:  {"NEGR", "NEGR", CLASS_ARITH},
	INSN_INVI:  {"INVI", "INVI", CLASS_ARITH},
	INSN_INVD:  {"INVD", "INVD", CLASS_ARITH},

	INSN_EQ_I: {"==I", "==I", CLASS_CMP},
	INSN_NE_I: {"<>I", "<>I", CLASS_CMP},
	INSN_GT_I: {">I", ">I", CLASS_CMP},
	INSN_LT_I: {"<I", "<I", CLASS_CMP},
	INSN_GE_I: {">=I", ">=I", CLASS_CMP},
	INSN_LE_I: {"<=I", "<=I", CLASS_CMP},
	INSN_EQ_D: {"==D", "==D", CLASS_CMP},
	INSN_NE_D: {"<>D", "<>D", CLASS_CMP},
	INSN_GT_D: {">D", ">D", CLASS_CMP},
	INSN_LT_D: {"<D", "<D", CLASS_CMP},
	INSN_GE_D: {">=D", ">=D", CLASS_CMP},
	INSN_LE_D: {"<=D", "<=D", CLASS_CMP},
	INSN_EQ_R: {"==R", "==R", CLASS_CMP},
	INSN_NE_R: {"<>R", "<>R", CLASS_CMP},
	INSN_GT_R: {">R", ">R", CLASS_CMP},
	INSN_LT_R: {"<R", "<R", CLASS_CMP},
	INSN_GE_R: {">=R", ">=R", CLASS_CMP},
	INSN_LE_R: {"<=R", "<=R", CLASS_CMP},

	INSN_BTI:   {"BTI", "BTI", CLASS_CONV},
	INSN_ITB:   {"ITB", "ITB", CLASS_CONV},
	INSN_BTD:   {"BTD", "BTD", CLASS_CONV},
	INSN_DTB:   {"DTB", "DTB", CLASS_CONV},
	INSN_ITD:   {"ITD", "ITD", CLASS_CONV},
	INSN_DTR:   {"DTR", "DTR", CLASS_CONV},
	INSN_RND:   {"RND", "RND", CLASS_CONV},
	INSN_RNDP:  {"RND+", "RND+", CLASS_CONV},
	INSN_RNDM:  {"RND-", "RND-", CLASS_CONV},
	INSN_TRUNC: {"TRUNC", "TRUNC", CLASS_CONV},

	INSN_SLW:  {"SLW", "SLW", CLASS_SHIFT},
	INSN_SRW:  {"SRW", "SRW", CLASS_SHIFT},
	INSN_SSI:  {"SSI", "SSI", CLASS_SHIFT},
	INSN_SLD:  {"SLD", "SLD", CLASS_SHIFT},
	INSN_SRD:  {"SRD", "SRD", CLASS_SHIFT},
	INSN_SSD:  {"SSD", "SSD", CLASS_SHIFT},
	INSN_RLD:  {"RLD", "RLD", CLASS_SHIFT},
	INSN_RRD:  {"RRD", "RRD", CLASS_SHIFT},
	INSN_RLDA: {"RLDA", "RLDA", CLASS_SHIFT},
	INSN_RRDA: {"RRDA", "RRDA", CLASS_SHIFT},

	INSN_SI: {"SI", "SP", CLASS_TIMER},
	INSN_SV: {"SV", "SE", CLASS_TIMER},
	INSN_SE: {"SE", "SD", CLASS_TIMER},
	INSN_SS: {"SS", "SS", CLASS_TIMER},
	INSN_SA: {"SA", "SF", CLASS_TIMER},
	INSN_FR: {"FR", "FR", CLASS_TIMER},
	INSN_ZV: {"ZV", "CU", CLASS_TIMER},
	INSN_ZR: {"ZR", "CD", CLASS_TIMER},

	INSN_SPA:   {"SPA", "JU", CLASS_JUMP},
	INSN_SPB:   {"SPB", "JC", CLASS_JUMP},
	INSN_SPBN:  {"SPBN", "JCN", CLASS_JUMP},
	INSN_SPBB:  {"SPBB", "JCB", CLASS_JUMP},
	INSN_SPBNB: {"SPBNB", "JNB", CLASS_JUMP},
	INSN_SPBI:  {"SPBI", "JBI", CLASS_JUMP},
	INSN_SPBIN: {"SPBIN", "JNBI", CLASS_JUMP},
	INSN_SPO:   {"SPO", "JO", CLASS_JUMP},
	INSN_SPS:   {"SPS", "JOS", CLASS_JUMP},
	INSN_SPZ:   {"SPZ", "JZ", CLASS_JUMP},
	INSN_SPN:   {"SPN", "JN", CLASS_JUMP},
	INSN_SPP:   {"SPP", "JP", CLASS_JUMP},
	INSN_SPM:   {"SPM", "JM", CLASS_JUMP},
	INSN_SPPZ:  {"SPPZ", "JPZ", CLASS_JUMP},
	INSN_SPMZ:  {"SPMZ", "JMZ", CLASS_JUMP},
	INSN_SPU:   {"SPU", "JUO", CLASS_JUMP},
	INSN_LOOP:  {"LOOP", "LOOP", CLASS_JUMP},
	INSN_SPL:   {"SPL", "JL", CLASS_JUMP},

	INSN_CALL: {"CALL", "CALL", CLASS_CALL},
	INSN_UC:   {"UC", "UC", CLASS_CALL},
	INSN_CC:   {"CC", "CC", CLASS_CALL},
	INSN_BE:   {"BE", "BE", CLASS_CALL},
	INSN_BEA:  {"BEA", "BEU", CLASS_CALL},
	INSN_BEB:  {"BEB", "BEC", CLASS_CALL},

	INSN_STWRST:       {"__STWRST", "__STWRST", CLASS_EXT},
	INSN_SLEEP:        {"__SLEEP", "__SLEEP", CLASS_EXT},
	INSN_REBOOT:       {"__REBOOT", "__REBOOT", CLASS_EXT},
	INSN_SHUTDOWN:     {"__SHUTDOWN", "__SHUTDOWN", CLASS_EXT},
	INSN_GENERIC_CALL: {"__GENERIC_CALL", "__GENERIC_CALL", CLASS_EXT},
}

// Class returns the execution unit of the instruction kind.
func (it InsnType) Class() InsnClass {
	if it < 0 || it >= insn_count {
		return CLASS_NONE
	}
	return insnTable[it].class
}

// Mnemonic returns the instruction name in the mnemonic language.
func (it InsnType) Mnemonic(mnemonics Mnemonics) string {
	if it <= INSN_NONE || it >= insn_count {
		return fmt.Sprintf("?%d", int(it))
	}
	if mnemonics.Resolve() == MNEMONICS_EN {
		return insnTable[it].en
	}
	return insnTable[it].de
}

func (it InsnType) String() string {
	return it.Mnemonic(MNEMONICS_DE)
}

// IsExtended is true for the instructions gated by Specs.ExtendedInsns.
func (it InsnType) IsExtended() bool {
	switch it {
	case INSN_STWRST, INSN_SLEEP, INSN_REBOOT, INSN_SHUTDOWN:
		return true
	}
	return false
}

// IsJump is true for instructions taking a label operand.
func (it InsnType) IsJump() bool {
	return it.Class() == CLASS_JUMP
}

// ParseInsnType looks up an instruction by mnemonic.
func ParseInsnType(name string, mnemonics Mnemonics) (it InsnType, ok bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	en := mnemonics.Resolve() == MNEMONICS_EN
	for n := INSN_NONE + 1; n < insn_count; n++ {
		info := insnTable[n]
		mnemonic := info.de
		if en {
			mnemonic = info.en
		}
		if mnemonic == name {
			it = n
			ok = true
			return
		}
	}
	return
}

// Routine is native behavior run by a GENERIC_CALL instruction.
type Routine func(cpu *Cpu, frame *Frame) (err error)

// Param binds a block interface field to an actual operand.
type Param struct {
	Name   string
	Actual Operand
}

// Instruction is a translated statement.
type Instruction struct {
	Type    InsnType
	Ops     []Operand
	Params  []Param // CALL parameter list
	Label   string  // Label defined at this instruction
	LineNo  int     // Source line, 0 when unknown
	Raw     string  // Source text, if known
	Routine Routine // Native behavior for INSN_GENERIC_CALL

	target  int // Resolved jump target
	listLen int // SPL jump list length
}

// NewInsn creates an instruction.
func NewInsn(it InsnType, ops ...Operand) *Instruction {
	return &Instruction{Type: it, Ops: ops}
}

// WithParams sets the CALL parameter list.
func (insn *Instruction) WithParams(params ...Param) *Instruction {
	insn.Params = params
	return insn
}

// Op returns operand 'n', or an AREA_NONE operand.
func (insn *Instruction) Op(n int) (op Operand) {
	if n < len(insn.Ops) {
		op = insn.Ops[n]
	}
	return
}

// Text renders the instruction in the mnemonic language.
func (insn *Instruction) Text(mnemonics Mnemonics) string {
	mnemonics = mnemonics.Resolve()
	var text strings.Builder
	if insn.Label != "" {
		fmt.Fprintf(&text, "%v: ", insn.Label)
	}
	text.WriteString(insn.Type.Mnemonic(mnemonics))
	for n, op := range insn.Ops {
		if n == 0 {
			text.WriteString(" ")
		} else {
			text.WriteString(", ")
		}
		text.WriteString(op.Text(mnemonics))
	}
	if len(insn.Params) > 0 {
		text.WriteString(" (")
		for n, param := range insn.Params {
			if n > 0 {
				text.WriteString(", ")
			}
			fmt.Fprintf(&text, "%v := %v", param.Name, param.Actual.Text(mnemonics))
		}
		text.WriteString(")")
	}
	return text.String()
}

func (insn *Instruction) String() string {
	return insn.Text(MNEMONICS_DE)
}
