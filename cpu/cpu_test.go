package cpu

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extendedSpecs() (specs Specs) {
	specs = DefaultSpecs()
	specs.ExtendedInsns = true
	return
}

func TestCpu_NoProgram(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, DefaultSpecs())
	_, err := cpu.RunCycle()
	assert.ErrorIs(err, ErrNoProgram)
	_, err = cpu.Startup()
	assert.ErrorIs(err, ErrNoProgram)

	prog := NewProgram()
	require.NoError(t, prog.Add(NewBlock(BLOCK_FC, 1)))
	require.NoError(t, cpu.Load(prog))
	_, err = cpu.RunCycle()
	assert.ErrorIs(err, ErrNoMainBlock)
}

func TestCpu_Startup(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, DefaultSpecs())
	ob100 := NewBlock(BLOCK_OB, 100)
	ob100.Append(
		ins(INSN_SET),
		ins(INSN_S, mBit(0, 0)),
	)
	loadOB1(t, cpu, []*Instruction{
		ins(INSN_U, mBit(0, 0)),
		ins(INSN_ASSIGN, mBit(0, 1)),
	}, ob100)

	_, err := cpu.RunCycle()
	require.NoError(t, err)
	assert.Equal(byte(0), cpu.Flags.Data[0])

	signal, err := cpu.Startup()
	require.NoError(t, err)
	assert.Equal(SIGNAL_NONE, signal)
	_, err = cpu.RunCycle()
	require.NoError(t, err)
	assert.Equal(byte(0b11), cpu.Flags.Data[0])
}

func TestCpu_Stats(t *testing.T) {
	assert := assert.New(t)

	cpu, clock := newTestCpu(t, extendedSpecs())
	loadOB1(t, cpu, []*Instruction{
		ins(INSN_L, imm16(3)),
		ins(INSN_SLEEP, Imm(3, 16)),
	})

	for range 3 {
		_, err := cpu.RunCycle()
		require.NoError(t, err)
	}
	assert.Equal(uint64(3), cpu.Stats.Count)
	assert.Equal(uint64(6), cpu.Stats.Insns)
	assert.Equal(3*time.Millisecond, cpu.Stats.Last)
	assert.Equal(3*time.Millisecond, cpu.Stats.Min)
	assert.Equal(3*time.Millisecond, cpu.Stats.Max)
	assert.Equal(9*time.Millisecond, clock.now)

	cpu.Reset()
	assert.Equal(CycleStats{}, cpu.Stats)
}

func TestCpu_Extended(t *testing.T) {
	assert := assert.New(t)

	// Refused at load time when disabled.
	cpu, _ := newTestCpu(t, DefaultSpecs())
	prog := NewProgram()
	ob := NewBlock(BLOCK_OB, 1)
	ob.Append(ins(INSN_REBOOT))
	require.NoError(t, prog.Add(ob))
	assert.ErrorIs(cpu.Load(prog), ErrExtended)

	cpu, clock := newTestCpu(t, extendedSpecs())
	loadOB1(t, cpu, []*Instruction{
		ins(INSN_SET),
		ins(INSN_SAVE),
		ins(INSN_STWRST),
		ins(INSN_U, StwBitOp(STWBIT_BIE)),
		ins(INSN_ASSIGN, mBit(0, 0)),
		ins(INSN_SLEEP, Imm(250, 16)),
		ins(INSN_U, mBit(0, 1)),
		ins(INSN_SPB, LabelOp("SHUT")),
		ins(INSN_REBOOT),
		ins(INSN_SET),
		ins(INSN_ASSIGN, mBit(0, 2)),
		labeled("SHUT", ins(INSN_SHUTDOWN)),
		ins(INSN_SET),
		ins(INSN_ASSIGN, mBit(0, 3)),
	})

	signal, err := cpu.RunCycle()
	require.NoError(t, err)
	assert.Equal(SIGNAL_SOFT_REBOOT, signal)
	assert.Equal(byte(0), cpu.Flags.Data[0], "STWRST clears BIE")
	assert.Equal(250*time.Millisecond, clock.now)

	cpu.Flags.Data[0] = 0b10
	signal, err = cpu.RunCycle()
	require.NoError(t, err)
	assert.Equal(SIGNAL_SHUTDOWN, signal)
	assert.Equal(byte(0b10), cpu.Flags.Data[0], "the cycle ends at the signal")

	// Shutdown takes precedence.
	cpu.raise(SIGNAL_SHUTDOWN)
	cpu.raise(SIGNAL_SOFT_REBOOT)
	assert.Equal(SIGNAL_SHUTDOWN, cpu.signal)
	assert.Equal("shutdown", SIGNAL_SHUTDOWN.String())
	assert.Equal("soft-reboot", SIGNAL_SOFT_REBOOT.String())
}

func TestCpu_CycleTime(t *testing.T) {
	assert := assert.New(t)

	specs := extendedSpecs()
	specs.CycleTimeLimit = time.Second
	cpu, clock := newTestCpu(t, specs)
	loadOB1(t, cpu, []*Instruction{
		ins(INSN_L, mWord(0)),
		ins(INSN_SLEEP, mWord(0)),
	})

	binaryWord(cpu.Flags.Data, 0, 2000)
	_, err := cpu.RunCycle()
	assert.ErrorIs(err, ErrCycleTime)
	assert.False(IsFatal(err))
	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal("OB 1", fault.Block)
	assert.Equal(INSN_SLEEP, fault.Insn.Type)
	assert.Equal(time.Duration(0), clock.now, "the sleep is refused")

	binaryWord(cpu.Flags.Data, 0, 10)
	_, err = cpu.RunCycle()
	assert.NoError(err)
}

func TestCpu_CycleTimeClock(t *testing.T) {
	assert := assert.New(t)

	specs := DefaultSpecs()
	specs.CycleTimeLimit = 10 * time.Millisecond
	cpu, clock := newTestCpu(t, specs)
	loadOB1(t, cpu, []*Instruction{
		labeled("LOOP", ins(INSN_SPA, LabelOp("LOOP"))),
	})
	cpu.Clock = func() time.Duration {
		clock.now += time.Millisecond
		return clock.now
	}

	_, err := cpu.RunCycle()
	assert.ErrorIs(err, ErrCycleTime)
	assert.Less(cpu.Stats.Insns, uint64(20))
}

func sfcCall(number int, params ...Param) *Instruction {
	return call(Numbered(AREA_BLOCK_SFC, number), params...)
}

func TestCpu_SystemFunctions(t *testing.T) {
	assert := assert.New(t)

	specs := DefaultSpecs()
	specs.CycleTimeLimit = time.Second
	cpu, clock := newTestCpu(t, specs)
	loadOB1(t, cpu, []*Instruction{
		sfcCall(SFC_TIME_TCK, Param{"RET_VAL", mDWord(20)}),
		sfcCall(SFC_WAIT, Param{"WT", imm16(500)}),
		sfcCall(SFC_TIME_TCK, Param{"RET_VAL", mDWord(24)}),
		sfcCall(SFC_WAIT, Param{"WT", mWord(0)}),
		sfcCall(SFC_RE_TRIGR),
		sfcCall(SFC_WAIT, Param{"WT", mWord(0)}),
		ins(INSN_U, mBit(2, 0)),
		ins(INSN_SPBN, LabelOp("END")),
		sfcCall(SFC_STP),
		ins(INSN_SET),
		ins(INSN_ASSIGN, mBit(2, 1)),
		labeled("END", ins(INSN_NOP0)),
	})

	clock.now = 1234 * time.Millisecond
	binaryWord(cpu.Flags.Data, 0, 30000)
	signal, err := cpu.RunCycle()
	require.NoError(t, err)
	assert.Equal(SIGNAL_NONE, signal)
	assert.Equal(uint32(1234), dword(cpu.Flags.Data[20:]))
	assert.Equal(uint32(1234), dword(cpu.Flags.Data[24:]), "500us is below the tick")
	assert.Equal(1234*time.Millisecond+60500*time.Microsecond, clock.now)

	cpu.Flags.Data[2] = 1
	signal, err = cpu.RunCycle()
	require.NoError(t, err)
	assert.Equal(SIGNAL_SHUTDOWN, signal)
	assert.Equal(byte(1), cpu.Flags.Data[2])
}

func TestCpu_SystemFunctionFault(t *testing.T) {
	assert := assert.New(t)

	specs := DefaultSpecs()
	specs.CycleTimeLimit = time.Millisecond
	cpu, _ := newTestCpu(t, specs)
	loadOB1(t, cpu, []*Instruction{
		ins(INSN_NOP0),
		sfcCall(SFC_WAIT, Param{"WT", imm16(2000)}),
	})

	_, err := cpu.RunCycle()
	assert.ErrorIs(err, ErrCycleTime)
	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal("OB 1", fault.Block)
	assert.Equal(INSN_CALL, fault.Insn.Type)
}

func TestCpu_FaultSnapshot(t *testing.T) {
	assert := assert.New(t)

	load := ins(INSN_L, imm16(0x1234))
	load.LineNo = 3
	store := ins(INSN_T, mWord(DefaultSpecs().NrFlags-1))
	store.LineNo = 4

	_, err := runOB1(t, load, store)
	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.True(fault.Fatal)
	assert.Equal(4, fault.LineNo)

	snap := fault.Snapshot
	require.NotNil(t, snap)
	assert.Equal("OB 1", snap.Block)
	assert.Equal(1, snap.Ip)
	assert.Equal(4, snap.LineNo)
	assert.Equal(uint32(0x1234), snap.Accu[0])
}

func TestSpecs_Validate(t *testing.T) {
	table := [...]struct {
		name   string
		modify func(specs *Specs)
		expect error
	}{
		{"accus", func(specs *Specs) { specs.NrAccus = 3 }, ErrSpecsAccus},
		{"size-negative", func(specs *Specs) { specs.NrFlags = -1 }, ErrSpecsSize},
		{"size-large", func(specs *Specs) { specs.NrLocal = 0x20000 }, ErrSpecsSize},
		{"call-depth", func(specs *Specs) { specs.CallStackDepth = 0 }, ErrSpecsDepth},
		{"paren-depth", func(specs *Specs) { specs.ParenStackDepth = 0 }, ErrSpecsDepth},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			specs := DefaultSpecs()
			entry.modify(&specs)
			cpu, err := NewCpu(specs)
			assert.ErrorIs(t, err, entry.expect)
			assert.Nil(t, cpu)
		})
	}

	specs := DefaultSpecs()
	specs.NrAccus = 3
	specs.CallStackDepth = 0
	err := specs.Validate()
	assert.ErrorIs(t, err, ErrSpecsAccus)
	assert.ErrorIs(t, err, ErrSpecsDepth)
}

func TestCpu_Reallocate(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, DefaultSpecs())
	cpu.Flags.Data[3] = 0x42
	specs := DefaultSpecs()
	specs.NrFlags = 4
	specs.NrTimers = 8
	require.NoError(t, cpu.Reallocate(specs))
	assert.Equal(4, cpu.Flags.Size())
	assert.Equal(byte(0x42), cpu.Flags.Data[3])
	assert.Len(cpu.Timers, 8)

	specs.NrAccus = 5
	assert.ErrorIs(cpu.Reallocate(specs), ErrSpecsAccus)
	assert.Equal(4, cpu.Flags.Size())
}

func TestCpu_String(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, DefaultSpecs())
	cpu.Accu[0] = 0x1234_5678
	cpu.AR2 = 0x8400_0010
	text := cpu.String()
	assert.Contains(text, "accu1: 1234_5678")
	assert.Contains(text, "  ar2: 8400_0010")
	assert.Contains(text, "   db: -")
	assert.NotContains(text, "accu3")

	specs := DefaultSpecs()
	specs.NrAccus = 4
	require.NoError(t, cpu.Reallocate(specs))
	assert.Contains(cpu.String(), "accu4: 0000_0000")
}

func TestMnemonics(t *testing.T) {
	assert := assert.New(t)

	insn := ins(INSN_U, Mem(AREA_E, 1, 0, 0))
	assert.Equal("U E 0.0", insn.Text(MNEMONICS_DE))
	assert.Equal("A I 0.0", insn.Text(MNEMONICS_EN))
	assert.Equal("U E 0.0", insn.String())

	insn = ins(INSN_T, Mem(AREA_A, 16, 4, 0))
	assert.Equal("T AW 4", insn.Text(MNEMONICS_DE))
	assert.Equal("T QW 4", insn.Text(MNEMONICS_EN))

	insn = labeled("M1", ins(INSN_SPB, LabelOp("END")))
	assert.Equal("M1: SPB END", insn.Text(MNEMONICS_DE))
	assert.Equal("M1: JC END", insn.Text(MNEMONICS_EN))

	insn = sfcCall(SFC_WAIT, Param{"WT", imm16(10)})
	assert.Equal("CALL SFC 47 (WT := 10)", insn.Text(MNEMONICS_DE))

	it, ok := ParseInsnType("spb", MNEMONICS_DE)
	assert.True(ok)
	assert.Equal(INSN_SPB, it)
	it, ok = ParseInsnType("JC", MNEMONICS_EN)
	assert.True(ok)
	assert.Equal(INSN_SPB, it)
	_, ok = ParseInsnType("JC", MNEMONICS_DE)
	assert.False(ok)

	table := [...]struct {
		name   string
		expect Mnemonics
	}{
		{"", MNEMONICS_AUTO},
		{"Auto", MNEMONICS_AUTO},
		{"de", MNEMONICS_DE},
		{"de-AT", MNEMONICS_DE},
		{"en-US", MNEMONICS_EN},
		{"fr", MNEMONICS_EN},
	}
	for _, entry := range table {
		m, err := ParseMnemonics(entry.name)
		assert.NoError(err, entry.name)
		assert.Equal(entry.expect, m, entry.name)
	}
	_, err := ParseMnemonics("not a tag!")
	assert.Error(err)

	assert.Equal("de", MNEMONICS_DE.String())
	assert.NotEqual(MNEMONICS_AUTO, MNEMONICS_AUTO.Resolve())
}

func binaryWord(data []byte, offset int, value uint16) {
	data[offset] = byte(value >> 8)
	data[offset+1] = byte(value)
}

func dword(data []byte) uint32 {
	return uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
}
