package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/awl/dtype"
)

// accuOp runs a two operand instruction with ACCU2 = x and ACCU1 = y.
func accuOp(t *testing.T, it InsnType, x, y uint32) (cpu *Cpu) {
	t.Helper()
	cpu = loadedCpu(t)
	cpu.Accu[1] = x
	cpu.Accu[0] = y
	require.NoError(t, cpu.execute(nil, ins(it)))
	return
}

func real32(value float64) uint32 {
	return dtype.FloatToDWord(value)
}

func TestArith_Integer(t *testing.T) {
	table := [...]struct {
		it     InsnType
		x, y   uint32
		expect uint32
		a1, a0 bool
		ov     bool
	}{
		{INSN_ADD_I, 1000, 234, 1234, true, false, false},
		{INSN_ADD_I, 0xffff_7fff, 1, 0x8000, false, true, true},
		{INSN_SUB_I, 5, 7, 0xfffe, false, true, false},
		{INSN_SUB_I, 7, 7, 0, false, false, false},
		{INSN_MUL_I, 300, 300, 90000, true, false, true},
		{INSN_MUL_I, 0xfffe, 3, 0xffff_fffa, false, true, false},
		{INSN_DIV_I, 17, 5, 2<<16 | 3, true, false, false},
		{INSN_DIV_I, 0xfff1, 4, 0xfffd<<16 | 0xfffd, false, true, false},
		{INSN_DIV_I, 0x8000, 0xffff, 0x8000, true, false, true},
		{INSN_ADD_D, 0x7fff_ffff, 1, 0x8000_0000, false, true, true},
		{INSN_SUB_D, 100_000, 200_000, 0xfffe_7960, false, true, false},
		{INSN_MUL_D, 0x10000, 0x10000, 0, true, false, true},
		{INSN_MUL_D, 1000, 1000, 1_000_000, true, false, false},
		{INSN_DIV_D, 1_000_000, 7, 142857, true, false, false},
		{INSN_MOD, 1_000_000, 7, 1, true, false, false},
		{INSN_MOD, 0xffff_fff9, 4, 0xffff_fffd, false, true, false},
	}

	for _, entry := range table {
		assert := assert.New(t)

		cpu := accuOp(t, entry.it, entry.x, entry.y)
		assert.Equal(entry.expect, cpu.Accu[0], "%v %d %d", entry.it, entry.x, entry.y)
		assert.Equal(entry.a1, cpu.Status.A1, "%v A1", entry.it)
		assert.Equal(entry.a0, cpu.Status.A0, "%v A0", entry.it)
		assert.Equal(entry.ov, cpu.Status.OV, "%v OV", entry.it)
		assert.Equal(entry.ov, cpu.Status.OS, "%v OS", entry.it)
	}
}

func TestArith_DivideByZero(t *testing.T) {
	for _, it := range []InsnType{INSN_DIV_I, INSN_DIV_D, INSN_MOD} {
		assert := assert.New(t)

		cpu := accuOp(t, it, 10, 0)
		s := cpu.Status
		assert.True(s.OV, "%v", it)
		assert.True(s.OS, "%v", it)
		assert.True(STWBIT_UO.Eval(&s), "%v", it)
		assert.Nil(cpu.Halted())
	}
}

func TestArith_DivideByZeroProgram(t *testing.T) {
	assert := assert.New(t)

	cpu, err := runOB1(t,
		ins(INSN_L, imm16(10)),
		ins(INSN_L, imm16(0)),
		ins(INSN_DIV_I),
		ins(INSN_T, mWord(0)),
		ins(INSN_U, StwBitOp(STWBIT_OV)),
		ins(INSN_ASSIGN, mBit(10, 0)),
		ins(INSN_U, StwBitOp(STWBIT_OS)),
		ins(INSN_ASSIGN, mBit(10, 1)),
		ins(INSN_U, StwBitOp(STWBIT_UO)),
		ins(INSN_ASSIGN, mBit(10, 2)),
	)
	require.NoError(t, err)
	assert.Equal(byte(0b111), cpu.Flags.Data[10])
}

func TestArith_Real(t *testing.T) {
	table := [...]struct {
		it     InsnType
		x, y   float64
		expect float64
	}{
		{INSN_ADD_R, 1.5, 2.25, 3.75},
		{INSN_SUB_R, 1.5, 2.25, -0.75},
		{INSN_MUL_R, 1.5, -4, -6},
		{INSN_DIV_R, 1, 4, 0.25},
	}

	for _, entry := range table {
		assert := assert.New(t)

		cpu := accuOp(t, entry.it, real32(entry.x), real32(entry.y))
		assert.Equal(entry.expect, dtype.DWordToFloat(cpu.Accu[0]), "%v", entry.it)
		assert.False(cpu.Status.OV)
		assert.Equal(entry.expect > 0, cpu.Status.A1)
		assert.Equal(entry.expect < 0, cpu.Status.A0)
	}

	assert := assert.New(t)

	cpu := accuOp(t, INSN_DIV_R, real32(1), real32(0))
	assert.True(math.IsInf(dtype.DWordToFloat(cpu.Accu[0]), 1))
	assert.True(cpu.Status.OV)
	assert.True(cpu.Status.A1)
	assert.False(cpu.Status.A0)

	cpu = accuOp(t, INSN_DIV_R, real32(0), real32(0))
	assert.True(math.IsNaN(dtype.DWordToFloat(cpu.Accu[0])))
	assert.True(STWBIT_UO.Eval(&cpu.Status))

	cpu = accuOp(t, INSN_MUL_R, real32(1e-20), real32(1e-20))
	assert.Equal(0.0, dtype.DWordToFloat(cpu.Accu[0]))
	assert.True(cpu.Status.OV)

	cpu = accuOp(t, INSN_MUL_R, real32(1e-30), real32(1e-30))
	assert.Equal(0.0, dtype.DWordToFloat(cpu.Accu[0]))
	assert.True(cpu.Status.OV)
}

func TestArith_Unary(t *testing.T) {
	assert := assert.New(t)
	cpu := loadedCpu(t)

	run := func(it InsnType, value uint32) uint32 {
		cpu.Accu[0] = value
		require.NoError(t, cpu.execute(nil, ins(it)))
		return cpu.Accu[0]
	}

	assert.Equal(uint32(0xabcd_fffb), run(INSN_NEGI, 0xabcd_0005))
	assert.Equal(uint32(0x8000), run(INSN_NEGI, 0x8000))
	assert.True(cpu.Status.OV)
	assert.Equal(uint32(0xffff_fffb), run(INSN_NEGD, 5))
	assert.False(cpu.Status.OV)
	assert.Equal(uint32(0x1234_edcb), run(INSN_INVI, 0x1234_1234))
	assert.Equal(uint32(0xedcb_edcb), run(INSN_INVD, 0x1234_1234))
	assert.Equal(real32(2.5), run(INSN_ABS, real32(-2.5)))
	assert.Equal(real32(-2.5), run(INSN_NEGR, real32(2.5)))
	assert.Equal(real32(3), run(INSN_SQRT, real32(9)))
	assert.Equal(real32(16), run(INSN_SQR, real32(4)))

	run(INSN_LN, real32(0))
	assert.True(STWBIT_UO.Eval(&cpu.Status))
	run(INSN_SQRT, real32(-1))
	assert.True(STWBIT_UO.Eval(&cpu.Status))
}

func TestArith_AddImmediate(t *testing.T) {
	assert := assert.New(t)
	cpu := loadedCpu(t)

	cpu.Accu[0] = 0x1234_fffe
	require.NoError(t, cpu.execute(nil, ins(INSN_ADD, imm16(3))))
	assert.Equal(uint32(0x1234_0001), cpu.Accu[0])

	require.NoError(t, cpu.execute(nil, ins(INSN_ADD, imm32(-2))))
	assert.Equal(uint32(0x1233_ffff), cpu.Accu[0])

	err := cpu.execute(nil, ins(INSN_ADD, mWord(0)))
	assert.ErrorIs(err, ErrOperandArea)
}

func TestConvert_BCD(t *testing.T) {
	assert := assert.New(t)
	cpu := loadedCpu(t)

	run := func(it InsnType, value uint32) (uint32, error) {
		cpu.Status.Reset()
		cpu.Accu[0] = value
		err := cpu.execute(nil, ins(it))
		return cpu.Accu[0], err
	}

	// BCD to binary and back, over every valid 16-bit BCD.
	for n := -999; n <= 999; n++ {
		bcd, err := run(INSN_ITB, uint32(uint16(int16(n))))
		require.NoError(t, err)
		value, err := run(INSN_BTI, bcd)
		require.NoError(t, err)
		assert.Equal(uint16(int16(n)), uint16(value), "%d", n)
		assert.False(cpu.Status.OV)
	}

	for _, n := range []int32{0, 1, -1, 1234567, -9999999, 9999999} {
		bcd, err := run(INSN_DTB, uint32(n))
		require.NoError(t, err)
		value, err := run(INSN_BTD, bcd)
		require.NoError(t, err)
		assert.Equal(n, int32(value), "%d", n)
	}

	value, err := run(INSN_BTI, 0x00a1)
	assert.Error(err)
	assert.False(IsFatal(err))
	assert.True(cpu.Status.OV)
	assert.True(cpu.Status.OS)
	assert.Equal(uint32(0x00a1), value, "invalid BCD is not converted")

	_, err = run(INSN_BTD, 0x0000_00f0)
	assert.Error(err)
	assert.True(cpu.Status.OV)

	value, err = run(INSN_ITB, 1000)
	assert.NoError(err)
	assert.True(cpu.Status.OV)
	assert.Equal(uint32(1000), value)

	value, err = run(INSN_DTB, 10_000_000)
	assert.NoError(err)
	assert.True(cpu.Status.OV)
	assert.Equal(uint32(10_000_000), value)
}

func TestConvert_Real(t *testing.T) {
	assert := assert.New(t)
	cpu := loadedCpu(t)

	run := func(it InsnType, value uint32) uint32 {
		cpu.Status.Reset()
		cpu.Accu[0] = value
		require.NoError(t, cpu.execute(nil, ins(it)))
		return cpu.Accu[0]
	}

	assert.Equal(uint32(0xffff_fffe), run(INSN_ITD, 0x0000_fffe))
	assert.Equal(real32(-2), run(INSN_DTR, 0xffff_fffe))

	table := [...]struct {
		value                   float64
		rnd, rndp, rndm, trunc int32
	}{
		{2.5, 2, 3, 2, 2},
		{3.5, 4, 4, 3, 3},
		{-2.5, -2, -2, -3, -2},
		{-0.2, 0, 0, -1, 0},
		{7, 7, 7, 7, 7},
	}
	for _, entry := range table {
		in := real32(entry.value)
		assert.Equal(entry.rnd, int32(run(INSN_RND, in)), "RND %v", entry.value)
		assert.Equal(entry.rndp, int32(run(INSN_RNDP, in)), "RND+ %v", entry.value)
		assert.Equal(entry.rndm, int32(run(INSN_RNDM, in)), "RND- %v", entry.value)
		assert.Equal(entry.trunc, int32(run(INSN_TRUNC, in)), "TRUNC %v", entry.value)
	}

	big := real32(3e9)
	assert.Equal(big, run(INSN_RND, big))
	assert.True(cpu.Status.OV)
}
