package cpu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timerProgram(t *testing.T, it InsnType, preset time.Duration) (cpu *Cpu, clock *testClock) {
	t.Helper()
	s5t, err := ImmS5Time(preset)
	require.NoError(t, err)

	cpu, clock = newTestCpu(t, DefaultSpecs())
	loadOB1(t, cpu, []*Instruction{
		ins(INSN_U, Mem(AREA_E, 1, 0, 0)),
		ins(INSN_L, s5t),
		ins(it, TimerOp(1, 0)),
		ins(INSN_U, Mem(AREA_E, 1, 0, 1)),
		ins(INSN_R, TimerOp(1, 0)),
		ins(INSN_L, TimerOp(1, 16)),
		ins(INSN_T, mWord(10)),
		ins(INSN_LC, TimerOp(1, 16)),
		ins(INSN_T, mWord(12)),
		ins(INSN_U, TimerOp(1, 1)),
		ins(INSN_ASSIGN, Mem(AREA_A, 1, 0, 0)),
	})
	return
}

// timerCycle runs a cycle at 'at' with the start input 'in'.
func timerCycle(t *testing.T, cpu *Cpu, clock *testClock, at time.Duration, in bool) (value uint16, bcd uint16, out bool) {
	t.Helper()
	clock.now = at
	cpu.Inputs.Data[0] = byte(b2w(in))
	_, err := cpu.RunCycle()
	require.NoError(t, err)
	flags := cpu.Flags.Data
	value = uint16(flags[10])<<8 | uint16(flags[11])
	bcd = uint16(flags[12])<<8 | uint16(flags[13])
	out = cpu.Outputs.Data[0]&1 != 0
	return
}

func TestTimer_ExtendedPulse(t *testing.T) {
	assert := assert.New(t)
	cpu, clock := timerProgram(t, INSN_SV, 2*time.Second)

	value, bcd, out := timerCycle(t, cpu, clock, 0, true)
	assert.Equal(uint16(200), value)
	assert.Equal(uint16(0x0200), bcd)
	assert.True(out)
	assert.True(cpu.Timers[1].Running)

	// The pulse continues when the input drops.
	value, _, out = timerCycle(t, cpu, clock, time.Second, false)
	assert.Equal(uint16(100), value)
	assert.True(out)
	assert.True(cpu.Timers[1].Running)

	value, _, out = timerCycle(t, cpu, clock, 2500*time.Millisecond, false)
	assert.Equal(uint16(0), value)
	assert.False(out)
	assert.False(cpu.Timers[1].Running)
}

func TestTimer_Pulse(t *testing.T) {
	assert := assert.New(t)
	cpu, clock := timerProgram(t, INSN_SI, 2*time.Second)

	_, _, out := timerCycle(t, cpu, clock, 0, true)
	assert.True(out)
	_, _, out = timerCycle(t, cpu, clock, time.Second, true)
	assert.True(out)

	// SI stops as soon as the input drops.
	value, _, out := timerCycle(t, cpu, clock, 1500*time.Millisecond, false)
	assert.False(out)
	assert.Equal(uint16(0), value)

	_, _, out = timerCycle(t, cpu, clock, 1600*time.Millisecond, true)
	assert.True(out)
	_, _, out = timerCycle(t, cpu, clock, 4*time.Second, true)
	assert.False(out)
}

func TestTimer_OnDelay(t *testing.T) {
	assert := assert.New(t)
	cpu, clock := timerProgram(t, INSN_SE, time.Second)

	_, _, out := timerCycle(t, cpu, clock, 0, true)
	assert.False(out)
	value, _, out := timerCycle(t, cpu, clock, 500*time.Millisecond, true)
	assert.False(out)
	assert.Equal(uint16(50), value)
	_, _, out = timerCycle(t, cpu, clock, 1200*time.Millisecond, true)
	assert.True(out)
	_, _, out = timerCycle(t, cpu, clock, 1300*time.Millisecond, false)
	assert.False(out)

	// Dropping the input before expiry cancels the delay.
	timerCycle(t, cpu, clock, 2*time.Second, true)
	timerCycle(t, cpu, clock, 2500*time.Millisecond, false)
	_, _, out = timerCycle(t, cpu, clock, 3500*time.Millisecond, false)
	assert.False(out)
}

func TestTimer_RetentiveOnDelay(t *testing.T) {
	assert := assert.New(t)
	cpu, clock := timerProgram(t, INSN_SS, time.Second)

	timerCycle(t, cpu, clock, 0, true)
	_, _, out := timerCycle(t, cpu, clock, 100*time.Millisecond, false)
	assert.False(out)
	_, _, out = timerCycle(t, cpu, clock, 1100*time.Millisecond, false)
	assert.True(out)
	_, _, out = timerCycle(t, cpu, clock, 5*time.Second, false)
	assert.True(out, "SS holds until reset")

	clock.now = 6 * time.Second
	cpu.Inputs.Data[0] = 0b10
	_, err := cpu.RunCycle()
	require.NoError(t, err)
	assert.Equal(byte(0), cpu.Outputs.Data[0])
}

func TestTimer_OffDelay(t *testing.T) {
	assert := assert.New(t)
	cpu, clock := timerProgram(t, INSN_SA, time.Second)

	_, _, out := timerCycle(t, cpu, clock, 0, true)
	assert.True(out)
	_, _, out = timerCycle(t, cpu, clock, 5*time.Second, true)
	assert.True(out)
	_, _, out = timerCycle(t, cpu, clock, 6*time.Second, false)
	assert.True(out)
	_, _, out = timerCycle(t, cpu, clock, 6500*time.Millisecond, false)
	assert.True(out)
	_, _, out = timerCycle(t, cpu, clock, 7100*time.Millisecond, false)
	assert.False(out)
}

func TestTimer_Readback(t *testing.T) {
	assert := assert.New(t)

	var timer Timer
	s5t, err := ImmS5Time(200 * time.Second)
	require.NoError(t, err)
	assert.Equal(uint32(0x2200), s5t.Value)
	require.NoError(t, timer.Run(TIMER_SV, true, uint16(s5t.Value), 0))
	assert.Equal(time.Second, timer.Base)
	assert.Equal(uint16(200), timer.Value(0))
	// Partial units round up.
	assert.Equal(uint16(200), timer.Value(500*time.Millisecond))
	assert.Equal(uint16(199), timer.Value(time.Second))
	assert.Equal(uint16(0x2199), timer.S5Time(time.Second))

	// Invalid BCD in the time value is rejected.
	var bad Timer
	assert.Error(bad.Run(TIMER_SE, true, 0x00fa, 0))
	assert.False(bad.Running)
}

func TestCounter(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, DefaultSpecs())
	loadOB1(t, cpu, []*Instruction{
		ins(INSN_U, Mem(AREA_E, 1, 0, 0)),
		ins(INSN_ZV, CounterOp(3, 0)),
		ins(INSN_U, Mem(AREA_E, 1, 0, 1)),
		ins(INSN_ZR, CounterOp(3, 0)),
		ins(INSN_U, Mem(AREA_E, 1, 0, 2)),
		ins(INSN_L, Imm(0x0998, 16)),
		ins(INSN_S, CounterOp(3, 0)),
		ins(INSN_U, Mem(AREA_E, 1, 0, 3)),
		ins(INSN_R, CounterOp(3, 0)),
		ins(INSN_U, Mem(AREA_E, 1, 0, 4)),
		ins(INSN_FR, CounterOp(3, 0)),
		ins(INSN_L, CounterOp(3, 16)),
		ins(INSN_T, mWord(0)),
		ins(INSN_LC, CounterOp(3, 16)),
		ins(INSN_T, mWord(2)),
		ins(INSN_U, CounterOp(3, 1)),
		ins(INSN_ASSIGN, mBit(4, 0)),
	})

	cycle := func(inputs byte) (value uint16, bcd uint16, out bool) {
		cpu.Inputs.Data[0] = inputs
		_, err := cpu.RunCycle()
		require.NoError(t, err)
		flags := cpu.Flags.Data
		return uint16(flags[0])<<8 | uint16(flags[1]), uint16(flags[2])<<8 | uint16(flags[3]), flags[4]&1 != 0
	}

	value, _, out := cycle(0b00001)
	assert.Equal(uint16(1), value)
	assert.True(out)
	value, _, _ = cycle(0b00001)
	assert.Equal(uint16(1), value, "counts on edges only")
	cycle(0b00000)
	value, _, _ = cycle(0b00001)
	assert.Equal(uint16(2), value)

	// FR re-arms the edge while ZV is held; the next cycle counts.
	value, _, _ = cycle(0b10001)
	assert.Equal(uint16(2), value)
	value, _, _ = cycle(0b00001)
	assert.Equal(uint16(3), value)

	value, bcd, _ := cycle(0b00100)
	assert.Equal(uint16(998), value)
	assert.Equal(uint16(0x0998), bcd)

	cycle(0b00001)
	cycle(0b00000)
	value, _, _ = cycle(0b00001)
	assert.Equal(uint16(COUNTER_MAX), value, "counting stops at the limit")

	value, _, _ = cycle(0b00010)
	assert.Equal(uint16(998), value)

	value, _, out = cycle(0b01000)
	assert.Equal(uint16(0), value)
	assert.False(out)

	value, _, _ = cycle(0b00010)
	assert.Equal(uint16(0), value, "counting stops at zero")
}
