package cpu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testClock is a manually advanced engine clock.
type testClock struct {
	now time.Duration
}

func (tc *testClock) Clock() time.Duration {
	return tc.now
}

func (tc *testClock) Sleep(d time.Duration) {
	tc.now += d
}

// newTestCpu creates a CPU on a manual clock.
func newTestCpu(t *testing.T, specs Specs) (cpu *Cpu, clock *testClock) {
	t.Helper()
	cpu, err := NewCpu(specs)
	require.NoError(t, err)
	clock = &testClock{}
	cpu.Clock = clock.Clock
	cpu.Sleep = clock.Sleep
	return
}

// loadOB1 loads a program with 'insns' as OB 1, plus any extra blocks.
func loadOB1(t *testing.T, cpu *Cpu, insns []*Instruction, blocks ...*Block) {
	t.Helper()
	prog := NewProgram()
	ob := NewBlock(BLOCK_OB, 1)
	ob.Append(insns...)
	require.NoError(t, prog.Add(ob))
	for _, blk := range blocks {
		require.NoError(t, prog.Add(blk))
	}
	require.NoError(t, cpu.Load(prog))
}

// runOB1 loads 'insns' as OB 1 into a default CPU and runs one cycle.
func runOB1(t *testing.T, insns ...*Instruction) (cpu *Cpu, err error) {
	t.Helper()
	cpu, _ = newTestCpu(t, DefaultSpecs())
	loadOB1(t, cpu, insns)
	_, err = cpu.RunCycle()
	return
}

func ins(it InsnType, ops ...Operand) *Instruction {
	return NewInsn(it, ops...)
}

func labeled(label string, insn *Instruction) *Instruction {
	insn.Label = label
	return insn
}

func mBit(byteOffset, bit int) Operand {
	return Mem(AREA_M, 1, byteOffset, bit)
}

func mWord(byteOffset int) Operand {
	return Mem(AREA_M, 16, byteOffset, 0)
}

func mDWord(byteOffset int) Operand {
	return Mem(AREA_M, 32, byteOffset, 0)
}

func imm16(value int16) Operand {
	return Imm(uint32(uint16(value)), 16)
}

func imm32(value int32) Operand {
	return Imm(uint32(value), 32)
}
