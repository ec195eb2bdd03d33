package emulator

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/awl/cpu"
	"github.com/ezrec/awl/io"
)

func smallSpecs() (specs cpu.Specs) {
	specs = cpu.DefaultSpecs()
	specs.NrInputs = 2
	specs.NrOutputs = 2
	specs.ExtendedInsns = true
	return
}

func insn(it cpu.InsnType, ops ...cpu.Operand) *cpu.Instruction {
	return cpu.NewInsn(it, ops...)
}

func bit(area cpu.Area, byteOffset, bitOffset int) cpu.Operand {
	return cpu.Mem(area, 1, byteOffset, bitOffset)
}

func program(t *testing.T, ob1 []*cpu.Instruction, blocks ...*cpu.Block) (prog *cpu.Program) {
	t.Helper()
	prog = cpu.NewProgram()
	ob := cpu.NewBlock(cpu.BLOCK_OB, 1)
	ob.Append(ob1...)
	require.NoError(t, prog.Add(ob))
	for _, blk := range blocks {
		require.NoError(t, prog.Add(blk))
	}
	return
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu, err := NewEmulator(cpu.DefaultSpecs(), nil)
	require.NoError(t, err)
	assert.False(emu.Verbose)
	assert.Equal("dummy", emu.Hardware.Name())
	assert.ErrorIs(emu.Start(), ErrNotLoaded)

	defines := maps.Collect(emu.Defines())
	assert.Equal(2, defines["accus"])
	assert.Equal("dummy", defines["hardware"])

	specs := cpu.DefaultSpecs()
	specs.NrAccus = 3
	_, err = NewEmulator(specs, nil)
	assert.ErrorIs(err, cpu.ErrSpecsAccus)
}

func TestEmulator_Tape(t *testing.T) {
	assert := assert.New(t)

	// A 0.0 := E 0.0 AND E 0.1, A 1.0 := NOT E 1.0
	output := &bytes.Buffer{}
	tape := &io.Tape{
		Input:  bytes.NewReader([]byte{0b01, 0, 0b11, 1, 0b10, 0}),
		Output: output,
	}
	emu, err := NewEmulator(smallSpecs(), tape)
	require.NoError(t, err)
	require.NoError(t, emu.Load(program(t, []*cpu.Instruction{
		insn(cpu.INSN_U, bit(cpu.AREA_E, 0, 0)),
		insn(cpu.INSN_U, bit(cpu.AREA_E, 0, 1)),
		insn(cpu.INSN_ASSIGN, bit(cpu.AREA_A, 0, 0)),
		insn(cpu.INSN_UN, bit(cpu.AREA_E, 1, 0)),
		insn(cpu.INSN_ASSIGN, bit(cpu.AREA_A, 1, 0)),
	})))
	require.NoError(t, emu.Start())

	assert.NoError(emu.Run(context.Background(), 4))
	assert.Equal([]byte{
		0, 1,
		1, 0,
		0, 1,
		0, 1,
	}, output.Bytes())
	assert.True(tape.Ended())
	assert.Equal(uint64(4), emu.Stats.Count)
}

func TestEmulator_Loopback(t *testing.T) {
	assert := assert.New(t)

	// A toggle: A 0.0 := NOT E 0.0, with the output looped back.
	hw := io.NewLoopback(8)
	emu, err := NewEmulator(smallSpecs(), hw)
	require.NoError(t, err)
	require.NoError(t, emu.Load(program(t, []*cpu.Instruction{
		insn(cpu.INSN_UN, bit(cpu.AREA_E, 0, 0)),
		insn(cpu.INSN_ASSIGN, bit(cpu.AREA_A, 0, 0)),
		insn(cpu.INSN_L, cpu.Mem(cpu.AREA_PE, 16, 4, 0)),
		insn(cpu.INSN_INC, cpu.Imm(1, 8)),
		insn(cpu.INSN_T, cpu.Mem(cpu.AREA_PA, 16, 4, 0)),
	})))
	require.NoError(t, emu.Start())

	var states []byte
	for range 4 {
		done, err := emu.Cycle()
		require.NoError(t, err)
		assert.False(done)
		states = append(states, emu.OutputBytes()[0])
	}
	assert.Equal([]byte{1, 0, 1, 0}, states)

	value, err := hw.DirectRead(4, 16)
	assert.NoError(err)
	assert.Equal(uint32(4), value)
}

func TestEmulator_Signals(t *testing.T) {
	assert := assert.New(t)

	ob100 := cpu.NewBlock(cpu.BLOCK_OB, 100)
	ob100.Append(
		insn(cpu.INSN_L, cpu.Mem(cpu.AREA_M, 16, 0, 0)),
		insn(cpu.INSN_INC, cpu.Imm(1, 8)),
		insn(cpu.INSN_T, cpu.Mem(cpu.AREA_M, 16, 0, 0)),
	)

	// M 2.0 requests a reboot, M 2.1 a shutdown.
	emu, err := NewEmulator(smallSpecs(), nil)
	require.NoError(t, err)
	require.NoError(t, emu.Load(program(t, []*cpu.Instruction{
		insn(cpu.INSN_L, cpu.Mem(cpu.AREA_M, 16, 4, 0)),
		insn(cpu.INSN_INC, cpu.Imm(1, 8)),
		insn(cpu.INSN_T, cpu.Mem(cpu.AREA_M, 16, 4, 0)),
		insn(cpu.INSN_U, bit(cpu.AREA_M, 2, 1)),
		insn(cpu.INSN_SPB, cpu.LabelOp("STOP")),
		insn(cpu.INSN_UN, bit(cpu.AREA_M, 2, 0)),
		insn(cpu.INSN_BEB),
		insn(cpu.INSN_REBOOT),
		func() *cpu.Instruction {
			stop := insn(cpu.INSN_SHUTDOWN)
			stop.Label = "STOP"
			return stop
		}(),
	}, ob100)))
	require.NoError(t, emu.Start())
	assert.Equal(byte(1), emu.Flags.Data[1], "startup ran OB 100")

	done, err := emu.Cycle()
	require.NoError(t, err)
	assert.False(done)
	assert.Equal(byte(1), emu.Flags.Data[5])

	emu.Flags.Data[2] = 0b01
	done, err = emu.Cycle()
	require.NoError(t, err)
	assert.False(done)
	assert.Equal(1, emu.Reboots)
	assert.Equal(byte(0), emu.Flags.Data[5], "reboot resets memory")
	assert.Equal(byte(1), emu.Flags.Data[1], "reboot runs OB 100 again")
	assert.True(emu.Running())

	emu.Flags.Data[2] = 0b10
	done, err = emu.Cycle()
	require.NoError(t, err)
	assert.True(done)
	assert.False(emu.Running())

	_, err = emu.Cycle()
	assert.ErrorIs(err, ErrShutdown)
}

func TestEmulator_RunUntilShutdown(t *testing.T) {
	assert := assert.New(t)

	// Shut down on the third cycle.
	emu, err := NewEmulator(smallSpecs(), nil)
	require.NoError(t, err)
	require.NoError(t, emu.Load(program(t, []*cpu.Instruction{
		insn(cpu.INSN_L, cpu.Mem(cpu.AREA_M, 16, 0, 0)),
		insn(cpu.INSN_INC, cpu.Imm(1, 8)),
		insn(cpu.INSN_T, cpu.Mem(cpu.AREA_M, 16, 0, 0)),
		insn(cpu.INSN_L, cpu.Imm(3, 16)),
		insn(cpu.INSN_NE_I),
		insn(cpu.INSN_BEB),
		insn(cpu.INSN_SHUTDOWN),
	})))
	require.NoError(t, emu.Start())
	assert.NoError(emu.Run(context.Background(), 0))
	assert.Equal(byte(3), emu.Flags.Data[1])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(emu.Run(ctx, 0), context.Canceled)
}

func TestEmulator_RuntimeError(t *testing.T) {
	assert := assert.New(t)

	emu, err := NewEmulator(smallSpecs(), nil)
	require.NoError(t, err)
	fault := insn(cpu.INSN_L, cpu.Mem(cpu.AREA_M, 16, 0x4000, 0))
	fault.LineNo = 7
	require.NoError(t, emu.Load(program(t, []*cpu.Instruction{
		insn(cpu.INSN_NOP0),
		fault,
	})))
	require.NoError(t, emu.Start())

	_, err = emu.Cycle()
	var rt *ErrRuntime
	require.True(t, errors.As(err, &rt))
	assert.Equal("OB 1", rt.Block)
	assert.Equal(7, rt.LineNo)
	assert.True(cpu.IsFatal(err))
	assert.Contains(err.Error(), "OB 1 line 7")
	assert.Equal(7, emu.LineNo())

	_, err = emu.Cycle()
	assert.ErrorIs(err, cpu.ErrHalted)
}
