// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator runs a statement list program against hardware: it
// transfers the process images around every cycle and acts on the
// maintenance signals raised by the program.
package emulator

import (
	"context"
	"errors"
	"iter"
	"maps"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/awl/cpu"
	"github.com/ezrec/awl/internal"
	"github.com/ezrec/awl/io"
)

// Emulator state. CPU + program + hardware.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the loaded program.
	Hardware io.Hardware  // Process attached to the CPU.

	Reboots int // Soft reboots handled since Start.

	running bool
	inputs  []byte
}

// NewEmulator creates a new emulator. A nil 'hw' attaches io.Dummy.
func NewEmulator(specs cpu.Specs, hw io.Hardware) (emu *Emulator, err error) {
	core, err := cpu.NewCpu(specs)
	if err != nil {
		return
	}
	if hw == nil {
		hw = &io.Dummy{}
	}
	emu = &Emulator{
		Cpu:      core,
		Hardware: hw,
	}
	core.Peripheral = hw
	return
}

// Defines returns the emulator configuration as name/value pairs.
func (emu *Emulator) Defines() iter.Seq2[string, any] {
	specs := emu.Cpu.Specs
	return internal.Concat2(
		maps.All(map[string]any{
			"hardware": emu.Hardware.Name(),
		}),
		maps.All(map[string]any{
			"accus":      specs.NrAccus,
			"timers":     specs.NrTimers,
			"counters":   specs.NrCounters,
			"flags":      specs.NrFlags,
			"inputs":     specs.NrInputs,
			"outputs":    specs.NrOutputs,
			"peripheral": specs.NrPeripheral,
			"local":      specs.NrLocal,
			"call_depth": specs.CallStackDepth,
			"extended":   specs.ExtendedInsns,
		}),
	)
}

// Load the program into the CPU.
func (emu *Emulator) Load(prog *cpu.Program) (err error) {
	emu.Cpu.Verbose = emu.Verbose
	err = emu.Cpu.Load(prog)
	if err != nil {
		return
	}
	emu.Program = prog
	return
}

// Start brings up the hardware and runs the restart block.
func (emu *Emulator) Start() (err error) {
	if emu.Program == nil {
		err = ErrNotLoaded
		return
	}
	specs := emu.Cpu.Specs
	err = emu.Hardware.Startup(specs.NrInputs, specs.NrOutputs)
	if err != nil {
		return
	}
	emu.Cpu.Peripheral = emu.Hardware
	emu.inputs = make([]byte, specs.NrInputs)
	emu.running = true
	emu.Reboots = 0

	emu.Cpu.Reset()
	signal, err := emu.startup()
	if err != nil {
		return
	}
	_, err = emu.handle(signal)
	return
}

func (emu *Emulator) startup() (signal cpu.ControlSignal, err error) {
	signal, err = emu.Cpu.Startup()
	if err != nil {
		err = emu.runtimeError(err)
	}
	return
}

// Cycle runs a single scan cycle: read inputs, run OB 1, write outputs.
// 'done' is set once the program requests a shutdown.
func (emu *Emulator) Cycle() (done bool, err error) {
	if !emu.running {
		err = ErrShutdown
		return
	}
	emu.Cpu.Verbose = emu.Verbose

	err = emu.Hardware.ReadInputs(emu.inputs)
	if err != nil {
		return
	}
	err = emu.Cpu.StoreInputs(0, emu.inputs)
	if err != nil {
		return
	}

	signal, err := emu.Cpu.RunCycle()
	if err != nil {
		err = emu.runtimeError(err)
		return
	}

	err = emu.Hardware.WriteOutputs(emu.Cpu.OutputBytes())
	if err != nil {
		return
	}

	done, err = emu.handle(signal)
	return
}

// handle acts on a maintenance signal.
func (emu *Emulator) handle(signal cpu.ControlSignal) (done bool, err error) {
	if signal == cpu.SIGNAL_NONE {
		return
	}
	if emu.Verbose {
		logrus.WithField("signal", signal).Info("emulator: maintenance request")
	}

	switch signal {
	case cpu.SIGNAL_SOFT_REBOOT:
		emu.Reboots++
		emu.Cpu.Reset()
		signal, err = emu.startup()
		if err != nil {
			return
		}
		if signal == cpu.SIGNAL_SHUTDOWN {
			done, err = emu.handle(signal)
		}
	case cpu.SIGNAL_SHUTDOWN:
		done = true
		err = emu.Close()
	}
	return
}

// Run cycles until the program shuts down, 'cycles' cycles have run
// (when positive), or the context is done.
func (emu *Emulator) Run(ctx context.Context, cycles int) (err error) {
	for n := 0; cycles <= 0 || n < cycles; n++ {
		err = ctx.Err()
		if err != nil {
			return
		}
		var done bool
		done, err = emu.Cycle()
		if err != nil || done {
			return
		}
	}
	return
}

// Running is true between Start and shutdown.
func (emu *Emulator) Running() bool {
	return emu.running
}

// LineNo returns the source line of the current instruction.
func (emu *Emulator) LineNo() int {
	insn := emu.Cpu.CurrentInsn()
	if insn == nil {
		return 0
	}
	return insn.LineNo
}

// Close shuts down the hardware.
func (emu *Emulator) Close() (err error) {
	if !emu.running {
		return
	}
	emu.running = false
	err = emu.Hardware.Shutdown()
	return
}

func (emu *Emulator) runtimeError(err error) error {
	rt := &ErrRuntime{Err: err}
	var fault *cpu.Fault
	if errors.As(err, &fault) {
		rt.Block = fault.Block
		rt.LineNo = fault.LineNo
	} else {
		rt.LineNo = emu.LineNo()
	}
	return rt
}
