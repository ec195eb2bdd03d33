package cpu

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/awl/memory"
)

// CycleStats is the cycle time accounting of the CPU.
type CycleStats struct {
	Count uint64        // Completed OB 1 cycles.
	Insns uint64        // Executed instructions.
	Last  time.Duration // Duration of the last cycle.
	Min   time.Duration
	Max   time.Duration
}

func (stats *CycleStats) add(d time.Duration) {
	if stats.Count == 0 || d < stats.Min {
		stats.Min = d
	}
	if d > stats.Max {
		stats.Max = d
	}
	stats.Last = d
	stats.Count++
}

// Cpu is the simulation context of an S7 statement list CPU.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Specs Specs

	Accu   [4]uint32 // ACCU1..ACCU4; only two are used with NrAccus == 2.
	AR1    uint32
	AR2    uint32
	Status StatusWord

	DB *memory.DataBlock // Open global data block.
	DI *memory.DataBlock // Open instance data block.

	Inputs     *memory.Area // E process image.
	Outputs    *memory.Area // A process image.
	Flags      *memory.Area // M
	PeriphIn   *memory.Area // PE
	PeriphOut  *memory.Area // PA
	Local      *memory.Area // L stack, windowed per frame.
	DataBlocks memory.DataBlocks
	Timers     []Timer
	Counters   []Counter

	Peripheral Peripheral // Optional direct peripheral access.

	Clock func() time.Duration // Monotonic engine clock.
	Sleep func(time.Duration)  // Used by waiting instructions.

	Stats CycleStats

	program    *Program
	calls      Stack[*Frame]
	localTop   int
	current    *Instruction
	signal     ControlSignal
	halted     *Fault
	now        time.Duration
	cycleStart time.Duration
}

// NewCpu creates a CPU with the given configuration.
func NewCpu(specs Specs) (cpu *Cpu, err error) {
	err = specs.Validate()
	if err != nil {
		return
	}

	epoch := time.Now()
	cpu = &Cpu{
		Inputs:     memory.NewArea("E", 0),
		Outputs:    memory.NewArea("A", 0),
		Flags:      memory.NewArea("M", 0),
		PeriphIn:   memory.NewArea("PE", 0),
		PeriphOut:  memory.NewArea("PA", 0),
		Local:      memory.NewArea("L", 0),
		DataBlocks: memory.DataBlocks{},
		Clock:      func() time.Duration { return time.Since(epoch) },
		Sleep:      time.Sleep,
	}
	err = cpu.Reallocate(specs)
	if err != nil {
		cpu = nil
	}
	return
}

// Reallocate applies a new configuration. Memory contents within the
// new sizes are kept.
func (cpu *Cpu) Reallocate(specs Specs) (err error) {
	err = specs.Validate()
	if err != nil {
		return
	}

	if cpu.Verbose {
		logrus.WithFields(logrus.Fields{
			"accus":    specs.NrAccus,
			"timers":   specs.NrTimers,
			"counters": specs.NrCounters,
			"local":    specs.NrLocal,
		}).Debug("cpu: reallocate")
	}

	cpu.Specs = specs
	cpu.Inputs.Resize(specs.NrInputs)
	cpu.Outputs.Resize(specs.NrOutputs)
	cpu.Flags.Resize(specs.NrFlags)
	cpu.PeriphIn.Resize(specs.NrPeripheral)
	cpu.PeriphOut.Resize(specs.NrPeripheral)
	cpu.Local.Resize(specs.NrLocal)

	cpu.Timers = resize(cpu.Timers, specs.NrTimers)
	cpu.Counters = resize(cpu.Counters, specs.NrCounters)

	if specs.NrAccus == 2 {
		cpu.Accu[2] = 0
		cpu.Accu[3] = 0
	}

	cpu.calls.Reset()
	cpu.calls.Limit = specs.CallStackDepth
	cpu.localTop = 0
	return
}

func resize[T any](data []T, size int) []T {
	if size <= len(data) {
		return slices.Clip(data[:size])
	}
	return append(data, make([]T, size-len(data))...)
}

// Reset returns the CPU to its power-on state: registers, memory, data
// blocks, timers and counters are cleared, and a fatal fault is
// acknowledged.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		logrus.Debug("cpu: reset")
	}

	clear(cpu.Accu[:])
	cpu.AR1 = 0
	cpu.AR2 = 0
	cpu.Status.Reset()
	cpu.DB = nil
	cpu.DI = nil

	for _, area := range []*memory.Area{cpu.Inputs, cpu.Outputs, cpu.Flags,
		cpu.PeriphIn, cpu.PeriphOut, cpu.Local} {
		area.Verbose = cpu.Verbose
		area.Reset()
	}
	cpu.DataBlocks.Reset()
	clear(cpu.Timers)
	clear(cpu.Counters)

	cpu.calls.Reset()
	cpu.localTop = 0
	cpu.current = nil
	cpu.signal = SIGNAL_NONE
	cpu.halted = nil
	cpu.Stats = CycleStats{}
}

// CurrentInsn returns the instruction being executed, or the last one
// executed when the CPU is stopped.
func (cpu *Cpu) CurrentInsn() *Instruction {
	return cpu.current
}

// CallDepth returns the number of active frames.
func (cpu *Cpu) CallDepth() int {
	return cpu.calls.Len()
}

// Halted returns the fatal fault that stopped the CPU, if any.
func (cpu *Cpu) Halted() *Fault {
	return cpu.halted
}

// Now returns the engine time of the current cycle.
func (cpu *Cpu) Now() time.Duration {
	return cpu.now
}

// Startup runs the restart block OB 100, if the program has one.
func (cpu *Cpu) Startup() (signal ControlSignal, err error) {
	if cpu.program == nil {
		err = ErrNoProgram
		return
	}
	blk, ok := cpu.program.Block(BLOCK_OB, 100)
	if !ok {
		return
	}
	signal, err = cpu.runBlock(blk)
	return
}

// RunCycle runs OB 1 to completion. A control signal ends the cycle
// early and is returned to the host; it is not an error.
func (cpu *Cpu) RunCycle() (signal ControlSignal, err error) {
	if cpu.program == nil {
		err = ErrNoProgram
		return
	}
	blk, ok := cpu.program.Block(BLOCK_OB, 1)
	if !ok {
		err = ErrNoMainBlock
		return
	}

	signal, err = cpu.runBlock(blk)
	if err == nil {
		cpu.Stats.add(cpu.Clock() - cpu.cycleStart)
	}
	return
}

func (cpu *Cpu) runBlock(blk *Block) (signal ControlSignal, err error) {
	if cpu.halted != nil {
		err = &Fault{Err: errors.Join(ErrHalted, cpu.halted.Err), Fatal: true, Snapshot: cpu.halted.Snapshot}
		return
	}

	cpu.now = cpu.Clock()
	cpu.cycleStart = cpu.now
	cpu.signal = SIGNAL_NONE
	cpu.calls.Reset()
	cpu.localTop = 0
	cpu.Status.resetCall()

	_, err = cpu.enter(blk, nil)
	if err != nil {
		err = cpu.fault(nil, nil, err)
		return
	}
	for !cpu.calls.Empty() && cpu.signal == SIGNAL_NONE {
		err = cpu.step()
		if err != nil {
			return
		}
	}

	signal = cpu.signal
	return
}

// step executes one instruction of the active frame.
func (cpu *Cpu) step() (err error) {
	frame := cpu.frame()
	if frame.Ip >= len(frame.Block.Insns) {
		err = cpu.leave()
		if err != nil {
			err = cpu.fault(frame, nil, err)
		}
		return
	}

	insn := frame.Block.Insns[frame.Ip]
	cpu.current = insn
	frame.Ip++

	if cpu.Verbose {
		logrus.WithFields(logrus.Fields{
			"block": frame.Block.String(),
			"ip":    frame.Ip - 1,
			"stw":   fmt.Sprintf("%03X", cpu.Status.Word()),
		}).Debug(insn.Text(cpu.Specs.Mnemonics))
	}

	err = cpu.execute(frame, insn)
	if err != nil {
		err = cpu.fault(frame, insn, err)
		return
	}
	cpu.Stats.Insns++

	if cpu.Clock()-cpu.cycleStart > cpu.Specs.CycleTimeLimit {
		err = cpu.fault(frame, insn, ErrCycleTime)
	}
	return
}

// fault wraps an execution error with its provenance. Errors raised by
// native routines are attributed to the calling instruction.
func (cpu *Cpu) fault(frame *Frame, insn *Instruction, err error) error {
	var fault *Fault
	if !errors.As(err, &fault) {
		var blk *Block
		if frame != nil {
			blk = frame.Block
			if frame.Insn != nil && (insn == nil || insn.Type == INSN_GENERIC_CALL) {
				insn = frame.Insn
				if caller, ok := cpu.calls.Below(1); ok && caller != nil {
					blk = caller.Block
				}
			}
		}
		fault = insnFault(blk, insn, err)
		fault.Fatal = isFatalCause(err)
	}
	if fault.Snapshot == nil {
		fault.Snapshot = cpu.snapshot()
	}
	fault.mnemonics = cpu.Specs.Mnemonics
	if fault.Fatal {
		cpu.halted = fault
	}

	if cpu.Verbose {
		logrus.WithFields(logrus.Fields{
			"fatal": fault.Fatal,
			"line":  fault.LineNo,
		}).WithError(fault.Err).Warn("cpu: fault")
	}
	return fault
}

func (cpu *Cpu) logFrame(what string, frame *Frame) {
	logrus.WithFields(logrus.Fields{
		"block": frame.Block.String(),
		"depth": cpu.calls.Len(),
		"local": frame.LocalBase,
	}).Debug("cpu: " + what)
}

func (cpu *Cpu) snapshot() (snap *Snapshot) {
	snap = &Snapshot{
		Accu:      cpu.Accu,
		AR1:       cpu.AR1,
		AR2:       cpu.AR2,
		Status:    cpu.Status,
		CallDepth: cpu.calls.Len(),
	}
	if cpu.DB != nil {
		snap.DB = cpu.DB.Number
	}
	if cpu.DI != nil {
		snap.DI = cpu.DI.Number
	}
	if frame := cpu.frame(); frame != nil {
		snap.Block = frame.Block.String()
		snap.Ip = frame.Ip - 1
		snap.LineNo = frame.Line(snap.Ip)
	}
	return
}

// PeripheralRead returns a value the program transferred to PA.
func (cpu *Cpu) PeripheralRead(offset int, width int) (value uint32, err error) {
	value, err = cpu.PeriphOut.Fetch(offset, 0, width)
	return
}

// PeripheralWrite sets a value the program loads from PE.
func (cpu *Cpu) PeripheralWrite(offset int, width int, value uint32) (err error) {
	err = cpu.PeriphIn.Store(offset, 0, width, value)
	return
}

// InputBytes returns a copy of the input process image.
func (cpu *Cpu) InputBytes() []byte {
	return slices.Clone(cpu.Inputs.Data)
}

// StoreInputs writes the input process image at 'offset'.
func (cpu *Cpu) StoreInputs(offset int, data []byte) (err error) {
	err = cpu.Inputs.StoreBytes(offset, data)
	return
}

// OutputBytes returns a copy of the output process image.
func (cpu *Cpu) OutputBytes() []byte {
	return slices.Clone(cpu.Outputs.Data)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{"accu1", "accu2", "accu3", "accu4", "ar1", "ar2", "db", "di", "stw", "depth"}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "accu1", "accu2", "accu3", "accu4":
			n := int(reg[4] - '1')
			if n >= cpu.Specs.NrAccus {
				continue
			}
			val := cpu.Accu[n]
			strval = fmt.Sprintf("%04X_%04X", val>>16, val&0xffff)
		case "ar1", "ar2":
			val := cpu.AR1
			if reg == "ar2" {
				val = cpu.AR2
			}
			strval = fmt.Sprintf("%04X_%04X", val>>16, val&0xffff)
		case "db", "di":
			db := cpu.DB
			if reg == "di" {
				db = cpu.DI
			}
			strval = "-"
			if db != nil {
				strval = fmt.Sprintf("%d", db.Number)
			}
		case "stw":
			strval = cpu.Status.String()
		case "depth":
			strval = fmt.Sprintf("%d", cpu.calls.Len())
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}
