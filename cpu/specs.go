package cpu

import (
	"errors"
	"time"
)

// Specs is the CPU configuration.
type Specs struct {
	NrAccus         int           // 2 or 4 accumulators.
	NrTimers        int           // Timers T 0..NrTimers-1.
	NrCounters      int           // Counters Z 0..NrCounters-1.
	NrFlags         int           // Bytes of M.
	NrInputs        int           // Bytes of E.
	NrOutputs       int           // Bytes of A.
	NrPeripheral    int           // Bytes of PE and of PA.
	NrLocal         int           // Bytes of the L stack, shared by all frames.
	CallStackDepth  int           // Maximum block nesting.
	ParenStackDepth int           // Maximum open brackets per frame.
	CycleTimeLimit  time.Duration // Maximum OB 1 run time.
	ExtendedInsns   bool          // Allow the __ instructions.
	Mnemonics       Mnemonics     // Diagnostic spelling.
}

// DefaultSpecs returns the configuration of a mid-range S7-300.
func DefaultSpecs() Specs {
	return Specs{
		NrAccus:         2,
		NrTimers:        256,
		NrCounters:      256,
		NrFlags:         2048,
		NrInputs:        128,
		NrOutputs:       128,
		NrPeripheral:    1024,
		NrLocal:         1024,
		CallStackDepth:  32,
		ParenStackDepth: 16,
		CycleTimeLimit:  5 * time.Second,
		ExtendedInsns:   false,
		Mnemonics:       MNEMONICS_AUTO,
	}
}

const sizeLimit = 0x10000

// Validate checks the configuration.
func (specs *Specs) Validate() (err error) {
	if specs.NrAccus != 2 && specs.NrAccus != 4 {
		err = errors.Join(err, ErrSpecsAccus)
	}
	for _, size := range []int{specs.NrTimers, specs.NrCounters, specs.NrFlags,
		specs.NrInputs, specs.NrOutputs, specs.NrPeripheral, specs.NrLocal} {
		if size < 0 || size > sizeLimit {
			err = errors.Join(err, ErrSpecsSize)
			break
		}
	}
	if specs.CallStackDepth < 1 || specs.ParenStackDepth < 1 {
		err = errors.Join(err, ErrSpecsDepth)
	}
	return
}
