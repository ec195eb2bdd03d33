// Package io provides hardware adapters for the statement list CPU.
// An adapter fills the input process image before each cycle, takes the
// output process image after it, and serves direct peripheral (PE/PA)
// accesses while the cycle runs.
package io

import (
	"github.com/ezrec/awl/cpu"
)

// Hardware is the interface between the CPU and the process.
type Hardware interface {
	cpu.Peripheral

	// Name returns a short description of the adapter.
	Name() string
	// Startup prepares the adapter for process images of the given sizes.
	Startup(inputs int, outputs int) error
	// ReadInputs fills the input process image.
	ReadInputs(image []byte) error
	// WriteOutputs takes the output process image.
	WriteOutputs(image []byte) error
	// Shutdown releases the adapter.
	Shutdown() error
}
