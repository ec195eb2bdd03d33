package io

import (
	"github.com/sirupsen/logrus"

	"github.com/ezrec/awl/memory"
)

// Loopback wires every output back to the input of the same address.
// A cycle reads the outputs written by the previous one, and a PE load
// returns the last PA transfer to the same offset.
type Loopback struct {
	Verbose bool // Set to log every transfer.

	image  *memory.Area
	periph *memory.Area
}

var _ Hardware = (*Loopback)(nil)

// NewLoopback creates a loopback adapter with 'periph' bytes of
// peripheral address space.
func NewLoopback(periph int) (hw *Loopback) {
	hw = &Loopback{
		periph: memory.NewArea("P", periph),
	}
	return
}

func (hw *Loopback) Name() string {
	return f("loopback")
}

func (hw *Loopback) Startup(inputs int, outputs int) (err error) {
	if hw.periph == nil {
		hw.periph = memory.NewArea("P", 0)
	}
	hw.image = memory.NewArea("Q", max(inputs, outputs))
	hw.periph.Reset()
	return
}

func (hw *Loopback) ReadInputs(image []byte) (err error) {
	if hw.image == nil {
		err = ErrNotStarted
		return
	}
	clear(image)
	copy(image, hw.image.Data)
	return
}

func (hw *Loopback) WriteOutputs(image []byte) (err error) {
	if hw.image == nil {
		err = ErrNotStarted
		return
	}
	err = hw.image.StoreBytes(0, image)
	if err != nil {
		return
	}
	if hw.Verbose {
		logrus.WithField("outputs", image).Debug("loopback: outputs")
	}
	return
}

func (hw *Loopback) DirectRead(offset int, width int) (value uint32, err error) {
	err = checkWidth(width)
	if err != nil {
		return
	}
	value, err = hw.periph.Fetch(offset, 0, width)
	return
}

func (hw *Loopback) DirectWrite(offset int, width int, value uint32) (err error) {
	err = checkWidth(width)
	if err != nil {
		return
	}
	err = hw.periph.Store(offset, 0, width, value)
	if err != nil {
		return
	}
	if hw.Verbose {
		logrus.WithFields(logrus.Fields{
			"offset": offset,
			"width":  width,
			"value":  value,
		}).Debug("loopback: direct write")
	}
	return
}

func (hw *Loopback) Shutdown() (err error) {
	hw.image = nil
	return
}
