package io

import (
	"errors"
	"io"

	"github.com/sirupsen/logrus"
)

// Tape plays back input process images from a byte stream and records
// the output process images to another. Each cycle consumes one input
// image and appends one output image. When the input runs out the last
// image is held.
type Tape struct {
	Verbose bool // Set to log every image.

	Input  io.Reader
	Output io.Writer

	Cycles int // Output images written.

	inputs    int
	outputs   int
	lastInput []byte
	ended     bool
	started   bool
}

var _ Hardware = (*Tape)(nil)

func (tc *Tape) Name() string {
	return f("tape")
}

func (tc *Tape) Startup(inputs int, outputs int) (err error) {
	tc.inputs = inputs
	tc.outputs = outputs
	tc.lastInput = make([]byte, inputs)
	tc.ended = tc.Input == nil
	tc.started = true
	tc.Cycles = 0
	return
}

// ReadInputs reads the next input image.
func (tc *Tape) ReadInputs(image []byte) (err error) {
	if !tc.started {
		err = ErrNotStarted
		return
	}
	if !tc.ended {
		next := make([]byte, tc.inputs)
		_, err = io.ReadFull(tc.Input, next)
		switch {
		case err == nil:
			tc.lastInput = next
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			// A partial image is discarded.
			tc.ended = true
			err = nil
		default:
			return
		}
	}
	clear(image)
	copy(image, tc.lastInput)
	if tc.Verbose {
		logrus.WithFields(logrus.Fields{
			"cycle":  tc.Cycles,
			"inputs": image,
			"ended":  tc.ended,
		}).Debug("tape: inputs")
	}
	return
}

// WriteOutputs appends the output image.
func (tc *Tape) WriteOutputs(image []byte) (err error) {
	if !tc.started {
		err = ErrNotStarted
		return
	}
	if tc.Output == nil {
		tc.Cycles++
		return
	}
	n, err := tc.Output.Write(image)
	if err != nil {
		return
	}
	if n != len(image) {
		err = ErrShortOutput
		return
	}
	tc.Cycles++
	return
}

// Ended is true once the input stream is exhausted.
func (tc *Tape) Ended() bool {
	return tc.ended
}

// DirectRead returns zero; a tape has no peripheral address space.
func (tc *Tape) DirectRead(offset int, width int) (value uint32, err error) {
	err = checkWidth(width)
	return
}

// DirectWrite discards the value.
func (tc *Tape) DirectWrite(offset int, width int, value uint32) (err error) {
	err = checkWidth(width)
	return
}

func (tc *Tape) Shutdown() (err error) {
	tc.started = false
	return
}
