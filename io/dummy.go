package io

// Dummy is hardware with nothing attached. Inputs read as zero and
// outputs are discarded.
type Dummy struct{}

var _ Hardware = (*Dummy)(nil)

func (hw *Dummy) Name() string {
	return f("dummy")
}

func (hw *Dummy) Startup(inputs int, outputs int) (err error) {
	return
}

func (hw *Dummy) ReadInputs(image []byte) (err error) {
	clear(image)
	return
}

func (hw *Dummy) WriteOutputs(image []byte) (err error) {
	return
}

func (hw *Dummy) DirectRead(offset int, width int) (value uint32, err error) {
	err = checkWidth(width)
	return
}

func (hw *Dummy) DirectWrite(offset int, width int, value uint32) (err error) {
	err = checkWidth(width)
	return
}

func (hw *Dummy) Shutdown() (err error) {
	return
}

func checkWidth(width int) (err error) {
	switch width {
	case 8, 16, 32:
	default:
		err = ErrWidth
	}
	return
}
