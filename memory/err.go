package memory

import (
	"github.com/ezrec/awl/translate"
)

var f = translate.From

// ErrRange is an access outside of an area.
type ErrRange struct {
	Area   string
	Offset int
	Width  int
	Size   int
}

func (err *ErrRange) Error() string {
	return f("%v: %d-bit access at byte %d outside area of %d bytes", err.Area, err.Width, err.Offset, err.Size)
}

// ErrWidth is an unsupported access width.
type ErrWidth int

func (err ErrWidth) Error() string {
	return f("unsupported access width %d", int(err))
}
