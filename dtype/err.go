package dtype

import (
	"errors"

	"github.com/ezrec/awl/translate"
)

var f = translate.From

var (
	ErrBcd      = errors.New(f("invalid BCD value"))
	ErrBcdRange = errors.New(f("value out of BCD range"))
	ErrS5Time   = errors.New(f("invalid S5TIME value"))
	ErrPointer  = errors.New(f("pointer offset out of range"))
)

// ErrBcdDigits carries the raw word that failed BCD decoding.
type ErrBcdDigits uint32

func (err ErrBcdDigits) Error() string {
	return f("invalid BCD value 16#%X", uint32(err))
}

func (err ErrBcdDigits) Is(target error) bool {
	return target == ErrBcd
}
