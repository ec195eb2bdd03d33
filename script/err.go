package script

import (
	"errors"

	"github.com/ezrec/awl/translate"
)

var f = translate.From

var (
	ErrOperand   = errors.New(f("value is not an operand"))
	ErrCode      = errors.New(f("code must be a list of insn() values"))
	ErrField     = errors.New(f("fields must be field() values"))
	ErrParams    = errors.New(f("params must map names to operands"))
	ErrIndirect  = errors.New(f("address register must be 1 or 2"))
	ErrDataBlock = errors.New(f("db() data must be bytes or a list of integers"))
	ErrSpecs     = errors.New(f("specs must be a dictionary"))
)

// ErrMnemonic is an unknown instruction name.
type ErrMnemonic string

func (err ErrMnemonic) Error() string {
	return f("unknown instruction '%v'", string(err))
}

// ErrDirection is an unknown field direction.
type ErrDirection string

func (err ErrDirection) Error() string {
	return f("unknown field direction '%v'", string(err))
}

// ErrType is an unknown elementary type.
type ErrType string

func (err ErrType) Error() string {
	return f("unknown type '%v'", string(err))
}

// ErrSpecsKey is an unknown key in the specs dictionary.
type ErrSpecsKey string

func (err ErrSpecsKey) Error() string {
	return f("unknown specs key '%v'", string(err))
}

// ErrUnhashable is returned when a script value is used as a dictionary key.
type ErrUnhashable string

func (err ErrUnhashable) Error() string {
	return f("unhashable type: %v", string(err))
}
