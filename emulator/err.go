package emulator

import (
	"errors"

	"github.com/ezrec/awl/translate"
)

var f = translate.From

var (
	ErrNotLoaded = errors.New(f("no program loaded"))
	ErrShutdown  = errors.New(f("emulator shut down"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Block  string
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	switch {
	case err.Block != "" && err.LineNo > 0:
		return f("%v line %d: %v", err.Block, err.LineNo, err.Err)
	case err.Block != "":
		return f("%v: %v", err.Block, err.Err)
	case err.LineNo > 0:
		return f("line %d: %v", err.LineNo, err.Err)
	}
	return err.Err.Error()
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
