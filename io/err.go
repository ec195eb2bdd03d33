package io

import (
	"errors"

	"github.com/ezrec/awl/translate"
)

var f = translate.From

var (
	// Hardware errors
	ErrNotStarted  = errors.New(f("hardware not started"))
	ErrWidth       = errors.New(f("peripheral access width invalid"))
	ErrShortOutput = errors.New(f("short write of output image"))
)
