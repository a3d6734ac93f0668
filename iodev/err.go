package iodev

import (
	"errors"

	"github.com/ezrec/vnsim/translate"
)

var f = translate.From

var (
	// Port errors
	ErrNoInput      = errors.New(f("no input available"))
	ErrPortFull     = errors.New(f("port full"))
	ErrInputInvalid = errors.New(f("input value invalid"))
)
