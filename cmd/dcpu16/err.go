package main

import (
	"errors"

	"github.com/ezrec/dcpu16/translate"
)

var f = translate.From

var (
	ErrDefineSyntax  = errors.New(f("expected NAME=VALUE"))
	ErrImageTerminal = errors.New(f("refusing to write a binary image to a terminal"))
)
