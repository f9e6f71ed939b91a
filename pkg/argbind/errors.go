// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argbind

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned (wrapped) when Parse is called incorrectly:
// a nil target, or a schema that failed to build. It indicates a programming
// error by the caller rather than bad user input.
var ErrInvalidArgument = errors.New("invalid argument")

// UnknownOptionError is returned when a switch does not resolve to any
// binding, or when a positional token is seen and the schema has no
// positional sink.
type UnknownOptionError struct {
	Option string // The switch name or the positional token text
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("unknown option: %s", e.Option)
}

// MissingValueError is returned when a switch that expects a space-separated
// value is immediately followed by another switch.
type MissingValueError struct {
	Option string // Name of the binding that was waiting for a value
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("missing value for option: %s", e.Option)
}

// ConversionError is returned when a value cannot be converted to the type
// of its binding. Err holds the converter's error.
type ConversionError struct {
	Option string // Name of the binding
	Value  string // The raw value that failed to convert
	Type   string // Type label of the binding (e.g. "int", "bool")
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s value %q for option %s: %v", e.Type, e.Value, e.Option, e.Err)
	}
	return fmt.Sprintf("invalid %s value %q for option %s", e.Type, e.Value, e.Option)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
