// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package argbind binds command-line tokens onto the fields of a record.
//
// The caller creates the record, fills in its defaults, and hands it to Parse
// together with the tokens. Parse mutates the record in place. It has no
// notion of required arguments, subcommands or mutually exclusive options; it
// only decides, for each token, whether it is a switch, the value of a
// switch, or a positional argument.
//
// # Schemas
//
// The bindable properties of a record type are described by a Schema, built
// once and reused. Schemas can be declared explicitly:
//
//	type Options struct {
//	    Inputs  []string
//	    Output  string
//	    Level   int
//	    Verbose bool
//	}
//
//	var optionsSchema = argbind.NewSchema[Options]().
//	    Positional("Inputs", func(o *Options) *[]string { return &o.Inputs }).
//	    String("Output", func(o *Options) *string { return &o.Output }, argbind.Short("o")).
//	    Bool("Verbose", func(o *Options) *bool { return &o.Verbose }, argbind.Short("v"))
//
//	func init() {
//	    argbind.Scalar(optionsSchema, "Level", func(o *Options) *int { return &o.Level },
//	        argbind.ParseInt[int], argbind.Short("l"), argbind.Long("opt-level"))
//	}
//
// or derived from struct tags with SchemaFor (see its documentation).
//
// # Switch Syntax
//
// A switch starts with "-", "--" or "/" and may carry a value after ':' or '=':
//
//	-v  --verbose  /verbose
//	--output:out.bc  --output=out.bc  --output "out.bc"
//	--output:"my file.bc"  --output='say "hi"'
//	--verbose:false
//
// Switch names are matched case-insensitively against binding names first,
// then short aliases, then long aliases.
//
// A switch without an attached value sets a bool binding to true. For any
// other binding the next token becomes its value, unless that token is itself
// a switch, in which case Parse fails with MissingValueError. Note that this
// means a negative number has to be attached: --offset=-4.
//
// List bindings append each value, so repeated switches accumulate:
//
//	--pass inline --pass dce    => Passes == []string{"inline", "dce"}
//
// Tokens that are neither switches nor switch values go to the positional
// binding. Without one they are reported as UnknownOptionError. Since "/" is a
// switch prefix, absolute Unix paths cannot be positional arguments.
//
// # Errors
//
// Parse returns *UnknownOptionError, *MissingValueError or *ConversionError
// for bad input, and an error wrapping ErrInvalidArgument for misuse. It
// never logs.
package argbind
