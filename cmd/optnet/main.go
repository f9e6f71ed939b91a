// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command optnet binds optimizer-style command lines onto an options record
// and prints the result.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/shayne/yargs"
)

type globalFlags struct{}

func main() {
	log.SetFlags(0)
	log.SetPrefix("optnet: ")

	d, err := loadDefaults(defaultsPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("failed to load defaults: %v", err)
	}

	a := &app{
		defaults: d,
		format:   outputFormat(d),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	if err := a.run(context.Background(), os.Args[1:]); err != nil {
		printCLIError(a.stderr, err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	handlers := map[string]yargs.SubcommandHandler{
		"bind":   a.handleBind,
		"split":  a.handleSplit,
		"repl":   a.handleRepl,
		"batch":  a.handleBatch,
		"schema": a.handleSchema,
	}
	return yargs.RunSubcommandsWithGroups(ctx, args, buildHelpConfig(), globalFlags{}, handlers, nil)
}

func buildHelpConfig() yargs.HelpConfig {
	return yargs.HelpConfig{
		Command: yargs.CommandInfo{
			Name:        "optnet",
			Description: "Bind optimizer command lines onto a typed options record.",
			Examples: []string{
				"optnet bind -l:2 -p inline -p dce --output-file=out.bc in.bc",
				"optnet split '\"C:\\out dir\\\" -v'",
				"optnet batch cmds.txt -j 8",
			},
		},
		SubCommands: map[string]yargs.SubCommandInfo{
			"bind": {
				Name:        "bind",
				Description: "Bind the remaining arguments and print the options record",
				Usage:       "[SWITCH...] [INPUT...]",
				Examples:    []string{"optnet bind /v --target-triple:x86_64-linux-gnu a.bc b.bc"},
			},
			"split": {
				Name:        "split",
				Description: "Split a raw command line into tokens",
				Usage:       "LINE [--posix] [--skip-module]",
				Examples:    []string{"optnet split --skip-module 'opt \"my file.bc\" -l 1'"},
			},
			"repl": {
				Name:        "repl",
				Description: "Read command lines interactively and bind each one",
			},
			"batch": {
				Name:        "batch",
				Description: "Bind every line of one or more files concurrently",
				Usage:       "[FILE...] [-j JOBS]",
				Examples:    []string{"optnet batch -j 2 < cmds.txt"},
			},
			"schema": {
				Name:        "schema",
				Description: "List the options the binder understands",
			},
		},
	}
}
