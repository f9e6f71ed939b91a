// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/yeetrun/optnet/pkg/cmdline"
	"golang.org/x/term"
)

const replPrompt = "optnet> "

// lineReader is the subset of *readline.Instance the prompt loop needs.
type lineReader interface {
	Readline() (string, error)
	Close() error
}

// scanReader reads lines from a non-interactive stdin.
type scanReader struct {
	sc *bufio.Scanner
}

func (r *scanReader) Readline() (string, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.sc.Text(), nil
}

func (r *scanReader) Close() error { return nil }

var isTerminalFn = term.IsTerminal

func (a *app) handleRepl(ctx context.Context, _ []string) error {
	var (
		rl  lineReader
		err error
	)
	if f, ok := a.stdin.(*os.File); ok && isTerminalFn(int(f.Fd())) {
		rl, err = readline.NewEx(&readline.Config{
			Prompt:       color.CyanString(replPrompt),
			HistoryFile:  historyPath(),
			AutoComplete: switchCompleter(),
		})
		if err != nil {
			return fmt.Errorf("failed to start prompt: %w", err)
		}
	} else {
		rl = &scanReader{sc: bufio.NewScanner(a.stdin)}
	}
	defer rl.Close()
	return a.runRepl(ctx, rl)
}

// historyPath returns the prompt history file, kept next to the defaults
// file. It returns "" (no history) if the directory cannot be created.
func historyPath() string {
	dir := filepath.Dir(defaultsPath())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		log.Printf("prompt history disabled: %v", err)
		return ""
	}
	return filepath.Join(dir, "history")
}

// runRepl binds each line onto a fresh record. Bad lines print an error and
// the user is prompted again.
func (a *app) runRepl(ctx context.Context, rl lineReader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := rl.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		o, err := a.bind(cmdline.Split(line, false))
		if err != nil {
			printCLIError(a.stdout, err)
			continue
		}
		if err := renderOptions(a.stdout, o, a.format); err != nil {
			return err
		}
	}
}

// switchCompleter completes the long form of every option switch.
func switchCompleter() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, o := range optionsSchema.Options() {
		if o.Positional {
			continue
		}
		name := o.Long
		if name == "" {
			name = strings.ToLower(o.Name)
		}
		items = append(items, readline.PcItem("--"+name))
	}
	return readline.NewPrefixCompleter(items...)
}
