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
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/yeetrun/optnet/pkg/argbind"
	"github.com/yeetrun/optnet/pkg/cmdline"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBatchJobs = 4
	stdinName        = "-"
)

// app carries what every subcommand needs. Handlers write to stdout/stderr
// rather than os.Stdout so they can be exercised in tests.
type app struct {
	defaults defaults
	format   string
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

// stripCommand removes the subcommand name from args as passed by the
// subcommand router.
func stripCommand(args []string, name string) []string {
	i := slices.Index(args, name)
	if i < 0 {
		return args
	}
	out := make([]string, 0, len(args)-1)
	out = append(out, args[:i]...)
	return append(out, args[i+1:]...)
}

// bind parses tokens onto a record seeded from the defaults.
func (a *app) bind(tokens []string) (options, error) {
	o, err := a.defaults.newOptions()
	if err != nil {
		return options{}, err
	}
	if err := optionsSchema.Parse(tokens, &o); err != nil {
		return options{}, err
	}
	return o, nil
}

func (a *app) handleBind(_ context.Context, args []string) error {
	o, err := a.bind(stripCommand(args, "bind"))
	if err != nil {
		return err
	}
	return renderOptions(a.stdout, o, a.format)
}

type splitFlags struct {
	Line       []string `positional:"true"`
	POSIX      bool     `long:"posix"`
	SkipModule bool     `long:"skip-module"`
}

func (a *app) handleSplit(_ context.Context, args []string) error {
	var flags splitFlags
	if err := argbind.Parse(stripCommand(args, "split"), &flags); err != nil {
		return err
	}
	line := strings.Join(flags.Line, " ")

	var tokens []string
	if flags.POSIX {
		var err error
		tokens, err = cmdline.SplitPOSIX(line, flags.SkipModule)
		if err != nil {
			return fmt.Errorf("failed to split %q: %w", line, err)
		}
	} else {
		tokens = cmdline.Split(line, flags.SkipModule)
	}
	for i, tok := range tokens {
		fmt.Fprintf(a.stdout, "%d\t%s\n", i, tok)
	}
	return nil
}

func (a *app) handleSchema(_ context.Context, _ []string) error {
	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSHORT\tLONG\tKIND\tTYPE")
	for _, o := range optionsSchema.Options() {
		kind := o.Kind.String()
		if o.Positional {
			kind += " (positional)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.Name, dashed("-", o.Short), dashed("--", o.Long), kind, o.Type)
	}
	return tw.Flush()
}

func dashed(prefix, name string) string {
	if name == "" {
		return ""
	}
	return prefix + name
}

type batchFlags struct {
	Files []string `positional:"true"`
	Jobs  int      `short:"j"`
}

type batchResult struct {
	line int
	text string
	opts options
	err  error
}

// handleBatch binds every command line in the given files, or stdin when no
// file is named. Lines are bound concurrently and printed in input order.
func (a *app) handleBatch(ctx context.Context, args []string) error {
	flags := batchFlags{Jobs: defaultBatchJobs}
	if err := argbind.Parse(stripCommand(args, "batch"), &flags); err != nil {
		return err
	}
	if len(flags.Files) == 0 {
		flags.Files = []string{stdinName}
	}
	if flags.Jobs < 1 {
		return fmt.Errorf("invalid jobs value %d", flags.Jobs)
	}

	var failed, total int
	for _, name := range flags.Files {
		results, err := a.bindFile(ctx, name, flags.Jobs)
		if err != nil {
			return err
		}
		for _, r := range results {
			total++
			if r.err != nil {
				failed++
				fmt.Fprintf(a.stdout, "%s:%d: ", name, r.line)
				printCLIError(a.stdout, r.err)
				continue
			}
			fmt.Fprintf(a.stdout, "%s:%d: %s\n", name, r.line, renderCompact(r.opts))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d command lines failed to bind", failed, total)
	}
	return nil
}

func (a *app) bindFile(ctx context.Context, name string, jobs int) ([]batchResult, error) {
	var r io.Reader = a.stdin
	if name != stdinName {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var results []batchResult
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		results = append(results, batchResult{line: n, text: line})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := range results {
		res := &results[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res.opts, res.err = a.bind(cmdline.Split(res.text, false))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// printCLIError prints err with a colored prefix and, for binding errors, a
// hint on how to recover.
func printCLIError(w io.Writer, err error) {
	if err == nil {
		return
	}
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(w, "error: ")
	fmt.Fprintln(w, err)

	var (
		unknown *argbind.UnknownOptionError
		missing *argbind.MissingValueError
	)
	switch {
	case errors.As(err, &unknown):
		color.New(color.Faint).Fprintln(w, "  run 'optnet schema' to list the available options")
	case errors.As(err, &missing):
		color.New(color.Faint).Fprintf(w, "  attach the value with --%s=VALUE if it starts with '-'\n", missing.Option)
	}
}
