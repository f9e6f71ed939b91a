// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/yeetrun/optnet/pkg/argbind"
	"github.com/yeetrun/optnet/pkg/env"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatEnv  = "env"

	maxOptLevel = 3
)

// options is the record the optimizer command line is bound onto.
type options struct {
	Inputs           []string
	Output           string
	OptLevel         int
	Passes           []string
	Verbose          bool
	DebugPassManager bool
	Triple           string
	Timeout          time.Duration
	RunID            uuid.UUID
	MinVersion       *semver.Version
}

var optionsSchema = newOptionsSchema()

func newOptionsSchema() *argbind.Schema[options] {
	s := argbind.NewSchema[options]().
		Positional("Inputs", func(o *options) *[]string { return &o.Inputs }).
		String("Output", func(o *options) *string { return &o.Output }, argbind.Short("o"), argbind.Long("output-file")).
		List("Passes", func(o *options) *[]string { return &o.Passes }, argbind.Short("p"), argbind.Long("pass")).
		Bool("Verbose", func(o *options) *bool { return &o.Verbose }, argbind.Short("v")).
		Bool("DebugPassManager", func(o *options) *bool { return &o.DebugPassManager }, argbind.Long("debug-pass-manager")).
		String("Triple", func(o *options) *string { return &o.Triple }, argbind.Short("t"), argbind.Long("target-triple"))
	argbind.Scalar(s, "OptLevel", func(o *options) *int { return &o.OptLevel }, parseOptLevel,
		argbind.Short("l"), argbind.Long("opt-level"), argbind.TypeName("opt level"))
	argbind.Scalar(s, "Timeout", func(o *options) *time.Duration { return &o.Timeout }, argbind.ParseDuration,
		argbind.TypeName("duration"))
	argbind.Scalar(s, "RunID", func(o *options) *uuid.UUID { return &o.RunID }, uuid.Parse,
		argbind.Long("run-id"), argbind.TypeName("uuid"))
	argbind.Scalar(s, "MinVersion", func(o *options) **semver.Version { return &o.MinVersion }, semver.NewVersion,
		argbind.Long("min-version"), argbind.TypeName("version"))
	return s
}

func parseOptLevel(s string) (int, error) {
	n, err := argbind.ParseInt[int](s)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > maxOptLevel {
		return 0, fmt.Errorf("opt level must be between 0 and %d", maxOptLevel)
	}
	return n, nil
}

// defaults is the on-disk defaults file. Values seed the options record
// before the command line is bound, so switches override them.
type defaults struct {
	Format     string   `toml:"format"`
	Output     string   `toml:"output"`
	OptLevel   int      `toml:"opt-level"`
	Passes     []string `toml:"passes"`
	Verbose    bool     `toml:"verbose"`
	Triple     string   `toml:"target-triple"`
	Timeout    string   `toml:"timeout"`
	MinVersion string   `toml:"min-version"`
}

func defaultsPath() string {
	if p := os.Getenv("OPTNET_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".optnet", "defaults.toml")
}

func loadDefaults(path string) (defaults, error) {
	var d defaults
	if _, err := toml.DecodeFile(path, &d); err != nil {
		return defaults{}, err
	}
	if d.Format != "" && !validFormat(d.Format) {
		return defaults{}, fmt.Errorf("%s: unknown format %q", path, d.Format)
	}
	return d, nil
}

// newOptions returns a record seeded from d.
func (d defaults) newOptions() (options, error) {
	o := options{
		Output:   d.Output,
		OptLevel: d.OptLevel,
		Passes:   slices.Clone(d.Passes),
		Verbose:  d.Verbose,
		Triple:   d.Triple,
	}
	if d.Timeout != "" {
		t, err := argbind.ParseDuration(d.Timeout)
		if err != nil {
			return options{}, fmt.Errorf("defaults: %w", err)
		}
		o.Timeout = t
	}
	if d.MinVersion != "" {
		v, err := semver.NewVersion(d.MinVersion)
		if err != nil {
			return options{}, fmt.Errorf("defaults: invalid min-version %q: %w", d.MinVersion, err)
		}
		o.MinVersion = v
	}
	return o, nil
}

// outputFormat picks the render format: OPTNET_FORMAT, then the defaults
// file, then JSON.
func outputFormat(d defaults) string {
	if f := strings.ToLower(os.Getenv("OPTNET_FORMAT")); validFormat(f) {
		return f
	}
	if d.Format != "" {
		return d.Format
	}
	return formatJSON
}

func validFormat(f string) bool {
	switch f {
	case formatJSON, formatYAML, formatEnv:
		return true
	}
	return false
}

// optionsView is the printable form of options.
type optionsView struct {
	Inputs           []string `json:"inputs,omitempty" yaml:"inputs,omitempty" env:"OPTNET_INPUTS"`
	Output           string   `json:"output,omitempty" yaml:"output,omitempty" env:"OPTNET_OUTPUT"`
	OptLevel         int      `json:"optLevel" yaml:"optLevel" env:"OPTNET_OPT_LEVEL"`
	Passes           []string `json:"passes,omitempty" yaml:"passes,omitempty" env:"OPTNET_PASSES"`
	Verbose          bool     `json:"verbose" yaml:"verbose" env:"OPTNET_VERBOSE"`
	DebugPassManager bool     `json:"debugPassManager" yaml:"debugPassManager" env:"OPTNET_DEBUG_PASS_MANAGER"`
	Triple           string   `json:"targetTriple,omitempty" yaml:"targetTriple,omitempty" env:"OPTNET_TARGET_TRIPLE"`
	Timeout          string   `json:"timeout,omitempty" yaml:"timeout,omitempty" env:"OPTNET_TIMEOUT"`
	RunID            string   `json:"runId,omitempty" yaml:"runId,omitempty" env:"OPTNET_RUN_ID"`
	MinVersion       string   `json:"minVersion,omitempty" yaml:"minVersion,omitempty" env:"OPTNET_MIN_VERSION"`
}

func (o options) view() optionsView {
	v := optionsView{
		Inputs:           o.Inputs,
		Output:           o.Output,
		OptLevel:         o.OptLevel,
		Passes:           o.Passes,
		Verbose:          o.Verbose,
		DebugPassManager: o.DebugPassManager,
		Triple:           o.Triple,
	}
	if o.Timeout != 0 {
		v.Timeout = o.Timeout.String()
	}
	if o.RunID != uuid.Nil {
		v.RunID = o.RunID.String()
	}
	if o.MinVersion != nil {
		v.MinVersion = o.MinVersion.String()
	}
	return v
}

func renderOptions(w io.Writer, o options, format string) error {
	switch format {
	case formatEnv:
		return env.Marshal(w, o.view())
	case formatYAML:
		b, err := yaml.Marshal(o.view())
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		b, err := json.MarshalIndent(o.view(), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
}

// renderCompact renders o on a single line, for batch output.
func renderCompact(o options) string {
	b, err := json.Marshal(o.view())
	if err != nil {
		return fmt.Sprintf("%+v", o)
	}
	return string(b)
}
