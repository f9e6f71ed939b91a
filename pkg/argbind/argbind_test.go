// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argbind

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"
)

type testOptions struct {
	Inputs  []string
	Output  string
	Level   int
	Passes  []string
	Verbose bool
	Expand  int
	Timeout time.Duration
}

func newTestSchema() *Schema[testOptions] {
	s := NewSchema[testOptions]().
		Positional("Inputs", func(o *testOptions) *[]string { return &o.Inputs }).
		String("Output", func(o *testOptions) *string { return &o.Output }, Short("o"), Long("output-file")).
		List("Passes", func(o *testOptions) *[]string { return &o.Passes }, Short("p"), Long("pass")).
		Bool("Verbose", func(o *testOptions) *bool { return &o.Verbose }, Short("v"))
	Scalar(s, "Level", func(o *testOptions) *int { return &o.Level }, ParseInt[int], Short("l"), Long("opt-level"))
	Scalar(s, "Expand", func(o *testOptions) *int { return &o.Expand }, ParseInt[int], Short("x"), Long("expand"))
	Scalar(s, "Timeout", func(o *testOptions) *time.Duration { return &o.Timeout }, ParseDuration)
	return s
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		args []string
		init testOptions
		want testOptions
	}{
		{
			name: "space separated value",
			args: []string{"--Level", "3"},
			want: testOptions{Level: 3},
		},
		{
			name: "colon attached value",
			args: []string{"--Level:3"},
			want: testOptions{Level: 3},
		},
		{
			name: "equals attached value",
			args: []string{"--Level=3"},
			want: testOptions{Level: 3},
		},
		{
			name: "single dash and slash prefixes",
			args: []string{"-Output", "a.bc", "/Level:2"},
			want: testOptions{Output: "a.bc", Level: 2},
		},
		{
			name: "case insensitive name",
			args: []string{"--OUTPUT", "a.bc", "--level=1"},
			want: testOptions{Output: "a.bc", Level: 1},
		},
		{
			name: "bare bool switch sets true",
			args: []string{"--Verbose"},
			want: testOptions{Verbose: true},
		},
		{
			name: "bool switch with attached false",
			args: []string{"--Verbose:false"},
			init: testOptions{Verbose: true},
			want: testOptions{Verbose: false},
		},
		{
			name: "bool switch with attached mixed case value",
			args: []string{"-v=TRUE"},
			want: testOptions{Verbose: true},
		},
		{
			name: "bool switch never consumes next token",
			args: []string{"--Verbose", "in.bc"},
			want: testOptions{Verbose: true, Inputs: []string{"in.bc"}},
		},
		{
			name: "list accumulates in order with duplicates",
			args: []string{"--pass", "inline", "--pass", "dce", "-p:inline"},
			want: testOptions{Passes: []string{"inline", "dce", "inline"}},
		},
		{
			name: "list appends to defaults",
			args: []string{"--pass=dce"},
			init: testOptions{Passes: []string{"mem2reg"}},
			want: testOptions{Passes: []string{"mem2reg", "dce"}},
		},
		{
			name: "double quoted value keeps spaces",
			args: []string{`--Output:"a b"`},
			want: testOptions{Output: "a b"},
		},
		{
			name: "single quoted value keeps double quotes",
			args: []string{`--Output='say "hi"'`},
			want: testOptions{Output: `say "hi"`},
		},
		{
			name: "double quoted value keeps single quote",
			args: []string{`--Output="it's"`},
			want: testOptions{Output: "it's"},
		},
		{
			name: "unclosed leading quote is stripped",
			args: []string{`--Output="out.bc`},
			want: testOptions{Output: "out.bc"},
		},
		{
			name: "leading and trailing quotes of different kinds are stripped",
			args: []string{`--Output="out.bc'`},
			want: testOptions{Output: "out.bc"},
		},
		{
			name: "closing quote without opening quote is positional",
			args: []string{`--Output=out.bc"`},
			want: testOptions{Inputs: []string{`--Output=out.bc"`}},
		},
		{
			name: "value may contain separators",
			args: []string{"--Output=a=b:c"},
			want: testOptions{Output: "a=b:c"},
		},
		{
			name: "empty attached value waits for next token",
			args: []string{"--Output=", "out.bc"},
			want: testOptions{Output: "out.bc"},
		},
		{
			name: "whitespace attached value waits for next token",
			args: []string{`--Output:" "`, "out.bc"},
			want: testOptions{Output: "out.bc"},
		},
		{
			name: "positional arguments collected in order",
			args: []string{"a.bc", "-l", "2", "b.bc"},
			want: testOptions{Inputs: []string{"a.bc", "b.bc"}, Level: 2},
		},
		{
			name: "positional binding is also a switch",
			args: []string{"--inputs", "a.bc"},
			want: testOptions{Inputs: []string{"a.bc"}},
		},
		{
			name: "later switch overwrites scalar",
			args: []string{"-L", "1", "--opt-level=3"},
			want: testOptions{Level: 3},
		},
		{
			name: "trailing pending switch keeps default",
			args: []string{"--Output"},
			init: testOptions{Output: "default.bc"},
			want: testOptions{Output: "default.bc"},
		},
		{
			name: "duration converter",
			args: []string{"--timeout", "1m30s"},
			want: testOptions{Timeout: 90 * time.Second},
		},
		{
			name: "empty args leave record unchanged",
			args: []string{},
			init: testOptions{Output: "x", Level: 2, Passes: []string{"a"}},
			want: testOptions{Output: "x", Level: 2, Passes: []string{"a"}},
		},
		{
			name: "nil args leave record unchanged",
			args: nil,
			init: testOptions{Verbose: true},
			want: testOptions{Verbose: true},
		},
	}

	s := newTestSchema()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.init
			if err := s.Parse(tt.args, &got); err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.args, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.args, diff)
			}
		})
	}
}

func TestParse_EquivalentSyntaxes(t *testing.T) {
	s := newTestSchema()
	syntaxes := [][]string{
		{"--Output", "out.bc"},
		{"--Output:out.bc"},
		{"--Output=out.bc"},
		{"-o", "out.bc"},
		{"--output-file", "out.bc"},
		{"/o=out.bc"},
	}
	want := testOptions{Output: "out.bc"}
	for _, args := range syntaxes {
		var got testOptions
		if err := s.Parse(args, &got); err != nil {
			t.Fatalf("Parse(%q) error = %v", args, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", args, diff)
		}
	}
}

func TestParse_Aliases(t *testing.T) {
	s := newTestSchema()
	var short, long testOptions
	if err := s.Parse([]string{"-x", "1"}, &short); err != nil {
		t.Fatalf("Parse(-x) error = %v", err)
	}
	if err := s.Parse([]string{"--expand", "1"}, &long); err != nil {
		t.Fatalf("Parse(--expand) error = %v", err)
	}
	if short.Expand != 1 {
		t.Errorf("Expand via short alias = %d, want 1", short.Expand)
	}
	if diff := cmp.Diff(short, long); diff != "" {
		t.Errorf("short and long alias differ (-short +long):\n%s", diff)
	}
}

func TestParse_CaseInsensitiveAliases(t *testing.T) {
	s := newTestSchema()
	for _, args := range [][]string{
		{"-o", "out.bc"},
		{"-O", "out.bc"},
		{"/O:out.bc"},
		{"--OUTPUT-FILE=out.bc"},
	} {
		var got testOptions
		if err := s.Parse(args, &got); err != nil {
			t.Fatalf("Parse(%q) error = %v", args, err)
		}
		if diff := cmp.Diff(testOptions{Output: "out.bc"}, got); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", args, diff)
		}
	}

	lower, ok := s.Lookup("o")
	if !ok {
		t.Fatal("Lookup(o) found no binding")
	}
	upper, ok := s.Lookup("O")
	if !ok {
		t.Fatal("Lookup(O) found no binding")
	}
	if diff := cmp.Diff(lower, upper); diff != "" {
		t.Errorf("-o and -O resolve to different bindings (-o +O):\n%s", diff)
	}
	if upper.Name != "Output" {
		t.Errorf("Lookup(O).Name = %q, want Output", upper.Name)
	}
	if info, ok := s.Lookup("OPT-LEVEL"); !ok || info.Name != "Level" {
		t.Errorf("Lookup(OPT-LEVEL) = %+v, %v; want binding Level", info, ok)
	}
	if _, ok := s.Lookup("c"); ok {
		t.Error("Lookup(c) found a binding, want none")
	}
}

func TestParse_Errors(t *testing.T) {
	noPositional := NewSchema[testOptions]().
		String("Output", func(o *testOptions) *string { return &o.Output })

	tests := []struct {
		name    string
		schema  *Schema[testOptions]
		args    []string
		check   func(t *testing.T, err error)
		wantErr string
	}{
		{
			name:    "unknown switch",
			schema:  newTestSchema(),
			args:    []string{"--bogus"},
			wantErr: "unknown option: bogus",
			check: func(t *testing.T, err error) {
				var e *UnknownOptionError
				if !errors.As(err, &e) || e.Option != "bogus" {
					t.Errorf("error = %#v, want UnknownOptionError{bogus}", err)
				}
			},
		},
		{
			name:    "unknown switch with value",
			schema:  newTestSchema(),
			args:    []string{"/bogus:1"},
			wantErr: "unknown option: bogus",
		},
		{
			name:    "positional without sink",
			schema:  noPositional,
			args:    []string{"free"},
			wantErr: "unknown option: free",
			check: func(t *testing.T, err error) {
				var e *UnknownOptionError
				if !errors.As(err, &e) || e.Option != "free" {
					t.Errorf("error = %#v, want UnknownOptionError{free}", err)
				}
			},
		},
		{
			name:    "switch where value expected",
			schema:  newTestSchema(),
			args:    []string{"--Level", "--Verbose"},
			wantErr: "missing value for option: Level",
			check: func(t *testing.T, err error) {
				var e *MissingValueError
				if !errors.As(err, &e) || e.Option != "Level" {
					t.Errorf("error = %#v, want MissingValueError{Level}", err)
				}
			},
		},
		{
			name:    "negative number is a switch",
			schema:  newTestSchema(),
			args:    []string{"--expand", "-4"},
			wantErr: "missing value for option: Expand",
		},
		{
			name:    "missing value reports binding name not alias",
			schema:  newTestSchema(),
			args:    []string{"-o", "-v"},
			wantErr: "missing value for option: Output",
		},
		{
			name:    "bad int",
			schema:  newTestSchema(),
			args:    []string{"--Level", "three"},
			wantErr: `invalid int value "three" for option Level: invalid int value "three": strconv.ParseInt: parsing "three": invalid syntax`,
			check: func(t *testing.T, err error) {
				var e *ConversionError
				if !errors.As(err, &e) {
					t.Fatalf("error = %#v, want ConversionError", err)
				}
				if e.Option != "Level" || e.Value != "three" || e.Type != "int" {
					t.Errorf("ConversionError = %+v", e)
				}
				if errors.Unwrap(err) == nil {
					t.Error("ConversionError does not unwrap")
				}
			},
		},
		{
			name:    "bad bool",
			schema:  newTestSchema(),
			args:    []string{"--Verbose=maybe"},
			wantErr: `invalid bool value "maybe" for option Verbose: invalid bool value "maybe"`,
			check: func(t *testing.T, err error) {
				var e *ConversionError
				if !errors.As(err, &e) || e.Type != "bool" {
					t.Errorf("error = %#v, want bool ConversionError", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got testOptions
			err := tt.schema.Parse(tt.args, &got)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.args)
			}
			if err.Error() != tt.wantErr {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestParse_PartialMutationOnError(t *testing.T) {
	s := newTestSchema()
	got := testOptions{Output: "default"}
	err := s.Parse([]string{"-o", "set.bc", "in.bc", "--bogus", "-l", "2"}, &got)
	var e *UnknownOptionError
	if !errors.As(err, &e) {
		t.Fatalf("error = %v, want UnknownOptionError", err)
	}
	want := testOptions{Output: "set.bc", Inputs: []string{"in.bc"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("record after failed parse (-want +got):\n%s", diff)
	}
}

func TestParse_InvalidArgument(t *testing.T) {
	s := newTestSchema()
	if err := s.Parse([]string{"-v"}, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Parse(nil target) error = %v, want ErrInvalidArgument", err)
	}

	broken := NewSchema[testOptions]().String("", func(o *testOptions) *string { return &o.Output })
	var got testOptions
	if err := broken.Parse(nil, &got); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Parse(broken schema) error = %v, want ErrInvalidArgument", err)
	}
}

func TestParse_Concurrent(t *testing.T) {
	s := newTestSchema()
	const n = 32
	results := make([]testOptions, n)

	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			args := []string{
				fmt.Sprintf("in%d.bc", i),
				"--opt-level", fmt.Sprint(i),
				"--pass", fmt.Sprintf("p%d", i),
			}
			return s.Parse(args, &results[i])
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent Parse error = %v", err)
	}
	for i, got := range results {
		want := testOptions{
			Inputs: []string{fmt.Sprintf("in%d.bc", i)},
			Level:  i,
			Passes: []string{fmt.Sprintf("p%d", i)},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("record %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		arg       string
		wantOK    bool
		wantName  string
		wantValue string
	}{
		{"--name", true, "name", ""},
		{"-n", true, "n", ""},
		{"/n", true, "n", ""},
		{"--name:value", true, "name", "value"},
		{"--name=value", true, "name", "value"},
		{`--name:"a b"`, true, "name", "a b"},
		{`--name:'a b'`, true, "name", "a b"},
		{`--name="a 'b'"`, true, "name", "a 'b'"},
		{"--", true, "", ""},
		{"---x", true, "-x", ""},
		{"value", false, "", ""},
		{"a-b", false, "", ""},
		{`--name:"a b'`, true, "name", "a b"},
		{`--name:'ab`, true, "name", "ab"},
		{`--name:ab"`, false, "", ""},
		{`--name:a"b`, false, "", ""},
		{"", false, "", ""},
	}
	for _, tt := range tests {
		got, ok := classify(tt.arg)
		if ok != tt.wantOK {
			t.Errorf("classify(%q) ok = %v, want %v", tt.arg, ok, tt.wantOK)
			continue
		}
		if got.name != tt.wantName || got.value != tt.wantValue {
			t.Errorf("classify(%q) = (%q, %q), want (%q, %q)", tt.arg, got.name, got.value, tt.wantName, tt.wantValue)
		}
	}
}
