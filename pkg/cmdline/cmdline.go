// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cmdline splits a raw command line into argument tokens.
package cmdline

import (
	"strings"
	"unicode"

	"github.com/kballard/go-shellquote"
)

// Split breaks line into tokens separated by whitespace. A single or double
// quote starts a quoted run that ends at the next quote of the same kind;
// the quotes are removed and everything between them is kept as is,
// including whitespace and the other quote kind. A token may mix quoted and
// unquoted parts (--out="my file").
//
// Backslash has no special meaning, so a quoted Windows path with a trailing
// separator ("C:\out dir\") keeps the separator instead of escaping the
// closing quote. An unterminated quote extends to the end of line.
//
// Empty tokens are dropped. If skipModule is set the first token, normally
// the program path, is dropped as well.
func Split(line string, skipModule bool) []string {
	var (
		tokens []string
		curr   strings.Builder
		quote  rune
	)
	flush := func() {
		if curr.Len() > 0 {
			tokens = append(tokens, curr.String())
		}
		curr.Reset()
	}

	for _, c := range line {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
				continue
			}
			curr.WriteRune(c)
		case c == '"' || c == '\'':
			quote = c
		case unicode.IsSpace(c):
			flush()
		default:
			curr.WriteRune(c)
		}
	}
	flush()

	if skipModule && len(tokens) > 0 {
		tokens = tokens[1:]
	}
	return tokens
}

// SplitPOSIX splits line the way a POSIX shell would, honoring backslash
// escapes. Unlike Split it fails on unterminated quotes.
func SplitPOSIX(line string, skipModule bool) ([]string, error) {
	tokens, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if skipModule && len(tokens) > 0 {
		tokens = tokens[1:]
	}
	return tokens, nil
}
