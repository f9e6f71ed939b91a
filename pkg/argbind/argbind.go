// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argbind

import (
	"fmt"
	"regexp"
	"strings"
)

// switchPattern matches <prefix><name>[<sep><value>] where prefix is "-",
// "--" or "/", name excludes ':' and '=', and sep is ':' or '='. The value is
// either wrapped in matching quotes, which may contain the other quote kind,
// or free of quote characters. A quote-free value may open with a quote and
// close with either quote or none (--x="a', --x="a); a closing quote without
// an opening one (--x=a") does not match.
var switchPattern = regexp.MustCompile(`^(?:--?|/)([^:=]*)(?:[:=](?:"([^"]*)"|'([^']*)'|["']([^'"]*)["']?|([^'"]*)))?$`)

// token is a classified switch.
type token struct {
	name  string
	value string
}

// hasValue reports whether the switch carried a usable attached value.
// Whitespace-only values count as absent.
func (t token) hasValue() bool {
	return strings.TrimSpace(t.value) != ""
}

// classify reports whether arg is a switch and, if so, its name and value.
func classify(arg string) (token, bool) {
	m := switchPattern.FindStringSubmatch(arg)
	if m == nil {
		return token{}, false
	}
	// At most one of the value groups participates in a match.
	return token{name: m[1], value: m[2] + m[3] + m[4] + m[5]}, true
}

// Parse binds args onto target, which the caller has already populated with
// defaults. Tokens are processed in order:
//
//   - A switch (-name, --name, /name, optionally followed by :value or
//     =value) is resolved to a binding. Bool bindings are set to true, or
//     to the attached value. Other bindings take the attached value, or if
//     there is none, the next token.
//   - Any other token is the value of the preceding switch if that switch is
//     waiting for one, otherwise it is appended to the positional binding.
//
// Parse stops at the first error. Bindings set by earlier tokens keep their
// new values, so a record that failed to parse should be discarded.
//
// A switch that is still waiting for a value when args run out is ignored and
// its binding keeps its previous value.
func (s *Schema[T]) Parse(args []string, target *T) error {
	if target == nil {
		return fmt.Errorf("%w: nil target", ErrInvalidArgument)
	}
	if s.err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, s.err)
	}

	var pending *binding[T]
	for _, arg := range args {
		tok, isSwitch := classify(arg)
		if !isSwitch {
			if err := s.setPositional(target, pending, arg); err != nil {
				return err
			}
			pending = nil
			continue
		}

		// A switch cannot be the value of the switch before it.
		if pending != nil {
			return &MissingValueError{Option: pending.name}
		}

		b := s.resolve(tok.name)
		if b == nil {
			return &UnknownOptionError{Option: tok.name}
		}

		if b.kind == KindBool {
			raw := "true"
			if tok.hasValue() {
				raw = tok.value
			}
			if err := setValue(target, b, raw); err != nil {
				return err
			}
			continue
		}

		if !tok.hasValue() {
			pending = b
			continue
		}
		if err := setValue(target, b, tok.value); err != nil {
			return err
		}
	}
	return nil
}

// setPositional applies a non-switch token either as the value of the
// pending switch or as a positional argument.
func (s *Schema[T]) setPositional(target *T, pending *binding[T], arg string) error {
	if pending != nil {
		return setValue(target, pending, arg)
	}
	if s.positional == nil {
		return &UnknownOptionError{Option: arg}
	}
	s.positional.add(target, arg)
	return nil
}

func setValue[T any](target *T, b *binding[T], raw string) error {
	if b.kind == KindList {
		b.add(target, raw)
		return nil
	}
	if err := b.set(target, raw); err != nil {
		return &ConversionError{
			Option: b.name,
			Value:  raw,
			Type:   b.typeName,
			Err:    err,
		}
	}
	return nil
}
