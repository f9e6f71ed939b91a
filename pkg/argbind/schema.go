// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argbind

import (
	"errors"
	"fmt"
	"strings"
)

// Kind describes how a binding consumes values.
type Kind uint8

const (
	// KindScalar bindings take exactly one value, converted to the slot's type.
	// Repeating the switch overwrites the previous value.
	KindScalar Kind = iota
	// KindBool bindings are set to true by a bare switch, or to the converted
	// attached value (--flag:false).
	KindBool
	// KindList bindings append every value they receive, in order.
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// binding is one bindable property of T.
type binding[T any] struct {
	name       string
	short      string
	long       string
	kind       Kind
	typeName   string
	positional bool

	// set converts and assigns a raw value. Used by scalar and bool bindings.
	set func(*T, string) error
	// add appends a raw value. Used by list bindings.
	add func(*T, string)
}

func (b *binding[T]) info() OptionInfo {
	return OptionInfo{
		Name:       b.name,
		Short:      b.short,
		Long:       b.long,
		Kind:       b.kind,
		Type:       b.typeName,
		Positional: b.positional,
	}
}

// OptionInfo describes a binding for help output and introspection.
type OptionInfo struct {
	Name       string
	Short      string // Optional short alias (e.g. "o")
	Long       string // Optional long alias (e.g. "output-file")
	Kind       Kind
	Type       string
	Positional bool // Collects tokens that are not switches or switch values
}

// Option configures a single binding.
type Option func(*bindOptions)

type bindOptions struct {
	short    string
	long     string
	typeName string
}

// Short sets the short alias of a binding.
func Short(alias string) Option {
	return func(o *bindOptions) { o.short = alias }
}

// Long sets the long alias of a binding.
func Long(alias string) Option {
	return func(o *bindOptions) { o.long = alias }
}

// TypeName overrides the type label reported in conversion errors.
func TypeName(name string) Option {
	return func(o *bindOptions) { o.typeName = name }
}

// Schema is the catalog of bindable properties for records of type T.
//
// A Schema is assembled with the builder methods, then used read-only by any
// number of Parse calls, including concurrent ones. Builder errors are
// accumulated: after the first error further builder calls are ignored and
// the error is reported by Err and by Parse. Registering a name or alias that
// equals, ignoring case, one already in use is an error.
type Schema[T any] struct {
	bindings   []*binding[T]
	positional *binding[T]
	err        error
}

// NewSchema returns an empty schema for records of type T.
func NewSchema[T any]() *Schema[T] {
	return &Schema[T]{bindings: make([]*binding[T], 0, 8)}
}

// Err returns the first error encountered while building the schema.
func (s *Schema[T]) Err() error {
	return s.err
}

// Bool registers a boolean binding.
func (s *Schema[T]) Bool(name string, field func(*T) *bool, opts ...Option) *Schema[T] {
	if field == nil {
		return s.fail(fmt.Errorf("bool binding %q: nil field accessor", name))
	}
	return s.add(&binding[T]{
		name:     name,
		kind:     KindBool,
		typeName: "bool",
		set: func(t *T, raw string) error {
			v, err := ParseBool(raw)
			if err != nil {
				return err
			}
			*field(t) = v
			return nil
		},
	}, opts)
}

// String registers a string binding. Values are assigned without conversion.
func (s *Schema[T]) String(name string, field func(*T) *string, opts ...Option) *Schema[T] {
	if field == nil {
		return s.fail(fmt.Errorf("string binding %q: nil field accessor", name))
	}
	return s.add(&binding[T]{
		name:     name,
		kind:     KindScalar,
		typeName: "string",
		set: func(t *T, raw string) error {
			*field(t) = raw
			return nil
		},
	}, opts)
}

// List registers a list-of-string binding. Each value is appended.
func (s *Schema[T]) List(name string, field func(*T) *[]string, opts ...Option) *Schema[T] {
	if field == nil {
		return s.fail(fmt.Errorf("list binding %q: nil field accessor", name))
	}
	return s.add(&binding[T]{
		name:     name,
		kind:     KindList,
		typeName: "[]string",
		add: func(t *T, raw string) {
			p := field(t)
			*p = append(*p, raw)
		},
	}, opts)
}

// Positional registers the positional sink. It behaves as a list binding
// that also receives every token that is neither a switch nor the value of a
// pending switch. At most one positional sink may be registered.
func (s *Schema[T]) Positional(name string, field func(*T) *[]string, opts ...Option) *Schema[T] {
	if s.err != nil {
		return s
	}
	if s.positional != nil {
		return s.fail(fmt.Errorf("positional binding %q: schema already has positional binding %q", name, s.positional.name))
	}
	s.List(name, field, opts...)
	if s.err == nil {
		b := s.bindings[len(s.bindings)-1]
		b.positional = true
		s.positional = b
	}
	return s
}

// Scalar registers a binding converted with conv. If V is bool the binding
// behaves like Bool but uses conv for attached values.
func Scalar[T, V any](s *Schema[T], name string, field func(*T) *V, conv Converter[V], opts ...Option) *Schema[T] {
	if field == nil {
		return s.fail(fmt.Errorf("scalar binding %q: nil field accessor", name))
	}
	if conv == nil {
		return s.fail(fmt.Errorf("scalar binding %q: nil converter", name))
	}
	var zero V
	kind := KindScalar
	if _, ok := any(zero).(bool); ok {
		kind = KindBool
	}
	return s.add(&binding[T]{
		name:     name,
		kind:     kind,
		typeName: fmt.Sprintf("%T", zero),
		set: func(t *T, raw string) error {
			v, err := conv(raw)
			if err != nil {
				return err
			}
			*field(t) = v
			return nil
		},
	}, opts)
}

func (s *Schema[T]) add(b *binding[T], opts []Option) *Schema[T] {
	if s.err != nil {
		return s
	}
	if strings.TrimSpace(b.name) == "" {
		return s.fail(errors.New("binding with empty name"))
	}
	var o bindOptions
	for _, opt := range opts {
		opt(&o)
	}
	b.short = o.short
	b.long = o.long
	if o.typeName != "" {
		b.typeName = o.typeName
	}
	// Switch names are matched case-insensitively, so a name or alias that
	// equals an existing one would make one of the two unreachable.
	for _, id := range b.identifiers() {
		if other := s.owner(id); other != nil {
			return s.fail(fmt.Errorf("binding %q: %q conflicts with binding %q", b.name, id, other.name))
		}
	}
	s.bindings = append(s.bindings, b)
	return s
}

// identifiers returns the non-empty name and aliases of b.
func (b *binding[T]) identifiers() []string {
	ids := make([]string, 0, 3)
	for _, id := range []string{b.name, b.short, b.long} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// owner returns the registered binding using id as its name or an alias.
func (s *Schema[T]) owner(id string) *binding[T] {
	for _, b := range s.bindings {
		for _, other := range b.identifiers() {
			if strings.EqualFold(other, id) {
				return b
			}
		}
	}
	return nil
}

func (s *Schema[T]) fail(err error) *Schema[T] {
	if s.err == nil {
		s.err = err
	}
	return s
}

// resolve finds the binding for a switch name. Names are compared
// case-insensitively: first against every binding's name, then every short
// alias, then every long alias. The first match wins.
func (s *Schema[T]) resolve(name string) *binding[T] {
	for _, b := range s.bindings {
		if strings.EqualFold(b.name, name) {
			return b
		}
	}
	for _, b := range s.bindings {
		if b.short != "" && strings.EqualFold(b.short, name) {
			return b
		}
	}
	for _, b := range s.bindings {
		if b.long != "" && strings.EqualFold(b.long, name) {
			return b
		}
	}
	return nil
}

// Options lists the bindings in registration order.
func (s *Schema[T]) Options() []OptionInfo {
	out := make([]OptionInfo, 0, len(s.bindings))
	for _, b := range s.bindings {
		out = append(out, b.info())
	}
	return out
}

// Lookup reports the binding a switch name resolves to.
func (s *Schema[T]) Lookup(name string) (OptionInfo, bool) {
	b := s.resolve(name)
	if b == nil {
		return OptionInfo{}, false
	}
	return b.info(), true
}
