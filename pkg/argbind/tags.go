// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argbind

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"time"
)

// Struct tags read by SchemaFor.
const (
	tagArg        = "arg"
	tagShort      = "short"
	tagLong       = "long"
	tagPositional = "positional"
)

var (
	schemaCache sync.Map // reflect.Type -> any (*Schema[T])

	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	durationType        = reflect.TypeOf(time.Duration(0))
)

// SchemaFor derives a schema from the exported fields of struct type T and
// caches it, so each type is inspected once per process.
//
// Fields are bound by their Go name unless overridden:
//
//	type Options struct {
//	    Inputs   []string      `positional:"true"`
//	    Output   string        `short:"o" long:"output-file"`
//	    Level    int           `arg:"lvl" long:"opt-level"`
//	    Timeout  time.Duration
//	    RunID    uuid.UUID     `long:"run-id"`
//	    internal string        // unexported, ignored
//	    Skipped  string        `arg:"-"`
//	}
//
// Supported field types are bool, string, []string, the integer and float
// types, time.Duration, and any V or *V where *V implements
// encoding.TextUnmarshaler. Any other field type makes the schema invalid;
// the error is returned by Err and by Parse.
func SchemaFor[T any]() *Schema[T] {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if cached, ok := schemaCache.Load(rt); ok {
		return cached.(*Schema[T])
	}
	s := buildSchema[T](rt)
	actual, _ := schemaCache.LoadOrStore(rt, s)
	return actual.(*Schema[T])
}

// Parse binds args onto target using the schema derived from T's struct tags.
func Parse[T any](args []string, target *T) error {
	return SchemaFor[T]().Parse(args, target)
}

func buildSchema[T any](rt reflect.Type) *Schema[T] {
	s := NewSchema[T]()
	if rt.Kind() != reflect.Struct {
		return s.fail(fmt.Errorf("%s is not a struct type", rt))
	}
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Tag.Get(tagArg)
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}
		opts := []Option{
			Short(field.Tag.Get(tagShort)),
			Long(field.Tag.Get(tagLong)),
		}

		if pos, ok := field.Tag.Lookup(tagPositional); ok {
			isPos, err := strconv.ParseBool(pos)
			if err != nil {
				return s.fail(fmt.Errorf("field %s: invalid positional tag %q", field.Name, pos))
			}
			if isPos {
				if field.Type != reflect.TypeOf([]string(nil)) {
					return s.fail(fmt.Errorf("field %s: positional field must be []string, got %s", field.Name, field.Type))
				}
				s.Positional(name, sliceField[T](field.Index), opts...)
				continue
			}
		}

		if err := addField(s, name, field, opts); err != nil {
			return s.fail(err)
		}
	}
	return s
}

// addField registers one struct field with a reflection-based setter chosen
// from the field's type.
func addField[T any](s *Schema[T], name string, field reflect.StructField, opts []Option) error {
	ft := field.Type
	index := field.Index
	opts = append(opts, TypeName(ft.String()))

	switch {
	case ft.Kind() == reflect.Bool:
		s.add(&binding[T]{
			name: name,
			kind: KindBool,
			set: func(t *T, raw string) error {
				b, err := ParseBool(raw)
				if err != nil {
					return err
				}
				fieldValue(t, index).SetBool(b)
				return nil
			},
		}, opts)
		return nil
	case ft.Kind() == reflect.String:
		s.add(&binding[T]{
			name: name,
			kind: KindScalar,
			set: func(t *T, raw string) error {
				fieldValue(t, index).SetString(raw)
				return nil
			},
		}, opts)
		return nil
	case ft.Kind() == reflect.Slice && ft.Elem().Kind() == reflect.String:
		s.add(&binding[T]{
			name: name,
			kind: KindList,
			add: func(t *T, raw string) {
				v := fieldValue(t, index)
				v.Set(reflect.Append(v, reflect.ValueOf(raw).Convert(ft.Elem())))
			},
		}, opts)
		return nil
	}

	conv, err := converterFor(ft)
	if err != nil {
		return fmt.Errorf("field %s: %w", field.Name, err)
	}
	s.add(&binding[T]{
		name: name,
		kind: KindScalar,
		set: func(t *T, raw string) error {
			v, err := conv(raw)
			if err != nil {
				return err
			}
			fieldValue(t, index).Set(v)
			return nil
		},
	}, opts)
	return nil
}

// converterFor returns a converter producing a reflect.Value assignable to ft.
func converterFor(ft reflect.Type) (func(string) (reflect.Value, error), error) {
	if ft == durationType {
		return func(raw string) (reflect.Value, error) {
			d, err := ParseDuration(raw)
			return reflect.ValueOf(d), err
		}, nil
	}
	if reflect.PointerTo(ft).Implements(textUnmarshalerType) {
		return func(raw string) (reflect.Value, error) {
			p := reflect.New(ft)
			if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
				return reflect.Value{}, err
			}
			return p.Elem(), nil
		}, nil
	}
	if ft.Kind() == reflect.Pointer && ft.Implements(textUnmarshalerType) {
		return func(raw string) (reflect.Value, error) {
			p := reflect.New(ft.Elem())
			if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
				return reflect.Value{}, err
			}
			return p, nil
		}, nil
	}

	switch ft.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(raw string) (reflect.Value, error) {
			n, err := strconv.ParseInt(raw, 10, ft.Bits())
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(n).Convert(ft), nil
		}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(raw string) (reflect.Value, error) {
			n, err := strconv.ParseUint(raw, 10, ft.Bits())
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(n).Convert(ft), nil
		}, nil
	case reflect.Float32, reflect.Float64:
		return func(raw string) (reflect.Value, error) {
			f, err := strconv.ParseFloat(raw, ft.Bits())
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(f).Convert(ft), nil
		}, nil
	}
	return nil, fmt.Errorf("unsupported field type %s", ft)
}

func fieldValue[T any](t *T, index []int) reflect.Value {
	return reflect.ValueOf(t).Elem().FieldByIndex(index)
}

func sliceField[T any](index []int) func(*T) *[]string {
	return func(t *T) *[]string {
		return fieldValue(t, index).Addr().Interface().(*[]string)
	}
}
