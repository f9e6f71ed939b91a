// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package env renders tagged struct fields as KEY=value lines suitable for
// sourcing from a shell.
package env

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Marshal writes one KEY=value line for every non-zero field of v that
// carries an `env:"KEY"` tag. Slices are joined with commas. Values are
// quoted for a POSIX shell, so sourcing the output yields them verbatim.
func Marshal(w io.Writer, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("env: cannot marshal %s", rv.Kind())
	}
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		key := rt.Field(i).Tag.Get("env")
		if key == "" {
			continue
		}
		field := rv.Field(i)
		if field.IsZero() {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s=%s\n", key, shellquote.Join(format(field))); err != nil {
			return err
		}
	}
	return nil
}

func format(v reflect.Value) string {
	if v.Kind() == reflect.Slice && v.Type().Elem().Kind() != reflect.Uint8 {
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(v.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v.Interface())
}
