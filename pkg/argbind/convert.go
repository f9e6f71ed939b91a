// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argbind

import (
	"encoding"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Converter turns a raw switch value into a value of type V.
type Converter[V any] func(string) (V, error)

// Signed is the set of integer types ParseInt accepts.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is the set of integer types ParseUint accepts.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Float is the set of floating point types ParseFloat accepts.
type Float interface {
	~float32 | ~float64
}

// ParseBool accepts "true" and "false" in any letter case, plus the short
// forms understood by strconv.ParseBool ("1", "t", "0", "f"). Surrounding
// whitespace is ignored.
func ParseBool(s string) (bool, error) {
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return false, fmt.Errorf("invalid bool value %q", s)
	}
	return b, nil
}

// ParseInt parses a base-10 signed integer that fits in V.
func ParseInt[V Signed](s string) (V, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid int value %q: %w", s, err)
	}
	v := V(n)
	if int64(v) != n {
		return 0, fmt.Errorf("int value %q out of range for %T", s, v)
	}
	return v, nil
}

// ParseUint parses a base-10 unsigned integer that fits in V.
func ParseUint[V Unsigned](s string) (V, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid uint value %q: %w", s, err)
	}
	v := V(n)
	if uint64(v) != n {
		return 0, fmt.Errorf("uint value %q out of range for %T", s, v)
	}
	return v, nil
}

// ParseFloat parses a floating point number.
func ParseFloat[V Float](s string) (V, error) {
	var zero V
	bits := 64
	if _, ok := any(zero).(float32); ok {
		bits = 32
	}
	f, err := strconv.ParseFloat(s, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid float value %q: %w", s, err)
	}
	return V(f), nil
}

// ParseDuration parses a duration such as "1m30s".
func ParseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}

// ParseText converts s with UnmarshalText. Instantiated for a type whose
// pointer implements encoding.TextUnmarshaler, such as uuid.UUID or
// semver.Version, it is a Converter for that type: ParseText[uuid.UUID].
func ParseText[V any, PV interface {
	*V
	encoding.TextUnmarshaler
}](s string) (V, error) {
	var v V
	if err := PV(&v).UnmarshalText([]byte(s)); err != nil {
		return v, err
	}
	return v, nil
}
