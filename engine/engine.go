// Copyright (c) 2024-2026, the Formwalk Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package engine evaluates survey documents against collected answers. It
// decides which questions and pages are visible (visibility.go), which
// question follows a given answer (transition.go), which outcome text a
// completed flow resolves to (resolution.go) and how answers of parallel
// (repeating) groups are addressed and stored (groups.go).
//
// Every operation treats its inputs as frozen snapshots and returns new
// values, nothing is mutated in place and nothing is cached between calls.
// Malformed documents degrade instead of failing: a dangling reference or a
// type mismatch makes the single condition false, never the whole
// evaluation, and the only diagnostics are warnings through the configured
// logger.
package engine

import (
	"reflect"
	"strconv"

	"github.com/formwalk/formwalk"
)

// Engine evaluates surveys. The zero value is usable, New applies options.
type Engine struct {
	log formwalk.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for evaluation warnings.
func WithLogger(log formwalk.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, o := range opts {
		o(e)
	}

	return e
}

func (e *Engine) warnf(format string, v ...any) {
	if e.log != nil {
		e.log.Warnf(format, v...)
	}
}

// answered reports whether v counts as an answer: present and neither nil
// nor the empty string.
func answered(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok && s == "" {
		return false
	}

	return true
}

// asNumber reports v as a float64 when it is a numeric type. Strings are
// not coerced here, see coerceNumber.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// coerceNumber converts v to a float64, accepting numeric types and
// numeric strings.
func coerceNumber(v any) (float64, bool) {
	if n, ok := asNumber(v); ok {
		return n, true
	}

	if s, ok := v.(string); ok {
		n, err := strconv.ParseFloat(s, 64)
		if err == nil {
			return n, true
		}
	}

	return 0, false
}

// valuesEqual compares two raw answer values. Numbers compare by value
// regardless of their Go type since YAML and JSON decoding differ there,
// everything else compares strictly.
func valuesEqual(a, b any) bool {
	an, aok := asNumber(a)
	bn, bok := asNumber(b)
	if aok && bok {
		return an == bn
	}
	if aok != bok {
		return false
	}

	return reflect.DeepEqual(a, b)
}

// memberOf reports whether needle equals any element of the answer array.
func memberOf(arr any, needle string) bool {
	switch vs := arr.(type) {
	case []string:
		for _, v := range vs {
			if v == needle {
				return true
			}
		}
	case []any:
		for _, v := range vs {
			if s, ok := v.(string); ok && s == needle {
				return true
			}
		}
	}

	return false
}

// isArray reports whether v is one of the answer array shapes.
func isArray(v any) bool {
	switch v.(type) {
	case []string, []any:
		return true
	default:
		return false
	}
}
