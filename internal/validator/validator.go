// Copyright (c) 2024-2026, the Formwalk Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package validator evaluates boolean validation expressions using the expr
// language. Expressions see the environment handed in by the caller plus a
// set of helper functions for common answer shapes (isInt, isFloat, isEmail,
// isPhone, isDate).
package validator

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/expr-lang/expr"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{5,}$`)
)

// Validate evaluates expression against env and returns its boolean result.
// Undefined variables are allowed and evaluate as nil so expressions can
// reference answers that were not collected yet.
func Validate(env map[string]any, expression string) (bool, error) {
	e := environment(env)

	program, err := expr.Compile(expression, expr.Env(e), expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("invalid expression %q: %w", expression, err)
	}

	res, err := expr.Run(program, e)
	if err != nil {
		return false, err
	}

	b, ok := res.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q did not return a boolean", expression)
	}

	return b, nil
}

// SurveyValidator adapts a validation expression to a survey.Validator. The
// answer is available to the expression as value. Empty answers pass unless
// required is set.
func SurveyValidator(expression string, required bool) survey.Validator {
	return func(ans any) error {
		s := fmt.Sprintf("%v", ans)
		if s == "" {
			if required {
				return fmt.Errorf("value is required")
			}
			return nil
		}

		ok, err := Validate(map[string]any{"value": s}, expression)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("did not validate using %q", expression)
		}

		return nil
	}
}

func environment(env map[string]any) map[string]any {
	e := make(map[string]any, len(env)+5)
	for k, v := range env {
		e[k] = v
	}

	e["isInt"] = isInt
	e["isFloat"] = isFloat
	e["isEmail"] = isEmail
	e["isPhone"] = isPhone
	e["isDate"] = isDate

	return e
}

func isInt(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return n == float64(int64(n))
	case string:
		_, err := strconv.Atoi(n)
		return err == nil
	default:
		return false
	}
}

func isFloat(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(n, 64)
		return err == nil
	default:
		return false
	}
}

func isEmail(v any) bool {
	s, ok := v.(string)
	return ok && emailPattern.MatchString(s)
}

func isPhone(v any) bool {
	s, ok := v.(string)
	return ok && phonePattern.MatchString(s)
}

func isDate(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}

	_, err := time.Parse("2006-01-02", s)

	return err == nil
}
