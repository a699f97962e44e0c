// Copyright (c) 2024-2026, the Formwalk Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/CloudyKit/jet/v6"
	"github.com/Masterminds/sprig/v3"
	"github.com/formwalk/formwalk"
)

// EvaluateResolution walks rules in list order and returns the result text
// of the first rule whose conditions, combined with the rule's logic, hold.
// When no rule matches, defaultText is returned.
func (e *Engine) EvaluateResolution(rules []formwalk.ResolutionRule, defaultText string, answers AnswerSet) string {
	for _, r := range rules {
		if e.resolutionRuleHolds(r, answers) {
			return r.ResultText
		}
	}

	return defaultText
}

// resolutionRuleHolds evaluates a rule's conditions with AND or OR logic. A
// rule without conditions never holds.
func (e *Engine) resolutionRuleHolds(r formwalk.ResolutionRule, answers AnswerSet) bool {
	if len(r.Conditions) == 0 {
		return false
	}

	if r.Logic == formwalk.OrLogic {
		for _, c := range r.Conditions {
			if e.resolutionConditionHolds(c, answers) {
				return true
			}
		}
		return false
	}

	for _, c := range r.Conditions {
		if !e.resolutionConditionHolds(c, answers) {
			return false
		}
	}

	return true
}

// resolutionConditionHolds compares one answer using the condition operator.
// The numeric operators coerce both sides to numbers and fail closed when
// either side is not numeric. includes accepts array answers (membership)
// and string answers (substring).
func (e *Engine) resolutionConditionHolds(c formwalk.ResolutionCondition, answers AnswerSet) bool {
	answer := answers[c.QuestionID]

	switch c.Operator {
	case "==":
		return valuesEqual(answer, c.Value)

	case "!=":
		return !valuesEqual(answer, c.Value)

	case ">":
		an, aok := coerceNumber(answer)
		vn, vok := coerceNumber(c.Value)
		return aok && vok && an > vn

	case "<":
		an, aok := coerceNumber(answer)
		vn, vok := coerceNumber(c.Value)
		return aok && vok && an < vn

	case "includes":
		needle, ok := c.Value.(string)
		if !ok {
			return false
		}
		if s, ok := answer.(string); ok {
			return strings.Contains(s, needle)
		}
		if isArray(answer) {
			return memberOf(answer, needle)
		}
		return false

	default:
		e.warnf("unknown resolution operator %q for question %q", c.Operator, c.QuestionID)
		return false
	}
}

// RenderResolution renders a resolution text as a template with the answers
// available as data, using the go text/template engine with Sprig functions
// or the Jet engine depending on the survey's configured render engine.
func (e *Engine) RenderResolution(text string, answers AnswerSet, engine formwalk.RenderEngine) (string, error) {
	switch engine {
	case formwalk.JetRenderEngine:
		return renderJet("resolution", text, map[string]any(answers))
	default:
		return renderGoTemplate("resolution", text, map[string]any(answers))
	}
}

func renderGoTemplate(name string, tmpl string, data any) (string, error) {
	t, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parsing template %v failed: %w", name, err)
	}

	buf := bytes.NewBuffer([]byte{})
	err = t.Execute(buf, data)
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

func renderJet(name string, tmpl string, data map[string]any) (string, error) {
	loader := jet.NewInMemLoader()
	loader.Set(name, tmpl)

	set := jet.NewSet(loader, jet.WithSafeWriter(nil))

	t, err := set.GetTemplate(name)
	if err != nil {
		return "", fmt.Errorf("parsing template %v failed: %w", name, err)
	}

	vars := make(jet.VarMap)
	for k, v := range data {
		vars.Set(k, v)
	}

	buf := bytes.NewBuffer([]byte{})
	err = t.Execute(buf, vars, data)
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}
