// Copyright (c) 2024-2026, the Formwalk Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"strings"

	"github.com/formwalk/formwalk"
)

// IsQuestionVisible reports whether the question should currently be shown.
// Questions without visibility rules are always visible.
func (e *Engine) IsQuestionVisible(q *formwalk.Question, answers AnswerSet, all []formwalk.Question) bool {
	return e.visible(q.VisibilityRules, answers, all)
}

// IsPageVisible reports whether the page should currently be shown.
func (e *Engine) IsPageVisible(p *formwalk.Page, answers AnswerSet, all []formwalk.Question) bool {
	return e.visible(p.VisibilityRules, answers, all)
}

// VisibleQuestions filters questions down to the currently visible ones,
// preserving input order.
func (e *Engine) VisibleQuestions(questions []formwalk.Question, answers AnswerSet, all []formwalk.Question) []formwalk.Question {
	var out []formwalk.Question
	for i := range questions {
		if e.IsQuestionVisible(&questions[i], answers, all) {
			out = append(out, questions[i])
		}
	}

	return out
}

// VisiblePages filters pages down to the currently visible ones, preserving
// input order.
func (e *Engine) VisiblePages(pages []formwalk.Page, answers AnswerSet, all []formwalk.Question) []formwalk.Page {
	var out []formwalk.Page
	for i := range pages {
		if e.IsPageVisible(&pages[i], answers, all) {
			out = append(out, pages[i])
		}
	}

	return out
}

// visible evaluates visibility rules in list order and short-circuits on the
// first rule that fires: hide makes the target invisible, show makes it
// visible. When no rule fires the target is hidden iff any show rule is
// present, otherwise the default-open policy applies. This asymmetry allows
// "hidden unless a condition is met" without an explicit catch-all hide.
func (e *Engine) visible(rules []formwalk.VisibilityRule, answers AnswerSet, all []formwalk.Question) bool {
	if len(rules) == 0 {
		return true
	}

	hasShow := false
	for _, r := range rules {
		if r.Action == formwalk.ShowAction {
			hasShow = true
		}
	}

	for _, r := range rules {
		if !e.ruleFires(r, answers, all) {
			continue
		}

		return r.Action != formwalk.HideAction
	}

	return !hasShow
}

// ruleFires evaluates one rule's groups combined with GroupsLogic. A rule
// without groups never fires.
func (e *Engine) ruleFires(r formwalk.VisibilityRule, answers AnswerSet, all []formwalk.Question) bool {
	if len(r.Groups) == 0 {
		return false
	}

	if r.GroupsLogic == formwalk.OrLogic {
		for _, g := range r.Groups {
			if e.groupHolds(g, answers, all) {
				return true
			}
		}
		return false
	}

	for _, g := range r.Groups {
		if !e.groupHolds(g, answers, all) {
			return false
		}
	}

	return true
}

// groupHolds evaluates one group's conditions combined with its logic. A
// group without conditions never holds.
func (e *Engine) groupHolds(g formwalk.VisibilityGroup, answers AnswerSet, all []formwalk.Question) bool {
	if len(g.Conditions) == 0 {
		return false
	}

	if g.Logic == formwalk.OrLogic {
		for _, c := range g.Conditions {
			if e.conditionHolds(c, answers, all) {
				return true
			}
		}
		return false
	}

	for _, c := range g.Conditions {
		if !e.conditionHolds(c, answers, all) {
			return false
		}
	}

	return true
}

// conditionHolds evaluates a single condition against the referenced
// question's answer. Type mismatches and dangling references fail the
// condition, never the evaluation.
func (e *Engine) conditionHolds(c formwalk.VisibilityCondition, answers AnswerSet, all []formwalk.Question) bool {
	found := false
	for i := range all {
		if all[i].ID == c.QuestionID {
			found = true
			break
		}
	}
	if !found {
		e.warnf("visibility condition references unknown question %q", c.QuestionID)
		return false
	}

	answer := answers[c.QuestionID]

	switch c.Type {
	case formwalk.Answered:
		return answered(answer)

	case formwalk.NotAnswered:
		return !answered(answer)

	case formwalk.AnswerEquals:
		return valuesEqual(answer, c.Value)

	case formwalk.AnswerNotEquals:
		return !valuesEqual(answer, c.Value)

	case formwalk.AnswerContains:
		as, aok := answer.(string)
		vs, vok := c.Value.(string)
		if !aok || !vok {
			return false
		}
		return strings.Contains(strings.ToLower(as), strings.ToLower(vs))

	case formwalk.AnswerGreaterThan:
		an, aok := asNumber(answer)
		vn, vok := asNumber(c.Value)
		return aok && vok && an > vn

	case formwalk.AnswerLessThan:
		an, aok := asNumber(answer)
		vn, vok := asNumber(c.Value)
		return aok && vok && an < vn

	case formwalk.AnswerIncludes:
		needle, ok := c.Value.(string)
		if !ok || !isArray(answer) {
			return false
		}
		return memberOf(answer, needle)

	default:
		e.warnf("unknown visibility condition type %q", c.Type)
		return false
	}
}
