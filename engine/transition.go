// Copyright (c) 2024-2026, the Formwalk Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"slices"
	"strings"

	"github.com/formwalk/formwalk"
)

// ResolveTransition returns the id of the question that follows q given the
// current answers, or the empty string when the flow ends at q. The first
// transition rule accepting q's own answer wins; when no rule matches the
// linear default applies: the question following q in siblings, the ordered
// question list of q's page.
func (e *Engine) ResolveTransition(q *formwalk.Question, answers AnswerSet, siblings []formwalk.Question) string {
	answer := answers[q.ID]

	for _, r := range q.TransitionRules {
		if e.transitionMatches(r, answer) {
			return r.NextQuestionID
		}
	}

	return nextSibling(q.ID, siblings)
}

// transitionMatches reports whether a rule accepts the answer. Default rules
// accept anything. Rules with a Condition compare against the rule's Value,
// everything else is equality against the rule's Answer field.
func (e *Engine) transitionMatches(r formwalk.TransitionRule, answer any) bool {
	if r.Default {
		return true
	}

	switch r.Condition {
	case "", formwalk.EqualsCondition:
		if r.Condition == "" {
			return valuesEqual(answer, r.Answer)
		}
		return valuesEqual(answer, r.Value)

	case formwalk.NotEqualsCondition:
		return !valuesEqual(answer, r.Value)

	case formwalk.GreaterThanCondition:
		an, aok := coerceNumber(answer)
		vn, vok := coerceNumber(r.Value)
		return aok && vok && an > vn

	case formwalk.LessThanCondition:
		an, aok := coerceNumber(answer)
		vn, vok := coerceNumber(r.Value)
		return aok && vok && an < vn

	case formwalk.ContainsCondition:
		as, aok := answer.(string)
		vs, vok := r.Value.(string)
		if !aok || !vok {
			return false
		}
		return strings.Contains(strings.ToLower(as), strings.ToLower(vs))

	default:
		e.warnf("unknown transition condition %q on rule %q", r.Condition, r.ID)
		return false
	}
}

// nextSibling returns the id of the question following id within the same
// page, empty when id is last or absent.
func nextSibling(id string, siblings []formwalk.Question) string {
	for i := range siblings {
		if siblings[i].ID != id {
			continue
		}

		for j := i + 1; j < len(siblings); j++ {
			if siblings[j].PageID == siblings[i].PageID {
				return siblings[j].ID
			}
		}

		return ""
	}

	return ""
}

// WithDefaultTransitions returns a copy of questions where every question
// that has no transition rules and a following sibling on its page carries a
// synthesized default rule toward that sibling. Consumers such as canvas
// edge builders then never need a separate no-rule branch. The operation is
// idempotent. Resolution questions are terminal and are left alone.
func (e *Engine) WithDefaultTransitions(questions []formwalk.Question) []formwalk.Question {
	out := slices.Clone(questions)

	for i := range out {
		q := &out[i]

		if len(q.TransitionRules) > 0 || q.Type == formwalk.ResolutionQuestion {
			continue
		}

		next := nextSibling(q.ID, questions)
		if next == "" {
			continue
		}

		q.TransitionRules = []formwalk.TransitionRule{{
			ID:             q.ID + "-default",
			NextQuestionID: next,
			Default:        true,
		}}
	}

	return out
}
