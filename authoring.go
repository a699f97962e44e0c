// Copyright (c) 2024-2026, the Formwalk Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package formwalk

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Guard errors surfaced to the authoring UI when a transition would be
// illegal. These are deliberately user-facing, an illegal edge indicates an
// authoring mistake that must not be silently swallowed.
var (
	// ErrTemplateTarget rejects transitions into a question that only
	// exists inside a parallel group's template.
	ErrTemplateTarget = errors.New("cannot transition into a repeating group question")

	// ErrSelfLoop rejects a transition from a question to itself.
	ErrSelfLoop = errors.New("cannot transition to the same question")

	// ErrDuplicateEdge rejects a second transition between the same pair.
	ErrDuplicateEdge = errors.New("transition already exists")
)

// Connect adds a transition edge from question fromID to question toID and
// returns the updated survey. The receiver survey is not modified. Targets
// inside a parallel group template, self loops and duplicate edges are
// refused.
func Connect(s Survey, fromID, toID string) (Survey, error) {
	if fromID == toID {
		return s, ErrSelfLoop
	}

	from, ok := s.Question(fromID)
	if !ok {
		return s, fmt.Errorf("unknown question %q", fromID)
	}
	if _, ok := s.Question(toID); !ok {
		return s, fmt.Errorf("unknown question %q", toID)
	}

	if _, ok := s.templateQuestions()[toID]; ok {
		return s, ErrTemplateTarget
	}

	for _, r := range from.TransitionRules {
		if r.NextQuestionID == toID {
			return s, ErrDuplicateEdge
		}
	}

	return updateQuestion(s, fromID, func(q Question) Question {
		q.TransitionRules = append(slices.Clone(q.TransitionRules), TransitionRule{
			ID:             uuid.NewString(),
			NextQuestionID: toID,
		})
		return q
	}), nil
}

// AddTransitionRule appends a conditional transition rule to the question
// with the given id, minting a rule id when none is set. The same guards as
// Connect apply except that multiple differently-conditioned edges to the
// same target are refused too, edge insertion is idempotent per target.
func AddTransitionRule(s Survey, questionID string, rule TransitionRule) (Survey, error) {
	if rule.NextQuestionID == questionID {
		return s, ErrSelfLoop
	}

	from, ok := s.Question(questionID)
	if !ok {
		return s, fmt.Errorf("unknown question %q", questionID)
	}
	if _, ok := s.Question(rule.NextQuestionID); !ok {
		return s, fmt.Errorf("unknown question %q", rule.NextQuestionID)
	}

	if _, ok := s.templateQuestions()[rule.NextQuestionID]; ok {
		return s, ErrTemplateTarget
	}

	for _, r := range from.TransitionRules {
		if r.NextQuestionID == rule.NextQuestionID {
			return s, ErrDuplicateEdge
		}
	}

	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}

	return updateQuestion(s, questionID, func(q Question) Question {
		q.TransitionRules = append(slices.Clone(q.TransitionRules), rule)
		return q
	}), nil
}

// DeleteQuestion removes the question with the given id and returns the
// updated survey. Deleting a parallel group cascades over its template
// questions, and transition rules pointing at any removed question are
// stripped from the remaining questions.
func DeleteQuestion(s Survey, id string) Survey {
	removed := map[string]struct{}{id: {}}

	if q, ok := s.Question(id); ok && q.Type == ParallelGroup {
		for _, child := range q.ParallelQuestions {
			removed[child] = struct{}{}
		}
	}

	out := s
	out.Questions = nil
	for _, q := range s.Questions {
		if _, gone := removed[q.ID]; gone {
			continue
		}

		var rules []TransitionRule
		for _, r := range q.TransitionRules {
			if _, gone := removed[r.NextQuestionID]; gone {
				continue
			}
			rules = append(rules, r)
		}
		q.TransitionRules = rules

		q.ParallelQuestions = slices.DeleteFunc(slices.Clone(q.ParallelQuestions), func(child string) bool {
			_, gone := removed[child]
			return gone
		})

		out.Questions = append(out.Questions, q)
	}

	return out
}

// updateQuestion returns a survey with fn applied to the question with the
// given id, all slices are copied so the input survey stays untouched.
func updateQuestion(s Survey, id string, fn func(Question) Question) Survey {
	out := s
	out.Questions = slices.Clone(s.Questions)
	for i, q := range out.Questions {
		if q.ID == id {
			out.Questions[i] = fn(q)
			break
		}
	}

	return out
}
