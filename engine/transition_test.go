// Copyright (c) 2024-2026, the Formwalk Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/formwalk/formwalk"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Transitions", func() {
	var eng *Engine

	page := []formwalk.Question{
		{ID: "q1", PageID: "p1", Type: formwalk.TextQuestion},
		{ID: "q2", PageID: "p1", Type: formwalk.RadioQuestion,
			Options: []formwalk.Option{{ID: "yes"}, {ID: "no"}},
			TransitionRules: []formwalk.TransitionRule{
				{ID: "r1", Answer: "yes", NextQuestionID: "q5"},
			},
		},
		{ID: "q3", PageID: "p1", Type: formwalk.TextQuestion},
		{ID: "q5", PageID: "p1", Type: formwalk.TextQuestion},
	}

	BeforeEach(func() {
		eng = New()
	})

	It("Should take the first matching rule", func() {
		next := eng.ResolveTransition(&page[1], AnswerSet{"q2": "yes"}, page)
		Expect(next).To(Equal("q5"))
	})

	It("Should fall back to the following sibling when no rule matches", func() {
		next := eng.ResolveTransition(&page[1], AnswerSet{"q2": "no"}, page)
		Expect(next).To(Equal("q3"))
	})

	It("Should end the page after the last sibling", func() {
		next := eng.ResolveTransition(&page[3], AnswerSet{}, page)
		Expect(next).To(Equal(""))
	})

	Describe("Rule conditions", func() {
		match := func(r formwalk.TransitionRule, answer any) bool {
			return New().transitionMatches(r, answer)
		}

		It("Should compare equality against the answer field by default", func() {
			r := formwalk.TransitionRule{Answer: "yes", NextQuestionID: "x"}
			Expect(match(r, "yes")).To(BeTrue())
			Expect(match(r, "no")).To(BeFalse())
		})

		It("Should support comparison conditions against the value field", func() {
			r := formwalk.TransitionRule{Condition: formwalk.GreaterThanCondition, Value: 10, NextQuestionID: "x"}
			Expect(match(r, 15)).To(BeTrue())
			Expect(match(r, 5)).To(BeFalse())

			r.Condition = formwalk.LessThanCondition
			Expect(match(r, 5)).To(BeTrue())

			r = formwalk.TransitionRule{Condition: formwalk.NotEqualsCondition, Value: "no", NextQuestionID: "x"}
			Expect(match(r, "yes")).To(BeTrue())
			Expect(match(r, "no")).To(BeFalse())

			r = formwalk.TransitionRule{Condition: formwalk.ContainsCondition, Value: "ell", NextQuestionID: "x"}
			Expect(match(r, "Hello")).To(BeTrue())
			Expect(match(r, 5)).To(BeFalse())
		})

		It("Should match anything on default rules", func() {
			r := formwalk.TransitionRule{Default: true, NextQuestionID: "x"}
			Expect(match(r, nil)).To(BeTrue())
			Expect(match(r, "whatever")).To(BeTrue())
		})
	})

	Describe("WithDefaultTransitions", func() {
		It("Should synthesize default rules toward the next sibling", func() {
			out := eng.WithDefaultTransitions(page)

			Expect(out[0].TransitionRules).To(HaveLen(1))
			Expect(out[0].TransitionRules[0].Default).To(BeTrue())
			Expect(out[0].TransitionRules[0].NextQuestionID).To(Equal("q2"))

			// existing rules are kept as they are
			Expect(out[1].TransitionRules).To(Equal(page[1].TransitionRules))

			// the last question has no following sibling
			Expect(out[3].TransitionRules).To(BeEmpty())
		})

		It("Should be idempotent", func() {
			once := eng.WithDefaultTransitions(page)
			twice := eng.WithDefaultTransitions(once)

			Expect(twice).To(Equal(once))
		})

		It("Should not give resolution questions outgoing edges", func() {
			qs := []formwalk.Question{
				{ID: "r", PageID: "p1", Type: formwalk.ResolutionQuestion},
				{ID: "q", PageID: "p1", Type: formwalk.TextQuestion},
			}

			out := eng.WithDefaultTransitions(qs)
			Expect(out[0].TransitionRules).To(BeEmpty())
		})

		It("Should not cross page boundaries", func() {
			qs := []formwalk.Question{
				{ID: "a", PageID: "p1", Type: formwalk.TextQuestion},
				{ID: "b", PageID: "p2", Type: formwalk.TextQuestion},
			}

			out := eng.WithDefaultTransitions(qs)
			Expect(out[0].TransitionRules).To(BeEmpty())
		})
	})
})
