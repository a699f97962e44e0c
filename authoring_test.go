// Copyright (c) 2024-2026, the Formwalk Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package formwalk

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Authoring", func() {
	var survey Survey

	BeforeEach(func() {
		survey = Survey{
			Name:  "test",
			Pages: []Page{{ID: "p1"}},
			Questions: []Question{
				{ID: "q1", PageID: "p1", Type: TextQuestion},
				{ID: "q2", PageID: "p1", Type: TextQuestion},
				{ID: "pets", PageID: "p1", Type: ParallelGroup, ParallelQuestions: []string{"petname"},
					Settings: &ParallelBranchSettings{MinItems: 1, MaxItems: 5}},
				{ID: "petname", PageID: "p1", Type: TextQuestion},
			},
		}
	})

	Describe("Connect", func() {
		It("Should add an unconditional edge with a minted rule id", func() {
			out, err := Connect(survey, "q1", "q2")
			Expect(err).ToNot(HaveOccurred())

			q, ok := out.Question("q1")
			Expect(ok).To(BeTrue())
			Expect(q.TransitionRules).To(HaveLen(1))
			Expect(q.TransitionRules[0].ID).ToNot(BeEmpty())
			Expect(q.TransitionRules[0].NextQuestionID).To(Equal("q2"))
		})

		It("Should not modify the input survey", func() {
			_, err := Connect(survey, "q1", "q2")
			Expect(err).ToNot(HaveOccurred())

			q, ok := survey.Question("q1")
			Expect(ok).To(BeTrue())
			Expect(q.TransitionRules).To(BeEmpty())
		})

		It("Should refuse edges into repeating group templates", func() {
			_, err := Connect(survey, "q1", "petname")
			Expect(err).To(MatchError(ErrTemplateTarget))
		})

		It("Should refuse self loops", func() {
			_, err := Connect(survey, "q1", "q1")
			Expect(err).To(MatchError(ErrSelfLoop))
		})

		It("Should refuse duplicate edges", func() {
			out, err := Connect(survey, "q1", "q2")
			Expect(err).ToNot(HaveOccurred())

			_, err = Connect(out, "q1", "q2")
			Expect(err).To(MatchError(ErrDuplicateEdge))
		})

		It("Should refuse unknown endpoints", func() {
			_, err := Connect(survey, "q1", "nope")
			Expect(err).To(MatchError(ContainSubstring("unknown question")))

			_, err = Connect(survey, "nope", "q2")
			Expect(err).To(MatchError(ContainSubstring("unknown question")))
		})
	})

	Describe("AddTransitionRule", func() {
		It("Should add a conditional edge", func() {
			out, err := AddTransitionRule(survey, "q1", TransitionRule{
				Condition:      EqualsCondition,
				Value:          "yes",
				NextQuestionID: "q2",
			})
			Expect(err).ToNot(HaveOccurred())

			q, ok := out.Question("q1")
			Expect(ok).To(BeTrue())
			Expect(q.TransitionRules).To(HaveLen(1))
			Expect(q.TransitionRules[0].ID).ToNot(BeEmpty())
			Expect(q.TransitionRules[0].Condition).To(Equal(EqualsCondition))
		})

		It("Should keep a caller supplied rule id", func() {
			out, err := AddTransitionRule(survey, "q1", TransitionRule{
				ID:             "r1",
				NextQuestionID: "q2",
			})
			Expect(err).ToNot(HaveOccurred())

			q, _ := out.Question("q1")
			Expect(q.TransitionRules[0].ID).To(Equal("r1"))
		})

		It("Should refuse a second edge to the same target", func() {
			out, err := AddTransitionRule(survey, "q1", TransitionRule{Condition: EqualsCondition, Value: "a", NextQuestionID: "q2"})
			Expect(err).ToNot(HaveOccurred())

			_, err = AddTransitionRule(out, "q1", TransitionRule{Condition: EqualsCondition, Value: "b", NextQuestionID: "q2"})
			Expect(err).To(MatchError(ErrDuplicateEdge))
		})
	})

	Describe("DeleteQuestion", func() {
		It("Should remove the question and strip rules pointing at it", func() {
			out, err := Connect(survey, "q1", "q2")
			Expect(err).ToNot(HaveOccurred())

			out = DeleteQuestion(out, "q2")

			_, ok := out.Question("q2")
			Expect(ok).To(BeFalse())

			q, _ := out.Question("q1")
			Expect(q.TransitionRules).To(BeEmpty())
		})

		It("Should cascade over parallel group templates", func() {
			out := DeleteQuestion(survey, "pets")

			_, ok := out.Question("pets")
			Expect(ok).To(BeFalse())
			_, ok = out.Question("petname")
			Expect(ok).To(BeFalse())
		})

		It("Should drop deleted children from surviving group templates", func() {
			out := DeleteQuestion(survey, "petname")

			q, ok := out.Question("pets")
			Expect(ok).To(BeTrue())
			Expect(q.ParallelQuestions).To(BeEmpty())
		})

		It("Should leave unrelated questions alone", func() {
			out := DeleteQuestion(survey, "q2")
			Expect(out.Questions).To(HaveLen(3))

			_, ok := out.Question("q1")
			Expect(ok).To(BeTrue())
		})
	})
})
