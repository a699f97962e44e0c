// Copyright (c) 2024-2026, the Formwalk Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/formwalk/formwalk"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Resolution", func() {
	var eng *Engine

	BeforeEach(func() {
		eng = New()
	})

	It("Should return the default for an empty rule list", func() {
		Expect(eng.EvaluateResolution(nil, "Low", AnswerSet{"q1": 100})).To(Equal("Low"))
	})

	It("Should return the first matching rule's text", func() {
		rules := []formwalk.ResolutionRule{
			{ID: "r1", Logic: formwalk.AndLogic, ResultText: "High", Conditions: []formwalk.ResolutionCondition{
				{QuestionID: "q1", Operator: ">", Value: 10},
			}},
		}

		Expect(eng.EvaluateResolution(rules, "Low", AnswerSet{"q1": 15})).To(Equal("High"))
		Expect(eng.EvaluateResolution(rules, "Low", AnswerSet{"q1": 5})).To(Equal("Low"))
	})

	It("Should stop at the first match even when later rules also match", func() {
		rules := []formwalk.ResolutionRule{
			{ID: "r1", Logic: formwalk.AndLogic, ResultText: "First", Conditions: []formwalk.ResolutionCondition{
				{QuestionID: "q1", Operator: "==", Value: "x"},
			}},
			{ID: "r2", Logic: formwalk.AndLogic, ResultText: "Second", Conditions: []formwalk.ResolutionCondition{
				{QuestionID: "q1", Operator: "!=", Value: "y"},
			}},
		}

		Expect(eng.EvaluateResolution(rules, "Default", AnswerSet{"q1": "x"})).To(Equal("First"))
	})

	It("Should combine conditions with OR logic", func() {
		rules := []formwalk.ResolutionRule{
			{ID: "r1", Logic: formwalk.OrLogic, ResultText: "Either", Conditions: []formwalk.ResolutionCondition{
				{QuestionID: "q1", Operator: "==", Value: "a"},
				{QuestionID: "q2", Operator: "==", Value: "b"},
			}},
		}

		Expect(eng.EvaluateResolution(rules, "Neither", AnswerSet{"q2": "b"})).To(Equal("Either"))
		Expect(eng.EvaluateResolution(rules, "Neither", AnswerSet{})).To(Equal("Neither"))
	})

	It("Should coerce numeric strings for comparison operators", func() {
		rules := []formwalk.ResolutionRule{
			{ID: "r1", Logic: formwalk.AndLogic, ResultText: "High", Conditions: []formwalk.ResolutionCondition{
				{QuestionID: "q1", Operator: ">", Value: "10"},
			}},
		}

		Expect(eng.EvaluateResolution(rules, "Low", AnswerSet{"q1": "15"})).To(Equal("High"))
		Expect(eng.EvaluateResolution(rules, "Low", AnswerSet{"q1": "nope"})).To(Equal("Low"))
	})

	It("Should handle includes on arrays and strings", func() {
		rules := []formwalk.ResolutionRule{
			{ID: "r1", Logic: formwalk.AndLogic, ResultText: "Yes", Conditions: []formwalk.ResolutionCondition{
				{QuestionID: "q1", Operator: "includes", Value: "b"},
			}},
		}

		Expect(eng.EvaluateResolution(rules, "No", AnswerSet{"q1": []string{"a", "b"}})).To(Equal("Yes"))
		Expect(eng.EvaluateResolution(rules, "No", AnswerSet{"q1": "abc"})).To(Equal("Yes"))
		Expect(eng.EvaluateResolution(rules, "No", AnswerSet{"q1": 42})).To(Equal("No"))
	})

	It("Should never fire rules without conditions", func() {
		rules := []formwalk.ResolutionRule{
			{ID: "r1", Logic: formwalk.AndLogic, ResultText: "Empty"},
		}

		Expect(eng.EvaluateResolution(rules, "Default", AnswerSet{})).To(Equal("Default"))
	})

	Describe("RenderResolution", func() {
		It("Should render go templates with sprig functions", func() {
			out, err := eng.RenderResolution(`Result: {{ .q1 | upper }}`, AnswerSet{"q1": "high"}, formwalk.GoRenderEngine)
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal("Result: HIGH"))
		})

		It("Should render jet templates", func() {
			out, err := eng.RenderResolution(`Result: {{ q1 }}`, AnswerSet{"q1": "high"}, formwalk.JetRenderEngine)
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal("Result: high"))
		})

		It("Should error on invalid templates", func() {
			_, err := eng.RenderResolution(`{{ broken`, AnswerSet{}, formwalk.GoRenderEngine)
			Expect(err).To(HaveOccurred())
		})
	})
})
