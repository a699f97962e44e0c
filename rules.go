// Copyright (c) 2024-2026, the Formwalk Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package formwalk

// Logic combines conditions or groups.
type Logic string

const (
	AndLogic Logic = "AND"
	OrLogic  Logic = "OR"
)

// RuleAction is what a firing visibility rule does to its target.
type RuleAction string

const (
	ShowAction RuleAction = "show"
	HideAction RuleAction = "hide"
)

// ConditionType identifies how a visibility condition inspects an answer.
type ConditionType string

const (
	Answered          ConditionType = "answered"
	NotAnswered       ConditionType = "not_answered"
	AnswerEquals      ConditionType = "answer_equals"
	AnswerNotEquals   ConditionType = "answer_not_equals"
	AnswerContains    ConditionType = "answer_contains"
	AnswerGreaterThan ConditionType = "answer_greater_than"
	AnswerLessThan    ConditionType = "answer_less_than"
	AnswerIncludes    ConditionType = "answer_includes"
)

// VisibilityCondition inspects the answer of one question. Value is unused
// for the answered and not_answered types.
type VisibilityCondition struct {
	Type       ConditionType `json:"type" yaml:"type"`
	QuestionID string        `json:"questionId" yaml:"question_id"`
	Value      any           `json:"value,omitempty" yaml:"value,omitempty"`
}

// VisibilityGroup combines conditions with AND or OR logic.
type VisibilityGroup struct {
	ID         string                `json:"id" yaml:"id"`
	Logic      Logic                 `json:"logic" yaml:"logic"`
	Conditions []VisibilityCondition `json:"conditions" yaml:"conditions"`
}

// VisibilityRule shows or hides its target when its groups, combined with
// GroupsLogic, evaluate true. Rules are evaluated in list order and the
// first firing rule wins.
type VisibilityRule struct {
	ID          string            `json:"id" yaml:"id"`
	Action      RuleAction        `json:"action" yaml:"action"`
	Groups      []VisibilityGroup `json:"groups" yaml:"groups"`
	GroupsLogic Logic             `json:"groupsLogic" yaml:"groups_logic"`
}

// TransitionCondition constants select how a transition rule compares the
// question's answer against Value. An empty condition means equality against
// the rule's Answer field.
const (
	EqualsCondition      = "equals"
	NotEqualsCondition   = "not_equals"
	GreaterThanCondition = "greater_than"
	LessThanCondition    = "less_than"
	ContainsCondition    = "contains"
)

// TransitionRule selects the next question when the source question's own
// answer matches. Default marks the synthesized fallback edge toward the
// next sibling on the page, it matches any answer.
type TransitionRule struct {
	ID             string `json:"id" yaml:"id"`
	Answer         any    `json:"answer,omitempty" yaml:"answer,omitempty"`
	NextQuestionID string `json:"nextQuestionId" yaml:"next_question_id"`
	Condition      string `json:"condition,omitempty" yaml:"condition,omitempty"`
	Value          any    `json:"value,omitempty" yaml:"value,omitempty"`
	Default        bool   `json:"default,omitempty" yaml:"default,omitempty"`
}

// ResolutionCondition inspects one answer with a comparison operator, one of
// ==, !=, >, < or includes.
type ResolutionCondition struct {
	QuestionID string `json:"questionId" yaml:"question_id"`
	Operator   string `json:"operator" yaml:"operator"`
	Value      any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// ResolutionRule produces ResultText when its conditions, combined with
// Logic, hold. Rules are evaluated in list order, the first match wins.
type ResolutionRule struct {
	ID         string                `json:"id" yaml:"id"`
	Conditions []ResolutionCondition `json:"conditions" yaml:"conditions"`
	Logic      Logic                 `json:"logic" yaml:"logic"`
	ResultText string                `json:"resultText" yaml:"result_text"`
}
