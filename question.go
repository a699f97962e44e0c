// Copyright (c) 2024-2026, the Formwalk Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package formwalk

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// QuestionType constants identify the closed set of question types.
const (
	TextQuestion       QuestionType = "text"
	NumberQuestion     QuestionType = "number"
	RadioQuestion      QuestionType = "radio"
	CheckboxQuestion   QuestionType = "checkbox"
	SelectQuestion     QuestionType = "select"
	DateQuestion       QuestionType = "date"
	EmailQuestion      QuestionType = "email"
	PhoneQuestion      QuestionType = "phone"
	ParallelGroup      QuestionType = "parallel-group"
	ResolutionQuestion QuestionType = "resolution"
)

type QuestionType string

// MaxParallelItems caps the repetition count of any parallel group.
const MaxParallelItems = 30

// Question defines a single survey question. Type determines how it is
// presented and which Settings variant it carries. Choice types (radio,
// checkbox, select) require Options. ParallelQuestions is only meaningful
// for parallel groups, ResolutionRules and DefaultResolution only for
// resolution questions.
type Question struct {
	ID                string           `json:"id" yaml:"id"`
	PageID            string           `json:"pageId" yaml:"page_id"`
	Type              QuestionType     `json:"type" yaml:"type"`
	Text              string           `json:"text" yaml:"text"`
	Description       string           `json:"description,omitempty" yaml:"description,omitempty"`
	Help              string           `json:"help,omitempty" yaml:"help,omitempty"`
	Options           []Option         `json:"options,omitempty" yaml:"options,omitempty"`
	Required          bool             `json:"required,omitempty" yaml:"required,omitempty"`
	Settings          QuestionSettings `json:"settings,omitempty" yaml:"settings,omitempty"`
	Validation        string           `json:"validation,omitempty" yaml:"validation,omitempty"`
	TransitionRules   []TransitionRule `json:"transitionRules,omitempty" yaml:"transition_rules,omitempty"`
	ParallelQuestions []string         `json:"parallelQuestions,omitempty" yaml:"parallel_questions,omitempty"`
	VisibilityRules   []VisibilityRule `json:"visibilityRules,omitempty" yaml:"visibility_rules,omitempty"`
	ResolutionRules   []ResolutionRule `json:"resolutionRules,omitempty" yaml:"resolution_rules,omitempty"`
	DefaultResolution string           `json:"defaultResolution,omitempty" yaml:"default_resolution,omitempty"`
}

// Option is one choice of a radio, checkbox or select question.
type Option struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// QuestionSettings is the closed union of per-type settings. Each question
// type that has settings contributes one variant; Kind reports the question
// type the variant belongs to.
type QuestionSettings interface {
	Kind() QuestionType
}

// TextSettings configures text questions.
type TextSettings struct {
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	MaxLength   int    `json:"maxLength,omitempty" yaml:"max_length,omitempty"`
}

func (*TextSettings) Kind() QuestionType { return TextQuestion }

// NumberSettings configures number questions.
type NumberSettings struct {
	Min     *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Integer bool     `json:"integer,omitempty" yaml:"integer,omitempty"`
}

func (*NumberSettings) Kind() QuestionType { return NumberQuestion }

// DateSettings configures date questions, bounds are ISO dates.
type DateSettings struct {
	Min string `json:"min,omitempty" yaml:"min,omitempty"`
	Max string `json:"max,omitempty" yaml:"max,omitempty"`
}

func (*DateSettings) Kind() QuestionType { return DateQuestion }

// PhoneSettings configures phone questions.
type PhoneSettings struct {
	DefaultRegion string `json:"defaultRegion,omitempty" yaml:"default_region,omitempty"`
}

func (*PhoneSettings) Kind() QuestionType { return PhoneQuestion }

// CheckboxSettings configures checkbox questions.
type CheckboxSettings struct {
	MinSelected int `json:"minSelected,omitempty" yaml:"min_selected,omitempty"`
	MaxSelected int `json:"maxSelected,omitempty" yaml:"max_selected,omitempty"`
}

func (*CheckboxSettings) Kind() QuestionType { return CheckboxQuestion }

// DisplayMode constants for parallel groups.
const (
	SequentialDisplay = "sequential"
	TabsDisplay       = "tabs"
)

// ParallelBranchSettings configures a parallel (repeating) group: the label
// used per repetition, the allowed repetition count range and how repetitions
// are presented.
type ParallelBranchSettings struct {
	SourceQuestionID string `json:"sourceQuestionId,omitempty" yaml:"source_question_id,omitempty"`
	ItemLabel        string `json:"itemLabel" yaml:"item_label"`
	MinItems         int    `json:"minItems" yaml:"min_items"`
	MaxItems         int    `json:"maxItems" yaml:"max_items"`
	DisplayMode      string `json:"displayMode,omitempty" yaml:"display_mode,omitempty"`
	CountLabel       string `json:"countLabel,omitempty" yaml:"count_label,omitempty"`
	CountDescription string `json:"countDescription,omitempty" yaml:"count_description,omitempty"`
	CountRequired    bool   `json:"countRequired,omitempty" yaml:"count_required,omitempty"`
}

func (*ParallelBranchSettings) Kind() QuestionType { return ParallelGroup }

// Validate enforces 1 <= MinItems <= MaxItems <= MaxParallelItems.
func (s *ParallelBranchSettings) Validate() error {
	if s.MinItems < 1 {
		return fmt.Errorf("minItems must be at least 1")
	}
	if s.MaxItems < s.MinItems {
		return fmt.Errorf("maxItems must not be below minItems")
	}
	if s.MaxItems > MaxParallelItems {
		return fmt.Errorf("maxItems must not exceed %d", MaxParallelItems)
	}

	return nil
}

// ClampCount forces n into the [MinItems, MaxItems] range.
func (s *ParallelBranchSettings) ClampCount(n int) int {
	if n < s.MinItems {
		return s.MinItems
	}
	if n > s.MaxItems {
		return s.MaxItems
	}

	return n
}

// ParallelSettings returns the parallel group settings of the question. When
// q is a parallel group without explicit settings a permissive default
// covering the full allowed range is returned.
func (q *Question) ParallelSettings() *ParallelBranchSettings {
	if s, ok := q.Settings.(*ParallelBranchSettings); ok {
		return s
	}

	return &ParallelBranchSettings{MinItems: 1, MaxItems: MaxParallelItems, DisplayMode: SequentialDisplay}
}

// IsChoice reports whether the question presents a fixed option list.
func (q *Question) IsChoice() bool {
	return q.Type == RadioQuestion || q.Type == CheckboxQuestion || q.Type == SelectQuestion
}

// Validate checks the question in isolation.
func (q *Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("id is required")
	}

	switch q.Type {
	case TextQuestion, NumberQuestion, RadioQuestion, CheckboxQuestion, SelectQuestion,
		DateQuestion, EmailQuestion, PhoneQuestion, ParallelGroup, ResolutionQuestion:
	default:
		return fmt.Errorf("unsupported question type %q", q.Type)
	}

	if q.IsChoice() && len(q.Options) == 0 {
		return fmt.Errorf("%s questions require options", q.Type)
	}

	if q.Settings != nil && q.Settings.Kind() != q.Type {
		return fmt.Errorf("settings are for %q questions", q.Settings.Kind())
	}

	if q.Type == ParallelGroup {
		if len(q.ParallelQuestions) == 0 {
			return fmt.Errorf("parallel groups require parallel questions")
		}
		err := q.ParallelSettings().Validate()
		if err != nil {
			return err
		}
	} else if len(q.ParallelQuestions) > 0 {
		return fmt.Errorf("only parallel groups may hold parallel questions")
	}

	if q.Type != ResolutionQuestion && len(q.ResolutionRules) > 0 {
		return fmt.Errorf("only resolution questions may hold resolution rules")
	}

	return nil
}

// emptySettings returns the settings variant for a question type, nil when
// the type has none.
func emptySettings(t QuestionType) QuestionSettings {
	switch t {
	case TextQuestion:
		return &TextSettings{}
	case NumberQuestion:
		return &NumberSettings{}
	case DateQuestion:
		return &DateSettings{}
	case PhoneQuestion:
		return &PhoneSettings{}
	case CheckboxQuestion:
		return &CheckboxSettings{}
	case ParallelGroup:
		return &ParallelBranchSettings{}
	default:
		return nil
	}
}

// questionDoc mirrors Question with the settings kept raw so the variant can
// be selected once the type is known.
type questionDoc struct {
	ID                string           `json:"id" yaml:"id"`
	PageID            string           `json:"pageId" yaml:"page_id"`
	Type              QuestionType     `json:"type" yaml:"type"`
	Text              string           `json:"text" yaml:"text"`
	Description       string           `json:"description" yaml:"description"`
	Help              string           `json:"help" yaml:"help"`
	Options           []Option         `json:"options" yaml:"options"`
	Required          bool             `json:"required" yaml:"required"`
	Validation        string           `json:"validation" yaml:"validation"`
	TransitionRules   []TransitionRule `json:"transitionRules" yaml:"transition_rules"`
	ParallelQuestions []string         `json:"parallelQuestions" yaml:"parallel_questions"`
	VisibilityRules   []VisibilityRule `json:"visibilityRules" yaml:"visibility_rules"`
	ResolutionRules   []ResolutionRule `json:"resolutionRules" yaml:"resolution_rules"`
	DefaultResolution string           `json:"defaultResolution" yaml:"default_resolution"`
}

func (d *questionDoc) question() Question {
	return Question{
		ID:                d.ID,
		PageID:            d.PageID,
		Type:              d.Type,
		Text:              d.Text,
		Description:       d.Description,
		Help:              d.Help,
		Options:           d.Options,
		Required:          d.Required,
		Validation:        d.Validation,
		TransitionRules:   d.TransitionRules,
		ParallelQuestions: d.ParallelQuestions,
		VisibilityRules:   d.VisibilityRules,
		ResolutionRules:   d.ResolutionRules,
		DefaultResolution: d.DefaultResolution,
	}
}

// UnmarshalYAML decodes a question, selecting the settings variant by type.
// Settings supplied for a type that has none are ignored.
func (q *Question) UnmarshalYAML(node *yaml.Node) error {
	var doc questionDoc
	err := node.Decode(&doc)
	if err != nil {
		return err
	}

	*q = doc.question()

	var raw struct {
		Settings yaml.Node `yaml:"settings"`
	}
	err = node.Decode(&raw)
	if err != nil {
		return err
	}

	if raw.Settings.Kind == 0 {
		return nil
	}

	s := emptySettings(doc.Type)
	if s == nil {
		return nil
	}

	err = raw.Settings.Decode(s)
	if err != nil {
		return err
	}
	q.Settings = s

	return nil
}

// UnmarshalJSON decodes a question, selecting the settings variant by type.
func (q *Question) UnmarshalJSON(data []byte) error {
	var doc questionDoc
	err := json.Unmarshal(data, &doc)
	if err != nil {
		return err
	}

	*q = doc.question()

	var raw struct {
		Settings json.RawMessage `json:"settings"`
	}
	err = json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	if len(raw.Settings) == 0 || string(raw.Settings) == "null" {
		return nil
	}

	s := emptySettings(doc.Type)
	if s == nil {
		return nil
	}

	err = json.Unmarshal(raw.Settings, s)
	if err != nil {
		return err
	}
	q.Settings = s

	return nil
}
