// Copyright (c) 2024-2026, the Formwalk Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package formwalk implements the survey document model for the formwalk
// branching engine. A survey is a set of pages holding typed questions;
// questions carry visibility rules, transition rules toward other questions,
// resolution rules producing a final outcome text, and parallel (repeating)
// groups whose sub-questions are answered once per repetition.
//
// The document is plain data: it is loaded from YAML or JSON and never
// mutated in place. Authoring operations (see authoring.go) and the
// evaluation engine (see the engine package) always return new values.
package formwalk

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Logger is used for diagnostics, no logging is done without one
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
}

// RenderEngine selects the template engine used for survey descriptions and
// resolution texts.
type RenderEngine string

const (
	GoRenderEngine  RenderEngine = "go"
	JetRenderEngine RenderEngine = "jet"
)

// Survey is a full survey version document. Pages order the flow, questions
// belong to pages via their PageID. The engine treats a Survey as a frozen
// snapshot for the duration of any evaluation.
type Survey struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Engine      RenderEngine `json:"engine,omitempty" yaml:"engine,omitempty"`
	Pages       []Page       `json:"pages" yaml:"pages"`
	Questions   []Question   `json:"questions" yaml:"questions"`
}

// Page groups questions. Questions reference their page through PageID and
// appear in the order they hold within Survey.Questions.
type Page struct {
	ID              string           `json:"id" yaml:"id"`
	Title           string           `json:"title" yaml:"title"`
	VisibilityRules []VisibilityRule `json:"visibilityRules,omitempty" yaml:"visibility_rules,omitempty"`
}

// LoadFile reads a YAML survey document from the file at path f.
func LoadFile(f string) (*Survey, error) {
	sb, err := os.ReadFile(f)
	if err != nil {
		return nil, err
	}

	return LoadBytes(sb)
}

// LoadReader reads a YAML survey document from r.
func LoadReader(r io.Reader) (*Survey, error) {
	sb, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return LoadBytes(sb)
}

// LoadBytes unmarshals sb as a YAML survey document and validates it.
// JSON documents load too since YAML is a superset.
func LoadBytes(sb []byte) (*Survey, error) {
	var s Survey
	err := yaml.Unmarshal(sb, &s)
	if err != nil {
		return nil, err
	}

	err = s.Validate()
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// Question returns the question with the given id.
func (s *Survey) Question(id string) (*Question, bool) {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i], true
		}
	}

	return nil, false
}

// Page returns the page with the given id.
func (s *Survey) Page(id string) (*Page, bool) {
	for i := range s.Pages {
		if s.Pages[i].ID == id {
			return &s.Pages[i], true
		}
	}

	return nil, false
}

// PageQuestions returns the questions assigned to the page with the given id,
// preserving document order. Questions that only exist inside a parallel
// group template are not included.
func (s *Survey) PageQuestions(pageID string) []Question {
	templates := s.templateQuestions()

	var qs []Question
	for _, q := range s.Questions {
		if q.PageID != pageID {
			continue
		}
		if _, ok := templates[q.ID]; ok {
			continue
		}
		qs = append(qs, q)
	}

	return qs
}

// templateQuestions returns the set of question ids that exist only as
// members of some parallel group's template.
func (s *Survey) templateQuestions() map[string]struct{} {
	set := map[string]struct{}{}
	for _, q := range s.Questions {
		for _, id := range q.ParallelQuestions {
			set[id] = struct{}{}
		}
	}

	return set
}

// Validate performs structural validation of the document: unique ids,
// known question types, options on choice questions, settings that match the
// question type, and page references that resolve.
func (s *Survey) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("survey name is required")
	}

	pages := map[string]struct{}{}
	for _, p := range s.Pages {
		if p.ID == "" {
			return fmt.Errorf("page without id")
		}
		if _, ok := pages[p.ID]; ok {
			return fmt.Errorf("duplicate page id %q", p.ID)
		}
		pages[p.ID] = struct{}{}
	}

	ids := map[string]struct{}{}
	for _, q := range s.Questions {
		if _, ok := ids[q.ID]; ok {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		ids[q.ID] = struct{}{}

		err := q.Validate()
		if err != nil {
			return fmt.Errorf("question %q: %w", q.ID, err)
		}

		if q.PageID != "" {
			if _, ok := pages[q.PageID]; !ok {
				return fmt.Errorf("question %q references unknown page %q", q.ID, q.PageID)
			}
		}
	}

	for _, q := range s.Questions {
		for _, child := range q.ParallelQuestions {
			if _, ok := ids[child]; !ok {
				return fmt.Errorf("parallel group %q references unknown question %q", q.ID, child)
			}
		}
	}

	return nil
}
