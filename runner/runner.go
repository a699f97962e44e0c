// Copyright (c) 2024-2026, the Formwalk Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package runner presents a survey interactively on a terminal. It walks the
// transition graph computed by the engine package, prompts for each visible
// question with a type-appropriate prompt, loops over the repetitions of
// parallel groups including nested ones, and finishes by evaluating and
// displaying the survey's resolution text.
package runner

//go:generate mockgen -source runner.go -destination mock_test.go -package runner -typed

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/formwalk/formwalk"
	"github.com/formwalk/formwalk/engine"
	"github.com/formwalk/formwalk/internal/validator"
)

// surveyor abstracts the survey library for testability.
type surveyor interface {
	AskOne(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error
}

type defaultSurveyor struct{}

func (d *defaultSurveyor) AskOne(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
	return survey.AskOne(p, response, opts...)
}

type runOption func(*session)

func withSurveyor(s surveyor) runOption {
	return func(r *session) {
		r.surveyor = s
	}
}

func withIsTerminal(f func() bool) runOption {
	return func(r *session) {
		r.isTerminal = f
	}
}

func withOutput(w io.Writer) runOption {
	return func(r *session) {
		r.output = w
	}
}

// WithLogger sets the logger handed to the evaluation engine.
func WithLogger(log formwalk.Logger) runOption {
	return func(r *session) {
		r.eng = engine.New(engine.WithLogger(log))
	}
}

// Result holds the outcome of a completed session.
type Result struct {
	// Answers is the final answer snapshot, flat keys plus hierarchical
	// group state.
	Answers engine.AnswerSet
	// Resolution is the rendered outcome text, empty when the flow ended
	// without reaching a resolution question.
	Resolution string
}

// session holds the state of one interactive run. The answer snapshot is
// replaced on every write, never mutated.
type session struct {
	doc        *formwalk.Survey
	eng        *engine.Engine
	env        map[string]any
	answers    engine.AnswerSet
	questions  []formwalk.Question
	counts     map[string]int
	visits     map[string]int
	surveyor   surveyor
	isTerminal func() bool
	output     io.Writer
}

// Run presents the survey interactively and returns the collected answers
// and resolution. It requires a valid terminal. The env map provides
// template variables for descriptions and resolution texts.
func Run(doc *formwalk.Survey, env map[string]any, opts ...runOption) (*Result, error) {
	r := &session{
		doc:        doc,
		eng:        engine.New(),
		env:        env,
		answers:    engine.AnswerSet{},
		counts:     map[string]int{},
		visits:     map[string]int{},
		surveyor:   &defaultSurveyor{},
		isTerminal: isTerminal,
		output:     os.Stdout,
	}

	for _, o := range opts {
		o(r)
	}

	if !r.isTerminal() {
		return nil, fmt.Errorf("can only run surveys on a valid terminal")
	}

	if len(doc.Questions) == 0 {
		return nil, fmt.Errorf("no questions defined")
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("no pages defined")
	}

	var all []formwalk.Question
	for _, p := range doc.Pages {
		all = append(all, doc.PageQuestions(p.ID)...)
	}
	r.questions = r.eng.WithDefaultTransitions(all)

	if doc.Description != "" {
		d, err := renderTemplate(doc.Description, env)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(r.output, d)
		fmt.Fprintln(r.output)
	}

	r.surveyor.AskOne(&survey.Input{Message: "Press enter to start"}, &struct{}{})

	resolution, err := r.walk()
	if err != nil {
		return nil, err
	}

	return &Result{Answers: r.answers, Resolution: resolution}, nil
}

// walk follows the transition graph from the first visible question until a
// resolution question or the end of the last page is reached.
func (r *session) walk() (string, error) {
	cur := r.firstQuestion(0)

	for cur != nil {
		r.visits[cur.ID]++
		if r.visits[cur.ID] > len(r.questions) {
			return "", fmt.Errorf("transition loop detected at question %q", cur.ID)
		}

		visible := r.eng.IsQuestionVisible(cur, r.answers, r.doc.Questions)

		if visible {
			if cur.Type == formwalk.ResolutionQuestion {
				return r.finish(cur)
			}

			err := r.askQuestion(cur)
			if err != nil {
				return "", err
			}
		}

		next := ""
		if visible {
			next = r.eng.ResolveTransition(cur, r.answers, r.pageQuestions(cur.PageID))
		} else {
			// hidden questions do not steer, take the linear path
			next = r.nextSiblingID(cur)
		}

		if next == "" {
			cur = r.firstQuestion(r.pageIndex(cur.PageID) + 1)
			continue
		}

		cur = r.question(next)
	}

	return "", nil
}

// firstQuestion returns the first visible question on the first visible
// page at or after page index from, nil when the survey is exhausted.
func (r *session) firstQuestion(from int) *formwalk.Question {
	for i := from; i < len(r.doc.Pages); i++ {
		p := &r.doc.Pages[i]
		if !r.eng.IsPageVisible(p, r.answers, r.doc.Questions) {
			continue
		}

		qs := r.pageQuestions(p.ID)
		if len(qs) > 0 {
			return r.question(qs[0].ID)
		}
	}

	return nil
}

func (r *session) pageQuestions(pageID string) []formwalk.Question {
	var qs []formwalk.Question
	for _, q := range r.questions {
		if q.PageID == pageID {
			qs = append(qs, q)
		}
	}

	return qs
}

func (r *session) pageIndex(pageID string) int {
	for i := range r.doc.Pages {
		if r.doc.Pages[i].ID == pageID {
			return i
		}
	}

	return len(r.doc.Pages)
}

func (r *session) question(id string) *formwalk.Question {
	for i := range r.questions {
		if r.questions[i].ID == id {
			return &r.questions[i]
		}
	}

	return nil
}

func (r *session) nextSiblingID(q *formwalk.Question) string {
	qs := r.pageQuestions(q.PageID)
	for i := range qs {
		if qs[i].ID == q.ID && i+1 < len(qs) {
			return qs[i+1].ID
		}
	}

	return ""
}

// askQuestion collects the answer for one top-level question.
func (r *session) askQuestion(q *formwalk.Question) error {
	if q.Type == formwalk.ParallelGroup {
		return r.askGroup(nil, q)
	}

	val, err := r.askValue(q)
	if err != nil {
		return err
	}

	r.answers = r.answers.Set(q.ID, val)

	return nil
}

// askGroup collects a parallel group: the repetition count once, then every
// child question per repetition. path addresses the ancestor repetitions
// when the group is nested, nil for top-level groups.
func (r *session) askGroup(path engine.GroupPath, group *formwalk.Question) error {
	settings := group.ParallelSettings()

	count, asked := r.counts[group.ID]
	if !asked {
		var err error
		count, err = r.askCount(group, settings)
		if err != nil {
			return err
		}
		r.counts[group.ID] = count

		if len(path) == 0 {
			r.answers = r.eng.WriteGroupCount(group, count, r.answers)
		} else {
			// a nested group's count is global across the ancestor
			// repetitions, it is asked once and propagated
			var chain []*formwalk.Question
			for _, step := range path {
				chain = append(chain, step.Group)
			}
			r.answers = r.eng.WriteNestedGroupCount(chain, group, count, r.answers)
		}
	}

	for i := 0; i < count; i++ {
		label := settings.ItemLabel
		if label == "" {
			label = group.Text
		}
		fmt.Fprintln(r.output)
		fmt.Fprintf(r.output, "%s %d of %d\n", label, i+1, count)

		sub := append(append(engine.GroupPath{}, path...), engine.GroupStep{Group: group, Index: i})

		for _, childID := range group.ParallelQuestions {
			child, ok := r.doc.Question(childID)
			if !ok {
				continue
			}
			if !r.eng.IsQuestionVisible(child, r.answers, r.doc.Questions) {
				continue
			}

			if child.Type == formwalk.ParallelGroup {
				err := r.askGroup(sub, child)
				if err != nil {
					return err
				}
				continue
			}

			val, err := r.askValue(child)
			if err != nil {
				return err
			}

			r.answers = r.eng.WriteGroupAnswerAt(sub, child, val, r.answers)
		}
	}

	return nil
}

// askCount prompts for a group's repetition count. Out of range input is
// clamped into the settings range.
func (r *session) askCount(group *formwalk.Question, settings *formwalk.ParallelBranchSettings) (int, error) {
	message := settings.CountLabel
	if message == "" {
		message = fmt.Sprintf("How many %s entries", group.Text)
	}

	if settings.CountDescription != "" {
		err := r.showDescription(settings.CountDescription)
		if err != nil {
			return 0, err
		}
	}

	var ans string
	err := r.surveyor.AskOne(&survey.Input{
		Message: message,
		Default: strconv.Itoa(settings.MinItems),
	}, &ans, survey.WithValidator(validator.SurveyValidator("isInt(value)", true)))
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(ans)
	if err != nil {
		return 0, err
	}

	return settings.ClampCount(n), nil
}

// askValue prompts for a single non-group question and returns the raw
// answer value.
func (r *session) askValue(q *formwalk.Question) (any, error) {
	if q.Description != "" {
		err := r.showDescription(q.Description)
		if err != nil {
			return nil, err
		}
	}

	switch q.Type {
	case formwalk.RadioQuestion, formwalk.SelectQuestion:
		return r.askSelect(q)

	case formwalk.CheckboxQuestion:
		return r.askMultiSelect(q)

	case formwalk.NumberQuestion:
		return r.askNumber(q)

	case formwalk.DateQuestion:
		return r.askValidated(q, "isDate(value)")

	case formwalk.EmailQuestion:
		return r.askValidated(q, "isEmail(value)")

	case formwalk.PhoneQuestion:
		return r.askValidated(q, "isPhone(value)")

	case formwalk.TextQuestion:
		return r.askText(q)

	default:
		return nil, fmt.Errorf("unsupported question type %q", q.Type)
	}
}

func (r *session) showDescription(desc string) error {
	d, err := renderTemplate(desc, r.env)
	if err != nil {
		return err
	}

	fmt.Fprintln(r.output)
	fmt.Fprintln(r.output, d)
	fmt.Fprintln(r.output)

	return nil
}

// askSelect presents the question's options and returns the chosen option
// id.
func (r *session) askSelect(q *formwalk.Question) (any, error) {
	texts, byText := optionIndex(q.Options)

	var opts []survey.AskOpt
	if q.Required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}

	var ans string
	err := r.surveyor.AskOne(&survey.Select{
		Message: q.Text,
		Help:    q.Help,
		Options: texts,
	}, &ans, opts...)
	if err != nil {
		return nil, err
	}

	return byText[ans], nil
}

// askMultiSelect presents the options of a checkbox question and returns
// the chosen option ids.
func (r *session) askMultiSelect(q *formwalk.Question) (any, error) {
	texts, byText := optionIndex(q.Options)

	var opts []survey.AskOpt
	if q.Required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}

	var ans []string
	err := r.surveyor.AskOne(&survey.MultiSelect{
		Message: q.Text,
		Help:    q.Help,
		Options: texts,
	}, &ans, opts...)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(ans))
	for _, t := range ans {
		ids = append(ids, byText[t])
	}

	return ids, nil
}

func (r *session) askNumber(q *formwalk.Question) (any, error) {
	settings, _ := q.Settings.(*formwalk.NumberSettings)

	validation := "isFloat(value)"
	if settings != nil && settings.Integer {
		validation = "isInt(value)"
	}
	if q.Validation != "" {
		validation = fmt.Sprintf("%s && %s", validation, q.Validation)
	}

	var ans string
	err := r.surveyor.AskOne(&survey.Input{
		Message: q.Text,
		Help:    q.Help,
	}, &ans, survey.WithValidator(validator.SurveyValidator(validation, q.Required)))
	if err != nil {
		return nil, err
	}

	if ans == "" {
		return nil, nil
	}

	if settings != nil && settings.Integer {
		return strconv.Atoi(ans)
	}

	return strconv.ParseFloat(ans, 64)
}

// askValidated prompts for a string answer validated by the given
// expression combined with the question's own validation expression.
func (r *session) askValidated(q *formwalk.Question, validation string) (any, error) {
	if q.Validation != "" {
		validation = fmt.Sprintf("%s && %s", validation, q.Validation)
	}

	var ans string
	err := r.surveyor.AskOne(&survey.Input{
		Message: q.Text,
		Help:    q.Help,
	}, &ans, survey.WithValidator(validator.SurveyValidator(validation, q.Required)))
	if err != nil {
		return nil, err
	}

	return ans, nil
}

func (r *session) askText(q *formwalk.Question) (any, error) {
	var opts []survey.AskOpt

	if q.Required {
		opts = append(opts, survey.WithValidator(survey.MinLength(1)))
	}
	if q.Validation != "" {
		opts = append(opts, survey.WithValidator(validator.SurveyValidator(q.Validation, q.Required)))
	}

	var ans string
	err := r.surveyor.AskOne(&survey.Input{
		Message: q.Text,
		Help:    q.Help,
	}, &ans, opts...)
	if err != nil {
		return nil, err
	}

	return ans, nil
}

// finish evaluates the resolution question, renders the outcome text with
// the answers as template data and displays it.
func (r *session) finish(q *formwalk.Question) (string, error) {
	outcome := r.eng.EvaluateResolution(q.ResolutionRules, q.DefaultResolution, r.answers)

	data := map[string]any{}
	for k, v := range r.env {
		data[k] = v
	}
	for k, v := range r.answers {
		data[k] = v
	}

	rendered, err := r.eng.RenderResolution(outcome, engine.AnswerSet(data), r.doc.Engine)
	if err != nil {
		return "", err
	}

	rendered = colorMarkup(rendered)

	fmt.Fprintln(r.output)
	fmt.Fprintln(r.output, rendered)

	return rendered, nil
}

// optionIndex returns the display texts of options in order plus the
// text-to-id mapping used to store the stable option id as the answer.
func optionIndex(options []formwalk.Option) ([]string, map[string]string) {
	texts := make([]string, 0, len(options))
	byText := make(map[string]string, len(options))

	for _, o := range options {
		t := o.Text
		if t == "" {
			t = o.ID
		}
		texts = append(texts, t)
		byText[t] = o.ID
	}

	return texts, byText
}
