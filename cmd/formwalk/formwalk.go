// Copyright (c) 2024-2026, the Formwalk Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/choria-io/fisk"
	"github.com/formwalk/formwalk"
	"github.com/formwalk/formwalk/engine"
	"github.com/formwalk/formwalk/runner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/kballard/go-shellquote"
)

var (
	surveyFile string
	outFile    string
	execCmd    string
	stringData map[string]string
	jsonData   string
	version    string
)

func main() {
	stringData = map[string]string{}

	app := fisk.New("formwalk", "Runs and inspects branching surveys")
	app.Version(version)

	app.Help = `
Take surveys with conditional branching, repeating groups and resolution
outcomes on the terminal, or inspect a survey's transition graph.
`

	run := app.Command("run", "Takes a survey interactively").Action(runAction)
	run.Arg("survey", "The survey document to run").Required().ExistingFileVar(&surveyFile)
	run.Arg("data", "Data to pass to description and resolution templates").StringMapVar(&stringData)
	run.Flag("json", "Loads template data from a JSON file").PlaceHolder("FILE").ExistingFileVar(&jsonData)
	run.Flag("out", "Writes the collected answers to a JSON file").PlaceHolder("FILE").StringVar(&outFile)
	run.Flag("exec", "Post processes the answers file with a command").PlaceHolder("COMMAND").StringVar(&execCmd)

	inspect := app.Command("inspect", "Shows the transition graph of a survey").Action(inspectAction)
	inspect.Arg("survey", "The survey document to inspect").Required().ExistingFileVar(&surveyFile)

	lint := app.Command("lint", "Validates a survey document").Action(lintAction)
	lint.Arg("survey", "The survey document to validate").Required().ExistingFileVar(&surveyFile)

	app.MustParseWithUsage(os.Args[1:])
}

func runAction(_ *fisk.ParseContext) error {
	doc, err := formwalk.LoadFile(surveyFile)
	if err != nil {
		return err
	}

	env := map[string]any{}
	for k, v := range stringData {
		env[k] = v
	}

	envData := map[string]string{}
	for _, val := range os.Environ() {
		parts := strings.SplitN(val, "=", 2)
		if len(parts) != 2 {
			continue
		}
		envData[parts[0]] = parts[1]
	}
	env["ENVIRONMENT"] = envData

	if jsonData != "" {
		df, err := os.ReadFile(jsonData)
		if err != nil {
			return err
		}
		err = json.Unmarshal(df, &env)
		if err != nil {
			return err
		}
	}

	res, err := runner.Run(doc, env)
	if err != nil {
		return err
	}

	if outFile == "" {
		return nil
	}

	jb, err := json.MarshalIndent(res.Answers, "", "  ")
	if err != nil {
		return err
	}

	err = os.WriteFile(outFile, jb, 0644)
	if err != nil {
		return err
	}

	if execCmd != "" {
		return postProcess(outFile, execCmd)
	}

	return nil
}

// postProcess runs a command against the answers file, replacing the {}
// placeholder with the file path or appending it when no placeholder is
// present.
func postProcess(f string, command string) error {
	parts, err := shellquote.Split(command)
	if err != nil {
		return err
	}

	cmd := parts[0]
	var args []string
	hasPlaceholder := false
	for _, p := range parts[1:] {
		if strings.Contains(p, "{}") {
			args = append(args, strings.ReplaceAll(p, "{}", f))
			hasPlaceholder = true
		} else {
			args = append(args, p)
		}
	}

	if !hasPlaceholder {
		args = append(args, f)
	}

	out, err := exec.Command(cmd, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to post process %s\nerror: %w\noutput: %q", f, err, out)
	}

	return nil
}

func inspectAction(_ *fisk.ParseContext) error {
	doc, err := formwalk.LoadFile(surveyFile)
	if err != nil {
		return err
	}

	eng := engine.New()

	var all []formwalk.Question
	for _, p := range doc.Pages {
		all = append(all, doc.PageQuestions(p.ID)...)
	}
	all = eng.WithDefaultTransitions(all)

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Source", "Match", "Target"})

	for _, q := range all {
		for _, r := range q.TransitionRules {
			match := "any (default)"
			switch {
			case r.Default:
			case r.Condition != "":
				match = fmt.Sprintf("%s %v", r.Condition, r.Value)
			default:
				match = fmt.Sprintf("= %v", r.Answer)
			}

			tw.AppendRow(table.Row{q.ID, match, r.NextQuestionID})
		}
	}

	tw.Render()

	return nil
}

func lintAction(_ *fisk.ParseContext) error {
	doc, err := formwalk.LoadFile(surveyFile)
	if err != nil {
		return err
	}

	problems := 0

	templates := map[string]struct{}{}
	for _, q := range doc.Questions {
		if q.Type == formwalk.ParallelGroup {
			for _, c := range q.ParallelQuestions {
				templates[c] = struct{}{}
			}
		}
	}

	for _, q := range doc.Questions {
		for _, r := range q.TransitionRules {
			if _, ok := doc.Question(r.NextQuestionID); !ok {
				fmt.Printf("question %q: transition %q targets unknown question %q\n", q.ID, r.ID, r.NextQuestionID)
				problems++
			}
			if _, ok := templates[r.NextQuestionID]; ok {
				fmt.Printf("question %q: transition %q targets repeating group question %q\n", q.ID, r.ID, r.NextQuestionID)
				problems++
			}
		}

		for _, vr := range q.VisibilityRules {
			for _, g := range vr.Groups {
				for _, c := range g.Conditions {
					if _, ok := doc.Question(c.QuestionID); !ok {
						fmt.Printf("question %q: visibility rule %q references unknown question %q\n", q.ID, vr.ID, c.QuestionID)
						problems++
					}
				}
			}
		}
	}

	if problems > 0 {
		return fmt.Errorf("%d problems found", problems)
	}

	fmt.Println("no problems found")

	return nil
}
