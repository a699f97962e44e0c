// Copyright (c) 2024-2026, the Formwalk Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"bytes"
	"os"
	"regexp"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/jedib0t/go-pretty/v6/text"
	terminal "golang.org/x/term"
)

func isTerminal() bool {
	return terminal.IsTerminal(int(os.Stdin.Fd())) && terminal.IsTerminal(int(os.Stdout.Fd()))
}

// renderTemplate executes tmpl as a Go template with Sprig functions against
// env and applies color markup to the result.
func renderTemplate(tmpl string, env map[string]any) (string, error) {
	t, err := template.New("runner").Funcs(sprig.TxtFuncMap()).Parse(tmpl)
	if err != nil {
		return "", err
	}

	out := bytes.NewBuffer([]byte{})

	err = t.Execute(out, env)
	if err != nil {
		return "", err
	}

	return colorMarkup(out.String()), nil
}

var colorMap = map[string]text.Color{
	"bold":      text.Bold,
	"black":     text.FgBlack,
	"red":       text.FgRed,
	"green":     text.FgGreen,
	"yellow":    text.FgYellow,
	"blue":      text.FgBlue,
	"magenta":   text.FgMagenta,
	"cyan":      text.FgCyan,
	"white":     text.FgWhite,
	"hiblack":   text.FgHiBlack,
	"hired":     text.FgHiRed,
	"higreen":   text.FgHiGreen,
	"hiyellow":  text.FgHiYellow,
	"hiblue":    text.FgHiBlue,
	"himagenta": text.FgHiMagenta,
	"hicyan":    text.FgHiCyan,
	"hiwhite":   text.FgHiWhite,
}

var markupPattern = regexp.MustCompile(`\{([a-zA-Z]+)\}([^{}]*)\{/([a-zA-Z]+)\}`)

// colorMarkup colorizes tags like {red}text{/red} using the go-pretty color
// set. Tags nest, innermost tags are processed first. Unknown color names
// are stripped, leaving the content.
func colorMarkup(input string) string {
	result := input

	for {
		m := markupPattern.FindStringSubmatch(result)
		if m == nil {
			return result
		}

		full, open, content := m[0], strings.ToLower(m[1]), m[2]

		replacement := content
		if color, ok := colorMap[open]; ok && strings.EqualFold(m[1], m[3]) {
			replacement = text.Colors{color}.Sprint(content)
		}

		result = strings.Replace(result, full, replacement, 1)
	}
}
