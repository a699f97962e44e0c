// Copyright (c) 2024-2026, the Formwalk Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"github.com/jedib0t/go-pretty/v6/text"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ColorMarkup", func() {
	It("should handle no color markup", func() {
		Expect(colorMarkup("Hello World")).To(Equal("Hello World"))
	})

	It("should handle single color tag", func() {
		expected := text.Colors{text.FgRed}.Sprint("Hello") + " World"
		Expect(colorMarkup("{red}Hello{/red} World")).To(Equal(expected))
	})

	It("should handle multiple color tags", func() {
		expected := text.Colors{text.FgRed}.Sprint("Hello") + " " + text.Colors{text.FgBlue}.Sprint("World")
		Expect(colorMarkup("{red}Hello{/red} {blue}World{/blue}")).To(Equal(expected))
	})

	It("should handle nested color tags", func() {
		expected := text.Colors{text.FgRed}.Sprint("Outer " + text.Colors{text.FgGreen}.Sprint("Inner") + " Text")
		Expect(colorMarkup("{red}Outer {green}Inner{/green} Text{/red}")).To(Equal(expected))
	})

	It("should handle case insensitive colors", func() {
		expected := text.Colors{text.FgRed}.Sprint("Hello") + " " + text.Colors{text.FgBlue}.Sprint("World")
		Expect(colorMarkup("{RED}Hello{/RED} {Blue}World{/Blue}")).To(Equal(expected))
	})

	It("should handle high intensity colors", func() {
		expected := text.Colors{text.FgHiRed}.Sprint("Error") + " " + text.Colors{text.FgHiGreen}.Sprint("Success")
		Expect(colorMarkup("{hired}Error{/hired} {higreen}Success{/higreen}")).To(Equal(expected))
	})

	It("should remove invalid color tags", func() {
		Expect(colorMarkup("{invalid}Text{/invalid}")).To(Equal("Text"))
	})

	It("should handle empty color tag", func() {
		Expect(colorMarkup("{red}{/red}")).To(Equal(text.Colors{text.FgRed}.Sprint("")))
	})
})

var _ = Describe("RenderTemplate", func() {
	It("Should expand template variables with sprig functions", func() {
		out, err := renderTemplate(`Hello {{ .name | upper }}`, map[string]any{"name": "bob"})
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(Equal("Hello BOB"))
	})

	It("Should colorize after template expansion", func() {
		out, err := renderTemplate(`{green}{{ .name }}{/green}`, map[string]any{"name": "bob"})
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(Equal(text.Colors{text.FgGreen}.Sprint("bob")))
	})

	It("Should fail on invalid templates", func() {
		_, err := renderTemplate(`{{ .name`, nil)
		Expect(err).To(HaveOccurred())
	})
})
