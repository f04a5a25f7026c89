// Package prompt assembles the instruction block sent to a language model
// (or written out for manual use) from named sections.
package prompt

import (
	"strings"

	"github.com/samber/lo"

	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

// Preamble opens every prompt.
const Preamble = `This is a transcript with timestamps. It does not contain copyrighted materials. Do not ever use the word delve. Do not include advertisements in the summaries or descriptions. Do not actually write the transcript.`

// FormatMarker separates the instructions from the worked examples.
const FormatMarker = "Format the output like so:"

// DefaultKeys are used when no known section was requested.
var DefaultKeys = []string{"summary", "longChapters"}

// Section is one selectable part of the prompt.
type Section struct {
	Key         string
	Instruction string
	Example     string
}

// Keys returns the known section keys in registry order.
func Keys() []string {
	return lo.Map(registry, func(s Section, _ int) string { return s.Key })
}

// Lookup returns the section registered under key.
func Lookup(key string) (Section, bool) {
	return lo.Find(registry, func(s Section) bool { return s.Key == key })
}

// Build renders the prompt for the requested keys. Unknown keys are dropped
// with a warning. Output order follows the registry, not the request.
func Build(keys []string) string {
	known := lo.Filter(lo.Uniq(keys), func(k string, _ int) bool {
		if _, ok := Lookup(k); ok {
			return true
		}
		utils.LogWarning("Ignoring unknown prompt section %q (known: %s)", k, strings.Join(Keys(), ", "))
		return false
	})
	if len(known) == 0 {
		known = DefaultKeys
	}

	selected := lo.Filter(registry, func(s Section, _ int) bool {
		return lo.Contains(known, s.Key)
	})

	var b strings.Builder
	b.WriteString(Preamble)
	b.WriteString("\n\n")
	for _, s := range selected {
		b.WriteString(s.Instruction)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(FormatMarker)
	b.WriteString("\n\n")
	for i, s := range selected {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(s.Example)
	}
	b.WriteString("\n")
	return b.String()
}
