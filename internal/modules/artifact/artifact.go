// Package artifact writes the Markdown files a run leaves behind.
//
// For a stem S in the content directory:
//
//	S.md                    front matter only, removed by cleanup
//	S-prompt.md             front matter, prompt and transcript (no LLM)
//	S-{llm}-temp.md         raw model output, removed after assembly
//	S-{llm}-shownotes.md    front matter, model output and transcript
//
// Final files are written atomically.
package artifact

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ajcwebdev/autoshow-sub002/internal/modules/metadata"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

// TranscriptHeading separates the body from the transcript in final files.
const TranscriptHeading = "## Transcript"

// FrontMatter renders the item as a YAML block with double-quoted values in a
// fixed key order.
func FrontMatter(item metadata.MediaItem) string {
	fields := []struct{ key, value string }{
		{"showLink", item.ShowLink},
		{"channel", item.Channel},
		{"channelURL", item.ChannelURL},
		{"title", item.Title},
		{"description", item.Description},
		{"publishDate", item.PublishDate},
		{"coverImage", item.CoverImage},
	}

	var b strings.Builder
	b.WriteString("---\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "%s: \"%s\"\n", f.key, quote(f.value))
	}
	b.WriteString("---\n")
	return b.String()
}

var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")

func quote(s string) string {
	return quoter.Replace(s)
}

// Compose joins the parts of a final file.
func Compose(frontMatter, body, transcript string) string {
	return frontMatter + "\n" + strings.TrimRight(body, "\n") + "\n\n" + TranscriptHeading + "\n\n" + strings.TrimRight(transcript, "\n") + "\n"
}

// Assembler writes artifacts into one content directory.
type Assembler struct {
	dir string
}

// New creates an assembler for dir.
func New(dir string) *Assembler {
	return &Assembler{dir: dir}
}

// FrontMatterPath returns the transient front matter file for stem.
func (a *Assembler) FrontMatterPath(stem string) string {
	return filepath.Join(a.dir, stem+".md")
}

// PromptPath returns the final file written when no LLM is selected.
func (a *Assembler) PromptPath(stem string) string {
	return filepath.Join(a.dir, stem+"-prompt.md")
}

// ShowNotesPath returns the final file written for llm.
func (a *Assembler) ShowNotesPath(stem, llm string) string {
	return filepath.Join(a.dir, stem+"-"+llm+"-shownotes.md")
}

// TempPath returns the raw model output file for llm.
func (a *Assembler) TempPath(stem, llm string) string {
	return filepath.Join(a.dir, stem+"-"+llm+"-temp.md")
}

// WriteFrontMatter writes {stem}.md and returns the rendered front matter.
func (a *Assembler) WriteFrontMatter(stem string, item metadata.MediaItem) (string, string, error) {
	fm := FrontMatter(item)
	path := a.FrontMatterPath(stem)
	if err := utils.WriteTextFile(path, fm); err != nil {
		return "", "", fmt.Errorf("writing front matter: %w", err)
	}
	utils.LogVerbose("Front matter written to %s", path)
	return fm, path, nil
}

// AssemblePrompt writes {stem}-prompt.md.
func (a *Assembler) AssemblePrompt(stem, frontMatter, prompt, transcript string) (string, error) {
	path := a.PromptPath(stem)
	if err := utils.WriteFileAtomic(path, Compose(frontMatter, prompt, transcript)); err != nil {
		return "", fmt.Errorf("writing prompt file: %w", err)
	}
	utils.LogSuccess("Prompt and transcript saved to %s", utils.Highlight(path))
	return path, nil
}

// AssembleShowNotes stores the raw output in the temp file, composes
// {stem}-{llm}-shownotes.md from it and removes the temp file.
func (a *Assembler) AssembleShowNotes(stem, llm, frontMatter, output, transcript string) (string, error) {
	temp := a.TempPath(stem, llm)
	if err := utils.WriteTextFile(temp, output); err != nil {
		return "", fmt.Errorf("writing model output: %w", err)
	}

	raw, err := utils.ReadTextFile(temp)
	if err != nil {
		return "", fmt.Errorf("reading model output: %w", err)
	}

	path := a.ShowNotesPath(stem, llm)
	if err := utils.WriteFileAtomic(path, Compose(frontMatter, raw, transcript)); err != nil {
		return "", fmt.Errorf("writing show notes: %w", err)
	}
	if err := utils.RemoveIfExists(temp); err != nil {
		utils.LogWarning("Failed to remove %s: %v", temp, err)
	}

	utils.LogSuccess("Show notes saved to %s", utils.Highlight(path))
	return path, nil
}
