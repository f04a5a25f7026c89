package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajcwebdev/autoshow-sub002/internal/modules/metadata"
)

var item = metadata.MediaItem{
	ShowLink:    "https://www.youtube.com/watch?v=abc",
	Channel:     "Ajcwebdev",
	ChannelURL:  "https://www.youtube.com/@ajcwebdev",
	Title:       `Say "hello" to C:\temp`,
	PublishDate: "2024-09-24",
	CoverImage:  "https://i.ytimg.com/abc.jpg",
}

func TestFrontMatter(t *testing.T) {
	want := `---
showLink: "https://www.youtube.com/watch?v=abc"
channel: "Ajcwebdev"
channelURL: "https://www.youtube.com/@ajcwebdev"
title: "Say \"hello\" to C:\\temp"
description: ""
publishDate: "2024-09-24"
coverImage: "https://i.ytimg.com/abc.jpg"
---
`
	assert.Equal(t, want, FrontMatter(item))
}

func TestCompose(t *testing.T) {
	got := Compose("---\n---\n", "BODY\n\n", "[00:00] a\n[00:05] b\n")
	assert.Equal(t, "---\n---\n\nBODY\n\n## Transcript\n\n[00:00] a\n[00:05] b\n", got)
}

func TestAssembler_Prompt(t *testing.T) {
	dir := t.TempDir()
	a := New(dir)

	fm, fmPath, err := a.WriteFrontMatter("ep", item)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ep.md"), fmPath)
	assert.FileExists(t, fmPath)

	path, err := a.AssemblePrompt("ep", fm, "PROMPT", "[00:00] hi")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ep-prompt.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, fm))
	assert.Less(t, strings.Index(content, "PROMPT"), strings.Index(content, TranscriptHeading))
	assert.True(t, strings.HasSuffix(content, "[00:00] hi\n"))
}

func TestAssembler_ShowNotes(t *testing.T) {
	dir := t.TempDir()
	a := New(dir)
	fm := FrontMatter(item)

	path, err := a.AssembleShowNotes("ep", "chatgpt", fm, "## Episode Summary\n\nGreat show.", "[00:00] hi")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ep-chatgpt-shownotes.md"), path)
	assert.NoFileExists(t, a.TempPath("ep", "chatgpt"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Compose(fm, "## Episode Summary\n\nGreat show.", "[00:00] hi"), string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp or partial files remain")
}

func TestAssembler_Overwrites(t *testing.T) {
	a := New(t.TempDir())
	fm := FrontMatter(item)

	first, err := a.AssemblePrompt("ep", fm, "P", "T")
	require.NoError(t, err)
	firstData, _ := os.ReadFile(first)

	second, err := a.AssemblePrompt("ep", fm, "P", "T")
	require.NoError(t, err)
	secondData, _ := os.ReadFile(second)

	assert.Equal(t, first, second)
	assert.Equal(t, firstData, secondData)
}
