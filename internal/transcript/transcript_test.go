package transcript

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{5.99, "00:05"},
		{61.2, "01:01"},
		{3599.9, "59:59"},
		{3723, "62:03"},
		{-4, "00:00"},
		{6000, "100:00"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.seconds), func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimestamp(tt.seconds))
		})
	}
	assert.Equal(t, "01:02", FormatMillis(62500))
}

func TestNormalizeLRC(t *testing.T) {
	raw := "[by:whisper.cpp]\r\n" +
		"[00:00.00]  Welcome to the show.\r\n" +
		"[00:04.52] Today we talk about Go.\n" +
		"\n" +
		"[125:07.10] Thanks for listening.\n"

	got := NormalizeLRC(raw)
	assert.Equal(t, "[00:00] Welcome to the show.\n[00:04] Today we talk about Go.\n[125:07] Thanks for listening.", got)

	canonical := regexp.MustCompile(`^\[\d+:\d{2}\] `)
	for _, line := range strings.Split(got, "\n") {
		assert.NotContains(t, line, "whisper.cpp")
		assert.Regexp(t, canonical, line)
		assert.NotRegexp(t, `\[\d+:\d{2}\.\d+\]`, line)
	}
}

func TestNormalizeSRT(t *testing.T) {
	raw := `1
00:00:01,000 --> 00:00:04,000
Hello and welcome
to the podcast.

2
01:02:03,000 --> 01:02:05,500
Past the first hour.

3
garbage line
ignored

4
00:10:00,250 --> 00:10:02,000
`

	got := NormalizeSRT(raw)
	assert.Equal(t, "[00:01] Hello and welcome to the podcast.\n[62:03] Past the first hour.", got)
	assert.Empty(t, NormalizeSRT("  \n"))
}

func TestNormalizeSRT_WindowsLineEndings(t *testing.T) {
	raw := "1\r\n00:00:09,000 --> 00:00:10,000\r\nLine one\r\n\r\n2\r\n00:00:11,000 --> 00:00:12,000\r\nLine two\r\n"
	assert.Equal(t, "[00:09] Line one\n[00:11] Line two", NormalizeSRT(raw))
}

func words(texts ...string) []DeepgramWord {
	out := make([]DeepgramWord, len(texts))
	for i, txt := range texts {
		out[i] = DeepgramWord{Word: strings.ToLower(strings.Trim(txt, ".!?")), PunctuatedWord: txt, Start: float64(i) * 1.5}
	}
	return out
}

func TestNormalizeDeepgram(t *testing.T) {
	got := NormalizeDeepgram(words("Hello", "there.", "how", "are", "you?", "fine", "thanks"))
	assert.Equal(t, "[00:00] Hello there.\nhow are you?\nfine thanks\n", got)

	got = NormalizeDeepgram(words("so", "I", "said", "hi."))
	assert.Equal(t, "[00:00] so [00:01] I said hi.\n", got)

	assert.Empty(t, NormalizeDeepgram(nil))
}

func TestNormalizeDeepgram_ThirtyWordRuns(t *testing.T) {
	texts := make([]string, 65)
	for i := range texts {
		texts[i] = "word"
	}
	got := NormalizeDeepgram(words(texts...))
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")

	require.Len(t, lines, 3)
	assert.Equal(t, 30, len(strings.Fields(strings.TrimPrefix(lines[0], "[00:00] "))))
	assert.True(t, strings.HasPrefix(lines[1], "[00:45] "), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "[01:30] "), lines[2])
	assert.Equal(t, 5, len(strings.Fields(lines[2]))-1)
}

func TestNormalizeDeepgram_NewlineCount(t *testing.T) {
	texts := []string{"one", "two.", "three", "four!", "five", "six", "seven?", "eight"}
	got := NormalizeDeepgram(words(texts...))

	// three sentence endings plus the final word
	assert.Equal(t, 4, strings.Count(got, "\n"))
}

func TestNormalizeAssembly(t *testing.T) {
	utterances := AssemblyTranscript{
		Text: "ignored",
		Utterances: []AssemblyUtterance{
			{Speaker: "A", Start: 0, Text: "Hi, I'm the host."},
			{Speaker: "B", Start: 65500, Text: " And I'm the guest. "},
		},
	}

	t.Run("utterances with labels", func(t *testing.T) {
		got := NormalizeAssembly(utterances, true)
		assert.Equal(t, "Speaker A (00:00): Hi, I'm the host.\nSpeaker B (01:05): And I'm the guest.\n", got)
	})

	t.Run("utterances without labels", func(t *testing.T) {
		got := NormalizeAssembly(utterances, false)
		assert.NotContains(t, got, "Speaker")
		assert.Equal(t, "(00:00): Hi, I'm the host.\n(01:05): And I'm the guest.\n", got)
	})

	t.Run("packed words", func(t *testing.T) {
		var ws []AssemblyWord
		for i := 0; i < 30; i++ {
			ws = append(ws, AssemblyWord{Text: "alphabet", Start: int64(i) * 1000})
		}
		got := NormalizeAssembly(AssemblyTranscript{Words: ws}, false)
		lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
		require.Greater(t, len(lines), 1)
		assert.True(t, strings.HasPrefix(lines[0], "[00:00] "))
		for _, line := range lines {
			text := line[len("[00:00] "):]
			assert.LessOrEqual(t, len(text), maxAssemblyLine)
		}
		assert.True(t, strings.HasPrefix(lines[1], "[00:09] "), lines[1])
	})

	t.Run("text fallback", func(t *testing.T) {
		assert.Equal(t, "plain text", NormalizeAssembly(AssemblyTranscript{Text: "plain text"}, false))
	})

	t.Run("nothing", func(t *testing.T) {
		assert.Equal(t, NoTranscription, NormalizeAssembly(AssemblyTranscript{}, true))
	})
}

func TestTranscriptSegments(t *testing.T) {
	tr := New("\n[00:01] first\nSpeaker B (01:05): second\ncontinued\n[62:03] third\n")

	segs := tr.Segments()
	require.Len(t, segs, 4)
	assert.Equal(t, Segment{Start: 1, Text: "first"}, segs[0])
	assert.Equal(t, Segment{Start: 65, Speaker: "B", Text: "second"}, segs[1])
	assert.Equal(t, Segment{Start: 65, Text: "continued"}, segs[2])
	assert.Equal(t, Segment{Start: 3723, Text: "third"}, segs[3])

	for i := 1; i < len(segs); i++ {
		assert.GreaterOrEqual(t, segs[i].Start, segs[i-1].Start)
	}
	assert.False(t, tr.IsEmpty())
	assert.True(t, New("\n\n").IsEmpty())
}
