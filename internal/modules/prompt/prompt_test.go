package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Equal(t, "titles", keys[0])
	assert.Equal(t, "quotes", keys[len(keys)-1])
	assert.Len(t, keys, 13)
}

func TestBuild_Ordering(t *testing.T) {
	out := Build([]string{"longChapters", "titles", "longChapters"})

	require.True(t, strings.HasPrefix(out, Preamble))
	titles, _ := Lookup("titles")
	chapters, _ := Lookup("longChapters")

	iTitles := strings.Index(out, titles.Instruction)
	iChapters := strings.Index(out, chapters.Instruction)
	iMarker := strings.Index(out, FormatMarker)
	iTitlesEx := strings.Index(out, titles.Example)
	iChaptersEx := strings.Index(out, chapters.Example)

	assert.True(t, iTitles >= 0 && iTitles < iChapters, "instructions follow registry order")
	assert.True(t, iChapters < iMarker)
	assert.True(t, iMarker < iTitlesEx && iTitlesEx < iChaptersEx, "examples follow registry order")
	assert.Equal(t, 1, strings.Count(out, chapters.Instruction), "duplicates collapse")
}

func TestBuild_DefaultsAndUnknownKeys(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := utils.SetLogger(zap.New(core))
	defer restore()

	tests := []struct {
		name string
		keys []string
		warn int
	}{
		{"empty", nil, 0},
		{"all unknown", []string{"haiku", "limerick"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs.TakeAll()
			assert.Equal(t, Build(DefaultKeys), Build(tt.keys))
			assert.Equal(t, tt.warn, logs.FilterLevelExact(zapcore.WarnLevel).Len())
		})
	}

	logs.TakeAll()
	out := Build([]string{"faq", "haiku"})
	faq, _ := Lookup("faq")
	summary, _ := Lookup("summary")
	assert.Contains(t, out, faq.Instruction)
	assert.NotContains(t, out, summary.Instruction)
	assert.Equal(t, 1, logs.FilterMessageSnippet("haiku").Len())
}
