package transcript

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// wordsPerRun is how many words may share a line before a break is forced.
const wordsPerRun = 30

// DeepgramWord is one entry of results.channels[].alternatives[].words.
type DeepgramWord struct {
	Word           string  `json:"word"`
	PunctuatedWord string  `json:"punctuated_word"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Confidence     float64 `json:"confidence"`
	Speaker        *int    `json:"speaker,omitempty"`
}

func (w DeepgramWord) text() string {
	if w.PunctuatedWord != "" {
		return w.PunctuatedWord
	}
	return w.Word
}

// NormalizeDeepgram renders a word stream. A timestamp precedes the first
// word, every 30th word and any word starting with an uppercase letter. A
// line ends after sentence punctuation, after every 30th word and after the
// last word.
func NormalizeDeepgram(words []DeepgramWord) string {
	var b strings.Builder
	for i, w := range words {
		text := w.text()
		if i == 0 || i%wordsPerRun == 0 || startsUpper(text) {
			b.WriteString("[" + FormatTimestamp(w.Start) + "] ")
		}
		b.WriteString(text)

		if endsSentence(text) || (i+1)%wordsPerRun == 0 || i == len(words)-1 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

func endsSentence(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}
