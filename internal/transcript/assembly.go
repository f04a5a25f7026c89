package transcript

import (
	"fmt"
	"strings"
)

// maxAssemblyLine caps the length of packed word lines.
const maxAssemblyLine = 80

// NoTranscription is emitted when the provider returned nothing usable.
const NoTranscription = "No transcription available."

// AssemblyWord is one word of an AssemblyAI transcript. Offsets are milliseconds.
type AssemblyWord struct {
	Text       string  `json:"text"`
	Start      int64   `json:"start"`
	End        int64   `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker,omitempty"`
}

// AssemblyUtterance is a speaker turn returned when speaker labels are enabled.
type AssemblyUtterance struct {
	Speaker string         `json:"speaker"`
	Start   int64          `json:"start"`
	End     int64          `json:"end"`
	Text    string         `json:"text"`
	Words   []AssemblyWord `json:"words,omitempty"`
}

// AssemblyTranscript is the subset of GET /v2/transcript/{id} that is used.
type AssemblyTranscript struct {
	ID         string              `json:"id"`
	Status     string              `json:"status"`
	Error      string              `json:"error,omitempty"`
	Text       string              `json:"text"`
	Words      []AssemblyWord      `json:"words"`
	Utterances []AssemblyUtterance `json:"utterances"`
}

// NormalizeAssembly prefers speaker utterances, then packed word lines, then
// the plain text field.
func NormalizeAssembly(t AssemblyTranscript, speakerLabels bool) string {
	var b strings.Builder

	switch {
	case len(t.Utterances) > 0:
		for _, u := range t.Utterances {
			if speakerLabels {
				fmt.Fprintf(&b, "Speaker %s ", u.Speaker)
			}
			fmt.Fprintf(&b, "(%s): %s\n", FormatMillis(u.Start), strings.TrimSpace(u.Text))
		}

	case len(t.Words) > 0:
		line := ""
		stamp := FormatMillis(t.Words[0].Start)
		for _, w := range t.Words {
			if line != "" && len(line)+len(w.Text) > maxAssemblyLine {
				fmt.Fprintf(&b, "[%s] %s\n", stamp, strings.TrimSpace(line))
				line = ""
				stamp = FormatMillis(w.Start)
			}
			line += w.Text + " "
		}
		if line != "" {
			fmt.Fprintf(&b, "[%s] %s\n", stamp, strings.TrimSpace(line))
		}

	case strings.TrimSpace(t.Text) != "":
		b.WriteString(t.Text)

	default:
		b.WriteString(NoTranscription)
	}

	return b.String()
}
