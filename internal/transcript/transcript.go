// Package transcript converts the native output of each transcription service
// into the canonical line format used for prompts and show notes:
//
//	[MM:SS] text
//	Speaker A (MM:SS): text
//
// Minutes are zero padded to two digits and never wrap at 60.
package transcript

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Segment is one timestamped line of a transcript.
type Segment struct {
	Start   float64 `json:"start"`
	Speaker string  `json:"speaker,omitempty"`
	Text    string  `json:"text"`
}

// Transcript holds the canonical text rendering of a transcription.
type Transcript struct {
	Text string
}

// New trims surrounding blank lines from text.
func New(text string) Transcript {
	return Transcript{Text: strings.Trim(text, "\n")}
}

func (t Transcript) String() string {
	return t.Text
}

// IsEmpty reports whether the transcript has no content.
func (t Transcript) IsEmpty() bool {
	return strings.TrimSpace(t.Text) == ""
}

var (
	bracketLine = regexp.MustCompile(`^\[(\d+):(\d{2})\]\s*(.*)$`)
	speakerLine = regexp.MustCompile(`^(?:Speaker (\S+) )?\((\d+):(\d{2})\):\s*(.*)$`)
)

// Segments parses the leading timestamp of every line. Lines without one
// inherit the start time of the previous segment.
func (t Transcript) Segments() []Segment {
	var segments []Segment
	var last float64
	for _, line := range strings.Split(t.Text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		seg := Segment{Start: last, Text: line}
		if m := bracketLine.FindStringSubmatch(line); m != nil {
			seg.Start = clock(m[1], m[2])
			seg.Text = m[3]
		} else if m := speakerLine.FindStringSubmatch(line); m != nil {
			seg.Speaker = m[1]
			seg.Start = clock(m[2], m[3])
			seg.Text = m[4]
		}
		last = seg.Start
		segments = append(segments, seg)
	}
	return segments
}

func clock(minutes, seconds string) float64 {
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	return float64(m*60 + s)
}

// FormatTimestamp renders seconds as MM:SS. Fractions are truncated.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Floor(seconds))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// FormatMillis renders a millisecond offset as MM:SS.
func FormatMillis(ms int64) string {
	return FormatTimestamp(float64(ms) / 1000)
}
