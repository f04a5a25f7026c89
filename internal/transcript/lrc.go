package transcript

import (
	"regexp"
	"strings"
)

var (
	// whisper.cpp writes "[by:whisper.cpp]" as the first line of every .lrc file.
	lrcToolTag   = regexp.MustCompile(`^\[(by|re|ve):[^\]]*\]\s*$`)
	lrcTimestamp = regexp.MustCompile(`\[(\d{2,3}):(\d{2})\.(\d{2,3})\]`)
)

// NormalizeLRC rewrites lyrics-format output to canonical lines by dropping
// the producer tag and truncating "[MM:SS.ff]" stamps to "[MM:SS]".
func NormalizeLRC(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" || lrcToolTag.MatchString(strings.TrimSpace(line)) {
			continue
		}
		line = lrcTimestamp.ReplaceAllString(line, "[$1:$2]")
		if m := bracketLine.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			line = "[" + m[1] + ":" + m[2] + "] " + strings.TrimSpace(m[3])
		}
		out = append(out, strings.TrimRight(line, " \t"))
	}
	return strings.Join(out, "\n")
}
