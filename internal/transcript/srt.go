package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	srtBlockSep  = regexp.MustCompile(`\n[ \t]*\n`)
	srtTimestamp = regexp.MustCompile(`(\d+):(\d{2}):(\d{2}),\d{3}`)
)

// NormalizeSRT converts subtitle blocks to canonical lines. Each block's
// start time becomes "[total minutes:seconds]" and its text lines are joined
// with single spaces. Blocks without a timestamp on their second line or
// without any text are skipped.
func NormalizeSRT(raw string) string {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	if raw == "" {
		return ""
	}

	var out []string
	for _, block := range srtBlockSep.Split(raw, -1) {
		var lines []string
		for _, l := range strings.Split(block, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				lines = append(lines, l)
			}
		}
		if len(lines) < 3 {
			continue
		}

		m := srtTimestamp.FindStringSubmatch(lines[1])
		if m == nil {
			continue
		}
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])

		out = append(out, fmt.Sprintf("[%02d:%s] %s", hours*60+minutes, m[3], strings.Join(lines[2:], " ")))
	}
	return strings.Join(out, "\n")
}
