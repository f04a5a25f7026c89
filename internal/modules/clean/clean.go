// Package clean removes the intermediate files of a run.
package clean

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

// Manifest records the intermediate files produced for one item. Only files
// that were actually written are listed.
type Manifest struct {
	paths []string
}

// Add records paths. Empty and duplicate entries are ignored.
func (m *Manifest) Add(paths ...string) {
	for _, p := range paths {
		if p != "" && !lo.Contains(m.paths, p) {
			m.paths = append(m.paths, p)
		}
	}
}

// Paths returns the recorded files in insertion order.
func (m *Manifest) Paths() []string {
	return append([]string(nil), m.paths...)
}

// Remove deletes every recorded file. Files that are already gone are not an
// error; other failures are joined.
func (m *Manifest) Remove() error {
	var errs []error
	for _, p := range m.paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("removing %s: %w", p, err))
			continue
		}
		utils.LogDebug("Removed %s", p)
	}
	m.paths = nil
	return errors.Join(errs...)
}

var sidecarExts = []string{".wav", ".lrc", ".srt", ".txt", ".md"}

const (
	promptSuffix    = "-prompt.md"
	showNotesSuffix = "-shownotes.md"
	tempSuffix      = "-temp.md"
)

// Sweep finds leftovers in dir from runs that were interrupted or run with
// cleanup disabled: sidecars whose stem already has a final file, and orphaned
// model output temp files. Unless dryRun is set they are removed. The matched
// paths are returned sorted.
func Sweep(dir string, dryRun bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	names := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return e.Name(), !e.IsDir()
	})

	finished := map[string]bool{}
	for _, name := range names {
		if stem, ok := strings.CutSuffix(name, promptSuffix); ok {
			finished[stem] = true
			continue
		}
		if base, ok := strings.CutSuffix(name, showNotesSuffix); ok {
			// {stem}-{llm}-shownotes.md
			if i := strings.LastIndex(base, "-"); i > 0 {
				finished[base[:i]] = true
			}
		}
	}

	var leftovers []string
	for _, name := range names {
		if strings.HasSuffix(name, tempSuffix) {
			leftovers = append(leftovers, filepath.Join(dir, name))
			continue
		}
		if strings.HasSuffix(name, promptSuffix) || strings.HasSuffix(name, showNotesSuffix) {
			continue
		}
		ext := filepath.Ext(name)
		if lo.Contains(sidecarExts, ext) && finished[strings.TrimSuffix(name, ext)] {
			leftovers = append(leftovers, filepath.Join(dir, name))
		}
	}
	sort.Strings(leftovers)

	if dryRun {
		for _, p := range leftovers {
			utils.LogInfo("Would remove %s", p)
		}
		return leftovers, nil
	}

	m := &Manifest{}
	m.Add(leftovers...)
	if err := m.Remove(); err != nil {
		return leftovers, err
	}
	utils.LogSuccess("Removed %d leftover files from %s", len(leftovers), dir)
	return leftovers, nil
}
