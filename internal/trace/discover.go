package trace

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// DefaultPattern names the fixtures written by the trace generator.
const DefaultPattern = "out%d.itf.json"

// DefaultMaxTraces bounds the fixture index range.
const DefaultMaxTraces = 10000

// ErrBadPattern is returned for a file pattern without exactly one %d.
var ErrBadPattern = errors.New("pattern must contain exactly one %d")

// Pattern maps fixture indices to file names.
type Pattern struct {
	prefix string
	suffix string
}

// ParsePattern parses a pattern such as "out%d.itf.json".
func ParsePattern(s string) (Pattern, error) {
	if strings.Count(s, "%d") != 1 || strings.Count(s, "%") != 1 {
		return Pattern{}, fmt.Errorf("%w: %q", ErrBadPattern, s)
	}
	if strings.ContainsRune(s, filepath.Separator) {
		return Pattern{}, fmt.Errorf("pattern %q must be a file name, not a path", s)
	}
	prefix, suffix, _ := strings.Cut(s, "%d")
	return Pattern{prefix: prefix, suffix: suffix}, nil
}

// Name returns the file name for index i.
func (p Pattern) Name(i int) string {
	return p.prefix + strconv.Itoa(i) + p.suffix
}

// Index extracts the index from a file name. Leading zeros and signs are
// rejected so each index has exactly one name.
func (p Pattern) Index(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, p.prefix)
	if !ok {
		return 0, false
	}
	digits, ok := strings.CutSuffix(rest, p.suffix)
	if !ok || digits == "" {
		return 0, false
	}
	if len(digits) > 1 && digits[0] == '0' {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return i, true
}

func (p Pattern) String() string {
	return p.prefix + "%d" + p.suffix
}

// Entry is a fixture file found on disk, or a hole in the index sequence.
type Entry struct {
	Index int
	Path  string
	// Missing marks an index below the last fixture that has no file.
	Missing bool
}

// Discover lists the fixtures in dir whose names match pattern and whose
// index is below limit, ordered by index.
func Discover(dir string, pattern Pattern, limit int) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read traces directory: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		i, ok := pattern.Index(de.Name())
		if !ok || i >= limit {
			continue
		}
		entries = append(entries, Entry{Index: i, Path: filepath.Join(dir, de.Name())})
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return entries, nil
}

// Fill returns entries with a Missing entry inserted for every gap, so the
// result covers each index from 0 to the last entry.
func Fill(dir string, pattern Pattern, entries []Entry) []Entry {
	if len(entries) == 0 {
		return entries
	}
	filled := make([]Entry, 0, entries[len(entries)-1].Index+1)
	next := 0
	for _, e := range entries {
		for ; next < e.Index; next++ {
			filled = append(filled, Entry{Index: next, Path: filepath.Join(dir, pattern.Name(next)), Missing: true})
		}
		filled = append(filled, e)
		next = e.Index + 1
	}
	return filled
}

// Gaps returns the indices missing between 0 and the last entry.
func Gaps(entries []Entry) []int {
	var gaps []int
	next := 0
	for _, e := range entries {
		for ; next < e.Index; next++ {
			gaps = append(gaps, next)
		}
		next = e.Index + 1
	}
	return gaps
}
