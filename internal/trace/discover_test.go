package trace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern(DefaultPattern)
	require.NoError(t, err)
	assert.Equal(t, "out12.itf.json", p.Name(12))
	assert.Equal(t, DefaultPattern, p.String())

	for _, bad := range []string{"out.itf.json", "out%d-%d.json", "out%s.json", "dir/out%d.json"} {
		_, err := ParsePattern(bad)
		assert.Error(t, err, bad)
	}
}

func TestPatternIndex(t *testing.T) {
	p, err := ParsePattern(DefaultPattern)
	require.NoError(t, err)

	tests := []struct {
		name string
		want int
		ok   bool
	}{
		{"out0.itf.json", 0, true},
		{"out42.itf.json", 42, true},
		{"out007.itf.json", 0, false},
		{"out-1.itf.json", 0, false},
		{"out.itf.json", 0, false},
		{"out1.json", 0, false},
		{"trace1.itf.json", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Index(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiscover(t *testing.T) {
	p, err := ParsePattern(DefaultPattern)
	require.NoError(t, err)

	entries, err := Discover("testdata", p, DefaultMaxTraces)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Index: 0, Path: filepath.Join("testdata", "out0.itf.json")}, entries[0])
	assert.Equal(t, Entry{Index: 2, Path: filepath.Join("testdata", "out2.itf.json")}, entries[1])
	assert.Equal(t, []int{1}, Gaps(entries))
}

func TestDiscoverLimit(t *testing.T) {
	p, err := ParsePattern(DefaultPattern)
	require.NoError(t, err)

	entries, err := Discover("testdata", p, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].Index)
}

func TestDiscoverSortsNumerically(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out10.itf.json", "out9.itf.json", "out1.itf.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "out3.itf.json"), 0o755))

	p, err := ParsePattern(DefaultPattern)
	require.NoError(t, err)

	entries, err := Discover(dir, p, DefaultMaxTraces)
	require.NoError(t, err)

	var got []int
	for _, e := range entries {
		got = append(got, e.Index)
	}
	assert.Equal(t, []int{1, 9, 10}, got)
	assert.Equal(t, []int{0, 2, 3, 4, 5, 6, 7, 8}, Gaps(entries))
}

func TestFill(t *testing.T) {
	p, err := ParsePattern(DefaultPattern)
	require.NoError(t, err)

	entries := []Entry{
		{Index: 1, Path: filepath.Join("d", "out1.itf.json")},
		{Index: 3, Path: filepath.Join("d", "out3.itf.json")},
	}
	assert.Equal(t, []Entry{
		{Index: 0, Path: filepath.Join("d", "out0.itf.json"), Missing: true},
		entries[0],
		{Index: 2, Path: filepath.Join("d", "out2.itf.json"), Missing: true},
		entries[1],
	}, Fill("d", p, entries))

	assert.Empty(t, Fill("d", p, nil))
}

func TestLoadMissingEntry(t *testing.T) {
	d, err := NewDecoder()
	require.NoError(t, err)

	_, err = d.Load(Entry{Index: 1, Path: filepath.Join("testdata", "out1.itf.json"), Missing: true})

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 1, le.Index)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscoverMissingDir(t *testing.T) {
	p, err := ParsePattern(DefaultPattern)
	require.NoError(t, err)

	_, err = Discover(filepath.Join(t.TempDir(), "nope"), p, DefaultMaxTraces)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
