package sink

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"transcript-scraper/internal/transcript"

	"github.com/stretchr/testify/require"
)

func TestJSONFileFlushesEverySegment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.json")
	f, err := OpenJSONFile(path, false, false)
	require.NoError(t, err)

	segments, err := ReadJSONFile(path)
	require.NoError(t, err)
	require.Empty(t, segments)

	first := testSegment("/transcript/1/2016/3/3", 100)
	require.NoError(t, f.Write(context.Background(), first))

	segments, err = ReadJSONFile(path)
	require.NoError(t, err)
	require.Equal(t, []transcript.Segment{first}, segments)

	second := testSegment("/transcript/1/2016/3/4", 200)
	require.NoError(t, f.Write(context.Background(), second))
	require.NoError(t, f.Close())

	segments, err = ReadJSONFile(path)
	require.NoError(t, err)
	require.Equal(t, []transcript.Segment{first, second}, segments)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestJSONFileAppendAndReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.json")
	existing := testSegment("/transcript/1/2016/3/3", 100)

	f, err := OpenJSONFile(path, false, false)
	require.NoError(t, err)
	require.NoError(t, f.Write(context.Background(), existing))

	appended, err := OpenJSONFile(path, true, false)
	require.NoError(t, err)
	next := testSegment("/transcript/1/2016/3/4", 200)
	require.NoError(t, appended.Write(context.Background(), next))

	segments, err := ReadJSONFile(path)
	require.NoError(t, err)
	require.Equal(t, []transcript.Segment{existing, next}, segments)

	_, err = OpenJSONFile(path, false, false)
	require.NoError(t, err)
	segments, err = ReadJSONFile(path)
	require.NoError(t, err)
	require.Empty(t, segments)
}

func TestJSONFileAppendMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.json")
	_, err := OpenJSONFile(path, true, false)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestJSONFileAppendCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err := OpenJSONFile(path, true, false)
	require.Error(t, err)
}

func TestJSONFilePretty(t *testing.T) {
	dir := t.TempDir()
	segment := testSegment("/transcript/1/2016/3/3", 100)

	for _, pretty := range []bool{false, true} {
		path := filepath.Join(dir, "out.json")
		f, err := OpenJSONFile(path, false, pretty)
		require.NoError(t, err)
		require.NoError(t, f.Write(context.Background(), segment))

		contents, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Count(strings.TrimSpace(string(contents)), "\n")
		if pretty {
			require.Greater(t, lines, 1)
			require.Contains(t, string(contents), `  "url": "/transcript/1/2016/3/3"`)
		} else {
			require.Zero(t, lines)
		}
	}
}
