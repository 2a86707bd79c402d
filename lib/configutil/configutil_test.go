package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Room    int64  `json:"room"`
	Output  string `json:"output"`
	Pretty  bool   `json:"pretty"`
	BaseUrl string `json:"base_url"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "scraper.json5"), `{
		// comments are allowed
		room: 1,
		output: "output.json",
		base_url: "https://chat.stackexchange.com",
	}`)
	writeFile(t, filepath.Join(dir, "scraper.local.json5"), `{output: "local.json", pretty: true}`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "scraper.json5"))
	require.NoError(t, err)
	require.Equal(t, testConfig{
		Room:    1,
		Output:  "local.json",
		Pretty:  true,
		BaseUrl: "https://chat.stackexchange.com",
	}, cfg)
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "scraper.local.json5"), `{room: 7}`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "scraper.json5"))
	require.NoError(t, err)
	require.Equal(t, int64(7), cfg.Room)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "scraper.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "scraper.json5"), `{room: `)

	_, err := ReadConfig[testConfig](filepath.Join(dir, "scraper.json5"))
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestLocalName(t *testing.T) {
	require.Equal(t, "a/b/telemetry.local.json5", localName("a/b/telemetry.json5"))
	require.Equal(t, "config.local", localName("config"))
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0700))
	writeFile(t, filepath.Join(root, "scraper.json5"), `{room: 42}`)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
	})

	cfg, err := ReadRecursively[testConfig]("scraper.json5")
	require.NoError(t, err)
	require.Equal(t, int64(42), cfg.Room)
}
