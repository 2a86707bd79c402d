package fetcher

import (
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// PageArchive keeps a copy of every fetched page on disk, the files can be
// fed back into the parse command.
type PageArchive struct {
	directory string
}

func NewPageArchive(dir string) (PageArchive, error) {
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return PageArchive{}, err
	}
	return PageArchive{directory: dir}, nil
}

// archiveName turns "/transcript/1/2016/3/3/13-24" into
// "transcript_1_2016_3_3_13-24.html".
func archiveName(endpoint string) string {
	path := endpoint
	if u, err := url.Parse(endpoint); err == nil {
		path = u.Path
	}
	name := strings.ReplaceAll(strings.Trim(path, "/"), "/", "_")
	if name == "" {
		name = "index"
	}
	return name + ".html"
}

func (a PageArchive) Path(endpoint string) string {
	return filepath.Join(a.directory, archiveName(endpoint))
}

func (a PageArchive) Write(endpoint string, contents string) {
	err := os.WriteFile(a.Path(endpoint), []byte(contents), 0644)
	if err != nil {
		slog.Warn("failed to archive page", "url", endpoint, "err", err)
	}
}
