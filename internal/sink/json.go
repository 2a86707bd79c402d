package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"transcript-scraper/internal/transcript"
)

// JSONFile keeps the output file a valid JSON array of segments at all times,
// it is rewritten after every segment.
//
// rewriting costs O(segments) per write, so a run costs O(segments^2) in
// total. a day is at most a handful of segments and pages are several seconds
// apart, so the whole-file rename is kept: an interrupted write can never
// leave a truncated array behind. multi-month runs should use a database
// output instead.
type JSONFile struct {
	path     string
	pretty   bool
	segments []transcript.Segment
}

// ReadJSONFile reads the segments of a file written by JSONFile.
func ReadJSONFile(path string) ([]transcript.Segment, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var segments []transcript.Segment
	if len(contents) == 0 {
		return segments, nil
	}
	err = json.Unmarshal(contents, &segments)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return segments, nil
}

func OpenJSONFile(path string, appendExisting, pretty bool) (*JSONFile, error) {
	f := &JSONFile{path: path, pretty: pretty}
	if appendExisting {
		existing, err := ReadJSONFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		f.segments = existing
	}
	err := f.flush()
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (f *JSONFile) Write(ctx context.Context, segment transcript.Segment) error {
	f.segments = append(f.segments, segment)
	return f.flush()
}

func (f *JSONFile) flush() error {
	segments := f.segments
	if segments == nil {
		segments = []transcript.Segment{}
	}

	var serialized []byte
	var err error
	if f.pretty {
		serialized, err = json.MarshalIndent(segments, "", "  ")
	} else {
		serialized, err = json.Marshal(segments)
	}
	if err != nil {
		return err
	}

	// write then rename so an interrupted write never truncates the output
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	_, err = tmp.Write(append(serialized, '\n'))
	if err == nil {
		err = tmp.Chmod(0644)
	}
	if err != nil {
		tmp.Close()
		return err
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *JSONFile) Close() error {
	return nil
}
