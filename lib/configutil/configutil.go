package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// localName turns "dir/name.ext" into "dir/name.local.ext".
func localName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

// readLayer decodes a single json5 file, found is false if it doesn't exist or
// is empty.
func readLayer[T any](path string) (out T, found bool, err error) {
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	if len(contents) == 0 {
		return out, false, nil
	}
	err = json5.Unmarshal(contents, &out)
	if err != nil {
		return out, false, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, true, nil
}

// ReadConfig reads a configuration file, `name` should come with a file extension.
// this function will merge the following files, where higher number is more prioritized.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
//
// os.ErrNotExist is returned if neither exists.
func ReadConfig[T any](name string) (T, error) {
	out, foundDefault, err := readLayer[T](name)
	if err != nil {
		return out, err
	}

	localPath := localName(name)
	override, foundLocal, err := readLayer[T](localPath)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Debug("merging config with local overrides", "local", localPath)
	}

	if !foundDefault && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively searches from the cwd up to the filesystem root for `name`
// and reads the first one it finds with ReadConfig.
func ReadRecursively[T any](name string) (T, error) {
	var out T

	current, err := os.Getwd()
	if err != nil {
		return out, err
	}
	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return out, err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return out, os.ErrNotExist
		}
		current = parent
	}
}
