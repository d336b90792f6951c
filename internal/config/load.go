package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// projectConfigName is looked up in the working directory when the user
// config is absent.
const projectConfigName = "tubeaudio.toml"

// Load reads the config file at path, or the first existing default location
// when path is empty, on top of Default(). A missing file is not an error:
// defaults are used and exists reports false. The result is normalized and
// validated.
func Load(path string) (cfg *Config, resolved string, exists bool, err error) {
	resolved, exists, err = locate(path)
	if err != nil {
		return nil, "", false, err
	}

	loaded := Default()
	if exists {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &loaded); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}
	if err := loaded.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := loaded.Validate(); err != nil {
		return nil, "", false, err
	}
	return &loaded, resolved, exists, nil
}

// DefaultConfigPath is where `config init` writes and where Load looks first.
func DefaultConfigPath() (string, error) {
	return ExpandPath(defaultConfigPath)
}

// locate resolves an explicit path as-is; otherwise it tries the user config
// then ./tubeaudio.toml, falling back to the user config location.
func locate(explicit string) (string, bool, error) {
	if explicit != "" {
		path, err := ExpandPath(explicit)
		if err != nil {
			return "", false, err
		}
		ok, err := isFile(path)
		return path, ok, err
	}

	userPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, projectPath} {
		if ok, _ := isFile(candidate); ok {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat config: %w", err)
	case info.IsDir():
		return false, fmt.Errorf("config path %s is a directory", path)
	}
	return true, nil
}

// ExpandPath resolves a leading "~" to the home directory and returns a
// cleaned absolute path. Empty input stays empty.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}
	return abs, nil
}
