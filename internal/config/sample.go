package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed sample_config.toml
var sampleConfig string

// ErrSampleExists is returned by WriteSample when path exists and overwrite is false.
var ErrSampleExists = errors.New("config file already exists")

// WriteSample writes the annotated sample config to path, creating parent
// directories. An existing file is replaced only when overwrite is set.
func WriteSample(path string, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	mode := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		mode = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, mode, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrSampleExists, path)
	} else if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.WriteString(sampleConfig); err != nil {
		f.Close()
		return fmt.Errorf("write sample config: %w", err)
	}
	return f.Close()
}
