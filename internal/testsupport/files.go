package testsupport

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// WriteFile fills the target path on fs with the requested number of bytes
// using a simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, fs afero.Fs, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := afero.WriteFile(fs, path, bytes.Repeat([]byte{0x42}, int(size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// AssertMissing fails the test when path exists on fs.
func AssertMissing(t testing.TB, fs afero.Fs, path string) {
	t.Helper()

	if ok, err := afero.Exists(fs, path); err != nil || ok {
		t.Fatalf("expected %s to be absent (exists=%v, err=%v)", path, ok, err)
	}
}
