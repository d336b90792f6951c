package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"tubeaudio/internal/textutil"
)

// ErrHeld is returned when another process holds the lock for an ID.
var ErrHeld = errors.New("another tubeaudio process is already fetching this video")

// Locker hands out per-ID file locks under a directory.
type Locker struct {
	dir string
}

// New returns a Locker rooted at dir. The directory is created on first use.
func New(dir string) *Locker {
	return &Locker{dir: dir}
}

// Lock is a held per-ID lock.
type Lock struct {
	id   string
	path string
	lock *flock.Flock
}

// Path returns the lock file location for id.
func (l *Locker) Path(id string) string {
	return filepath.Join(l.dir, textutil.FileToken(id)+".lock")
}

// Acquire takes the lock for id without blocking. It returns ErrHeld when
// another process owns it.
func (l *Locker) Acquire(id string) (*Lock, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("lock id required")
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	path := l.Path(id)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock: %s)", ErrHeld, path)
	}
	return &Lock{id: id, path: path, lock: fl}, nil
}

// ID returns the locked identifier.
func (l *Lock) ID() string { return l.id }

// Release unlocks id. The lock file stays so a concurrent opener never locks
// an unlinked inode.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
