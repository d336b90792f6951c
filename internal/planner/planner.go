package planner

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"tubeaudio/internal/config"
	"tubeaudio/internal/services"
	"tubeaudio/internal/textutil"
)

// Plan is the on-disk layout for one download. Base has no extension and its
// parent is Dir.
type Plan struct {
	Dir           string
	Base          string
	CreatedSubdir bool
}

// Stem returns the file name portion of Base.
func (p Plan) Stem() string {
	return filepath.Base(p.Base)
}

// Path returns Base with ext appended.
func (p Plan) Path(ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return p.Base + "." + ext
}

// Planner derives download plans under a single output root.
type Planner struct {
	fs             afero.Fs
	root           string
	perVideoSubdir bool
	cleanFilenames bool
	maxLength      int
}

// New constructs a planner from the output path and naming settings.
func New(fs afero.Fs, paths config.Paths, naming config.Naming) *Planner {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Planner{
		fs:             fs,
		root:           paths.OutputDir,
		perVideoSubdir: naming.PerVideoSubdir,
		cleanFilenames: naming.CleanFilenames,
		maxLength:      naming.MaxFilenameLength,
	}
}

// Plan creates the output directory for id and returns the artifact layout.
// Only directory creation can fail; file naming always succeeds.
func (p *Planner) Plan(id, title string) (Plan, error) {
	dir := p.root
	if p.perVideoSubdir {
		dir = filepath.Join(p.root, id)
	}

	existed, err := afero.DirExists(p.fs, dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Plan{}, services.Wrap(services.KindFilesystem, "plan", "stat", fmt.Sprintf("inspect output directory %s", dir), err)
	}
	if err := p.fs.MkdirAll(dir, 0o755); err != nil {
		return Plan{}, services.Wrap(services.KindFilesystem, "plan", "mkdir", fmt.Sprintf("create output directory %s", dir), err)
	}

	base := filepath.Join(dir, p.Stem(id, title))
	if filepath.Dir(base) != dir {
		base = filepath.Join(dir, id)
	}
	return Plan{
		Dir:           dir,
		Base:          base,
		CreatedSubdir: p.perVideoSubdir && !existed,
	}, nil
}

// Stem returns the file stem for a video without touching the filesystem.
func (p *Planner) Stem(id, title string) string {
	if !p.cleanFilenames || strings.TrimSpace(title) == "" {
		return id
	}
	return textutil.BoundedStem(title, id, p.maxLength)
}
