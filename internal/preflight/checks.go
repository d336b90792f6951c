package preflight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"tubeaudio/internal/config"
	"tubeaudio/internal/deps"
)

const (
	versionProbeTimeout = 15 * time.Second
	ntfyProbeTimeout    = 5 * time.Second
)

func pass(name, format string, args ...any) Result {
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf(format, args...)}
}

func fail(name, format string, args ...any) Result {
	return Result{Name: name, Detail: fmt.Sprintf(format, args...)}
}

// CheckExtractor runs the engine's version probe with a short timeout.
func CheckExtractor(ctx context.Context, engine Versioner) Result {
	const name = "Extraction engine"

	probeCtx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	switch version, err := engine.Version(probeCtx); {
	case err != nil:
		return fail(name, "%s", describeProbeError(err))
	case version == "":
		return fail(name, "version probe returned no output")
	default:
		return pass(name, "version %s", version)
	}
}

// CheckNtfy sends a HEAD to the topic URL. Auth failures are reported apart
// from other non-2xx/3xx answers since they need a different fix.
func CheckNtfy(ctx context.Context, topic string) Result {
	const name = "ntfy"

	url := strings.TrimRight(strings.TrimSpace(topic), "/")
	if url == "" {
		return fail(name, "missing topic url")
	}

	probeCtx, cancel := context.WithTimeout(ctx, ntfyProbeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, url, nil)
	if err != nil {
		return fail(name, "reachability check failed (%v)", err)
	}
	resp, err := (&http.Client{Timeout: ntfyProbeTimeout}).Do(req)
	if err != nil {
		return fail(name, "%s", describeProbeError(err))
	}
	resp.Body.Close()

	switch code := resp.StatusCode; {
	case code < http.StatusBadRequest:
		return pass(name, "Reachable")
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fail(name, "topic requires authentication")
	default:
		return fail(name, "reachability check failed (%d)", code)
	}
}

// CheckDirectoryAccess passes when path is a directory the process can list
// and write into.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fail(name, "%s (error: does not exist)", path)
	case err != nil:
		return fail(name, "%s (error: stat: %v)", path, err)
	case !info.IsDir():
		return fail(name, "%s (error: is not a directory)", path)
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fail(name, "%s (error: insufficient permissions: %v)", path, err)
	}
	return pass(name, "%s (read/write ok)", path)
}

// CheckOutputDirectory accepts a missing output directory as long as its
// nearest existing ancestor is writable, since downloads create it.
func CheckOutputDirectory(name, path string) Result {
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		return CheckDirectoryAccess(name, path)
	}
	ancestor := nearestExisting(path)
	if !CheckDirectoryAccess(name, ancestor).Passed {
		return fail(name, "%s (error: cannot be created under %s)", path, ancestor)
	}
	return pass(name, "%s (will be created)", path)
}

func nearestExisting(path string) string {
	dir := filepath.Dir(path)
	for {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

// CheckSystemDeps reports on the binaries fetch shells out to. doctor and
// fetch startup share it.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.Check(deps.ForExtractor(cfg.Extractor.Binary, cfg.Extractor.FFmpegLocation))
}

func describeProbeError(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "check timed out"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "check timed out (unreachable)"
	default:
		return err.Error()
	}
}
