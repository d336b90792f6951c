package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// maxLineBytes bounds a single output line; -J emits the whole info dict on one line.
const maxLineBytes = 64 << 20

// interruptGrace is how long yt-dlp gets to remove its .part files after an
// interrupt before it is killed.
const interruptGrace = 5 * time.Second

var errLineTooLong = errors.New("output line exceeds limit")

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error
}

// commandExecutor runs the real binary. Output is delivered line by line as
// it arrives so progress can be reported while the download runs.
type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error {
	stdout := &lineWriter{emit: onStdout}
	stderr := &lineWriter{emit: onStderr}

	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = interruptGrace

	err := cmd.Run()
	stdout.flush()
	stderr.flush()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("run %s: %w", binary, ctxErr)
	}
	return fmt.Errorf("run %s: %w", binary, err)
}

// lineWriter splits written bytes into lines for emit. A trailing partial
// line is held until more data or flush.
type lineWriter struct {
	emit    func(string)
	pending []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.pending = append(w.pending, p...)
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		w.send(w.pending[:i])
		w.pending = w.pending[i+1:]
	}
	if len(w.pending) > maxLineBytes {
		w.pending = nil
		return len(p), errLineTooLong
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	if len(w.pending) > 0 {
		w.send(w.pending)
		w.pending = nil
	}
}

func (w *lineWriter) send(line []byte) {
	if w.emit != nil {
		w.emit(string(bytes.TrimSuffix(line, []byte{'\r'})))
	}
}
