package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"tubeaudio/internal/config"
	"tubeaudio/internal/fetch"
)

// ResultLog appends results as JSON lines. Failed runs go to the error log;
// successful and skipped runs go to the success log. An unset path disables
// that log.
type ResultLog struct {
	mu          sync.Mutex
	successPath string
	errorPath   string
}

// NewResultLog builds a ResultLog from the history section.
func NewResultLog(cfg config.History) *ResultLog {
	return &ResultLog{
		successPath: strings.TrimSpace(cfg.SuccessLog),
		errorPath:   strings.TrimSpace(cfg.ErrorLog),
	}
}

// Enabled reports whether either log is configured.
func (l *ResultLog) Enabled() bool {
	return l != nil && (l.successPath != "" || l.errorPath != "")
}

// Append writes result to the matching log.
func (l *ResultLog) Append(result fetch.Result) error {
	if l == nil {
		return nil
	}
	path := l.successPath
	if result.Failed() {
		path = l.errorPath
	}
	if path == "" {
		return nil
	}

	line, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create result log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open result log: %w", err)
	}
	if _, err := file.Write(line); err != nil {
		_ = file.Close()
		return fmt.Errorf("write result log: %w", err)
	}
	return file.Close()
}
