// Package sessionlog persists each run's relayed output to a timestamped
// file under the logs directory. Log content is exactly the lines appended
// during the run, so a log file can be diffed against the scrollback pane.
package sessionlog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// timestampLayout is the filename timestamp format, e.g. 2025-11-03_14-02-59.
const timestampLayout = "2006-01-02_15-04-05"

// Record is an open per-run log file. Append is safe to call from the run's
// relay goroutine while Close is called from the finalizer.
type Record struct {
	Path string

	mu     sync.Mutex
	file   *os.File
	w      *bufio.Writer
	closed bool
}

// Open creates the logs directory if needed and opens a new log file named
// <SanitizedTestName>_<timestamp>.log. The returned error is non-fatal to
// the run itself; callers proceed without persistence when it is non-nil.
func Open(dir, testName string, start time.Time) (*Record, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", dir, err)
	}

	name := fmt.Sprintf("%s_%s.log", SanitizeName(testName), start.Format(timestampLayout))
	path := filepath.Join(dir, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600) // #nosec G304 -- name is sanitized
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}

	return &Record{Path: path, file: file, w: bufio.NewWriter(file)}, nil
}

// Append writes line plus a trailing newline. Writes after Close are
// silently dropped; the run has already finalized by then.
func (r *Record) Append(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	_, _ = r.w.WriteString(line)
	_ = r.w.WriteByte('\n')
}

// Close flushes and releases the file. Safe to call more than once; only the
// first call does work.
func (r *Record) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	flushErr := r.w.Flush()
	closeErr := r.file.Close()
	if flushErr != nil {
		return fmt.Errorf("flush log %s: %w", r.Path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close log %s: %w", r.Path, closeErr)
	}
	return nil
}

// SanitizeName maps a test name to a filesystem-safe stem: alphanumerics,
// hyphens and underscores pass through, spaces and everything else become
// underscores.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// List returns the log file names in dir, newest first by modification time.
// A missing directory yields an empty list.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log dir %s: %w", dir, err)
	}

	type logFile struct {
		name string
		mod  time.Time
	}
	files := make([]logFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, logFile{e.Name(), info.ModTime()})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].mod.After(files[j].mod) })

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.name
	}
	return names, nil
}
